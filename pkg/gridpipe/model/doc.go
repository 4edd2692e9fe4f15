// Package model provides the data structures shared by the gridpipe packages.
// It defines the step, evaluation and initiation function contracts, the
// discriminated step output and the hook interface used by run options.
package model
