// Package gridpipe runs a linear pipeline of named steps over the full grid of
// alternative parameter values, on several independent datasets.
//
// Rows of the grid are traversed so that consecutive rows share the longest
// possible prefix of parameter values. For each row only the steps from the
// first one whose parameters changed are executed again; earlier steps are
// reused from the previous row. Each step output can be summarised by an
// evaluation payload, returned by the step itself as a side value or computed
// by an evaluation function, so that large intermediate objects never need to
// be kept.
//
// Datasets are processed in parallel, one worker per dataset. Each worker
// persists its result under the run output prefix; results are reloaded and
// merged into a single AggregatedResult keyed by step once every worker is done.
// A failing step aborts its dataset only, and every failing dataset is reported.
package gridpipe
