package model

import "time"

// RunOption defines the interface for features plugged into a run.
// Hooks receiving a dataset may be called concurrently by several dataset workers.
type RunOption interface {
	// New initialises the run option.
	New() error
	// PrepareStep runs once per step, in pipeline order, before any dataset is processed.
	PrepareStep(parentStep, step *StepInfo) error
	// OnStepOutput runs every time a step function is invoked for a dataset.
	OnStepOutput(dataset string, step *StepInfo, combination string, computationDuration time.Duration) error
	// OnDatasetDone runs after the grid of a dataset has been fully traversed or has failed.
	OnDatasetDone(dataset string, totalDuration time.Duration, err error) error
	// Finish runs after all datasets are done and results are aggregated.
	Finish() error
}
