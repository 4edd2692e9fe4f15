package measure

import (
	"time"

	"github.com/askiada/go-gridpipe/pkg/gridpipe/model"
)

type runMeasure struct {
	Measure
}

func (rm *runMeasure) New() error {
	return nil
}

func (rm *runMeasure) PrepareStep(parentStep, step *model.StepInfo) error {
	rm.AddMetric(step.Name)

	return nil
}

func (rm *runMeasure) OnStepOutput(dataset string, step *model.StepInfo, combination string, computationDuration time.Duration) error {
	rm.AddMetric(step.Name).AddDuration(combination, computationDuration)

	return nil
}

func (rm *runMeasure) OnDatasetDone(dataset string, totalDuration time.Duration, err error) error {
	rm.SetTotalDuration(dataset, totalDuration)

	return nil
}

func (rm *runMeasure) Finish() error {
	return nil
}

// RunMeasure records step invocations and durations into measure.
func RunMeasure(measure Measure) model.RunOption {
	return &runMeasure{measure}
}
