package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-gridpipe/pkg/gridpipe/measure"
	"github.com/askiada/go-gridpipe/pkg/gridpipe/model"
)

type runDrawer struct {
	Drawer
	m         measure.Measure
	startTime time.Time
	lastStep  string
}

func (rd *runDrawer) New() error {
	rd.startTime = time.Now()
	rd.lastStep = model.StartStep.Name

	err := rd.AddStep(model.StartStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start step to drawer")
	}

	err = rd.AddStep(model.EndStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add end step to drawer")
	}

	return nil
}

func (rd *runDrawer) PrepareStep(parentStep, step *model.StepInfo) error {
	err := rd.AddStep(step.Name)
	if err != nil {
		return err
	}

	err = rd.AddLink(parentStep.Name, step.Name)
	if err != nil {
		return err
	}

	rd.lastStep = step.Name

	return nil
}

func (rd *runDrawer) OnStepOutput(dataset string, step *model.StepInfo, combination string, computationDuration time.Duration) error {
	return nil
}

func (rd *runDrawer) OnDatasetDone(dataset string, totalDuration time.Duration, err error) error {
	return nil
}

func (rd *runDrawer) Finish() error {
	err := rd.AddLink(rd.lastStep, model.EndStep.Name)
	if err != nil {
		return err
	}

	if rd.m != nil {
		err := rd.SetTotalTime(model.EndStep.Name, rd.startTime)
		if err != nil {
			return errors.Wrap(err, "unable to set total time")
		}

		err = rd.AddMeasure(rd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err = rd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// RunDrawer draws the step chain when the run finishes. When measure is not
// nil, steps are labelled and coloured with their average computation time.
func RunDrawer(drawer Drawer, measure measure.Measure) model.RunOption {
	return &runDrawer{Drawer: drawer, m: measure}
}
