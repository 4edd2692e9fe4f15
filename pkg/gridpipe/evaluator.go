package gridpipe

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/go-gridpipe/pkg/gridpipe/model"
)

// evaluate records the evaluation payload of a step output for prefix. A side
// value returned by the step wins over the evaluation function; steps with
// neither record nothing.
func evaluate(ctx context.Context, res *DatasetResult, step StepSpec, prefix string, out model.Output) error {
	if _, ok := res.Evaluations[step.Name][prefix]; ok {
		return nil
	}

	if side, ok := out.SideValue(); ok {
		res.recordEvaluation(step.Name, prefix, side)

		return nil
	}

	if step.Eval == nil {
		return nil
	}

	payload, err := step.Eval(ctx, out.Value())
	if err != nil {
		return errors.Wrap(err, "unable to evaluate step output")
	}

	res.recordEvaluation(step.Name, prefix, payload)

	return nil
}
