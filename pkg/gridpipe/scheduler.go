package gridpipe

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/askiada/go-gridpipe/pkg/gridpipe/model"
)

// Scheduler traverses a grid for one dataset at a time, re-executing for each
// row only the steps from the first one whose parameters changed.
// A Scheduler is read-only once built and can serve several datasets concurrently.
type Scheduler struct {
	def    *Definition
	space  *Space
	grid   *Grid
	infos  []*model.StepInfo
	opts   []model.RunOption
	logger zerolog.Logger
}

// NewScheduler returns a scheduler for grid.
func NewScheduler(grid *Grid, logger zerolog.Logger, opts ...model.RunOption) *Scheduler {
	def := grid.space.def
	infos := make([]*model.StepInfo, def.Len())

	for idx := range infos {
		infos[idx] = def.stepInfo(idx)
	}

	return &Scheduler{
		def:    def,
		space:  grid.space,
		grid:   grid,
		infos:  infos,
		opts:   opts,
		logger: logger.With().Str("component", "scheduler").Logger(),
	}
}

// objectCache holds the latest output of every step, overwritten in place.
type objectCache struct {
	initiated any
	outputs   []any
}

// inputFor returns the object a step resumes from: the output of the
// preceding step, or the initiated input for the first step.
func (c *objectCache) inputFor(step int) any {
	if step == 0 {
		return c.initiated
	}

	return c.outputs[step-1]
}

func (c *objectCache) set(step int, output any) {
	c.outputs[step] = output
}

// restartStep returns the first step whose parameters differ between row and
// previous. It returns the number of steps when the rows are identical.
func (s *Scheduler) restartStep(row, previous []int, first bool) int {
	if first {
		return 0
	}

	for col := range row {
		if row[col] != previous[col] {
			return s.space.owner[col]
		}
	}

	return len(s.def.steps)
}

func (s *Scheduler) args(step int, row []int) model.Args {
	args := make(model.Args, s.space.stepEnd[step]-s.space.stepStart[step])
	for col := s.space.stepStart[step]; col < s.space.stepEnd[step]; col++ {
		args[s.space.columns[col]] = s.space.Value(col, row[col])
	}

	return args
}

func (s *Scheduler) initiate(ctx context.Context, dataset string, raw any) (any, error) {
	if s.def.init == nil {
		return raw, nil
	}

	obj, err := s.def.init(ctx, raw)
	if err != nil {
		return nil, &StepError{
			Err:     errors.Wrap(err, "unable to initiate input"),
			Dataset: dataset,
			Step:    model.StartStep.Name,
		}
	}

	return obj, nil
}

// Run executes every row of the grid, in order, for one dataset. The first
// failing step aborts the dataset and is returned as a *StepError.
func (s *Scheduler) Run(ctx context.Context, dataset string, raw any) (*DatasetResult, error) {
	logger := s.logger.With().Str("dataset", dataset).Logger()
	res := newDatasetResult(dataset, s.def.Steps())

	initiated, err := s.initiate(ctx, dataset, raw)
	if err != nil {
		return nil, err
	}

	nSteps := len(s.def.steps)
	cache := &objectCache{initiated: initiated, outputs: make([]any, nSteps)}
	previous := make([]int, len(s.space.columns))
	prefixes := make([]string, nSteps)

	for n, row := range s.grid.rows {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "dataset %q stopped before row %d", dataset, n+1)
		}

		restart := s.restartStep(row, previous, n == 0)

		for step := 0; step < nSteps; step++ {
			prefixes[step] = s.space.Name(row, s.space.stepEnd[step])
		}

		logger.Debug().Int("row", n+1).Str("restart", s.stepName(restart)).Msg("executing row")

		for step := restart; step < nSteps; step++ {
			err := s.runStep(ctx, res, cache, dataset, step, prefixes[step], row)
			if err != nil {
				return nil, &StepError{
					Err:        err,
					Dataset:    dataset,
					Step:       s.def.steps[step].Name,
					Assignment: s.space.Assignment(row, len(row)),
					Row:        n + 1,
				}
			}
		}

		var total time.Duration
		for step := 0; step < nSteps; step++ {
			total += res.Elapsed[s.def.steps[step].Name][prefixes[step]]
		}

		res.recordResult(s.space.Name(row, len(row)), cache.outputs[nSteps-1], total)
		copy(previous, row)
	}

	return res, nil
}

func (s *Scheduler) runStep(ctx context.Context, res *DatasetResult, cache *objectCache, dataset string, step int, prefix string, row []int) error {
	spec := s.def.steps[step]
	args := s.args(step, row)

	startFn := time.Now()
	out, err := spec.Func(ctx, cache.inputFor(step), args)
	endFn := time.Since(startFn)

	if err != nil {
		return err
	}

	res.recordElapsed(spec.Name, prefix, endFn)

	err = evaluate(ctx, res, spec, prefix, out)
	if err != nil {
		return err
	}

	cache.set(step, out.Value())

	for _, opt := range s.opts {
		err := opt.OnStepOutput(dataset, s.infos[step], prefix, endFn)
		if err != nil {
			return errors.Wrap(err, "unable to run step output hook")
		}
	}

	return nil
}

func (s *Scheduler) stepName(idx int) string {
	if idx >= len(s.def.steps) {
		return model.EndStep.Name
	}

	return s.def.steps[idx].Name
}
