package gridpipe

import (
	"context"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-gridpipe/pkg/gridpipe/model"
)

// Dataset is one independent input of a run.
type Dataset struct {
	Input any
	ID    string
}

// Handle references the persisted result of one dataset.
type Handle struct {
	Dataset string `yaml:"dataset"`
	// Path is the persisted DatasetResult.
	Path string `yaml:"path"`
	// EndResults is the persisted end-stage table, empty unless requested.
	EndResults string `yaml:"end_results,omitempty"`
}

// EndResult is one row of the persisted end-stage table of a dataset.
type EndResult struct {
	Output      any    `codec:"output"`
	Combination string `codec:"combination"`
}

// DebugDump is persisted when a dataset fails in debug mode.
type DebugDump struct {
	Dataset    string       `yaml:"dataset"`
	Step       string       `yaml:"step"`
	Error      string       `yaml:"error"`
	Assignment []Assignment `yaml:"assignment"`
	Steps      []string     `yaml:"steps"`
	Row        int          `yaml:"row"`
}

// resultStore persists run artifacts.
type resultStore interface {
	Loader
	Save(name string, v any) (string, error)
	SaveYAML(name string, v any) (string, error)
}

type runner struct {
	scheduler *Scheduler
	store     resultStore
	logger    zerolog.Logger
	opts      []model.RunOption
	workers   int
	debug     bool
	saveEnd   bool
}

func validateDatasets(datasets []Dataset, logger zerolog.Logger) error {
	if len(datasets) == 0 {
		return ErrNoDataset
	}

	seen := make(map[string]struct{}, len(datasets))

	for _, dataset := range datasets {
		if dataset.ID == "" || strings.IndexFunc(dataset.ID, unicode.IsSpace) >= 0 {
			return errors.Wrapf(ErrInvalidDatasetID, "%q", dataset.ID)
		}

		if _, ok := seen[dataset.ID]; ok {
			return errors.Wrapf(ErrInvalidDatasetID, "duplicate %q", dataset.ID)
		}

		if strings.Contains(dataset.ID, ".") {
			logger.Warn().Str("dataset", dataset.ID).Msg("dataset identifier contains a period")
		}

		seen[dataset.ID] = struct{}{}
	}

	return nil
}

// artifactName is the name of a per-dataset artifact. The identifier is
// escaped so that it always stays a single file name under the output prefix.
func artifactName(dataset, kind string) string {
	return url.PathEscape(dataset) + "_" + kind
}

func (r *runner) concurrency(total int) int {
	if r.debug || r.workers <= 1 || total <= 1 {
		return 1
	}

	return min(r.workers, total)
}

// run processes every dataset. Sequential runs stop at the first failure;
// concurrent runs let every worker finish and report all failures together.
// Handles of the datasets that succeeded are returned in every case.
func (r *runner) run(ctx context.Context, datasets []Dataset) ([]Handle, error) {
	workers := r.concurrency(len(datasets))
	r.logger.Info().Int("datasets", len(datasets)).Int("workers", workers).Msg("running datasets")

	if workers == 1 {
		handles := make([]Handle, 0, len(datasets))

		for _, dataset := range datasets {
			handle, err := r.runDataset(ctx, dataset)
			if err != nil {
				return handles, err
			}

			handles = append(handles, handle)
		}

		return handles, nil
	}

	handles := make([]Handle, len(datasets))
	errs := make([]error, len(datasets))

	// The group has no shared context: a failing dataset does not cancel the others.
	var errGrp errgroup.Group
	errGrp.SetLimit(workers)

	for i, dataset := range datasets {
		i, dataset := i, dataset

		errGrp.Go(func() error {
			handles[i], errs[i] = r.runDataset(ctx, dataset)

			return nil
		})
	}

	_ = errGrp.Wait()

	res := make([]Handle, 0, len(datasets))

	for i := range datasets {
		if errs[i] == nil {
			res = append(res, handles[i])
		}
	}

	return res, multierr.Combine(errs...)
}

func (r *runner) runDataset(ctx context.Context, dataset Dataset) (Handle, error) {
	logger := r.logger.With().Str("dataset", dataset.ID).Logger()
	start := time.Now()

	res, err := r.scheduler.Run(ctx, dataset.ID, dataset.Input)
	elapsed := time.Since(start)

	for _, opt := range r.opts {
		herr := opt.OnDatasetDone(dataset.ID, elapsed, err)
		if herr != nil && err == nil {
			err = errors.Wrapf(herr, "dataset %q: unable to run dataset done hook", dataset.ID)
		}
	}

	if err != nil {
		logger.Error().Err(err).Dur("elapsed", elapsed).Msg("dataset failed")
		r.dump(logger, dataset.ID, err)

		return Handle{}, err
	}

	handle, err := r.persist(res)
	if err != nil {
		return Handle{}, errors.Wrapf(err, "dataset %q", dataset.ID)
	}

	logger.Info().Dur("elapsed", elapsed).Int("combinations", len(res.Order)).Msg("dataset done")

	return handle, nil
}

func (r *runner) persist(res *DatasetResult) (Handle, error) {
	handle := Handle{Dataset: res.Dataset}

	path, err := r.store.Save(artifactName(res.Dataset, "result"), res)
	if err != nil {
		return handle, errors.Wrap(err, "unable to save result")
	}

	handle.Path = path

	if !r.saveEnd {
		return handle, nil
	}

	table := make([]EndResult, len(res.Order))
	for i, name := range res.Order {
		table[i] = EndResult{Combination: name, Output: res.Results[name]}
	}

	path, err = r.store.Save(artifactName(res.Dataset, "end"), table)
	if err != nil {
		return handle, errors.Wrap(err, "unable to save end results")
	}

	handle.EndResults = path

	return handle, nil
}

func (r *runner) dump(logger zerolog.Logger, dataset string, err error) {
	if !r.debug {
		return
	}

	dump := DebugDump{
		Dataset: dataset,
		Error:   err.Error(),
		Steps:   r.scheduler.def.Steps(),
	}

	var stepErr *StepError
	if errors.As(err, &stepErr) {
		dump.Step = stepErr.Step
		dump.Row = stepErr.Row
		dump.Assignment = stepErr.Assignment
	}

	path, serr := r.store.SaveYAML(artifactName(dataset, "debug"), dump)
	if serr != nil {
		logger.Error().Err(serr).Msg("unable to save debug dump")

		return
	}

	logger.Info().Str("path", path).Msg("debug dump saved")
}
