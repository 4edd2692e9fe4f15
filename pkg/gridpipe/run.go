package gridpipe

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/askiada/go-gridpipe/internal/store"
	"github.com/askiada/go-gridpipe/pkg/gridpipe/model"
)

// Manifest describes a run. It is persisted before any dataset is processed.
type Manifest struct {
	CreatedAt    time.Time           `yaml:"created_at"`
	Alternatives map[string][]string `yaml:"alternatives"`
	RunID        string              `yaml:"run_id"`
	OutputPrefix string              `yaml:"output_prefix"`
	Steps        []ManifestStep      `yaml:"steps"`
	Datasets     []string            `yaml:"datasets"`
	Columns      []string            `yaml:"columns"`
	Rows         [][]int             `yaml:"rows"`
	Workers      int                 `yaml:"workers"`
	SaveEnd      bool                `yaml:"save_end_results"`
	Debug        bool                `yaml:"debug"`
}

// ManifestStep describes one step of a run.
type ManifestStep struct {
	Name     string   `yaml:"name"`
	Params   []string `yaml:"params"`
	Evaluate bool     `yaml:"evaluate"`
}

func newManifest(grid *Grid, datasets []Dataset, cfg *config, prefix string) *Manifest {
	def := grid.space.def
	manifest := &Manifest{
		RunID:        uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Alternatives: grid.space.Labels(),
		OutputPrefix: prefix,
		Columns:      grid.space.Columns(),
		Rows:         grid.Rows(),
		Workers:      cfg.workers,
		SaveEnd:      cfg.saveEndResults,
		Debug:        cfg.debug,
	}

	for _, step := range def.steps {
		manifest.Steps = append(manifest.Steps, ManifestStep{
			Name:     step.Name,
			Params:   append([]string(nil), step.Params...),
			Evaluate: step.Eval != nil,
		})
	}

	for _, dataset := range datasets {
		manifest.Datasets = append(manifest.Datasets, dataset.ID)
	}

	return manifest
}

func buildGrid(space *Space, cfg *config) (*Grid, error) {
	if cfg.gridRows == nil {
		return BuildGrid(space), nil
	}

	grid, err := NewGrid(space, cfg.gridColumns, cfg.gridRows)
	if err != nil {
		return nil, err
	}

	if cfg.sortGrid {
		grid = grid.Dedup().Sorted()
	}

	return grid, nil
}

func prepareRunOptions(def *Definition, opts []model.RunOption) error {
	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			return errors.Wrap(err, "unable to apply run option")
		}

		parent := model.StartStep

		for idx := range def.steps {
			info := def.stepInfo(idx)

			err := opt.PrepareStep(parent, info)
			if err != nil {
				return errors.Wrapf(err, "unable to prepare step %q", info.Name)
			}

			parent = info
		}
	}

	return nil
}

func finishRunOptions(opts []model.RunOption) error {
	for _, opt := range opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish run option")
		}
	}

	return nil
}

// Run executes def over every combination of alternatives for every dataset,
// then aggregates the persisted per-dataset results.
//
// Configuration errors are returned before any dataset runs. When datasets
// fail, the error lists every failure and the returned result, when not nil,
// only holds the datasets that completed.
func Run(ctx context.Context, datasets []Dataset, alternatives Alternatives, def *Definition, opts ...Option) (*AggregatedResult, error) {
	cfg := newConfig(opts...)
	logger := cfg.logger.With().Str("component", "gridpipe").Logger()

	err := validateDatasets(datasets, logger)
	if err != nil {
		return nil, err
	}

	space, err := Resolve(def, alternatives)
	if err != nil {
		return nil, errors.Wrap(err, "invalid alternatives")
	}

	grid, err := buildGrid(space, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "invalid combination matrix")
	}

	st, err := store.NewFileStore(cfg.outputPrefix)
	if err != nil {
		return nil, err
	}

	err = prepareRunOptions(def, cfg.runOptions)
	if err != nil {
		return nil, err
	}

	manifest := newManifest(grid, datasets, cfg, st.Prefix())

	path, err := st.SaveYAML("manifest", manifest)
	if err != nil {
		return nil, errors.Wrap(err, "unable to save manifest")
	}

	logger = logger.With().Str("run", manifest.RunID).Logger()
	logger.Info().Str("manifest", path).Int("combinations", grid.Len()).Msg("starting run")

	r := &runner{
		scheduler: NewScheduler(grid, logger, cfg.runOptions...),
		store:     st,
		logger:    logger,
		opts:      cfg.runOptions,
		workers:   cfg.workers,
		debug:     cfg.debug,
		saveEnd:   cfg.saveEndResults,
	}

	handles, runErr := r.run(ctx, datasets)
	if runErr != nil && len(handles) == 0 {
		return nil, multierr.Append(runErr, finishRunOptions(cfg.runOptions))
	}

	agg, err := Aggregate(st, handles, logger)
	if err != nil {
		return nil, multierr.Append(runErr, errors.Wrap(err, "unable to aggregate results"))
	}

	path, err = st.SaveYAML("aggregated", agg)
	if err != nil {
		return nil, multierr.Append(runErr, errors.Wrap(err, "unable to save aggregated result"))
	}

	logger.Info().Str("aggregated", path).Msg("run done")

	err = finishRunOptions(cfg.runOptions)
	if err != nil {
		return agg, multierr.Append(runErr, err)
	}

	return agg, runErr
}
