package gridpipe

import (
	"github.com/rs/zerolog"

	"github.com/askiada/go-gridpipe/pkg/gridpipe/model"
)

type config struct {
	logger         zerolog.Logger
	gridColumns    []string
	gridRows       [][]int
	runOptions     []model.RunOption
	outputPrefix   string
	workers        int
	saveEndResults bool
	debug          bool
	sortGrid       bool
}

// Option configures Run.
type Option func(c *config)

func newConfig(opts ...Option) *config {
	cfg := &config{
		logger:  zerolog.Nop(),
		workers: 1,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// WithGrid restricts the run to a caller-supplied matrix of 1-based indices.
// columns names the parameter of each matrix column.
func WithGrid(columns []string, rows [][]int) Option {
	return func(c *config) {
		c.gridColumns = columns
		c.gridRows = rows
	}
}

// WithSortedGrid deduplicates the caller-supplied matrix and reorders it for prefix reuse.
func WithSortedGrid() Option {
	return func(c *config) {
		c.sortGrid = true
	}
}

// WithOutputPrefix sets the path prefix of every persisted artifact.
func WithOutputPrefix(prefix string) Option {
	return func(c *config) {
		c.outputPrefix = prefix
	}
}

// WithWorkers bounds the number of datasets processed concurrently.
func WithWorkers(workers int) Option {
	return func(c *config) {
		c.workers = workers
	}
}

// WithSaveEndResults persists the last step output of every combination.
func WithSaveEndResults() Option {
	return func(c *config) {
		c.saveEndResults = true
	}
}

// WithDebug runs datasets sequentially and persists a dump of any failure.
func WithDebug() Option {
	return func(c *config) {
		c.debug = true
	}
}

// WithLogger sets the logger. Nothing is logged by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithRunOptions plugs features such as measure or drawer into the run.
func WithRunOptions(opts ...model.RunOption) Option {
	return func(c *config) {
		c.runOptions = append(c.runOptions, opts...)
	}
}
