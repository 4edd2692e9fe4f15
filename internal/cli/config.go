package cli

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/askiada/go-gridpipe/pkg/gridpipe"
	"github.com/askiada/go-gridpipe/pkg/gridpipe/model"
)

const envPrefix = "GRIDPIPE"

// ErrInvalidConfig is returned when the run configuration does not validate.
var ErrInvalidConfig = errors.New("invalid configuration")

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	return validate
}

// Config describes a run read from a YAML file.
type Config struct {
	Grid           *GridConfig     `mapstructure:"grid"`
	Init           string          `mapstructure:"init"`
	OutputPrefix   string          `mapstructure:"output_prefix"`
	Draw           string          `mapstructure:"draw"`
	Steps          []StepConfig    `mapstructure:"steps" validate:"required,min=1,dive"`
	Datasets       []DatasetConfig `mapstructure:"datasets" validate:"required,min=1,dive"`
	Workers        int             `mapstructure:"workers" validate:"gte=0"`
	SaveEndResults bool            `mapstructure:"save_end_results"`
	Debug          bool            `mapstructure:"debug"`
}

// StepConfig declares one step by the registered names of its functions.
type StepConfig struct {
	Name   string        `mapstructure:"name" validate:"required"`
	Func   string        `mapstructure:"func" validate:"required"`
	Eval   string        `mapstructure:"eval"`
	Params []ParamConfig `mapstructure:"params" validate:"dive"`
}

// ParamConfig declares a step parameter, its default and its alternatives.
type ParamConfig struct {
	Default any    `mapstructure:"default"`
	Name    string `mapstructure:"name" validate:"required"`
	Values  []any  `mapstructure:"values"`
}

// DatasetConfig is one dataset of numbers.
type DatasetConfig struct {
	ID     string    `mapstructure:"id" validate:"required"`
	Values []float64 `mapstructure:"values" validate:"required,min=1"`
}

// GridConfig restricts the run to explicit combinations of 1-based indices.
type GridConfig struct {
	Columns []string `mapstructure:"columns" validate:"required,min=1"`
	Rows    [][]int  `mapstructure:"rows" validate:"required,min=1"`
	Sort    bool     `mapstructure:"sort"`
}

// LoadConfig reads the YAML file at path. GRIDPIPE_* environment variables
// and the flags bound from flags override the scalar settings of the file.
func LoadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	for _, key := range []string{"workers", "output_prefix", "draw", "init", "save_end_results", "debug"} {
		err := v.BindEnv(key)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to bind %s", key)
		}
	}

	if flags != nil {
		for key, flag := range map[string]string{
			"workers":          flagWorkers,
			"output_prefix":    flagOutputPrefix,
			"draw":             flagDraw,
			"save_end_results": flagSaveEnd,
			"debug":            flagDebug,
		} {
			if flags.Lookup(flag) == nil {
				continue
			}

			err := v.BindPFlag(key, flags.Lookup(flag))
			if err != nil {
				return nil, errors.Wrapf(err, "unable to bind flag %s", flag)
			}
		}
	}

	err := v.ReadInConfig()
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read config %s", path)
	}

	cfg := &Config{}

	err = v.Unmarshal(cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to decode config %s", path)
	}

	cfg.ApplyDefaults()

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyDefaults fills the settings left empty.
func (c *Config) ApplyDefaults() {
	if c.Workers == 0 {
		c.Workers = 1
	}

	if c.Init == "" {
		c.Init = initCopy
	}
}

// Validate checks the configuration structure.
func (c *Config) Validate() error {
	err := getValidator().Struct(c)
	if err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}

	return nil
}

// Definition builds the pipeline definition from reg.
func (c *Config) Definition(reg *gridpipe.Registry) (*gridpipe.Definition, error) {
	refs := make([]gridpipe.StepRef, len(c.Steps))

	for i, step := range c.Steps {
		ref := gridpipe.StepRef{
			Name: step.Name,
			Func: step.Func,
			Eval: step.Eval,
		}

		for _, param := range step.Params {
			ref.Params = append(ref.Params, param.Name)

			if param.Default != nil {
				if ref.Defaults == nil {
					ref.Defaults = model.Args{}
				}

				ref.Defaults[param.Name] = param.Default
			}
		}

		refs[i] = ref
	}

	return reg.Definition(c.Init, refs...)
}

// Alternatives returns the candidate values of every parameter that lists some.
func (c *Config) Alternatives() gridpipe.Alternatives {
	alt := gridpipe.Alternatives{}

	for _, step := range c.Steps {
		for _, param := range step.Params {
			if len(param.Values) > 0 {
				alt[param.Name] = param.Values
			}
		}
	}

	return alt
}

// Inputs returns the datasets in the configured order.
func (c *Config) Inputs() []gridpipe.Dataset {
	datasets := make([]gridpipe.Dataset, len(c.Datasets))

	for i, dataset := range c.Datasets {
		datasets[i] = gridpipe.Dataset{ID: dataset.ID, Input: dataset.Values}
	}

	return datasets
}

// Options returns the run options the configuration asks for.
func (c *Config) Options() []gridpipe.Option {
	opts := []gridpipe.Option{
		gridpipe.WithWorkers(c.Workers),
		gridpipe.WithOutputPrefix(c.OutputPrefix),
	}

	if c.Grid != nil {
		opts = append(opts, gridpipe.WithGrid(c.Grid.Columns, c.Grid.Rows))

		if c.Grid.Sort {
			opts = append(opts, gridpipe.WithSortedGrid())
		}
	}

	if c.SaveEndResults {
		opts = append(opts, gridpipe.WithSaveEndResults())
	}

	if c.Debug {
		opts = append(opts, gridpipe.WithDebug())
	}

	return opts
}
