// Package cli implements the gridpipe command line.
package cli

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	flagConfig       = "config"
	flagLogLevel     = "log-level"
	flagWorkers      = "workers"
	flagOutputPrefix = "output-prefix"
	flagDraw         = "draw"
	flagSaveEnd      = "save-end-results"
	flagDebug        = "debug"
)

// NewRootCommand builds the gridpipe command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gridpipe",
		Short:         "Run a pipeline over every combination of its parameters",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String(flagLogLevel, zerolog.InfoLevel.String(), "log level")
	rootCmd.PersistentFlags().StringP(flagConfig, "c", "gridpipe.yaml", "run configuration file")

	rootCmd.AddCommand(runCommand(), validateCommand())

	return rootCmd
}

// Execute runs the command line and reports failures on stderr.
func Execute(ctx context.Context, args []string) error {
	cmd := NewRootCommand()
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		logger, lerr := newLogger(cmd.ErrOrStderr(), zerolog.InfoLevel.String())
		if lerr == nil {
			logger.Error().Err(err).Msg("gridpipe failed")
		}
	}

	return err
}

func newLogger(wrt io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), errors.Wrapf(err, "invalid log level %q", level)
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: wrt, TimeFormat: "15:04:05"}).
		Level(lvl).
		With().Timestamp().
		Logger(), nil
}

// setup reads the persistent flags shared by every command.
func setup(cmd *cobra.Command) (*Config, zerolog.Logger, error) {
	level, err := cmd.Flags().GetString(flagLogLevel)
	if err != nil {
		return nil, zerolog.Nop(), errors.Wrap(err, "unable to read log level")
	}

	logger, err := newLogger(cmd.ErrOrStderr(), level)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, zerolog.Nop(), errors.Wrap(err, "unable to read config path")
	}

	cfg, err := LoadConfig(path, cmd.Flags())
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	logger.Debug().Str("config", path).Int("steps", len(cfg.Steps)).Int("datasets", len(cfg.Datasets)).Msg("config loaded")

	return cfg, logger, nil
}
