package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-gridpipe/pkg/gridpipe"
)

func validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a run configuration without running it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}

			def, err := definition(cfg)
			if err != nil {
				return err
			}

			space, err := gridpipe.Resolve(def, cfg.Alternatives())
			if err != nil {
				return errors.Wrap(err, "invalid alternatives")
			}

			combinations := gridpipe.BuildGrid(space).Len()

			if cfg.Grid != nil {
				grid, err := gridpipe.NewGrid(space, cfg.Grid.Columns, cfg.Grid.Rows)
				if err != nil {
					return errors.Wrap(err, "invalid combination matrix")
				}

				if cfg.Grid.Sort {
					grid = grid.Dedup()
				}

				combinations = grid.Len()
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "configuration is valid: %d steps, %d combinations, %d datasets\n",
				def.Len(), combinations, len(cfg.Datasets))

			return errors.Wrap(err, "unable to write")
		},
	}
}

func definition(cfg *Config) (*gridpipe.Definition, error) {
	reg, err := Builtins()
	if err != nil {
		return nil, errors.Wrap(err, "unable to register built-in functions")
	}

	def, err := cfg.Definition(reg)
	if err != nil {
		return nil, errors.Wrap(err, "invalid pipeline")
	}

	return def, nil
}
