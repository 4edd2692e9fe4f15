package cli

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-gridpipe/pkg/gridpipe"
	"github.com/askiada/go-gridpipe/pkg/gridpipe/drawer"
	"github.com/askiada/go-gridpipe/pkg/gridpipe/measure"
)

func runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured pipeline over every dataset and combination",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			def, err := definition(cfg)
			if err != nil {
				return err
			}

			opts := append(cfg.Options(), gridpipe.WithLogger(logger))

			if cfg.Draw != "" {
				msr := measure.NewDefaultMeasure()
				opts = append(opts, gridpipe.WithRunOptions(
					measure.RunMeasure(msr),
					drawer.RunDrawer(drawer.NewDOTDrawer(cfg.Draw), msr),
				))
			}

			agg, runErr := gridpipe.Run(cmd.Context(), cfg.Inputs(), cfg.Alternatives(), def, opts...)
			if agg != nil {
				err = printSummary(cmd.OutOrStdout(), agg)
				if err != nil {
					return err
				}
			}

			return runErr
		},
	}

	cmd.Flags().Int(flagWorkers, 1, "number of datasets processed concurrently")
	cmd.Flags().String(flagOutputPrefix, "", "path prefix of the persisted artifacts (default a temporary directory)")
	cmd.Flags().String(flagDraw, "", "write the pipeline graph with timings to this DOT file")
	cmd.Flags().Bool(flagSaveEnd, false, "persist the last step output of every combination")
	cmd.Flags().Bool(flagDebug, false, "run datasets sequentially and dump failures")

	return cmd
}

// printSummary writes the total time of every combination, followed by the
// payloads of every evaluated step.
func printSummary(wrt io.Writer, agg *gridpipe.AggregatedResult) error {
	_, err := fmt.Fprintln(wrt, "total elapsed")
	if err != nil {
		return errors.Wrap(err, "unable to write summary")
	}

	table := tablewriter.NewWriter(wrt)
	table.SetHeader([]string{"dataset", "combination", "elapsed"})

	for _, row := range agg.Elapsed.Total {
		table.Append([]string{row.Dataset, row.Combination, row.Elapsed.String()})
	}

	table.Render()

	for _, step := range agg.Steps {
		rows := agg.Evaluation[step]
		if len(rows) == 0 {
			continue
		}

		_, err = fmt.Fprintf(wrt, "evaluation of %s\n", step)
		if err != nil {
			return errors.Wrap(err, "unable to write summary")
		}

		table := tablewriter.NewWriter(wrt)
		table.SetHeader([]string{"dataset", "combination", "value"})

		for _, row := range rows {
			table.Append([]string{row.Dataset, row.Combination, fmt.Sprint(row.Value)})
		}

		table.Render()
	}

	return nil
}
