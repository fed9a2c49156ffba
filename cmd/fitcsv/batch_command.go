package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"fitcsv/internal/convert"
	"fitcsv/internal/csvcheck"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var flags conversionFlags
	var dataInputs []string
	var fitInputs []string
	var dir string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Convert data files and best fits together, then check they line up",
		Long: `Run the ROOT data conversion (data.csv) and the fit conversion
(best_fits.csv) back to back. Both conversions are attempted and reported even
when one fails. When both succeed the two CSV files are checked for matching
row counts and column conventions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			conv, cleanup, err := ctx.converter(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			result, batchErr := conv.Batch(cmd.Context(), convert.BatchRequest{
				Data:    dataInputs,
				Fits:    fitInputs,
				Dir:     dir,
				Options: flags.options(cmd, cfg),
			})
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderOutcome("Data", result.Data, colorize))
			fmt.Fprintln(out, renderOutcome("Fits", result.Fits, colorize))
			if result.Check != nil {
				printCheckReport(out, *result.Check, colorize)
			}
			return batchErr
		},
	}

	cmd.Flags().StringArrayVar(&dataInputs, "data", nil, "ROOT data file, or a text file listing them (repeatable)")
	cmd.Flags().StringArrayVar(&fitInputs, "fits", nil, ".fit file, or a text file listing them (repeatable)")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory for data.csv and best_fits.csv (default: working directory)")
	flags.register(cmd)
	return cmd
}

func renderOutcome(label string, outcome convert.Outcome, colorize bool) string {
	plan := outcome.Result.Plan
	switch {
	case outcome.Err != nil:
		return renderStatusLine(label, statusError, firstLine(outcome.Err.Error()), colorize)
	case plan.Preview():
		return renderStatusLine(label, statusInfo, fmt.Sprintf("%d file(s) -> %s (preview)", len(plan.Files), plan.Output), colorize)
	default:
		return renderStatusLine(label, statusOK, fmt.Sprintf("%d file(s) -> %s", len(plan.Files), plan.Output), colorize)
	}
}

func printCheckReport(out io.Writer, report csvcheck.Report, colorize bool) {
	if report.OK() {
		fmt.Fprintln(out, renderStatusLine("Alignment", statusOK,
			fmt.Sprintf("%d rows, %d value/error pairs", report.Data.Rows, len(report.Pairs)), colorize))
		return
	}
	for _, problem := range report.Problems {
		fmt.Fprintln(out, renderStatusLine("Alignment", statusError, problem.String(), colorize))
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
