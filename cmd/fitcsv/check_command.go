package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fitcsv/internal/csvcheck"
)

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "check <data.csv> <fits.csv>",
		Short:       "Check that a data CSV and a fit CSV describe the same bins",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := csvcheck.Check(args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			rows := [][]string{
				{report.Data.Path, strconv.Itoa(report.Data.Rows), strconv.Itoa(len(report.Data.Columns))},
				{report.Fits.Path, strconv.Itoa(report.Fits.Rows), strconv.Itoa(len(report.Fits.Columns))},
			}
			fmt.Fprintln(out, tableView{
				headers: []string{"File", "Rows", "Columns"},
				rows:    rows,
				aligns:  []columnAlignment{alignLeft, alignRight, alignRight},
			}.render())
			printCheckReport(out, report, colorize)
			return report.Err()
		},
	}
}
