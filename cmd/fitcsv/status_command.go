package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fitcsv/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the ROOT environment, macros, and working directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(cfg)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				kind, label := statusOK, "OK"
				switch {
				case !r.Passed && r.Optional:
					kind, label = statusWarn, "WARN"
				case !r.Passed:
					kind, label = statusError, "ERROR"
				}
				rows = append(rows, []string{r.Name, colorizeCell(label, kind, colorize), r.Detail})
			}
			footer := ""
			if ctx.configPath != "" {
				footer = "Config: " + ctx.configPath
			}
			fmt.Fprintln(out, tableView{
				title:   "fitcsv status",
				headers: []string{"Check", "Status", "Detail"},
				rows:    rows,
				footer:  footer,
			}.render())

			if preflight.Failed(results) {
				return errors.New("one or more required checks failed")
			}
			return nil
		},
	}
}
