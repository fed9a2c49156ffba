package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"fitcsv/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent engine runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistory(runs, shouldColorize(out)))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	return cmd
}

func renderHistory(runs []history.Run, colorize bool) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		kind := run.Kind
		if run.Format != "" {
			kind += "/" + run.Format
		}
		statusKind := statusOK
		if run.Status != history.StatusSucceeded {
			statusKind = statusError
		}
		rows = append(rows, []string{
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			kind,
			strconv.Itoa(run.FileCount),
			run.Output,
			colorizeCell(run.Status, statusKind, colorize),
			strconv.Itoa(run.ExitCode),
			run.Duration.Round(time.Millisecond).String(),
			run.Manifest,
		})
	}
	return tableView{
		headers: []string{"Started", "Kind", "Files", "Output", "Status", "Exit", "Duration", "Manifest"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	}.render()
}
