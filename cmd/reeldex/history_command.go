package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"reeldex/internal/catalog"
	"reeldex/internal/config"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent scan runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store, logger *slog.Logger) error {
				runs, err := store.ScanRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No scan runs recorded yet.")
					return nil
				}

				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					status := "running"
					if run.FinishedAt != nil {
						status = "finished"
					}
					if run.Notes != "" {
						status = run.Notes
					}
					rows = append(rows, []string{
						strconv.FormatInt(run.ID, 10),
						run.StartedAt.Local().Format("2006-01-02 15:04"),
						strconv.Itoa(run.FolderCount),
						strconv.Itoa(run.FileCount),
						strconv.Itoa(run.OKCount),
						strconv.Itoa(run.ErrorCount),
						(time.Duration(run.DurationSeconds * float64(time.Second))).Round(time.Second).String(),
						status,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]tableColumn{
					{name: "Run", numeric: true},
					{name: "Started"},
					{name: "Folders", numeric: true},
					{name: "Files", numeric: true},
					{name: "OK", numeric: true},
					{name: "Errors", numeric: true},
					{name: "Duration", numeric: true},
					{name: "Status"},
				}, rows))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}
