package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"reeldex/internal/catalog"
	"reeldex/internal/config"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog totals and outstanding work",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store, logger *slog.Logger) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}

				rows := [][]string{
					{"Movies", strconv.Itoa(stats.Movies)},
					{"Files", strconv.Itoa(stats.Files)},
					{"Scanned", strconv.Itoa(stats.Scanned)},
					{"Scan errors", strconv.Itoa(stats.ScanErrors)},
					{"Library size", humanSize(stats.TotalBytes)},
					{"Verify pending", strconv.Itoa(stats.VerifyPending)},
					{"Verify passed", strconv.Itoa(stats.VerifyPass)},
					{"Verify failed", strconv.Itoa(stats.VerifyFail)},
					{"Verify errored", strconv.Itoa(stats.VerifyError)},
					{"Matches awaiting review", strconv.Itoa(stats.PendingReview)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]tableColumn{{name: "Catalog"}, {name: "Value", numeric: true}}, rows))
				return nil
			})
		},
	}
}

func humanSize(bytes int64) string {
	if bytes <= 0 {
		return "-"
	}
	return humanize.IBytes(uint64(bytes))
}
