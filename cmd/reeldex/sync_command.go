package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"reeldex/internal/catalog"
	"reeldex/internal/config"
	"reeldex/internal/mediaserver"
	"reeldex/internal/reconcile"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the catalog against the media server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store, logger *slog.Logger) error {
				if !cfg.MediaServer.Enabled {
					return errors.New("media server sync is disabled; set media_server.enabled in the config")
				}

				runCtx, cancel := signalContext()
				defer cancel()

				client := mediaserver.NewClient(cfg.MediaServer.URL, cfg.MediaServer.APIKey, cfg.MediaServer.PageSize)
				items, err := client.FetchMovies(runCtx)
				if err != nil {
					return fmt.Errorf("fetch media server catalog: %w", err)
				}

				report, err := reconcile.New(store, logger).Sync(runCtx, items)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable([]tableColumn{{name: "Sync"}, {name: "Value", numeric: true}}, [][]string{
					{"Job", report.JobID},
					{"Items", strconv.Itoa(report.Total)},
					{"Matched", strconv.Itoa(report.Matched)},
					{"Ambiguous", strconv.Itoa(report.Ambiguous)},
					{"Unmatched", strconv.Itoa(report.Unmatched)},
				}))

				if report.Ambiguous > 0 || report.Unmatched > 0 {
					fmt.Fprintf(out, "\n%d item(s) await review in the match log.\n", report.Ambiguous+report.Unmatched)
				}
				return nil
			})
		},
	}
}
