package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"reeldex/internal/catalog"
	"reeldex/internal/config"
	"reeldex/internal/verify"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var workers int

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Deep-decode scanned files and flag playback defects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLockedStore(func(cfg *config.Config, store *catalog.Store, logger *slog.Logger) error {
				runCtx, cancel := signalContext()
				defer cancel()

				engine := verify.NewEngine(verify.Config{
					FFmpegBinary:    cfg.FFmpegBinary(),
					FFprobeBinary:   cfg.FFprobeBinary(),
					DecodeTimeout:   time.Duration(cfg.Verify.DecodeTimeout) * time.Second,
					KeyframeTimeout: time.Duration(cfg.Verify.KeyframeTimeout) * time.Second,
					KeyframeWindow:  time.Duration(cfg.Verify.KeyframeWindow) * time.Second,
				}, store, logger)

				opts := verify.Options{Workers: workers, All: all}
				if workers == 0 {
					opts.Workers = cfg.Verify.Workers
				}
				if stderrIsTerminal() {
					opts.Progress = func(done, total int) {
						fmt.Fprintf(cmd.ErrOrStderr(), "verified %d/%d\n", done, total)
					}
				}

				report, err := engine.Run(runCtx, opts)
				if err != nil {
					return err
				}
				printVerifyReport(cmd, report)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Re-verify every scanned file, not just pending ones")
	cmd.Flags().IntVar(&workers, "workers", 0, "Decode worker count")
	return cmd
}

func printVerifyReport(cmd *cobra.Command, report *verify.Report) {
	out := cmd.OutOrStdout()

	rows := [][]string{
		{"Files", strconv.Itoa(report.Total)},
		{"Passed", strconv.Itoa(report.Passed)},
		{"Failed", strconv.Itoa(report.Failed)},
		{"Errored", strconv.Itoa(report.Errored)},
	}
	if report.Cancelled {
		rows = append(rows, []string{"Note", "cancelled"})
	}
	fmt.Fprintln(out, renderTable([]tableColumn{{name: "Verify"}, {name: "Value", numeric: true}}, rows))

	if len(report.ErrorSample) > 0 {
		fmt.Fprintf(out, "\nFirst %d problem(s):\n", len(report.ErrorSample))
		for _, sample := range report.ErrorSample {
			fmt.Fprintf(out, "  %s\n", sample)
		}
	}
}
