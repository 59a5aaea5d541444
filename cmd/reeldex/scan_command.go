package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"reeldex/internal/catalog"
	"reeldex/internal/config"
	"reeldex/internal/probe"
	"reeldex/internal/scan"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var force bool
	var workers int

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Walk the library and probe new or changed files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLockedStore(func(cfg *config.Config, store *catalog.Store, logger *slog.Logger) error {
				runCtx, cancel := signalContext()
				defer cancel()

				prober := probe.NewFFprobe(cfg.FFprobeBinary(), time.Duration(cfg.Scan.ProbeTimeout)*time.Second)
				scanner := scan.NewScanner(cfg.Paths.LibraryDir, store, prober, logger)

				opts := scan.Options{
					Force:          force || cfg.Scan.ForceRescan,
					Workers:        workers,
					MaxErrorSample: cfg.Scan.MaxErrorSample,
				}
				if workers == 0 {
					opts.Workers = cfg.Scan.Workers
				}
				if cfg.Scan.MaxFileSizeGiB > 0 {
					opts.MaxFileSizeBytes = int64(cfg.Scan.MaxFileSizeGiB) << 30
				}
				if stderrIsTerminal() {
					opts.Progress = progressPrinter(cmd, time.Duration(cfg.Scan.ProgressSampleMilli)*time.Millisecond)
				}

				summary, err := scanner.Run(runCtx, opts)
				if err != nil {
					return err
				}
				printScanSummary(cmd, summary)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-probe files that already have a successful scan")
	cmd.Flags().IntVar(&workers, "workers", 0, "Probe worker count (0 = half of available CPUs)")
	return cmd
}

// progressPrinter samples progress emissions so a fast scan does not flood
// the terminal.
func progressPrinter(cmd *cobra.Command, interval time.Duration) func(scan.Progress) {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	var last time.Time
	return func(p scan.Progress) {
		now := time.Now()
		if p.Phase == scan.PhaseProcessing && now.Sub(last) < interval {
			return
		}
		last = now
		fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %d/%d files, %d ok, %d skipped, %d errors, %.1f files/min\n",
			p.Phase, p.Completed, p.FileCount, p.OK, p.Skipped, p.Errors, p.RatePerMinute)
	}
}

func printScanSummary(cmd *cobra.Command, summary *scan.Summary) {
	out := cmd.OutOrStdout()

	rows := [][]string{
		{"Run", strconv.FormatInt(summary.RunID, 10)},
		{"Folders", strconv.Itoa(summary.FolderCount)},
		{"Files", strconv.Itoa(summary.FileCount)},
		{"Scanned", strconv.Itoa(summary.OK)},
		{"Skipped", strconv.Itoa(summary.Skipped)},
		{"Errors", strconv.Itoa(summary.Errors)},
		{"Duration", summary.Duration.Round(time.Second).String()},
	}
	if summary.Cancelled {
		rows = append(rows, []string{"Note", "cancelled"})
	}
	fmt.Fprintln(out, renderTable([]tableColumn{{name: "Scan"}, {name: "Value", numeric: true}}, rows))

	if len(summary.ErrorSample) > 0 {
		fmt.Fprintf(out, "\nFirst %d error(s):\n", len(summary.ErrorSample))
		for _, sample := range summary.ErrorSample {
			fmt.Fprintf(out, "  %s\n", sample)
		}
	}
}
