package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"reeldex/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set paths.library_dir before running a scan.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			if exists {
				fmt.Fprintf(out, "Configuration: %s\n\n", path)
			} else {
				fmt.Fprintf(out, "No config file at %s; showing defaults.\n\n", path)
			}

			rows := [][]string{
				{"paths.library_dir", cfg.Paths.LibraryDir},
				{"paths.data_dir", cfg.Paths.DataDir},
				{"paths.log_dir", cfg.Paths.LogDir},
				{"scan.workers", workersLabel(cfg.Scan.Workers)},
				{"scan.probe_timeout", fmt.Sprintf("%ds", cfg.Scan.ProbeTimeout)},
				{"scan.max_file_size_gib", fmt.Sprintf("%d", cfg.Scan.MaxFileSizeGiB)},
				{"verify.workers", fmt.Sprintf("%d", cfg.Verify.Workers)},
				{"verify.decode_timeout", fmt.Sprintf("%ds", cfg.Verify.DecodeTimeout)},
				{"verify.keyframe_timeout", fmt.Sprintf("%ds", cfg.Verify.KeyframeTimeout)},
				{"media_server.enabled", fmt.Sprintf("%t", cfg.MediaServer.Enabled)},
				{"media_server.url", cfg.MediaServer.URL},
				{"logging.format", cfg.Logging.Format},
				{"logging.level", cfg.Logging.Level},
			}
			fmt.Fprintln(out, renderTable([]tableColumn{{name: "Setting"}, {name: "Value"}}, rows))
			return nil
		},
	}
}

func workersLabel(workers int) string {
	if workers == 0 {
		return "auto (half of CPUs)"
	}
	return fmt.Sprintf("%d", workers)
}
