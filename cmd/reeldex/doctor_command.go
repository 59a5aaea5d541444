package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reeldex/internal/deps"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that required external tools are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.Check(cmd.Context(), deps.MediaTools(cfg))

			rows := make([][]string, 0, len(statuses))
			missing := 0
			for _, status := range statuses {
				state := "ok"
				detail := status.Version
				if !status.Available {
					state = "missing"
					detail = status.Detail
					missing++
				}
				rows = append(rows, []string{status.Name, state, status.Command, detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]tableColumn{
				{name: "Tool"},
				{name: "State"},
				{name: "Command"},
				{name: "Detail"},
			}, rows))

			if missing > 0 {
				return fmt.Errorf("%d required tool(s) missing", missing)
			}
			return nil
		},
	}
}
