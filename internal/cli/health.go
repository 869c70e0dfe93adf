package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newHealthCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check backend health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			health, err := app.Client.CheckHealth(cmd.Context())
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, field("Status", health.Status))
			fmt.Fprintln(out, field("Timestamp", health.Timestamp))

			names := make([]string, 0, len(health.Services))
			for name := range health.Services {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintln(out, "  "+field(name, health.Services[name]))
			}
			return nil
		},
	}
}

func newInfoCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show backend version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := app.Client.BasicInfo(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get backend info: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render(info.Message))
			fmt.Fprintln(out, field("Version", info.Version))
			fmt.Fprintln(out, field("Docs", info.Docs))
			fmt.Fprintln(out, field("API", app.Client.BaseURL()))
			return nil
		},
	}
}
