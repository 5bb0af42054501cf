package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your overall progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.client.Tracker.Dashboard(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load dashboard: %w", err)
			}
			w := cmd.OutOrStdout()
			if s := a.client.Sessions.Current(); s != nil {
				fmt.Fprintf(w, "Welcome back, %s\n\n", s.DisplayName())
			}
			for _, line := range d.Lines() {
				fmt.Fprintln(w, line)
			}
			return nil
		},
	}
}
