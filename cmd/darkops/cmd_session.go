package main

import (
	"fmt"
	"io"
	"strings"

	"darkops-lab/pkg/client"
	"darkops-lab/pkg/models"

	"github.com/spf13/cobra"
)

func newSessionCmd(a *app) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show the current anonymous session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if reset {
				if err := a.client.Sessions.Forget(cmd.Context()); err != nil {
					return err
				}
				s, err := a.client.Sessions.CreateSession(cmd.Context(), nil)
				if err != nil {
					return fmt.Errorf("failed to start a new session: %w", err)
				}
				printSession(cmd.OutOrStdout(), s)
				return nil
			}

			s := a.client.Sessions.Current()
			if s == nil {
				return fmt.Errorf("backend unavailable at %s: %w", a.client.Config().BaseURL, client.ErrNoSession)
			}
			printSession(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "forget the stored session and start a new one")
	return cmd
}

func newNicknameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "nickname <name>",
		Short: "Set the display name of the current session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.client.Sessions.SetNickname(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("failed to set nickname: %w", err)
			}
			printSession(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func printSession(w io.Writer, s *models.Session) {
	fmt.Fprintf(w, "Operator:  %s\n", s.DisplayName())
	fmt.Fprintf(w, "Session:   %s\n", s.ID)
	fmt.Fprintf(w, "Since:     %s\n", s.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Completed: %d attacks, %d quiz points\n", s.TotalAttacksCompleted, s.TotalQuizScore)
}
