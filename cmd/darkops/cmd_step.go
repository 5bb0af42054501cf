package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"darkops-lab/pkg/client"
	"darkops-lab/pkg/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newStepCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "step <attack-id> [next|prev|<n>]",
		Short: "Show or move through the steps of an attack",
		Long: `Shows the step you are on. With "next", "prev" or a step number the
position moves first; numbers outside the attack are clamped.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			attack, err := a.client.Tracker.GetAttack(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load attack %q: %w", args[0], err)
			}
			nav, err := a.client.Tracker.Navigate(ctx, attack)
			if err != nil {
				a.log.Warn("Starting from the first step", zap.Error(err))
			}

			if len(args) == 2 {
				switch args[1] {
				case "next", "n":
					_, err = nav.Next(ctx)
				case "prev", "p":
					_, err = nav.Previous(ctx)
				default:
					n, convErr := strconv.Atoi(args[1])
					if convErr != nil {
						return fmt.Errorf("%w: %q is not next, prev or a step number", client.ErrValidation, args[1])
					}
					_, err = nav.Jump(ctx, n-1)
				}
				switch {
				case errors.Is(err, client.ErrNoSession):
					a.log.Debug("No session; step not recorded")
				case errors.Is(err, client.ErrStaleResponse):
					// a newer move already landed
				case err != nil:
					a.log.Warn("Failed to record step", zap.Error(err))
				}
			}

			printStep(cmd.OutOrStdout(), nav)
			return nil
		},
	}
}

func printStep(w io.Writer, nav *client.StepNavigator) {
	attack := nav.Attack()
	step := nav.Step()
	fmt.Fprintf(w, "%s - step %d of %d\n", attack.Name, nav.Current()+1, len(attack.Steps))
	fmt.Fprintf(w, "%s\n%s\n", step.Title, step.Description)
	if step.Visualization != "" {
		fmt.Fprintf(w, "[%s]\n", step.Visualization)
	}
	if nav.IsLast() {
		printDefenses(w, attack)
	}
}

func printDefenses(w io.Writer, attack *models.Attack) {
	fmt.Fprintln(w, "\nHow to defend:")
	for _, d := range attack.Defenses {
		fmt.Fprintf(w, "  - %s (%s)\n", d.Strategy, d.Effectiveness)
	}
}
