package main

import (
	"fmt"
	"io"
	"strings"

	"darkops-lab/pkg/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAttacksCmd(a *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "attacks",
		Short: "List attack simulations",
		Long: `Lists every attack simulation with your progress.

Categories: ` + categoryIDs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			attacks, err := a.client.Tracker.ListAttacks(ctx)
			if err != nil {
				return fmt.Errorf("failed to list attacks: %w", err)
			}

			w := cmd.OutOrStdout()
			if category != "" {
				var c models.Category
				c, attacks = models.FilterByCategory(attacks, category)
				fmt.Fprintf(w, "%s: %s\n\n", c.Name, c.Description)
			}
			if len(attacks) == 0 {
				fmt.Fprintln(w, "No attacks found.")
				return nil
			}

			progress := map[string]models.Progress{}
			all, err := a.client.Tracker.GetProgress(ctx)
			if err != nil {
				a.log.Debug("Listing without progress", zap.Error(err))
			}
			for _, p := range all {
				progress[p.AttackID] = p
			}

			for _, attack := range attacks {
				status := "not started"
				if p, ok := progress[attack.ID]; ok {
					status = fmt.Sprintf("step %d/%d", p.CurrentStep+1, p.TotalSteps)
					if p.IsCompleted {
						status = "completed"
					}
				}
				fmt.Fprintf(w, "%-20s %-32s %-18s %-6s %3d min  %s\n",
					attack.ID, attack.Name, attack.Category, attack.Difficulty, attack.EstimatedTime, status)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only show attacks in this category id")
	return cmd
}

func newAttackCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "attack <id>",
		Short: "Show an attack, its steps and defenses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			attack, err := a.client.Tracker.GetAttack(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load attack %q: %w", args[0], err)
			}
			p, err := a.client.Tracker.ProgressFor(ctx, attack)
			if err != nil {
				a.log.Warn("Progress unavailable", zap.Error(err))
			}
			printAttack(cmd.OutOrStdout(), attack, p)
			return nil
		},
	}
}

func printAttack(w io.Writer, attack *models.Attack, p models.Progress) {
	fmt.Fprintf(w, "%s [%s, %s, ~%d min]\n", attack.Name, attack.Category, attack.Difficulty, attack.EstimatedTime)
	fmt.Fprintln(w, attack.Description)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Steps:")
	for i, s := range attack.Steps {
		marker := " "
		if i == p.CurrentStep {
			marker = ">"
		}
		fmt.Fprintf(w, " %s %d. %s\n", marker, i+1, s.Title)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Defenses:")
	for _, d := range attack.Defenses {
		fmt.Fprintf(w, "  - %s (%s): %s\n", d.Strategy, d.Effectiveness, d.Description)
	}

	if p.IsCompleted {
		fmt.Fprintln(w, "\nCompleted.")
	}
	if attack.QuestionCount() > 0 {
		fmt.Fprintf(w, "\nQuiz: %d questions. Run `darkops quiz %s`.\n", attack.QuestionCount(), attack.ID)
	}
}

func categoryIDs() string {
	ids := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		ids = append(ids, c.ID)
	}
	return strings.Join(ids, ", ")
}
