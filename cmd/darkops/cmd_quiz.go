package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"darkops-lab/pkg/models"
	"darkops-lab/pkg/quiz"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var errQuizAbandoned = errors.New("quiz abandoned")

func newQuizCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "quiz <attack-id>",
		Short: "Take the quiz for an attack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			attack, err := a.client.Tracker.GetAttack(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load attack %q: %w", args[0], err)
			}
			attempt, err := quiz.NewAttempt(attack.Quiz)
			if err != nil {
				return fmt.Errorf("%s: %w", attack.Name, err)
			}

			w := cmd.OutOrStdout()
			result, err := runAttempt(ctx, cmd.InOrStdin(), w, attempt)
			if err != nil {
				return err
			}
			printQuizResult(w, attack, result)

			// Submission failure is logged by the tracker and does not
			// change the local result.
			_, _ = a.client.Tracker.SubmitQuiz(ctx, attack.ID, result)
			return nil
		},
	}
}

// runAttempt runs the interactive quiz until it is finished or abandoned.
func runAttempt(ctx context.Context, in io.Reader, out io.Writer, attempt *quiz.Attempt) (quiz.Result, error) {
	p := tea.NewProgram(newQuizModel(attempt), tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return quiz.Result{}, fmt.Errorf("quiz interface failed: %w", err)
	}
	m := final.(quizModel)
	if m.result == nil {
		return quiz.Result{}, errQuizAbandoned
	}
	return *m.result, nil
}

func printQuizResult(w io.Writer, attack *models.Attack, r quiz.Result) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Score: %d%% (%d of %d correct)", r.Score, r.Correct, r.Total)))
	for _, ans := range r.Answers {
		q := attack.Quiz.Questions[ans.QuestionIndex]
		mark := correctStyle.Render("correct")
		if !ans.IsCorrect {
			mark = wrongStyle.Render("wrong, answer: " + q.Options[ans.Correct])
		}
		fmt.Fprintf(w, "  %d. %s\n     %s\n", ans.QuestionIndex+1, mark, mutedStyle.Render(q.Explanation))
	}
}
