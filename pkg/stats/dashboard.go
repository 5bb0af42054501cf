// Package stats reduces progress and quiz history into dashboard figures.
package stats

import (
	"fmt"

	"darkops-lab/pkg/models"
)

type SkillLevel string

const (
	Beginner     SkillLevel = "Beginner"
	Intermediate SkillLevel = "Intermediate"
	Advanced     SkillLevel = "Advanced"
)

// SkillFor buckets the number of completed attacks.
func SkillFor(completed int) SkillLevel {
	switch {
	case completed > 5:
		return Advanced
	case completed > 2:
		return Intermediate
	default:
		return Beginner
	}
}

// Dashboard holds the aggregates shown on the landing view.
type Dashboard struct {
	AttacksCompleted int        `json:"attacks_completed"`
	TotalAttacks     int        `json:"total_attacks"`
	QuizzesTaken     int        `json:"quizzes_taken"`
	QuizAverage      float64    `json:"quiz_average"`
	TotalScore       int        `json:"total_score"`
	SkillLevel       SkillLevel `json:"skill_level"`
}

// Compute builds the dashboard from raw records.
func Compute(totalAttacks int, progress []models.Progress, results []models.QuizResult) Dashboard {
	d := Dashboard{TotalAttacks: totalAttacks, QuizzesTaken: len(results)}
	for _, p := range progress {
		if p.IsCompleted {
			d.AttacksCompleted++
		}
	}
	for _, r := range results {
		d.TotalScore += r.Score
	}
	if len(results) > 0 {
		d.QuizAverage = float64(d.TotalScore) / float64(len(results))
	}
	d.SkillLevel = SkillFor(d.AttacksCompleted)
	return d
}

// AverageLabel renders the quiz average as shown to users: "0" with no
// quizzes, otherwise one decimal place.
func (d Dashboard) AverageLabel() string {
	if d.QuizzesTaken == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", d.QuizAverage)
}

// Lines renders the headline figures.
func (d Dashboard) Lines() []string {
	return []string{
		fmt.Sprintf("Attacks Completed: %d of %d", d.AttacksCompleted, d.TotalAttacks),
		fmt.Sprintf("Quiz Average: %s%%", d.AverageLabel()),
		fmt.Sprintf("Total Score: %d (%d quizzes taken)", d.TotalScore, d.QuizzesTaken),
		fmt.Sprintf("Skill Level: %s", d.SkillLevel),
	}
}
