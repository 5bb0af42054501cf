// Package quiz grades quiz attempts and holds the in-memory state of an
// attempt in progress.
package quiz

import (
	"errors"
	"math"

	"darkops-lab/pkg/models"
)

var (
	ErrNoQuestions      = errors.New("quiz has no questions")
	ErrOptionOutOfRange = errors.New("option index out of range")
	ErrNotAnswered      = errors.New("current question not answered")
	ErrLastQuestion     = errors.New("already at the last question")
	ErrNotFinished      = errors.New("not every question is answered")
)

// Score returns round(100*correct/total), or 0 when total is 0.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// Result is a graded attempt.
type Result struct {
	Score   int
	Correct int
	Total   int
	Answers []models.QuizAnswer
}

// Grade compares each selection with the stored correct index. Missing or
// negative selections count as wrong.
func Grade(q *models.Quiz, selections []int) Result {
	total := len(q.Questions)
	res := Result{Total: total, Answers: make([]models.QuizAnswer, total)}
	for i, question := range q.Questions {
		selected := -1
		if i < len(selections) {
			selected = selections[i]
		}
		ok := selected == question.Correct
		if ok {
			res.Correct++
		}
		res.Answers[i] = models.QuizAnswer{
			QuestionIndex: i,
			Selected:      selected,
			Correct:       question.Correct,
			IsCorrect:     ok,
		}
	}
	res.Score = Score(res.Correct, total)
	return res
}

// Attempt tracks one pass through a quiz. Nothing is submitted until Finish.
type Attempt struct {
	quiz       *models.Quiz
	cursor     int
	selections []int
}

// NewAttempt starts an attempt at the first question.
func NewAttempt(q *models.Quiz) (*Attempt, error) {
	if q == nil || len(q.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	a := &Attempt{quiz: q}
	a.Restart()
	return a, nil
}

// Restart clears every selection and returns to the first question.
func (a *Attempt) Restart() {
	a.cursor = 0
	a.selections = make([]int, len(a.quiz.Questions))
	for i := range a.selections {
		a.selections[i] = -1
	}
}

func (a *Attempt) Cursor() int { return a.cursor }

func (a *Attempt) Total() int { return len(a.quiz.Questions) }

// Current returns the question under the cursor.
func (a *Attempt) Current() models.Question {
	return a.quiz.Questions[a.cursor]
}

// IsLast reports whether the cursor is on the final question.
func (a *Attempt) IsLast() bool {
	return a.cursor == len(a.quiz.Questions)-1
}

// Answered reports whether question i has a selection.
func (a *Attempt) Answered(i int) bool {
	return i >= 0 && i < len(a.selections) && a.selections[i] >= 0
}

// Select records option for the current question. Changing an answer before
// advancing is allowed.
func (a *Attempt) Select(option int) error {
	if option < 0 || option >= len(a.Current().Options) {
		return ErrOptionOutOfRange
	}
	a.selections[a.cursor] = option
	return nil
}

// CanAdvance gates the next-question control.
func (a *Attempt) CanAdvance() bool {
	return a.Answered(a.cursor) && !a.IsLast()
}

// CanFinish gates the submit control.
func (a *Attempt) CanFinish() bool {
	return a.Answered(a.cursor) && a.IsLast()
}

// Next moves to the following question.
func (a *Attempt) Next() error {
	if !a.Answered(a.cursor) {
		return ErrNotAnswered
	}
	if a.IsLast() {
		return ErrLastQuestion
	}
	a.cursor++
	return nil
}

// Finish grades the attempt once the last question is answered.
func (a *Attempt) Finish() (Result, error) {
	for i := range a.selections {
		if !a.Answered(i) {
			return Result{}, ErrNotFinished
		}
	}
	return Grade(a.quiz, a.selections), nil
}
