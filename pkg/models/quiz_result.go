package models

import "time"

// QuizAnswer is the outcome of one question in a submitted attempt.
type QuizAnswer struct {
	QuestionIndex int  `json:"question_index"`
	Selected      int  `json:"selected"`
	Correct       int  `json:"correct"`
	IsCorrect     bool `json:"is_correct"`
}

// QuizResult is an immutable record of one completed quiz attempt. Retakes
// append new rows.
type QuizResult struct {
	ID             string       `gorm:"primaryKey;size:36" json:"id"`
	SessionID      string       `gorm:"size:36;index" json:"session_id"`
	AttackID       string       `gorm:"size:64;index" json:"attack_id"`
	Score          int          `json:"score"`
	CorrectCount   int          `json:"correct_count"`
	TotalQuestions int          `json:"total_questions"`
	Answers        []QuizAnswer `gorm:"serializer:json" json:"answers"`
	CompletedAt    time.Time    `gorm:"index" json:"completed_at"`
}

// SubmitQuizRequest is the body of POST /api/quiz.
type SubmitQuizRequest struct {
	SessionID string       `json:"session_id" binding:"required"`
	AttackID  string       `json:"attack_id" binding:"required"`
	Score     int          `json:"score"`
	Answers   []QuizAnswer `json:"answers"`
}
