package models

import "time"

// Session is an anonymous, client-persisted identity scoping progress and
// quiz results.
type Session struct {
	ID                    string    `gorm:"primaryKey;size:36" json:"id"`
	Nickname              *string   `gorm:"size:64" json:"nickname"`
	CreatedAt             time.Time `json:"created_at"`
	LastActive            time.Time `gorm:"index" json:"last_active"`
	TotalAttacksCompleted int       `json:"total_attacks_completed"`
	TotalQuizScore        int       `json:"total_quiz_score"`
}

// DisplayName returns the nickname or the anonymous placeholder.
func (s *Session) DisplayName() string {
	if s.Nickname == nil || *s.Nickname == "" {
		return "Anonymous Operator"
	}
	return *s.Nickname
}

// CreateSessionRequest is the body of POST /api/sessions.
type CreateSessionRequest struct {
	Nickname *string `json:"nickname,omitempty"`
}

// UpdateSessionRequest is the body of PATCH /api/sessions/{id}.
type UpdateSessionRequest struct {
	Nickname string `json:"nickname"`
}
