package models

import "time"

// Progress is the step position of a session within one attack.
type Progress struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	SessionID   string     `gorm:"size:36;uniqueIndex:idx_progress_session_attack" json:"session_id"`
	AttackID    string     `gorm:"size:64;uniqueIndex:idx_progress_session_attack" json:"attack_id"`
	CurrentStep int        `json:"current_step"`
	TotalSteps  int        `json:"total_steps"`
	TimeSpent   int        `json:"time_spent"`
	IsCompleted bool       `json:"is_completed"`
	Revision    int64      `json:"revision"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ZeroProgress is the implicit "not started" state for an attack with no
// stored record.
func ZeroProgress(sessionID string, attack *Attack) Progress {
	return Progress{
		SessionID:  sessionID,
		AttackID:   attack.ID,
		TotalSteps: len(attack.Steps),
	}
}

// UpdateProgressRequest is the body of POST /api/progress.
type UpdateProgressRequest struct {
	SessionID   string `json:"session_id" binding:"required"`
	AttackID    string `json:"attack_id" binding:"required"`
	CurrentStep int    `json:"current_step"`
	TimeSpent   int    `json:"time_spent"`
}
