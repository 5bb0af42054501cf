// server/internal/repository/charts.go
package repository

import (
	"context"
	"time"

	"darkops-lab/server/internal/database"
)

type TimelineDataPoint struct {
	Date     time.Time `json:"date"`
	Value    float64   `json:"value"`
	AttackID string    `json:"attackId"`
}

// GetScoreTimeline returns every quiz score of a session in completion order.
func GetScoreTimeline(ctx context.Context, sessionID string) ([]TimelineDataPoint, error) {
	data := []TimelineDataPoint{}
	query := `
		SELECT
			q.completed_at AS date,
			q.score AS value,
			q.attack_id AS attack_id
		FROM quiz_results q
		WHERE q.session_id = ?
		ORDER BY q.completed_at;
	`
	err := database.DB.WithContext(ctx).Raw(query, sessionID).Scan(&data).Error
	return data, err
}
