package repository

import (
	"context"

	"darkops-lab/pkg/models"
	"darkops-lab/server/internal/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaveQuizResult appends a graded attempt and refreshes the session totals
// in the same transaction.
func SaveQuizResult(ctx context.Context, result *models.QuizResult) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.CompletedAt.IsZero() {
		result.CompletedAt = now()
	}
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := touchSessionTx(tx, result.SessionID, now()); err != nil {
			return err
		}
		if err := tx.Create(result).Error; err != nil {
			return err
		}
		return refreshSessionStats(tx, result.SessionID)
	})
}

func GetQuizResults(ctx context.Context, sessionID string) ([]models.QuizResult, error) {
	results := []models.QuizResult{}
	err := database.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("completed_at").
		Find(&results).Error
	return results, err
}
