package repository

import (
	"context"
	"time"

	"darkops-lab/pkg/models"
	"darkops-lab/server/internal/database"

	"gorm.io/gorm"
)

// DeleteInactiveSessions removes sessions idle since before, with their
// progress and quiz results. It returns the number of sessions removed.
func DeleteInactiveSessions(ctx context.Context, before time.Time) (int64, error) {
	var removed int64
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale := tx.Model(&models.Session{}).Select("id").Where("last_active < ?", before)

		if err := tx.Where("session_id IN (?)", stale).Delete(&models.Progress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id IN (?)", stale).Delete(&models.QuizResult{}).Error; err != nil {
			return err
		}
		result := tx.Where("last_active < ?", before).Delete(&models.Session{})
		removed = result.RowsAffected
		return result.Error
	})
	return removed, err
}

// CountSessions returns the number of stored sessions.
func CountSessions(ctx context.Context) (int64, error) {
	var count int64
	err := database.DB.WithContext(ctx).Model(&models.Session{}).Count(&count).Error
	return count, err
}
