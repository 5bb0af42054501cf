package repository

import (
	"context"
	"time"

	"darkops-lab/pkg/models"
	"darkops-lab/server/internal/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// now is swapped by tests that need a fixed clock.
var now = func() time.Time { return time.Now().UTC() }

func CreateSession(ctx context.Context, nickname *string) (*models.Session, error) {
	t := now()
	session := &models.Session{
		ID:         uuid.NewString(),
		Nickname:   nickname,
		CreatedAt:  t,
		LastActive: t,
	}
	result := database.DB.WithContext(ctx).Create(session)
	return session, result.Error
}

func GetSession(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	result := database.DB.WithContext(ctx).First(&session, "id = ?", id)
	return &session, result.Error
}

// TouchSession refreshes last_active and returns the session. Unknown ids
// yield gorm.ErrRecordNotFound.
func TouchSession(ctx context.Context, id string) (*models.Session, error) {
	result := database.DB.WithContext(ctx).Model(&models.Session{}).Where("id = ?", id).Update("last_active", now())
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return GetSession(ctx, id)
}

// UpdateNickname changes the nickname in place, keeping the identifier.
func UpdateNickname(ctx context.Context, id string, nickname string) (*models.Session, error) {
	result := database.DB.WithContext(ctx).Model(&models.Session{}).Where("id = ?", id).Updates(map[string]interface{}{
		"nickname":    nickname,
		"last_active": now(),
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return GetSession(ctx, id)
}

// touchSessionTx marks the session active inside a write transaction.
func touchSessionTx(tx *gorm.DB, sessionID string, t time.Time) error {
	return tx.Model(&models.Session{}).Where("id = ?", sessionID).Update("last_active", t).Error
}

// refreshSessionStats recomputes the denormalised totals on the session row.
func refreshSessionStats(tx *gorm.DB, sessionID string) error {
	var completed int64
	if err := tx.Model(&models.Progress{}).
		Where("session_id = ? AND is_completed = ?", sessionID, true).
		Count(&completed).Error; err != nil {
		return err
	}

	var total int64
	if err := tx.Model(&models.QuizResult{}).
		Where("session_id = ?", sessionID).
		Select("COALESCE(SUM(score), 0)").
		Scan(&total).Error; err != nil {
		return err
	}

	return tx.Model(&models.Session{}).Where("id = ?", sessionID).Updates(map[string]interface{}{
		"total_attacks_completed": completed,
		"total_quiz_score":        total,
	}).Error
}
