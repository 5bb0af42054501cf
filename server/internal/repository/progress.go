package repository

import (
	"context"
	"errors"
	"fmt"

	"darkops-lab/pkg/models"
	"darkops-lab/server/internal/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrStepOutOfRange is returned when a step index is outside the attack.
var ErrStepOutOfRange = errors.New("step out of range")

func GetProgressForSession(ctx context.Context, sessionID string) ([]models.Progress, error) {
	progress := []models.Progress{}
	err := database.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("started_at").
		Find(&progress).Error
	return progress, err
}

// UpsertProgress records that a session is on step of attack. Repeating an
// identical call changes nothing. Completion is sticky and time spent never
// decreases.
func UpsertProgress(ctx context.Context, sessionID string, attack *models.Attack, step, timeSpent int) (*models.Progress, error) {
	if !attack.HasStep(step) {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrStepOutOfRange, step, attack.LastStep())
	}
	if timeSpent < 0 {
		timeSpent = 0
	}

	progress, err := upsertProgressTx(ctx, sessionID, attack, step, timeSpent)
	// Two first writes racing on the unique index: the loser becomes an update.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		progress, err = upsertProgressTx(ctx, sessionID, attack, step, timeSpent)
	}
	return progress, err
}

func upsertProgressTx(ctx context.Context, sessionID string, attack *models.Attack, step, timeSpent int) (*models.Progress, error) {
	var progress models.Progress
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t := now()
		completes := step == attack.LastStep()
		if err := touchSessionTx(tx, sessionID, t); err != nil {
			return err
		}

		err := tx.Where("session_id = ? AND attack_id = ?", sessionID, attack.ID).First(&progress).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			progress = models.Progress{
				ID:          uuid.NewString(),
				SessionID:   sessionID,
				AttackID:    attack.ID,
				CurrentStep: step,
				TotalSteps:  len(attack.Steps),
				TimeSpent:   timeSpent,
				IsCompleted: completes,
				Revision:    1,
				StartedAt:   t,
				UpdatedAt:   t,
			}
			if completes {
				progress.CompletedAt = &t
			}
			if err := tx.Create(&progress).Error; err != nil {
				return err
			}
			if completes {
				return refreshSessionStats(tx, sessionID)
			}
			return nil
		}
		if err != nil {
			return err
		}

		newlyCompleted := completes && !progress.IsCompleted
		if progress.CurrentStep == step && timeSpent <= progress.TimeSpent && !newlyCompleted {
			return nil
		}

		progress.CurrentStep = step
		if timeSpent > progress.TimeSpent {
			progress.TimeSpent = timeSpent
		}
		progress.TotalSteps = len(attack.Steps)
		progress.Revision++
		progress.UpdatedAt = t
		if newlyCompleted {
			progress.IsCompleted = true
			progress.CompletedAt = &t
		}
		if err := tx.Save(&progress).Error; err != nil {
			return err
		}
		if newlyCompleted {
			return refreshSessionStats(tx, sessionID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &progress, nil
}
