package services

import (
	"context"
	"fmt"
	"time"

	"darkops-lab/server/internal/config"
	"darkops-lab/server/internal/repository"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Janitor periodically removes sessions that have been idle longer than the
// configured retention. Clients holding a pruned identifier fall through to
// creating a new session.
type Janitor struct {
	log       *zap.Logger
	scheduler *gocron.Scheduler
	retention time.Duration
	interval  time.Duration
}

func NewJanitor(log *zap.Logger, conf config.SessionsConfig) *Janitor {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Janitor{
		log:       log.Named("janitor"),
		scheduler: s,
		retention: conf.Retention,
		interval:  conf.JanitorInterval,
	}
}

// Start schedules pruning in the background. A zero retention disables it.
func (j *Janitor) Start() error {
	if j.retention <= 0 {
		j.log.Info("Session retention disabled; janitor not started")
		return nil
	}
	if j.interval <= 0 {
		return fmt.Errorf("janitor interval must be positive, got %s", j.interval)
	}

	if _, err := j.scheduler.Every(j.interval).Do(j.run); err != nil {
		return fmt.Errorf("failed to schedule session janitor: %w", err)
	}
	j.scheduler.StartAsync()
	j.log.Info("Starting session janitor...",
		zap.Duration("retention", j.retention),
		zap.Duration("interval", j.interval),
	)
	return nil
}

// Stop terminates the scheduler.
func (j *Janitor) Stop() {
	j.scheduler.Stop()
}

func (j *Janitor) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := j.Prune(ctx, time.Now().UTC()); err != nil {
		j.log.Error("Failed to prune inactive sessions", zap.Error(err))
	}
}

// Prune removes sessions idle since before now minus the retention.
func (j *Janitor) Prune(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-j.retention)
	removed, err := repository.DeleteInactiveSessions(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		j.log.Info("Pruned inactive sessions", zap.Int64("removed", removed), zap.Time("cutoff", cutoff))
	} else {
		j.log.Debug("No inactive sessions to prune", zap.Time("cutoff", cutoff))
	}
	return removed, nil
}
