package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"darkops-lab/pkg/models"
	"darkops-lab/pkg/quiz"
	"darkops-lab/pkg/stats"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Tracker reads the catalog and reads/writes progress and quiz results for
// the session held by its Manager.
type Tracker struct {
	api      *api
	sessions *Manager
	log      *zap.Logger

	mu  sync.Mutex
	seq map[string]uint64
}

func newTracker(a *api, sessions *Manager, log *zap.Logger) *Tracker {
	return &Tracker{api: a, sessions: sessions, log: log.Named("tracker"), seq: make(map[string]uint64)}
}

func (t *Tracker) ListAttacks(ctx context.Context) ([]models.Attack, error) {
	var attacks []models.Attack
	if err := t.api.get(ctx, "list attacks", "/attacks", &attacks); err != nil {
		return nil, err
	}
	return attacks, nil
}

func (t *Tracker) GetAttack(ctx context.Context, id string) (*models.Attack, error) {
	var attack models.Attack
	if err := t.api.get(ctx, "get attack", "/attacks/"+url.PathEscape(id), &attack); err != nil {
		return nil, err
	}
	return &attack, nil
}

// GetProgress returns every stored progress row of the current session.
func (t *Tracker) GetProgress(ctx context.Context) ([]models.Progress, error) {
	id, ok := t.sessions.currentID()
	if !ok {
		return nil, ErrNoSession
	}
	progress := []models.Progress{}
	if err := t.api.get(ctx, "get progress", "/progress/"+url.PathEscape(id), &progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// ProgressFor always returns a populated Progress for attack, synthesising
// the zero state when nothing is stored. The error reports a failed fetch;
// the returned value is still usable.
func (t *Tracker) ProgressFor(ctx context.Context, attack *models.Attack) (models.Progress, error) {
	id, _ := t.sessions.currentID()
	zero := models.ZeroProgress(id, attack)

	all, err := t.GetProgress(ctx)
	if errors.Is(err, ErrNoSession) {
		return zero, nil
	}
	if err != nil {
		return zero, err
	}
	for _, p := range all {
		if p.AttackID == attack.ID {
			return p, nil
		}
	}
	return zero, nil
}

func (t *Tracker) nextSeq(attackID string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq[attackID]++
	return t.seq[attackID]
}

func (t *Tracker) isLatest(attackID string, seq uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq[attackID] == seq
}

// RecordStep stores step as the current position within attack. Steps
// outside the attack are rejected before any request is made. When a later
// RecordStep for the same attack was issued meanwhile, the response is
// discarded with ErrStaleResponse.
func (t *Tracker) RecordStep(ctx context.Context, attack *models.Attack, step, timeSpent int) (*models.Progress, error) {
	if !attack.HasStep(step) {
		return nil, fmt.Errorf("%w: step %d of %s (0..%d)", ErrStepOutOfRange, step, attack.ID, attack.LastStep())
	}
	id, ok := t.sessions.currentID()
	if !ok {
		return nil, ErrNoSession
	}
	if timeSpent < 0 {
		timeSpent = 0
	}

	seq := t.nextSeq(attack.ID)
	req := models.UpdateProgressRequest{
		SessionID:   id,
		AttackID:    attack.ID,
		CurrentStep: step,
		TimeSpent:   timeSpent,
	}
	var p models.Progress
	if err := t.api.do(ctx, "record step", http.MethodPost, "/progress", req, &p); err != nil {
		t.log.Warn("Failed to record step", zap.Error(err), zap.String("attackID", attack.ID), zap.Int("step", step))
		return nil, err
	}
	if !t.isLatest(attack.ID, seq) {
		t.log.Debug("Discarding out-of-order progress response",
			zap.String("attackID", attack.ID), zap.Uint64("seq", seq), zap.Int64("revision", p.Revision))
		return nil, ErrStaleResponse
	}
	return &p, nil
}

// SubmitQuiz sends one graded attempt. It is not retried; a failure is
// logged and returned for callers that care.
func (t *Tracker) SubmitQuiz(ctx context.Context, attackID string, result quiz.Result) (*models.QuizResult, error) {
	id, ok := t.sessions.currentID()
	if !ok {
		return nil, ErrNoSession
	}

	req := models.SubmitQuizRequest{
		SessionID: id,
		AttackID:  attackID,
		Score:     result.Score,
		Answers:   result.Answers,
	}
	var saved models.QuizResult
	if err := t.api.do(ctx, "submit quiz", http.MethodPost, "/quiz", req, &saved); err != nil {
		t.log.Error("Failed to submit quiz", zap.Error(err), zap.String("attackID", attackID))
		return nil, err
	}
	return &saved, nil
}

func (t *Tracker) GetQuizScores(ctx context.Context) ([]models.QuizResult, error) {
	id, ok := t.sessions.currentID()
	if !ok {
		return nil, ErrNoSession
	}
	results := []models.QuizResult{}
	if err := t.api.get(ctx, "get quiz scores", "/quiz/scores/"+url.PathEscape(id), &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Dashboard fetches the catalog, progress and quiz scores concurrently and
// aggregates them. Only a catalog failure is returned; without a session, or
// when the personal figures cannot be fetched, they count as zero.
func (t *Tracker) Dashboard(ctx context.Context) (stats.Dashboard, error) {
	var (
		attacks  []models.Attack
		progress []models.Progress
		results  []models.QuizResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		attacks, err = t.ListAttacks(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		if progress, err = t.GetProgress(gctx); err != nil {
			t.degrade("progress", err)
			progress = []models.Progress{}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if results, err = t.GetQuizScores(gctx); err != nil {
			t.degrade("quiz scores", err)
			results = []models.QuizResult{}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return stats.Dashboard{}, err
	}

	return stats.Compute(len(attacks), progress, results), nil
}

func (t *Tracker) degrade(what string, err error) {
	if errors.Is(err, ErrNoSession) {
		return
	}
	t.log.Warn("Dashboard shown without "+what, zap.Error(err))
}
