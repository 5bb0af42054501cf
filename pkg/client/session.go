package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"darkops-lab/pkg/models"

	"go.uber.org/zap"
)

// Manager owns the current anonymous session and its durable identifier.
type Manager struct {
	api   *api
	store Store
	mode  NicknameMode
	log   *zap.Logger

	mu      sync.RWMutex
	current *models.Session
}

func newManager(a *api, store Store, mode NicknameMode, log *zap.Logger) *Manager {
	return &Manager{api: a, store: store, mode: mode, log: log.Named("session")}
}

// Current returns a copy of the adopted session, or nil.
func (m *Manager) Current() *models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneSession(m.current)
}

func (m *Manager) currentID() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return "", false
	}
	return m.current.ID, true
}

func (m *Manager) adopt(s *models.Session) {
	m.mu.Lock()
	m.current = cloneSession(s)
	m.mu.Unlock()
}

// GetOrCreateSession resumes the stored session, or creates one when there
// is none or the backend no longer recognises it. On failure the manager is
// left with no session.
func (m *Manager) GetOrCreateSession(ctx context.Context) (*models.Session, error) {
	id, ok, err := m.store.Get(ctx, SessionKey)
	if err != nil {
		m.log.Warn("Failed to read stored session id", zap.Error(err))
		ok = false
	}

	if ok && id != "" {
		var s models.Session
		err := m.api.get(ctx, "get session", "/sessions/"+url.PathEscape(id), &s)
		if err == nil {
			m.adopt(&s)
			m.log.Debug("Resumed session", zap.String("sessionID", s.ID))
			return cloneSession(&s), nil
		}
		if ctx.Err() != nil {
			m.adopt(nil)
			return nil, ctx.Err()
		}
		m.log.Info("Stored session unavailable, creating a new one", zap.String("sessionID", id), zap.Error(err))
	}

	s, err := m.CreateSession(ctx, nil)
	if err != nil {
		m.adopt(nil)
		m.log.Error("Failed to create session", zap.Error(err))
		return nil, err
	}
	return s, nil
}

// Forget drops the stored session id and the adopted session. The backend
// row is left for the inactivity janitor.
func (m *Manager) Forget(ctx context.Context) error {
	if err := m.store.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("failed to forget session: %w", err)
	}
	if id, ok := m.currentID(); ok {
		m.log.Info("Session forgotten", zap.String("sessionID", id))
	}
	m.adopt(nil)
	return nil
}

// CreateSession creates a backend session, stores its identifier and adopts
// it. The previous session, if any, is kept when creation fails.
func (m *Manager) CreateSession(ctx context.Context, nickname *string) (*models.Session, error) {
	var s models.Session
	if err := m.api.do(ctx, "create session", http.MethodPost, "/sessions", models.CreateSessionRequest{Nickname: nickname}, &s); err != nil {
		return nil, err
	}
	if err := m.store.Set(ctx, SessionKey, s.ID); err != nil {
		// The session is still usable for this process.
		m.log.Warn("Failed to store session id", zap.Error(err), zap.String("sessionID", s.ID))
	}
	m.adopt(&s)
	m.log.Info("Session created", zap.String("sessionID", s.ID))
	return cloneSession(&s), nil
}

// SetNickname applies the nickname in memory first, then persists it
// according to the configured NicknameMode. A failed backend call leaves the
// optimistic value in place.
func (m *Manager) SetNickname(ctx context.Context, nickname string) (*models.Session, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, fmt.Errorf("%w: nickname must not be empty", ErrValidation)
	}

	m.mu.Lock()
	var id string
	if m.current != nil {
		m.current.Nickname = &nickname
		id = m.current.ID
	}
	m.mu.Unlock()

	if m.mode == NicknameRecreate || id == "" {
		s, err := m.CreateSession(ctx, &nickname)
		if err != nil {
			m.log.Error("Failed to create session for nickname", zap.Error(err))
			return nil, err
		}
		return s, nil
	}

	var s models.Session
	err := m.api.do(ctx, "update nickname", http.MethodPatch, "/sessions/"+url.PathEscape(id), models.UpdateSessionRequest{Nickname: nickname}, &s)
	if errors.Is(err, ErrNotFound) {
		m.log.Info("Session vanished while renaming, creating a new one", zap.String("sessionID", id))
		return m.CreateSession(ctx, &nickname)
	}
	if err != nil {
		m.log.Error("Failed to update nickname", zap.Error(err), zap.String("sessionID", id))
		return nil, err
	}
	m.adopt(&s)
	return cloneSession(&s), nil
}

func cloneSession(s *models.Session) *models.Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Nickname != nil {
		n := *s.Nickname
		c.Nickname = &n
	}
	return &c
}
