package handlers

import (
	"errors"
	"io"
	"net/http"

	"darkops-lab/pkg/models"
	"darkops-lab/server/internal/repository"
	"darkops-lab/server/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CookieSessionKey is the cookie-session slot mirroring the client's
// durable darkops_session_id key for browser clients.
const CookieSessionKey = "darkops_session_id"

type SessionHandler struct {
	log *zap.Logger
}

func NewSessionHandler(log *zap.Logger) *SessionHandler {
	return &SessionHandler{log: log}
}

// Create handles POST /api/sessions.
func (h *SessionHandler) Create(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithDetail(c, http.StatusBadRequest, "Invalid session request")
		return
	}
	if req.Nickname != nil {
		nickname, ok := utils.NormalizeNickname(*req.Nickname)
		if !ok {
			abortWithDetail(c, http.StatusBadRequest, "Invalid nickname")
			return
		}
		req.Nickname = &nickname
	}

	session, err := repository.CreateSession(c.Request.Context(), req.Nickname)
	if err != nil {
		h.log.Error("Failed to create session", zap.Error(err))
		abortWithDetail(c, http.StatusInternalServerError, "Failed to create session")
		return
	}
	h.remember(c, session.ID)

	h.log.Info("Session created", zap.String("sessionID", session.ID))
	c.JSON(http.StatusOK, session)
}

// Get handles GET /api/sessions/:id and refreshes last_active.
func (h *SessionHandler) Get(c *gin.Context) {
	id := c.Param("id")
	session, err := repository.TouchSession(c.Request.Context(), id)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Error("Failed to load session", zap.Error(err), zap.String("sessionID", id))
		}
		abortWithDetail(c, status, "Session not found")
		return
	}
	h.remember(c, session.ID)
	c.JSON(http.StatusOK, session)
}

// Current handles GET /api/sessions/current using the cookie slot.
func (h *SessionHandler) Current(c *gin.Context) {
	id, ok := sessions.Default(c).Get(CookieSessionKey).(string)
	if !ok || id == "" {
		abortWithDetail(c, http.StatusNotFound, "No current session")
		return
	}
	session, err := repository.TouchSession(c.Request.Context(), id)
	if err != nil {
		// Stale cookie: forget it so the caller creates a fresh session.
		cookie := sessions.Default(c)
		cookie.Delete(CookieSessionKey)
		_ = cookie.Save()
		abortWithDetail(c, statusFor(err), "Session not found")
		return
	}
	c.JSON(http.StatusOK, session)
}

// UpdateNickname handles PATCH /api/sessions/:id. The identifier is kept.
func (h *SessionHandler) UpdateNickname(c *gin.Context) {
	id := c.Param("id")
	var req models.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetail(c, http.StatusBadRequest, "Invalid session update")
		return
	}
	nickname, ok := utils.NormalizeNickname(req.Nickname)
	if !ok {
		abortWithDetail(c, http.StatusBadRequest, "Invalid nickname")
		return
	}

	session, err := repository.UpdateNickname(c.Request.Context(), id, nickname)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Error("Failed to update nickname", zap.Error(err), zap.String("sessionID", id))
		}
		abortWithDetail(c, status, "Session not found")
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) remember(c *gin.Context, id string) {
	cookie := sessions.Default(c)
	cookie.Set(CookieSessionKey, id)
	if err := cookie.Save(); err != nil {
		h.log.Warn("Failed to save session cookie", zap.Error(err))
	}
}
