package handlers

import (
	"errors"
	"net/http"

	"darkops-lab/pkg/models"
	"darkops-lab/server/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProgressHandler struct {
	log     *zap.Logger
	Catalog *models.Catalog
}

func NewProgressHandler(log *zap.Logger, catalog *models.Catalog) *ProgressHandler {
	return &ProgressHandler{log: log, Catalog: catalog}
}

// List handles GET /api/progress/:sessionId. Attacks without a row have not
// been started.
func (h *ProgressHandler) List(c *gin.Context) {
	session := sessionFromContext(c)
	progress, err := repository.GetProgressForSession(c.Request.Context(), session.ID)
	if err != nil {
		h.log.Error("Failed to load progress", zap.Error(err), zap.String("sessionID", session.ID))
		abortWithDetail(c, http.StatusInternalServerError, "Failed to load progress")
		return
	}
	c.JSON(http.StatusOK, progress)
}

// Update handles POST /api/progress.
func (h *ProgressHandler) Update(c *gin.Context) {
	var req models.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Failed to bind progress update", zap.Error(err))
		abortWithDetail(c, http.StatusBadRequest, "Invalid progress update")
		return
	}

	attack, ok := h.Catalog.Get(req.AttackID)
	if !ok {
		abortWithDetail(c, http.StatusNotFound, "Attack not found")
		return
	}
	if _, err := repository.GetSession(c.Request.Context(), req.SessionID); err != nil {
		abortWithDetail(c, statusFor(err), "Session not found")
		return
	}

	progress, err := repository.UpsertProgress(c.Request.Context(), req.SessionID, attack, req.CurrentStep, req.TimeSpent)
	if errors.Is(err, repository.ErrStepOutOfRange) {
		abortWithDetail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.log.Error("Failed to update progress", zap.Error(err),
			zap.String("sessionID", req.SessionID), zap.String("attackID", req.AttackID))
		abortWithDetail(c, http.StatusInternalServerError, "Failed to update progress")
		return
	}

	h.log.Debug("Progress recorded",
		zap.String("sessionID", req.SessionID),
		zap.String("attackID", req.AttackID),
		zap.Int("step", progress.CurrentStep),
		zap.Bool("completed", progress.IsCompleted),
		zap.Int64("revision", progress.Revision),
	)
	c.JSON(http.StatusOK, progress)
}
