package router

import (
	"errors"
	"net/http"

	"darkops-lab/server/internal/handlers"
	"darkops-lab/server/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionRequired loads the session named by the :sessionId route parameter
// into the context. Unknown sessions end the request with 404, so handlers
// behind it never see a dangling identifier.
func SessionRequired(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("sessionId")
		session, err := repository.GetSession(c.Request.Context(), id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "Session not found"})
			return
		}
		if err != nil {
			log.Error("Failed to load session", zap.Error(err), zap.String("sessionID", id))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Failed to load session"})
			return
		}

		c.Set(handlers.SessionContextKey, session)
		c.Next()
	}
}
