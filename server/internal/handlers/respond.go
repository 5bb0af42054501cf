package handlers

import (
	"errors"
	"net/http"

	"darkops-lab/pkg/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SessionContextKey is where SessionRequired stores the loaded session.
const SessionContextKey = "session"

// abortWithDetail ends the request with a JSON error body.
func abortWithDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// statusFor maps repository errors onto HTTP statuses.
func statusFor(err error) int {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func sessionFromContext(c *gin.Context) *models.Session {
	v, ok := c.Get(SessionContextKey)
	if !ok {
		return nil
	}
	s, _ := v.(*models.Session)
	return s
}
