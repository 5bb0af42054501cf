package router

import (
	"darkops-lab/server/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	RequestIDContextKey = "request_id"
	requestIDHeader     = "X-Request-ID"
)

// RequestIDMiddleware tags every request with an id, reusing a well-formed
// one supplied by an upstream proxy, and echoes it back in the response
// headers.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if !utils.ValidRequestID(id) {
			var err error
			id, err = utils.NewRequestID()
			if err != nil {
				panic("failed to generate request id")
			}
		}

		c.Set(RequestIDContextKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
