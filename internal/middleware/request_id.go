package middleware

import (
	"github.com/MatheusWesley/api-projects-management/internal/constants"
	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

// RequestID tags every request with an id, reusing the caller's
// X-Request-ID when one is sent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(constants.HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = ulid.Make().String()
		}

		c.Set(constants.ContextKeyRequestID, id)
		c.Header(constants.HeaderRequestID, id)
		c.Next()
	}
}
