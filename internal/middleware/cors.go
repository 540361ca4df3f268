package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/MatheusWesley/api-projects-management/internal/constants"
	apierrors "github.com/MatheusWesley/api-projects-management/internal/errors"
	"github.com/gin-gonic/gin"
)

// CORS allows credentialed cross-origin requests from the listed origins.
// "*" allows any origin. Preflight requests are answered directly.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowAny := slices.Contains(allowedOrigins, "*")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || !(allowAny || slices.Contains(allowedOrigins, origin)) {
			if c.Request.Method == http.MethodOptions && origin != "" {
				apierrors.Forbidden(c, "Origin not allowed")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")
		h.Set("Access-Control-Expose-Headers", constants.HeaderRequestID)

		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", strings.Join([]string{
				http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
			}, ", "))
			h.Set("Access-Control-Allow-Headers", "Content-Type, If-Match, "+constants.HeaderRequestID)
			h.Set("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
