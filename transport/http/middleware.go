package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const ctxKeyAccessToken = "accessToken"

// RequireToken is the request-time gate in front of protected routes. It
// enforces presence of a bearer credential, from the Authorization header
// or the access-token cookie, and fails closed before any upstream call.
// Whether the credential is actually valid is established by whichever
// downstream operation consumes it.
func RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token missing"})
			return
		}

		c.Set(ctxKeyAccessToken, token)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		// Only the Bearer scheme is accepted; other schemes fail closed
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok {
			return ""
		}
		return strings.TrimSpace(token)
	}

	cookie, err := c.Cookie(CookieAccessToken)
	if err != nil {
		return ""
	}
	return cookie
}

// RequestLogger emits one structured line per request
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
