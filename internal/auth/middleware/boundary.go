package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/innovo-consulting/funding-console/internal/apiclient"
	"github.com/innovo-consulting/funding-console/internal/auth"
	"github.com/innovo-consulting/funding-console/internal/logging"
	"github.com/innovo-consulting/funding-console/internal/session"
)

// ErrorBoundary is the single place that reacts to an expired session.
// Handlers report apiclient.ErrUnauthenticated with c.Error and write
// nothing; the boundary logs the viewer out and navigates to the login
// screen.
func ErrorBoundary() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, ge := range c.Errors {
			if !errors.Is(ge.Err, apiclient.ErrUnauthenticated) {
				continue
			}
			logger := logging.NewLogger(c.Request.Context())
			// usually already cleared by the client's unauthorized hook
			if v, ok := c.Get(auth.CtxSession); ok {
				if sess := v.(*session.Session); sess.IsAuthenticated() {
					if err := sess.Logout(c.Request.Context()); err != nil {
						logger.LogError("session_expired", err)
					}
				}
			}
			logger.LogInfo("session_expired", "backend rejected the token, redirecting to login")

			if c.Writer.Written() {
				return
			}
			if wantsJSON(c) {
				c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "session expired", "redirect": LoginPath})
				return
			}
			c.Redirect(redirectStatus(c), LoginPath)
			return
		}
	}
}

func wantsJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/") ||
		strings.Contains(c.GetHeader("Accept"), "application/json")
}
