package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/innovo-consulting/funding-console/internal/auth"
	"github.com/innovo-consulting/funding-console/internal/logging"
	"github.com/innovo-consulting/funding-console/internal/session"
)

// CookieConfig describes the browser session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// LoadSession identifies the browser by its session cookie, issuing a new
// id when there is none, and hydrates its session from the store.
func LoadSession(mgr *session.Manager, cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookie.Name)
		if err != nil || !session.ValidID(sid) {
			sid = session.NewID()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookie.Name, sid, int(cookie.MaxAge.Seconds()), "/", "", cookie.Secure, true)

		s, err := mgr.Open(c.Request.Context(), sid)
		if err != nil {
			logging.NewLogger(c.Request.Context()).LogError("load_session", err)
			c.String(http.StatusServiceUnavailable, "session store unavailable")
			c.Abort()
			return
		}

		auth.Bind(c, sid, s)
		c.Next()
	}
}
