package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/innovo-consulting/funding-console/internal/session"
)

const (
	CtxSession   = "session"
	CtxSessionID = "session_id"
)

// Session returns the viewer's session set by middleware.LoadSession. It
// panics when the middleware is missing, which is a wiring bug.
func Session(c *gin.Context) *session.Session {
	return c.MustGet(CtxSession).(*session.Session)
}

// SessionID returns the opaque browser session id.
func SessionID(c *gin.Context) string {
	return c.GetString(CtxSessionID)
}

// Bind stores s in both the gin context and the request context so that
// services reached through context.Context see the same session.
func Bind(c *gin.Context, sid string, s *session.Session) {
	c.Set(CtxSession, s)
	c.Set(CtxSessionID, sid)
	c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), s))
}
