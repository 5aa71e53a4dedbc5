package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/innovo-consulting/funding-console/internal/auth"
)

const (
	LoginPath    = "/login"
	ProgramsPath = "/projects"
)

// RequireSession lets authenticated viewers through and sends everyone else
// to the login screen.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.Session(c).IsAuthenticated() {
			c.Redirect(redirectStatus(c), LoginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RedirectIfAuthenticated sends viewers who already hold a token to target.
func RedirectIfAuthenticated(target string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.Session(c).IsAuthenticated() {
			c.Redirect(redirectStatus(c), target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// redirectStatus turns a form POST into a GET on the target.
func redirectStatus(c *gin.Context) int {
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
