package http

import (
	"github.com/gin-gonic/gin"
	"github.com/innovo-consulting/funding-console/internal/auth/middleware"
)

// Register mounts the login screen, logout and the session probe. limit
// throttles login submissions and may be nil.
func (h *Handler) Register(r gin.IRouter, limit gin.HandlerFunc) {
	guest := r.Group(middleware.LoginPath, middleware.RedirectIfAuthenticated(middleware.ProgramsPath))
	guest.GET("", h.LoginPage)
	if limit != nil {
		guest.POST("", limit, h.Submit)
	} else {
		guest.POST("", h.Submit)
	}

	r.POST("/logout", h.Logout)
	r.GET("/api/session", h.SessionStatus)
}
