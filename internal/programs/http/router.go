package http

import "github.com/gin-gonic/gin"

// Register mounts the programs screens on rg, which is expected to be
// guarded by middleware.RequireSession.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/new", h.NewProgram)
	rg.POST("", h.Create)
}
