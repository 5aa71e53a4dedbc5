package http

import (
	"github.com/gin-gonic/gin"
	"github.com/innovo-consulting/funding-console/internal/apiclient"
	"github.com/innovo-consulting/funding-console/internal/auth"
	"github.com/innovo-consulting/funding-console/internal/auth/service"
	"github.com/innovo-consulting/funding-console/internal/view"
)

type Handler struct {
	client   *apiclient.Client
	inflight *view.InFlight
}

func New(client *apiclient.Client, inflight *view.InFlight) *Handler {
	if inflight == nil {
		inflight = view.NewInFlight()
	}
	return &Handler{
		client:   client,
		inflight: inflight,
	}
}

func (h *Handler) authService(c *gin.Context) *service.AuthService {
	return service.NewAuthService(h.client.WithTokens(auth.Session(c)))
}
