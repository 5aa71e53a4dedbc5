package http

import (
	"github.com/gin-gonic/gin"
	"github.com/innovo-consulting/funding-console/internal/apiclient"
	"github.com/innovo-consulting/funding-console/internal/auth"
	"github.com/innovo-consulting/funding-console/internal/programs/service"
	"github.com/innovo-consulting/funding-console/internal/view"
)

type Handler struct {
	client   *apiclient.Client
	rollback bool
	inflight *view.InFlight
}

// New creates the programs handler. client is shared; each request reads
// the bearer token from the viewer's own session.
func New(client *apiclient.Client, rollback bool, inflight *view.InFlight) *Handler {
	if inflight == nil {
		inflight = view.NewInFlight()
	}
	return &Handler{
		client:   client,
		rollback: rollback,
		inflight: inflight,
	}
}

func (h *Handler) service(c *gin.Context) *service.ProgramService {
	return service.NewProgramService(h.client.WithTokens(auth.Session(c)), h.rollback)
}
