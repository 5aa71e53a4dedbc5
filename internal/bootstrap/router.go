package bootstrap

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/innovo-consulting/funding-console/internal/api/http"
	apimw "github.com/innovo-consulting/funding-console/internal/api/http/middleware"
	"github.com/innovo-consulting/funding-console/internal/apiclient"
	authhttp "github.com/innovo-consulting/funding-console/internal/auth/http"
	"github.com/innovo-consulting/funding-console/internal/auth/middleware"
	"github.com/innovo-consulting/funding-console/internal/metrics"
	programshttp "github.com/innovo-consulting/funding-console/internal/programs/http"
	"github.com/innovo-consulting/funding-console/internal/session"
	"github.com/innovo-consulting/funding-console/internal/view"
	"github.com/innovo-consulting/funding-console/internal/web"
)

type RouterDeps struct {
	ServiceName string
	Version     string

	Client   *apiclient.Client
	Sessions *session.Manager
	Cookie   middleware.CookieConfig

	CORSOrigins              []string
	LoginRatePerMinute       int
	RollbackOrphanedPrograms bool

	// Templates defaults to web.MustTemplates().
	Templates *template.Template
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(apimw.RequestIDMiddleware())
	r.MaxMultipartMemory = 32 << 20

	tpl := dep.Templates
	if tpl == nil {
		tpl = web.MustTemplates()
	}
	r.SetHTMLTemplate(tpl)

	if len(dep.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     dep.CORSOrigins,
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", apimw.HeaderRequestID},
			ExposeHeaders:    []string{apimw.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Sessions.Store())
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	ExpireOnUnauthorized(dep.Client)
	inflight := view.NewInFlight()

	app := r.Group("/")
	app.Use(middleware.LoadSession(dep.Sessions, dep.Cookie))
	app.Use(middleware.ErrorBoundary())

	var limit gin.HandlerFunc
	if dep.LoginRatePerMinute > 0 {
		limit = middleware.NewLoginLimiter(dep.LoginRatePerMinute).Middleware()
	}
	authhttp.New(dep.Client, inflight).Register(app, limit)

	programs := app.Group(middleware.ProgramsPath, middleware.RequireSession())
	programshttp.New(dep.Client, dep.RollbackOrphanedPrograms, inflight).Register(programs)

	r.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusFound, middleware.ProgramsPath)
	})

	return r
}
