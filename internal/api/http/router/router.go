package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/psyconnect/psyconnect_backend/config"
	"github.com/psyconnect/psyconnect_backend/internal/api/http/handler"
	"github.com/psyconnect/psyconnect_backend/internal/api/http/middleware"
	"github.com/psyconnect/psyconnect_backend/internal/service/appointment"
	"github.com/psyconnect/psyconnect_backend/internal/service/casefile"
	"github.com/psyconnect/psyconnect_backend/internal/service/directory"
	"github.com/psyconnect/psyconnect_backend/internal/service/scheduling"
	"github.com/psyconnect/psyconnect_backend/pkg/authorize"
	pasetotoken "github.com/psyconnect/psyconnect_backend/pkg/paseto"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg            *config.Config
	Redis          *redis.Client
	Auth           authorize.IAuthorization
	AppointmentSvc appointment.Service
	SchedulingSvc  scheduling.Service
	CaseSvc        casefile.Service
	DirectorySvc   directory.Service
	PasetoMgr      *pasetotoken.Manager
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	authRequired := middleware.AuthRequired(r.p.PasetoMgr, r.p.Redis)

	// Permission helper
	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}

	// 3. Initialize Handlers
	appointmentH := handler.NewAppointmentHandler(r.p.AppointmentSvc)
	availabilityH := handler.NewAvailabilityHandler(r.p.SchedulingSvc)
	caseH := handler.NewCaseHandler(r.p.CaseSvc)
	directoryH := handler.NewDirectoryHandler(r.p.DirectorySvc)

	api := app.Group("/api/v1")

	// 4. Delegate to sub-files
	r.registerAppointmentRoutes(api, appointmentH, directoryH, authRequired, requirePerm)
	r.registerAvailabilityRoutes(api, availabilityH, authRequired, requirePerm)
	r.registerCaseRoutes(api, caseH, authRequired, requirePerm)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return authorize.IsPolicyHealthy() },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
