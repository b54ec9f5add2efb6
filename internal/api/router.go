package api

import (
	"io/fs"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/modportal/portal-api/internal/api/handler"
	"github.com/modportal/portal-api/internal/api/metrics"
	"github.com/modportal/portal-api/internal/api/middleware"
	"github.com/modportal/portal-api/internal/core/domain"
	"github.com/modportal/portal-api/internal/core/ports"
	"github.com/modportal/portal-api/internal/infrastructure/http/handlers"
)

// Dependencies is everything the router needs. Services are required;
// the rest is optional.
type Dependencies struct {
	Logger zerolog.Logger

	Tokens       ports.TokenVerifier
	Auth         ports.AuthService
	Tasks        ports.ReportService
	Bugs         ports.ReportService
	Applications ports.ApplicationService

	// Pingers are probed by /health/ready, keyed by dependency name.
	Pingers map[string]ports.Pinger

	// Registerer and Gatherer default to the global Prometheus registry.
	// Request and portal metrics are both registered on Registerer.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Uploads   fs.FS  // served read-only at /uploads when set
	StaticDir string // UI bundle served at / when set
	BodyLimit string // e.g. "10M"
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.Validator = handler.NewValidator()

	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "portal",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	if deps.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(deps.BodyLimit))
	}

	// --- Handlers ---
	m := metrics.New(deps.Registerer)
	authHandler := handler.NewAuthHandler(deps.Auth, m)
	taskHandler := handler.NewTaskHandler(deps.Tasks, m)
	bugHandler := handler.NewBugHandler(deps.Bugs, m)
	applicationHandler := handler.NewApplicationHandler(deps.Applications, m)

	// --- Public routes ---
	api := e.Group("/api")
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)

	// --- Authenticated routes ---
	authed := api.Group("", middleware.Auth(deps.Tokens))
	authed.GET("/profile", authHandler.Profile)
	authed.GET("/admins", authHandler.Admins, middleware.RBAC(domain.RoleSuperAdmin))

	authed.POST("/tasks", taskHandler.Create)
	authed.GET("/tasks", taskHandler.List)
	authed.PUT("/tasks/:id/status", taskHandler.UpdateStatus)

	authed.POST("/bugs", bugHandler.Create)
	authed.GET("/bugs", bugHandler.List)
	authed.PUT("/bugs/:id/status", bugHandler.UpdateStatus)

	authed.POST("/applications", applicationHandler.Create)
	authed.GET("/applications", applicationHandler.List)
	authed.PUT("/applications/:id/status", applicationHandler.UpdateStatus)

	// --- Operational routes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Pingers)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Static content ---
	if deps.Uploads != nil {
		e.StaticFS("/uploads", deps.Uploads)
	}
	if deps.StaticDir != "" {
		e.Use(echomiddleware.StaticWithConfig(echomiddleware.StaticConfig{
			Root:    deps.StaticDir,
			HTML5:   true,
			Skipper: skipReserved,
		}))
	}

	return e
}

var reservedPrefixes = []string{"/api", "/uploads", "/swagger", "/metrics", "/health"}

func skipReserved(c echo.Context) bool {
	p := c.Request().URL.Path
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
