package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/formlane/console/docs"
	"github.com/formlane/console/internal/api/handler"
	"github.com/formlane/console/internal/api/middleware"
	"github.com/formlane/console/internal/core/ports"
	"github.com/formlane/console/internal/core/service"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Logger   zerolog.Logger
	Sessions ports.SessionService
	Guard    *service.Guard
	Table    ports.RouteTable
	Views    handler.ViewRenderer
	Search   handler.Searcher
	Auth     handler.AuthOptions
	// Ready lists the dependencies pinged by the readiness probe.
	Ready map[string]handler.Pinger
	// Metrics mounts the Prometheus middleware and /metrics. It registers
	// collectors globally, so it can be enabled once per process.
	Metrics bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	if d.Metrics {
		e.Use(echoprometheus.NewMiddleware("console"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Health probes and docs (no session required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Ready)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	sessions := e.Group("", middleware.Session(d.Sessions))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Sessions, d.Auth)
	sessions.GET(d.Guard.LoginPath(), authHandler.LoginPage)
	sessions.POST("/auth/login", authHandler.Login)
	sessions.POST("/auth/logout", authHandler.Logout)
	sessions.POST("/auth/refresh", authHandler.Refresh, middleware.RequireSession())
	sessions.GET("/auth/me", authHandler.Me, middleware.RequireSession())

	// --- Console API ---
	viewHandler := handler.NewViewHandler(d.Views)
	searchHandler := handler.NewSearchHandler(d.Search)
	routesHandler := handler.NewRoutesHandler(d.Table)

	apiGroup := sessions.Group("/api")
	apiGroup.GET("/search", searchHandler.Search, middleware.RequireSession())
	apiGroup.GET("/routes", routesHandler.Menu, middleware.RequireSession())
	apiGroup.GET("/views/*", viewHandler.Render, middleware.Guard(d.Guard, middleware.ViewTarget))

	// --- Guarded console pages ---
	landing := d.Guard.LandingPath()
	sessions.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, landing)
	})
	for _, r := range d.Table.All() {
		sessions.GET(r.Path, viewHandler.Render, middleware.Guard(d.Guard, middleware.PageTarget))
	}

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
