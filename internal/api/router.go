package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/99minutos/attendance-kiosk/docs"
	"github.com/99minutos/attendance-kiosk/internal/api/handler"
	"github.com/99minutos/attendance-kiosk/internal/api/middleware"
	"github.com/99minutos/attendance-kiosk/internal/core/ports"
	"github.com/99minutos/attendance-kiosk/internal/infrastructure/bridge"
	"github.com/99minutos/attendance-kiosk/internal/infrastructure/display"
)

// signalRate caps decoder callbacks per client per second.
const signalRate = 30

// RouterConfig carries everything the control API serves.
type RouterConfig struct {
	// BaseContext outlives requests; background location grants run on it.
	BaseContext   context.Context
	Workflow      ports.AttendanceWorkflow
	Hub           *display.Hub
	Camera        *bridge.Camera
	Geolocator    *bridge.Geolocator
	Dependencies  map[string]handler.Pinger
	ControlSecret string
	// Registerer receives the HTTP request metrics; nil uses the default.
	Registerer prometheus.Registerer
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	if cfg.BaseContext == nil {
		cfg.BaseContext = context.Background()
	}
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(cfg.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "attendance_kiosk",
		Registerer: cfg.Registerer,
	}))

	// --- Dependencies ---
	workflowHandler := handler.NewWorkflowHandler(cfg.Workflow, cfg.Hub)
	capabilityHandler := handler.NewCapabilityHandler(cfg.BaseContext, cfg.Workflow, cfg.Camera, cfg.Geolocator, cfg.Log)
	eventsHandler := handler.NewEventsHandler(cfg.Hub)

	// --- Control API ---
	v1 := e.Group("/v1", middleware.ControlAuth(cfg.ControlSecret))
	v1.GET("/view", workflowHandler.View)
	v1.GET("/events", eventsHandler.Stream)
	v1.POST("/session/login", workflowHandler.Login)
	v1.POST("/session/logout", workflowHandler.Logout)
	v1.POST("/attendance/check-in", workflowHandler.CheckIn)
	v1.POST("/attendance/check-out", workflowHandler.CheckOut)
	v1.POST("/scan/signals", capabilityHandler.ScanSignal,
		echomiddleware.RateLimiter(echomiddleware.NewRateLimiterMemoryStore(rate.Limit(signalRate))))
	v1.POST("/scan/cancel", workflowHandler.CancelScan)
	v1.POST("/location", capabilityHandler.GrantLocation)
	v1.POST("/location/fix", capabilityHandler.LocationFix)
	v1.POST("/location/error", capabilityHandler.LocationError)
	v1.POST("/location/cancel", workflowHandler.CancelLocation)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(cfg.Dependencies)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – can the session be persisted?

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
