// Package api provides the HTTP API for the AirCast forecast gateway.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/aircast/aircast/internal/api/handler"
	"github.com/aircast/aircast/internal/api/middleware"
	"github.com/aircast/aircast/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	Predictor   handler.Predictor
	Upstreams   *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "aircast-gateway"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Upstreams)
	forecastHandler := handler.NewForecastHandler(cfg.Predictor, cfg.Logger)

	// Rate limits per endpoint category
	forecastRateLimit := middleware.RateLimitByIP(middleware.ForecastRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	// Forecast protocol endpoints
	r.Route("/forecast", func(r chi.Router) {
		r.Use(middleware.RequireJSON)
		// Each accepted submission costs a prediction job upstream.
		r.With(forecastRateLimit).Post("/request-forecast", forecastHandler.RequestForecast)
		// Status polling is cheap but clients re-check every few seconds.
		r.With(standardRateLimit).Post("/check-forecast-request", forecastHandler.CheckForecast)
	})

	// Ops endpoints (public)
	r.Route("/v1/ops", func(r chi.Router) {
		r.Get("/health", opsHandler.HealthCheck)
		r.Get("/ready", opsHandler.ReadinessCheck)
	})

	return r
}
