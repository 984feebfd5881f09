// Package main provides the entrypoint for the AirCast forecast gateway.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/aircast/aircast/internal/api"
	"github.com/aircast/aircast/internal/api/middleware"
	"github.com/aircast/aircast/internal/forecast/prediction"
	"github.com/aircast/aircast/internal/provider/resilience"
	"github.com/aircast/aircast/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "aircast-gateway"

	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting AirCast gateway")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	predictionURL := os.Getenv("PREDICTION_SERVICE_URL")
	if predictionURL == "" {
		predictionURL = prediction.DefaultBaseURL
	}

	predictionTimeout := 10 * time.Second
	if v := os.Getenv("PREDICTION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			predictionTimeout = d
		} else {
			log.Warn().Str("value", v).Msg("invalid PREDICTION_TIMEOUT, using default")
		}
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	sampleRatio := 0.0 // sample everything unless told otherwise
	if v := os.Getenv("OTEL_TRACE_SAMPLE_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			sampleRatio = f
		} else {
			log.Warn().Str("value", v).Msg("invalid OTEL_TRACE_SAMPLE_RATIO, sampling everything")
		}
	}

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
		SampleRatio:    sampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Upstream health registry backs the readiness endpoint
	upstreams := resilience.NewRegistry()

	// Prediction service client: timeout and circuit breaker, no retries.
	// Retry policy belongs to polling clients, never to the gateway.
	predictionClient := resilience.NewClient(resilience.ClientConfig{
		Name:    prediction.ProviderName,
		Timeout: predictionTimeout,
	})
	upstreams.Register(prediction.ProviderName, predictionClient)

	predictor := prediction.NewClient(prediction.ClientConfig{
		BaseURL:    predictionURL,
		HTTPClient: predictionClient,
	})
	log.Info().
		Str("base_url", predictionURL).
		Dur("timeout", predictionTimeout).
		Msg("prediction service client initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		Predictor:   predictor,
		Upstreams:   upstreams,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
