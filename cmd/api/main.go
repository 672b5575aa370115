// Package main provides the entrypoint for the VisitaRoute API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/visitaroute/visitaroute/internal/api"
	"github.com/visitaroute/visitaroute/internal/api/handler"
	"github.com/visitaroute/visitaroute/internal/api/middleware"
	"github.com/visitaroute/visitaroute/internal/database"
	"github.com/visitaroute/visitaroute/internal/distance"
	"github.com/visitaroute/visitaroute/internal/distance/googlemaps"
	"github.com/visitaroute/visitaroute/internal/history"
	"github.com/visitaroute/visitaroute/internal/optimizer"
	"github.com/visitaroute/visitaroute/internal/places"
	"github.com/visitaroute/visitaroute/internal/places/googleplaces"
	"github.com/visitaroute/visitaroute/internal/provider/resilience"
	"github.com/visitaroute/visitaroute/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "visitaroute-api"

	// Local development convenience; silently absent in production.
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
		Msg("starting VisitaRoute API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
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

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
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

	// Provider health registry drives tier selection and the ops endpoint.
	registry := resilience.NewRegistry()
	readinessChecks := map[string]handler.ReadinessChecker{}

	// Live travel-time provider (optional). Without an API key the
	// optimizer serves local estimates only.
	var live distance.Provider
	mapsKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if mapsKey != "" {
		mapsClient := googlemaps.NewClient(googlemaps.ClientConfig{
			APIKey:   mapsKey,
			Registry: registry,
			Logger:   log,
		})
		live = distance.NewService(distance.ServiceConfig{
			Provider: mapsClient,
			Logger:   log,
		})
		log.Info().Str("provider", googlemaps.ProviderName).Msg("live distance provider initialized")
	} else {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY not set - live travel times disabled")
	}

	// Business-hours oracle (optional). Redis backs the schedule cache
	// when configured; otherwise the oracle caches in process.
	var oracle places.Oracle
	placesKey := os.Getenv("GOOGLE_PLACES_API_KEY")
	if placesKey != "" {
		var redisClient *redis.Client
		if os.Getenv("REDIS_ENABLED") == "true" {
			redisClient, err = places.NewRedisClient(ctx, places.RedisConfigFromEnv())
			if err != nil {
				log.Fatal().Err(err).Msg("failed to connect to redis")
			}
			defer redisClient.Close()
			readinessChecks["redis"] = func(r *http.Request) error {
				return redisClient.Ping(r.Context()).Err()
			}
			log.Info().Msg("redis schedule cache connected")
		}

		placesClient := googleplaces.NewClient(googleplaces.ClientConfig{
			APIKey:   placesKey,
			Registry: registry,
			Logger:   log,
		})
		oracle = places.NewCachedOracle(places.OracleConfig{
			Source: placesClient,
			Redis:  redisClient,
			Logger: log,
		})
		log.Info().Str("provider", googleplaces.ProviderName).Msg("business-hours oracle initialized")
	} else {
		log.Warn().Msg("GOOGLE_PLACES_API_KEY not set - business-hours checks disabled")
	}

	// Initialize the optimizer service
	selector := optimizer.NewLevelSelector(optimizer.LevelSelectorConfig{
		Live:     live,
		Oracle:   oracle,
		Registry: registry,
		Logger:   log,
	})
	optimizerService := optimizer.NewService(optimizer.ServiceConfig{
		Selector: selector,
		Logger:   log,
	})
	log.Info().Msg("optimizer service initialized")

	// Connect to database for itinerary history. DB_ENABLED=false runs
	// the API without persistence, dropping the history endpoints.
	var historyRepo history.Repository
	if os.Getenv("DB_ENABLED") != "false" {
		dbConfig := database.ConfigFromEnv()
		pool, err := database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")

		historyRepo = history.NewPostgresRepository(pool)
		readinessChecks["database"] = func(r *http.Request) error {
			return pool.Ping(r.Context())
		}
	} else {
		log.Warn().Msg("database disabled - itinerary history endpoints unavailable")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:         Version,
		BuildTime:       BuildTime,
		Logger:          log,
		ServiceName:     serviceName,
		Metrics:         metrics,
		Optimizer:       optimizerService,
		History:         historyRepo,
		Registry:        registry,
		ReadinessChecks: readinessChecks,
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
