// Package main provides the entrypoint for the VisitaRoute cache warm-up worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/visitaroute/visitaroute/internal/distance"
	"github.com/visitaroute/visitaroute/internal/distance/googlemaps"
	"github.com/visitaroute/visitaroute/internal/places"
	"github.com/visitaroute/visitaroute/internal/places/googleplaces"
	"github.com/visitaroute/visitaroute/internal/provider/resilience"
	"github.com/visitaroute/visitaroute/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "visitaroute-worker"

	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting VisitaRoute worker")

	// Worker also exposes a health endpoint for Cloud Run.
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := resilience.NewRegistry()

	// Business-hours source. The warm-up job is pointless without it, so
	// the key is required here unlike in the API server.
	placesKey := os.Getenv("GOOGLE_PLACES_API_KEY")
	if placesKey == "" {
		log.Fatal().Msg("GOOGLE_PLACES_API_KEY is required for the warm-up worker")
	}

	var redisClient *redis.Client
	if os.Getenv("REDIS_ENABLED") == "true" {
		var err error
		redisClient, err = places.NewRedisClient(ctx, places.RedisConfigFromEnv())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("redis schedule cache connected")
	} else {
		log.Warn().Msg("redis disabled - warmed schedules stay in process only")
	}

	placesClient := googleplaces.NewClient(googleplaces.ClientConfig{
		APIKey:   placesKey,
		Registry: registry,
		Logger:   log,
	})
	oracle := places.NewCachedOracle(places.OracleConfig{
		Source: placesClient,
		Redis:  redisClient,
		Logger: log,
	})

	// Live travel-time provider for the travel-matrix prefetch (optional).
	var distanceService *distance.Service
	if mapsKey := os.Getenv("GOOGLE_MAPS_API_KEY"); mapsKey != "" {
		mapsClient := googlemaps.NewClient(googlemaps.ClientConfig{
			APIKey:   mapsKey,
			Registry: registry,
			Logger:   log,
		})
		distanceService = distance.NewService(distance.ServiceConfig{
			Provider: mapsClient,
			Logger:   log,
		})
	} else {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY not set - travel matrix prefetch disabled")
	}

	jobCfg := worker.RefreshJobConfig{
		Logger: log,
		Hours:  oracle,
	}
	if distanceService != nil {
		jobCfg.Distances = distanceService
	}
	refreshJob := worker.NewRefreshJob(jobCfg)

	// Health check server
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// With a Pub/Sub subscription the worker waits for scheduled job
	// messages; without one it falls back to a fixed interval.
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")

	if projectID != "" && subscription != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			RefreshJob:       refreshJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("pubsub handler stopped")
				cancel()
			}
		}()
	} else {
		log.Warn().Msg("pubsub not configured - running warm-up on a fixed interval")

		interval := 6 * time.Hour
		if raw := os.Getenv("REFRESH_INTERVAL"); raw != "" {
			if parsed, err := time.ParseDuration(raw); err == nil {
				interval = parsed
			} else {
				log.Warn().Str("refresh_interval", raw).Msg("invalid REFRESH_INTERVAL, using default")
			}
		}

		go func() {
			runWarmup(ctx, refreshJob, log)

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					runWarmup(ctx, refreshJob, log)
				}
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

func runWarmup(ctx context.Context, job *worker.RefreshJob, log zerolog.Logger) {
	result := job.Run(ctx)
	if result.Failed > 0 {
		log.Warn().
			Int("failed", result.Failed).
			Int("successful", result.Successful).
			Msg("warm-up completed with failures")
	}
	if err := job.PrefetchDistances(ctx); err != nil {
		log.Warn().Err(err).Msg("travel matrix prefetch failed")
	}
}
