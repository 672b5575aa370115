// Package api provides the HTTP API for VisitaRoute.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/visitaroute/visitaroute/internal/api/handler"
	"github.com/visitaroute/visitaroute/internal/api/middleware"
	"github.com/visitaroute/visitaroute/internal/history"
	"github.com/visitaroute/visitaroute/internal/optimizer"
	"github.com/visitaroute/visitaroute/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	Optimizer       *optimizer.Service
	History         history.Repository
	Registry        *resilience.Registry
	ReadinessChecks map[string]handler.ReadinessChecker
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "visitaroute-api"
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
	r.Use(middleware.RequireJSON)          // Reject non-JSON bodies early
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry, cfg.ReadinessChecks)
	optimizeHandler := handler.NewOptimizeHandler(cfg.Optimizer, cfg.History, cfg.Logger)
	metadataHandler := handler.NewMetadataHandler()

	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/providers", opsHandler.Providers)
		})

		// Metadata endpoints - standard rate limiting
		r.Route("/metadata", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/municipalities", metadataHandler.ListMunicipalities)
			r.Get("/enums", metadataHandler.GetEnums)
		})

		// Optimization endpoints - expensive compute, strict rate limiting
		r.With(expensiveRateLimit).Post("/itineraries:optimize", optimizeHandler.Optimize)
		r.With(expensiveRateLimit).Post("/itineraries:plan-week", optimizeHandler.PlanWeek)

		// Stored itineraries - standard rate limiting
		if cfg.History != nil {
			itinerariesHandler := handler.NewItinerariesHandler(cfg.History)
			r.Route("/itineraries", func(r chi.Router) {
				r.Use(standardRateLimit)
				r.Get("/", itinerariesHandler.List)
				r.Route("/{itineraryId}", func(r chi.Router) {
					r.Get("/", itinerariesHandler.Get)
					r.Delete("/", itinerariesHandler.Delete)
				})
			})
		}
	})

	return r
}
