package handler

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/visitaroute/visitaroute/internal/api/models"
	"github.com/visitaroute/visitaroute/internal/api/response"
	"github.com/visitaroute/visitaroute/internal/provider/resilience"
)

// ReadinessChecker reports whether a dependency is reachable.
type ReadinessChecker func(r *http.Request) error

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	checks    map[string]ReadinessChecker
}

// NewOpsHandler creates a new OpsHandler. registry may be nil when no live
// providers are configured.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry, checks map[string]ReadinessChecker) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
		checks:    checks,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. Fails when a
// registered dependency check fails.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	status := http.StatusOK
	for name, check := range h.checks {
		if err := check(r); err != nil {
			health.Status = models.HealthStatusFail
			if health.Details == nil {
				health.Details = map[string]interface{}{}
			}
			health.Details[name] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	response.JSON(w, r, status, health)
}

// Providers handles GET /v1/ops/providers - live provider health. An open
// circuit means optimization runs are degrading below that provider's tier.
func (h *OpsHandler) Providers(w http.ResponseWriter, r *http.Request) {
	resp := models.ProvidersResponse{Providers: []models.ProviderStatus{}}

	if h.registry != nil {
		for _, health := range h.registry.AllHealth() {
			status := models.HealthStatusOK
			if health.CircuitState == gobreaker.StateOpen {
				status = models.HealthStatusFail
			} else if health.CircuitState == gobreaker.StateHalfOpen {
				status = models.HealthStatusDegraded
			}

			provider := models.ProviderStatus{
				Provider:     health.Name,
				Status:       status,
				CircuitState: health.CircuitState.String(),
			}
			if health.LastSuccessAt != nil {
				ts := models.Timestamp(*health.LastSuccessAt)
				provider.LastSuccessAt = &ts
			}
			if health.LastFailureAt != nil {
				ts := models.Timestamp(*health.LastFailureAt)
				provider.LastFailureAt = &ts
			}
			if health.LastError != "" {
				msg := health.LastError
				provider.Message = &msg
			}

			resp.Providers = append(resp.Providers, provider)
		}
	}

	response.JSON(w, r, http.StatusOK, resp)
}
