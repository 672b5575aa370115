// Package handler provides HTTP handlers for the VisitaRoute API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/visitaroute/visitaroute/internal/api/models"
	"github.com/visitaroute/visitaroute/internal/api/response"
	"github.com/visitaroute/visitaroute/internal/history"
	"github.com/visitaroute/visitaroute/internal/optimizer"
)

// OptimizeHandler handles itinerary optimization endpoints.
type OptimizeHandler struct {
	service *optimizer.Service
	repo    history.Repository
	logger  zerolog.Logger
}

// NewOptimizeHandler creates a new OptimizeHandler. repo may be nil, in
// which case runs are not persisted.
func NewOptimizeHandler(service *optimizer.Service, repo history.Repository, logger zerolog.Logger) *OptimizeHandler {
	return &OptimizeHandler{service: service, repo: repo, logger: logger}
}

// Optimize handles POST /v1/itineraries:optimize - build a day itinerary.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var input models.OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	req, fieldErrs := input.ToDomain()
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "request validation failed", fieldErrs)
		return
	}

	itinerary, err := h.service.Optimize(r.Context(), req)
	if err != nil {
		if errors.Is(err, optimizer.ErrInvalidInput) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}
		h.logger.Error().Err(err).Msg("optimization failed")
		response.InternalError(w, r, "optimization failed")
		return
	}

	annotateRun(r, itinerary)

	resp := models.NewItineraryResponse(itinerary)

	if h.repo != nil {
		record, err := history.NewRecord(itinerary)
		if err == nil {
			err = h.repo.Create(r.Context(), record)
		}
		if err != nil {
			// History is best effort, the itinerary is still returned.
			h.logger.Warn().Err(err).Msg("failed to persist itinerary")
		} else {
			location := fmt.Sprintf("/v1/itineraries/%s", record.ID)
			response.Created(w, r, location, resp)
			return
		}
	}

	response.JSON(w, r, http.StatusOK, resp)
}

// PlanWeek handles POST /v1/itineraries:plan-week - build a multi-day plan.
func (h *OptimizeHandler) PlanWeek(w http.ResponseWriter, r *http.Request) {
	var input models.PlanWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	req, fieldErrs := input.ToDomain()
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "request validation failed", fieldErrs)
		return
	}

	plan, err := h.service.PlanWeek(r.Context(), req)
	if err != nil {
		if errors.Is(err, optimizer.ErrInvalidInput) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}
		h.logger.Error().Err(err).Msg("week planning failed")
		response.InternalError(w, r, "week planning failed")
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.Int("optimizer.days_planned", len(plan.Itineraries)),
		attribute.Int("optimizer.unscheduled_stops", len(plan.Unscheduled)),
	)

	response.JSON(w, r, http.StatusOK, models.NewWeekPlanResponse(plan))
}

// annotateRun puts the tier outcome on the request span so traces can be
// filtered by degradation without digging through response bodies.
func annotateRun(r *http.Request, itinerary *optimizer.Itinerary) {
	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.Int("optimizer.requested_tier", int(itinerary.RequestedTier)),
		attribute.Int("optimizer.effective_tier", int(itinerary.EffectiveTier)),
		attribute.Bool("optimizer.degraded", itinerary.Degraded),
		attribute.Int("optimizer.scheduled_stops", len(itinerary.Stops)),
		attribute.Int("optimizer.unscheduled_stops", len(itinerary.Unscheduled)),
	)
}
