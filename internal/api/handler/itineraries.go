package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/visitaroute/visitaroute/internal/api/models"
	"github.com/visitaroute/visitaroute/internal/api/response"
	"github.com/visitaroute/visitaroute/internal/history"
)

// ItinerariesHandler handles stored itinerary endpoints.
type ItinerariesHandler struct {
	repo history.Repository
}

// NewItinerariesHandler creates a new ItinerariesHandler.
func NewItinerariesHandler(repo history.Repository) *ItinerariesHandler {
	return &ItinerariesHandler{repo: repo}
}

// List handles GET /v1/itineraries - list stored runs, newest first.
func (h *ItinerariesHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			response.BadRequest(w, r, "limit must be between 1 and 200", nil)
			return
		}
		limit = parsed
	}

	result, err := h.repo.List(r.Context(), history.ListOptions{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	})
	if err != nil {
		response.InternalError(w, r, "failed to list itineraries")
		return
	}

	paged := models.PagedItineraries{
		Items: make([]models.ItinerarySummary, 0, len(result.Items)),
		Meta:  models.PagedResponseMeta{Limit: limit},
	}
	for _, record := range result.Items {
		paged.Items = append(paged.Items, models.NewItinerarySummary(record))
	}
	if result.NextCursor != "" {
		paged.Meta.NextCursor = &result.NextCursor
	}

	response.JSON(w, r, http.StatusOK, paged)
}

// Get handles GET /v1/itineraries/{itineraryId} - fetch one stored run.
func (h *ItinerariesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itineraryId")
	if id == "" {
		response.BadRequest(w, r, "itineraryId is required", nil)
		return
	}

	record, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, history.ErrItineraryNotFound) {
			response.NotFound(w, r, "itinerary not found")
			return
		}
		response.InternalError(w, r, "failed to load itinerary")
		return
	}

	itinerary, err := record.Itinerary()
	if err != nil {
		response.InternalError(w, r, "stored itinerary payload is corrupt")
		return
	}

	// Return the full itinerary with the stored metadata alongside.
	body := struct {
		models.ItinerarySummary
		Itinerary json.RawMessage `json:"itinerary"`
	}{
		ItinerarySummary: models.NewItinerarySummary(record),
	}
	payload, err := json.Marshal(models.NewItineraryResponse(itinerary))
	if err != nil {
		response.InternalError(w, r, "failed to encode itinerary")
		return
	}
	body.Itinerary = payload

	response.JSON(w, r, http.StatusOK, body)
}

// Delete handles DELETE /v1/itineraries/{itineraryId} - remove a stored run.
func (h *ItinerariesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itineraryId")
	if id == "" {
		response.BadRequest(w, r, "itineraryId is required", nil)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		response.InternalError(w, r, "failed to delete itinerary")
		return
	}

	response.NoContent(w, r)
}
