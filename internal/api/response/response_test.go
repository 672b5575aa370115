package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitaroute/visitaroute/internal/api/models"
	"github.com/visitaroute/visitaroute/internal/api/response"
)

func TestJSON_WritesStatusAndBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	rec := httptest.NewRecorder()

	response.JSON(rec, req, http.StatusOK, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestJSON_NilBodyWritesNothing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	rec := httptest.NewRecorder()

	response.JSON(rec, req, http.StatusAccepted, nil)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestBadRequest_WritesProblemWithInstance(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/itineraries:optimize", http.NoBody)
	rec := httptest.NewRecorder()

	response.BadRequest(rec, req, "invalid input", []models.FieldError{
		{Field: "date", Message: "must be YYYY-MM-DD"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	assert.Equal(t, "/v1/itineraries:optimize", problem.Instance)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "date", problem.Errors[0].Field)
}

func TestNotFound_WritesProblem(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/itineraries/missing", http.NoBody)
	rec := httptest.NewRecorder()

	response.NotFound(rec, req, "itinerary not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeNotFound, problem.Type)
	assert.Equal(t, "itinerary not found", problem.Detail)
}

func TestCreated_SetsLocationHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/itineraries:optimize", http.NoBody)
	rec := httptest.NewRecorder()

	response.Created(rec, req, "/v1/itineraries/abc123", map[string]string{"id": "abc123"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/v1/itineraries/abc123", rec.Header().Get("Location"))
	assert.Contains(t, rec.Body.String(), "abc123")
}

func TestNoContent(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/v1/itineraries/abc123", http.NoBody)
	rec := httptest.NewRecorder()

	response.NoContent(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
