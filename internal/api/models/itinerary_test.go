package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitaroute/visitaroute/internal/api/models"
	"github.com/visitaroute/visitaroute/internal/optimizer"
)

func validOptimizeRequest() models.OptimizeRequest {
	return models.OptimizeRequest{
		Date: "2024-07-15",
		Stops: []models.StopInput{
			{
				ID:           "pref-itajai",
				Name:         "Prefeitura de Itajaí",
				Municipality: "Itajaí",
				Kind:         "prefeitura",
			},
			{
				ID:       "emp-porto",
				Name:     "Operadora Portuária",
				Kind:     "empresa",
				Location: &models.Point{Lat: -26.91, Lng: -48.66},
			},
		},
	}
}

func TestOptimizeRequest_ToDomain_Defaults(t *testing.T) {
	body := validOptimizeRequest()

	req, errs := body.ToDomain()

	require.Empty(t, errs)
	assert.Equal(t, "2024-07-15", req.Date.Format("2006-01-02"))
	assert.Equal(t, 8*60, req.StartMinute)
	assert.Equal(t, 17*60, req.EndMinute)
	assert.Equal(t, optimizer.TierFull, req.RequestedTier)
	assert.True(t, req.HonorBusinessHours)
	require.Len(t, req.Stops, 2)
	assert.Equal(t, "pref-itajai", req.Stops[0].ID)
}

func TestOptimizeRequest_ToDomain_CustomWindow(t *testing.T) {
	body := validOptimizeRequest()
	body.WindowStart = "09:30"
	body.WindowEnd = "16:00"
	body.Tier = 1
	honor := false
	body.HonorBusinessHours = &honor

	req, errs := body.ToDomain()

	require.Empty(t, errs)
	assert.Equal(t, 9*60+30, req.StartMinute)
	assert.Equal(t, 16*60, req.EndMinute)
	assert.Equal(t, optimizer.TierLocal, req.RequestedTier)
	assert.False(t, req.HonorBusinessHours)
}

func TestOptimizeRequest_ToDomain_FieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*models.OptimizeRequest)
		wantField string
	}{
		{
			name:      "bad date format",
			mutate:    func(r *models.OptimizeRequest) { r.Date = "15/07/2024" },
			wantField: "date",
		},
		{
			name:      "bad window start",
			mutate:    func(r *models.OptimizeRequest) { r.WindowStart = "8am" },
			wantField: "windowStart",
		},
		{
			name:      "tier out of range",
			mutate:    func(r *models.OptimizeRequest) { r.Tier = 4 },
			wantField: "tier",
		},
		{
			name:      "missing stop id",
			mutate:    func(r *models.OptimizeRequest) { r.Stops[0].ID = "" },
			wantField: "stops[0].id",
		},
		{
			name:      "unknown kind",
			mutate:    func(r *models.OptimizeRequest) { r.Stops[0].Kind = "cartório" },
			wantField: "stops[0].kind",
		},
		{
			name: "uncovered municipality",
			mutate: func(r *models.OptimizeRequest) {
				r.Stops[0].Municipality = "Florianópolis"
			},
			wantField: "stops[0].municipality",
		},
		{
			name: "no location and no municipality",
			mutate: func(r *models.OptimizeRequest) {
				r.Stops[0].Municipality = ""
				r.Stops[0].Location = nil
			},
			wantField: "stops[0].location",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validOptimizeRequest()
			tt.mutate(&body)

			_, errs := body.ToDomain()

			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantField, errs[0].Field)
		})
	}
}

func TestPlanWeekRequest_ToDomain(t *testing.T) {
	body := models.PlanWeekRequest{
		WeekStart:      "2024-07-15",
		Days:           3,
		MaxStopsPerDay: 4,
		Stops:          validOptimizeRequest().Stops,
	}

	req, errs := body.ToDomain()

	require.Empty(t, errs)
	assert.Equal(t, "2024-07-15", req.WeekStart.Format("2006-01-02"))
	assert.Equal(t, 3, req.Days)
	assert.Equal(t, 4, req.MaxStopsPerDay)
	require.Len(t, req.Stops, 2)
}

func TestPlanWeekRequest_ToDomain_RenamesDateErrors(t *testing.T) {
	body := models.PlanWeekRequest{
		WeekStart: "not-a-date",
		Stops:     validOptimizeRequest().Stops,
	}

	_, errs := body.ToDomain()

	require.Len(t, errs, 1)
	assert.Equal(t, "weekStart", errs[0].Field)
}
