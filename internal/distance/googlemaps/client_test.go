package googlemaps_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitaroute/visitaroute/internal/distance"
	"github.com/visitaroute/visitaroute/internal/distance/googlemaps"
)

func newTestClient(serverURL string) *googlemaps.Client {
	return googlemaps.NewClient(googlemaps.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    serverURL,
		HTTPClient: &http.Client{Timeout: 2 * time.Second},
	})
}

func TestClient_Travel_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/distancematrix/json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "driving", r.URL.Query().Get("mode"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"rows": [{"elements": [{
				"status": "OK",
				"distance": {"value": 24500},
				"duration": {"value": 1800}
			}]}]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	result, err := client.Travel(context.Background(),
		distance.Coordinate{Lat: -26.9076, Lng: -48.6619},
		distance.Coordinate{Lat: -27.1433, Lng: -48.4884},
		time.Time{})
	require.NoError(t, err)

	assert.InDelta(t, 24.5, result.DistanceKm, 1e-9)
	assert.InDelta(t, 30.0, result.TravelMinutes, 1e-9)
}

func TestClient_Travel_PrefersTrafficDuration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"rows": [{"elements": [{
				"status": "OK",
				"distance": {"value": 10000},
				"duration": {"value": 600},
				"duration_in_traffic": {"value": 900}
			}]}]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	result, err := client.Travel(context.Background(),
		distance.Coordinate{Lat: -26.9, Lng: -48.66},
		distance.Coordinate{Lat: -26.99, Lng: -48.63},
		time.Time{})
	require.NoError(t, err)

	assert.InDelta(t, 15.0, result.TravelMinutes, 1e-9)
}

func TestClient_Travel_VendorErrors(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		status  int
		wantErr error
	}{
		{
			name:    "request denied",
			body:    `{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."}`,
			status:  http.StatusOK,
			wantErr: distance.ErrProviderUnavailable,
		},
		{
			name:    "quota exceeded",
			body:    `{"status": "OVER_QUERY_LIMIT"}`,
			status:  http.StatusOK,
			wantErr: distance.ErrProviderUnavailable,
		},
		{
			name:    "no route",
			body:    `{"status": "OK", "rows": [{"elements": [{"status": "ZERO_RESULTS"}]}]}`,
			status:  http.StatusOK,
			wantErr: distance.ErrNoRoute,
		},
		{
			name:    "malformed payload",
			body:    `{"status": "OK", "rows": [`,
			status:  http.StatusOK,
			wantErr: distance.ErrProviderUnavailable,
		},
		{
			name:    "missing fields",
			body:    `{"status": "OK", "rows": [{"elements": [{"status": "OK"}]}]}`,
			status:  http.StatusOK,
			wantErr: distance.ErrProviderUnavailable,
		},
		{
			name:    "http error",
			body:    `{}`,
			status:  http.StatusBadGateway,
			wantErr: distance.ErrProviderUnavailable,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL)

			_, err := client.Travel(context.Background(),
				distance.Coordinate{Lat: -26.9, Lng: -48.66},
				distance.Coordinate{Lat: -26.99, Lng: -48.63},
				time.Time{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestClient_Travel_RejectsInvalidCoordinates(t *testing.T) {
	client := newTestClient("http://unused.invalid")

	_, err := client.Travel(context.Background(),
		distance.Coordinate{Lat: 120, Lng: 0},
		distance.Coordinate{Lat: -26.99, Lng: -48.63},
		time.Time{})
	assert.ErrorIs(t, err, distance.ErrInvalidCoordinates)
}
