package distance

import (
	"context"
	"math"
	"testing"
	"time"
)

var (
	itajai    = Coordinate{Lat: -26.9076, Lng: -48.6619}
	bombinhas = Coordinate{Lat: -27.1433, Lng: -48.4884}
)

func TestHaversine_KnownDistance(t *testing.T) {
	// Itajaí to Bombinhas is roughly 31 km great-circle.
	got := Haversine(itajai, bombinhas)
	if got < 29 || got > 33 {
		t.Errorf("expected ~31 km, got %.2f", got)
	}
}

func TestHaversine_ZeroForSamePoint(t *testing.T) {
	if got := Haversine(itajai, itajai); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestLocalEstimator_Travel(t *testing.T) {
	estimator := NewLocalEstimator()

	result, err := estimator.Travel(context.Background(), itajai, bombinhas, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.DistanceKm <= 0 {
		t.Errorf("expected positive distance, got %f", result.DistanceKm)
	}

	// distance/speed relationship must hold exactly.
	wantMinutes := result.DistanceKm / DefaultAverageSpeedKmh * 60
	if math.Abs(result.TravelMinutes-wantMinutes) > 1e-9 {
		t.Errorf("expected %.4f minutes, got %.4f", wantMinutes, result.TravelMinutes)
	}
}

func TestLocalEstimator_CustomSpeed(t *testing.T) {
	fast := NewLocalEstimator(WithAverageSpeed(90))
	slow := NewLocalEstimator(WithAverageSpeed(45))

	fastResult, err := fast.Travel(context.Background(), itajai, bombinhas, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	slowResult, err := slow.Travel(context.Background(), itajai, bombinhas, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(fastResult.TravelMinutes*2-slowResult.TravelMinutes) > 1e-9 {
		t.Errorf("halving speed should double travel time: %f vs %f",
			fastResult.TravelMinutes, slowResult.TravelMinutes)
	}
}

func TestLocalEstimator_RejectsInvalidCoordinates(t *testing.T) {
	estimator := NewLocalEstimator()

	cases := []struct {
		name   string
		origin Coordinate
	}{
		{"lat too high", Coordinate{Lat: 91, Lng: 0}},
		{"lng too low", Coordinate{Lat: 0, Lng: -181}},
		{"nan", Coordinate{Lat: math.NaN(), Lng: 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := estimator.Travel(context.Background(), tc.origin, itajai, time.Now()); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
