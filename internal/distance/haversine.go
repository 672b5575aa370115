package distance

import (
	"context"
	"math"
	"time"
)

const (
	earthRadiusKm = 6371.0

	// DefaultAverageSpeedKmh is the regional driving average used when no
	// live travel data is available. 45 km/h reflects the coastal highway
	// and urban mix of the Itajaí valley.
	DefaultAverageSpeedKmh = 45.0

	// DefaultRoadFactor inflates the great-circle distance to approximate
	// real road distance plus contingency.
	DefaultRoadFactor = 1.2
)

// LocalEstimator computes travel estimates from great-circle distance and a
// configured average speed. It never touches the network and never fails,
// which makes it the tier-1 floor of the fallback chain.
type LocalEstimator struct {
	speedKmh   float64
	roadFactor float64
}

// LocalOption configures a LocalEstimator.
type LocalOption func(*LocalEstimator)

// WithAverageSpeed overrides the average travel speed in km/h.
func WithAverageSpeed(kmh float64) LocalOption {
	return func(e *LocalEstimator) {
		if kmh > 0 {
			e.speedKmh = kmh
		}
	}
}

// WithRoadFactor overrides the road-distance inflation factor.
func WithRoadFactor(factor float64) LocalOption {
	return func(e *LocalEstimator) {
		if factor >= 1 {
			e.roadFactor = factor
		}
	}
}

// NewLocalEstimator creates an estimator with regional defaults.
func NewLocalEstimator(opts ...LocalOption) *LocalEstimator {
	e := &LocalEstimator{
		speedKmh:   DefaultAverageSpeedKmh,
		roadFactor: DefaultRoadFactor,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the provider identifier.
func (e *LocalEstimator) Name() string { return "local-haversine" }

// Travel returns the estimated road distance and travel time between two
// points. The departure time is ignored: the local model has no traffic.
func (e *LocalEstimator) Travel(_ context.Context, origin, dest Coordinate, _ time.Time) (Result, error) {
	if err := ValidateCoordinate(origin); err != nil {
		return Result{}, err
	}
	if err := ValidateCoordinate(dest); err != nil {
		return Result{}, err
	}

	km := Haversine(origin, dest) * e.roadFactor
	return Result{
		DistanceKm:    km,
		TravelMinutes: km / e.speedKmh * 60,
	}, nil
}

// Haversine returns the great-circle distance between two points in km.
func Haversine(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}
