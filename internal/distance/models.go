// Package distance provides travel time and distance estimation between
// visit locations, either from a live distance-matrix vendor or from a
// local great-circle estimate.
package distance

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for distance lookups.
var (
	// ErrProviderUnavailable indicates the live vendor is down, timing out,
	// or returning garbage. Callers downgrade to a local estimate instead
	// of failing the run.
	ErrProviderUnavailable = errors.New("distance provider unavailable")

	// ErrInvalidCoordinates indicates coordinates outside valid WGS84 ranges.
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrNoRoute indicates the vendor found no drivable route between points.
	ErrNoRoute = errors.New("no route between the given points")
)

// Coordinate is a geographic point (WGS84).
type Coordinate struct {
	Lat float64
	Lng float64
}

// Result is the travel estimate for a single origin/destination pair.
type Result struct {
	DistanceKm    float64
	TravelMinutes float64
}

// Provider computes travel distance and time between two coordinates for a
// departure at the given time.
type Provider interface {
	Travel(ctx context.Context, origin, dest Coordinate, departAt time.Time) (Result, error)
	// Name returns the provider identifier for logging and health tracking.
	Name() string
}

// Error carries provider-level detail for a failed lookup.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ValidateCoordinate checks that a coordinate is finite and within range.
func ValidateCoordinate(c Coordinate) error {
	if c.Lat != c.Lat || c.Lng != c.Lng { // NaN
		return fmt.Errorf("%w: coordinates must be finite", ErrInvalidCoordinates)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %f out of range [-90, 90]", ErrInvalidCoordinates, c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: longitude %f out of range [-180, 180]", ErrInvalidCoordinates, c.Lng)
	}
	return nil
}
