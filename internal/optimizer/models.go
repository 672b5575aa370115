// Package optimizer builds ordered day itineraries for field visits,
// minimizing travel burden under working-window and business-hours
// constraints and degrading through three fidelity tiers when live mapping
// data is unavailable.
package optimizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/visitaroute/visitaroute/internal/distance"
	"github.com/visitaroute/visitaroute/internal/places"
)

// Tier is the optimization fidelity mode.
type Tier int

const (
	// TierLocal uses only the local haversine estimator. Always available.
	TierLocal Tier = 1
	// TierLiveDistance uses live travel times, no business-hours checks.
	TierLiveDistance Tier = 2
	// TierFull uses live travel times and live business hours.
	TierFull Tier = 3
)

// ErrInvalidInput rejects a malformed optimization request. It is the only
// error class that aborts a run; everything else degrades.
var ErrInvalidInput = errors.New("invalid input")

// Stop is a single visit candidate. Built once per request, never mutated.
type Stop struct {
	// ID is an opaque identifier, unique within a request.
	ID string

	// Name is the display label, also used for live place lookups.
	Name string

	// Coordinates is the stop location (WGS84).
	Coordinates distance.Coordinate

	// Municipality groups stops for diagnostics and hours caching.
	Municipality string

	// Kind classifies the establishment for business-hours defaults.
	Kind places.Kind

	// Priority ranks urgency; 1 is most urgent. Ties break by input order.
	Priority int

	// DurationMinutes is the on-site time the visit consumes.
	DurationMinutes int
}

// Leg is the travel segment into a stop. The first leg departs from the
// request origin, so an itinerary has exactly one leg per scheduled stop.
type Leg struct {
	FromID        string // empty for the origin leg
	ToID          string
	DistanceKm    float64
	TravelMinutes float64
}

// ScheduledStop is a stop placed in the itinerary with its projected times.
type ScheduledStop struct {
	Stop
	ArriveAt   time.Time
	DepartAt   time.Time
	OpenStatus places.Status
}

// Statistics aggregates an itinerary. Always derived from the stops and
// legs by Assemble, never mutated independently.
type Statistics struct {
	TotalDistanceKm     float64
	TotalTravelMinutes  float64
	TotalVisitMinutes   float64
	TotalJourneyMinutes float64
	// Efficiency is on-site time over total journey time, 0 for an empty
	// journey.
	Efficiency float64
}

// Itinerary is the result of one optimization run.
type Itinerary struct {
	Date  time.Time
	Stops []ScheduledStop
	Legs  []Leg
	Stats Statistics

	// Unscheduled lists stop IDs that could not be placed in the window.
	Unscheduled []string

	// OpenStatusUnknown lists scheduled stop IDs whose business hours
	// could not be verified at tier 3.
	OpenStatusUnknown []string

	RequestedTier Tier
	EffectiveTier Tier

	// Degraded is set with a reason whenever EffectiveTier < RequestedTier.
	Degraded       bool
	DegradedReason string

	// Truncated is set when the run hit its deadline and returned the best
	// partial itinerary.
	Truncated bool
}

// Request is one optimization run's input.
type Request struct {
	Stops []Stop

	// Date is the calendar day being scheduled (midnight, local time).
	Date time.Time

	// StartMinute / EndMinute bound the working window in minutes since
	// midnight of Date.
	StartMinute int
	EndMinute   int

	// Origin is the departure point. Nil uses the regional office.
	Origin *distance.Coordinate

	// RequestedTier is a ceiling; the effective tier may be lower.
	RequestedTier Tier

	// HonorBusinessHours enables opening-hours checks, meaningful only at
	// tier 3.
	HonorBusinessHours bool
}

// StartTime returns the absolute start of the working window.
func (r *Request) StartTime() time.Time {
	return r.Date.Add(time.Duration(r.StartMinute) * time.Minute)
}

// EndTime returns the absolute end of the working window.
func (r *Request) EndTime() time.Time {
	return r.Date.Add(time.Duration(r.EndMinute) * time.Minute)
}

// Validate rejects malformed requests before any computation is attempted.
func (r *Request) Validate() error {
	if r.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if r.StartMinute < 0 || r.EndMinute > 24*60 {
		return fmt.Errorf("%w: working window outside the day", ErrInvalidInput)
	}
	if r.EndMinute <= r.StartMinute {
		return fmt.Errorf("%w: end time %s is not after start time %s",
			ErrInvalidInput, minuteClock(r.EndMinute), minuteClock(r.StartMinute))
	}
	if r.RequestedTier < TierLocal || r.RequestedTier > TierFull {
		return fmt.Errorf("%w: tier %d outside [1, 3]", ErrInvalidInput, int(r.RequestedTier))
	}
	if r.Origin != nil {
		if err := distance.ValidateCoordinate(*r.Origin); err != nil {
			return fmt.Errorf("%w: origin: %s", ErrInvalidInput, err)
		}
	}

	seen := make(map[string]struct{}, len(r.Stops))
	for i := range r.Stops {
		stop := &r.Stops[i]
		if stop.ID == "" {
			return fmt.Errorf("%w: stop %d has an empty id", ErrInvalidInput, i)
		}
		if _, dup := seen[stop.ID]; dup {
			return fmt.Errorf("%w: duplicate stop id %q", ErrInvalidInput, stop.ID)
		}
		seen[stop.ID] = struct{}{}

		if err := distance.ValidateCoordinate(stop.Coordinates); err != nil {
			return fmt.Errorf("%w: stop %q: %s", ErrInvalidInput, stop.ID, err)
		}
		if stop.DurationMinutes < 0 {
			return fmt.Errorf("%w: stop %q: negative duration", ErrInvalidInput, stop.ID)
		}
	}

	return nil
}

func minuteClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
