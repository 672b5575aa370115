package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/visitaroute/visitaroute/internal/distance"
	"github.com/visitaroute/visitaroute/internal/places"
)

// priorityWeightMinutes is the travel-time advantage granted per priority
// rank. A priority-1 stop beats a priority-3 stop unless the latter is more
// than ten minutes closer.
const priorityWeightMinutes = 5.0

// TourBuilder orders stops with a greedy nearest-feasible-next walk. The
// same inputs always produce the same tour: candidates are scanned in input
// order and score ties keep the earlier stop.
type TourBuilder struct {
	provider distance.Provider
	oracle   places.Oracle
	logger   zerolog.Logger
}

// NewTourBuilder builds a tour builder for one selection. oracle may be nil
// below tier 3.
func NewTourBuilder(provider distance.Provider, oracle places.Oracle, logger zerolog.Logger) *TourBuilder {
	return &TourBuilder{provider: provider, oracle: oracle, logger: logger}
}

// tour is the raw builder output before statistics assembly.
type tour struct {
	stops       []ScheduledStop
	legs        []Leg
	unscheduled []Stop
	unknownOpen []string
	truncated   bool
}

// candidate is one scored feasible extension of the tour.
type candidate struct {
	index  int
	score  float64
	result distance.Result
	arrive time.Time
	depart time.Time
	status places.Status
}

// Build walks the stops from origin, placing at each step the feasible stop
// with the lowest score. A provider error aborts the build so the caller
// can rerun it on the local estimator; a context deadline returns the
// partial tour with truncated set.
func (b *TourBuilder) Build(ctx context.Context, origin distance.Coordinate, stops []Stop, start, end time.Time) (*tour, error) {
	out := &tour{}
	remaining := make([]Stop, len(stops))
	copy(remaining, stops)

	position := origin
	now := start

	for len(remaining) > 0 {
		if err := ctx.Err(); err != nil {
			out.truncated = true
			b.logger.Warn().
				Int("scheduled", len(out.stops)).
				Int("remaining", len(remaining)).
				Msg("tour build deadline reached, returning partial itinerary")
			break
		}

		best, err := b.pickNext(ctx, position, remaining, now, end)
		if err != nil {
			return nil, err
		}
		if best == nil {
			// Nothing else fits in the window.
			break
		}

		stop := remaining[best.index]
		out.stops = append(out.stops, ScheduledStop{
			Stop:       stop,
			ArriveAt:   best.arrive,
			DepartAt:   best.depart,
			OpenStatus: best.status,
		})
		fromID := ""
		if n := len(out.stops); n > 1 {
			fromID = out.stops[n-2].ID
		}
		out.legs = append(out.legs, Leg{
			FromID:        fromID,
			ToID:          stop.ID,
			DistanceKm:    best.result.DistanceKm,
			TravelMinutes: best.result.TravelMinutes,
		})
		if best.status == places.StatusUnknown && b.oracle != nil {
			out.unknownOpen = append(out.unknownOpen, stop.ID)
		}

		position = stop.Coordinates
		now = best.depart
		remaining = append(remaining[:best.index], remaining[best.index+1:]...)
	}

	out.unscheduled = remaining
	return out, nil
}

// pickNext scores every remaining stop from the current position and
// returns the cheapest feasible one, or nil when none fits. Stops reported
// closed at their projected arrival are passed over but stay in the pool,
// so a stop closed for lunch can still be placed later in the walk.
func (b *TourBuilder) pickNext(ctx context.Context, from distance.Coordinate, remaining []Stop, now, end time.Time) (*candidate, error) {
	var best *candidate

	for i := range remaining {
		stop := &remaining[i]

		result, err := b.provider.Travel(ctx, from, stop.Coordinates, now)
		if err != nil {
			return nil, fmt.Errorf("travel to stop %q: %w", stop.ID, err)
		}

		arrive := now.Add(minutesDuration(result.TravelMinutes))
		depart := arrive.Add(time.Duration(stop.DurationMinutes) * time.Minute)
		if depart.After(end) {
			continue
		}

		status := places.StatusUnknown
		if b.oracle != nil {
			status = b.oracle.IsOpenAt(ctx, places.PlaceRef{
				Name:         stop.Name,
				Municipality: stop.Municipality,
				Kind:         stop.Kind,
			}, arrive)
			if status == places.StatusClosed {
				continue
			}
		}

		score := result.TravelMinutes + priorityWeightMinutes*float64(priorityRank(stop.Priority)-1)
		if best == nil || score < best.score {
			best = &candidate{
				index:  i,
				score:  score,
				result: result,
				arrive: arrive,
				depart: depart,
				status: status,
			}
		}
	}

	return best, nil
}

func minutesDuration(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

// priorityRank clamps a stop's priority to the 1-is-most-urgent scale, so
// an unset (zero) priority never outranks an explicit 1.
func priorityRank(p int) int {
	if p < 1 {
		return 1
	}
	return p
}
