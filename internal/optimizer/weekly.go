package optimizer

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// DefaultMaxStopsPerDay caps how many visits one team attempts in a day.
const DefaultMaxStopsPerDay = 8

// WeekRequest plans several consecutive working days at once.
type WeekRequest struct {
	Stops []Stop

	// WeekStart is the first working day (midnight, local time).
	WeekStart time.Time

	// Days is how many consecutive days to plan. Zero plans five.
	Days int

	// MaxStopsPerDay caps each day's pool. Zero uses DefaultMaxStopsPerDay.
	MaxStopsPerDay int

	StartMinute        int
	EndMinute          int
	RequestedTier      Tier
	HonorBusinessHours bool
}

// WeekPlan is a sequence of day itineraries plus whatever did not fit.
type WeekPlan struct {
	Itineraries []*Itinerary

	// Unscheduled lists stop IDs that fit in no day of the plan.
	Unscheduled []string
}

// PlanWeek splits the stops across the week day by day. Each day is offered
// the highest-priority remaining stops up to the daily cap; stops a day
// cannot fit roll over to the next.
func (s *Service) PlanWeek(ctx context.Context, req WeekRequest) (*WeekPlan, error) {
	days := req.Days
	if days <= 0 {
		days = 5
	}
	capPerDay := req.MaxStopsPerDay
	if capPerDay <= 0 {
		capPerDay = DefaultMaxStopsPerDay
	}
	if req.WeekStart.IsZero() {
		return nil, fmt.Errorf("%w: week start is required", ErrInvalidInput)
	}

	remaining := make([]Stop, len(req.Stops))
	copy(remaining, req.Stops)

	// Urgent stops take the earliest days. The stable sort keeps input
	// order within a rank, and rollOver preserves it for later days.
	sort.SliceStable(remaining, func(i, j int) bool {
		return priorityRank(remaining[i].Priority) < priorityRank(remaining[j].Priority)
	})

	plan := &WeekPlan{}
	for day := 0; day < days && len(remaining) > 0; day++ {
		offered := remaining
		if len(offered) > capPerDay {
			offered = remaining[:capPerDay]
		}

		itinerary, err := s.Optimize(ctx, Request{
			Stops:              offered,
			Date:               req.WeekStart.AddDate(0, 0, day),
			StartMinute:        req.StartMinute,
			EndMinute:          req.EndMinute,
			RequestedTier:      req.RequestedTier,
			HonorBusinessHours: req.HonorBusinessHours,
		})
		if err != nil {
			return nil, fmt.Errorf("plan day %d: %w", day+1, err)
		}
		plan.Itineraries = append(plan.Itineraries, itinerary)

		remaining = rollOver(remaining, itinerary)
	}

	plan.Unscheduled = stopIDs(remaining)
	return plan, nil
}

// rollOver removes the day's scheduled stops from the pool, keeping input
// order for everything that remains.
func rollOver(remaining []Stop, itinerary *Itinerary) []Stop {
	scheduled := make(map[string]struct{}, len(itinerary.Stops))
	for i := range itinerary.Stops {
		scheduled[itinerary.Stops[i].ID] = struct{}{}
	}

	next := remaining[:0:0]
	for i := range remaining {
		if _, done := scheduled[remaining[i].ID]; !done {
			next = append(next, remaining[i])
		}
	}
	return next
}
