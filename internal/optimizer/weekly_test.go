package optimizer

import (
	"context"
	"fmt"
	"testing"

	"github.com/visitaroute/visitaroute/internal/distance"
)

func TestPlanWeek_SplitsAcrossDays(t *testing.T) {
	var stops []Stop
	for i := 0; i < 6; i++ {
		stops = append(stops, Stop{
			ID:              fmt.Sprintf("stop-%d", i),
			Name:            fmt.Sprintf("Stop %d", i),
			Priority:        1,
			DurationMinutes: 60,
			Coordinates:     distance.Coordinate{Lat: -26.90 - float64(i)*0.01, Lng: -48.66},
		})
	}

	plan, err := localService().PlanWeek(context.Background(), WeekRequest{
		Stops:          stops,
		WeekStart:      testDate,
		Days:           3,
		MaxStopsPerDay: 3,
		StartMinute:    8 * 60,
		EndMinute:      17 * 60,
		RequestedTier:  TierLocal,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Itineraries) != 2 {
		t.Fatalf("expected 2 planned days, got %d", len(plan.Itineraries))
	}
	if got := len(plan.Itineraries[0].Stops); got != 3 {
		t.Errorf("day 1 should take the daily cap, got %d", got)
	}
	if got := len(plan.Itineraries[1].Stops); got != 3 {
		t.Errorf("day 2 should take the remainder, got %d", got)
	}
	if len(plan.Unscheduled) != 0 {
		t.Errorf("everything fits in two days, got unscheduled %v", plan.Unscheduled)
	}

	if d := plan.Itineraries[1].Date; !d.Equal(testDate.AddDate(0, 0, 1)) {
		t.Errorf("day 2 date = %v", d)
	}

	seen := map[string]bool{}
	for _, itinerary := range plan.Itineraries {
		for _, s := range itinerary.Stops {
			if seen[s.ID] {
				t.Errorf("stop %q scheduled twice", s.ID)
			}
			seen[s.ID] = true
		}
	}
}

func TestPlanWeek_RollsOverUnscheduled(t *testing.T) {
	var stops []Stop
	for i := 0; i < 4; i++ {
		stops = append(stops, Stop{
			ID:              fmt.Sprintf("stop-%d", i),
			Priority:        1,
			DurationMinutes: 240, // two fit per day at most
			Coordinates:     distance.Coordinate{Lat: -26.90, Lng: -48.66 - float64(i)*0.01},
		})
	}

	plan, err := localService().PlanWeek(context.Background(), WeekRequest{
		Stops:          stops,
		WeekStart:      testDate,
		Days:           1,
		MaxStopsPerDay: 8,
		StartMinute:    8 * 60,
		EndMinute:      17 * 60,
		RequestedTier:  TierLocal,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Itineraries) != 1 {
		t.Fatalf("expected 1 planned day, got %d", len(plan.Itineraries))
	}
	scheduled := len(plan.Itineraries[0].Stops)
	if scheduled != 2 {
		t.Errorf("expected 2 stops in a 9-hour day, got %d", scheduled)
	}
	if len(plan.Unscheduled) != 4-scheduled {
		t.Errorf("expected %d rolled-over stops, got %v", 4-scheduled, plan.Unscheduled)
	}
}

func TestPlanWeek_UrgentStopsTakeEarlyDays(t *testing.T) {
	// Two routine stops listed first, one urgent stop last. With a daily
	// cap of 2 the urgent stop must still land on day 1.
	stops := []Stop{
		{ID: "routine-a", Priority: 5, DurationMinutes: 60,
			Coordinates: distance.Coordinate{Lat: -26.90, Lng: -48.66}},
		{ID: "routine-b", Priority: 5, DurationMinutes: 60,
			Coordinates: distance.Coordinate{Lat: -26.91, Lng: -48.66}},
		{ID: "urgent", Priority: 1, DurationMinutes: 60,
			Coordinates: distance.Coordinate{Lat: -26.92, Lng: -48.66}},
	}

	plan, err := localService().PlanWeek(context.Background(), WeekRequest{
		Stops:          stops,
		WeekStart:      testDate,
		Days:           2,
		MaxStopsPerDay: 2,
		StartMinute:    8 * 60,
		EndMinute:      17 * 60,
		RequestedTier:  TierLocal,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Itineraries) != 2 {
		t.Fatalf("expected 2 planned days, got %d", len(plan.Itineraries))
	}

	dayOne := map[string]bool{}
	for _, s := range plan.Itineraries[0].Stops {
		dayOne[s.ID] = true
	}
	if !dayOne["urgent"] {
		t.Errorf("priority-1 stop must be offered on day 1, day 1 got %v", plan.Itineraries[0].Stops)
	}

	// Routine stops keep their input order among themselves.
	var routines []string
	for _, itinerary := range plan.Itineraries {
		for _, s := range itinerary.Stops {
			if s.ID != "urgent" {
				routines = append(routines, s.ID)
			}
		}
	}
	if len(routines) != 2 {
		t.Fatalf("expected both routine stops scheduled, got %v", routines)
	}
}

func TestPlanWeek_RequiresWeekStart(t *testing.T) {
	_, err := localService().PlanWeek(context.Background(), WeekRequest{
		Stops:         regionStops(),
		StartMinute:   8 * 60,
		EndMinute:     17 * 60,
		RequestedTier: TierLocal,
	})
	if err == nil {
		t.Fatal("expected an error for a zero week start")
	}
}
