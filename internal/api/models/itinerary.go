package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/visitaroute/visitaroute/internal/distance"
	"github.com/visitaroute/visitaroute/internal/history"
	"github.com/visitaroute/visitaroute/internal/optimizer"
	"github.com/visitaroute/visitaroute/internal/places"
)

const (
	defaultWindowStart = "08:00"
	defaultWindowEnd   = "17:00"
)

// StopInput is one visit candidate in an optimization request.
type StopInput struct {
	ID              string `json:"id" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Municipality    string `json:"municipality,omitempty"`
	Kind            string `json:"kind,omitempty" validate:"omitempty,oneof=prefeitura empresa autarquia"`
	Priority        int    `json:"priority,omitempty" validate:"omitempty,gte=1,lte=5"`
	DurationMinutes int    `json:"durationMinutes,omitempty" validate:"omitempty,gte=0"`
	Location        *Point `json:"location,omitempty"`
}

// OptimizeRequest is the request body for a day optimization.
type OptimizeRequest struct {
	Date               string      `json:"date" validate:"required"`
	WindowStart        string      `json:"windowStart,omitempty"`
	WindowEnd          string      `json:"windowEnd,omitempty"`
	Origin             *Point      `json:"origin,omitempty"`
	Tier               int         `json:"tier,omitempty"`
	HonorBusinessHours *bool       `json:"honorBusinessHours,omitempty"`
	Stops              []StopInput `json:"stops" validate:"required"`
}

// ToDomain converts the request to an optimizer request, collecting field
// errors for anything that cannot be parsed. Defaults: window 08:00-17:00,
// tier 3, business hours honored.
func (r *OptimizeRequest) ToDomain() (optimizer.Request, []FieldError) {
	var errs []FieldError

	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		errs = append(errs, FieldError{Field: "date", Message: "must be YYYY-MM-DD"})
	}

	startMinute, err := parseClock(stringOrDefault(r.WindowStart, defaultWindowStart))
	if err != nil {
		errs = append(errs, FieldError{Field: "windowStart", Message: "must be HH:MM"})
	}
	endMinute, err := parseClock(stringOrDefault(r.WindowEnd, defaultWindowEnd))
	if err != nil {
		errs = append(errs, FieldError{Field: "windowEnd", Message: "must be HH:MM"})
	}

	tier := r.Tier
	if tier == 0 {
		tier = int(optimizer.TierFull)
	}
	if tier < 1 || tier > 3 {
		errs = append(errs, FieldError{Field: "tier", Message: "must be 1, 2 or 3"})
	}

	honorHours := true
	if r.HonorBusinessHours != nil {
		honorHours = *r.HonorBusinessHours
	}

	req := optimizer.Request{
		Date:               date,
		StartMinute:        startMinute,
		EndMinute:          endMinute,
		RequestedTier:      optimizer.Tier(tier),
		HonorBusinessHours: honorHours,
		Stops:              make([]optimizer.Stop, 0, len(r.Stops)),
	}
	if r.Origin != nil {
		req.Origin = &distance.Coordinate{Lat: r.Origin.Lat, Lng: r.Origin.Lng}
	}

	for i, input := range r.Stops {
		stop, stopErrs := input.toDomain(i)
		errs = append(errs, stopErrs...)
		req.Stops = append(req.Stops, stop)
	}

	return req, errs
}

func (s *StopInput) toDomain(index int) (optimizer.Stop, []FieldError) {
	var errs []FieldError

	if s.ID == "" {
		errs = append(errs, FieldError{
			Field:   fmt.Sprintf("stops[%d].id", index),
			Message: "is required",
		})
	}

	kind := places.Kind(s.Kind)
	switch kind {
	case "", places.KindPrefeitura, places.KindEmpresa, places.KindAutarquia:
	default:
		errs = append(errs, FieldError{
			Field:   fmt.Sprintf("stops[%d].kind", index),
			Message: "must be prefeitura, empresa or autarquia",
		})
	}

	stop := optimizer.Stop{
		ID:              s.ID,
		Name:            s.Name,
		Municipality:    s.Municipality,
		Kind:            kind,
		Priority:        s.Priority,
		DurationMinutes: s.DurationMinutes,
	}
	if s.Location != nil {
		stop.Coordinates = distance.Coordinate{Lat: s.Location.Lat, Lng: s.Location.Lng}
	} else if s.Municipality == "" {
		errs = append(errs, FieldError{
			Field:   fmt.Sprintf("stops[%d].location", index),
			Message: "location or a covered municipality is required",
		})
	} else if _, ok := optimizer.MunicipalityCentroid(s.Municipality); !ok {
		errs = append(errs, FieldError{
			Field:   fmt.Sprintf("stops[%d].municipality", index),
			Message: "is not covered by this regional office",
		})
	}

	return stop, errs
}

// ScheduledStopResponse is one placed stop in an itinerary response.
type ScheduledStopResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Municipality    string    `json:"municipality,omitempty"`
	Kind            string    `json:"kind,omitempty"`
	Priority        int       `json:"priority"`
	DurationMinutes int       `json:"durationMinutes"`
	Location        Point     `json:"location"`
	ArriveAt        Timestamp `json:"arriveAt"`
	DepartAt        Timestamp `json:"departAt"`
	OpenStatus      string    `json:"openStatus,omitempty"`
}

// LegResponse is one travel segment in an itinerary response.
type LegResponse struct {
	From          string  `json:"from,omitempty"`
	To            string  `json:"to"`
	DistanceKm    float64 `json:"distanceKm"`
	TravelMinutes float64 `json:"travelMinutes"`
}

// StatisticsResponse aggregates an itinerary.
type StatisticsResponse struct {
	TotalDistanceKm     float64 `json:"totalDistanceKm"`
	TotalTravelMinutes  float64 `json:"totalTravelMinutes"`
	TotalVisitMinutes   float64 `json:"totalVisitMinutes"`
	TotalJourneyMinutes float64 `json:"totalJourneyMinutes"`
	Efficiency          float64 `json:"efficiency"`
}

// ItineraryResponse is one optimized day plan.
type ItineraryResponse struct {
	Date              string                  `json:"date"`
	Stops             []ScheduledStopResponse `json:"stops"`
	Legs              []LegResponse           `json:"legs"`
	Stats             StatisticsResponse      `json:"stats"`
	Unscheduled       []string                `json:"unscheduled,omitempty"`
	OpenStatusUnknown []string                `json:"openStatusUnknown,omitempty"`
	RequestedTier     int                     `json:"requestedTier"`
	EffectiveTier     int                     `json:"effectiveTier"`
	Degraded          bool                    `json:"degraded"`
	DegradedReason    string                  `json:"degradedReason,omitempty"`
	Truncated         bool                    `json:"truncated"`
}

// NewItineraryResponse converts a domain itinerary to its API shape.
func NewItineraryResponse(itinerary *optimizer.Itinerary) ItineraryResponse {
	resp := ItineraryResponse{
		Date:              itinerary.Date.Format("2006-01-02"),
		Stops:             make([]ScheduledStopResponse, 0, len(itinerary.Stops)),
		Legs:              make([]LegResponse, 0, len(itinerary.Legs)),
		Unscheduled:       itinerary.Unscheduled,
		OpenStatusUnknown: itinerary.OpenStatusUnknown,
		RequestedTier:     int(itinerary.RequestedTier),
		EffectiveTier:     int(itinerary.EffectiveTier),
		Degraded:          itinerary.Degraded,
		DegradedReason:    itinerary.DegradedReason,
		Truncated:         itinerary.Truncated,
		Stats: StatisticsResponse{
			TotalDistanceKm:     itinerary.Stats.TotalDistanceKm,
			TotalTravelMinutes:  itinerary.Stats.TotalTravelMinutes,
			TotalVisitMinutes:   itinerary.Stats.TotalVisitMinutes,
			TotalJourneyMinutes: itinerary.Stats.TotalJourneyMinutes,
			Efficiency:          itinerary.Stats.Efficiency,
		},
	}

	for _, stop := range itinerary.Stops {
		resp.Stops = append(resp.Stops, ScheduledStopResponse{
			ID:              stop.ID,
			Name:            stop.Name,
			Municipality:    stop.Municipality,
			Kind:            string(stop.Kind),
			Priority:        stop.Priority,
			DurationMinutes: stop.DurationMinutes,
			Location:        Point{Lat: stop.Coordinates.Lat, Lng: stop.Coordinates.Lng},
			ArriveAt:        Timestamp(stop.ArriveAt),
			DepartAt:        Timestamp(stop.DepartAt),
			OpenStatus:      string(stop.OpenStatus),
		})
	}
	for _, leg := range itinerary.Legs {
		resp.Legs = append(resp.Legs, LegResponse{
			From:          leg.FromID,
			To:            leg.ToID,
			DistanceKm:    leg.DistanceKm,
			TravelMinutes: leg.TravelMinutes,
		})
	}

	return resp
}

// PlanWeekRequest is the request body for a multi-day plan.
type PlanWeekRequest struct {
	WeekStart          string      `json:"weekStart" validate:"required"`
	Days               int         `json:"days,omitempty"`
	MaxStopsPerDay     int         `json:"maxStopsPerDay,omitempty"`
	WindowStart        string      `json:"windowStart,omitempty"`
	WindowEnd          string      `json:"windowEnd,omitempty"`
	Tier               int         `json:"tier,omitempty"`
	HonorBusinessHours *bool       `json:"honorBusinessHours,omitempty"`
	Stops              []StopInput `json:"stops" validate:"required"`
}

// ToDomain converts the request to an optimizer week request.
func (r *PlanWeekRequest) ToDomain() (optimizer.WeekRequest, []FieldError) {
	day := OptimizeRequest{
		Date:               r.WeekStart,
		WindowStart:        r.WindowStart,
		WindowEnd:          r.WindowEnd,
		Tier:               r.Tier,
		HonorBusinessHours: r.HonorBusinessHours,
		Stops:              r.Stops,
	}
	dayReq, errs := day.ToDomain()
	for i := range errs {
		if errs[i].Field == "date" {
			errs[i].Field = "weekStart"
		}
	}

	return optimizer.WeekRequest{
		Stops:              dayReq.Stops,
		WeekStart:          dayReq.Date,
		Days:               r.Days,
		MaxStopsPerDay:     r.MaxStopsPerDay,
		StartMinute:        dayReq.StartMinute,
		EndMinute:          dayReq.EndMinute,
		RequestedTier:      dayReq.RequestedTier,
		HonorBusinessHours: dayReq.HonorBusinessHours,
	}, errs
}

// WeekPlanResponse is a multi-day plan.
type WeekPlanResponse struct {
	Itineraries []ItineraryResponse `json:"itineraries"`
	Unscheduled []string            `json:"unscheduled,omitempty"`
}

// NewWeekPlanResponse converts a domain week plan to its API shape.
func NewWeekPlanResponse(plan *optimizer.WeekPlan) WeekPlanResponse {
	resp := WeekPlanResponse{
		Itineraries: make([]ItineraryResponse, 0, len(plan.Itineraries)),
		Unscheduled: plan.Unscheduled,
	}
	for _, itinerary := range plan.Itineraries {
		resp.Itineraries = append(resp.Itineraries, NewItineraryResponse(itinerary))
	}
	return resp
}

// ItinerarySummary is one stored run in a history listing.
type ItinerarySummary struct {
	ID             string    `json:"id"`
	Date           string    `json:"date"`
	RequestedTier  int       `json:"requestedTier"`
	EffectiveTier  int       `json:"effectiveTier"`
	Degraded       bool      `json:"degraded"`
	DegradedReason string    `json:"degradedReason,omitempty"`
	Truncated      bool      `json:"truncated"`
	StopCount      int       `json:"stopCount"`
	Unscheduled    int       `json:"unscheduledCount"`
	DistanceKm     float64   `json:"distanceKm"`
	TravelMinutes  float64   `json:"travelMinutes"`
	Efficiency     float64   `json:"efficiency"`
	CreatedAt      Timestamp `json:"createdAt"`
}

// NewItinerarySummary converts a history record to its API shape.
func NewItinerarySummary(record *history.Record) ItinerarySummary {
	return ItinerarySummary{
		ID:             record.ID,
		Date:           record.Date.Format("2006-01-02"),
		RequestedTier:  record.RequestedTier,
		EffectiveTier:  record.EffectiveTier,
		Degraded:       record.Degraded,
		DegradedReason: record.DegradedReason,
		Truncated:      record.Truncated,
		StopCount:      record.StopCount,
		Unscheduled:    record.Unscheduled,
		DistanceKm:     record.DistanceKm,
		TravelMinutes:  record.TravelMinutes,
		Efficiency:     record.Efficiency,
		CreatedAt:      Timestamp(record.CreatedAt),
	}
}

// PagedItineraries represents a paginated history listing.
type PagedItineraries struct {
	Items []ItinerarySummary `json:"items"`
	Meta  PagedResponseMeta  `json:"meta"`
}

// parseClock parses "HH:MM" to minutes since midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	if hour < 0 || hour > 24 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return hour*60 + minute, nil
}

func stringOrDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
