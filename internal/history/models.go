// Package history persists optimized itineraries so planners can review and
// reuse past runs.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/visitaroute/visitaroute/internal/optimizer"
)

// ErrItineraryNotFound indicates the requested record does not exist.
var ErrItineraryNotFound = errors.New("itinerary not found")

// Record is one stored optimization run. Summary columns are denormalized
// for listing; the full itinerary lives in Payload as JSON.
type Record struct {
	ID             string
	Date           time.Time
	RequestedTier  int
	EffectiveTier  int
	Degraded       bool
	DegradedReason string
	Truncated      bool
	StopCount      int
	Unscheduled    int
	DistanceKm     float64
	TravelMinutes  float64
	VisitMinutes   float64
	Efficiency     float64
	Payload        []byte
	CreatedAt      time.Time
}

// NewRecord captures an itinerary as a persistable record.
func NewRecord(itinerary *optimizer.Itinerary) (*Record, error) {
	payload, err := json.Marshal(itinerary)
	if err != nil {
		return nil, fmt.Errorf("encode itinerary: %w", err)
	}

	return &Record{
		ID:             uuid.NewString(),
		Date:           itinerary.Date,
		RequestedTier:  int(itinerary.RequestedTier),
		EffectiveTier:  int(itinerary.EffectiveTier),
		Degraded:       itinerary.Degraded,
		DegradedReason: itinerary.DegradedReason,
		Truncated:      itinerary.Truncated,
		StopCount:      len(itinerary.Stops),
		Unscheduled:    len(itinerary.Unscheduled),
		DistanceKm:     itinerary.Stats.TotalDistanceKm,
		TravelMinutes:  itinerary.Stats.TotalTravelMinutes,
		VisitMinutes:   itinerary.Stats.TotalVisitMinutes,
		Efficiency:     itinerary.Stats.Efficiency,
		CreatedAt:      time.Now().UTC(),
		Payload:        payload,
	}, nil
}

// Itinerary decodes the stored payload.
func (r *Record) Itinerary() (*optimizer.Itinerary, error) {
	var itinerary optimizer.Itinerary
	if err := json.Unmarshal(r.Payload, &itinerary); err != nil {
		return nil, fmt.Errorf("decode itinerary payload: %w", err)
	}
	return &itinerary, nil
}
