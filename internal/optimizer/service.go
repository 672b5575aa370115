package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/visitaroute/visitaroute/internal/distance"
)

// DefaultVisitMinutes is the assumed on-site time when a stop does not
// declare its own.
const DefaultVisitMinutes = 120

// DefaultBuildTimeout bounds one optimization run end to end.
const DefaultBuildTimeout = 30 * time.Second

// ServiceConfig wires the optimization service.
type ServiceConfig struct {
	Selector *LevelSelector

	// BuildTimeout bounds one run. Zero uses DefaultBuildTimeout.
	BuildTimeout time.Duration

	Logger zerolog.Logger
}

// Service runs complete optimizations: tier selection, tour construction
// and statistics assembly.
type Service struct {
	selector     *LevelSelector
	buildTimeout time.Duration
	logger       zerolog.Logger
}

// NewService builds the optimization service.
func NewService(cfg ServiceConfig) *Service {
	timeout := cfg.BuildTimeout
	if timeout <= 0 {
		timeout = DefaultBuildTimeout
	}
	return &Service{
		selector:     cfg.Selector,
		buildTimeout: timeout,
		logger:       cfg.Logger,
	}
}

// Optimize produces a day itinerary for the request. Only invalid input
// returns an error; provider trouble degrades the tier instead.
func (s *Service) Optimize(ctx context.Context, req Request) (*Itinerary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	origin := DefaultOrigin
	if req.Origin != nil {
		origin = *req.Origin
	}

	stops := normalizeStops(req.Stops)

	sel := s.selector.Select(req.RequestedTier)
	if sel.Tier == TierFull && !req.HonorBusinessHours {
		sel.Oracle = nil
	}

	runCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.buildTimeout)
		defer cancel()
	}

	builder := NewTourBuilder(sel.Provider, sel.Oracle, s.logger)
	built, err := builder.Build(runCtx, origin, stops, req.StartTime(), req.EndTime())
	if err != nil && runCtx.Err() == nil && sel.Tier > TierLocal {
		// The live provider failed mid-run despite a healthy probe. Restart
		// on the local estimator so the whole tour stays coherent under one
		// provider instead of mixing estimates.
		s.logger.Warn().Err(err).
			Int("tier", int(sel.Tier)).
			Msg("live provider failed mid-run, rebuilding on local estimator")
		sel = s.selector.Fallback("live distance provider failed during the run")
		builder = NewTourBuilder(sel.Provider, nil, s.logger)
		built, err = builder.Build(runCtx, origin, stops, req.StartTime(), req.EndTime())
	}
	if err != nil {
		if runCtx.Err() != nil {
			// Deadline hit inside a provider call rather than between
			// iterations. Return what fits in an empty truncated itinerary.
			built = &tour{unscheduled: stops, truncated: true}
		} else {
			return nil, fmt.Errorf("build tour: %w", err)
		}
	}

	itinerary := &Itinerary{
		Date:              req.Date,
		Stops:             built.stops,
		Legs:              built.legs,
		Stats:             Assemble(built.stops, built.legs),
		Unscheduled:       stopIDs(built.unscheduled),
		OpenStatusUnknown: built.unknownOpen,
		RequestedTier:     req.RequestedTier,
		EffectiveTier:     sel.Tier,
		Truncated:         built.truncated,
	}
	if sel.Tier < req.RequestedTier {
		itinerary.Degraded = true
		itinerary.DegradedReason = sel.Reason
	}

	s.logger.Info().
		Time("date", req.Date).
		Int("requested_tier", int(req.RequestedTier)).
		Int("effective_tier", int(sel.Tier)).
		Int("scheduled", len(itinerary.Stops)).
		Int("unscheduled", len(itinerary.Unscheduled)).
		Bool("truncated", itinerary.Truncated).
		Float64("total_travel_min", itinerary.Stats.TotalTravelMinutes).
		Msg("itinerary optimized")

	return itinerary, nil
}

// normalizeStops fills per-stop defaults without mutating the request.
func normalizeStops(in []Stop) []Stop {
	out := make([]Stop, len(in))
	copy(out, in)
	for i := range out {
		if out[i].DurationMinutes == 0 {
			out[i].DurationMinutes = DefaultVisitMinutes
		}
		if out[i].Priority < 1 {
			out[i].Priority = 1
		}
		if out[i].Coordinates == (distance.Coordinate{}) {
			if coord, ok := MunicipalityCentroid(out[i].Municipality); ok {
				out[i].Coordinates = coord
			}
		}
	}
	return out
}

func stopIDs(stops []Stop) []string {
	if len(stops) == 0 {
		return nil
	}
	ids := make([]string, len(stops))
	for i := range stops {
		ids[i] = stops[i].ID
	}
	return ids
}
