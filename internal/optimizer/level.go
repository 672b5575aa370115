package optimizer

import (
	"github.com/rs/zerolog"

	"github.com/visitaroute/visitaroute/internal/distance"
	"github.com/visitaroute/visitaroute/internal/places"
	"github.com/visitaroute/visitaroute/internal/provider/resilience"
)

// Selection is the tier decision for one run, with the providers to use.
// The decision is made once; a run never mixes providers.
type Selection struct {
	Tier     Tier
	Provider distance.Provider
	Oracle   places.Oracle

	// Reason explains a downgrade. Empty when the requested tier was granted.
	Reason string
}

// LevelSelector picks the highest tier the configured providers can
// currently serve, never exceeding the requested ceiling.
type LevelSelector struct {
	live     distance.Provider
	local    distance.Provider
	oracle   places.Oracle
	registry *resilience.Registry
	logger   zerolog.Logger
}

// LevelSelectorConfig wires the selector's provider pool.
type LevelSelectorConfig struct {
	// Live is the caching live travel-time provider, nil when unconfigured.
	Live distance.Provider
	// Local is the always-available fallback estimator.
	Local distance.Provider
	// Oracle answers business-hours queries, nil when unconfigured.
	Oracle places.Oracle
	// Registry reports live provider health. Nil means assume healthy.
	Registry *resilience.Registry
	Logger   zerolog.Logger
}

// NewLevelSelector builds a selector. Local falls back to the default
// haversine estimator when unset.
func NewLevelSelector(cfg LevelSelectorConfig) *LevelSelector {
	local := cfg.Local
	if local == nil {
		local = distance.NewLocalEstimator()
	}
	return &LevelSelector{
		live:     cfg.Live,
		local:    local,
		oracle:   cfg.Oracle,
		registry: cfg.Registry,
		logger:   cfg.Logger,
	}
}

// Select resolves the effective tier for one run.
func (s *LevelSelector) Select(requested Tier) Selection {
	if requested >= TierFull && s.liveDistanceAvailable() && s.oracleAvailable() {
		return Selection{Tier: TierFull, Provider: s.live, Oracle: s.oracle}
	}

	if requested >= TierLiveDistance && s.liveDistanceAvailable() {
		sel := Selection{Tier: TierLiveDistance, Provider: s.live}
		if requested > TierLiveDistance {
			sel.Reason = s.downgradeReason(TierFull) + ", serving tier 2"
			s.logDowngrade(requested, sel)
		}
		return sel
	}

	sel := Selection{Tier: TierLocal, Provider: s.local}
	if requested > TierLocal {
		sel.Reason = s.downgradeReason(TierLiveDistance) + ", serving tier 1"
		s.logDowngrade(requested, sel)
	}
	return sel
}

// Fallback returns the tier-1 selection used when a live provider fails
// mid-run despite a healthy probe.
func (s *LevelSelector) Fallback(reason string) Selection {
	return Selection{Tier: TierLocal, Provider: s.local, Reason: reason + ", serving tier 1"}
}

func (s *LevelSelector) liveDistanceAvailable() bool {
	if s.live == nil {
		return false
	}
	if s.registry == nil {
		return true
	}
	return s.registry.Available(s.live.Name())
}

func (s *LevelSelector) oracleAvailable() bool {
	if s.oracle == nil {
		return false
	}
	if s.registry == nil {
		return true
	}
	return s.registry.Available(s.oracle.Name())
}

// downgradeReason names the first missing capability of the denied tier.
func (s *LevelSelector) downgradeReason(denied Tier) string {
	if denied == TierFull {
		if s.oracle == nil {
			return "business-hours provider not configured"
		}
		if !s.oracleAvailable() {
			return "business-hours provider unhealthy"
		}
	}
	if s.live == nil {
		return "live distance provider not configured"
	}
	return "live distance provider unhealthy"
}

func (s *LevelSelector) logDowngrade(requested Tier, sel Selection) {
	s.logger.Warn().
		Int("requested_tier", int(requested)).
		Int("effective_tier", int(sel.Tier)).
		Str("reason", sel.Reason).
		Msg("optimization tier downgraded")
}
