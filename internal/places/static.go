package places

import (
	"context"
	"time"
)

// StaticOracle is the no-network oracle used when the places vendor is not
// configured. It always answers unknown, which downstream scheduling treats
// as "assume open".
type StaticOracle struct{}

// NewStaticOracle creates the assume-open oracle.
func NewStaticOracle() *StaticOracle { return &StaticOracle{} }

// Name returns the oracle identifier.
func (o *StaticOracle) Name() string { return "static-assume-open" }

// IsOpenAt always returns StatusUnknown.
func (o *StaticOracle) IsOpenAt(_ context.Context, _ PlaceRef, _ time.Time) Status {
	return StatusUnknown
}
