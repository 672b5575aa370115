// Package worker provides background cache warm-up jobs for VisitaRoute.
package worker

import (
	"time"

	"github.com/visitaroute/visitaroute/internal/optimizer"
	"github.com/visitaroute/visitaroute/internal/places"
)

// RefreshTarget is one municipality whose establishment schedules get
// warmed.
type RefreshTarget struct {
	// Municipality is the covered municipality name.
	Municipality string

	// Kinds are the establishment kinds to warm for this municipality.
	Kinds []places.Kind

	// Priority determines refresh order (lower = higher priority).
	Priority int
}

// RefreshConfig holds configuration for the cache warm-up job.
type RefreshConfig struct {
	// Targets are the municipalities to warm. If empty, uses
	// DefaultRefreshTargets.
	Targets []RefreshTarget

	// Concurrency is the number of concurrent refresh operations.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each refresh operation.
	// Default: 30 seconds
	Timeout time.Duration

	// RefreshHours enables business-hours schedule warm-up.
	// Default: true
	RefreshHours bool

	// PrefetchDistances enables travel-matrix warm-up between the
	// municipality centroids.
	// Default: true
	PrefetchDistances bool
}

// DefaultRefreshConfig returns the default warm-up configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Targets:           DefaultRefreshTargets(),
		Concurrency:       3,
		Timeout:           30 * time.Second,
		RefreshHours:      true,
		PrefetchDistances: true,
	}
}

// DefaultRefreshTargets covers every municipality served by the regional
// office. Itajaí hosts the office and most visited establishments, so it
// warms first.
func DefaultRefreshTargets() []RefreshTarget {
	allKinds := []places.Kind{places.KindPrefeitura, places.KindEmpresa, places.KindAutarquia}

	targets := make([]RefreshTarget, 0, len(optimizer.Municipalities()))
	for _, name := range optimizer.Municipalities() {
		priority := 2
		if name == "Itajaí" {
			priority = 1
		}
		targets = append(targets, RefreshTarget{
			Municipality: name,
			Kinds:        allKinds,
			Priority:     priority,
		})
	}
	return targets
}

// AllRefs expands the targets into individual place references, ordered by
// priority.
func (c RefreshConfig) AllRefs() []places.PlaceRef {
	maxPriority := 0
	for _, target := range c.Targets {
		if target.Priority > maxPriority {
			maxPriority = target.Priority
		}
	}

	var refs []places.PlaceRef
	for pass := 0; pass <= maxPriority; pass++ {
		for _, target := range c.Targets {
			if target.Priority != pass {
				continue
			}
			for _, kind := range target.Kinds {
				refs = append(refs, places.PlaceRef{
					Municipality: target.Municipality,
					Kind:         kind,
				})
			}
		}
	}
	return refs
}

// TotalRefs returns the total number of references to warm.
func (c RefreshConfig) TotalRefs() int {
	total := 0
	for _, target := range c.Targets {
		total += len(target.Kinds)
	}
	return total
}
