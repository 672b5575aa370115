package resilience_test

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitaroute/visitaroute/internal/provider/resilience"
)

func TestRegistry_UnknownProviderIsUnavailable(t *testing.T) {
	registry := resilience.NewRegistry()

	assert.False(t, registry.Available("distance-matrix"))
	assert.Nil(t, registry.Health("distance-matrix"))
}

func TestRegistry_RegisteredClientIsAvailable(t *testing.T) {
	registry := resilience.NewRegistry()

	cfg := resilience.DefaultClientConfig("places")
	cfg.Registry = registry
	resilience.NewClient(cfg)

	assert.True(t, registry.Available("places"))

	health := registry.Health("places")
	require.NotNil(t, health)
	assert.Equal(t, "places", health.Name)
	assert.Equal(t, gobreaker.StateClosed, health.CircuitState)
	assert.True(t, health.IsHealthy())
}

func TestRegistry_RecordsOutcomes(t *testing.T) {
	registry := resilience.NewRegistry()

	cfg := resilience.DefaultClientConfig("distance-matrix")
	cfg.Registry = registry
	resilience.NewClient(cfg)

	registry.RecordFailure("distance-matrix", errors.New("connection refused"))
	registry.RecordSuccess("distance-matrix")

	health := registry.Health("distance-matrix")
	require.NotNil(t, health)
	assert.NotNil(t, health.LastSuccessAt)
	assert.NotNil(t, health.LastFailureAt)
	assert.Equal(t, "connection refused", health.LastError)

	all := registry.AllHealth()
	require.Len(t, all, 1)
	assert.Equal(t, "distance-matrix", all[0].Name)
}
