package resilience_test

import (
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aircast/aircast/internal/provider/resilience"
)

func TestRegistry_RegisterAndHealth(t *testing.T) {
	registry := resilience.NewRegistry()
	client := resilience.NewClient(resilience.ClientConfig{Name: "prediction"})

	registry.Register("prediction", client)

	health := registry.Health("prediction")
	require.NotNil(t, health)
	assert.Equal(t, "prediction", health.Name)
	assert.Equal(t, gobreaker.StateClosed, health.CircuitState)
	assert.True(t, health.Healthy())
	assert.False(t, health.Degraded())
}

func TestRegistry_RecordSuccess(t *testing.T) {
	registry := resilience.NewRegistry()
	registry.Register("prediction", resilience.NewClient(resilience.ClientConfig{Name: "prediction"}))

	// Before recording success
	health := registry.Health("prediction")
	require.NotNil(t, health)
	assert.Nil(t, health.LastSuccessAt)

	registry.RecordSuccess("prediction")

	health = registry.Health("prediction")
	require.NotNil(t, health)
	require.NotNil(t, health.LastSuccessAt)
	assert.WithinDuration(t, time.Now(), *health.LastSuccessAt, time.Second)
}

func TestRegistry_RecordFailure(t *testing.T) {
	registry := resilience.NewRegistry()
	registry.Register("prediction", resilience.NewClient(resilience.ClientConfig{Name: "prediction"}))

	// Before recording failure
	health := registry.Health("prediction")
	require.NotNil(t, health)
	assert.Nil(t, health.LastFailureAt)
	assert.Empty(t, health.LastError)

	registry.RecordFailure("prediction", assert.AnError)

	health = registry.Health("prediction")
	require.NotNil(t, health)
	require.NotNil(t, health.LastFailureAt)
	assert.WithinDuration(t, time.Now(), *health.LastFailureAt, time.Second)
	assert.Equal(t, assert.AnError.Error(), health.LastError)
}

func TestRegistry_AllHealth(t *testing.T) {
	registry := resilience.NewRegistry()

	for _, name := range []string{"prediction", "nominatim"} {
		registry.Register(name, resilience.NewClient(resilience.ClientConfig{Name: name}))
	}

	healthList := registry.AllHealth()
	assert.Len(t, healthList, 2)

	names := make(map[string]bool)
	for _, h := range healthList {
		names[h.Name] = true
		assert.Equal(t, gobreaker.StateClosed, h.CircuitState)
	}

	assert.True(t, names["prediction"])
	assert.True(t, names["nominatim"])
}

func TestRegistry_HealthNotFound(t *testing.T) {
	registry := resilience.NewRegistry()

	health := registry.Health("nonexistent")
	assert.Nil(t, health)
}

func TestRegistry_RecordSuccessNotFound(t *testing.T) {
	registry := resilience.NewRegistry()

	// Should not panic
	registry.RecordSuccess("nonexistent")
}

func TestRegistry_RecordFailureNotFound(t *testing.T) {
	registry := resilience.NewRegistry()

	// Should not panic
	registry.RecordFailure("nonexistent", assert.AnError)
}

func TestUpstreamHealth_States(t *testing.T) {
	tests := []struct {
		state    gobreaker.State
		healthy  bool
		degraded bool
	}{
		{gobreaker.StateClosed, true, false},
		{gobreaker.StateHalfOpen, false, true},
		{gobreaker.StateOpen, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			h := &resilience.UpstreamHealth{CircuitState: tt.state}
			assert.Equal(t, tt.healthy, h.Healthy())
			assert.Equal(t, tt.degraded, h.Degraded())
		})
	}
}
