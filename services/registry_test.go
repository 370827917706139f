package services

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xairline/xa-ffb/models"
)

func TestRegisterDefaults(t *testing.T) {
	sim := newFakeSimulator()
	sim.define("sim/flightmodel/position/latitude")
	registry := NewSourceRegistry(sim, newMockLogger())

	require.NoError(t, registry.Register("sim/flightmodel/position/latitude", "Lat", models.KindDouble))

	source, ok := registry.Lookup("Lat")
	require.True(t, ok)
	assert.Equal(t, 3, source.Precision)
	assert.Equal(t, 1.0, source.ConversionFactor)
	assert.Equal(t, models.KindDouble, source.Kind)
	assert.Equal(t, "sim/flightmodel/position/latitude", source.Path)
	assert.NotNil(t, source.Handle)
}

func TestRegisterOptions(t *testing.T) {
	sim := newFakeSimulator()
	sim.define("sim/x")
	registry := NewSourceRegistry(sim, newMockLogger())

	require.NoError(t, registry.Register("sim/x", "X", models.KindFloat, WithPrecision(6), WithConversion(0.51444)))

	source, ok := registry.Lookup("X")
	require.True(t, ok)
	assert.Equal(t, 6, source.Precision)
	assert.Equal(t, 0.51444, source.ConversionFactor)
}

func TestRegisterLastWins(t *testing.T) {
	sim := newFakeSimulator()
	sim.define("sim/a", "sim/b")
	registry := NewSourceRegistry(sim, newMockLogger())

	require.NoError(t, registry.Register("sim/a", "Foo", models.KindFloat, WithPrecision(1)))
	require.NoError(t, registry.Register("sim/b", "Foo", models.KindInt, WithPrecision(4), WithConversion(2)))

	source, ok := registry.Lookup("Foo")
	require.True(t, ok)
	assert.Equal(t, "sim/b", source.Path)
	assert.Equal(t, models.KindInt, source.Kind)
	assert.Equal(t, 4, source.Precision)
	assert.Equal(t, 2.0, source.ConversionFactor)
	assert.Equal(t, 1, registry.Len())
}

func TestRegisterUnknownDataref(t *testing.T) {
	mockLogger := newMockLogger()
	registry := NewSourceRegistry(newFakeSimulator(), mockLogger)

	err := registry.Register("sim/does/not/exist", "Nope", models.KindFloat)

	assert.ErrorIs(t, err, ErrDatarefNotFound)
	_, ok := registry.Lookup("Nope")
	assert.False(t, ok)
	assert.Equal(t, 0, registry.Len())
	mockLogger.AssertCalled(t, "Errorf", "Failed to subscribe to dataref %s: %v", mock.Anything)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	sim := newFakeSimulator()
	sim.define("sim/x")
	registry := NewSourceRegistry(sim, newMockLogger())

	assert.ErrorIs(t, registry.Register("sim/x", "", models.KindFloat), ErrInvalidKey)
	assert.ErrorIs(t, registry.Register("sim/x", "a;b", models.KindFloat), ErrInvalidKey)
	assert.ErrorIs(t, registry.Register("sim/x", "a=b", models.KindFloat), ErrInvalidKey)
	assert.ErrorIs(t, registry.Register("sim/x", "X", models.KindFloat, WithPrecision(-1)), ErrInvalidPrecision)
	assert.ErrorIs(t, registry.Register("sim/x", "X", models.KindFloat, WithPrecision(1000000)), ErrInvalidPrecision)
	assert.ErrorIs(t, registry.Register("sim/x", "X", models.KindFloat, WithConversion(1e300)), ErrInvalidConversion)
	assert.ErrorIs(t, registry.Register("sim/x", "X", models.KindDouble, WithConversion(math.NaN())), ErrInvalidConversion)
	assert.ErrorIs(t, registry.Register("sim/x", "X", models.KindDouble, WithConversion(math.Inf(1))), ErrInvalidConversion)
	assert.Equal(t, 0, registry.Len())

	require.NoError(t, registry.Register("sim/x", "X", models.KindFloat, WithPrecision(models.MaxPrecision), WithConversion(-1e30)))
}

func TestSourcesSortedCopy(t *testing.T) {
	sim := newFakeSimulator()
	sim.define("sim/a", "sim/b", "sim/c")
	registry := NewSourceRegistry(sim, newMockLogger())
	require.NoError(t, registry.Register("sim/c", "C", models.KindInt))
	require.NoError(t, registry.Register("sim/a", "A", models.KindInt))
	require.NoError(t, registry.Register("sim/b", "B", models.KindInt))

	sources := registry.Sources()
	require.Len(t, sources, 3)
	assert.Equal(t, "A", sources[0].Key)
	assert.Equal(t, "B", sources[1].Key)
	assert.Equal(t, "C", sources[2].Key)

	sources[0].Precision = 9
	source, _ := registry.Lookup("A")
	assert.Equal(t, 3, source.Precision)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	sim := newFakeSimulator()
	sim.define("sim/x")
	registry := NewSourceRegistry(sim, newMockLogger())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = registry.Register("sim/x", "X", models.KindFloat, WithPrecision(i%5))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			for _, s := range registry.Sources() {
				_ = s.Key
			}
		}
	}()
	wg.Wait()
	assert.Equal(t, 1, registry.Len())
}
