package services

//go:generate mockgen -destination=./__mocks__/registry.go -package=mocks -source=registry.go

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xairline/xa-ffb/models"
	"github.com/xairline/xa-ffb/utils/logger"
	"github.com/xairline/xa-ffb/utils/wire"
)

var (
	ErrDatarefNotFound   = errors.New("dataref not found")
	ErrInvalidKey        = errors.New("invalid telemetry key")
	ErrInvalidPrecision  = errors.New("precision out of range")
	ErrInvalidConversion = errors.New("conversion factor out of range")
)

// SourceRegistry maps telemetry keys to subscribed datarefs. It is read by
// the flight loop while commands may register new sources, so every method
// is safe for concurrent use. Register resolves the path through the
// simulator and must therefore run on the flight loop thread.
type SourceRegistry interface {
	Register(path, key string, kind models.ValueKind, opts ...SourceOption) error
	Lookup(key string) (models.TelemetrySource, bool)
	// Sources returns a copy of every registered source ordered by key.
	Sources() []models.TelemetrySource
	Len() int
}

type SourceOption func(*models.TelemetrySource)

func WithPrecision(precision int) SourceOption {
	return func(s *models.TelemetrySource) {
		s.Precision = precision
	}
}

func WithConversion(factor float64) SourceOption {
	return func(s *models.TelemetrySource) {
		s.ConversionFactor = factor
	}
}

type sourceRegistry struct {
	Logger  logger.Logger
	sim     Simulator
	mu      sync.RWMutex
	sources map[string]models.TelemetrySource
}

func NewSourceRegistry(sim Simulator, logger logger.Logger) SourceRegistry {
	return &sourceRegistry{
		Logger:  logger,
		sim:     sim,
		sources: make(map[string]models.TelemetrySource),
	}
}

// Register subscribes the dataref at path under key. A failure is logged and
// leaves the registry untouched; registering an existing key replaces it.
func (r *sourceRegistry) Register(path, key string, kind models.ValueKind, opts ...SourceOption) error {
	source := models.TelemetrySource{
		Key:              key,
		Path:             path,
		Kind:             kind,
		Precision:        models.DefaultPrecision,
		ConversionFactor: models.DefaultConversion,
	}
	for _, opt := range opts {
		opt(&source)
	}

	if err := validateSource(source); err != nil {
		r.Logger.Errorf("Failed to subscribe to dataref %s: %v", path, err)
		return err
	}

	ref, found := r.sim.FindDataref(path)
	if !found {
		r.Logger.Errorf("Failed to subscribe to dataref %s: %v", path, ErrDatarefNotFound)
		return fmt.Errorf("%s: %w", path, ErrDatarefNotFound)
	}
	source.Handle = ref

	r.mu.Lock()
	r.sources[key] = source
	r.mu.Unlock()

	r.Logger.Infof("Subscribed to dataref %s as %s with key %s, precision %d, conversion factor %g",
		path, kind, key, source.Precision, source.ConversionFactor)
	return nil
}

func (r *sourceRegistry) Lookup(key string) (models.TelemetrySource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	source, ok := r.sources[key]
	return source, ok
}

func (r *sourceRegistry) Sources() []models.TelemetrySource {
	r.mu.RLock()
	res := make([]models.TelemetrySource, 0, len(r.sources))
	for _, source := range r.sources {
		res = append(res, source)
	}
	r.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool { return res[i].Key < res[j].Key })
	return res
}

func (r *sourceRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}

func validateSource(source models.TelemetrySource) error {
	if source.Key == "" || strings.ContainsAny(source.Key, wire.FieldSeparators) {
		return fmt.Errorf("%q: %w", source.Key, ErrInvalidKey)
	}
	if !models.ValidPrecision(source.Precision) {
		return fmt.Errorf("%d: %w", source.Precision, ErrInvalidPrecision)
	}
	if !models.ValidConversion(source.ConversionFactor) {
		return fmt.Errorf("%g: %w", source.ConversionFactor, ErrInvalidConversion)
	}
	return nil
}
