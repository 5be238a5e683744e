// Package sensor provides a concrete SerializationSensor that fans events out
// to registered callbacks and keeps running counters, giving callers telemetry
// on extraction and resolution without touching the serialization path.
package sensor

import (
	"sync"
	"sync/atomic"

	"github.com/joeydtaylor/sideband/pkg/internal/types"
)

// Sensor counts flatten and unflatten events and invokes the registered
// callbacks synchronously on the calling goroutine.
type Sensor struct {
	componentMetadata types.ComponentMetadata
	metadataLock      sync.Mutex

	onExtract    []func(types.ComponentMetadata, uint64, any)
	onResolve    []func(types.ComponentMetadata, uint64)
	onSourcePull []func(types.ComponentMetadata, uint64)

	extractCount uint64
	resolveCount uint64
	pullCount    uint64

	loggers     []types.Logger
	loggersLock sync.Mutex
}

// Counters is a point-in-time snapshot of a Sensor's event counts.
type Counters struct {
	Extracts    uint64
	Resolves    uint64
	SourcePulls uint64
}

// NewSensor creates a Sensor with the supplied options.
func NewSensor(options ...types.Option[*Sensor]) *Sensor {
	s := &Sensor{}
	for _, option := range options {
		option(s)
	}
	return s
}

// OnExtract implements types.SerializationSensor.
func (s *Sensor) OnExtract(index uint64, v any) {
	atomic.AddUint64(&s.extractCount, 1)
	for _, fn := range s.onExtract {
		fn(s.componentMetadata, index, v)
	}
	s.NotifyLoggers(types.DebugLevel, "%s => level: DEBUG, result: SUCCESS, event: OnExtract, index: %d => Object extracted", s.componentMetadata, index)
}

// OnResolve implements types.SerializationSensor.
func (s *Sensor) OnResolve(index uint64) {
	atomic.AddUint64(&s.resolveCount, 1)
	for _, fn := range s.onResolve {
		fn(s.componentMetadata, index)
	}
	s.NotifyLoggers(types.DebugLevel, "%s => level: DEBUG, result: SUCCESS, event: OnResolve, index: %d => Reference resolved", s.componentMetadata, index)
}

// OnSourcePull implements types.SerializationSensor.
func (s *Sensor) OnSourcePull(index uint64) {
	atomic.AddUint64(&s.pullCount, 1)
	for _, fn := range s.onSourcePull {
		fn(s.componentMetadata, index)
	}
	s.NotifyLoggers(types.DebugLevel, "%s => level: DEBUG, result: SUCCESS, event: OnSourcePull, index: %d => Replacement pulled", s.componentMetadata, index)
}

// Snapshot returns the current event counts.
func (s *Sensor) Snapshot() Counters {
	return Counters{
		Extracts:    atomic.LoadUint64(&s.extractCount),
		Resolves:    atomic.LoadUint64(&s.resolveCount),
		SourcePulls: atomic.LoadUint64(&s.pullCount),
	}
}

// Reset zeroes all counters.
func (s *Sensor) Reset() {
	atomic.StoreUint64(&s.extractCount, 0)
	atomic.StoreUint64(&s.resolveCount, 0)
	atomic.StoreUint64(&s.pullCount, 0)
}

// RegisterOnExtract appends extraction callbacks.
func (s *Sensor) RegisterOnExtract(callback ...func(types.ComponentMetadata, uint64, any)) {
	s.onExtract = append(s.onExtract, callback...)
}

// RegisterOnResolve appends resolution callbacks.
func (s *Sensor) RegisterOnResolve(callback ...func(types.ComponentMetadata, uint64)) {
	s.onResolve = append(s.onResolve, callback...)
}

// RegisterOnSourcePull appends source-pull callbacks.
func (s *Sensor) RegisterOnSourcePull(callback ...func(types.ComponentMetadata, uint64)) {
	s.onSourcePull = append(s.onSourcePull, callback...)
}

// ConnectLogger attaches loggers to the Sensor.
func (s *Sensor) ConnectLogger(loggers ...types.Logger) {
	s.loggersLock.Lock()
	defer s.loggersLock.Unlock()
	s.loggers = append(s.loggers, loggers...)
}

// GetComponentMetadata returns the metadata.
func (s *Sensor) GetComponentMetadata() types.ComponentMetadata {
	return s.componentMetadata
}

// SetComponentMetadata sets the component metadata.
func (s *Sensor) SetComponentMetadata(name string, id string) {
	s.metadataLock.Lock()
	defer s.metadataLock.Unlock()
	s.componentMetadata = types.ComponentMetadata{Name: name, ID: id, Type: "SENSOR"}
}
