package builder

import (
	"github.com/joeydtaylor/sideband/pkg/internal/sensor"
	"github.com/joeydtaylor/sideband/pkg/internal/types"
)

// Sensor counts serialization events and fans them out to callbacks.
type Sensor = sensor.Sensor

// SensorCounters is a snapshot of a Sensor's event counts.
type SensorCounters = sensor.Counters

// NewSensor creates a Sensor with the supplied options.
func NewSensor(options ...types.Option[*sensor.Sensor]) *sensor.Sensor {
	return sensor.NewSensor(options...)
}

// SensorWithOnExtract registers extraction callbacks.
func SensorWithOnExtract(callback ...func(types.ComponentMetadata, uint64, any)) types.Option[*sensor.Sensor] {
	return sensor.SensorWithOnExtract(callback...)
}

// SensorWithOnResolve registers resolution callbacks.
func SensorWithOnResolve(callback ...func(types.ComponentMetadata, uint64)) types.Option[*sensor.Sensor] {
	return sensor.SensorWithOnResolve(callback...)
}

// SensorWithOnSourcePull registers source-pull callbacks.
func SensorWithOnSourcePull(callback ...func(types.ComponentMetadata, uint64)) types.Option[*sensor.Sensor] {
	return sensor.SensorWithOnSourcePull(callback...)
}

// SensorWithLogger attaches loggers to the Sensor.
func SensorWithLogger(loggers ...types.Logger) types.Option[*sensor.Sensor] {
	return sensor.SensorWithLogger(loggers...)
}

// SensorWithComponentMetadata sets the component metadata.
func SensorWithComponentMetadata(name string, id string) types.Option[*sensor.Sensor] {
	return sensor.SensorWithComponentMetadata(name, id)
}
