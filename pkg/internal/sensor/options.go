package sensor

import (
	"github.com/joeydtaylor/sideband/pkg/internal/types"
)

// SensorWithOnExtract registers extraction callbacks.
func SensorWithOnExtract(callback ...func(types.ComponentMetadata, uint64, any)) types.Option[*Sensor] {
	return func(s *Sensor) {
		s.RegisterOnExtract(callback...)
	}
}

// SensorWithOnResolve registers resolution callbacks.
func SensorWithOnResolve(callback ...func(types.ComponentMetadata, uint64)) types.Option[*Sensor] {
	return func(s *Sensor) {
		s.RegisterOnResolve(callback...)
	}
}

// SensorWithOnSourcePull registers source-pull callbacks.
func SensorWithOnSourcePull(callback ...func(types.ComponentMetadata, uint64)) types.Option[*Sensor] {
	return func(s *Sensor) {
		s.RegisterOnSourcePull(callback...)
	}
}

// SensorWithLogger attaches loggers to the Sensor.
func SensorWithLogger(loggers ...types.Logger) types.Option[*Sensor] {
	return func(s *Sensor) {
		s.ConnectLogger(loggers...)
	}
}

// SensorWithComponentMetadata sets the component metadata.
func SensorWithComponentMetadata(name string, id string) types.Option[*Sensor] {
	return func(s *Sensor) {
		s.SetComponentMetadata(name, id)
	}
}
