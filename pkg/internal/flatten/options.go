package flatten

import (
	"github.com/joeydtaylor/sideband/pkg/internal/blob"
	"github.com/joeydtaylor/sideband/pkg/internal/types"
)

// FlattenerWithPredicate sets the extraction predicate.
func FlattenerWithPredicate(p types.Predicate) types.Option[types.Flattener] {
	return func(f types.Flattener) {
		f.SetPredicate(p)
	}
}

// FlattenerWithLogger adds loggers to the Flattener for outputting logs.
func FlattenerWithLogger(loggers ...types.Logger) types.Option[types.Flattener] {
	return func(f types.Flattener) {
		f.ConnectLogger(loggers...)
	}
}

// FlattenerWithSensor attaches sensors observing extraction events.
func FlattenerWithSensor(sensors ...types.SerializationSensor) types.Option[types.Flattener] {
	return func(f types.Flattener) {
		f.ConnectSensor(sensors...)
	}
}

// FlattenerWithComponentMetadata sets the component metadata for the Flattener.
func FlattenerWithComponentMetadata(name string, id string) types.Option[types.Flattener] {
	return func(f types.Flattener) {
		f.SetComponentMetadata(name, id)
	}
}

// UnflattenerWithLogger adds loggers to the Unflattener for outputting logs.
func UnflattenerWithLogger(loggers ...types.Logger) types.Option[types.Unflattener] {
	return func(u types.Unflattener) {
		u.ConnectLogger(loggers...)
	}
}

// UnflattenerWithSensor attaches sensors observing resolution and pull events.
func UnflattenerWithSensor(sensors ...types.SerializationSensor) types.Option[types.Unflattener] {
	return func(u types.Unflattener) {
		u.ConnectSensor(sensors...)
	}
}

// UnflattenerWithComponentMetadata sets the component metadata for the Unflattener.
func UnflattenerWithComponentMetadata(name string, id string) types.Option[types.Unflattener] {
	return func(u types.Unflattener) {
		u.SetComponentMetadata(name, id)
	}
}

// UnflattenerWithMaterializer overrides payload materialization for every
// call on this component, taking precedence over neutral materialization.
func UnflattenerWithMaterializer(m blob.Materializer) types.Option[types.Unflattener] {
	return func(u types.Unflattener) {
		u.SetMaterializer(m)
	}
}

// UnflattenerWithoutNeutralMaterialization keeps payloads on their captured
// locations with ambient interpretation layers active. Payloads then resolve
// through the process-wide policy, so a scope pushed by a concurrent call is
// observed while it is active.
func UnflattenerWithoutNeutralMaterialization() types.Option[types.Unflattener] {
	return func(u types.Unflattener) {
		u.SetNeutralMaterialization(false)
	}
}

// UnflattenerWithStrictOrdering rejects reference demand patterns with gaps
// instead of pulling ahead, surfacing mismatched encode/decode pairings.
func UnflattenerWithStrictOrdering() types.Option[types.Unflattener] {
	return func(u types.Unflattener) {
		u.SetStrictOrdering(true)
	}
}
