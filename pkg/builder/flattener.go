// Package builder is the public facade of sideband. It re-exports the
// constructors, options, and shared types of the internal packages so callers
// depend on a single import path.
package builder

import (
	"context"

	"github.com/joeydtaylor/sideband/pkg/internal/blob"
	"github.com/joeydtaylor/sideband/pkg/internal/flatten"
	"github.com/joeydtaylor/sideband/pkg/internal/types"
)

// Flattener serializes object graphs while diverting predicate-accepted
// sub-objects into an out-of-band sequence.
type Flattener = types.Flattener

// Unflattener reconstructs graphs, resolving out-of-band references against a
// replacement source.
type Unflattener = types.Unflattener

// Predicate decides which sub-objects are extracted.
type Predicate = types.Predicate

// ValueSource is the pull-based producer of replacement values.
type ValueSource = types.ValueSource

// SerializationSensor observes extraction, resolution, and pull events.
type SerializationSensor = types.SerializationSensor

// NewFlattener creates a Flattener.
func NewFlattener(ctx context.Context, options ...types.Option[types.Flattener]) types.Flattener {
	return flatten.NewFlattener(ctx, options...)
}

// NewUnflattener creates an Unflattener.
func NewUnflattener(ctx context.Context, options ...types.Option[types.Unflattener]) types.Unflattener {
	return flatten.NewUnflattener(ctx, options...)
}

// FlattenerWithPredicate sets the extraction predicate.
func FlattenerWithPredicate(p types.Predicate) types.Option[types.Flattener] {
	return flatten.FlattenerWithPredicate(p)
}

// FlattenerWithLogger adds loggers to the Flattener.
func FlattenerWithLogger(loggers ...types.Logger) types.Option[types.Flattener] {
	return flatten.FlattenerWithLogger(loggers...)
}

// FlattenerWithSensor attaches sensors to the Flattener.
func FlattenerWithSensor(sensors ...types.SerializationSensor) types.Option[types.Flattener] {
	return flatten.FlattenerWithSensor(sensors...)
}

// FlattenerWithComponentMetadata sets the component metadata for the Flattener.
func FlattenerWithComponentMetadata(name string, id string) types.Option[types.Flattener] {
	return flatten.FlattenerWithComponentMetadata(name, id)
}

// UnflattenerWithLogger adds loggers to the Unflattener.
func UnflattenerWithLogger(loggers ...types.Logger) types.Option[types.Unflattener] {
	return flatten.UnflattenerWithLogger(loggers...)
}

// UnflattenerWithSensor attaches sensors to the Unflattener.
func UnflattenerWithSensor(sensors ...types.SerializationSensor) types.Option[types.Unflattener] {
	return flatten.UnflattenerWithSensor(sensors...)
}

// UnflattenerWithComponentMetadata sets the component metadata for the Unflattener.
func UnflattenerWithComponentMetadata(name string, id string) types.Option[types.Unflattener] {
	return flatten.UnflattenerWithComponentMetadata(name, id)
}

// UnflattenerWithMaterializer overrides payload materialization per call.
func UnflattenerWithMaterializer(m blob.Materializer) types.Option[types.Unflattener] {
	return flatten.UnflattenerWithMaterializer(m)
}

// UnflattenerWithoutNeutralMaterialization keeps payloads on their captured
// locations with ambient interpretation layers active.
func UnflattenerWithoutNeutralMaterialization() types.Option[types.Unflattener] {
	return flatten.UnflattenerWithoutNeutralMaterialization()
}

// UnflattenerWithStrictOrdering rejects gapped reference demand patterns.
func UnflattenerWithStrictOrdering() types.Option[types.Unflattener] {
	return flatten.UnflattenerWithStrictOrdering()
}
