package types

import (
	"context"

	"github.com/joeydtaylor/sideband/pkg/internal/blob"
)

// Predicate decides whether a sub-object encountered during flattening is
// diverted to the out-of-band channel instead of being inlined into the byte
// stream. It is consulted once per distinct object instance, in visitation
// order, parents before children, and is expected to be side-effect free.
type Predicate func(v any) bool

// ValueSource is a pull-based, ordered, single-pass producer of replacement
// values for the decode side. Next returns io.EOF once the source is
// exhausted. Implementations may be backed by an in-memory sequence, a
// channel, or a fetch from a remote store; random access is never required.
type ValueSource interface {
	Next(ctx context.Context) (any, error)
}

// SerializationSensor receives callbacks for the notable events of a flatten
// or unflatten call. All callbacks are invoked synchronously on the calling
// goroutine.
type SerializationSensor interface {
	// OnExtract fires when the predicate accepts an object and it is assigned
	// an extraction index.
	OnExtract(index uint64, v any)
	// OnResolve fires when a reference marker is resolved, whether from the
	// cache or a fresh pull.
	OnResolve(index uint64)
	// OnSourcePull fires once per value pulled from the replacement source;
	// index is the cache position the pulled value was stored at.
	OnSourcePull(index uint64)
}

// Flattener serializes object graphs while extracting predicate-accepted
// sub-objects into a side sequence. Implementations keep no per-call state on
// the receiver, so a single Flattener may serve concurrent calls; extraction
// indices are always local to one Flatten call.
type Flattener interface {
	// Flatten walks graph with the host codec, returning the extracted
	// sequence in first-acceptance order and the byte stream with reference
	// markers substituted at every extracted position.
	Flatten(ctx context.Context, graph any) (extracted []any, data []byte, err error)
	SetPredicate(p Predicate)
	ConnectLogger(loggers ...Logger)
	ConnectSensor(sensors ...SerializationSensor)
	SetComponentMetadata(name string, id string)
	GetComponentMetadata() ComponentMetadata
	NotifyLoggers(level LogLevel, format string, args ...interface{})
}

// Unflattener reconstructs a graph from a byte stream produced by a
// Flattener, resolving reference markers against a ValueSource. The source is
// consumed lazily and monotonically: at most maxIndex+1 pulls for a stream
// whose highest reference index is maxIndex, and never twice for one index.
type Unflattener interface {
	Unflatten(ctx context.Context, data []byte, source ValueSource) (any, error)
	// SetMaterializer overrides how opaque payloads materialize for the
	// duration of each Unflatten call on this component.
	SetMaterializer(m blob.Materializer)
	// SetNeutralMaterialization toggles the default behavior of forcing
	// payloads onto the neutral location with ambient layers suppressed.
	// With it disabled and no component materializer set, payloads resolve
	// through the ambient process-wide policy, so scopes pushed by
	// concurrent calls are observed for the duration of the overlap.
	SetNeutralMaterialization(enabled bool)
	// SetStrictOrdering makes first demands for extraction indices reject any
	// gap in the demand pattern with ErrOutOfOrderReference.
	SetStrictOrdering(enabled bool)
	ConnectLogger(loggers ...Logger)
	ConnectSensor(sensors ...SerializationSensor)
	SetComponentMetadata(name string, id string)
	GetComponentMetadata() ComponentMetadata
	NotifyLoggers(level LogLevel, format string, args ...interface{})
}
