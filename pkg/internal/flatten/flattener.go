// Package flatten implements selective graph serialization with an
// out-of-band value channel. A Flattener drives the graph codec with an
// interception hook that diverts predicate-accepted sub-objects into a side
// sequence, leaving reference markers in the byte stream; an Unflattener
// drives the decode and threads replacement values back in at the marked
// positions, pulling from the replacement source lazily and monotonically.
package flatten

import (
	"context"
	"reflect"
	"sync"

	"github.com/joeydtaylor/sideband/pkg/internal/types"
)

// Flattener is the encode-side component. All mutable serialization state
// lives in the per-call run, so one Flattener may serve concurrent Flatten
// calls; extraction indices restart at zero for every call.
type Flattener struct {
	componentMetadata types.ComponentMetadata
	ctx               context.Context
	predicate         types.Predicate
	loggers           []types.Logger
	loggersLock       sync.Mutex
	sensors           []types.SerializationSensor
}

// NewFlattener creates a Flattener with the supplied options. Without a
// predicate it extracts nothing and the output bytes equal the codec's
// unmodified encoding.
func NewFlattener(ctx context.Context, options ...types.Option[types.Flattener]) types.Flattener {
	f := &Flattener{
		ctx:     ctx,
		loggers: make([]types.Logger, 0),
		sensors: make([]types.SerializationSensor, 0),
	}
	for _, option := range options {
		option(f)
	}
	return f
}

// SetPredicate sets the extraction predicate.
func (f *Flattener) SetPredicate(p types.Predicate) {
	f.predicate = p
}

// GetComponentMetadata returns the metadata.
func (f *Flattener) GetComponentMetadata() types.ComponentMetadata {
	return f.componentMetadata
}

// SetComponentMetadata sets the component metadata.
func (f *Flattener) SetComponentMetadata(name string, id string) {
	f.componentMetadata = types.ComponentMetadata{Name: name, ID: id, Type: "FLATTENER"}
}

// ConnectLogger attaches loggers to the Flattener.
func (f *Flattener) ConnectLogger(loggers ...types.Logger) {
	f.loggersLock.Lock()
	defer f.loggersLock.Unlock()
	f.loggers = append(f.loggers, loggers...)
}

// ConnectSensor attaches sensors to the Flattener.
func (f *Flattener) ConnectSensor(sensors ...types.SerializationSensor) {
	f.loggersLock.Lock()
	defer f.loggersLock.Unlock()
	f.sensors = append(f.sensors, sensors...)
}

// identityKey identifies one object instance for de-duplication. Only
// reference kinds have instance identity; value kinds are a fresh instance at
// every appearance.
type identityKey struct {
	typ reflect.Type
	ptr uintptr
	len int
}

// identityOf returns the identity key for v and whether v has one.
func identityOf(v any) (identityKey, bool) {
	if v == nil {
		return identityKey{}, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return identityKey{typ: rv.Type(), ptr: rv.Pointer()}, true
	case reflect.Slice:
		// Slices share identity when they share both backing array and length.
		return identityKey{typ: rv.Type(), ptr: rv.Pointer(), len: rv.Len()}, true
	default:
		return identityKey{}, false
	}
}
