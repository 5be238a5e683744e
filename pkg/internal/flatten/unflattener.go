package flatten

import (
	"context"
	"sync"

	"github.com/joeydtaylor/sideband/pkg/internal/blob"
	"github.com/joeydtaylor/sideband/pkg/internal/types"
)

// Unflattener is the decode-side component. Like the Flattener it keeps all
// per-call state (resolution cache, source cursor) local to each Unflatten
// call, so concurrent calls on one component never share mutable state.
type Unflattener struct {
	componentMetadata types.ComponentMetadata
	ctx               context.Context
	materializer      blob.Materializer
	neutral           bool
	strict            bool
	loggers           []types.Logger
	loggersLock       sync.Mutex
	sensors           []types.SerializationSensor
}

// NewUnflattener creates an Unflattener with the supplied options. By default
// every Unflatten call materializes payloads on the neutral location with
// ambient interpretation layers suppressed, restoring the prior policy when
// the call exits.
func NewUnflattener(ctx context.Context, options ...types.Option[types.Unflattener]) types.Unflattener {
	u := &Unflattener{
		ctx:     ctx,
		neutral: true,
		loggers: make([]types.Logger, 0),
		sensors: make([]types.SerializationSensor, 0),
	}
	for _, option := range options {
		option(u)
	}
	return u
}

// SetMaterializer overrides payload materialization for this component's
// calls. It takes precedence over neutral materialization.
func (u *Unflattener) SetMaterializer(m blob.Materializer) {
	u.materializer = m
}

// SetNeutralMaterialization toggles the default neutral-location override.
// When disabled and no component materializer is set, payloads resolve
// through the ambient process-wide policy, so scopes pushed by concurrent
// calls are observed for the duration of the overlap.
func (u *Unflattener) SetNeutralMaterialization(enabled bool) {
	u.neutral = enabled
}

// SetStrictOrdering makes the resolution cache reject demand patterns with
// gaps instead of pulling ahead.
func (u *Unflattener) SetStrictOrdering(enabled bool) {
	u.strict = enabled
}

// GetComponentMetadata returns the metadata.
func (u *Unflattener) GetComponentMetadata() types.ComponentMetadata {
	return u.componentMetadata
}

// SetComponentMetadata sets the component metadata.
func (u *Unflattener) SetComponentMetadata(name string, id string) {
	u.componentMetadata = types.ComponentMetadata{Name: name, ID: id, Type: "UNFLATTENER"}
}

// ConnectLogger attaches loggers to the Unflattener.
func (u *Unflattener) ConnectLogger(loggers ...types.Logger) {
	u.loggersLock.Lock()
	defer u.loggersLock.Unlock()
	u.loggers = append(u.loggers, loggers...)
}

// ConnectSensor attaches sensors to the Unflattener.
func (u *Unflattener) ConnectSensor(sensors ...types.SerializationSensor) {
	u.loggersLock.Lock()
	defer u.loggersLock.Unlock()
	u.sensors = append(u.sensors, sensors...)
}
