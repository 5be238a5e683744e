package builder

import (
	"github.com/joeydtaylor/sideband/pkg/internal/blob"
)

// Blob is an opaque binary payload carried through the codec wholesale.
type Blob = blob.Blob

// Materializer decides where and how payload bytes come back to life.
type Materializer = blob.Materializer

// MaterializerFunc adapts a plain function to the Materializer interface.
type MaterializerFunc = blob.MaterializerFunc

// Layer is an ambient interpretation layer applied after materialization.
type Layer = blob.Layer

// LayerFunc adapts a plain function to the Layer interface.
type LayerFunc = blob.LayerFunc

// Scope describes a temporary override of the materialization policy.
type Scope = blob.Scope

// DefaultLocation is the neutral resource location.
const DefaultLocation = blob.DefaultLocation

// RegisterLayer installs an ambient interpretation layer under a name.
func RegisterLayer(name string, l blob.Layer) {
	blob.RegisterLayer(name, l)
}

// UnregisterLayer removes the named layer.
func UnregisterLayer(name string) {
	blob.UnregisterLayer(name)
}

// PushScope activates a scoped materialization override; call the returned
// function to retire it, restoring the prior policy exactly.
func PushScope(s blob.Scope) (restore func()) {
	return blob.PushScope(s)
}
