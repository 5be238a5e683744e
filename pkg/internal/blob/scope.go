package blob

import "sync"

// Layer is an ambient interpretation layer applied to every payload after
// materialization, in registration order. Layers are process-wide; a scope
// with SuppressLayers set bypasses all of them.
type Layer interface {
	Apply(b *Blob) (*Blob, error)
}

// LayerFunc adapts a plain function to the Layer interface.
type LayerFunc func(b *Blob) (*Blob, error)

func (f LayerFunc) Apply(b *Blob) (*Blob, error) { return f(b) }

// Scope describes a temporary override of the ambient materialization policy.
type Scope struct {
	Materializer   Materializer
	SuppressLayers bool
}

type scopeEntry struct {
	token uint64
	scope Scope
}

type namedLayer struct {
	name  string
	layer Layer
}

var (
	registryMu sync.Mutex
	defaultMat Materializer = HeapMaterializer{}
	layers     []namedLayer
	scopes     []scopeEntry
	nextToken  uint64
)

// SetDefault replaces the process-wide default materializer and returns the
// previous one. Intended for host environments that need a different resting
// policy; scoped overrides are the right tool everywhere else.
func SetDefault(m Materializer) Materializer {
	registryMu.Lock()
	defer registryMu.Unlock()
	prev := defaultMat
	if m == nil {
		m = HeapMaterializer{}
	}
	defaultMat = m
	return prev
}

// RegisterLayer installs an ambient interpretation layer under a name,
// replacing any layer previously registered under the same name.
func RegisterLayer(name string, l Layer) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for i := range layers {
		if layers[i].name == name {
			layers[i].layer = l
			return
		}
	}
	layers = append(layers, namedLayer{name: name, layer: l})
}

// UnregisterLayer removes the named layer. Removing a name that was never
// registered is a no-op.
func UnregisterLayer(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for i := range layers {
		if layers[i].name == name {
			layers = append(layers[:i], layers[i+1:]...)
			return
		}
	}
}

// PushScope activates a scoped override and returns the function that
// retires it. Every entry carries its own token, so restore removes exactly
// the entry it created no matter how concurrent scopes interleave; the prior
// state is therefore reinstated exactly on every exit path. Restore is
// idempotent and safe to call from a deferred statement.
func PushScope(s Scope) (restore func()) {
	registryMu.Lock()
	nextToken++
	token := nextToken
	scopes = append(scopes, scopeEntry{token: token, scope: s})
	registryMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			registryMu.Lock()
			defer registryMu.Unlock()
			for i := len(scopes) - 1; i >= 0; i-- {
				if scopes[i].token == token {
					scopes = append(scopes[:i], scopes[i+1:]...)
					return
				}
			}
		})
	}
}

// ActiveScopes reports how many scoped overrides are currently in effect.
func ActiveScopes() int {
	registryMu.Lock()
	defer registryMu.Unlock()
	return len(scopes)
}

// Current resolves the effective materializer and interpretation layers: the
// innermost active scope wins, the process default otherwise.
func Current() (Materializer, []Layer) {
	registryMu.Lock()
	defer registryMu.Unlock()

	mat := defaultMat
	suppress := false
	if n := len(scopes); n > 0 {
		top := scopes[n-1].scope
		if top.Materializer != nil {
			mat = top.Materializer
		}
		suppress = top.SuppressLayers
	}
	if suppress || len(layers) == 0 {
		return mat, nil
	}
	out := make([]Layer, len(layers))
	for i := range layers {
		out[i] = layers[i].layer
	}
	return mat, out
}

// Materialize runs the effective policy for one decoded payload: the current
// materializer first, then every active layer in registration order.
func Materialize(location string, data []byte) (*Blob, error) {
	mat, active := Current()
	b, err := mat.Materialize(location, data)
	if err != nil {
		return nil, err
	}
	for _, l := range active {
		b, err = l.Apply(b)
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}
