package blob_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/joeydtaylor/sideband/pkg/internal/blob"
)

func locationMat(location string) blob.Materializer {
	return blob.MaterializerFunc(func(_ string, data []byte) (*blob.Blob, error) {
		return &blob.Blob{Location: location, Data: data}, nil
	})
}

func TestDefaultMaterializer(t *testing.T) {
	b, err := blob.Materialize("gpu:0", []byte{0x01})
	if err != nil {
		t.Fatalf("materialize error: %v", err)
	}
	if b.Location != "gpu:0" {
		t.Errorf("location %q, want captured location preserved", b.Location)
	}

	b, err = blob.Materialize("", []byte{0x02})
	if err != nil {
		t.Fatalf("materialize error: %v", err)
	}
	if b.Location != blob.DefaultLocation {
		t.Errorf("location %q, want %q for empty capture", b.Location, blob.DefaultLocation)
	}
}

func TestNeutralMaterializer(t *testing.T) {
	b, err := blob.NeutralMaterializer{}.Materialize("gpu:7", []byte{0x03})
	if err != nil {
		t.Fatalf("materialize error: %v", err)
	}
	if b.Location != blob.DefaultLocation {
		t.Errorf("location %q, want %q", b.Location, blob.DefaultLocation)
	}
}

// TestScopeNesting checks that the innermost scope wins and that restores
// reinstate the prior policy exactly, even out of push order.
func TestScopeNesting(t *testing.T) {
	restoreOuter := blob.PushScope(blob.Scope{Materializer: locationMat("outer")})
	restoreInner := blob.PushScope(blob.Scope{Materializer: locationMat("inner")})

	if b, _ := blob.Materialize("x", nil); b.Location != "inner" {
		t.Errorf("location %q, want innermost scope to win", b.Location)
	}

	// Retiring the outer scope first must leave the inner one effective.
	restoreOuter()
	if b, _ := blob.Materialize("x", nil); b.Location != "inner" {
		t.Errorf("location %q after out-of-order restore, want %q", b.Location, "inner")
	}

	restoreInner()
	if n := blob.ActiveScopes(); n != 0 {
		t.Errorf("%d scopes active, want 0", n)
	}
	if b, _ := blob.Materialize("x", nil); b.Location != "x" {
		t.Errorf("location %q, want default policy restored", b.Location)
	}
}

func TestRestoreIsIdempotent(t *testing.T) {
	restore := blob.PushScope(blob.Scope{Materializer: locationMat("once")})
	restore()
	restore()
	if n := blob.ActiveScopes(); n != 0 {
		t.Errorf("%d scopes active after double restore, want 0", n)
	}
}

// TestLayersApplyInOrder checks registration-order application and
// replacement by name.
func TestLayersApplyInOrder(t *testing.T) {
	blob.RegisterLayer("a", blob.LayerFunc(func(b *blob.Blob) (*blob.Blob, error) {
		return &blob.Blob{Location: b.Location + ".a", Data: b.Data}, nil
	}))
	blob.RegisterLayer("b", blob.LayerFunc(func(b *blob.Blob) (*blob.Blob, error) {
		return &blob.Blob{Location: b.Location + ".b", Data: b.Data}, nil
	}))
	defer blob.UnregisterLayer("a")
	defer blob.UnregisterLayer("b")

	got, err := blob.Materialize("base", []byte{0x01})
	if err != nil {
		t.Fatalf("materialize error: %v", err)
	}
	if got.Location != "base.a.b" {
		t.Errorf("location %q, want %q", got.Location, "base.a.b")
	}

	// Re-registering under an existing name replaces in place.
	blob.RegisterLayer("a", blob.LayerFunc(func(b *blob.Blob) (*blob.Blob, error) {
		return &blob.Blob{Location: b.Location + ".A", Data: b.Data}, nil
	}))
	got, err = blob.Materialize("base", nil)
	if err != nil {
		t.Fatalf("materialize error: %v", err)
	}
	if got.Location != "base.A.b" {
		t.Errorf("location %q, want %q", got.Location, "base.A.b")
	}
}

func TestScopeSuppressesLayers(t *testing.T) {
	blob.RegisterLayer("suffix", blob.LayerFunc(func(b *blob.Blob) (*blob.Blob, error) {
		return &blob.Blob{Location: b.Location + "+layer", Data: b.Data}, nil
	}))
	defer blob.UnregisterLayer("suffix")

	restore := blob.PushScope(blob.Scope{Materializer: blob.NeutralMaterializer{}, SuppressLayers: true})
	b, err := blob.Materialize("gpu:0", []byte{0x01})
	restore()
	if err != nil {
		t.Fatalf("materialize error: %v", err)
	}
	if b.Location != blob.DefaultLocation {
		t.Errorf("location %q, want layers suppressed under scope", b.Location)
	}

	b, err = blob.Materialize("gpu:0", []byte{0x01})
	if err != nil {
		t.Fatalf("materialize error: %v", err)
	}
	if b.Location != "gpu:0+layer" {
		t.Errorf("location %q, want layers active again after restore", b.Location)
	}
}

func TestMaterializeCopiesData(t *testing.T) {
	data := []byte{0xde, 0xad}
	b, err := blob.Materialize("host", data)
	if err != nil {
		t.Fatalf("materialize error: %v", err)
	}
	if !bytes.Equal(b.Data, data) {
		t.Errorf("data %x, want %x", b.Data, data)
	}
}

// TestConcurrentScopes pushes and retires scopes from many goroutines; token
// based removal must leave the stack empty regardless of interleaving.
func TestConcurrentScopes(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				restore := blob.PushScope(blob.Scope{Materializer: blob.NeutralMaterializer{}, SuppressLayers: true})
				if _, err := blob.Materialize("gpu:0", nil); err != nil {
					t.Errorf("materialize error: %v", err)
				}
				restore()
			}
		}()
	}
	wg.Wait()
	if n := blob.ActiveScopes(); n != 0 {
		t.Errorf("%d scopes active after concurrent churn, want 0", n)
	}
}
