package flatten_test

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/joeydtaylor/sideband/pkg/internal/blob"
	"github.com/joeydtaylor/sideband/pkg/internal/flatten"
	"github.com/joeydtaylor/sideband/pkg/internal/graphcodec"
	"github.com/joeydtaylor/sideband/pkg/internal/source"
	"github.com/joeydtaylor/sideband/pkg/internal/types"
)

// recordingSensor captures every sensor callback for assertion.
type recordingSensor struct {
	extracts []uint64
	resolves []uint64
	pulls    []uint64
}

func (s *recordingSensor) OnExtract(index uint64, v any) { s.extracts = append(s.extracts, index) }
func (s *recordingSensor) OnResolve(index uint64)        { s.resolves = append(s.resolves, index) }
func (s *recordingSensor) OnSourcePull(index uint64)     { s.pulls = append(s.pulls, index) }

func isBlob(v any) bool {
	_, ok := v.(*blob.Blob)
	return ok
}

func roundTrip(t *testing.T, graph any, p types.Predicate) any {
	t.Helper()
	ctx := context.Background()
	f := flatten.NewFlattener(ctx, flatten.FlattenerWithPredicate(p))
	extracted, data, err := f.Flatten(ctx, graph)
	if err != nil {
		t.Fatalf("flatten error: %v", err)
	}
	u := flatten.NewUnflattener(ctx)
	got, err := u.Unflatten(ctx, data, source.NewSliceSource(extracted))
	if err != nil {
		t.Fatalf("unflatten error: %v", err)
	}
	return got
}

// TestRoundTripIdentity reconstructs a mixed graph from its own extracted
// sequence and checks structural equality.
func TestRoundTripIdentity(t *testing.T) {
	shared := &blob.Blob{Location: "host", Data: []byte{0xaa, 0xbb}}
	graph := []any{
		"label",
		int64(-3),
		map[string]any{
			"payload": shared,
			"weights": []any{1.5, 2.5},
		},
		shared,
		nil,
	}
	got := roundTrip(t, graph, isBlob)
	if !reflect.DeepEqual(got, graph) {
		t.Errorf("round trip mismatch:\n got %#v\nwant %#v", got, graph)
	}
}

// TestIdentityPreservation checks that one object instance appearing at
// several positions is extracted once and that the reconstructed positions
// alias a single replacement instance.
func TestIdentityPreservation(t *testing.T) {
	ctx := context.Background()
	shared := &blob.Blob{Location: "gpu:0", Data: []byte{0x01}}
	graph := []any{shared, "between", shared}

	f := flatten.NewFlattener(ctx, flatten.FlattenerWithPredicate(isBlob))
	extracted, data, err := f.Flatten(ctx, graph)
	if err != nil {
		t.Fatalf("flatten error: %v", err)
	}
	if len(extracted) != 1 {
		t.Fatalf("extracted %d values, want 1", len(extracted))
	}
	if extracted[0] != any(shared) {
		t.Error("extracted value is not the original instance")
	}

	replacement := &blob.Blob{Location: "host", Data: []byte{0x02}}
	u := flatten.NewUnflattener(ctx)
	got, err := u.Unflatten(ctx, data, source.NewSliceSource([]any{replacement}))
	if err != nil {
		t.Fatalf("unflatten error: %v", err)
	}
	list := got.([]any)
	if list[0] != any(replacement) || list[2] != any(replacement) {
		t.Error("reconstructed positions do not alias the replacement instance")
	}
}

// TestNoExtractionMatchesPlainEncoding checks that with a rejecting predicate
// (or none at all) the stream is byte-identical to the codec's unmodified
// encoding and the extracted sequence is empty.
func TestNoExtractionMatchesPlainEncoding(t *testing.T) {
	ctx := context.Background()
	graph := map[string]any{"k": []any{int64(1), "two", []byte{0x03}}}

	var plain bytes.Buffer
	if err := graphcodec.NewEncoder(&plain).Encode(graph); err != nil {
		t.Fatalf("plain encode error: %v", err)
	}

	for name, p := range map[string]types.Predicate{
		"reject all":   func(any) bool { return false },
		"no predicate": nil,
	} {
		f := flatten.NewFlattener(ctx, flatten.FlattenerWithPredicate(p))
		extracted, data, err := f.Flatten(ctx, graph)
		if err != nil {
			t.Fatalf("%s: flatten error: %v", name, err)
		}
		if len(extracted) != 0 {
			t.Errorf("%s: extracted %d values, want 0", name, len(extracted))
		}
		if !bytes.Equal(data, plain.Bytes()) {
			t.Errorf("%s: stream differs from plain encoding", name)
		}
	}
}

// TestAcceptedRootShortCircuits checks that accepting the root diverts the
// whole graph: one extracted value, no recursion into its children.
func TestAcceptedRootShortCircuits(t *testing.T) {
	ctx := context.Background()
	inner := &blob.Blob{Data: []byte{0x09}}
	graph := []any{inner, "child"}

	calls := 0
	p := func(v any) bool {
		calls++
		return true
	}
	f := flatten.NewFlattener(ctx, flatten.FlattenerWithPredicate(p))
	extracted, data, err := f.Flatten(ctx, graph)
	if err != nil {
		t.Fatalf("flatten error: %v", err)
	}
	if len(extracted) != 1 || extracted[0] == nil {
		t.Fatalf("extracted %d values, want the root alone", len(extracted))
	}
	if calls != 1 {
		t.Errorf("predicate called %d times, want 1 (children of an accepted object are not visited)", calls)
	}

	u := flatten.NewUnflattener(ctx)
	got, err := u.Unflatten(ctx, data, source.NewSliceSource(extracted))
	if err != nil {
		t.Fatalf("unflatten error: %v", err)
	}
	if !reflect.DeepEqual(got, graph) {
		t.Errorf("got %#v, want %#v", got, graph)
	}
}

// TestPredicateConsultedOncePerInstance checks the de-duplication contract:
// one predicate call per distinct instance, even for rejected ones.
func TestPredicateConsultedOncePerInstance(t *testing.T) {
	ctx := context.Background()
	accepted := &blob.Blob{Data: []byte{0x01}}
	rejected := map[string]any{"inline": int64(1)}
	graph := []any{accepted, rejected, accepted, rejected}

	seen := make(map[any]int)
	p := func(v any) bool {
		// Slices and maps are unhashable; key them by identity instead.
		k := v
		switch rv := reflect.ValueOf(v); rv.Kind() {
		case reflect.Slice, reflect.Map:
			k = rv.Pointer()
		}
		seen[k]++
		return isBlob(v)
	}
	f := flatten.NewFlattener(ctx, flatten.FlattenerWithPredicate(p))
	if _, _, err := f.Flatten(ctx, graph); err != nil {
		t.Fatalf("flatten error: %v", err)
	}
	if seen[accepted] != 1 {
		t.Errorf("accepted instance consulted %d times, want 1", seen[accepted])
	}
}

// TestExtractionOrderAndIndices pins the concrete scenario: graph
// [a, 42, a, b] with both payloads accepted extracts [a, b], and decoding
// against substitutes threads them back positionally.
func TestExtractionOrderAndIndices(t *testing.T) {
	ctx := context.Background()
	objA := &blob.Blob{Location: "gpu:0", Data: []byte{0x0a}}
	objB := &blob.Blob{Location: "gpu:1", Data: []byte{0x0b}}
	graph := []any{objA, int64(42), objA, objB}

	sensor := &recordingSensor{}
	f := flatten.NewFlattener(ctx,
		flatten.FlattenerWithPredicate(isBlob),
		flatten.FlattenerWithSensor(sensor),
	)
	extracted, data, err := f.Flatten(ctx, graph)
	if err != nil {
		t.Fatalf("flatten error: %v", err)
	}
	if len(extracted) != 2 || extracted[0] != any(objA) || extracted[1] != any(objB) {
		t.Fatalf("extracted %#v, want [objA, objB]", extracted)
	}
	if !reflect.DeepEqual(sensor.extracts, []uint64{0, 1}) {
		t.Errorf("extract indices %v, want [0 1]", sensor.extracts)
	}

	subA := &blob.Blob{Location: "host", Data: []byte{0x1a}}
	subB := &blob.Blob{Location: "host", Data: []byte{0x1b}}
	u := flatten.NewUnflattener(ctx)
	got, err := u.Unflatten(ctx, data, source.NewSliceSource([]any{subA, subB}))
	if err != nil {
		t.Fatalf("unflatten error: %v", err)
	}
	list := got.([]any)
	if list[0] != any(subA) || list[2] != any(subA) {
		t.Error("positions 0 and 2 should both be the first substitute")
	}
	if list[1] != any(int64(42)) {
		t.Errorf("position 1 is %#v, want inlined 42", list[1])
	}
	if list[3] != any(subB) {
		t.Error("position 3 should be the second substitute")
	}
}

// TestIndicesAreCallLocal checks that extraction indices restart at zero on
// every call: two identical graphs flattened by the same component produce
// identical streams.
func TestIndicesAreCallLocal(t *testing.T) {
	ctx := context.Background()
	f := flatten.NewFlattener(ctx, flatten.FlattenerWithPredicate(isBlob))

	build := func() any {
		return []any{&blob.Blob{Data: []byte{0x01}}, &blob.Blob{Data: []byte{0x02}}}
	}
	extractedA, dataA, err := f.Flatten(ctx, build())
	if err != nil {
		t.Fatalf("first flatten error: %v", err)
	}
	extractedB, dataB, err := f.Flatten(ctx, build())
	if err != nil {
		t.Fatalf("second flatten error: %v", err)
	}
	if len(extractedA) != 2 || len(extractedB) != 2 {
		t.Fatalf("extracted %d and %d values, want 2 and 2", len(extractedA), len(extractedB))
	}
	if !bytes.Equal(dataA, dataB) {
		t.Error("identical graphs produced different streams; indices leaked across calls")
	}
}

// TestValueKindsAreNotDeduplicated checks that value kinds have no instance
// identity: the same string appearing twice is extracted twice.
func TestValueKindsAreNotDeduplicated(t *testing.T) {
	ctx := context.Background()
	graph := []any{"token", "token"}
	p := func(v any) bool {
		_, ok := v.(string)
		return ok
	}
	f := flatten.NewFlattener(ctx, flatten.FlattenerWithPredicate(p))
	extracted, _, err := f.Flatten(ctx, graph)
	if err != nil {
		t.Fatalf("flatten error: %v", err)
	}
	if len(extracted) != 2 {
		t.Errorf("extracted %d values, want 2 (strings carry no identity)", len(extracted))
	}
}

// TestCycleBrokenByExtraction checks that a cyclic graph serializes once the
// predicate accepts a participant of the cycle: the accepted object is
// diverted whole, so the encoder never walks back into the cycle, and the
// round trip reconstructs it through the side channel.
func TestCycleBrokenByExtraction(t *testing.T) {
	ctx := context.Background()
	inner := map[string]any{}
	outer := map[string]any{"child": inner}
	inner["parent"] = outer

	p := func(v any) bool {
		m, ok := v.(map[string]any)
		if !ok {
			return false
		}
		_, has := m["parent"]
		return has
	}
	f := flatten.NewFlattener(ctx, flatten.FlattenerWithPredicate(p))
	extracted, data, err := f.Flatten(ctx, outer)
	if err != nil {
		t.Fatalf("flatten error: %v", err)
	}
	if len(extracted) != 1 {
		t.Fatalf("extracted %d values, want the cycle participant alone", len(extracted))
	}

	u := flatten.NewUnflattener(ctx)
	got, err := u.Unflatten(ctx, data, source.NewSliceSource(extracted))
	if err != nil {
		t.Fatalf("unflatten error: %v", err)
	}
	child := got.(map[string]any)["child"].(map[string]any)
	if reflect.ValueOf(child).Pointer() != reflect.ValueOf(inner).Pointer() {
		t.Fatal("reconstructed child should alias the extracted instance")
	}
	grandchild := child["parent"].(map[string]any)["child"].(map[string]any)
	if reflect.ValueOf(grandchild).Pointer() != reflect.ValueOf(child).Pointer() {
		t.Error("cycle not reconstructed through the side channel")
	}
}

// TestUnsupportedObjectSurfaces checks that a rejected unsupported object
// fails the whole call with ErrUnsupportedObject.
func TestUnsupportedObjectSurfaces(t *testing.T) {
	ctx := context.Background()
	type opaque struct{ fd int }
	graph := []any{"fine", opaque{fd: 3}}

	f := flatten.NewFlattener(ctx, flatten.FlattenerWithPredicate(isBlob))
	_, _, err := f.Flatten(ctx, graph)
	if !errors.Is(err, types.ErrUnsupportedObject) {
		t.Errorf("got %v, want ErrUnsupportedObject", err)
	}
}

// TestFlattenHonorsCancellation checks that an already-cancelled context
// fails fast.
func TestFlattenHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := flatten.NewFlattener(context.Background(), flatten.FlattenerWithPredicate(isBlob))
	if _, _, err := f.Flatten(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
