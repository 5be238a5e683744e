package wirecodec_test

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/joeydtaylor/sideband/pkg/internal/blob"
	"github.com/joeydtaylor/sideband/pkg/internal/flatten"
	"github.com/joeydtaylor/sideband/pkg/internal/source"
	"github.com/joeydtaylor/sideband/pkg/internal/types"
	"github.com/joeydtaylor/sideband/pkg/internal/wirecodec"
)

var algorithms = map[string]wirecodec.CompressionAlgorithm{
	"none":    wirecodec.CompressNone,
	"deflate": wirecodec.CompressDeflate,
	"snappy":  wirecodec.CompressSnappy,
	"zstd":    wirecodec.CompressZstd,
	"brotli":  wirecodec.CompressBrotli,
	"lz4":     wirecodec.CompressLZ4,
}

func TestSealOpenRoundTrip(t *testing.T) {
	stream := bytes.Repeat([]byte("graph bytes with some repetition "), 20)
	values := bytes.Repeat([]byte("encoded extracted sequence "), 20)

	for name, alg := range algorithms {
		envelope, err := wirecodec.Seal(stream, values, alg)
		if err != nil {
			t.Fatalf("%s: seal error: %v", name, err)
		}
		gotStream, gotValues, err := wirecodec.Open(envelope)
		if err != nil {
			t.Fatalf("%s: open error: %v", name, err)
		}
		if !bytes.Equal(gotStream, stream) || !bytes.Equal(gotValues, values) {
			t.Errorf("%s: sections corrupted in round trip", name)
		}
	}
}

func TestSealEmptySections(t *testing.T) {
	for name, alg := range algorithms {
		envelope, err := wirecodec.Seal(nil, nil, alg)
		if err != nil {
			t.Fatalf("%s: seal error: %v", name, err)
		}
		gotStream, gotValues, err := wirecodec.Open(envelope)
		if err != nil {
			t.Fatalf("%s: open error: %v", name, err)
		}
		if len(gotStream) != 0 || len(gotValues) != 0 {
			t.Errorf("%s: got non-empty sections from empty input", name)
		}
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	cases := map[string][]byte{
		"empty":             {},
		"short":             {'S', 'B'},
		"bad magic":         []byte("XXXXrest of envelope"),
		"missing algorithm": {'S', 'B', 'E', '1'},
		"unknown algorithm": {'S', 'B', 'E', '1', 0x7f, 0x00, 0x00},
		"truncated section": {'S', 'B', 'E', '1', 0x00, 0x10, 0x01},
		"oversized length":  {'S', 'B', 'E', '1', 0x00, 0xff, 0xff, 0xff, 0x0f},
	}
	for name, envelope := range cases {
		if _, _, err := wirecodec.Open(envelope); !errors.Is(err, types.ErrMalformedStream) {
			t.Errorf("%s: got %v, want ErrMalformedStream", name, err)
		}
	}
}

func TestOpenRejectsCorruptCompression(t *testing.T) {
	envelope, err := wirecodec.Seal([]byte("payload payload payload"), []byte("values"), wirecodec.CompressDeflate)
	if err != nil {
		t.Fatalf("seal error: %v", err)
	}
	// Flip bytes inside the first compressed section.
	envelope[8] ^= 0xff
	envelope[9] ^= 0xff
	if _, _, err := wirecodec.Open(envelope); !errors.Is(err, types.ErrMalformedStream) {
		t.Errorf("got %v, want ErrMalformedStream", err)
	}
}

// TestEnvelopeCarriesFlattenedGraph runs the full transport path: flatten,
// encode the extracted sequence, seal, open, and reconstruct.
func TestEnvelopeCarriesFlattenedGraph(t *testing.T) {
	ctx := context.Background()
	shared := &blob.Blob{Location: "host", Data: []byte{0xca, 0xfe}}
	graph := []any{shared, map[string]any{"n": int64(1)}, shared}

	isBlob := func(v any) bool {
		_, ok := v.(*blob.Blob)
		return ok
	}
	f := flatten.NewFlattener(ctx, flatten.FlattenerWithPredicate(isBlob))
	extracted, stream, err := f.Flatten(ctx, graph)
	if err != nil {
		t.Fatalf("flatten error: %v", err)
	}
	values, err := wirecodec.EncodeValues(extracted)
	if err != nil {
		t.Fatalf("encode values error: %v", err)
	}
	envelope, err := wirecodec.Seal(stream, values, wirecodec.CompressZstd)
	if err != nil {
		t.Fatalf("seal error: %v", err)
	}

	gotStream, gotValues, err := wirecodec.Open(envelope)
	if err != nil {
		t.Fatalf("open error: %v", err)
	}
	u := flatten.NewUnflattener(ctx)
	got, err := u.Unflatten(ctx, gotStream, source.NewStreamSource(bytes.NewReader(gotValues)))
	if err != nil {
		t.Fatalf("unflatten error: %v", err)
	}
	if !reflect.DeepEqual(got, graph) {
		t.Errorf("got %#v, want %#v", got, graph)
	}
}

func TestEncodeValuesRejectsUnsupported(t *testing.T) {
	type opaque struct{ fd int }
	if _, err := wirecodec.EncodeValues([]any{"fine", opaque{}}); !errors.Is(err, types.ErrUnsupportedObject) {
		t.Errorf("got %v, want ErrUnsupportedObject", err)
	}
}
