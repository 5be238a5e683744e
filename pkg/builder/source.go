package builder

import (
	"context"
	"io"

	"github.com/joeydtaylor/sideband/pkg/internal/source"
)

// NewSliceSource returns a ValueSource over an in-memory sequence, typically
// the extracted sequence from a matching Flatten call.
func NewSliceSource(values []any) *source.SliceSource {
	return source.NewSliceSource(values)
}

// NewChanSource returns a ValueSource reading from a channel until it closes.
func NewChanSource(ch <-chan any) *source.ChanSource {
	return source.NewChanSource(ch)
}

// NewFuncSource returns a ValueSource backed by a pull function. The function
// must return io.EOF once exhausted.
func NewFuncSource(fn func(ctx context.Context) (any, error)) *source.FuncSource {
	return source.NewFuncSource(fn)
}

// NewStreamSource returns a ValueSource decoding consecutive graph-codec
// values from r, the counterpart of EncodeValues.
func NewStreamSource(r io.Reader) *source.StreamSource {
	return source.NewStreamSource(r)
}
