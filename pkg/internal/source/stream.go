package source

import (
	"context"
	"io"

	"github.com/joeydtaylor/sideband/pkg/internal/graphcodec"
)

// StreamSource decodes consecutive graph-codec values from a reader, the
// counterpart of wirecodec.EncodeValues. It yields io.EOF when the stream
// ends cleanly at a value boundary, so a prefix of the sequence can be
// consumed without reading the rest of the reader.
type StreamSource struct {
	dec *graphcodec.Decoder
}

// NewStreamSource returns a source decoding values from r.
func NewStreamSource(r io.Reader) *StreamSource {
	return &StreamSource{dec: graphcodec.NewDecoder(r)}
}

func (s *StreamSource) Next(ctx context.Context) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.dec.Decode()
}
