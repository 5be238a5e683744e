package builder

import (
	"io"

	"github.com/joeydtaylor/sideband/pkg/internal/graphcodec"
	"github.com/joeydtaylor/sideband/pkg/internal/types"
	"github.com/joeydtaylor/sideband/pkg/internal/wirecodec"
)

// Error kinds surfaced by the library, matchable with errors.Is.
var (
	ErrUnsupportedObject     = types.ErrUnsupportedObject
	ErrMalformedStream       = types.ErrMalformedStream
	ErrTruncatedReplacements = types.ErrTruncatedReplacements
	ErrOutOfOrderReference   = types.ErrOutOfOrderReference
)

// CompressionAlgorithm selects envelope compression.
type CompressionAlgorithm = wirecodec.CompressionAlgorithm

// Compression algorithms for Seal.
const (
	CompressNone    = wirecodec.CompressNone
	CompressDeflate = wirecodec.CompressDeflate
	CompressSnappy  = wirecodec.CompressSnappy
	CompressZstd    = wirecodec.CompressZstd
	CompressBrotli  = wirecodec.CompressBrotli
	CompressLZ4     = wirecodec.CompressLZ4
)

// NewGraphEncoder creates a host-codec encoder writing to w.
func NewGraphEncoder(w io.Writer, options ...graphcodec.EncoderOption) *graphcodec.Encoder {
	return graphcodec.NewEncoder(w, options...)
}

// NewGraphDecoder creates a host-codec decoder reading from r.
func NewGraphDecoder(r io.Reader, options ...graphcodec.DecoderOption) *graphcodec.Decoder {
	return graphcodec.NewDecoder(r, options...)
}

// EncodeValues serializes an extracted sequence for transport; pair with
// NewStreamSource on the decode side.
func EncodeValues(values []any) ([]byte, error) {
	return wirecodec.EncodeValues(values)
}

// Seal frames a byte stream and an encoded value sequence into one envelope.
func Seal(stream []byte, values []byte, algorithm CompressionAlgorithm) ([]byte, error) {
	return wirecodec.Seal(stream, values, algorithm)
}

// Open reverses Seal.
func Open(envelope []byte) (stream []byte, values []byte, err error) {
	return wirecodec.Open(envelope)
}
