// Package wirecodec frames the two halves of a flattened graph — the byte
// stream and the encoded extracted sequence — into a single envelope for
// transport, with optional per-section compression. The envelope is a
// convenience for callers that ship both halves over one pipe; the core
// contract only requires that they arrive together.
package wirecodec

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/cockroachdb/errors"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"

	"github.com/joeydtaylor/sideband/pkg/internal/graphcodec"
	"github.com/joeydtaylor/sideband/pkg/internal/types"
)

// CompressionAlgorithm selects how envelope sections are compressed.
type CompressionAlgorithm byte

const (
	CompressNone CompressionAlgorithm = iota
	CompressDeflate
	CompressSnappy
	CompressZstd
	CompressBrotli
	CompressLZ4
)

var envelopeMagic = [4]byte{'S', 'B', 'E', '1'}

// EncodeValues serializes an extracted sequence as consecutive graph-codec
// values, suitable for a StreamSource on the decode side. Values that the
// codec cannot represent fail with ErrUnsupportedObject; such values must be
// transported by other means.
func EncodeValues(values []any) ([]byte, error) {
	var buf bytes.Buffer
	enc := graphcodec.NewEncoder(&buf)
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Seal frames stream and values into one envelope, compressing each section
// with the chosen algorithm.
func Seal(stream []byte, values []byte, algorithm CompressionAlgorithm) ([]byte, error) {
	var out bytes.Buffer
	out.Write(envelopeMagic[:])
	out.WriteByte(byte(algorithm))
	for _, section := range [][]byte{stream, values} {
		compressed, err := compress(section, algorithm)
		if err != nil {
			return nil, err
		}
		var lenBuf [binary.MaxVarintLen64]byte
		n := binary.PutUvarint(lenBuf[:], uint64(len(compressed)))
		out.Write(lenBuf[:n])
		out.Write(compressed)
	}
	return out.Bytes(), nil
}

// Open reverses Seal, returning the byte stream and encoded values sections.
func Open(envelope []byte) (stream []byte, values []byte, err error) {
	r := bytes.NewReader(envelope)
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil || magic != envelopeMagic {
		return nil, nil, errors.Wrap(types.ErrMalformedStream, "bad envelope magic")
	}
	algByte, err := r.ReadByte()
	if err != nil {
		return nil, nil, errors.Wrap(types.ErrMalformedStream, "truncated envelope")
	}
	algorithm := CompressionAlgorithm(algByte)
	if algorithm > CompressLZ4 {
		return nil, nil, errors.Wrapf(types.ErrMalformedStream, "unknown compression algorithm 0x%02x", algByte)
	}
	sections := make([][]byte, 2)
	for i := range sections {
		length, err := binary.ReadUvarint(r)
		if err != nil || length > uint64(r.Len()) {
			return nil, nil, errors.Wrap(types.ErrMalformedStream, "truncated envelope section")
		}
		compressed := make([]byte, length)
		if _, err := io.ReadFull(r, compressed); err != nil {
			return nil, nil, errors.Wrap(types.ErrMalformedStream, "truncated envelope section")
		}
		sections[i], err = decompress(compressed, algorithm)
		if err != nil {
			return nil, nil, err
		}
	}
	return sections[0], sections[1], nil
}

func compress(data []byte, algorithm CompressionAlgorithm) ([]byte, error) {
	var b bytes.Buffer
	var w io.WriteCloser

	switch algorithm {
	case CompressDeflate:
		w = gzip.NewWriter(&b)
	case CompressSnappy:
		w = snappy.NewBufferedWriter(&b)
	case CompressZstd:
		var err error
		w, err = zstd.NewWriter(&b)
		if err != nil {
			return nil, err
		}
	case CompressBrotli:
		w = brotli.NewWriterLevel(&b, brotli.BestCompression)
	case CompressLZ4:
		w = lz4.NewWriter(&b)
	default:
		return data, nil
	}

	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func decompress(data []byte, algorithm CompressionAlgorithm) ([]byte, error) {
	var r io.Reader

	switch algorithm {
	case CompressDeflate:
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(types.ErrMalformedStream, "corrupt gzip section")
		}
		defer gz.Close()
		r = gz
	case CompressSnappy:
		r = snappy.NewReader(bytes.NewReader(data))
	case CompressZstd:
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(types.ErrMalformedStream, "corrupt zstd section")
		}
		defer zr.Close()
		r = zr
	case CompressBrotli:
		r = brotli.NewReader(bytes.NewReader(data))
	case CompressLZ4:
		r = lz4.NewReader(bytes.NewReader(data))
	default:
		return data, nil
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(types.ErrMalformedStream, "corrupt compressed section")
	}
	return out, nil
}
