package graphcodec

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/joeydtaylor/sideband/pkg/internal/blob"
	"github.com/joeydtaylor/sideband/pkg/internal/types"
)

// Decoder reads values of the document model from a stream, invoking the
// resolve hook for every reference marker. Decode may be called repeatedly to
// read consecutive values; it returns io.EOF once the stream is cleanly
// exhausted at a value boundary.
type Decoder struct {
	r            *bufio.Reader
	resolve      ResolveFunc
	materializer blob.Materializer
	readHeader   bool
}

// DecoderOption configures a Decoder at construction.
type DecoderOption func(*Decoder)

// DecoderWithResolve installs the decode-side extension hook for reference
// markers. A stream containing markers is malformed without one.
func DecoderWithResolve(fn ResolveFunc) DecoderOption {
	return func(d *Decoder) {
		d.resolve = fn
	}
}

// DecoderWithMaterializer overrides payload materialization for this decoder
// instance only, bypassing the ambient policy and its interpretation layers.
func DecoderWithMaterializer(m blob.Materializer) DecoderOption {
	return func(d *Decoder) {
		d.materializer = m
	}
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader, options ...DecoderOption) *Decoder {
	d := &Decoder{r: bufio.NewReader(r)}
	for _, option := range options {
		option(d)
	}
	return d
}

// Decode reads the next value from the stream.
func (d *Decoder) Decode() (any, error) {
	if !d.readHeader {
		version, err := d.r.ReadByte()
		if err != nil {
			return nil, errors.Wrap(types.ErrMalformedStream, "missing stream header")
		}
		if version != streamVersion {
			return nil, errors.Wrapf(types.ErrMalformedStream, "unsupported stream version 0x%02x", version)
		}
		d.readHeader = true
	}
	tag, err := d.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			// Clean end of stream at a value boundary.
			return nil, io.EOF
		}
		return nil, errors.Wrap(types.ErrMalformedStream, "reading value tag")
	}
	return d.decodeTagged(tag)
}

func (d *Decoder) decodeValue() (any, error) {
	tag, err := d.r.ReadByte()
	if err != nil {
		return nil, errors.Wrap(types.ErrMalformedStream, "truncated value")
	}
	return d.decodeTagged(tag)
}

func (d *Decoder) decodeTagged(tag byte) (any, error) {
	switch tag {
	case tagNil:
		return nil, nil
	case tagFalse:
		return false, nil
	case tagTrue:
		return true, nil
	case tagInt:
		i, err := binary.ReadVarint(d.r)
		if err != nil {
			return nil, errors.Wrap(types.ErrMalformedStream, "truncated integer")
		}
		return i, nil
	case tagUint:
		u, err := d.readUvarint()
		if err != nil {
			return nil, err
		}
		return u, nil
	case tagFloat:
		var buf [8]byte
		if _, err := io.ReadFull(d.r, buf[:]); err != nil {
			return nil, errors.Wrap(types.ErrMalformedStream, "truncated float")
		}
		return math.Float64frombits(binary.BigEndian.Uint64(buf[:])), nil
	case tagString:
		s, err := d.readStringBody()
		if err != nil {
			return nil, err
		}
		return s, nil
	case tagBytes:
		b, err := d.readLengthPrefixed()
		if err != nil {
			return nil, err
		}
		return b, nil
	case tagList:
		return d.readList()
	case tagMap:
		return d.readMap()
	case tagBlob:
		return d.readBlob()
	case tagRef:
		index, err := d.readUvarint()
		if err != nil {
			return nil, err
		}
		if d.resolve == nil {
			return nil, errors.Wrapf(types.ErrMalformedStream, "reference marker %d with no resolver installed", index)
		}
		return d.resolve(index)
	default:
		return nil, errors.Wrapf(types.ErrMalformedStream, "unknown node tag 0x%02x", tag)
	}
}

func (d *Decoder) readList() (any, error) {
	n, err := d.readCount()
	if err != nil {
		return nil, err
	}
	out := make([]any, n)
	for i := range out {
		v, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (d *Decoder) readMap() (any, error) {
	n, err := d.readCount()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, n)
	for i := 0; i < n; i++ {
		k, err := d.readStringBody()
		if err != nil {
			return nil, err
		}
		v, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func (d *Decoder) readBlob() (any, error) {
	location, err := d.readStringBody()
	if err != nil {
		return nil, err
	}
	data, err := d.readLengthPrefixed()
	if err != nil {
		return nil, err
	}
	if d.materializer != nil {
		return d.materializer.Materialize(location, data)
	}
	return blob.Materialize(location, data)
}

func (d *Decoder) readStringBody() (string, error) {
	b, err := d.readLengthPrefixed()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *Decoder) readLengthPrefixed() ([]byte, error) {
	n, err := d.readCount()
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		return nil, errors.Wrap(types.ErrMalformedStream, "truncated payload")
	}
	return b, nil
}

func (d *Decoder) readCount() (int, error) {
	u, err := d.readUvarint()
	if err != nil {
		return 0, err
	}
	// The second bound keeps the int conversion safe on 32-bit platforms.
	if u > maxLen || u > math.MaxInt-1 {
		return 0, errors.Wrapf(types.ErrMalformedStream, "implausible length %d", u)
	}
	return int(u), nil
}

func (d *Decoder) readUvarint() (uint64, error) {
	u, err := binary.ReadUvarint(d.r)
	if err != nil {
		return 0, errors.Wrap(types.ErrMalformedStream, "truncated varint")
	}
	return u, nil
}
