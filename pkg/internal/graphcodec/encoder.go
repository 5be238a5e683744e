package graphcodec

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"reflect"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/joeydtaylor/sideband/pkg/internal/blob"
	"github.com/joeydtaylor/sideband/pkg/internal/types"
)

// Encoder writes values of the document model to a stream, consulting the
// intercept hook before encoding every sub-value. The stream header is
// written once, on the first Encode call; subsequent calls append further
// values to the same stream.
type Encoder struct {
	w           *bufio.Writer
	intercept   InterceptFunc
	wroteHeader bool
	visiting    map[containerKey]struct{}
	scratch     [binary.MaxVarintLen64]byte
}

// containerKey identifies a container on the encode path. The length is part
// of the key because distinct slices may share a backing array; a re-sliced
// view of a container is not the container itself.
type containerKey struct {
	ptr uintptr
	len int
}

// EncoderOption configures an Encoder at construction.
type EncoderOption func(*Encoder)

// EncoderWithIntercept installs the encode-side extension hook.
func EncoderWithIntercept(fn InterceptFunc) EncoderOption {
	return func(e *Encoder) {
		e.intercept = fn
	}
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer, options ...EncoderOption) *Encoder {
	e := &Encoder{
		w:        bufio.NewWriter(w),
		visiting: make(map[containerKey]struct{}),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Encode writes one value to the stream and flushes it.
func (e *Encoder) Encode(v any) error {
	if !e.wroteHeader {
		if err := e.w.WriteByte(streamVersion); err != nil {
			return err
		}
		e.wroteHeader = true
	}
	if err := e.encodeValue(v); err != nil {
		return err
	}
	return e.w.Flush()
}

func (e *Encoder) encodeValue(v any) error {
	if e.intercept != nil {
		index, intercepted, err := e.intercept(v)
		if err != nil {
			return err
		}
		if intercepted {
			if err := e.w.WriteByte(tagRef); err != nil {
				return err
			}
			return e.writeUvarint(index)
		}
	}

	if v == nil {
		return e.w.WriteByte(tagNil)
	}

	switch val := v.(type) {
	case bool:
		if val {
			return e.w.WriteByte(tagTrue)
		}
		return e.w.WriteByte(tagFalse)
	case string:
		return e.writeString(val)
	case []byte:
		return e.writeBytes(val)
	case *blob.Blob:
		return e.writeBlob(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if err := e.w.WriteByte(tagInt); err != nil {
			return err
		}
		return e.writeVarint(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if err := e.w.WriteByte(tagUint); err != nil {
			return err
		}
		return e.writeUvarint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return e.writeFloat(rv.Float())
	case reflect.Slice:
		return e.withCycleCheck(rv, func() error { return e.writeList(rv) })
	case reflect.Array:
		return e.writeList(rv)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return errors.Wrapf(types.ErrUnsupportedObject, "map keys must be strings, got %s", rv.Type().Key())
		}
		return e.withCycleCheck(rv, func() error { return e.writeMap(rv) })
	default:
		return errors.Wrapf(types.ErrUnsupportedObject, "cannot encode %T", v)
	}
}

// withCycleCheck guards container encoding against self-referential graphs:
// revisiting a container already on the encode path cannot terminate, so it
// fails instead. An empty container cannot recurse and is never tracked, so a
// zero-length view sharing a parent's backing array is not mistaken for a
// cycle. A cycle broken by extraction never reaches this check.
func (e *Encoder) withCycleCheck(rv reflect.Value, fn func() error) error {
	if key := (containerKey{ptr: rv.Pointer(), len: rv.Len()}); key.ptr != 0 && key.len > 0 {
		if _, ok := e.visiting[key]; ok {
			return errors.Wrap(types.ErrUnsupportedObject, "cyclic reference")
		}
		e.visiting[key] = struct{}{}
		defer delete(e.visiting, key)
	}
	return fn()
}

func (e *Encoder) writeList(rv reflect.Value) error {
	if err := e.w.WriteByte(tagList); err != nil {
		return err
	}
	n := rv.Len()
	if err := e.writeUvarint(uint64(n)); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := e.encodeValue(rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

// writeMap emits entries in sorted key order so that encoding is a
// deterministic function of the value.
func (e *Encoder) writeMap(rv reflect.Value) error {
	if err := e.w.WriteByte(tagMap); err != nil {
		return err
	}
	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	if err := e.writeUvarint(uint64(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		if err := e.writeStringBody(k); err != nil {
			return err
		}
		if err := e.encodeValue(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface()); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) writeBlob(b *blob.Blob) error {
	if err := e.w.WriteByte(tagBlob); err != nil {
		return err
	}
	if err := e.writeStringBody(b.Location); err != nil {
		return err
	}
	if err := e.writeUvarint(uint64(len(b.Data))); err != nil {
		return err
	}
	_, err := e.w.Write(b.Data)
	return err
}

func (e *Encoder) writeString(s string) error {
	if err := e.w.WriteByte(tagString); err != nil {
		return err
	}
	return e.writeStringBody(s)
}

// writeStringBody writes a length-prefixed string without a tag, used for
// strings that are structural (map keys, blob locations) rather than values.
func (e *Encoder) writeStringBody(s string) error {
	if err := e.writeUvarint(uint64(len(s))); err != nil {
		return err
	}
	_, err := e.w.WriteString(s)
	return err
}

func (e *Encoder) writeBytes(b []byte) error {
	if err := e.w.WriteByte(tagBytes); err != nil {
		return err
	}
	if err := e.writeUvarint(uint64(len(b))); err != nil {
		return err
	}
	_, err := e.w.Write(b)
	return err
}

func (e *Encoder) writeFloat(f float64) error {
	if err := e.w.WriteByte(tagFloat); err != nil {
		return err
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(f))
	_, err := e.w.Write(buf[:])
	return err
}

func (e *Encoder) writeUvarint(u uint64) error {
	n := binary.PutUvarint(e.scratch[:], u)
	_, err := e.w.Write(e.scratch[:n])
	return err
}

func (e *Encoder) writeVarint(i int64) error {
	n := binary.PutVarint(e.scratch[:], i)
	_, err := e.w.Write(e.scratch[:n])
	return err
}
