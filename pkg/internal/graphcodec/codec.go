// Package graphcodec implements the host graph codec for sideband: a
// self-describing binary encoding of a document value model (nil, booleans,
// integers, floats, strings, byte slices, lists, string-keyed maps, and
// opaque blob payloads) with two extension hooks. The encode hook may
// intercept any sub-value before its default encoding and substitute a
// reference marker carrying an integer index; the decode hook resolves each
// marker back into an arbitrary value. Markers are a first-class node kind,
// never confusable with ordinary integers in the stream.
package graphcodec

// streamVersion is the first byte of every encoded stream.
const streamVersion byte = 0x01

// Node kind tags. The tag byte precedes every value in the stream.
const (
	tagNil    byte = 0x00
	tagFalse  byte = 0x01
	tagTrue   byte = 0x02
	tagInt    byte = 0x03 // signed varint; all signed widths normalize to int64
	tagUint   byte = 0x04 // unsigned varint; all unsigned widths normalize to uint64
	tagFloat  byte = 0x05 // IEEE 754 bits, big endian; float32 widens to float64
	tagString byte = 0x06 // uvarint byte length, then UTF-8 bytes
	tagBytes  byte = 0x07 // uvarint byte length, then raw bytes
	tagList   byte = 0x08 // uvarint element count, then elements
	tagMap    byte = 0x09 // uvarint pair count, then sorted key/value pairs
	tagBlob   byte = 0x0a // location string, then uvarint length and payload
	tagRef    byte = 0x0b // uvarint extraction index
)

// maxLen bounds any single length prefix the decoder will honor. Anything
// larger cannot be a well-formed stream from this encoder.
const maxLen = 1 << 32

// InterceptFunc is the encode-side extension hook. It is consulted for every
// sub-value before default encoding; returning intercepted=true makes the
// encoder emit a reference marker carrying index and skip the value's
// children entirely.
type InterceptFunc func(v any) (index uint64, intercepted bool, err error)

// ResolveFunc is the decode-side extension hook, invoked once per reference
// marker with the embedded index. The returned value is threaded into the
// reconstructed graph as-is.
type ResolveFunc func(index uint64) (any, error)
