package types

import "github.com/cockroachdb/errors"

// Error kinds surfaced by the flatten/unflatten pipeline. Callers match them
// with errors.Is; the library wraps them with positional detail and never
// recovers from them internally.
var (
	// ErrUnsupportedObject reports a value that was neither accepted for
	// extraction nor representable by the graph codec's default rules.
	ErrUnsupportedObject = errors.New("unsupported object")

	// ErrMalformedStream reports bytes that are not valid codec output, or a
	// reference marker with no resolver to answer it.
	ErrMalformedStream = errors.New("malformed stream")

	// ErrTruncatedReplacements reports a replacement source that was exhausted
	// before a demanded extraction index could be satisfied.
	ErrTruncatedReplacements = errors.New("replacement source exhausted")

	// ErrOutOfOrderReference reports a reference demand pattern that cannot
	// come from a matching flatten call: under strict ordering, the first
	// demand for an index must arrive while the resolution cache holds exactly
	// that many values. It indicates a mismatched encode/decode pairing.
	ErrOutOfOrderReference = errors.New("out-of-order reference")
)
