// Package blob models opaque binary payloads carried through the graph codec
// wholesale, together with the policy for materializing them on decode. A
// payload remembers the resource location it was captured from (for example a
// device buffer), and a Materializer decides where and how the bytes come
// back to life. Ambient interpretation layers may transform freshly
// materialized payloads; a scoped override can force a neutral location and
// suppress those layers for the duration of a decode call.
package blob

// DefaultLocation is the neutral resource location payloads materialize on
// when nothing more specific is requested.
const DefaultLocation = "host"

// Blob is an opaque binary payload. The codec never inspects Data; Location
// records where the payload was captured from or materialized to.
type Blob struct {
	Location string
	Data     []byte
}

// Materializer turns the captured location and raw bytes of a decoded payload
// into a live Blob.
type Materializer interface {
	Materialize(location string, data []byte) (*Blob, error)
}

// MaterializerFunc adapts a plain function to the Materializer interface.
type MaterializerFunc func(location string, data []byte) (*Blob, error)

func (f MaterializerFunc) Materialize(location string, data []byte) (*Blob, error) {
	return f(location, data)
}

// HeapMaterializer materializes payloads in process memory, preserving the
// captured location. It is the process-wide default.
type HeapMaterializer struct{}

func (HeapMaterializer) Materialize(location string, data []byte) (*Blob, error) {
	if location == "" {
		location = DefaultLocation
	}
	return &Blob{Location: location, Data: data}, nil
}

// NeutralMaterializer materializes payloads in process memory on the neutral
// location, regardless of where they were captured. Unflatten installs it for
// the duration of each call unless configured otherwise.
type NeutralMaterializer struct{}

func (NeutralMaterializer) Materialize(_ string, data []byte) (*Blob, error) {
	return &Blob{Location: DefaultLocation, Data: data}, nil
}
