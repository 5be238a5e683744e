package flatten

import (
	"bytes"
	"context"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/joeydtaylor/sideband/pkg/internal/blob"
	"github.com/joeydtaylor/sideband/pkg/internal/graphcodec"
	"github.com/joeydtaylor/sideband/pkg/internal/types"
)

// flattenRun carries the per-call state of one Flatten: the accepted objects
// in first-acceptance order and the identity map that makes index assignment
// stable across repeated encounters of the same instance.
type flattenRun struct {
	f     *Flattener
	saved []any
	seen  map[identityKey]verdict
}

type verdict struct {
	accepted bool
	index    uint64
}

// intercept is the codec hook. The predicate is consulted once per distinct
// instance; re-encountering an accepted instance reuses its index without
// another predicate call, so the same object carries the same marker at every
// position it appears.
func (run *flattenRun) intercept(v any) (uint64, bool, error) {
	if run.f.predicate == nil {
		return 0, false, nil
	}
	key, keyed := identityOf(v)
	if keyed {
		if d, ok := run.seen[key]; ok {
			return d.index, d.accepted, nil
		}
	}
	accepted := run.f.predicate(v)
	if !accepted {
		if keyed {
			run.seen[key] = verdict{accepted: false}
		}
		return 0, false, nil
	}
	index := uint64(len(run.saved))
	run.saved = append(run.saved, v)
	if keyed {
		run.seen[key] = verdict{accepted: true, index: index}
	}
	for _, s := range run.f.sensors {
		if s != nil {
			s.OnExtract(index, v)
		}
	}
	return index, true, nil
}

// Flatten serializes graph, diverting predicate-accepted sub-objects into the
// returned extracted sequence and substituting reference markers for them in
// the returned bytes. Neither return value is meaningful without the other.
func (f *Flattener) Flatten(ctx context.Context, graph any) ([]any, []byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	run := &flattenRun{
		f:     f,
		saved: make([]any, 0),
		seen:  make(map[identityKey]verdict),
	}
	var buf bytes.Buffer
	enc := graphcodec.NewEncoder(&buf, graphcodec.EncoderWithIntercept(run.intercept))
	if err := enc.Encode(graph); err != nil {
		f.NotifyLoggers(types.ErrorLevel, "%s => level: ERROR, result: FAILURE, event: Flatten, error: %v => Flatten failed", f.componentMetadata, err)
		return nil, nil, err
	}

	f.NotifyLoggers(types.DebugLevel, "%s => level: DEBUG, result: SUCCESS, event: Flatten, extracted: %d, bytes: %d => Flatten complete", f.componentMetadata, len(run.saved), buf.Len())
	return run.saved, buf.Bytes(), nil
}

// resolutionCache satisfies reference markers from a ValueSource with
// pull-ahead buffering: demanding index i pulls until the cache holds i+1
// values, so pulls are monotonic, bounded by the highest demanded index, and
// never repeated for a cached index.
type resolutionCache struct {
	ctx    context.Context
	source types.ValueSource
	u      *Unflattener
	values []any
}

func (c *resolutionCache) resolve(index uint64) (any, error) {
	if index < uint64(len(c.values)) {
		c.notifyResolve(index)
		return c.values[index], nil
	}
	if c.u.strict && index != uint64(len(c.values)) {
		return nil, errors.Wrapf(types.ErrOutOfOrderReference, "index %d demanded while only %d values resolved", index, len(c.values))
	}
	for uint64(len(c.values)) <= index {
		if err := c.ctx.Err(); err != nil {
			return nil, err
		}
		v, err := c.source.Next(c.ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.Wrapf(types.ErrTruncatedReplacements, "need index %d, source ended after %d values", index, len(c.values))
			}
			return nil, err
		}
		c.values = append(c.values, v)
		for _, s := range c.u.sensors {
			if s != nil {
				s.OnSourcePull(uint64(len(c.values) - 1))
			}
		}
	}
	c.notifyResolve(index)
	return c.values[index], nil
}

func (c *resolutionCache) notifyResolve(index uint64) {
	for _, s := range c.u.sensors {
		if s != nil {
			s.OnResolve(index)
		}
	}
}

// exhaustedSource stands in when the caller supplies no source: any demand
// surfaces as a truncated-replacements error.
type exhaustedSource struct{}

func (exhaustedSource) Next(context.Context) (any, error) { return nil, io.EOF }

// Unflatten reconstructs the graph serialized into data, resolving every
// reference marker against source. The materialization override is installed
// before any byte is decoded and restored on every exit path, including error
// returns, panics, and cancellation.
func (u *Unflattener) Unflatten(ctx context.Context, data []byte, source types.ValueSource) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if source == nil {
		source = exhaustedSource{}
	}

	var materializer blob.Materializer
	switch {
	case u.materializer != nil:
		materializer = u.materializer
	case u.neutral:
		materializer = blob.NeutralMaterializer{}
	}

	decoderOptions := make([]graphcodec.DecoderOption, 0, 2)
	cache := &resolutionCache{ctx: ctx, source: source, u: u, values: make([]any, 0)}
	decoderOptions = append(decoderOptions, graphcodec.DecoderWithResolve(cache.resolve))
	if materializer != nil {
		restore := blob.PushScope(blob.Scope{Materializer: materializer, SuppressLayers: true})
		defer restore()
		decoderOptions = append(decoderOptions, graphcodec.DecoderWithMaterializer(materializer))
	}

	dec := graphcodec.NewDecoder(bytes.NewReader(data), decoderOptions...)
	graph, err := dec.Decode()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.Wrap(types.ErrMalformedStream, "empty stream")
		}
		u.NotifyLoggers(types.ErrorLevel, "%s => level: ERROR, result: FAILURE, event: Unflatten, error: %v => Unflatten failed", u.componentMetadata, err)
		return nil, err
	}

	u.NotifyLoggers(types.DebugLevel, "%s => level: DEBUG, result: SUCCESS, event: Unflatten, pulls: %d, bytes: %d => Unflatten complete", u.componentMetadata, len(cache.values), len(data))
	return graph, nil
}
