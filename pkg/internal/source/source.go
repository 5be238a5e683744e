// Package source provides ValueSource implementations for the decode side of
// the out-of-band channel. Every source is pull-based, ordered, and
// single-pass; none supports rewinding or random access, matching what the
// resolution cache requires.
package source

import (
	"context"
	"io"
)

// SliceSource yields the elements of an in-memory sequence, typically the
// extracted sequence returned by a matching Flatten call.
type SliceSource struct {
	values []any
	pos    int
}

// NewSliceSource returns a source over values. The slice is not copied.
func NewSliceSource(values []any) *SliceSource {
	return &SliceSource{values: values}
}

func (s *SliceSource) Next(ctx context.Context) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.values) {
		return nil, io.EOF
	}
	v := s.values[s.pos]
	s.pos++
	return v, nil
}

// ChanSource yields values arriving over a channel, ending cleanly when the
// channel closes. Next blocks until a value arrives or ctx is done.
type ChanSource struct {
	ch <-chan any
}

// NewChanSource returns a source reading from ch.
func NewChanSource(ch <-chan any) *ChanSource {
	return &ChanSource{ch: ch}
}

func (s *ChanSource) Next(ctx context.Context) (any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case v, ok := <-s.ch:
		if !ok {
			return nil, io.EOF
		}
		return v, nil
	}
}

// FuncSource adapts a pull function, e.g. a fetch-by-index from a remote
// store. The function must return io.EOF once exhausted.
type FuncSource struct {
	fn func(ctx context.Context) (any, error)
}

// NewFuncSource returns a source backed by fn.
func NewFuncSource(fn func(ctx context.Context) (any, error)) *FuncSource {
	return &FuncSource{fn: fn}
}

func (s *FuncSource) Next(ctx context.Context) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.fn(ctx)
}
