package chunker

import (
	"io"
)

// Adapter transforms raw chunk results into items of the caller's
// choosing. It receives exactly what the wrapped chunker produced - a
// chunk on success, or the propagated source error - and decides what,
// if anything, comes out: emit=false skips the result entirely and the
// wrapping chunker immediately pulls the next one.
//
// An adapter that declines an errored result does not suppress the
// error: the wrapping chunker surfaces it to the caller instead of
// spinning on a failed source.
type Adapter interface {
	Adapt(chunk []byte, err error) (item interface{}, emit bool)
}

// AdapterFunc adapts a bare function into an Adapter.
type AdapterFunc func(chunk []byte, err error) (interface{}, bool)

func (f AdapterFunc) Adapt(chunk []byte, err error) (interface{}, bool) {
	return f(chunk, err)
}

// CustomChunker couples a ByteChunker with an Adapter. It holds no
// buffering of its own - every byte lives in the wrapped engine until
// the moment a chunk is cut and handed to the adapter.
type CustomChunker struct {
	chunker *ByteChunker
	adapter Adapter
}

// Adapter returns the wrapped adapter, e.g. to inspect accumulated
// state mid-stream.
func (c *CustomChunker) Adapter() Adapter { return c.adapter }

// SetAdapter swaps the adapter; takes effect from the next chunk on.
func (c *CustomChunker) SetAdapter(a Adapter) { c.adapter = a }

// Innards decomposes the CustomChunker into its parts, typically after
// a full scan, to get at whatever state the adapter gathered.
func (c *CustomChunker) Innards() (*ByteChunker, Adapter) {
	return c.chunker, c.adapter
}

// Next yields the next adapter-emitted item. Skipped results never
// surface: the loop pulls raw chunks until the adapter emits, the
// stream ends (io.EOF), or an error goes unclaimed.
func (c *CustomChunker) Next() (interface{}, error) {
	for {
		chunk, err := c.chunker.Next()
		if err == io.EOF {
			return nil, io.EOF
		}

		if item, emit := c.adapter.Adapt(chunk, err); emit {
			return item, nil
		}

		if err != nil {
			return nil, err
		}
	}
}

// PollCustomChunker is the adapter composition over the cooperative
// presentation. ErrNotReady passes straight through to the scheduler
// and is never shown to the adapter.
type PollCustomChunker struct {
	chunker *PollChunker
	adapter Adapter
}

func (c *PollCustomChunker) Adapter() Adapter     { return c.adapter }
func (c *PollCustomChunker) SetAdapter(a Adapter) { c.adapter = a }

func (c *PollCustomChunker) Innards() (*PollChunker, Adapter) {
	return c.chunker, c.adapter
}

// PollNext performs one bounded poll step. A skipped result reports
// ErrNotReady rather than looping: the next poll continues where this
// one left off, preserving the one-poll-per-invocation contract.
func (c *PollCustomChunker) PollNext() (interface{}, error) {
	chunk, err := c.chunker.PollNext()
	if err == io.EOF || err == ErrNotReady {
		return nil, err
	}

	if item, emit := c.adapter.Adapt(chunk, err); emit {
		return item, nil
	}

	if err != nil {
		return nil, err
	}
	return nil, ErrNotReady
}
