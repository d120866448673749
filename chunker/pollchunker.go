package chunker

import (
	"io"
)

// ByteSource is the capability a PollChunker consumes: attempt to
// produce the next batch of bytes without blocking. The contract is
//   - (p, nil): p holds freshly produced bytes (possibly none)
//   - (nil, ErrNotReady): nothing available yet, re-poll later
//   - (nil, io.EOF): the source is exhausted for good
//   - (nil, err): an actual source failure, propagated verbatim
//
// The chunker copies p before returning, so the source may reuse its
// backing buffer on the very next call.
type ByteSource interface {
	PollBytes() ([]byte, error)
}

// PollChunker is the cooperative presentation: identical chunking
// semantics to ByteChunker, but driven by an external scheduler that
// keeps calling PollNext. Each call performs a bounded amount of work -
// at most one source poll plus the decode attempts around it - and
// never spins waiting for input.
type PollChunker struct {
	dec    *byteDecoder
	source ByteSource

	sourceDrained bool
}

// NewPollChunker compiles pattern and wraps source; the source is not
// polled until the first PollNext.
func NewPollChunker(source ByteSource, pattern string) (*PollChunker, error) {
	dec, err := newByteDecoder(pattern)
	if err != nil {
		return nil, err
	}
	return &PollChunker{dec: dec, source: source}, nil
}

// WithMatch is the builder analog of ByteChunker.WithMatch, with the
// same call-before-first-chunk caveat.
func (c *PollChunker) WithMatch(m MatchDisposition) *PollChunker {
	c.dec.setDisposition(m)
	return c
}

// WithAdapter wraps the chunker into a PollCustomChunker.
func (c *PollChunker) WithAdapter(a Adapter) *PollCustomChunker {
	return &PollCustomChunker{chunker: c, adapter: a}
}

// Buffered reports how many received-but-unemitted bytes the engine
// currently holds.
func (c *PollChunker) Buffered() int { return c.dec.buffered() }

// PollNext returns the next chunk if one can be cut right now.
// ErrNotReady means "nothing yet, re-poll"; io.EOF means the stream is
// finished and every subsequent call will keep saying so. Source
// failures propagate verbatim with the same buffered-bytes caveat as
// ByteChunker.Next.
func (c *PollChunker) PollNext() ([]byte, error) {
	if c.sourceDrained {
		if chunk, ok := c.dec.decodeEOF(); ok {
			return chunk, nil
		}
		return nil, io.EOF
	}

	if chunk, ok := c.dec.decode(); ok {
		return chunk, nil
	}

	p, err := c.source.PollBytes()
	if err == ErrNotReady {
		return nil, ErrNotReady
	} else if err == io.EOF {
		c.sourceDrained = true
		if chunk, ok := c.dec.decodeEOF(); ok {
			return chunk, nil
		}
		return nil, io.EOF
	} else if err != nil {
		return nil, err
	}

	c.dec.write(p)
	if chunk, ok := c.dec.decode(); ok {
		return chunk, nil
	}
	return nil, ErrNotReady
}
