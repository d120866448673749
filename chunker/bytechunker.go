package chunker

import (
	"io"
)

// size of the per-Next read requests against the wrapped reader
const readChunkSize = 64 * 1024

// ByteChunker is the pull presentation: it owns an io.Reader and hands
// out fence-delimited chunks one blocking Next call at a time.
type ByteChunker struct {
	dec     *byteDecoder
	source  io.Reader
	readBuf []byte

	sourceDrained bool
}

// NewByteChunker compiles pattern and wraps source. Compilation
// failures surface here and no chunker is returned on error. The
// source is not touched until the first Next call.
func NewByteChunker(source io.Reader, pattern string) (*ByteChunker, error) {
	dec, err := newByteDecoder(pattern)
	if err != nil {
		return nil, err
	}
	return &ByteChunker{
		dec:     dec,
		source:  source,
		readBuf: make([]byte, readChunkSize),
	}, nil
}

// WithMatch reconfigures what happens to matched fence bytes, returning
// the same chunker for chaining. The default is MatchDrop. Call it
// before the first chunk has been requested: changing disposition with
// partial state already buffered is not a defined operation.
func (c *ByteChunker) WithMatch(m MatchDisposition) *ByteChunker {
	c.dec.setDisposition(m)
	return c
}

// WithAdapter wraps the chunker into a CustomChunker yielding whatever
// the adapter makes of each raw chunk.
func (c *ByteChunker) WithAdapter(a Adapter) *CustomChunker {
	return &CustomChunker{chunker: c, adapter: a}
}

// Buffered reports how many received-but-unemitted bytes the engine
// currently holds.
func (c *ByteChunker) Buffered() int { return c.dec.buffered() }

// Next blocks until the next chunk is available and returns it, with
// io.EOF signalling a cleanly exhausted stream (uniformly on every call
// thereafter). Any other error comes verbatim from the wrapped reader.
//
// A reader error leaves the engine state untouched: bytes buffered at
// that point are retained but will never form a chunk, mirroring how
// the EOF flush rule deliberately does NOT apply to errors. Callers who
// care can observe the leftover through Buffered.
func (c *ByteChunker) Next() ([]byte, error) {
	for {
		if c.sourceDrained {
			if chunk, ok := c.dec.decodeEOF(); ok {
				return chunk, nil
			}
			return nil, io.EOF
		}

		if chunk, ok := c.dec.decode(); ok {
			return chunk, nil
		}

		n, err := c.source.Read(c.readBuf)
		if n > 0 {
			c.dec.write(c.readBuf[:n])
		}
		if err == io.EOF {
			c.sourceDrained = true
		} else if err != nil {
			return nil, err
		}
	}
}

// Collect drains the chunker into a slice: purely a convenience for
// short inputs and tests. The error, when non-nil, reports what cut the
// stream short - chunks gathered up to that point are still returned.
func (c *ByteChunker) Collect() ([][]byte, error) {
	var all [][]byte
	for {
		chunk, err := c.Next()
		if err == io.EOF {
			return all, nil
		} else if err != nil {
			return all, err
		}
		all = append(all, chunk)
	}
}
