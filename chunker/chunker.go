// Package chunker segments an unbounded byte stream into chunks
// delimited by a regular expression: the "fence". It is the moral
// opposite of a tokenizer working on a pre-loaded buffer - input
// arrives in arbitrary-sized pieces, chunks emerge as soon as they are
// unambiguously complete, and the amount of memory held at any point is
// bounded by the longest fence-free run in the stream.
//
// Two presentations of the same engine are provided. ByteChunker pulls
// from an io.Reader, blocking in Next until a chunk is available.
// PollChunker is driven by an external scheduler against a non-blocking
// ByteSource, performing a bounded amount of work per PollNext call.
// Either can be wrapped in a CustomChunker to transform raw chunks into
// arbitrary items on the way out.
package chunker

import (
	"errors"
	"fmt"
)

// MatchDisposition selects what happens to the fence bytes themselves
// whenever a match cuts a chunk out of the stream.
type MatchDisposition int

const (
	// MatchDrop discards the matched bytes: they appear in no chunk.
	MatchDrop = MatchDisposition(iota)

	// MatchAppend keeps the matched bytes at the tail of the chunk
	// they terminate.
	MatchAppend

	// MatchPrepend keeps the matched bytes at the head of the chunk
	// that follows them.
	MatchPrepend
)

func (m MatchDisposition) String() string {
	switch m {
	case MatchDrop:
		return "drop"
	case MatchAppend:
		return "append"
	case MatchPrepend:
		return "prepend"
	default:
		return fmt.Sprintf("MatchDisposition(%d)", int(m))
	}
}

// ParseMatchDisposition maps the CLI/config spellings onto the enum.
func ParseMatchDisposition(s string) (MatchDisposition, error) {
	switch s {
	case "drop":
		return MatchDrop, nil
	case "append":
		return MatchAppend, nil
	case "prepend":
		return MatchPrepend, nil
	default:
		return 0, fmt.Errorf("unknown match disposition '%s': must be one of 'drop', 'append' or 'prepend'", s)
	}
}

// ErrNotReady is returned by a ByteSource, and in turn by
// PollChunker.PollNext, when no input is available right now but the
// stream has not ended: re-poll later.
var ErrNotReady = errors.New("chunker: byte source not ready")
