package chunker

import (
	"log"

	"github.com/stream-utils/fencer/internal/constants"
	"github.com/stream-utils/fencer/internal/fencer/matcher"
)

// byteDecoder is the entire state machine: an accumulator of
// not-yet-emitted bytes plus the offset at which the next fence search
// may begin. Both presentations of the package drive the exact same
// decoder, which is what keeps their chunk boundaries bit-identical.
type byteDecoder struct {
	fence      matcher.Pattern
	matchDispo MatchDisposition
	scanOffset int
	buf        []byte
}

func newByteDecoder(pattern string) (*byteDecoder, error) {
	fence, err := matcher.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &byteDecoder{fence: fence}, nil
}

func (d *byteDecoder) setDisposition(m MatchDisposition) {
	d.matchDispo = m

	// drop/append physically remove everything up to the match end,
	// making 0 the only valid resume point: prepend keeps the match
	// bytes buffered and corrects the offset itself on its next cut
	if m == MatchDrop || m == MatchAppend {
		d.scanOffset = 0
	}
}

// write appends freshly arrived bytes to the accumulator tail. The
// decoder owns its copy: callers are free to reuse p immediately.
func (d *byteDecoder) write(p []byte) {
	d.buf = append(d.buf, p...)
}

func (d *byteDecoder) buffered() int { return len(d.buf) }

// decode cuts the next chunk off the accumulator head, or reports that
// more input is needed. A match ending flush with the buffered tail is
// NOT acted upon: a greedy fence could still grow when the next write
// lands, and honoring it early would make chunk boundaries depend on
// read granularity. decodeEOF is where such a match becomes final.
func (d *byteDecoder) decode() ([]byte, bool) {
	return d.scan(false)
}

// decodeEOF implements the end-of-input flush: a terminal fence still
// cuts normally, anything left after that is emitted as one final
// unterminated chunk, and only an empty accumulator means done. Safe to
// call repeatedly until it reports false.
func (d *byteDecoder) decodeEOF() ([]byte, bool) {
	if chunk, ok := d.scan(true); ok {
		return chunk, true
	}
	if len(d.buf) == 0 {
		return nil, false
	}
	chunk := d.buf
	d.buf = nil
	d.scanOffset = 0
	return chunk, true
}

func (d *byteDecoder) scan(atEOF bool) ([]byte, bool) {
	if constants.PerformSanityChecks && d.scanOffset > len(d.buf) {
		log.Panicf(
			"scan offset %d points past the %d buffered bytes",
			d.scanOffset,
			len(d.buf),
		)
	}

	// a zero-width match consumes nothing and therefore can never
	// advance the stream - treat it as no fence at all
	start, end, found := d.fence.FindAt(d.buf, d.scanOffset)
	if !found ||
		end == start ||
		(!atEOF && end == len(d.buf)) {
		return nil, false
	}

	var chunk []byte
	switch d.matchDispo {
	case MatchDrop:
		chunk = d.splitTo(start)
		d.advance(end - start)
		d.scanOffset = 0
	case MatchAppend:
		chunk = d.splitTo(end)
		d.scanOffset = 0
	case MatchPrepend:
		chunk = d.splitTo(start)
		d.scanOffset = end - start
	}

	return chunk, true
}

// splitTo removes the first n accumulated bytes and returns them as a
// freshly owned slice - the emitted chunk must survive any amount of
// further accumulator churn.
func (d *byteDecoder) splitTo(n int) []byte {
	chunk := make([]byte, n)
	copy(chunk, d.buf)
	d.advance(n)
	return chunk
}

func (d *byteDecoder) advance(n int) {
	d.buf = d.buf[:copy(d.buf, d.buf[n:])]
}
