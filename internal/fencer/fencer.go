package fencer

import (
	"hash"

	"github.com/stream-utils/fencer/chunker"
	"github.com/ipfs/go-qringbuf"
)

// Fencer is the stream-fencer CLI engine: one instance per process,
// configured once from argv, fed exactly one stdin stream.
type Fencer struct {
	cfg         config
	statSummary statSummary

	dispo       chunker.MatchDisposition
	digestMaker func() hash.Hash // nil when --hash=none

	qrb *qringbuf.QuantizedRingBuffer

	curStreamOffset int64
}

func (fnc *Fencer) Destroy() {
	fnc.qrb = nil
}
