package chunker

import (
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/stream-utils/fencer/internal/fencer/hasher"
)

// ChunkDigest is what a DigestAdapter emits per chunk.
type ChunkDigest struct {
	Size   int
	Digest string
}

// DigestAdapter hashes every successful chunk with a fixed algorithm,
// emitting ChunkDigest items and keeping running totals that remain
// available after the stream is done (retrieve the adapter via
// Innards or Adapter).
type DigestAdapter struct {
	hasherMaker func() hash.Hash

	Chunks  int64
	Payload int64
}

// NewDigestAdapter looks alg up among hasher.AvailableHashers.
func NewDigestAdapter(alg string) (*DigestAdapter, error) {
	maker, exists := hasher.AvailableHashers[alg]
	if !exists || maker == nil {
		return nil, fmt.Errorf(
			"unknown hash algorithm '%s': available ones are %s",
			alg,
			hasher.AvailableNames(),
		)
	}
	return &DigestAdapter{hasherMaker: maker}, nil
}

func (a *DigestAdapter) Adapt(chunk []byte, err error) (interface{}, bool) {
	if err != nil {
		return nil, false
	}

	h := a.hasherMaker()
	h.Write(chunk)

	a.Chunks++
	a.Payload += int64(len(chunk))

	return ChunkDigest{
		Size:   len(chunk),
		Digest: hex.EncodeToString(h.Sum(nil)),
	}, true
}
