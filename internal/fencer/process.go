package fencer

import (
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/stream-utils/fencer/chunker"
	"github.com/stream-utils/fencer/internal/fencer/util"

	"github.com/ipfs/go-qringbuf"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

var preProcessTasks, postProcessTasks func(fnc *Fencer)

// ringSource presents qringbuf regions as a chunker.ByteSource. The
// chunking engine copies each region into its own accumulator before
// the next poll, so every NextRegion call reports the previous region
// fully processed and the ring never has to shuffle leftovers.
type ringSource struct {
	qrb *qringbuf.QuantizedRingBuffer
}

func (rs *ringSource) PollBytes() ([]byte, error) {

	workRegion, readErr := rs.qrb.NextRegion(0)
	if workRegion == nil {
		if readErr == nil {
			readErr = io.EOF
		}
		return nil, readErr
	} else if readErr != nil && readErr != io.EOF {
		return nil, readErr
	}

	return workRegion.Bytes(), nil
}

// ProcessReader ingests the entire stream, emitting chunks and stats
// per the active emitter config. Must be called at most once.
func (fnc *Fencer) ProcessReader(inputReader io.Reader) (err error) {

	var t0 time.Time

	defer func() {
		if postProcessTasks != nil {
			postProcessTasks(fnc)
		}
		fnc.statSummary.SysStats.ElapsedNsecs = time.Since(t0).Nanoseconds()
	}()

	defer func() {
		if err != nil {

			var buffered int
			if fnc.qrb != nil {
				fnc.qrb.Lock()
				buffered = fnc.qrb.Buffered()
				fnc.qrb.Unlock()
			}

			err = fmt.Errorf(
				"failure at byte offset %s with %s bytes buffered/unprocessed: %s",
				util.Commify64(fnc.curStreamOffset),
				util.Commify(buffered),
				err,
			)
		}
	}()

	if preProcessTasks != nil {
		preProcessTasks(fnc)
	}
	t0 = time.Now()

	switch fnc.cfg.Decompress {
	case decompressZstd:
		zstdReader, initErr := zstd.NewReader(inputReader)
		if initErr != nil {
			return initErr
		}
		defer zstdReader.Close()
		inputReader = zstdReader
	case decompressXz:
		xzReader, initErr := xz.NewReader(inputReader)
		if initErr != nil {
			return initErr
		}
		inputReader = xzReader
	}

	var initErr error
	fnc.qrb, initErr = qringbuf.NewFromReader(inputReader, qringbuf.Config{
		MinRegion:  2 * fnc.cfg.RingBufferMinRead,
		MinRead:    fnc.cfg.RingBufferMinRead,
		MaxCopy:    2 * fnc.cfg.RingBufferMinRead,
		BufferSize: fnc.cfg.RingBufferSize,
		SectorSize: fnc.cfg.RingBufferSectSize,
		Stats:      &fnc.statSummary.SysStats.Stats,
	})
	if initErr != nil {
		return initErr
	}

	splitter, initErr := chunker.NewPollChunker(
		&ringSource{qrb: fnc.qrb},
		fnc.cfg.Fence,
	)
	if initErr != nil {
		return initErr
	}
	splitter.WithMatch(fnc.dispo)

	if err := fnc.qrb.StartFill(0); err != nil {
		return err
	}

	for {
		chunk, chunkErr := splitter.PollNext()

		// the ring source blocks in read(2), so "not ready" only ever
		// means "fresh bytes landed but no complete chunk among them"
		if chunkErr == chunker.ErrNotReady {
			continue
		} else if chunkErr == io.EOF {
			return nil
		} else if chunkErr != nil {
			return chunkErr
		}

		if err := fnc.emitChunk(chunk); err != nil {
			return err
		}
	}
}

func (fnc *Fencer) emitChunk(chunk []byte) error {

	smr := &fnc.statSummary
	smr.Chunks++
	smr.Payload += int64(len(chunk))
	if len(chunk) > smr.SizeMax {
		smr.SizeMax = len(chunk)
	}
	if smr.Chunks == 1 || len(chunk) < smr.SizeMin {
		smr.SizeMin = len(chunk)
	}

	// reported offsets are into the emitted payload: under --match=drop
	// the separator bytes do not count
	if jsonlOut := fnc.cfg.emitters[emChunksJsonl]; jsonlOut != nil {

		var digestDesc string
		if fnc.digestMaker != nil {
			h := fnc.digestMaker()
			h.Write(chunk)
			digestDesc = fmt.Sprintf(`, "digest":"%s"`, hex.EncodeToString(h.Sum(nil)))
		}

		if _, err := fmt.Fprintf(
			jsonlOut,
			"{\"event\":\"chunk\",  \"offset\":%12d, \"size\":%7d%s }\n",
			fnc.curStreamOffset,
			len(chunk),
			digestDesc,
		); err != nil {
			return fmt.Errorf("emitting '%s' failed: %s", emChunksJsonl, err)
		}
	}

	if rawOut := fnc.cfg.emitters[emChunksRaw]; rawOut != nil {
		if _, err := rawOut.Write(chunk); err != nil {
			return fmt.Errorf("emitting '%s' failed: %s", emChunksRaw, err)
		}
		if _, err := rawOut.Write([]byte{'\n'}); err != nil {
			return fmt.Errorf("emitting '%s' failed: %s", emChunksRaw, err)
		}
	}

	fnc.curStreamOffset += int64(len(chunk))
	return nil
}
