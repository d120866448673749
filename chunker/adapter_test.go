package chunker

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"reflect"
	"testing"
)

func collectItems(t *testing.T, c *CustomChunker) (items []interface{}) {
	t.Helper()
	for {
		item, err := c.Next()
		if err == io.EOF {
			return
		} else if err != nil {
			t.Fatalf("unexpected mid-stream error: %s", err)
		}
		items = append(items, item)
	}
}

func TestStringAdapter(t *testing.T) {
	base, err := NewByteChunker(bytes.NewReader([]byte(sentence)), sentenceFence)
	if err != nil {
		t.Fatalf("chunker construction failed: %s", err)
	}

	items := collectItems(t, base.WithAdapter(&StringAdapter{}))

	expected := sentenceExpectations[MatchDrop]
	if len(items) != len(expected) {
		t.Fatalf("produced %d items instead of %d: %v", len(items), len(expected), items)
	}
	for i, item := range items {
		if s, isString := item.(string); !isString || s != expected[i] {
			t.Errorf("item %d: expected %q, got %#v", i, expected[i], item)
		}
	}
}

func TestStringAdapterUtf8Policies(t *testing.T) {
	input := []byte("\xffa,\x80b,ok")

	{
		base, err := NewByteChunker(bytes.NewReader(input), "[,]+")
		if err != nil {
			t.Fatalf("chunker construction failed: %s", err)
		}
		items := collectItems(t, base.WithAdapter(&StringAdapter{Policy: Utf8Replace}))
		expected := []interface{}{"�a", "�b", "ok"}
		if !reflect.DeepEqual(items, expected) {
			t.Errorf("under the replacement policy expected %q, got %q", expected, items)
		}
	}

	{
		base, err := NewByteChunker(bytes.NewReader(input), "[,]+")
		if err != nil {
			t.Fatalf("chunker construction failed: %s", err)
		}

		adapter := &StringAdapter{Policy: Utf8Skip}
		items := collectItems(t, base.WithAdapter(adapter))

		if !reflect.DeepEqual(items, []interface{}{"ok"}) {
			t.Errorf("under the skip policy expected only 'ok', got %q", items)
		}
		if adapter.SkippedChunks != 2 {
			t.Errorf("adapter counted %d skipped chunks instead of 2", adapter.SkippedChunks)
		}
	}
}

func TestAdapterSkippingNeverLeaksGaps(t *testing.T) {
	// drop adjacent separators and the engine dutifully produces empty
	// chunks: an adapter skipping them must yield a gapless item stream
	base, err := NewByteChunker(bytes.NewReader([]byte(",a,,b,,,c")), "[,]")
	if err != nil {
		t.Fatalf("chunker construction failed: %s", err)
	}

	var skipped int
	skipEmpties := AdapterFunc(func(chunk []byte, err error) (interface{}, bool) {
		if err != nil || len(chunk) == 0 {
			skipped++
			return nil, false
		}
		return string(chunk), true
	})

	items := collectItems(t, base.WithAdapter(skipEmpties))

	if !reflect.DeepEqual(items, []interface{}{"a", "b", "c"}) {
		t.Errorf("expected a gapless [a b c], got %q", items)
	}
	if skipped != 4 {
		t.Errorf("expected 4 skipped empties, counted %d", skipped)
	}
}

func TestDigestAdapter(t *testing.T) {
	if _, err := NewDigestAdapter("no-such-algorithm"); err == nil {
		t.Error("an unknown algorithm name must fail adapter construction")
	}

	adapter, err := NewDigestAdapter("sha2-256")
	if err != nil {
		t.Fatalf("adapter construction failed: %s", err)
	}

	base, err := NewByteChunker(bytes.NewReader([]byte(sentence)), sentenceFence)
	if err != nil {
		t.Fatalf("chunker construction failed: %s", err)
	}

	custom := base.WithAdapter(adapter)
	items := collectItems(t, custom)

	expected := sentenceExpectations[MatchDrop]
	if len(items) != len(expected) {
		t.Fatalf("produced %d items instead of %d", len(items), len(expected))
	}

	var payload int64
	for i, item := range items {
		digest, isDigest := item.(ChunkDigest)
		if !isDigest {
			t.Fatalf("item %d is a %T, not a ChunkDigest", i, item)
		}

		refSum := sha256.Sum256([]byte(expected[i]))
		if digest.Size != len(expected[i]) ||
			digest.Digest != hex.EncodeToString(refSum[:]) {
			t.Errorf("item %d: digest mismatch for chunk %q", i, expected[i])
		}
		payload += int64(digest.Size)
	}

	// the adapter state must remain inspectable after decomposition
	_, innerAdapter := custom.Innards()
	state, isDigestAdapter := innerAdapter.(*DigestAdapter)
	if !isDigestAdapter {
		t.Fatalf("decomposition returned a %T instead of the original adapter", innerAdapter)
	}
	if state.Chunks != int64(len(expected)) || state.Payload != payload {
		t.Errorf(
			"adapter totals (%d chunks / %d bytes) disagree with the observed %d chunks / %d bytes",
			state.Chunks, state.Payload,
			len(expected), payload,
		)
	}
}

func TestAdapterErrorPassthrough(t *testing.T) {
	boom := fmt.Errorf("injected source failure")

	base, err := NewByteChunker(&faultyReader{data: []byte("alpha, bet"), err: boom}, sentenceFence)
	if err != nil {
		t.Fatalf("chunker construction failed: %s", err)
	}

	// an adapter that declines errored results must not swallow them
	custom := base.WithAdapter(&StringAdapter{})

	if item, err := custom.Next(); err != nil || item != "alpha" {
		t.Fatalf("expected ('alpha', nil) before the fault, got (%#v, %v)", item, err)
	}
	if _, err := custom.Next(); err != boom {
		t.Errorf("declined source failure must still surface, got: %v", err)
	}
}

func TestPollCustomChunker(t *testing.T) {
	src := &scriptedSource{script: []scriptStep{
		{data: []byte("one, ")},
		{err: ErrNotReady},
		{data: []byte("two")},
	}}

	c, err := NewPollChunker(src, sentenceFence)
	if err != nil {
		t.Fatalf("chunker construction failed: %s", err)
	}

	custom := c.WithAdapter(&StringAdapter{})

	var items []interface{}
	for {
		item, err := custom.PollNext()
		if err == ErrNotReady {
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("unexpected poll error: %s", err)
		}
		items = append(items, item)
	}

	if !reflect.DeepEqual(items, []interface{}{"one", "two"}) {
		t.Errorf("expected [one two], got %q", items)
	}

	if innerChunker, _ := custom.Innards(); innerChunker != c {
		t.Error("decomposition returned a different chunker than the one wrapped")
	}
}
