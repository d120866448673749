package chunker

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"regexp"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stream-utils/fencer/internal/constants"
	"github.com/stream-utils/fencer/maint/src/testhelpers"
)

const sentence = "One, two, three four. Can I have a little more?"
const sentenceFence = "[ .,?]+"

var sentenceExpectations = map[MatchDisposition][]string{
	MatchDrop: {
		"One", "two", "three", "four",
		"Can", "I", "have", "a", "little", "more",
	},
	MatchAppend: {
		"One, ", "two, ", "three ", "four. ",
		"Can ", "I ", "have ", "a ", "little ", "more?",
	},
	MatchPrepend: {
		"One", ", two", ", three", " four",
		". Can", " I", " have", " a", " little", " more", "?",
	},
}

func chunkStream(t *testing.T, source io.Reader, pattern string, dispo MatchDisposition) [][]byte {
	t.Helper()

	c, err := NewByteChunker(source, pattern)
	if err != nil {
		t.Fatalf("chunker construction failed: %s", err)
	}

	chunks, err := c.WithMatch(dispo).Collect()
	if err != nil {
		t.Fatalf("unexpected mid-stream error: %s", err)
	}
	return chunks
}

// the model answer: what the dispositions mean when one can see the
// entire input at once
func referenceChunks(t *testing.T, pattern string, data []byte, dispo MatchDisposition) (out [][]byte) {
	t.Helper()

	re, err := regexp.Compile(pattern)
	if err != nil {
		t.Fatalf("reference compilation failed: %s", err)
	}
	re.Longest()

	var pos int
	for _, m := range re.FindAllIndex(data, -1) {
		switch dispo {
		case MatchDrop:
			out = append(out, data[pos:m[0]])
			pos = m[1]
		case MatchAppend:
			out = append(out, data[pos:m[1]])
			pos = m[1]
		case MatchPrepend:
			out = append(out, data[pos:m[0]])
			pos = m[0]
		}
	}
	if pos < len(data) {
		out = append(out, data[pos:])
	}
	return
}

func compareChunkings(t *testing.T, label string, got [][]byte, expected [][]byte, corpus []byte) {
	t.Helper()

	mismatch := len(got) != len(expected)
	if !mismatch {
		for i := range got {
			if !bytes.Equal(got[i], expected[i]) {
				mismatch = true
				break
			}
		}
	}

	if mismatch {
		t.Errorf(
			"%s: produced %d chunks instead of the expected %d\n\tgot:      %q\n\texpected: %q%s",
			label,
			len(got),
			len(expected),
			got,
			expected,
			testhelpers.EncodeTestVector(corpus),
		)
	}
}

func toByteSlices(strs []string) (out [][]byte) {
	for _, s := range strs {
		out = append(out, []byte(s))
	}
	return
}

func TestSentenceSplitting(t *testing.T) {
	for dispo, expected := range sentenceExpectations {
		chunks := chunkStream(t, bytes.NewReader([]byte(sentence)), sentenceFence, dispo)
		compareChunkings(t, "disposition "+dispo.String(), chunks, toByteSlices(expected), []byte(sentence))
	}
}

func TestSentenceMatchesReferenceModel(t *testing.T) {
	for _, dispo := range []MatchDisposition{MatchDrop, MatchAppend, MatchPrepend} {
		expected := referenceChunks(t, sentenceFence, []byte(sentence), dispo)
		chunks := chunkStream(t, bytes.NewReader([]byte(sentence)), sentenceFence, dispo)
		compareChunkings(t, "reference "+dispo.String(), chunks, expected, []byte(sentence))
	}
}

// chunk boundaries must not depend on how the input got sliced up by
// the I/O layer: a byte-by-byte dribble has to produce the exact chunks
// a single contiguous buffer does
func TestDeliveryPartitionIndependence(t *testing.T) {

	corpora := [][]byte{
		[]byte(sentence),
		[]byte(",,,leading, and trailing,,,"),
		[]byte("no separators whatsoever"),
	}

	rand.Seed(time.Now().UnixNano())
	randomCorpus := make([]byte, 16*1024)
	if constants.LongTests {
		randomCorpus = make([]byte, 1024*1024)
	}
	rand.Read(randomCorpus)
	corpora = append(corpora, randomCorpus)

	for i, corpus := range corpora {

		pattern := sentenceFence
		if i == len(corpora)-1 {
			// the random corpus fences on low-byte runs instead
			pattern = `[\x00-\x07]+`
		}

		for _, dispo := range []MatchDisposition{MatchDrop, MatchAppend, MatchPrepend} {

			oneShot := chunkStream(t, bytes.NewReader(corpus), pattern, dispo)
			dribbled := chunkStream(t, iotest.OneByteReader(bytes.NewReader(corpus)), pattern, dispo)
			halved := chunkStream(t, iotest.HalfReader(bytes.NewReader(corpus)), pattern, dispo)

			compareChunkings(t,
				fmt.Sprintf("byte-by-byte delivery of corpus %d under %s", i, dispo),
				dribbled, oneShot, corpus,
			)
			compareChunkings(t,
				fmt.Sprintf("half-sized delivery of corpus %d under %s", i, dispo),
				halved, oneShot, corpus,
			)

			expected := referenceChunks(t, pattern, corpus, dispo)
			compareChunkings(t,
				fmt.Sprintf("one-shot delivery of corpus %d under %s", i, dispo),
				oneShot, expected, corpus,
			)
		}
	}
}

func TestEmptyInput(t *testing.T) {
	c, err := NewByteChunker(bytes.NewReader(nil), sentenceFence)
	if err != nil {
		t.Fatalf("chunker construction failed: %s", err)
	}

	for i := 0; i < 3; i++ {
		if chunk, err := c.Next(); err != io.EOF {
			t.Errorf("call %d on empty input returned (%q, %v) instead of bare io.EOF", i, chunk, err)
		}
	}
}

func TestUnterminatedTrailerFlush(t *testing.T) {
	input := []byte("nothing here matches")

	chunks := chunkStream(t, bytes.NewReader(input), `[;:]+`, MatchDrop)
	if len(chunks) != 1 || !bytes.Equal(chunks[0], input) {
		t.Errorf(
			"match-free input must surface as exactly one chunk at EOF, got %q",
			chunks,
		)
	}
}

func TestFenceLandingOnTail(t *testing.T) {
	// a fence flush with the end of the stream must still cut normally:
	// no trailing empty chunk, no lost separator under append
	dropChunks := chunkStream(t, bytes.NewReader([]byte("a,b,")), "[,]+", MatchDrop)
	compareChunkings(t, "drop with trailing fence", dropChunks, toByteSlices([]string{"a", "b"}), []byte("a,b,"))

	appendChunks := chunkStream(t, bytes.NewReader([]byte("a,b,")), "[,]+", MatchAppend)
	compareChunkings(t, "append with trailing fence", appendChunks, toByteSlices([]string{"a,", "b,"}), []byte("a,b,"))
}

func TestPatternCompileFailure(t *testing.T) {
	c, err := NewByteChunker(bytes.NewReader([]byte("irrelevant")), "[unterminated")
	if err == nil {
		t.Fatal("compilation of an unterminated class must fail")
	}
	if c != nil {
		t.Error("a failed construction must not return a partial chunker")
	}
}

type faultyReader struct {
	data     []byte
	err      error
	position int
}

func (r *faultyReader) Read(p []byte) (int, error) {
	if r.position >= len(r.data) {
		return 0, r.err
	}
	n := copy(p, r.data[r.position:])
	r.position += n
	return n, nil
}

func TestSourceErrorPropagation(t *testing.T) {
	boom := fmt.Errorf("injected source failure")

	c, err := NewByteChunker(&faultyReader{data: []byte("alpha, bet"), err: boom}, sentenceFence)
	if err != nil {
		t.Fatalf("chunker construction failed: %s", err)
	}

	chunk, err := c.Next()
	if err != nil || !bytes.Equal(chunk, []byte("alpha")) {
		t.Fatalf("expected ('alpha', nil) before the fault, got (%q, %v)", chunk, err)
	}

	if _, err := c.Next(); err != boom {
		t.Errorf("source failure must propagate verbatim, got: %v", err)
	}

	// the 'bet' trailer stays buffered: errors deliberately do not
	// trigger the EOF flush rule
	if c.Buffered() != len("bet") {
		t.Errorf("expected %d leftover bytes after the fault, found %d", len("bet"), c.Buffered())
	}
}

func TestLazyConstruction(t *testing.T) {
	// construction must not touch the source: a reader that explodes on
	// first contact only gets the chance to do so inside Next
	boom := fmt.Errorf("touched too early")

	c, err := NewByteChunker(&faultyReader{err: boom}, sentenceFence)
	if err != nil {
		t.Fatalf("chunker construction failed: %s", err)
	}

	if _, err := c.Next(); err != boom {
		t.Errorf("expected the deferred source fault from Next, got: %v", err)
	}
}
