package chunker

import (
	"unicode/utf8"
)

// Utf8Policy selects what a StringAdapter does with chunks that are
// not valid UTF-8.
type Utf8Policy int

const (
	// Utf8Replace substitutes U+FFFD for each invalid sequence.
	Utf8Replace = Utf8Policy(iota)

	// Utf8Passthrough converts the bytes as-is, invalid sequences
	// included - the Go string type holds arbitrary bytes just fine.
	Utf8Passthrough

	// Utf8Skip silently drops chunks containing invalid sequences,
	// counting them in SkippedChunks.
	Utf8Skip
)

// StringAdapter maps raw chunks to string items. The zero value
// replaces invalid UTF-8 with U+FFFD and skips nothing.
type StringAdapter struct {
	Policy Utf8Policy

	// SkippedChunks counts the chunks dropped under Utf8Skip.
	SkippedChunks int64
}

func (a *StringAdapter) Adapt(chunk []byte, err error) (interface{}, bool) {
	if err != nil {
		return nil, false
	}

	switch a.Policy {
	case Utf8Passthrough:
		return string(chunk), true
	case Utf8Skip:
		if !utf8.Valid(chunk) {
			a.SkippedChunks++
			return nil, false
		}
		return string(chunk), true
	default:
		return replaceInvalidUtf8(chunk), true
	}
}

func replaceInvalidUtf8(chunk []byte) string {
	if utf8.Valid(chunk) {
		return string(chunk)
	}

	out := make([]rune, 0, len(chunk))
	for len(chunk) > 0 {
		r, size := utf8.DecodeRune(chunk)
		out = append(out, r)
		chunk = chunk[size:]
	}
	return string(out)
}
