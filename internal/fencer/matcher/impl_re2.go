// +build !fencer_rure

package matcher

import (
	"regexp"
)

type re2Pattern struct{ *regexp.Regexp }

func compilePattern(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	// leftmost-longest, so that e.g. `[ .,?]+` swallows an entire
	// separator run the way the rure engine does with greedy repeats
	re.Longest()

	return re2Pattern{re}, nil
}

func (p re2Pattern) FindAt(haystack []byte, offset int) (int, int, bool) {
	if offset > len(haystack) {
		return 0, 0, false
	}
	if m := p.FindIndex(haystack[offset:]); m != nil {
		return offset + m[0], offset + m[1], true
	}
	return 0, 0, false
}
