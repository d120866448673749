// +build fencer_rure

package matcher

import (
	rure "github.com/BurntSushi/rure-go"
)

type rurePattern struct{ *rure.Regex }

func compilePattern(expr string) (Pattern, error) {
	re, err := rure.CompileOptions(
		expr,
		0,
		rure.NewOptions(),
	)
	if err != nil {
		return nil, err
	}
	return rurePattern{re}, nil
}

func (p rurePattern) FindAt(haystack []byte, offset int) (int, int, bool) {
	if offset > len(haystack) {
		return 0, 0, false
	}
	if start, end, didMatch := p.FindBytes(haystack[offset:]); didMatch {
		return offset + start, offset + end, true
	}
	return 0, 0, false
}
