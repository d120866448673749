// Package matcher isolates the regex engine the rest of the codebase
// treats as an opaque capability: compile an expression over bytes, then
// find the earliest match at-or-after a given offset. Two interchangeable
// engines are provided, selected at build time (see impl_rure.go).
package matcher

// Pattern is an immutable compiled fence expression.
type Pattern interface {

	// FindAt locates the earliest match within haystack beginning at or
	// after offset. The returned range is absolute within haystack.
	FindAt(haystack []byte, offset int) (start, end int, found bool)
}

// Compile parses expr with whichever engine this binary was built
// against. The error, if any, comes verbatim from that engine.
func Compile(expr string) (Pattern, error) {
	return compilePattern(expr)
}
