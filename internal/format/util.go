package format

import "strings"

// Range is a half-open byte range in printed text.
type Range struct {
	Start, End int
}

// Shift moves r by delta bytes.
func (r Range) Shift(delta int) Range { return Range{Start: r.Start + delta, End: r.End + delta} }

func (r Range) Len() int { return r.End - r.Start }

func isBlank(s string) bool {
	return strings.TrimLeft(s, " \t\r") == ""
}

// leadingWhitespace returns the spaces and tabs at the start of s.
func leadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
