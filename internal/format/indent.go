package format

import (
	"bytes"
	"sort"
	"strings"
)

// Indentation styles accepted by OptionsFor.
const (
	IndentTab    = "tab"
	IndentSpaces = "spaces"
	IndentAuto   = "auto"
)

// Options control how synthesized nodes are laid out.
type Options struct {
	// Indent is one indentation unit: a tab or a run of spaces.
	Indent string
}

func (o Options) withDefaults() Options {
	if o.Indent == "" {
		o.Indent = "    "
	}
	return o
}

// Unit returns the indentation unit, four spaces when unset.
func (o Options) Unit() string {
	return o.withDefaults().Indent
}

// OptionsFor builds options from a configured style. "auto" looks at content.
func OptionsFor(style string, tabWidth int, content []byte) Options {
	if tabWidth <= 0 {
		tabWidth = 4
	}
	switch style {
	case IndentTab:
		return Options{Indent: "\t"}
	case IndentSpaces:
		return Options{Indent: strings.Repeat(" ", tabWidth)}
	default:
		if unit := DetectIndent(content); unit != "" {
			return Options{Indent: unit}
		}
		return Options{Indent: strings.Repeat(" ", tabWidth)}
	}
}

// DetectIndent guesses the indentation unit of a file: a tab if any code line
// starts with one, else the smallest positive run of leading spaces. Empty
// when nothing is indented.
func DetectIndent(content []byte) string {
	smallest := 0
	for line := range bytes.SplitSeq(content, []byte("\n")) {
		trimmed := bytes.TrimLeft(line, " \t")
		if len(trimmed) == 0 || trimmed[0] == '*' {
			continue
		}
		if line[0] == '\t' {
			return "\t"
		}
		n := len(line) - len(bytes.TrimLeft(line, " "))
		if n > 0 && (smallest == 0 || n < smallest) {
			smallest = n
		}
	}
	if smallest == 0 {
		return ""
	}
	return strings.Repeat(" ", min(smallest, 8))
}

// Reindent moves text whose continuation lines are indented relative to from
// so that they are indented relative to to. The first line is left alone.
// Continuation lines that do not start with from lose up to len(from) bytes of
// leading whitespace; blank lines become empty. The returned function maps an
// offset in text to the corresponding offset in the result.
func Reindent(text, from, to string) (string, func(int) int) {
	if from == to || !strings.Contains(text, "\n") {
		return text, func(o int) int { return o }
	}
	lines := strings.Split(text, "\n")
	type lineMap struct {
		oldStart, newStart, stripped, added int
	}
	maps := make([]lineMap, len(lines))
	var b strings.Builder
	old := 0
	for i, line := range lines {
		lm := lineMap{oldStart: old, newStart: b.Len()}
		switch {
		case i == 0:
			b.WriteString(line)
		case isBlank(line):
			lm.stripped = len(line)
		default:
			strip := len(from)
			if !strings.HasPrefix(line, from) {
				strip = min(len(leadingWhitespace(line)), len(from))
			}
			lm.stripped = strip
			lm.added = len(to)
			b.WriteString(to)
			b.WriteString(line[strip:])
		}
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
		maps[i] = lm
		old += len(line) + 1
	}
	mapper := func(o int) int {
		k := sort.Search(len(maps), func(i int) bool { return maps[i].oldStart > o }) - 1
		if k < 0 {
			return o
		}
		lm := maps[k]
		d := o - lm.oldStart
		if d < lm.stripped {
			return lm.newStart + lm.added
		}
		return lm.newStart + lm.added + d - lm.stripped
	}
	return b.String(), mapper
}
