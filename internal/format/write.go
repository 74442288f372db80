package format

import "strings"

// Writer accumulates printed output and emits indentation lazily at the
// start of each line: the base indentation of the edit site plus one unit per level.
type Writer struct {
	opt         Options
	base        string
	buf         []byte
	indentLevel int
	atLineStart bool
}

// NewWriter creates a writer whose lines continue at indentation base.
func NewWriter(base string, opt Options) *Writer {
	return &Writer{opt: opt.withDefaults(), base: base}
}

// Bytes returns the accumulated output.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) String() string { return string(w.buf) }

// Indent returns the indentation of the current level.
func (w *Writer) Indent() string {
	return w.base + strings.Repeat(w.opt.Indent, w.indentLevel)
}

func (w *Writer) writeIndent() {
	if !w.atLineStart {
		return
	}
	w.buf = append(w.buf, w.Indent()...)
	w.atLineStart = false
}

// Mark flushes pending indentation and returns the current output offset.
func (w *Writer) Mark() int {
	w.writeIndent()
	return len(w.buf)
}

// WriteString writes a string to the output, handling indentation.
func (w *Writer) WriteString(s string) {
	if s == "" {
		return
	}
	w.writeIndent()
	w.buf = append(w.buf, s...)
	w.updateLineState(s[len(s)-1])
}

// WriteByte writes a single byte to the output.
func (w *Writer) WriteByte(b byte) error {
	w.writeIndent()
	w.buf = append(w.buf, b)
	w.updateLineState(b)
	return nil
}

func (w *Writer) updateLineState(last byte) {
	w.atLineStart = last == '\n'
}

// Space writes a single space if the output doesn't already end with whitespace.
func (w *Writer) Space() {
	if len(w.buf) == 0 {
		return
	}
	last := w.buf[len(w.buf)-1]
	if last == ' ' || last == '\n' || last == '\t' {
		return
	}
	w.buf = append(w.buf, ' ')
}

// Newline writes a newline if the output doesn't already end with one.
func (w *Writer) Newline() {
	if len(w.buf) == 0 || w.buf[len(w.buf)-1] != '\n' {
		w.buf = append(w.buf, '\n')
	}
	w.atLineStart = true
}

// IndentPush increases the indentation level.
func (w *Writer) IndentPush() {
	w.indentLevel++
}

// IndentPop decreases the indentation level.
func (w *Writer) IndentPop() {
	if w.indentLevel > 0 {
		w.indentLevel--
	}
}
