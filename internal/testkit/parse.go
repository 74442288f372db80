package testkit

import (
	"context"
	"strings"
	"testing"

	"fortio.org/safecast"

	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/parser"
	"mend/internal/sema"
	"mend/internal/source"
	"mend/internal/symbols"
)

// Selection and caret markers understood by Parse.
const (
	SelStart = "/*[*/"
	SelEnd   = "/*]*/"
	Caret    = "/*|*/"
)

// Fixture is a parsed and checked snippet with the selection taken from its markers.
type Fixture struct {
	Src    string
	File   *source.File
	Tree   *ast.Tree
	Unit   *sema.Unit
	Offset uint32
	Length uint32
}

// Covering returns the innermost node containing the selection.
func (f *Fixture) Covering() ast.NodeID {
	return f.Tree.CoveringNode(f.Offset, f.Length)
}

// Covered returns the outermost node inside the selection.
func (f *Fixture) Covered() ast.NodeID {
	return f.Tree.CoveredNode(f.Offset, f.Length)
}

// Diagnostics returns the parser and checker findings of the snippet, lints included.
func (f *Fixture) Diagnostics() []diag.Diagnostic {
	return f.Unit.Diagnostics()
}

// StripMarkers removes selection and caret markers and returns the offsets
// they stood at. Without markers the selection is empty at offset 0.
func StripMarkers(src string) (clean string, offset, length int) {
	if i := strings.Index(src, Caret); i >= 0 {
		return src[:i] + src[i+len(Caret):], i, 0
	}
	start := strings.Index(src, SelStart)
	if start < 0 {
		return src, 0, 0
	}
	src = src[:start] + src[start+len(SelStart):]
	end := strings.Index(src, SelEnd)
	if end < 0 {
		return src, start, 0
	}
	return src[:end] + src[end+len(SelEnd):], start, end - start
}

// Parse strips markers from src, parses it as a Java unit and runs the
// checker with lints enabled. Syntax errors fail the test unless allowErrors
// is set through ParseLenient.
func Parse(t testing.TB, src string) *Fixture {
	t.Helper()
	return parse(t, src, false)
}

// ParseLenient is Parse for snippets that are expected to contain syntax errors.
func ParseLenient(t testing.TB, src string) *Fixture {
	t.Helper()
	return parse(t, src, true)
}

func parse(t testing.TB, src string, lenient bool) *Fixture {
	t.Helper()
	clean, off, n := StripMarkers(src)
	fs := source.NewFileSet()
	id := fs.AddVirtual("Test.java", []byte(clean))
	bag := diag.NewBag(100)
	tree := parser.ParseSource(fs, id, bag)
	if bag.HasErrors() && !lenient {
		t.Fatalf("syntax errors: %+v", bag.Items())
	}
	unit, err := sema.CheckTree(context.Background(), symbols.NewUniverse(), tree, sema.Options{Lints: true})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	for _, d := range bag.Items() {
		unit.Bag.Add(d)
	}
	unit.Bag.Sort()
	start, err := safecast.Conv[uint32](off)
	if err != nil {
		t.Fatalf("selection offset: %v", err)
	}
	length, err := safecast.Conv[uint32](n)
	if err != nil {
		t.Fatalf("selection length: %v", err)
	}
	return &Fixture{
		Src:    clean,
		File:   fs.Get(id),
		Tree:   tree,
		Unit:   unit,
		Offset: start,
		Length: length,
	}
}

// Squash collapses runs of whitespace into one space and drops the spaces
// next to brackets and separators, so texts that differ only in layout compare equal.
func Squash(s string) string {
	fields := strings.Fields(s)
	out := strings.Join(fields, " ")
	for _, r := range []struct{ from, to string }{
		{"( ", "("}, {" )", ")"}, {"[ ", "["}, {" ]", "]"}, {" ;", ";"}, {" ,", ","},
	} {
		out = strings.ReplaceAll(out, r.from, r.to)
	}
	return out
}
