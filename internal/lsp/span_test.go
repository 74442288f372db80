package lsp

import (
	"strings"
	"testing"
	"unicode/utf16"

	"mend/internal/source"
)

func TestUTF16SpanMapping(t *testing.T) {
	prefix := "    String s = \"é\U0001F642\"; int n = "
	src := "class C {\n" + prefix + "foo();\n}\n"
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("C.java", []byte(src)))

	off := uint32(strings.Index(src, "foo();"))
	// смайлик занимает суррогатную пару
	want := position{Line: 1, Character: len(utf16.Encode([]rune(prefix)))}
	if got := positionForOffsetInFile(file, off); got != want {
		t.Fatalf("position = %+v, want %+v", got, want)
	}
	if back := offsetForPositionInFile(file, want); back != off {
		t.Fatalf("offset = %d, want %d", back, off)
	}

	r := rangeForSpan(file, source.Span{File: file.ID, Start: off, End: off + 3})
	if r.End.Character-r.Start.Character != 3 || r.Start.Line != 1 {
		t.Fatalf("range = %+v", r)
	}
}

func TestOffsetForPositionClamps(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("a.js", []byte("ab\ncd\n")))
	if got := offsetForPositionInFile(file, position{Line: 0, Character: 99}); got != 2 {
		t.Errorf("past line end = %d, want 2", got)
	}
	if got := offsetForPositionInFile(file, position{Line: 9, Character: 0}); got != 6 {
		t.Errorf("past last line = %d, want 6", got)
	}
	// середина суррогатной пары не делит руну
	file = fs.Get(fs.AddVirtual("b.js", []byte("\U0001F642x")))
	if got := offsetForPositionInFile(file, position{Line: 0, Character: 1}); got != 0 {
		t.Errorf("inside surrogate pair = %d, want 0", got)
	}
}
