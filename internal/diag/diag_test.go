package diag

import (
	"strings"
	"testing"

	"mend/internal/source"
)

func TestLines(t *testing.T) {
	fs := source.NewFileSetWithBase("/workspace")
	file := fs.Add("/workspace/src/A.java", []byte("a\nb\n"), 0)

	diags := []Diagnostic{
		New(SevWarning, LntUnusedLocal, source.Span{File: file, Start: 2, End: 3}, "another", "b"),
		New(SevError, SemUndefinedName, source.Span{File: file, Start: 0, End: 1}, "first line\nsecond", "a").
			WithNote(source.Span{File: file, Start: 2, End: 3}, "note line"),
		New(SevError, SemUnreachableCode, source.Span{File: file + 7, Start: 0, End: 1}, "lost"),
	}

	expected := "error SEM3001 src/A.java:1:1 [a] first line second\n" +
		"  note src/A.java:2:1 note line\n" +
		"warning LNT4001 src/A.java:2:1 [b] another"
	if got := strings.Join(Lines(diags, fs, LineOpts{PathMode: "relative", Notes: true}), "\n"); got != expected {
		t.Fatalf("unexpected diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
	if got := Lines(diags, fs, LineOpts{PathMode: "basename"}); len(got) != 2 || got[1] != "warning LNT4001 A.java:2:1 [b] another" {
		t.Fatalf("without notes: %q", got)
	}
	if diags[0].Code != LntUnusedLocal {
		t.Fatalf("Lines reordered its input")
	}
}

func TestCodeIDs(t *testing.T) {
	cases := map[Code]string{
		LexUnterminatedString: "LEX1002",
		SynExpectSemicolon:    "SYN2012",
		SemUndefinedName:      "SEM3001",
		LntLocalHidesField:    "LNT4009",
	}
	for c, want := range cases {
		if got := c.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", c, got, want)
		}
		back, ok := ParseCode(want)
		if !ok || back != c {
			t.Errorf("ParseCode(%q) = %v,%v", want, back, ok)
		}
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(10)
	b.Add(New(SevWarning, LntUnusedLocal, source.Span{File: 1, Start: 5, End: 6}, "w"))
	b.Add(New(SevError, SemUndefinedName, source.Span{File: 1, Start: 0, End: 1}, "e", "x"))
	b.Add(New(SevError, SemUndefinedName, source.Span{File: 1, Start: 0, End: 1}, "e", "x"))
	b.Dedup()
	b.Sort()
	items := b.Items()
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Code != SemUndefinedName || items[0].Arg(0) != "x" {
		t.Fatalf("unexpected first item %+v", items[0])
	}
	if !b.HasErrors() {
		t.Fatalf("HasErrors() = false")
	}
}
