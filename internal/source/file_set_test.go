package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()
	id1 := fs.Add("A.java", []byte("class A {}"), 0)
	id2 := fs.Add("A.java", []byte("class A { int x; }"), 0)
	if id1 == id2 {
		t.Fatalf("re-adding a path must allocate a new id")
	}
	latest, ok := fs.GetLatest("A.java")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d,%v; want %d,true", latest, ok, id2)
	}
	if got := len(fs.Latest()); got != 1 {
		t.Fatalf("Latest() returned %d files, want 1", got)
	}
	if fs.Get(99) != nil {
		t.Fatalf("unknown id must return nil")
	}
}

func TestLineColRoundTrip(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("t.java", []byte("ab\n\tcd\n\nef"))
	f := fs.Get(id)

	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}},
		{3, LineCol{2, 1}},
		{5, LineCol{2, 3}},
		{7, LineCol{3, 1}},
		{9, LineCol{4, 2}},
	}
	for _, c := range cases {
		got := f.LineCol(c.off)
		if got != c.want {
			t.Errorf("LineCol(%d) = %+v, want %+v", c.off, got, c.want)
		}
		back, ok := f.Offset(got)
		if !ok || back != c.off {
			t.Errorf("Offset(%+v) = %d,%v; want %d", got, back, ok, c.off)
		}
	}
	if got := f.Indentation(5); got != "\t" {
		t.Errorf("Indentation = %q, want tab", got)
	}
	if got := f.GetLine(2); got != "\tcd" {
		t.Errorf("GetLine(2) = %q", got)
	}
}

func TestLoadNormalizesCRLFAndBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "B.java")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFclass B {\r\n}\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "class B {\n}\n" {
		t.Fatalf("content = %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags = %b, want BOM and CRLF bits", f.Flags)
	}
}
