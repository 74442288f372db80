package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"mend/internal/ast"
	"mend/internal/diag"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func hasCode(ds []diag.Diagnostic, code diag.Code) bool {
	for _, d := range ds {
		if d.Code == code {
			return true
		}
	}
	return false
}

const (
	srcA = "class A {\n    int f(B b) {\n        return b.g();\n    }\n}\n"
	srcB = "class B {\n    int g() {\n        return 1;\n    }\n}\n"
)

func TestAnalyzeDirChecksJavaAsOneProgram(t *testing.T) {
	dir := writeTree(t, map[string]string{"A.java": srcA, "pkg/B.java": srcB, "app.js": "let x = 1;\n"})
	res, err := AnalyzeDir(context.Background(), dir, Options{Jobs: 2})
	if err != nil {
		t.Fatalf("AnalyzeDir: %v", err)
	}
	if len(res.Files) != 3 {
		t.Fatalf("files = %d, want 3", len(res.Files))
	}
	if res.HasErrors() {
		for _, a := range res.Files {
			t.Logf("%s: %+v", a.File.Path, a.Diagnostics())
		}
		t.Fatal("unexpected errors")
	}
	if len(res.Program.Units()) != 2 {
		t.Fatalf("units = %d, want 2", len(res.Program.Units()))
	}
	js := res.Lookup(filepath.Join(dir, "app.js"))
	if js == nil || js.Unit != nil || js.Tree.Lang != ast.LangJavaScript {
		t.Fatalf("javascript analysis = %+v", js)
	}
}

func TestAnalyzeFileAloneMissesSiblingClasses(t *testing.T) {
	dir := writeTree(t, map[string]string{"A.java": srcA, "B.java": srcB})
	a, err := AnalyzeFile(context.Background(), filepath.Join(dir, "A.java"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !hasCode(a.Diagnostics(), diag.SemUndefinedType) {
		t.Fatalf("expected %s, got %+v", diag.SemUndefinedType.ID(), a.Diagnostics())
	}
}

func TestAnalyzeRejectsUnknownExtension(t *testing.T) {
	dir := writeTree(t, map[string]string{"notes.txt": "hello"})
	if _, err := AnalyzeFile(context.Background(), filepath.Join(dir, "notes.txt"), Options{}); err == nil {
		t.Fatal("expected an error")
	}
}

func TestListSourcesSkipsHiddenAndVendored(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.js":                   "",
		"src/B.java":             "",
		"node_modules/x/y.js":    "",
		".git/hooks/z.js":        "",
		".mend-cache/diags/q.js": "",
		"README.md":              "",
	})
	got, err := ListSources(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.js"), filepath.Join(dir, "src", "B.java")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sources (-want +got):\n%s", diff)
	}
}

func TestRequestKeepsOverlappingProblems(t *testing.T) {
	src := "class C {\n    int f() {\n        return missing;\n    }\n}\n"
	dir := writeTree(t, map[string]string{"C.java": src})
	a, err := AnalyzeFile(context.Background(), filepath.Join(dir, "C.java"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	off := uint32(len("class C {\n    int f() {\n        return mis"))
	req := a.Request(off, 0, true)
	if len(req.Problems) != 1 || req.Problems[0].Code != diag.SemUndefinedName {
		t.Fatalf("problems at caret = %+v", req.Problems)
	}
	if req.Resolver == nil || !req.Assists {
		t.Fatal("request is missing its resolver or assists flag")
	}
	if got := a.Request(0, 0, true).Problems; len(got) != 0 {
		t.Fatalf("problems at file start = %+v", got)
	}
}

func TestDiagnoseServesRepeatRunsFromCache(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"C.java": "class C {\n    int f() {\n        return missing;\n    }\n}\n",
		"d.js":   "let y = 2;\n",
	})
	cache, err := OpenDiskCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	first, err := Diagnose(ctx, dir, cache, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first.Cached || !hasCode(first.Diagnostics, diag.SemUndefinedName) {
		t.Fatalf("first run: cached=%v diags=%+v", first.Cached, first.Diagnostics)
	}

	second, err := Diagnose(ctx, dir, cache, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached {
		t.Fatal("second run should be served from the cache")
	}
	if diff := cmp.Diff(first.Diagnostics, second.Diagnostics, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("cached diagnostics differ (-first +second):\n%s", diff)
	}
	want := []string{"error SEM3001 C.java:3:16 [missing] missing cannot be resolved"}
	for _, res := range []*DiagnoseResult{first, second} {
		got := diag.Lines(res.Diagnostics, res.FileSet, diag.LineOpts{PathMode: "basename"})
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("lines (cached=%v) differ (-want +got):\n%s", res.Cached, diff)
		}
	}

	if err := os.WriteFile(filepath.Join(dir, "C.java"), []byte("class C {\n}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	third, err := Diagnose(ctx, dir, cache, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if third.Cached || len(third.Diagnostics) != 0 {
		t.Fatalf("after edit: cached=%v diags=%+v", third.Cached, third.Diagnostics)
	}
}

func TestDiskCacheIgnoresOtherSchemas(t *testing.T) {
	cache, err := OpenDiskCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var key Digest
	key[0] = 7
	if err := cache.Put(key, &DiskPayload{Path: "x.js"}); err != nil {
		t.Fatal(err)
	}
	var got DiskPayload
	if ok, err := cache.Get(key, &got); !ok || err != nil || got.Path != "x.js" {
		t.Fatalf("get = %v, %v, %+v", ok, err, got)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := cache.Get(key, &got); ok {
		t.Fatal("entry survived DropAll")
	}
}

func TestSessionReusesUnchangedBuffers(t *testing.T) {
	s, err := NewSession(2, Options{})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	first, err := s.Analyze(ctx, "/work/C.java", []byte(srcB))
	if err != nil {
		t.Fatal(err)
	}
	again, err := s.Analyze(ctx, "/work/C.java", []byte(srcB))
	if err != nil {
		t.Fatal(err)
	}
	if first != again {
		t.Fatal("unchanged buffer was analyzed twice")
	}
	changed, err := s.Analyze(ctx, "/work/C.java", []byte("class B {\n}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if changed == first {
		t.Fatal("changed buffer served from the cache")
	}
	if hits, misses := s.Stats(); hits != 1 || misses != 2 {
		t.Fatalf("hits=%d misses=%d", hits, misses)
	}
	s.Forget("/work/C.java")
	if s.Len() != 0 {
		t.Fatalf("len after forget = %d", s.Len())
	}
}

func TestProgressEvents(t *testing.T) {
	dir := writeTree(t, map[string]string{"A.java": srcA, "B.java": srcB})
	events := make(ChanSink, 64)
	if _, err := AnalyzeDir(context.Background(), dir, Options{Progress: events}); err != nil {
		t.Fatal(err)
	}
	close(events)
	done := 0
	for ev := range events {
		if ev.Stage == StageCheck && ev.Status == StatusDone {
			done++
		}
	}
	if done != 2 {
		t.Fatalf("check done events = %d, want 2", done)
	}
}
