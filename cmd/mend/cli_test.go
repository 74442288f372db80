package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mend/internal/config"
	"mend/internal/correction"
	"mend/internal/driver"
	"mend/internal/fix"
	"mend/internal/preview"
	"mend/internal/rules"
	"mend/internal/source"
)

const missingSrc = "class C {\n    int f() {\n        return missing;\n    }\n}\n"

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseAt(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("C.java", []byte("class C {\n  int x;\n}\n")))

	cases := []struct {
		at   string
		want uint32
		bad  bool
	}{
		{at: "1:1", want: 0},
		{at: "2:3", want: 12},
		{at: "5", want: 5},
		{at: "0", want: 0},
		{at: "99:1", bad: true},
		{at: "1000", bad: true},
		{at: "-1", bad: true},
		{at: "a:b", bad: true},
		{at: "x", bad: true},
	}
	for _, c := range cases {
		got, err := parseAt(f, c.at)
		if c.bad {
			if err == nil {
				t.Errorf("parseAt(%q) = %d, want error", c.at, got)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Errorf("parseAt(%q) = %d, %v, want %d", c.at, got, err, c.want)
		}
	}
}

func TestParseBatchLine(t *testing.T) {
	req, ok, err := parseBatchLine("  src/A.java 3:16 7 ")
	if err != nil || !ok {
		t.Fatalf("parseBatchLine: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(assistRequest{path: "src/A.java", at: "3:16", length: 7}, req, cmp.AllowUnexported(assistRequest{})); diff != "" {
		t.Fatalf("request (-want +got):\n%s", diff)
	}
	for _, skip := range []string{"", "   ", "# comment"} {
		if _, ok, err := parseBatchLine(skip); ok || err != nil {
			t.Errorf("parseBatchLine(%q) = %v, %v", skip, ok, err)
		}
	}
	for _, bad := range []string{"A.java", "A.java 1:1 2 3", "A.java 1:1 many"} {
		if _, _, err := parseBatchLine(bad); err == nil {
			t.Errorf("parseBatchLine(%q) accepted", bad)
		}
	}
}

func newTestEnv(t *testing.T, output string) *assistEnv {
	t.Helper()
	session, err := driver.NewSession(0, driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return &assistEnv{
		session: session,
		cat:     rules.Default(),
		output:  output,
		assists: true,
		config:  func(string) (config.Config, error) { return config.Default(), nil },
	}
}

func TestAssistBatchReusesSession(t *testing.T) {
	path := writeTemp(t, "C.java", missingSrc)
	env := newTestEnv(t, "text")

	in := strings.NewReader(strings.Join([]string{
		"# quick-fixes for the unresolved name",
		path + " 3:16",
		path + " 3:16 7",
		"broken",
	}, "\n"))
	var out, errOut bytes.Buffer
	failed, err := runAssistBatch(context.Background(), env, in, &out, &errOut)
	if err != nil {
		t.Fatal(err)
	}
	if failed != 1 || !strings.Contains(errOut.String(), "line 4:") {
		t.Fatalf("failed = %d, stderr = %q", failed, errOut.String())
	}
	if got := strings.Count(out.String(), "== "+path); got != 2 {
		t.Fatalf("answered %d requests:\n%s", got, out.String())
	}
	if !strings.Contains(out.String(), "Create local variable 'missing'") {
		t.Fatalf("no create-local proposal:\n%s", out.String())
	}
	if hits, misses := env.session.Stats(); hits != 1 || misses != 1 {
		t.Fatalf("session hits=%d misses=%d", hits, misses)
	}
}

func TestAssistAnswerRejectsLongSelection(t *testing.T) {
	path := writeTemp(t, "C.java", missingSrc)
	env := newTestEnv(t, "json")
	if _, err := env.answer(context.Background(), assistRequest{path: path, at: "5:1", length: 100}); err == nil {
		t.Fatal("selection past the end accepted")
	}
}

func TestAssistWriteJSON(t *testing.T) {
	path := writeTemp(t, "C.java", missingSrc)
	env := newTestEnv(t, "json")
	ans, err := env.answer(context.Background(), assistRequest{path: path, at: "3:16"})
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := env.write(&out, ans); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"offset": 39`, `"proposals"`, `"kind": "quick-fix"`} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("json lacks %s:\n%s", want, out.String())
		}
	}
}

func TestApplyFixesDryRunLeavesDisk(t *testing.T) {
	path := writeTemp(t, "C.java", missingSrc)
	dir := filepath.Dir(path)
	res, err := driver.AnalyzeDir(context.Background(), dir, driver.Options{})
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	run, err := applyFixes(context.Background(), res, rules.Default(), &cfg,
		fix.ApplyOptions{Mode: fix.ApplyModeAll, DryRun: true}, driver.Options{Jobs: 2})
	if err != nil {
		t.Fatal(err)
	}
	if run.applyErr != nil || len(run.result.Applied) == 0 || len(run.result.FileChanges) != 1 {
		t.Fatalf("result = %+v, err = %v", run.result, run.applyErr)
	}
	if string(run.result.FileChanges[0].Content) == missingSrc {
		t.Fatal("dry run produced no change")
	}
	disk, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(disk) != missingSrc {
		t.Fatalf("dry run wrote the file:\n%s", disk)
	}

	var out bytes.Buffer
	if err := printFixDiff(&out, run); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "@@") {
		t.Fatalf("no hunk in diff:\n%s", out.String())
	}
}

func TestHandleApplyResultNoFixes(t *testing.T) {
	var out bytes.Buffer
	err := handleApplyResult(&out, &fix.ApplyResult{}, fix.ErrNoFixes, false)
	if err != nil {
		t.Fatalf("ErrNoFixes surfaced: %v", err)
	}
	if !strings.Contains(out.String(), "No applicable fixes found.") {
		t.Fatalf("output = %q", out.String())
	}

	boom := errors.New("boom")
	if err := handleApplyResult(&out, &fix.ApplyResult{}, boom, false); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestWriteChanges(t *testing.T) {
	path := writeTemp(t, "A.js", "let a = 1;\n")
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	changes := []preview.Change{{File: id, Path: "A.js", Before: fs.Get(id).Content, After: []byte("let b = 1;\n")}}
	n, err := writeChanges(fs, changes)
	if err != nil || n != 1 {
		t.Fatalf("writeChanges = %d, %v", n, err)
	}
	disk, _ := os.ReadFile(path)
	if string(disk) != "let b = 1;\n" {
		t.Fatalf("disk = %q", disk)
	}

	vid := fs.AddVirtual("B.js", []byte("x;\n"))
	if _, err := writeChanges(fs, []preview.Change{{File: vid, Path: "B.js", Before: []byte("x;\n"), After: []byte("y;\n")}}); err == nil {
		t.Fatal("virtual file written")
	}
}

func TestCatalogueRows(t *testing.T) {
	cat := rules.Default()
	s := correction.Settings{
		Disabled:  map[string]bool{"create-local": true},
		Relevance: map[string]int{"create-local": 1},
	}
	rows, err := catalogueRows(cat, "fix", s)
	if err != nil {
		t.Fatal(err)
	}
	var local *ruleRow
	for i := range rows {
		if rows[i].Kind != "quick-fix" {
			t.Fatalf("assist listed under --kind fix: %+v", rows[i])
		}
		if rows[i].ID == "create-local" {
			local = &rows[i]
		}
	}
	if local == nil || !local.Disabled || local.Relevance != 1 || len(local.Codes) == 0 {
		t.Fatalf("create-local row = %+v", local)
	}

	all, err := catalogueRows(cat, "all", correction.Settings{})
	if err != nil || len(all) != len(cat.Rules()) {
		t.Fatalf("all rows = %d, want %d (%v)", len(all), len(cat.Rules()), err)
	}
	if _, err := catalogueRows(cat, "nope", correction.Settings{}); err == nil {
		t.Fatal("bad kind accepted")
	}

	var out bytes.Buffer
	renderRulesTable(&out, rows)
	if !strings.Contains(out.String(), "create-local (disabled)") {
		t.Fatalf("table:\n%s", out.String())
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatal("bad mode accepted")
	}
	if !shouldUseTUI(uiModeOn, true) || shouldUseTUI(uiModeOff, false) {
		t.Fatal("explicit modes ignored")
	}
}
