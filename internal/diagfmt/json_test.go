package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"mend/internal/correction"
	"mend/internal/diag"
	"mend/internal/linked"
	"mend/internal/parser"
	"mend/internal/source"
)

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("class C {\n\tString s = \"unterminated\n}")
	fileID := fs.AddVirtual("C.java", content)

	ds := []diag.Diagnostic{diag.New(
		diag.SevError,
		diag.LexUnterminatedString,
		source.Span{File: fileID, Start: 22, End: 35},
		"Unterminated string literal",
	)}

	var buf bytes.Buffer
	opts := JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
		IncludeFixes:     true,
	}
	if err := JSON(&buf, ds, fs, opts); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("Expected 1 diagnostic, got count=%d len=%d", output.Count, len(output.Diagnostics))
	}

	d := output.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "LEX1002" || d.Message != "Unterminated string literal" {
		t.Errorf("unexpected header %+v", d)
	}
	if d.Location == nil {
		t.Fatal("missing location")
	}
	loc := *d.Location
	want := LocationJSON{File: "C.java", StartByte: 22, EndByte: 35, StartLine: 2, StartCol: 13, EndLine: 2, EndCol: 26}
	if loc != want {
		t.Errorf("location = %+v, want %+v", loc, want)
	}
	if len(d.Fixes) != 0 {
		t.Errorf("fixes without a FixSource: %+v", d.Fixes)
	}
}

// TestJSONWithoutPositions проверяет JSON без позиций строк/колонок
func TestJSONWithoutPositions(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.js", []byte("let x = 42;"))
	ds := []diag.Diagnostic{diag.New(diag.SevInfo, diag.LexUnknownChar, source.Span{File: fileID, Start: 4, End: 5}, "info")}

	out := BuildDiagnosticsOutput(ds, fs, JSONOpts{})
	loc := out.Diagnostics[0].Location
	if loc.StartLine != 0 || loc.StartCol != 0 {
		t.Errorf("positions leaked: %+v", loc)
	}
	if loc.StartByte != 4 || loc.EndByte != 5 {
		t.Errorf("byte offsets = %d..%d", loc.StartByte, loc.EndByte)
	}
}

// TestJSONMaxLimit проверяет обрезку вывода
func TestJSONMaxLimit(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.js", []byte("abcdefghij"))
	ds := make([]diag.Diagnostic, 0, 5)
	for i := range uint32(5) {
		ds = append(ds, diag.New(diag.SevWarning, diag.LexUnknownChar, source.Span{File: fileID, Start: i, End: i + 1}, "w"))
	}
	out := BuildDiagnosticsOutput(ds, fs, JSONOpts{Max: 2})
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("count = %d", out.Count)
	}
}

func TestJSONNotesAndLoadFailures(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("A.java", []byte("class A { int x; int x; }"))
	dup := diag.New(diag.SevError, diag.SemUndefinedName, source.Span{File: id, Start: 21, End: 22}, "dup").
		WithNote(source.Span{File: id, Start: 14, End: 15}, "first declared here")
	ioErr := diag.New(diag.SevError, diag.IOLoadFileError, source.Span{}, "B.java: permission denied", "B.java")

	out := BuildDiagnosticsOutput([]diag.Diagnostic{dup, ioErr}, fs, JSONOpts{IncludeNotes: true, PathMode: PathModeBasename})
	if n := out.Diagnostics[0].Notes; len(n) != 1 || n[0].Location.StartByte != 14 || n[0].Location.File != "A.java" {
		t.Errorf("notes = %+v", n)
	}
	if out.Diagnostics[1].Location != nil {
		t.Errorf("load failure got a location: %+v", out.Diagnostics[1].Location)
	}

	out = BuildDiagnosticsOutput([]diag.Diagnostic{dup}, fs, JSONOpts{})
	if len(out.Diagnostics[0].Notes) != 0 {
		t.Error("notes included without IncludeNotes")
	}
}

func sampleProposal(id source.FileID) correction.Proposal {
	return correction.Proposal{
		RuleID:    "create-local",
		Kind:      correction.KindFix,
		Code:      diag.SemUndefinedName,
		Label:     "Create local variable 'n'",
		Relevance: 6,
		File:      id,
		Edits: []diag.TextEdit{{
			Span:    source.Span{File: id, Start: 11, End: 11},
			NewText: "int n;\n",
		}},
		Groups: []linked.ResolvedGroup{{
			Name:      "type",
			Positions: []linked.Position{{Offset: 11, Length: 3, Primary: true}},
		}},
		End: 17,
	}
}

func TestJSONFixesWithPreview(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("C.java", []byte("void f() {\nreturn n;\n}\n"))
	ds := []diag.Diagnostic{diag.New(diag.SevError, diag.SemUndefinedName, source.Span{File: id, Start: 18, End: 19}, "n cannot be resolved")}

	opts := JSONOpts{
		IncludeFixes:    true,
		IncludePreviews: true,
		PathMode:        PathModeBasename,
		Fixes: func(*diag.Diagnostic) []correction.Proposal {
			return []correction.Proposal{sampleProposal(id)}
		},
	}
	out := BuildDiagnosticsOutput(ds, fs, opts)
	fixes := out.Diagnostics[0].Fixes
	if len(fixes) != 1 {
		t.Fatalf("fixes = %+v", fixes)
	}
	f := fixes[0]
	if f.Index != 1 || f.ID != "create-local" || f.Kind != "quick-fix" || f.Code != "SEM3001" || f.End != 17 {
		t.Errorf("fix header = %+v", f)
	}
	if len(f.Edits) != 1 || f.Edits[0].NewText != "int n;\n" {
		t.Fatalf("edits = %+v", f.Edits)
	}
	if got := strings.Join(f.Edits[0].AfterLines, "|"); got != "int n;|return n;" {
		t.Errorf("after lines = %q", got)
	}
	if !strings.Contains(f.Diff, "+int n;") {
		t.Errorf("diff = %q", f.Diff)
	}
}

func TestProposalsOutputYAML(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("C.java", []byte("void f() {\nreturn n;\n}\n"))
	doc := BuildProposalsOutput(fs, id, 18, 0, []correction.Proposal{sampleProposal(id)}, JSONOpts{PathMode: PathModeBasename})

	var buf bytes.Buffer
	if err := WriteYAML(&buf, doc); err != nil {
		t.Fatal(err)
	}
	var back ProposalsOutput
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("yaml: %v\n%s", err, buf.String())
	}
	if back.File != "C.java" || back.Offset != 18 || len(back.Proposals) != 1 {
		t.Fatalf("decoded = %+v", back)
	}
	g := back.Proposals[0].Groups
	if len(g) != 1 || g[0].Name != "type" || !g[0].Positions[0].Primary {
		t.Errorf("groups = %+v", g)
	}
	if back.Proposals[0].Diff != "" {
		t.Error("diff included without IncludePreviews")
	}
}

func TestProposalsListing(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("C.java", []byte("void f() {\nreturn n;\n}\n"))
	short := correction.Proposal{RuleID: "invert-if", Kind: correction.KindAssist, Label: "Invert", File: id, End: -1}

	var buf bytes.Buffer
	if err := Proposals(&buf, fs, []correction.Proposal{sampleProposal(id), short}, ProposalOpts{Diff: true, Groups: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"1. Create local variable 'n'  [quick-fix create-local SEM3001] relevance=6",
		"2. Invert                     [quick-assist invert-if] relevance=0",
		"linked type: 11+3*",
		"+int n;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := Proposals(&buf, fs, nil, ProposalOpts{}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "no proposals\n" {
		t.Errorf("empty listing = %q", buf.String())
	}
}

func TestFormatASTPretty(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("C.java", []byte("class C {\n}\n"))
	tree := parser.ParseSource(fs, id, diag.NewBag(8))

	var buf bytes.Buffer
	if err := FormatASTPretty(&buf, tree, fs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "CompilationUnit ") {
		t.Errorf("root line: %q", out)
	}
	for _, want := range []string{"└─ types: TypeDecl", "   └─ name: Name C 1:7-1:8"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := FormatASTJSON(&buf, tree); err != nil {
		t.Fatal(err)
	}
	var root ASTNodeOutput
	if err := json.Unmarshal(buf.Bytes(), &root); err != nil {
		t.Fatal(err)
	}
	if root.Kind != "CompilationUnit" || len(root.Children) != 1 || root.Children[0].Prop != "CompilationUnit.types" {
		t.Errorf("json tree = %+v", root)
	}
}
