package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"mend/internal/correction"
	"mend/internal/diag"
	"mend/internal/source"
)

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSetWithBase("/home/user/project")
	content := []byte("String s = \"unterminated string\n")
	fileID := fs.AddVirtual("/home/user/project/src/Test.java", content)

	ds := []diag.Diagnostic{diag.New(
		diag.SevError,
		diag.LexUnterminatedString,
		source.Span{File: fileID, Start: 11, End: 31},
		"Unterminated string literal",
	)}

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{name: "Absolute path", mode: PathModeAbsolute, contains: "/home/user/project/src/Test.java:1:12"},
		{name: "Relative path", mode: PathModeRelative, contains: "src/Test.java:1:12"},
		{name: "Basename only", mode: PathModeBasename, contains: "Test.java:1:12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, ds, fs, PrettyOpts{Context: 1, PathMode: tt.mode})
			output := buf.String()

			for _, want := range []string{tt.contains, "ERROR", "LEX1002", "Unterminated string"} {
				if !strings.Contains(output, want) {
					t.Errorf("Expected output to contain %q, got:\n%s", want, output)
				}
			}
		})
	}
}

func TestPrettyUnderlinesSpan(t *testing.T) {
	fs := source.NewFileSet()
	src := "class C {\n\tint f() { return missing; }\n}\n"
	id := fs.AddVirtual("C.java", []byte(src))
	start := uint32(strings.Index(src, "missing"))
	ds := []diag.Diagnostic{diag.New(diag.SevError, diag.SemUndefinedName,
		source.Span{File: id, Start: start, End: start + 7}, "missing cannot be resolved")}

	var buf bytes.Buffer
	Pretty(&buf, ds, fs, PrettyOpts{})
	want := "C.java:2:19: ERROR SEM3001: missing cannot be resolved\n" +
		"2 | \tint f() { return missing; }\n" +
		"  | \t                 ^~~~~~~\n"
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyContextLines(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.js", []byte("let a = 1;\nlet b = @;\nlet c = 3;\n"))
	ds := []diag.Diagnostic{diag.New(diag.SevWarning, diag.LexUnknownChar, source.Span{File: id, Start: 19, End: 20}, "Unknown character")}

	var buf bytes.Buffer
	Pretty(&buf, ds, fs, PrettyOpts{Context: 1})
	out := buf.String()
	for _, want := range []string{"1 | let a = 1;", "2 | let b = @;", "3 | let c = 3;", "WARNING LEX1001"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestPrettyLoadFailureHasNoLocation(t *testing.T) {
	fs := source.NewFileSet()
	fs.AddVirtual("Other.java", []byte("class Other {}\n"))
	ds := []diag.Diagnostic{diag.New(diag.SevError, diag.IOLoadFileError, source.Span{}, "Gone.java: no such file")}

	var buf bytes.Buffer
	Pretty(&buf, ds, fs, PrettyOpts{Context: 1})
	if got, want := buf.String(), "ERROR IO5001: Gone.java: no such file\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func fixFor(id source.FileID, start, end uint32, text string) FixSource {
	return func(*diag.Diagnostic) []correction.Proposal {
		return []correction.Proposal{{
			RuleID: "insert-semicolon",
			Kind:   correction.KindFix,
			Code:   diag.SynExpectSemicolon,
			Label:  "Insert ';'",
			File:   id,
			Edits:  []diag.TextEdit{{Span: source.Span{File: id, Start: start, End: end}, NewText: text}},
			End:    -1,
		}}
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.js", []byte("let x = 1 + foo\n"))

	d := diag.New(diag.SevError, diag.SynExpectSemicolon, source.Span{File: id, Start: 9, End: 9}, "expected ';'").
		WithNote(source.Span{File: id, Start: 11, End: 11}, "statement starts here")
	var buf bytes.Buffer
	Pretty(&buf, []diag.Diagnostic{d}, fs, PrettyOpts{
		ShowNotes: true,
		ShowFixes: true,
		Fixes:     fixFor(id, 9, 9, ";"),
	})
	out := buf.String()
	for _, want := range []string{"note: test.js:1:12", "fix #1: Insert ';'", `apply=";"`, "id=insert-semicolon"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "preview:") {
		t.Errorf("preview printed without ShowPreview:\n%s", out)
	}
}

func TestPrettyFixPreview(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.js", []byte("let x = 1\nlet y = 2;\n"))
	d := diag.New(diag.SevError, diag.SynExpectSemicolon, source.Span{File: id, Start: 9, End: 9}, "expected ';'")

	var buf bytes.Buffer
	Pretty(&buf, []diag.Diagnostic{d}, fs, PrettyOpts{
		ShowFixes:   true,
		ShowPreview: true,
		Fixes:       fixFor(id, 9, 9, ";"),
	})
	out := buf.String()
	for _, want := range []string{"preview:", "- let x = 1\n", "+ let x = 1;\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "let y") {
		t.Errorf("preview leaked untouched lines:\n%s", out)
	}
}

func TestPrettyColorToggle(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.js", []byte("x\n"))
	ds := []diag.Diagnostic{diag.New(diag.SevError, diag.LexUnknownChar, source.Span{File: id, Start: 0, End: 1}, "bad")}

	var plain, colored bytes.Buffer
	Pretty(&plain, ds, fs, PrettyOpts{})
	Pretty(&colored, ds, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Errorf("escape codes without Color: %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Errorf("no escape codes with Color: %q", colored.String())
	}
}
