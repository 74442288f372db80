package preview_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mend/internal/correction"
	"mend/internal/diag"
	"mend/internal/preview"
	"mend/internal/source"
)

func TestFileDiffRendersHunks(t *testing.T) {
	before := []byte("class A {\n    int f() {\n        return 1;\n    }\n}\n")
	after := []byte("class A {\n    long f() {\n        return 1;\n    }\n}\n")
	out, err := preview.Render([]preview.Change{{Path: "A.java", Before: before, After: after}})
	require.NoError(t, err)
	text := string(out)
	require.Contains(t, text, "--- a/A.java\n+++ b/A.java\n")
	require.Contains(t, text, "@@ -1,5 +1,5 @@")
	require.Contains(t, text, "-    int f() {\n+    long f() {\n")

	st, err := preview.Summarize(out)
	require.NoError(t, err)
	require.Equal(t, preview.Stats{Files: 1, Added: 1, Removed: 1}, st)
}

func TestFileDiffOfEqualContentIsEmpty(t *testing.T) {
	fd, err := preview.FileDiff("A.java", []byte("x\n"), []byte("x\n"))
	require.NoError(t, err)
	require.Nil(t, fd)
	out, err := preview.Render([]preview.Change{{Path: "A.java", Before: []byte("x\n"), After: []byte("x\n")}})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestFileDiffWithoutTrailingNewline(t *testing.T) {
	out, err := preview.Render([]preview.Change{{Path: "a.js", Before: []byte("let a = 1;"), After: []byte("let a = 2;")}})
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(out), "+let a = 2;\n"))
}

func TestProposalDiffCoversEveryFile(t *testing.T) {
	fs := source.NewFileSetWithBase("/work")
	a := fs.AddVirtual("/work/A.java", []byte("class A {\n}\n"))
	b := fs.AddVirtual("/work/B.java", []byte("class B {\n}\n"))
	p := &correction.Proposal{
		RuleID: "create-method",
		File:   a,
		Edits: []diag.TextEdit{
			{Span: source.Span{File: a, Start: 9, End: 9}, NewText: "\n    void f() {}"},
			{Span: source.Span{File: b, Start: 9, End: 9}, NewText: "\n    void g() {}"},
		},
	}
	out, err := preview.Proposal(fs, p)
	require.NoError(t, err)
	require.Contains(t, string(out), "+++ b/A.java")
	require.Contains(t, string(out), "+++ b/B.java")
	require.Contains(t, string(out), "+    void g() {}")
}

func TestValidateJava(t *testing.T) {
	ctx := context.Background()
	before := []byte("class A {\n    void f() {\n        g();\n    }\n    void g() {}\n}\n")
	good := []byte("class A {\n    void f() {\n        if (true) g();\n    }\n    void g() {}\n}\n")
	bad := []byte("class A {\n    void f() {\n        g(;\n    }\n    void g() {}\n}\n")
	require.NoError(t, preview.Validate(ctx, "A.java", before, good))
	err := preview.Validate(ctx, "A.java", before, bad)
	require.True(t, errors.Is(err, preview.ErrBroken))
	require.Contains(t, err.Error(), "A.java:3")
	// исходник уже сломан: новые правки не виноваты
	require.NoError(t, preview.Validate(ctx, "A.java", bad, bad))
}

func TestValidateJavaScript(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, preview.Validate(ctx, "a.js", []byte("let a = 1;\n"), []byte("let a = 2;\n")))
	err := preview.ValidateChanges(ctx, []preview.Change{
		{Path: "a.js", Before: []byte("let a = 1;\n"), After: []byte("let a = (;\n")},
	})
	require.ErrorIs(t, err, preview.ErrBroken)
}
