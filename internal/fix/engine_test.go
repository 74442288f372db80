package fix

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mend/internal/correction"
	"mend/internal/diag"
	"mend/internal/source"
)

func proposal(id string, relevance int, edits ...diag.TextEdit) correction.Proposal {
	p := correction.Proposal{RuleID: id, Kind: correction.KindFix, Label: id, Relevance: relevance, Edits: edits, End: -1}
	if len(edits) > 0 {
		p.File = edits[0].Span.File
	}
	return p
}

func edit(file source.FileID, start, end uint32, newText, oldText string) diag.TextEdit {
	return diag.TextEdit{Span: source.Span{File: file, Start: start, End: end}, NewText: newText, OldText: oldText}
}

func problem(file source.FileID, start, end uint32) diag.Diagnostic {
	return diag.Diagnostic{Code: diag.SemTypeMismatch, Message: "mismatch", Primary: source.Span{File: file, Start: start, End: end}}
}

func TestGatherCandidatesSkipsDuplicateProposals(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("A.java", []byte("x"))
	d := problem(fileID, 0, 1)
	p := proposal("add-cast", 7, edit(fileID, 0, 1, "(int) x", "x"))

	candidates, skips := gatherCandidates([]Candidate{{d, p}, {d, p}, {d, proposal("empty", 1)}})

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if len(skips) != 2 {
		t.Fatalf("expected 2 skipped proposals, got %d", len(skips))
	}
	if skips[0].Reason != "duplicate proposal" {
		t.Fatalf("expected duplicate reason, got %q", skips[0].Reason)
	}
	if skips[1].Reason != "proposal has no edits" {
		t.Fatalf("expected empty reason, got %q", skips[1].Reason)
	}
}

func TestApplyAllPicksMostRelevantPerDiagnostic(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("A.java", []byte("int a = b; int c = d;"))
	first, second := problem(fileID, 8, 9), problem(fileID, 19, 20)

	cands := []Candidate{
		{first, proposal("change-variable-type", 6, edit(fileID, 0, 3, "long", "int"))},
		{first, proposal("add-cast", 7, edit(fileID, 8, 9, "(int) b", "b"))},
		{second, proposal("add-cast", 7, edit(fileID, 19, 20, "(int) d", "d"))},
	}
	res, err := ApplyProposals(fs, cands, ApplyOptions{Mode: ApplyModeAll, DryRun: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Applied) != 2 {
		t.Fatalf("expected 2 applied, got %+v", res.Applied)
	}
	for _, a := range res.Applied {
		if a.RuleID != "add-cast" {
			t.Fatalf("expected add-cast, got %s", a.RuleID)
		}
	}
	if len(res.FileChanges) != 1 {
		t.Fatalf("expected one changed file, got %d", len(res.FileChanges))
	}
	if got, want := string(res.FileChanges[0].Content), "int a = (int) b; int c = (int) d;"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if res.EditCount() != 2 {
		t.Fatalf("expected 2 edits, got %d", res.EditCount())
	}
}

func TestApplySkipsConflictingProposals(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("A.java", []byte("abcdef"))
	cands := []Candidate{
		{problem(fileID, 0, 3), proposal("first", 5, edit(fileID, 0, 3, "X", "abc"))},
		{problem(fileID, 2, 4), proposal("second", 5, edit(fileID, 2, 4, "Y", "cd"))},
		{problem(fileID, 4, 6), proposal("third", 5, edit(fileID, 4, 6, "Z", "ef"))},
	}
	res, err := ApplyProposals(fs, cands, ApplyOptions{Mode: ApplyModeAll, DryRun: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Applied) != 2 || len(res.Skipped) != 1 || res.Skipped[0].RuleID != "second" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := string(res.FileChanges[0].Content); got != "XdZ" {
		t.Fatalf("got %q", got)
	}
}

func TestApplyIsAllOrNothingAcrossFiles(t *testing.T) {
	fs := source.NewFileSet()
	a := fs.AddVirtual("A.java", []byte("class A {}"))
	b := fs.AddVirtual("B.java", []byte("class B {}"))
	p := proposal("create-method", 5,
		edit(a, 9, 9, "void f() {}", ""),
		edit(b, 0, 5, "record", "struct"),
	)
	res, err := ApplyProposals(fs, []Candidate{{problem(a, 0, 1), p}}, ApplyOptions{Mode: ApplyModeOnce, DryRun: true})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
	if len(res.FileChanges) != 0 {
		t.Fatalf("expected no changes, got %+v", res.FileChanges)
	}
	if res.Skipped[0].Reason != "existing text does not match expected content" {
		t.Fatalf("unexpected reason %q", res.Skipped[0].Reason)
	}
}

func TestApplyByRuleID(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("A.java", []byte("int a = b;"))
	d := problem(fileID, 8, 9)
	cands := []Candidate{
		{d, proposal("add-cast", 7, edit(fileID, 8, 9, "(int) b", "b"))},
		{d, proposal("change-variable-type", 6, edit(fileID, 0, 3, "long", "int"))},
	}
	res, err := ApplyProposals(fs, cands, ApplyOptions{Mode: ApplyModeID, TargetID: "change-variable-type", DryRun: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(res.FileChanges[0].Content); got != "long a = b;" {
		t.Fatalf("got %q", got)
	}

	_, err = ApplyProposals(fs, cands, ApplyOptions{Mode: ApplyModeID, TargetID: "remove-final", DryRun: true})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
}

func TestApplyRefusesVirtualFilesOutsideDryRun(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("A.java", []byte("x"))
	cands := []Candidate{{problem(fileID, 0, 1), proposal("p", 1, edit(fileID, 0, 1, "y", "x"))}}
	res, err := ApplyProposals(fs, cands, ApplyOptions{Mode: ApplyModeOnce})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
	if res.Skipped[0].Reason != "target file is virtual" {
		t.Fatalf("unexpected reason %q", res.Skipped[0].Reason)
	}
}

func TestApplyWritesFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "A.java")
	if err := os.WriteFile(path, []byte("int a = b;\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSetWithBase(dir)
	fileID, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	cands := []Candidate{{problem(fileID, 8, 9), proposal("add-cast", 7, edit(fileID, 8, 9, "(int) b", "b"))}}
	res, err := ApplyProposals(fs, cands, ApplyOptions{Mode: ApplyModeOnce})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FileChanges[0].Path != "A.java" {
		t.Fatalf("unexpected path %q", res.FileChanges[0].Path)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "int a = (int) b;\n" {
		t.Fatalf("got %q", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode changed to %v", info.Mode())
	}
}

func TestSpansConflict(t *testing.T) {
	cases := []struct {
		a, b diag.TextEdit
		want bool
	}{
		{edit(0, 1, 1, "x", ""), edit(0, 2, 2, "y", ""), false},
		{edit(0, 1, 1, "x", ""), edit(0, 1, 1, "y", ""), true},
		{edit(0, 1, 1, "x", ""), edit(0, 0, 3, "y", ""), true},
		{edit(0, 0, 2, "x", ""), edit(0, 2, 4, "y", ""), false},
		{edit(0, 0, 3, "x", ""), edit(0, 2, 4, "y", ""), true},
	}
	for i, tc := range cases {
		if got := spansConflict(tc.a, tc.b); got != tc.want {
			t.Errorf("case %d: got %v, want %v", i, got, tc.want)
		}
	}
}

func TestCandidatesKeepsFixesOfTheDiagnostic(t *testing.T) {
	d := problem(0, 0, 1)
	ps := []correction.Proposal{
		{RuleID: "add-cast", Kind: correction.KindFix, Code: diag.SemTypeMismatch},
		{RuleID: "add-block", Kind: correction.KindAssist},
		{RuleID: "remove-final", Kind: correction.KindFix, Code: diag.SemFinalAssignment},
	}
	got := Candidates(d, ps)
	if len(got) != 1 || got[0].Proposal.RuleID != "add-cast" {
		t.Fatalf("unexpected candidates %+v", got)
	}
}
