package correction

import (
	"cmp"
	"slices"

	"mend/internal/diag"
	"mend/internal/linked"
	"mend/internal/rewrite"
	"mend/internal/source"
)

// Proposal is a compiled, immutable suggestion.
type Proposal struct {
	RuleID string
	Kind   Kind
	// Code is the diagnostic a quick-fix answers, UnknownCode for assists.
	Code      diag.Code
	Label     string
	Relevance int
	// File is the unit the request was made for; Groups and End refer to it.
	File source.FileID
	// Edits are ordered by file, then offset. Edits outside File come from
	// rules that declare something in another unit.
	Edits  []diag.TextEdit
	Groups []linked.ResolvedGroup
	// End is the cursor offset in File after applying, -1 when unknown.
	End int
}

// EditsFor returns the edits of one file.
func (p *Proposal) EditsFor(file source.FileID) []diag.TextEdit {
	var out []diag.TextEdit
	for _, e := range p.Edits {
		if e.Span.File == file {
			out = append(out, e)
		}
	}
	return out
}

// Files returns the files the proposal touches, File first.
func (p *Proposal) Files() []source.FileID {
	out := []source.FileID{p.File}
	for _, e := range p.Edits {
		if !slices.Contains(out, e.Span.File) {
			out = append(out, e.Span.File)
		}
	}
	return out
}

// MultiUnit reports whether applying p edits files other than File.
func (p *Proposal) MultiUnit() bool { return len(p.Files()) > 1 }

// ApplyEdit applies the proposal's edits of its own file to content, all or
// nothing. content is not modified.
func ApplyEdit(content []byte, p *Proposal) ([]byte, error) {
	return rewrite.ApplyEdits(content, p.EditsFor(p.File))
}

func sortEdits(edits []diag.TextEdit) {
	slices.SortStableFunc(edits, func(a, b diag.TextEdit) int {
		return cmp.Or(cmp.Compare(a.Span.File, b.Span.File), cmp.Compare(a.Span.Start, b.Span.Start))
	})
}
