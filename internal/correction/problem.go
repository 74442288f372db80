package correction

import (
	"mend/internal/ast"
	"mend/internal/diag"
)

// ProblemLocation is a reported diagnostic resolved against a tree.
type ProblemLocation struct {
	Offset   uint32
	Length   uint32
	Code     diag.Code
	Severity diag.Severity
	Args     []string
	// Covering is the innermost node containing the range, Covered the
	// outermost node inside it.
	Covering ast.NodeID
	Covered  ast.NodeID
}

// NewProblemLocation locates d in t.
func NewProblemLocation(t *ast.Tree, d diag.Diagnostic) ProblemLocation {
	p := ProblemLocation{
		Offset:   d.Primary.Start,
		Length:   d.Primary.Len(),
		Code:     d.Code,
		Severity: d.Severity,
		Args:     d.Args,
	}
	f := t.Find(p.Offset, p.Length)
	p.Covering, p.Covered = f.Covering, f.Covered
	return p
}

// ProblemLocations locates the diagnostics of t's file, in order.
func ProblemLocations(t *ast.Tree, ds []diag.Diagnostic) []ProblemLocation {
	out := make([]ProblemLocation, 0, len(ds))
	for _, d := range ds {
		if t.File != nil && d.Primary.File != t.File.ID {
			continue
		}
		out = append(out, NewProblemLocation(t, d))
	}
	return out
}

// Arg returns the i-th diagnostic argument or "".
func (p *ProblemLocation) Arg(i int) string {
	if p == nil || i < 0 || i >= len(p.Args) {
		return ""
	}
	return p.Args[i]
}

// End is the offset just past the problem range.
func (p *ProblemLocation) End() uint32 { return p.Offset + p.Length }

// Overlaps reports whether the problem touches [off, off+length].
func (p *ProblemLocation) Overlaps(off, length uint32) bool {
	return p.Offset <= off+length && off <= p.End()
}
