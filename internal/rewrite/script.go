package rewrite

import (
	"cmp"
	"fmt"
	"slices"

	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/format"
	"mend/internal/source"
)

// Script is a compiled edit script: non-overlapping text edits against the
// original file in ascending order, plus the positions of the printed nodes
// in the resulting text.
type Script struct {
	Edits []diag.TextEdit

	base    *ast.Tree
	regions []region
	ranges  map[ast.NodeID]format.Range
}

func newScript(base *ast.Tree, regs []region) *Script {
	s := &Script{base: base, regions: regs, ranges: make(map[ast.NodeID]format.Range)}
	f := base.File
	delta := 0
	for _, r := range regs {
		at := int(r.start) + delta
		for id, rg := range r.ranges {
			s.ranges[id] = rg.Shift(at)
		}
		delta += len(r.text) - int(r.end-r.start)
	}
	// соседние регионы сливаются в одну правку
	for _, r := range regs {
		if r.start == r.end && r.text == "" {
			continue
		}
		if k := len(s.Edits) - 1; k >= 0 && s.Edits[k].Span.End == r.start {
			e := &s.Edits[k]
			e.Span.End = r.end
			e.NewText += r.text
			e.OldText = f.Text(e.Span)
			continue
		}
		sp := source.Span{File: f.ID, Start: r.start, End: r.end}
		s.Edits = append(s.Edits, diag.TextEdit{Span: sp, NewText: r.text, OldText: f.Text(sp)})
	}
	return s
}

// Empty reports whether the script changes nothing.
func (s *Script) Empty() bool { return len(s.Edits) == 0 }

// Range returns where node id ends up in the resulting text. New nodes and
// placeholders report their printed range; parsed nodes outside every edit
// are shifted, and those containing edits grow with them. A replaced node
// reports its replacement; removed and moved nodes have no range.
func (s *Script) Range(id ast.NodeID) (format.Range, bool) {
	if rg, ok := s.ranges[id]; ok {
		return rg, true
	}
	if s.base.Node(id) == nil || uint32(id) > s.base.Len() {
		return format.Range{}, false
	}
	sp := s.base.Span(id)
	before, inside := 0, 0
	for _, r := range s.regions {
		d := len(r.text) - int(r.end-r.start)
		switch {
		case r.end <= sp.Start:
			before += d
		case r.start >= sp.End:
			return format.Range{Start: int(sp.Start) + before, End: int(sp.End) + before + inside}, true
		case r.start >= sp.Start && r.end <= sp.End:
			inside += d
		default:
			return format.Range{}, false
		}
	}
	return format.Range{Start: int(sp.Start) + before, End: int(sp.End) + before + inside}, true
}

// MapOffset maps an offset of the original text into the result. An offset
// at the start of a replaced range maps to the start of its replacement,
// one inside it to the end of the replacement.
func (s *Script) MapOffset(off uint32) int {
	delta := 0
	for _, r := range s.regions {
		if r.start > off {
			break
		}
		if off < r.end {
			if off == r.start {
				return int(r.start) + delta
			}
			return int(r.start) + delta + len(r.text)
		}
		delta += len(r.text) - int(r.end-r.start)
	}
	return int(off) + delta
}

// EditEnd returns the end of the last edit in result coordinates, -1 for an
// empty script.
func (s *Script) EditEnd() int {
	if len(s.regions) == 0 {
		return -1
	}
	delta := 0
	end := -1
	for _, r := range s.regions {
		delta += len(r.text) - int(r.end-r.start)
		end = int(r.end) + delta
	}
	return end
}

// Apply applies the script to the original content.
func (s *Script) Apply(content []byte) ([]byte, error) {
	return ApplyEdits(content, s.Edits)
}

// ApplyEdits applies non-overlapping edits to content all-or-nothing: every
// old-text guard is checked before the result is assembled, and content
// itself is never modified.
func ApplyEdits(content []byte, edits []diag.TextEdit) ([]byte, error) {
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b diag.TextEdit) int {
		return cmp.Compare(a.Span.Start, b.Span.Start)
	})
	n := u32(len(content))
	for i, e := range sorted {
		if e.Span.End < e.Span.Start || e.Span.End > n {
			return nil, fmt.Errorf("rewrite: edit %s outside the buffer", e.Span)
		}
		if i > 0 && e.Span.Start < sorted[i-1].Span.End {
			return nil, fmt.Errorf("rewrite: edits %s and %s overlap", sorted[i-1].Span, e.Span)
		}
		if e.OldText != "" && string(content[e.Span.Start:e.Span.End]) != e.OldText {
			return nil, fmt.Errorf("rewrite: buffer changed at %s", e.Span)
		}
	}
	out := slices.Clone(content)
	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		out = slices.Concat(out[:e.Span.Start], []byte(e.NewText), out[e.Span.End:])
	}
	return out, nil
}
