package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"mend/internal/ast"
	"mend/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed tree:
// 1) the root span is non-empty and within file content bounds
// 2) every child span is contained in its parent span
// 3) siblings appear in source order without overlapping
// 4) parent links and locations agree with the slots holding each child
func CheckSpanInvariants(t *ast.Tree, sf *source.File) error {
	if t == nil || sf == nil {
		return fmt.Errorf("nil tree or file")
	}
	root := t.Node(t.Root)
	if root == nil {
		return fmt.Errorf("root node not found")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if root.Span.End > lenContent {
		return fmt.Errorf("root span end beyond content: %d > %d", root.Span.End, lenContent)
	}
	return checkNode(t, t.Root)
}

func checkNode(t *ast.Tree, id ast.NodeID) error {
	n := t.Node(id)
	prevEnd := n.Span.Start
	for _, p := range n.Kind.Props() {
		var kids []ast.NodeID
		if p.IsList() {
			kids = t.List(id, p)
		} else if c := t.Child(id, p); c != ast.NoNodeID {
			kids = []ast.NodeID{c}
		}
		for _, c := range kids {
			cn := t.Node(c)
			if cn == nil {
				return fmt.Errorf("%s: nil child in %s", n.Kind, p)
			}
			if cn.Parent != id || cn.Loc != p {
				return fmt.Errorf("%s in %s: parent link points to %d/%s", cn.Kind, p, cn.Parent, cn.Loc)
			}
			if cn.Span.Start < n.Span.Start || cn.Span.End > n.Span.End {
				return fmt.Errorf("%s span %v is outside parent %s span %v", cn.Kind, cn.Span, n.Kind, n.Span)
			}
			// вложенность соседей: только в порядке исходника
			if cn.Span.Start < prevEnd {
				return fmt.Errorf("%s span %v overlaps its previous sibling", cn.Kind, cn.Span)
			}
			prevEnd = cn.Span.End
			if err := checkNode(t, c); err != nil {
				return err
			}
		}
	}
	return nil
}
