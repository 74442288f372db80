package ast

// Finder locates the nodes around a selection [Start, Start+Length).
//
// Covering is the innermost node whose range contains the selection. Covered
// is the outermost node lying inside the selection; when a node matches the
// selection exactly, the innermost such node wins.
type Finder struct {
	Start, End uint32
	Covering   NodeID
	Covered    NodeID
}

// Find runs a Finder over t.
func (t *Tree) Find(start, length uint32) Finder {
	f := Finder{Start: start, End: start + length}
	t.Walk(t.Root, func(id NodeID, n *Node) Action {
		ns, ne := n.Span.Start, n.Span.End
		if ne < f.Start || f.End < ns {
			return SkipChildren
		}
		if ns <= f.Start && f.End <= ne {
			f.Covering = id
		}
		if f.Start <= ns && ne <= f.End {
			if f.Covering == id {
				f.Covered = id
				return Continue
			}
			if f.Covered == NoNodeID {
				f.Covered = id
			}
			return SkipChildren
		}
		return Continue
	})
	return f
}

// CoveringNode is a shortcut for Find(...).Covering.
func (t *Tree) CoveringNode(start, length uint32) NodeID {
	return t.Find(start, length).Covering
}

// CoveredNode is a shortcut for Find(...).Covered.
func (t *Tree) CoveredNode(start, length uint32) NodeID {
	return t.Find(start, length).Covered
}
