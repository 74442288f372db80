package ast

// Action tells Walk how to continue after visiting a node.
type Action uint8

const (
	Continue Action = iota
	SkipChildren
	Stop
)

// Visitor is called in pre-order for every node.
type Visitor func(id NodeID, n *Node) Action

// Walk visits id and its descendants in source order. It returns false when
// the visitor stopped the walk.
func (t *Tree) Walk(id NodeID, visit Visitor) bool {
	n := t.Node(id)
	if n == nil {
		return true
	}
	switch visit(id, n) {
	case Stop:
		return false
	case SkipChildren:
		return true
	}
	for _, c := range t.Children(id) {
		if !t.Walk(c, visit) {
			return false
		}
	}
	return true
}

// Any reports whether pred holds for id or any descendant; the walk stops at
// the first hit.
func (t *Tree) Any(id NodeID, pred func(id NodeID, n *Node) bool) bool {
	found := false
	t.Walk(id, func(c NodeID, n *Node) Action {
		if pred(c, n) {
			found = true
			return Stop
		}
		return Continue
	})
	return found
}

// Collect returns every node under id (inclusive) for which pred holds, in source order.
func (t *Tree) Collect(id NodeID, pred func(id NodeID, n *Node) bool) []NodeID {
	var out []NodeID
	t.Walk(id, func(c NodeID, n *Node) Action {
		if pred(c, n) {
			out = append(out, c)
		}
		return Continue
	})
	return out
}

// Ancestor returns the closest proper ancestor of id whose kind is one of kinds.
func (t *Tree) Ancestor(id NodeID, kinds ...Kind) NodeID {
	for cur := t.Parent(id); cur != NoNodeID; cur = t.Parent(cur) {
		k := t.Kind(cur)
		for _, want := range kinds {
			if k == want {
				return cur
			}
		}
	}
	return NoNodeID
}
