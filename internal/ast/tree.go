package ast

import (
	"fmt"

	"mend/internal/source"
)

// Tree is an immutable syntax tree over one file. After parsing only reads are
// allowed; edit scripts allocate new nodes in an Overlay.
type Tree struct {
	File *source.File
	Lang Lang
	Root NodeID

	nodes *Arena[Node]
	// base — исходное дерево для overlay; его узлы доступны только на чтение.
	base    *Tree
	baseLen uint32
}

// NewTree creates an empty tree for file.
func NewTree(file *source.File, lang Lang) *Tree {
	return &Tree{File: file, Lang: lang, nodes: NewArena[Node](256)}
}

// Overlay returns a tree that reads through to t and allocates new nodes
// with ids above every id of t. Nodes of t cannot be modified through it.
func (t *Tree) Overlay() *Tree {
	return &Tree{
		File:    t.File,
		Lang:    t.Lang,
		Root:    t.Root,
		nodes:   NewArena[Node](16),
		base:    t,
		baseLen: t.Len(),
	}
}

// Base returns the tree an overlay reads through to, or t itself.
func (t *Tree) Base() *Tree {
	if t.base != nil {
		return t.base
	}
	return t
}

// Len is the highest node id allocated so far.
func (t *Tree) Len() uint32 {
	return t.baseLen + t.nodes.Len()
}

// IsSynthetic reports whether id was allocated in this overlay (not parsed).
func (t *Tree) IsSynthetic(id NodeID) bool {
	return t.base != nil && uint32(id) > t.baseLen
}

// Node returns the node payload or nil for NoNodeID / unknown ids.
func (t *Tree) Node(id NodeID) *Node {
	if id == NoNodeID {
		return nil
	}
	if t.base != nil && uint32(id) <= t.baseLen {
		return t.base.Node(id)
	}
	return t.nodes.Get(uint32(id) - t.baseLen)
}

// Kind returns the kind of id, KindInvalid for NoNodeID.
func (t *Tree) Kind(id NodeID) Kind {
	if n := t.Node(id); n != nil {
		return n.Kind
	}
	return KindInvalid
}

func (t *Tree) Span(id NodeID) source.Span {
	if n := t.Node(id); n != nil {
		return n.Span
	}
	return source.Span{}
}

func (t *Tree) Parent(id NodeID) NodeID {
	if n := t.Node(id); n != nil {
		return n.Parent
	}
	return NoNodeID
}

// Location returns the property of the parent holding id.
func (t *Tree) Location(id NodeID) Prop {
	if n := t.Node(id); n != nil {
		return n.Loc
	}
	return PropNone
}

// Text returns the original source text of a parsed node.
func (t *Tree) Text(id NodeID) string {
	n := t.Node(id)
	if n == nil || t.File == nil || t.IsSynthetic(id) {
		return ""
	}
	return t.File.Text(n.Span)
}

// NewNode allocates a node of kind with the given span.
func (t *Tree) NewNode(kind Kind, span source.Span) NodeID {
	n := Node{Kind: kind, Span: span}
	if props := kind.Props(); len(props) > 0 {
		n.slots = make([]slot, len(props))
	}
	return NodeID(t.baseLen + t.nodes.Allocate(n))
}

func (t *Tree) mutable(id NodeID) *Node {
	if t.base != nil && uint32(id) <= t.baseLen {
		panic(fmt.Errorf("ast: node %d belongs to the base tree and is read-only", id))
	}
	n := t.nodes.Get(uint32(id) - t.baseLen)
	if n == nil {
		panic(fmt.Errorf("ast: unknown node %d", id))
	}
	return n
}

// Mutable returns a writable payload for a node allocated in t.
func (t *Tree) Mutable(id NodeID) *Node {
	return t.mutable(id)
}

func (t *Tree) slotOf(n *Node, p Prop) *slot {
	i := slotIndex(n.Kind, p)
	if i < 0 {
		panic(fmt.Errorf("ast: %s has no property %s", n.Kind, p))
	}
	return &n.slots[i]
}

func (t *Tree) adopt(parent NodeID, p Prop, child NodeID) {
	if child == NoNodeID {
		return
	}
	if t.base != nil && uint32(child) <= t.baseLen {
		panic(fmt.Errorf("ast: original node %d cannot be re-parented; use a move or copy placeholder", child))
	}
	c := t.mutable(child)
	c.Parent = parent
	c.Loc = p
}

// Set stores child in the single-valued property p of parent.
func (t *Tree) Set(parent NodeID, p Prop, child NodeID) {
	n := t.mutable(parent)
	if p.IsList() {
		panic(fmt.Errorf("ast: %s is list-valued", p))
	}
	t.slotOf(n, p).one = child
	t.adopt(parent, p, child)
}

// Append adds child to the list property p of parent.
func (t *Tree) Append(parent NodeID, p Prop, child NodeID) {
	n := t.mutable(parent)
	if !p.IsList() {
		panic(fmt.Errorf("ast: %s is single-valued", p))
	}
	s := t.slotOf(n, p)
	s.many = append(s.many, child)
	t.adopt(parent, p, child)
}

// Child returns the value of a single-valued property, NoNodeID when empty.
func (t *Tree) Child(id NodeID, p Prop) NodeID {
	n := t.Node(id)
	if n == nil {
		return NoNodeID
	}
	i := slotIndex(n.Kind, p)
	if i < 0 || n.slots == nil {
		return NoNodeID
	}
	return n.slots[i].one
}

// List returns the elements of a list property. The slice must not be modified.
func (t *Tree) List(id NodeID, p Prop) []NodeID {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	i := slotIndex(n.Kind, p)
	if i < 0 || n.slots == nil {
		return nil
	}
	return n.slots[i].many
}

// Children returns all children of id in source order.
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	var out []NodeID
	for i, p := range n.Kind.Props() {
		s := n.slots[i]
		if p.IsList() {
			out = append(out, s.many...)
		} else if s.one != NoNodeID {
			out = append(out, s.one)
		}
	}
	return out
}

// IndexInList returns the position of id in its parent's list property, or -1.
func (t *Tree) IndexInList(id NodeID) int {
	n := t.Node(id)
	if n == nil || !n.Loc.IsList() {
		return -1
	}
	for i, c := range t.List(n.Parent, n.Loc) {
		if c == id {
			return i
		}
	}
	return -1
}

// IsAncestor reports whether anc is id or one of its ancestors.
func (t *Tree) IsAncestor(anc, id NodeID) bool {
	for cur := id; cur != NoNodeID; cur = t.Parent(cur) {
		if cur == anc {
			return true
		}
	}
	return false
}

// Unit returns the root compilation unit.
func (t *Tree) Unit() NodeID {
	return t.Root
}
