package rewrite

import (
	"mend/internal/ast"
	"mend/internal/format"
	"mend/internal/source"
)

// Builder records structural edits against a parsed tree and compiles them
// into text edits. The parsed tree is never modified: new nodes are allocated
// in an overlay and operations live in side tables keyed by node id.
// A Builder belongs to one proposal and is not safe for concurrent use.
type Builder struct {
	base *ast.Tree
	tree *ast.Tree
	opt  format.Options

	ops     map[ast.NodeID]*nodeOp
	inserts map[slotKey][]insertion
	mods    map[ast.NodeID]modOp
	texts   []textOp
	errs    []error
	seq     int
}

type opKind uint8

const (
	opReplace opKind = iota + 1
	opRemove
)

func (k opKind) String() string {
	if k == opRemove {
		return "removed"
	}
	return "replaced"
}

type nodeOp struct {
	kind   opKind
	target ast.NodeID
	repl   ast.NodeID
	seq    int
	// implicit: удаление источника move, добавленное компилятором
	implicit bool
}

type slotKey struct {
	owner ast.NodeID
	prop  ast.Prop
}

type insertion struct {
	index int
	node  ast.NodeID
	seq   int
}

type modOp struct {
	mods ast.Modifiers
	seq  int
}

type textOp struct {
	start, end uint32
	text       string
	seq        int
}

// NewBuilder starts an empty edit script over t. When t is an overlay its
// base tree is used.
func NewBuilder(t *ast.Tree, opt format.Options) *Builder {
	base := t.Base()
	return &Builder{
		base:    base,
		tree:    base.Overlay(),
		opt:     opt,
		ops:     make(map[ast.NodeID]*nodeOp),
		inserts: make(map[slotKey][]insertion),
		mods:    make(map[ast.NodeID]modOp),
	}
}

// Tree returns the overlay holding both the parsed nodes and the nodes
// created through the builder.
func (b *Builder) Tree() *ast.Tree { return b.tree }

// Options returns the layout options used when printing new nodes.
func (b *Builder) Options() format.Options { return b.opt }

// Empty reports whether no operation has been recorded.
func (b *Builder) Empty() bool {
	return len(b.ops) == 0 && len(b.inserts) == 0 && len(b.mods) == 0 && len(b.texts) == 0
}

func (b *Builder) next() int {
	b.seq++
	return b.seq
}

func (b *Builder) fail(err error) {
	b.errs = append(b.errs, err)
}

func (b *Builder) original(op string, id ast.NodeID) bool {
	if id == ast.NoNodeID || b.tree.Node(id) == nil {
		b.fail(usage(op, id, "unknown node"))
		return false
	}
	if b.tree.IsSynthetic(id) {
		b.fail(usage(op, id, "new nodes are changed by building them, not by edit operations"))
		return false
	}
	return true
}

func (b *Builder) synthetic(op string, id ast.NodeID) bool {
	if id == ast.NoNodeID || b.tree.Node(id) == nil {
		b.fail(usage(op, id, "unknown node"))
		return false
	}
	if !b.tree.IsSynthetic(id) {
		b.fail(usage(op, id, "parsed nodes enter new positions only through move or copy placeholders"))
		return false
	}
	return true
}

func (b *Builder) record(op string, o *nodeOp) {
	if prev, ok := b.ops[o.target]; ok {
		b.fail(usage(op, o.target, "node is already %s", prev.kind))
		return
	}
	o.seq = b.next()
	b.ops[o.target] = o
}

// Replace substitutes target with the new node repl.
func (b *Builder) Replace(target, repl ast.NodeID) {
	if !b.original("replace", target) || !b.synthetic("replace", repl) {
		return
	}
	b.record("replace", &nodeOp{kind: opReplace, target: target, repl: repl})
}

// Remove deletes target from its list or optional slot together with the
// separator that belongs to it.
func (b *Builder) Remove(target ast.NodeID) {
	if !b.original("remove", target) {
		return
	}
	loc := b.tree.Location(target)
	if info := loc.Info(); !info.List && !info.Optional {
		b.fail(usage("remove", target, "%s is a required slot", loc))
		return
	}
	b.record("remove", &nodeOp{kind: opRemove, target: target})
}

// InsertAt inserts node into the list property prop of owner before the
// element at index of the original list. Insertions at the same index keep
// their recording order.
func (b *Builder) InsertAt(owner ast.NodeID, prop ast.Prop, index int, node ast.NodeID) {
	if !b.original("insert", owner) || !b.synthetic("insert", node) {
		return
	}
	if info := prop.Info(); !info.List || info.Owner != b.tree.Kind(owner) {
		b.fail(usage("insert", owner, "%s is not a list of %s", prop, b.tree.Kind(owner)))
		return
	}
	if n := len(b.tree.List(owner, prop)); index < 0 || index > n {
		b.fail(usage("insert", owner, "index %d out of range [0, %d]", index, n))
		return
	}
	key := slotKey{owner: owner, prop: prop}
	b.inserts[key] = append(b.inserts[key], insertion{index: index, node: node, seq: b.next()})
}

// InsertFirst inserts node at the start of a list property.
func (b *Builder) InsertFirst(owner ast.NodeID, prop ast.Prop, node ast.NodeID) {
	b.InsertAt(owner, prop, 0, node)
}

// InsertLast appends node to a list property.
func (b *Builder) InsertLast(owner ast.NodeID, prop ast.Prop, node ast.NodeID) {
	b.InsertAt(owner, prop, len(b.tree.List(owner, prop)), node)
}

// InsertBefore inserts node in front of the list element anchor.
func (b *Builder) InsertBefore(anchor, node ast.NodeID) {
	i := b.tree.IndexInList(anchor)
	if i < 0 {
		b.fail(usage("insert", anchor, "anchor is not a list element"))
		return
	}
	b.InsertAt(b.tree.Parent(anchor), b.tree.Location(anchor), i, node)
}

// InsertAfter inserts node behind the list element anchor.
func (b *Builder) InsertAfter(anchor, node ast.NodeID) {
	i := b.tree.IndexInList(anchor)
	if i < 0 {
		b.fail(usage("insert", anchor, "anchor is not a list element"))
		return
	}
	b.InsertAt(b.tree.Parent(anchor), b.tree.Location(anchor), i+1, node)
}

// Set stores node in the single-valued property prop of owner. An occupied
// slot is replaced, an empty optional slot is filled.
func (b *Builder) Set(owner ast.NodeID, prop ast.Prop, node ast.NodeID) {
	if !b.original("set", owner) || !b.synthetic("set", node) {
		return
	}
	info := prop.Info()
	if info.List || info.Owner != b.tree.Kind(owner) {
		b.fail(usage("set", owner, "%s is not a single slot of %s", prop, b.tree.Kind(owner)))
		return
	}
	if cur := b.tree.Child(owner, prop); cur != ast.NoNodeID {
		b.Replace(cur, node)
		return
	}
	key := slotKey{owner: owner, prop: prop}
	if len(b.inserts[key]) > 0 {
		b.fail(usage("set", owner, "%s is already set", prop))
		return
	}
	b.inserts[key] = []insertion{{node: node, seq: b.next()}}
}

// SetModifiers rewrites the modifier keywords of a declaration.
func (b *Builder) SetModifiers(decl ast.NodeID, mods ast.Modifiers) {
	if !b.original("modifiers", decl) {
		return
	}
	switch b.tree.Kind(decl) {
	case ast.KindTypeDecl, ast.KindFieldDecl, ast.KindMethodDecl, ast.KindParam, ast.KindLocalVarDecl:
	default:
		b.fail(usage("modifiers", decl, "%s has no modifiers", b.tree.Kind(decl)))
		return
	}
	if _, ok := b.mods[decl]; ok {
		b.fail(usage("modifiers", decl, "modifiers already changed"))
		return
	}
	b.mods[decl] = modOp{mods: mods, seq: b.next()}
}

// InsertText inserts verbatim text at a source offset. It serves fixes for
// broken code where no node exists to edit.
func (b *Builder) InsertText(offset uint32, text string) {
	b.ReplaceText(source.Span{File: b.base.File.ID, Start: offset, End: offset}, text)
}

// ReplaceText replaces a raw source range with verbatim text.
func (b *Builder) ReplaceText(sp source.Span, text string) {
	if sp.End < sp.Start || sp.End > b.base.File.Len() {
		b.fail(usage("text", ast.NoNodeID, "span %s outside the file", sp))
		return
	}
	b.texts = append(b.texts, textOp{start: sp.Start, end: sp.End, text: text, seq: b.next()})
}

// MoveTarget returns a placeholder for src. Using it moves the source text:
// it is removed from its old place. A move that is never used leaves the
// source untouched; using one twice is a usage error.
func (b *Builder) MoveTarget(src ast.NodeID) ast.NodeID {
	return b.placeholder("move", src, ast.FlagMove)
}

// CopyTarget returns a placeholder that renders the text of src and may be
// used any number of times.
func (b *Builder) CopyTarget(src ast.NodeID) ast.NodeID {
	return b.placeholder("copy", src, ast.FlagCopy)
}

func (b *Builder) placeholder(op string, src ast.NodeID, flag ast.NodeFlags) ast.NodeID {
	id := b.tree.NewNode(ast.KindPlaceholder, source.Span{})
	if !b.original(op, src) {
		return id
	}
	n := b.tree.Mutable(id)
	n.Ref = src
	n.Tag = b.tree.Kind(src)
	n.Flags |= flag
	return id
}

// StringPlaceholder synthesizes verbatim text standing for a node of kind.
// Continuation lines are indented at the landing position.
func (b *Builder) StringPlaceholder(text string, kind ast.Kind) ast.NodeID {
	id := b.tree.NewNode(ast.KindPlaceholder, source.Span{})
	n := b.tree.Mutable(id)
	n.Text = text
	n.Tag = kind
	n.Flags |= ast.FlagString
	return id
}
