package symbols

import "mend/internal/ast"

// Table is the per-unit side table of resolution results keyed by node id.
type Table struct {
	bindings map[ast.NodeID]*Symbol
	types    map[ast.NodeID]*Type
	decls    map[ast.NodeID]*Symbol
	refs     map[*Symbol][]ast.NodeID
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		bindings: make(map[ast.NodeID]*Symbol),
		types:    make(map[ast.NodeID]*Type),
		decls:    make(map[ast.NodeID]*Symbol),
		refs:     make(map[*Symbol][]ast.NodeID),
	}
}

// Bind records that the reference id resolves to sym.
func (t *Table) Bind(id ast.NodeID, sym *Symbol) {
	if sym == nil || !id.IsValid() {
		return
	}
	if _, dup := t.bindings[id]; !dup {
		t.refs[sym] = append(t.refs[sym], id)
	}
	t.bindings[id] = sym
}

// SetType records the type of an expression or type node.
func (t *Table) SetType(id ast.NodeID, typ *Type) {
	if typ == nil || !id.IsValid() {
		return
	}
	t.types[id] = typ
}

// Declare records that the declaration node decl introduces sym.
func (t *Table) Declare(decl ast.NodeID, sym *Symbol) {
	t.decls[decl] = sym
}

// Binding returns the symbol a reference or declaration name resolves to.
func (t *Table) Binding(id ast.NodeID) *Symbol {
	if s, ok := t.bindings[id]; ok {
		return s
	}
	return t.decls[id]
}

func (t *Table) TypeOf(id ast.NodeID) *Type {
	return t.types[id]
}

// DeclaredBy returns the symbol declared by a declaration node.
func (t *Table) DeclaredBy(decl ast.NodeID) *Symbol {
	return t.decls[decl]
}

// References returns the reference nodes bound to sym, in resolution order.
func (t *Table) References(sym *Symbol) []ast.NodeID {
	return t.refs[sym]
}
