package symbols

import "mend/internal/ast"

// Resolver answers binding queries for one tree. Implementations are
// read-only after construction and safe for concurrent use.
type Resolver interface {
	// Binding resolves a name, call, constructor invocation, type reference
	// or declaration node to its symbol; nil when unresolved.
	Binding(id ast.NodeID) *Symbol
	// TypeOf returns the type of an expression or type node; nil when unknown.
	TypeOf(id ast.NodeID) *Type
	// DeclaredBy returns the symbol introduced by a declaration node.
	DeclaredBy(decl ast.NodeID) *Symbol
	// References returns reference nodes of sym in this tree.
	References(sym *Symbol) []ast.NodeID
	// LookupType finds a class by simple name.
	LookupType(name string) *Symbol
	// Types returns every class visible to the tree, source classes first.
	Types() []*Symbol
	// VisibleVariables returns the variables in scope at id, innermost first.
	VisibleVariables(at ast.NodeID) []*Symbol
	Universe() *Universe
	// Package is the package of the tree's compilation unit.
	Package() string
}

// nopResolver is used for trees without semantic information.
type nopResolver struct{ u *Universe }

// NopResolver returns a Resolver that resolves nothing; rules that need
// bindings treat its answers as missing.
func NopResolver(u *Universe) Resolver {
	return nopResolver{u: u}
}

func (nopResolver) Binding(ast.NodeID) *Symbol            { return nil }
func (nopResolver) TypeOf(ast.NodeID) *Type               { return nil }
func (nopResolver) DeclaredBy(ast.NodeID) *Symbol         { return nil }
func (nopResolver) References(*Symbol) []ast.NodeID       { return nil }
func (nopResolver) LookupType(string) *Symbol             { return nil }
func (nopResolver) Types() []*Symbol                      { return nil }
func (nopResolver) VisibleVariables(ast.NodeID) []*Symbol { return nil }
func (r nopResolver) Universe() *Universe                 { return r.u }
func (nopResolver) Package() string                       { return "" }

// HasBindings reports whether r can answer binding queries at all.
func HasBindings(r Resolver) bool {
	if r == nil {
		return false
	}
	_, nop := r.(nopResolver)
	return !nop
}
