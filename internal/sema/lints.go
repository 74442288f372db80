package sema

import (
	"strings"
	"unicode"

	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/symbols"
)

// noteOpaque remembers the identifiers of unparsed text so that variables
// used only there are not reported as unused.
func (u *Unit) noteOpaque(text string) {
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$')
	}) {
		u.opaque[w] = true
	}
}

func (u *Unit) unused(sym *symbols.Symbol) bool {
	return u.reads[sym] == 0 && !u.opaque[sym.Name]
}

func (c *checker) lintUnusedLocals() {
	for _, l := range c.locals {
		if c.unit.unused(l) {
			c.report(diag.LntUnusedLocal, l.Decl.Name, l.Name)
		}
	}
}

// lintUnusedThrows reports checked exceptions in the throws clause that no
// statement of the body can throw.
func (c *checker) lintUnusedThrows(decl ast.NodeID) {
	m := c.method
	if m == nil || m.Mods.Has(ast.ModAbstract|ast.ModNative) {
		return
	}
	nodes := c.tree.List(decl, ast.MethodThrows)
	for i, node := range nodes {
		typ := c.table.TypeOf(node)
		if typ == nil || !c.u.IsChecked(typ) || c.u.IsSubtype(c.u.Exception, typ) {
			continue
		}
		used := false
		for _, th := range c.thrown {
			if c.u.IsSubtype(th, typ) || c.u.IsSubtype(typ, th) {
				used = true
				break
			}
		}
		if !used {
			c.report(diag.LntUnusedThrows, nodes[i], typ.String())
		}
	}
}

// lintUnit reports unused private members and stray semicolons in class bodies.
func (u *Unit) lintUnit() {
	t := u.Tree
	for _, decl := range t.List(t.Unit(), ast.UnitTypes) {
		if t.Kind(decl) == ast.KindEmptyDecl {
			u.reportAt(diag.LntSuperfluousSemicolon, decl)
		}
	}
	for _, cls := range u.classes {
		for _, member := range t.List(cls.Decl.Node, ast.TypeBody) {
			if t.Kind(member) == ast.KindEmptyDecl {
				u.reportAt(diag.LntSuperfluousSemicolon, member)
			}
		}
		for _, m := range cls.Members {
			if !m.Mods.Has(ast.ModPrivate) || !m.Decl.IsValid() || !u.unused(m) {
				continue
			}
			switch {
			case m.Kind == symbols.SymbolField:
				u.reportAt(diag.LntUnusedPrivateField, m.Decl.Name, m.Name)
			case m.Kind == symbols.SymbolMethod && !m.IsConstructor():
				u.reportAt(diag.LntUnusedPrivateMethod, m.Decl.Name, m.Name)
			}
		}
	}
}
