package sema

import (
	"mend/internal/ast"
	"mend/internal/symbols"
)

// VisibleVariables returns locals, parameters and fields in scope at id,
// innermost first. A name shadowed by an inner declaration appears once.
func (u *Unit) VisibleVariables(at ast.NodeID) []*symbols.Symbol {
	t := u.Tree
	seen := make(map[string]bool)
	var out []*symbols.Symbol
	add := func(sym *symbols.Symbol) {
		if sym == nil || seen[sym.Name] {
			return
		}
		seen[sym.Name] = true
		out = append(out, sym)
	}

	child := at
	for cur := t.Parent(at); cur != ast.NoNodeID; child, cur = cur, t.Parent(cur) {
		switch t.Kind(cur) {
		case ast.KindBlock, ast.KindSwitch:
			prop := ast.BlockStatements
			if t.Kind(cur) == ast.KindSwitch {
				prop = ast.SwitchStatements
			}
			stmts := t.List(cur, prop)
			for i := len(stmts) - 1; i >= 0; i-- {
				if stmts[i] == child || t.Span(stmts[i]).Start >= t.Span(child).Start {
					continue
				}
				u.addLocals(stmts[i], add)
			}
		case ast.KindLocalVarDecl:
			frags := t.List(cur, ast.LocalFragments)
			for i := len(frags) - 1; i >= 0; i-- {
				if t.Span(frags[i]).End <= t.Span(child).Start {
					add(u.Table.DeclaredBy(frags[i]))
				}
			}
		case ast.KindFor:
			if t.Location(child) != ast.ForInit {
				for _, init := range t.List(cur, ast.ForInit) {
					u.addLocals(init, add)
				}
			}
		case ast.KindCatch:
			if t.Location(child) == ast.CatchBody {
				add(u.Table.DeclaredBy(t.Child(cur, ast.CatchParam)))
			}
		case ast.KindMethodDecl:
			if t.Location(child) == ast.MethodBody {
				for _, p := range t.List(cur, ast.MethodParams) {
					add(u.Table.DeclaredBy(p))
				}
			}
		case ast.KindTypeDecl:
			if cls := u.Table.DeclaredBy(cur); cls != nil {
				for _, f := range cls.AllFields() {
					add(f)
				}
			}
		}
	}
	return out
}

func (u *Unit) addLocals(stmt ast.NodeID, add func(*symbols.Symbol)) {
	t := u.Tree
	if t.Kind(stmt) != ast.KindLocalVarDecl {
		return
	}
	frags := t.List(stmt, ast.LocalFragments)
	for i := len(frags) - 1; i >= 0; i-- {
		add(u.Table.DeclaredBy(frags[i]))
	}
}
