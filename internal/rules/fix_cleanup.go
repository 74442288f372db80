package rules

import (
	"fmt"

	"mend/internal/ast"
	"mend/internal/correction"
	"mend/internal/query"
	"mend/internal/symbols"
)

type uninitialized struct {
	frag ast.NodeID
	sym  *symbols.Symbol
}

func matchInitializeVariable(cx *correction.Context) (uninitialized, bool) {
	if !cx.HasBindings() {
		return uninitialized{}, false
	}
	t := cx.Tree
	sym := cx.Binding(problemNode(cx, ast.KindName))
	if sym == nil || sym.Kind != symbols.SymbolLocal || sym.Type == nil {
		return uninitialized{}, false
	}
	frag := declarationIn(t, sym)
	if t.Kind(frag) != ast.KindVarFragment || t.Child(frag, ast.FragmentInit) != ast.NoNodeID {
		return uninitialized{}, false
	}
	return uninitialized{frag: frag, sym: sym}, true
}

func initializeVariable(cx *correction.Context, m uninitialized) []*correction.Draft {
	d := cx.NewDraft(fmt.Sprintf("Initialize variable '%s'", m.sym.Name))
	b := d.Edit
	b.Set(m.frag, ast.FragmentInit, b.DefaultValue(m.sym.Type))
	return single(d)
}

// unusedDecl is a declaration to remove together with the statements
// writing it; writes whose value has side effects keep the value.
type unusedDecl struct {
	name   string
	method bool
	target ast.NodeID
	// init holds the initializer to keep as a statement.
	init   ast.NodeID
	writes []ast.NodeID
}

// writeStatement returns the expression statement consisting of the write
// through ref, NoNodeID when the write is nested in a larger expression.
func writeStatement(t *ast.Tree, ref ast.NodeID) ast.NodeID {
	cur := ref
	if t.Location(cur) == ast.FieldAccessName || t.Location(cur) == ast.QualifiedNameName {
		cur = t.Parent(cur)
	}
	switch t.Location(cur) {
	case ast.AssignLHS, ast.PrefixOperand, ast.PostfixOperand:
		cur = t.Parent(cur)
	default:
		return ast.NoNodeID
	}
	if t.Location(cur) != ast.ExprStmtExpr {
		return ast.NoNodeID
	}
	return t.Parent(cur)
}

// keptValue reports whether value must survive as a statement, and whether
// it can.
func keptValue(t *ast.Tree, value ast.NodeID) (keep, ok bool) {
	if value == ast.NoNodeID || !hasSideEffects(t, value) {
		return false, true
	}
	return true, isStatementExpression(t, value)
}

func matchRemoveUnused(cx *correction.Context) (unusedDecl, bool) {
	if !cx.HasBindings() {
		return unusedDecl{}, false
	}
	t := cx.Tree
	name := problemNode(cx, ast.KindName)
	switch t.Location(name) {
	case ast.MethodName:
		return unusedDecl{name: text(t, name), method: true, target: t.Parent(name)}, true
	case ast.FragmentName:
	default:
		return unusedDecl{}, false
	}
	frag := t.Parent(name)
	sym := cx.Resolver.DeclaredBy(frag)
	if sym == nil {
		return unusedDecl{}, false
	}
	m := unusedDecl{name: sym.Name, target: frag}
	decl := t.Parent(frag)
	if len(t.List(decl, t.Location(frag))) == 1 {
		m.target = decl
	}
	if init := t.Child(frag, ast.FragmentInit); init != ast.NoNodeID {
		keep, ok := keptValue(t, init)
		if !ok || keep && m.target != decl || keep && !inStatementList(t, decl) {
			return unusedDecl{}, false
		}
		if keep {
			m.init = init
		}
	}
	for _, ref := range sortedRefs(cx, sym) {
		stmt := writeStatement(t, ref)
		if stmt == ast.NoNodeID {
			return unusedDecl{}, false
		}
		if e := t.Child(stmt, ast.ExprStmtExpr); t.Kind(e) == ast.KindAssign {
			if _, ok := keptValue(t, t.Child(e, ast.AssignRHS)); !ok {
				return unusedDecl{}, false
			}
		}
		m.writes = append(m.writes, stmt)
	}
	return m, true
}

func removeUnused(cx *correction.Context, m unusedDecl) []*correction.Draft {
	t := cx.Tree
	if m.method {
		d := cx.NewDraft(fmt.Sprintf("Remove method '%s'", m.name))
		d.Edit.Remove(m.target)
		return single(d)
	}
	d := cx.NewDraft(fmt.Sprintf("Remove '%s' and all assignments", m.name))
	b := d.Edit
	if m.init != ast.NoNodeID {
		b.Replace(m.target, b.ExprStmt(b.MoveTarget(m.init)))
	} else {
		b.Remove(m.target)
	}
	for _, stmt := range m.writes {
		e := t.Child(stmt, ast.ExprStmtExpr)
		var kept ast.NodeID
		if t.Kind(e) == ast.KindAssign {
			if rhs := t.Child(e, ast.AssignRHS); hasSideEffects(t, rhs) {
				kept = b.ExprStmt(b.MoveTarget(rhs))
			}
		}
		switch {
		case kept != ast.NoNodeID:
			b.Replace(stmt, kept)
		case inStatementList(t, stmt):
			b.Remove(stmt)
		default:
			b.Replace(stmt, b.Block())
		}
	}
	return single(d)
}

func matchRemoveElse(cx *correction.Context) (ast.NodeID, bool) {
	t := cx.Tree
	els := problemNode(cx)
	if t.Location(els) != ast.IfElse || !inStatementList(t, t.Parent(els)) {
		return ast.NoNodeID, false
	}
	return els, true
}

func removeElse(cx *correction.Context, els ast.NodeID) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Remove 'else'")
	b := d.Edit
	ifStmt := t.Parent(els)
	if t.Kind(els) != ast.KindBlock {
		b.InsertAfter(ifStmt, b.MoveTarget(els))
		return single(d)
	}
	for _, s := range query.Statements(t, els) {
		b.InsertAfter(ifStmt, b.MoveTarget(s))
	}
	b.Remove(els)
	return single(d)
}

func matchRemoveUnreachable(cx *correction.Context) ([]ast.NodeID, bool) {
	t := cx.Tree
	stmt := problemNode(cx)
	if !inStatementList(t, stmt) {
		return nil, false
	}
	out := []ast.NodeID{stmt}
	for _, s := range query.FollowingStatements(t, stmt) {
		if t.Kind(s) == ast.KindSwitchCase {
			break
		}
		out = append(out, s)
	}
	return out, true
}

func removeUnreachable(cx *correction.Context, stmts []ast.NodeID) []*correction.Draft {
	d := cx.NewDraft("Remove unreachable code")
	for _, s := range stmts {
		d.Edit.Remove(s)
	}
	return single(d)
}

type selfAssign struct {
	lhs       ast.NodeID
	field     *symbols.Symbol
	qualifier string
}

func matchQualifyWithThis(cx *correction.Context) (selfAssign, bool) {
	if !cx.HasBindings() {
		return selfAssign{}, false
	}
	t := cx.Tree
	assign := problemNode(cx, ast.KindAssign)
	lhs := t.Child(assign, ast.AssignLHS)
	if t.Kind(lhs) != ast.KindName {
		return selfAssign{}, false
	}
	_, cls := enclosingClass(cx, assign)
	if cls == nil {
		return selfAssign{}, false
	}
	f := cls.LookupField(text(t, lhs))
	if f == nil {
		return selfAssign{}, false
	}
	m := selfAssign{lhs: lhs, field: f, qualifier: "this"}
	switch {
	case f.IsStatic():
		m.qualifier = f.DeclaringClass().Name
	case query.IsInStaticContext(t, assign):
		return selfAssign{}, false
	}
	return m, true
}

func qualifyWithThis(cx *correction.Context, m selfAssign) []*correction.Draft {
	d := cx.NewDraft(fmt.Sprintf("Qualify '%s' with '%s'", m.field.Name, m.qualifier))
	b := d.Edit
	recv := b.This()
	if m.field.IsStatic() {
		recv = b.Name(m.qualifier)
	}
	b.Replace(m.lhs, b.FieldAccess(recv, m.field.Name))
	return single(d)
}

func matchInsertBreak(cx *correction.Context) (ast.NodeID, bool) {
	t := cx.Tree
	label := problemNode(cx, ast.KindSwitchCase)
	if label == ast.NoNodeID || t.IndexInList(label) <= 0 {
		return ast.NoNodeID, false
	}
	return label, true
}

func insertBreak(cx *correction.Context, label ast.NodeID) []*correction.Draft {
	d := cx.NewDraft("Insert 'break'")
	b := d.Edit
	b.InsertBefore(label, b.Break())
	return single(d)
}

func matchRenameDeclaration(cx *correction.Context) (*symbols.Symbol, bool) {
	if !cx.HasBindings() {
		return nil, false
	}
	name := problemNode(cx, ast.KindName)
	sym := cx.Binding(name)
	if sym == nil || sym.Kind != symbols.SymbolLocal && sym.Kind != symbols.SymbolParam || sym.Decl.Name != name {
		return nil, false
	}
	return sym, true
}
