package rules

import (
	"strings"

	"mend/internal/ast"
	"mend/internal/correction"
	"mend/internal/query"
	"mend/internal/rewrite"
	"mend/internal/symbols"
)

// newRule wires a matcher and a generator into a rule. The probe runs only
// the matcher, so the two can never disagree.
func newRule[M any](id string, kind correction.Kind, rel int,
	match func(*correction.Context) (M, bool),
	gen func(*correction.Context, M) []*correction.Draft,
) *correction.Rule {
	return &correction.Rule{
		ID:        id,
		Kind:      kind,
		Relevance: rel,
		Probe: func(cx *correction.Context) bool {
			_, ok := match(cx)
			return ok
		},
		Generate: func(cx *correction.Context) []*correction.Draft {
			m, ok := match(cx)
			if !ok {
				return nil
			}
			return gen(cx, m)
		},
	}
}

func assist[M any](id string, rel int, match func(*correction.Context) (M, bool), gen func(*correction.Context, M) []*correction.Draft) *correction.Rule {
	return newRule(id, correction.KindAssist, rel, match, gen)
}

func quickFix[M any](id string, rel int, match func(*correction.Context) (M, bool), gen func(*correction.Context, M) []*correction.Draft) *correction.Rule {
	return newRule(id, correction.KindFix, rel, match, gen)
}

func single(d *correction.Draft) []*correction.Draft { return []*correction.Draft{d} }

func found(id ast.NodeID) (ast.NodeID, bool) { return id, id != ast.NoNodeID }

func is(t *ast.Tree, id ast.NodeID, kinds ...ast.Kind) bool {
	k := t.Kind(id)
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

func text(t *ast.Tree, id ast.NodeID) string {
	if n := t.Node(id); n != nil {
		return n.Text
	}
	return ""
}

func moves(b *rewrite.Builder, ids []ast.NodeID) []ast.NodeID {
	out := make([]ast.NodeID, len(ids))
	for i, id := range ids {
		out[i] = b.MoveTarget(id)
	}
	return out
}

func copies(b *rewrite.Builder, ids []ast.NodeID) []ast.NodeID {
	out := make([]ast.NodeID, len(ids))
	for i, id := range ids {
		out[i] = b.CopyTarget(id)
	}
	return out
}

// coveringStatement returns the statement enclosing the selection.
func coveringStatement(cx *correction.Context) ast.NodeID {
	return query.FindEnclosingStatement(cx.Tree, cx.Covering())
}

// inStatementList reports whether stmt sits in a block or a switch body.
func inStatementList(t *ast.Tree, stmt ast.NodeID) bool {
	s := query.SlotOf(t, stmt)
	return s.InList() && query.IsStatementList(s.Prop)
}

// replaceStatement puts stmts where stmt was: spliced into a statement list,
// or wrapped in a block in a single-statement slot.
func replaceStatement(b *rewrite.Builder, t *ast.Tree, stmt ast.NodeID, stmts ...ast.NodeID) {
	switch {
	case len(stmts) == 1:
		b.Replace(stmt, stmts[0])
	case inStatementList(t, stmt):
		for _, s := range stmts {
			b.InsertBefore(stmt, s)
		}
		b.Remove(stmt)
	default:
		b.Replace(stmt, b.Block(stmts...))
	}
}

// listAnchor climbs from stmt to the statement that sits directly in a
// statement list, so new declarations can go in front of it.
func listAnchor(t *ast.Tree, stmt ast.NodeID) ast.NodeID {
	for cur := stmt; cur != ast.NoNodeID; cur = t.Parent(cur) {
		if !t.Kind(cur).IsStatement() {
			return ast.NoNodeID
		}
		if inStatementList(t, cur) {
			return cur
		}
	}
	return ast.NoNodeID
}

// breaksOut reports whether stmt holds an unlabeled break that leaves the
// statement around it.
func breaksOut(t *ast.Tree, stmt ast.NodeID) bool {
	return !t.Walk(stmt, func(id ast.NodeID, n *ast.Node) ast.Action {
		switch n.Kind {
		case ast.KindWhile, ast.KindDo, ast.KindFor, ast.KindSwitch, ast.KindTypeDecl:
			return ast.SkipChildren
		case ast.KindBreak:
			if t.Child(id, ast.BreakLabel) == ast.NoNodeID {
				return ast.Stop
			}
		}
		return ast.Continue
	})
}

// selectedExpression returns the expression the selection spans exactly.
func selectedExpression(cx *correction.Context) ast.NodeID {
	if cx.Length == 0 {
		return ast.NoNodeID
	}
	t := cx.Tree
	id := cx.Covered()
	if !t.Kind(id).IsExpression() {
		return ast.NoNodeID
	}
	sp := t.Span(id)
	if sp.Start != cx.Offset || sp.End != cx.Offset+cx.Length {
		return ast.NoNodeID
	}
	return id
}

// coveredNodes returns the sibling nodes lying completely inside the selection.
func coveredNodes(cx *correction.Context) []ast.NodeID {
	if cx.Length == 0 {
		return nil
	}
	t := cx.Tree
	cov := cx.Covered()
	if cov == ast.NoNodeID {
		return nil
	}
	parent := cx.Covering()
	if cov == parent {
		return []ast.NodeID{cov}
	}
	end := cx.Offset + cx.Length
	var out []ast.NodeID
	for _, c := range t.Children(parent) {
		if sp := t.Span(c); sp.Start >= cx.Offset && sp.End <= end {
			out = append(out, c)
		}
	}
	return out
}

// enclosingExpression walks up from the covering node to the first
// expression accepted by pred, without leaving the expression.
func enclosingExpression(cx *correction.Context, pred func(ast.NodeID) bool) ast.NodeID {
	t := cx.Tree
	for cur := cx.Covering(); cur != ast.NoNodeID; cur = t.Parent(cur) {
		k := t.Kind(cur)
		if !k.IsExpression() {
			return ast.NoNodeID
		}
		if pred(cur) {
			return cur
		}
	}
	return ast.NoNodeID
}

// declarable turns the type of a value into one a declaration can spell.
func declarable(u *symbols.Universe, typ *symbols.Type) *symbols.Type {
	if typ == nil || typ.IsNull() || typ.IsVoid() {
		return u.Object
	}
	return typ
}

// enclosingClass returns the class declaration around id and its symbol.
func enclosingClass(cx *correction.Context, id ast.NodeID) (ast.NodeID, *symbols.Symbol) {
	decl := query.FindEnclosingType(cx.Tree, id)
	if decl == ast.NoNodeID {
		return ast.NoNodeID, nil
	}
	return decl, cx.Resolver.DeclaredBy(decl)
}

// insertField places field after the last field of typeDecl, first when
// there is none.
func insertField(b *rewrite.Builder, t *ast.Tree, typeDecl, field ast.NodeID) {
	b.InsertAt(typeDecl, ast.TypeBody, afterLast(t, typeDecl, func(m ast.NodeID) bool {
		return t.Kind(m) == ast.KindFieldDecl
	}), field)
}

// insertConstructor places ctor after the fields and constructors of typeDecl.
func insertConstructor(b *rewrite.Builder, t *ast.Tree, typeDecl, ctor ast.NodeID) {
	b.InsertAt(typeDecl, ast.TypeBody, afterLast(t, typeDecl, func(m ast.NodeID) bool {
		n := t.Node(m)
		return n.Kind == ast.KindFieldDecl || n.Kind == ast.KindMethodDecl && n.Flags.Has(ast.FlagConstructor)
	}), ctor)
}

func afterLast(t *ast.Tree, typeDecl ast.NodeID, pred func(ast.NodeID) bool) int {
	idx := 0
	for i, m := range t.List(typeDecl, ast.TypeBody) {
		if pred(m) {
			idx = i + 1
		}
	}
	return idx
}

// memberNames returns the field names declared by cls and its superclasses.
func memberNames(cls *symbols.Symbol) map[string]bool {
	out := make(map[string]bool)
	if cls == nil {
		return out
	}
	for _, f := range cls.AllFields() {
		out[f.Name] = true
	}
	return out
}

// linkName adds a linked group over primary and others offering suggestions.
func linkName(d *correction.Draft, group string, suggestions []string, primary ast.NodeID, others ...ast.NodeID) {
	g := d.Linked.Group(group).AddPosition(primary, true)
	for _, o := range others {
		g.AddPosition(o, false)
	}
	if len(suggestions) > 1 {
		g.AddAlternatives(suggestions...)
	}
}

// linkType adds a linked group over a new type node offering alternatives.
func linkType(d *correction.Draft, group string, typ ast.NodeID, alts []*symbols.Type) {
	g := d.Linked.Group(group).AddPosition(typ, true)
	if len(alts) > 1 {
		for _, a := range alts {
			g.AddAlternative(a.String())
		}
	}
}

// declarationIn returns the declaration fragment or parameter declaring sym in
// t, NoNodeID for declarations elsewhere.
func declarationIn(t *ast.Tree, sym *symbols.Symbol) ast.NodeID {
	if sym == nil || sym.Decl.Tree != t {
		return ast.NoNodeID
	}
	return sym.Decl.Node
}

// modifierOwner returns the node carrying the modifiers of a declaration:
// the statement or field declaration for fragments, the node itself otherwise.
func modifierOwner(t *ast.Tree, decl ast.NodeID) ast.NodeID {
	if t.Kind(decl) == ast.KindVarFragment {
		return t.Parent(decl)
	}
	return decl
}

// problemNode returns the innermost node spanning the problem range exactly
// whose kind is one of kinds; any kind when none are given.
func problemNode(cx *correction.Context, kinds ...ast.Kind) ast.NodeID {
	t := cx.Tree
	p := cx.Problem
	if p == nil {
		return ast.NoNodeID
	}
	for cur := p.Covering; cur != ast.NoNodeID; cur = t.Parent(cur) {
		sp := t.Span(cur)
		if sp.Start != p.Offset || sp.End != p.End() {
			return ast.NoNodeID
		}
		if len(kinds) == 0 || is(t, cur, kinds...) {
			return cur
		}
	}
	return ast.NoNodeID
}

// typeNamed resolves a type as diagnostics spell it: int, String, Foo[][].
func typeNamed(cx *correction.Context, name string) *symbols.Type {
	u := cx.Universe()
	dims := 0
	for strings.HasSuffix(name, "[]") {
		name = strings.TrimSuffix(name, "[]")
		dims++
	}
	var base *symbols.Type
	if p := u.Primitive(name); p != nil {
		base = p
	} else if cls := cx.Resolver.LookupType(name); cls != nil {
		base = cls.Type
	}
	if base == nil {
		return nil
	}
	return u.ArrayOfDims(base, dims)
}

// isSource reports whether cls is declared in a parsed unit.
func isSource(cls *symbols.Symbol) bool {
	return cls != nil && cls.Kind == symbols.SymbolType && cls.Decl.IsValid() && !cls.IsBuiltin()
}

// accessFor is the narrowest visibility letting code in from reach a new
// member of cls.
func accessFor(cx *correction.Context, from, cls *symbols.Symbol) ast.Modifiers {
	switch {
	case from != nil && from.TopLevel() == cls.TopLevel():
		return ast.ModPrivate
	case cls.TopLevel().Package == cx.Resolver.Package():
		return 0
	}
	return ast.ModPublic
}
