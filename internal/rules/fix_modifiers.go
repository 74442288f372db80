package rules

import (
	"fmt"

	"mend/internal/ast"
	"mend/internal/correction"
	"mend/internal/diag"
	"mend/internal/query"
	"mend/internal/sema"
	"mend/internal/symbols"
)

// modifierChange edits the modifiers of a declaration that may live in
// another unit.
type modifierChange struct {
	sym   *symbols.Symbol
	owner ast.NodeID
	mods  ast.Modifiers
}

func (m modifierChange) tree() *ast.Tree { return m.sym.Decl.Tree }

func (m modifierChange) apply(cx *correction.Context, d *correction.Draft) {
	b := d.Edit
	if m.tree() != cx.Tree {
		b = d.For(m.tree())
	}
	b.SetModifiers(m.owner, m.mods)
}

// problemSymbol returns the declaration the problem's reference resolves to,
// when its source is at hand.
func problemSymbol(cx *correction.Context) *symbols.Symbol {
	if !cx.HasBindings() || cx.Problem == nil {
		return nil
	}
	id := problemNode(cx)
	sym := cx.Binding(id)
	if sym == nil && cx.Problem.Code == diag.SemNotVisibleType {
		sym = cx.Resolver.LookupType(cx.Problem.Arg(0))
	}
	if sym == nil || sym.IsBuiltin() || !sym.Decl.IsValid() {
		return nil
	}
	return sym
}

func changeFor(sym *symbols.Symbol, edit func(ast.Modifiers) ast.Modifiers) (modifierChange, bool) {
	t := sym.Decl.Tree
	owner := modifierOwner(t, sym.Decl.Node)
	n := t.Node(owner)
	if n == nil {
		return modifierChange{}, false
	}
	mods := edit(n.Mods)
	if mods == n.Mods {
		return modifierChange{}, false
	}
	return modifierChange{sym: sym, owner: owner, mods: mods}, true
}

func visibilityName(v ast.Modifiers) string {
	if v == 0 {
		return "package"
	}
	return v.String()
}

func matchChangeVisibility(cx *correction.Context) (modifierChange, bool) {
	sym := problemSymbol(cx)
	if sym == nil {
		return modifierChange{}, false
	}
	_, from := enclosingClass(cx, cx.Problem.Covering)
	cls := sym.DeclaringClass()
	var vis ast.Modifiers
	switch {
	case cls.TopLevel().Package == cx.Resolver.Package():
		vis = 0
	case sym.Kind != symbols.SymbolType && from != nil && symbols.IsSubclass(from, cls):
		vis = ast.ModProtected
	default:
		vis = ast.ModPublic
	}
	return changeFor(sym, func(m ast.Modifiers) ast.Modifiers {
		return m&^ast.VisibilityMask | vis
	})
}

func changeVisibility(cx *correction.Context, m modifierChange) []*correction.Draft {
	d := cx.NewDraft(fmt.Sprintf("Change visibility of '%s' to '%s'", m.sym.Name, visibilityName(m.mods.Visibility())))
	m.apply(cx, d)
	return single(d)
}

func matchMakeStatic(cx *correction.Context) (modifierChange, bool) {
	sym := problemSymbol(cx)
	if sym == nil || sym.Kind != symbols.SymbolField && sym.Kind != symbols.SymbolMethod {
		return modifierChange{}, false
	}
	return changeFor(sym, func(m ast.Modifiers) ast.Modifiers { return m | ast.ModStatic })
}

func makeStatic(cx *correction.Context, m modifierChange) []*correction.Draft {
	d := cx.NewDraft(fmt.Sprintf("Change '%s' to 'static'", m.sym.Name))
	m.apply(cx, d)
	return single(d)
}

type staticMethod struct {
	method ast.NodeID
	name   string
}

func matchRemoveStaticContext(cx *correction.Context) (staticMethod, bool) {
	if cx.Problem == nil {
		return staticMethod{}, false
	}
	t := cx.Tree
	method := query.FindEnclosingMethod(t, cx.Problem.Covering)
	if method == ast.NoNodeID || !t.Node(method).Mods.Has(ast.ModStatic) {
		return staticMethod{}, false
	}
	name := text(t, t.Child(method, ast.MethodName))
	// main остаётся точкой входа
	if name == "main" {
		return staticMethod{}, false
	}
	return staticMethod{method: method, name: name}, true
}

func removeStaticContext(cx *correction.Context, m staticMethod) []*correction.Draft {
	d := cx.NewDraft(fmt.Sprintf("Remove 'static' modifier of '%s()'", m.name))
	d.Edit.SetModifiers(m.method, cx.Tree.Node(m.method).Mods&^ast.ModStatic)
	return single(d)
}

type staticAccess struct {
	recv ast.NodeID
	typ  string
}

func matchQualifyWithType(cx *correction.Context) (staticAccess, bool) {
	if cx.Problem == nil || cx.Problem.Arg(1) == "" {
		return staticAccess{}, false
	}
	t := cx.Tree
	name := problemNode(cx, ast.KindName)
	var recv ast.NodeID
	switch t.Location(name) {
	case ast.FieldAccessName:
		recv = t.Child(t.Parent(name), ast.FieldAccessReceiver)
	case ast.QualifiedNameName:
		recv = t.Child(t.Parent(name), ast.QualifiedQualifier)
	case ast.CallName:
		recv = t.Child(t.Parent(name), ast.CallReceiver)
	}
	if recv == ast.NoNodeID {
		return staticAccess{}, false
	}
	return staticAccess{recv: recv, typ: cx.Problem.Arg(1)}, true
}

func qualifyWithType(cx *correction.Context, m staticAccess) []*correction.Draft {
	d := cx.NewDraft(fmt.Sprintf("Change access to static using '%s' (declaring type)", m.typ))
	b := d.Edit
	b.Replace(m.recv, b.Name(m.typ))
	return single(d)
}

func matchRemoveFinal(cx *correction.Context) (modifierChange, bool) {
	sym := problemSymbol(cx)
	if !sym.IsVariable() {
		return modifierChange{}, false
	}
	return changeFor(sym, func(m ast.Modifiers) ast.Modifiers { return m &^ ast.ModFinal })
}

func removeFinal(cx *correction.Context, m modifierChange) []*correction.Draft {
	d := cx.NewDraft(fmt.Sprintf("Remove 'final' modifier of '%s'", m.sym.Name))
	m.apply(cx, d)
	return single(d)
}

type legalMods struct {
	decl ast.NodeID
	mods ast.Modifiers
}

func matchRemoveInvalidModifiers(cx *correction.Context) (legalMods, bool) {
	if cx.Problem == nil {
		return legalMods{}, false
	}
	t := cx.Tree
	for cur := cx.Problem.Covering; cur != ast.NoNodeID; cur = t.Parent(cur) {
		n := t.Node(cur)
		if n.ModsSpan.Start != cx.Problem.Offset || n.ModsSpan.End != cx.Problem.End() || n.Mods == 0 {
			continue
		}
		legal := sema.LegalModifiers(t, cur)
		if legal == n.Mods {
			return legalMods{}, false
		}
		return legalMods{decl: cur, mods: legal}, true
	}
	return legalMods{}, false
}

func removeInvalidModifiers(cx *correction.Context, m legalMods) []*correction.Draft {
	d := cx.NewDraft("Remove invalid modifiers")
	d.Edit.SetModifiers(m.decl, m.mods)
	return single(d)
}
