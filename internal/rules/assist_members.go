package rules

import (
	"fmt"
	"slices"

	"mend/internal/ast"
	"mend/internal/correction"
	"mend/internal/query"
	"mend/internal/symbols"
)

// canMakeFinal reports whether sym keeps its meaning when declared final:
// it is never written after its declaration and the declaration is in t.
func canMakeFinal(cx *correction.Context, sym *symbols.Symbol) bool {
	t := cx.Tree
	if !sym.IsVariable() || sym.IsFinal() || sym.Decl.Tree != t {
		return false
	}
	decl := sym.Decl.Node
	switch sym.Kind {
	case symbols.SymbolField, symbols.SymbolLocal:
		if sym.Kind == symbols.SymbolField && !sym.Mods.Has(ast.ModPrivate) {
			return false
		}
		// final относится ко всему объявлению
		if t.Child(decl, ast.FragmentInit) == ast.NoNodeID || len(t.List(t.Parent(decl), t.Location(decl))) > 1 {
			return false
		}
	case symbols.SymbolParam:
		if m := t.Parent(decl); t.Kind(m) == ast.KindMethodDecl && t.Child(m, ast.MethodBody) == ast.NoNodeID {
			return false
		}
	}
	for _, r := range cx.Resolver.References(sym) {
		if query.IsWriteAccess(t, r) {
			return false
		}
	}
	return true
}

func isDeclaration(_ ast.NodeID, n *ast.Node) bool {
	return n.Kind == ast.KindVarFragment || n.Kind == ast.KindParam
}

func matchMakeFinal(cx *correction.Context) ([]modifierChange, bool) {
	t := cx.Tree
	if !cx.HasBindings() {
		return nil, false
	}
	var cands []*symbols.Symbol
	if cx.Length == 0 {
		if id := cx.Covering(); t.Kind(id) == ast.KindName {
			cands = append(cands, cx.Binding(id))
		}
	} else {
		for _, n := range coveredNodes(cx) {
			for _, d := range t.Collect(n, isDeclaration) {
				cands = append(cands, cx.Resolver.DeclaredBy(d))
			}
		}
	}
	var out []modifierChange
	for _, sym := range cands {
		if sym == nil || !canMakeFinal(cx, sym) || slices.ContainsFunc(out, func(m modifierChange) bool { return m.sym == sym }) {
			continue
		}
		if ch, ok := changeFor(sym, func(m ast.Modifiers) ast.Modifiers { return m | ast.ModFinal }); ok {
			out = append(out, ch)
		}
	}
	return out, len(out) > 0
}

func makeFinal(cx *correction.Context, changes []modifierChange) []*correction.Draft {
	label := "Change modifiers to final where possible"
	if len(changes) == 1 {
		label = fmt.Sprintf("Change modifier of '%s' to final", changes[0].sym.Name)
	}
	d := cx.NewDraft(label)
	for _, ch := range changes {
		ch.apply(cx, d)
	}
	return single(d)
}

type superDefinition struct {
	method *symbols.Symbol
	supers []*symbols.Symbol
}

// declaresSignature reports whether cls itself declares a method with the
// name and parameter types of m.
func declaresSignature(cls, m *symbols.Symbol) bool {
	for _, x := range cls.Methods() {
		if x.Name == m.Name && slices.EqualFunc(x.ParamTypes(), m.ParamTypes(), symbols.Identical) {
			return true
		}
	}
	return false
}

func matchCreateInSuperclass(cx *correction.Context) (superDefinition, bool) {
	t := cx.Tree
	if !cx.HasBindings() {
		return superDefinition{}, false
	}
	name := cx.Covering()
	if t.Location(name) != ast.MethodName {
		return superDefinition{}, false
	}
	m := cx.Resolver.DeclaredBy(t.Parent(name))
	if m == nil || m.IsConstructor() || m.Mods.Has(ast.ModPrivate) {
		return superDefinition{}, false
	}
	var supers []*symbols.Symbol
	for c := m.DeclaringClass().SuperClass(); isSource(c); c = c.SuperClass() {
		if !declaresSignature(c, m) {
			supers = append(supers, c)
		}
	}
	return superDefinition{method: m, supers: supers}, len(supers) > 0
}

func createInSuperclass(cx *correction.Context, s superDefinition) []*correction.Draft {
	m := s.method
	out := make([]*correction.Draft, 0, len(s.supers))
	for _, c := range s.supers {
		d := cx.NewDraft(fmt.Sprintf("Create '%s' in super type '%s'", m.Signature(), c.Name))
		b := d.For(c.Decl.Tree)
		params := make([]ast.NodeID, len(m.Params))
		for i, p := range m.Params {
			params[i] = b.Param(b.Type(p.Type), p.Name)
		}
		body := b.Block()
		if !m.Type.IsVoid() {
			body = b.Block(b.Return(b.DefaultValue(m.Type)))
		}
		method := b.Method(m.Mods&(ast.VisibilityMask|ast.ModStatic), b.Type(m.Type), m.Name, params, body)
		for _, th := range m.Throws {
			b.Tree().Append(method, ast.MethodThrows, b.Type(th))
		}
		b.InsertLast(c.Decl.Node, ast.TypeBody, method)
		out = append(out, d)
	}
	return out
}
