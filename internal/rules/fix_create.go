package rules

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"mend/internal/ast"
	"mend/internal/correction"
	"mend/internal/diag"
	"mend/internal/linked"
	"mend/internal/query"
	"mend/internal/rewrite"
	"mend/internal/similar"
	"mend/internal/symbols"
	"mend/internal/token"
)

// unresolved is a name the resolver could not bind, with the expression
// whose position decides the type of a new declaration.
type unresolved struct {
	name ast.NodeID
	expr ast.NodeID
	text string
}

func matchUnresolvedName(cx *correction.Context) (unresolved, bool) {
	if !cx.HasBindings() {
		return unresolved{}, false
	}
	name := problemNode(cx, ast.KindName)
	if name == ast.NoNodeID || cx.Tree.Location(name) == ast.CallName {
		return unresolved{}, false
	}
	return unresolved{name: name, expr: name, text: text(cx.Tree, name)}, true
}

// expectedType is the type a new variable standing at expr should have.
func expectedType(cx *correction.Context, expr ast.NodeID) *symbols.Type {
	return declarable(cx.Universe(), query.InferExpectedType(cx.Tree, cx.Resolver, expr))
}

// writtenOnly reports a reference that stores into the name without reading
// it, so the new declaration may take any supertype of the stored value.
func writtenOnly(t *ast.Tree, name ast.NodeID) bool {
	return query.IsWriteAccess(t, name) && !query.IsCompoundWrite(t, name)
}

// typeAlternatives lists the types a new declaration of typ can take. Stored
// values allow every supertype; read values only types assignable to typ.
func typeAlternatives(u *symbols.Universe, typ *symbols.Type, written bool) []*symbols.Type {
	if written {
		return query.SupertypeAlternatives(u, typ)
	}
	return query.TypeNarrowingChain(u, typ)
}

// initialValue is the default value of typ that stays valid for every
// alternative: a plain 0 fits all numeric types.
func initialValue(b *rewrite.Builder, typ *symbols.Type, alts []*symbols.Type) ast.NodeID {
	if len(alts) > 1 && typ.IsNumeric() {
		return b.Literal(token.IntLit, "0")
	}
	return b.DefaultValue(typ)
}

type newLocal struct {
	unresolved
	anchor ast.NodeID
	// assign is the `name = e;` statement turned into the declaration.
	assign ast.NodeID
}

func matchCreateLocal(cx *correction.Context) (newLocal, bool) {
	t := cx.Tree
	m, ok := matchUnresolvedName(cx)
	if !ok || query.FindEnclosingMethod(t, m.name) == ast.NoNodeID {
		return newLocal{}, false
	}
	stmt := query.FindEnclosingStatement(t, m.name)
	anchor := listAnchor(t, stmt)
	if anchor == ast.NoNodeID || t.Kind(anchor) == ast.KindSwitchCase {
		return newLocal{}, false
	}
	nl := newLocal{unresolved: m, anchor: anchor}
	if assign := t.Parent(m.name); t.Location(m.name) == ast.AssignLHS && t.Node(assign).Op == token.Assign &&
		t.Parent(assign) == stmt && stmt == anchor && t.Kind(stmt) == ast.KindExprStmt {
		nl.assign = stmt
	}
	return nl, true
}

func createLocal(cx *correction.Context, m newLocal) []*correction.Draft {
	t := cx.Tree
	u := cx.Universe()
	typ := expectedType(cx, m.expr)
	d := cx.NewDraft(fmt.Sprintf("Create local variable '%s'", m.text))
	b := d.Edit
	typeNode := b.Type(typ)
	if m.assign != ast.NoNodeID {
		rhs := t.Child(t.Child(m.assign, ast.ExprStmtExpr), ast.AssignRHS)
		frag := b.Fragment(m.text, b.MoveTarget(rhs))
		decl := b.LocalVar(0, typeNode, frag)
		b.Replace(m.assign, decl)
		linkType(d, "type", typeNode, typeAlternatives(u, typ, true))
		linkName(d, "name", nil, fragmentName(b, frag))
		d.Linked.SetEnd(decl, linked.After)
		return single(d)
	}
	written := writtenOnly(t, m.name)
	alts := typeAlternatives(u, typ, written)
	var init ast.NodeID
	if !query.IsWriteAccess(t, m.name) {
		init = initialValue(b, typ, alts)
	}
	frag := b.Fragment(m.text, init)
	b.InsertBefore(m.anchor, b.LocalVar(0, typeNode, frag))
	linkType(d, "type", typeNode, alts)
	linkName(d, "name", nil, fragmentName(b, frag), m.name)
	return single(d)
}

// fieldTarget is where a new field for an unresolved name goes.
type fieldTarget struct {
	unresolved
	cls    *symbols.Symbol
	static bool
}

func (m fieldTarget) tree() *ast.Tree { return m.cls.Decl.Tree }

func matchCreateField(cx *correction.Context) (fieldTarget, bool) {
	t := cx.Tree
	m, ok := matchUnresolvedName(cx)
	if !ok {
		return fieldTarget{}, false
	}
	ft := fieldTarget{unresolved: m}
	var recv ast.NodeID
	switch t.Location(m.name) {
	case ast.FieldAccessName:
		recv = t.Child(t.Parent(m.name), ast.FieldAccessReceiver)
		ft.expr = t.Parent(m.name)
	case ast.QualifiedNameName:
		recv = t.Child(t.Parent(m.name), ast.QualifiedQualifier)
		ft.expr = t.Parent(m.name)
	}
	if recv == ast.NoNodeID || t.Kind(recv) == ast.KindThis {
		_, ft.cls = enclosingClass(cx, m.name)
		ft.static = query.IsInStaticContext(t, m.name)
	} else {
		if rt := cx.TypeOf(recv); rt.IsClass() {
			ft.cls = rt.Class
		}
		if sym := cx.Binding(recv); sym != nil && sym.Kind == symbols.SymbolType {
			ft.static = true
		}
	}
	if !isSource(ft.cls) {
		return fieldTarget{}, false
	}
	return ft, true
}

func createField(cx *correction.Context, m fieldTarget) []*correction.Draft {
	t := cx.Tree
	typ := expectedType(cx, m.expr)
	_, from := enclosingClass(cx, m.name)
	mods := accessFor(cx, from, m.cls)
	if m.static {
		mods |= ast.ModStatic
	}
	label := fmt.Sprintf("Create field '%s'", m.text)
	if from != m.cls {
		label = fmt.Sprintf("Create field '%s' in type '%s'", m.text, m.cls.Name)
	}
	d := cx.NewDraft(label)
	b := d.For(m.tree())
	typeNode := b.Type(typ)
	frag := b.Fragment(m.text, ast.NoNodeID)
	insertField(b, m.tree(), m.cls.Decl.Node, b.Field(mods, typeNode, frag))
	if m.tree() == t {
		linkType(d, "type", typeNode, typeAlternatives(cx.Universe(), typ, writtenOnly(t, m.name)))
		linkName(d, "name", nil, fragmentName(b, frag), m.name)
	}
	return single(d)
}

func matchCreateParameter(cx *correction.Context) (unresolved, bool) {
	t := cx.Tree
	m, ok := matchUnresolvedName(cx)
	if !ok || t.Location(m.name) == ast.FieldAccessName || t.Location(m.name) == ast.QualifiedNameName {
		return unresolved{}, false
	}
	return m, query.FindEnclosingMethod(t, m.name) != ast.NoNodeID
}

func createParameter(cx *correction.Context, m unresolved) []*correction.Draft {
	t := cx.Tree
	typ := expectedType(cx, m.expr)
	d := cx.NewDraft(fmt.Sprintf("Create parameter '%s'", m.text))
	b := d.Edit
	typeNode := b.Type(typ)
	param := b.Param(typeNode, m.text)
	b.InsertLast(query.FindEnclosingMethod(t, m.name), ast.MethodParams, param)
	linkType(d, "type", typeNode, typeAlternatives(cx.Universe(), typ, writtenOnly(t, m.name)))
	linkName(d, "name", nil, b.Tree().Child(param, ast.ParamName), m.name)
	return single(d)
}

func isConstantName(s string) bool {
	letter := false
	for i, r := range s {
		switch {
		case unicode.IsUpper(r):
			letter = true
		case r == '_' || i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return letter
}

func matchCreateConstant(cx *correction.Context) (fieldTarget, bool) {
	m, ok := matchCreateField(cx)
	if !ok || !isConstantName(m.text) {
		return fieldTarget{}, false
	}
	return m, true
}

func createConstant(cx *correction.Context, m fieldTarget) []*correction.Draft {
	t := cx.Tree
	typ := expectedType(cx, m.expr)
	_, from := enclosingClass(cx, m.name)
	d := cx.NewDraft(fmt.Sprintf("Create constant '%s'", m.text))
	b := d.For(m.tree())
	typeNode := b.Type(typ)
	alts := typeAlternatives(cx.Universe(), typ, false)
	frag := b.Fragment(m.text, initialValue(b, typ, alts))
	mods := accessFor(cx, from, m.cls) | ast.ModStatic | ast.ModFinal
	insertField(b, m.tree(), m.cls.Decl.Node, b.Field(mods, typeNode, frag))
	if m.tree() == t {
		linkType(d, "type", typeNode, alts)
		linkName(d, "value", nil, b.Tree().Child(frag, ast.FragmentInit))
	}
	return single(d)
}

type similarNames struct {
	node  ast.NodeID
	names []string
}

// candidateNames lists the declarations an unresolved reference could have
// meant.
func candidateNames(cx *correction.Context, node ast.NodeID) []string {
	t := cx.Tree
	var out []string
	add := func(name string) {
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	memberClass := func(recv ast.NodeID) *symbols.Symbol {
		if recv == ast.NoNodeID || t.Kind(recv) == ast.KindThis {
			_, cls := enclosingClass(cx, node)
			return cls
		}
		if rt := cx.TypeOf(recv); rt.IsClass() {
			return rt.Class
		}
		return nil
	}
	switch cx.Problem.Code {
	case diag.SemUndefinedName:
		for _, v := range cx.Resolver.VisibleVariables(node) {
			add(v.Name)
		}
	case diag.SemUndefinedField:
		var recv ast.NodeID
		switch t.Location(node) {
		case ast.FieldAccessName:
			recv = t.Child(t.Parent(node), ast.FieldAccessReceiver)
		case ast.QualifiedNameName:
			recv = t.Child(t.Parent(node), ast.QualifiedQualifier)
		}
		for _, f := range memberClass(recv).AllFields() {
			add(f.Name)
		}
	case diag.SemUndefinedMethod:
		for _, m := range memberClass(t.Child(t.Parent(node), ast.CallReceiver)).AllMethods() {
			add(m.Name)
		}
	case diag.SemUndefinedType:
		for _, c := range cx.Resolver.Types() {
			add(c.Name)
		}
	}
	return out
}

func matchRenameToSimilar(cx *correction.Context) (similarNames, bool) {
	t := cx.Tree
	if !cx.HasBindings() || cx.Problem == nil {
		return similarNames{}, false
	}
	node := problemNode(cx, ast.KindName)
	if cx.Problem.Code == diag.SemUndefinedType {
		st := problemNode(cx, ast.KindSimpleType)
		node = t.Child(st, ast.SimpleTypeName)
		if t.Kind(node) != ast.KindName {
			return similarNames{}, false
		}
	}
	if node == ast.NoNodeID {
		return similarNames{}, false
	}
	names := similar.Best(text(t, node), candidateNames(cx, node), 3)
	return similarNames{node: node, names: names}, len(names) > 0
}

func renameToSimilar(cx *correction.Context, m similarNames) []*correction.Draft {
	out := make([]*correction.Draft, 0, len(m.names))
	for _, name := range m.names {
		d := cx.NewDraft(fmt.Sprintf("Change to '%s'", name))
		d.Edit.Replace(m.node, d.Edit.Name(name))
		out = append(out, d)
	}
	return out
}

// newMember describes a method or constructor created for a call site.
type newMember struct {
	call   ast.NodeID
	args   []ast.NodeID
	name   string
	cls    *symbols.Symbol
	static bool
}

func (m newMember) tree() *ast.Tree { return m.cls.Decl.Tree }

func matchCreateMethod(cx *correction.Context) (newMember, bool) {
	t := cx.Tree
	if !cx.HasBindings() {
		return newMember{}, false
	}
	name := problemNode(cx, ast.KindName)
	if t.Location(name) != ast.CallName {
		return newMember{}, false
	}
	call := t.Parent(name)
	m := newMember{call: call, args: t.List(call, ast.CallArgs), name: text(t, name)}
	if recv := t.Child(call, ast.CallReceiver); recv == ast.NoNodeID || t.Kind(recv) == ast.KindThis {
		_, m.cls = enclosingClass(cx, call)
		m.static = query.IsInStaticContext(t, call)
	} else {
		if rt := cx.TypeOf(recv); rt.IsClass() {
			m.cls = rt.Class
		}
		if sym := cx.Binding(recv); sym != nil && sym.Kind == symbols.SymbolType {
			m.static = true
		}
	}
	return m, isSource(m.cls)
}

// memberParams builds parameters after the arguments of a call: types from
// the argument types, names from the argument expressions.
func memberParams(cx *correction.Context, d *correction.Draft, b *rewrite.Builder, args []ast.NodeID, linkable bool) ([]ast.NodeID, []string) {
	t := cx.Tree
	u := cx.Universe()
	used := make(map[string]bool)
	params := make([]ast.NodeID, 0, len(args))
	types := make([]string, 0, len(args))
	for i, arg := range args {
		typ := declarable(u, cx.TypeOf(arg))
		names := query.SuggestVariableNames(t, arg, typ, query.VarParam, cx.Settings.Naming, used)
		used[names[0]] = true
		typeNode := b.Type(typ)
		param := b.Param(typeNode, names[0])
		params = append(params, param)
		types = append(types, typ.String())
		if linkable {
			linkType(d, fmt.Sprintf("arg_type_%d", i), typeNode, typeAlternatives(u, typ, true))
			linkName(d, fmt.Sprintf("arg_name_%d", i), names, b.Tree().Child(param, ast.ParamName))
		}
	}
	return params, types
}

func createMethod(cx *correction.Context, m newMember) []*correction.Draft {
	t := cx.Tree
	u := cx.Universe()
	typeDecl, from := enclosingClass(cx, m.call)
	linkable := m.tree() == t

	ret := u.Void
	if t.Kind(t.Parent(m.call)) != ast.KindExprStmt {
		ret = expectedType(cx, m.call)
	}
	d := cx.NewDraft("")
	b := d.For(m.tree())
	params, types := memberParams(cx, d, b, m.args, linkable)

	mods := accessFor(cx, from, m.cls)
	if m.static {
		mods |= ast.ModStatic
	}
	retNode := b.Type(ret)
	retAlts := typeAlternatives(u, ret, false)
	var body ast.NodeID
	if ret.IsVoid() {
		body = b.Block()
	} else {
		body = b.Block(b.Return(initialValue(b, ret, retAlts)))
	}
	method := b.Method(mods, retNode, m.name, params, body)

	d.Label = fmt.Sprintf("Create method '%s(%s)'", m.name, strings.Join(types, ", "))
	if from != m.cls {
		d.Label += fmt.Sprintf(" in type '%s'", m.cls.Name)
	}
	member := query.FindEnclosingBodyDeclaration(t, m.call)
	if linkable && typeDecl == m.cls.Decl.Node && t.Parent(member) == typeDecl {
		b.InsertAfter(member, method)
	} else {
		b.InsertLast(m.cls.Decl.Node, ast.TypeBody, method)
	}
	if linkable {
		linkType(d, "return_type", retNode, retAlts)
		d.Linked.SetEnd(body, linked.Inside)
	}
	return single(d)
}

func matchCreateConstructor(cx *correction.Context) (newMember, bool) {
	t := cx.Tree
	if !cx.HasBindings() {
		return newMember{}, false
	}
	typeNode := problemNode(cx, ast.KindSimpleType)
	if t.Location(typeNode) != ast.NewType {
		return newMember{}, false
	}
	newExpr := t.Parent(typeNode)
	m := newMember{call: newExpr, args: t.List(newExpr, ast.NewArgs)}
	if typ := cx.TypeOf(newExpr); typ.IsClass() {
		m.cls = typ.Class
		m.name = typ.Class.Name
	}
	return m, isSource(m.cls)
}

func createConstructor(cx *correction.Context, m newMember) []*correction.Draft {
	_, from := enclosingClass(cx, m.call)
	d := cx.NewDraft("")
	b := d.For(m.tree())
	params, types := memberParams(cx, d, b, m.args, m.tree() == cx.Tree)
	body := b.Block()
	ctor := b.Method(accessFor(cx, from, m.cls), ast.NoNodeID, m.name, params, body)
	insertConstructor(b, m.tree(), m.cls.Decl.Node, ctor)
	d.Label = fmt.Sprintf("Create constructor '%s(%s)'", m.name, strings.Join(types, ", "))
	if m.tree() == cx.Tree {
		d.Linked.SetEnd(body, linked.Inside)
	}
	return single(d)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	if _, kw := token.LookupKeyword(s); kw {
		return false
	}
	for i, r := range s {
		if !(unicode.IsLetter(r) || r == '_' || r == '$' || i > 0 && unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

type newClass struct {
	name      string
	exception bool
}

// throwsPosition reports whether a type reference names something thrown or
// caught.
func throwsPosition(t *ast.Tree, typeNode ast.NodeID) bool {
	switch t.Location(typeNode) {
	case ast.MethodThrows:
		return true
	case ast.ParamType:
		return t.Location(t.Parent(typeNode)) == ast.CatchParam
	case ast.NewType:
		return t.Location(query.OutermostParen(t, t.Parent(typeNode))) == ast.ThrowExpr
	}
	return false
}

func matchCreateClass(cx *correction.Context) (newClass, bool) {
	t := cx.Tree
	st := problemNode(cx, ast.KindSimpleType)
	name := cx.Problem.Arg(0)
	if st == ast.NoNodeID || !isIdentifier(name) {
		return newClass{}, false
	}
	return newClass{name: name, exception: throwsPosition(t, st)}, true
}

func createClass(cx *correction.Context, m newClass) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft(fmt.Sprintf("Create class '%s'", m.name))
	b := d.Edit
	cls := b.Class(0, m.name)
	if m.exception {
		b.Tree().Set(cls, ast.TypeSuperclass, b.SimpleType("Exception"))
		d.Label = fmt.Sprintf("Create exception class '%s'", m.name)
	}
	b.InsertLast(t.Root, ast.UnitTypes, cls)
	d.Linked.SetEnd(cls, linked.After)
	return single(d)
}
