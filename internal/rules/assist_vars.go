package rules

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"mend/internal/ast"
	"mend/internal/correction"
	"mend/internal/linked"
	"mend/internal/query"
	"mend/internal/rewrite"
	"mend/internal/symbols"
	"mend/internal/token"
)

// variableAt returns the variable named at the caret, either at its
// declaration or at a reference, when it is declared in the same tree.
func variableAt(cx *correction.Context, kinds ...symbols.SymbolKind) *symbols.Symbol {
	id := cx.Covering()
	if cx.Tree.Kind(id) != ast.KindName {
		return nil
	}
	sym := cx.Binding(id)
	if sym == nil || !slices.Contains(kinds, sym.Kind) || sym.Decl.Tree != cx.Tree {
		return nil
	}
	return sym
}

// sortedRefs returns the references of sym in source order.
func sortedRefs(cx *correction.Context, sym *symbols.Symbol) []ast.NodeID {
	t := cx.Tree
	refs := slices.Clone(cx.Resolver.References(sym))
	slices.SortFunc(refs, func(a, b ast.NodeID) int { return int(t.Span(a).Start) - int(t.Span(b).Start) })
	return refs
}

// fragmentName returns the name node of a fragment built in b.
func fragmentName(b *rewrite.Builder, frag ast.NodeID) ast.NodeID {
	return b.Tree().Child(frag, ast.FragmentName)
}

type exprStatement struct {
	stmt, expr ast.NodeID
	typ        *symbols.Type
}

func matchExpressionStatement(cx *correction.Context) (exprStatement, bool) {
	t := cx.Tree
	if !cx.HasBindings() {
		return exprStatement{}, false
	}
	st := coveringStatement(cx)
	if t.Kind(st) != ast.KindExprStmt || !inStatementList(t, st) {
		return exprStatement{}, false
	}
	e := t.Child(st, ast.ExprStmtExpr)
	switch n := t.Node(e); n.Kind {
	case ast.KindAssign, ast.KindPostfix:
		return exprStatement{}, false
	case ast.KindPrefix:
		if n.Op == token.PlusPlus || n.Op == token.MinusMinus {
			return exprStatement{}, false
		}
	}
	typ := cx.TypeOf(e)
	if typ == nil || typ.IsVoid() || typ.IsNull() {
		return exprStatement{}, false
	}
	return exprStatement{stmt: st, expr: e, typ: typ}, true
}

func assignToLocal(cx *correction.Context, m exprStatement) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Assign statement to new local variable")
	b := d.Edit
	used := query.UsedVariableNames(t, cx.Resolver, m.stmt)
	names := query.SuggestVariableNames(t, m.expr, m.typ, query.VarLocal, cx.Settings.Naming, used)

	typ := b.Type(m.typ)
	frag := b.Fragment(names[0], b.MoveTarget(m.expr))
	decl := b.LocalVar(0, typ, frag)
	b.Replace(m.stmt, decl)
	linkType(d, "type", typ, query.SupertypeAlternatives(cx.Universe(), m.typ))
	linkName(d, "name", names, fragmentName(b, frag))
	d.Linked.SetEnd(decl, linked.After)
	return single(d)
}

func assignToField(cx *correction.Context, m exprStatement) []*correction.Draft {
	t := cx.Tree
	typeDecl, cls := enclosingClass(cx, m.stmt)
	if typeDecl == ast.NoNodeID {
		return nil
	}
	kind, mods := query.VarField, ast.ModPrivate
	if query.IsInStaticContext(t, m.stmt) {
		kind, mods = query.VarStaticField, mods|ast.ModStatic
	}
	used := query.UsedVariableNames(t, cx.Resolver, m.stmt)
	for n := range memberNames(cls) {
		used[n] = true
	}
	names := query.SuggestVariableNames(t, m.expr, m.typ, kind, cx.Settings.Naming, used)

	d := cx.NewDraft("Assign statement to new field")
	b := d.Edit
	typ := b.Type(m.typ)
	frag := b.Fragment(names[0], ast.NoNodeID)
	insertField(b, t, typeDecl, b.Field(mods, typ, frag))
	lhs := b.Name(names[0])
	stmt := b.ExprStmt(b.Assign(token.Assign, lhs, b.MoveTarget(m.expr)))
	b.Replace(m.stmt, stmt)
	linkType(d, "type", typ, query.SupertypeAlternatives(cx.Universe(), m.typ))
	linkName(d, "name", names, fragmentName(b, frag), lhs)
	d.Linked.SetEnd(stmt, linked.After)
	return single(d)
}

// assignedField returns the field written through lhs, nil for anything else.
func assignedField(cx *correction.Context, lhs ast.NodeID) *symbols.Symbol {
	t := cx.Tree
	switch t.Kind(lhs) {
	case ast.KindFieldAccess:
		lhs = t.Child(lhs, ast.FieldAccessName)
	case ast.KindQualifiedName:
		lhs = t.Child(lhs, ast.QualifiedNameName)
	}
	if sym := cx.Binding(lhs); sym != nil && sym.Kind == symbols.SymbolField {
		return sym
	}
	return nil
}

type paramField struct {
	param, method, typeDecl ast.NodeID
	sym, cls                *symbols.Symbol
}

func matchAssignParamToField(cx *correction.Context) (paramField, bool) {
	t := cx.Tree
	if !cx.HasBindings() {
		return paramField{}, false
	}
	param := cx.Covering()
	if t.Location(param) == ast.ParamName {
		param = t.Parent(param)
	}
	if t.Kind(param) != ast.KindParam || t.Location(param) != ast.MethodParams {
		return paramField{}, false
	}
	method := t.Parent(param)
	if t.Child(method, ast.MethodBody) == ast.NoNodeID {
		return paramField{}, false
	}
	sym := cx.Resolver.DeclaredBy(param)
	typeDecl, cls := enclosingClass(cx, method)
	if sym == nil || cls == nil {
		return paramField{}, false
	}
	for _, r := range cx.Resolver.References(sym) {
		if t.Location(r) == ast.AssignRHS && assignedField(cx, t.Child(t.Parent(r), ast.AssignLHS)) != nil {
			return paramField{}, false
		}
	}
	return paramField{param: param, method: method, typeDecl: typeDecl, sym: sym, cls: cls}, true
}

// afterDelegation is the first index of a constructor body where statements
// may go: after an explicit this(...) or super(...) call.
func afterDelegation(t *ast.Tree, body ast.NodeID) int {
	stmts := t.List(body, ast.BlockStatements)
	if len(stmts) == 0 || t.Kind(stmts[0]) != ast.KindExprStmt {
		return 0
	}
	call := t.Child(stmts[0], ast.ExprStmtExpr)
	if t.Kind(call) != ast.KindCall || t.Child(call, ast.CallReceiver) != ast.NoNodeID {
		return 0
	}
	if name := text(t, t.Child(call, ast.CallName)); name == "this" || name == "super" {
		return 1
	}
	return 0
}

func assignParamToField(cx *correction.Context, m paramField) []*correction.Draft {
	t := cx.Tree
	static := t.Node(m.method).Mods.Has(ast.ModStatic)
	kind, mods := query.VarField, ast.ModPrivate
	if static {
		kind, mods = query.VarStaticField, mods|ast.ModStatic
	}
	pname := m.sym.Name
	names := query.SuggestVariableNames(t, t.Child(m.param, ast.ParamName), m.sym.Type, kind, cx.Settings.Naming, memberNames(m.cls))

	d := cx.NewDraft("Assign parameter to new field")
	b := d.Edit
	frag := b.Fragment(names[0], ast.NoNodeID)
	insertField(b, t, m.typeDecl, b.Field(mods, b.Type(m.sym.Type), frag))

	var lhs, lhsName ast.NodeID
	switch {
	case static:
		lhs = b.FieldAccess(b.Name(m.cls.Name), names[0])
	case names[0] == pname:
		lhs = b.FieldAccess(b.This(), names[0])
	default:
		lhs = b.Name(names[0])
	}
	lhsName = lhs
	if b.Tree().Kind(lhs) == ast.KindFieldAccess {
		lhsName = b.Tree().Child(lhs, ast.FieldAccessName)
	}
	assign := b.ExprStmt(b.Assign(token.Assign, lhs, b.Name(pname)))
	body := t.Child(m.method, ast.MethodBody)
	b.InsertAt(body, ast.BlockStatements, afterDelegation(t, body), assign)
	linkName(d, "name", names, fragmentName(b, frag), lhsName)
	d.Linked.SetEnd(assign, linked.After)
	return single(d)
}

// extractable reports whether e computes a value that a variable can hold.
// Names of declarations, callees, assignment targets and type references
// do not.
func extractable(cx *correction.Context, e ast.NodeID) bool {
	t := cx.Tree
	switch t.Location(e) {
	case ast.AssignLHS, ast.CallName, ast.FieldAccessName, ast.QualifiedNameName,
		ast.FragmentName, ast.ParamName, ast.MethodName, ast.TypeName,
		ast.PostfixOperand, ast.ExprStmtExpr:
		return false
	case ast.PrefixOperand:
		if op := t.Node(t.Parent(e)).Op; op == token.PlusPlus || op == token.MinusMinus {
			return false
		}
	}
	switch t.Kind(e) {
	case ast.KindArrayInit, ast.KindAssign:
		return false
	}
	if sym := cx.Binding(e); sym != nil && sym.Kind == symbols.SymbolType {
		return false
	}
	return true
}

// reevaluated reports whether e sits in a loop header of stmt that runs
// more than once.
func reevaluated(t *ast.Tree, e, stmt ast.NodeID) bool {
	for cur := e; cur != stmt && cur != ast.NoNodeID; cur = t.Parent(cur) {
		switch t.Location(cur) {
		case ast.WhileCondition, ast.DoCondition, ast.ForCondition, ast.ForUpdates:
			return true
		}
	}
	return false
}

// sameExpressions collects the expressions in scope that read like e, in
// source order, leaving nested classes alone.
func sameExpressions(cx *correction.Context, scope, e ast.NodeID, from uint32, ok func(ast.NodeID) bool) []ast.NodeID {
	t := cx.Tree
	kind := t.Kind(e)
	var out []ast.NodeID
	t.Walk(scope, func(id ast.NodeID, n *ast.Node) ast.Action {
		if n.Kind == ast.KindTypeDecl && id != scope {
			return ast.SkipChildren
		}
		if n.Kind == kind && n.Span.Start >= from && query.SameText(t, id, e) && extractable(cx, id) && ok(id) {
			out = append(out, id)
			return ast.SkipChildren
		}
		return ast.Continue
	})
	return out
}

type extraction struct {
	expr, anchor ast.NodeID
	typ          *symbols.Type
	occurrences  []ast.NodeID
}

func matchExtractLocal(all bool) func(*correction.Context) (extraction, bool) {
	return func(cx *correction.Context) (extraction, bool) {
		t := cx.Tree
		if !cx.HasBindings() {
			return extraction{}, false
		}
		e := selectedExpression(cx)
		if e == ast.NoNodeID || !extractable(cx, e) {
			return extraction{}, false
		}
		typ := cx.TypeOf(e)
		if typ == nil || typ.IsVoid() || typ.IsNull() {
			return extraction{}, false
		}
		anchor := query.FindEnclosingStatement(t, e)
		if anchor == ast.NoNodeID || t.Kind(anchor) == ast.KindSwitchCase || !inStatementList(t, anchor) || reevaluated(t, e, anchor) {
			return extraction{}, false
		}
		m := extraction{expr: e, anchor: anchor, typ: typ, occurrences: []ast.NodeID{e}}
		if !all {
			return m, true
		}
		m.occurrences = sameExpressions(cx, t.Parent(anchor), e, t.Span(anchor).Start, func(id ast.NodeID) bool {
			st := query.FindEnclosingStatement(t, id)
			return t.Kind(st) != ast.KindSwitchCase && (st != anchor || !reevaluated(t, id, anchor))
		})
		return m, len(m.occurrences) > 1
	}
}

func extractLocal(label string) func(*correction.Context, extraction) []*correction.Draft {
	return func(cx *correction.Context, m extraction) []*correction.Draft {
		t := cx.Tree
		d := cx.NewDraft(label)
		b := d.Edit
		used := query.UsedVariableNames(t, cx.Resolver, m.anchor)
		names := query.SuggestVariableNames(t, m.expr, m.typ, query.VarLocal, cx.Settings.Naming, used)

		frag := b.Fragment(names[0], b.CopyTarget(m.expr))
		b.InsertBefore(m.anchor, b.LocalVar(0, b.Type(m.typ), frag))
		refs := make([]ast.NodeID, 0, len(m.occurrences))
		for _, occ := range m.occurrences {
			ref := b.Name(names[0])
			b.Replace(occ, ref)
			refs = append(refs, ref)
		}
		linkName(d, "name", names, fragmentName(b, frag), refs...)
		d.Linked.SetEnd(refs[0], linked.After)
		return single(d)
	}
}

// isConstantExpr accepts literals, operators and static final fields.
func isConstantExpr(cx *correction.Context, e ast.NodeID) bool {
	t := cx.Tree
	n := t.Node(e)
	constField := func(name ast.NodeID) bool {
		sym := cx.Binding(name)
		return sym != nil && sym.Kind == symbols.SymbolField && sym.IsStatic() && sym.IsFinal()
	}
	switch n.Kind {
	case ast.KindLiteral:
		return n.Op != token.KwNull
	case ast.KindParen:
		return isConstantExpr(cx, t.Child(e, ast.ParenExpr))
	case ast.KindInfix:
		return isConstantExpr(cx, t.Child(e, ast.InfixLeft)) && isConstantExpr(cx, t.Child(e, ast.InfixRight))
	case ast.KindPrefix:
		return n.Op != token.PlusPlus && n.Op != token.MinusMinus && isConstantExpr(cx, t.Child(e, ast.PrefixOperand))
	case ast.KindConditional:
		return isConstantExpr(cx, t.Child(e, ast.CondCondition)) &&
			isConstantExpr(cx, t.Child(e, ast.CondThen)) &&
			isConstantExpr(cx, t.Child(e, ast.CondElse))
	case ast.KindCast:
		return isConstantExpr(cx, t.Child(e, ast.CastExpr))
	case ast.KindName:
		return constField(e)
	case ast.KindQualifiedName:
		return constField(t.Child(e, ast.QualifiedNameName))
	case ast.KindFieldAccess:
		return constField(t.Child(e, ast.FieldAccessName))
	}
	return false
}

type constantExtraction struct {
	expr, typeDecl ast.NodeID
	typ            *symbols.Type
	cls            *symbols.Symbol
}

func matchExtractConstant(cx *correction.Context) (constantExtraction, bool) {
	t := cx.Tree
	if !cx.HasBindings() {
		return constantExtraction{}, false
	}
	e := selectedExpression(cx)
	if e == ast.NoNodeID || is(t, e, ast.KindName, ast.KindQualifiedName, ast.KindFieldAccess) ||
		!extractable(cx, e) || !isConstantExpr(cx, e) {
		return constantExtraction{}, false
	}
	typ := cx.TypeOf(e)
	if typ == nil || typ.IsVoid() || typ.IsNull() {
		return constantExtraction{}, false
	}
	typeDecl, cls := enclosingClass(cx, e)
	if cls == nil {
		return constantExtraction{}, false
	}
	return constantExtraction{expr: e, typeDecl: typeDecl, typ: typ, cls: cls}, true
}

// constantStem turns the words of a string literal into UPPER_SNAKE.
func constantStem(lit string) string {
	words := strings.FieldsFunc(strings.Trim(lit, `"`), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w)
	}
	s := strings.Join(words, "_")
	if s == "" || unicode.IsDigit(rune(s[0])) {
		return ""
	}
	return s
}

func constantNames(cx *correction.Context, m constantExtraction, used map[string]bool) []string {
	t := cx.Tree
	var stems []string
	if n := t.Node(query.SkipParens(t, m.expr)); n.Kind == ast.KindLiteral && n.Op == token.StringLit {
		if s := constantStem(n.Text); s != "" {
			stems = append(stems, s)
		}
	}
	if !m.typ.IsPrimitive() {
		stems = append(stems, query.SuggestVariableNames(t, m.expr, m.typ, query.VarConstant, cx.Settings.Naming, used)...)
	}
	stems = append(stems, "CONSTANT")

	var out []string
	for _, s := range stems {
		name := s
		for i := 2; used[name]; i++ {
			name = fmt.Sprintf("%s%d", s, i)
		}
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

func extractConstant(cx *correction.Context, m constantExtraction) []*correction.Draft {
	t := cx.Tree
	names := constantNames(cx, m, memberNames(m.cls))
	d := cx.NewDraft("Extract to constant")
	b := d.Edit
	frag := b.Fragment(names[0], b.CopyTarget(m.expr))
	insertField(b, t, m.typeDecl, b.Field(ast.ModPrivate|ast.ModStatic|ast.ModFinal, b.Type(m.typ), frag))

	var refs []ast.NodeID
	for _, occ := range sameExpressions(cx, m.typeDecl, m.expr, 0, func(ast.NodeID) bool { return true }) {
		ref := b.Name(names[0])
		b.Replace(occ, ref)
		refs = append(refs, ref)
	}
	linkName(d, "name", names, fragmentName(b, frag), refs...)
	return single(d)
}

type localDecl struct {
	frag, decl ast.NodeID
	sym        *symbols.Symbol
	refs       []ast.NodeID
}

// localAt resolves the caret to a local declared by a statement in a block.
func localAt(cx *correction.Context) (localDecl, bool) {
	t := cx.Tree
	if !cx.HasBindings() {
		return localDecl{}, false
	}
	sym := variableAt(cx, symbols.SymbolLocal)
	if sym == nil {
		return localDecl{}, false
	}
	frag := sym.Decl.Node
	decl := t.Parent(frag)
	if t.Kind(decl) != ast.KindLocalVarDecl {
		return localDecl{}, false
	}
	return localDecl{frag: frag, decl: decl, sym: sym, refs: sortedRefs(cx, sym)}, true
}

func matchInlineLocal(cx *correction.Context) (localDecl, bool) {
	t := cx.Tree
	m, ok := localAt(cx)
	if !ok || !inStatementList(t, m.decl) || len(m.refs) == 0 {
		return localDecl{}, false
	}
	if init := t.Child(m.frag, ast.FragmentInit); init == ast.NoNodeID || t.Kind(init) == ast.KindArrayInit {
		return localDecl{}, false
	}
	for _, r := range m.refs {
		if query.IsWriteAccess(t, r) {
			return localDecl{}, false
		}
	}
	return m, true
}

func inlineLocal(cx *correction.Context, m localDecl) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Inline local variable")
	b := d.Edit
	init := t.Child(m.frag, ast.FragmentInit)
	for _, r := range m.refs {
		b.Replace(r, fit(b, t, r, b.CopyTarget(init)))
	}
	if len(t.List(m.decl, ast.LocalFragments)) == 1 {
		b.Remove(m.decl)
	} else {
		b.Remove(m.frag)
	}
	return single(d)
}

type localToField struct {
	localDecl
	typeDecl ast.NodeID
}

func matchConvertLocalToField(cx *correction.Context) (localToField, bool) {
	t := cx.Tree
	m, ok := localAt(cx)
	if !ok || !inStatementList(t, m.decl) || len(t.List(m.decl, ast.LocalFragments)) != 1 {
		return localToField{}, false
	}
	if t.Kind(t.Child(m.frag, ast.FragmentInit)) == ast.KindArrayInit {
		return localToField{}, false
	}
	typeDecl, cls := enclosingClass(cx, m.decl)
	if cls == nil || cls.LookupField(m.sym.Name) != nil {
		return localToField{}, false
	}
	return localToField{localDecl: m, typeDecl: typeDecl}, true
}

func convertLocalToField(cx *correction.Context, m localToField) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Convert local variable to field")
	b := d.Edit
	name := m.sym.Name
	mods := ast.ModPrivate
	if query.IsInStaticContext(t, m.decl) {
		mods |= ast.ModStatic
	}
	frag := b.Fragment(name, ast.NoNodeID)
	insertField(b, t, m.typeDecl, b.Field(mods, b.CopyTarget(t.Child(m.decl, ast.LocalType)), frag))

	var refs []ast.NodeID
	if init := t.Child(m.frag, ast.FragmentInit); init != ast.NoNodeID {
		lhs := b.Name(name)
		refs = append(refs, lhs)
		b.Replace(m.decl, b.ExprStmt(b.Assign(token.Assign, lhs, b.MoveTarget(init))))
	} else {
		b.Remove(m.decl)
	}
	for _, r := range m.refs {
		ref := b.Name(name)
		b.Replace(r, ref)
		refs = append(refs, ref)
	}
	linkName(d, "name", nil, fragmentName(b, frag), refs...)
	return single(d)
}

func matchRenameLocal(cx *correction.Context) (*symbols.Symbol, bool) {
	if !cx.HasBindings() {
		return nil, false
	}
	sym := variableAt(cx, symbols.SymbolLocal, symbols.SymbolParam)
	return sym, sym != nil && sym.Decl.Name != ast.NoNodeID
}

func renameLocal(cx *correction.Context, sym *symbols.Symbol) []*correction.Draft {
	d := cx.NewDraft(fmt.Sprintf("Rename '%s' in file", sym.Name))
	linkName(d, "name", nil, sym.Decl.Name, sortedRefs(cx, sym)...)
	d.Linked.SetEnd(cx.Covering(), linked.After)
	return single(d)
}

// fragmentAt returns the local fragment whose name or header holds the caret.
func fragmentAt(cx *correction.Context) ast.NodeID {
	t := cx.Tree
	name := cx.Covering()
	if t.Location(name) != ast.FragmentName || t.Kind(t.Parent(t.Parent(name))) != ast.KindLocalVarDecl {
		return ast.NoNodeID
	}
	return t.Parent(name)
}

func matchSplitVariable(cx *correction.Context) (ast.NodeID, bool) {
	t := cx.Tree
	frag := fragmentAt(cx)
	if frag == ast.NoNodeID {
		return ast.NoNodeID, false
	}
	decl := t.Parent(frag)
	init := t.Child(frag, ast.FragmentInit)
	if init == ast.NoNodeID || t.Kind(init) == ast.KindArrayInit {
		return ast.NoNodeID, false
	}
	if t.Lang == ast.LangJavaScript && t.Node(decl).Mods.Has(ast.ModFinal) {
		return ast.NoNodeID, false
	}
	if t.Location(decl) == ast.ForInit {
		return frag, t.Child(decl, ast.LocalType) != ast.NoNodeID && inStatementList(t, t.Parent(decl))
	}
	return frag, inStatementList(t, decl) && len(t.List(decl, ast.LocalFragments)) == 1
}

func splitVariable(cx *correction.Context, frag ast.NodeID) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Split variable declaration")
	b := d.Edit
	decl := t.Parent(frag)
	if t.Location(decl) != ast.ForInit {
		name := text(t, t.Child(frag, ast.FragmentName))
		init := t.Child(frag, ast.FragmentInit)
		b.Remove(init)
		b.InsertAfter(decl, b.ExprStmt(b.Assign(token.Assign, b.Name(name), b.MoveTarget(init))))
		return single(d)
	}

	// объявление из заголовка for переезжает перед циклом
	loop := t.Parent(decl)
	var frags, assigns []ast.NodeID
	for _, f := range t.List(decl, ast.LocalFragments) {
		name := text(t, t.Child(f, ast.FragmentName))
		frags = append(frags, b.Fragment(name, ast.NoNodeID))
		if init := t.Child(f, ast.FragmentInit); init != ast.NoNodeID {
			assigns = append(assigns, b.Assign(token.Assign, b.Name(name), b.MoveTarget(init)))
		}
	}
	mods := t.Node(decl).Mods &^ ast.ModFinal
	b.InsertBefore(loop, b.LocalVar(mods, b.CopyTarget(t.Child(decl, ast.LocalType)), frags...))
	b.Replace(decl, assigns[0])
	for _, a := range assigns[1:] {
		b.InsertAfter(decl, a)
	}
	return single(d)
}

type joinVariable struct {
	frag, decl, assign ast.NodeID
}

func matchJoinVariable(cx *correction.Context) (joinVariable, bool) {
	t := cx.Tree
	m, ok := localAt(cx)
	if !ok || t.Child(m.frag, ast.FragmentInit) != ast.NoNodeID || !inStatementList(t, m.decl) || len(m.refs) == 0 {
		return joinVariable{}, false
	}
	first := m.refs[0]
	assign := t.Parent(first)
	if t.Location(first) != ast.AssignLHS || t.Node(assign).Op != token.Assign {
		return joinVariable{}, false
	}
	stmt := t.Parent(assign)
	if t.Kind(stmt) != ast.KindExprStmt || t.Parent(stmt) != t.Parent(m.decl) {
		return joinVariable{}, false
	}
	rhs := t.Child(assign, ast.AssignRHS)
	if t.Any(rhs, func(id ast.NodeID, _ *ast.Node) bool { return cx.Binding(id) == m.sym }) {
		return joinVariable{}, false
	}
	// между объявлением и присваиванием не должны меняться переменные из rhs
	read := make(map[*symbols.Symbol]bool)
	t.Walk(rhs, func(id ast.NodeID, n *ast.Node) ast.Action {
		if n.Kind == ast.KindName {
			if sym := cx.Binding(id); sym.IsVariable() {
				read[sym] = true
			}
		}
		return ast.Continue
	})
	stmts := t.List(t.Parent(m.decl), query.SlotOf(t, m.decl).Prop)
	from, to := slices.Index(stmts, m.decl), slices.Index(stmts, stmt)
	for _, between := range stmts[from+1 : to] {
		if t.Any(between, func(id ast.NodeID, n *ast.Node) bool {
			return n.Kind == ast.KindName && read[cx.Binding(id)] && query.IsWriteAccess(t, id)
		}) {
			return joinVariable{}, false
		}
	}
	return joinVariable{frag: m.frag, decl: m.decl, assign: stmt}, true
}

func joinVariableDecl(cx *correction.Context, m joinVariable) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Join variable declaration")
	b := d.Edit
	rhs := t.Child(t.Child(m.assign, ast.ExprStmtExpr), ast.AssignRHS)
	b.Set(m.frag, ast.FragmentInit, b.MoveTarget(rhs))
	b.Remove(m.assign)
	return single(d)
}

// declarationAt climbs from the caret to a local or field declaration
// without entering an initializer.
func declarationAt(cx *correction.Context) ast.NodeID {
	t := cx.Tree
	for cur := cx.Covering(); cur != ast.NoNodeID; cur = t.Parent(cur) {
		switch t.Kind(cur) {
		case ast.KindLocalVarDecl, ast.KindFieldDecl:
			return cur
		case ast.KindBlock, ast.KindTypeDecl, ast.KindMethodDecl:
			return ast.NoNodeID
		}
		if t.Location(cur) == ast.FragmentInit {
			return ast.NoNodeID
		}
	}
	return ast.NoNodeID
}

func matchSplitDeclaration(cx *correction.Context) (ast.NodeID, bool) {
	t := cx.Tree
	decl := declarationAt(cx)
	if decl == ast.NoNodeID {
		return ast.NoNodeID, false
	}
	if t.Kind(decl) == ast.KindLocalVarDecl {
		return decl, len(t.List(decl, ast.LocalFragments)) > 1 && inStatementList(t, decl) &&
			t.Child(decl, ast.LocalType) != ast.NoNodeID
	}
	return decl, len(t.List(decl, ast.FieldFragments)) > 1
}

func splitDeclaration(cx *correction.Context, decl ast.NodeID) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Split variable declaration")
	b := d.Edit
	mods := t.Node(decl).Mods
	typeProp, fragProp := ast.LocalType, ast.LocalFragments
	declare := b.LocalVar
	if t.Kind(decl) == ast.KindFieldDecl {
		typeProp, fragProp = ast.FieldType, ast.FieldFragments
		declare = b.Field
	}
	typ := t.Child(decl, typeProp)
	for _, f := range t.List(decl, fragProp)[1:] {
		b.InsertAfter(decl, declare(mods, b.CopyTarget(typ), b.MoveTarget(f)))
	}
	return single(d)
}
