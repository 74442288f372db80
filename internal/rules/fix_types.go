package rules

import (
	"fmt"

	"mend/internal/ast"
	"mend/internal/correction"
	"mend/internal/diag"
	"mend/internal/linked"
	"mend/internal/query"
	"mend/internal/symbols"
	"mend/internal/token"
)

type castPlan struct {
	values []ast.NodeID
	types  []*symbols.Type
	label  string
}

func matchAddCast(cx *correction.Context) (castPlan, bool) {
	if !cx.HasBindings() || cx.Problem == nil {
		return castPlan{}, false
	}
	if cx.Problem.Code == diag.SemParameterMismatch {
		return argumentCasts(cx)
	}
	v := problemNode(cx)
	if v == ast.NoNodeID || !cx.Tree.Kind(v).IsExpression() {
		return castPlan{}, false
	}
	u := cx.Universe()
	got, want := cx.TypeOf(v), typeNamed(cx, cx.Problem.Arg(1))
	if got == nil || want == nil || u.AssignableTo(got, want) || !u.CastableTo(got, want) {
		return castPlan{}, false
	}
	return castPlan{
		values: []ast.NodeID{v},
		types:  []*symbols.Type{want},
		label:  fmt.Sprintf("Add cast to '%s'", want),
	}, true
}

// candidateOwners lists the classes whose methods a call may mean: the
// receiver type, or the enclosing classes from the inside out.
func candidateOwners(cx *correction.Context, call ast.NodeID) []*symbols.Symbol {
	if recv := cx.Tree.Child(call, ast.CallReceiver); recv != ast.NoNodeID {
		if rt := cx.TypeOf(recv); rt.IsClass() {
			return []*symbols.Symbol{rt.Class}
		}
		return nil
	}
	var out []*symbols.Symbol
	_, cls := enclosingClass(cx, call)
	for ; cls != nil && cls.Kind == symbols.SymbolType; cls = cls.Owner {
		out = append(out, cls)
	}
	return out
}

func argumentCasts(cx *correction.Context) (castPlan, bool) {
	t := cx.Tree
	u := cx.Universe()
	name := problemNode(cx, ast.KindName)
	if name == ast.NoNodeID || t.Location(name) != ast.CallName {
		return castPlan{}, false
	}
	call := t.Parent(name)
	args := t.List(call, ast.CallArgs)
	for _, owner := range candidateOwners(cx, call) {
		for _, m := range owner.LookupMethods(t.Node(name).Text) {
			if m.IsVarargs() || len(m.Params) != len(args) {
				continue
			}
			var plan castPlan
			ok := true
			for i, a := range args {
				at, pt := cx.TypeOf(a), m.Params[i].Type
				switch {
				case at == nil:
					ok = false
				case u.AssignableTo(at, pt):
				case u.CastableTo(at, pt):
					plan.values = append(plan.values, a)
					plan.types = append(plan.types, pt)
				default:
					ok = false
				}
			}
			if !ok || len(plan.values) == 0 {
				continue
			}
			if len(plan.values) == 1 {
				plan.label = fmt.Sprintf("Cast argument %d to '%s'", t.IndexInList(plan.values[0])+1, plan.types[0])
			} else {
				plan.label = fmt.Sprintf("Cast arguments to match '%s'", m.Signature())
			}
			return plan, true
		}
	}
	return castPlan{}, false
}

func addCast(cx *correction.Context, m castPlan) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft(m.label)
	b := d.Edit
	for i, v := range m.values {
		b.Replace(v, fit(b, t, v, b.Cast(b.Type(m.types[i]), b.MoveTarget(v))))
	}
	return single(d)
}

type retype struct {
	tree     *ast.Tree
	typeNode ast.NodeID
	name     string
	typ      *symbols.Type
}

// declaredTypeNode returns the type node of the declaration of sym when a
// single-variable declaration spells it.
func declaredTypeNode(sym *symbols.Symbol) ast.NodeID {
	t, decl := sym.Decl.Tree, sym.Decl.Node
	switch t.Kind(decl) {
	case ast.KindParam:
		return t.Child(decl, ast.ParamType)
	case ast.KindVarFragment:
		if t.Node(decl).Dims > 0 {
			return ast.NoNodeID
		}
		owner := t.Parent(decl)
		switch t.Kind(owner) {
		case ast.KindLocalVarDecl:
			if len(t.List(owner, ast.LocalFragments)) == 1 {
				return t.Child(owner, ast.LocalType)
			}
		case ast.KindFieldDecl:
			if len(t.List(owner, ast.FieldFragments)) == 1 {
				return t.Child(owner, ast.FieldType)
			}
		}
	}
	return ast.NoNodeID
}

func matchChangeVariableType(cx *correction.Context) (retype, bool) {
	if !cx.HasBindings() || cx.Problem == nil {
		return retype{}, false
	}
	t := cx.Tree
	v := problemNode(cx)
	if v == ast.NoNodeID {
		return retype{}, false
	}
	var sym *symbols.Symbol
	switch t.Location(v) {
	case ast.FragmentInit:
		sym = cx.Resolver.DeclaredBy(t.Parent(v))
	case ast.AssignRHS:
		assign := t.Parent(v)
		if t.Node(assign).Op != token.Assign {
			return retype{}, false
		}
		lhs := t.Child(assign, ast.AssignLHS)
		if t.Kind(lhs) == ast.KindFieldAccess {
			lhs = t.Child(lhs, ast.FieldAccessName)
		}
		sym = cx.Binding(lhs)
	}
	if !sym.IsVariable() || !sym.Decl.IsValid() {
		return retype{}, false
	}
	typ := cx.TypeOf(v)
	if typ == nil || typ.IsNull() || typ.IsVoid() {
		return retype{}, false
	}
	node := declaredTypeNode(sym)
	if node == ast.NoNodeID {
		return retype{}, false
	}
	return retype{tree: sym.Decl.Tree, typeNode: node, name: sym.Name, typ: typ}, true
}

func changeVariableType(cx *correction.Context, m retype) []*correction.Draft {
	d := cx.NewDraft(fmt.Sprintf("Change type of '%s' to '%s'", m.name, m.typ))
	b := d.Edit
	if m.tree != cx.Tree {
		b = d.For(m.tree)
	}
	b.Replace(m.typeNode, b.Type(m.typ))
	return single(d)
}

// returnedValue returns the value of a return statement the problem points
// at, together with its method.
func returnedValue(cx *correction.Context) (value, method ast.NodeID) {
	t := cx.Tree
	v := problemNode(cx)
	if v == ast.NoNodeID || t.Location(v) != ast.ReturnExpr {
		return ast.NoNodeID, ast.NoNodeID
	}
	return v, query.FindEnclosingMethod(t, v)
}

func matchChangeReturnType(cx *correction.Context) (retype, bool) {
	if !cx.HasBindings() {
		return retype{}, false
	}
	t := cx.Tree
	v, method := returnedValue(cx)
	if method == ast.NoNodeID {
		return retype{}, false
	}
	ret := t.Child(method, ast.MethodReturnType)
	typ := cx.TypeOf(v)
	if ret == ast.NoNodeID || typ == nil || typ.IsVoid() {
		return retype{}, false
	}
	return retype{
		tree:     t,
		typeNode: ret,
		name:     text(t, t.Child(method, ast.MethodName)),
		typ:      declarable(cx.Universe(), typ),
	}, true
}

func changeReturnType(cx *correction.Context, m retype) []*correction.Draft {
	d := cx.NewDraft(fmt.Sprintf("Change return type of '%s' to '%s'", m.name, m.typ))
	b := d.Edit
	b.Replace(m.typeNode, b.Type(m.typ))
	return single(d)
}

func matchRemoveReturnValue(cx *correction.Context) (ast.NodeID, bool) {
	v, method := returnedValue(cx)
	return v, method != ast.NoNodeID
}

func removeReturnValue(cx *correction.Context, v ast.NodeID) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Remove return value")
	b := d.Edit
	ret := t.Parent(v)
	if isStatementExpression(t, v) {
		replaceStatement(b, t, ret, b.ExprStmt(b.MoveTarget(v)), b.Return(ast.NoNodeID))
	} else {
		b.Replace(ret, b.Return(ast.NoNodeID))
	}
	return single(d)
}

type missingReturn struct {
	method ast.NodeID
	ret    ast.NodeID // return without value; NoNodeID when a statement is missing
	typ    *symbols.Type
}

func matchMissingReturn(cx *correction.Context) (missingReturn, bool) {
	if !cx.HasBindings() || cx.Problem == nil {
		return missingReturn{}, false
	}
	t := cx.Tree
	var m missingReturn
	switch cx.Problem.Code {
	case diag.SemShouldReturnValue:
		m.ret = problemNode(cx, ast.KindReturn)
		m.method = query.FindEnclosingMethod(t, m.ret)
	case diag.SemMissingReturn:
		if name := problemNode(cx, ast.KindName); t.Location(name) == ast.MethodName {
			m.method = t.Parent(name)
		}
	}
	if m.method == ast.NoNodeID || t.Child(m.method, ast.MethodReturnType) == ast.NoNodeID {
		return missingReturn{}, false
	}
	if sym := cx.Resolver.DeclaredBy(m.method); sym != nil {
		m.typ = sym.Type
	}
	if m.typ == nil || m.typ.IsVoid() {
		return missingReturn{}, false
	}
	return m, true
}

func matchAddReturnStatement(cx *correction.Context) (missingReturn, bool) {
	m, ok := matchMissingReturn(cx)
	if !ok || m.ret == ast.NoNodeID && cx.Tree.Child(m.method, ast.MethodBody) == ast.NoNodeID {
		return missingReturn{}, false
	}
	return m, true
}

// returnCandidates lists visible variables whose values the method may
// return, innermost first.
func returnCandidates(cx *correction.Context, at ast.NodeID, want *symbols.Type) []string {
	u := cx.Universe()
	static := query.IsInStaticContext(cx.Tree, at)
	var out []string
	for _, v := range cx.Resolver.VisibleVariables(at) {
		if v.Kind == symbols.SymbolField && static && !v.IsStatic() {
			continue
		}
		if v.Type != nil && u.AssignableTo(v.Type, want) {
			out = append(out, v.Name)
		}
	}
	return out
}

func addReturnStatement(cx *correction.Context, m missingReturn) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Add return statement")
	b := d.Edit

	at := m.ret
	body := t.Child(m.method, ast.MethodBody)
	if at == ast.NoNodeID {
		at = body
		if stmts := t.List(body, ast.BlockStatements); len(stmts) > 0 {
			at = stmts[len(stmts)-1]
		}
	}
	names := returnCandidates(cx, at, m.typ)
	def := symbols.DefaultValue(m.typ)

	var value ast.NodeID
	if len(names) > 0 {
		value = b.Name(names[0])
	} else {
		value = b.DefaultValue(m.typ)
	}
	if m.ret != ast.NoNodeID {
		b.Set(m.ret, ast.ReturnExpr, value)
	} else {
		b.InsertLast(body, ast.BlockStatements, b.Return(value))
	}
	if len(names) > 0 {
		linkName(d, "return_value", append(names, def), value)
	} else {
		d.Linked.Group("return_value").AddPosition(value, true)
	}
	d.Linked.SetEnd(value, linked.After)
	return single(d)
}

func matchChangeToVoid(cx *correction.Context) (missingReturn, bool) {
	m, ok := matchMissingReturn(cx)
	if !ok || cx.Tree.Node(m.method).Flags.Has(ast.FlagConstructor) {
		return missingReturn{}, false
	}
	return m, true
}

func changeToVoid(cx *correction.Context, m missingReturn) []*correction.Draft {
	d := cx.NewDraft("Change return type to 'void'")
	b := d.Edit
	b.Replace(cx.Tree.Child(m.method, ast.MethodReturnType), b.Type(cx.Universe().Void))
	return single(d)
}

type untypedMethod struct {
	name ast.NodeID
	typ  *symbols.Type
}

func matchAddReturnType(cx *correction.Context) (untypedMethod, bool) {
	if !cx.HasBindings() {
		return untypedMethod{}, false
	}
	t := cx.Tree
	name := problemNode(cx, ast.KindName)
	if name == ast.NoNodeID || t.Location(name) != ast.MethodName {
		return untypedMethod{}, false
	}
	method := t.Parent(name)
	if t.Child(method, ast.MethodReturnType) != ast.NoNodeID {
		return untypedMethod{}, false
	}
	return untypedMethod{name: name, typ: inferReturnType(cx, method)}, true
}

// inferReturnType widens the types of the returned values of method to one
// all of them convert to; void when nothing is returned.
func inferReturnType(cx *correction.Context, method ast.NodeID) *symbols.Type {
	t := cx.Tree
	u := cx.Universe()
	var typ *symbols.Type
	body := t.Child(method, ast.MethodBody)
	if body == ast.NoNodeID {
		return u.Void
	}
	t.Walk(body, func(id ast.NodeID, n *ast.Node) ast.Action {
		switch n.Kind {
		case ast.KindTypeDecl:
			return ast.SkipChildren
		case ast.KindReturn:
			got := cx.TypeOf(t.Child(id, ast.ReturnExpr))
			switch {
			case got == nil:
			case typ == nil:
				typ = got
			case u.AssignableTo(typ, got):
				typ = got
			}
		}
		return ast.Continue
	})
	if typ == nil {
		return u.Void
	}
	return declarable(u, typ)
}

func addReturnType(cx *correction.Context, m untypedMethod) []*correction.Draft {
	d := cx.NewDraft(fmt.Sprintf("Add return type '%s'", m.typ))
	d.Edit.InsertText(cx.Tree.Span(m.name).Start, m.typ.String()+" ")
	return single(d)
}
