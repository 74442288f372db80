package query

import (
	"mend/internal/ast"
	"mend/internal/symbols"
	"mend/internal/token"
)

// InferExpectedType returns the type the position of expression id requires,
// judging from its immediate parent. Parentheses, qualified names and field
// accesses are looked through. nil means the position has no expectation.
func InferExpectedType(t *ast.Tree, r symbols.Resolver, id ast.NodeID) *symbols.Type {
	u := r.Universe()
	parent := t.Parent(id)
	loc := t.Location(id)
	switch t.Kind(parent) {
	case ast.KindAssign:
		if loc == ast.AssignLHS {
			return r.TypeOf(t.Child(parent, ast.AssignRHS))
		}
		return r.TypeOf(t.Child(parent, ast.AssignLHS))
	case ast.KindInfix:
		op := t.Node(parent).Op
		switch op {
		case token.AndAnd, token.OrOr:
			return u.Boolean
		case token.Shl, token.Shr, token.Ushr:
			return u.Int
		}
		other := t.Child(parent, ast.InfixRight)
		if loc == ast.InfixRight {
			other = t.Child(parent, ast.InfixLeft)
		}
		if typ := r.TypeOf(other); typ != nil {
			return typ
		}
		if op != token.EqEq && op != token.BangEq {
			return u.Int
		}
		return nil
	case ast.KindInstanceOf:
		return r.TypeOf(t.Child(parent, ast.InstanceOfType))
	case ast.KindVarFragment:
		if loc == ast.FragmentInit {
			return DeclaredType(t, r, parent)
		}
	case ast.KindCall:
		if loc == ast.CallArgs {
			return parameterType(r.Binding(parent), t.IndexInList(id))
		}
	case ast.KindNew:
		if loc == ast.NewArgs {
			return parameterType(r.Binding(parent), t.IndexInList(id))
		}
	case ast.KindParen:
		return InferExpectedType(t, r, parent)
	case ast.KindArrayAccess:
		if loc == ast.ArrayAccessIndex {
			return u.Int
		}
		if elem := InferExpectedType(t, r, parent); elem != nil {
			return u.ArrayOf(elem)
		}
	case ast.KindNewArray:
		if loc == ast.NewArrayDims {
			return u.Int
		}
	case ast.KindArrayInit:
		return arrayInitElementType(t, r, parent)
	case ast.KindConditional:
		switch loc {
		case ast.CondCondition:
			return u.Boolean
		case ast.CondElse:
			return r.TypeOf(t.Child(parent, ast.CondThen))
		default:
			return r.TypeOf(t.Child(parent, ast.CondElse))
		}
	case ast.KindPostfix:
		return u.Int
	case ast.KindPrefix:
		if t.Node(parent).Op == token.Bang {
			return u.Boolean
		}
		return u.Int
	case ast.KindIf, ast.KindWhile, ast.KindDo:
		if t.Kind(id).IsExpression() {
			return u.Boolean
		}
	case ast.KindFor:
		if loc == ast.ForCondition {
			return u.Boolean
		}
	case ast.KindSwitch:
		if loc == ast.SwitchExpr {
			return u.Int
		}
	case ast.KindReturn:
		method := FindEnclosingMethod(t, parent)
		if method == ast.NoNodeID || t.Node(method).Flags.Has(ast.FlagConstructor) {
			return nil
		}
		return r.TypeOf(t.Child(method, ast.MethodReturnType))
	case ast.KindThrow:
		return u.Exception
	case ast.KindFieldAccess:
		if loc == ast.FieldAccessName {
			return InferExpectedType(t, r, parent)
		}
	case ast.KindQualifiedName:
		if loc == ast.QualifiedNameName {
			return InferExpectedType(t, r, parent)
		}
	case ast.KindSwitchCase:
		if sw := t.Parent(parent); t.Kind(sw) == ast.KindSwitch {
			return r.TypeOf(t.Child(sw, ast.SwitchExpr))
		}
	}
	return nil
}

// parameterType returns the declared type at index, substituting the element
// type of a trailing varargs parameter.
func parameterType(method *symbols.Symbol, index int) *symbols.Type {
	if method == nil || index < 0 {
		return nil
	}
	n := len(method.Params)
	if method.IsVarargs() && n > 0 && index >= n-1 {
		last := method.Params[n-1].Type
		if last.IsArray() {
			return last.Elem
		}
		return last
	}
	if index < n {
		return method.Params[index].Type
	}
	return nil
}

// arrayInitElementType: the element type of the array being initialised,
// minus one dimension per nesting level and per extra declarator dimension.
func arrayInitElementType(t *ast.Tree, r symbols.Resolver, init ast.NodeID) *symbols.Type {
	dim := 1
	outer := t.Parent(init)
	for t.Kind(outer) == ast.KindArrayInit {
		outer = t.Parent(outer)
		dim++
	}
	var creation *symbols.Type
	switch t.Kind(outer) {
	case ast.KindNewArray:
		creation = r.TypeOf(t.Child(outer, ast.NewArrayType))
	case ast.KindVarFragment:
		creation = r.TypeOf(t.Child(t.Parent(outer), declTypeProp(t.Kind(t.Parent(outer)))))
		dim -= int(t.Node(outer).Dims)
	}
	if creation == nil {
		return nil
	}
	for creation.IsArray() && dim > 0 {
		creation = creation.Elem
		dim--
	}
	return creation
}

func declTypeProp(k ast.Kind) ast.Prop {
	if k == ast.KindFieldDecl {
		return ast.FieldType
	}
	return ast.LocalType
}

// DeclaredType returns the full type of a variable fragment or parameter,
// extra dimensions included.
func DeclaredType(t *ast.Tree, r symbols.Resolver, decl ast.NodeID) *symbols.Type {
	if sym := r.DeclaredBy(decl); sym != nil && sym.Type != nil {
		return sym.Type
	}
	switch t.Kind(decl) {
	case ast.KindVarFragment:
		owner := t.Parent(decl)
		base := r.TypeOf(t.Child(owner, declTypeProp(t.Kind(owner))))
		if base == nil {
			return nil
		}
		return r.Universe().ArrayOfDims(base, int(t.Node(decl).Dims))
	case ast.KindParam:
		base := r.TypeOf(t.Child(decl, ast.ParamType))
		if base == nil {
			return nil
		}
		return r.Universe().ArrayOfDims(base, int(t.Node(decl).Dims))
	}
	return nil
}
