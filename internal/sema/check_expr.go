package sema

import (
	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/query"
	"mend/internal/symbols"
	"mend/internal/token"
)

// expr checks an expression and returns its type, nil when unknown. Names
// that denote classes return the class type and are marked in typeRefs.
func (c *checker) expr(id ast.NodeID) *symbols.Type {
	if id == ast.NoNodeID {
		return nil
	}
	typ := c.exprKind(id)
	c.table.SetType(id, typ)
	return typ
}

func (c *checker) exprKind(id ast.NodeID) *symbols.Type {
	t := c.tree
	n := t.Node(id)
	switch n.Kind {
	case ast.KindLiteral:
		return c.literalType(n.Op)
	case ast.KindThis:
		return c.class.Type
	case ast.KindName:
		return c.name(id, true)
	case ast.KindQualifiedName:
		return c.qualifiedName(id, true)
	case ast.KindParen:
		return c.expr(t.Child(id, ast.ParenExpr))
	case ast.KindInfix:
		return c.infix(id)
	case ast.KindPrefix:
		return c.prefix(id)
	case ast.KindPostfix:
		operand := t.Child(id, ast.PostfixOperand)
		typ := c.lvalue(operand, true)
		c.expectNumeric(operand, typ)
		return typ
	case ast.KindAssign:
		return c.assign(id)
	case ast.KindConditional:
		return c.conditional(id)
	case ast.KindInstanceOf:
		c.expr(t.Child(id, ast.InstanceOfExpr))
		c.types.resolve(t.Child(id, ast.InstanceOfType))
		return c.u.Boolean
	case ast.KindCast:
		typ := c.types.resolve(t.Child(id, ast.CastType))
		c.expr(t.Child(id, ast.CastExpr))
		return typ
	case ast.KindCall:
		return c.call(id)
	case ast.KindFieldAccess:
		return c.fieldAccess(id, true)
	case ast.KindArrayAccess:
		arr := c.expr(t.Child(id, ast.ArrayAccessArray))
		c.expectIndex(t.Child(id, ast.ArrayAccessIndex))
		if arr.IsArray() {
			return arr.Elem
		}
		return nil
	case ast.KindNew:
		return c.newExpr(id)
	case ast.KindNewArray:
		typ := c.types.resolve(t.Child(id, ast.NewArrayType))
		for _, d := range t.List(id, ast.NewArrayDims) {
			c.expectIndex(d)
		}
		if init := t.Child(id, ast.NewArrayInit); init != ast.NoNodeID {
			c.arrayInit(init, typ)
		}
		return typ
	case ast.KindArrayInit:
		c.arrayInit(id, nil)
		return nil
	case ast.KindOpaqueExpr:
		c.unit.noteOpaque(n.Text)
		return nil
	}
	return nil
}

func (c *checker) literalType(op token.Kind) *symbols.Type {
	switch op {
	case token.IntLit:
		return c.u.Int
	case token.LongLit:
		return c.u.Long
	case token.FloatLit:
		return c.u.Float
	case token.DoubleLit:
		return c.u.Double
	case token.CharLit:
		return c.u.Char
	case token.StringLit:
		return c.u.String
	case token.KwTrue, token.KwFalse:
		return c.u.Boolean
	case token.KwNull:
		return c.u.Null
	}
	return nil
}

// name resolves a simple expression name: local, parameter, field, class.
func (c *checker) name(id ast.NodeID, read bool) *symbols.Type {
	n := c.tree.Node(id)
	if n.Flags.Has(ast.FlagRecovered) {
		return nil
	}
	if v := c.lookupLocal(n.Text); v != nil {
		c.table.Bind(id, v)
		if read {
			c.readVar(id, v)
		}
		return v.Type
	}
	if f, viaOuter := c.lookupField(n.Text); f != nil {
		c.table.Bind(id, f)
		if read {
			c.unit.reads[f]++
		}
		if c.static && !f.IsStatic() && !viaOuter {
			c.report(diag.SemNonStaticFieldFromStatic, id, f.Name)
		}
		if !c.accessible(f) {
			c.report(diag.SemNotVisibleField, id, f.Name, f.DeclaringClass().Name)
		}
		return f.Type
	}
	if cls := c.unit.prog.lookupType(n.Text); cls != nil {
		c.table.Bind(id, cls)
		c.unit.typeRefs[id] = true
		return cls.Type
	}
	c.report(diag.SemUndefinedName, id, n.Text)
	return nil
}

// readVar counts a read of a local or parameter and checks definite assignment.
func (c *checker) readVar(id ast.NodeID, v *symbols.Symbol) {
	c.unit.reads[v]++
	if !c.flow.isAssigned(v) {
		c.report(diag.SemUninitializedLocal, id, v.Name)
		c.flow.assign(v)
	}
}

// qualifiedName resolves a.b where a is a class (static member) or a value.
func (c *checker) qualifiedName(id ast.NodeID, read bool) *symbols.Type {
	t := c.tree
	qual := t.Child(id, ast.QualifiedQualifier)
	nameID := t.Child(id, ast.QualifiedNameName)
	qt := c.expr(qual)
	return c.member(qual, qt, nameID, read)
}

func (c *checker) fieldAccess(id ast.NodeID, read bool) *symbols.Type {
	t := c.tree
	recv := t.Child(id, ast.FieldAccessReceiver)
	rt := c.expr(recv)
	return c.member(recv, rt, t.Child(id, ast.FieldAccessName), read)
}

// member resolves the field nameID of the receiver recv of type rt.
func (c *checker) member(recv ast.NodeID, rt *symbols.Type, nameID ast.NodeID, read bool) *symbols.Type {
	name := c.tree.Node(nameID).Text
	if rt == nil {
		return nil
	}
	if rt.IsArray() {
		if name == "length" {
			return c.u.Int
		}
		c.report(diag.SemUndefinedField, nameID, name, rt.String())
		return nil
	}
	if !rt.IsClass() {
		c.report(diag.SemUndefinedField, nameID, name, rt.String())
		return nil
	}
	isType := c.unit.typeRefs[query.SkipParens(c.tree, recv)]
	f := rt.Class.LookupField(name)
	if f == nil {
		if isType {
			for _, nested := range rt.Class.NestedTypes() {
				if nested.Name == name {
					c.table.Bind(nameID, nested)
					c.unit.typeRefs[c.tree.Parent(nameID)] = true
					return nested.Type
				}
			}
		}
		c.report(diag.SemUndefinedField, nameID, name, rt.Class.Name)
		return nil
	}
	c.table.Bind(nameID, f)
	if read {
		c.unit.reads[f]++
	}
	switch {
	case isType && !f.IsStatic():
		c.report(diag.SemNonStaticFieldFromStatic, nameID, f.Name)
	case !isType && f.IsStatic() && c.tree.Kind(recv) != ast.KindThis:
		c.report(diag.SemStaticAccessViaInstance, nameID, f.Name, f.DeclaringClass().Name)
	}
	if !c.accessible(f) {
		c.report(diag.SemNotVisibleField, nameID, f.Name, f.DeclaringClass().Name)
	}
	return f.Type
}

// lvalue checks an assignment target. compound targets are read as well.
func (c *checker) lvalue(id ast.NodeID, compound bool) *symbols.Type {
	t := c.tree
	var typ *symbols.Type
	switch t.Kind(id) {
	case ast.KindName:
		typ = c.name(id, false)
	case ast.KindQualifiedName:
		typ = c.qualifiedName(id, false)
	case ast.KindFieldAccess:
		typ = c.fieldAccess(id, false)
	case ast.KindParen:
		return c.lvalue(t.Child(id, ast.ParenExpr), compound)
	default:
		return c.expr(id)
	}
	c.table.SetType(id, typ)

	nameID := id
	switch t.Kind(id) {
	case ast.KindQualifiedName:
		nameID = t.Child(id, ast.QualifiedNameName)
	case ast.KindFieldAccess:
		nameID = t.Child(id, ast.FieldAccessName)
	}
	v := c.table.Binding(nameID)
	if v == nil || !v.IsVariable() {
		return typ
	}
	if compound {
		if v.Kind == symbols.SymbolField {
			c.unit.reads[v]++
		} else {
			c.readVar(nameID, v)
		}
	}
	c.checkFinalWrite(nameID, v)
	c.flow.assign(v)
	return typ
}

// checkFinalWrite allows the first assignment of a blank final local and
// constructor assignments of final instance fields without initializer.
func (c *checker) checkFinalWrite(nameID ast.NodeID, v *symbols.Symbol) {
	if !v.IsFinal() {
		return
	}
	switch v.Kind {
	case symbols.SymbolLocal:
		if !hasInitializer(v) && !c.flow.isAssigned(v) {
			return
		}
	case symbols.SymbolField:
		if !hasInitializer(v) && !v.IsStatic() && c.inConstructor(v) {
			return
		}
	}
	c.report(diag.SemFinalAssignment, nameID, v.Name)
}

func (c *checker) assign(id ast.NodeID) *symbols.Type {
	t := c.tree
	n := t.Node(id)
	lhs := t.Child(id, ast.AssignLHS)
	rhs := t.Child(id, ast.AssignRHS)
	compound := n.Op != token.Assign

	rt := c.expr(rhs)
	lt := c.lvalue(lhs, compound)
	switch {
	case !compound:
		c.expectAssignable(rhs, rt, lt)
	case n.Op == token.PlusAssign && lt != nil && lt.IsClass() && lt.Class == c.u.String.Class:
	case lt != nil && rt != nil && (!lt.IsNumeric() || !rt.IsNumeric()) && !(lt.IsBoolean() && rt.IsBoolean()):
		c.report(diag.SemTypeMismatch, rhs, rt.String(), lt.String())
	}

	if c.unit.prog.opts.Lints && !compound && t.Kind(lhs) == ast.KindName && t.Kind(rhs) == ast.KindName {
		if ls := c.table.Binding(lhs); ls != nil && ls == c.table.Binding(rhs) {
			c.report(diag.LntAssignmentNoEffect, id, ls.Name)
		}
	}
	return lt
}

func (c *checker) infix(id ast.NodeID) *symbols.Type {
	t := c.tree
	op := t.Node(id).Op
	left := t.Child(id, ast.InfixLeft)
	right := t.Child(id, ast.InfixRight)
	lt := c.expr(left)
	rt := c.expr(right)
	if lt == nil || rt == nil {
		switch op {
		case token.EqEq, token.BangEq, token.Lt, token.LtEq, token.Gt, token.GtEq, token.AndAnd, token.OrOr:
			return c.u.Boolean
		}
		return nil
	}
	switch op {
	case token.AndAnd, token.OrOr:
		c.expectBoolean(left, lt)
		c.expectBoolean(right, rt)
		return c.u.Boolean
	case token.EqEq, token.BangEq:
		return c.u.Boolean
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		c.expectNumeric(left, lt)
		c.expectNumeric(right, rt)
		return c.u.Boolean
	case token.Plus:
		if c.isString(lt) || c.isString(rt) {
			return c.u.String
		}
	case token.Amp, token.Pipe, token.Caret:
		if lt.IsBoolean() && rt.IsBoolean() {
			return c.u.Boolean
		}
	case token.Shl, token.Shr, token.Ushr:
		c.expectNumeric(right, rt)
		if p := c.u.UnaryPromotion(lt); p != nil {
			return p
		}
		c.expectNumeric(left, lt)
		return nil
	}
	if p := c.u.BinaryPromotion(lt, rt); p != nil {
		return p
	}
	if !lt.IsNumeric() {
		c.report(diag.SemTypeMismatch, left, lt.String(), "int")
	} else {
		c.report(diag.SemTypeMismatch, right, rt.String(), "int")
	}
	return nil
}

func (c *checker) prefix(id ast.NodeID) *symbols.Type {
	t := c.tree
	op := t.Node(id).Op
	operand := t.Child(id, ast.PrefixOperand)
	switch op {
	case token.PlusPlus, token.MinusMinus:
		typ := c.lvalue(operand, true)
		c.expectNumeric(operand, typ)
		return typ
	case token.Bang:
		typ := c.expr(operand)
		c.expectBoolean(operand, typ)
		return c.u.Boolean
	default:
		typ := c.expr(operand)
		if typ == nil {
			return nil
		}
		if p := c.u.UnaryPromotion(typ); p != nil {
			return p
		}
		c.expectNumeric(operand, typ)
		return nil
	}
}

func (c *checker) conditional(id ast.NodeID) *symbols.Type {
	t := c.tree
	c.condition(t.Child(id, ast.CondCondition))
	a := c.expr(t.Child(id, ast.CondThen))
	b := c.expr(t.Child(id, ast.CondElse))
	switch {
	case a == nil || b == nil:
		return nil
	case symbols.Identical(a, b):
		return a
	case a.IsNumeric() && b.IsNumeric():
		return c.u.BinaryPromotion(a, b)
	case a.IsNull():
		return b
	case b.IsNull():
		return a
	case c.u.AssignableTo(a, b):
		return b
	case c.u.AssignableTo(b, a):
		return a
	default:
		return c.u.Object
	}
}

// arrayInit checks the elements of {...} against the element type of typ.
func (c *checker) arrayInit(id ast.NodeID, typ *symbols.Type) {
	t := c.tree
	var elem *symbols.Type
	if typ.IsArray() {
		elem = typ.Elem
	} else if typ != nil {
		c.report(diag.SemTypeMismatch, id, "array", typ.String())
	}
	c.table.SetType(id, typ)
	for _, e := range t.List(id, ast.ArrayInitElements) {
		if t.Kind(e) == ast.KindArrayInit {
			c.arrayInit(e, elem)
			continue
		}
		c.expectAssignable(e, c.expr(e), elem)
	}
}

func (c *checker) expectBoolean(id ast.NodeID, typ *symbols.Type) {
	if typ != nil && !typ.IsBoolean() {
		c.report(diag.SemTypeMismatch, id, typ.String(), "boolean")
	}
}

func (c *checker) expectNumeric(id ast.NodeID, typ *symbols.Type) {
	if typ != nil && !typ.IsNumeric() {
		c.report(diag.SemTypeMismatch, id, typ.String(), "int")
	}
}

func (c *checker) expectIndex(id ast.NodeID) {
	typ := c.expr(id)
	if typ == nil {
		return
	}
	if p := c.u.UnaryPromotion(typ); p == nil || p.Kind != symbols.TypeInt {
		c.report(diag.SemTypeMismatch, id, typ.String(), "int")
	}
}

func (c *checker) isString(typ *symbols.Type) bool {
	return typ.IsClass() && typ.Class == c.u.String.Class
}

// isConstantNarrowing allows int constants that fit into byte, short or char.
func (c *checker) isConstantNarrowing(value ast.NodeID, got, want *symbols.Type) bool {
	if got.Kind != symbols.TypeInt && got.Kind != symbols.TypeChar {
		return false
	}
	switch want.Kind {
	case symbols.TypeByte, symbols.TypeShort, symbols.TypeChar:
	default:
		return false
	}
	v, ok := constantInt(c.tree, query.SkipParens(c.tree, value))
	if !ok {
		return false
	}
	switch want.Kind {
	case symbols.TypeByte:
		return v >= -128 && v <= 127
	case symbols.TypeShort:
		return v >= -32768 && v <= 32767
	default:
		return v >= 0 && v <= 0xFFFF
	}
}
