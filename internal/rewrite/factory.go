package rewrite

import (
	"mend/internal/ast"
	"mend/internal/source"
	"mend/internal/symbols"
	"mend/internal/token"
)

// Конструкторы новых узлов. Все узлы создаются в overlay билдера.

func (b *Builder) node(kind ast.Kind) ast.NodeID {
	return b.tree.NewNode(kind, source.Span{})
}

func (b *Builder) leaf(kind ast.Kind, op token.Kind, text string) ast.NodeID {
	id := b.node(kind)
	n := b.tree.Mutable(id)
	n.Op = op
	n.Text = text
	return id
}

// Name creates a simple name.
func (b *Builder) Name(text string) ast.NodeID {
	return b.leaf(ast.KindName, token.Ident, text)
}

// QualifiedName creates qualifier.name.
func (b *Builder) QualifiedName(qualifier ast.NodeID, name string) ast.NodeID {
	id := b.node(ast.KindQualifiedName)
	b.tree.Set(id, ast.QualifiedQualifier, qualifier)
	b.tree.Set(id, ast.QualifiedNameName, b.Name(name))
	return id
}

// Literal creates a literal with the given token kind and spelling.
func (b *Builder) Literal(kind token.Kind, text string) ast.NodeID {
	return b.leaf(ast.KindLiteral, kind, text)
}

// Bool creates true or false.
func (b *Builder) Bool(v bool) ast.NodeID {
	if v {
		return b.Literal(token.KwTrue, "true")
	}
	return b.Literal(token.KwFalse, "false")
}

func (b *Builder) Null() ast.NodeID {
	return b.Literal(token.KwNull, "null")
}

// DefaultValue creates the zero value literal of t.
func (b *Builder) DefaultValue(t *symbols.Type) ast.NodeID {
	text := symbols.DefaultValue(t)
	switch {
	case t == nil || t.IsReference():
		return b.Null()
	case t.IsBoolean():
		return b.Bool(false)
	case t.Kind == symbols.TypeLong:
		return b.Literal(token.LongLit, text)
	case t.Kind == symbols.TypeFloat:
		return b.Literal(token.FloatLit, text)
	case t.Kind == symbols.TypeDouble:
		return b.Literal(token.DoubleLit, text)
	case t.Kind == symbols.TypeChar:
		return b.Literal(token.CharLit, text)
	default:
		return b.Literal(token.IntLit, text)
	}
}

func (b *Builder) This() ast.NodeID {
	return b.node(ast.KindThis)
}

// Paren wraps x in parentheses.
func (b *Builder) Paren(x ast.NodeID) ast.NodeID {
	id := b.node(ast.KindParen)
	b.tree.Set(id, ast.ParenExpr, x)
	return id
}

// ParenthesizeIfRequired wraps x when it binds looser than limit.
func (b *Builder) ParenthesizeIfRequired(x ast.NodeID, limit int) ast.NodeID {
	if b.tree.NeedsParentheses(x, limit) {
		return b.Paren(x)
	}
	return x
}

// Infix creates l op r. Operands are taken as they are; use Operand to
// parenthesize by precedence.
func (b *Builder) Infix(op token.Kind, l, r ast.NodeID) ast.NodeID {
	id := b.node(ast.KindInfix)
	b.tree.Mutable(id).Op = op
	b.tree.Set(id, ast.InfixLeft, l)
	b.tree.Set(id, ast.InfixRight, r)
	return id
}

// Operand parenthesizes x for use as the left or right operand of op.
func (b *Builder) Operand(op token.Kind, x ast.NodeID, right bool) ast.NodeID {
	return b.ParenthesizeIfRequired(x, ast.OperandLimit(op, right))
}

func (b *Builder) Prefix(op token.Kind, x ast.NodeID) ast.NodeID {
	id := b.node(ast.KindPrefix)
	b.tree.Mutable(id).Op = op
	b.tree.Set(id, ast.PrefixOperand, x)
	return id
}

// Not creates !x, parenthesizing x when needed.
func (b *Builder) Not(x ast.NodeID) ast.NodeID {
	return b.Prefix(token.Bang, b.ParenthesizeIfRequired(x, ast.PrecPrefix))
}

func (b *Builder) Assign(op token.Kind, lhs, rhs ast.NodeID) ast.NodeID {
	id := b.node(ast.KindAssign)
	b.tree.Mutable(id).Op = op
	b.tree.Set(id, ast.AssignLHS, lhs)
	b.tree.Set(id, ast.AssignRHS, rhs)
	return id
}

func (b *Builder) Conditional(cond, then, els ast.NodeID) ast.NodeID {
	id := b.node(ast.KindConditional)
	b.tree.Set(id, ast.CondCondition, cond)
	b.tree.Set(id, ast.CondThen, then)
	b.tree.Set(id, ast.CondElse, els)
	return id
}

func (b *Builder) Cast(typ, x ast.NodeID) ast.NodeID {
	id := b.node(ast.KindCast)
	b.tree.Set(id, ast.CastType, typ)
	b.tree.Set(id, ast.CastExpr, b.ParenthesizeIfRequired(x, ast.PrecPrefix))
	return id
}

// Call creates recv.name(args); recv may be NoNodeID.
func (b *Builder) Call(recv ast.NodeID, name string, args ...ast.NodeID) ast.NodeID {
	id := b.node(ast.KindCall)
	if recv != ast.NoNodeID {
		b.tree.Set(id, ast.CallReceiver, recv)
	}
	b.tree.Set(id, ast.CallName, b.Name(name))
	for _, a := range args {
		b.tree.Append(id, ast.CallArgs, a)
	}
	return id
}

func (b *Builder) FieldAccess(recv ast.NodeID, name string) ast.NodeID {
	id := b.node(ast.KindFieldAccess)
	b.tree.Set(id, ast.FieldAccessReceiver, recv)
	b.tree.Set(id, ast.FieldAccessName, b.Name(name))
	return id
}

// Type creates the type node spelling t.
func (b *Builder) Type(t *symbols.Type) ast.NodeID {
	switch {
	case t == nil:
		return b.SimpleType("Object")
	case t.IsArray():
		id := b.node(ast.KindArrayType)
		b.tree.Set(id, ast.ArrayTypeElem, b.Type(t.Elem))
		return id
	case t.IsClass():
		return b.SimpleType(t.Class.Name)
	default:
		name := t.String()
		kw, _ := token.LookupKeyword(name)
		return b.leaf(ast.KindPrimitiveType, kw, name)
	}
}

// SimpleType creates a class type reference.
func (b *Builder) SimpleType(name string) ast.NodeID {
	id := b.node(ast.KindSimpleType)
	b.tree.Set(id, ast.SimpleTypeName, b.Name(name))
	return id
}

// Block creates a block holding stmts.
func (b *Builder) Block(stmts ...ast.NodeID) ast.NodeID {
	id := b.node(ast.KindBlock)
	for _, s := range stmts {
		b.tree.Append(id, ast.BlockStatements, s)
	}
	return id
}

// ExprStmt creates x;.
func (b *Builder) ExprStmt(x ast.NodeID) ast.NodeID {
	id := b.node(ast.KindExprStmt)
	b.tree.Set(id, ast.ExprStmtExpr, x)
	return id
}

// Fragment creates a variable declarator; init may be NoNodeID.
func (b *Builder) Fragment(name string, init ast.NodeID) ast.NodeID {
	id := b.node(ast.KindVarFragment)
	b.tree.Set(id, ast.FragmentName, b.Name(name))
	if init != ast.NoNodeID {
		b.tree.Set(id, ast.FragmentInit, init)
	}
	return id
}

// LocalVar creates a local variable declaration statement.
func (b *Builder) LocalVar(mods ast.Modifiers, typ ast.NodeID, frags ...ast.NodeID) ast.NodeID {
	id := b.node(ast.KindLocalVarDecl)
	b.tree.Mutable(id).Mods = mods
	b.tree.Set(id, ast.LocalType, typ)
	for _, f := range frags {
		b.tree.Append(id, ast.LocalFragments, f)
	}
	return id
}

// Field creates a field declaration.
func (b *Builder) Field(mods ast.Modifiers, typ ast.NodeID, frags ...ast.NodeID) ast.NodeID {
	id := b.node(ast.KindFieldDecl)
	b.tree.Mutable(id).Mods = mods
	b.tree.Set(id, ast.FieldType, typ)
	for _, f := range frags {
		b.tree.Append(id, ast.FieldFragments, f)
	}
	return id
}

// Param creates a method parameter.
func (b *Builder) Param(typ ast.NodeID, name string) ast.NodeID {
	id := b.node(ast.KindParam)
	b.tree.Set(id, ast.ParamType, typ)
	b.tree.Set(id, ast.ParamName, b.Name(name))
	return id
}

// Method creates a method declaration. ret is NoNodeID for constructors;
// body NoNodeID yields an abstract declaration.
func (b *Builder) Method(mods ast.Modifiers, ret ast.NodeID, name string, params []ast.NodeID, body ast.NodeID) ast.NodeID {
	id := b.node(ast.KindMethodDecl)
	n := b.tree.Mutable(id)
	n.Mods = mods
	if ret == ast.NoNodeID {
		n.Flags |= ast.FlagConstructor
	} else {
		b.tree.Set(id, ast.MethodReturnType, ret)
	}
	b.tree.Set(id, ast.MethodName, b.Name(name))
	for _, p := range params {
		b.tree.Append(id, ast.MethodParams, p)
	}
	if body != ast.NoNodeID {
		b.tree.Set(id, ast.MethodBody, body)
	}
	return id
}

// Class creates a class declaration with the given members.
func (b *Builder) Class(mods ast.Modifiers, name string, members ...ast.NodeID) ast.NodeID {
	id := b.node(ast.KindTypeDecl)
	b.tree.Mutable(id).Mods = mods
	b.tree.Set(id, ast.TypeName, b.Name(name))
	for _, m := range members {
		b.tree.Append(id, ast.TypeBody, m)
	}
	return id
}

// If creates if (cond) then [else els]; els may be NoNodeID.
func (b *Builder) If(cond, then, els ast.NodeID) ast.NodeID {
	id := b.node(ast.KindIf)
	b.tree.Set(id, ast.IfCondition, cond)
	b.tree.Set(id, ast.IfThen, then)
	if els != ast.NoNodeID {
		b.tree.Set(id, ast.IfElse, els)
	}
	return id
}

// Return creates return [x]; x may be NoNodeID.
func (b *Builder) Return(x ast.NodeID) ast.NodeID {
	id := b.node(ast.KindReturn)
	if x != ast.NoNodeID {
		b.tree.Set(id, ast.ReturnExpr, x)
	}
	return id
}

func (b *Builder) Throw(x ast.NodeID) ast.NodeID {
	id := b.node(ast.KindThrow)
	b.tree.Set(id, ast.ThrowExpr, x)
	return id
}

func (b *Builder) Break() ast.NodeID {
	return b.node(ast.KindBreak)
}

func (b *Builder) Continue() ast.NodeID {
	return b.node(ast.KindContinue)
}

// Try creates try body catches... [finally fin].
func (b *Builder) Try(body ast.NodeID, catches []ast.NodeID, fin ast.NodeID) ast.NodeID {
	id := b.node(ast.KindTry)
	b.tree.Set(id, ast.TryBody, body)
	for _, c := range catches {
		b.tree.Append(id, ast.TryCatches, c)
	}
	if fin != ast.NoNodeID {
		b.tree.Set(id, ast.TryFinally, fin)
	}
	return id
}

// Catch creates catch (typ name) body.
func (b *Builder) Catch(typ ast.NodeID, name string, body ast.NodeID) ast.NodeID {
	id := b.node(ast.KindCatch)
	b.tree.Set(id, ast.CatchParam, b.Param(typ, name))
	b.tree.Set(id, ast.CatchBody, body)
	return id
}
