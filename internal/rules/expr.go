package rules

import (
	"mend/internal/ast"
	"mend/internal/correction"
	"mend/internal/query"
	"mend/internal/rewrite"
	"mend/internal/token"
)

var complement = map[token.Kind]token.Kind{
	token.Lt:     token.GtEq,
	token.GtEq:   token.Lt,
	token.Gt:     token.LtEq,
	token.LtEq:   token.Gt,
	token.EqEq:   token.BangEq,
	token.BangEq: token.EqEq,
}

// strictComplement covers the JavaScript spellings kept in Node.Text.
var strictComplement = map[string]string{"===": "!==", "!==": "==="}

var mirrored = map[token.Kind]token.Kind{
	token.Lt:   token.Gt,
	token.Gt:   token.Lt,
	token.LtEq: token.GtEq,
	token.GtEq: token.LtEq,
}

func dual(op token.Kind) token.Kind {
	switch op {
	case token.AndAnd:
		return token.OrOr
	case token.OrOr:
		return token.AndAnd
	case token.Amp:
		return token.Pipe
	case token.Pipe:
		return token.Amp
	}
	return op
}

// negator builds the logical inverse of boolean expressions of the original
// tree. Parts that survive unchanged are copied through placeholders.
type negator struct {
	cx *correction.Context
	b  *rewrite.Builder
	// subst, when set, stands in for single nodes: it returns a new node for
	// id, or for !id when negated is set. ok false leaves id to the defaults.
	subst func(id ast.NodeID, negated bool) (ast.NodeID, bool)
}

func newNegator(cx *correction.Context, b *rewrite.Builder) *negator {
	return &negator{cx: cx, b: b}
}

func (n *negator) copy(id ast.NodeID) ast.NodeID {
	if n.subst != nil {
		if v, ok := n.subst(id, false); ok {
			return v
		}
	}
	return n.b.CopyTarget(id)
}

// negate returns a new expression equivalent to !e.
func (n *negator) negate(e ast.NodeID) ast.NodeID {
	t, b := n.cx.Tree, n.b
	if n.subst != nil {
		if neg, ok := n.subst(e, true); ok {
			return neg
		}
	}
	node := t.Node(e)
	switch node.Kind {
	case ast.KindLiteral:
		switch node.Op {
		case token.KwTrue:
			return b.Bool(false)
		case token.KwFalse:
			return b.Bool(true)
		}
	case ast.KindInfix:
		left, right := t.Child(e, ast.InfixLeft), t.Child(e, ast.InfixRight)
		if inv, ok := complement[node.Op]; ok {
			id := b.Infix(inv, n.copy(left), n.copy(right))
			if s, ok := strictComplement[node.Text]; ok {
				b.Tree().Mutable(id).Text = s
			}
			return id
		}
		switch node.Op {
		case token.AndAnd, token.OrOr:
			return n.junction(dual(node.Op), left, right)
		case token.Amp, token.Pipe:
			if n.cx.TypeOf(e).IsBoolean() {
				return n.junction(dual(node.Op), left, right)
			}
		}
	case ast.KindPrefix:
		if node.Op == token.Bang {
			return n.copy(query.SkipParens(t, t.Child(e, ast.PrefixOperand)))
		}
	case ast.KindInstanceOf:
		return b.Not(n.copy(e))
	case ast.KindParen:
		inner := query.SkipParens(t, e)
		if t.Kind(inner) == ast.KindInstanceOf {
			return n.negate(inner)
		}
		return b.Paren(n.negate(inner))
	}
	return b.Not(n.copy(e))
}

func (n *negator) junction(op token.Kind, left, right ast.NodeID) ast.NodeID {
	b := n.b
	l := b.Operand(op, n.negate(left), false)
	r := b.Operand(op, n.negate(right), true)
	return b.Infix(op, l, r)
}

// limitAt returns the loosest precedence an expression replacing id may have
// without parentheses.
func limitAt(t *ast.Tree, id ast.NodeID) int {
	parent := t.Parent(id)
	loc := t.Location(id)
	switch t.Kind(parent) {
	case ast.KindInfix:
		return ast.OperandLimit(t.Node(parent).Op, loc == ast.InfixRight)
	case ast.KindPrefix, ast.KindCast:
		return ast.PrecPrefix
	case ast.KindPostfix, ast.KindFieldAccess, ast.KindQualifiedName:
		return ast.PrecPostfix
	case ast.KindInstanceOf:
		return ast.PrecRelational
	case ast.KindConditional:
		if loc == ast.CondCondition {
			return ast.PrecOr
		}
		return ast.PrecConditional
	case ast.KindAssign:
		if loc == ast.AssignLHS {
			return ast.PrecPostfix
		}
	case ast.KindCall:
		if loc == ast.CallReceiver {
			return ast.PrecPostfix
		}
	case ast.KindArrayAccess:
		if loc == ast.ArrayAccessArray {
			return ast.PrecPostfix
		}
	}
	return ast.PrecAssignment
}

// fit parenthesizes x for the position of the original node at.
func fit(b *rewrite.Builder, t *ast.Tree, at, x ast.NodeID) ast.NodeID {
	return b.ParenthesizeIfRequired(x, limitAt(t, at))
}

// isConditionSlot reports whether p holds a boolean condition.
func isConditionSlot(p ast.Prop) bool {
	switch p {
	case ast.IfCondition, ast.WhileCondition, ast.DoCondition, ast.ForCondition, ast.CondCondition:
		return true
	}
	return false
}

// isBoolean decides whether e is a boolean expression: by its type when
// bindings exist, else by its shape.
func isBoolean(cx *correction.Context, e ast.NodeID) bool {
	t := cx.Tree
	if !t.Kind(e).IsExpression() {
		return false
	}
	if typ := cx.TypeOf(e); typ != nil {
		return typ.IsBoolean()
	}
	if isConditionSlot(t.Location(query.OutermostParen(t, e))) {
		return true
	}
	e = query.SkipParens(t, e)
	n := t.Node(e)
	switch n.Kind {
	case ast.KindLiteral:
		return n.Op == token.KwTrue || n.Op == token.KwFalse
	case ast.KindInstanceOf:
		return true
	case ast.KindPrefix:
		return n.Op == token.Bang
	case ast.KindInfix:
		switch n.Op {
		case token.AndAnd, token.OrOr, token.Lt, token.LtEq, token.Gt, token.GtEq, token.EqEq, token.BangEq:
			return true
		}
	}
	return false
}

// hasSideEffects reports whether evaluating e may change state.
func hasSideEffects(t *ast.Tree, e ast.NodeID) bool {
	return t.Any(e, func(_ ast.NodeID, n *ast.Node) bool {
		switch n.Kind {
		case ast.KindCall, ast.KindNew, ast.KindNewArray, ast.KindAssign, ast.KindOpaqueExpr:
			return true
		case ast.KindPrefix, ast.KindPostfix:
			return n.Op == token.PlusPlus || n.Op == token.MinusMinus
		}
		return false
	})
}

// isStatementExpression reports whether e may stand alone as `e;`.
func isStatementExpression(t *ast.Tree, e ast.NodeID) bool {
	n := t.Node(e)
	switch n.Kind {
	case ast.KindCall, ast.KindNew, ast.KindAssign:
		return true
	case ast.KindPrefix, ast.KindPostfix:
		return n.Op == token.PlusPlus || n.Op == token.MinusMinus
	}
	return false
}
