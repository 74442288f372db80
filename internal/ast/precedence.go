package ast

import "mend/internal/token"

// Уровни приоритета: меньше — связывает сильнее.
const (
	PrecPostfix     = 0
	PrecPrefix      = 1
	PrecNew         = 2
	PrecMultiplic   = 3
	PrecAdditive    = 4
	PrecShift       = 5
	PrecRelational  = 6
	PrecEquality    = 7
	PrecBitAnd      = 8
	PrecBitXor      = 9
	PrecBitOr       = 10
	PrecAnd         = 11
	PrecOr          = 12
	PrecConditional = 13
	PrecAssignment  = 14
	// PrecAtom is used for names, literals and other self-delimiting expressions.
	PrecAtom = -1
)

// OperatorPrecedence returns the level of a binary operator, -1 if op is not binary.
func OperatorPrecedence(op token.Kind) int {
	switch op {
	case token.Star, token.Slash, token.Percent:
		return PrecMultiplic
	case token.Plus, token.Minus:
		return PrecAdditive
	case token.Shl, token.Shr, token.Ushr:
		return PrecShift
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return PrecRelational
	case token.EqEq, token.BangEq:
		return PrecEquality
	case token.Amp:
		return PrecBitAnd
	case token.Caret:
		return PrecBitXor
	case token.Pipe:
		return PrecBitOr
	case token.AndAnd:
		return PrecAnd
	case token.OrOr:
		return PrecOr
	default:
		return -1
	}
}

// Precedence returns the binding level of the expression id.
func (t *Tree) Precedence(id NodeID) int {
	n := t.Node(id)
	if n == nil {
		return PrecAtom
	}
	switch n.Kind {
	case KindPostfix:
		return PrecPostfix
	case KindPrefix, KindCast:
		return PrecPrefix
	case KindNew, KindNewArray:
		return PrecNew
	case KindInfix:
		return OperatorPrecedence(n.Op)
	case KindInstanceOf:
		return PrecRelational
	case KindConditional:
		return PrecConditional
	case KindAssign:
		return PrecAssignment
	case KindPlaceholder:
		if n.Ref != NoNodeID {
			return t.Precedence(n.Ref)
		}
		return PrecAtom
	case KindOpaqueExpr:
		// непрозрачный текст: считаем самым слабым
		return PrecAssignment
	default:
		return PrecAtom
	}
}

// NeedsParentheses reports whether expr must be wrapped when placed in a
// position that tolerates at most level limit. Right operands of
// non-associative operators need a stricter limit; see OperandLimit.
func (t *Tree) NeedsParentheses(expr NodeID, limit int) bool {
	return t.Precedence(expr) > limit
}

// OperandLimit returns the precedence limit for an operand of an infix
// operator: left operands may share the operator level, right operands only
// when the operator is associative.
func OperandLimit(op token.Kind, right bool) int {
	p := OperatorPrecedence(op)
	if right && !IsAssociative(op) {
		return p - 1
	}
	return p
}

// IsAssociative reports whether (a op b) op c == a op (b op c) syntactically.
func IsAssociative(op token.Kind) bool {
	switch op {
	case token.Star, token.AndAnd, token.OrOr, token.Amp, token.Pipe, token.Caret:
		return true
	default:
		return false
	}
}
