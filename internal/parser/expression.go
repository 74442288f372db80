package parser

import (
	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/source"
	"mend/internal/token"
)

// parseExpr: Assignment
func (p *Parser) parseExpr() ast.NodeID {
	return p.parseAssignment()
}

// parseAssignment — правоассоциативное присваивание.
func (p *Parser) parseAssignment() ast.NodeID {
	lhs := p.parseConditional()
	op := p.peek()
	if !op.Kind.IsAssignOp() {
		return lhs
	}
	p.advance()
	id := p.tree.NewNode(ast.KindAssign, source.Span{})
	p.tree.Mutable(id).Op = op.Kind
	p.tree.Set(id, ast.AssignLHS, lhs)
	p.tree.Set(id, ast.AssignRHS, p.parseAssignment())
	p.finish(id, p.start(lhs))
	return id
}

// parseConditional: Binary [? Expr : Conditional]
func (p *Parser) parseConditional() ast.NodeID {
	cond := p.parseBinary(ast.PrecOr)
	if !p.at(token.Question) {
		return cond
	}
	p.advance()
	id := p.tree.NewNode(ast.KindConditional, source.Span{})
	p.tree.Set(id, ast.CondCondition, cond)
	p.tree.Set(id, ast.CondThen, p.parseExpr())
	if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' in conditional expression"); ok {
		p.tree.Set(id, ast.CondElse, p.parseConditional())
	} else {
		p.tree.Set(id, ast.CondElse, p.recovered())
	}
	p.finish(id, p.start(cond))
	return id
}

// parseBinary — разбор бинарных операторов восхождением по приоритетам.
// maxPrec — самый слабый уровень, который ещё можно поглотить.
func (p *Parser) parseBinary(maxPrec int) ast.NodeID {
	left := p.parseUnary()
	for {
		op := p.peek()
		if op.Kind == token.KwInstanceof {
			if ast.PrecRelational > maxPrec {
				return left
			}
			p.advance()
			id := p.tree.NewNode(ast.KindInstanceOf, source.Span{})
			p.tree.Set(id, ast.InstanceOfExpr, left)
			p.tree.Set(id, ast.InstanceOfType, p.parseType())
			p.finish(id, p.start(left))
			left = id
			continue
		}
		prec := ast.OperatorPrecedence(op.Kind)
		if prec < 0 || prec > maxPrec {
			return left
		}
		p.advance()
		right := p.parseBinary(prec - 1)
		id := p.tree.NewNode(ast.KindInfix, source.Span{})
		p.tree.Mutable(id).Op = op.Kind
		p.tree.Set(id, ast.InfixLeft, left)
		p.tree.Set(id, ast.InfixRight, right)
		p.finish(id, p.start(left))
		left = id
	}
}

// parseUnary: (+|-|!|~|++|--) Unary | Cast | Postfix
func (p *Parser) parseUnary() ast.NodeID {
	tok := p.peek()
	switch tok.Kind {
	case token.Plus, token.Minus, token.Bang, token.Tilde, token.PlusPlus, token.MinusMinus:
		p.advance()
		id := p.tree.NewNode(ast.KindPrefix, tok.Span)
		p.tree.Mutable(id).Op = tok.Kind
		p.tree.Set(id, ast.PrefixOperand, p.parseUnary())
		p.finish(id, tok.Span.Start)
		return id
	case token.LParen:
		if p.isCast() {
			return p.parseCast()
		}
	}
	return p.parsePostfix(p.parsePrimary())
}

// isCast отличает (Type) expr от (expr).
func (p *Parser) isCast() bool {
	first := p.peekN(1).Kind
	i, ok := p.skipTypeAt(1)
	if !ok || p.peekN(i).Kind != token.RParen {
		return false
	}
	if first.IsPrimitiveType() {
		return true
	}
	switch next := p.peekN(i + 1).Kind; {
	case next == token.Ident, next.IsLiteral(), next == token.KwThis, next == token.KwNew,
		next == token.LParen, next == token.Bang, next == token.Tilde:
		return true
	default:
		return false
	}
}

func (p *Parser) parseCast() ast.NodeID {
	open := p.advance()
	id := p.tree.NewNode(ast.KindCast, open.Span)
	p.tree.Set(id, ast.CastType, p.parseType())
	p.expect(token.RParen, diag.SynExpectRParen, "expected ')' after cast type")
	p.tree.Set(id, ast.CastExpr, p.parseUnary())
	p.finish(id, open.Span.Start)
	return id
}
