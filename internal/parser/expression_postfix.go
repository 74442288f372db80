package parser

import (
	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/source"
	"mend/internal/token"
)

// parsePrimary: Literal | this | ( Expr ) | new ... | Name | Name(args)
func (p *Parser) parsePrimary() ast.NodeID {
	tok := p.peek()
	switch {
	case tok.Kind.IsLiteral():
		return p.leaf(ast.KindLiteral, p.advance())
	case tok.Kind == token.KwThis:
		return p.leaf(ast.KindThis, p.advance())
	case tok.Kind == token.LParen:
		return p.parseParen()
	case tok.Kind == token.KwNew:
		return p.parseNew()
	case tok.Kind == token.Ident:
		name := p.leaf(ast.KindName, p.advance())
		if p.at(token.LParen) {
			return p.parseCallRest(ast.NoNodeID, name)
		}
		// a.b.c — квалифицированное имя, пока за ним не идёт вызов
		for p.at(token.Dot) && p.peekN(1).Kind == token.Ident && p.peekN(2).Kind != token.LParen {
			p.advance()
			name = p.qualify(name, p.leaf(ast.KindName, p.advance()))
		}
		return name
	case tok.Kind.IsPrimitiveType() && p.peekN(1).Kind == token.Dot && p.peekN(2).Kind == token.KwClass:
		// int.class
		start := p.advance().Span.Start
		p.advance()
		p.advance()
		return p.opaqueFrom(start)
	default:
		p.err(diag.SynExpectExpression, "expected expression, got \""+tok.Text+"\"")
		return p.recovered()
	}
}

func (p *Parser) opaqueFrom(start uint32) ast.NodeID {
	id := p.tree.NewNode(ast.KindOpaqueExpr, source.Span{})
	p.finish(id, start)
	p.tree.Mutable(id).Text = p.tree.Text(id)
	return id
}

func (p *Parser) parseParen() ast.NodeID {
	open := p.advance()
	id := p.tree.NewNode(ast.KindParen, open.Span)
	p.tree.Set(id, ast.ParenExpr, p.parseExpr())
	p.expect(token.RParen, diag.SynExpectRParen, "expected ')'")
	p.finish(id, open.Span.Start)
	return id
}

// parsePostfix: Primary { .Ident | .Ident(args) | [Expr] | ++ | -- }
func (p *Parser) parsePostfix(expr ast.NodeID) ast.NodeID {
	for {
		switch tok := p.peek(); tok.Kind {
		case token.Dot:
			next := p.peekN(1)
			switch {
			case next.Kind == token.Ident && p.peekN(2).Kind == token.LParen:
				p.advance()
				name := p.leaf(ast.KindName, p.advance())
				expr = p.parseCallRest(expr, name)
			case next.Kind == token.Ident:
				p.advance()
				name := p.leaf(ast.KindName, p.advance())
				if p.tree.Kind(expr).IsName() {
					expr = p.qualify(expr, name)
					continue
				}
				id := p.tree.NewNode(ast.KindFieldAccess, source.Span{})
				p.tree.Set(id, ast.FieldAccessReceiver, expr)
				p.tree.Set(id, ast.FieldAccessName, name)
				p.finish(id, p.start(expr))
				expr = id
			case next.Kind == token.KwClass:
				start := p.start(expr)
				p.advance()
				p.advance()
				// Foo.class хранится как непрозрачный текст
				expr = p.opaqueFrom(start)
			default:
				p.advance()
				p.err(diag.SynExpectIdentifier, "expected identifier after '.'")
				return expr
			}
		case token.LBracket:
			p.advance()
			id := p.tree.NewNode(ast.KindArrayAccess, source.Span{})
			p.tree.Set(id, ast.ArrayAccessArray, expr)
			p.tree.Set(id, ast.ArrayAccessIndex, p.parseExpr())
			p.expect(token.RBracket, diag.SynExpectRBracket, "expected ']'")
			p.finish(id, p.start(expr))
			expr = id
		case token.PlusPlus, token.MinusMinus:
			p.advance()
			id := p.tree.NewNode(ast.KindPostfix, source.Span{})
			p.tree.Mutable(id).Op = tok.Kind
			p.tree.Set(id, ast.PostfixOperand, expr)
			p.finish(id, p.start(expr))
			expr = id
		default:
			return expr
		}
	}
}

// parseCallRest: ( args ) после имени метода; receiver может отсутствовать.
func (p *Parser) parseCallRest(receiver, name ast.NodeID) ast.NodeID {
	id := p.tree.NewNode(ast.KindCall, source.Span{})
	start := p.start(name)
	if receiver != ast.NoNodeID {
		p.tree.Set(id, ast.CallReceiver, receiver)
		start = p.start(receiver)
	}
	p.tree.Set(id, ast.CallName, name)
	p.parseArgs(id, ast.CallArgs)
	p.finish(id, start)
	return id
}

// parseArgs: ( [Expr {, Expr}] )
func (p *Parser) parseArgs(owner ast.NodeID, prop ast.Prop) {
	p.advance() // (
	if !p.at(token.RParen) {
		for {
			p.tree.Append(owner, prop, p.parseExpr())
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynExpectRParen, "expected ')' after arguments"); !ok {
		p.resyncUntil(token.RParen, token.Semicolon, token.RBrace)
		if p.at(token.RParen) {
			p.advance()
		}
	}
}

// parseNew: new Type ( args ) | new Type [Expr]{[Expr]}{[]} | new Type [] {init}
func (p *Parser) parseNew() ast.NodeID {
	kw := p.advance()
	base, ok := p.parseBaseType()
	if !ok {
		return p.opaqueFrom(kw.Span.Start)
	}
	if p.at(token.LBracket) {
		return p.parseNewArrayRest(kw, base)
	}
	id := p.tree.NewNode(ast.KindNew, kw.Span)
	p.tree.Set(id, ast.NewType, base)
	if !p.at(token.LParen) {
		p.err(diag.SynExpectLParen, "expected '(' or '[' after new")
		p.finish(id, kw.Span.Start)
		return id
	}
	p.parseArgs(id, ast.NewArgs)
	if p.at(token.LBrace) {
		// анонимные классы не моделируются
		p.skipBalanced(token.LBrace, token.RBrace)
		return p.opaqueFrom(kw.Span.Start)
	}
	p.finish(id, kw.Span.Start)
	return id
}

func (p *Parser) parseNewArrayRest(kw token.Token, base ast.NodeID) ast.NodeID {
	id := p.tree.NewNode(ast.KindNewArray, kw.Span)
	typ := base
	wrap := func() {
		arr := p.tree.NewNode(ast.KindArrayType, source.Span{})
		p.tree.Set(arr, ast.ArrayTypeElem, typ)
		p.finish(arr, p.start(base))
		typ = arr
	}
	for p.at(token.LBracket) && p.peekN(1).Kind != token.RBracket {
		p.advance()
		p.tree.Append(id, ast.NewArrayDims, p.parseExpr())
		p.expect(token.RBracket, diag.SynExpectRBracket, "expected ']'")
		wrap()
	}
	for p.at(token.LBracket) && p.peekN(1).Kind == token.RBracket {
		p.advance()
		p.advance()
		wrap()
	}
	p.tree.Set(id, ast.NewArrayType, typ)
	if p.at(token.LBrace) {
		p.tree.Set(id, ast.NewArrayInit, p.parseArrayInit())
	}
	p.finish(id, kw.Span.Start)
	return id
}

// parseArrayInit: { [Init {, Init} [,]] }
func (p *Parser) parseArrayInit() ast.NodeID {
	open := p.advance()
	id := p.tree.NewNode(ast.KindArrayInit, open.Span)
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		before := p.pos
		p.tree.Append(id, ast.ArrayInitElements, p.parseVariableInitializer())
		if !p.at(token.Comma) {
			break
		}
		p.advance()
		if p.pos == before {
			break
		}
	}
	p.expect(token.RBrace, diag.SynExpectRBrace, "expected '}' to close array initializer")
	p.finish(id, open.Span.Start)
	return id
}
