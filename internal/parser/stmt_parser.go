package parser

import (
	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/source"
	"mend/internal/token"
)

// parseBlock: { {Statement} }
func (p *Parser) parseBlock() ast.NodeID {
	open := p.advance() // {
	id := p.tree.NewNode(ast.KindBlock, open.Span)
	p.parseStatementsUntil(id, ast.BlockStatements, token.RBrace)
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedBlock, "expected '}' to close block"); !ok {
		p.tree.Mutable(id).Flags |= ast.FlagRecovered
	}
	p.finish(id, open.Span.Start)
	return id
}

// parseStatementsUntil разбирает операторы до одного из stop.
func (p *Parser) parseStatementsUntil(owner ast.NodeID, prop ast.Prop, stop ...token.Kind) {
	for !p.at(token.EOF) && !p.at_or(stop...) {
		before := p.pos
		stmt := p.parseStatement()
		if stmt != ast.NoNodeID {
			p.tree.Append(owner, prop, stmt)
		}
		if p.pos == before {
			// ничего не съели — пропускаем токен, чтобы не зациклиться
			p.err(diag.SynIllegalStatementStart, "illegal start of statement \""+p.peek().Text+"\"")
			p.advance()
		}
	}
}

// parseStatement выбирает разборщик по первому токену.
func (p *Parser) parseStatement() ast.NodeID {
	tok := p.peek()
	switch tok.Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.Semicolon:
		p.advance()
		return p.tree.NewNode(ast.KindEmpty, tok.Span)
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwDo:
		return p.parseDo()
	case token.KwFor:
		return p.parseFor()
	case token.KwSwitch:
		return p.parseSwitch()
	case token.KwTry:
		return p.parseTry()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwThrow:
		return p.parseThrow()
	case token.KwBreak, token.KwContinue:
		return p.parseJump()
	case token.KwCase, token.KwDefault:
		return p.parseSwitchCase()
	case token.KwElse:
		p.err(diag.SynElseWithoutIf, "'else' without 'if'")
		p.advance()
		return ast.NoNodeID
	case token.KwClass:
		// локальные классы не моделируются
		return p.parseOpaqueStatement()
	case token.RBrace, token.RParen, token.RBracket:
		p.err(diag.SynIllegalStatementStart, "illegal start of statement \""+tok.Text+"\"")
		p.advance()
		return ast.NoNodeID
	}
	if tok.Kind == token.KwFinal || tok.Kind == token.At || tok.Kind.IsPrimitiveType() || (tok.Kind == token.Ident && p.looksLikeVarDecl()) {
		return p.parseLocalVarDecl()
	}
	return p.parseExprStatement()
}

// parseLocalVarDecl: [final] Type Fragment {, Fragment} ;
func (p *Parser) parseLocalVarDecl() ast.NodeID {
	id := p.parseLocalVarDeclNoSemi()
	p.expectSemicolon()
	p.finish(id, p.start(id))
	return id
}

func (p *Parser) parseLocalVarDeclNoSemi() ast.NodeID {
	m := p.parseModifiers()
	id := p.tree.NewNode(ast.KindLocalVarDecl, source.Span{})
	p.applyModifiers(id, m)
	p.tree.Set(id, ast.LocalType, p.parseType())
	p.parseFragments(id, ast.LocalFragments)
	p.finish(id, m.start)
	return id
}

func (p *Parser) parseExprStatement() ast.NodeID {
	start := p.peek().Span.Start
	id := p.tree.NewNode(ast.KindExprStmt, source.Span{})
	p.tree.Set(id, ast.ExprStmtExpr, p.parseExpr())
	if !p.expectSemicolon() && !p.peek().HasNewlineBefore() && !p.at_or(token.RBrace, token.EOF) {
		// мусор в середине строки: пропускаем до ';' или '}'
		p.resyncUntil(token.Semicolon, token.RBrace)
		if p.at(token.Semicolon) {
			p.advance()
		}
	}
	p.finish(id, start)
	return id
}

func (p *Parser) parseReturn() ast.NodeID {
	kw := p.advance()
	id := p.tree.NewNode(ast.KindReturn, kw.Span)
	if !p.at(token.Semicolon) && !p.at(token.RBrace) {
		p.tree.Set(id, ast.ReturnExpr, p.parseExpr())
	}
	p.expectSemicolon()
	p.finish(id, kw.Span.Start)
	return id
}

func (p *Parser) parseThrow() ast.NodeID {
	kw := p.advance()
	id := p.tree.NewNode(ast.KindThrow, kw.Span)
	p.tree.Set(id, ast.ThrowExpr, p.parseExpr())
	p.expectSemicolon()
	p.finish(id, kw.Span.Start)
	return id
}

// parseJump: break [label]; | continue [label];
func (p *Parser) parseJump() ast.NodeID {
	kw := p.advance()
	kind, prop := ast.KindBreak, ast.BreakLabel
	if kw.Kind == token.KwContinue {
		kind, prop = ast.KindContinue, ast.ContinueLabel
	}
	id := p.tree.NewNode(kind, kw.Span)
	if p.at(token.Ident) {
		p.tree.Set(id, prop, p.leaf(ast.KindName, p.advance()))
	}
	p.expectSemicolon()
	p.finish(id, kw.Span.Start)
	return id
}

// parseOpaqueStatement сохраняет неподдерживаемую конструкцию как текст.
func (p *Parser) parseOpaqueStatement() ast.NodeID {
	start := p.peek().Span.Start
	for !p.at(token.EOF) {
		tok := p.peek()
		if tok.Kind == token.LBrace {
			p.skipBalanced(token.LBrace, token.RBrace)
			break
		}
		p.advance()
		if tok.Kind == token.Semicolon {
			break
		}
	}
	id := p.tree.NewNode(ast.KindOpaqueStmt, source.Span{})
	p.finish(id, start)
	p.tree.Mutable(id).Text = p.tree.Text(id)
	return id
}
