package parser

import (
	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/source"
	"mend/internal/token"
)

// parseCondition: ( Expr )
func (p *Parser) parseCondition() ast.NodeID {
	if _, ok := p.expect(token.LParen, diag.SynExpectLParen, "expected '('"); !ok {
		return p.parseExpr()
	}
	cond := p.parseExpr()
	if _, ok := p.expect(token.RParen, diag.SynExpectRParen, "expected ')'"); !ok {
		p.resyncUntil(token.RParen, token.LBrace, token.Semicolon)
		if p.at(token.RParen) {
			p.advance()
		}
	}
	return cond
}

// parseBody разбирает тело управляющей конструкции; пустого тела не бывает.
func (p *Parser) parseBody() ast.NodeID {
	if p.at(token.EOF) || p.at(token.RBrace) {
		p.err(diag.SynIllegalStatementStart, "expected statement")
		id := p.tree.NewNode(ast.KindEmpty, p.afterLast())
		p.tree.Mutable(id).Flags |= ast.FlagRecovered
		return id
	}
	if s := p.parseStatement(); s != ast.NoNodeID {
		return s
	}
	id := p.tree.NewNode(ast.KindEmpty, p.afterLast())
	p.tree.Mutable(id).Flags |= ast.FlagRecovered
	return id
}

// parseIf: if ( Expr ) Stmt [else Stmt]
func (p *Parser) parseIf() ast.NodeID {
	kw := p.advance()
	id := p.tree.NewNode(ast.KindIf, kw.Span)
	p.tree.Set(id, ast.IfCondition, p.parseCondition())
	p.tree.Set(id, ast.IfThen, p.parseBody())
	if p.at(token.KwElse) {
		p.advance()
		p.tree.Set(id, ast.IfElse, p.parseBody())
	}
	p.finish(id, kw.Span.Start)
	return id
}

func (p *Parser) parseWhile() ast.NodeID {
	kw := p.advance()
	id := p.tree.NewNode(ast.KindWhile, kw.Span)
	p.tree.Set(id, ast.WhileCondition, p.parseCondition())
	p.tree.Set(id, ast.WhileBody, p.parseBody())
	p.finish(id, kw.Span.Start)
	return id
}

// parseDo: do Stmt while ( Expr ) ;
func (p *Parser) parseDo() ast.NodeID {
	kw := p.advance()
	id := p.tree.NewNode(ast.KindDo, kw.Span)
	p.tree.Set(id, ast.DoBody, p.parseBody())
	if _, ok := p.expect(token.KwWhile, diag.SynUnexpectedToken, "expected 'while' after do body"); ok {
		p.tree.Set(id, ast.DoCondition, p.parseCondition())
	} else {
		p.tree.Set(id, ast.DoCondition, p.recovered())
	}
	p.expectSemicolon()
	p.finish(id, kw.Span.Start)
	return id
}

// parseFor: for ( [Init] ; [Expr] ; [Updates] ) Stmt
// Цикл for-each не моделируется и сохраняется как OpaqueStmt.
func (p *Parser) parseFor() ast.NodeID {
	if p.isForEach() {
		return p.parseOpaqueFor()
	}
	kw := p.advance()
	id := p.tree.NewNode(ast.KindFor, kw.Span)
	p.expect(token.LParen, diag.SynExpectLParen, "expected '(' after for")
	if !p.at(token.Semicolon) {
		first := p.peek().Kind
		if first == token.KwFinal || first.IsPrimitiveType() || (first == token.Ident && p.looksLikeVarDecl()) {
			p.tree.Append(id, ast.ForInit, p.parseLocalVarDeclNoSemi())
		} else {
			p.parseExprList(id, ast.ForInit)
		}
	}
	p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' in for header")
	if !p.at(token.Semicolon) {
		p.tree.Set(id, ast.ForCondition, p.parseExpr())
	}
	p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' in for header")
	if !p.at(token.RParen) {
		p.parseExprList(id, ast.ForUpdates)
	}
	if _, ok := p.expect(token.RParen, diag.SynExpectRParen, "expected ')' after for header"); !ok {
		p.resyncUntil(token.RParen, token.LBrace)
		if p.at(token.RParen) {
			p.advance()
		}
	}
	p.tree.Set(id, ast.ForBody, p.parseBody())
	p.finish(id, kw.Span.Start)
	return id
}

func (p *Parser) parseExprList(owner ast.NodeID, prop ast.Prop) {
	for {
		p.tree.Append(owner, prop, p.parseExpr())
		if !p.at(token.Comma) {
			return
		}
		p.advance()
	}
}

// isForEach ищет ':' на верхнем уровне скобок заголовка.
func (p *Parser) isForEach() bool {
	if p.peekN(1).Kind != token.LParen {
		return false
	}
	depth := 0
	for i := 1; ; i++ {
		switch p.peekN(i).Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				return false
			}
		case token.Colon:
			if depth == 1 {
				return true
			}
		case token.Semicolon, token.LBrace, token.EOF:
			return false
		}
	}
}

func (p *Parser) parseOpaqueFor() ast.NodeID {
	start := p.advance().Span.Start
	p.skipBalanced(token.LParen, token.RParen)
	p.parseBody()
	id := p.tree.NewNode(ast.KindOpaqueStmt, source.Span{})
	p.finish(id, start)
	p.tree.Mutable(id).Text = p.tree.Text(id)
	return id
}

// parseSwitch: switch ( Expr ) { {case Expr : | default : | Stmt} }
func (p *Parser) parseSwitch() ast.NodeID {
	kw := p.advance()
	id := p.tree.NewNode(ast.KindSwitch, kw.Span)
	p.tree.Set(id, ast.SwitchExpr, p.parseCondition())
	if _, ok := p.expect(token.LBrace, diag.SynExpectLBrace, "expected '{' after switch"); !ok {
		p.finish(id, kw.Span.Start)
		return id
	}
	p.parseStatementsUntil(id, ast.SwitchStatements, token.RBrace)
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedBlock, "expected '}' to close switch"); !ok {
		p.tree.Mutable(id).Flags |= ast.FlagRecovered
	}
	p.finish(id, kw.Span.Start)
	return id
}

// parseSwitchCase: case Expr : | default :
func (p *Parser) parseSwitchCase() ast.NodeID {
	kw := p.advance()
	id := p.tree.NewNode(ast.KindSwitchCase, kw.Span)
	if kw.Kind == token.KwCase {
		p.tree.Set(id, ast.CaseExpr, p.parseExpr())
	}
	p.expect(token.Colon, diag.SynExpectColon, "expected ':' after case label")
	p.finish(id, kw.Span.Start)
	return id
}

// parseTry: try Block {catch (Param) Block} [finally Block]
func (p *Parser) parseTry() ast.NodeID {
	kw := p.advance()
	id := p.tree.NewNode(ast.KindTry, kw.Span)
	p.tree.Set(id, ast.TryBody, p.parseBlockOrRecover())
	for p.at(token.KwCatch) {
		p.tree.Append(id, ast.TryCatches, p.parseCatch())
	}
	if p.at(token.KwFinally) {
		p.advance()
		p.tree.Set(id, ast.TryFinally, p.parseBlockOrRecover())
	}
	if len(p.tree.List(id, ast.TryCatches)) == 0 && p.tree.Child(id, ast.TryFinally) == ast.NoNodeID {
		p.report(diag.SynTryWithoutCatch, diag.SevError, p.afterLast(), "'try' without 'catch' or 'finally'")
	}
	p.finish(id, kw.Span.Start)
	return id
}

func (p *Parser) parseCatch() ast.NodeID {
	kw := p.advance()
	id := p.tree.NewNode(ast.KindCatch, kw.Span)
	p.expect(token.LParen, diag.SynExpectLParen, "expected '(' after catch")
	p.tree.Set(id, ast.CatchParam, p.parseParam())
	p.expect(token.RParen, diag.SynExpectRParen, "expected ')' after catch parameter")
	p.tree.Set(id, ast.CatchBody, p.parseBlockOrRecover())
	p.finish(id, kw.Span.Start)
	return id
}

func (p *Parser) parseBlockOrRecover() ast.NodeID {
	if p.at(token.LBrace) {
		return p.parseBlock()
	}
	p.err(diag.SynExpectLBrace, "expected '{'")
	id := p.tree.NewNode(ast.KindBlock, p.afterLast())
	p.tree.Mutable(id).Flags |= ast.FlagRecovered
	return id
}
