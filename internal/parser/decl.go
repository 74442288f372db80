package parser

import (
	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/source"
	"mend/internal/token"
)

type modifiers struct {
	mods  ast.Modifiers
	span  source.Span
	start uint32 // начало объявления (с аннотациями)
	any   bool
}

// parseModifiers съедает аннотации и ключевые слова-модификаторы.
func (p *Parser) parseModifiers() modifiers {
	m := modifiers{start: p.peek().Span.Start}
	m.span = source.Span{File: p.file.ID, Start: m.start, End: m.start}
	for {
		tok := p.peek()
		if tok.Kind == token.At && p.peekN(1).Kind == token.Ident {
			p.skipAnnotation()
			if !m.any {
				m.span = source.Span{File: p.file.ID, Start: p.peek().Span.Start, End: p.peek().Span.Start}
			}
			continue
		}
		bit, ok := ast.ModifierFor(tok.Kind)
		if !ok {
			return m
		}
		p.advance()
		if m.mods&bit != 0 {
			p.report(diag.SemIllegalModifier, diag.SevError, tok.Span, "duplicate modifier "+tok.Text, tok.Text)
		}
		m.mods |= bit
		if !m.any {
			m.span = tok.Span
			m.any = true
		} else {
			m.span = m.span.Cover(tok.Span)
		}
	}
}

// skipAnnotation: @Name или @Name(...)
func (p *Parser) skipAnnotation() {
	p.advance() // @
	p.parseQualifiedName()
	if p.at(token.LParen) {
		p.skipBalanced(token.LParen, token.RParen)
	}
}

// skipBalanced съедает сбалансированную пару скобок, начиная с open.
func (p *Parser) skipBalanced(open, closing token.Kind) {
	depth := 0
	for !p.at(token.EOF) {
		tok := p.advance()
		switch tok.Kind {
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func (p *Parser) applyModifiers(id ast.NodeID, m modifiers) {
	n := p.tree.Mutable(id)
	n.Mods = m.mods
	n.ModsSpan = m.span
}

// parseTypeDecl: Modifiers class Ident [extends Type] { members }
func (p *Parser) parseTypeDecl() (ast.NodeID, bool) {
	m := p.parseModifiers()
	if !p.at(token.KwClass) {
		p.err(diag.SynExpectTypeDecl, "expected class declaration, got \""+p.peek().Text+"\"")
		return ast.NoNodeID, false
	}
	return p.parseClassRest(m), true
}

func (p *Parser) parseClassRest(m modifiers) ast.NodeID {
	p.advance() // class
	id := p.tree.NewNode(ast.KindTypeDecl, source.Span{})
	p.applyModifiers(id, m)
	nameTok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected class name")
	if ok {
		p.tree.Set(id, ast.TypeName, p.leaf(ast.KindName, nameTok))
	} else {
		p.tree.Set(id, ast.TypeName, p.recoveredName(nameTok))
	}
	if p.at(token.KwExtends) {
		p.advance()
		p.tree.Set(id, ast.TypeSuperclass, p.parseType())
	}

	outer := p.className
	p.className = nameTok.Text
	defer func() { p.className = outer }()

	if _, ok := p.expect(token.LBrace, diag.SynExpectLBrace, "expected '{' to start class body"); !ok {
		p.resyncUntil(token.LBrace, token.RBrace)
		if !p.at(token.LBrace) {
			p.finish(id, m.start)
			return id
		}
		p.advance()
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		before := p.pos
		member, ok := p.parseMember()
		if ok {
			p.tree.Append(id, ast.TypeBody, member)
			continue
		}
		p.resyncUntil(token.Semicolon, token.RBrace)
		if p.at(token.Semicolon) {
			p.advance()
		}
		if p.pos == before {
			p.advance()
		}
	}
	if _, ok := p.expect(token.RBrace, diag.SynExpectRBrace, "expected '}' to close class body"); !ok {
		p.tree.Mutable(id).Flags |= ast.FlagRecovered
	}
	p.finish(id, m.start)
	return id
}

// parseMember: ; | class | field | method | constructor
func (p *Parser) parseMember() (ast.NodeID, bool) {
	if p.at(token.Semicolon) {
		tok := p.advance()
		return p.tree.NewNode(ast.KindEmptyDecl, tok.Span), true
	}
	m := p.parseModifiers()
	switch {
	case p.at(token.KwClass):
		return p.parseClassRest(m), true
	case p.at(token.Ident) && p.peekN(1).Kind == token.LParen:
		// конструктор или метод без возвращаемого типа
		return p.parseMethodRest(m, ast.NoNodeID), true
	case p.at(token.KwVoid):
		void := p.leaf(ast.KindPrimitiveType, p.advance())
		return p.parseMethodRest(m, void), true
	case p.isTypeStart():
		typ := p.parseType()
		if p.at(token.Ident) && p.peekN(1).Kind == token.LParen {
			return p.parseMethodRest(m, typ), true
		}
		return p.parseFieldRest(m, typ), true
	default:
		p.err(diag.SynUnexpectedToken, "unexpected token \""+p.peek().Text+"\" in class body")
		return ast.NoNodeID, false
	}
}

func (p *Parser) parseFieldRest(m modifiers, typ ast.NodeID) ast.NodeID {
	id := p.tree.NewNode(ast.KindFieldDecl, source.Span{})
	p.applyModifiers(id, m)
	p.tree.Set(id, ast.FieldType, typ)
	p.parseFragments(id, ast.FieldFragments)
	p.expectSemicolon()
	p.finish(id, m.start)
	return id
}

// parseFragments: Fragment {, Fragment}
func (p *Parser) parseFragments(owner ast.NodeID, prop ast.Prop) {
	for {
		p.tree.Append(owner, prop, p.parseFragment())
		if !p.at(token.Comma) {
			return
		}
		p.advance()
	}
}

// parseFragment: Ident {[]} [= VariableInitializer]
func (p *Parser) parseFragment() ast.NodeID {
	start := p.peek().Span.Start
	id := p.tree.NewNode(ast.KindVarFragment, source.Span{})
	tok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected variable name")
	if ok {
		p.tree.Set(id, ast.FragmentName, p.leaf(ast.KindName, tok))
	} else {
		p.tree.Set(id, ast.FragmentName, p.recoveredName(tok))
	}
	dims := uint8(0)
	for p.at(token.LBracket) && p.peekN(1).Kind == token.RBracket {
		p.advance()
		p.advance()
		dims++
	}
	p.tree.Mutable(id).Dims = dims
	if p.at(token.Assign) {
		p.advance()
		p.tree.Set(id, ast.FragmentInit, p.parseVariableInitializer())
	}
	p.finish(id, start)
	return id
}

func (p *Parser) parseVariableInitializer() ast.NodeID {
	if p.at(token.LBrace) {
		return p.parseArrayInit()
	}
	return p.parseExpr()
}

// parseMethodRest: Ident ( params ) {[]} [throws QN {, QN}] (Block | ;)
func (p *Parser) parseMethodRest(m modifiers, ret ast.NodeID) ast.NodeID {
	id := p.tree.NewNode(ast.KindMethodDecl, source.Span{})
	p.applyModifiers(id, m)
	if ret != ast.NoNodeID {
		p.tree.Set(id, ast.MethodReturnType, ret)
	}
	nameTok := p.advance()
	p.tree.Set(id, ast.MethodName, p.leaf(ast.KindName, nameTok))
	if ret == ast.NoNodeID && nameTok.Text == p.className {
		p.tree.Mutable(id).Flags |= ast.FlagConstructor
	}

	p.advance() // (
	if !p.at(token.RParen) {
		for {
			p.tree.Append(id, ast.MethodParams, p.parseParam())
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynExpectRParen, "expected ')' after parameters"); !ok {
		p.resyncUntil(token.RParen, token.LBrace, token.Semicolon)
		if p.at(token.RParen) {
			p.advance()
		}
	}
	if ret != ast.NoNodeID {
		// int foo()[] — устаревший синтаксис: размерности относятся к типу результата
		for p.at(token.LBracket) && p.peekN(1).Kind == token.RBracket {
			p.advance()
			p.advance()
		}
	}
	if p.at(token.KwThrows) {
		p.advance()
		for {
			p.tree.Append(id, ast.MethodThrows, p.parseType())
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
	}
	switch {
	case p.at(token.LBrace):
		p.tree.Set(id, ast.MethodBody, p.parseBlock())
	case p.at(token.Semicolon):
		p.advance()
	default:
		p.err(diag.SynExpectLBrace, "expected method body")
		p.tree.Mutable(id).Flags |= ast.FlagRecovered
	}
	p.finish(id, m.start)
	return id
}

// parseParam: Modifiers Type [...] Ident {[]}
func (p *Parser) parseParam() ast.NodeID {
	m := p.parseModifiers()
	id := p.tree.NewNode(ast.KindParam, source.Span{})
	p.applyModifiers(id, m)
	typ := p.parseType()
	if p.at(token.Ellipsis) {
		p.advance()
		p.tree.Mutable(id).Flags |= ast.FlagVarargs
	}
	p.tree.Set(id, ast.ParamType, typ)
	tok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected parameter name")
	if ok {
		p.tree.Set(id, ast.ParamName, p.leaf(ast.KindName, tok))
	} else {
		p.tree.Set(id, ast.ParamName, p.recoveredName(tok))
	}
	for p.at(token.LBracket) && p.peekN(1).Kind == token.RBracket {
		p.advance()
		p.advance()
		p.tree.Mutable(id).Dims++
	}
	p.finish(id, m.start)
	return id
}
