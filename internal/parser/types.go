package parser

import (
	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/source"
	"mend/internal/token"
)

// parseQualifiedName: Ident {. Ident} → Name | QualifiedName.
func (p *Parser) parseQualifiedName() ast.NodeID {
	tok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected identifier")
	if !ok {
		return p.recoveredName(tok)
	}
	name := p.leaf(ast.KindName, tok)
	for p.at(token.Dot) && p.peekN(1).Kind == token.Ident {
		p.advance()
		name = p.qualify(name, p.leaf(ast.KindName, p.advance()))
	}
	return name
}

func (p *Parser) recoveredName(tok token.Token) ast.NodeID {
	id := p.tree.NewNode(ast.KindName, source.Span{File: p.file.ID, Start: tok.Span.Start, End: tok.Span.Start})
	p.tree.Mutable(id).Flags |= ast.FlagRecovered
	return id
}

// qualify строит QualifiedName{qualifier, name}; Text — полный текст имени.
func (p *Parser) qualify(qualifier, name ast.NodeID) ast.NodeID {
	q := p.tree.NewNode(ast.KindQualifiedName, p.tree.Span(qualifier).Cover(p.tree.Span(name)))
	p.tree.Mutable(q).Text = p.tree.Node(qualifier).Text + "." + p.tree.Node(name).Text
	p.tree.Set(q, ast.QualifiedQualifier, qualifier)
	p.tree.Set(q, ast.QualifiedNameName, name)
	return q
}

// isTypeStart — может ли текущий токен начинать тип.
func (p *Parser) isTypeStart() bool {
	k := p.peek().Kind
	return k == token.Ident || k.IsPrimitiveType()
}

// parseType: (primitive | QName) {[ ]}.
func (p *Parser) parseType() ast.NodeID {
	base, ok := p.parseBaseType()
	if !ok {
		return base
	}
	return p.parseDims(base)
}

// parseBaseType разбирает тип без размерностей массива.
func (p *Parser) parseBaseType() (ast.NodeID, bool) {
	switch tok := p.peek(); {
	case tok.Kind.IsPrimitiveType():
		return p.leaf(ast.KindPrimitiveType, p.advance()), true
	case tok.Kind == token.Ident:
		start := tok.Span.Start
		base := p.tree.NewNode(ast.KindSimpleType, tok.Span)
		name := p.parseQualifiedName()
		p.tree.Set(base, ast.SimpleTypeName, name)
		p.tree.Mutable(base).Text = p.tree.Node(name).Text
		p.finish(base, start)
		return base, true
	default:
		p.err(diag.SynExpectType, "expected type, got \""+tok.Text+"\"")
		id := p.tree.NewNode(ast.KindSimpleType, p.afterLast())
		p.tree.Set(id, ast.SimpleTypeName, p.recoveredName(tok))
		p.tree.Mutable(id).Flags |= ast.FlagRecovered
		return id, false
	}
}

// parseDims оборачивает тип в ArrayType на каждую пару [].
func (p *Parser) parseDims(elem ast.NodeID) ast.NodeID {
	for p.at(token.LBracket) && p.peekN(1).Kind == token.RBracket {
		p.advance()
		p.advance()
		arr := p.tree.NewNode(ast.KindArrayType, source.Span{})
		p.tree.Set(arr, ast.ArrayTypeElem, elem)
		p.finish(arr, p.start(elem))
		elem = arr
	}
	return elem
}

// skipTypeAt проверяет без побочных эффектов, что с позиции i начинается тип,
// и возвращает позицию за ним.
func (p *Parser) skipTypeAt(i int) (int, bool) {
	k := p.peekN(i).Kind
	switch {
	case k.IsPrimitiveType():
		i++
	case k == token.Ident:
		i++
		for p.peekN(i).Kind == token.Dot && p.peekN(i+1).Kind == token.Ident {
			i += 2
		}
	default:
		return i, false
	}
	for p.peekN(i).Kind == token.LBracket && p.peekN(i+1).Kind == token.RBracket {
		i += 2
	}
	return i, true
}

// looksLikeVarDecl: Type Ident — начало объявления переменной.
func (p *Parser) looksLikeVarDecl() bool {
	i, ok := p.skipTypeAt(0)
	return ok && p.peekN(i).Kind == token.Ident
}
