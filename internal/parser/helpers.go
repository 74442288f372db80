package parser

import (
	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/source"
	"mend/internal/token"
)

// advance — съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.peek()
	if tok.Kind != token.EOF {
		p.pos++
		p.lastSpan = tok.Span
	}
	return tok
}

// getDiagnosticSpan — лучший span для диагностики: текущий токен, а на EOF —
// позиция сразу после последнего съеденного.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.peek()
	if peek.Kind == token.EOF {
		return p.afterLast()
	}
	return peek.Span
}

// afterLast — пустой span сразу после последнего съеденного токена.
func (p *Parser) afterLast() source.Span {
	return source.Span{File: p.file.ID, Start: p.lastSpan.End, End: p.lastSpan.End}
}

// expect — ожидаем конкретный токен. Если нет — репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	diagSpan := p.getDiagnosticSpan()
	p.report(code, diag.SevError, diagSpan, msg)
	return token.Token{Kind: token.Invalid, Span: diagSpan, Text: p.peek().Text}, false
}

// expectSemicolon репортит SYN2012 в точке вставки ';' (сразу после предыдущего токена).
func (p *Parser) expectSemicolon() bool {
	if p.at(token.Semicolon) {
		p.advance()
		return true
	}
	p.report(diag.SynExpectSemicolon, diag.SevError, p.afterLast(), "syntax error, insert \";\" to complete the statement", ";")
	return false
}

// репортует ошибку и передает текущий спан
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string, args ...string) bool {
	if p.opts.Reporter == nil {
		return false
	}
	if sev == diag.SevError {
		p.opts.CurrentErrors++
	}
	if p.opts.Enough() {
		return false // достигли максимального количества ошибок
	}
	p.opts.Reporter.Report(code, sev, sp, msg, args, nil)
	return true
}

// resyncUntil прокручивает токены до одного из stop (не съедая его) или EOF.
func (p *Parser) resyncUntil(stop ...token.Kind) {
	for !p.at(token.EOF) && !p.at_or(stop...) {
		p.advance()
	}
}

// finish растягивает span узла от start до конца последнего съеденного токена.
func (p *Parser) finish(id ast.NodeID, start uint32) {
	end := p.lastSpan.End
	if end < start {
		end = start
	}
	p.tree.Mutable(id).Span = source.Span{File: p.file.ID, Start: start, End: end}
}

// node создаёт узел, начинающийся на текущем токене.
func (p *Parser) node(kind ast.Kind) ast.NodeID {
	return p.tree.NewNode(kind, source.Span{File: p.file.ID, Start: p.peek().Span.Start, End: p.peek().Span.Start})
}

// leaf создаёт лист из токена.
func (p *Parser) leaf(kind ast.Kind, tok token.Token) ast.NodeID {
	id := p.tree.NewNode(kind, tok.Span)
	n := p.tree.Mutable(id)
	n.Text = tok.Text
	n.Op = tok.Kind
	return id
}

// recovered — заглушка на месте отсутствующего выражения.
func (p *Parser) recovered() ast.NodeID {
	id := p.tree.NewNode(ast.KindOpaqueExpr, p.afterLast())
	p.tree.Mutable(id).Flags |= ast.FlagRecovered
	return id
}

func (p *Parser) start(id ast.NodeID) uint32 {
	return p.tree.Span(id).Start
}
