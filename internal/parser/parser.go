package parser

import (
	"slices"

	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/lexer"
	"mend/internal/source"
	"mend/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	Tree *ast.Tree
	Bag  *diag.Bag
}

// Parser — состояние парсера на один файл.
// Java требует произвольного lookahead (объявление vs выражение, cast vs скобки),
// поэтому токены читаются из лексера целиком заранее.
type Parser struct {
	toks     []token.Token
	pos      int
	tree     *ast.Tree
	file     *source.File
	opts     Options
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики
	// className — имя класса, тело которого разбирается (для конструкторов)
	className string
}

// ParseFile — входная точка для разбора одного файла.
func ParseFile(lx *lexer.Lexer, opts Options) Result {
	file := lx.File()
	p := Parser{
		toks: lx.All(),
		tree: ast.NewTree(file, ast.LangJava),
		file: file,
		opts: opts,
	}
	p.lastSpan = source.Span{File: file.ID}
	p.tree.Root = p.parseCompilationUnit()

	var bag *diag.Bag
	switch br := opts.Reporter.(type) {
	case *diag.BagReporter:
		bag = br.Bag
	case diag.BagReporter:
		bag = br.Bag
	}
	return Result{Tree: p.tree, Bag: bag}
}

// ParseSource lexes and parses the file id of fs, collecting diagnostics into bag.
func ParseSource(fs *source.FileSet, id source.FileID, bag *diag.Bag) *ast.Tree {
	var rep diag.Reporter
	if bag != nil {
		rep = diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	}
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: rep})
	return ParseFile(lx, Options{Reporter: rep}).Tree
}

func (p *Parser) peek() token.Token {
	return p.peekN(0)
}

// peekN смотрит на n токенов вперёд; за концом — EOF.
func (p *Parser) peekN(n int) token.Token {
	if i := p.pos + n; i < len(p.toks) {
		return p.toks[i]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) at_or(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

func (p *Parser) IsError() bool {
	return p.opts.CurrentErrors != 0
}

// parseCompilationUnit: [package] {import} {class | ;}
func (p *Parser) parseCompilationUnit() ast.NodeID {
	unit := p.tree.NewNode(ast.KindCompilationUnit, source.Span{})

	if p.at(token.KwPackage) {
		p.tree.Set(unit, ast.UnitPackage, p.parsePackageDecl())
	}
	for p.at(token.KwImport) {
		p.tree.Append(unit, ast.UnitImports, p.parseImportDecl())
	}
	for !p.at(token.EOF) {
		if p.at(token.Semicolon) {
			tok := p.advance()
			p.tree.Append(unit, ast.UnitTypes, p.tree.NewNode(ast.KindEmptyDecl, tok.Span))
			continue
		}
		before := p.pos
		decl, ok := p.parseTypeDecl()
		if ok {
			p.tree.Append(unit, ast.UnitTypes, decl)
			continue
		}
		p.resyncTop()
		if p.pos == before {
			p.advance()
		}
	}
	p.tree.Mutable(unit).Span = source.Span{File: p.file.ID, Start: 0, End: p.file.Len()}
	return unit
}

func (p *Parser) parsePackageDecl() ast.NodeID {
	kw := p.advance()
	id := p.tree.NewNode(ast.KindPackageDecl, kw.Span)
	p.tree.Set(id, ast.PackageName, p.parseQualifiedName())
	p.expectSemicolon()
	p.finish(id, kw.Span.Start)
	return id
}

func (p *Parser) parseImportDecl() ast.NodeID {
	kw := p.advance()
	id := p.tree.NewNode(ast.KindImportDecl, kw.Span)
	name := p.parseQualifiedName()
	// import a.b.*; — звёздочка остаётся в тексте имени
	if p.at(token.Dot) && p.peekN(1).Kind == token.Star {
		p.advance()
		star := p.advance()
		n := p.tree.Mutable(name)
		n.Span = n.Span.Cover(star.Span)
		n.Text += ".*"
	}
	p.tree.Set(id, ast.ImportName, name)
	p.expectSemicolon()
	p.finish(id, kw.Span.Start)
	return id
}

// resyncTop — прокручиваем до следующего `class`, модификатора или EOF.
func (p *Parser) resyncTop() {
	p.resyncUntil(token.KwClass, token.KwPublic, token.KwAbstract, token.KwFinal, token.EOF)
}
