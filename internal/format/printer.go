package format

import (
	"errors"
	"fmt"

	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/parser"
	"mend/internal/source"
)

// ErrNotSynthetic is returned when the printer meets a parsed node; parsed
// text only enters synthesized trees through placeholders.
var ErrNotSynthetic = errors.New("format: parsed node outside a placeholder")

// Rendered is printed text plus the ranges of the nodes printed into it.
type Rendered struct {
	Text   string
	Ranges map[ast.NodeID]Range
}

// Placeholders renders placeholder nodes. indent is the indentation of the
// line the placeholder starts on; continuation lines must already carry it.
type Placeholders interface {
	Placeholder(ph ast.NodeID, indent string) (Rendered, error)
}

type printer struct {
	tree   *ast.Tree
	ph     Placeholders
	w      *Writer
	ranges map[ast.NodeID]Range
	err    error
}

// Print renders the synthesized subtree id. Lines after the first are
// indented from base.
func Print(tree *ast.Tree, id ast.NodeID, base string, opt Options, ph Placeholders) (Rendered, error) {
	p := &printer{
		tree:   tree,
		ph:     ph,
		w:      NewWriter(base, opt),
		ranges: make(map[ast.NodeID]Range),
	}
	p.node(id)
	if p.err != nil {
		return Rendered{}, p.err
	}
	return Rendered{Text: p.w.String(), Ranges: p.ranges}, nil
}

func (p *printer) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *printer) node(id ast.NodeID) {
	if id == ast.NoNodeID || p.err != nil {
		return
	}
	t := p.tree
	n := t.Node(id)
	if n == nil {
		p.fail(fmt.Errorf("format: unknown node %d", id))
		return
	}
	if n.Kind != ast.KindPlaceholder && !t.IsSynthetic(id) {
		p.fail(fmt.Errorf("%w: %s %d", ErrNotSynthetic, n.Kind, id))
		return
	}
	start := p.w.Mark()
	switch {
	case n.Kind == ast.KindPlaceholder:
		p.placeholder(id, start)
	case n.Kind.IsStatement() || n.Kind == ast.KindCatch:
		p.statement(id, n)
	case n.Kind.IsExpression():
		p.expression(id, n)
	case n.Kind.IsType():
		p.typeNode(id, n)
	default:
		p.declaration(id, n)
	}
	p.ranges[id] = Range{Start: start, End: len(p.w.buf)}
}

func (p *printer) placeholder(id ast.NodeID, start int) {
	if p.ph == nil {
		p.fail(fmt.Errorf("format: placeholder %d without a renderer", id))
		return
	}
	r, err := p.ph.Placeholder(id, p.w.Indent())
	if err != nil {
		p.fail(err)
		return
	}
	p.w.WriteString(r.Text)
	for nid, rg := range r.Ranges {
		p.ranges[nid] = rg.Shift(start)
	}
}

// list prints the elements of a list property joined by sep.
func (p *printer) list(id ast.NodeID, prop ast.Prop, sep string) {
	for i, c := range p.tree.List(id, prop) {
		if i > 0 {
			p.w.WriteString(sep)
		}
		p.node(c)
	}
}

func (p *printer) child(id ast.NodeID, prop ast.Prop) {
	p.node(p.tree.Child(id, prop))
}

func (p *printer) modifiers(n *ast.Node) {
	if n.Mods != 0 {
		p.w.WriteString(n.Mods.String())
		p.w.WriteByte(' ')
	}
}

func (p *printer) typeNode(id ast.NodeID, n *ast.Node) {
	switch n.Kind {
	case ast.KindPrimitiveType:
		p.w.WriteString(n.Text)
	case ast.KindSimpleType:
		if name := p.tree.Child(id, ast.SimpleTypeName); name != ast.NoNodeID {
			p.node(name)
		} else {
			p.w.WriteString(n.Text)
		}
	case ast.KindArrayType:
		p.child(id, ast.ArrayTypeElem)
		p.w.WriteString("[]")
	}
}

func (p *printer) declaration(id ast.NodeID, n *ast.Node) {
	t := p.tree
	w := p.w
	switch n.Kind {
	case ast.KindCompilationUnit:
		if pkg := t.Child(id, ast.UnitPackage); pkg != ast.NoNodeID {
			p.node(pkg)
			w.Newline()
			w.Newline()
		}
		for _, imp := range t.List(id, ast.UnitImports) {
			p.node(imp)
			w.Newline()
		}
		p.list(id, ast.UnitTypes, "\n\n")
	case ast.KindPackageDecl:
		w.WriteString("package ")
		p.child(id, ast.PackageName)
		w.WriteByte(';')
	case ast.KindImportDecl:
		w.WriteString("import ")
		p.child(id, ast.ImportName)
		w.WriteByte(';')
	case ast.KindTypeDecl:
		p.modifiers(n)
		w.WriteString("class ")
		p.child(id, ast.TypeName)
		if sup := t.Child(id, ast.TypeSuperclass); sup != ast.NoNodeID {
			w.WriteString(" extends ")
			p.node(sup)
		}
		w.WriteString(" {")
		p.lines(id, ast.TypeBody, 1)
		w.WriteByte('}')
	case ast.KindFieldDecl:
		p.modifiers(n)
		p.child(id, ast.FieldType)
		w.WriteByte(' ')
		p.list(id, ast.FieldFragments, ", ")
		w.WriteByte(';')
	case ast.KindMethodDecl:
		p.modifiers(n)
		if ret := t.Child(id, ast.MethodReturnType); ret != ast.NoNodeID {
			p.node(ret)
			w.WriteByte(' ')
		}
		p.child(id, ast.MethodName)
		w.WriteByte('(')
		p.list(id, ast.MethodParams, ", ")
		w.WriteByte(')')
		if len(t.List(id, ast.MethodThrows)) > 0 {
			w.WriteString(" throws ")
			p.list(id, ast.MethodThrows, ", ")
		}
		if body := t.Child(id, ast.MethodBody); body != ast.NoNodeID {
			w.WriteByte(' ')
			p.node(body)
		} else {
			w.WriteByte(';')
		}
	case ast.KindParam:
		p.modifiers(n)
		p.child(id, ast.ParamType)
		if n.Flags.Has(ast.FlagVarargs) {
			w.WriteString("...")
		}
		w.WriteByte(' ')
		p.child(id, ast.ParamName)
		p.dims(n)
	case ast.KindVarFragment:
		p.child(id, ast.FragmentName)
		p.dims(n)
		if init := t.Child(id, ast.FragmentInit); init != ast.NoNodeID {
			w.WriteString(" = ")
			p.node(init)
		}
	case ast.KindEmptyDecl:
		w.WriteByte(';')
	default:
		p.fail(fmt.Errorf("format: cannot print %s", n.Kind))
	}
}

func (p *printer) dims(n *ast.Node) {
	for range n.Dims {
		p.w.WriteString("[]")
	}
}

// lines prints a list property one element per line, indented by extra
// levels, and leaves the writer at the start of the closing line.
func (p *printer) lines(id ast.NodeID, prop ast.Prop, extra int) {
	w := p.w
	w.Newline()
	for range extra {
		w.IndentPush()
	}
	for _, c := range p.tree.List(id, prop) {
		p.node(c)
		w.Newline()
	}
	for range extra {
		w.IndentPop()
	}
}

// CheckRoundTrip parses text as a Java unit and reports whether it is free of
// syntax errors. It is used to validate the result of applying a proposal.
func CheckRoundTrip(path string, text []byte, maxDiag int) (ok bool, msg string) {
	fs := source.NewFileSetWithBase("")
	fid := fs.AddVirtual(path, text)
	bag := diag.NewBag(maxDiag)
	parser.ParseSource(fs, fid, bag)
	if bag.HasErrors() {
		for _, d := range bag.Items() {
			if d.Severity >= diag.SevError {
				return false, "round-trip: " + d.Message
			}
		}
	}
	return true, "round-trip: OK"
}
