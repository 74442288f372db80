package sema

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/source"
	"mend/internal/symbols"
	"mend/internal/trace"
)

// Options tunes a Program check.
type Options struct {
	// Lints enables the LNT4xxx warnings.
	Lints bool
	// MaxDiagnostics caps each unit's bag; 0 means unlimited.
	MaxDiagnostics int
}

// Program is a set of compilation units resolved together: classes declared
// in one unit are visible from every other.
type Program struct {
	universe *symbols.Universe
	opts     Options
	units    []*Unit

	classes     map[string]*symbols.Symbol
	classOrder  []*symbols.Symbol
	classUnit   map[*symbols.Symbol]*Unit
	checkOnce   sync.Once
	checkResult error
}

// NewProgram creates an empty program over universe u.
func NewProgram(u *symbols.Universe, opts Options) *Program {
	if u == nil {
		u = symbols.NewUniverse()
	}
	return &Program{
		universe:  u,
		opts:      opts,
		classes:   make(map[string]*symbols.Symbol),
		classUnit: make(map[*symbols.Symbol]*Unit),
	}
}

// AddUnit registers a parsed Java tree. Units must be added before Check.
func (p *Program) AddUnit(tree *ast.Tree) *Unit {
	limit := p.opts.MaxDiagnostics
	if limit <= 0 {
		limit = 1 << 16
	}
	u := &Unit{
		prog:     p,
		Tree:     tree,
		Table:    symbols.NewTable(),
		Bag:      diag.NewBag(limit),
		reads:    make(map[*symbols.Symbol]int),
		opaque:   make(map[string]bool),
		typeRefs: make(map[ast.NodeID]bool),
	}
	u.reporter = diag.NewDedupReporter(diag.BagReporter{Bag: u.Bag})
	if pkg := tree.Child(tree.Unit(), ast.UnitPackage); pkg != ast.NoNodeID {
		u.pkg = tree.Node(tree.Child(pkg, ast.PackageName)).Text
	}
	p.units = append(p.units, u)
	return u
}

func (p *Program) Units() []*Unit                   { return p.units }
func (p *Program) Universe() *symbols.Universe      { return p.universe }
func (p *Program) Classes() []*symbols.Symbol       { return p.classOrder }
func (p *Program) UnitOf(cls *symbols.Symbol) *Unit { return p.classUnit[cls.TopLevel()] }

// UnitFor returns the unit built from tree, or nil.
func (p *Program) UnitFor(tree *ast.Tree) *Unit {
	for _, u := range p.units {
		if u.Tree == tree || u.Tree == tree.Base() {
			return u
		}
	}
	return nil
}

// Check resolves every unit. Declarations are collected sequentially, then
// unit bodies are checked concurrently. Calling Check again is a no-op that
// returns the first result.
func (p *Program) Check(ctx context.Context) error {
	p.checkOnce.Do(func() {
		p.checkResult = p.check(ctx)
	})
	return p.checkResult
}

func (p *Program) check(ctx context.Context) error {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "sema", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	span.Attr("units", fmt.Sprint(len(p.units)))

	for _, u := range p.units {
		u.declareClasses()
	}
	for _, u := range p.units {
		u.declareHeaders()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, u := range p.units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			us := trace.Begin(tracer, trace.ScopeModule, "sema:"+u.path(), span.ID())
			u.checkBodies()
			if p.opts.Lints {
				u.lintUnit()
			}
			u.Bag.Sort()
			us.Attr("diagnostics", fmt.Sprint(u.Bag.Len()))
			us.End("")
			return nil
		})
	}
	return g.Wait()
}

// CheckTree is a shortcut for a single-unit program.
func CheckTree(ctx context.Context, u *symbols.Universe, tree *ast.Tree, opts Options) (*Unit, error) {
	p := NewProgram(u, opts)
	unit := p.AddUnit(tree)
	if err := p.Check(ctx); err != nil {
		return nil, err
	}
	return unit, nil
}

// Unit is one compilation unit of a Program. After Check it answers binding
// queries through the symbols.Resolver methods.
type Unit struct {
	prog     *Program
	Tree     *ast.Tree
	Table    *symbols.Table
	Bag      *diag.Bag
	pkg      string
	reporter diag.Reporter
	classes  []*symbols.Symbol

	// reads counts rvalue uses of variables and calls of methods.
	reads map[*symbols.Symbol]int
	// opaque holds identifiers that occur in unparsed statement text.
	opaque map[string]bool
	// typeRefs marks expression names that denote a class.
	typeRefs map[ast.NodeID]bool
}

var _ symbols.Resolver = (*Unit)(nil)

func (u *Unit) Program() *Program { return u.prog }

// Diagnostics returns the sorted diagnostics of the unit.
func (u *Unit) Diagnostics() []diag.Diagnostic { return u.Bag.Items() }

func (u *Unit) path() string {
	if f := u.Tree.File; f != nil {
		return f.Path
	}
	return "<unit>"
}

func (u *Unit) report(code diag.Code, span source.Span, args ...string) {
	u.reporter.Report(code, severityOf(code), span, message(code, args), args, nil)
}

func (u *Unit) reportAt(code diag.Code, id ast.NodeID, args ...string) {
	u.report(code, u.Tree.Span(id), args...)
}

func (u *Unit) Binding(id ast.NodeID) *symbols.Symbol       { return u.Table.Binding(id) }
func (u *Unit) TypeOf(id ast.NodeID) *symbols.Type          { return u.Table.TypeOf(id) }
func (u *Unit) DeclaredBy(decl ast.NodeID) *symbols.Symbol  { return u.Table.DeclaredBy(decl) }
func (u *Unit) References(sym *symbols.Symbol) []ast.NodeID { return u.Table.References(sym) }
func (u *Unit) Universe() *symbols.Universe                 { return u.prog.universe }
func (u *Unit) Package() string                             { return u.pkg }

// IsTypeReference reports whether an expression name denotes a class.
func (u *Unit) IsTypeReference(id ast.NodeID) bool { return u.typeRefs[id] }

// LookupType finds a class by simple name: source classes first, then builtins.
func (u *Unit) LookupType(name string) *symbols.Symbol {
	return u.prog.lookupType(name)
}

func (p *Program) lookupType(name string) *symbols.Symbol {
	if c, ok := p.classes[name]; ok {
		return c
	}
	return p.universe.Class(name)
}

// Types returns source classes in declaration order followed by builtins.
func (u *Unit) Types() []*symbols.Symbol {
	out := make([]*symbols.Symbol, 0, len(u.prog.classOrder)+len(u.prog.universe.Classes()))
	out = append(out, u.prog.classOrder...)
	for _, c := range u.prog.universe.Classes() {
		if _, shadowed := u.prog.classes[c.Name]; !shadowed {
			out = append(out, c)
		}
	}
	return out
}

// UnitClasses returns the classes declared in this unit, outer before nested.
func (u *Unit) UnitClasses() []*symbols.Symbol { return u.classes }
