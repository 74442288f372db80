package driver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"mend/internal/ast"
	"mend/internal/correction"
	"mend/internal/diag"
	"mend/internal/observ"
	"mend/internal/parser"
	"mend/internal/sema"
	"mend/internal/source"
	"mend/internal/symbols"
	"mend/internal/trace"
	"mend/internal/tsjs"
)

// ErrUnsupported is returned for files that are neither Java nor JavaScript.
var ErrUnsupported = errors.New("unsupported source file")

// Options содержит опции анализа
type Options struct {
	// MaxDiagnostics caps each file's bag; 0 means unlimited.
	MaxDiagnostics int
	// NoLints disables the LNT4xxx warnings.
	NoLints bool
	// Jobs bounds parallel parsing in AnalyzeDir; 0 uses GOMAXPROCS.
	Jobs     int
	Timer    *observ.Timer
	Progress ProgressSink
	Universe *symbols.Universe
}

func (o Options) universe() *symbols.Universe {
	if o.Universe != nil {
		return o.Universe
	}
	return symbols.NewUniverse()
}

func (o Options) semaOptions() sema.Options {
	return sema.Options{Lints: !o.NoLints, MaxDiagnostics: o.MaxDiagnostics}
}

func (o Options) newBag() *diag.Bag {
	if o.MaxDiagnostics <= 0 {
		return diag.NewBag(1 << 16)
	}
	return diag.NewBag(o.MaxDiagnostics)
}

func (o Options) begin(name string) int {
	if o.Timer == nil {
		return -1
	}
	return o.Timer.Begin(name)
}

func (o Options) end(idx int, note string) {
	if o.Timer == nil || idx < 0 {
		return
	}
	o.Timer.End(idx, note)
}

// LangOf selects the frontend for path by extension.
func LangOf(path string) (ast.Lang, bool) {
	if strings.EqualFold(filepath.Ext(path), ".java") {
		return ast.LangJava, true
	}
	if tsjs.IsSource(path) {
		return ast.LangJavaScript, true
	}
	return 0, false
}

// Analysis is one parsed and checked file.
type Analysis struct {
	FileSet *source.FileSet
	File    *source.File
	Tree    *ast.Tree
	// Unit is nil for JavaScript: only Java files get bindings.
	Unit *sema.Unit
	// Bag holds the parse and check diagnostics, sorted.
	Bag *diag.Bag
}

// Resolver answers binding queries for the tree; JavaScript trees get a
// resolver that knows nothing.
func (a *Analysis) Resolver() symbols.Resolver {
	if a.Unit != nil {
		return a.Unit
	}
	return symbols.NopResolver(symbols.NewUniverse())
}

func (a *Analysis) Diagnostics() []diag.Diagnostic { return a.Bag.Items() }

// Problems locates every diagnostic of the file in the tree.
func (a *Analysis) Problems() []correction.ProblemLocation {
	return correction.ProblemLocations(a.Tree, a.Diagnostics())
}

// Request builds a proposal request for the selection [offset, offset+length).
// Only diagnostics overlapping the selection become problems.
func (a *Analysis) Request(offset, length uint32, assists bool) correction.Request {
	sel := source.Span{File: a.File.ID, Start: offset, End: offset + length}
	var ds []diag.Diagnostic
	for _, d := range a.Diagnostics() {
		if d.Primary.Intersects(sel) {
			ds = append(ds, d)
		}
	}
	return correction.Request{
		Tree:     a.Tree,
		Resolver: a.Resolver(),
		Offset:   offset,
		Length:   length,
		Problems: correction.ProblemLocations(a.Tree, ds),
		Assists:  assists,
	}
}

// AnalyzeFile loads path from disk and analyzes it on its own.
func AnalyzeFile(ctx context.Context, path string, opts Options) (*Analysis, error) {
	if _, ok := LangOf(path); !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	idx := opts.begin("load_file")
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	opts.end(idx, "")
	if err != nil {
		return nil, err
	}
	return AnalyzeSource(ctx, fs, id, opts)
}

// AnalyzeSource analyzes an already loaded file of fs.
func AnalyzeSource(ctx context.Context, fs *source.FileSet, id source.FileID, opts Options) (*Analysis, error) {
	file := fs.Get(id)
	if file == nil {
		return nil, fmt.Errorf("unknown file %d", id)
	}
	lang, ok := LangOf(file.Path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", file.Path, ErrUnsupported)
	}
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "analyze:"+file.Path)
	defer span.End("")

	bag := opts.newBag()
	idx := opts.begin("parse")
	tree, err := parseFile(ctx, fs, id, lang, bag)
	opts.end(idx, fmt.Sprintf("diags=%d", bag.Len()))
	if err != nil {
		return nil, err
	}
	a := &Analysis{FileSet: fs, File: file, Tree: tree, Bag: bag}
	if lang != ast.LangJava {
		bag.Sort()
		return a, nil
	}

	idx = opts.begin("check")
	unit, err := sema.CheckTree(ctx, opts.universe(), tree, opts.semaOptions())
	if err != nil {
		opts.end(idx, "")
		return nil, err
	}
	opts.end(idx, fmt.Sprintf("diags=%d", unit.Bag.Len()))
	a.Unit = unit
	bag.Merge(unit.Bag)
	bag.Sort()
	span.Attr("diagnostics", fmt.Sprint(bag.Len()))
	return a, nil
}

func parseFile(ctx context.Context, fs *source.FileSet, id source.FileID, lang ast.Lang, bag *diag.Bag) (*ast.Tree, error) {
	if lang == ast.LangJavaScript {
		return tsjs.ParseSource(ctx, fs, id, bag)
	}
	return parser.ParseSource(fs, id, bag), nil
}
