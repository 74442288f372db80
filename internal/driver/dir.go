package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/sema"
	"mend/internal/source"
	"mend/internal/trace"
)

// FileFailure is a file that could not be read.
type FileFailure struct {
	Path string
	Err  error
}

// Diagnostic renders the failure as an IO5001 error without a span.
func (f FileFailure) Diagnostic() diag.Diagnostic {
	return diag.New(diag.SevError, diag.IOLoadFileError, source.Span{}, fmt.Sprintf("%s: %v", f.Path, f.Err), f.Path)
}

// DirResult is the analysis of every source file under a directory. Java
// files are checked together as one program.
type DirResult struct {
	FileSet  *source.FileSet
	Files    []*Analysis
	Program  *sema.Program
	Failures []FileFailure
}

// HasErrors reports load failures or error diagnostics in any file.
func (r *DirResult) HasErrors() bool {
	if len(r.Failures) > 0 {
		return true
	}
	for _, a := range r.Files {
		if a.Bag.HasErrors() {
			return true
		}
	}
	return false
}

// Lookup returns the analysis of path, or nil.
func (r *DirResult) Lookup(path string) *Analysis {
	id, ok := r.FileSet.GetLatest(path)
	if !ok {
		return nil
	}
	for _, a := range r.Files {
		if a.File.ID == id {
			return a
		}
	}
	return nil
}

// skipDir lists directories that never hold sources worth analyzing.
var skipDir = map[string]bool{
	".git":         true,
	".hg":          true,
	"node_modules": true,
	".mend-cache":  true,
}

// ListSources возвращает отсортированный список .java и .js файлов в директории
func ListSources(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (skipDir[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := LangOf(path); ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// AnalyzeDir parses every source file under dir in parallel, then checks the
// Java files as one program.
func AnalyzeDir(ctx context.Context, dir string, opts Options) (*DirResult, error) {
	files, err := ListSources(dir)
	if err != nil {
		return nil, err
	}
	return AnalyzePaths(ctx, dir, files, opts)
}

// AnalyzePaths is AnalyzeDir over an explicit file list.
func AnalyzePaths(ctx context.Context, baseDir string, paths []string, opts Options) (*DirResult, error) {
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "analyze-dir")
	defer span.End("")
	span.Attr("files", fmt.Sprint(len(paths)))

	res := &DirResult{FileSet: source.NewFileSetWithBase(baseDir)}
	if len(paths) == 0 {
		return res, nil
	}

	// FileSet не потокобезопасен: загружаем последовательно до запуска горутин
	idx := opts.begin("load")
	loaded := make([]source.FileID, 0, len(paths))
	for _, path := range paths {
		emit(opts.Progress, path, StageLoad, StatusQueued, nil, 0)
		id, err := res.FileSet.Load(path)
		if err != nil {
			res.Failures = append(res.Failures, FileFailure{Path: path, Err: err})
			emit(opts.Progress, path, StageLoad, StatusError, err, 0)
			continue
		}
		loaded = append(loaded, id)
	}
	opts.end(idx, fmt.Sprintf("files=%d", len(loaded)))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]*Analysis, len(loaded))
	idx = opts.begin("parse")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(loaded))))
	for i, id := range loaded {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			file := res.FileSet.Get(id)
			lang, _ := LangOf(file.Path)
			start := time.Now()
			emit(opts.Progress, file.Path, StageParse, StatusWorking, nil, 0)
			bag := opts.newBag()
			tree, err := parseFile(gctx, res.FileSet, id, lang, bag)
			if err != nil {
				emit(opts.Progress, file.Path, StageParse, StatusError, err, time.Since(start))
				return fmt.Errorf("%s: %w", file.Path, err)
			}
			results[i] = &Analysis{FileSet: res.FileSet, File: file, Tree: tree, Bag: bag}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		opts.end(idx, "")
		return nil, err
	}
	opts.end(idx, "")

	idx = opts.begin("check")
	prog := sema.NewProgram(opts.universe(), opts.semaOptions())
	units := make(map[*Analysis]*sema.Unit)
	for _, a := range results {
		if a.Tree.Lang == ast.LangJava {
			units[a] = prog.AddUnit(a.Tree)
			emit(opts.Progress, a.File.Path, StageCheck, StatusWorking, nil, 0)
		}
	}
	if err := prog.Check(ctx); err != nil {
		opts.end(idx, "")
		return nil, err
	}
	opts.end(idx, fmt.Sprintf("units=%d", len(units)))
	res.Program = prog

	for _, a := range results {
		if u := units[a]; u != nil {
			a.Unit = u
			a.Bag.Merge(u.Bag)
		}
		a.Bag.Sort()
		status := StatusDone
		if a.Bag.HasErrors() {
			status = StatusError
		}
		emit(opts.Progress, a.File.Path, StageCheck, status, nil, 0)
	}
	res.Files = results
	return res, nil
}
