package driver

import (
	"context"
	"fmt"
	"os"

	"mend/internal/diag"
	"mend/internal/source"
	"mend/internal/trace"
)

// DiagnoseResult is what `mend diagnose` prints: diagnostics only, no trees.
type DiagnoseResult struct {
	FileSet     *source.FileSet
	Diagnostics []diag.Diagnostic
	Failures    []FileFailure
	// Cached is set when every file was served from the disk cache.
	Cached bool
}

// HasErrors reports load failures or error diagnostics.
func (r *DiagnoseResult) HasErrors() bool {
	if len(r.Failures) > 0 {
		return true
	}
	for i := range r.Diagnostics {
		if r.Diagnostics[i].Severity >= diag.SevError {
			return true
		}
	}
	return false
}

// Diagnose reports the diagnostics of path, a file or a directory. With a
// cache, a run whose files all hit is answered without parsing; otherwise the
// whole set is analyzed and the cache refreshed.
func Diagnose(ctx context.Context, path string, cache *DiskCache, opts Options) (*DiagnoseResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	baseDir := path
	paths := []string{path}
	if info.IsDir() {
		if paths, err = ListSources(path); err != nil {
			return nil, err
		}
	} else {
		if _, ok := LangOf(path); !ok {
			return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
		}
		baseDir = ""
	}

	if cache != nil {
		if res, ok := fromCache(ctx, baseDir, paths, cache, opts); ok {
			return res, nil
		}
	}

	dir, err := AnalyzePaths(ctx, baseDir, paths, opts)
	if err != nil {
		return nil, err
	}
	res := &DiagnoseResult{FileSet: dir.FileSet, Failures: dir.Failures}
	program := programDigest(dir.FileSet.Latest())
	for _, a := range dir.Files {
		res.Diagnostics = append(res.Diagnostics, a.Diagnostics()...)
		if cache == nil {
			continue
		}
		if err := cache.Put(fileKey(a.File, program, opts), payloadFor(dir.FileSet, a.File, a.Diagnostics())); err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeDriver, "cache-put-failed", trace.CurrentSpan(ctx).SpanID,
				map[string]string{"path": a.File.Path, "error": err.Error()})
		}
	}
	return res, nil
}

func fromCache(ctx context.Context, baseDir string, paths []string, cache *DiskCache, opts Options) (*DiagnoseResult, bool) {
	fs := source.NewFileSetWithBase(baseDir)
	for _, p := range paths {
		if _, err := fs.Load(p); err != nil {
			// ошибки чтения отдаём полному анализу
			return nil, false
		}
	}
	files := fs.Latest()
	program := programDigest(files)
	res := &DiagnoseResult{FileSet: fs, Cached: true}
	for _, f := range files {
		var payload DiskPayload
		ok, err := cache.Get(fileKey(f, program, opts), &payload)
		if err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopeDriver, "cache-get-failed", trace.CurrentSpan(ctx).SpanID,
				map[string]string{"path": f.Path, "error": err.Error()})
		}
		if !ok || err != nil || payload.ContentHash != Digest(f.Hash) {
			return nil, false
		}
		res.Diagnostics = append(res.Diagnostics, payload.restore(fs, f)...)
	}
	return res, true
}
