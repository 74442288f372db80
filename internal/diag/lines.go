package diag

import (
	"fmt"
	"slices"
	"strings"

	"mend/internal/source"
)

// LineOpts controls Lines.
type LineOpts struct {
	// PathMode is passed to source.File.FormatPath ("" keeps the path as loaded).
	PathMode string
	// Notes adds one indented line per note after its diagnostic.
	Notes bool
}

// Lines renders ds one per line, in bag order:
//
//	error SEM3001 A.java:3:16 [missing] missing cannot be resolved
//
// The bracketed list holds the diagnostic Args and is left out when empty.
// Diagnostics whose file is not in fs are skipped.
func Lines(ds []Diagnostic, fs *source.FileSet, opts LineOpts) []string {
	if fs == nil || len(ds) == 0 {
		return nil
	}
	sorted := slices.Clone(ds)
	slices.SortStableFunc(sorted, func(a, b Diagnostic) int {
		switch {
		case before(&a, &b):
			return -1
		case before(&b, &a):
			return 1
		}
		return 0
	})

	out := make([]string, 0, len(sorted))
	for i := range sorted {
		d := &sorted[i]
		pos, ok := position(fs, d.Primary, opts.PathMode)
		if !ok {
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s %s %s", strings.ToLower(d.Severity.String()), d.Code.ID(), pos)
		if len(d.Args) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(d.Args, ","))
		}
		b.WriteByte(' ')
		b.WriteString(oneLine(d.Message))
		out = append(out, b.String())

		if !opts.Notes {
			continue
		}
		for _, n := range d.Notes {
			if npos, ok := position(fs, n.Span, opts.PathMode); ok {
				out = append(out, "  note "+npos+" "+oneLine(n.Msg))
			}
		}
	}
	return out
}

func position(fs *source.FileSet, sp source.Span, mode string) (string, bool) {
	f := fs.Get(sp.File)
	if f == nil || int(sp.Start) > len(f.Content) {
		return "", false
	}
	lc := f.LineCol(sp.Start)
	return fmt.Sprintf("%s:%d:%d", f.FormatPath(mode, fs.BaseDir()), lc.Line, lc.Col), true
}

func oneLine(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	return strings.TrimSpace(strings.ReplaceAll(msg, "\n", " "))
}
