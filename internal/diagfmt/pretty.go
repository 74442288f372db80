package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"mend/internal/correction"
	"mend/internal/diag"
	"mend/internal/source"
)

type palette struct {
	err, warn, info *color.Color
	code, gutter    *color.Color
	note, fix       *color.Color
	add, del, hunk  *color.Color
}

func newPalette(on bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		code:   mk(color.Bold),
		gutter: mk(color.FgBlue),
		note:   mk(color.FgCyan),
		fix:    mk(color.FgGreen),
		add:    mk(color.FgGreen),
		del:    mk(color.FgRed),
		hunk:   mk(color.FgMagenta),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// isIO reports codes whose span does not point into a loaded file.
func isIO(c diag.Code) bool { return c >= diag.IOInfo && c < diag.IOInfo+1000 }

// Pretty форматирует диагностики в человекочитаемый вид.
// Ожидается, что ds уже отсортированы (bag.Sort()).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes и исправления.
func Pretty(w io.Writer, ds []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for i := range ds {
		d := &ds[i]
		if isIO(d.Code) {
			fmt.Fprintf(w, "%s %s: %s\n", pal.severity(d.Severity).Sprint(d.Severity), pal.code.Sprint(d.Code.ID()), d.Message)
			continue
		}
		f := fs.Get(d.Primary.File)
		if f == nil {
			fmt.Fprintf(w, "<unknown>: %s %s: %s\n", pal.severity(d.Severity).Sprint(d.Severity), pal.code.Sprint(d.Code.ID()), d.Message)
			continue
		}
		pos := f.LineCol(d.Primary.Start)
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			opts.PathMode.path(f, fs), pos.Line, pos.Col,
			pal.severity(d.Severity).Sprint(d.Severity), pal.code.Sprint(d.Code.ID()), d.Message)
		writeContext(w, f, d.Primary, opts, pal, pal.severity(d.Severity))

		if opts.ShowNotes {
			for _, n := range d.Notes {
				nf := fs.Get(n.Span.File)
				if nf == nil {
					fmt.Fprintf(w, "  %s %s\n", pal.note.Sprint("note:"), n.Msg)
					continue
				}
				np := nf.LineCol(n.Span.Start)
				fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", pal.note.Sprint("note:"), opts.PathMode.path(nf, fs), np.Line, np.Col, n.Msg)
			}
		}
		if opts.ShowFixes && opts.Fixes != nil {
			for k, p := range opts.Fixes(d) {
				writeFix(w, fs, k+1, &p, opts, pal)
			}
		}
	}
}

// writeContext prints the primary line with opts.Context lines around it and
// underlines the span. Spans over several lines are underlined up to the end
// of the first one.
func writeContext(w io.Writer, f *source.File, sp source.Span, opts PrettyOpts, pal palette, mark *color.Color) {
	if opts.Context < 0 {
		return
	}
	pos := f.LineCol(sp.Start)
	last := f.LineCol(f.Len()).Line
	from := pos.Line - min(pos.Line-1, uint32(opts.Context))
	to := min(last, pos.Line+uint32(opts.Context))
	gw := len(fmt.Sprint(to))

	for line := from; line <= to; line++ {
		text := f.GetLine(line)
		if opts.Width > 0 {
			text = runewidth.Truncate(text, int(opts.Width), "...")
		}
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", gw, line), text)
		if line != pos.Line {
			continue
		}
		lineStart := f.LineStart(line)
		lineEnd := lineStart + uint32(len(f.GetLine(line)))
		prefix := string(f.Content[lineStart:sp.Start])
		under := string(f.Content[sp.Start:min(max(sp.End, sp.Start), lineEnd)])
		width := max(1, runewidth.StringWidth(under))
		fmt.Fprintf(w, "%s %s%s\n", pal.gutter.Sprintf("%*s |", gw, ""), caretPad(prefix), mark.Sprint("^"+strings.Repeat("~", width-1)))
	}
}

// caretPad turns the text before a caret into blanks of the same display width.
func caretPad(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}

func writeFix(w io.Writer, fs *source.FileSet, n int, p *correction.Proposal, opts PrettyOpts, pal palette) {
	fmt.Fprintf(w, "  %s %s (id=%s)\n", pal.fix.Sprintf("fix #%d:", n), p.Label, p.RuleID)
	for _, e := range p.Edits {
		loc := "?"
		if f := fs.Get(e.Span.File); f != nil {
			start, end := f.LineCol(e.Span.Start), f.LineCol(e.Span.End)
			loc = fmt.Sprintf("%s:%d:%d-%d:%d", opts.PathMode.path(f, fs), start.Line, start.Col, end.Line, end.Col)
		}
		fmt.Fprintf(w, "    apply=%q at %s\n", e.NewText, loc)
	}
	if !opts.ShowPreview {
		return
	}
	for _, id := range p.Files() {
		pv, err := buildEditPreview(fs, p.EditsFor(id))
		if err != nil {
			fmt.Fprintf(w, "    preview unavailable: %v\n", err)
			continue
		}
		fmt.Fprintln(w, "    preview:")
		for _, l := range pv.before {
			fmt.Fprintf(w, "      %s\n", pal.del.Sprint("- "+l))
		}
		for _, l := range pv.after {
			fmt.Fprintf(w, "      %s\n", pal.add.Sprint("+ "+l))
		}
	}
}
