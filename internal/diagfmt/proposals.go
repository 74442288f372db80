package diagfmt

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"mend/internal/correction"
	"mend/internal/linked"
	"mend/internal/preview"
	"mend/internal/source"
)

// ProposalOpts configures the text listing of `mend assist`.
type ProposalOpts struct {
	Color bool
	// Diff prints the unified diff of each proposal under its line.
	Diff bool
	// Groups lists the linked positions of each proposal.
	Groups bool
}

// Proposals prints ps as a numbered list, labels padded to a common width.
// Numbers start at 1 and match `assist --apply N`.
func Proposals(w io.Writer, fs *source.FileSet, ps []correction.Proposal, opts ProposalOpts) error {
	pal := newPalette(opts.Color)
	if len(ps) == 0 {
		fmt.Fprintln(w, "no proposals")
		return nil
	}
	labelW := 0
	for i := range ps {
		labelW = max(labelW, runewidth.StringWidth(ps[i].Label))
	}
	numW := len(fmt.Sprint(len(ps)))
	for i := range ps {
		p := &ps[i]
		code := ""
		if p.Kind == correction.KindFix {
			code = " " + p.Code.ID()
		}
		fmt.Fprintf(w, "%*d. %s  %s\n", numW, i+1,
			runewidth.FillRight(p.Label, labelW),
			pal.note.Sprintf("[%s %s%s] relevance=%d", p.Kind, p.RuleID, code, p.Relevance))
		if p.MultiUnit() {
			fmt.Fprintf(w, "%*s  touches %d files\n", numW, "", len(p.Files()))
		}
		if opts.Groups {
			for _, g := range p.Groups {
				writeGroup(w, numW, g)
			}
		}
		if opts.Diff {
			rendered, err := preview.Proposal(fs, p)
			if err != nil {
				return err
			}
			writeDiff(w, rendered, pal)
		}
	}
	return nil
}

func writeGroup(w io.Writer, indent int, g linked.ResolvedGroup) {
	parts := make([]string, len(g.Positions))
	for i, p := range g.Positions {
		parts[i] = fmt.Sprintf("%d+%d", p.Offset, p.Length)
		if p.Primary {
			parts[i] += "*"
		}
	}
	fmt.Fprintf(w, "%*s  linked %s: %s", indent, "", g.Name, strings.Join(parts, ", "))
	if len(g.Alternatives) > 0 {
		fmt.Fprintf(w, " {%s}", strings.Join(g.Alternatives, ", "))
	}
	fmt.Fprintln(w)
}

// writeDiff colors a unified diff line by line.
func writeDiff(w io.Writer, rendered []byte, pal palette) {
	for _, line := range bytes.SplitAfter(rendered, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		s := string(line)
		switch {
		case strings.HasPrefix(s, "+++"), strings.HasPrefix(s, "---"):
			fmt.Fprint(w, pal.code.Sprint(s))
		case strings.HasPrefix(s, "@@"):
			fmt.Fprint(w, pal.hunk.Sprint(s))
		case strings.HasPrefix(s, "+"):
			fmt.Fprint(w, pal.add.Sprint(s))
		case strings.HasPrefix(s, "-"):
			fmt.Fprint(w, pal.del.Sprint(s))
		default:
			fmt.Fprint(w, s)
		}
	}
}
