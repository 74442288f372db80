// Package preview renders proposals as unified diffs and checks that the
// edited text still parses.
package preview

import (
	"bytes"
	"fmt"
	"strings"

	"fortio.org/safecast"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/go-diff/diff"

	"mend/internal/correction"
	"mend/internal/rewrite"
	"mend/internal/source"
)

// ContextLines is the number of unchanged lines around each hunk.
const ContextLines = 3

// FileDiff builds the unified diff of one file. It returns nil when before
// and after are equal.
func FileDiff(path string, before, after []byte) (*diff.FileDiff, error) {
	if bytes.Equal(before, after) {
		return nil, nil
	}
	a := splitLines(before)
	b := splitLines(after)
	fd := &diff.FileDiff{OrigName: "a/" + path, NewName: "b/" + path}

	m := difflib.NewMatcher(a, b)
	for _, group := range m.GetGroupedOpCodes(ContextLines) {
		h, err := hunk(a, b, group)
		if err != nil {
			return nil, fmt.Errorf("preview: %s: %w", path, err)
		}
		fd.Hunks = append(fd.Hunks, h)
	}
	return fd, nil
}

func hunk(a, b []string, group []difflib.OpCode) (*diff.Hunk, error) {
	first, last := group[0], group[len(group)-1]
	var body bytes.Buffer
	for _, op := range group {
		switch op.Tag {
		case 'e':
			writeLines(&body, ' ', a[op.I1:op.I2])
		case 'd':
			writeLines(&body, '-', a[op.I1:op.I2])
		case 'i':
			writeLines(&body, '+', b[op.J1:op.J2])
		case 'r':
			writeLines(&body, '-', a[op.I1:op.I2])
			writeLines(&body, '+', b[op.J1:op.J2])
		}
	}
	origStart, err := safecast.Conv[int32](first.I1 + 1)
	if err != nil {
		return nil, err
	}
	origLines, err := safecast.Conv[int32](last.I2 - first.I1)
	if err != nil {
		return nil, err
	}
	newStart, err := safecast.Conv[int32](first.J1 + 1)
	if err != nil {
		return nil, err
	}
	newLines, err := safecast.Conv[int32](last.J2 - first.J1)
	if err != nil {
		return nil, err
	}
	// пустой диапазон в unified diff указывает на строку перед ним
	if origLines == 0 {
		origStart--
	}
	if newLines == 0 {
		newStart--
	}
	return &diff.Hunk{
		OrigStartLine: origStart,
		OrigLines:     origLines,
		NewStartLine:  newStart,
		NewLines:      newLines,
		Body:          body.Bytes(),
	}, nil
}

// splitLines splits content after each newline. A missing final newline
// is added so every hunk line is terminated.
func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(content), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] += "\n"
	}
	return lines
}

// writeLines writes lines with prefix.
func writeLines(w *bytes.Buffer, prefix byte, lines []string) {
	for _, l := range lines {
		w.WriteByte(prefix)
		w.WriteString(l)
	}
}

// Change is the new content of one file touched by a proposal.
type Change struct {
	File   source.FileID
	Path   string
	Before []byte
	After  []byte
}

// Changes applies p to every file it touches without writing anything.
func Changes(fs *source.FileSet, p *correction.Proposal) ([]Change, error) {
	out := make([]Change, 0, 1)
	for _, id := range p.Files() {
		f := fs.Get(id)
		if f == nil {
			return nil, fmt.Errorf("preview: unknown file %d", id)
		}
		after, err := rewrite.ApplyEdits(f.Content, p.EditsFor(id))
		if err != nil {
			return nil, fmt.Errorf("preview: %s: %w", f.Path, err)
		}
		out = append(out, Change{File: id, Path: f.FormatPath("relative", fs.BaseDir()), Before: f.Content, After: after})
	}
	return out, nil
}

// Proposal renders p as a multi-file unified diff.
func Proposal(fs *source.FileSet, p *correction.Proposal) ([]byte, error) {
	changes, err := Changes(fs, p)
	if err != nil {
		return nil, err
	}
	return Render(changes)
}

// Render prints the diffs of changes; unchanged files are left out.
func Render(changes []Change) ([]byte, error) {
	fds := make([]*diff.FileDiff, 0, len(changes))
	for _, c := range changes {
		fd, err := FileDiff(c.Path, c.Before, c.After)
		if err != nil {
			return nil, err
		}
		if fd != nil {
			fds = append(fds, fd)
		}
	}
	if len(fds) == 0 {
		return nil, nil
	}
	return diff.PrintMultiFileDiff(fds)
}

// Stats counts added and removed lines of a rendered diff.
type Stats struct {
	Files   int
	Added   int
	Removed int
}

// Summarize parses a rendered diff back and counts its lines.
func Summarize(rendered []byte) (Stats, error) {
	var st Stats
	if len(rendered) == 0 {
		return st, nil
	}
	fds, err := diff.ParseMultiFileDiff(rendered)
	if err != nil {
		return st, fmt.Errorf("preview: parse diff: %w", err)
	}
	st.Files = len(fds)
	for _, fd := range fds {
		s := fd.Stat()
		st.Added += int(s.Added + s.Changed)
		st.Removed += int(s.Deleted + s.Changed)
	}
	return st, nil
}
