package source

import (
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// File captures metadata and content for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of every '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// Len returns the content length as uint32.
func (f *File) Len() uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	return n
}

// Text returns the bytes covered by sp as a string. Out-of-range spans are clamped.
func (f *File) Text(sp Span) string {
	end := min(sp.End, f.Len())
	start := min(sp.Start, end)
	return string(f.Content[start:end])
}

// LineCol converts a byte offset into a 1-based line/column pair.
func (f *File) LineCol(off uint32) LineCol {
	return toLineCol(f.LineIdx, off)
}

// Offset converts a 1-based line/column pair back into a byte offset.
// Columns past the end of the line clamp to the line end.
func (f *File) Offset(pos LineCol) (uint32, bool) {
	if pos.Line == 0 || pos.Col == 0 {
		return 0, false
	}
	start := f.LineStart(pos.Line)
	if pos.Line > 1 && int(pos.Line-2) >= len(f.LineIdx) {
		return 0, false
	}
	end := f.lineEnd(pos.Line)
	off := start + pos.Col - 1
	if off > end {
		off = end
	}
	return off, true
}

// LineStart returns the offset of the first byte of the 1-based line.
func (f *File) LineStart(line uint32) uint32 {
	if line <= 1 {
		return 0
	}
	if int(line-2) >= len(f.LineIdx) {
		return f.Len()
	}
	return f.LineIdx[line-2] + 1
}

func (f *File) lineEnd(line uint32) uint32 {
	if int(line-1) < len(f.LineIdx) {
		return f.LineIdx[line-1]
	}
	return f.Len()
}

// LineStartOf returns the offset where the line containing off begins.
func (f *File) LineStartOf(off uint32) uint32 {
	return f.LineStart(f.LineCol(off).Line)
}

// LineEndOf returns the offset of the '\n' ending the line containing off
// (or the content length on the last line).
func (f *File) LineEndOf(off uint32) uint32 {
	return f.lineEnd(f.LineCol(off).Line)
}

// Indentation returns the leading whitespace of the line containing off.
func (f *File) Indentation(off uint32) string {
	start := f.LineStartOf(off)
	end := start
	for end < f.Len() && (f.Content[end] == ' ' || f.Content[end] == '\t') {
		end++
	}
	return string(f.Content[start:end])
}

// GetLine returns the text of the 1-based line without its terminator.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 || (lineNum > 1 && int(lineNum-2) >= len(f.LineIdx)) {
		return ""
	}
	return string(f.Content[f.LineStart(lineNum):f.lineEnd(lineNum)])
}

// FormatPath renders the path according to mode: absolute, relative, basename or auto.
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		abs, err := filepath.Abs(f.Path)
		if err != nil {
			return f.Path
		}
		if rel, err := filepath.Rel(baseDir, abs); err == nil {
			return filepath.ToSlash(rel)
		}
		return f.Path
	case "basename":
		return filepath.Base(f.Path)
	case "auto":
		// короткие и относительные пути показываем как есть
		if len(f.Path) < 40 || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		return filepath.Base(f.Path)
	default:
		return f.Path
	}
}
