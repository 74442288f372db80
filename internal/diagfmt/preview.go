package diagfmt

import (
	"fmt"
	"strings"

	"mend/internal/diag"
	"mend/internal/rewrite"
	"mend/internal/source"
)

// editPreview holds the lines touched by one proposal in one file, before and
// after the edits.
type editPreview struct {
	before []string
	after  []string
}

// buildEditPreview applies edits (all in one file) to the block of whole lines
// they cover.
func buildEditPreview(fs *source.FileSet, edits []diag.TextEdit) (editPreview, error) {
	if fs == nil {
		return editPreview{}, fmt.Errorf("nil FileSet")
	}
	if len(edits) == 0 {
		return editPreview{}, nil
	}
	file := fs.Get(edits[0].Span.File)
	if file == nil {
		return editPreview{}, fmt.Errorf("file %d not found in FileSet", edits[0].Span.File)
	}

	blockStart, blockEnd := file.Len(), uint32(0)
	for _, e := range edits {
		if e.Span.File != file.ID {
			return editPreview{}, fmt.Errorf("edits span several files")
		}
		blockStart = min(blockStart, file.LineStartOf(e.Span.Start))
		blockEnd = max(blockEnd, file.LineEndOf(e.Span.End))
	}
	// захватываем перевод строки, если он есть
	if blockEnd < file.Len() {
		blockEnd++
	}
	blockEnd = max(blockEnd, blockStart)

	original := file.Content[blockStart:blockEnd]
	shifted := make([]diag.TextEdit, len(edits))
	for i, e := range edits {
		shifted[i] = e
		shifted[i].Span = source.Span{File: e.Span.File, Start: e.Span.Start - blockStart, End: e.Span.End - blockStart}
	}
	after, err := rewrite.ApplyEdits(original, shifted)
	if err != nil {
		return editPreview{}, err
	}
	return editPreview{
		before: splitPreviewLines(original),
		after:  splitPreviewLines(after),
	}, nil
}

func splitPreviewLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	// последний перевод строки не порождает пустую строку
	return strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
}
