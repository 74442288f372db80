package query

import (
	"strings"

	"mend/internal/ast"
	"mend/internal/lexer"
	"mend/internal/source"
	"mend/internal/token"
)

// NormalizedText returns the token spelling of a parsed node joined by single
// spaces, so formatting and comments do not affect comparisons.
func NormalizedText(t *ast.Tree, id ast.NodeID) string {
	text := t.Text(id)
	if text == "" {
		return ""
	}
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("fragment", []byte(text)))
	lx := lexer.New(f, lexer.Options{})
	var parts []string
	for _, tok := range lx.All() {
		if tok.Kind == token.EOF {
			break
		}
		parts = append(parts, tok.Text)
	}
	return strings.Join(parts, " ")
}

// SameText reports whether two parsed nodes are spelled identically up to
// whitespace and comments.
func SameText(t *ast.Tree, a, b ast.NodeID) bool {
	ta := NormalizedText(t, a)
	return ta != "" && ta == NormalizedText(t, b)
}
