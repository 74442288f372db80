// Package tsjs builds untyped syntax trees for JavaScript sources on top of
// the tree-sitter JavaScript grammar. The trees use the same node kinds as
// the Java parser; constructs with no counterpart become opaque nodes that
// keep their source text.
package tsjs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/source"
)

var extensions = []string{".js", ".mjs", ".cjs"}

// IsSource reports whether path names a JavaScript file.
func IsSource(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func parseRaw(ctx context.Context, content []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(javascript.GetLanguage())
	return parser.ParseCtx(ctx, nil, content)
}

// Parse converts file into a tree. Syntax errors found by tree-sitter are
// reported to rep (which may be nil) and the broken regions become
// recovered opaque nodes.
func Parse(ctx context.Context, file *source.File, rep diag.Reporter) (*ast.Tree, error) {
	st, err := parseRaw(ctx, file.Content)
	if err != nil {
		return nil, fmt.Errorf("tsjs: parse %s: %w", file.Path, err)
	}
	defer st.Close()

	c := &converter{file: file, src: file.Content, tree: ast.NewTree(file, ast.LangJavaScript)}
	root := st.RootNode()
	c.tree.Root = c.program(root)
	if rep != nil {
		c.reportErrors(root, rep)
	}
	return c.tree, nil
}

// ParseSource parses the file id of fs, collecting syntax errors into bag.
func ParseSource(ctx context.Context, fs *source.FileSet, id source.FileID, bag *diag.Bag) (*ast.Tree, error) {
	var rep diag.Reporter
	if bag != nil {
		rep = diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	}
	return Parse(ctx, fs.Get(id), rep)
}

// FirstError returns the 1-based line of the first syntax error in content.
func FirstError(ctx context.Context, content []byte) (line uint32, found bool, err error) {
	st, err := parseRaw(ctx, content)
	if err != nil {
		return 0, false, fmt.Errorf("tsjs: parse: %w", err)
	}
	defer st.Close()
	if n := findFirstError(st.RootNode()); n != nil {
		return n.StartPoint().Row + 1, true, nil
	}
	return 0, false, nil
}

func findFirstError(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if n := findFirstError(node.Child(i)); n != nil {
			return n
		}
	}
	return nil
}

var missingCodes = map[string]diag.Code{
	";": diag.SynExpectSemicolon,
	")": diag.SynExpectRParen,
	"}": diag.SynExpectRBrace,
	"]": diag.SynExpectRBracket,
	"(": diag.SynExpectLParen,
	"{": diag.SynExpectLBrace,
	":": diag.SynExpectColon,
}

func (c *converter) reportErrors(node *sitter.Node, rep diag.Reporter) {
	if node == nil || !node.HasError() && !node.IsMissing() {
		return
	}
	switch {
	case node.IsMissing():
		code, ok := missingCodes[node.Type()]
		if !ok {
			code = diag.SynExpectExpression
		}
		sp := c.span(node)
		sp.End = sp.Start
		rep.Report(code, diag.SevError, sp, fmt.Sprintf("syntax error, insert %q", node.Type()), []string{node.Type()}, nil)
		return
	case node.IsError():
		rep.Report(diag.SynUnexpectedToken, diag.SevError, c.span(node), "syntax error on "+quoteShort(c.text(node)), nil, nil)
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		c.reportErrors(node.Child(i), rep)
	}
}

func quoteShort(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 20 {
		s = s[:20] + "..."
	}
	return fmt.Sprintf("%q", s)
}
