package diagfmt

import (
	"fmt"
	"io"

	"mend/internal/ast"
	"mend/internal/source"
)

// ASTNodeOutput is one node of `mend parse --format json`.
type ASTNodeOutput struct {
	Kind     string          `json:"kind"`
	Prop     string          `json:"prop,omitempty"`
	Span     source.Span     `json:"span"`
	Text     string          `json:"text,omitempty"`
	Op       string          `json:"op,omitempty"`
	Mods     string          `json:"mods,omitempty"`
	Children []ASTNodeOutput `json:"children,omitempty"`
}

// FormatASTPretty prints the tree rooted at tree.Root as an outline:
//
//	CompilationUnit 1:1-3:1
//	└─ types: TypeDecl 1:1-2:2
//	   └─ name: Name C 1:7-1:8
func FormatASTPretty(w io.Writer, tree *ast.Tree, fs *source.FileSet) error {
	root := tree.Node(tree.Root)
	if root == nil {
		return fmt.Errorf("empty tree")
	}
	fmt.Fprintf(w, "%s\n", nodeLabel(tree, tree.Root, fs))
	writeChildren(w, tree, tree.Root, fs, "")
	return nil
}

func writeChildren(w io.Writer, tree *ast.Tree, id ast.NodeID, fs *source.FileSet, prefix string) {
	children := tree.Children(id)
	for i, c := range children {
		branch, next := "├─ ", "│  "
		if i == len(children)-1 {
			branch, next = "└─ ", "   "
		}
		loc := tree.Node(c).Loc.Info().Name
		fmt.Fprintf(w, "%s%s%s: %s\n", prefix, branch, loc, nodeLabel(tree, c, fs))
		writeChildren(w, tree, c, fs, prefix+next)
	}
}

func nodeLabel(tree *ast.Tree, id ast.NodeID, fs *source.FileSet) string {
	n := tree.Node(id)
	label := n.Kind.String()
	switch n.Kind {
	case ast.KindInfix, ast.KindPrefix, ast.KindPostfix, ast.KindAssign:
		label += " " + n.Op.String()
	}
	if n.Text != "" {
		label += " " + n.Text
	}
	if n.Mods != 0 {
		label += " [" + n.Mods.String() + "]"
	}
	start, end := fs.Resolve(n.Span)
	return fmt.Sprintf("%s %d:%d-%d:%d", label, start.Line, start.Col, end.Line, end.Col)
}

// FormatASTJSON writes the tree as nested JSON objects.
func FormatASTJSON(w io.Writer, tree *ast.Tree) error {
	if tree.Node(tree.Root) == nil {
		return fmt.Errorf("empty tree")
	}
	return WriteJSON(w, astNodeJSON(tree, tree.Root))
}

func astNodeJSON(tree *ast.Tree, id ast.NodeID) ASTNodeOutput {
	n := tree.Node(id)
	out := ASTNodeOutput{Kind: n.Kind.String(), Span: n.Span, Text: n.Text}
	if n.Parent.IsValid() {
		out.Prop = n.Loc.String()
	}
	switch n.Kind {
	case ast.KindInfix, ast.KindPrefix, ast.KindPostfix, ast.KindAssign:
		out.Op = n.Op.String()
	}
	if n.Mods != 0 {
		out.Mods = n.Mods.String()
	}
	for _, c := range tree.Children(id) {
		out.Children = append(out.Children, astNodeJSON(tree, c))
	}
	return out
}
