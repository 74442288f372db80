package format

import (
	"testing"

	"mend/internal/ast"
	"mend/internal/source"
	"mend/internal/token"
)

func TestReindent(t *testing.T) {
	text := "if (a) {\n\t\tfoo();\n\n\t\tbar();\n\t}"
	got, mapOff := Reindent(text, "\t", "    ")
	want := "if (a) {\n    \tfoo();\n\n    \tbar();\n    }"
	if got != want {
		t.Fatalf("Reindent:\n%q\nwant\n%q", got, want)
	}
	// "bar" starts after "\t\t" on the fourth line.
	old := len("if (a) {\n\t\tfoo();\n\n\t\t")
	if n := mapOff(old); got[n:n+3] != "bar" {
		t.Fatalf("mapped offset %d points at %q", n, got[n:])
	}
	if n := mapOff(2); n != 2 {
		t.Fatalf("first line offsets must not move, got %d", n)
	}
}

func TestDetectIndent(t *testing.T) {
	cases := []struct {
		src, want string
	}{
		{"class A {\n  int x;\n    int y;\n}", "  "},
		{"class A {\n\tint x;\n}", "\t"},
		{"class A {}", ""},
		{"/**\n * doc\n */\nclass A {\n    int x;\n}", "    "},
	}
	for _, c := range cases {
		if got := DetectIndent([]byte(c.src)); got != c.want {
			t.Errorf("DetectIndent(%q) = %q, want %q", c.src, got, c.want)
		}
	}
	if got := OptionsFor(IndentSpaces, 2, nil).Indent; got != "  " {
		t.Errorf("spaces style = %q", got)
	}
}

type textPlaceholders map[ast.NodeID]string

func (m textPlaceholders) Placeholder(ph ast.NodeID, indent string) (Rendered, error) {
	return Rendered{Text: m[ph]}, nil
}

func TestPrintSynthesizedIf(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("A.java", []byte("class A {}")))
	base := ast.NewTree(f, ast.LangJava)
	base.Root = base.NewNode(ast.KindCompilationUnit, source.Span{})
	tr := base.Overlay()

	name := func(text string) ast.NodeID {
		id := tr.NewNode(ast.KindName, source.Span{})
		tr.Mutable(id).Text = text
		return id
	}
	cond := tr.NewNode(ast.KindInfix, source.Span{})
	tr.Mutable(cond).Op = token.EqEq
	tr.Set(cond, ast.InfixLeft, name("x"))
	lit := tr.NewNode(ast.KindLiteral, source.Span{})
	tr.Mutable(lit).Text = "1"
	tr.Set(cond, ast.InfixRight, lit)

	ph := tr.NewNode(ast.KindPlaceholder, source.Span{})
	tr.Mutable(ph).Flags |= ast.FlagString

	then := tr.NewNode(ast.KindBlock, source.Span{})
	tr.Append(then, ast.BlockStatements, ph)
	els := tr.NewNode(ast.KindBlock, source.Span{})

	ifs := tr.NewNode(ast.KindIf, source.Span{})
	tr.Set(ifs, ast.IfCondition, cond)
	tr.Set(ifs, ast.IfThen, then)
	tr.Set(ifs, ast.IfElse, els)

	r, err := Print(tr, ifs, "  ", Options{Indent: "  "}, textPlaceholders{ph: "foo();"})
	if err != nil {
		t.Fatalf("Print: %v", err)
	}
	want := "if (x == 1) {\n    foo();\n  } else {\n  }"
	if r.Text != want {
		t.Fatalf("Print:\n%s\nwant\n%s", r.Text, want)
	}
	if rg := r.Ranges[cond]; r.Text[rg.Start:rg.End] != "x == 1" {
		t.Fatalf("condition range covers %q", r.Text[rg.Start:rg.End])
	}
	if rg := r.Ranges[ph]; r.Text[rg.Start:rg.End] != "foo();" {
		t.Fatalf("placeholder range covers %q", r.Text[rg.Start:rg.End])
	}
}

func TestPrintRejectsParsedNodes(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("A.java", []byte("x")))
	base := ast.NewTree(f, ast.LangJava)
	parsed := base.NewNode(ast.KindName, source.Span{File: f.ID, Start: 0, End: 1})
	tr := base.Overlay()
	if _, err := Print(tr, parsed, "", Options{}, nil); err == nil {
		t.Fatalf("printing a parsed node must fail")
	}
}
