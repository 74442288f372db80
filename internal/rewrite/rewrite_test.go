package rewrite_test

import (
	"errors"
	"strings"
	"testing"

	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/format"
	"mend/internal/rewrite"
	"mend/internal/source"
	"mend/internal/testkit"
)

func nodes(tree *ast.Tree, kind ast.Kind) []ast.NodeID {
	return tree.Collect(tree.Root, func(_ ast.NodeID, n *ast.Node) bool { return n.Kind == kind })
}

func find(t *testing.T, tree *ast.Tree, kind ast.Kind, text string) ast.NodeID {
	t.Helper()
	for _, id := range nodes(tree, kind) {
		if tree.Text(id) == text {
			return id
		}
	}
	t.Fatalf("no %s %q", kind, text)
	return ast.NoNodeID
}

func apply(t *testing.T, fx *testkit.Fixture, b *rewrite.Builder) (string, *rewrite.Script) {
	t.Helper()
	s, err := b.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	out, err := s.Apply([]byte(fx.Src))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return string(out), s
}

func wantUsage(t *testing.T, b *rewrite.Builder) *rewrite.UsageError {
	t.Helper()
	_, err := b.Compile()
	if !errors.Is(err, rewrite.ErrUsage) {
		t.Fatalf("Compile error = %v, want a usage error", err)
	}
	var ue *rewrite.UsageError
	if !errors.As(err, &ue) {
		t.Fatalf("error %T is not a *UsageError", err)
	}
	return ue
}

func TestCompileWithoutOperationsIsIdentity(t *testing.T) {
	src := "class A {\n    int f(int a) {\n        return a + 1;\n    }\n}\n"
	fx := testkit.Parse(t, src)
	b := rewrite.NewBuilder(fx.Tree, format.Options{})
	out, s := apply(t, fx, b)
	if !s.Empty() {
		t.Fatalf("edits = %+v, want none", s.Edits)
	}
	if out != src {
		t.Fatalf("identity compile changed the text:\n%s", out)
	}
}

func TestReplaceKeepsSurroundingText(t *testing.T) {
	fx := testkit.Parse(t, "class A {\n    int x = 1 + 2;\n}\n")
	b := rewrite.NewBuilder(fx.Tree, format.Options{})
	y := b.Name("y")
	b.Replace(find(t, fx.Tree, ast.KindLiteral, "1"), y)
	out, s := apply(t, fx, b)
	if want := "class A {\n    int x = y + 2;\n}\n"; out != want {
		t.Fatalf("got\n%s\nwant\n%s", out, want)
	}
	if len(s.Edits) != 1 || s.Edits[0].OldText != "1" {
		t.Fatalf("edits = %+v", s.Edits)
	}
	if rg, ok := s.Range(y); !ok || out[rg.Start:rg.End] != "y" {
		t.Fatalf("range of new name = %+v %v", rg, ok)
	}
}

func TestMoveStatementIntoNewElse(t *testing.T) {
	fx := testkit.Parse(t, "class A {\n    int f(boolean x, int a, int b) {\n        if (x) { return a; } return b;\n    }\n}\n")
	b := rewrite.NewBuilder(fx.Tree, format.Options{})
	ifs := nodes(fx.Tree, ast.KindIf)[0]
	ret := find(t, fx.Tree, ast.KindReturn, "return b;")
	b.Set(ifs, ast.IfElse, b.Block(b.MoveTarget(ret)))
	out, s := apply(t, fx, b)
	want := "class A {\n    int f(boolean x, int a, int b) {\n        if (x) { return a; } else {\n            return b;\n        }\n    }\n}\n"
	if out != want {
		t.Fatalf("got\n%s\nwant\n%s", out, want)
	}
	if len(s.Edits) != 1 {
		t.Fatalf("touching edits must merge, got %d", len(s.Edits))
	}
}

func TestMoveConsumedTwiceIsUsageError(t *testing.T) {
	src := "class A {\n    void f() {\n        g();\n    }\n    void g() {}\n}\n"

	fx := testkit.Parse(t, src)
	stmt := find(t, fx.Tree, ast.KindExprStmt, "g();")
	gBody := fx.Tree.Child(nodes(fx.Tree, ast.KindMethodDecl)[1], ast.MethodBody)

	b := rewrite.NewBuilder(fx.Tree, format.Options{})
	b.InsertLast(gBody, ast.BlockStatements, b.MoveTarget(stmt))
	b.InsertLast(gBody, ast.BlockStatements, b.MoveTarget(stmt))
	if ue := wantUsage(t, b); ue.Node != stmt {
		t.Fatalf("usage error names node %d, want %d", ue.Node, stmt)
	}

	b = rewrite.NewBuilder(fx.Tree, format.Options{})
	m := b.MoveTarget(stmt)
	b.InsertLast(gBody, ast.BlockStatements, m)
	b.InsertFirst(gBody, ast.BlockStatements, m)
	wantUsage(t, b)
}

func TestUnusedMoveLeavesSourceAlone(t *testing.T) {
	src := "class A {\n    void f() {\n        g();\n    }\n    void g() {}\n}\n"
	fx := testkit.Parse(t, src)
	b := rewrite.NewBuilder(fx.Tree, format.Options{})
	b.MoveTarget(find(t, fx.Tree, ast.KindExprStmt, "g();"))
	if out, _ := apply(t, fx, b); out != src {
		t.Fatalf("unused move changed the text:\n%s", out)
	}
}

func TestCopyConsumedManyTimes(t *testing.T) {
	fx := testkit.Parse(t, "class A {\n    void f() {\n        g(1);\n    }\n    void g(int v) {}\n}\n")
	stmt := find(t, fx.Tree, ast.KindExprStmt, "g(1);")
	b := rewrite.NewBuilder(fx.Tree, format.Options{})
	var copies []ast.NodeID
	for range 3 {
		c := b.CopyTarget(stmt)
		copies = append(copies, c)
		b.InsertAfter(stmt, c)
	}
	out, s := apply(t, fx, b)
	want := "class A {\n    void f() {\n        g(1);\n        g(1);\n        g(1);\n        g(1);\n    }\n    void g(int v) {}\n}\n"
	if out != want {
		t.Fatalf("got\n%s\nwant\n%s", out, want)
	}
	for _, c := range copies {
		rg, ok := s.Range(c)
		if !ok || out[rg.Start:rg.End] != "g(1);" {
			t.Fatalf("copy range %+v %v", rg, ok)
		}
	}
}

func TestEditInsideMovedNodeIsRenderedByThePlaceholder(t *testing.T) {
	src := "class A {\n    void f(boolean c, int x) {\n        if (c) g(x);\n    }\n    void g(int v) {}\n}\n"
	fx := testkit.Parse(t, src)
	ifs := nodes(fx.Tree, ast.KindIf)[0]
	then := fx.Tree.Child(ifs, ast.IfThen)
	x := fx.Tree.List(fx.Tree.Child(then, ast.ExprStmtExpr), ast.CallArgs)[0]

	b := rewrite.NewBuilder(fx.Tree, format.Options{})
	b.Replace(then, b.Block(b.MoveTarget(then)))
	b.Replace(x, b.Name("y"))
	out, _ := apply(t, fx, b)
	want := "class A {\n    void f(boolean c, int x) {\n        if (c) {\n            g(y);\n        }\n    }\n    void g(int v) {}\n}\n"
	if out != want {
		t.Fatalf("got\n%s\nwant\n%s", out, want)
	}

	// без плейсхолдера внутренняя правка некому отрисовать
	b = rewrite.NewBuilder(fx.Tree, format.Options{})
	b.Replace(ifs, b.Block())
	b.Replace(x, b.Name("y"))
	wantUsage(t, b)
}

func TestConflictingOperations(t *testing.T) {
	fx := testkit.Parse(t, "class A {\n    void f(boolean c, int x) {\n        if (c) g(x);\n    }\n    void g(int v) {}\n}\n")
	x := find(t, fx.Tree, ast.KindName, "x")
	ifs := nodes(fx.Tree, ast.KindIf)[0]

	b := rewrite.NewBuilder(fx.Tree, format.Options{})
	b.Replace(x, b.Name("y"))
	b.Remove(x)
	wantUsage(t, b)

	b = rewrite.NewBuilder(fx.Tree, format.Options{})
	b.Remove(fx.Tree.Child(ifs, ast.IfCondition))
	wantUsage(t, b)

	b = rewrite.NewBuilder(fx.Tree, format.Options{})
	sp := fx.Tree.Span(ifs)
	b.ReplaceText(source.Span{File: sp.File, Start: sp.Start, End: sp.Start + 4}, "")
	b.ReplaceText(source.Span{File: sp.File, Start: sp.Start + 2, End: sp.Start + 6}, "")
	wantUsage(t, b)
}

func TestRemoveFromLists(t *testing.T) {
	src := "class A {\n    void f(int a, int b, int c) throws Exception, Error {\n        int x = 1;\n        int y = 2;\n    }\n}\n"
	fx := testkit.Parse(t, src)
	method := nodes(fx.Tree, ast.KindMethodDecl)[0]

	cases := []struct {
		name   string
		remove []ast.NodeID
		want   string
	}{
		{"middle", []ast.NodeID{find(t, fx.Tree, ast.KindParam, "int b")},
			"void f(int a, int c) throws"},
		{"first", []ast.NodeID{find(t, fx.Tree, ast.KindParam, "int a")},
			"void f(int b, int c) throws"},
		{"whole throws", fx.Tree.List(method, ast.MethodThrows),
			"void f(int a, int b, int c) {\n"},
		{"statement line", []ast.NodeID{find(t, fx.Tree, ast.KindLocalVarDecl, "int y = 2;")},
			"        int x = 1;\n    }\n}\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := rewrite.NewBuilder(fx.Tree, format.Options{})
			for _, id := range c.remove {
				b.Remove(id)
			}
			out, _ := apply(t, fx, b)
			if !strings.Contains(out, c.want) {
				t.Fatalf("got\n%s\nwant it to contain\n%s", out, c.want)
			}
		})
	}
}

func TestInsertIntoEmptyLists(t *testing.T) {
	fx := testkit.Parse(t, "class A {\n    void f(boolean a) {}\n}\n")
	method := nodes(fx.Tree, ast.KindMethodDecl)[0]
	b := rewrite.NewBuilder(fx.Tree, format.Options{})
	b.InsertLast(fx.Tree.Child(method, ast.MethodBody), ast.BlockStatements, b.ExprStmt(b.Call(ast.NoNodeID, "g")))
	b.InsertLast(method, ast.MethodThrows, b.SimpleType("Exception"))
	out, _ := apply(t, fx, b)
	want := "class A {\n    void f(boolean a) throws Exception {\n        g();\n    }\n}\n"
	if out != want {
		t.Fatalf("got\n%s\nwant\n%s", out, want)
	}
}

func TestRemoveElseWithItsKeyword(t *testing.T) {
	fx := testkit.Parse(t, "class A {\n    void f(boolean a) {\n        if (a) g(); else h();\n    }\n    void g() {}\n    void h() {}\n}\n")
	ifs := nodes(fx.Tree, ast.KindIf)[0]
	b := rewrite.NewBuilder(fx.Tree, format.Options{})
	b.Remove(fx.Tree.Child(ifs, ast.IfElse))
	out, _ := apply(t, fx, b)
	if !strings.Contains(out, "        if (a) g();\n") {
		t.Fatalf("got\n%s", out)
	}
}

func TestRangesOfExtractedLocal(t *testing.T) {
	fx := testkit.Parse(t, "class A {\n    int f(int a) {\n        return a * 2 + 1;\n    }\n}\n")
	expr := find(t, fx.Tree, ast.KindInfix, "a * 2")
	ret := nodes(fx.Tree, ast.KindReturn)[0]

	b := rewrite.NewBuilder(fx.Tree, format.Options{})
	frag := b.Fragment("tmp", b.CopyTarget(expr))
	b.InsertBefore(ret, b.LocalVar(0, b.Type(fx.Unit.Universe().Int), frag))
	ref := b.Name("tmp")
	b.Replace(expr, ref)
	out, s := apply(t, fx, b)
	want := "class A {\n    int f(int a) {\n        int tmp = a * 2;\n        return tmp + 1;\n    }\n}\n"
	if out != want {
		t.Fatalf("got\n%s\nwant\n%s", out, want)
	}
	declName := b.Tree().Child(frag, ast.FragmentName)
	for _, id := range []ast.NodeID{declName, ref} {
		rg, ok := s.Range(id)
		if !ok || out[rg.Start:rg.End] != "tmp" {
			t.Fatalf("range of %d = %+v %v", id, rg, ok)
		}
	}
	if rg, ok := s.Range(ret); !ok || out[rg.Start:rg.End] != "return tmp + 1;" {
		t.Fatalf("shifted return range = %+v %v", rg, ok)
	}
}

func TestSetModifiers(t *testing.T) {
	fx := testkit.Parse(t, "class A {\n    private static int x;\n    int y;\n}\n")
	fields := nodes(fx.Tree, ast.KindFieldDecl)
	b := rewrite.NewBuilder(fx.Tree, format.Options{})
	b.SetModifiers(fields[0], ast.ModPrivate)
	b.SetModifiers(fields[1], ast.ModFinal)
	out, _ := apply(t, fx, b)
	if want := "class A {\n    private int x;\n    final int y;\n}\n"; out != want {
		t.Fatalf("got\n%s\nwant\n%s", out, want)
	}
}

func TestApplyEditsIsAllOrNothing(t *testing.T) {
	content := []byte("int x = 1;")
	edits := []diag.TextEdit{
		{Span: source.Span{Start: 8, End: 9}, NewText: "2", OldText: "1"},
		{Span: source.Span{Start: 0, End: 3}, NewText: "long", OldText: "byte"},
	}
	if _, err := rewrite.ApplyEdits(content, edits); err == nil {
		t.Fatalf("stale guard must reject the whole edit")
	}
	if string(content) != "int x = 1;" {
		t.Fatalf("content modified: %q", content)
	}
	edits[1].OldText = "int"
	out, err := rewrite.ApplyEdits(content, edits)
	if err != nil || string(out) != "long x = 2;" {
		t.Fatalf("ApplyEdits = %q, %v", out, err)
	}
}
