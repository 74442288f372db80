package linked_test

import (
	"testing"

	"mend/internal/ast"
	"mend/internal/format"
	"mend/internal/linked"
	"mend/internal/rewrite"
	"mend/internal/testkit"
	"mend/internal/token"
)

func TestResolveAgainstCompiledScript(t *testing.T) {
	fx := testkit.Parse(t, "class A {\n    int f(int a) {\n        return a * 2;\n    }\n}\n")
	ret := fx.Tree.Collect(fx.Tree.Root, func(_ ast.NodeID, n *ast.Node) bool { return n.Kind == ast.KindReturn })[0]
	expr := fx.Tree.Child(ret, ast.ReturnExpr)

	b := rewrite.NewBuilder(fx.Tree, format.Options{})
	frag := b.Fragment("i", b.MoveTarget(expr))
	decl := b.LocalVar(0, b.Type(fx.Unit.Universe().Int), frag)
	b.InsertBefore(ret, decl)
	ref := b.Name("i")
	b.Set(ret, ast.ReturnExpr, ref)
	s, err := b.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	out, err := s.Apply([]byte(fx.Src))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	m := linked.New()
	m.Group("name").
		AddPosition(b.Tree().Child(frag, ast.FragmentName), true).
		AddPosition(ref, false).
		AddAlternatives("i", "value", "i")
	m.SetEnd(decl, linked.After)
	groups, end, err := m.Resolve(s)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(groups) != 1 || len(groups[0].Positions) != 2 {
		t.Fatalf("groups = %+v", groups)
	}
	if got := groups[0].Alternatives; len(got) != 2 || got[0] != "i" {
		t.Fatalf("alternatives = %v", got)
	}
	for _, p := range groups[0].Positions {
		if string(out[p.Offset:p.End()]) != "i" {
			t.Fatalf("position %+v covers %q", p, out[p.Offset:p.End()])
		}
	}
	if !groups[0].Positions[0].Primary {
		t.Fatalf("primary position must come first")
	}
	if string(out[end-1]) != ";" {
		t.Fatalf("end %d is not after the declaration in %q", end, out)
	}

	text, filled, newEnd, err := linked.Fill(string(out), groups, 0, "value", end)
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	want := "class A {\n    int f(int a) {\n        int value = a * 2;\n        return value;\n    }\n}\n"
	if text != want {
		t.Fatalf("filled text\n%s\nwant\n%s", text, want)
	}
	for _, p := range filled[0].Positions {
		if text[p.Offset:p.End()] != "value" {
			t.Fatalf("shifted position %+v covers %q", p, text[p.Offset:p.End()])
		}
	}
	if text[newEnd-1] != ';' || newEnd != end+4 {
		t.Fatalf("end moved to %d", newEnd)
	}
}

func TestEndDefaultsToLastEdit(t *testing.T) {
	fx := testkit.Parse(t, "class A {\n    int x = 1;\n}\n")
	lit := fx.Tree.Collect(fx.Tree.Root, func(_ ast.NodeID, n *ast.Node) bool { return n.Kind == ast.KindLiteral })[0]
	b := rewrite.NewBuilder(fx.Tree, format.Options{})
	b.Replace(lit, b.Literal(token.IntLit, "42"))
	s, err := b.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var m *linked.Model
	_, end, err := m.Resolve(s)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := len("class A {\n    int x = 42"); end != want {
		t.Fatalf("end = %d, want %d", end, want)
	}

	m = linked.New()
	m.SetEndOffset(fx.Tree.Span(lit).Start)
	_, end, _ = m.Resolve(s)
	if want := len("class A {\n    int x = "); end != want {
		t.Fatalf("mapped end = %d, want %d", end, want)
	}
}

func TestResolveRejectsRemovedNode(t *testing.T) {
	fx := testkit.Parse(t, "class A {\n    void f() {\n        int x;\n        int y;\n    }\n}\n")
	decls := fx.Tree.Collect(fx.Tree.Root, func(_ ast.NodeID, n *ast.Node) bool { return n.Kind == ast.KindLocalVarDecl })
	b := rewrite.NewBuilder(fx.Tree, format.Options{})
	b.Remove(decls[0])
	s, err := b.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	m := linked.New()
	m.Group("x").AddPosition(decls[0], true)
	if _, _, err := m.Resolve(s); err == nil {
		t.Fatalf("removed node must not resolve")
	}
}

func TestFillRejectsBadGroup(t *testing.T) {
	if _, _, _, err := linked.Fill("abc", nil, 0, "x", 0); err == nil {
		t.Fatalf("missing group must fail")
	}
}
