package parser_test

import (
	"strings"
	"testing"

	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/parser"
	"mend/internal/source"
)

func parse(t *testing.T, src string) (*ast.Tree, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("T.java", []byte(src))
	bag := diag.NewBag(100)
	tree := parser.ParseSource(fs, id, bag)
	return tree, bag
}

// parseBody оборачивает операторы в метод и возвращает его тело.
func parseBody(t *testing.T, stmts string) (*ast.Tree, ast.NodeID, *diag.Bag) {
	t.Helper()
	tree, bag := parse(t, "class T {\n  void m() {\n    "+stmts+"\n  }\n}\n")
	blocks := tree.Collect(tree.Root, func(_ ast.NodeID, n *ast.Node) bool {
		return n.Kind == ast.KindMethodDecl
	})
	if len(blocks) != 1 {
		t.Fatalf("expected one method, got %d", len(blocks))
	}
	return tree, tree.Child(blocks[0], ast.MethodBody), bag
}

func firstExpr(t *testing.T, src string) string {
	t.Helper()
	tree, body, bag := parseBody(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics for %q: %+v", src, bag.Items())
	}
	stmts := tree.List(body, ast.BlockStatements)
	if len(stmts) == 0 || tree.Kind(stmts[0]) != ast.KindExprStmt {
		t.Fatalf("no expression statement in %q", src)
	}
	return tree.Dump(tree.Child(stmts[0], ast.ExprStmtExpr))
}

func TestExpressions(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"x = a + b * c;", "(Assign = (Name x) (Infix + (Name a) (Infix * (Name b) (Name c))))"},
		{"a - b - c;", "(Infix - (Infix - (Name a) (Name b)) (Name c))"},
		{"x = y = 1;", "(Assign = (Name x) (Assign = (Name y) (Literal 1)))"},
		{"(int) x + 1;", "(Infix + (Cast (PrimitiveType int) (Name x)) (Literal 1))"},
		{"(a) + b;", "(Infix + (Paren (Name a)) (Name b))"},
		{"(String) o;", "(Cast (SimpleType String (Name String)) (Name o))"},
		{"s.length();", "(Call (Name s) (Name length))"},
		{"a.b.c;", "(QualifiedName a.b.c (QualifiedName a.b (Name a) (Name b)) (Name c))"},
		{"a.b.f(1, x);", "(Call (QualifiedName a.b (Name a) (Name b)) (Name f) (Literal 1) (Name x))"},
		{"f().g;", "(FieldAccess (Call (Name f)) (Name g))"},
		{"!(x instanceof Foo);", "(Prefix ! (Paren (InstanceOf (Name x) (SimpleType Foo (Name Foo)))))"},
		{"c = a ? b : d;", "(Assign = (Name c) (Conditional (Name a) (Name b) (Name d)))"},
		{"a[i]++;", "(Postfix ++ (ArrayAccess (Name a) (Name i)))"},
		{"x = new Foo(1);", "(Assign = (Name x) (New (SimpleType Foo (Name Foo)) (Literal 1)))"},
		{"x = new int[n];", "(Assign = (Name x) (NewArray (ArrayType (PrimitiveType int)) (Name n)))"},
		{"this.x = 1;", "(Assign = (FieldAccess (This this) (Name x)) (Literal 1))"},
		{"a && b || c;", "(Infix || (Infix && (Name a) (Name b)) (Name c))"},
	}
	for _, c := range cases {
		if got := firstExpr(t, c.src); got != c.want {
			t.Errorf("%q\n got  %s\n want %s", c.src, got, c.want)
		}
	}
}

func TestStatements(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"if (a) b(); else { }", "(If (Name a) (ExprStmt (Call (Name b))) (Block))"},
		{"for (int i = 0; i < n; i++) {}",
			"(For (LocalVarDecl (PrimitiveType int) (VarFragment (Name i) (Literal 0))) (Infix < (Name i) (Name n)) (Postfix ++ (Name i)) (Block))"},
		{"switch (k) { case 1: f(); break; default: }",
			"(Switch (Name k) (SwitchCase (Literal 1)) (ExprStmt (Call (Name f))) (Break) (SwitchCase))"},
		{"try { } catch (Exception e) { }",
			"(Try (Block) (Catch (Param (SimpleType Exception (Name Exception)) (Name e)) (Block)))"},
		{"final int[] a = {1, 2};",
			"(LocalVarDecl [final] (ArrayType (PrimitiveType int)) (VarFragment (Name a) (ArrayInit (Literal 1) (Literal 2))))"},
		{"do x++; while (x < 3);", "(Do (ExprStmt (Postfix ++ (Name x))) (Infix < (Name x) (Literal 3)))"},
		{"return;", "(Return)"},
	}
	for _, c := range cases {
		tree, body, bag := parseBody(t, c.src)
		if bag.HasErrors() {
			t.Errorf("%q: unexpected diagnostics %+v", c.src, bag.Items())
			continue
		}
		stmts := tree.List(body, ast.BlockStatements)
		if len(stmts) != 1 {
			t.Errorf("%q: got %d statements", c.src, len(stmts))
			continue
		}
		if got := tree.Dump(stmts[0]); got != c.want {
			t.Errorf("%q\n got  %s\n want %s", c.src, got, c.want)
		}
	}
}

func TestForEachIsOpaque(t *testing.T) {
	tree, body, bag := parseBody(t, "for (String s : list) { use(s); }")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics %+v", bag.Items())
	}
	stmts := tree.List(body, ast.BlockStatements)
	if len(stmts) != 1 || tree.Kind(stmts[0]) != ast.KindOpaqueStmt {
		t.Fatalf("for-each should be kept as one opaque statement, got %s", tree.Dump(body))
	}
	if got := tree.Node(stmts[0]).Text; got != "for (String s : list) { use(s); }" {
		t.Fatalf("opaque text = %q", got)
	}
}

func TestClassMembers(t *testing.T) {
	src := "package p;\nimport java.util.*;\npublic class A extends B {\n  private static int x, y = 2;\n  A() {}\n  abstract void f(int... xs);\n}\n"
	tree, bag := parse(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics %+v", bag.Items())
	}
	unit := tree.Root
	if sp := tree.Span(unit); sp.Start != 0 || int(sp.End) != len(src) {
		t.Fatalf("unit span = %v", sp)
	}
	imports := tree.List(unit, ast.UnitImports)
	if len(imports) != 1 || tree.Node(tree.Child(imports[0], ast.ImportName)).Text != "java.util.*" {
		t.Fatalf("import not parsed: %s", tree.Dump(unit))
	}
	types := tree.List(unit, ast.UnitTypes)
	if len(types) != 1 {
		t.Fatalf("expected one type, got %d", len(types))
	}
	cls := types[0]
	if !tree.Node(cls).Mods.Has(ast.ModPublic) {
		t.Errorf("class should be public")
	}
	if got := tree.Text(tree.Child(cls, ast.TypeSuperclass)); got != "B" {
		t.Errorf("superclass = %q", got)
	}
	members := tree.List(cls, ast.TypeBody)
	if len(members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(members))
	}
	field := tree.Node(members[0])
	if field.Mods != ast.ModPrivate|ast.ModStatic {
		t.Errorf("field mods = %v", field.Mods)
	}
	if got := tree.File.Text(field.ModsSpan); got != "private static" {
		t.Errorf("field ModsSpan text = %q", got)
	}
	if n := len(tree.List(members[0], ast.FieldFragments)); n != 2 {
		t.Errorf("expected 2 fragments, got %d", n)
	}
	if !tree.Node(members[1]).Flags.Has(ast.FlagConstructor) {
		t.Errorf("A() should be a constructor")
	}
	m := members[2]
	if tree.Child(m, ast.MethodBody) != ast.NoNodeID {
		t.Errorf("abstract method must not have a body")
	}
	params := tree.List(m, ast.MethodParams)
	if len(params) != 1 || !tree.Node(params[0]).Flags.Has(ast.FlagVarargs) {
		t.Errorf("varargs parameter not recognized")
	}
}

func TestMissingSemicolonSpan(t *testing.T) {
	src := "class T { void m() { int x = 1\n int y; } }"
	tree, bag := parse(t, src)
	ds := bag.ByCode(diag.SynExpectSemicolon)
	if len(ds) != 1 {
		t.Fatalf("expected one missing-semicolon diagnostic, got %+v", bag.Items())
	}
	want := uint32(strings.Index(src, "1\n") + 1)
	if sp := ds[0].Primary; sp.Start != want || sp.End != want {
		t.Fatalf("diagnostic span = %v, want empty span at %d", sp, want)
	}
	// оба объявления должны сохраниться
	decls := tree.Collect(tree.Root, func(_ ast.NodeID, n *ast.Node) bool {
		return n.Kind == ast.KindLocalVarDecl
	})
	if len(decls) != 2 {
		t.Fatalf("expected 2 local declarations after recovery, got %d", len(decls))
	}
}

func TestRecoveryKeepsParsing(t *testing.T) {
	src := "class T { void m() { x = ; y(); } void n() {} }"
	tree, bag := parse(t, src)
	if len(bag.ByCode(diag.SynExpectExpression)) != 1 {
		t.Fatalf("expected SYN2004, got %+v", bag.Items())
	}
	methods := tree.Collect(tree.Root, func(_ ast.NodeID, n *ast.Node) bool {
		return n.Kind == ast.KindMethodDecl
	})
	if len(methods) != 2 {
		t.Fatalf("second method lost during recovery: %s", tree.Dump(tree.Root))
	}
}

func TestElseWithoutIf(t *testing.T) {
	_, _, bag := parseBody(t, "x(); else y();")
	if len(bag.ByCode(diag.SynElseWithoutIf)) != 1 {
		t.Fatalf("expected SYN2015, got %+v", bag.Items())
	}
}
