package query_test

import (
	"slices"
	"testing"

	"mend/internal/ast"
	"mend/internal/query"
	"mend/internal/symbols"
	"mend/internal/testkit"
)

func find(t *testing.T, tree *ast.Tree, kind ast.Kind, text string) ast.NodeID {
	t.Helper()
	ids := tree.Collect(tree.Root, func(_ ast.NodeID, n *ast.Node) bool {
		return n.Kind == kind && (text == "" || n.Text == text)
	})
	if len(ids) == 0 {
		t.Fatalf("no %v %q", kind, text)
	}
	return ids[0]
}

func TestFindEnclosingStatementStopsAtDeclarations(t *testing.T) {
	f := testkit.Parse(t, `class A {
  int f = 1 + 2;
  void m() { int x = f; }
}`)
	lit := find(t, f.Tree, ast.KindLiteral, "1")
	if got := query.FindEnclosingStatement(f.Tree, lit); got != ast.NoNodeID {
		t.Fatalf("field initializer has no statement, got %v", f.Tree.Kind(got))
	}
	refs := f.Tree.Collect(f.Tree.Root, func(_ ast.NodeID, n *ast.Node) bool {
		return n.Kind == ast.KindName && n.Text == "f" && n.Loc == ast.FragmentInit
	})
	stmt := query.FindEnclosingStatement(f.Tree, refs[0])
	if f.Tree.Kind(stmt) != ast.KindLocalVarDecl {
		t.Fatalf("enclosing statement = %v, want LocalVarDecl", f.Tree.Kind(stmt))
	}
	if got := query.FindEnclosingMethod(f.Tree, lit); got != ast.NoNodeID {
		t.Fatalf("field initializer is not inside a method")
	}
	if got := f.Tree.Kind(query.FindEnclosingBodyDeclaration(f.Tree, lit)); got != ast.KindFieldDecl {
		t.Fatalf("body declaration = %v", got)
	}
}

func TestClassifyAccess(t *testing.T) {
	f := testkit.Parse(t, `class A {
  int v;
  void m(A o) {
    int x = 0;
    x = 1;
    x++;
    --x;
    x += 2;
    int y = -x;
    o.v = 3;
  }
}`)
	var got []string
	for _, id := range f.Tree.Collect(f.Tree.Root, func(_ ast.NodeID, n *ast.Node) bool {
		return n.Kind == ast.KindName && (n.Text == "x" || n.Text == "o" || n.Text == "v")
	}) {
		if f.Tree.Kind(f.Tree.Parent(id)) == ast.KindVarFragment || f.Tree.Kind(f.Tree.Parent(id)) == ast.KindParam {
			continue
		}
		got = append(got, f.Tree.Node(id).Text+":"+query.ClassifyAccess(f.Tree, id).String())
	}
	want := []string{"x:write", "x:write", "x:write", "x:write", "x:read", "o:none", "v:write"}
	if !slices.Equal(got, want) {
		t.Fatalf("access = %v, want %v", got, want)
	}
	compound := f.Tree.Collect(f.Tree.Root, func(id ast.NodeID, n *ast.Node) bool {
		return n.Kind == ast.KindName && n.Text == "x" && query.IsCompoundWrite(f.Tree, id)
	})
	if len(compound) != 3 {
		t.Fatalf("compound writes = %d, want 3 (x++, --x, x += 2)", len(compound))
	}
}

func TestInferExpectedType(t *testing.T) {
	f := testkit.Parse(t, `class A {
  void take(String s, int... rest) {}
  int m(boolean c, long l) {
    take("a", 1, 2, 3);
    int[][] grid = { { 1 }, { 2 } };
    int k = 1 << 2;
    if (c && l > 2) { return 0; }
    int[] arr = new int[4];
    return arr[1];
  }
}`)
	u := f.Unit.Universe()
	tr := f.Tree
	lit := func(text string) ast.NodeID { return find(t, tr, ast.KindLiteral, text) }

	if got := query.InferExpectedType(tr, f.Unit, lit(`"a"`)); got != u.String {
		t.Errorf("first argument: got %v, want String", got)
	}
	if got := query.InferExpectedType(tr, f.Unit, lit("3")); got != u.Int {
		t.Errorf("varargs element: got %v, want int", got)
	}

	ret := tr.Collect(tr.Root, func(_ ast.NodeID, n *ast.Node) bool { return n.Kind == ast.KindReturn })
	if got := query.InferExpectedType(tr, f.Unit, tr.Child(ret[0], ast.ReturnExpr)); got != u.Int {
		t.Errorf("return expression: got %v, want int", got)
	}

	cond := tr.Collect(tr.Root, func(_ ast.NodeID, n *ast.Node) bool { return n.Kind == ast.KindIf })[0]
	and := tr.Child(cond, ast.IfCondition)
	if got := query.InferExpectedType(tr, f.Unit, and); got != u.Boolean {
		t.Errorf("if condition: got %v, want boolean", got)
	}
	if got := query.InferExpectedType(tr, f.Unit, tr.Child(and, ast.InfixLeft)); got != u.Boolean {
		t.Errorf("&& operand: got %v, want boolean", got)
	}
	gt := tr.Child(and, ast.InfixRight)
	if got := query.InferExpectedType(tr, f.Unit, tr.Child(gt, ast.InfixRight)); got != u.Long {
		t.Errorf("relational operand: got %v, want long (other operand)", got)
	}

	inner := tr.Collect(tr.Root, func(_ ast.NodeID, n *ast.Node) bool { return n.Kind == ast.KindArrayInit })
	// inner[0] is the outer initializer, inner[1] the first nested one.
	if got := query.InferExpectedType(tr, f.Unit, inner[1]); !symbols.Identical(got, u.ArrayOf(u.Int)) {
		t.Errorf("nested initializer: got %v, want int[]", got)
	}
	one := tr.List(inner[1], ast.ArrayInitElements)[0]
	if got := query.InferExpectedType(tr, f.Unit, one); got != u.Int {
		t.Errorf("nested element: got %v, want int", got)
	}

	access := find(t, tr, ast.KindArrayAccess, "")
	if got := query.InferExpectedType(tr, f.Unit, tr.Child(access, ast.ArrayAccessIndex)); got != u.Int {
		t.Errorf("array index: got %v, want int", got)
	}

	stmt := tr.Parent(find(t, tr, ast.KindCall, ""))
	if got := query.InferExpectedType(tr, f.Unit, tr.Child(stmt, ast.ExprStmtExpr)); got != nil {
		t.Errorf("expression statement: got %v, want no expectation", got)
	}

	shift := tr.Collect(tr.Root, func(_ ast.NodeID, n *ast.Node) bool { return n.Kind == ast.KindInfix })[0]
	if got := query.InferExpectedType(tr, f.Unit, tr.Child(shift, ast.InfixRight)); got != u.Int {
		t.Errorf("shift operand: got %v, want int", got)
	}
}

func TestInferExpectedTypeIsDeterministic(t *testing.T) {
	f := testkit.Parse(t, `class A { void m(double d) { double e = (d + 1) * 2; } }`)
	lit := find(t, f.Tree, ast.KindLiteral, "1")
	first := query.InferExpectedType(f.Tree, f.Unit, lit)
	for range 5 {
		if got := query.InferExpectedType(f.Tree, f.Unit, lit); got != first {
			t.Fatalf("result changed between calls: %v vs %v", first, got)
		}
	}
	if first != f.Unit.Universe().Double {
		t.Fatalf("got %v, want double", first)
	}
}

func TestTypeChains(t *testing.T) {
	u := symbols.NewUniverse()
	names := func(ts []*symbols.Type) []string {
		var out []string
		for _, x := range ts {
			out = append(out, x.String())
		}
		return out
	}
	if got, want := names(query.TypeWideningChain(u, u.Char)), []string{"char", "int", "long", "float", "double"}; !slices.Equal(got, want) {
		t.Errorf("char widening = %v, want %v", got, want)
	}
	if got, want := names(query.TypeNarrowingChain(u, u.Long)), []string{"long", "char", "short", "int"}; !slices.Equal(got, want) {
		t.Errorf("long narrowing = %v, want %v", got, want)
	}
	rte := u.Class("IllegalStateException").Type
	if got, want := names(query.TypeWideningChain(u, rte)), []string{"IllegalStateException", "RuntimeException", "Exception", "Throwable"}; !slices.Equal(got, want) {
		t.Errorf("class widening = %v, want %v", got, want)
	}
	if got := names(query.SupertypeAlternatives(u, u.String)); !slices.Equal(got, []string{"String", "Object"}) {
		t.Errorf("String alternatives = %v", got)
	}
}

func TestCanCompleteNormally(t *testing.T) {
	f := testkit.Parse(t, `class A {
  int m(int x) {
    while (true) { if (x > 0) break; }
    for (;;) { x++; }
  }
}`)
	loops := f.Tree.Collect(f.Tree.Root, func(_ ast.NodeID, n *ast.Node) bool {
		return n.Kind == ast.KindWhile || n.Kind == ast.KindFor
	})
	if !query.CanCompleteNormally(f.Tree, loops[0]) {
		t.Errorf("while(true) with break completes normally")
	}
	if query.CanCompleteNormally(f.Tree, loops[1]) {
		t.Errorf("for(;;) without break never completes")
	}
}

func TestSuggestVariableNames(t *testing.T) {
	f := testkit.Parse(t, `class A {
  String getFullName() { return ""; }
  void m() { int name = 1; getFullName(); }
}`)
	call := find(t, f.Tree, ast.KindCall, "")
	used := query.UsedVariableNames(f.Tree, f.Unit, call)
	got := query.SuggestVariableNames(f.Tree, call, f.Unit.Universe().String, query.VarLocal, query.NamingConventions{}, used)
	want := []string{"fullName", "string"}
	if !slices.Equal(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	got = query.SuggestVariableNames(f.Tree, ast.NoNodeID, f.Unit.Universe().Int, query.VarConstant, query.NamingConventions{}, nil)
	if !slices.Equal(got, []string{"I"}) {
		t.Fatalf("constant names = %v", got)
	}
	if got := query.ConstantName("maxRetryCount"); got != "MAX_RETRY_COUNT" {
		t.Fatalf("ConstantName = %q", got)
	}
	prefixed := query.SuggestVariableNames(f.Tree, call, nil, query.VarField, query.NamingConventions{FieldPrefix: "f"}, nil)
	if !slices.Equal(prefixed, []string{"fFullName"}) {
		t.Fatalf("prefixed = %v", prefixed)
	}
}

func TestSameTextIgnoresLayout(t *testing.T) {
	f := testkit.Parse(t, `class A { int m(int a, int b) { int x = a+b; int y = a +  /* c */ b; return x + y; } }`)
	frags := f.Tree.Collect(f.Tree.Root, func(_ ast.NodeID, n *ast.Node) bool { return n.Kind == ast.KindVarFragment })
	x := f.Tree.Child(frags[0], ast.FragmentInit)
	y := f.Tree.Child(frags[1], ast.FragmentInit)
	if !query.SameText(f.Tree, x, y) {
		t.Fatalf("%q and %q should compare equal", f.Tree.Text(x), f.Tree.Text(y))
	}
}
