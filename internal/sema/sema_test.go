package sema_test

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"

	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/parser"
	"mend/internal/sema"
	"mend/internal/source"
	"mend/internal/symbols"
)

func checkFiles(t *testing.T, opts sema.Options, files ...string) []*sema.Unit {
	t.Helper()
	_, units := checkSet(t, opts, files...)
	return units
}

func checkSet(t *testing.T, opts sema.Options, files ...string) (*source.FileSet, []*sema.Unit) {
	t.Helper()
	fs := source.NewFileSet()
	prog := sema.NewProgram(symbols.NewUniverse(), opts)
	for i, src := range files {
		id := fs.AddVirtual(fmt.Sprintf("F%d.java", i), []byte(src))
		bag := diag.NewBag(100)
		tree := parser.ParseSource(fs, id, bag)
		if bag.HasErrors() {
			t.Fatalf("syntax errors in file %d: %+v", i, bag.Items())
		}
		prog.AddUnit(tree)
	}
	if err := prog.Check(context.Background()); err != nil {
		t.Fatalf("Check: %v", err)
	}
	return fs, prog.Units()
}

func render(u *sema.Unit) []string {
	var out []string
	for _, d := range u.Diagnostics() {
		out = append(out, d.Code.ID()+"["+strings.Join(d.Args, ",")+"]")
	}
	return out
}

func TestProblems(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"undefined name", "class T { void m() { int a = b; } }", "SEM3001[b]"},
		{"undefined method", "class T { void m() { foo(); } }", "SEM3003[foo,T]"},
		{"undefined field", "class T { void m() { T t = new T(); int a = t.nope; } }", "SEM3002[nope,T]"},
		{"undefined constructor", "class A { A(int x) {} }\nclass T { void m() { new A(); } }", "SEM3004[A]"},
		{"undefined type", "class T { void m() { Missing x = null; } }", "SEM3005[Missing]"},
		{"parameter mismatch", "class T { void f(int a) {} void m() { f(\"s\"); } }", "SEM3006[f,T]"},
		{"type mismatch", "class T { void m() { int x = \"s\"; } }", "SEM3007[String,int]"},
		{"unhandled throw", "class T { void m() { throw new Exception(); } }", "SEM3008[Exception]"},
		{"unhandled call", "class T { void f() throws InterruptedException {} void m() { f(); } }", "SEM3008[InterruptedException]"},
		{"unreachable catch", "class T { void m() { try { int a = 1; } catch (IOException e) { } } }", "SEM3009[IOException]"},
		{"void returns value", "class T { void m() { return 1; } }", "SEM3010[int]"},
		{"should return value", "class T { int m() { return; } }", "SEM3011[int]"},
		{"missing return type", "class T { foo() { } }", "SEM3012[foo]"},
		{"non-static field", "class T { int f; static void m() { f = 1; } }", "SEM3016[f]"},
		{"non-static method", "class T { void g() {} static void m() { g(); } }", "SEM3017[g]"},
		{"final assignment", "class T { void m() { final int x = 1; x = 2; } }", "SEM3018[x]"},
		{"illegal modifier", "class T { abstract int f; }", "SEM3019[abstract]"},
		{"two visibilities", "class T { public private void m() { } }", "SEM3019[private]"},
		{"uninitialized", "class T { void m() { int x; int y = x; } }", "SEM3020[x]"},
		{"duplicate local", "class T { void m() { int x = 1; int x = 2; } }", "SEM3021[x]"},
		{"static via instance", "class T { static int s; void m() { T t = new T(); int a = t.s; } }", "SEM3022[s,T]"},
		{"unreachable code", "class T { void m() { return; int a = 1; } }", "SEM3023[]"},
		{"missing return", "class T { int m() { } }", "SEM3024[int]"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			units := checkFiles(t, sema.Options{}, c.src)
			got := render(units[0])
			if !slices.Contains(got, c.want) {
				t.Fatalf("want %s among %v", c.want, got)
			}
		})
	}
}

func TestLints(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"unused local", "class T { void m() { int a = 1; } }", "LNT4001[a]"},
		{"unused private field", "class T { private int f; }", "LNT4002[f]"},
		{"unused private method", "class T { private void g() { } }", "LNT4003[g]"},
		{"superfluous semicolon", "class T { void m() { ; } }", "LNT4004[]"},
		{"unnecessary else", "class T { int m(boolean b) { if (b) { return 1; } else { return 2; } } }", "LNT4005[]"},
		{"self assignment", "class T { int x; T(int x) { x = x; } }", "LNT4006[x]"},
		{"fallthrough", "class T { void f() {} void m(int x) { switch (x) { case 1: f(); case 2: break; } } }", "LNT4007[]"},
		{"unused throws", "class T { void m() throws IOException { } }", "LNT4008[IOException]"},
		{"local hides field", "class T { int n; void m() { int n = 1; System.out.println(n); } }", "LNT4009[n]"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			units := checkFiles(t, sema.Options{Lints: true}, c.src)
			got := render(units[0])
			if !slices.Contains(got, c.want) {
				t.Fatalf("want %s among %v", c.want, got)
			}
		})
	}
}

func TestCleanProgram(t *testing.T) {
	src := `class Clean {
  private int count;
  Clean(int start) { count = start; }
  int next(int step) {
    count += step;
    return count;
  }
  boolean positive() { return count > 0 ? true : false; }
  void print() {
    for (int i = 0; i < 3; i++) {
      System.out.println(next(i));
    }
    String s = "n=" + count;
    System.out.println(s.length());
  }
}
`
	units := checkFiles(t, sema.Options{Lints: true}, src)
	if got := render(units[0]); len(got) != 0 {
		t.Fatalf("unexpected diagnostics: %v", got)
	}
}

func TestDiagnosticLines(t *testing.T) {
	src := "class T {\n    void m() {\n        int a = b;\n        foo();\n    }\n}\n"
	fs, units := checkSet(t, sema.Options{}, src)
	want := []string{
		"error SEM3001 F0.java:3:17 [b] b cannot be resolved",
		"error SEM3003 F0.java:4:9 [foo,T] the method foo is undefined for the type T",
	}
	got := diag.Lines(units[0].Diagnostics(), fs, diag.LineOpts{PathMode: "basename"})
	if !slices.Equal(got, want) {
		t.Fatalf("got:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestDefiniteAssignmentThroughBranches(t *testing.T) {
	src := `class T {
  int m(boolean b) {
    int x;
    if (b) { x = 1; } else { x = 2; }
    int y;
    if (b) { y = 1; }
    return x + y;
  }
}
`
	got := render(checkFiles(t, sema.Options{}, src)[0])
	if !slices.Equal(got, []string{"SEM3020[y]"}) {
		t.Fatalf("got %v, want only y uninitialized", got)
	}
}

func TestDefiniteAssignmentThroughSwitch(t *testing.T) {
	cases := []struct {
		name string
		body string
		want []string
	}{
		{"every group assigns", "int y; switch (k) { case 1: y = 2; break; default: y = 4; } return y;", nil},
		{"shared group", "int y; switch (k) { case 1: case 2: y = 1; break; default: return 0; } return y;", nil},
		{"later group reads", "int y; switch (k) { case 1: y = 2; break; case 2: return y; } return 0;", []string{"SEM3020[y]"}},
		{"no default", "int y; switch (k) { case 1: y = 2; break; case 2: y = 3; break; } return y;", []string{"SEM3020[y]"}},
		{"early break", "int y; switch (k) { case 1: if (b) break; y = 1; break; default: y = 2; } return y;", []string{"SEM3020[y]"}},
		{"break in loop", "int y; switch (k) { default: while (b) { break; } y = 1; } return y;", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			src := "class T { int m(int k, boolean b) { " + c.body + " } }"
			got := render(checkFiles(t, sema.Options{}, src)[0])
			if !slices.Equal(got, c.want) {
				t.Fatalf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestCrossUnitVisibility(t *testing.T) {
	lib := "package a;\npublic class Lib { int hidden; public static int shown; }\n"
	use := "package b;\nclass Use { void m() { int y = Lib.shown; int x = Lib.hidden; } }\n"
	units := checkFiles(t, sema.Options{}, lib, use)
	got := render(units[1])
	if !slices.Contains(got, "SEM3013[hidden,Lib]") {
		t.Fatalf("want package-private field reported, got %v", got)
	}
	if len(render(units[0])) != 0 {
		t.Fatalf("library unit should be clean: %v", render(units[0]))
	}
}

func findNode(t *testing.T, tree *ast.Tree, kind ast.Kind, text string) ast.NodeID {
	t.Helper()
	for _, id := range tree.Collect(tree.Root, func(_ ast.NodeID, n *ast.Node) bool {
		return n.Kind == kind && (text == "" || n.Text == text)
	}) {
		return id
	}
	t.Fatalf("no %v %q", kind, text)
	return ast.NoNodeID
}

func TestVisibleVariables(t *testing.T) {
	src := `class V {
  int field;
  void m(int p) {
    int a = 1;
    if (p > 0) {
      int b = 2;
      foo(a, b);
    }
    int c = 3;
  }
  void foo(int x, int y) {}
}
`
	u := checkFiles(t, sema.Options{}, src)[0]
	call := findNode(t, u.Tree, ast.KindCall, "")
	var names []string
	for _, v := range u.VisibleVariables(call) {
		names = append(names, v.Name)
	}
	want := []string{"b", "a", "p", "field"}
	if !slices.Equal(names, want) {
		t.Fatalf("visible = %v, want %v", names, want)
	}
}

func TestBindingsAndReferences(t *testing.T) {
	src := `class R {
  void m() {
    int total = 0;
    total = total + 1;
    System.out.println(total);
  }
}
`
	u := checkFiles(t, sema.Options{}, src)[0]
	frag := findNode(t, u.Tree, ast.KindVarFragment, "")
	sym := u.DeclaredBy(frag)
	if sym == nil || sym.Kind != symbols.SymbolLocal || sym.Type != u.Universe().Int {
		t.Fatalf("declared symbol = %v", sym)
	}
	if refs := u.References(sym); len(refs) != 3 {
		t.Fatalf("references = %d, want 3", len(refs))
	}
	call := findNode(t, u.Tree, ast.KindCall, "")
	m := u.Binding(call)
	if m == nil || m.Signature() != "println(int)" {
		t.Fatalf("println resolved to %v", m)
	}
	if !u.IsTypeReference(findNode(t, u.Tree, ast.KindName, "System")) {
		t.Fatalf("System should be a type reference")
	}
}
