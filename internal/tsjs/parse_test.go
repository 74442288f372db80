package tsjs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"mend/internal/ast"
	"mend/internal/correction"
	"mend/internal/diag"
	"mend/internal/rules"
	"mend/internal/source"
	"mend/internal/symbols"
	"mend/internal/testkit"
	"mend/internal/token"
	"mend/internal/tsjs"
)

func parse(t *testing.T, src string) (*ast.Tree, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.js", []byte(src))
	bag := diag.NewBag(50)
	tree, err := tsjs.ParseSource(context.Background(), fs, id, bag)
	require.NoError(t, err)
	require.NoError(t, testkit.CheckSpanInvariants(tree, fs.Get(id)))
	return tree, bag
}

func kinds(t *ast.Tree, ids []ast.NodeID) []ast.Kind {
	out := make([]ast.Kind, len(ids))
	for i, id := range ids {
		out[i] = t.Kind(id)
	}
	return out
}

func TestTopLevelStatements(t *testing.T) {
	src := "const a = 1;\nlet b = a === 2 ? 3 : 4;\nif (b !== 3) { b++; } else f(b);\nfunction f(x) { return x * 2; }\n"
	tree, bag := parse(t, src)
	require.Zero(t, bag.Len())
	require.Equal(t, ast.KindBlock, tree.Kind(tree.Root))

	stmts := tree.List(tree.Root, ast.BlockStatements)
	require.Equal(t, []ast.Kind{ast.KindLocalVarDecl, ast.KindLocalVarDecl, ast.KindIf, ast.KindMethodDecl}, kinds(tree, stmts))

	konst := tree.Node(stmts[0])
	require.Equal(t, "const", konst.Text)
	require.True(t, konst.Mods.Has(ast.ModFinal))
	require.Equal(t, "let", tree.Node(stmts[1]).Text)
	require.False(t, tree.Node(stmts[1]).Mods.Has(ast.ModFinal))

	frag := tree.List(stmts[1], ast.LocalFragments)[0]
	cond := tree.Child(frag, ast.FragmentInit)
	require.Equal(t, ast.KindConditional, tree.Kind(cond))
	eq := tree.Node(tree.Child(cond, ast.CondCondition))
	require.Equal(t, token.EqEq, eq.Op)
	require.Equal(t, "===", eq.Text)

	ifStmt := stmts[2]
	require.Equal(t, ast.KindInfix, tree.Kind(tree.Child(ifStmt, ast.IfCondition)))
	require.Equal(t, "b !== 3", tree.Text(tree.Child(ifStmt, ast.IfCondition)))
	require.Equal(t, ast.KindExprStmt, tree.Kind(tree.Child(ifStmt, ast.IfElse)))

	fn := stmts[3]
	require.Equal(t, "f", tree.Text(tree.Child(fn, ast.MethodName)))
	require.Len(t, tree.List(fn, ast.MethodParams), 1)
	require.Nil(t, tree.Node(tree.Child(fn, ast.MethodReturnType)))
}

func TestSwitchCasesAreFlattened(t *testing.T) {
	src := "switch (k) {\ncase 1:\n  f();\n  break;\ndefault:\n  g();\n}\n"
	tree, _ := parse(t, src)
	sw := tree.List(tree.Root, ast.BlockStatements)[0]
	require.Equal(t, ast.KindSwitch, tree.Kind(sw))
	require.Equal(t, []ast.Kind{
		ast.KindSwitchCase, ast.KindExprStmt, ast.KindBreak,
		ast.KindSwitchCase, ast.KindExprStmt,
	}, kinds(tree, tree.List(sw, ast.SwitchStatements)))
	first := tree.List(sw, ast.SwitchStatements)[0]
	require.Equal(t, "case 1:", tree.File.Text(tree.Span(first)))
}

func TestUnmodelledConstructsAreOpaque(t *testing.T) {
	tree, _ := parse(t, "const h = (x) => x + 1;\nfor (const k in o) {}\n")
	stmts := tree.List(tree.Root, ast.BlockStatements)
	init := tree.Child(tree.List(stmts[0], ast.LocalFragments)[0], ast.FragmentInit)
	require.Equal(t, ast.KindOpaqueExpr, tree.Kind(init))
	require.Equal(t, "(x) => x + 1", tree.Node(init).Text)
	require.Equal(t, ast.KindOpaqueStmt, tree.Kind(stmts[1]))
}

func TestSyntaxErrorsAreReported(t *testing.T) {
	_, bag := parse(t, "let x = (1 + ;\n")
	require.True(t, bag.HasErrors())

	line, found, err := tsjs.FirstError(context.Background(), []byte("let a = 1;\nlet b = (;\n"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint32(2), line)

	_, found, err = tsjs.FirstError(context.Background(), []byte("let a = 1;\n"))
	require.NoError(t, err)
	require.False(t, found)
}

func TestIsSource(t *testing.T) {
	require.True(t, tsjs.IsSource("a/b.js"))
	require.True(t, tsjs.IsSource("B.MJS"))
	require.False(t, tsjs.IsSource("A.java"))
}

func assists(t *testing.T, src string) (string, []correction.Proposal) {
	t.Helper()
	clean, off, n := testkit.StripMarkers(src)
	tree, _ := parse(t, clean)
	req := correction.Request{
		Tree:     tree,
		Resolver: symbols.NopResolver(symbols.NewUniverse()),
		Offset:   uint32(off),
		Length:   uint32(n),
		Assists:  true,
	}
	res := rules.Default().Proposals(context.Background(), req, correction.Settings{})
	require.Empty(t, res.Failures)
	return clean, res.Proposals
}

func apply(t *testing.T, src string, ps []correction.Proposal, id string) string {
	t.Helper()
	for i := range ps {
		if ps[i].RuleID == id {
			out, err := correction.ApplyEdit([]byte(src), &ps[i])
			require.NoError(t, err)
			return string(out)
		}
	}
	t.Fatalf("no %s proposal", id)
	return ""
}

func TestInverseConditionKeepsStrictEquality(t *testing.T) {
	src, ps := assists(t, "if (/*[*/a === b/*]*/) {\n  f();\n}\n")
	require.Contains(t, apply(t, src, ps, "inverse-condition"), "if (a !== b)")
}

func TestAddBlockOnJavaScript(t *testing.T) {
	src, ps := assists(t, "function f(c) {\n  wh/*|*/ile (c) g();\n}\n")
	require.Contains(t, testkit.Squash(apply(t, src, ps, "add-block")), "while (c) { g(); }")
}

func TestBindingRulesAreInapplicable(t *testing.T) {
	_, ps := assists(t, "function f() {\n  /*|*/g();\n}\n")
	for _, p := range ps {
		require.NotEqual(t, "assign-to-local", p.RuleID)
	}
}
