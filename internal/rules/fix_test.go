package rules_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mend/internal/correction"
	"mend/internal/diag"
	"mend/internal/rules"
	"mend/internal/symbols"
)

func TestFixesFollowDispatchOrder(t *testing.T) {
	_, ps := fixesFor(t, "class A {\n    int f() {\n        return missing;\n    }\n}\n", diag.SemUndefinedName)
	for _, p := range ps {
		require.Equal(t, correction.KindFix, p.Kind)
		require.Equal(t, diag.SemUndefinedName, p.Code)
	}
	require.Equal(t, "create-local", ps[0].RuleID)
	require.True(t, offered(ps, "create-field"))
	require.True(t, offered(ps, "create-parameter"))
	require.False(t, offered(ps, "create-constant"))
}

func TestCreateLocal(t *testing.T) {
	fx, ps := fixesFor(t, "class A {\n    int f() {\n        return missing;\n    }\n}\n", diag.SemUndefinedName)
	out := applied(t, fx, pick(t, ps, "create-local"))
	require.Contains(t, out, "int missing = 0; return missing;")
}

func alternatives(t *testing.T, p *correction.Proposal, group string) []string {
	t.Helper()
	for _, g := range p.Groups {
		if g.Name == group {
			return g.Alternatives
		}
	}
	t.Fatalf("no linked group %s", group)
	return nil
}

func TestCreatedTypesOfferOnlyCompatibleAlternatives(t *testing.T) {
	src := "class A {\n    int f() {\n        int r = compute(1, \"s\", 2.0);\n        return r;\n    }\n}\n"
	fx, ps := fixesFor(t, src, diag.SemUndefinedMethod)
	p := pick(t, ps, "create-method")
	// результат читается как int: допустимы только более узкие типы
	require.Equal(t, []string{"int", "char", "short"}, alternatives(t, p, "return_type"))
	require.Contains(t, alternatives(t, p, "arg_type_0"), "long")
	require.Equal(t, []string{"String", "Object"}, alternatives(t, p, "arg_type_1"))
	require.Contains(t, applied(t, fx, p), "return 0;")

	_, ps = fixesFor(t, "class A {\n    void f() {\n        label = \"x\";\n    }\n}\n", diag.SemUndefinedName)
	require.Equal(t, []string{"String", "Object"}, alternatives(t, pick(t, ps, "create-local"), "type"))
}

func TestCreateConstantForUpperCaseNames(t *testing.T) {
	fx, ps := fixesFor(t, "class A {\n    int f() {\n        return LIMIT;\n    }\n}\n", diag.SemUndefinedName)
	out := applied(t, fx, pick(t, ps, "create-constant"))
	require.Contains(t, out, "private static final int LIMIT")
}

func TestAddThrows(t *testing.T) {
	fx, ps := fixesFor(t, "class A {\n    void f() {\n        throw new Exception();\n    }\n}\n", diag.SemUnhandledException)
	out := applied(t, fx, pick(t, ps, "add-throws"))
	require.Contains(t, out, "void f() throws Exception {")

	out = applied(t, fx, pick(t, ps, "surround-try-catch"))
	require.Contains(t, out, "try { throw new Exception(); } catch (Exception e) { throw new RuntimeException(e); }")
	require.False(t, offered(ps, "add-catch-clause"))
}

func TestAddCast(t *testing.T) {
	fx, ps := fixesFor(t, "class A {\n    int f(long v) {\n        int x = v;\n        return x;\n    }\n}\n", diag.SemTypeMismatch)
	out := applied(t, fx, pick(t, ps, "add-cast"))
	require.Contains(t, out, "int x = (int) v;")

	out = applied(t, fx, pick(t, ps, "change-variable-type"))
	require.Contains(t, out, "long x = v;")
}

func TestRemoveFinal(t *testing.T) {
	fx, ps := fixesFor(t, "class A {\n    void f() {\n        final int x = 1;\n        x = 2;\n        g(x);\n    }\n    void g(int v) {}\n}\n", diag.SemFinalAssignment)
	out := applied(t, fx, pick(t, ps, "remove-final"))
	require.Contains(t, out, "int x = 1;")
	require.NotContains(t, out, "final")
}

func TestInsertBreak(t *testing.T) {
	src := "class A {\n    void f(int k) {\n        switch (k) {\n        case 1:\n            g();\n        case 2:\n            g();\n            break;\n        }\n    }\n    void g() {}\n}\n"
	fx, ps := fixesFor(t, src, diag.LntFallthroughCase)
	out := applied(t, fx, pick(t, ps, "insert-break"))
	require.Contains(t, out, "g(); break; case 2:")
}

func TestRemoveSuperfluousSemicolon(t *testing.T) {
	fx, ps := fixesFor(t, "class A {\n    void f() {\n        g();;\n    }\n    void g() {}\n}\n", diag.LntSuperfluousSemicolon)
	out := applied(t, fx, pick(t, ps, "remove-semicolon"))
	require.NotContains(t, out, ";;")
	require.Contains(t, out, "g();")
}

func TestChangeToVoid(t *testing.T) {
	fx, ps := fixesFor(t, "class A {\n    int f() {\n    }\n}\n", diag.SemMissingReturn)
	out := applied(t, fx, pick(t, ps, "change-to-void"))
	require.Contains(t, out, "void f() {")

	out = applied(t, fx, pick(t, ps, "add-return-statement"))
	require.Contains(t, out, "return 0;")
}

func TestRemoveUnusedLocal(t *testing.T) {
	fx, ps := fixesFor(t, "class A {\n    void f() {\n        int x = 1;\n        x = 2;\n        g();\n    }\n    void g() {}\n}\n", diag.LntUnusedLocal)
	out := applied(t, fx, pick(t, ps, "remove-unused"))
	require.NotContains(t, out, "x")
	require.Contains(t, out, "g();")
}

func TestFixesNeedBindings(t *testing.T) {
	fx, _ := fixesFor(t, "class A {\n    int f() {\n        return missing;\n    }\n}\n", diag.SemUndefinedName)
	req := correction.Request{Problems: correction.ProblemLocations(fx.Tree, fx.Diagnostics())}
	req.Tree = fx.Tree
	req.Resolver = symbols.NopResolver(fx.Unit.Universe())
	res := rules.Default().Proposals(t.Context(), req, correction.Settings{})
	for _, p := range res.Proposals {
		require.NotEqual(t, "create-local", p.RuleID)
	}
}
