package rules_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mend/internal/testkit"
)

func TestIfReturnToIfElse(t *testing.T) {
	fx, ps := assistsAt(t, "class A {\n    int f(boolean x, int a, int b) {\n        i/*|*/f (x) { return a; } return b;\n    }\n}\n")
	out := applied(t, fx, pick(t, ps, "if-return-to-if-else"))
	require.Contains(t, out, "if (x) { return a; } else { return b; }")
}

func TestIfReturnToIfElseDropsTrailingVoidReturn(t *testing.T) {
	src := "class A {\n    void f(boolean x) {\n        i/*|*/f (x) { g(); return; } h(); return;\n    }\n    void g() {}\n    void h() {}\n}\n"
	fx, ps := assistsAt(t, src)
	out := applied(t, fx, pick(t, ps, "if-return-to-if-else"))
	require.Contains(t, out, "if (x) { g(); return; } else { h(); }")
	require.Equal(t, 1, countOf(out, "return;"))

	_, ps = assistsAt(t, "class A {\n    void f(boolean x) {\n        i/*|*/f (x) { g(); return; } return;\n    }\n    void g() {}\n}\n")
	require.False(t, offered(ps, "if-return-to-if-else"))
}

func TestInverseCondition(t *testing.T) {
	fx, ps := assistsAt(t, "class A {\n    boolean f(int a, int b) {\n        return /*[*/a == b/*]*/;\n    }\n}\n")
	out := applied(t, fx, pick(t, ps, "inverse-condition"))
	require.Contains(t, out, "return a != b;")
}

func TestPushNegationDown(t *testing.T) {
	fx, ps := assistsAt(t, "class A {\n    boolean f(boolean a, boolean b) {\n        return /*|*/!(a && !b);\n    }\n}\n")
	out := applied(t, fx, pick(t, ps, "push-negation-down"))
	require.Contains(t, out, "return !a || b;")
}

func TestAddBlock(t *testing.T) {
	fx, ps := assistsAt(t, "class A {\n    void f(boolean c) {\n        wh/*|*/ile (c) g();\n    }\n    void g() {}\n}\n")
	out := applied(t, fx, pick(t, ps, "add-block"))
	require.Contains(t, out, "while (c) { g(); }")
}

func TestSwitchToIf(t *testing.T) {
	src := "class A {\n    void f(int k) {\n        sw/*|*/itch (k) {\n        case 1:\n            g();\n            break;\n        default:\n            h();\n        }\n    }\n    void g() {}\n    void h() {}\n}\n"
	fx, ps := assistsAt(t, src)
	out := applied(t, fx, pick(t, ps, "switch-to-if"))
	require.Contains(t, out, "if (k == 1) { g(); } else { h(); }")
	require.NotContains(t, out, "break")
}

func TestSwitchWithFallThroughIsNotConverted(t *testing.T) {
	src := "class A {\n    void f(int k) {\n        sw/*|*/itch (k) {\n        case 1:\n            g();\n        case 2:\n            h();\n            break;\n        }\n    }\n    void g() {}\n    void h() {}\n}\n"
	_, ps := assistsAt(t, src)
	require.False(t, offered(ps, "switch-to-if"))
}

func TestSplitThenJoinVariable(t *testing.T) {
	fx, ps := assistsAt(t, "class A {\n    int f() {\n        int /*|*/x = 1;\n        return x;\n    }\n}\n")
	out := applied(t, fx, pick(t, ps, "split-variable"))
	require.Contains(t, out, "int x; x = 1; return x;")

	raw, err := applyRaw(fx, pick(t, ps, "split-variable"))
	require.NoError(t, err)
	marked := raw[:len("class A {\n    int f() {\n        int ")] + testkit.Caret + raw[len("class A {\n    int f() {\n        int "):]
	fx2, ps2 := assistsAt(t, marked)
	out2 := applied(t, fx2, pick(t, ps2, "join-variable"))
	require.Contains(t, out2, "int x = 1; return x;")
}

func TestAssignToLocal(t *testing.T) {
	fx, ps := assistsAt(t, "class A {\n    void f() {\n        /*|*/g();\n    }\n    int g() { return 1; }\n}\n")
	out := applied(t, fx, pick(t, ps, "assign-to-local"))
	require.Contains(t, out, "int ")
	require.Contains(t, out, "= g();")
	p := pick(t, ps, "assign-to-local")
	require.NotEmpty(t, p.Groups)
}

func TestExtractLocalReplacesAllOccurrences(t *testing.T) {
	src := "class A {\n    int f(int a) {\n        int b = /*[*/a * 2/*]*/;\n        return b + a * 2;\n    }\n}\n"
	fx, ps := assistsAt(t, src)
	all := applied(t, fx, pick(t, ps, "extract-local-all"))
	require.Equal(t, 1, countOf(all, "a * 2"))
	one := applied(t, fx, pick(t, ps, "extract-local"))
	require.Equal(t, 2, countOf(one, "a * 2"))
	require.Greater(t, pick(t, ps, "extract-local-all").Relevance, pick(t, ps, "extract-local").Relevance)
}

func TestInlineLocal(t *testing.T) {
	fx, ps := assistsAt(t, "class A {\n    int f(int a) {\n        int /*|*/x = a + 1;\n        return x * 2;\n    }\n}\n")
	out := applied(t, fx, pick(t, ps, "inline-local"))
	require.Contains(t, out, "return (a + 1) * 2;")
	require.NotContains(t, out, "int x")
}

func TestNoAssistsOutsideStatements(t *testing.T) {
	_, ps := assistsAt(t, "/*|*/class A {\n}\n")
	require.Empty(t, ps)
}

func TestControlFlowAssists(t *testing.T) {
	cases := []struct {
		rule string
		body string
		want string
	}{
		{"join-and-ifs", "i/*|*/f (a) { if (b) { g(); } }\n        return 0;", "if (a && b) { g(); } return 0;"},
		{"split-and-condition", "if (/*[*/a && b/*]*/) { g(); }\n        return 0;", "if (a) { if (b) { g(); } } return 0;"},
		{"join-or-ifs", "/*[*/if (a) { g(); }\n        if (b) { g(); }/*]*/\n        return 0;", "if (a || b) { g(); } return 0;"},
		{"split-or-condition", "if (/*[*/a || b/*]*/) { g(); }\n        return 0;", "if (a) { g(); } else if (b) { g(); } return 0;"},
		{"inverse-if-continue", "while (a) { i/*|*/f (b) continue; g(); }\n        return 0;", "while (a) { if (!b) { g(); } } return 0;"},
		{"inverse-if-to-continue", "while (a) { i/*|*/f (b) { g(); } }\n        return 0;", "while (a) { if (!b) continue; g(); } return 0;"},
		{"conditional-to-if-else", "return /*|*/a ? x : y;", "if (a) { return x; } else { return y; }"},
		{"if-else-to-conditional", "i/*|*/f (a) { return x; } else { return y; }", "return a ? x : y;"},
		{"exchange-operands", "return /*[*/x < y/*]*/ ? 1 : 0;", "return y > x ? 1 : 0;"},
		{"inverse-boolean-variable", "boolean o/*|*/k = a;\n        if (ok) g();\n        return 0;", "boolean notOk = !a; if (!notOk) g();"},
	}
	for _, c := range cases {
		t.Run(c.rule, func(t *testing.T) {
			src := "class A {\n    int f(boolean a, boolean b, int x, int y) {\n        " + c.body + "\n    }\n    void g() {}\n}\n"
			fx, ps := assistsAt(t, src)
			require.Contains(t, applied(t, fx, pick(t, ps, c.rule)), c.want)
		})
	}
}

// reselect marks the returned expression of raw as the selection.
func reselect(raw string) string {
	i := strings.Index(raw, "return ") + len("return ")
	j := i + strings.Index(raw[i:], ";")
	return raw[:i] + testkit.SelStart + raw[i:j] + testkit.SelEnd + raw[j:]
}

func TestInverseConditionIsAnInvolution(t *testing.T) {
	cases := []struct{ expr, inverted string }{
		{"x < y", "x >= y"},
		{"a && b", "!a || !b"},
		{"!(s instanceof String)", "s instanceof String"},
		{"s instanceof String", "!(s instanceof String)"},
	}
	for _, c := range cases {
		t.Run(c.expr, func(t *testing.T) {
			src := "class A {\n    boolean f(boolean a, boolean b, int x, int y, Object s) {\n        return " +
				testkit.SelStart + c.expr + testkit.SelEnd + ";\n    }\n}\n"
			fx, ps := assistsAt(t, src)
			once, err := applyRaw(fx, pick(t, ps, "inverse-condition"))
			require.NoError(t, err)
			require.Contains(t, testkit.Squash(once), "return "+c.inverted+";")

			fx2, ps2 := assistsAt(t, reselect(once))
			require.Contains(t, applied(t, fx2, pick(t, ps2, "inverse-condition")), "return "+c.expr+";")
		})
	}
}

func TestSplitThenJoinCondition(t *testing.T) {
	src := "class A {\n    void f(boolean a, boolean b) {\n        if (/*[*/a && b/*]*/) { g(); }\n    }\n    void g() {}\n}\n"
	fx, ps := assistsAt(t, src)
	split, err := applyRaw(fx, pick(t, ps, "split-and-condition"))
	require.NoError(t, err)

	i := strings.Index(split, "if (a)") + 1
	fx2, ps2 := assistsAt(t, split[:i]+testkit.Caret+split[i:])
	require.Contains(t, applied(t, fx2, pick(t, ps2, "join-and-ifs")), "if (a && b) { g(); }")
}

func TestRemoveExtraParentheses(t *testing.T) {
	cases := []struct {
		name, body, want string
	}{
		{"selection", "return /*[*/(a) + ((b * c))/*]*/;", "return a + b * c;"},
		{"keeps required pair", "return /*[*/((a + b)) * c/*]*/;", "return (a + b) * c;"},
		{"separates signs", "return a-/*|*/(-b);", "return a- -b;"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			fx, ps := assistsAt(t, "class A {\n    int f(int a, int b, int c) {\n        "+c.body+"\n    }\n}\n")
			require.Contains(t, applied(t, fx, pick(t, ps, "remove-extra-parentheses")), c.want)
		})
	}

	_, ps := assistsAt(t, "class A {\n    int f(int a, int b, int c) {\n        return /*|*/(a + b) * c;\n    }\n}\n")
	require.False(t, offered(ps, "remove-extra-parentheses"))
}

func TestAddParanoidalParentheses(t *testing.T) {
	src := "class A {\n    boolean f(int a, int b, int c, int d, Object e) {\n        return /*[*/a + b * c < d || e instanceof String/*]*/;\n    }\n}\n"
	fx, ps := assistsAt(t, src)
	out := applied(t, fx, pick(t, ps, "add-paranoidal-parentheses"))
	require.Contains(t, out, "return ((a + (b * c)) < d) || (e instanceof String);")

	fx, ps = assistsAt(t, "class A {\n    int f(int a, int b) {\n        return /*[*/a > b ? 1 : 0/*]*/;\n    }\n}\n")
	require.Contains(t, applied(t, fx, pick(t, ps, "add-paranoidal-parentheses")), "return (a > b) ? 1 : 0;")

	_, ps = assistsAt(t, "class A {\n    int f(int a, int b) {\n        return /*[*/a + b + 1/*]*/;\n    }\n}\n")
	require.False(t, offered(ps, "add-paranoidal-parentheses"))
}

func TestMakeFinal(t *testing.T) {
	fx, ps := assistsAt(t, "class A {\n    int f(int a) {\n        int /*|*/x = a;\n        return x;\n    }\n}\n")
	p := pick(t, ps, "make-final")
	require.Equal(t, "Change modifier of 'x' to final", p.Label)
	require.Contains(t, applied(t, fx, p), "final int x = a;")

	fx, ps = assistsAt(t, "class A {\n    int f(int /*|*/a) {\n        return a;\n    }\n}\n")
	require.Contains(t, applied(t, fx, pick(t, ps, "make-final")), "int f(final int a)")

	fx, ps = assistsAt(t, "class A {\n    private int /*|*/count = 0;\n    int f() { return count; }\n}\n")
	require.Contains(t, applied(t, fx, pick(t, ps, "make-final")), "private final int count = 0;")

	fx, ps = assistsAt(t, "class A {\n    int f() {\n        /*[*/int x = 1;\n        int y = 2;/*]*/\n        return x + y;\n    }\n}\n")
	p = pick(t, ps, "make-final")
	require.Equal(t, "Change modifiers to final where possible", p.Label)
	require.Equal(t, 2, countOf(applied(t, fx, p), "final int"))

	for _, src := range []string{
		"class A {\n    int f() {\n        int /*|*/x = 1;\n        x = 2;\n        return x;\n    }\n}\n",
		"class A {\n    int /*|*/count = 0;\n    int f() { return count; }\n}\n",
		"class A {\n    int f() {\n        int /*|*/x = 1, y = 2;\n        return x + y;\n    }\n}\n",
	} {
		_, ps := assistsAt(t, src)
		require.False(t, offered(ps, "make-final"), src)
	}
}

func TestCreateInSuperclass(t *testing.T) {
	src := "class B {\n}\nclass A extends B {\n    protected int /*|*/size(String s) { return s.length(); }\n}\n"
	fx, ps := assistsAt(t, src)
	p := pick(t, ps, "create-in-superclass")
	require.Equal(t, "Create 'size(String)' in super type 'B'", p.Label)
	out := applied(t, fx, p)
	require.Contains(t, out, "protected int size(String s) { return 0; }")
	require.Equal(t, 2, countOf(out, "int size(String s)"))

	for _, src := range []string{
		"class B {\n    int size() { return 1; }\n}\nclass A extends B {\n    int /*|*/size() { return 2; }\n}\n",
		"class B {\n}\nclass A extends B {\n    private int /*|*/size() { return 2; }\n}\n",
		"class A {\n    int /*|*/size() { return 2; }\n}\n",
	} {
		_, ps := assistsAt(t, src)
		require.False(t, offered(ps, "create-in-superclass"), src)
	}
}
