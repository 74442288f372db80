package correction_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"mend/internal/ast"
	"mend/internal/correction"
	"mend/internal/diag"
	"mend/internal/rewrite"
	"mend/internal/testkit"
	"mend/internal/trace"
)

const src = "class A {\n    int f(int a) {\n        return a + 1;\n    }\n}\n"

func literal(cx *correction.Context) ast.NodeID {
	ids := cx.Tree.Collect(cx.Tree.Root, func(_ ast.NodeID, n *ast.Node) bool { return n.Kind == ast.KindLiteral })
	return ids[0]
}

// replacing rule: swaps the literal for text.
func replacing(id string, kind correction.Kind, rel int, text string) *correction.Rule {
	return &correction.Rule{
		ID: id, Kind: kind, Relevance: rel,
		Probe: func(*correction.Context) bool { return true },
		Generate: func(cx *correction.Context) []*correction.Draft {
			d := cx.NewDraft("use " + text)
			d.Edit.Replace(literal(cx), d.Edit.Name(text))
			return []*correction.Draft{d}
		},
	}
}

func never(id string) *correction.Rule {
	return &correction.Rule{
		ID: id, Kind: correction.KindAssist, Relevance: 100,
		Probe:    func(*correction.Context) bool { return false },
		Generate: func(*correction.Context) []*correction.Draft { panic("generate without probe") },
	}
}

func request(t *testing.T) (*testkit.Fixture, correction.Request) {
	fx := testkit.Parse(t, src)
	return fx, correction.Request{Tree: fx.Tree, Resolver: fx.Unit, Assists: true}
}

func labels(ps []correction.Proposal) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Label
	}
	return out
}

func TestOrderingByRelevanceThenRegistration(t *testing.T) {
	c := correction.NewCatalogue()
	require.NoError(t, c.Register(replacing("low", correction.KindAssist, 1, "low")))
	require.NoError(t, c.Register(replacing("tie-1", correction.KindAssist, 5, "first")))
	require.NoError(t, c.Register(never("never")))
	require.NoError(t, c.Register(replacing("tie-2", correction.KindAssist, 5, "second")))
	require.NoError(t, c.Register(replacing("high", correction.KindAssist, 9, "high")))

	_, req := request(t)
	want := []string{"use high", "use first", "use second", "use low"}
	for range 3 {
		res := c.Proposals(context.Background(), req, correction.Settings{})
		require.Empty(t, res.Failures)
		require.Equal(t, want, labels(res.Proposals))
	}

	res := c.Proposals(context.Background(), req, correction.Settings{
		Relevance:    map[string]int{"low": 20},
		Disabled:     map[string]bool{"high": true},
		MaxProposals: 2,
	})
	require.Equal(t, []string{"use low", "use first"}, labels(res.Proposals))
	require.Equal(t, 20, res.Proposals[0].Relevance)
}

func TestTiesAcrossKindsFollowRegistration(t *testing.T) {
	c := correction.NewCatalogue()
	require.NoError(t, c.Register(replacing("assist", correction.KindAssist, 4, "a")))
	require.NoError(t, c.Register(replacing("fix", correction.KindFix, 4, "f")))
	require.NoError(t, c.Dispatch(diag.SemUndefinedName, "fix"))

	_, req := request(t)
	req.Problems = []correction.ProblemLocation{{Code: diag.SemUndefinedName, Offset: 10}}
	res := c.Proposals(context.Background(), req, correction.Settings{})
	require.Equal(t, []string{"use a", "use f"}, labels(res.Proposals))
	require.Equal(t, correction.KindAssist, res.Proposals[0].Kind)
}

func TestUsageErrorIsIsolated(t *testing.T) {
	broken := &correction.Rule{
		ID: "broken", Kind: correction.KindAssist, Relevance: 50,
		Probe: func(*correction.Context) bool { return true },
		Generate: func(cx *correction.Context) []*correction.Draft {
			d := cx.NewDraft("broken")
			lit := literal(cx)
			d.Edit.Replace(lit, d.Edit.Name("x"))
			d.Edit.Remove(lit)
			return []*correction.Draft{d}
		},
	}
	panicking := &correction.Rule{
		ID: "panicking", Kind: correction.KindAssist, Relevance: 40,
		Probe:    func(*correction.Context) bool { return true },
		Generate: func(*correction.Context) []*correction.Draft { panic("boom") },
	}
	c := correction.NewCatalogue()
	require.NoError(t, c.Register(broken))
	require.NoError(t, c.Register(panicking))
	require.NoError(t, c.Register(replacing("fine", correction.KindAssist, 1, "b")))

	tracer := trace.NewRingTracer(64, trace.LevelPhase)
	ctx := trace.WithTracer(context.Background(), tracer)
	_, req := request(t)
	res := c.Proposals(ctx, req, correction.Settings{})
	require.Equal(t, []string{"use b"}, labels(res.Proposals))
	require.Len(t, res.Failures, 2)
	for _, f := range res.Failures {
		require.True(t, errors.Is(f.Err, rewrite.ErrUsage), "failure %s: %v", f.RuleID, f.Err)
	}

	points := 0
	for _, ev := range tracer.Snapshot() {
		if ev.Kind == trace.KindPoint && ev.Name == "rule-failed" {
			points++
			require.NotEmpty(t, ev.Extra["rule"])
		}
	}
	require.Equal(t, 2, points)
}

func TestDispatchOncePerCode(t *testing.T) {
	calls := 0
	counting := &correction.Rule{
		ID: "counting", Kind: correction.KindFix, Relevance: 3,
		Probe: func(cx *correction.Context) bool { return cx.Problem != nil },
		Generate: func(cx *correction.Context) []*correction.Draft {
			calls++
			d := cx.NewDraft("fix " + cx.Problem.Arg(0))
			d.Edit.InsertText(cx.Problem.Offset, "/*x*/")
			return []*correction.Draft{d}
		},
	}
	c := correction.NewCatalogue()
	require.NoError(t, c.Register(counting))
	require.NoError(t, c.Register(replacing("other", correction.KindFix, 3, "z")))
	require.NoError(t, c.Dispatch(diag.SemUndefinedName, "counting", "other"))
	require.Error(t, c.Dispatch(diag.SemUndefinedType, "missing"))
	require.Error(t, c.Dispatch(diag.SemUndefinedName, "counting"))
	require.Equal(t, []diag.Code{diag.SemUndefinedName}, c.CodesFor("other"))

	fx, req := request(t)
	req.Assists = false
	req.Problems = []correction.ProblemLocation{
		{Code: diag.SemUndefinedName, Offset: 10, Args: []string{"first"}},
		{Code: diag.SemUndefinedName, Offset: 20, Args: []string{"second"}},
		{Code: diag.SemTypeMismatch, Offset: 30},
	}
	res := c.Proposals(context.Background(), req, correction.Settings{})
	require.Equal(t, 1, calls)
	require.Equal(t, []string{"fix first", "use z"}, labels(res.Proposals))
	require.Equal(t, diag.SemUndefinedName, res.Proposals[0].Code)
	require.Equal(t, correction.KindFix, res.Proposals[0].Kind)

	out, err := correction.ApplyEdit([]byte(fx.Src), &res.Proposals[0])
	require.NoError(t, err)
	require.Equal(t, src[:10]+"/*x*/"+src[10:], string(out))
}

func TestHasProposalsUsesProbesOnly(t *testing.T) {
	c := correction.NewCatalogue()
	require.NoError(t, c.Register(never("quiet")))
	_, req := request(t)
	require.False(t, c.HasProposals(req, correction.Settings{}))

	require.NoError(t, c.Register(replacing("loud", correction.KindAssist, 1, "q")))
	require.True(t, c.HasProposals(req, correction.Settings{}))
	require.False(t, c.HasProposals(req, correction.Settings{Disabled: map[string]bool{"loud": true}}))
	req.Assists = false
	require.False(t, c.HasProposals(req, correction.Settings{}))
}

func TestDuplicateProposalsCollapse(t *testing.T) {
	c := correction.NewCatalogue()
	require.NoError(t, c.Register(replacing("one", correction.KindAssist, 2, "same")))
	require.NoError(t, c.Register(replacing("two", correction.KindAssist, 2, "same")))
	require.Error(t, c.Register(replacing("one", correction.KindAssist, 2, "again")))
	require.NoError(t, c.Register(replacing("one", correction.KindFix, 2, "fix")))
	_, req := request(t)
	res := c.Proposals(context.Background(), req, correction.Settings{})
	require.Len(t, res.Proposals, 1)
	require.Equal(t, "one", res.Proposals[0].RuleID)
}

func TestProblemLocation(t *testing.T) {
	fx := testkit.Parse(t, "class A {\n    int f() {\n        return missing;\n    }\n}\n")
	var d diag.Diagnostic
	for _, x := range fx.Diagnostics() {
		if x.Code == diag.SemUndefinedName {
			d = x
		}
	}
	require.Equal(t, diag.SemUndefinedName, d.Code)
	p := correction.NewProblemLocation(fx.Tree, d)
	require.Equal(t, "missing", p.Arg(0))
	require.Equal(t, ast.KindName, fx.Tree.Kind(p.Covered))
	require.Equal(t, p.Covered, p.Covering)
	require.True(t, p.Overlaps(p.Offset+1, 0))
	require.Len(t, correction.ProblemLocations(fx.Tree, fx.Diagnostics()), len(fx.Diagnostics()))
}
