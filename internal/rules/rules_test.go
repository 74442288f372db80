package rules_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mend/internal/correction"
	"mend/internal/diag"
	"mend/internal/rules"
	"mend/internal/testkit"
)

func run(t *testing.T, fx *testkit.Fixture, req correction.Request) []correction.Proposal {
	t.Helper()
	req.Tree = fx.Tree
	req.Resolver = fx.Unit
	res := rules.Default().Proposals(context.Background(), req, correction.Settings{})
	require.Empty(t, res.Failures)
	return res.Proposals
}

// assistsAt returns the quick-assists offered at the markers of src.
func assistsAt(t *testing.T, src string) (*testkit.Fixture, []correction.Proposal) {
	t.Helper()
	fx := testkit.Parse(t, src)
	return fx, run(t, fx, correction.Request{Offset: fx.Offset, Length: fx.Length, Assists: true})
}

// fixesFor returns the quick-fixes for the diagnostics of src with code.
func fixesFor(t *testing.T, src string, code diag.Code) (*testkit.Fixture, []correction.Proposal) {
	t.Helper()
	fx := testkit.ParseLenient(t, src)
	var problems []correction.ProblemLocation
	for _, p := range correction.ProblemLocations(fx.Tree, fx.Diagnostics()) {
		if p.Code == code {
			problems = append(problems, p)
		}
	}
	require.NotEmpty(t, problems, "no %s in %+v", code.ID(), fx.Diagnostics())
	return fx, run(t, fx, correction.Request{Problems: problems})
}

func pick(t *testing.T, ps []correction.Proposal, id string) *correction.Proposal {
	t.Helper()
	for i := range ps {
		if ps[i].RuleID == id {
			return &ps[i]
		}
	}
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.RuleID
	}
	t.Fatalf("no %s proposal among %v", id, ids)
	return nil
}

func offered(ps []correction.Proposal, id string) bool {
	for _, p := range ps {
		if p.RuleID == id {
			return true
		}
	}
	return false
}

// applied returns the squashed text of fx after p.
func applied(t *testing.T, fx *testkit.Fixture, p *correction.Proposal) string {
	t.Helper()
	out, err := correction.ApplyEdit([]byte(fx.Src), p)
	require.NoError(t, err)
	return testkit.Squash(string(out))
}

func applyRaw(fx *testkit.Fixture, p *correction.Proposal) (string, error) {
	out, err := correction.ApplyEdit([]byte(fx.Src), p)
	return string(out), err
}

func countOf(s, sub string) int { return strings.Count(s, sub) }

func TestCatalogueIsConsistent(t *testing.T) {
	c, err := rules.Build()
	require.NoError(t, err)

	for _, r := range c.Rules() {
		if r.Kind == correction.KindFix {
			require.NotEmpty(t, c.CodesFor(r.ID), "fix %s is never dispatched", r.ID)
		}
	}
	rank := make(map[string]int)
	for i, r := range c.Rules() {
		if r.Kind == correction.KindFix {
			rank[r.ID] = i
		}
	}
	for _, code := range c.Codes() {
		prev := -1
		for _, r := range c.RulesFor(code) {
			require.Equal(t, correction.KindFix, r.Kind, "%s dispatches to %s", code.ID(), r.ID)
			// порядок диспетчеризации совпадает с порядком регистрации
			require.Greater(t, rank[r.ID], prev, "%s lists %s out of registration order", code.ID(), r.ID)
			prev = rank[r.ID]
		}
	}
	require.Empty(t, c.RulesFor(diag.SynUnexpectedToken))
	require.Equal(t, 10, c.Lookup(correction.KindAssist, "add-block").Relevance)
	require.Equal(t, 10, c.Lookup(correction.KindFix, "change-visibility").Relevance)
	require.NotNil(t, c.Lookup(correction.KindAssist, "remove-catch"))
	require.NotNil(t, c.Lookup(correction.KindFix, "remove-catch"))

	ids := make([]string, 0, 3)
	for _, r := range c.Assists()[:3] {
		ids = append(ids, r.ID)
	}
	require.Equal(t, []string{"add-block", "add-blocks-all", "remove-block"}, ids)
	require.Same(t, rules.Default(), rules.Default())
}

func TestProposalsAreSortedByRelevance(t *testing.T) {
	_, ps := assistsAt(t, "class A {\n    void f(boolean c) {\n        i/*|*/f (c) g();\n    }\n    void g() {}\n}\n")
	require.NotEmpty(t, ps)
	require.Equal(t, "add-block", ps[0].RuleID)
	for i := 1; i < len(ps); i++ {
		require.GreaterOrEqual(t, ps[i-1].Relevance, ps[i].Relevance)
	}
}
