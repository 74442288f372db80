package correction

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/rewrite"
	"mend/internal/symbols"
	"mend/internal/trace"
)

// Request is one proposal query against a tree.
type Request struct {
	Tree     *ast.Tree
	Resolver symbols.Resolver
	// Offset and Length select the text quick-assists look at.
	Offset uint32
	Length uint32
	// Problems are the diagnostics to fix.
	Problems []ProblemLocation
	// Assists enables quick-assists at the selection.
	Assists bool
}

// Failure records a rule that broke while generating: a usage error from
// the edit builder or a recovered panic. Other rules are unaffected.
type Failure struct {
	RuleID string
	Kind   Kind
	Code   diag.Code
	Err    error
}

// Result is the ordered outcome of a request.
type Result struct {
	Proposals []Proposal
	Failures  []Failure
}

type ordered struct {
	p     Proposal
	rank  int
	order int
}

// Proposals runs the applicable rules of the request and returns their
// proposals sorted by descending relevance. Ties follow catalogue
// registration order, then generation order: first appearance of the code
// and the dispatch table for quick-fixes.
func (c *Catalogue) Proposals(ctx context.Context, req Request, s Settings) Result {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "proposals", trace.CurrentSpan(ctx).SpanID)

	run := &runner{cat: c, tracer: tracer, parent: span.ID(), settings: s}
	cx := NewContext(req.Tree, req.Resolver, req.Offset, req.Length, s)

	for _, p := range firstPerCode(req.Problems) {
		cx.Problem = &p
		for _, r := range c.dispatch[p.Code] {
			run.rule(cx, r, p.Code)
		}
	}
	cx.Problem = nil
	if req.Assists {
		for _, r := range c.rules {
			if r.Kind == KindAssist {
				run.rule(cx, r, diag.UnknownCode)
			}
		}
	}

	slices.SortStableFunc(run.out, func(a, b ordered) int {
		if a.p.Relevance != b.p.Relevance {
			return b.p.Relevance - a.p.Relevance
		}
		if a.rank != b.rank {
			return a.rank - b.rank
		}
		return a.order - b.order
	})
	res := Result{Failures: run.failures}
	seen := make(map[string]bool, len(run.out))
	for _, o := range run.out {
		key := dedupKey(&o.p)
		if seen[key] {
			continue
		}
		seen[key] = true
		res.Proposals = append(res.Proposals, o.p)
	}
	if s.MaxProposals > 0 && len(res.Proposals) > s.MaxProposals {
		res.Proposals = res.Proposals[:s.MaxProposals]
	}
	span.End(strconv.Itoa(len(res.Proposals)) + " proposals")
	return res
}

// HasProposals answers whether Proposals would return anything, calling only
// the rules' probes.
func (c *Catalogue) HasProposals(req Request, s Settings) bool {
	cx := NewContext(req.Tree, req.Resolver, req.Offset, req.Length, s)
	for _, p := range firstPerCode(req.Problems) {
		cx.Problem = &p
		for _, r := range c.dispatch[p.Code] {
			if !s.Disabled[r.ID] && safeProbe(cx, r) {
				return true
			}
		}
	}
	cx.Problem = nil
	if !req.Assists {
		return false
	}
	for _, r := range c.rules {
		if r.Kind == KindAssist && !s.Disabled[r.ID] && safeProbe(cx, r) {
			return true
		}
	}
	return false
}

// firstPerCode keeps the first location of every code, in order.
func firstPerCode(ps []ProblemLocation) []ProblemLocation {
	var out []ProblemLocation
	seen := make(map[diag.Code]bool)
	for _, p := range ps {
		if !seen[p.Code] {
			seen[p.Code] = true
			out = append(out, p)
		}
	}
	return out
}

func safeProbe(cx *Context, r *Rule) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return r.Probe(cx)
}

type runner struct {
	cat      *Catalogue
	tracer   trace.Tracer
	parent   uint64
	settings Settings
	out      []ordered
	failures []Failure
	seq      int
}

func (rn *runner) rule(cx *Context, r *Rule, code diag.Code) {
	if rn.settings.Disabled[r.ID] || !safeProbe(cx, r) {
		return
	}
	span := trace.Begin(rn.tracer, trace.ScopeNode, "rule:"+r.ID, rn.parent)
	cx.relevance = r.relevance(rn.settings)
	ps, err := rn.generate(cx, r, code)
	if err != nil {
		rn.failures = append(rn.failures, Failure{RuleID: r.ID, Kind: r.Kind, Code: code, Err: err})
		trace.Point(rn.tracer, trace.ScopePass, "rule-failed", rn.parent, map[string]string{
			"rule":  r.ID,
			"error": err.Error(),
		})
	}
	rank := rn.cat.order(r)
	for _, p := range ps {
		rn.out = append(rn.out, ordered{p: p, rank: rank, order: rn.seq})
		rn.seq++
	}
	span.End(strconv.Itoa(len(ps)) + " proposals")
}

// generate runs one rule. A failing draft drops only itself; a panic drops
// the rule's remaining drafts.
func (rn *runner) generate(cx *Context, r *Rule, code diag.Code) (out []Proposal, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: rule %s panicked: %v", rewrite.ErrUsage, r.ID, rec)
		}
	}()
	for _, d := range r.Generate(cx) {
		if d == nil {
			continue
		}
		p, cerr := compileDraft(cx, d)
		if cerr != nil {
			err = fmt.Errorf("rule %s: %q: %w", r.ID, d.Label, cerr)
			continue
		}
		p.RuleID, p.Kind, p.Code = r.ID, r.Kind, code
		out = append(out, p)
	}
	return out, err
}

func compileDraft(cx *Context, d *Draft) (Proposal, error) {
	script, err := d.Edit.Compile()
	if err != nil {
		return Proposal{}, err
	}
	edits := slices.Clone(script.Edits)
	for _, b := range d.extra {
		s, err := b.Compile()
		if err != nil {
			return Proposal{}, err
		}
		edits = append(edits, s.Edits...)
	}
	sortEdits(edits)
	groups, end, err := d.Linked.Resolve(script)
	if err != nil {
		return Proposal{}, err
	}
	p := Proposal{
		Label:     d.Label,
		Relevance: d.Relevance,
		Edits:     edits,
		Groups:    groups,
		End:       end,
	}
	if cx.Tree.File != nil {
		p.File = cx.Tree.File.ID
	}
	return p, nil
}

func dedupKey(p *Proposal) string {
	var sb strings.Builder
	sb.WriteString(p.Label)
	for _, e := range p.Edits {
		fmt.Fprintf(&sb, "\x00%d:%d:%d:%s", e.Span.File, e.Span.Start, e.Span.End, e.NewText)
	}
	return sb.String()
}
