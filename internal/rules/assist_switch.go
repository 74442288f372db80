package rules

import (
	"mend/internal/ast"
	"mend/internal/correction"
	"mend/internal/query"
	"mend/internal/token"
)

// caseGroup is one case label with the statements up to the next label,
// trailing break excluded.
type caseGroup struct {
	label ast.NodeID
	body  []ast.NodeID
}

type switchPlan struct {
	stmt   ast.NodeID
	groups []caseGroup
}

func (g caseGroup) isDefault(t *ast.Tree) bool {
	return t.Child(g.label, ast.CaseExpr) == ast.NoNodeID
}

// matchSwitchToIf accepts a switch whose case groups never fall through and
// leave only by a trailing break, with default, if any, last.
func matchSwitchToIf(cx *correction.Context) (switchPlan, bool) {
	t := cx.Tree
	st := coveringStatement(cx)
	if t.Kind(st) == ast.KindSwitchCase {
		st = t.Parent(st)
	}
	if t.Kind(st) != ast.KindSwitch {
		return switchPlan{}, false
	}
	stmts := t.List(st, ast.SwitchStatements)
	if len(stmts) == 0 || t.Kind(stmts[0]) != ast.KindSwitchCase {
		return switchPlan{}, false
	}
	var groups []caseGroup
	for _, s := range stmts {
		if t.Kind(s) == ast.KindSwitchCase {
			groups = append(groups, caseGroup{label: s})
			continue
		}
		g := &groups[len(groups)-1]
		g.body = append(g.body, s)
	}
	for i := range groups {
		g := &groups[i]
		last := i == len(groups)-1
		if g.isDefault(t) && !last {
			return switchPlan{}, false
		}
		broke := false
		if n := len(g.body); n > 0 && t.Kind(g.body[n-1]) == ast.KindBreak && t.Child(g.body[n-1], ast.BreakLabel) == ast.NoNodeID {
			g.body = g.body[:n-1]
			broke = true
		}
		if !last && !broke && (len(g.body) == 0 || query.CanCompleteNormally(t, g.body[len(g.body)-1])) {
			return switchPlan{}, false
		}
		for _, s := range g.body {
			if t.Kind(s) == ast.KindBreak || breaksOut(t, s) {
				return switchPlan{}, false
			}
		}
	}
	return switchPlan{stmt: st, groups: groups}, true
}

func switchToIf(cx *correction.Context, m switchPlan) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Convert 'switch' to 'if-else'")
	b := d.Edit
	subject := t.Child(m.stmt, ast.SwitchExpr)
	byEquals := cx.TypeOf(subject).IsReference()

	branch := func(g caseGroup) ast.NodeID {
		body := g.body
		if len(body) == 1 && t.Kind(body[0]) == ast.KindBlock {
			body = t.List(body[0], ast.BlockStatements)
		}
		return b.Block(moves(b, body)...)
	}
	test := func(g caseGroup) ast.NodeID {
		label := t.Child(g.label, ast.CaseExpr)
		if byEquals {
			recv := b.ParenthesizeIfRequired(b.CopyTarget(label), ast.PrecPostfix)
			return b.Call(recv, "equals", b.CopyTarget(subject))
		}
		eq := b.Infix(token.EqEq,
			b.Operand(token.EqEq, b.CopyTarget(subject), false),
			b.Operand(token.EqEq, b.CopyTarget(label), true))
		if t.Lang == ast.LangJavaScript {
			b.Tree().Mutable(eq).Text = "==="
		}
		return eq
	}

	if len(m.groups) == 1 && m.groups[0].isDefault(t) {
		// остался только default
		body := m.groups[0].body
		if len(body) == 1 && t.Kind(body[0]) == ast.KindBlock {
			body = t.List(body[0], ast.BlockStatements)
		}
		unwrapInto(b, t, m.stmt, body)
		return single(d)
	}
	chain := ast.NoNodeID
	for i := len(m.groups) - 1; i >= 0; i-- {
		g := m.groups[i]
		if g.isDefault(t) {
			chain = branch(g)
			continue
		}
		chain = b.If(test(g), branch(g), chain)
	}
	b.Replace(m.stmt, chain)
	return single(d)
}
