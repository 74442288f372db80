package rules

import (
	"mend/internal/ast"
	"mend/internal/correction"
	"mend/internal/query"
	"mend/internal/rewrite"
	"mend/internal/token"
)

func coveringIf(cx *correction.Context) (ast.NodeID, bool) {
	st := coveringStatement(cx)
	return st, cx.Tree.Kind(st) == ast.KindIf
}

func hasElse(t *ast.Tree, ifStmt ast.NodeID) bool {
	return t.Child(ifStmt, ast.IfElse) != ast.NoNodeID
}

// endsWithExit reports whether the last statement of stmt is a return or a throw.
func endsWithExit(t *ast.Tree, stmt ast.NodeID) bool {
	stmts := query.Statements(t, stmt)
	return len(stmts) > 0 && is(t, stmts[len(stmts)-1], ast.KindReturn, ast.KindThrow)
}

// conditional creates c ? a : e with each part parenthesized as needed.
func conditional(b *rewrite.Builder, c, a, e ast.NodeID) ast.NodeID {
	return b.Conditional(
		b.ParenthesizeIfRequired(c, ast.PrecOr),
		b.ParenthesizeIfRequired(a, ast.PrecConditional),
		b.ParenthesizeIfRequired(e, ast.PrecConditional),
	)
}

// joinOperands folds parts with op, left to right.
func joinOperands(b *rewrite.Builder, op token.Kind, parts []ast.NodeID) ast.NodeID {
	if len(parts) == 1 {
		return parts[0]
	}
	acc := b.Operand(op, parts[0], false)
	for _, p := range parts[1:] {
		acc = b.Infix(op, acc, b.Operand(op, p, true))
	}
	return acc
}

// flatten lists the operands of a chain of op, left to right.
func flatten(t *ast.Tree, e ast.NodeID, op token.Kind) []ast.NodeID {
	if n := t.Node(e); n.Kind == ast.KindInfix && n.Op == op {
		return append(flatten(t, t.Child(e, ast.InfixLeft), op), flatten(t, t.Child(e, ast.InfixRight), op)...)
	}
	return []ast.NodeID{e}
}

func matchInverseIf(cx *correction.Context) (ast.NodeID, bool) {
	st, ok := coveringIf(cx)
	return st, ok && hasElse(cx.Tree, st)
}

func inverseIf(cx *correction.Context, ifStmt ast.NodeID) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Invert 'if' statement")
	b := d.Edit
	cond, then, els := t.Child(ifStmt, ast.IfCondition), t.Child(ifStmt, ast.IfThen), t.Child(ifStmt, ast.IfElse)
	b.Replace(cond, newNegator(cx, b).negate(cond))
	newThen := b.MoveTarget(els)
	if t.Kind(els) == ast.KindIf {
		newThen = b.Block(newThen)
	}
	b.Replace(then, newThen)
	b.Replace(els, b.MoveTarget(then))
	return single(d)
}

func matchIfReturnToIfElse(cx *correction.Context) (ast.NodeID, bool) {
	t := cx.Tree
	st, ok := coveringIf(cx)
	if !ok || hasElse(t, st) || !endsWithExit(t, t.Child(st, ast.IfThen)) {
		return ast.NoNodeID, false
	}
	rest, _ := elseStatements(t, st)
	return st, len(rest) > 0
}

// elseStatements returns the statements following ifStmt that become its
// else branch. A bare return closing a method body is not carried over and
// comes back as tail.
func elseStatements(t *ast.Tree, ifStmt ast.NodeID) (rest []ast.NodeID, tail ast.NodeID) {
	rest = query.FollowingStatements(t, ifStmt)
	if len(rest) == 0 || t.Location(t.Parent(ifStmt)) != ast.MethodBody {
		return rest, ast.NoNodeID
	}
	last := rest[len(rest)-1]
	if t.Kind(last) == ast.KindReturn && t.Child(last, ast.ReturnExpr) == ast.NoNodeID {
		return rest[:len(rest)-1], last
	}
	return rest, ast.NoNodeID
}

func ifReturnToIfElse(cx *correction.Context, ifStmt ast.NodeID) []*correction.Draft {
	d := cx.NewDraft("Convert to 'if-else'")
	b := d.Edit
	rest, tail := elseStatements(cx.Tree, ifStmt)
	b.Set(ifStmt, ast.IfElse, b.Block(moves(b, rest)...))
	if tail != ast.NoNodeID {
		b.Remove(tail)
	}
	return single(d)
}

// loopBlock returns the loop whose body block directly holds stmt.
func loopBlock(t *ast.Tree, stmt ast.NodeID) (blk, loop ast.NodeID) {
	blk = t.Parent(stmt)
	if t.Kind(blk) != ast.KindBlock {
		return ast.NoNodeID, ast.NoNodeID
	}
	switch t.Location(blk) {
	case ast.WhileBody, ast.ForBody, ast.DoBody:
		return blk, t.Parent(blk)
	}
	return ast.NoNodeID, ast.NoNodeID
}

func isPlainContinue(t *ast.Tree, stmt ast.NodeID) bool {
	return t.Kind(stmt) == ast.KindContinue && t.Child(stmt, ast.ContinueLabel) == ast.NoNodeID
}

func matchInverseIfContinue(cx *correction.Context) (ast.NodeID, bool) {
	t := cx.Tree
	st, ok := coveringIf(cx)
	if !ok || hasElse(t, st) || !isPlainContinue(t, query.SingleStatement(t, t.Child(st, ast.IfThen))) {
		return ast.NoNodeID, false
	}
	_, loop := loopBlock(t, st)
	return st, loop != ast.NoNodeID
}

func inverseIfContinue(cx *correction.Context, ifStmt ast.NodeID) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Invert 'if' statement and remove 'continue'")
	b := d.Edit
	cond := newNegator(cx, b).negate(t.Child(ifStmt, ast.IfCondition))
	rest := b.Block(moves(b, query.FollowingStatements(t, ifStmt))...)
	b.Replace(ifStmt, b.If(cond, rest, ast.NoNodeID))
	return single(d)
}

func matchInverseIfToContinue(cx *correction.Context) (ast.NodeID, bool) {
	t := cx.Tree
	st, ok := coveringIf(cx)
	if !ok || hasElse(t, st) {
		return ast.NoNodeID, false
	}
	switch t.Location(st) {
	case ast.WhileBody, ast.ForBody:
		return st, true
	}
	blk, loop := loopBlock(t, st)
	if loop == ast.NoNodeID || t.Kind(loop) == ast.KindDo {
		return ast.NoNodeID, false
	}
	stmts := t.List(blk, ast.BlockStatements)
	return st, stmts[len(stmts)-1] == st
}

func inverseIfToContinue(cx *correction.Context, ifStmt ast.NodeID) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Invert 'if' statement and add 'continue'")
	b := d.Edit
	guard := b.If(newNegator(cx, b).negate(t.Child(ifStmt, ast.IfCondition)), b.Continue(), ast.NoNodeID)
	body := moves(b, query.Statements(t, t.Child(ifStmt, ast.IfThen)))
	if !inStatementList(t, ifStmt) {
		b.Replace(ifStmt, b.Block(append([]ast.NodeID{guard}, body...)...))
		return single(d)
	}
	b.Replace(ifStmt, guard)
	for _, s := range body {
		b.InsertLast(t.Parent(ifStmt), ast.BlockStatements, s)
	}
	return single(d)
}

// innerIf returns the if that forms the whole then branch of outer, both
// without else.
func innerIf(t *ast.Tree, outer ast.NodeID) ast.NodeID {
	if t.Kind(outer) != ast.KindIf || hasElse(t, outer) {
		return ast.NoNodeID
	}
	s := query.SingleStatement(t, t.Child(outer, ast.IfThen))
	if t.Kind(s) != ast.KindIf || hasElse(t, s) {
		return ast.NoNodeID
	}
	return s
}

type nestedIfs struct{ outer, inner ast.NodeID }

func matchNestedIfs(cx *correction.Context) (nestedIfs, bool) {
	t := cx.Tree
	st, ok := coveringIf(cx)
	if !ok {
		return nestedIfs{}, false
	}
	if inner := innerIf(t, st); inner != ast.NoNodeID {
		return nestedIfs{st, inner}, true
	}
	outer := t.Parent(st)
	if t.Kind(outer) == ast.KindBlock {
		outer = t.Parent(outer)
	}
	if innerIf(t, outer) == st {
		return nestedIfs{outer, st}, true
	}
	return nestedIfs{}, false
}

func joinAndIfs(cx *correction.Context, m nestedIfs) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Join 'if' statements with '&&'")
	b := d.Edit
	cond := joinOperands(b, token.AndAnd, []ast.NodeID{
		b.CopyTarget(t.Child(m.outer, ast.IfCondition)),
		b.CopyTarget(t.Child(m.inner, ast.IfCondition)),
	})
	b.Replace(m.outer, b.If(cond, b.MoveTarget(t.Child(m.inner, ast.IfThen)), ast.NoNodeID))
	return single(d)
}

func exchangeInnerOuterIf(cx *correction.Context, m nestedIfs) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Exchange inner and outer 'if' conditions")
	b := d.Edit
	oc, ic := t.Child(m.outer, ast.IfCondition), t.Child(m.inner, ast.IfCondition)
	b.Replace(oc, b.MoveTarget(ic))
	b.Replace(ic, b.MoveTarget(oc))
	return single(d)
}

type conditionSplit struct {
	ifStmt ast.NodeID
	leaves []ast.NodeID
	at     int
}

// matchConditionSplit finds the operator op under the caret in the
// condition of an if without else; the condition splits before the first
// operand right of it.
func matchConditionSplit(op token.Kind) func(*correction.Context) (conditionSplit, bool) {
	return func(cx *correction.Context) (conditionSplit, bool) {
		t := cx.Tree
		sel := cx.Covering()
		if n := t.Node(sel); n == nil || n.Kind != ast.KindInfix || n.Op != op {
			return conditionSplit{}, false
		}
		top := sel
		for p := t.Parent(top); t.Kind(p) == ast.KindInfix && t.Node(p).Op == op; p = t.Parent(p) {
			top = p
		}
		if t.Location(top) != ast.IfCondition || hasElse(t, t.Parent(top)) {
			return conditionSplit{}, false
		}
		leaves := flatten(t, top, op)
		first := flatten(t, t.Child(sel, ast.InfixRight), op)[0]
		for i, l := range leaves {
			if l == first {
				return conditionSplit{ifStmt: t.Parent(top), leaves: leaves, at: i}, true
			}
		}
		return conditionSplit{}, false
	}
}

func splitAndCondition(cx *correction.Context, m conditionSplit) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Split '&&' condition")
	b := d.Edit
	then := t.Child(m.ifStmt, ast.IfThen)
	b.Replace(t.Child(m.ifStmt, ast.IfCondition), joinOperands(b, token.AndAnd, copies(b, m.leaves[:m.at])))
	inner := b.If(joinOperands(b, token.AndAnd, copies(b, m.leaves[m.at:])), b.MoveTarget(then), ast.NoNodeID)
	b.Replace(then, b.Block(inner))
	return single(d)
}

func splitOrCondition(cx *correction.Context, m conditionSplit) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Split '||' condition")
	b := d.Edit
	then := t.Child(m.ifStmt, ast.IfThen)
	b.Replace(t.Child(m.ifStmt, ast.IfCondition), joinOperands(b, token.OrOr, copies(b, m.leaves[:m.at])))
	els := b.If(joinOperands(b, token.OrOr, copies(b, m.leaves[m.at:])), b.CopyTarget(then), ast.NoNodeID)
	b.Set(m.ifStmt, ast.IfElse, els)
	return single(d)
}

// selectedIfs returns the selected sibling ifs, at least two.
func selectedIfs(cx *correction.Context) ([]ast.NodeID, bool) {
	t := cx.Tree
	nodes := coveredNodes(cx)
	if len(nodes) < 2 {
		return nil, false
	}
	for _, n := range nodes {
		if t.Kind(n) != ast.KindIf || !inStatementList(t, n) {
			return nil, false
		}
	}
	return nodes, true
}

func matchJoinOrIfs(cx *correction.Context) ([]ast.NodeID, bool) {
	t := cx.Tree
	ifs, ok := selectedIfs(cx)
	if !ok {
		return nil, false
	}
	first := t.Child(ifs[0], ast.IfThen)
	for _, s := range ifs {
		if hasElse(t, s) || !query.SameText(t, first, t.Child(s, ast.IfThen)) {
			return nil, false
		}
	}
	return ifs, true
}

func joinOrIfs(cx *correction.Context, ifs []ast.NodeID) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Join 'if' statements with '||'")
	b := d.Edit
	conds := make([]ast.NodeID, len(ifs))
	for i, s := range ifs {
		conds[i] = b.CopyTarget(t.Child(s, ast.IfCondition))
	}
	b.Replace(ifs[0], b.If(joinOperands(b, token.OrOr, conds), b.MoveTarget(t.Child(ifs[0], ast.IfThen)), ast.NoNodeID))
	for _, s := range ifs[1:] {
		b.Remove(s)
	}
	return single(d)
}

func matchJoinIfSequence(cx *correction.Context) ([]ast.NodeID, bool) {
	t := cx.Tree
	ifs, ok := selectedIfs(cx)
	if !ok {
		return nil, false
	}
	for _, s := range ifs[:len(ifs)-1] {
		if hasElse(t, s) || !endsWithExit(t, t.Child(s, ast.IfThen)) {
			return nil, false
		}
	}
	return ifs, true
}

func joinIfSequence(cx *correction.Context, ifs []ast.NodeID) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Convert to 'if-else-if' chain")
	b := d.Edit
	chain := ast.NoNodeID
	if els := t.Child(ifs[len(ifs)-1], ast.IfElse); els != ast.NoNodeID {
		chain = b.MoveTarget(els)
	}
	for i := len(ifs) - 1; i >= 0; i-- {
		s := ifs[i]
		chain = b.If(b.MoveTarget(t.Child(s, ast.IfCondition)), b.MoveTarget(t.Child(s, ast.IfThen)), chain)
	}
	b.Replace(ifs[0], chain)
	for _, s := range ifs[1:] {
		b.Remove(s)
	}
	return single(d)
}

type toConditional struct {
	ifStmt     ast.NodeID
	thenValue  ast.NodeID
	elseValue  ast.NodeID
	assignment ast.NodeID // the then-branch assignment, NoNodeID for returns
}

func matchIfElseToConditional(cx *correction.Context) (toConditional, bool) {
	t := cx.Tree
	st, ok := coveringIf(cx)
	if !ok || !hasElse(t, st) {
		return toConditional{}, false
	}
	ts := query.SingleStatement(t, t.Child(st, ast.IfThen))
	es := query.SingleStatement(t, t.Child(st, ast.IfElse))
	switch {
	case is(t, ts, ast.KindReturn) && is(t, es, ast.KindReturn):
		tv, ev := t.Child(ts, ast.ReturnExpr), t.Child(es, ast.ReturnExpr)
		return toConditional{ifStmt: st, thenValue: tv, elseValue: ev},
			tv != ast.NoNodeID && ev != ast.NoNodeID
	case is(t, ts, ast.KindExprStmt) && is(t, es, ast.KindExprStmt):
		ta, ea := t.Child(ts, ast.ExprStmtExpr), t.Child(es, ast.ExprStmtExpr)
		if !is(t, ta, ast.KindAssign) || !is(t, ea, ast.KindAssign) || t.Node(ta).Op != t.Node(ea).Op {
			return toConditional{}, false
		}
		if !query.SameText(t, t.Child(ta, ast.AssignLHS), t.Child(ea, ast.AssignLHS)) {
			return toConditional{}, false
		}
		return toConditional{
			ifStmt:     st,
			thenValue:  t.Child(ta, ast.AssignRHS),
			elseValue:  t.Child(ea, ast.AssignRHS),
			assignment: ta,
		}, true
	}
	return toConditional{}, false
}

func ifElseToConditional(cx *correction.Context, m toConditional) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Replace 'if-else' with conditional")
	b := d.Edit
	value := conditional(b,
		b.MoveTarget(t.Child(m.ifStmt, ast.IfCondition)),
		b.MoveTarget(m.thenValue),
		b.MoveTarget(m.elseValue))
	if m.assignment == ast.NoNodeID {
		b.Replace(m.ifStmt, b.Return(value))
		return single(d)
	}
	op := t.Node(m.assignment).Op
	b.Replace(m.ifStmt, b.ExprStmt(b.Assign(op, b.MoveTarget(t.Child(m.assignment, ast.AssignLHS)), value)))
	return single(d)
}
