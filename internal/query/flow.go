package query

import (
	"mend/internal/ast"
	"mend/internal/token"
)

// CanCompleteNormally is a conservative reachability check: false only when
// control provably never reaches the end of stmt.
func CanCompleteNormally(t *ast.Tree, stmt ast.NodeID) bool {
	switch t.Kind(stmt) {
	case ast.KindReturn, ast.KindThrow, ast.KindBreak, ast.KindContinue:
		return false
	case ast.KindBlock:
		for _, s := range t.List(stmt, ast.BlockStatements) {
			if !CanCompleteNormally(t, s) {
				return false
			}
		}
		return true
	case ast.KindIf:
		els := t.Child(stmt, ast.IfElse)
		if els == ast.NoNodeID {
			return true
		}
		return CanCompleteNormally(t, t.Child(stmt, ast.IfThen)) || CanCompleteNormally(t, els)
	case ast.KindWhile:
		return !isTrueLiteral(t, t.Child(stmt, ast.WhileCondition)) || HasBreakFor(t, stmt)
	case ast.KindDo:
		if isTrueLiteral(t, t.Child(stmt, ast.DoCondition)) {
			return HasBreakFor(t, stmt)
		}
		return true
	case ast.KindFor:
		cond := t.Child(stmt, ast.ForCondition)
		if cond == ast.NoNodeID || isTrueLiteral(t, cond) {
			return HasBreakFor(t, stmt)
		}
		return true
	case ast.KindTry:
		if fin := t.Child(stmt, ast.TryFinally); fin != ast.NoNodeID && !CanCompleteNormally(t, fin) {
			return false
		}
		if CanCompleteNormally(t, t.Child(stmt, ast.TryBody)) {
			return true
		}
		for _, c := range t.List(stmt, ast.TryCatches) {
			if CanCompleteNormally(t, t.Child(c, ast.CatchBody)) {
				return true
			}
		}
		return false
	case ast.KindSwitch:
		return switchCanComplete(t, stmt)
	default:
		return true
	}
}

// switchCanComplete: a switch completes unless it has a default, no break,
// and its last group cannot complete.
func switchCanComplete(t *ast.Tree, sw ast.NodeID) bool {
	stmts := t.List(sw, ast.SwitchStatements)
	hasDefault := false
	for _, s := range stmts {
		if t.Kind(s) == ast.KindSwitchCase && t.Child(s, ast.CaseExpr) == ast.NoNodeID {
			hasDefault = true
		}
	}
	if !hasDefault || HasBreakFor(t, sw) || len(stmts) == 0 {
		return true
	}
	return CanCompleteNormally(t, stmts[len(stmts)-1]) || t.Kind(stmts[len(stmts)-1]) == ast.KindSwitchCase
}

func isTrueLiteral(t *ast.Tree, expr ast.NodeID) bool {
	n := t.Node(SkipParens(t, expr))
	return n != nil && n.Kind == ast.KindLiteral && n.Op == token.KwTrue
}

// HasBreakFor reports whether an unlabeled break inside target exits it.
func HasBreakFor(t *ast.Tree, target ast.NodeID) bool {
	found := false
	for _, c := range t.Children(target) {
		t.Walk(c, func(id ast.NodeID, n *ast.Node) ast.Action {
			switch n.Kind {
			case ast.KindWhile, ast.KindDo, ast.KindFor, ast.KindSwitch, ast.KindTypeDecl:
				return ast.SkipChildren
			case ast.KindBreak:
				if t.Child(id, ast.BreakLabel) == ast.NoNodeID {
					found = true
					return ast.Stop
				}
			}
			return ast.Continue
		})
		if found {
			return true
		}
	}
	return false
}

// EndsWithJump reports whether the last statement of stmt (a block or a single
// statement) is a return, throw, break or continue.
func EndsWithJump(t *ast.Tree, stmt ast.NodeID) bool {
	stmts := Statements(t, stmt)
	if len(stmts) == 0 {
		return false
	}
	switch t.Kind(stmts[len(stmts)-1]) {
	case ast.KindReturn, ast.KindThrow, ast.KindBreak, ast.KindContinue:
		return true
	}
	return false
}
