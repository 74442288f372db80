package rules

import (
	"fmt"

	"mend/internal/ast"
	"mend/internal/correction"
	"mend/internal/linked"
	"mend/internal/query"
	"mend/internal/rewrite"
)

var bodyProps = map[ast.Kind][]ast.Prop{
	ast.KindIf:    {ast.IfThen, ast.IfElse},
	ast.KindWhile: {ast.WhileBody},
	ast.KindFor:   {ast.ForBody},
	ast.KindDo:    {ast.DoBody},
}

var keywords = map[ast.Kind]string{
	ast.KindIf:    "if",
	ast.KindWhile: "while",
	ast.KindFor:   "for",
	ast.KindDo:    "do",
	ast.KindTry:   "try",
	ast.KindBlock: "block",
}

// wrappable reports whether a control statement body is a bare statement;
// an else-if is not.
func wrappable(t *ast.Tree, id ast.NodeID) bool {
	if id == ast.NoNodeID || t.Kind(id) == ast.KindBlock {
		return false
	}
	return !(t.Location(id) == ast.IfElse && t.Kind(id) == ast.KindIf)
}

// controlBody walks up from the selection to a control statement body
// accepted by ok. With the caret in a header (condition, keyword) the
// bodies of that statement are tried in order.
func controlBody(cx *correction.Context, ok func(ast.NodeID) bool) (ast.NodeID, bool) {
	t := cx.Tree
	from := ast.NoNodeID
	for cur := cx.Covering(); cur != ast.NoNodeID; from, cur = cur, t.Parent(cur) {
		k := t.Kind(cur)
		if k.IsBodyDeclaration() {
			break
		}
		if props, isControl := bodyProps[k]; isControl && (from == ast.NoNodeID || !query.IsBodySlot(t.Location(from))) {
			for _, p := range props {
				if c := t.Child(cur, p); ok(c) {
					return c, true
				}
			}
			break
		}
		if k.IsStatement() && query.IsBodySlot(t.Location(cur)) && ok(cur) {
			return cur, true
		}
		if k == ast.KindBlock {
			break
		}
	}
	return ast.NoNodeID, false
}

func matchAddBlock(cx *correction.Context) (ast.NodeID, bool) {
	return controlBody(cx, func(id ast.NodeID) bool { return wrappable(cx.Tree, id) })
}

func addBlock(cx *correction.Context, body ast.NodeID) []*correction.Draft {
	d := cx.NewDraft("Change body statement to block")
	b := d.Edit
	moved := b.MoveTarget(body)
	b.Replace(body, b.Block(moved))
	d.Linked.SetEnd(moved, linked.After)
	return single(d)
}

// chainTop climbs from an if to the first if of its else-if chain.
func chainTop(t *ast.Tree, stmt ast.NodeID) ast.NodeID {
	for t.Location(stmt) == ast.IfElse {
		stmt = t.Parent(stmt)
	}
	return stmt
}

func chainBranches(t *ast.Tree, top ast.NodeID) []ast.NodeID {
	var out []ast.NodeID
	for cur := top; cur != ast.NoNodeID; {
		if then := t.Child(cur, ast.IfThen); wrappable(t, then) {
			out = append(out, then)
		}
		els := t.Child(cur, ast.IfElse)
		if t.Kind(els) == ast.KindIf {
			cur = els
			continue
		}
		if wrappable(t, els) {
			out = append(out, els)
		}
		break
	}
	return out
}

func matchAddBlocksAll(cx *correction.Context) ([]ast.NodeID, bool) {
	t := cx.Tree
	ifStmt := query.FindEnclosing(t, cx.Covering(), func(id ast.NodeID) bool {
		return t.Kind(id) == ast.KindIf
	}, ast.KindBlock, ast.KindMethodDecl, ast.KindFieldDecl, ast.KindTypeDecl)
	if ifStmt == ast.NoNodeID {
		return nil, false
	}
	branches := chainBranches(t, chainTop(t, ifStmt))
	return branches, len(branches) > 1
}

func addBlocksAll(cx *correction.Context, branches []ast.NodeID) []*correction.Draft {
	d := cx.NewDraft("Change 'if-else' statements to blocks")
	b := d.Edit
	for _, br := range branches {
		b.Replace(br, b.Block(b.MoveTarget(br)))
	}
	return single(d)
}

// danglingIf reports whether stmt ends in an if without else that would take
// over an else following it.
func danglingIf(t *ast.Tree, stmt ast.NodeID) bool {
	switch t.Kind(stmt) {
	case ast.KindIf:
		els := t.Child(stmt, ast.IfElse)
		return els == ast.NoNodeID || danglingIf(t, els)
	case ast.KindWhile:
		return danglingIf(t, t.Child(stmt, ast.WhileBody))
	case ast.KindFor:
		return danglingIf(t, t.Child(stmt, ast.ForBody))
	}
	return false
}

func removableBlock(t *ast.Tree, blk ast.NodeID) bool {
	if t.Kind(blk) != ast.KindBlock || !query.IsBodySlot(t.Location(blk)) {
		return false
	}
	stmts := t.List(blk, ast.BlockStatements)
	if len(stmts) != 1 || is(t, stmts[0], ast.KindLocalVarDecl, ast.KindBlock) {
		return false
	}
	if t.Location(blk) == ast.IfThen && t.Child(t.Parent(blk), ast.IfElse) != ast.NoNodeID && danglingIf(t, stmts[0]) {
		return false
	}
	return true
}

func matchRemoveBlock(cx *correction.Context) (ast.NodeID, bool) {
	t := cx.Tree
	from := ast.NoNodeID
	for cur := cx.Covering(); cur != ast.NoNodeID; from, cur = cur, t.Parent(cur) {
		k := t.Kind(cur)
		if k.IsBodyDeclaration() {
			break
		}
		if props, isControl := bodyProps[k]; isControl && (from == ast.NoNodeID || !query.IsBodySlot(t.Location(from))) {
			for _, p := range props {
				if c := t.Child(cur, p); removableBlock(t, c) {
					return c, true
				}
			}
			break
		}
		if k == ast.KindBlock {
			return cur, removableBlock(t, cur)
		}
	}
	return ast.NoNodeID, false
}

func removeBlock(cx *correction.Context, blk ast.NodeID) []*correction.Draft {
	d := cx.NewDraft("Remove block")
	b := d.Edit
	stmt := cx.Tree.List(blk, ast.BlockStatements)[0]
	b.Replace(blk, b.MoveTarget(stmt))
	return single(d)
}

func matchAddElse(cx *correction.Context) (ast.NodeID, bool) {
	t := cx.Tree
	st := coveringStatement(cx)
	return st, t.Kind(st) == ast.KindIf && t.Child(st, ast.IfElse) == ast.NoNodeID
}

func addElse(cx *correction.Context, ifStmt ast.NodeID) []*correction.Draft {
	d := cx.NewDraft("Add 'else' block")
	blk := d.Edit.Block()
	d.Edit.Set(ifStmt, ast.IfElse, blk)
	d.Linked.SetEnd(blk, linked.Inside)
	return single(d)
}

func matchAddFinally(cx *correction.Context) (ast.NodeID, bool) {
	t := cx.Tree
	cov := cx.Covering()
	try := query.FindEnclosingTry(t, cov)
	if try == ast.NoNodeID || t.Child(try, ast.TryFinally) != ast.NoNodeID {
		return ast.NoNodeID, false
	}
	return try, cov == try || t.IsAncestor(t.Child(try, ast.TryBody), cov)
}

func addFinally(cx *correction.Context, try ast.NodeID) []*correction.Draft {
	d := cx.NewDraft("Add 'finally' block")
	blk := d.Edit.Block()
	d.Edit.Set(try, ast.TryFinally, blk)
	d.Linked.SetEnd(blk, linked.Inside)
	return single(d)
}

func matchUnwrap(cx *correction.Context) (ast.NodeID, bool) {
	t := cx.Tree
	cov := cx.Covering()
	switch t.Kind(cov) {
	case ast.KindIf:
		return cov, t.Child(cov, ast.IfElse) == ast.NoNodeID
	case ast.KindFor:
		return cov, len(t.List(cov, ast.ForInit)) == 0
	case ast.KindWhile, ast.KindDo, ast.KindTry:
		return cov, true
	case ast.KindBlock:
		return cov, query.IsStatementList(t.Location(cov))
	}
	return ast.NoNodeID, false
}

func unwrappedBody(t *ast.Tree, stmt ast.NodeID) []ast.NodeID {
	switch t.Kind(stmt) {
	case ast.KindIf:
		return query.Statements(t, t.Child(stmt, ast.IfThen))
	case ast.KindWhile:
		return query.Statements(t, t.Child(stmt, ast.WhileBody))
	case ast.KindFor:
		return query.Statements(t, t.Child(stmt, ast.ForBody))
	case ast.KindDo:
		return query.Statements(t, t.Child(stmt, ast.DoBody))
	case ast.KindTry:
		body := query.Statements(t, t.Child(stmt, ast.TryBody))
		return append(body, query.Statements(t, t.Child(stmt, ast.TryFinally))...)
	case ast.KindBlock:
		return t.List(stmt, ast.BlockStatements)
	}
	return nil
}

// unwrapInto replaces stmt with the given statements of its own subtree.
func unwrapInto(b *rewrite.Builder, t *ast.Tree, stmt ast.NodeID, stmts []ast.NodeID) {
	if len(stmts) > 0 {
		replaceStatement(b, t, stmt, moves(b, stmts)...)
		return
	}
	if inStatementList(t, stmt) {
		b.Remove(stmt)
		return
	}
	b.Replace(stmt, b.Block())
}

func unwrap(cx *correction.Context, stmt ast.NodeID) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft(fmt.Sprintf("Remove surrounding '%s'", keywords[t.Kind(stmt)]))
	unwrapInto(d.Edit, t, stmt, unwrappedBody(t, stmt))
	return single(d)
}

// matchCatchClause finds the catch clause under the caret: on the clause
// header or its braces, not inside one of its statements.
func matchCatchClause(cx *correction.Context) (ast.NodeID, bool) {
	t := cx.Tree
	cov := cx.Covering()
	catch := query.FindEnclosing(t, cov, func(id ast.NodeID) bool {
		return t.Kind(id) == ast.KindCatch
	}, ast.KindMethodDecl, ast.KindFieldDecl, ast.KindTypeDecl)
	if catch == ast.NoNodeID {
		return ast.NoNodeID, false
	}
	st := query.FindEnclosingStatement(t, cov)
	return catch, st == t.Parent(catch) || st == t.Child(catch, ast.CatchBody)
}

// dropCatch removes a catch clause; the last clause of a try without
// finally takes the whole try with it.
func dropCatch(b *rewrite.Builder, t *ast.Tree, catch ast.NodeID) {
	try := t.Parent(catch)
	if len(t.List(try, ast.TryCatches)) == 1 && t.Child(try, ast.TryFinally) == ast.NoNodeID {
		unwrapInto(b, t, try, query.Statements(t, t.Child(try, ast.TryBody)))
		return
	}
	b.Remove(catch)
}

func removeCatch(cx *correction.Context, catch ast.NodeID) []*correction.Draft {
	d := cx.NewDraft("Remove catch clause")
	dropCatch(d.Edit, cx.Tree, catch)
	return single(d)
}

type catchToThrowsMatch struct {
	catch, method ast.NodeID
}

func matchCatchToThrows(cx *correction.Context) (catchToThrowsMatch, bool) {
	t := cx.Tree
	if !cx.HasBindings() {
		return catchToThrowsMatch{}, false
	}
	catch, ok := matchCatchClause(cx)
	if !ok {
		return catchToThrowsMatch{}, false
	}
	method := query.FindEnclosingMethod(t, catch)
	if method == ast.NoNodeID {
		return catchToThrowsMatch{}, false
	}
	typ := cx.TypeOf(t.Child(t.Child(catch, ast.CatchParam), ast.ParamType))
	if typ == nil {
		return catchToThrowsMatch{}, false
	}
	u := cx.Universe()
	for _, thrown := range t.List(method, ast.MethodThrows) {
		if u.IsSubtype(typ, cx.TypeOf(thrown)) {
			return catchToThrowsMatch{}, false
		}
	}
	return catchToThrowsMatch{catch: catch, method: method}, true
}

func catchToThrows(cx *correction.Context, m catchToThrowsMatch) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Replace catch clause with throws")
	b := d.Edit
	typ := cx.TypeOf(t.Child(t.Child(m.catch, ast.CatchParam), ast.ParamType))
	b.InsertLast(m.method, ast.MethodThrows, b.Type(typ))
	dropCatch(b, t, m.catch)
	return single(d)
}
