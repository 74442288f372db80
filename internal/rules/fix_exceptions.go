package rules

import (
	"fmt"

	"mend/internal/ast"
	"mend/internal/correction"
	"mend/internal/linked"
	"mend/internal/query"
	"mend/internal/symbols"
)

type unhandled struct {
	at  ast.NodeID
	typ *symbols.Type
}

func matchUnhandled(cx *correction.Context) (unhandled, bool) {
	if !cx.HasBindings() || cx.Problem == nil {
		return unhandled{}, false
	}
	at := problemNode(cx)
	typ := typeNamed(cx, cx.Problem.Arg(0))
	if at == ast.NoNodeID || typ == nil {
		return unhandled{}, false
	}
	return unhandled{at: at, typ: typ}, true
}

func matchAddThrows(cx *correction.Context) (unhandled, bool) {
	m, ok := matchUnhandled(cx)
	if !ok || query.FindEnclosingMethod(cx.Tree, m.at) == ast.NoNodeID {
		return unhandled{}, false
	}
	return m, true
}

func addThrows(cx *correction.Context, m unhandled) []*correction.Draft {
	d := cx.NewDraft("Add throws declaration")
	b := d.Edit
	b.InsertLast(query.FindEnclosingMethod(cx.Tree, m.at), ast.MethodThrows, b.Type(m.typ))
	return single(d)
}

// exceptionName picks the catch variable name, e unless taken.
func exceptionName(cx *correction.Context, at ast.NodeID) string {
	used := query.UsedVariableNames(cx.Tree, cx.Resolver, at)
	name := "e"
	for i := 1; used[name]; i++ {
		name = fmt.Sprintf("e%d", i)
	}
	return name
}

type surround struct {
	unhandled
	stmt ast.NodeID
}

func matchSurroundTryCatch(cx *correction.Context) (surround, bool) {
	t := cx.Tree
	m, ok := matchUnhandled(cx)
	if !ok || query.FindEnclosingMethod(t, m.at) == ast.NoNodeID {
		return surround{}, false
	}
	stmt := query.FindEnclosingStatement(t, m.at)
	if !inStatementList(t, stmt) || t.Kind(stmt) == ast.KindSwitchCase {
		return surround{}, false
	}
	// объявление, видимое дальше по блоку, нельзя прятать в try
	if t.Kind(stmt) == ast.KindLocalVarDecl {
		for _, frag := range t.List(stmt, ast.LocalFragments) {
			if sym := cx.Resolver.DeclaredBy(frag); len(cx.Resolver.References(sym)) > 0 {
				return surround{}, false
			}
		}
	}
	return surround{unhandled: m, stmt: stmt}, true
}

func surroundTryCatch(cx *correction.Context, m surround) []*correction.Draft {
	d := cx.NewDraft("Surround with try/catch")
	b := d.Edit
	name := exceptionName(cx, m.stmt)
	handler := b.StringPlaceholder(fmt.Sprintf("throw new RuntimeException(%s);", name), ast.KindThrow)
	body := b.Block(handler)
	try := b.Try(b.Block(b.MoveTarget(m.stmt)), []ast.NodeID{b.Catch(b.Type(m.typ), name, body)}, ast.NoNodeID)
	b.Replace(m.stmt, try)
	d.Linked.SetEnd(handler, linked.After)
	return single(d)
}

type catchTarget struct {
	unhandled
	try ast.NodeID
}

func matchAddCatchClause(cx *correction.Context) (catchTarget, bool) {
	t := cx.Tree
	m, ok := matchUnhandled(cx)
	if !ok {
		return catchTarget{}, false
	}
	for cur := m.at; cur != ast.NoNodeID; cur = t.Parent(cur) {
		if t.Kind(cur).IsBodyDeclaration() {
			break
		}
		if t.Location(cur) == ast.TryBody {
			return catchTarget{unhandled: m, try: t.Parent(cur)}, true
		}
	}
	return catchTarget{}, false
}

func addCatchClause(cx *correction.Context, m catchTarget) []*correction.Draft {
	d := cx.NewDraft(fmt.Sprintf("Add catch clause for '%s'", m.typ))
	b := d.Edit
	body := b.Block()
	b.InsertLast(m.try, ast.TryCatches, b.Catch(b.Type(m.typ), exceptionName(cx, m.at), body))
	d.Linked.SetEnd(body, linked.Inside)
	return single(d)
}

func matchUnreachableCatch(cx *correction.Context) (ast.NodeID, bool) {
	t := cx.Tree
	for cur := problemNode(cx); cur != ast.NoNodeID; cur = t.Parent(cur) {
		if t.Kind(cur) == ast.KindCatch {
			return cur, true
		}
		if t.Kind(cur).IsStatement() {
			break
		}
	}
	return ast.NoNodeID, false
}

func matchRemoveThrown(cx *correction.Context) (ast.NodeID, bool) {
	id := problemNode(cx)
	return id, id != ast.NoNodeID && cx.Tree.Location(id) == ast.MethodThrows
}

func removeThrown(cx *correction.Context, id ast.NodeID) []*correction.Draft {
	d := cx.NewDraft(fmt.Sprintf("Remove '%s' from method throws", text(cx.Tree, id)))
	d.Edit.Remove(id)
	return single(d)
}
