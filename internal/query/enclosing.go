package query

import "mend/internal/ast"

// FindEnclosing walks from id (inclusive) towards the root and returns the
// first node satisfying pred. The walk gives up with NoNodeID when it would
// leave a node whose kind is listed in boundaries.
func FindEnclosing(t *ast.Tree, id ast.NodeID, pred func(ast.NodeID) bool, boundaries ...ast.Kind) ast.NodeID {
	for cur := id; cur != ast.NoNodeID; cur = t.Parent(cur) {
		if pred(cur) {
			return cur
		}
		k := t.Kind(cur)
		for _, b := range boundaries {
			if k == b {
				return ast.NoNodeID
			}
		}
	}
	return ast.NoNodeID
}

var bodyDeclarationKinds = []ast.Kind{ast.KindMethodDecl, ast.KindFieldDecl, ast.KindTypeDecl}

func isKind(t *ast.Tree, kinds ...ast.Kind) func(ast.NodeID) bool {
	return func(id ast.NodeID) bool {
		k := t.Kind(id)
		for _, want := range kinds {
			if k == want {
				return true
			}
		}
		return false
	}
}

// FindEnclosingStatement returns the closest statement containing id
// (id itself when it is one) without crossing a body declaration.
func FindEnclosingStatement(t *ast.Tree, id ast.NodeID) ast.NodeID {
	return FindEnclosing(t, id, func(c ast.NodeID) bool {
		return t.Kind(c).IsStatement()
	}, bodyDeclarationKinds...)
}

// FindEnclosingBodyDeclaration returns the closest method, field or class declaration.
func FindEnclosingBodyDeclaration(t *ast.Tree, id ast.NodeID) ast.NodeID {
	return FindEnclosing(t, id, isKind(t, bodyDeclarationKinds...))
}

// FindEnclosingMethod returns the method declaring id, NoNodeID in field initializers.
func FindEnclosingMethod(t *ast.Tree, id ast.NodeID) ast.NodeID {
	return FindEnclosing(t, id, isKind(t, ast.KindMethodDecl), ast.KindTypeDecl, ast.KindFieldDecl)
}

// FindEnclosingType returns the closest class declaration.
func FindEnclosingType(t *ast.Tree, id ast.NodeID) ast.NodeID {
	return FindEnclosing(t, id, isKind(t, ast.KindTypeDecl))
}

// FindEnclosingTry returns the closest try statement inside the current body declaration.
func FindEnclosingTry(t *ast.Tree, id ast.NodeID) ast.NodeID {
	return FindEnclosing(t, id, isKind(t, ast.KindTry), bodyDeclarationKinds...)
}

// FindEnclosingLoop returns the closest while/do/for inside the current body declaration.
func FindEnclosingLoop(t *ast.Tree, id ast.NodeID) ast.NodeID {
	return FindEnclosing(t, id, func(c ast.NodeID) bool {
		return t.Kind(c).IsLoop()
	}, bodyDeclarationKinds...)
}

// FindEnclosingBlockDeclaration returns the closest node that owns a statement
// list or a scope: Block, For, Catch, Switch or MethodDecl.
func FindEnclosingBlockDeclaration(t *ast.Tree, id ast.NodeID) ast.NodeID {
	return FindEnclosing(t, t.Parent(id), isKind(t, ast.KindBlock, ast.KindFor, ast.KindCatch,
		ast.KindSwitch, ast.KindMethodDecl), ast.KindTypeDecl, ast.KindFieldDecl)
}

// IsInStaticContext reports whether code at id cannot refer to `this`.
func IsInStaticContext(t *ast.Tree, id ast.NodeID) bool {
	decl := FindEnclosingBodyDeclaration(t, id)
	switch t.Kind(decl) {
	case ast.KindMethodDecl, ast.KindFieldDecl:
		return t.Node(decl).Mods.Has(ast.ModStatic)
	default:
		return false
	}
}

// StatementSlot describes where a statement sits: the owner, the list
// property and the index. Index is -1 for single-valued slots (an if branch,
// a loop body).
type StatementSlot struct {
	Owner ast.NodeID
	Prop  ast.Prop
	Index int
}

// InList reports whether the statement lives in a statement list.
func (s StatementSlot) InList() bool { return s.Index >= 0 }

// SlotOf returns the slot of stmt in its parent.
func SlotOf(t *ast.Tree, stmt ast.NodeID) StatementSlot {
	return StatementSlot{Owner: t.Parent(stmt), Prop: t.Location(stmt), Index: t.IndexInList(stmt)}
}

// IsStatementList reports whether p holds a sequence of statements.
func IsStatementList(p ast.Prop) bool {
	return p == ast.BlockStatements || p == ast.SwitchStatements
}

// IsBodySlot reports whether p holds the single-statement body of a control statement.
func IsBodySlot(p ast.Prop) bool {
	switch p {
	case ast.IfThen, ast.IfElse, ast.WhileBody, ast.DoBody, ast.ForBody:
		return true
	default:
		return false
	}
}

// FollowingStatements returns the statements after stmt in its statement list.
func FollowingStatements(t *ast.Tree, stmt ast.NodeID) []ast.NodeID {
	slot := SlotOf(t, stmt)
	if !slot.InList() || !IsStatementList(slot.Prop) {
		return nil
	}
	return t.List(slot.Owner, slot.Prop)[slot.Index+1:]
}

// Statements returns stmt's statements if it is a block, else stmt itself.
func Statements(t *ast.Tree, stmt ast.NodeID) []ast.NodeID {
	if t.Kind(stmt) == ast.KindBlock {
		return t.List(stmt, ast.BlockStatements)
	}
	if stmt == ast.NoNodeID {
		return nil
	}
	return []ast.NodeID{stmt}
}

// SingleStatement unwraps a block holding exactly one statement.
func SingleStatement(t *ast.Tree, stmt ast.NodeID) ast.NodeID {
	if t.Kind(stmt) != ast.KindBlock {
		return stmt
	}
	if stmts := t.List(stmt, ast.BlockStatements); len(stmts) == 1 {
		return stmts[0]
	}
	return ast.NoNodeID
}

// SkipParens strips enclosing parentheses.
func SkipParens(t *ast.Tree, id ast.NodeID) ast.NodeID {
	for t.Kind(id) == ast.KindParen {
		id = t.Child(id, ast.ParenExpr)
	}
	return id
}

// OutermostParen returns the outermost parenthesized expression wrapping id.
func OutermostParen(t *ast.Tree, id ast.NodeID) ast.NodeID {
	for t.Kind(t.Parent(id)) == ast.KindParen {
		id = t.Parent(id)
	}
	return id
}
