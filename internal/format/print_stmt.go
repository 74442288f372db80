package format

import (
	"fmt"

	"mend/internal/ast"
)

func (p *printer) statement(id ast.NodeID, n *ast.Node) {
	t := p.tree
	w := p.w
	switch n.Kind {
	case ast.KindBlock:
		w.WriteByte('{')
		p.lines(id, ast.BlockStatements, 1)
		w.WriteByte('}')
	case ast.KindLocalVarDecl:
		if typ := t.Child(id, ast.LocalType); typ != ast.NoNodeID {
			p.modifiers(n)
			p.node(typ)
		} else {
			// объявление без типа (JavaScript): ключевое слово в Text, const уже в нём
			w.WriteString(n.Text)
		}
		w.WriteByte(' ')
		p.list(id, ast.LocalFragments, ", ")
		if n.Loc != ast.ForInit {
			w.WriteByte(';')
		}
	case ast.KindExprStmt:
		p.child(id, ast.ExprStmtExpr)
		if n.Loc != ast.ForInit && n.Loc != ast.ForUpdates {
			w.WriteByte(';')
		}
	case ast.KindIf:
		w.WriteString("if (")
		p.child(id, ast.IfCondition)
		w.WriteString(") ")
		p.child(id, ast.IfThen)
		if els := t.Child(id, ast.IfElse); els != ast.NoNodeID {
			w.WriteString(" else ")
			p.node(els)
		}
	case ast.KindWhile:
		w.WriteString("while (")
		p.child(id, ast.WhileCondition)
		w.WriteString(") ")
		p.child(id, ast.WhileBody)
	case ast.KindDo:
		w.WriteString("do ")
		p.child(id, ast.DoBody)
		w.WriteString(" while (")
		p.child(id, ast.DoCondition)
		w.WriteString(");")
	case ast.KindFor:
		w.WriteString("for (")
		p.list(id, ast.ForInit, ", ")
		w.WriteString("; ")
		p.child(id, ast.ForCondition)
		w.WriteString("; ")
		p.list(id, ast.ForUpdates, ", ")
		w.WriteString(") ")
		p.child(id, ast.ForBody)
	case ast.KindSwitch:
		w.WriteString("switch (")
		p.child(id, ast.SwitchExpr)
		w.WriteString(") {")
		w.Newline()
		w.IndentPush()
		for _, s := range t.List(id, ast.SwitchStatements) {
			if t.Kind(s) != ast.KindSwitchCase {
				w.IndentPush()
				p.node(s)
				w.IndentPop()
			} else {
				p.node(s)
			}
			w.Newline()
		}
		w.IndentPop()
		w.WriteByte('}')
	case ast.KindSwitchCase:
		if e := t.Child(id, ast.CaseExpr); e != ast.NoNodeID {
			w.WriteString("case ")
			p.node(e)
			w.WriteByte(':')
		} else {
			w.WriteString("default:")
		}
	case ast.KindBreak, ast.KindContinue:
		kw, prop := "break", ast.BreakLabel
		if n.Kind == ast.KindContinue {
			kw, prop = "continue", ast.ContinueLabel
		}
		w.WriteString(kw)
		if label := t.Child(id, prop); label != ast.NoNodeID {
			w.WriteByte(' ')
			p.node(label)
		}
		w.WriteByte(';')
	case ast.KindReturn:
		w.WriteString("return")
		if e := t.Child(id, ast.ReturnExpr); e != ast.NoNodeID {
			w.WriteByte(' ')
			p.node(e)
		}
		w.WriteByte(';')
	case ast.KindThrow:
		w.WriteString("throw ")
		p.child(id, ast.ThrowExpr)
		w.WriteByte(';')
	case ast.KindTry:
		w.WriteString("try ")
		p.child(id, ast.TryBody)
		for _, c := range t.List(id, ast.TryCatches) {
			w.WriteByte(' ')
			p.node(c)
		}
		if fin := t.Child(id, ast.TryFinally); fin != ast.NoNodeID {
			w.WriteString(" finally ")
			p.node(fin)
		}
	case ast.KindCatch:
		w.WriteString("catch (")
		p.child(id, ast.CatchParam)
		w.WriteString(") ")
		p.child(id, ast.CatchBody)
	case ast.KindEmpty:
		w.WriteByte(';')
	case ast.KindOpaqueStmt:
		w.WriteString(n.Text)
	default:
		p.fail(fmt.Errorf("format: cannot print statement %s", n.Kind))
	}
}
