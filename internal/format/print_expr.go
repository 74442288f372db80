package format

import (
	"fmt"

	"mend/internal/ast"
)

// operator returns the spelling of an operator node: the source spelling
// when one was kept (=== in JavaScript), else the token text.
func operator(n *ast.Node) string {
	if n.Text != "" {
		return n.Text
	}
	return n.Op.String()
}

func (p *printer) expression(id ast.NodeID, n *ast.Node) {
	t := p.tree
	w := p.w
	switch n.Kind {
	case ast.KindName, ast.KindLiteral, ast.KindOpaqueExpr:
		w.WriteString(n.Text)
	case ast.KindThis:
		w.WriteString("this")
	case ast.KindQualifiedName:
		p.child(id, ast.QualifiedQualifier)
		w.WriteByte('.')
		p.child(id, ast.QualifiedNameName)
	case ast.KindParen:
		w.WriteByte('(')
		p.child(id, ast.ParenExpr)
		w.WriteByte(')')
	case ast.KindInfix:
		p.child(id, ast.InfixLeft)
		w.WriteByte(' ')
		w.WriteString(operator(n))
		w.WriteByte(' ')
		p.child(id, ast.InfixRight)
	case ast.KindPrefix:
		w.WriteString(operator(n))
		p.child(id, ast.PrefixOperand)
	case ast.KindPostfix:
		p.child(id, ast.PostfixOperand)
		w.WriteString(operator(n))
	case ast.KindAssign:
		p.child(id, ast.AssignLHS)
		w.WriteByte(' ')
		w.WriteString(operator(n))
		w.WriteByte(' ')
		p.child(id, ast.AssignRHS)
	case ast.KindConditional:
		p.child(id, ast.CondCondition)
		w.WriteString(" ? ")
		p.child(id, ast.CondThen)
		w.WriteString(" : ")
		p.child(id, ast.CondElse)
	case ast.KindInstanceOf:
		p.child(id, ast.InstanceOfExpr)
		w.WriteString(" instanceof ")
		p.child(id, ast.InstanceOfType)
	case ast.KindCast:
		w.WriteByte('(')
		p.child(id, ast.CastType)
		w.WriteString(") ")
		p.child(id, ast.CastExpr)
	case ast.KindCall:
		if recv := t.Child(id, ast.CallReceiver); recv != ast.NoNodeID {
			p.node(recv)
			w.WriteByte('.')
		}
		p.child(id, ast.CallName)
		w.WriteByte('(')
		p.list(id, ast.CallArgs, ", ")
		w.WriteByte(')')
	case ast.KindFieldAccess:
		p.child(id, ast.FieldAccessReceiver)
		w.WriteByte('.')
		p.child(id, ast.FieldAccessName)
	case ast.KindArrayAccess:
		p.child(id, ast.ArrayAccessArray)
		w.WriteByte('[')
		p.child(id, ast.ArrayAccessIndex)
		w.WriteByte(']')
	case ast.KindNew:
		w.WriteString("new ")
		p.child(id, ast.NewType)
		w.WriteByte('(')
		p.list(id, ast.NewArgs, ", ")
		w.WriteByte(')')
	case ast.KindNewArray:
		w.WriteString("new ")
		p.newArray(id)
	case ast.KindArrayInit:
		w.WriteByte('{')
		if len(t.List(id, ast.ArrayInitElements)) > 0 {
			w.WriteByte(' ')
			p.list(id, ast.ArrayInitElements, ", ")
			w.WriteByte(' ')
		}
		w.WriteByte('}')
	default:
		p.fail(fmt.Errorf("format: cannot print expression %s", n.Kind))
	}
}

// newArray prints the element type with one bracket pair per dimension
// expression; any remaining array levels of the type print as empty pairs.
func (p *printer) newArray(id ast.NodeID) {
	t := p.tree
	w := p.w
	typ := t.Child(id, ast.NewArrayType)
	dims := t.List(id, ast.NewArrayDims)
	elem := typ
	var levels int
	for t.Kind(elem) == ast.KindArrayType {
		elem = t.Child(elem, ast.ArrayTypeElem)
		levels++
	}
	if len(dims) == 0 {
		p.node(typ)
	} else {
		p.node(elem)
		for _, d := range dims {
			w.WriteByte('[')
			p.node(d)
			w.WriteByte(']')
		}
		for range levels - len(dims) {
			w.WriteString("[]")
		}
	}
	if init := t.Child(id, ast.NewArrayInit); init != ast.NoNodeID {
		w.WriteByte(' ')
		p.node(init)
	}
}
