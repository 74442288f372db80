package ast

import "strings"

// Dump renders the subtree at id as an S-expression, for tests and `--debug` output.
func (t *Tree) Dump(id NodeID) string {
	var b strings.Builder
	t.dump(&b, id)
	return b.String()
}

func (t *Tree) dump(b *strings.Builder, id NodeID) {
	n := t.Node(id)
	if n == nil {
		b.WriteString("nil")
		return
	}
	b.WriteByte('(')
	b.WriteString(n.Kind.String())
	switch n.Kind {
	case KindInfix, KindPrefix, KindPostfix, KindAssign:
		b.WriteByte(' ')
		b.WriteString(n.Op.String())
	}
	if n.Text != "" {
		b.WriteByte(' ')
		b.WriteString(n.Text)
	}
	if n.Mods != 0 {
		b.WriteString(" [")
		b.WriteString(n.Mods.String())
		b.WriteByte(']')
	}
	for _, c := range t.Children(id) {
		b.WriteByte(' ')
		t.dump(b, c)
	}
	b.WriteByte(')')
}
