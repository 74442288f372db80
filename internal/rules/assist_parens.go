package rules

import (
	"mend/internal/ast"
	"mend/internal/correction"
	"mend/internal/query"
	"mend/internal/rewrite"
	"mend/internal/source"
)

// parenChain is a run of nested parentheses around one expression,
// outermost first.
type parenChain struct {
	layers []ast.NodeID
	// keep is set when the expression needs one pair at its position.
	keep bool
}

func chainAt(t *ast.Tree, p ast.NodeID) parenChain {
	outer := query.OutermostParen(t, p)
	var layers []ast.NodeID
	for cur := outer; t.Kind(cur) == ast.KindParen; cur = t.Child(cur, ast.ParenExpr) {
		layers = append(layers, cur)
	}
	core := query.SkipParens(t, outer)
	return parenChain{layers: layers, keep: t.NeedsParentheses(core, limitAt(t, outer))}
}

func (c parenChain) removable() []ast.NodeID {
	if c.keep {
		return c.layers[:len(c.layers)-1]
	}
	return c.layers
}

func isParen(_ ast.NodeID, n *ast.Node) bool { return n.Kind == ast.KindParen }

func matchRemoveExtraParentheses(cx *correction.Context) ([]parenChain, bool) {
	t := cx.Tree
	var parens []ast.NodeID
	if cx.Length == 0 {
		p := enclosingExpression(cx, func(id ast.NodeID) bool { return t.Kind(id) == ast.KindParen })
		if p != ast.NoNodeID {
			parens = append(parens, p)
		}
	} else {
		for _, n := range coveredNodes(cx) {
			parens = append(parens, t.Collect(n, isParen)...)
		}
	}
	seen := make(map[ast.NodeID]bool)
	var out []parenChain
	for _, p := range parens {
		c := chainAt(t, p)
		if seen[c.layers[0]] || len(c.removable()) == 0 {
			continue
		}
		seen[c.layers[0]] = true
		out = append(out, c)
	}
	return out, len(out) > 0
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// glues reports whether a and b would lex as one token once adjacent.
func glues(a, b byte) bool {
	return isIdentByte(a) && isIdentByte(b) || a == b && (a == '+' || a == '-')
}

func byteAt(f *source.File, off uint32) byte {
	if f == nil || int(off) >= len(f.Content) {
		return 0
	}
	return f.Content[off]
}

func removeExtraParentheses(cx *correction.Context, chains []parenChain) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Remove extra parentheses")
	b := d.Edit
	for _, c := range chains {
		for i, p := range c.removable() {
			lead, trail := "", ""
			if i == 0 && !c.keep {
				// -(-a) не должно стать --a
				core := t.Text(query.SkipParens(t, p))
				sp := t.Span(p)
				if core != "" && sp.Start > 0 && glues(byteAt(t.File, sp.Start-1), core[0]) {
					lead = " "
				}
				if core != "" && glues(core[len(core)-1], byteAt(t.File, sp.End)) {
					trail = " "
				}
			}
			deleteParen(b, t.Span(p), lead, trail)
		}
	}
	return single(d)
}

func deleteParen(b *rewrite.Builder, sp source.Span, lead, trail string) {
	b.ReplaceText(source.Span{File: sp.File, Start: sp.Start, End: sp.Start + 1}, lead)
	b.ReplaceText(source.Span{File: sp.File, Start: sp.End - 1, End: sp.End}, trail)
}

// needsClarity reports whether id is an operand whose grouping relies on
// operator precedence alone.
func needsClarity(t *ast.Tree, id ast.NodeID) bool {
	n := t.Node(id)
	switch t.Location(id) {
	case ast.InfixLeft, ast.InfixRight:
		switch n.Kind {
		case ast.KindInstanceOf:
			return true
		case ast.KindInfix:
			return n.Op != t.Node(t.Parent(id)).Op
		}
	case ast.CondCondition:
		return n.Kind == ast.KindInfix || n.Kind == ast.KindInstanceOf
	}
	return false
}

func matchAddParanoidalParentheses(cx *correction.Context) ([]ast.NodeID, bool) {
	t := cx.Tree
	var out []ast.NodeID
	for _, n := range coveredNodes(cx) {
		out = append(out, t.Collect(n, func(id ast.NodeID, _ *ast.Node) bool { return needsClarity(t, id) })...)
	}
	return out, len(out) > 0
}

func addParanoidalParentheses(cx *correction.Context, exprs []ast.NodeID) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Add paranoiac parentheses")
	b := d.Edit
	for _, e := range exprs {
		sp := t.Span(e)
		b.InsertText(sp.Start, "(")
		b.InsertText(sp.End, ")")
	}
	return single(d)
}
