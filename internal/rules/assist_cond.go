package rules

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"mend/internal/ast"
	"mend/internal/correction"
	"mend/internal/query"
	"mend/internal/symbols"
	"mend/internal/token"
)

func matchInverseCondition(cx *correction.Context) ([]ast.NodeID, bool) {
	var out []ast.NodeID
	for _, n := range coveredNodes(cx) {
		if isBoolean(cx, n) {
			out = append(out, n)
		}
	}
	return out, len(out) > 0
}

func inverseCondition(cx *correction.Context, exprs []ast.NodeID) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Invert conditions")
	b := d.Edit
	neg := newNegator(cx, b)
	for _, e := range exprs {
		b.Replace(e, fit(b, t, e, neg.negate(e)))
	}
	return single(d)
}

func matchInverseConditional(cx *correction.Context) (ast.NodeID, bool) {
	return found(enclosingExpression(cx, func(id ast.NodeID) bool {
		return cx.Tree.Kind(id) == ast.KindConditional
	}))
}

func inverseConditional(cx *correction.Context, c ast.NodeID) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Invert conditional expression")
	b := d.Edit
	cond, then, els := t.Child(c, ast.CondCondition), t.Child(c, ast.CondThen), t.Child(c, ast.CondElse)
	b.Replace(cond, fit(b, t, cond, newNegator(cx, b).negate(cond)))
	b.Replace(then, b.MoveTarget(els))
	b.Replace(els, b.MoveTarget(then))
	return single(d)
}

func matchPushNegationDown(cx *correction.Context) (ast.NodeID, bool) {
	t := cx.Tree
	return found(enclosingExpression(cx, func(id ast.NodeID) bool {
		n := t.Node(id)
		if n.Kind != ast.KindPrefix || n.Op != token.Bang {
			return false
		}
		operand := t.Child(id, ast.PrefixOperand)
		return t.Kind(operand) == ast.KindParen && t.Kind(query.SkipParens(t, operand)) != ast.KindInstanceOf
	}))
}

func pushNegationDown(cx *correction.Context, not ast.NodeID) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Push negation down")
	b := d.Edit
	inner := query.SkipParens(t, t.Child(not, ast.PrefixOperand))
	b.Replace(not, fit(b, t, not, newNegator(cx, b).negate(inner)))
	return single(d)
}

func isJunction(t *ast.Tree, id ast.NodeID) bool {
	n := t.Node(id)
	return n != nil && n.Kind == ast.KindInfix && (n.Op == token.AndAnd || n.Op == token.OrOr)
}

func matchPullNegationUp(cx *correction.Context) (ast.NodeID, bool) {
	t := cx.Tree
	e := selectedExpression(cx)
	if e == ast.NoNodeID {
		e = cx.Covering()
	}
	return e, isJunction(t, e)
}

func pullNegationUp(cx *correction.Context, e ast.NodeID) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Pull negation up")
	b := d.Edit
	b.Replace(e, fit(b, t, e, b.Prefix(token.Bang, b.Paren(newNegator(cx, b).negate(e)))))
	return single(d)
}

var commutative = map[token.Kind]bool{
	token.Star:   true,
	token.EqEq:   true,
	token.BangEq: true,
	token.AndAnd: true,
	token.OrOr:   true,
	token.Amp:    true,
	token.Pipe:   true,
	token.Caret:  true,
}

func matchExchangeOperands(cx *correction.Context) (ast.NodeID, bool) {
	t := cx.Tree
	e := cx.Covering()
	n := t.Node(e)
	if n == nil || n.Kind != ast.KindInfix {
		return ast.NoNodeID, false
	}
	if _, ok := mirrored[n.Op]; ok || commutative[n.Op] {
		return e, true
	}
	if n.Op == token.Plus {
		// сложение строк не коммутативно
		l, r := cx.TypeOf(t.Child(e, ast.InfixLeft)), cx.TypeOf(t.Child(e, ast.InfixRight))
		return e, l.IsNumeric() && r.IsNumeric()
	}
	return ast.NoNodeID, false
}

func exchangeOperands(cx *correction.Context, e ast.NodeID) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Exchange operands")
	b := d.Edit
	n := t.Node(e)
	op := n.Op
	if m, ok := mirrored[op]; ok {
		op = m
	}
	swapped := b.Infix(op,
		b.Operand(op, b.MoveTarget(t.Child(e, ast.InfixRight)), false),
		b.Operand(op, b.MoveTarget(t.Child(e, ast.InfixLeft)), true))
	if n.Op == op {
		b.Tree().Mutable(swapped).Text = n.Text
	}
	b.Replace(e, swapped)
	return single(d)
}

func matchInvertEquals(cx *correction.Context) (ast.NodeID, bool) {
	t := cx.Tree
	return found(enclosingExpression(cx, func(id ast.NodeID) bool {
		if t.Kind(id) != ast.KindCall {
			return false
		}
		name := text(t, t.Child(id, ast.CallName))
		if name != "equals" && name != "equalsIgnoreCase" {
			return false
		}
		recv := t.Child(id, ast.CallReceiver)
		args := t.List(id, ast.CallArgs)
		if !t.Kind(recv).IsExpression() || len(args) != 1 {
			return false
		}
		arg := t.Node(query.SkipParens(t, args[0]))
		return arg.Kind != ast.KindLiteral || arg.Op != token.KwNull
	}))
}

func invertEquals(cx *correction.Context, call ast.NodeID) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Invert equals")
	b := d.Edit
	recv := query.SkipParens(t, t.Child(call, ast.CallReceiver))
	arg := query.SkipParens(t, t.List(call, ast.CallArgs)[0])
	inverted := b.Call(b.ParenthesizeIfRequired(b.MoveTarget(arg), ast.PrecPostfix),
		text(t, t.Child(call, ast.CallName)), b.MoveTarget(recv))
	b.Replace(call, inverted)
	return single(d)
}

type booleanLocal struct {
	frag ast.NodeID
	sym  *symbols.Symbol
	refs []ast.NodeID
}

func matchInverseBooleanVariable(cx *correction.Context) (booleanLocal, bool) {
	t := cx.Tree
	if !cx.HasBindings() {
		return booleanLocal{}, false
	}
	name := cx.Covering()
	if t.Location(name) != ast.FragmentName {
		return booleanLocal{}, false
	}
	frag := t.Parent(name)
	sym := cx.Resolver.DeclaredBy(frag)
	if t.Kind(t.Parent(frag)) != ast.KindLocalVarDecl || sym == nil || !sym.Type.IsBoolean() {
		return booleanLocal{}, false
	}
	refs := slices.Clone(cx.Resolver.References(sym))
	for _, r := range refs {
		if !query.IsWriteAccess(t, r) {
			continue
		}
		assign := t.Parent(r)
		if t.Kind(assign) != ast.KindAssign || t.Node(assign).Op != token.Assign || t.Kind(t.Parent(assign)) != ast.KindExprStmt {
			return booleanLocal{}, false
		}
	}
	slices.SortFunc(refs, func(a, b ast.NodeID) int { return int(t.Span(a).Start) - int(t.Span(b).Start) })
	return booleanLocal{frag: frag, sym: sym, refs: refs}, true
}

func invertedName(name string) string {
	if len(name) > 3 && strings.HasPrefix(name, "not") && unicode.IsUpper(rune(name[3])) {
		return strings.ToLower(name[3:4]) + name[4:]
	}
	return "not" + strings.ToUpper(name[:1]) + name[1:]
}

func inverseBooleanVariable(cx *correction.Context, m booleanLocal) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft(fmt.Sprintf("Invert local variable '%s'", m.sym.Name))
	b := d.Edit

	newName := invertedName(m.sym.Name)
	used := query.UsedVariableNames(t, cx.Resolver, m.frag)
	for i := 2; used[newName]; i++ {
		newName = fmt.Sprintf("%s%d", invertedName(m.sym.Name), i)
	}

	isRef := make(map[ast.NodeID]bool, len(m.refs))
	for _, r := range m.refs {
		isRef[r] = true
	}
	handled := make(map[ast.NodeID]bool)
	var names []ast.NodeID
	rename := func() ast.NodeID {
		id := b.Name(newName)
		names = append(names, id)
		return id
	}
	neg := newNegator(cx, b)
	neg.subst = func(id ast.NodeID, negated bool) (ast.NodeID, bool) {
		if n := t.Node(id); n.Kind == ast.KindPrefix && n.Op == token.Bang && isRef[t.Child(id, ast.PrefixOperand)] {
			// !x читается как notX
			handled[t.Child(id, ast.PrefixOperand)] = true
			negated = !negated
		} else if isRef[id] {
			handled[id] = true
		} else {
			return ast.NoNodeID, false
		}
		if negated {
			return rename(), true
		}
		return b.Not(rename()), true
	}

	declName := b.Name(newName)
	b.Replace(t.Child(m.frag, ast.FragmentName), declName)
	var regions []ast.NodeID
	if init := t.Child(m.frag, ast.FragmentInit); init != ast.NoNodeID {
		b.Replace(init, neg.negate(init))
		regions = append(regions, init)
	}
	for _, r := range m.refs {
		if !query.IsWriteAccess(t, r) {
			continue
		}
		b.Replace(r, rename())
		rhs := t.Child(t.Parent(r), ast.AssignRHS)
		b.Replace(rhs, neg.negate(rhs))
		regions = append(regions, rhs)
	}
	inRegion := func(id ast.NodeID) bool {
		for _, reg := range regions {
			if t.IsAncestor(reg, id) {
				return true
			}
		}
		return false
	}
	for _, r := range m.refs {
		if handled[r] || query.IsWriteAccess(t, r) {
			continue
		}
		var repl ast.NodeID
		if inRegion(r) {
			repl = b.Name(newName)
		} else {
			repl = rename()
		}
		if parent := t.Parent(r); t.Kind(parent) == ast.KindPrefix && t.Node(parent).Op == token.Bang {
			b.Replace(parent, fit(b, t, parent, repl))
			continue
		}
		b.Replace(r, fit(b, t, r, b.Not(repl)))
	}
	linkName(d, "name", nil, declName, names...)
	return single(d)
}

type stringPick struct {
	lit        ast.NodeID
	start, end int // selection relative to the literal text
}

func escapedAt(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

func matchPickOutString(cx *correction.Context) (stringPick, bool) {
	t := cx.Tree
	lit := cx.Covering()
	n := t.Node(lit)
	if cx.Length == 0 || n == nil || n.Kind != ast.KindLiteral || n.Op != token.StringLit {
		return stringPick{}, false
	}
	sp := t.Span(lit)
	src := t.Text(lit)
	start, end := int(cx.Offset-sp.Start), int(cx.Offset+cx.Length-sp.Start)
	if start < 1 || end > len(src)-1 || start == 1 && end == len(src)-1 {
		return stringPick{}, false
	}
	if escapedAt(src, start) || escapedAt(src, end) {
		return stringPick{}, false
	}
	return stringPick{lit: lit, start: start, end: end}, true
}

func pickOutString(cx *correction.Context, m stringPick) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Pick out selected part of string")
	b := d.Edit
	src := t.Text(m.lit)
	quote := src[:1]
	part := func(s string) ast.NodeID { return b.Literal(token.StringLit, quote+s+quote) }
	var parts []ast.NodeID
	if pre := src[1:m.start]; pre != "" {
		parts = append(parts, part(pre))
	}
	mid := part(src[m.start:m.end])
	parts = append(parts, mid)
	if post := src[m.end : len(src)-1]; post != "" {
		parts = append(parts, part(post))
	}
	b.Replace(m.lit, fit(b, t, m.lit, joinOperands(b, token.Plus, parts)))
	d.Linked.Group("string").AddPosition(mid, true)
	return single(d)
}

type conditionalStmt struct {
	stmt, cond ast.NodeID
}

func matchConditionalToIfElse(cx *correction.Context) (conditionalStmt, bool) {
	t := cx.Tree
	st := coveringStatement(cx)
	var value ast.NodeID
	switch t.Kind(st) {
	case ast.KindExprStmt:
		if e := t.Child(st, ast.ExprStmtExpr); t.Kind(e) == ast.KindAssign {
			value = t.Child(e, ast.AssignRHS)
		}
	case ast.KindReturn:
		value = t.Child(st, ast.ReturnExpr)
	case ast.KindLocalVarDecl:
		frags := t.List(st, ast.LocalFragments)
		if len(frags) != 1 || !inStatementList(t, st) {
			break
		}
		if t.Lang == ast.LangJavaScript && t.Node(st).Mods.Has(ast.ModFinal) {
			break
		}
		value = t.Child(frags[0], ast.FragmentInit)
	}
	cond := query.SkipParens(t, value)
	if t.Kind(cond) != ast.KindConditional {
		return conditionalStmt{}, false
	}
	return conditionalStmt{stmt: st, cond: cond}, true
}

func conditionalToIfElse(cx *correction.Context, m conditionalStmt) []*correction.Draft {
	t := cx.Tree
	d := cx.NewDraft("Replace conditional with 'if-else'")
	b := d.Edit
	var branch func(v ast.NodeID) ast.NodeID
	switch t.Kind(m.stmt) {
	case ast.KindExprStmt:
		assign := t.Child(m.stmt, ast.ExprStmtExpr)
		op, lhs := t.Node(assign).Op, t.Child(assign, ast.AssignLHS)
		branch = func(v ast.NodeID) ast.NodeID {
			return b.ExprStmt(b.Assign(op, b.CopyTarget(lhs), b.MoveTarget(v)))
		}
	case ast.KindReturn:
		branch = func(v ast.NodeID) ast.NodeID { return b.Return(b.MoveTarget(v)) }
	default:
		frag := t.List(m.stmt, ast.LocalFragments)[0]
		name := text(t, t.Child(frag, ast.FragmentName))
		branch = func(v ast.NodeID) ast.NodeID {
			return b.ExprStmt(b.Assign(token.Assign, b.Name(name), b.MoveTarget(v)))
		}
	}
	ifStmt := b.If(b.MoveTarget(t.Child(m.cond, ast.CondCondition)),
		b.Block(branch(t.Child(m.cond, ast.CondThen))),
		b.Block(branch(t.Child(m.cond, ast.CondElse))))
	if t.Kind(m.stmt) == ast.KindLocalVarDecl {
		b.Remove(t.Child(t.List(m.stmt, ast.LocalFragments)[0], ast.FragmentInit))
		b.InsertAfter(m.stmt, ifStmt)
		return single(d)
	}
	b.Replace(m.stmt, ifStmt)
	return single(d)
}
