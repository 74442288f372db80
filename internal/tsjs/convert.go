package tsjs

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"mend/internal/ast"
	"mend/internal/source"
	"mend/internal/token"
)

type converter struct {
	file *source.File
	src  []byte
	tree *ast.Tree
}

var binaryOps = map[string]token.Kind{
	"+": token.Plus, "-": token.Minus, "*": token.Star, "/": token.Slash, "%": token.Percent,
	"==": token.EqEq, "!=": token.BangEq, "===": token.EqEq, "!==": token.BangEq,
	"<": token.Lt, "<=": token.LtEq, ">": token.Gt, ">=": token.GtEq,
	"<<": token.Shl, ">>": token.Shr, ">>>": token.Ushr,
	"&": token.Amp, "|": token.Pipe, "^": token.Caret, "&&": token.AndAnd, "||": token.OrOr,
}

var assignOps = map[string]token.Kind{
	"=": token.Assign, "+=": token.PlusAssign, "-=": token.MinusAssign, "*=": token.StarAssign,
	"/=": token.SlashAssign, "%=": token.PercentAssign, "&=": token.AmpAssign, "|=": token.PipeAssign,
	"^=": token.CaretAssign, "<<=": token.ShlAssign, ">>=": token.ShrAssign, ">>>=": token.UshrAssign,
}

var prefixOps = map[string]token.Kind{
	"!": token.Bang, "-": token.Minus, "+": token.Plus, "~": token.Tilde,
	"++": token.PlusPlus, "--": token.MinusMinus,
}

func (c *converter) span(n *sitter.Node) source.Span {
	return source.Span{File: c.file.ID, Start: n.StartByte(), End: n.EndByte()}
}

func (c *converter) text(n *sitter.Node) string {
	return n.Content(c.src)
}

func (c *converter) node(kind ast.Kind, n *sitter.Node) ast.NodeID {
	return c.tree.NewNode(kind, c.span(n))
}

func (c *converter) leaf(kind ast.Kind, op token.Kind, n *sitter.Node) ast.NodeID {
	id := c.node(kind, n)
	nd := c.tree.Mutable(id)
	nd.Text = c.text(n)
	nd.Op = op
	return id
}

func (c *converter) set(parent ast.NodeID, p ast.Prop, child ast.NodeID) {
	if child != ast.NoNodeID {
		c.tree.Set(parent, p, child)
	}
}

func (c *converter) append(parent ast.NodeID, p ast.Prop, child ast.NodeID) {
	if child != ast.NoNodeID {
		c.tree.Append(parent, p, child)
	}
}

// noMods marks a declaration without modifier keywords.
func (c *converter) noMods(id ast.NodeID) {
	nd := c.tree.Mutable(id)
	nd.ModsSpan = source.Span{File: c.file.ID, Start: nd.Span.Start, End: nd.Span.Start}
}

// named returns the named children of n, comments excluded.
func named(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		if ch.Type() == "comment" || ch.Type() == "hash_bang_line" {
			continue
		}
		out = append(out, ch)
	}
	return out
}

func firstNamed(n *sitter.Node) *sitter.Node {
	if kids := named(n); len(kids) > 0 {
		return kids[0]
	}
	return nil
}

func hasChild(n *sitter.Node, typ string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == typ {
			return true
		}
	}
	return false
}

func same(a, b *sitter.Node) bool {
	return a != nil && b != nil && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// program maps the whole file onto a brace-less block so top-level
// statements sit in a statement list like function bodies do.
func (c *converter) program(n *sitter.Node) ast.NodeID {
	id := c.tree.NewNode(ast.KindBlock, source.Span{File: c.file.ID, Start: 0, End: c.file.Len()})
	for _, ch := range named(n) {
		c.append(id, ast.BlockStatements, c.statement(ch))
	}
	return id
}

func (c *converter) opaqueStmt(n *sitter.Node) ast.NodeID {
	id := c.leaf(ast.KindOpaqueStmt, token.Invalid, n)
	if n.IsError() || n.HasError() {
		c.tree.Mutable(id).Flags |= ast.FlagRecovered
	}
	return id
}

func (c *converter) opaqueExpr(n *sitter.Node) ast.NodeID {
	id := c.leaf(ast.KindOpaqueExpr, token.Invalid, n)
	if n.IsError() || n.HasError() {
		c.tree.Mutable(id).Flags |= ast.FlagRecovered
	}
	return id
}

func (c *converter) statement(n *sitter.Node) ast.NodeID {
	if n == nil {
		return ast.NoNodeID
	}
	switch n.Type() {
	case "statement_block":
		return c.block(n)
	case "expression_statement":
		id := c.node(ast.KindExprStmt, n)
		c.set(id, ast.ExprStmtExpr, c.expression(firstNamed(n)))
		return id
	case "lexical_declaration", "variable_declaration":
		return c.declaration(n)
	case "if_statement":
		return c.ifStatement(n)
	case "while_statement":
		id := c.node(ast.KindWhile, n)
		c.set(id, ast.WhileCondition, c.condition(n.ChildByFieldName("condition")))
		c.set(id, ast.WhileBody, c.statement(n.ChildByFieldName("body")))
		return id
	case "do_statement":
		id := c.node(ast.KindDo, n)
		c.set(id, ast.DoBody, c.statement(n.ChildByFieldName("body")))
		c.set(id, ast.DoCondition, c.condition(n.ChildByFieldName("condition")))
		return id
	case "for_statement":
		return c.forStatement(n)
	case "switch_statement":
		return c.switchStatement(n)
	case "break_statement", "continue_statement":
		kind, prop := ast.KindBreak, ast.BreakLabel
		if n.Type() == "continue_statement" {
			kind, prop = ast.KindContinue, ast.ContinueLabel
		}
		id := c.node(kind, n)
		if label := n.ChildByFieldName("label"); label != nil {
			c.set(id, prop, c.leaf(ast.KindName, token.Ident, label))
		}
		return id
	case "return_statement":
		id := c.node(ast.KindReturn, n)
		c.set(id, ast.ReturnExpr, c.expression(firstNamed(n)))
		return id
	case "throw_statement":
		id := c.node(ast.KindThrow, n)
		c.set(id, ast.ThrowExpr, c.expression(firstNamed(n)))
		return id
	case "try_statement":
		return c.tryStatement(n)
	case "empty_statement":
		return c.node(ast.KindEmpty, n)
	case "function_declaration", "generator_function_declaration":
		return c.function(n)
	case "class_declaration":
		return c.class(n)
	default:
		return c.opaqueStmt(n)
	}
}

func (c *converter) block(n *sitter.Node) ast.NodeID {
	if n == nil {
		return ast.NoNodeID
	}
	if n.Type() != "statement_block" {
		return c.statement(n)
	}
	id := c.node(ast.KindBlock, n)
	for _, ch := range named(n) {
		c.append(id, ast.BlockStatements, c.statement(ch))
	}
	return id
}

// condition unwraps the parentheses around a statement condition.
func (c *converter) condition(n *sitter.Node) ast.NodeID {
	if n == nil {
		return ast.NoNodeID
	}
	if n.Type() == "parenthesized_expression" {
		if inner := firstNamed(n); inner != nil {
			return c.expression(inner)
		}
	}
	return c.expression(n)
}

func (c *converter) ifStatement(n *sitter.Node) ast.NodeID {
	id := c.node(ast.KindIf, n)
	c.set(id, ast.IfCondition, c.condition(n.ChildByFieldName("condition")))
	c.set(id, ast.IfThen, c.statement(n.ChildByFieldName("consequence")))
	if alt := n.ChildByFieldName("alternative"); alt != nil {
		if alt.Type() == "else_clause" {
			alt = firstNamed(alt)
		}
		c.set(id, ast.IfElse, c.statement(alt))
	}
	return id
}

func (c *converter) forStatement(n *sitter.Node) ast.NodeID {
	id := c.node(ast.KindFor, n)
	if init := n.ChildByFieldName("initializer"); init != nil {
		switch init.Type() {
		case "lexical_declaration", "variable_declaration":
			c.append(id, ast.ForInit, c.declaration(init))
		case "expression_statement":
			c.append(id, ast.ForInit, c.statement(init))
		case "empty_statement":
		default:
			e := c.node(ast.KindExprStmt, init)
			c.set(e, ast.ExprStmtExpr, c.expression(init))
			c.append(id, ast.ForInit, e)
		}
	}
	if cond := n.ChildByFieldName("condition"); cond != nil {
		switch cond.Type() {
		case "expression_statement":
			c.set(id, ast.ForCondition, c.expression(firstNamed(cond)))
		case "empty_statement":
		default:
			c.set(id, ast.ForCondition, c.expression(cond))
		}
	}
	if inc := n.ChildByFieldName("increment"); inc != nil {
		e := c.node(ast.KindExprStmt, inc)
		c.set(e, ast.ExprStmtExpr, c.expression(inc))
		c.append(id, ast.ForUpdates, e)
	}
	c.set(id, ast.ForBody, c.statement(n.ChildByFieldName("body")))
	return id
}

// switchStatement flattens the case clauses into labels followed by their
// statements.
func (c *converter) switchStatement(n *sitter.Node) ast.NodeID {
	id := c.node(ast.KindSwitch, n)
	c.set(id, ast.SwitchExpr, c.condition(n.ChildByFieldName("value")))
	for _, clause := range named(n.ChildByFieldName("body")) {
		if clause.Type() != "switch_case" && clause.Type() != "switch_default" {
			c.append(id, ast.SwitchStatements, c.statement(clause))
			continue
		}
		value := clause.ChildByFieldName("value")
		end := clause.EndByte()
		for i := 0; i < int(clause.ChildCount()); i++ {
			if ch := clause.Child(i); ch.Type() == ":" {
				end = ch.EndByte()
				break
			}
		}
		label := c.tree.NewNode(ast.KindSwitchCase, source.Span{File: c.file.ID, Start: clause.StartByte(), End: end})
		if value != nil {
			c.set(label, ast.CaseExpr, c.expression(value))
		}
		c.append(id, ast.SwitchStatements, label)
		for _, st := range named(clause) {
			if same(st, value) {
				continue
			}
			c.append(id, ast.SwitchStatements, c.statement(st))
		}
	}
	return id
}

func (c *converter) tryStatement(n *sitter.Node) ast.NodeID {
	id := c.node(ast.KindTry, n)
	c.set(id, ast.TryBody, c.block(n.ChildByFieldName("body")))
	if h := n.ChildByFieldName("handler"); h != nil {
		cat := c.node(ast.KindCatch, h)
		if p := h.ChildByFieldName("parameter"); p != nil {
			c.set(cat, ast.CatchParam, c.param(p))
		}
		c.set(cat, ast.CatchBody, c.block(h.ChildByFieldName("body")))
		c.append(id, ast.TryCatches, cat)
	}
	if f := n.ChildByFieldName("finalizer"); f != nil {
		c.set(id, ast.TryFinally, c.block(f.ChildByFieldName("body")))
	}
	return id
}

// declaration maps let/const/var onto a typeless local declaration; the
// keyword is kept in Text and const becomes final.
func (c *converter) declaration(n *sitter.Node) ast.NodeID {
	decls := named(n)
	for _, d := range decls {
		if d.Type() != "variable_declarator" {
			return c.opaqueStmt(n)
		}
		if name := d.ChildByFieldName("name"); name == nil || name.Type() != "identifier" {
			return c.opaqueStmt(n)
		}
	}
	id := c.node(ast.KindLocalVarDecl, n)
	c.noMods(id)
	nd := c.tree.Mutable(id)
	if n.ChildCount() > 0 {
		nd.Text = n.Child(0).Type()
	}
	if nd.Text == "const" {
		nd.Mods = ast.ModFinal
	}
	for _, d := range decls {
		c.append(id, ast.LocalFragments, c.fragment(d, d.ChildByFieldName("name"), d.ChildByFieldName("value")))
	}
	return id
}

func (c *converter) fragment(n, name, value *sitter.Node) ast.NodeID {
	id := c.node(ast.KindVarFragment, n)
	c.set(id, ast.FragmentName, c.leaf(ast.KindName, token.Ident, name))
	if value != nil {
		c.set(id, ast.FragmentInit, c.expression(value))
	}
	return id
}

func (c *converter) param(n *sitter.Node) ast.NodeID {
	id := c.node(ast.KindParam, n)
	c.noMods(id)
	if n.Type() == "identifier" {
		c.set(id, ast.ParamName, c.leaf(ast.KindName, token.Ident, n))
	} else {
		c.tree.Mutable(id).Text = c.text(n)
	}
	return id
}

// function maps function declarations and class methods onto methods
// without a return type.
func (c *converter) function(n *sitter.Node) ast.NodeID {
	id := c.node(ast.KindMethodDecl, n)
	c.noMods(id)
	if name := n.ChildByFieldName("name"); name != nil {
		c.set(id, ast.MethodName, c.leaf(ast.KindName, token.Ident, name))
	}
	for _, p := range named(n.ChildByFieldName("parameters")) {
		c.append(id, ast.MethodParams, c.param(p))
	}
	c.set(id, ast.MethodBody, c.block(n.ChildByFieldName("body")))
	return id
}

func (c *converter) class(n *sitter.Node) ast.NodeID {
	id := c.node(ast.KindTypeDecl, n)
	c.noMods(id)
	if name := n.ChildByFieldName("name"); name != nil {
		c.set(id, ast.TypeName, c.leaf(ast.KindName, token.Ident, name))
	}
	for _, ch := range named(n) {
		if ch.Type() != "class_heritage" {
			continue
		}
		if sup := firstNamed(ch); sup != nil && sup.Type() == "identifier" {
			st := c.node(ast.KindSimpleType, sup)
			c.set(st, ast.SimpleTypeName, c.leaf(ast.KindName, token.Ident, sup))
			c.set(id, ast.TypeSuperclass, st)
		}
	}
	for _, m := range named(n.ChildByFieldName("body")) {
		switch m.Type() {
		case "method_definition":
			c.append(id, ast.TypeBody, c.function(m))
		case "field_definition":
			c.append(id, ast.TypeBody, c.field(m))
		}
	}
	return id
}

func (c *converter) field(n *sitter.Node) ast.NodeID {
	id := c.node(ast.KindFieldDecl, n)
	c.noMods(id)
	if hasChild(n, "static") {
		c.tree.Mutable(id).Mods = ast.ModStatic
	}
	name := n.ChildByFieldName("property")
	if name == nil {
		return id
	}
	value := n.ChildByFieldName("value")
	end := name.EndByte()
	if value != nil {
		end = value.EndByte()
	}
	frag := c.tree.NewNode(ast.KindVarFragment, source.Span{File: c.file.ID, Start: name.StartByte(), End: end})
	c.set(frag, ast.FragmentName, c.leaf(ast.KindName, token.Ident, name))
	if value != nil {
		c.set(frag, ast.FragmentInit, c.expression(value))
	}
	c.append(id, ast.FieldFragments, frag)
	return id
}

func (c *converter) expression(n *sitter.Node) ast.NodeID {
	if n == nil {
		return ast.NoNodeID
	}
	switch n.Type() {
	case "identifier", "property_identifier", "shorthand_property_identifier",
		"private_property_identifier", "statement_identifier":
		return c.leaf(ast.KindName, token.Ident, n)
	case "number":
		kind := token.IntLit
		if txt := c.text(n); strings.ContainsAny(txt, ".eE") && !strings.HasPrefix(strings.ToLower(txt), "0x") {
			kind = token.DoubleLit
		}
		return c.leaf(ast.KindLiteral, kind, n)
	case "string":
		return c.leaf(ast.KindLiteral, token.StringLit, n)
	case "true":
		return c.leaf(ast.KindLiteral, token.KwTrue, n)
	case "false":
		return c.leaf(ast.KindLiteral, token.KwFalse, n)
	case "null":
		return c.leaf(ast.KindLiteral, token.KwNull, n)
	case "this":
		return c.node(ast.KindThis, n)
	case "parenthesized_expression":
		inner := firstNamed(n)
		if inner == nil {
			return c.opaqueExpr(n)
		}
		id := c.node(ast.KindParen, n)
		c.set(id, ast.ParenExpr, c.expression(inner))
		return id
	case "binary_expression":
		return c.binary(n)
	case "unary_expression":
		op, ok := prefixOps[c.operator(n)]
		if !ok {
			return c.opaqueExpr(n)
		}
		id := c.node(ast.KindPrefix, n)
		c.tree.Mutable(id).Op = op
		c.set(id, ast.PrefixOperand, c.expression(n.ChildByFieldName("argument")))
		return id
	case "update_expression":
		return c.update(n)
	case "assignment_expression", "augmented_assignment_expression":
		op := token.Assign
		if n.Type() == "augmented_assignment_expression" {
			var ok bool
			if op, ok = assignOps[c.operator(n)]; !ok {
				return c.opaqueExpr(n)
			}
		}
		left := n.ChildByFieldName("left")
		if left == nil || strings.HasSuffix(left.Type(), "_pattern") {
			return c.opaqueExpr(n)
		}
		id := c.node(ast.KindAssign, n)
		c.tree.Mutable(id).Op = op
		c.set(id, ast.AssignLHS, c.expression(left))
		c.set(id, ast.AssignRHS, c.expression(n.ChildByFieldName("right")))
		return id
	case "ternary_expression":
		id := c.node(ast.KindConditional, n)
		c.set(id, ast.CondCondition, c.expression(n.ChildByFieldName("condition")))
		c.set(id, ast.CondThen, c.expression(n.ChildByFieldName("consequence")))
		c.set(id, ast.CondElse, c.expression(n.ChildByFieldName("alternative")))
		return id
	case "call_expression":
		return c.call(n)
	case "member_expression":
		obj, prop := n.ChildByFieldName("object"), n.ChildByFieldName("property")
		if obj == nil || prop == nil || hasChild(n, "optional_chain") {
			return c.opaqueExpr(n)
		}
		id := c.node(ast.KindFieldAccess, n)
		c.set(id, ast.FieldAccessReceiver, c.expression(obj))
		c.set(id, ast.FieldAccessName, c.leaf(ast.KindName, token.Ident, prop))
		return id
	case "subscript_expression":
		obj, idx := n.ChildByFieldName("object"), n.ChildByFieldName("index")
		if obj == nil || idx == nil || hasChild(n, "optional_chain") {
			return c.opaqueExpr(n)
		}
		id := c.node(ast.KindArrayAccess, n)
		c.set(id, ast.ArrayAccessArray, c.expression(obj))
		c.set(id, ast.ArrayAccessIndex, c.expression(idx))
		return id
	case "new_expression":
		ctor, args := n.ChildByFieldName("constructor"), n.ChildByFieldName("arguments")
		if ctor == nil || args == nil || ctor.Type() != "identifier" {
			return c.opaqueExpr(n)
		}
		id := c.node(ast.KindNew, n)
		typ := c.node(ast.KindSimpleType, ctor)
		c.set(typ, ast.SimpleTypeName, c.leaf(ast.KindName, token.Ident, ctor))
		c.set(id, ast.NewType, typ)
		for _, a := range named(args) {
			c.append(id, ast.NewArgs, c.expression(a))
		}
		return id
	case "array":
		id := c.node(ast.KindArrayInit, n)
		for _, e := range named(n) {
			c.append(id, ast.ArrayInitElements, c.expression(e))
		}
		return id
	default:
		return c.opaqueExpr(n)
	}
}

func (c *converter) operator(n *sitter.Node) string {
	if op := n.ChildByFieldName("operator"); op != nil {
		return op.Type()
	}
	return ""
}

func (c *converter) binary(n *sitter.Node) ast.NodeID {
	spelling := c.operator(n)
	op, ok := binaryOps[spelling]
	if !ok {
		return c.opaqueExpr(n)
	}
	id := c.node(ast.KindInfix, n)
	nd := c.tree.Mutable(id)
	nd.Op = op
	if spelling == "===" || spelling == "!==" {
		nd.Text = spelling
	}
	c.set(id, ast.InfixLeft, c.expression(n.ChildByFieldName("left")))
	c.set(id, ast.InfixRight, c.expression(n.ChildByFieldName("right")))
	return id
}

func (c *converter) update(n *sitter.Node) ast.NodeID {
	arg, op := n.ChildByFieldName("argument"), n.ChildByFieldName("operator")
	if arg == nil || op == nil {
		return c.opaqueExpr(n)
	}
	kind, prop := ast.KindPostfix, ast.PostfixOperand
	if op.StartByte() < arg.StartByte() {
		kind, prop = ast.KindPrefix, ast.PrefixOperand
	}
	id := c.node(kind, n)
	c.tree.Mutable(id).Op = prefixOps[op.Type()]
	c.set(id, prop, c.expression(arg))
	return id
}

// call keeps plain and method calls; anything else (computed callees,
// optional calls, tagged templates) stays opaque.
func (c *converter) call(n *sitter.Node) ast.NodeID {
	fn, args := n.ChildByFieldName("function"), n.ChildByFieldName("arguments")
	if fn == nil || args == nil || args.Type() != "arguments" || hasChild(n, "optional_chain") {
		return c.opaqueExpr(n)
	}
	var recv, name *sitter.Node
	switch fn.Type() {
	case "identifier":
		name = fn
	case "member_expression":
		recv, name = fn.ChildByFieldName("object"), fn.ChildByFieldName("property")
		if recv == nil || name == nil || hasChild(fn, "optional_chain") {
			return c.opaqueExpr(n)
		}
	default:
		return c.opaqueExpr(n)
	}
	id := c.node(ast.KindCall, n)
	if recv != nil {
		c.set(id, ast.CallReceiver, c.expression(recv))
	}
	c.set(id, ast.CallName, c.leaf(ast.KindName, token.Ident, name))
	for _, a := range named(args) {
		c.append(id, ast.CallArgs, c.expression(a))
	}
	return id
}
