package sema

import (
	"strconv"
	"strings"

	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/query"
	"mend/internal/symbols"
	"mend/internal/token"
)

// call resolves a method invocation by name, arity and argument types.
func (c *checker) call(id ast.NodeID) *symbols.Type {
	t := c.tree
	recv := t.Child(id, ast.CallReceiver)
	nameID := t.Child(id, ast.CallName)
	name := t.Node(nameID).Text

	var (
		candidates []*symbols.Symbol
		owner      *symbols.Symbol
		isType     bool
	)
	if recv == ast.NoNodeID {
		candidates, owner = c.lookupMethods(name)
	} else {
		rt := c.expr(recv)
		switch {
		case rt == nil:
			c.args(id)
			return nil
		case rt.IsArray():
			owner = c.u.Object.Class
		case rt.IsClass():
			owner = rt.Class
		default:
			c.args(id)
			c.report(diag.SemUndefinedMethod, nameID, name, rt.String())
			return nil
		}
		isType = c.unit.typeRefs[query.SkipParens(t, recv)]
		candidates = owner.LookupMethods(name)
	}
	argTypes := c.args(id)
	if len(candidates) == 0 {
		c.report(diag.SemUndefinedMethod, nameID, name, owner.Name)
		return nil
	}
	m := c.selectMethod(candidates, argTypes)
	if m == nil {
		c.report(diag.SemParameterMismatch, nameID, name, owner.Name)
		return nil
	}
	c.table.Bind(nameID, m)
	c.table.Bind(id, m)
	c.unit.reads[m]++

	switch {
	case recv == ast.NoNodeID || t.Kind(recv) == ast.KindThis:
		if c.static && !m.IsStatic() && m.DeclaringClass() != nil && symbols.IsSubclass(c.class, m.DeclaringClass()) {
			c.report(diag.SemNonStaticMethodFromStatic, nameID, m.Name)
		}
	case isType && !m.IsStatic():
		c.report(diag.SemNonStaticMethodFromStatic, nameID, m.Name)
	case !isType && m.IsStatic():
		c.report(diag.SemStaticAccessViaInstance, nameID, m.Name, m.DeclaringClass().Name)
	}
	if !c.accessible(m) {
		c.report(diag.SemNotVisibleMethod, nameID, m.Signature(), m.DeclaringClass().Name)
	}
	for _, exc := range m.Throws {
		c.raise(exc, id)
	}
	return m.Type
}

func (c *checker) newExpr(id ast.NodeID) *symbols.Type {
	t := c.tree
	typeNode := t.Child(id, ast.NewType)
	typ := c.types.resolve(typeNode)
	argTypes := c.args(id)
	if typ == nil || !typ.IsClass() {
		return typ
	}
	ctors := typ.Class.Constructors()
	if len(ctors) == 0 {
		// у встроенных классов без объявленных конструкторов проверять нечего
		return typ
	}
	m := c.selectMethod(ctors, argTypes)
	if m == nil {
		c.report(diag.SemUndefinedConstructor, typeNode, typ.Class.Name)
		return typ
	}
	c.table.Bind(id, m)
	c.unit.reads[m]++
	for _, exc := range m.Throws {
		c.raise(exc, id)
	}
	return typ
}

// args checks the arguments of a Call or New and returns their types.
func (c *checker) args(id ast.NodeID) []*symbols.Type {
	prop := ast.CallArgs
	if c.tree.Kind(id) == ast.KindNew {
		prop = ast.NewArgs
	}
	list := c.tree.List(id, prop)
	out := make([]*symbols.Type, len(list))
	for i, a := range list {
		out[i] = c.expr(a)
	}
	return out
}

// selectMethod picks the applicable candidate whose parameters are assignable
// to every other applicable candidate's; ties go to declaration order.
func (c *checker) selectMethod(candidates []*symbols.Symbol, args []*symbols.Type) *symbols.Symbol {
	var applicable []*symbols.Symbol
	for _, m := range candidates {
		if c.applicable(m, args) {
			applicable = append(applicable, m)
		}
	}
	if len(applicable) == 0 {
		return nil
	}
	for _, m := range applicable {
		best := true
		for _, other := range applicable {
			if other != m && !c.moreSpecific(m, other) {
				best = false
				break
			}
		}
		if best {
			return m
		}
	}
	return applicable[0]
}

func (c *checker) applicable(m *symbols.Symbol, args []*symbols.Type) bool {
	params := m.Params
	if m.IsVarargs() && len(params) > 0 {
		fixed := len(params) - 1
		if len(args) < fixed {
			return false
		}
		for i := range fixed {
			if !c.argFits(args[i], params[i].Type) {
				return false
			}
		}
		last := params[fixed].Type
		if len(args) == len(params) && c.argFits(args[fixed], last) {
			return true
		}
		for _, a := range args[fixed:] {
			if !c.argFits(a, last.ElementType()) {
				return false
			}
		}
		return true
	}
	if len(args) != len(params) {
		return false
	}
	for i, a := range args {
		if !c.argFits(a, params[i].Type) {
			return false
		}
	}
	return true
}

// argFits treats unknown argument types as fitting to avoid cascades.
func (c *checker) argFits(arg, param *symbols.Type) bool {
	return arg == nil || param == nil || c.u.AssignableTo(arg, param)
}

func (c *checker) moreSpecific(a, b *symbols.Symbol) bool {
	if len(a.Params) != len(b.Params) {
		return !a.IsVarargs()
	}
	for i := range a.Params {
		if !c.argFits(a.Params[i].Type, b.Params[i].Type) {
			return false
		}
	}
	return true
}

// constantInt evaluates int and char literals, optionally negated.
func constantInt(t *ast.Tree, id ast.NodeID) (int64, bool) {
	n := t.Node(id)
	if n == nil {
		return 0, false
	}
	switch n.Kind {
	case ast.KindPrefix:
		if n.Op != token.Minus {
			return 0, false
		}
		v, ok := constantInt(t, query.SkipParens(t, t.Child(id, ast.PrefixOperand)))
		return -v, ok
	case ast.KindLiteral:
		switch n.Op {
		case token.IntLit:
			text := strings.ReplaceAll(n.Text, "_", "")
			v, err := strconv.ParseInt(text, 0, 64)
			if err != nil {
				return 0, false
			}
			return v, true
		case token.CharLit:
			s, err := strconv.Unquote(n.Text)
			if err != nil {
				return 0, false
			}
			r := []rune(s)
			if len(r) != 1 {
				return 0, false
			}
			return int64(r[0]), true
		}
	}
	return 0, false
}
