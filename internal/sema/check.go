package sema

import (
	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/query"
	"mend/internal/symbols"
)

// checker walks one body declaration (a method body or a field initializer).
type checker struct {
	unit  *Unit
	tree  *ast.Tree
	table *symbols.Table
	u     *symbols.Universe
	types typeResolver

	class  *symbols.Symbol
	method *symbols.Symbol // nil inside a field initializer
	static bool

	scopes   []scope
	handlers []*handlerFrame
	// thrown collects checked exceptions that escape to the method level.
	thrown []*symbols.Type
	flow   flowState
	jumps  []*jumpFrame
	locals []*symbols.Symbol
}

type scope struct {
	vars map[string]*symbols.Symbol
}

// handlerFrame is one try block being checked: its catch types and the
// exceptions its body may throw.
type handlerFrame struct {
	catches []*symbols.Type
	thrown  []*symbols.Type
}

func (u *Unit) checkBodies() {
	t := u.Tree
	for _, cls := range u.classes {
		for _, member := range t.List(cls.Decl.Node, ast.TypeBody) {
			switch t.Kind(member) {
			case ast.KindFieldDecl:
				u.checkFieldInits(cls, member)
			case ast.KindMethodDecl:
				if m := u.Table.DeclaredBy(member); m != nil {
					u.checkMethod(cls, m, member)
				}
			}
		}
	}
}

func (u *Unit) newChecker(cls, method *symbols.Symbol, static bool) *checker {
	return &checker{
		unit:   u,
		tree:   u.Tree,
		table:  u.Table,
		u:      u.prog.universe,
		types:  u.typeResolver(cls),
		class:  cls,
		method: method,
		static: static,
		flow:   newFlowState(),
	}
}

func (u *Unit) checkFieldInits(cls *symbols.Symbol, decl ast.NodeID) {
	t := u.Tree
	for _, frag := range t.List(decl, ast.FieldFragments) {
		init := t.Child(frag, ast.FragmentInit)
		if init == ast.NoNodeID {
			continue
		}
		f := u.Table.DeclaredBy(frag)
		if f == nil {
			continue
		}
		c := u.newChecker(cls, nil, f.IsStatic())
		c.pushScope()
		c.checkInitializer(init, f.Type)
		c.popScope()
	}
}

func (u *Unit) checkMethod(cls, m *symbols.Symbol, decl ast.NodeID) {
	t := u.Tree
	body := t.Child(decl, ast.MethodBody)
	if body == ast.NoNodeID {
		return
	}
	c := u.newChecker(cls, m, m.IsStatic())
	c.pushScope()
	for _, p := range m.Params {
		c.define(p)
	}
	c.block(body)
	c.popScope()

	if !m.IsConstructor() && m.Type != nil && !m.Type.IsVoid() && query.CanCompleteNormally(t, body) {
		u.reportAt(diag.SemMissingReturn, m.Decl.Name, m.Type.String())
	}
	if u.prog.opts.Lints {
		c.lintUnusedThrows(decl)
		c.lintUnusedLocals()
	}
}

func (c *checker) pushScope() {
	c.scopes = append(c.scopes, scope{vars: make(map[string]*symbols.Symbol)})
}

func (c *checker) popScope() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

func (c *checker) define(sym *symbols.Symbol) {
	c.scopes[len(c.scopes)-1].vars[sym.Name] = sym
}

// lookupLocal finds a local or parameter by name, innermost scope first.
func (c *checker) lookupLocal(name string) *symbols.Symbol {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if s, ok := c.scopes[i].vars[name]; ok {
			return s
		}
	}
	return nil
}

// lookupField finds a field through the class chain and then the lexically
// enclosing classes. viaOuter reports a hit outside the current class chain.
func (c *checker) lookupField(name string) (f *symbols.Symbol, viaOuter bool) {
	for cls := c.class; cls != nil; cls = outerClass(cls) {
		if f := cls.LookupField(name); f != nil {
			return f, cls != c.class
		}
	}
	return nil, false
}

func (c *checker) lookupMethods(name string) (ms []*symbols.Symbol, owner *symbols.Symbol) {
	for cls := c.class; cls != nil; cls = outerClass(cls) {
		if ms := cls.LookupMethods(name); len(ms) > 0 {
			return ms, cls
		}
	}
	return nil, c.class
}

func (c *checker) report(code diag.Code, at ast.NodeID, args ...string) {
	c.unit.reportAt(code, at, args...)
}

func (c *checker) accessible(member *symbols.Symbol) bool {
	return c.unit.prog.isAccessible(member, c.class, c.unit.pkg)
}

// inConstructor reports whether the checked body is a constructor of the field's class.
func (c *checker) inConstructor(f *symbols.Symbol) bool {
	return c.method != nil && c.method.IsConstructor() && f.Owner == c.class
}
