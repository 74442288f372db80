package sema

import (
	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/query"
	"mend/internal/symbols"
)

func (c *checker) block(id ast.NodeID) {
	c.pushScope()
	c.statementList(c.tree.List(id, ast.BlockStatements), false)
	c.popScope()
}

// statementList checks statements in order and reports the first statement
// that follows one which cannot complete normally. In switch bodies a case
// label makes the following statements reachable again.
func (c *checker) statementList(stmts []ast.NodeID, inSwitch bool) bool {
	t := c.tree
	reachable := true
	reported := false
	for i, s := range stmts {
		if inSwitch && t.Kind(s) == ast.KindSwitchCase {
			// в группу входят по метке или проваливаясь из предыдущей
			fr := c.jumps[len(c.jumps)-1]
			c.flow = meet(fr.entry.fork(), true, c.flow, i > 0 && reachable)
			reachable = true
			reported = false
			c.switchLabel(stmts, i)
			continue
		}
		if !reachable && !reported {
			c.report(diag.SemUnreachableCode, s)
			reported = true
		}
		c.statement(s)
		if reachable && !query.CanCompleteNormally(t, s) {
			reachable = false
		}
	}
	return reachable
}

func (c *checker) statement(id ast.NodeID) {
	t := c.tree
	n := t.Node(id)
	switch n.Kind {
	case ast.KindBlock:
		c.block(id)
	case ast.KindLocalVarDecl:
		c.localVarDecl(id)
	case ast.KindExprStmt:
		c.expr(t.Child(id, ast.ExprStmtExpr))
	case ast.KindIf:
		c.ifStmt(id)
	case ast.KindWhile:
		c.condition(t.Child(id, ast.WhileCondition))
		saved := c.flow.fork()
		c.pushJumps(saved)
		c.statement(t.Child(id, ast.WhileBody))
		c.popJumps()
		c.flow = saved
	case ast.KindDo:
		c.pushJumps(c.flow)
		c.statement(t.Child(id, ast.DoBody))
		c.popJumps()
		c.condition(t.Child(id, ast.DoCondition))
	case ast.KindFor:
		c.forStmt(id)
	case ast.KindSwitch:
		c.switchStmt(id)
	case ast.KindReturn:
		c.returnStmt(id)
	case ast.KindThrow:
		c.throwStmt(id)
	case ast.KindTry:
		c.tryStmt(id)
	case ast.KindEmpty:
		if c.unit.prog.opts.Lints && !n.Flags.Has(ast.FlagRecovered) && query.IsStatementList(n.Loc) {
			c.report(diag.LntSuperfluousSemicolon, id)
		}
	case ast.KindOpaqueStmt:
		c.unit.noteOpaque(n.Text)
	case ast.KindBreak:
		if t.Child(id, ast.BreakLabel) == ast.NoNodeID && len(c.jumps) > 0 {
			fr := c.jumps[len(c.jumps)-1]
			fr.breaks = append(fr.breaks, c.flow.fork())
		}
	case ast.KindContinue, ast.KindSwitchCase:
	}
}

func (c *checker) localVarDecl(id ast.NodeID) {
	t := c.tree
	n := t.Node(id)
	c.unit.checkModifiers(id, declVariable)
	base := c.types.resolve(t.Child(id, ast.LocalType))
	for _, frag := range t.List(id, ast.LocalFragments) {
		nameID := t.Child(frag, ast.FragmentName)
		name := t.Node(nameID).Text
		sym := &symbols.Symbol{
			Name:  name,
			Kind:  symbols.SymbolLocal,
			Mods:  n.Mods,
			Type:  c.unit.withDims(base, t.Node(frag).Dims),
			Owner: c.owner(),
			Decl:  symbols.Decl{Tree: t, Node: frag, Name: nameID},
		}
		c.declareLocal(frag, nameID, sym)
		if init := t.Child(frag, ast.FragmentInit); init != ast.NoNodeID {
			c.checkInitializer(init, sym.Type)
		} else {
			c.flow.track(sym)
		}
		c.define(sym)
	}
}

// declareLocal records a new local or catch parameter and reports
// duplicates and hidden fields.
func (c *checker) declareLocal(decl, nameID ast.NodeID, sym *symbols.Symbol) {
	if prev := c.lookupLocal(sym.Name); prev != nil {
		c.report(diag.SemDuplicateLocal, nameID, sym.Name)
	} else if c.unit.prog.opts.Lints && c.class.LookupField(sym.Name) != nil {
		c.report(diag.LntLocalHidesField, nameID, sym.Name)
	}
	c.unit.declare(decl, nameID, sym)
	if sym.Kind == symbols.SymbolLocal {
		c.locals = append(c.locals, sym)
	}
}

func (c *checker) owner() *symbols.Symbol {
	if c.method != nil {
		return c.method
	}
	return c.class
}

// checkInitializer checks a variable initializer against the declared type.
func (c *checker) checkInitializer(init ast.NodeID, declared *symbols.Type) {
	if c.tree.Kind(init) == ast.KindArrayInit {
		c.arrayInit(init, declared)
		return
	}
	c.expectAssignable(init, c.expr(init), declared)
}

// expectAssignable reports SEM3007 on value when its type does not convert to want.
func (c *checker) expectAssignable(value ast.NodeID, got, want *symbols.Type) {
	if got == nil || want == nil || c.u.AssignableTo(got, want) {
		return
	}
	if c.isConstantNarrowing(value, got, want) {
		return
	}
	c.report(diag.SemTypeMismatch, value, got.String(), want.String())
}

func (c *checker) condition(cond ast.NodeID) {
	if cond == ast.NoNodeID {
		return
	}
	got := c.expr(cond)
	if got != nil && !got.IsBoolean() {
		c.report(diag.SemTypeMismatch, cond, got.String(), "boolean")
	}
}

func (c *checker) ifStmt(id ast.NodeID) {
	t := c.tree
	c.condition(t.Child(id, ast.IfCondition))
	then := t.Child(id, ast.IfThen)
	els := t.Child(id, ast.IfElse)

	before := c.flow.fork()
	c.statement(then)
	afterThen := c.flow
	thenLive := query.CanCompleteNormally(t, then)
	if els == ast.NoNodeID {
		c.flow = before
		return
	}
	c.flow = before.fork()
	c.statement(els)
	c.flow = meet(afterThen, thenLive, c.flow, query.CanCompleteNormally(t, els))

	if c.unit.prog.opts.Lints && !thenLive && t.Kind(els) != ast.KindIf {
		c.report(diag.LntUnnecessaryElse, els)
	}
}

func (c *checker) forStmt(id ast.NodeID) {
	t := c.tree
	c.pushScope()
	for _, init := range t.List(id, ast.ForInit) {
		if t.Kind(init) == ast.KindLocalVarDecl {
			c.localVarDecl(init)
		} else {
			c.expr(init)
		}
	}
	c.condition(t.Child(id, ast.ForCondition))
	saved := c.flow.fork()
	c.pushJumps(saved)
	c.statement(t.Child(id, ast.ForBody))
	c.popJumps()
	for _, upd := range t.List(id, ast.ForUpdates) {
		c.expr(upd)
	}
	c.flow = saved
	c.popScope()
}

// switchStmt checks every case group against the state before the switch.
// The state after it is the meet of the groups left by break or by falling
// off the end, and of the entry state when no default label exists.
func (c *checker) switchStmt(id ast.NodeID) {
	t := c.tree
	c.expr(t.Child(id, ast.SwitchExpr))
	stmts := t.List(id, ast.SwitchStatements)
	fr := c.pushJumps(c.flow)
	c.pushScope()
	live := c.statementList(stmts, true)
	c.popScope()
	c.popJumps()

	out := c.flow
	for _, b := range fr.breaks {
		out = meet(out, live, b, true)
		live = true
	}
	if !hasDefault(t, stmts) {
		out = meet(out, live, fr.entry, true)
	}
	c.flow = out
}

func hasDefault(t *ast.Tree, stmts []ast.NodeID) bool {
	for _, s := range stmts {
		if t.Kind(s) == ast.KindSwitchCase && t.Child(s, ast.CaseExpr) == ast.NoNodeID {
			return true
		}
	}
	return false
}

// switchLabel checks the case expression at stmts[i] and reports a fall
// through from a non-empty previous group.
func (c *checker) switchLabel(stmts []ast.NodeID, i int) {
	t := c.tree
	label := stmts[i]
	if e := t.Child(label, ast.CaseExpr); e != ast.NoNodeID {
		c.expr(e)
	}
	if !c.unit.prog.opts.Lints || i == 0 {
		return
	}
	prev := stmts[i-1]
	if t.Kind(prev) == ast.KindSwitchCase {
		return
	}
	if query.CanCompleteNormally(t, prev) {
		c.report(diag.LntFallthroughCase, label)
	}
}

func (c *checker) returnStmt(id ast.NodeID) {
	t := c.tree
	value := t.Child(id, ast.ReturnExpr)
	if c.method == nil {
		return
	}
	want := c.method.Type
	if c.method.IsConstructor() {
		want = c.u.Void
	}
	if value == ast.NoNodeID {
		if want != nil && !want.IsVoid() {
			c.report(diag.SemShouldReturnValue, id, want.String())
		}
		return
	}
	got := c.expr(value)
	switch {
	case want == nil:
	case want.IsVoid():
		c.report(diag.SemVoidMethodReturnsValue, value, got.String())
	default:
		c.expectAssignable(value, got, want)
	}
}

func (c *checker) throwStmt(id ast.NodeID) {
	value := c.tree.Child(id, ast.ThrowExpr)
	got := c.expr(value)
	if got == nil {
		return
	}
	if !c.u.IsThrowable(got) {
		c.report(diag.SemTypeMismatch, value, got.String(), "Throwable")
		return
	}
	c.raise(got, id)
}

func (c *checker) tryStmt(id ast.NodeID) {
	t := c.tree
	catches := t.List(id, ast.TryCatches)
	frame := &handlerFrame{}
	catchTypes := make([]*symbols.Type, len(catches))
	for i, cc := range catches {
		param := t.Child(cc, ast.CatchParam)
		catchTypes[i] = c.types.resolve(t.Child(param, ast.ParamType))
		if catchTypes[i] != nil {
			frame.catches = append(frame.catches, catchTypes[i])
		}
	}

	before := c.flow.fork()
	c.handlers = append(c.handlers, frame)
	c.block(t.Child(id, ast.TryBody))
	c.handlers = c.handlers[:len(c.handlers)-1]

	for i, cc := range catches {
		param := t.Child(cc, ast.CatchParam)
		if ct := catchTypes[i]; ct != nil {
			c.checkCatchReachable(frame, catchTypes[:i], ct, t.Child(param, ast.ParamType))
		}
		c.flow = before.fork()
		c.pushScope()
		sym := c.unit.declareParam(c.owner(), param, c.types)
		if prev := c.lookupLocal(sym.Name); prev != nil {
			c.report(diag.SemDuplicateLocal, sym.Decl.Name, sym.Name)
		}
		c.define(sym)
		c.block(t.Child(cc, ast.CatchBody))
		c.popScope()
	}
	c.flow = before
	if fin := t.Child(id, ast.TryFinally); fin != ast.NoNodeID {
		c.block(fin)
	}
}

// checkCatchReachable reports a catch of a checked exception that neither the
// try body throws nor an earlier catch leaves uncaught.
func (c *checker) checkCatchReachable(frame *handlerFrame, earlier []*symbols.Type, ct *symbols.Type, typeNode ast.NodeID) {
	for _, e := range earlier {
		if e != nil && c.u.IsSubtype(ct, e) {
			c.report(diag.SemUnreachableCatch, typeNode, ct.String())
			return
		}
	}
	if !c.u.IsChecked(ct) || c.u.IsSubtype(c.u.Exception, ct) {
		return
	}
	for _, th := range frame.thrown {
		if c.u.IsSubtype(th, ct) || c.u.IsSubtype(ct, th) {
			return
		}
	}
	c.report(diag.SemUnreachableCatch, typeNode, ct.String())
}

// raise records that the node at throws exc and reports it when no
// enclosing handler or throws clause covers a checked one.
func (c *checker) raise(exc *symbols.Type, at ast.NodeID) {
	for i := len(c.handlers) - 1; i >= 0; i-- {
		h := c.handlers[i]
		h.thrown = append(h.thrown, exc)
		for _, ct := range h.catches {
			if c.u.IsSubtype(exc, ct) {
				return
			}
		}
	}
	if !c.u.IsChecked(exc) {
		return
	}
	c.thrown = append(c.thrown, exc)
	if c.method != nil {
		for _, decl := range c.method.Throws {
			if c.u.IsSubtype(exc, decl) {
				return
			}
		}
	}
	c.report(diag.SemUnhandledException, at, exc.String())
}
