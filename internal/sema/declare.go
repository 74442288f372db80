package sema

import (
	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/symbols"
)

// declareClasses creates a symbol for every class of the unit, nested ones
// included, and publishes it by simple name. The first declaration of a name wins.
func (u *Unit) declareClasses() {
	t := u.Tree
	for _, decl := range t.List(t.Unit(), ast.UnitTypes) {
		if t.Kind(decl) == ast.KindTypeDecl {
			u.declareClass(decl, nil)
		}
	}
}

func (u *Unit) declareClass(decl ast.NodeID, outer *symbols.Symbol) {
	t := u.Tree
	n := t.Node(decl)
	nameID := t.Child(decl, ast.TypeName)
	sym := &symbols.Symbol{
		Name:    t.Node(nameID).Text,
		Kind:    symbols.SymbolType,
		Mods:    n.Mods,
		Owner:   outer,
		Package: u.pkg,
		Decl:    symbols.Decl{Tree: t, Node: decl, Name: nameID},
	}
	u.prog.universe.NewClass(sym)
	u.declare(decl, nameID, sym)
	u.classes = append(u.classes, sym)
	if outer != nil {
		outer.Members = append(outer.Members, sym)
	}
	if _, dup := u.prog.classes[sym.Name]; !dup && sym.Name != "" {
		u.prog.classes[sym.Name] = sym
		u.prog.classOrder = append(u.prog.classOrder, sym)
	}
	if outer == nil {
		u.prog.classUnit[sym] = u
	}
	for _, member := range t.List(decl, ast.TypeBody) {
		if t.Kind(member) == ast.KindTypeDecl {
			u.declareClass(member, sym)
		}
	}
}

func (u *Unit) declare(decl, name ast.NodeID, sym *symbols.Symbol) {
	u.Table.Declare(decl, sym)
	if name.IsValid() {
		u.Table.Declare(name, sym)
	}
}

// declareHeaders resolves superclasses and member signatures.
func (u *Unit) declareHeaders() {
	for _, cls := range u.classes {
		u.declareClassHeader(cls)
	}
}

func (u *Unit) declareClassHeader(cls *symbols.Symbol) {
	t := u.Tree
	decl := cls.Decl.Node
	u.checkModifiers(decl, declClass)
	r := u.typeResolver(cls)

	if super := t.Child(decl, ast.TypeSuperclass); super != ast.NoNodeID {
		if st := r.resolve(super); st != nil && st.IsClass() && !symbols.IsSubclass(st.Class, cls) {
			cls.Super = st
		} else {
			cls.Super = u.prog.universe.Object
		}
	} else {
		cls.Super = u.prog.universe.Object
	}

	hasCtor := false
	for _, member := range t.List(decl, ast.TypeBody) {
		switch t.Kind(member) {
		case ast.KindFieldDecl:
			u.declareField(cls, member, r)
		case ast.KindMethodDecl:
			m := u.declareMethod(cls, member, r)
			hasCtor = hasCtor || m.IsConstructor()
		}
	}
	if !hasCtor {
		vis := cls.Mods.Visibility()
		cls.Members = append(cls.Members, &symbols.Symbol{
			Name:  cls.Name,
			Kind:  symbols.SymbolMethod,
			Mods:  vis,
			Flags: symbols.SymbolFlagConstructor | symbols.SymbolFlagImplicit,
			Owner: cls,
		})
	}
}

func (u *Unit) declareField(cls *symbols.Symbol, decl ast.NodeID, r typeResolver) {
	t := u.Tree
	n := t.Node(decl)
	u.checkModifiers(decl, declField)
	base := r.resolve(t.Child(decl, ast.FieldType))
	for _, frag := range t.List(decl, ast.FieldFragments) {
		nameID := t.Child(frag, ast.FragmentName)
		f := &symbols.Symbol{
			Name:  t.Node(nameID).Text,
			Kind:  symbols.SymbolField,
			Mods:  n.Mods,
			Type:  u.withDims(base, t.Node(frag).Dims),
			Owner: cls,
			Decl:  symbols.Decl{Tree: t, Node: frag, Name: nameID},
		}
		u.declare(frag, nameID, f)
		cls.Members = append(cls.Members, f)
	}
}

func (u *Unit) declareMethod(cls *symbols.Symbol, decl ast.NodeID, r typeResolver) *symbols.Symbol {
	t := u.Tree
	n := t.Node(decl)
	nameID := t.Child(decl, ast.MethodName)
	m := &symbols.Symbol{
		Name:  t.Node(nameID).Text,
		Kind:  symbols.SymbolMethod,
		Mods:  n.Mods,
		Owner: cls,
		Decl:  symbols.Decl{Tree: t, Node: decl, Name: nameID},
	}
	switch ret := t.Child(decl, ast.MethodReturnType); {
	case n.Flags.Has(ast.FlagConstructor):
		m.Flags |= symbols.SymbolFlagConstructor
		u.checkModifiers(decl, declConstructor)
	case ret == ast.NoNodeID:
		u.reportAt(diag.SemMissingReturnType, nameID, m.Name)
		m.Type = u.prog.universe.Void
		u.checkModifiers(decl, declMethod)
	default:
		m.Type = r.resolve(ret)
		u.checkModifiers(decl, declMethod)
	}

	for _, param := range t.List(decl, ast.MethodParams) {
		p := u.declareParam(m, param, r)
		m.Params = append(m.Params, p)
		if t.Node(param).Flags.Has(ast.FlagVarargs) {
			m.Flags |= symbols.SymbolFlagVarargs
		}
	}
	for _, th := range t.List(decl, ast.MethodThrows) {
		if typ := r.resolve(th); typ != nil {
			m.Throws = append(m.Throws, typ)
		}
	}
	u.declare(decl, nameID, m)
	cls.Members = append(cls.Members, m)
	return m
}

// declareParam creates the symbol of a method or catch parameter.
func (u *Unit) declareParam(owner *symbols.Symbol, param ast.NodeID, r typeResolver) *symbols.Symbol {
	t := u.Tree
	n := t.Node(param)
	u.checkModifiers(param, declVariable)
	typ := u.withDims(r.resolve(t.Child(param, ast.ParamType)), n.Dims)
	if n.Flags.Has(ast.FlagVarargs) && typ != nil {
		typ = u.prog.universe.ArrayOf(typ)
	}
	nameID := t.Child(param, ast.ParamName)
	p := &symbols.Symbol{
		Name:  t.Node(nameID).Text,
		Kind:  symbols.SymbolParam,
		Mods:  n.Mods,
		Type:  typ,
		Owner: owner,
		Decl:  symbols.Decl{Tree: t, Node: param, Name: nameID},
	}
	if n.Flags.Has(ast.FlagVarargs) {
		p.Flags |= symbols.SymbolFlagVarargs
	}
	u.declare(param, nameID, p)
	return p
}

func (u *Unit) withDims(typ *symbols.Type, dims uint8) *symbols.Type {
	if typ == nil || dims == 0 {
		return typ
	}
	return u.prog.universe.ArrayOfDims(typ, int(dims))
}

// hasInitializer reports whether a field or local fragment has "= expr".
func hasInitializer(sym *symbols.Symbol) bool {
	if !sym.Decl.IsValid() || sym.Decl.Tree.Kind(sym.Decl.Node) != ast.KindVarFragment {
		return false
	}
	return sym.Decl.Tree.Child(sym.Decl.Node, ast.FragmentInit) != ast.NoNodeID
}
