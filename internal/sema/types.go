package sema

import (
	"mend/internal/ast"
	"mend/internal/diag"
	"mend/internal/symbols"
)

// typeResolver turns type nodes into types from the point of view of one class.
type typeResolver struct {
	unit *Unit
	from *symbols.Symbol
}

func (u *Unit) typeResolver(from *symbols.Symbol) typeResolver {
	return typeResolver{unit: u, from: from}
}

// resolve returns the type of a type node and records it in the table.
// Unknown names are reported and yield nil.
func (r typeResolver) resolve(id ast.NodeID) *symbols.Type {
	u := r.unit
	t := u.Tree
	n := t.Node(id)
	if n == nil {
		return nil
	}
	var typ *symbols.Type
	switch n.Kind {
	case ast.KindPrimitiveType:
		typ = u.prog.universe.Primitive(n.Op.String())
	case ast.KindArrayType:
		if elem := r.resolve(t.Child(id, ast.ArrayTypeElem)); elem != nil {
			typ = u.prog.universe.ArrayOf(elem)
		}
	case ast.KindSimpleType:
		if n.Flags.Has(ast.FlagRecovered) {
			return nil
		}
		nameID := t.Child(id, ast.SimpleTypeName)
		simple := lastSegment(t, nameID)
		cls := u.prog.lookupType(simple)
		if cls == nil {
			u.reportAt(diag.SemUndefinedType, id, simple)
			return nil
		}
		if r.from != nil && !u.prog.isAccessible(cls, r.from, u.pkg) {
			u.reportAt(diag.SemNotVisibleType, id, cls.Name, r.from.Name)
		}
		u.Table.Bind(lastSegmentNode(t, nameID), cls)
		typ = cls.Type
	}
	u.Table.SetType(id, typ)
	return typ
}

// lastSegment returns the rightmost identifier of a simple or qualified name.
func lastSegment(t *ast.Tree, name ast.NodeID) string {
	return t.Node(lastSegmentNode(t, name)).Text
}

func lastSegmentNode(t *ast.Tree, name ast.NodeID) ast.NodeID {
	for t.Kind(name) == ast.KindQualifiedName {
		name = t.Child(name, ast.QualifiedNameName)
	}
	return name
}

// isAccessible applies the access rules for member (a class, field or method)
// used from class from in package pkg.
func (p *Program) isAccessible(member, from *symbols.Symbol, pkg string) bool {
	if member == nil || member.IsBuiltin() {
		return true
	}
	declaring := member.DeclaringClass()
	if member.Kind == symbols.SymbolType && member.Owner != nil {
		declaring = member.Owner.DeclaringClass()
	}
	memberPkg := packageOf(member)
	switch vis := member.Mods.Visibility(); {
	case vis.Has(ast.ModPublic):
		return true
	case vis.Has(ast.ModPrivate):
		return from != nil && from.TopLevel() == member.TopLevel()
	case vis.Has(ast.ModProtected):
		if memberPkg == pkg {
			return true
		}
		for c := from; c != nil; c = outerClass(c) {
			if symbols.IsSubclass(c, declaring) {
				return true
			}
		}
		return false
	default:
		return memberPkg == pkg
	}
}

func packageOf(sym *symbols.Symbol) string {
	if top := sym.TopLevel(); top != nil {
		return top.Package
	}
	return ""
}

// outerClass returns the class lexically enclosing a nested class.
func outerClass(c *symbols.Symbol) *symbols.Symbol {
	if c == nil || c.Owner == nil {
		return nil
	}
	return c.Owner.DeclaringClass()
}
