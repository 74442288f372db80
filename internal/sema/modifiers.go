package sema

import (
	"mend/internal/ast"
	"mend/internal/diag"
)

type declKind uint8

const (
	declClass declKind = iota
	declField
	declMethod
	declConstructor
	declVariable
)

var allowedModifiers = [...]ast.Modifiers{
	declClass:       ast.ModPublic | ast.ModAbstract | ast.ModFinal | ast.ModStatic | ast.ModPrivate | ast.ModProtected,
	declField:       ast.VisibilityMask | ast.ModStatic | ast.ModFinal | ast.ModTransient | ast.ModVolatile,
	declMethod:      ast.VisibilityMask | ast.ModAbstract | ast.ModStatic | ast.ModFinal | ast.ModSynchronized | ast.ModNative,
	declConstructor: ast.VisibilityMask,
	declVariable:    ast.ModFinal,
}

func kindOfDecl(t *ast.Tree, decl ast.NodeID) (declKind, bool) {
	switch n := t.Node(decl); {
	case n == nil:
		return 0, false
	case n.Kind == ast.KindTypeDecl:
		return declClass, true
	case n.Kind == ast.KindFieldDecl:
		return declField, true
	case n.Kind == ast.KindMethodDecl && n.Flags.Has(ast.FlagConstructor):
		return declConstructor, true
	case n.Kind == ast.KindMethodDecl:
		return declMethod, true
	case n.Kind == ast.KindParam, n.Kind == ast.KindLocalVarDecl:
		return declVariable, true
	}
	return 0, false
}

func allowedFor(t *ast.Tree, decl ast.NodeID, kind declKind) ast.Modifiers {
	allowed := allowedModifiers[kind]
	if kind == declClass && t.Kind(t.Parent(decl)) == ast.KindCompilationUnit {
		// вложенные классы могут быть private/protected/static, верхнеуровневые нет
		allowed &^= ast.ModPrivate | ast.ModProtected | ast.ModStatic
	}
	return allowed
}

// AllowedModifiers returns the modifiers the declaration kind of decl accepts.
func AllowedModifiers(t *ast.Tree, decl ast.NodeID) ast.Modifiers {
	kind, ok := kindOfDecl(t, decl)
	if !ok {
		return 0
	}
	return allowedFor(t, decl, kind)
}

// LegalModifiers returns the modifiers of decl with every modifier the
// checker would report dropped: those the declaration kind does not accept,
// access modifiers after the first, and the ones contradicting abstract.
func LegalModifiers(t *ast.Tree, decl ast.NodeID) ast.Modifiers {
	kind, ok := kindOfDecl(t, decl)
	if !ok {
		return 0
	}
	mods := t.Node(decl).Mods & allowedFor(t, decl, kind)
	if vis := mods.Visibility(); vis&(vis-1) != 0 {
		var first ast.Modifiers
		for _, m := range []ast.Modifiers{ast.ModPublic, ast.ModProtected, ast.ModPrivate} {
			if vis.Has(m) {
				first = m
				break
			}
		}
		mods = mods&^ast.VisibilityMask | first
	}
	if mods.Has(ast.ModAbstract) {
		mods &^= ast.ModFinal
		if kind == declMethod {
			mods &^= ast.ModPrivate | ast.ModStatic
			if t.Child(decl, ast.MethodBody) != ast.NoNodeID {
				mods &^= ast.ModAbstract
			}
		}
	}
	return mods
}

// checkModifiers reports the first illegal modifier of a declaration. A
// modifier is illegal when the declaration kind does not accept it, when it
// is a second access modifier, or when it contradicts abstract.
func (u *Unit) checkModifiers(decl ast.NodeID, kind declKind) {
	n := u.Tree.Node(decl)
	if n == nil || n.Mods == 0 {
		return
	}
	mods := n.Mods
	if bad := mods &^ allowedFor(u.Tree, decl, kind); bad != 0 {
		u.report(diag.SemIllegalModifier, n.ModsSpan, bad.Words()[0])
		return
	}
	if vis := mods.Visibility().Words(); len(vis) > 1 {
		u.report(diag.SemIllegalModifier, n.ModsSpan, vis[1])
		return
	}
	if mods.Has(ast.ModAbstract) {
		switch {
		case mods.Has(ast.ModFinal):
			u.report(diag.SemIllegalModifier, n.ModsSpan, "final")
		case kind == declMethod && mods.Has(ast.ModPrivate|ast.ModStatic):
			u.report(diag.SemIllegalModifier, n.ModsSpan, (mods & (ast.ModPrivate | ast.ModStatic)).Words()[0])
		case kind == declMethod && u.Tree.Child(decl, ast.MethodBody) != ast.NoNodeID:
			u.report(diag.SemIllegalModifier, n.ModsSpan, "abstract")
		}
	}
}
