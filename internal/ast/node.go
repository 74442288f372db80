package ast

import (
	"mend/internal/source"
	"mend/internal/token"
)

// Node is the single payload type for every kind. Which fields are meaningful
// depends on Kind; children live in slots ordered as Kind.Props().
type Node struct {
	Kind   Kind
	Span   source.Span
	Parent NodeID
	// Loc is the property of Parent that holds this node.
	Loc Prop

	// Op: operator of Infix/Prefix/Postfix/Assign, literal token kind of
	// Literal, keyword of PrimitiveType.
	Op   token.Kind
	Text string
	Mods Modifiers
	// ModsSpan covers the modifier keywords; empty at the declaration start when there are none.
	ModsSpan source.Span
	// Dims: extra array dimensions declared after a fragment name (int a[]).
	Dims  uint8
	Flags NodeFlags

	// Ref и Tag используются только плейсхолдерами.
	Ref NodeID
	Tag Kind

	slots []slot
}

type slot struct {
	one  NodeID
	many []NodeID
}

type NodeFlags uint8

const (
	// FlagVarargs marks a `T... name` parameter.
	FlagVarargs NodeFlags = 1 << iota
	// FlagRecovered marks nodes produced by parser error recovery.
	FlagRecovered
	// FlagConstructor marks a MethodDecl without return type named after its class.
	FlagConstructor
	// FlagMove / FlagCopy / FlagString select the placeholder flavour.
	FlagMove
	FlagCopy
	FlagString
)

func (f NodeFlags) Has(x NodeFlags) bool { return f&x != 0 }

// Lang is the source language a tree was built from.
type Lang uint8

const (
	LangJava Lang = iota
	LangJavaScript
)

func (l Lang) String() string {
	if l == LangJavaScript {
		return "javascript"
	}
	return "java"
}

// Modifiers is a bitmask of declaration modifiers.
type Modifiers uint16

const (
	ModPublic Modifiers = 1 << iota
	ModProtected
	ModPrivate
	ModStatic
	ModFinal
	ModAbstract
	ModSynchronized
	ModNative
	ModTransient
	ModVolatile
)

// VisibilityMask covers the access modifiers.
const VisibilityMask = ModPublic | ModProtected | ModPrivate

var modifierOrder = []struct {
	mod  Modifiers
	text string
	tok  token.Kind
}{
	{ModPublic, "public", token.KwPublic},
	{ModProtected, "protected", token.KwProtected},
	{ModPrivate, "private", token.KwPrivate},
	{ModAbstract, "abstract", token.KwAbstract},
	{ModStatic, "static", token.KwStatic},
	{ModFinal, "final", token.KwFinal},
	{ModTransient, "transient", token.KwTransient},
	{ModVolatile, "volatile", token.KwVolatile},
	{ModSynchronized, "synchronized", token.KwSynchronized},
	{ModNative, "native", token.KwNative},
}

// ModifierFor maps a modifier keyword to its bit.
func ModifierFor(k token.Kind) (Modifiers, bool) {
	for _, m := range modifierOrder {
		if m.tok == k {
			return m.mod, true
		}
	}
	return 0, false
}

func (m Modifiers) Has(x Modifiers) bool { return m&x != 0 }

// String renders modifiers in canonical order separated by spaces.
func (m Modifiers) String() string {
	out := ""
	for _, mo := range modifierOrder {
		if m&mo.mod == 0 {
			continue
		}
		if out != "" {
			out += " "
		}
		out += mo.text
	}
	return out
}

// Words returns the modifier keywords in canonical order.
func (m Modifiers) Words() []string {
	var out []string
	for _, mo := range modifierOrder {
		if m&mo.mod != 0 {
			out = append(out, mo.text)
		}
	}
	return out
}

// Visibility returns only the access modifier bits.
func (m Modifiers) Visibility() Modifiers { return m & VisibilityMask }
