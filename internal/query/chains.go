package query

import "mend/internal/symbols"

// numericOrder is the promotion order used for relaxing and narrowing guesses.
var numericOrder = []symbols.TypeKind{
	symbols.TypeByte, symbols.TypeChar, symbols.TypeShort,
	symbols.TypeInt, symbols.TypeLong, symbols.TypeFloat, symbols.TypeDouble,
}

func kindType(u *symbols.Universe, k symbols.TypeKind) *symbols.Type {
	switch k {
	case symbols.TypeByte:
		return u.Byte
	case symbols.TypeChar:
		return u.Char
	case symbols.TypeShort:
		return u.Short
	case symbols.TypeInt:
		return u.Int
	case symbols.TypeLong:
		return u.Long
	case symbols.TypeFloat:
		return u.Float
	default:
		return u.Double
	}
}

// TypeWideningChain returns typ followed by the types it can be relaxed to:
// wider numeric types for primitives, the superclass chain (Object excluded)
// for classes.
func TypeWideningChain(u *symbols.Universe, typ *symbols.Type) []*symbols.Type {
	if typ == nil {
		return nil
	}
	out := []*symbols.Type{typ}
	switch {
	case typ.IsNumeric():
		for _, k := range numericOrder {
			cand := kindType(u, k)
			if k != typ.Kind && symbols.IsWidening(typ, cand) {
				out = append(out, cand)
			}
		}
	case typ.IsClass():
		for c := typ.Class.SuperClass(); c != nil && c != u.Object.Class; c = c.SuperClass() {
			out = append(out, c.Type)
		}
	}
	return out
}

// TypeNarrowingChain returns typ followed by the narrower numeric types, in
// promotion order.
func TypeNarrowingChain(u *symbols.Universe, typ *symbols.Type) []*symbols.Type {
	if typ == nil {
		return nil
	}
	out := []*symbols.Type{typ}
	if !typ.IsNumeric() {
		return out
	}
	for _, k := range numericOrder {
		if k == typ.Kind {
			break
		}
		if k == symbols.TypeByte {
			continue
		}
		out = append(out, kindType(u, k))
	}
	return out
}

// SupertypeAlternatives returns every type a value of typ can be assigned to,
// nearest first, ending with Object. Used as linked-group alternatives.
func SupertypeAlternatives(u *symbols.Universe, typ *symbols.Type) []*symbols.Type {
	out := TypeWideningChain(u, typ)
	if typ != nil && typ.IsReference() && !symbols.Identical(typ, u.Object) {
		out = append(out, u.Object)
	}
	return out
}
