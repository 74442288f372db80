package symbols

// TypeKind classifies a Type.
type TypeKind uint8

const (
	TypeInvalid TypeKind = iota
	TypeVoid
	TypeNull
	TypeBoolean
	TypeByte
	TypeChar
	TypeShort
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeClass
	TypeArray
)

var primitiveNames = [...]string{
	TypeVoid:    "void",
	TypeNull:    "null",
	TypeBoolean: "boolean",
	TypeByte:    "byte",
	TypeChar:    "char",
	TypeShort:   "short",
	TypeInt:     "int",
	TypeLong:    "long",
	TypeFloat:   "float",
	TypeDouble:  "double",
}

// Type is a resolved type. Primitive and class types are canonical per
// Universe, so pointer equality works for them; arrays compare with Identical.
type Type struct {
	Kind  TypeKind
	Class *Symbol // TypeClass
	Elem  *Type   // TypeArray
}

func (t *Type) String() string {
	if t == nil {
		return "?"
	}
	switch t.Kind {
	case TypeClass:
		return t.Class.Name
	case TypeArray:
		return t.Elem.String() + "[]"
	case TypeInvalid:
		return "?"
	default:
		return primitiveNames[t.Kind]
	}
}

func (t *Type) IsPrimitive() bool {
	return t != nil && t.Kind >= TypeBoolean && t.Kind <= TypeDouble
}

func (t *Type) IsNumeric() bool {
	return t != nil && t.Kind >= TypeByte && t.Kind <= TypeDouble
}

// IsIntegral: byte, char, short, int, long.
func (t *Type) IsIntegral() bool {
	return t != nil && t.Kind >= TypeByte && t.Kind <= TypeLong
}

func (t *Type) IsBoolean() bool { return t != nil && t.Kind == TypeBoolean }
func (t *Type) IsVoid() bool    { return t != nil && t.Kind == TypeVoid }
func (t *Type) IsNull() bool    { return t != nil && t.Kind == TypeNull }
func (t *Type) IsArray() bool   { return t != nil && t.Kind == TypeArray }
func (t *Type) IsClass() bool   { return t != nil && t.Kind == TypeClass }

// IsReference reports whether values of t are object references.
func (t *Type) IsReference() bool {
	return t != nil && (t.Kind == TypeClass || t.Kind == TypeArray || t.Kind == TypeNull)
}

// Dims returns the number of array dimensions of t.
func (t *Type) Dims() int {
	n := 0
	for cur := t; cur != nil && cur.Kind == TypeArray; cur = cur.Elem {
		n++
	}
	return n
}

// ElementType returns the innermost non-array type.
func (t *Type) ElementType() *Type {
	cur := t
	for cur != nil && cur.Kind == TypeArray {
		cur = cur.Elem
	}
	return cur
}

// Identical reports structural identity of two types.
func Identical(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case TypeClass:
		return a.Class == b.Class
	case TypeArray:
		return Identical(a.Elem, b.Elem)
	default:
		return true
	}
}
