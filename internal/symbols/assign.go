package symbols

// IsSubclass reports whether class c is super or inherits from it.
func IsSubclass(c, super *Symbol) bool {
	for cur := c; cur != nil; cur = cur.SuperClass() {
		if cur == super {
			return true
		}
	}
	return false
}

// numericRank orders numeric types by widening; char and short share a rank
// below int but do not widen into each other.
func numericRank(k TypeKind) int {
	switch k {
	case TypeByte:
		return 1
	case TypeShort, TypeChar:
		return 2
	case TypeInt:
		return 3
	case TypeLong:
		return 4
	case TypeFloat:
		return 5
	case TypeDouble:
		return 6
	default:
		return 0
	}
}

// IsWidening reports whether a primitive conversion from → to is a widening one.
func IsWidening(from, to *Type) bool {
	if !from.IsNumeric() || !to.IsNumeric() {
		return false
	}
	if from.Kind == to.Kind {
		return true
	}
	switch {
	case from.Kind == TypeChar && to.Kind == TypeShort, from.Kind == TypeShort && to.Kind == TypeChar,
		from.Kind == TypeByte && to.Kind == TypeChar:
		return false
	}
	return numericRank(from.Kind) < numericRank(to.Kind)
}

// IsSubtype reports t <: s for reference types.
func (u *Universe) IsSubtype(t, s *Type) bool {
	if t == nil || s == nil {
		return false
	}
	if Identical(t, s) {
		return true
	}
	switch {
	case t.IsNull():
		return s.IsReference()
	case s.IsClass() && s.Class == u.Object.Class:
		return t.IsReference()
	case t.IsClass() && s.IsClass():
		return IsSubclass(t.Class, s.Class)
	case t.IsArray() && s.IsArray():
		return t.Elem.IsReference() && s.Elem.IsReference() && u.IsSubtype(t.Elem, s.Elem)
	}
	return false
}

// AssignableTo reports whether a value of type from can be assigned to to.
func (u *Universe) AssignableTo(from, to *Type) bool {
	if from == nil || to == nil {
		return false
	}
	if from.IsPrimitive() || to.IsPrimitive() {
		if from.IsBoolean() || to.IsBoolean() {
			return from.Kind == to.Kind
		}
		return IsWidening(from, to)
	}
	return u.IsSubtype(from, to)
}

// CastableTo reports whether (to) from is a legal cast.
func (u *Universe) CastableTo(from, to *Type) bool {
	if from == nil || to == nil || from.IsVoid() || to.IsVoid() {
		return false
	}
	if from.IsNumeric() && to.IsNumeric() {
		return true
	}
	if from.IsPrimitive() || to.IsPrimitive() {
		return from.Kind == to.Kind
	}
	return u.IsSubtype(from, to) || u.IsSubtype(to, from)
}

// BinaryPromotion returns the result type of an arithmetic operator on a and b.
func (u *Universe) BinaryPromotion(a, b *Type) *Type {
	if !a.IsNumeric() || !b.IsNumeric() {
		return nil
	}
	switch {
	case a.Kind == TypeDouble || b.Kind == TypeDouble:
		return u.Double
	case a.Kind == TypeFloat || b.Kind == TypeFloat:
		return u.Float
	case a.Kind == TypeLong || b.Kind == TypeLong:
		return u.Long
	default:
		return u.Int
	}
}

// UnaryPromotion: byte, short, char → int.
func (u *Universe) UnaryPromotion(t *Type) *Type {
	if !t.IsNumeric() {
		return nil
	}
	if numericRank(t.Kind) < numericRank(TypeInt) {
		return u.Int
	}
	return t
}

// IsThrowable reports whether t is Throwable or a subclass.
func (u *Universe) IsThrowable(t *Type) bool {
	return t.IsClass() && IsSubclass(t.Class, u.Throwable.Class)
}

// IsChecked reports whether t is a checked exception type.
func (u *Universe) IsChecked(t *Type) bool {
	if !u.IsThrowable(t) {
		return false
	}
	return !IsSubclass(t.Class, u.RuntimeException.Class) && !IsSubclass(t.Class, u.Error.Class)
}

// DefaultValue returns the source text of the zero value of t.
func DefaultValue(t *Type) string {
	switch {
	case t == nil:
		return "null"
	case t.IsBoolean():
		return "false"
	case t.Kind == TypeLong:
		return "0L"
	case t.Kind == TypeFloat:
		return "0.0f"
	case t.Kind == TypeDouble:
		return "0.0"
	case t.Kind == TypeChar:
		return "'\\0'"
	case t.IsNumeric():
		return "0"
	default:
		return "null"
	}
}
