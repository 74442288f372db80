package symbols

import (
	"sync"

	"mend/internal/ast"
)

// Universe holds the predeclared types shared by every unit of a program.
type Universe struct {
	Void, Null, Boolean, Byte, Char, Short, Int, Long, Float, Double *Type

	Object, String, Throwable, Exception, RuntimeException, Error *Type

	classes map[string]*Symbol
	order   []*Symbol

	mu     sync.Mutex
	arrays map[*Type]*Type
}

// NewUniverse builds the predeclared types and the builtin classes.
func NewUniverse() *Universe {
	u := &Universe{
		Void:    &Type{Kind: TypeVoid},
		Null:    &Type{Kind: TypeNull},
		Boolean: &Type{Kind: TypeBoolean},
		Byte:    &Type{Kind: TypeByte},
		Char:    &Type{Kind: TypeChar},
		Short:   &Type{Kind: TypeShort},
		Int:     &Type{Kind: TypeInt},
		Long:    &Type{Kind: TypeLong},
		Float:   &Type{Kind: TypeFloat},
		Double:  &Type{Kind: TypeDouble},
		classes: make(map[string]*Symbol),
		arrays:  make(map[*Type]*Type),
	}
	u.Object = u.builtinClass("Object", "java.lang", nil)
	u.String = u.builtinClass("String", "java.lang", u.Object)
	u.Throwable = u.builtinClass("Throwable", "java.lang", u.Object)
	u.Exception = u.builtinClass("Exception", "java.lang", u.Throwable)
	u.RuntimeException = u.builtinClass("RuntimeException", "java.lang", u.Exception)
	u.Error = u.builtinClass("Error", "java.lang", u.Throwable)
	u.builtinClass("IllegalArgumentException", "java.lang", u.RuntimeException)
	u.builtinClass("IllegalStateException", "java.lang", u.RuntimeException)
	u.builtinClass("InterruptedException", "java.lang", u.Exception)
	u.builtinClass("IOException", "java.io", u.Exception)
	printStream := u.builtinClass("PrintStream", "java.io", u.Object)
	system := u.builtinClass("System", "java.lang", u.Object)

	pub := ast.ModPublic
	u.method(u.Object, pub, u.Boolean, "equals", u.Object)
	u.method(u.Object, pub, u.Int, "hashCode")
	u.method(u.Object, pub, u.String, "toString")
	u.method(u.String, pub, u.Int, "length")
	u.method(u.String, pub, u.Boolean, "isEmpty")
	u.method(u.String, pub, u.Char, "charAt", u.Int)
	u.method(u.String, pub, u.String, "substring", u.Int, u.Int)
	u.method(u.String, pub, u.Int, "indexOf", u.String)
	u.method(u.String, pub, u.String, "trim")
	u.method(u.Throwable, pub, u.String, "getMessage")
	u.method(u.Throwable, pub, u.Void, "printStackTrace")
	for _, arg := range []*Type{u.Object, u.String, u.Int, u.Long, u.Double, u.Boolean, u.Char} {
		u.method(printStream, pub, u.Void, "println", arg)
	}
	u.method(printStream, pub, u.Void, "println")
	u.method(printStream, pub, u.Void, "print", u.Object)
	u.method(system, pub|ast.ModStatic, u.Long, "currentTimeMillis")
	system.Class.Members = append(system.Class.Members, &Symbol{
		Name: "out", Kind: SymbolField, Mods: pub | ast.ModStatic | ast.ModFinal,
		Flags: SymbolFlagBuiltin, Type: printStream, Owner: system.Class,
	})
	for _, name := range []string{"Exception", "RuntimeException", "Error", "IllegalArgumentException",
		"IllegalStateException", "InterruptedException", "IOException", "Throwable"} {
		c := u.classes[name]
		u.ctor(c, pub)
		u.ctor(c, pub, u.String)
	}
	u.ctor(u.Object.Class, pub)
	u.ctor(u.String.Class, pub)
	u.ctor(u.String.Class, pub, u.String)
	return u
}

func (u *Universe) builtinClass(name, pkg string, super *Type) *Type {
	sym := &Symbol{
		Name: name, Kind: SymbolType, Mods: ast.ModPublic, Flags: SymbolFlagBuiltin,
		Package: pkg, Super: super,
	}
	t := &Type{Kind: TypeClass, Class: sym}
	sym.Type = t
	u.classes[name] = sym
	u.order = append(u.order, sym)
	return t
}

func (u *Universe) method(owner *Type, mods ast.Modifiers, ret *Type, name string, params ...*Type) {
	m := &Symbol{Name: name, Kind: SymbolMethod, Mods: mods, Flags: SymbolFlagBuiltin, Type: ret, Owner: owner.Class}
	for i, p := range params {
		m.Params = append(m.Params, &Symbol{Name: paramName(i), Kind: SymbolParam, Type: p, Owner: m, Flags: SymbolFlagBuiltin})
	}
	owner.Class.Members = append(owner.Class.Members, m)
}

func (u *Universe) ctor(owner *Symbol, mods ast.Modifiers, params ...*Type) {
	m := &Symbol{Name: owner.Name, Kind: SymbolMethod, Mods: mods, Flags: SymbolFlagBuiltin | SymbolFlagConstructor, Owner: owner}
	for i, p := range params {
		m.Params = append(m.Params, &Symbol{Name: paramName(i), Kind: SymbolParam, Type: p, Owner: m, Flags: SymbolFlagBuiltin})
	}
	owner.Members = append(owner.Members, m)
}

func paramName(i int) string {
	return "arg" + string(rune('0'+i))
}

// Class returns a builtin class by simple name.
func (u *Universe) Class(name string) *Symbol {
	return u.classes[name]
}

// Classes returns the builtin classes in declaration order.
func (u *Universe) Classes() []*Symbol {
	return u.order
}

// Primitive returns the type for a primitive keyword (void included), or nil.
func (u *Universe) Primitive(name string) *Type {
	switch name {
	case "void":
		return u.Void
	case "boolean":
		return u.Boolean
	case "byte":
		return u.Byte
	case "char":
		return u.Char
	case "short":
		return u.Short
	case "int":
		return u.Int
	case "long":
		return u.Long
	case "float":
		return u.Float
	case "double":
		return u.Double
	default:
		return nil
	}
}

// ArrayOf returns the canonical array type with element elem.
func (u *Universe) ArrayOf(elem *Type) *Type {
	u.mu.Lock()
	defer u.mu.Unlock()
	if t, ok := u.arrays[elem]; ok {
		return t
	}
	t := &Type{Kind: TypeArray, Elem: elem}
	u.arrays[elem] = t
	return t
}

// ArrayOfDims wraps elem in n array dimensions.
func (u *Universe) ArrayOfDims(elem *Type, n int) *Type {
	for range n {
		elem = u.ArrayOf(elem)
	}
	return elem
}

// NewClass creates a source class type; the caller fills in the symbol.
func (u *Universe) NewClass(sym *Symbol) *Type {
	t := &Type{Kind: TypeClass, Class: sym}
	sym.Type = t
	return t
}
