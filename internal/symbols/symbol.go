package symbols

import (
	"strings"

	"mend/internal/ast"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolLocal
	SymbolParam
	SymbolField
	SymbolMethod
	SymbolType
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolLocal:
		return "local"
	case SymbolParam:
		return "param"
	case SymbolField:
		return "field"
	case SymbolMethod:
		return "method"
	case SymbolType:
		return "type"
	default:
		return "invalid"
	}
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint8

const (
	SymbolFlagBuiltin SymbolFlags = 1 << iota
	SymbolFlagVarargs
	SymbolFlagConstructor
	// SymbolFlagImplicit marks the default constructor of a class without one.
	SymbolFlagImplicit
)

// Decl points at the syntax that declared a symbol. Builtins have no Decl.
type Decl struct {
	Tree *ast.Tree
	// Node — VarFragment, Param, MethodDecl или TypeDecl.
	Node ast.NodeID
	// Name — узел имени внутри Node.
	Name ast.NodeID
}

// IsValid reports whether the symbol comes from source.
func (d Decl) IsValid() bool { return d.Tree != nil && d.Node.IsValid() }

// Symbol is a Binding: a resolved variable, method or class. Two references
// denote the same entity iff they resolve to the same *Symbol.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Mods  ast.Modifiers
	Flags SymbolFlags
	// Type — тип переменной, результат метода (nil у конструктора) или сам класс.
	Type *Type
	// Owner — объявляющий класс для членов, метод для локальных и параметров.
	Owner *Symbol
	Decl  Decl

	Params []*Symbol
	Throws []*Type

	// class
	Package string
	Super   *Type
	Members []*Symbol
}

func (s *Symbol) IsStatic() bool { return s != nil && s.Mods.Has(ast.ModStatic) }
func (s *Symbol) IsFinal() bool  { return s != nil && s.Mods.Has(ast.ModFinal) }

// IsVariable reports whether s is a local, parameter or field.
func (s *Symbol) IsVariable() bool {
	return s != nil && (s.Kind == SymbolLocal || s.Kind == SymbolParam || s.Kind == SymbolField)
}

func (s *Symbol) IsConstructor() bool {
	return s != nil && s.Flags&SymbolFlagConstructor != 0
}

func (s *Symbol) IsVarargs() bool {
	return s != nil && s.Flags&SymbolFlagVarargs != 0
}

func (s *Symbol) IsBuiltin() bool {
	return s != nil && s.Flags&SymbolFlagBuiltin != 0
}

// DeclaringClass returns the class that declares s (the class itself for types).
func (s *Symbol) DeclaringClass() *Symbol {
	for cur := s; cur != nil; cur = cur.Owner {
		if cur.Kind == SymbolType {
			return cur
		}
	}
	return nil
}

// TopLevel returns the outermost class enclosing s.
func (s *Symbol) TopLevel() *Symbol {
	c := s.DeclaringClass()
	for c != nil && c.Owner != nil {
		c = c.Owner.DeclaringClass()
	}
	return c
}

// SuperClass returns the direct superclass symbol of a class.
func (s *Symbol) SuperClass() *Symbol {
	if s == nil || s.Super == nil {
		return nil
	}
	return s.Super.Class
}

// Fields returns the fields declared directly in class s.
func (s *Symbol) Fields() []*Symbol { return s.membersOf(SymbolField, false) }

// Methods returns the methods (constructors excluded) declared directly in s.
func (s *Symbol) Methods() []*Symbol { return s.membersOf(SymbolMethod, false) }

// Constructors returns the declared constructors of s, or the implicit one.
func (s *Symbol) Constructors() []*Symbol { return s.membersOf(SymbolMethod, true) }

// NestedTypes returns classes declared inside s.
func (s *Symbol) NestedTypes() []*Symbol { return s.membersOf(SymbolType, false) }

func (s *Symbol) membersOf(kind SymbolKind, ctor bool) []*Symbol {
	if s == nil {
		return nil
	}
	var out []*Symbol
	for _, m := range s.Members {
		if m.Kind == kind && m.IsConstructor() == ctor {
			out = append(out, m)
		}
	}
	return out
}

// LookupField ищет поле по имени в классе и его суперклассах.
func (s *Symbol) LookupField(name string) *Symbol {
	for c := s; c != nil; c = c.SuperClass() {
		for _, f := range c.Fields() {
			if f.Name == name {
				return f
			}
		}
	}
	return nil
}

// LookupMethods returns the methods named name visible in s, own class first.
func (s *Symbol) LookupMethods(name string) []*Symbol {
	var out []*Symbol
	for c := s; c != nil; c = c.SuperClass() {
		for _, m := range c.Methods() {
			if m.Name == name {
				out = append(out, m)
			}
		}
	}
	return out
}

// AllFields returns fields of s and its superclasses, nearest first.
func (s *Symbol) AllFields() []*Symbol {
	var out []*Symbol
	for c := s; c != nil; c = c.SuperClass() {
		out = append(out, c.Fields()...)
	}
	return out
}

// AllMethods returns methods of s and its superclasses, nearest first.
func (s *Symbol) AllMethods() []*Symbol {
	var out []*Symbol
	for c := s; c != nil; c = c.SuperClass() {
		out = append(out, c.Methods()...)
	}
	return out
}

// ParamTypes returns the declared parameter types of a method.
func (s *Symbol) ParamTypes() []*Type {
	out := make([]*Type, len(s.Params))
	for i, p := range s.Params {
		out[i] = p.Type
	}
	return out
}

// Signature renders a method as name(T1, T2).
func (s *Symbol) Signature() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteByte('(')
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Type.String())
	}
	b.WriteByte(')')
	return b.String()
}

func (s *Symbol) String() string {
	if s == nil {
		return "<nil>"
	}
	switch s.Kind {
	case SymbolMethod:
		if c := s.DeclaringClass(); c != nil {
			return c.Name + "." + s.Signature()
		}
		return s.Signature()
	case SymbolField:
		if c := s.DeclaringClass(); c != nil {
			return c.Name + "." + s.Name
		}
	}
	return s.Name
}
