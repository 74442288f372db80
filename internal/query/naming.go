package query

import (
	"strconv"
	"strings"
	"unicode"

	"mend/internal/ast"
	"mend/internal/symbols"
	"mend/internal/token"
)

// NamingConventions are the configurable name prefixes.
type NamingConventions struct {
	FieldPrefix  string
	StaticPrefix string
	LocalPrefix  string
	// CamelConstants keeps constant names in camel case instead of UPPER_CASE.
	CamelConstants bool
}

// VariableKind selects the naming convention of a suggestion.
type VariableKind uint8

const (
	VarLocal VariableKind = iota
	VarParam
	VarField
	VarStaticField
	VarConstant
)

var accessorPrefixes = []string{"get", "is", "to", "create", "new"}

// baseNamesForExpr derives name stems from an expression: getFoo() → foo,
// new Bar() → bar, a plain name keeps its spelling.
func baseNamesForExpr(t *ast.Tree, expr ast.NodeID) []string {
	expr = SkipParens(t, expr)
	switch t.Kind(expr) {
	case ast.KindCall:
		name := t.Node(t.Child(expr, ast.CallName)).Text
		for _, pre := range accessorPrefixes {
			if len(name) > len(pre) && strings.HasPrefix(name, pre) && unicode.IsUpper(rune(name[len(pre)])) {
				return []string{lowerFirst(name[len(pre):])}
			}
		}
		return []string{name}
	case ast.KindName:
		return []string{t.Node(expr).Text}
	case ast.KindQualifiedName:
		return []string{t.Node(t.Child(expr, ast.QualifiedNameName)).Text}
	case ast.KindFieldAccess:
		return []string{t.Node(t.Child(expr, ast.FieldAccessName)).Text}
	case ast.KindCast:
		return baseNamesForExpr(t, t.Child(expr, ast.CastExpr))
	}
	return nil
}

// baseNamesForType: StringBuilder → stringBuilder, builder; int → i; T[] → ts.
func baseNamesForType(typ *symbols.Type) []string {
	switch {
	case typ == nil:
		return nil
	case typ.IsArray():
		var out []string
		for _, n := range baseNamesForType(typ.ElementType()) {
			out = append(out, plural(n))
		}
		return out
	case typ.IsPrimitive():
		return []string{typ.String()[:1]}
	case typ.IsClass():
		return camelSuffixes(typ.Class.Name)
	}
	return nil
}

// camelSuffixes returns the camel-case tails of name, longest first.
func camelSuffixes(name string) []string {
	var out []string
	for i, r := range name {
		if i == 0 || unicode.IsUpper(r) {
			out = append(out, lowerFirst(name[i:]))
		}
	}
	return out
}

func plural(s string) string {
	if strings.HasSuffix(s, "s") {
		return s + "es"
	}
	return s + "s"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// ConstantName converts camelCase to UPPER_SNAKE.
func ConstantName(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func (nc NamingConventions) apply(kind VariableKind, stem string) string {
	switch kind {
	case VarConstant:
		if nc.CamelConstants {
			return stem
		}
		return ConstantName(stem)
	case VarStaticField:
		if nc.StaticPrefix != "" {
			return nc.StaticPrefix + upperFirst(stem)
		}
	case VarField:
		if nc.FieldPrefix != "" {
			return nc.FieldPrefix + upperFirst(stem)
		}
	case VarLocal:
		if nc.LocalPrefix != "" {
			return nc.LocalPrefix + upperFirst(stem)
		}
	}
	return stem
}

// SuggestVariableNames proposes names for a variable holding expr (may be
// NoNodeID) of type typ. Names in used are avoided by numbering; the result is
// never empty.
func SuggestVariableNames(t *ast.Tree, expr ast.NodeID, typ *symbols.Type, kind VariableKind, nc NamingConventions, used map[string]bool) []string {
	var stems []string
	if expr != ast.NoNodeID {
		stems = append(stems, baseNamesForExpr(t, expr)...)
	}
	stems = append(stems, baseNamesForType(typ)...)
	if len(stems) == 0 {
		stems = []string{"object"}
	}
	seen := make(map[string]bool)
	var out []string
	for _, stem := range stems {
		name := nc.apply(kind, stem)
		if _, kw := token.LookupKeyword(name); kw {
			name += "1"
		}
		name = unique(name, used)
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func unique(name string, used map[string]bool) string {
	if !used[name] {
		return name
	}
	for i := 2; ; i++ {
		cand := name + strconv.Itoa(i)
		if !used[cand] {
			return cand
		}
	}
}

// UsedVariableNames collects names that a new variable near id must not
// shadow or clash with: everything visible at id plus every variable declared
// in the enclosing body declaration.
func UsedVariableNames(t *ast.Tree, r symbols.Resolver, id ast.NodeID) map[string]bool {
	used := make(map[string]bool)
	for _, v := range r.VisibleVariables(id) {
		used[v.Name] = true
	}
	if decl := FindEnclosingBodyDeclaration(t, id); decl != ast.NoNodeID {
		for _, c := range t.Collect(decl, func(_ ast.NodeID, n *ast.Node) bool {
			return n.Kind == ast.KindVarFragment || n.Kind == ast.KindParam
		}) {
			nameProp := ast.FragmentName
			if t.Kind(c) == ast.KindParam {
				nameProp = ast.ParamName
			}
			used[t.Node(t.Child(c, nameProp)).Text] = true
		}
	}
	return used
}
