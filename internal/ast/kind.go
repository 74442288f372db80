package ast

// Kind is the closed set of syntax node kinds. Adding a kind means extending
// kindNames, kindProps and every exhaustive switch over Kind.
type Kind uint8

const (
	KindInvalid Kind = iota

	// unit and declarations
	KindCompilationUnit
	KindPackageDecl
	KindImportDecl
	KindTypeDecl
	KindFieldDecl
	KindMethodDecl
	KindParam
	KindVarFragment
	KindEmptyDecl

	// types
	KindPrimitiveType
	KindSimpleType
	KindArrayType

	// statements
	KindBlock
	KindLocalVarDecl
	KindExprStmt
	KindIf
	KindWhile
	KindDo
	KindFor
	KindSwitch
	KindSwitchCase
	KindBreak
	KindContinue
	KindReturn
	KindThrow
	KindTry
	KindCatch
	KindEmpty
	KindOpaqueStmt

	// expressions
	KindName
	KindQualifiedName
	KindLiteral
	KindThis
	KindParen
	KindInfix
	KindPrefix
	KindPostfix
	KindAssign
	KindConditional
	KindInstanceOf
	KindCast
	KindCall
	KindFieldAccess
	KindArrayAccess
	KindNew
	KindNewArray
	KindArrayInit
	KindOpaqueExpr

	// KindPlaceholder stands for text that is not a parsed node: a move or copy
	// of an original node, or verbatim synthesized text. Only edit scripts create it.
	KindPlaceholder

	kindCount
)

var kindNames = [...]string{
	KindInvalid:         "Invalid",
	KindCompilationUnit: "CompilationUnit",
	KindPackageDecl:     "PackageDecl",
	KindImportDecl:      "ImportDecl",
	KindTypeDecl:        "TypeDecl",
	KindFieldDecl:       "FieldDecl",
	KindMethodDecl:      "MethodDecl",
	KindParam:           "Param",
	KindVarFragment:     "VarFragment",
	KindEmptyDecl:       "EmptyDecl",
	KindPrimitiveType:   "PrimitiveType",
	KindSimpleType:      "SimpleType",
	KindArrayType:       "ArrayType",
	KindBlock:           "Block",
	KindLocalVarDecl:    "LocalVarDecl",
	KindExprStmt:        "ExprStmt",
	KindIf:              "If",
	KindWhile:           "While",
	KindDo:              "Do",
	KindFor:             "For",
	KindSwitch:          "Switch",
	KindSwitchCase:      "SwitchCase",
	KindBreak:           "Break",
	KindContinue:        "Continue",
	KindReturn:          "Return",
	KindThrow:           "Throw",
	KindTry:             "Try",
	KindCatch:           "Catch",
	KindEmpty:           "Empty",
	KindOpaqueStmt:      "OpaqueStmt",
	KindName:            "Name",
	KindQualifiedName:   "QualifiedName",
	KindLiteral:         "Literal",
	KindThis:            "This",
	KindParen:           "Paren",
	KindInfix:           "Infix",
	KindPrefix:          "Prefix",
	KindPostfix:         "Postfix",
	KindAssign:          "Assign",
	KindConditional:     "Conditional",
	KindInstanceOf:      "InstanceOf",
	KindCast:            "Cast",
	KindCall:            "Call",
	KindFieldAccess:     "FieldAccess",
	KindArrayAccess:     "ArrayAccess",
	KindNew:             "New",
	KindNewArray:        "NewArray",
	KindArrayInit:       "ArrayInit",
	KindOpaqueExpr:      "OpaqueExpr",
	KindPlaceholder:     "Placeholder",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsStatement reports whether k can appear in a statement list (switch labels included).
func (k Kind) IsStatement() bool {
	return k >= KindBlock && k <= KindOpaqueStmt && k != KindCatch
}

// IsExpression reports whether k is an expression kind.
func (k Kind) IsExpression() bool {
	return k >= KindName && k <= KindOpaqueExpr
}

func (k Kind) IsType() bool {
	return k >= KindPrimitiveType && k <= KindArrayType
}

// IsBodyDeclaration reports whether k is a member of a class body.
func (k Kind) IsBodyDeclaration() bool {
	switch k {
	case KindFieldDecl, KindMethodDecl, KindTypeDecl, KindEmptyDecl:
		return true
	default:
		return false
	}
}

// IsLoop reports whether k is a loop statement.
func (k Kind) IsLoop() bool {
	return k == KindWhile || k == KindDo || k == KindFor
}

// IsName reports whether k is a simple or qualified name.
func (k Kind) IsName() bool {
	return k == KindName || k == KindQualifiedName
}
