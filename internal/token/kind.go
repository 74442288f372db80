package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident

	// keywords
	KwPackage
	KwImport
	KwClass
	KwExtends
	KwPublic
	KwProtected
	KwPrivate
	KwStatic
	KwFinal
	KwAbstract
	KwSynchronized
	KwNative
	KwTransient
	KwVolatile
	KwVoid
	KwBoolean
	KwByte
	KwChar
	KwShort
	KwInt
	KwLong
	KwFloat
	KwDouble
	KwIf
	KwElse
	KwWhile
	KwDo
	KwFor
	KwSwitch
	KwCase
	KwDefault
	KwBreak
	KwContinue
	KwReturn
	KwThrow
	KwThrows
	KwTry
	KwCatch
	KwFinally
	KwNew
	KwThis
	KwInstanceof
	KwTrue
	KwFalse
	KwNull

	// IntLit is a decimal, hex, octal or binary integer literal.
	IntLit
	// LongLit is an integer literal with an L suffix.
	LongLit
	// FloatLit is a floating point literal with an f suffix.
	FloatLit
	// DoubleLit is a floating point literal without suffix or with a d suffix.
	DoubleLit
	CharLit
	StringLit

	Plus          // +
	Minus         // -
	Star          // *
	Slash         // /
	Percent       // %
	Assign        // =
	PlusAssign    // +=
	MinusAssign   // -=
	StarAssign    // *=
	SlashAssign   // /=
	PercentAssign // %=
	AmpAssign     // &=
	PipeAssign    // |=
	CaretAssign   // ^=
	ShlAssign     // <<=
	ShrAssign     // >>=
	UshrAssign    // >>>=
	EqEq          // ==
	Bang          // !
	BangEq        // !=
	Lt            // <
	LtEq          // <=
	Gt            // >
	GtEq          // >=
	Shl           // <<
	Shr           // >>
	Ushr          // >>>
	Amp           // &
	Pipe          // |
	Caret         // ^
	Tilde         // ~
	AndAnd        // &&
	OrOr          // ||
	PlusPlus      // ++
	MinusMinus    // --
	Question      // ?
	Colon         // :
	Semicolon     // ;
	Comma         // ,
	Dot           // .
	Ellipsis      // ...
	LParen        // (
	RParen        // )
	LBrace        // {
	RBrace        // }
	LBracket      // [
	RBracket      // ]
	At            // @
)

var kindNames = [...]string{
	Invalid: "invalid", EOF: "EOF", Ident: "identifier",
	IntLit: "int literal", LongLit: "long literal", FloatLit: "float literal",
	DoubleLit: "double literal", CharLit: "char literal", StringLit: "string literal",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%", Assign: "=",
	PlusAssign: "+=", MinusAssign: "-=", StarAssign: "*=", SlashAssign: "/=",
	PercentAssign: "%=", AmpAssign: "&=", PipeAssign: "|=", CaretAssign: "^=",
	ShlAssign: "<<=", ShrAssign: ">>=", UshrAssign: ">>>=", EqEq: "==", Bang: "!",
	BangEq: "!=", Lt: "<", LtEq: "<=", Gt: ">", GtEq: ">=", Shl: "<<", Shr: ">>",
	Ushr: ">>>", Amp: "&", Pipe: "|", Caret: "^", Tilde: "~", AndAnd: "&&",
	OrOr: "||", PlusPlus: "++", MinusMinus: "--", Question: "?", Colon: ":",
	Semicolon: ";", Comma: ",", Dot: ".", Ellipsis: "...", LParen: "(",
	RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]", At: "@",
}

func (k Kind) String() string {
	if s, ok := keywordSpelling[k]; ok {
		return s
	}
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool {
	return k >= KwPackage && k <= KwNull
}

// IsPrimitiveType reports whether k names a primitive type (void excluded).
func (k Kind) IsPrimitiveType() bool {
	return k >= KwBoolean && k <= KwDouble
}

// IsModifier reports whether k is a declaration modifier keyword.
func (k Kind) IsModifier() bool {
	return k >= KwPublic && k <= KwVolatile
}

// IsLiteral reports whether k starts a literal expression.
func (k Kind) IsLiteral() bool {
	switch k {
	case IntLit, LongLit, FloatLit, DoubleLit, CharLit, StringLit, KwTrue, KwFalse, KwNull:
		return true
	default:
		return false
	}
}

// IsAssignOp reports whether k is '=' or a compound assignment.
func (k Kind) IsAssignOp() bool {
	return k >= Assign && k <= UshrAssign
}
