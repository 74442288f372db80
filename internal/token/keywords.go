package token

var keywords = map[string]Kind{
	"package":      KwPackage,
	"import":       KwImport,
	"class":        KwClass,
	"extends":      KwExtends,
	"public":       KwPublic,
	"protected":    KwProtected,
	"private":      KwPrivate,
	"static":       KwStatic,
	"final":        KwFinal,
	"abstract":     KwAbstract,
	"synchronized": KwSynchronized,
	"native":       KwNative,
	"transient":    KwTransient,
	"volatile":     KwVolatile,
	"void":         KwVoid,
	"boolean":      KwBoolean,
	"byte":         KwByte,
	"char":         KwChar,
	"short":        KwShort,
	"int":          KwInt,
	"long":         KwLong,
	"float":        KwFloat,
	"double":       KwDouble,
	"if":           KwIf,
	"else":         KwElse,
	"while":        KwWhile,
	"do":           KwDo,
	"for":          KwFor,
	"switch":       KwSwitch,
	"case":         KwCase,
	"default":      KwDefault,
	"break":        KwBreak,
	"continue":     KwContinue,
	"return":       KwReturn,
	"throw":        KwThrow,
	"throws":       KwThrows,
	"try":          KwTry,
	"catch":        KwCatch,
	"finally":      KwFinally,
	"new":          KwNew,
	"this":         KwThis,
	"instanceof":   KwInstanceof,
	"true":         KwTrue,
	"false":        KwFalse,
	"null":         KwNull,
}

var keywordSpelling = func() map[Kind]string {
	m := make(map[Kind]string, len(keywords))
	for s, k := range keywords {
		m[k] = s
	}
	return m
}()

// LookupKeyword возвращает Kind ключевого слова; регистр важен.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
