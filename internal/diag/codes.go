package diag

import (
	"fmt"
	"sort"
)

// Code is a compact diagnostic identifier; the thousands digit selects the producer.
type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Лексические
	LexInfo                  Code = 1000
	LexUnknownChar           Code = 1001
	LexUnterminatedString    Code = 1002
	LexUnterminatedChar      Code = 1003
	LexUnterminatedBlockComm Code = 1004
	LexBadNumber             Code = 1005
	LexBadEscape             Code = 1006
	LexEmptyCharLiteral      Code = 1007
	LexTooManyCharsInCharLit Code = 1008

	// Синтаксические
	SynInfo                  Code = 2000
	SynUnexpectedToken       Code = 2001
	SynExpectIdentifier      Code = 2002
	SynExpectType            Code = 2003
	SynExpectExpression      Code = 2004
	SynExpectRParen          Code = 2005
	SynExpectRBrace          Code = 2006
	SynExpectRBracket        Code = 2007
	SynExpectColon           Code = 2008
	SynExpectLBrace          Code = 2009
	SynUnclosedBlock         Code = 2010
	SynExpectLParen          Code = 2011
	SynExpectSemicolon       Code = 2012
	SynExpectTypeDecl        Code = 2013
	SynIllegalStatementStart Code = 2014
	SynElseWithoutIf         Code = 2015
	SynTryWithoutCatch       Code = 2016

	// Семантические
	SemInfo                      Code = 3000
	SemUndefinedName             Code = 3001
	SemUndefinedField            Code = 3002
	SemUndefinedMethod           Code = 3003
	SemUndefinedConstructor      Code = 3004
	SemUndefinedType             Code = 3005
	SemParameterMismatch         Code = 3006
	SemTypeMismatch              Code = 3007
	SemUnhandledException        Code = 3008
	SemUnreachableCatch          Code = 3009
	SemVoidMethodReturnsValue    Code = 3010
	SemShouldReturnValue         Code = 3011
	SemMissingReturnType         Code = 3012
	SemNotVisibleField           Code = 3013
	SemNotVisibleMethod          Code = 3014
	SemNotVisibleType            Code = 3015
	SemNonStaticFieldFromStatic  Code = 3016
	SemNonStaticMethodFromStatic Code = 3017
	SemFinalAssignment           Code = 3018
	SemIllegalModifier           Code = 3019
	SemUninitializedLocal        Code = 3020
	SemDuplicateLocal            Code = 3021
	SemStaticAccessViaInstance   Code = 3022
	SemUnreachableCode           Code = 3023
	SemMissingReturn             Code = 3024

	// Линтер
	LntInfo                 Code = 4000
	LntUnusedLocal          Code = 4001
	LntUnusedPrivateField   Code = 4002
	LntUnusedPrivateMethod  Code = 4003
	LntSuperfluousSemicolon Code = 4004
	LntUnnecessaryElse      Code = 4005
	LntAssignmentNoEffect   Code = 4006
	LntFallthroughCase      Code = 4007
	LntUnusedThrows         Code = 4008
	LntLocalHidesField      Code = 4009

	// Ввод-вывод
	IOInfo          Code = 5000
	IOLoadFileError Code = 5001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                  "Unknown error",
		LexInfo:                      "Lexical information",
		LexUnknownChar:               "Unknown character",
		LexUnterminatedString:        "Unterminated string literal",
		LexUnterminatedChar:          "Unterminated character literal",
		LexUnterminatedBlockComm:     "Unterminated block comment",
		LexBadNumber:                 "Malformed numeric literal",
		LexBadEscape:                 "Invalid escape sequence",
		LexEmptyCharLiteral:          "Empty character literal",
		LexTooManyCharsInCharLit:     "Character literal holds more than one character",
		SynInfo:                      "Syntax information",
		SynUnexpectedToken:           "Unexpected token",
		SynExpectIdentifier:          "Expected identifier",
		SynExpectType:                "Expected type",
		SynExpectExpression:          "Expected expression",
		SynExpectRParen:              "Expected ')'",
		SynExpectRBrace:              "Expected '}'",
		SynExpectRBracket:            "Expected ']'",
		SynExpectColon:               "Expected ':'",
		SynExpectLBrace:              "Expected '{'",
		SynUnclosedBlock:             "Unclosed block",
		SynExpectLParen:              "Expected '('",
		SynExpectSemicolon:           "Expected ';'",
		SynExpectTypeDecl:            "Expected class declaration",
		SynIllegalStatementStart:     "Illegal start of statement",
		SynElseWithoutIf:             "'else' without 'if'",
		SynTryWithoutCatch:           "'try' without 'catch' or 'finally'",
		SemInfo:                      "Semantic information",
		SemUndefinedName:             "Name cannot be resolved",
		SemUndefinedField:            "Field is undefined",
		SemUndefinedMethod:           "Method is undefined",
		SemUndefinedConstructor:      "Constructor is undefined",
		SemUndefinedType:             "Type cannot be resolved",
		SemParameterMismatch:         "Method is not applicable for the arguments",
		SemTypeMismatch:              "Type mismatch",
		SemUnhandledException:        "Unhandled exception",
		SemUnreachableCatch:          "Unreachable catch block",
		SemVoidMethodReturnsValue:    "Void method cannot return a value",
		SemShouldReturnValue:         "Method must return a value",
		SemMissingReturnType:         "Return type for the method is missing",
		SemNotVisibleField:           "Field is not visible",
		SemNotVisibleMethod:          "Method is not visible",
		SemNotVisibleType:            "Type is not visible",
		SemNonStaticFieldFromStatic:  "Cannot make a static reference to a non-static field",
		SemNonStaticMethodFromStatic: "Cannot make a static reference to a non-static method",
		SemFinalAssignment:           "Final variable cannot be assigned",
		SemIllegalModifier:           "Illegal modifier",
		SemUninitializedLocal:        "Local variable may not have been initialized",
		SemDuplicateLocal:            "Duplicate local variable",
		SemStaticAccessViaInstance:   "Static member should be accessed in a static way",
		SemUnreachableCode:           "Unreachable code",
		SemMissingReturn:             "Missing return statement",
		LntInfo:                      "Lint information",
		LntUnusedLocal:               "Local variable is never read",
		LntUnusedPrivateField:        "Private field is never read",
		LntUnusedPrivateMethod:       "Private method is never used",
		LntSuperfluousSemicolon:      "Unnecessary semicolon",
		LntUnnecessaryElse:           "Unnecessary else",
		LntAssignmentNoEffect:        "Assignment has no effect",
		LntFallthroughCase:           "Switch case may fall through",
		LntUnusedThrows:              "Declared exception is never thrown",
		LntLocalHidesField:           "Local variable hides a field",
		IOInfo:                       "I/O information",
		IOLoadFileError:              "File cannot be read",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("LNT%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCode resolves a rendered identifier such as "SEM3001" back to its Code.
func ParseCode(id string) (Code, bool) {
	for c := range codeDescription {
		if c != UnknownCode && c.ID() == id {
			return c, true
		}
	}
	return UnknownCode, false
}

// Codes returns every known code in ascending order.
func Codes() []Code {
	out := make([]Code, 0, len(codeDescription))
	for c := range codeDescription {
		if c == UnknownCode {
			continue
		}
		out = append(out, c)
	}
	sortCodes(out)
	return out
}

func sortCodes(cs []Code) {
	sort.Slice(cs, func(i, j int) bool { return cs[i] < cs[j] })
}
