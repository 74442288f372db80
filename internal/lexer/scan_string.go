package lexer

import (
	"mend/internal/diag"
	"mend/internal/token"
)

// scanString: "..." с escape-последовательностями.
// Незакрытая строка обрывается на конце строки; токен остаётся StringLit,
// чтобы парсер продолжил работу, а LEX1002 указывает на место для кавычки.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch b {
		case '"':
			lx.cursor.Bump()
			return lx.emit(token.StringLit, start)
		case '\\':
			lx.scanEscape()
			continue
		case '\n':
			return lx.unterminatedString(start)
		}
		lx.cursor.Bump()
	}
	return lx.unterminatedString(start)
}

func (lx *Lexer) unterminatedString(start Mark) token.Token {
	tok := lx.emit(token.StringLit, start)
	lx.errLex(diag.LexUnterminatedString, tok.Span, "string literal is not properly closed by a double-quote", tok.Text)
	return tok
}

// scanChar: 'x' или '\n'.
func (lx *Lexer) scanChar() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '\''
	n := 0
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch b {
		case '\'':
			lx.cursor.Bump()
			tok := lx.emit(token.CharLit, start)
			switch {
			case n == 0:
				lx.errLex(diag.LexEmptyCharLiteral, tok.Span, "empty character literal")
			case n > 1:
				lx.errLex(diag.LexTooManyCharsInCharLit, tok.Span, "invalid character constant", tok.Text)
			}
			return tok
		case '\\':
			lx.scanEscape()
			n++
			continue
		case '\n':
			tok := lx.emit(token.Invalid, start)
			lx.errLex(diag.LexUnterminatedChar, tok.Span, "unterminated character literal")
			return tok
		}
		lx.bumpRune()
		n++
	}
	tok := lx.emit(token.Invalid, start)
	lx.errLex(diag.LexUnterminatedChar, tok.Span, "unterminated character literal")
	return tok
}

// scanEscape съедает '\' и одну escape-последовательность, репортит неизвестные.
func (lx *Lexer) scanEscape() {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '\'
	b := lx.cursor.Peek()
	switch {
	case b == 'b' || b == 't' || b == 'n' || b == 'f' || b == 'r' || b == '"' || b == '\'' || b == '\\' || b == 's':
		lx.cursor.Bump()
	case isOct(b):
		// \0 .. \377
		for i := 0; i < 3 && isOct(lx.cursor.Peek()); i++ {
			lx.cursor.Bump()
		}
	case b == 'u':
		for lx.cursor.Peek() == 'u' {
			lx.cursor.Bump()
		}
		for i := 0; i < 4; i++ {
			if !isHex(lx.cursor.Peek()) {
				lx.errLex(diag.LexBadEscape, lx.cursor.SpanFrom(start), "invalid unicode escape")
				return
			}
			lx.cursor.Bump()
		}
	case b == '\n' || b == 0:
		lx.errLex(diag.LexBadEscape, lx.cursor.SpanFrom(start), "invalid escape sequence")
	default:
		lx.bumpRune()
		lx.errLex(diag.LexBadEscape, lx.cursor.SpanFrom(start), "invalid escape sequence (valid ones are \\b \\t \\n \\f \\r \\\" \\' \\\\)")
	}
}
