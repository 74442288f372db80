package lexer

import (
	"mend/internal/diag"
	"mend/internal/token"
)

// Числа: 0x.., 0b.., восьмеричные 0NN, десятичные, дробные с экспонентой.
// Суффиксы: L/l → LongLit, f/F → FloatLit, d/D → DoubleLit. '_' допускается между цифрами.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	digits := func(ok func(byte) bool) int {
		n := 0
		for {
			b := lx.cursor.Peek()
			if !ok(b) && b != '_' {
				return n
			}
			lx.cursor.Bump()
			n++
		}
	}

	if lx.cursor.Peek() == '.' {
		lx.cursor.Bump()
		digits(isDec)
		kind = token.DoubleLit
		if !lx.scanExponent(start) {
			return lx.badNumber(start, "expected digit after exponent")
		}
		return lx.numberSuffix(start, kind)
	}

	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '0' {
		switch b1 {
		case 'x', 'X':
			lx.cursor.Off += 2
			if digits(isHex) == 0 {
				return lx.badNumber(start, "hexadecimal literal has no digits")
			}
			return lx.numberSuffix(start, token.IntLit)
		case 'b', 'B':
			lx.cursor.Off += 2
			if digits(func(b byte) bool { return b == '0' || b == '1' }) == 0 {
				return lx.badNumber(start, "binary literal has no digits")
			}
			return lx.numberSuffix(start, token.IntLit)
		}
	}

	digits(isDec)

	// "1." — double; "1.." и "1.foo" не трогаем
	if lx.cursor.Peek() == '.' {
		next := lx.cursor.PeekAt(1)
		if next != '.' && !isIdentStartByte(next) {
			lx.cursor.Bump()
			digits(isDec)
			kind = token.DoubleLit
		}
	}
	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		kind = token.DoubleLit
		if !lx.scanExponent(start) {
			return lx.badNumber(start, "expected digit after exponent")
		}
	}
	tok := lx.numberSuffix(start, kind)
	if tok.Kind == token.IntLit && len(tok.Text) > 1 && tok.Text[0] == '0' && isDec(tok.Text[1]) {
		for i := 1; i < len(tok.Text); i++ {
			if c := tok.Text[i]; c != '_' && !isOct(c) {
				lx.errLex(diag.LexBadNumber, tok.Span, "invalid digit in octal literal")
				break
			}
		}
	}
	return tok
}

// scanExponent съедает [eE][+-]?digits; false — если цифр нет.
func (lx *Lexer) scanExponent(start Mark) bool {
	b := lx.cursor.Peek()
	if b != 'e' && b != 'E' {
		return true
	}
	lx.cursor.Bump()
	lx.cursor.EatAny("+-")
	if !isDec(lx.cursor.Peek()) {
		return false
	}
	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}
	return true
}

func (lx *Lexer) numberSuffix(start Mark, kind token.Kind) token.Token {
	switch b, _ := lx.cursor.EatAny("lLfFdD"); b {
	case 'l', 'L':
		if kind != token.IntLit {
			return lx.badNumber(start, "long suffix on a floating point literal")
		}
		kind = token.LongLit
	case 'f', 'F':
		kind = token.FloatLit
	case 'd', 'D':
		kind = token.DoubleLit
	}
	if isIdentContinueByte(lx.cursor.Peek()) {
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		return lx.badNumber(start, "invalid suffix on numeric literal")
	}
	return lx.emit(kind, start)
}

func (lx *Lexer) badNumber(start Mark, msg string) token.Token {
	tok := lx.emit(token.Invalid, start)
	lx.errLex(diag.LexBadNumber, tok.Span, msg, tok.Text)
	return tok
}
