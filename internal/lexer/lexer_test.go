package lexer_test

import (
	"fmt"
	"strings"
	"testing"

	"mend/internal/diag"
	"mend/internal/lexer"
	"mend/internal/source"
	"mend/internal/token"
)

func makeTestLexer(input string) (*lexer.Lexer, *diag.Bag) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("Test.java", []byte(input)))
	bag := diag.NewBag(32)
	return lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}}), bag
}

func kindsOf(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, tok := range toks {
		if tok.Kind == token.EOF {
			break
		}
		out = append(out, tok.Kind)
	}
	return out
}

func tokensToString(tokens []token.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = fmt.Sprintf("%v(%q)", tok.Kind, tok.Text)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func expectTokens(t *testing.T, input string, expected ...token.Kind) {
	t.Helper()
	lx, bag := makeTestLexer(input)
	toks := lx.All()
	got := kindsOf(toks)
	if len(got) != len(expected) {
		t.Fatalf("input %q: expected %d tokens, got %s (diags %v)", input, len(expected), tokensToString(toks), bag.Items())
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Errorf("input %q: token %d = %v, want %v", input, i, got[i], expected[i])
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	expectTokens(t, "public static void main",
		token.KwPublic, token.KwStatic, token.KwVoid, token.Ident)
	expectTokens(t, "$tmp _x instanceofx instanceof",
		token.Ident, token.Ident, token.Ident, token.KwInstanceof)
	expectTokens(t, "имя = 1;", token.Ident, token.Assign, token.IntLit, token.Semicolon)
}

func TestNumbers(t *testing.T) {
	cases := []struct {
		in   string
		kind token.Kind
	}{
		{"0", token.IntLit},
		{"1_000", token.IntLit},
		{"0x1F", token.IntLit},
		{"0b1010", token.IntLit},
		{"017", token.IntLit},
		{"10L", token.LongLit},
		{"1.5", token.DoubleLit},
		{".5", token.DoubleLit},
		{"1e10", token.DoubleLit},
		{"2.5f", token.FloatLit},
		{"3d", token.DoubleLit},
		{"1.", token.DoubleLit},
	}
	for _, c := range cases {
		lx, bag := makeTestLexer(c.in)
		tok := lx.Next()
		if tok.Kind != c.kind || tok.Text != c.in {
			t.Errorf("%q lexed as %v(%q)", c.in, tok.Kind, tok.Text)
		}
		if bag.Len() != 0 {
			t.Errorf("%q: unexpected diagnostics %v", c.in, bag.Items())
		}
	}
}

func TestBadNumbers(t *testing.T) {
	for _, in := range []string{"0x", "1e+", "1.5L", "12abc", "089"} {
		lx, bag := makeTestLexer(in)
		lx.All()
		if len(bag.ByCode(diag.LexBadNumber)) == 0 {
			t.Errorf("%q: expected %s", in, diag.LexBadNumber.ID())
		}
	}
}

func TestOperatorsAreGreedy(t *testing.T) {
	expectTokens(t, "a >>>= b >>> c >> d > e",
		token.Ident, token.UshrAssign, token.Ident, token.Ushr, token.Ident,
		token.Shr, token.Ident, token.Gt, token.Ident)
	expectTokens(t, "i++ + ++j",
		token.Ident, token.PlusPlus, token.Plus, token.PlusPlus, token.Ident)
	expectTokens(t, "!a && b || ~c",
		token.Bang, token.Ident, token.AndAnd, token.Ident, token.OrOr, token.Tilde, token.Ident)
	expectTokens(t, "String... args", token.Ident, token.Ellipsis, token.Ident)
	expectTokens(t, "a.b", token.Ident, token.Dot, token.Ident)
}

func TestStringsAndChars(t *testing.T) {
	expectTokens(t, `"a\"b\n" 'c' '\n' 'A'`,
		token.StringLit, token.CharLit, token.CharLit, token.CharLit)

	lx, bag := makeTestLexer("s = \"abc;\nint x;")
	toks := lx.All()
	if toks[2].Kind != token.StringLit || toks[2].Text != "\"abc;" {
		t.Fatalf("unterminated string token = %v(%q)", toks[2].Kind, toks[2].Text)
	}
	got := bag.ByCode(diag.LexUnterminatedString)
	if len(got) != 1 {
		t.Fatalf("expected one %s, got %v", diag.LexUnterminatedString.ID(), bag.Items())
	}
	if got[0].Primary.End != 9 {
		t.Fatalf("diagnostic should end at the newline, got %v", got[0].Primary)
	}
	if toks[3].Kind != token.KwInt {
		t.Fatalf("lexing must resume on the next line, got %v", toks[3].Kind)
	}

	_, bag = makeTestLexer(`"bad \q"`)
	if bag.Len() != 0 {
		t.Fatalf("lexer must be lazy until Next is called")
	}
	lx, bag = makeTestLexer(`"bad \q"`)
	lx.All()
	if len(bag.ByCode(diag.LexBadEscape)) != 1 {
		t.Fatalf("expected bad escape, got %v", bag.Items())
	}
}

func TestTriviaIsAttachedToNextToken(t *testing.T) {
	lx, bag := makeTestLexer("/** doc */\n// line\nclass /* c */ A {}\n")
	toks := lx.All()
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics %v", bag.Items())
	}
	cls := toks[0]
	if cls.Kind != token.KwClass {
		t.Fatalf("first token = %v", cls.Kind)
	}
	var kinds []token.TriviaKind
	for _, tr := range cls.Leading {
		kinds = append(kinds, tr.Kind)
	}
	want := []token.TriviaKind{token.TriviaDocBlock, token.TriviaNewline, token.TriviaLineComment, token.TriviaNewline}
	if fmt.Sprint(kinds) != fmt.Sprint(want) {
		t.Fatalf("leading trivia = %v, want %v", kinds, want)
	}
	if !cls.HasNewlineBefore() {
		t.Fatalf("HasNewlineBefore() = false")
	}
	if ident := toks[1]; len(ident.Leading) != 3 || ident.Leading[1].Kind != token.TriviaBlockComment {
		t.Fatalf("ident trivia = %+v", ident.Leading)
	}
	eof := toks[len(toks)-1]
	if eof.Kind != token.EOF || len(eof.Leading) != 1 {
		t.Fatalf("trailing newline must be kept on EOF, got %+v", eof)
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	lx, bag := makeTestLexer("int /* never closed")
	toks := lx.All()
	if toks[len(toks)-1].Kind != token.EOF {
		t.Fatalf("expected EOF")
	}
	if len(bag.ByCode(diag.LexUnterminatedBlockComm)) != 1 {
		t.Fatalf("expected unterminated comment diagnostic, got %v", bag.Items())
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	lx, _ := makeTestLexer("a b")
	if p := lx.Peek(); p.Text != "a" {
		t.Fatalf("Peek = %q", p.Text)
	}
	if n := lx.Next(); n.Text != "a" {
		t.Fatalf("Next after Peek = %q", n.Text)
	}
	if n := lx.Next(); n.Text != "b" {
		t.Fatalf("second Next = %q", n.Text)
	}
}

func TestUnknownCharacter(t *testing.T) {
	lx, bag := makeTestLexer("a # b")
	toks := lx.All()
	if toks[1].Kind != token.Invalid || toks[1].Text != "#" {
		t.Fatalf("unexpected token %v(%q)", toks[1].Kind, toks[1].Text)
	}
	if d := bag.ByCode(diag.LexUnknownChar); len(d) != 1 || d[0].Arg(0) != "#" {
		t.Fatalf("expected unknown char diagnostic, got %v", bag.Items())
	}
}
