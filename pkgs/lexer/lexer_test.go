package lexer

import (
	"testing"
)

func collect(input string) []Token {
	l := New(input)
	var toks []Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

func TestNextBasicSymbols(t *testing.T) {
	toks := collect(`\x.x`)
	want := []TokenType{BACKSLASH, IDENT, DOT, IDENT, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, w)
		}
	}
}

func TestNextSkipsWhitespace(t *testing.T) {
	toks := collect("  \t x   =   y  ")
	want := []TokenType{IDENT, EQUALS, IDENT, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	if toks[0].Pos != 4 {
		t.Errorf("expected leading space skipped, got Pos=%d", toks[0].Pos)
	}
}

func TestNextNumberClassification(t *testing.T) {
	toks := collect("123")
	if toks[0].Type != NUMBER {
		t.Fatalf("got %s, want NUMBER", toks[0].Type)
	}
	if toks[0].Value != "123" {
		t.Errorf("got value %q, want %q", toks[0].Value, "123")
	}
}

func TestNextIdentWithDigitsIsIdent(t *testing.T) {
	toks := collect("x1")
	if toks[0].Type != IDENT {
		t.Fatalf("got %s, want IDENT", toks[0].Type)
	}
	if toks[0].Value != "x1" {
		t.Errorf("got value %q, want %q", toks[0].Value, "x1")
	}
}

func TestNextReservedOperators(t *testing.T) {
	toks := collect("+-*/")
	want := []TokenType{PLUS, MINUS, STAR, SLASH, EOF}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, w)
		}
	}
}

func TestNextIllegalChar(t *testing.T) {
	toks := collect("x $ y")
	if toks[1].Type != ILLEGAL {
		t.Fatalf("got %s, want ILLEGAL", toks[1].Type)
	}
	if toks[1].Value != "$" {
		t.Errorf("got value %q, want %q", toks[1].Value, "$")
	}
}

func TestNextParens(t *testing.T) {
	toks := collect("(x)")
	want := []TokenType{LPAREN, IDENT, RPAREN, EOF}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, w)
		}
	}
}

func TestSetPosBacktrack(t *testing.T) {
	l := New("x = y")
	first := l.Next()
	if first.Type != IDENT {
		t.Fatalf("got %s, want IDENT", first.Type)
	}
	saved := l.Pos()
	l.Next() // EQUALS
	l.SetPos(saved)
	again := l.Next()
	if again.Type != EQUALS {
		t.Fatalf("after rewind got %s, want EQUALS", again.Type)
	}
}

func TestEOFIsStable(t *testing.T) {
	l := New("")
	a := l.Next()
	b := l.Next()
	if a.Type != EOF || b.Type != EOF {
		t.Fatalf("expected repeated EOF, got %s then %s", a.Type, b.Type)
	}
}
