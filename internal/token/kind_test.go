package token_test

import (
	"testing"

	"rsbundle/internal/source"
	"rsbundle/internal/token"
)

func tok(k token.Kind) token.Token {
	return token.Token{Kind: k, Span: source.Span{Start: 0, End: 0}}
}

func TestIsLiteral(t *testing.T) {
	lits := []token.Kind{
		token.IntLit, token.FloatLit, token.CharLit, token.ByteLit,
		token.StringLit, token.ByteStringLit, token.RawStringLit,
	}
	for _, k := range lits {
		if !tok(k).IsLiteral() {
			t.Fatalf("%v should be literal", k)
		}
	}
	non := []token.Kind{token.Ident, token.KwTrue, token.Plus, token.LParen, token.DocLineOuter}
	for _, k := range non {
		if tok(k).IsLiteral() {
			t.Fatalf("%v must NOT be literal", k)
		}
	}
}

func TestPunctTextRoundTrip(t *testing.T) {
	for k := token.Plus; k <= token.RBracket; k++ {
		if !k.IsPunct() {
			t.Fatalf("%v should be punct", k)
		}
		if k.Text() == "" {
			t.Fatalf("%d has no fixed text", k)
		}
	}
	if token.Ident.IsPunct() || token.KwFn.IsPunct() {
		t.Fatal("words must not be punct")
	}
}

func TestDocKinds(t *testing.T) {
	if !token.DocLineInner.IsInnerDoc() || token.DocLineOuter.IsInnerDoc() {
		t.Fatal("inner doc classification is wrong")
	}
	if !tok(token.DocBlockOuter).IsDoc() {
		t.Fatal("block doc must be a doc token")
	}
}

func TestNewlineBefore(t *testing.T) {
	tk := token.Token{Kind: token.KwFn, Leading: []token.Trivia{
		{Kind: token.TriviaLineComment, Text: "// x"},
		{Kind: token.TriviaNewline, Text: "\n"},
	}}
	if !tk.NewlineBefore() {
		t.Fatal("expected newline before token")
	}
	if tok(token.KwFn).NewlineBefore() {
		t.Fatal("bare token has no newline")
	}
}

func TestCloser(t *testing.T) {
	if token.LBrace.Closer() != token.RBrace || token.Comma.Closer() != token.Invalid {
		t.Fatal("Closer mismatch")
	}
}
