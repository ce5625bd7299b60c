package lexer_test

import (
	"fmt"
	"strings"
	"testing"

	"rsbundle/internal/diag"
	"rsbundle/internal/lexer"
	"rsbundle/internal/source"
	"rsbundle/internal/token"
)

// testReporter собирает все диагностики, полученные от лексера
type testReporter struct {
	diagnostics []diag.Diagnostic
}

func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Primary:  primary,
		Notes:    notes,
	})
}

func (r *testReporter) ErrorMessages() []string {
	messages := make([]string, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		messages = append(messages, fmt.Sprintf("[%s] %s: %s", d.Code.ID(), d.Severity, d.Message))
	}
	return messages
}

// makeTestLexer создаёт лексер для тестовой строки
func makeTestLexer(input string) (*lexer.Lexer, *testReporter) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.rs", []byte(input))
	reporter := &testReporter{}
	return lexer.New(fs.Get(fileID), lexer.Options{Reporter: reporter}), reporter
}

func collectAllTokens(lx *lexer.Lexer) []token.Token {
	var tokens []token.Token
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens
		}
	}
}

// expectTokens проверяет последовательность токенов (без EOF)
func expectTokens(t *testing.T, input string, expected []token.Kind) []token.Token {
	t.Helper()
	lx, reporter := makeTestLexer(input)
	tokens := collectAllTokens(lx)
	tokens = tokens[:len(tokens)-1]

	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d\nInput: %q\nTokens: %v\nErrors: %v",
			len(expected), len(tokens), input, tokensToString(tokens), reporter.ErrorMessages())
	}
	for i, tok := range tokens {
		if tok.Kind != expected[i] {
			t.Errorf("Token %d: expected %v, got %v (text: %q)", i, expected[i], tok.Kind, tok.Text)
		}
	}
	if len(reporter.diagnostics) > 0 {
		t.Errorf("unexpected diagnostics: %v", reporter.ErrorMessages())
	}
	return tokens
}

func expectSingleToken(t *testing.T, input string, expectedKind token.Kind, expectedText string) {
	t.Helper()
	lx, reporter := makeTestLexer(input)
	tok := lx.Next()
	if tok.Kind != expectedKind {
		t.Errorf("%q: expected kind %v, got %v (errors %v)", input, expectedKind, tok.Kind, reporter.ErrorMessages())
	}
	if tok.Text != expectedText {
		t.Errorf("%q: expected text %q, got %q", input, expectedText, tok.Text)
	}
	if next := lx.Next(); next.Kind != token.EOF {
		t.Errorf("%q: expected EOF after single token, got %v(%q)", input, next.Kind, next.Text)
	}
}

func tokensToString(tokens []token.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = fmt.Sprintf("%v(%q)", tok.Kind, tok.Text)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func TestIdentifiersAndKeywords(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"foo", token.Ident},
		{"_bar", token.Ident},
		{"x123", token.Ident},
		{"union", token.Ident},
		{"macro_rules", token.Ident},
		{"r#match", token.Ident},
		{"_", token.Underscore},
		{"fn", token.KwFn},
		{"mod", token.KwMod},
		{"crate", token.KwCrate},
		{"Self", token.KwSelfUpper},
		{"self", token.KwSelfLower},
		{"while", token.KwWhile},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectSingleToken(t, tt.input, tt.kind, tt.input)
		})
	}
}

func TestUnicodeIdentNFC(t *testing.T) {
	// "e" + combining acute accent → precomposed "é"
	lx, _ := makeTestLexer("cafe\u0301")
	tok := lx.Next()
	if tok.Kind != token.Ident || tok.Text != "caf\u00e9" {
		t.Fatalf("expected NFC ident, got %v %q", tok.Kind, tok.Text)
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{"0", token.IntLit},
		{"1_000", token.IntLit},
		{"0xFF_u8", token.IntLit},
		{"0b1010", token.IntLit},
		{"0o777", token.IntLit},
		{"7usize", token.IntLit},
		{"1.5", token.FloatLit},
		{"1e10", token.FloatLit},
		{"2.5E-3", token.FloatLit},
		{"1.0f64", token.FloatLit},
		{"3f32", token.FloatLit},
		{"1.", token.FloatLit},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectSingleToken(t, tt.input, tt.kind, tt.input)
		})
	}
}

func TestNumberDoesNotEatRangeOrMethod(t *testing.T) {
	expectTokens(t, "0..n", []token.Kind{token.IntLit, token.DotDot, token.Ident})
	expectTokens(t, "1.max(2)", []token.Kind{
		token.IntLit, token.Dot, token.Ident, token.LParen, token.IntLit, token.RParen,
	})
	expectTokens(t, "0..=9", []token.Kind{token.IntLit, token.DotDotEq, token.IntLit})
}

func TestStrings(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
	}{
		{`"a   b\n"`, token.StringLit},
		{`"esc \" quote"`, token.StringLit},
		{"\"multi\nline\"", token.StringLit},
		{`b"bytes"`, token.ByteStringLit},
		{`c"cstr"`, token.StringLit},
		{`r"raw \n"`, token.RawStringLit},
		{`r#"has "quotes""#`, token.RawStringLit},
		{`r##"a "# b"##`, token.RawStringLit},
		{`br"raw bytes"`, token.RawStringLit},
		{`'x'`, token.CharLit},
		{`'\''`, token.CharLit},
		{`'\u{1F600}'`, token.CharLit},
		{`'é'`, token.CharLit},
		{`b'a'`, token.ByteLit},
		{`'a`, token.Lifetime},
		{`'static`, token.Lifetime},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectSingleToken(t, tt.input, tt.kind, tt.input)
		})
	}
}

func TestLifetimeInGenerics(t *testing.T) {
	expectTokens(t, "fn f<'a>(x: &'a str) {}", []token.Kind{
		token.KwFn, token.Ident, token.Lt, token.Lifetime, token.Gt,
		token.LParen, token.Ident, token.Colon, token.Amp, token.Lifetime, token.Ident, token.RParen,
		token.LBrace, token.RBrace,
	})
}

func TestOperators(t *testing.T) {
	expectTokens(t, "a::b -> c => d <<= e >>= f ..= g ... h # $ ~ ?", []token.Kind{
		token.Ident, token.ColonColon, token.Ident, token.Arrow, token.Ident, token.FatArrow,
		token.Ident, token.ShlAssign, token.Ident, token.ShrAssign, token.Ident, token.DotDotEq,
		token.Ident, token.DotDotDot, token.Ident, token.Pound, token.Dollar, token.Tilde, token.Question,
	})
}

func TestCommentsAreTrivia(t *testing.T) {
	toks := expectTokens(t, "// line\nfn /* block /* nested */ */ f", []token.Kind{token.KwFn, token.Ident})
	if len(toks[0].Leading) != 2 {
		t.Fatalf("expected comment+newline trivia, got %d", len(toks[0].Leading))
	}
	if toks[0].Leading[0].Kind != token.TriviaLineComment {
		t.Fatalf("expected line comment trivia first")
	}
	if toks[1].Leading[1].Kind != token.TriviaBlockComment {
		t.Fatalf("expected nested block comment trivia, got %+v", toks[1].Leading)
	}
}

func TestDocCommentsAreTokens(t *testing.T) {
	toks := expectTokens(t, "//! crate doc\n/// item doc\n/** block */\n/*! inner */\n//// plain\n/**/ fn f(){}", []token.Kind{
		token.DocLineInner, token.DocLineOuter, token.DocBlockOuter, token.DocBlockInner,
		token.KwFn, token.Ident, token.LParen, token.RParen, token.LBrace, token.RBrace,
	})
	if toks[1].Text != "/// item doc" {
		t.Fatalf("unexpected doc text %q", toks[1].Text)
	}
	if len(toks[4].Leading) < 3 {
		t.Fatalf("//// and /**/ must stay trivia, leading=%+v", toks[4].Leading)
	}
}

func TestTrailingTriviaOnEOF(t *testing.T) {
	lx, _ := makeTestLexer("x // end")
	lx.Next()
	eof := lx.Next()
	if eof.Kind != token.EOF || len(eof.Leading) != 2 {
		t.Fatalf("expected EOF carrying trailing trivia, got %+v", eof)
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		input string
		code  diag.Code
	}{
		{`"open`, diag.LexUnterminatedString},
		{"/* open", diag.LexUnterminatedBlockComment},
		{`r#"open"`, diag.LexUnterminatedString},
		{"0x", diag.LexBadNumber},
		{"€", diag.LexUnknownChar},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lx, rep := makeTestLexer(tt.input)
			collectAllTokens(lx)
			if len(rep.diagnostics) == 0 || rep.diagnostics[0].Code != tt.code {
				t.Fatalf("expected %s, got %v", tt.code.ID(), rep.ErrorMessages())
			}
		})
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

func TestTokenize(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("t.rs", []byte("let s = \"a   b\\n\";")))
	toks := lexer.Tokenize(f, lexer.Options{})
	if toks[len(toks)-1].Kind != token.EOF {
		t.Fatal("Tokenize must end with EOF")
	}
	if toks[3].Text != `"a   b\n"` {
		t.Fatalf("literal not preserved: %q", toks[3].Text)
	}
}

func TestGlue(t *testing.T) {
	tok := func(k token.Kind, text string) token.Token { return token.Token{Kind: k, Text: text} }
	cases := []struct {
		a, b token.Token
		want bool
	}{
		{tok(token.Ident, "x"), tok(token.Semicolon, ";"), true},
		{tok(token.Ident, "let"), tok(token.Ident, "x"), false},
		{tok(token.Amp, "&"), tok(token.Amp, "&"), false},
		{tok(token.Minus, "-"), tok(token.Gt, ">"), false},
		{tok(token.Slash, "/"), tok(token.Slash, "/"), false},
		{tok(token.IntLit, "1"), tok(token.Dot, "."), false},
		{tok(token.Lt, "<"), tok(token.Minus, "-"), false},
		{tok(token.Assign, "="), tok(token.StringLit, `"a   b"`), true},
		{tok(token.RParen, ")"), tok(token.LBrace, "{"), true},
	}
	for _, tc := range cases {
		if got := lexer.Glue(tc.a, tc.b); got != tc.want {
			t.Errorf("Glue(%q, %q) = %v, want %v", tc.a.Text, tc.b.Text, got, tc.want)
		}
	}
}
