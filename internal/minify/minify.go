package minify

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"rsbundle/internal/ast"
	"rsbundle/internal/diag"
	"rsbundle/internal/lexer"
	"rsbundle/internal/parser"
	"rsbundle/internal/source"
	"rsbundle/internal/token"
)

// Compress rewrites text at the given level. None returns text unchanged.
// Any other level re-parses its output and fails with *IntegrityError when
// the pre-order item kinds differ from the input's.
func Compress(text []byte, level Level) ([]byte, error) {
	if level == None {
		return text, nil
	}
	fs := source.NewFileSet()
	id := fs.AddVirtual("<bundle>", text)
	bag := diag.NewBag(8)
	toks := lexer.Tokenize(fs.Get(id), lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	if bag.HasErrors() {
		d := bag.Errors()[0]
		return nil, fmt.Errorf("minify: input does not lex: %s", d.Message)
	}
	before, err := parser.ParseTokens(fs, id, toks, parser.Options{})
	if err != nil {
		return nil, fmt.Errorf("minify: input does not parse: %w", err)
	}

	out := join(toks, level)
	if err := verify(before, out, level); err != nil {
		return nil, err
	}
	return out, nil
}

// verify re-parses out and compares its item kinds with before.
func verify(before *ast.Tree, out []byte, level Level) error {
	after, err := parser.ParseSource("<minified>", out)
	if err != nil {
		return &IntegrityError{Level: level, ParseErr: err}
	}
	want, got := ast.KindSequence(before), ast.KindSequence(after)
	if !slices.Equal(want, got) {
		return &IntegrityError{Level: level, Want: want, Got: got}
	}
	return nil
}

// IsIntegrityError reports whether err is (or wraps) an *IntegrityError.
func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

type joiner struct {
	buf   bytes.Buffer
	level Level
	prev  token.Token
	pp    token.Token // token before prev
	n     int
}

func join(toks []token.Token, level Level) []byte {
	j := &joiner{level: level}
	for _, t := range toks {
		if t.Kind == token.EOF {
			break
		}
		if t.Kind.IsDoc() {
			for _, dt := range docAttr(t) {
				j.emit(dt)
			}
			continue
		}
		j.emit(t)
	}
	j.buf.WriteByte('\n')
	return j.buf.Bytes()
}

func (j *joiner) emit(t token.Token) {
	if j.n > 0 && !j.glues(t) {
		j.buf.WriteByte(' ')
	}
	j.buf.WriteString(t.Text)
	j.pp, j.prev = j.prev, t
	j.n++
}

func (j *joiner) glues(t token.Token) bool {
	if lexer.Glue(j.prev, t) {
		return true
	}
	if j.level < Aggressive {
		return false
	}
	switch {
	case j.prev.Kind == token.Gt && t.Kind == token.Gt:
		// `Vec<Vec<u8> >`: парсер делит `>>` обратно
		return true
	case j.prev.Kind == token.Amp && t.Kind == token.Amp:
		return j.prefixPosition()
	case j.prev.Kind == token.Pipe && t.Kind == token.Pipe:
		return j.prefixPosition()
	}
	return false
}

// prefixPosition reports whether prev starts an operand: `&` is a
// reference and `|` opens closure parameters.
func (j *joiner) prefixPosition() bool {
	if j.n < 2 {
		return true
	}
	switch j.pp.Kind {
	case token.Ident, token.Lifetime, token.KwSelfLower, token.KwSelfUpper, token.KwCrate, token.KwSuper,
		token.KwTrue, token.KwFalse, token.RParen, token.RBracket, token.RBrace, token.Question, token.Underscore, token.Gt:
		return false
	}
	return !j.pp.Kind.IsLiteral()
}

// docAttr rewrites a doc comment as the equivalent `#[doc = "..."]` tokens.
func docAttr(t token.Token) []token.Token {
	mk := func(k token.Kind, text string) token.Token {
		return token.Token{Kind: k, Span: t.Span, Text: text}
	}
	out := []token.Token{mk(token.Pound, "#")}
	if t.Kind.IsInnerDoc() {
		out = append(out, mk(token.Bang, "!"))
	}
	return append(out,
		mk(token.LBracket, "["),
		mk(token.Ident, "doc"),
		mk(token.Assign, "="),
		mk(token.StringLit, quote(ast.DocCommentBody(t))),
		mk(token.RBracket, "]"),
	)
}

// quote produces a Rust string literal for s.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			if unicode.IsPrint(r) || r == ' ' {
				b.WriteRune(r)
			} else {
				fmt.Fprintf(&b, `\u{%x}`, r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
