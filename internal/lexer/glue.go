package lexer

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"rsbundle/internal/diag"
	"rsbundle/internal/source"
	"rsbundle/internal/token"
)

// Glue reports whether a and b written without any whitespace between them
// lex back into exactly the same two tokens.
func Glue(a, b token.Token) bool {
	if a.Kind.IsDoc() || b.Kind.IsDoc() || a.Kind == token.EOF || b.Kind == token.EOF {
		return false
	}
	// rustc склеивает `<-` в один токен
	if a.Kind == token.Lt && b.Kind == token.Minus {
		return false
	}
	key := glueKey{a.Kind, a.Text, b.Kind, b.Text}
	if v, ok := glueMemo.Get(key); ok {
		return v
	}
	ok := relexesAsPair(a, b)
	glueMemo.Add(key, ok)
	return ok
}

type glueKey struct {
	ak    token.Kind
	atext string
	bk    token.Kind
	btext string
}

// glueMemoSize bounds the memo: keys carry literal texts, so a long watch
// session would otherwise grow it without limit.
const glueMemoSize = 4096

var glueMemo = newGlueMemo(glueMemoSize)

func newGlueMemo(size int) *lru.Cache[glueKey, bool] {
	c, err := lru.New[glueKey, bool](size)
	if err != nil {
		panic(err)
	}
	return c
}

type errFlag struct{ failed bool }

func (e *errFlag) Report(_ diag.Code, sev diag.Severity, _ source.Span, _ string, _ []diag.Note) {
	if sev == diag.SevError {
		e.failed = true
	}
}

func relexesAsPair(a, b token.Token) bool {
	f := &source.File{Path: "<glue>", Content: []byte(a.Text + b.Text)}
	flag := &errFlag{}
	toks := Tokenize(f, Options{Reporter: flag})
	if flag.failed || len(toks) != 3 {
		return false
	}
	for i, want := range []token.Token{a, b} {
		got := toks[i]
		if got.Kind != want.Kind || got.Text != want.Text || len(got.Leading) != 0 {
			return false
		}
	}
	return len(toks[2].Leading) == 0
}
