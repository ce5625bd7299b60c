package token

import (
	"rsbundle/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is a numeric, char, byte or string literal.
// true/false are keywords.
func (t Token) IsLiteral() bool {
	return t.Kind.IsLiteral()
}

// IsPunctOrOp reports whether the token is a punctuation or operator.
func (t Token) IsPunctOrOp() bool {
	return t.Kind.IsPunct()
}

// IsKeyword reports whether the token is a strict keyword.
func (t Token) IsKeyword() bool {
	return t.Kind.IsKeyword()
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// IsIdentText reports whether the token is the identifier text.
func (t Token) IsIdentText(text string) bool { return t.Kind == Ident && t.Text == text }

// IsDoc reports whether the token is a doc comment.
func (t Token) IsDoc() bool { return t.Kind.IsDoc() }

// NewlineBefore reports whether leading trivia contains a line break.
func (t Token) NewlineBefore() bool {
	for _, tv := range t.Leading {
		if tv.Kind == TriviaNewline {
			return true
		}
	}
	return false
}

func (k Kind) IsLiteral() bool {
	return k >= IntLit && k <= RawStringLit
}

func (k Kind) IsKeyword() bool {
	return k >= KwAs && k <= KwWhile
}

func (k Kind) IsPunct() bool {
	return k >= Plus && k <= RBracket
}

func (k Kind) IsDoc() bool {
	return k >= DocLineOuter && k <= DocBlockInner
}

// IsInnerDoc reports //! and /*! */.
func (k Kind) IsInnerDoc() bool {
	return k == DocLineInner || k == DocBlockInner
}

// IsWord reports identifiers, keywords and lifetimes: tokens that glue with a
// following word character.
func (k Kind) IsWord() bool {
	return k == Ident || k == Lifetime || k.IsKeyword()
}

// IsOpen reports ( [ {.
func (k Kind) IsOpen() bool {
	return k == LParen || k == LBracket || k == LBrace
}

// IsClose reports ) ] }.
func (k Kind) IsClose() bool {
	return k == RParen || k == RBracket || k == RBrace
}

// Closer returns the matching closing delimiter for an opening one.
func (k Kind) Closer() Kind {
	switch k {
	case LParen:
		return RParen
	case LBracket:
		return RBracket
	case LBrace:
		return RBrace
	}
	return Invalid
}
