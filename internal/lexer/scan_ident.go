package lexer

import (
	"unicode/utf8"

	"rsbundle/internal/token"

	"golang.org/x/text/unicode/norm"
)

// scanIdentOrKeyword сканирует идентификатор и проверяет LookupKeyword.
// Юникодные идентификаторы нормализуются в NFC, как это делает rustc.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()
	if !lx.consumeIdent() {
		return lx.scanOperatorOrPunct()
	}

	sp := lx.cursor.SpanFrom(start)
	text := lx.identText(lx.file.Content[sp.Start:sp.End])

	if text == "_" {
		return token.Token{Kind: token.Underscore, Span: sp, Text: text}
	}
	if k, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: k, Span: sp, Text: text}
	}
	return token.Token{Kind: token.Ident, Span: sp, Text: text}
}

// consumeIdent eats one identifier; false means nothing was consumed.
func (lx *Lexer) consumeIdent() bool {
	r, sz := lx.peekRune()
	if sz == 0 {
		return false
	}
	if r < utf8RuneSelf {
		if !isIdentStartByte(byte(r)) {
			return false
		}
		lx.cursor.Bump()
	} else {
		if !isIdentStartRune(r) {
			return false
		}
		lx.bumpRune()
	}
	for {
		b := lx.cursor.Peek()
		if b < utf8RuneSelf {
			if !isIdentContinueByte(b) || lx.cursor.EOF() {
				return true
			}
			lx.cursor.Bump()
			continue
		}
		r2, sz2 := lx.peekRune()
		if sz2 == 0 || !isIdentContinueRune(r2) {
			return true
		}
		lx.bumpRune()
	}
}

func (lx *Lexer) identText(raw []byte) string {
	for _, b := range raw {
		if b >= utf8.RuneSelf {
			return norm.NFC.String(string(raw))
		}
	}
	return string(raw)
}

// scanPrefixed handles tokens starting with r, b or c that are not plain
// identifiers: raw identifiers, raw strings, byte/C strings and byte chars.
func (lx *Lexer) scanPrefixed() (token.Token, bool) {
	start := lx.cursor.Mark()
	c := &lx.cursor
	b0, b1, b2 := c.PeekAt(0), c.PeekAt(1), c.PeekAt(2)

	switch {
	case b0 == 'r' && b1 == '#' && isIdentStartByte(b2):
		// r#ident: сырой идентификатор, ключевые слова не распознаются
		c.Off += 2
		lx.consumeIdent()
		return lx.emit(token.Ident, start), true
	case b0 == 'r' && (b1 == '"' || b1 == '#'):
		c.Bump()
		return lx.scanRawString(start), true
	case (b0 == 'b' || b0 == 'c') && b1 == 'r' && (b2 == '"' || b2 == '#'):
		c.Off += 2
		return lx.scanRawString(start), true
	case b0 == 'b' && b1 == '"':
		c.Bump()
		return lx.scanString(start, token.ByteStringLit), true
	case b0 == 'c' && b1 == '"':
		c.Bump()
		return lx.scanString(start, token.StringLit), true
	case b0 == 'b' && b1 == '\'':
		c.Bump()
		return lx.scanQuoted(start, token.ByteLit), true
	}
	return token.Token{}, false
}
