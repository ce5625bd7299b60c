package lexer

import (
	"rsbundle/internal/diag"
	"rsbundle/internal/token"
)

// scanString сканирует "..." начиная с открывающей кавычки; start может
// указывать на префикс (b, c). Переводы строк внутри литерала допустимы.
func (lx *Lexer) scanString(start Mark, kind token.Kind) token.Token {
	lx.cursor.Bump() // '"'
	for !lx.cursor.EOF() {
		b := lx.cursor.Bump()
		if b == '"' {
			lx.eatSuffix()
			return lx.emit(kind, start)
		}
		if b == '\\' && !lx.cursor.EOF() {
			lx.cursor.Bump()
		}
	}
	tok := lx.emit(token.Invalid, start)
	lx.errLex(diag.LexUnterminatedString, tok.Span, "unterminated string literal")
	return tok
}

// scanRawString сканирует #*"..."#* после префикса r / br / cr.
func (lx *Lexer) scanRawString(start Mark) token.Token {
	hashes := 0
	for lx.cursor.Eat('#') {
		hashes++
	}
	if !lx.cursor.Eat('"') {
		tok := lx.emit(token.Invalid, start)
		lx.errLex(diag.LexBadRawString, tok.Span, "expected '\"' after raw string prefix")
		return tok
	}
	for !lx.cursor.EOF() {
		if lx.cursor.Bump() != '"' {
			continue
		}
		n := 0
		for n < hashes && lx.cursor.Peek() == '#' {
			lx.cursor.Bump()
			n++
		}
		if n == hashes {
			lx.eatSuffix()
			return lx.emit(token.RawStringLit, start)
		}
	}
	tok := lx.emit(token.Invalid, start)
	lx.errLex(diag.LexUnterminatedString, tok.Span, "unterminated raw string literal")
	return tok
}

// scanCharOrLifetime различает 'x' (char) и 'a (lifetime / label).
func (lx *Lexer) scanCharOrLifetime() token.Token {
	start := lx.cursor.Mark()
	c := &lx.cursor
	next := c.PeekAt(1)

	if next != '\\' && next != '\'' {
		// одна руна и закрывающая кавычка — это char
		c.Bump()
		r, sz := lx.peekRune()
		if sz > 0 && c.PeekAt(uint32(sz)) == '\'' {
			c.Reset(start)
			return lx.scanQuoted(start, token.CharLit)
		}
		if sz > 0 && (r < utf8RuneSelf && isIdentStartByte(byte(r)) || r >= utf8RuneSelf && isIdentStartRune(r)) {
			if r == 'r' && c.PeekAt(1) == '#' {
				c.Off += 2 // 'r#ident
			}
			lx.consumeIdent()
			return lx.emit(token.Lifetime, start)
		}
		c.Reset(start)
	}
	return lx.scanQuoted(start, token.CharLit)
}

// scanQuoted сканирует '...' с экранированием; курсор на открывающей кавычке.
func (lx *Lexer) scanQuoted(start Mark, kind token.Kind) token.Token {
	lx.cursor.Bump() // '\''
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '\n' {
			break
		}
		lx.cursor.Bump()
		if b == '\'' {
			lx.eatSuffix()
			return lx.emit(kind, start)
		}
		if b == '\\' && !lx.cursor.EOF() {
			lx.cursor.Bump()
		}
	}
	tok := lx.emit(token.Invalid, start)
	lx.errLex(diag.LexUnterminatedChar, tok.Span, "unterminated character literal")
	return tok
}

// eatSuffix consumes a literal suffix such as the `u8` in 1u8 or "x"suffix.
func (lx *Lexer) eatSuffix() {
	if isIdentStartByte(lx.cursor.Peek()) {
		lx.consumeIdent()
	}
}
