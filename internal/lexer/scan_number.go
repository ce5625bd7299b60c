package lexer

import (
	"rsbundle/internal/diag"
	"rsbundle/internal/token"
)

// scanNumber: 0b..., 0o..., 0x..., 123, 1_000, 1.5, 1e-3, 2.5E+10 и суффиксы
// (1u8, 1.0f32, 7usize). Точка поглощается только если за ней не идёт
// '.', идентификатор или ещё одна точка: `0..n`, `1.max(2)`, `t.0.1`
// остаются отдельными токенами.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	c := &lx.cursor
	kind := token.IntLit

	if c.Peek() == '0' {
		var digit func(byte) bool
		switch c.PeekAt(1) {
		case 'b', 'B':
			digit = func(b byte) bool { return b == '0' || b == '1' }
		case 'o', 'O':
			digit = func(b byte) bool { return b >= '0' && b <= '7' }
		case 'x', 'X':
			digit = isHex
		}
		if digit != nil {
			c.Off += 2
			n := 0
			for digit(c.Peek()) || c.Peek() == '_' {
				if c.Peek() != '_' {
					n++
				}
				c.Bump()
			}
			if n == 0 {
				tok := lx.emit(token.Invalid, start)
				lx.errLex(diag.LexBadNumber, tok.Span, "missing digits after integer base prefix")
				return tok
			}
			lx.eatSuffix()
			return lx.emit(token.IntLit, start)
		}
	}

	lx.eatDecimalDigits()

	if c.Peek() == '.' {
		next := c.PeekAt(1)
		if next != '.' && !isIdentStartByte(next) && next < utf8RuneSelf {
			c.Bump()
			kind = token.FloatLit
			lx.eatDecimalDigits()
		}
	}

	if e := c.Peek(); e == 'e' || e == 'E' {
		next := c.PeekAt(1)
		sign := next == '+' || next == '-'
		if isDec(next) || sign && isDec(c.PeekAt(2)) || next == '_' {
			c.Bump()
			if sign {
				c.Bump()
			}
			kind = token.FloatLit
			lx.eatDecimalDigits()
		}
	}

	if isIdentStartByte(c.Peek()) {
		mark := c.Mark()
		lx.consumeIdent()
		sp := c.SpanFrom(mark)
		if sfx := string(lx.file.Content[sp.Start:sp.End]); sfx == "f32" || sfx == "f64" {
			kind = token.FloatLit
		}
	}
	return lx.emit(kind, start)
}

func (lx *Lexer) eatDecimalDigits() {
	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}
}
