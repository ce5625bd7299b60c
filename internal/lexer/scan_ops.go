package lexer

import (
	"rsbundle/internal/diag"
	"rsbundle/internal/token"
)

type opSpelling struct {
	text string
	kind token.Kind
}

// Жадность: сначала 3-символьные, затем 2-символьные.
var multiCharOps = []opSpelling{
	{"<<=", token.ShlAssign}, {">>=", token.ShrAssign},
	{"...", token.DotDotDot}, {"..=", token.DotDotEq},
	{"::", token.ColonColon}, {"->", token.Arrow}, {"=>", token.FatArrow},
	{"==", token.EqEq}, {"!=", token.BangEq}, {"<=", token.LtEq}, {">=", token.GtEq},
	{"&&", token.AndAnd}, {"||", token.OrOr}, {"<<", token.Shl}, {">>", token.Shr},
	{"+=", token.PlusAssign}, {"-=", token.MinusAssign}, {"*=", token.StarAssign},
	{"/=", token.SlashAssign}, {"%=", token.PercentAssign}, {"^=", token.CaretAssign},
	{"&=", token.AmpAssign}, {"|=", token.PipeAssign}, {"..", token.DotDot},
}

var singleCharOps = map[byte]token.Kind{
	'+': token.Plus, '-': token.Minus, '*': token.Star, '/': token.Slash,
	'%': token.Percent, '^': token.Caret, '!': token.Bang, '&': token.Amp,
	'|': token.Pipe, '=': token.Assign, '>': token.Gt, '<': token.Lt,
	'@': token.At, '_': token.Underscore, '.': token.Dot, ',': token.Comma,
	';': token.Semicolon, ':': token.Colon, '#': token.Pound, '$': token.Dollar,
	'?': token.Question, '~': token.Tilde, '(': token.LParen, ')': token.RParen,
	'{': token.LBrace, '}': token.RBrace, '[': token.LBracket, ']': token.RBracket,
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()

	for _, op := range multiCharOps {
		if len(op.text) == 3 && lx.try3(op.text[0], op.text[1], op.text[2]) ||
			len(op.text) == 2 && lx.try2(op.text[0], op.text[1]) {
			return lx.emit(op.kind, start)
		}
	}

	if k, ok := singleCharOps[lx.cursor.Peek()]; ok {
		lx.cursor.Bump()
		return lx.emit(k, start)
	}

	// неизвестный символ: съедаем целую руну
	lx.bumpRune()
	if lx.cursor.Off == uint32(start) {
		lx.cursor.Bump()
	}
	tok := lx.emit(token.Invalid, start)
	lx.errLex(diag.LexUnknownChar, tok.Span, "unknown character")
	return tok
}
