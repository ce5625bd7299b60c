package lexer

import (
	"rsbundle/internal/diag"
	"rsbundle/internal/token"
)

// collectLeadingTrivia собирает подряд идущие trivia перед значимым токеном.
//   - ' ', '\t', '\r', '\f', '\v' коалесцируются в один TriviaSpace
//   - последовательные '\n' коалесцируются в один TriviaNewline
//   - //... до \n -> TriviaLineComment
//   - /* ... */ -> TriviaBlockComment (с вложенностью)
//
// Doc-комментарии здесь не поглощаются: они становятся токенами.
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		if isSpaceByte(b) {
			for isSpaceByte(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaSpace, start)
			continue
		}

		if b == '\n' {
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaNewline, start)
			continue
		}

		if b == '/' && !lx.atDocComment() {
			if lx.scanCommentIntoHold() {
				continue
			}
		}
		break
	}
}

func (lx *Lexer) pushTrivia(kind token.TriviaKind, start Mark) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{
		Kind: kind,
		Span: sp,
		Text: string(lx.file.Content[sp.Start:sp.End]),
	})
}

// atDocComment reports whether the cursor sits on ///, //!, /** or /*!.
// //// and /*** are regular comments, /**/ is an empty regular comment.
func (lx *Lexer) atDocComment() bool {
	c := &lx.cursor
	if c.PeekAt(0) != '/' {
		return false
	}
	switch c.PeekAt(1) {
	case '/':
		switch c.PeekAt(2) {
		case '!':
			return true
		case '/':
			return c.PeekAt(3) != '/'
		}
	case '*':
		switch c.PeekAt(2) {
		case '!':
			return true
		case '*':
			next := c.PeekAt(3)
			return next != '*' && next != '/'
		}
	}
	return false
}

func (lx *Lexer) scanCommentIntoHold() bool {
	start := lx.cursor.Mark()
	if !lx.cursor.Eat('/') {
		return false
	}
	switch lx.cursor.Peek() {
	case '/':
		lx.skipToLineEnd()
		lx.pushTrivia(token.TriviaLineComment, start)
		return true
	case '*':
		lx.cursor.Bump()
		lx.skipBlockCommentBody(start)
		lx.pushTrivia(token.TriviaBlockComment, start)
		return true
	default:
		// не комментарий, пусть сканируется как оператор '/'
		lx.cursor.Reset(start)
		return false
	}
}

func (lx *Lexer) skipToLineEnd() {
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.cursor.Bump()
	}
}

// skipBlockCommentBody consumes up to the matching */, the opening /* already eaten.
func (lx *Lexer) skipBlockCommentBody(start Mark) {
	depth := 1
	for !lx.cursor.EOF() && depth > 0 {
		if b0, b1, ok := lx.cursor.Peek2(); ok {
			if b0 == '/' && b1 == '*' {
				lx.cursor.Bump()
				lx.cursor.Bump()
				depth++
				continue
			}
			if b0 == '*' && b1 == '/' {
				lx.cursor.Bump()
				lx.cursor.Bump()
				depth--
				continue
			}
		}
		lx.cursor.Bump()
	}
	if depth > 0 {
		lx.errLex(diag.LexUnterminatedBlockComment, lx.cursor.SpanFrom(start), "unterminated block comment")
	}
}

// scanDocComment emits ///, //!, /** */ or /*! */ as a token.
func (lx *Lexer) scanDocComment() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '/'
	second := lx.cursor.Bump()
	inner := lx.cursor.Peek() == '!'
	if second == '/' {
		lx.skipToLineEnd()
		if inner {
			return lx.emit(token.DocLineInner, start)
		}
		return lx.emit(token.DocLineOuter, start)
	}
	lx.skipBlockCommentBody(start)
	if inner {
		return lx.emit(token.DocBlockInner, start)
	}
	return lx.emit(token.DocBlockOuter, start)
}
