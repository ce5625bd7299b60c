package render

import (
	"bytes"
	"strings"

	"rsbundle/internal/ast"
	"rsbundle/internal/lexer"
	"rsbundle/internal/token"
)

const indentUnit = "    "

// Tree renders tree as source text ending with a newline.
func Tree(tree *ast.Tree) []byte {
	p := &printer{}
	p.tree(tree)
	out := bytes.TrimRight(p.buf.Bytes(), "\n")
	return append(out, '\n')
}

// Item renders a single item with its attributes.
func Item(it *ast.Item) []byte {
	p := &printer{}
	p.item(it)
	return bytes.TrimRight(p.buf.Bytes(), "\n")
}

type printer struct {
	buf    bytes.Buffer
	indent int

	has   bool // на текущей строке уже что-то есть
	last  token.Token
	prev2 token.Token

	delims      []token.Kind
	angles      int
	closeAngle  bool  // last was a `>` closing generics
	closureOpen []int // delimiter depth of open closure parameter lists
	unaryLast   bool  // last was a prefix operator
	flat        bool  // use-items and attributes stay on one line
}

func (p *printer) tree(t *ast.Tree) {
	for i := range t.InnerAttrs {
		p.attr(&t.InnerAttrs[i])
	}
	if len(t.InnerAttrs) > 0 && len(t.Items) > 0 {
		p.blank()
	}
	for i, it := range t.Items {
		if i > 0 && !(it.Kind == ast.ItemImport && t.Items[i-1].Kind == ast.ItemImport) {
			p.blank()
		}
		p.item(it)
	}
}

func (p *printer) item(it *ast.Item) {
	for i := range it.Attrs {
		p.attr(&it.Attrs[i])
	}
	p.reset()
	p.flat = it.Kind == ast.ItemImport
	p.tokens(it.Tokens)
	p.flat = false
	if it.Kind == ast.ItemMod {
		switch {
		case it.Module.Pending():
			p.emit(token.Token{Kind: token.Semicolon, Text: ";"})
		case len(it.Module.Body.Items) == 0 && len(it.Module.Body.InnerAttrs) == 0:
			p.emit(token.Token{Kind: token.LBrace, Text: "{"})
			p.emit(token.Token{Kind: token.RBrace, Text: "}"})
		default:
			p.emit(token.Token{Kind: token.LBrace, Text: "{"})
			p.indent++
			p.newline()
			p.tree(it.Module.Body)
			p.indent--
			p.newline()
			p.emit(token.Token{Kind: token.RBrace, Text: "}"})
		}
	}
	p.newline()
}

func (p *printer) attr(a *ast.Attr) {
	p.reset()
	p.flat = true
	p.tokens(a.Tokens)
	p.flat = false
	p.newline()
}

func (p *printer) reset() {
	p.delims = p.delims[:0]
	p.angles = 0
	p.closeAngle = false
	p.closureOpen = p.closureOpen[:0]
	p.unaryLast = false
	p.last = token.Token{}
	p.prev2 = token.Token{}
}

func (p *printer) tokens(toks []token.Token) {
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		var next *token.Token
		if i+1 < len(toks) {
			next = &toks[i+1]
		}
		switch {
		case p.flat:
			p.emit(t)
			switch t.Kind {
			case token.LParen, token.LBracket, token.LBrace:
				p.delims = append(p.delims, t.Kind)
			case token.RParen, token.RBracket, token.RBrace:
				p.pop()
			}
		case t.Kind.IsDoc():
			p.newline()
			p.emit(t)
			p.newline()
		case t.Kind == token.LBrace && next != nil && next.Kind == token.RBrace:
			// пустой блок остаётся на строке: {}
			p.emit(t)
			p.emit(*next)
			i++
			p.afterBrace(i+1 < len(toks), toks, i+1)
		case t.Kind == token.LBrace:
			p.emit(t)
			p.delims = append(p.delims, token.LBrace)
			p.angles = 0
			p.indent++
			p.newline()
		case t.Kind == token.RBrace:
			p.pop()
			p.indent--
			p.newline()
			p.emit(t)
			p.angles = 0
			p.afterBrace(next != nil, toks, i+1)
		default:
			p.emit(t)
			switch t.Kind {
			case token.LParen, token.LBracket:
				p.delims = append(p.delims, t.Kind)
			case token.RParen, token.RBracket:
				p.pop()
			case token.Semicolon:
				p.angles = 0
				if p.inBraces() {
					p.newline()
				}
			case token.Comma:
				if p.inBraces() && !p.closesClosure() {
					p.newline()
				}
			}
		}
	}
}

// afterBrace ends the line after `}` unless the next token continues the
// expression.
func (p *printer) afterBrace(hasNext bool, toks []token.Token, next int) {
	if hasNext {
		switch toks[next].Kind {
		case token.Comma, token.Semicolon, token.RParen, token.RBracket, token.Dot, token.Question, token.KwElse:
			return
		}
	}
	p.newline()
}

func (p *printer) pop() {
	if n := len(p.delims); n > 0 {
		p.delims = p.delims[:n-1]
	}
	for n := len(p.closureOpen); n > 0 && p.closureOpen[n-1] > len(p.delims); n-- {
		p.closureOpen = p.closureOpen[:n-1]
	}
}

func (p *printer) inBraces() bool {
	return len(p.delims) > 0 && p.delims[len(p.delims)-1] == token.LBrace
}

func (p *printer) newline() {
	if p.has {
		p.buf.WriteByte('\n')
		p.has = false
	}
}

func (p *printer) blank() {
	p.newline()
	if p.buf.Len() > 0 && !bytes.HasSuffix(p.buf.Bytes(), []byte("\n\n")) {
		p.buf.WriteByte('\n')
	}
}

// emit writes t, deciding the separator from the previous token.
func (p *printer) emit(t token.Token) {
	genericOpen := t.Kind == token.Lt && p.opensGenerics()
	closesGeneric := p.closesGenerics(t)
	closureClose := t.Kind == token.Pipe && p.closesClosure()
	closureStart := !closureClose && (t.Kind == token.Pipe || t.Kind == token.OrOr) && p.unaryPosition()
	unary := isPrefixOp(t.Kind) && p.unaryPosition()

	if !p.has {
		if p.indent > 0 {
			p.buf.WriteString(strings.Repeat(indentUnit, p.indent))
		}
	} else if p.wantsSpace(t, genericOpen, closesGeneric, closureClose) || !lexer.Glue(p.last, t) {
		p.buf.WriteByte(' ')
	}
	p.buf.WriteString(t.Text)
	p.has = true

	switch {
	case genericOpen:
		p.angles++
	case closesGeneric:
		if t.Kind == token.Shr {
			p.angles -= 2
		} else {
			p.angles--
		}
		if p.angles < 0 {
			p.angles = 0
		}
	}
	if closureClose {
		p.closureOpen = p.closureOpen[:len(p.closureOpen)-1]
	}
	if closureStart && t.Kind == token.Pipe {
		p.closureOpen = append(p.closureOpen, len(p.delims))
	}
	p.closeAngle = closesGeneric
	p.unaryLast = unary || (t.Kind == token.Pipe && closureStart)
	p.prev2 = p.last
	p.last = t
}

func (p *printer) wantsSpace(t token.Token, genericOpen, closesGeneric, closureClose bool) bool {
	prev := p.last
	switch {
	case p.unaryLast:
		return false
	case prev.Kind == token.LParen, prev.Kind == token.LBracket:
		return false
	case prev.Kind == token.LBrace && p.flat:
		return false
	case prev.Kind == token.Dot, prev.Kind == token.Pound, prev.Kind == token.Dollar, prev.Kind == token.ColonColon:
		return false
	case prev.Kind == token.DotDot, prev.Kind == token.DotDotEq:
		return t.Kind == token.LBrace
	case prev.Kind == token.Lt && p.angles > 0:
		return false
	}

	switch t.Kind {
	case token.RParen, token.RBracket, token.Comma, token.Semicolon, token.Dot, token.Colon:
		return false
	case token.RBrace:
		return !p.flat && prev.Kind != token.LBrace
	case token.Question:
		return !p.operandEnd()
	case token.ColonColon:
		return !p.operandEnd()
	case token.DotDot, token.DotDotEq:
		return !p.operandEnd() && prev.Kind != token.LParen
	case token.Bang:
		// макрос: name!  /  #![...]
		return !(prev.Kind == token.Ident || prev.Kind == token.Pound)
	case token.LParen, token.LBracket:
		switch {
		case prev.Kind == token.Ident, prev.Kind == token.KwSelfUpper, prev.Kind == token.KwSelfLower, prev.Kind == token.KwPub:
			return false
		case prev.Kind == token.RParen, prev.Kind == token.RBracket, prev.Kind == token.Bang:
			return false
		case p.closeAngle:
			return false
		}
		return true
	case token.Lt:
		if genericOpen {
			return !(prev.Kind.IsWord() || prev.Kind == token.ColonColon)
		}
	case token.Gt, token.Shr:
		if closesGeneric {
			return false
		}
	case token.Pipe:
		if closureClose {
			return false
		}
	}
	return true
}

// operandEnd reports whether the last token can end an operand, so a
// following `&`, `*`, `-` or `|` is binary.
func (p *printer) operandEnd() bool {
	prev := p.last
	switch prev.Kind {
	case token.Ident, token.Lifetime, token.KwSelfLower, token.KwSelfUpper, token.KwCrate, token.KwSuper,
		token.KwTrue, token.KwFalse, token.RParen, token.RBracket, token.RBrace, token.Question, token.Underscore:
		return true
	}
	if prev.Kind.IsLiteral() {
		return true
	}
	return p.closeAngle
}

func (p *printer) unaryPosition() bool {
	return !p.operandEnd()
}

func (p *printer) opensGenerics() bool {
	prev := p.last
	switch prev.Kind {
	case token.ColonColon, token.KwImpl, token.KwFor, token.KwSelfUpper:
		return true
	case token.Ident:
		switch p.prev2.Kind {
		case token.KwFn, token.KwStruct, token.KwEnum, token.KwTrait, token.KwType:
			return true
		}
		if p.prev2.IsIdentText("union") {
			return true
		}
		return prev.Text != "" && prev.Text[0] >= 'A' && prev.Text[0] <= 'Z'
	}
	// `<T as Trait>::f` в начале выражения или типа
	return !p.operandEnd()
}

func (p *printer) closesGenerics(t token.Token) bool {
	switch t.Kind {
	case token.Gt:
		return p.angles > 0
	case token.Shr:
		return p.angles > 1
	}
	return false
}

func (p *printer) closesClosure() bool {
	n := len(p.closureOpen)
	return n > 0 && p.closureOpen[n-1] == len(p.delims)
}

func isPrefixOp(k token.Kind) bool {
	switch k {
	case token.Amp, token.AndAnd, token.Star, token.Minus, token.Bang, token.Question:
		return true
	}
	return false
}
