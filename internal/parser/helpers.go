package parser

import (
	"rsbundle/internal/diag"
	"rsbundle/internal/source"
	"rsbundle/internal/token"
)

func (p *Parser) peek() token.Token {
	return p.peekN(0)
}

func (p *Parser) peekN(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

// advance — съедает следующий токен; EOF не съедается.
func (p *Parser) advance() token.Token {
	tok := p.peek()
	if tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

// diagnosticSpan — лучший span для диагностики: для EOF указываем на конец
// последнего значимого токена.
func (p *Parser) diagnosticSpan() source.Span {
	tok := p.peek()
	if tok.Kind == token.EOF && p.pos > 0 {
		prev := p.toks[p.pos-1].Span
		return source.Span{File: prev.File, Start: prev.End, End: prev.End}
	}
	return tok.Span
}

// репортует ошибку в текущем месте
func (p *Parser) err(code diag.Code, msg string) {
	p.report(code, diag.SevError, p.diagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) {
	if p.opts.Reporter != nil {
		p.opts.Reporter.Report(code, sev, sp, msg, nil)
	}
	if sev == diag.SevError && p.first == nil {
		start, _ := p.fs.Resolve(sp)
		p.first = &Error{
			Path:    p.file.Path,
			Line:    start.Line,
			Col:     start.Col,
			Code:    code,
			Message: msg,
		}
	}
}

// skipGroup съедает сбалансированную группу, начиная с открывающей скобки.
func (p *Parser) skipGroup() bool {
	open := p.advance()
	stack := []token.Kind{open.Kind.Closer()}
	for len(stack) > 0 {
		tok := p.peek()
		switch {
		case tok.Kind == token.EOF:
			p.report(diag.SynUnclosedDelimiter, diag.SevError, open.Span, "unclosed delimiter '"+open.Text+"'")
			return false
		case tok.Kind.IsOpen():
			stack = append(stack, tok.Kind.Closer())
		case tok.Kind.IsClose():
			if tok.Kind != stack[len(stack)-1] {
				p.err(diag.SynUnbalancedClose, "mismatched closing delimiter '"+tok.Text+"'")
				return false
			}
			stack = stack[:len(stack)-1]
		}
		p.advance()
	}
	return true
}
