package parser

import (
	"strings"

	"rsbundle/internal/ast"
	"rsbundle/internal/diag"
	"rsbundle/internal/token"
)

// parseInnerAttr разбирает `#![...]`, `//!` или `/*! */`.
func (p *Parser) parseInnerAttr() (ast.Attr, bool) {
	tok := p.peek()
	if tok.Kind.IsInnerDoc() {
		p.advance()
		return docAttr(tok), true
	}
	if tok.Kind == token.Pound && p.peekN(1).Kind == token.Bang && p.peekN(2).Kind == token.LBracket {
		return p.parseBracketAttr(true)
	}
	return ast.Attr{}, false
}

// parseOuterAttrs разбирает `#[...]`, `///` и `/** */` перед item.
func (p *Parser) parseOuterAttrs() []ast.Attr {
	var attrs []ast.Attr
	for p.first == nil {
		tok := p.peek()
		switch {
		case tok.Kind == token.DocLineOuter || tok.Kind == token.DocBlockOuter:
			p.advance()
			attrs = append(attrs, docAttr(tok))
		case tok.Kind == token.Pound && p.peekN(1).Kind == token.LBracket:
			attr, ok := p.parseBracketAttr(false)
			if !ok {
				return attrs
			}
			attrs = append(attrs, attr)
		default:
			return attrs
		}
	}
	return attrs
}

func docAttr(tok token.Token) ast.Attr {
	return ast.Attr{
		Inner:  tok.Kind.IsInnerDoc(),
		Doc:    true,
		Path:   "doc",
		Tokens: []token.Token{tok},
		Span:   tok.Span,
	}
}

func (p *Parser) parseBracketAttr(inner bool) (ast.Attr, bool) {
	start := p.pos
	p.advance() // '#'
	if inner {
		p.advance() // '!'
	}
	if !p.at(token.LBracket) {
		p.err(diag.SynBadAttribute, "expected '[' in attribute")
		return ast.Attr{}, false
	}
	p.advance() // '['

	var path strings.Builder
	for {
		tok := p.peek()
		if tok.Kind == token.Ident || tok.IsKeyword() {
			path.WriteString(tok.Text)
			p.advance()
			if p.at(token.ColonColon) {
				path.WriteString("::")
				p.advance()
				continue
			}
		}
		break
	}
	if path.Len() == 0 {
		p.err(diag.SynBadAttribute, "expected attribute path")
		return ast.Attr{}, false
	}

	// остаток до ']' — аргументы, скобки сбалансированы
	for !p.at(token.RBracket) {
		if p.at(token.EOF) || p.peek().Kind.IsClose() {
			p.err(diag.SynUnclosedDelimiter, "unclosed attribute")
			return ast.Attr{}, false
		}
		if p.peek().Kind.IsOpen() {
			if !p.skipGroup() {
				return ast.Attr{}, false
			}
			continue
		}
		p.advance()
	}
	p.advance() // ']'

	toks := p.toks[start:p.pos]
	attr := ast.Attr{
		Inner:  inner,
		Path:   path.String(),
		Tokens: toks,
		Span:   toks[0].Span.Cover(toks[len(toks)-1].Span),
	}
	// только `#[doc = "..."]` несёт текст; doc(hidden), doc(alias) и прочие
	// списочные формы остаются обычными атрибутами
	if args := attr.Args(); attr.Path == "doc" && len(args) > 0 && args[0].Kind == token.Assign {
		attr.Doc = true
	}
	return attr, true
}
