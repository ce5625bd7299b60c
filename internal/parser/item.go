package parser

import (
	"strings"

	"rsbundle/internal/ast"
	"rsbundle/internal/diag"
	"rsbundle/internal/token"
)

// endRule describes how an item's extent ends.
type endRule uint8

const (
	endSemicolon   endRule = iota // const, static, use, type, extern crate
	endBlockOrSemi                // fn, struct, enum, trait, impl, mod, extern block
	endMacro                      // path! (..); path! [..]; path! {..}
)

// parseItem разбирает атрибуты, видимость и сам item. Граница item
// определяется по токенам без разбора выражений.
func (p *Parser) parseItem() (*ast.Item, bool) {
	attrs := p.parseOuterAttrs()
	if p.first != nil {
		return nil, false
	}
	if p.at(token.EOF) || p.at(token.RBrace) {
		p.err(diag.SynExpectItem, "expected item after attributes")
		return nil, false
	}

	start := p.pos
	vis := p.parseVisibility()

	item := &ast.Item{Attrs: attrs, Vis: vis}
	rule, ok := p.classify(item)
	if !ok {
		return nil, false
	}

	if item.Kind == ast.ItemMod {
		return p.finishMod(item, start)
	}
	if !p.consumeToEnd(rule) {
		return nil, false
	}
	item.Tokens = p.toks[start:p.pos]
	item.Span = item.Tokens[0].Span.Cover(item.Tokens[len(item.Tokens)-1].Span)
	return item, true
}

// parseVisibility: pub, pub(crate), pub(super), pub(self), pub(in path).
func (p *Parser) parseVisibility() []token.Token {
	if !p.at(token.KwPub) {
		return nil
	}
	start := p.pos
	p.advance()
	if p.at(token.LParen) {
		switch p.peekN(1).Kind {
		case token.KwCrate, token.KwSuper, token.KwSelfLower, token.KwIn:
			p.skipGroup()
		}
	}
	return p.toks[start:p.pos]
}

// classify съедает квалификаторы и ключевое слово item, заполняя Kind,
// Keyword и Name.
func (p *Parser) classify(item *ast.Item) (endRule, bool) {
	for {
		tok := p.peek()
		next := p.peekN(1)
		switch {
		case tok.IsIdentText("default") && (next.Kind == token.KwFn || next.Kind == token.KwImpl ||
			next.Kind == token.KwType || next.Kind == token.KwConst || next.Kind == token.KwUnsafe || next.Kind == token.KwAsync):
			p.advance()
		case tok.Kind == token.KwConst && (next.Kind == token.KwFn || next.Kind == token.KwUnsafe ||
			next.Kind == token.KwAsync || next.Kind == token.KwExtern):
			p.advance()
		case tok.Kind == token.KwAsync || tok.Kind == token.KwUnsafe:
			p.advance()
		case tok.IsIdentText("auto") && next.Kind == token.KwTrait:
			p.advance()

		case tok.Kind == token.KwExtern && next.Kind == token.KwCrate:
			p.advance()
			p.advance()
			item.Kind, item.Keyword = ast.ItemImport, "extern crate"
			item.Name = p.expectName()
			return endSemicolon, p.first == nil
		case tok.Kind == token.KwExtern:
			p.advance()
			if p.at(token.StringLit) || p.at(token.RawStringLit) {
				p.advance() // ABI
			}
			if p.at(token.LBrace) {
				item.Kind, item.Keyword = ast.ItemOther, "extern"
				return endBlockOrSemi, true
			}

		case tok.Kind == token.KwFn:
			p.advance()
			item.Kind, item.Keyword = ast.ItemFn, "fn"
			item.Name = p.expectName()
			return endBlockOrSemi, p.first == nil
		case tok.Kind == token.KwStruct || tok.Kind == token.KwEnum:
			p.advance()
			item.Kind, item.Keyword = ast.ItemTypeDef, tok.Text
			item.Name = p.expectName()
			return endBlockOrSemi, p.first == nil
		case tok.IsIdentText("union") && next.Kind == token.Ident:
			p.advance()
			item.Kind, item.Keyword = ast.ItemTypeDef, "union"
			item.Name = p.expectName()
			return endBlockOrSemi, p.first == nil
		case tok.Kind == token.KwType:
			p.advance()
			item.Kind, item.Keyword = ast.ItemTypeDef, "type"
			item.Name = p.expectName()
			return endSemicolon, p.first == nil
		case tok.Kind == token.KwTrait:
			p.advance()
			item.Kind, item.Keyword = ast.ItemTrait, "trait"
			item.Name = p.expectName()
			return endBlockOrSemi, p.first == nil
		case tok.Kind == token.KwImpl:
			p.advance()
			item.Kind, item.Keyword = ast.ItemImpl, "impl"
			return endBlockOrSemi, true
		case tok.Kind == token.KwMod:
			p.advance()
			item.Kind, item.Keyword = ast.ItemMod, "mod"
			item.Name = p.expectName()
			return endBlockOrSemi, p.first == nil
		case tok.Kind == token.KwUse:
			p.advance()
			item.Kind, item.Keyword = ast.ItemImport, "use"
			return endSemicolon, true
		case tok.Kind == token.KwConst || tok.Kind == token.KwStatic:
			p.advance()
			if p.at(token.KwMut) {
				p.advance()
			}
			item.Kind, item.Keyword = ast.ItemConst, tok.Text
			if p.at(token.Underscore) {
				item.Name = "_"
				p.advance()
			} else {
				item.Name = p.expectName()
			}
			return endSemicolon, p.first == nil
		case tok.IsIdentText("macro_rules") && next.Kind == token.Bang:
			p.advance()
			p.advance()
			item.Kind, item.Keyword = ast.ItemMacro, "macro_rules"
			item.Name = p.expectName()
			return endMacro, p.first == nil
		case tok.Kind == token.Ident || tok.Kind == token.KwCrate || tok.Kind == token.KwSelfLower ||
			tok.Kind == token.KwSuper || tok.Kind == token.ColonColon:
			name, ok := p.macroPath()
			if !ok {
				p.err(diag.SynExpectItem, "expected item, found '"+tok.Text+"'")
				return 0, false
			}
			item.Kind, item.Keyword, item.Name = ast.ItemMacro, "macro", name
			if p.at(token.Ident) {
				p.advance() // `foo! name { ... }`
			}
			return endMacro, true
		default:
			p.err(diag.SynExpectItem, "expected item, found '"+tok.Text+"'")
			return 0, false
		}
	}
}

func (p *Parser) expectName() string {
	tok := p.peek()
	if tok.Kind != token.Ident {
		p.err(diag.SynExpectIdentifier, "expected identifier, found '"+tok.Text+"'")
		return ""
	}
	p.advance()
	return strings.TrimPrefix(tok.Text, "r#")
}

// macroPath съедает `a::b!`; при неудаче позиция не меняется.
func (p *Parser) macroPath() (string, bool) {
	save := p.pos
	var sb strings.Builder
	for {
		tok := p.peek()
		if tok.Kind == token.ColonColon {
			sb.WriteString("::")
			p.advance()
			continue
		}
		if tok.Kind != token.Ident && !tok.IsKeyword() {
			break
		}
		sb.WriteString(tok.Text)
		p.advance()
		if p.at(token.Bang) {
			p.advance()
			return sb.String(), true
		}
		if !p.at(token.ColonColon) {
			break
		}
	}
	p.pos = save
	return "", false
}

// consumeToEnd съедает остаток item по правилу rule.
func (p *Parser) consumeToEnd(rule endRule) bool {
	switch rule {
	case endMacro:
		if !p.peek().Kind.IsOpen() {
			p.err(diag.SynUnexpectedToken, "expected macro body")
			return false
		}
		brace := p.at(token.LBrace)
		if !p.skipGroup() {
			return false
		}
		if brace {
			if p.at(token.Semicolon) {
				p.advance()
			}
			return true
		}
		if !p.at(token.Semicolon) {
			p.err(diag.SynExpectSemicolon, "expected ';' after macro invocation")
			return false
		}
		p.advance()
		return true

	case endSemicolon:
		for !p.at(token.Semicolon) {
			if !p.step() {
				return false
			}
		}
		p.advance()
		return true

	default:
		// ';' или '{...}' на нулевой глубине; угловые скобки сигнатуры
		// учитываются, чтобы `Foo<{ N }>` не принять за тело
		angle := 0
		for {
			tok := p.peek()
			switch tok.Kind {
			case token.Semicolon:
				if angle == 0 {
					p.advance()
					return true
				}
			case token.LBrace:
				if angle == 0 {
					return p.skipGroup()
				}
			case token.Lt:
				angle++
			case token.Gt:
				if angle > 0 {
					angle--
				}
			case token.Shr:
				angle = max(angle-2, 0)
			}
			if !p.step() {
				return false
			}
		}
	}
}

// step съедает один токен или целую группу; false при ошибке.
func (p *Parser) step() bool {
	tok := p.peek()
	switch {
	case tok.Kind == token.EOF:
		p.err(diag.SynExpectSemicolon, "unexpected end of file inside item")
		return false
	case tok.Kind.IsOpen():
		return p.skipGroup()
	case tok.Kind.IsClose():
		p.err(diag.SynUnbalancedClose, "unexpected closing delimiter '"+tok.Text+"'")
		return false
	}
	p.advance()
	return true
}

// finishMod: `mod name;` остаётся pending, `mod name { ... }` разбирается
// рекурсивно в дерево.
func (p *Parser) finishMod(item *ast.Item, start int) (*ast.Item, bool) {
	item.Tokens = p.toks[start:p.pos]
	switch {
	case p.at(token.Semicolon):
		end := p.advance()
		item.Module = &ast.Module{}
		item.Span = item.Tokens[0].Span.Cover(end.Span)
		return item, true
	case p.at(token.LBrace):
		open := p.advance()
		body := p.parseTree(token.RBrace)
		if p.first != nil {
			return nil, false
		}
		if !p.at(token.RBrace) {
			p.report(diag.SynUnclosedDelimiter, diag.SevError, open.Span, "unclosed module body")
			return nil, false
		}
		end := p.advance()
		item.Module = &ast.Module{Body: body}
		item.Span = item.Tokens[0].Span.Cover(end.Span)
		return item, true
	default:
		p.err(diag.SynExpectSemicolon, "expected ';' or '{' after module name")
		return nil, false
	}
}
