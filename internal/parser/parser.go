package parser

import (
	"fmt"

	"rsbundle/internal/ast"
	"rsbundle/internal/diag"
	"rsbundle/internal/lexer"
	"rsbundle/internal/source"
	"rsbundle/internal/token"
)

type Options struct {
	Reporter diag.Reporter // может быть nil
	Tokens   TokenSource   // nil — лексер вызывается напрямую
}

// TokenSource produces the token stream of a file. cache.TokenCache
// implements it to reuse streams of unchanged files across watch runs.
type TokenSource interface {
	Tokenize(f *source.File, opts lexer.Options) []token.Token
}

// Error is the first syntax error of a file. Parsing is fail-fast: a file
// that does not parse cannot be bundled.
type Error struct {
	Path    string
	Line    uint32
	Col     uint32
	Code    diag.Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Col, e.Message)
}

// Parser — состояние парсера на один файл
type Parser struct {
	fs    *source.FileSet
	file  *source.File
	toks  []token.Token
	pos   int
	opts  Options
	first *Error
}

// ParseFile lexes and parses one file of fs.
func ParseFile(fs *source.FileSet, id source.FileID, opts Options) (*ast.Tree, error) {
	f := fs.Get(id)
	if f == nil {
		return nil, fmt.Errorf("parse: unknown file id %d", id)
	}
	p := &Parser{fs: fs, file: f, opts: opts}
	lexOpts := lexer.Options{Reporter: lexReporter{p}}
	if opts.Tokens != nil {
		p.toks = opts.Tokens.Tokenize(f, lexOpts)
	} else {
		p.toks = lexer.Tokenize(f, lexOpts)
	}
	return p.run()
}

// ParseTokens parses an already lexed file; toks must end with EOF.
func ParseTokens(fs *source.FileSet, id source.FileID, toks []token.Token, opts Options) (*ast.Tree, error) {
	f := fs.Get(id)
	if f == nil {
		return nil, fmt.Errorf("parse: unknown file id %d", id)
	}
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		return nil, fmt.Errorf("parse: token stream of %s does not end with EOF", f.Path)
	}
	p := &Parser{fs: fs, file: f, toks: toks, opts: opts}
	return p.run()
}

// ParseSource parses in-memory text under a display name.
func ParseSource(name string, src []byte) (*ast.Tree, error) {
	fs := source.NewFileSet()
	return ParseFile(fs, fs.AddVirtual(name, src), Options{})
}

func (p *Parser) run() (*ast.Tree, error) {
	for _, tok := range p.toks {
		if p.first != nil {
			break
		}
		if tok.Kind == token.Invalid {
			p.report(diag.SynUnexpectedToken, diag.SevError, tok.Span, "invalid token '"+tok.Text+"'")
		}
	}
	if p.first != nil {
		// лексическая ошибка: дальше не идём
		return nil, p.first
	}
	tree := p.parseTree(token.EOF)
	if p.first != nil {
		return nil, p.first
	}
	return tree, nil
}

// lexReporter forwards lexer diagnostics into the parser's error state.
type lexReporter struct{ p *Parser }

func (r lexReporter) Report(code diag.Code, sev diag.Severity, sp source.Span, msg string, notes []diag.Note) {
	r.p.report(code, sev, sp, msg)
}

// parseTree разбирает inner-атрибуты и items до end (EOF или '}').
func (p *Parser) parseTree(end token.Kind) *ast.Tree {
	tree := &ast.Tree{File: p.file.ID}
	for p.first == nil {
		if attr, ok := p.parseInnerAttr(); ok {
			tree.InnerAttrs = append(tree.InnerAttrs, attr)
			continue
		}
		if p.at(end) || p.at(token.EOF) {
			break
		}
		item, ok := p.parseItem()
		if !ok {
			break
		}
		tree.Items = append(tree.Items, item)
	}
	return tree
}
