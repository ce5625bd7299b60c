package ast

import (
	"strconv"

	"rsbundle/internal/source"
	"rsbundle/internal/token"
)

// Attr is an attribute or doc comment attached to an item or module.
// Doc is set for doc comments and `#[doc = "..."]`; list forms such as
// `#[doc(hidden)]` are regular attributes.
//
// Tokens is the full spelling: `# [ path args ]`, `# ! [ ... ]` or the single
// doc comment token. Path is the `::`-joined attribute path; doc comments
// report "doc".
type Attr struct {
	Inner  bool
	Doc    bool
	Path   string
	Tokens []token.Token
	Span   source.Span
}

// Args returns the tokens after the path inside the brackets, e.g. the
// `( test )` of `#[cfg(test)]` or `= "x"` of `#[doc = "x"]`.
func (a *Attr) Args() []token.Token {
	if a.isComment() {
		return nil
	}
	// пропускаем '#', '!'?, '[' и сегменты пути
	i := 1
	if a.Inner {
		i++
	}
	i++
	for i < len(a.Tokens) && (a.Tokens[i].Kind == token.Ident || a.Tokens[i].Kind == token.ColonColon || a.Tokens[i].IsKeyword()) {
		i++
	}
	end := len(a.Tokens) - 1
	if i > end {
		return nil
	}
	return a.Tokens[i:end]
}

func (a *Attr) isComment() bool {
	return len(a.Tokens) == 1 && a.Tokens[0].IsDoc()
}

// IsDocComment reports ///, //!, /** */ and /*! */ attributes.
func (a *Attr) IsDocComment() bool {
	return a.Doc && a.isComment()
}

// DocText returns the documentation string of a doc attribute: the comment
// body without its marker, or the unquoted `#[doc = "..."]` value.
func (a *Attr) DocText() (string, bool) {
	if !a.Doc {
		return "", false
	}
	if a.isComment() {
		return DocCommentBody(a.Tokens[0]), true
	}
	args := a.Args()
	if len(args) == 2 && args[0].Kind == token.Assign && args[1].Kind == token.StringLit {
		s, err := strconv.Unquote(args[1].Text)
		if err == nil {
			return s, true
		}
	}
	return "", false
}

// DocCommentBody strips the ///, //!, /** */ or /*! */ markers.
func DocCommentBody(t token.Token) string {
	text := t.Text
	switch t.Kind {
	case token.DocLineOuter, token.DocLineInner:
		return text[3:]
	case token.DocBlockOuter, token.DocBlockInner:
		if len(text) >= 5 {
			return text[3 : len(text)-2]
		}
	}
	return ""
}
