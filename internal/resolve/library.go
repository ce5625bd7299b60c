package resolve

import (
	"fmt"

	"rsbundle/internal/ast"
	"rsbundle/internal/diag"
	"rsbundle/internal/source"
	"rsbundle/internal/token"
)

// InlineLibrary splices the library crate lib into the binary crate bin.
//
// The library root items are inserted before the first root item of bin that
// mentions libName (`extern crate`, `use lib::...` or a `lib::` path).
// Paths through libName are rewritten to `crate::`; imports made redundant
// by the splice are dropped. Reports false when bin never mentions libName.
// A root module declared by both crates is a DuplicateModule error.
func InlineLibrary(bin, lib *ast.Tree, libName string, rep diag.Reporter) (*ast.Tree, bool, error) {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return inlineLibrary(bin, lib, libName, rep, func(it *ast.Item, e *Error, first source.Span) error {
		diag.ReportError(rep, e.Kind.Code(), it.Span, e.Error()).WithNote(first, "first declared here").Emit()
		return e
	})
}

// InlineLibrary is the package function with diagnostics positioned through
// the resolver's FileSet.
func (r *Resolver) InlineLibrary(bin, lib *ast.Tree, libName string) (*ast.Tree, bool, error) {
	return inlineLibrary(bin, lib, libName, r.opts.Reporter, func(it *ast.Item, e *Error, first source.Span) error {
		return r.fail(it, e, first, "first declared here")
	})
}

type failFunc func(it *ast.Item, e *Error, first source.Span) error

func inlineLibrary(bin, lib *ast.Tree, libName string, rep diag.Reporter, fail failFunc) (*ast.Tree, bool, error) {
	il := &inliner{
		aliases:  map[string]bool{libName: true},
		libNames: libRootNames(lib),
		rep:      diag.NewDedupReporter(rep),
	}
	for _, it := range bin.Items {
		if alias, ok := externCrateAlias(it, libName); ok {
			il.aliases[alias] = true
		}
	}

	at := -1
	for i, it := range bin.Items {
		if il.mentions(it) {
			at = i
			break
		}
	}
	if at < 0 {
		return bin, false, nil
	}

	il.rootNames = make(map[string]bool, len(il.libNames)+len(bin.Items))
	for name := range il.libNames {
		il.rootNames[name] = true
	}
	for name := range ast.RootNames(bin) {
		il.rootNames[name] = true
	}

	out := &ast.Tree{File: bin.File}
	out.InnerAttrs = mergeInnerAttrs(bin.InnerAttrs, lib.InnerAttrs)
	for i, it := range bin.Items {
		if i == at {
			out.Items = append(out.Items, lib.Items...)
		}
		if _, ok := externCrateAlias(it, libName); ok {
			continue
		}
		if it.Kind == ast.ItemImport && it.Keyword == "use" {
			if rewritten, keep := il.rewriteRootUse(it); keep {
				out.Items = append(out.Items, rewritten)
			}
			continue
		}
		out.Items = append(out.Items, il.rewriteItem(it))
	}
	if err := checkRootModules(out, fail); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// checkRootModules rejects two root modules with one name. cfg-gated pairs
// are left alone, as in resolveTree.
func checkRootModules(t *ast.Tree, fail failFunc) error {
	seen := make(map[string]*ast.Item)
	for _, it := range t.Items {
		if it.Kind != ast.ItemMod || it.Name == "" {
			continue
		}
		prev, ok := seen[it.Name]
		if !ok {
			seen[it.Name] = it
			continue
		}
		if prev.HasAttr("cfg") || it.HasAttr("cfg") {
			continue
		}
		return fail(it, &Error{Kind: DuplicateModule, Module: ast.ModulePath{it.Name}}, prev.Span)
	}
	return nil
}

type inliner struct {
	aliases   map[string]bool
	libNames  map[string]bool
	rootNames map[string]bool
	rep       diag.Reporter
}

// libRootNames collects the names reachable as `lib::name`: root items plus
// `#[macro_export]` macros from any module.
func libRootNames(lib *ast.Tree) map[string]bool {
	names := ast.RootNames(lib)
	ast.Walk(lib, func(it *ast.Item, _ ast.ModulePath) bool {
		if it.Kind == ast.ItemMacro && it.Name != "" && it.HasAttr("macro_export") {
			names[it.Name] = true
		}
		return true
	})
	return names
}

// externCrateAlias matches `extern crate lib;` and `extern crate lib as x;`.
func externCrateAlias(it *ast.Item, libName string) (string, bool) {
	if it.Kind != ast.ItemImport || it.Keyword != "extern crate" {
		return "", false
	}
	toks := withoutVis(it)
	// extern crate NAME [as ALIAS] ;
	if len(toks) < 3 || toks[2].Text != libName {
		return "", false
	}
	if len(toks) >= 5 && toks[3].Kind == token.KwAs {
		return toks[4].Text, true
	}
	return libName, true
}

func withoutVis(it *ast.Item) []token.Token {
	return it.Tokens[len(it.Vis):]
}

func (il *inliner) mentions(it *ast.Item) bool {
	found := false
	ast.Walk(&ast.Tree{Items: []*ast.Item{it}}, func(it *ast.Item, _ ast.ModulePath) bool {
		if found {
			return false
		}
		if it.Kind == ast.ItemImport && it.Keyword == "extern crate" {
			toks := withoutVis(it)
			if len(toks) >= 3 && il.aliases[toks[2].Text] {
				found = true
				return false
			}
		}
		for i := range it.Tokens {
			if il.isLibPath(it.Tokens, i) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// isLibPath reports whether toks[i] starts a `lib::` path. A leading `::`
// (2015-style absolute path) is allowed; `a::lib::` and `x.lib::` are not.
func (il *inliner) isLibPath(toks []token.Token, i int) bool {
	t := toks[i]
	if t.Kind != token.Ident || !il.aliases[t.Text] {
		return false
	}
	if i+1 >= len(toks) || toks[i+1].Kind != token.ColonColon {
		return false
	}
	if i == 0 {
		return true
	}
	switch toks[i-1].Kind {
	case token.Dot, token.Dollar:
		return false
	case token.ColonColon:
		return leadingColons(toks, i-1)
	}
	return true
}

// leadingColons reports whether toks[j] is a `::` that opens a path instead of
// continuing one.
func leadingColons(toks []token.Token, j int) bool {
	if j == 0 {
		return true
	}
	prev := toks[j-1].Kind
	return !(prev.IsWord() || prev == token.Gt || prev == token.RParen || prev == token.RBracket)
}

// rewriteTokens replaces every `lib::` path head with `crate::`. The input
// slice is only copied when something changes.
func (il *inliner) rewriteTokens(toks []token.Token) []token.Token {
	var out []token.Token
	for i := 0; i < len(toks); i++ {
		if !il.isLibPath(toks, i) {
			if out != nil {
				out = append(out, toks[i])
			}
			continue
		}
		if out == nil {
			out = make([]token.Token, 0, len(toks))
			out = append(out, toks[:i]...)
		}
		// `::lib::x` -> `crate::x`: убираем ведущий `::`
		if i > 0 && toks[i-1].Kind == token.ColonColon && len(out) > 0 {
			lead := out[len(out)-1]
			out = out[:len(out)-1]
			il.checkSegment(toks, i)
			out = append(out, crateToken(toks[i], lead.Leading))
			continue
		}
		il.checkSegment(toks, i)
		out = append(out, crateToken(toks[i], toks[i].Leading))
	}
	if out == nil {
		return toks
	}
	return out
}

func crateToken(at token.Token, leading []token.Trivia) token.Token {
	return token.Token{Kind: token.KwCrate, Span: at.Span, Text: "crate", Leading: leading}
}

// checkSegment warns when `lib::seg` names nothing at the library root.
func (il *inliner) checkSegment(toks []token.Token, i int) {
	if i+2 >= len(toks) {
		return
	}
	seg := toks[i+2]
	if seg.Kind != token.Ident || il.libNames[seg.Text] {
		return
	}
	diag.ReportWarning(il.rep, diag.ResUnresolvedReference, seg.Span,
		fmt.Sprintf("`%s::%s` does not name an item at the library root", toks[i].Text, seg.Text)).Emit()
}

func (il *inliner) rewriteItem(it *ast.Item) *ast.Item {
	cp := *it
	cp.Tokens = il.rewriteTokens(it.Tokens)
	if len(it.Attrs) > 0 {
		cp.Attrs = make([]ast.Attr, len(it.Attrs))
		for i, a := range it.Attrs {
			a.Tokens = il.rewriteTokens(a.Tokens)
			cp.Attrs[i] = a
		}
	}
	if it.Kind == ast.ItemMod && !it.Module.Pending() {
		body := *it.Module.Body
		body.Items = make([]*ast.Item, len(it.Module.Body.Items))
		for i, child := range it.Module.Body.Items {
			body.Items[i] = il.rewriteItem(child)
		}
		cp.Module = &ast.Module{Body: &body, Source: it.Module.Source}
	}
	return &cp
}

// rewriteRootUse handles a root-level `use`. It returns keep=false when the
// import became redundant because the library items now live at the root.
func (il *inliner) rewriteRootUse(it *ast.Item) (*ast.Item, bool) {
	toks := withoutVis(it)
	// use [::] LIB :: tail ;
	i := 1
	if i < len(toks) && toks[i].Kind == token.ColonColon {
		i++
	}
	if i+1 >= len(toks) || toks[i].Kind != token.Ident || !il.aliases[toks[i].Text] || toks[i+1].Kind != token.ColonColon {
		return il.rewriteItem(it), true
	}
	tail := toks[i+2:]
	if n := len(tail); n > 0 && tail[n-1].Kind == token.Semicolon {
		tail = tail[:n-1]
	}

	switch {
	case len(tail) == 1 && tail[0].Kind == token.Star:
		return nil, false
	case len(tail) == 1 && tail[0].Kind == token.Ident:
		if il.rootNames[tail[0].Text] {
			return nil, false
		}
	case len(tail) == 3 && tail[0].Kind == token.Ident && tail[1].Kind == token.KwAs:
		// `use lib::X as X;` тоже лишний
		if il.rootNames[tail[0].Text] && tail[2].Text == tail[0].Text {
			return nil, false
		}
	case len(tail) >= 2 && tail[0].Kind == token.LBrace && tail[len(tail)-1].Kind == token.RBrace:
		return il.rewriteGroup(it, toks[i], tail)
	}
	return il.rewriteItem(it), true
}

// rewriteGroup drops members of `use lib::{a, b::c}` that are root names.
func (il *inliner) rewriteGroup(it *ast.Item, head token.Token, group []token.Token) (*ast.Item, bool) {
	var members [][]token.Token
	start, depth := 1, 0
	for j := 1; j < len(group)-1; j++ {
		switch {
		case group[j].Kind.IsOpen():
			depth++
		case group[j].Kind.IsClose():
			depth--
		case group[j].Kind == token.Comma && depth == 0:
			members = append(members, group[start:j])
			start = j + 1
		}
	}
	if start < len(group)-1 {
		members = append(members, group[start:len(group)-1])
	}

	var kept [][]token.Token
	for _, m := range members {
		if len(m) == 0 {
			continue
		}
		if len(m) == 1 && (m[0].Kind == token.KwSelfLower || m[0].Kind == token.Star) {
			continue
		}
		if len(m) == 1 && m[0].Kind == token.Ident && il.rootNames[m[0].Text] {
			continue
		}
		if m[0].Kind == token.Ident && !il.libNames[m[0].Text] {
			diag.ReportWarning(il.rep, diag.ResUnresolvedReference, m[0].Span,
				fmt.Sprintf("`%s::%s` does not name an item at the library root", head.Text, m[0].Text)).Emit()
		}
		kept = append(kept, m)
	}
	if len(kept) == 0 {
		return nil, false
	}

	// vis use crate::{kept,...};
	toks := make([]token.Token, 0, len(it.Tokens))
	toks = append(toks, it.Vis...)
	useTok := it.Tokens[len(it.Vis)]
	toks = append(toks, useTok, crateToken(head, head.Leading), punct(token.ColonColon, head), punct(token.LBrace, head))
	for j, m := range kept {
		if j > 0 {
			toks = append(toks, punct(token.Comma, head))
		}
		toks = append(toks, m...)
	}
	toks = append(toks, punct(token.RBrace, head), punct(token.Semicolon, head))
	cp := *it
	cp.Tokens = toks
	return &cp, true
}

func punct(k token.Kind, at token.Token) token.Token {
	return token.Token{Kind: k, Span: at.Span, Text: k.Text()}
}

// mergeInnerAttrs appends the library's inner attributes that the binary
// does not already carry.
func mergeInnerAttrs(bin, lib []ast.Attr) []ast.Attr {
	out := make([]ast.Attr, 0, len(bin)+len(lib))
	seen := make(map[string]bool, len(bin)+len(lib))
	for _, group := range [][]ast.Attr{bin, lib} {
		for _, a := range group {
			key := attrText(a)
			if !a.Doc && seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, a)
		}
	}
	return out
}

func attrText(a ast.Attr) string {
	var buf []byte
	for _, t := range a.Tokens {
		buf = append(buf, t.Text...)
		buf = append(buf, ' ')
	}
	return string(buf)
}
