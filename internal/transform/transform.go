package transform

import (
	"strings"

	"rsbundle/internal/ast"
	"rsbundle/internal/token"
)

// Config selects the optional passes. cfg pruning always runs.
type Config struct {
	StripTests bool
	StripDocs  bool
}

// Stats counts what the passes removed.
type Stats struct {
	Tests    int // items removed as tests or benchmarks
	Cfg      int // items removed by a false cfg predicate
	Modules  int // modules removed because every child was pruned
	Docs     int // doc attributes and doc comments removed
	CfgAttrs int // cfg_attr attributes with a false predicate
}

// Apply runs the passes over tree and returns the pruned tree. The input is
// not modified.
func Apply(tree *ast.Tree, cfg Config) *ast.Tree {
	out, _ := Run(tree, cfg)
	return out
}

// Run is Apply that also reports what was removed.
func Run(tree *ast.Tree, cfg Config) (*ast.Tree, Stats) {
	var st Stats
	if tree == nil {
		return nil, st
	}
	out := tree
	if cfg.StripTests {
		out = prune(out, isTestItem, &st.Tests, &st.Modules)
	}
	out = prune(out, isCfgDisabled, &st.Cfg, &st.Modules)
	out = dropCfgAttrs(out, &st.CfgAttrs)
	if cfg.StripDocs {
		out = stripDocs(out, &st.Docs)
	}
	return out, st
}

// Pruned reports whether the item's own attributes remove it under cfg.
// The resolver uses it to leave such declarations unresolved.
func Pruned(it *ast.Item, cfg Config) bool {
	return (cfg.StripTests && isTestItem(it)) || isCfgDisabled(it)
}

func isTestItem(it *ast.Item) bool {
	for i := range it.Attrs {
		a := &it.Attrs[i]
		if a.Inner || a.Doc {
			continue
		}
		switch {
		case a.Path == "test", a.Path == "bench":
			return true
		case strings.HasSuffix(a.Path, "::test"), strings.HasSuffix(a.Path, "::bench"):
			return true
		}
	}
	return false
}

func isCfgDisabled(it *ast.Item) bool {
	for i := range it.Attrs {
		a := &it.Attrs[i]
		if a.Path == "cfg" && evalCfg(a.Args()) == no {
			return true
		}
	}
	return false
}

// prune removes items matching drop. Modules are visited bottom-up: a module
// that had children and lost all of them goes too.
func prune(tree *ast.Tree, drop func(*ast.Item) bool, removed, emptied *int) *ast.Tree {
	out := *tree
	out.Items = make([]*ast.Item, 0, len(tree.Items))
	for _, it := range tree.Items {
		if drop(it) {
			*removed++
			continue
		}
		if it.Kind == ast.ItemMod && !it.Module.Pending() {
			body := it.Module.Body
			pruned := prune(body, drop, removed, emptied)
			if len(body.Items) > 0 && len(pruned.Items) == 0 {
				*emptied++
				continue
			}
			cp := *it
			cp.Module = &ast.Module{Body: pruned, Source: it.Module.Source}
			it = &cp
		}
		out.Items = append(out.Items, it)
	}
	return &out
}

// dropCfgAttrs removes `#[cfg_attr(pred, ...)]` whose predicate is false
// (e.g. `cfg_attr(test, derive(Debug))`).
func dropCfgAttrs(tree *ast.Tree, removed *int) *ast.Tree {
	return mapItems(tree, func(it *ast.Item) *ast.Item {
		keep := filterAttrs(it.Attrs, func(a *ast.Attr) bool {
			return a.Path == "cfg_attr" && evalCfgAttrPredicate(a.Args()) == no
		})
		if len(keep) == len(it.Attrs) {
			return it
		}
		*removed += len(it.Attrs) - len(keep)
		cp := *it
		cp.Attrs = keep
		return &cp
	})
}

func filterAttrs(attrs []ast.Attr, drop func(*ast.Attr) bool) []ast.Attr {
	var out []ast.Attr
	for i := range attrs {
		if drop(&attrs[i]) {
			continue
		}
		out = append(out, attrs[i])
	}
	if len(out) == len(attrs) {
		return attrs
	}
	return out
}

// mapItems rebuilds the tree applying fn to every item, modules included.
func mapItems(tree *ast.Tree, fn func(*ast.Item) *ast.Item) *ast.Tree {
	out := *tree
	out.Items = make([]*ast.Item, len(tree.Items))
	for i, it := range tree.Items {
		next := fn(it)
		if next.Kind == ast.ItemMod && !next.Module.Pending() {
			if next == it {
				cp := *it
				next = &cp
			}
			next.Module = &ast.Module{Body: mapItems(it.Module.Body, fn), Source: it.Module.Source}
		}
		out.Items[i] = next
	}
	return &out
}

// stripDocs removes doc comments and `#[doc = ...]` from attributes, inner
// attributes and from item bodies (fields, variants, methods).
func stripDocs(tree *ast.Tree, removed *int) *ast.Tree {
	isDoc := func(a *ast.Attr) bool { return a.Doc }
	out := mapItems(tree, func(it *ast.Item) *ast.Item {
		attrs := filterAttrs(it.Attrs, isDoc)
		toks, n := stripDocTokens(it.Tokens)
		*removed += len(it.Attrs) - len(attrs) + n
		if n == 0 && len(attrs) == len(it.Attrs) {
			return it
		}
		cp := *it
		cp.Attrs = attrs
		cp.Tokens = toks
		return &cp
	})
	stripInner(out, isDoc, removed)
	return out
}

// stripInner drops inner doc attributes of out and of every module body.
// Trees reached here are copies made by mapItems.
func stripInner(t *ast.Tree, isDoc func(*ast.Attr) bool, removed *int) {
	kept := filterAttrs(t.InnerAttrs, isDoc)
	*removed += len(t.InnerAttrs) - len(kept)
	t.InnerAttrs = kept
	for _, it := range t.Items {
		if it.Kind == ast.ItemMod && !it.Module.Pending() {
			stripInner(it.Module.Body, isDoc, removed)
		}
	}
}

// stripDocTokens removes doc comment tokens and `#[doc = ...]` /
// `#![doc = ...]` sequences from an item body. Returns the number removed.
func stripDocTokens(toks []token.Token) ([]token.Token, int) {
	var out []token.Token
	n := 0
	for i := 0; i < len(toks); i++ {
		skip := 0
		switch {
		case toks[i].Kind.IsDoc():
			skip = 1
		case toks[i].Kind == token.Pound:
			skip = docAttrLen(toks, i)
		}
		if skip == 0 {
			if out != nil {
				out = append(out, toks[i])
			}
			continue
		}
		if out == nil {
			out = make([]token.Token, 0, len(toks))
			out = append(out, toks[:i]...)
		}
		n++
		i += skip - 1
	}
	if out == nil {
		return toks, 0
	}
	return out, n
}

// docAttrLen returns the token length of a `#[doc = ...]` starting at i, 0 if
// the attribute at i is something else.
func docAttrLen(toks []token.Token, i int) int {
	j := i + 1
	if j < len(toks) && toks[j].Kind == token.Bang {
		j++
	}
	if j+2 >= len(toks) || toks[j].Kind != token.LBracket || !toks[j+1].IsIdentText("doc") || toks[j+2].Kind != token.Assign {
		return 0
	}
	depth := 0
	for k := j; k < len(toks); k++ {
		switch {
		case toks[k].Kind.IsOpen():
			depth++
		case toks[k].Kind.IsClose():
			depth--
			if depth == 0 {
				return k - i + 1
			}
		}
	}
	return 0
}
