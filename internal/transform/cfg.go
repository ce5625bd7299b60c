package transform

import (
	"rsbundle/internal/token"
)

// truth is a three-valued cfg result. Only predicates that are known to be
// false prune anything: target, feature and similar options stay unknown.
type truth uint8

const (
	unknown truth = iota
	yes
	no
)

func (t truth) not() truth {
	switch t {
	case yes:
		return no
	case no:
		return yes
	}
	return unknown
}

// evalCfg evaluates the predicate of `#[cfg(...)]` with `test` disabled.
// args are the attribute arguments: `( pred )`.
func evalCfg(args []token.Token) truth {
	if len(args) < 2 || args[0].Kind != token.LParen || args[len(args)-1].Kind != token.RParen {
		return unknown
	}
	e := cfgEval{toks: args[1 : len(args)-1]}
	v, ok := e.pred()
	if !ok || e.pos != len(e.toks) {
		return unknown
	}
	return v
}

type cfgEval struct {
	toks []token.Token
	pos  int
}

func (e *cfgEval) peek() token.Token {
	if e.pos < len(e.toks) {
		return e.toks[e.pos]
	}
	return token.Token{Kind: token.EOF}
}

func (e *cfgEval) pred() (truth, bool) {
	name := e.peek()
	if !name.Kind.IsWord() {
		return unknown, false
	}
	e.pos++
	switch {
	case e.peek().Kind == token.Assign:
		// key = "value": target_os, feature и т.п.
		e.pos++
		if !e.peek().IsLiteral() {
			return unknown, false
		}
		e.pos++
		return unknown, true
	case e.peek().Kind == token.LParen:
		e.pos++
		args, ok := e.list()
		if !ok {
			return unknown, false
		}
		switch name.Text {
		case "all":
			return all(args), true
		case "any":
			return anyOf(args), true
		case "not":
			if len(args) != 1 {
				return unknown, false
			}
			return args[0].not(), true
		}
		return unknown, true
	}
	if name.Text == "test" {
		return no, true
	}
	return unknown, true
}

// list parses `p, p, ...)` after the opening paren.
func (e *cfgEval) list() ([]truth, bool) {
	var out []truth
	for {
		if e.peek().Kind == token.RParen {
			e.pos++
			return out, true
		}
		v, ok := e.pred()
		if !ok {
			return nil, false
		}
		out = append(out, v)
		switch e.peek().Kind {
		case token.Comma:
			e.pos++
		case token.RParen:
		default:
			return nil, false
		}
	}
}

func all(args []truth) truth {
	res := yes
	for _, a := range args {
		if a == no {
			return no
		}
		if a == unknown {
			res = unknown
		}
	}
	return res
}

func anyOf(args []truth) truth {
	res := no
	for _, a := range args {
		if a == yes {
			return yes
		}
		if a == unknown {
			res = unknown
		}
	}
	return res
}

// evalCfgAttrPredicate evaluates the leading predicate of
// `#[cfg_attr(pred, attr, ...)]`.
func evalCfgAttrPredicate(args []token.Token) truth {
	if len(args) < 2 || args[0].Kind != token.LParen {
		return unknown
	}
	e := cfgEval{toks: args[1 : len(args)-1]}
	v, ok := e.pred()
	if !ok || e.peek().Kind != token.Comma {
		return unknown
	}
	return v
}
