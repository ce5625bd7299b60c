package ast

import (
	"rsbundle/internal/source"
	"rsbundle/internal/token"
)

type ItemKind uint8

const (
	ItemOther ItemKind = iota
	ItemFn
	ItemTypeDef // struct, enum, union, type alias
	ItemTrait
	ItemImpl
	ItemMod
	ItemImport // use, extern crate
	ItemConst  // const, static
	ItemMacro  // macro_rules! and item-position macro invocations
)

var itemKindNames = [...]string{
	ItemOther:   "Other",
	ItemFn:      "Fn",
	ItemTypeDef: "TypeDef",
	ItemTrait:   "Trait",
	ItemImpl:    "Impl",
	ItemMod:     "Mod",
	ItemImport:  "Import",
	ItemConst:   "Const",
	ItemMacro:   "Macro",
}

func (k ItemKind) String() string {
	if int(k) < len(itemKindNames) {
		return itemKindNames[k]
	}
	return "ItemKind(?)"
}

// Item is one top-level or module-level construct.
//
// Tokens holds the item from its visibility to its end, attributes excluded.
// For a Mod item Tokens stops before the body: `pub mod name`; the body
// lives in Module.
type Item struct {
	Kind    ItemKind
	Keyword string // fn, struct, enum, union, type, trait, impl, mod, use, extern crate, const, static, macro_rules, extern, macro
	Name    string
	Attrs   []Attr
	Vis     []token.Token
	Tokens  []token.Token
	Span    source.Span
	Module  *Module
}

// Module is the payload of a Mod item.
type Module struct {
	// Body is nil while the declaration is pending (`mod x;`).
	Body *Tree
	// Source is the file the body was read from; empty for inline modules.
	Source string
}

// Pending reports whether the module body still lives in another file.
func (m *Module) Pending() bool {
	return m == nil || m.Body == nil
}

// IsPublic reports whether the item has any `pub` visibility.
func (it *Item) IsPublic() bool {
	return len(it.Vis) > 0
}

// IsPendingMod reports a `mod name;` declaration that still needs a file.
func (it *Item) IsPendingMod() bool {
	return it.Kind == ItemMod && it.Module.Pending()
}

// HasAttr reports whether an outer attribute with the given path exists.
func (it *Item) HasAttr(path string) bool {
	for i := range it.Attrs {
		if it.Attrs[i].Path == path {
			return true
		}
	}
	return false
}

// FindAttr returns the first outer attribute with the given path.
func (it *Item) FindAttr(path string) (*Attr, bool) {
	for i := range it.Attrs {
		if it.Attrs[i].Path == path {
			return &it.Attrs[i], true
		}
	}
	return nil, false
}
