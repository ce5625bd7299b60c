package ast

import (
	"rsbundle/internal/source"
)

// Tree is the content of one module: inner attributes followed by items in
// source order.
type Tree struct {
	InnerAttrs []Attr
	Items      []*Item
	File       source.FileID
}

// Walk visits every item in pre-order, descending into resolved modules.
// Returning false from fn skips the item's children.
func Walk(t *Tree, fn func(it *Item, path ModulePath) bool) {
	walk(t, nil, fn)
}

func walk(t *Tree, path ModulePath, fn func(*Item, ModulePath) bool) {
	if t == nil {
		return
	}
	for _, it := range t.Items {
		if !fn(it, path) {
			continue
		}
		if it.Kind == ItemMod && !it.Module.Pending() {
			walk(it.Module.Body, path.Child(it.Name), fn)
		}
	}
}

// KindSequence returns the pre-order item kinds of the whole tree. Two
// renderings of the same crate must produce equal sequences.
func KindSequence(t *Tree) []ItemKind {
	var out []ItemKind
	Walk(t, func(it *Item, _ ModulePath) bool {
		out = append(out, it.Kind)
		return true
	})
	return out
}

// RootNames returns the names declared directly in t.
func RootNames(t *Tree) map[string]bool {
	names := make(map[string]bool, len(t.Items))
	for _, it := range t.Items {
		if it.Name != "" {
			names[it.Name] = true
		}
	}
	return names
}
