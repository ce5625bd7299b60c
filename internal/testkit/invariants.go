// Package testkit holds structural checks shared by parser, render and fuzz
// tests.
package testkit

import (
	"bytes"
	"fmt"
	"slices"

	"fortio.org/safecast"

	"rsbundle/internal/ast"
	"rsbundle/internal/parser"
	"rsbundle/internal/render"
	"rsbundle/internal/source"
)

// Parse adds src to a fresh FileSet under name and parses it.
func Parse(name string, src []byte) (*ast.Tree, *source.FileSet, error) {
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, src)
	tree, err := parser.ParseFile(fs, id, parser.Options{})
	return tree, fs, err
}

// CheckSpanInvariants runs a minimal set of span invariants on a parsed file:
// 1) every item span is non-empty and lies inside the file content
// 2) sibling items do not overlap and keep source order
// 3) items of an inline module lie inside the module item
// 4) attribute spans end before the item they decorate starts
// Modules spliced in from other files are checked against their own file.
func CheckSpanInvariants(tree *ast.Tree, fs *source.FileSet) error {
	if tree == nil || fs == nil {
		return fmt.Errorf("nil tree or file set")
	}
	sf := fs.Get(tree.File)
	if sf == nil {
		return fmt.Errorf("file %d not in file set", tree.File)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	return checkItems(tree, fs, source.Span{File: tree.File, Start: 0, End: lenContent})
}

func checkItems(tree *ast.Tree, fs *source.FileSet, outer source.Span) error {
	var prevEnd uint32
	for i, it := range tree.Items {
		if it == nil {
			return fmt.Errorf("nil item at index %d", i)
		}
		sp := it.Span
		if sp.End <= sp.Start {
			return fmt.Errorf("empty item span: %v", sp)
		}
		if sp.File != outer.File {
			return fmt.Errorf("item span file mismatch: got=%d want=%d", sp.File, outer.File)
		}
		if sp.Start < outer.Start || sp.End > outer.End {
			return fmt.Errorf("item %q span %v is outside %v", it.Name, sp, outer)
		}
		if i > 0 && sp.Start < prevEnd {
			return fmt.Errorf("item %q span %v overlaps previous item ending at %d", it.Name, sp, prevEnd)
		}
		prevEnd = sp.End
		for _, a := range it.Attrs {
			if a.Span.File == sp.File && a.Span.End > sp.Start {
				return fmt.Errorf("attribute %q of %q ends after the item starts", a.Path, it.Name)
			}
		}

		if it.Kind != ast.ItemMod || it.Module.Pending() {
			continue
		}
		body := it.Module.Body
		if body.File == sp.File {
			if err := checkItems(body, fs, sp); err != nil {
				return fmt.Errorf("mod %s: %w", it.Name, err)
			}
			continue
		}
		if err := CheckSpanInvariants(body, fs); err != nil {
			return fmt.Errorf("mod %s: %w", it.Name, err)
		}
	}
	return nil
}

// CheckRoundTrip renders tree, parses the rendering and renders again. The
// item kinds must survive and the second rendering must equal the first.
func CheckRoundTrip(tree *ast.Tree) error {
	first := render.Tree(tree)
	again, _, err := Parse("rendered.rs", first)
	if err != nil {
		return fmt.Errorf("rendered output does not parse: %w\n%s", err, first)
	}
	if want, got := ast.KindSequence(tree), ast.KindSequence(again); !slices.Equal(want, got) {
		return fmt.Errorf("item kinds changed: %v -> %v", want, got)
	}
	if second := render.Tree(again); !bytes.Equal(first, second) {
		return fmt.Errorf("render is not idempotent:\n%s\n---\n%s", first, second)
	}
	return nil
}
