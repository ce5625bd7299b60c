package resolve

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rsbundle/internal/ast"
	"rsbundle/internal/diag"
	"rsbundle/internal/parser"
)

func parse(t *testing.T, name, src string) *ast.Tree {
	t.Helper()
	tree, err := parser.ParseSource(name, []byte(src))
	if err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	return tree
}

func inline(t *testing.T, bin, lib *ast.Tree, name string, rep diag.Reporter) (*ast.Tree, bool) {
	t.Helper()
	out, ok, err := InlineLibrary(bin, lib, name, rep)
	if err != nil {
		t.Fatalf("InlineLibrary: %v", err)
	}
	return out, ok
}

func itemText(it *ast.Item) string {
	parts := make([]string, len(it.Tokens))
	for i, tok := range it.Tokens {
		parts[i] = tok.Text
	}
	return strings.Join(parts, " ")
}

func itemTexts(tree *ast.Tree) []string {
	out := make([]string, len(tree.Items))
	for i, it := range tree.Items {
		out[i] = itemText(it)
	}
	return out
}

const libSrc = `
pub mod geometry { pub struct Point; }
pub fn solve() {}
pub struct Input;
#[macro_export]
macro_rules! dbg_all { () => {}; }
`

func TestInlineLibraryRemovesRedundantImports(t *testing.T) {
	bin := parse(t, "main.rs", `
use std::io;
extern crate mylib;
use mylib::*;
use mylib::solve;
use mylib::geometry::Point;
fn main() { mylib::solve(); }
`)
	lib := parse(t, "lib.rs", libSrc)

	out, ok := inline(t, bin, lib, "mylib", nil)
	if !ok {
		t.Fatal("library was not inlined")
	}
	want := []string{
		"use std :: io ;",
		"pub mod geometry",
		"pub fn solve ( ) { }",
		"pub struct Input ;",
		"macro_rules ! dbg_all { ( ) => { } ; }",
		"use crate :: geometry :: Point ;",
		"fn main ( ) { crate :: solve ( ) ; }",
	}
	if diff := cmp.Diff(want, itemTexts(out)); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestInlineLibraryGroupsAndAbsolutePaths(t *testing.T) {
	bin := parse(t, "main.rs", `
fn helper() {}
pub use mylib::{solve, geometry::Point, Input as In};
fn main() { ::mylib::solve(); let v = x.mylib::<u8>(); }
`)
	lib := parse(t, "lib.rs", libSrc)

	out, ok := inline(t, bin, lib, "mylib", nil)
	if !ok {
		t.Fatal("library was not inlined")
	}
	got := itemTexts(out)
	if got[0] != "fn helper ( ) { }" || got[1] != "pub mod geometry" {
		t.Fatalf("library must be inserted before the first referencing item: %q", got[:2])
	}
	if want := "pub use crate :: { geometry :: Point , Input as In } ;"; got[5] != want {
		t.Fatalf("group rewrite:\n got %q\nwant %q", got[5], want)
	}
	if want := "fn main ( ) { crate :: solve ( ) ; let v = x . mylib :: < u8 > ( ) ; }"; got[6] != want {
		t.Fatalf("path rewrite:\n got %q\nwant %q", got[6], want)
	}
}

func TestInlineLibraryExternCrateAlias(t *testing.T) {
	bin := parse(t, "main.rs", `
extern crate mylib as lib;
fn main() { lib::solve(); }
`)
	out, ok := inline(t, bin, parse(t, "lib.rs", libSrc), "mylib", nil)
	if !ok {
		t.Fatal("library was not inlined")
	}
	got := itemTexts(out)
	if last := got[len(got)-1]; last != "fn main ( ) { crate :: solve ( ) ; }" {
		t.Fatalf("alias path not rewritten: %q", last)
	}
	for _, s := range got {
		if strings.HasPrefix(s, "extern crate") {
			t.Fatalf("extern crate must be removed: %q", got)
		}
	}
}

func TestInlineLibraryRewritesNestedModules(t *testing.T) {
	bin := parse(t, "main.rs", `
mod app { use mylib::Input; pub fn run() {} }
fn main() {}
`)
	out, ok := inline(t, bin, parse(t, "lib.rs", libSrc), "mylib", nil)
	if !ok {
		t.Fatal("library was not inlined")
	}
	var app *ast.Item
	for _, it := range out.Items {
		if it.Name == "app" {
			app = it
		}
	}
	if app == nil {
		t.Fatal("module app lost")
	}
	if got := itemText(app.Module.Body.Items[0]); got != "use crate :: Input ;" {
		t.Fatalf("nested use = %q", got)
	}
	if bin.Items[0].Module.Body.Items[0].Tokens[1].Text != "mylib" {
		t.Fatalf("input tree must not be modified")
	}
}

func TestInlineLibraryWarnsOnUnknownSegment(t *testing.T) {
	bin := parse(t, "main.rs", `
fn main() { mylib::nope(); mylib::nope(); }
`)
	bag := diag.NewBag(10)
	_, ok := inline(t, bin, parse(t, "lib.rs", libSrc), "mylib", diag.BagReporter{Bag: bag})
	if !ok {
		t.Fatal("library was not inlined")
	}
	warns := bag.Warnings()
	if len(warns) != 2 {
		t.Fatalf("want one warning per reference, got %d", len(warns))
	}
	if warns[0].Code != diag.ResUnresolvedReference || bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
}

func TestInlineLibraryWithoutReference(t *testing.T) {
	bin := parse(t, "main.rs", "fn main() {}\n")
	out, ok := inline(t, bin, parse(t, "lib.rs", libSrc), "mylib", nil)
	if ok || out != bin {
		t.Fatalf("binary without references must be returned untouched")
	}
}

func TestMergeInnerAttrs(t *testing.T) {
	bin := parse(t, "main.rs", "#![allow(dead_code)]\nfn main() { mylib::solve(); }\n")
	lib := parse(t, "lib.rs", "#![allow(dead_code)]\n#![allow(unused)]\npub fn solve() {}\n")
	out, _ := inline(t, bin, lib, "mylib", nil)
	if len(out.InnerAttrs) != 2 {
		t.Fatalf("want 2 inner attributes after dedup, got %d", len(out.InnerAttrs))
	}
}

func TestInlineLibraryDuplicateRootModule(t *testing.T) {
	bin := parse(t, "main.rs", "mod util { pub fn bin_fn() {} }\nuse mylib::solve;\nfn main() { solve(); }\n")
	lib := parse(t, "lib.rs", "pub mod util { pub fn lib_fn() {} }\npub fn solve() {}\n")
	bag := diag.NewBag(10)

	_, _, err := InlineLibrary(bin, lib, "mylib", diag.BagReporter{Bag: bag})
	if !errors.Is(err, ErrDuplicateModule) {
		t.Fatalf("want ErrDuplicateModule, got %v", err)
	}
	if !bag.HasErrors() {
		t.Fatal("duplicate module was not reported")
	}
}

func TestInlineLibraryCfgGatedModules(t *testing.T) {
	bin := parse(t, "main.rs", "#[cfg(unix)]\nmod sys {}\nfn main() { mylib::solve(); }\n")
	lib := parse(t, "lib.rs", "#[cfg(windows)]\npub mod sys {}\npub fn solve() {}\n")
	if _, ok := inline(t, bin, lib, "mylib", nil); !ok {
		t.Fatal("library was not inlined")
	}
}
