package parser_test

import (
	"errors"
	"testing"

	"rsbundle/internal/ast"
	"rsbundle/internal/diag"
	"rsbundle/internal/lexer"
	"rsbundle/internal/parser"
	"rsbundle/internal/source"

	"github.com/google/go-cmp/cmp"
)

func TestItemClassification(t *testing.T) {
	src := `
use std::io::{self, Read};
extern crate mylib;
pub(crate) const MAX: usize = { 1 << 10 };
static mut COUNTER: u32 = 0;
const _: () = ();
pub struct Point<T> { x: T, y: T }
struct Unit;
struct Tuple(i32, String);
enum E { A, B(u8) }
union U { a: u32, b: f32 }
type Alias = Vec<Vec<u8>>;
pub trait Shape { fn area(&self) -> f64; }
impl<T: Clone> Shape for Point<T> where T: Into<f64> { fn area(&self) -> f64 { 0.0 } }
pub const unsafe fn raw() {}
async fn later() -> Option<Vec<u8>> { None }
extern "C" { fn abs(x: i32) -> i32; }
extern "C" fn callback() {}
macro_rules! square { ($x:expr) => { $x * $x }; }
thread_local! { static X: u8 = 0; }
lazy_static::lazy_static!(static ref Y: u8 = 1;);
mod pending;
pub mod inline { fn f() {} }
`
	tree := mustParse(t, src)
	want := []ast.ItemKind{
		ast.ItemImport, ast.ItemImport, ast.ItemConst, ast.ItemConst, ast.ItemConst,
		ast.ItemTypeDef, ast.ItemTypeDef, ast.ItemTypeDef, ast.ItemTypeDef, ast.ItemTypeDef, ast.ItemTypeDef,
		ast.ItemTrait, ast.ItemImpl, ast.ItemFn, ast.ItemFn, ast.ItemOther, ast.ItemFn,
		ast.ItemMacro, ast.ItemMacro, ast.ItemMacro, ast.ItemMod, ast.ItemMod,
	}
	if diff := cmp.Diff(want, kindsOf(tree.Items)); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}

	names := []string{}
	for _, it := range tree.Items {
		names = append(names, it.Name)
	}
	wantNames := []string{
		"", "mylib", "MAX", "COUNTER", "_", "Point", "Unit", "Tuple", "E", "U", "Alias",
		"Shape", "", "raw", "later", "", "callback", "square", "thread_local", "lazy_static::lazy_static", "pending", "inline",
	}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestModules(t *testing.T) {
	tree := mustParse(t, "#[cfg(test)]\nmod tests;\npub mod a { #![allow(dead_code)]\n mod b { fn c() {} } }")
	pending := tree.Items[0]
	if !pending.IsPendingMod() || pending.Name != "tests" {
		t.Fatalf("expected pending mod tests, got %+v", pending)
	}
	if !pending.HasAttr("cfg") {
		t.Fatal("declaration-site attribute lost")
	}
	inline := tree.Items[1]
	if inline.IsPendingMod() || !inline.IsPublic() {
		t.Fatal("expected public inline module")
	}
	body := inline.Module.Body
	if len(body.InnerAttrs) != 1 || body.InnerAttrs[0].Path != "allow" {
		t.Fatalf("expected inner allow attribute, got %+v", body.InnerAttrs)
	}
	nested := body.Items[0]
	if nested.Module.Body.Items[0].Name != "c" {
		t.Fatal("nested module body not parsed")
	}
	if got := ast.KindSequence(tree); len(got) != 4 {
		t.Fatalf("pre-order sequence = %v", got)
	}
}

func TestAttributesAndDocs(t *testing.T) {
	src := "//! crate docs\n#![no_std]\n/// item docs\n#[doc = \"more\"]\n#[doc(hidden)]\n#[tokio::test]\n#[cfg(all(test, unix))]\nfn f() {}"
	tree := mustParse(t, src)
	if len(tree.InnerAttrs) != 2 || !tree.InnerAttrs[0].Doc || tree.InnerAttrs[1].Path != "no_std" {
		t.Fatalf("unexpected inner attrs %+v", tree.InnerAttrs)
	}
	attrs := tree.Items[0].Attrs
	gotPaths := make([]string, len(attrs))
	for i := range attrs {
		gotPaths[i] = attrs[i].Path
	}
	if diff := cmp.Diff([]string{"doc", "doc", "doc", "tokio::test", "cfg"}, gotPaths); diff != "" {
		t.Fatalf("paths (-want +got):\n%s", diff)
	}
	if !attrs[0].Doc || !attrs[1].Doc || attrs[2].Doc {
		t.Fatal("only doc comments and #[doc = ...] are documentation")
	}
	if text, ok := attrs[1].DocText(); !ok || text != "more" {
		t.Fatalf("DocText = %q,%v", text, ok)
	}
	if text, _ := attrs[0].DocText(); text != " item docs" {
		t.Fatalf("comment DocText = %q", text)
	}
	if args := attrs[4].Args(); len(args) == 0 || args[0].Text != "(" || args[len(args)-1].Text != ")" {
		t.Fatalf("cfg args = %v", args)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"unclosed brace", "fn f() {", diag.SynUnclosedDelimiter},
		{"mismatched", "fn f() { (] }", diag.SynUnbalancedClose},
		{"missing semicolon", "use a::b", diag.SynExpectSemicolon},
		{"stray token", "fn f() {} ;", diag.SynExpectItem},
		{"bad mod", "mod m = 1;", diag.SynExpectSemicolon},
		{"lex error", "const S: &str = \"open;", diag.LexUnterminatedString},
		{"dangling attr", "fn f() {}\n#[inline]", diag.SynExpectItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseSource("bad.rs", []byte(tt.src))
			var perr *parser.Error
			if !errors.As(err, &perr) {
				t.Fatalf("expected *parser.Error, got %v", err)
			}
			if perr.Code != tt.code {
				t.Fatalf("code = %s want %s (%v)", perr.Code.ID(), tt.code.ID(), err)
			}
			if perr.Path != "bad.rs" || perr.Line == 0 {
				t.Fatalf("missing position: %+v", perr)
			}
		})
	}
}

func TestParseTokensReusesLexedStream(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.rs", []byte("fn a() {} fn b() {}"))
	toks := lexer.Tokenize(fs.Get(id), lexer.Options{})
	tree, err := parser.ParseTokens(fs, id, toks, parser.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(tree.Items) != 2 || tree.Items[1].Name != "b" {
		t.Fatalf("unexpected items %+v", tree.Items)
	}
	if _, err := parser.ParseTokens(fs, id, toks[:1], parser.Options{}); err == nil {
		t.Fatal("expected error for stream without EOF")
	}
}

func TestErrorPosition(t *testing.T) {
	_, err := parser.ParseSource("pos.rs", []byte("fn ok() {}\n\n  ;"))
	var perr *parser.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if perr.Line != 3 || perr.Col != 3 {
		t.Fatalf("position = %d:%d want 3:3", perr.Line, perr.Col)
	}
}
