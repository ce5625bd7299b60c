package resolve

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rsbundle/internal/ast"
	"rsbundle/internal/diag"
	"rsbundle/internal/parser"
	"rsbundle/internal/source"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func load(t *testing.T, dir string, opts Options) (*ast.Tree, *Resolver, error) {
	t.Helper()
	if opts.Files == nil {
		opts.Files = source.NewFileSetWithBase(dir)
	}
	r := New(opts)
	tree, err := r.LoadCrate(context.Background(), filepath.Join(dir, "src", "main.rs"))
	return tree, r, err
}

// outline lists every item as "path/kind:name" in pre-order.
func outline(tree *ast.Tree) []string {
	var out []string
	ast.Walk(tree, func(it *ast.Item, path ast.ModulePath) bool {
		out = append(out, path.String()+"/"+it.Kind.String()+":"+it.Name)
		return true
	})
	return out
}

func TestResolveNestedModules(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"src/main.rs":  "mod a;\nmod d;\nfn main() {}\n",
		"src/a.rs":     "pub mod b;\npub fn fa() {}\n",
		"src/a/b.rs":   "pub fn fb() {}\n",
		"src/d/mod.rs": "mod e;\n",
		"src/d/e.rs":   "struct E;\n",
	})
	tree, r, err := load(t, dir, Options{})
	if err != nil {
		t.Fatalf("LoadCrate: %v", err)
	}
	want := []string{
		"crate/Mod:a",
		"a/Mod:b",
		"a::b/Fn:fb",
		"a/Fn:fa",
		"crate/Mod:d",
		"d/Mod:e",
		"d::e/TypeDef:E",
		"crate/Fn:main",
	}
	if diff := cmp.Diff(want, outline(tree)); diff != "" {
		t.Fatalf("outline mismatch (-want +got):\n%s", diff)
	}

	var rel []string
	for _, f := range r.Files() {
		p, _ := filepath.Rel(dir, f)
		rel = append(rel, filepath.ToSlash(p))
	}
	wantFiles := []string{"src/main.rs", "src/a.rs", "src/a/b.rs", "src/d/mod.rs", "src/d/e.rs"}
	if diff := cmp.Diff(wantFiles, rel); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}

	a := tree.Items[0]
	if a.Module.Pending() || !strings.HasSuffix(filepath.ToSlash(a.Module.Source), "src/a.rs") {
		t.Fatalf("module a not spliced from a.rs: %+v", a.Module)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"src/main.rs": "mod x;\nmod y;\n",
		"src/x.rs":    "pub fn x() {}\nmod z;\n",
		"src/x/z.rs":  "const Z: u8 = 1;\n",
		"src/y.rs":    "pub trait Y {}\n",
	})
	first, _, err := load(t, dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := load(t, dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(outline(first), outline(second)); diff != "" {
		t.Fatalf("two runs differ:\n%s", diff)
	}
}

func TestInlineModuleDeclarationsUseNestedDir(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"src/main.rs":        "mod outer { pub mod inner; }\n",
		"src/outer/inner.rs": "pub fn f() {}\n",
	})
	tree, _, err := load(t, dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"crate/Mod:outer", "outer/Mod:inner", "outer::inner/Fn:f"}
	if diff := cmp.Diff(want, outline(tree)); diff != "" {
		t.Fatalf("outline mismatch (-want +got):\n%s", diff)
	}
}

func TestPathAttribute(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"src/main.rs":         "#[path = \"impls/thing.rs\"]\nmod thing;\n",
		"src/impls/thing.rs":  "mod helper;\n",
		"src/impls/helper.rs": "fn help() {}\n",
	})
	tree, _, err := load(t, dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"crate/Mod:thing", "thing/Mod:helper", "thing::helper/Fn:help"}
	if diff := cmp.Diff(want, outline(tree)); diff != "" {
		t.Fatalf("outline mismatch (-want +got):\n%s", diff)
	}
	if !tree.Items[0].HasAttr("path") {
		t.Fatalf("declaration attributes must stay on the item")
	}
}

func TestFileNotFound(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"src/main.rs": "fn main() {}\nmod missing;\n",
	})
	bag := diag.NewBag(10)
	_, _, err := load(t, dir, Options{Reporter: diag.BagReporter{Bag: bag}})
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("want ErrFileNotFound, got %v", err)
	}
	var rerr *Error
	if !errors.As(err, &rerr) {
		t.Fatalf("want *Error, got %T", err)
	}
	want := []string{"src/missing.rs", "src/missing/mod.rs"}
	if diff := cmp.Diff(want, rerr.Candidates); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
	if rerr.Line != 2 || rerr.Col != 1 {
		t.Fatalf("position = %d:%d, want 2:1", rerr.Line, rerr.Col)
	}
	if !bag.HasErrors() || bag.Items()[0].Code != diag.ResFileNotFound {
		t.Fatalf("expected RES3001 diagnostic, got %+v", bag.Items())
	}
}

func TestAmbiguousCandidates(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"src/main.rs":  "mod m;\n",
		"src/m.rs":     "",
		"src/m/mod.rs": "",
	})
	_, _, err := load(t, dir, Options{})
	if !errors.Is(err, ErrAmbiguousCandidates) {
		t.Fatalf("want ErrAmbiguousCandidates, got %v", err)
	}
	if errors.Is(err, ErrFileNotFound) {
		t.Fatalf("error kinds must not overlap")
	}
}

func TestCyclicDeclaration(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"src/main.rs": "#[path = \"a.rs\"]\nmod a;\n",
		"src/a.rs":    "#[path = \"b.rs\"]\nmod b;\n",
		"src/b.rs":    "#[path = \"a.rs\"]\nmod again;\n",
	})
	_, _, err := load(t, dir, Options{})
	if !errors.Is(err, ErrCyclicDeclaration) {
		t.Fatalf("want ErrCyclicDeclaration, got %v", err)
	}
	var rerr *Error
	errors.As(err, &rerr)
	want := []string{"src/a.rs", "src/b.rs", "src/a.rs"}
	if diff := cmp.Diff(want, rerr.Chain); diff != "" {
		t.Fatalf("chain mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(err.Error(), "src/a.rs -> src/b.rs -> src/a.rs") {
		t.Fatalf("message lacks chain: %v", err)
	}
}

func TestCyclicDeclarationThroughSymlink(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"src/main.rs": "mod a;\n",
		"src/a.rs":    "mod b;\n",
		"src/mod.rs":  "mod a;\n",
	})
	if err := os.MkdirAll(filepath.Join(dir, "src", "a"), 0o755); err != nil {
		t.Fatal(err)
	}
	// src/a/b -> src: src/a/b/mod.rs is src/mod.rs, which declares a again
	if err := os.Symlink(filepath.Join(dir, "src"), filepath.Join(dir, "src", "a", "b")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, _, err := load(t, dir, Options{})
	if !errors.Is(err, ErrCyclicDeclaration) {
		t.Fatalf("want ErrCyclicDeclaration, got %v", err)
	}
	var rerr *Error
	errors.As(err, &rerr)
	want := []string{"src/a.rs", "src/a/b/mod.rs", "src/a/b/a.rs"}
	if diff := cmp.Diff(want, rerr.Chain); diff != "" {
		t.Fatalf("chain mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateModule(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"src/main.rs": "mod a {}\nmod a {}\n",
	})
	_, _, err := load(t, dir, Options{})
	if !errors.Is(err, ErrDuplicateModule) {
		t.Fatalf("want ErrDuplicateModule, got %v", err)
	}

	dir = writeFiles(t, map[string]string{
		"src/main.rs": "#[cfg(unix)]\nmod a {}\n#[cfg(windows)]\nmod a {}\n",
	})
	if _, _, err := load(t, dir, Options{}); err != nil {
		t.Fatalf("cfg-gated twins must resolve: %v", err)
	}
}

func TestSkipLeavesDeclarationPending(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"src/main.rs": "#[cfg(test)]\nmod tests;\nfn main() {}\n",
	})
	skip := func(it *ast.Item) bool { return it.HasAttr("cfg") }
	tree, _, err := load(t, dir, Options{Skip: skip})
	if err != nil {
		t.Fatalf("skipped module must not be looked up: %v", err)
	}
	if !tree.Items[0].IsPendingMod() {
		t.Fatalf("skipped module must stay pending")
	}
}

func TestParseErrorInModule(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"src/main.rs":   "mod broken;\n",
		"src/broken.rs": "fn f() {\n",
	})
	_, _, err := load(t, dir, Options{})
	var perr *parser.Error
	if !errors.As(err, &perr) {
		t.Fatalf("want *parser.Error, got %T %v", err, err)
	}
	if !strings.HasSuffix(perr.Path, "src/broken.rs") {
		t.Fatalf("parse error path = %q", perr.Path)
	}
	if !strings.Contains(err.Error(), "module `broken`") {
		t.Fatalf("error should name the module: %v", err)
	}
}

func TestCancelledContext(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"src/main.rs": "mod a;\n",
		"src/a.rs":    "",
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{}).LoadCrate(ctx, filepath.Join(dir, "src", "main.rs"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
