package parser_test

import (
	"fmt"
	"strings"
	"testing"

	"rsbundle/internal/ast"
	"rsbundle/internal/diag"
	"rsbundle/internal/parser"
	"rsbundle/internal/source"
)

func diagnosticsSummary(bag *diag.Bag) string {
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

// mustParse разбирает src и падает при любой ошибке
func mustParse(t *testing.T, src string) *ast.Tree {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rs", []byte(src))
	bag := diag.NewBag(32)
	tree, err := parser.ParseFile(fs, id, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	if err != nil {
		t.Fatalf("parse failed: %v (%s)", err, diagnosticsSummary(bag))
	}
	return tree
}

func kindsOf(items []*ast.Item) []ast.ItemKind {
	out := make([]ast.ItemKind, len(items))
	for i, it := range items {
		out[i] = it.Kind
	}
	return out
}
