package lexer

import (
	"strconv"
	"testing"

	"rsbundle/internal/token"
)

func TestGlueMemoIsBounded(t *testing.T) {
	comma := token.Token{Kind: token.Comma, Text: ","}
	for i := range glueMemoSize + 100 {
		lit := token.Token{Kind: token.StringLit, Text: strconv.Quote("s" + strconv.Itoa(i))}
		if !Glue(lit, comma) {
			t.Fatalf("%s and , must glue", lit.Text)
		}
	}
	if n := glueMemo.Len(); n > glueMemoSize {
		t.Fatalf("memo holds %d entries, bound is %d", n, glueMemoSize)
	}
	// evicted pairs are recomputed
	first := token.Token{Kind: token.StringLit, Text: strconv.Quote("s0")}
	if !Glue(first, comma) {
		t.Fatal("recomputed pair changed its answer")
	}
}
