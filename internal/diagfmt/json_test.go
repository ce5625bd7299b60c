package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rsbundle/internal/diag"
	"rsbundle/internal/lexer"
	"rsbundle/internal/parser"
	"rsbundle/internal/source"
)

func TestJSONBasic(t *testing.T) {
	bag, fs := sampleBag(t)

	var buf bytes.Buffer
	err := JSON(&buf, bag.Items(), fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true})
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var got DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	want := DiagnosticsOutput{
		Count: 1,
		Diagnostics: []DiagnosticJSON{{
			Severity: "ERROR",
			Code:     "LEX1002",
			Message:  "unterminated string literal",
			Location: LocationJSON{File: "main.rs", StartByte: 24, EndByte: 37, StartLine: 2, StartCol: 13, EndLine: 2, EndCol: 26},
			Notes: []NoteJSON{{
				Message:  "inside this function",
				Location: LocationJSON{File: "main.rs", StartByte: 0, EndByte: 2, StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 3},
			}},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONMax(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.rs", []byte("fn a() {}"))
	items := []diag.Diagnostic{
		diag.NewWarning(diag.ResUnresolvedReference, source.Span{File: id}, "one"),
		diag.NewWarning(diag.ResUnresolvedReference, source.Span{File: id}, "two"),
	}
	out := BuildDiagnosticsOutput(items, fs, JSONOpts{Max: 1})
	if out.Count != 1 || out.Diagnostics[0].Message != "one" || out.Diagnostics[0].Location.StartLine != 0 {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestFormatTokens(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.rs", []byte("// c\nfn f"))
	toks := lexer.Tokenize(fs.Get(id), lexer.Options{})

	var buf bytes.Buffer
	if err := FormatTokensPretty(&buf, toks, fs); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"fn" at 2:1-2:3 (leading: line-comment, newline)`) {
		t.Fatalf("unexpected pretty output:\n%s", buf.String())
	}

	buf.Reset()
	if err := FormatTokensJSON(&buf, toks, fs); err != nil {
		t.Fatal(err)
	}
	var got []TokenOutput
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != len(toks) || got[0].Text != "fn" {
		t.Fatalf("unexpected JSON tokens: %+v", got)
	}
	if got[0].Line != 2 || got[0].Col != 1 {
		t.Fatalf("fn at %d:%d, want 2:1", got[0].Line, got[0].Col)
	}
}

func TestFormatTree(t *testing.T) {
	src := "#![allow(dead_code)]\nmod a { pub fn f() {} }\n#[cfg(test)]\nmod tests;\nuse a::f;\n"
	fs := source.NewFileSet()
	tree, err := parser.ParseFile(fs, fs.AddVirtual("main.rs", []byte(src)), parser.Options{})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := FormatTreePretty(&buf, tree, fs); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"#![allow]",
		"Mod      mod a @2",
		"  Fn       fn f @2",
		"Mod      mod tests [cfg] @4 (pending)",
		"Import   use @5",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("pretty tree (-want +got):\n%s", diff)
	}

	buf.Reset()
	if err := FormatTreeJSON(&buf, tree, fs); err != nil {
		t.Fatal(err)
	}
	var items []ItemOutput
	if err := json.Unmarshal(buf.Bytes(), &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 || items[0].Path != "a" || len(items[0].Items) != 1 || !items[1].Pending {
		t.Fatalf("unexpected JSON tree: %+v", items)
	}
}
