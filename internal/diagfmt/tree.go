package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"rsbundle/internal/ast"
	"rsbundle/internal/source"
)

// ItemOutput is one item of a parsed tree in JSON form.
type ItemOutput struct {
	Kind    string       `json:"kind"`
	Keyword string       `json:"keyword,omitempty"`
	Name    string       `json:"name,omitempty"`
	Path    string       `json:"path,omitempty"`
	Attrs   []string     `json:"attrs,omitempty"`
	Public  bool         `json:"public,omitempty"`
	Line    uint32       `json:"line,omitempty"`
	Pending bool         `json:"pending,omitempty"`
	Source  string       `json:"source,omitempty"`
	Items   []ItemOutput `json:"items,omitempty"`
}

// FormatTreePretty печатает дерево элементов с отступами по модулям.
func FormatTreePretty(w io.Writer, tree *ast.Tree, fs *source.FileSet) error {
	for _, a := range tree.InnerAttrs {
		if _, err := fmt.Fprintf(w, "#![%s]\n", a.Path); err != nil {
			return err
		}
	}
	return printItems(w, tree, fs, 0)
}

func printItems(w io.Writer, tree *ast.Tree, fs *source.FileSet, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, it := range tree.Items {
		start, _ := fs.Resolve(it.Span)
		line := fmt.Sprintf("%s%-8s %s", indent, it.Kind, it.Keyword)
		if it.Name != "" {
			line += " " + it.Name
		}
		if attrs := attrPaths(it); len(attrs) > 0 {
			line += " [" + strings.Join(attrs, ", ") + "]"
		}
		if start.Line > 0 {
			line += fmt.Sprintf(" @%d", start.Line)
		}
		if it.IsPendingMod() {
			line += " (pending)"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if it.Kind == ast.ItemMod && !it.Module.Pending() {
			if err := printItems(w, it.Module.Body, fs, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// TreeItems builds the JSON form of tree without encoding it.
func TreeItems(tree *ast.Tree, fs *source.FileSet) []ItemOutput {
	return buildItems(tree, fs, nil)
}

// FormatTreeJSON выводит дерево в JSON.
func FormatTreeJSON(w io.Writer, tree *ast.Tree, fs *source.FileSet) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildItems(tree, fs, nil))
}

func buildItems(tree *ast.Tree, fs *source.FileSet, path ast.ModulePath) []ItemOutput {
	out := make([]ItemOutput, 0, len(tree.Items))
	for _, it := range tree.Items {
		start, _ := fs.Resolve(it.Span)
		o := ItemOutput{
			Kind:    it.Kind.String(),
			Keyword: it.Keyword,
			Name:    it.Name,
			Attrs:   attrPaths(it),
			Public:  it.IsPublic(),
			Line:    start.Line,
		}
		if it.Kind == ast.ItemMod {
			child := path.Child(it.Name)
			o.Path = child.String()
			o.Pending = it.Module.Pending()
			if !o.Pending {
				o.Source = it.Module.Source
				o.Items = buildItems(it.Module.Body, fs, child)
			}
		}
		out = append(out, o)
	}
	return out
}

func attrPaths(it *ast.Item) []string {
	var out []string
	for _, a := range it.Attrs {
		if a.Doc {
			continue
		}
		out = append(out, a.Path)
	}
	return out
}
