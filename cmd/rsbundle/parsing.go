package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rsbundle/internal/ast"
	"rsbundle/internal/diag"
	"rsbundle/internal/diagfmt"
	"rsbundle/internal/project"
	"rsbundle/internal/resolve"
	"rsbundle/internal/source"
	"rsbundle/internal/transform"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [flags] <file.rs|directory>",
		Short: "Parse Rust sources and print their item trees",
		Long: `Parse prints the item tree of one file, or of every .rs file under a
directory. With --resolve a file is treated as a crate root and its external
modules are inlined first.`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	cmd.Flags().Bool("resolve", false, "inline `mod name;` declarations before printing")
	return cmd
}

type parsedFile struct {
	path string
	tree *ast.Tree
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	withResolve, _ := cmd.Flags().GetBool("resolve")
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	printer, err := newDiagPrinter(cmd)
	if err != nil {
		return err
	}

	st, err := os.Stat(args[0])
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	paths := []string{args[0]}
	if st.IsDir() {
		if withResolve {
			return fmt.Errorf("--resolve needs a crate root file, not a directory")
		}
		if paths, err = project.SourceFiles(args[0]); err != nil {
			return err
		}
	}

	base, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if !st.IsDir() {
		base = filepath.Dir(base)
	}
	fs := source.NewFileSetWithBase(base)
	bag := diag.NewBag(max(printer.max, 1))
	r := resolve.New(resolve.Options{
		Files:    fs,
		Reporter: diag.BagReporter{Bag: bag},
		// cfg(test) модули не читаем, как и при сборке
		Skip: func(it *ast.Item) bool { return transform.Pruned(it, transform.Config{}) },
	})

	var files []parsedFile
	var firstErr error
	for _, path := range paths {
		var tree *ast.Tree
		if withResolve {
			tree, err = r.LoadCrate(cmd.Context(), path)
		} else {
			tree, err = r.Parse(path)
		}
		if err != nil {
			// один сломанный файл не прячет остальные
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		files = append(files, parsedFile{path: fs.DisplayPath(tree.File), tree: tree})
	}

	bag.Sort()
	if err := printer.print(bag.Items(), fs); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		if len(files) == 1 && !st.IsDir() {
			if err := diagfmt.FormatTreeJSON(out, files[0].tree, fs); err != nil {
				return err
			}
			break
		}
		byPath := make(map[string][]diagfmt.ItemOutput, len(files))
		for _, f := range files {
			byPath[f.path] = diagfmt.TreeItems(f.tree, fs)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(byPath); err != nil {
			return err
		}
	default:
		for idx, f := range files {
			if st.IsDir() && !quiet {
				fmt.Fprintf(out, "== %s ==\n", f.path)
			}
			if err := diagfmt.FormatTreePretty(out, f.tree, fs); err != nil {
				return err
			}
			if st.IsDir() && !quiet && idx < len(files)-1 {
				fmt.Fprintln(out)
			}
		}
	}

	if firstErr != nil {
		if bag.HasErrors() {
			return errReported
		}
		return firstErr
	}
	return nil
}
