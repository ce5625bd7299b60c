package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rsbundle/internal/diag"
	"rsbundle/internal/diagfmt"
	"rsbundle/internal/lexer"
	"rsbundle/internal/source"
)

func newTokenizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenize [flags] file.rs",
		Short: "Tokenize a Rust source file",
		Long:  `Tokenize prints the token stream of one file with its leading trivia, as the bundler sees it`,
		Args:  cobra.ExactArgs(1),
		RunE:  runTokenize,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	printer, err := newDiagPrinter(cmd)
	if err != nil {
		return err
	}

	fs := source.NewFileSet()
	id, err := fs.Load(args[0])
	if err != nil {
		return err
	}
	bag := diag.NewBag(max(printer.max, 1))
	toks := lexer.Tokenize(fs.Get(id), lexer.Options{Reporter: diag.BagReporter{Bag: bag}})

	// Выводим диагностику в stderr, если есть
	bag.Sort()
	if err := printer.print(bag.Items(), fs); err != nil {
		return err
	}

	switch format {
	case "pretty":
		return diagfmt.FormatTokensPretty(cmd.OutOrStdout(), toks, fs)
	case "json":
		return diagfmt.FormatTokensJSON(cmd.OutOrStdout(), toks, fs)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
