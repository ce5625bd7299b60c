package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rsbundle/internal/bundle"
	"rsbundle/internal/diag"
	"rsbundle/internal/diagfmt"
	"rsbundle/internal/source"
)

type diagPrinter struct {
	out    io.Writer
	format string
	max    int
}

func newDiagPrinter(cmd *cobra.Command) (diagPrinter, error) {
	pf := cmd.Root().PersistentFlags()
	maxDiagnostics, err := pf.GetInt("max-diagnostics")
	if err != nil {
		return diagPrinter{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	format, err := pf.GetString("diag-format")
	if err != nil {
		return diagPrinter{}, fmt.Errorf("failed to get diag-format flag: %w", err)
	}
	switch format {
	case "pretty", "json":
	default:
		return diagPrinter{}, fmt.Errorf("unknown diagnostics format %q (expected pretty|json)", format)
	}
	return diagPrinter{out: cmd.ErrOrStderr(), format: format, max: maxDiagnostics}, nil
}

func (p diagPrinter) print(items []diag.Diagnostic, fs *source.FileSet) error {
	if len(items) == 0 {
		return nil
	}
	if p.max > 0 && len(items) > p.max {
		items = items[:p.max]
	}
	if p.format == "json" {
		return diagfmt.JSON(p.out, items, fs, diagfmt.JSONOpts{IncludePositions: true, IncludeNotes: true})
	}
	diagfmt.PrettyList(p.out, items, fs, diagfmt.PrettyOpts{
		Color:     useColor(),
		Context:   1,
		ShowNotes: true,
	})
	return nil
}

// report prints the diagnostics of a failed bundle. Errors without source
// positions are returned for main to print.
func (p diagPrinter) report(err error) error {
	var failure *bundle.Failure
	if !errors.As(err, &failure) || len(failure.Diagnostics) == 0 {
		return err
	}
	if perr := p.print(failure.Diagnostics, failure.FileSet); perr != nil {
		return perr
	}
	return errReported
}
