// Package main implements the rsbundle CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"rsbundle/internal/version"
)

// errReported marks failures whose diagnostics are already on stderr.
var errReported = errors.New("bundle failed")

// newRootCmd собирает дерево команд; тесты строят его заново на каждый запуск.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rsbundle",
		Short:         "Bundle a multi-file Rust crate into one source file",
		Long:          `rsbundle inlines the modules of a Cargo package (and its own library crate) into a single self-contained .rs file`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupColor(cmd); err != nil {
				return err
			}
			if err := setupTracing(cmd); err != nil {
				return err
			}
			return setupProfiling(cmd)
		},
	}

	rootCmd.AddCommand(newBundleCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newCompressCmd())
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newTokenizeCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.String("timings-format", "text", "timings output format (text|json)")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	pf.String("diag-format", "pretty", "diagnostics format (pretty|json)")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|run|stage|detail)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")

	return rootCmd
}

// main builds the command tree and executes it. Errors already rendered as
// diagnostics are not printed a second time.
func main() {
	rootCmd := newRootCmd()
	err := rootCmd.Execute()
	stopProfiling()
	closeTracing()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorLabel(), err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
