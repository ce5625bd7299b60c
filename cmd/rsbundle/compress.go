package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rsbundle/internal/bundle"
	"rsbundle/internal/config"
	"rsbundle/internal/project"
)

func newCompressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compress [flags] <file.rs|directory>",
		Short: "Strip and compress standalone Rust files without a Cargo package",
		Long: `Compress runs the strip and compression passes over one .rs file, or over
every .rs file under a directory, concatenated in path order. Module
declarations are left as they are; use bundle to inline them.`,
		Args: cobra.ExactArgs(1),
		RunE: runCompress,
	}
	fs := cmd.Flags()
	fs.StringP("output", "o", "", "write the result to this file instead of stdout")
	fs.Bool("keep-tests", false, "keep #[test] items and cfg(test) modules")
	fs.Bool("keep-docs", false, "keep documentation comments")
	fs.StringP("minify", "m", "", "compression level (none|single-line|aggressive)")
	fs.Bool("pretty", false, "shorthand for --minify=none")
	return cmd
}

func runCompress(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := config.ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return err
	}
	cfg, err := applyFlags(cmd, cfg)
	if err != nil {
		return err
	}
	printer, err := newDiagPrinter(cmd)
	if err != nil {
		return err
	}
	timer, err := newTimer(cmd)
	if err != nil {
		return err
	}

	st, err := os.Stat(args[0])
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	paths := []string{args[0]}
	if st.IsDir() {
		if paths, err = project.SourceFiles(args[0]); err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no .rs files under %s", args[0])
		}
	}

	b := bundle.New(bundle.Options{Timer: timer})
	var out bytes.Buffer
	failed := 0
	for _, path := range paths {
		res, err := b.Compress(cmd.Context(), path, cfg.Bundle())
		if err != nil {
			// каждый файл сообщает о своих ошибках, вывод не пишем
			if rerr := printer.report(err); !errors.Is(rerr, errReported) {
				return rerr
			}
			failed++
			continue
		}
		if err := printer.print(res.Warnings, res.FileSet); err != nil {
			return err
		}
		out.Write(res.Output)
	}
	if failed > 0 {
		if st.IsDir() {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %d of %d file(s) failed, nothing written\n", errorLabel(), failed, len(paths))
		}
		return errReported
	}

	if err := emitOutput(cmd.OutOrStdout(), cfg.Output, out.Bytes()); err != nil {
		return err
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet && cfg.Output != "" && cfg.Output != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "compressed %d file(s) into %s, %d bytes\n", len(paths), cfg.Output, out.Len())
	}
	return printTimings(cmd, cmd.ErrOrStderr(), timer)
}
