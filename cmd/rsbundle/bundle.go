package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"rsbundle/internal/bundle"
	"rsbundle/internal/cache"
	"rsbundle/internal/config"
	"rsbundle/internal/project"
)

func newBundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle [flags] [path]",
		Short: "Bundle a Cargo package into one source file",
		Long: `Bundle reads Cargo.toml from the nearest package root, inlines every
external module and the package's own library, strips tests and docs and
compresses the result.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBundle,
	}
	addPipelineFlags(cmd.Flags())
	return cmd
}

func runBundle(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}
	cfg, err := loadSettings(cmd, root)
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

	opts := bundle.Options{Loader: project.Loader{Bin: cfg.Bin}, Timer: timer}
	if opts.Cache, err = openCache(cfg); err != nil {
		return err
	}

	res, err := bundle.New(opts).Bundle(cmd.Context(), root, cfg.Bundle())
	if err != nil {
		return printer.report(err)
	}
	if err := printer.print(res.Warnings, res.FileSet); err != nil {
		return err
	}
	if err := emitOutput(cmd.OutOrStdout(), cfg.Output, res.Output); err != nil {
		return err
	}

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet && cfg.Output != "" && cfg.Output != "-" {
		note := ""
		if res.Cached {
			note = " (cached)"
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "bundled %d file(s) into %s, %d bytes%s\n",
			len(res.Files), cfg.Output, len(res.Output), note)
	}
	return printTimings(cmd, cmd.ErrOrStderr(), timer)
}

// openCache opens the disk cache when it is enabled in the configuration.
func openCache(cfg config.Config) (*cache.DiskCache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return cache.OpenDiskCache(dir)
}

// emitOutput writes the bundle to path, or to stdout when path is empty or -.
func emitOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	return bundle.WriteAtomic(abs, data, 0o644)
}
