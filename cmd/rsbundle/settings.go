package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"rsbundle/internal/config"
	"rsbundle/internal/minify"
	"rsbundle/internal/project"
)

// resolveRoot finds the Cargo package for the optional path argument by
// walking up to the nearest Cargo.toml.
func resolveRoot(args []string) (string, error) {
	start := "."
	if len(args) > 0 {
		start = args[0]
	}
	root, ok, err := project.FindProjectRoot(start)
	if err != nil {
		return "", err
	}
	if !ok {
		abs, _ := filepath.Abs(start)
		return "", &project.ConfigError{Kind: project.MissingManifest, Path: abs}
	}
	return root, nil
}

// addPipelineFlags registers the flags shared by bundle and watch.
func addPipelineFlags(fs *pflag.FlagSet) {
	fs.StringP("output", "o", "", "write the bundle to this file instead of stdout")
	fs.String("bin", "", "binary target to bundle when the package has several")
	fs.Bool("keep-tests", false, "keep #[test] items and cfg(test) modules")
	fs.Bool("keep-docs", false, "keep documentation comments")
	fs.Bool("no-expand-modules", false, "leave `mod name;` declarations as they are")
	fs.StringP("minify", "m", "", "compression level (none|single-line|aggressive)")
	fs.Bool("pretty", false, "shorthand for --minify=none")
	fs.Bool("no-cache", false, "bypass the on-disk bundle cache")
}

// loadSettings layers explicitly set flags over config.Load. Flags left at
// their defaults never override rsbundle.toml or the environment.
func loadSettings(cmd *cobra.Command, root string) (config.Config, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return cfg, err
	}
	if !cmd.Flags().Changed("output") && cfg.Output != "" && cfg.Output != "-" && !filepath.IsAbs(cfg.Output) {
		cfg.Output = filepath.Join(root, cfg.Output)
	}
	return applyFlags(cmd, cfg)
}

// applyFlags overrides cfg with every pipeline flag the command defines and
// the user set.
func applyFlags(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	fs := cmd.Flags()
	if fs.Changed("output") {
		cfg.Output, _ = fs.GetString("output")
	}
	if fs.Changed("bin") {
		cfg.Bin, _ = fs.GetString("bin")
	}
	if fs.Changed("keep-tests") {
		keep, _ := fs.GetBool("keep-tests")
		cfg.StripTests = !keep
	}
	if fs.Changed("keep-docs") {
		keep, _ := fs.GetBool("keep-docs")
		cfg.StripDocs = !keep
	}
	if fs.Changed("no-expand-modules") {
		noExpand, _ := fs.GetBool("no-expand-modules")
		cfg.ExpandModules = !noExpand
	}
	if pretty, _ := fs.GetBool("pretty"); fs.Changed("pretty") && pretty {
		if fs.Changed("minify") {
			return cfg, fmt.Errorf("--pretty and --minify are mutually exclusive")
		}
		cfg.Minify = minify.None
	}
	if fs.Changed("minify") {
		raw, _ := fs.GetString("minify")
		level, err := minify.ParseLevel(raw)
		if err != nil {
			return cfg, err
		}
		cfg.Minify = level
	}
	if fs.Changed("no-cache") {
		noCache, _ := fs.GetBool("no-cache")
		cfg.Cache.Enabled = cfg.Cache.Enabled && !noCache
	}

	if f := fs.Lookup("src-dir"); f != nil && f.Changed {
		cfg.Watch.Dir = f.Value.String()
	}
	if f := fs.Lookup("debounce"); f != nil && f.Changed {
		d, err := fs.GetDuration("debounce")
		if err != nil {
			return cfg, err
		}
		cfg.Watch.Debounce = config.Duration{Duration: d}
	}
	return cfg, cfg.Validate()
}
