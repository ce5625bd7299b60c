package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rsbundle/internal/bundle"
	"rsbundle/internal/project"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info [flags] [path]",
		Short: "Show the targets rsbundle sees in a Cargo package",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInfo,
	}
	cmd.Flags().String("bin", "", "binary target to select")
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [flags] [path]",
		Short: "Check that a package bundles without writing anything",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runValidate,
	}
	addPipelineFlags(cmd.Flags())
	return cmd
}

type targetInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type projectInfo struct {
	Name    string       `json:"name"`
	Version string       `json:"version,omitempty"`
	Root    string       `json:"root"`
	Library *targetInfo  `json:"library,omitempty"`
	Bins    []targetInfo `json:"binaries"`
	Entry   string       `json:"entry"`
	Binary  string       `json:"binary,omitempty"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}
	bin, _ := cmd.Flags().GetString("bin")
	format, _ := cmd.Flags().GetString("format")
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	d, err := project.Loader{Bin: bin}.Load(root)
	if err != nil {
		return err
	}
	info := describe(d)
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	printInfo(cmd.OutOrStdout(), info)
	return nil
}

func describe(d *project.Descriptor) projectInfo {
	rel := func(p string) string { return displayDir(d.Root, p) }
	info := projectInfo{
		Name:    d.Package,
		Version: d.Version,
		Root:    d.Root,
		Bins:    make([]targetInfo, 0, len(d.Bins)),
		Entry:   rel(d.EntryFile),
		Binary:  d.BinName,
	}
	if d.HasLib {
		info.Library = &targetInfo{Name: d.CrateName, Path: rel(d.LibFile)}
	}
	for _, b := range d.Bins {
		info.Bins = append(info.Bins, targetInfo{Name: b.Name, Path: rel(b.Path)})
	}
	return info
}

func printInfo(out io.Writer, info projectInfo) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintln(out, bold("Project Information"))
	fmt.Fprintf(out, "  Name:    %s\n", info.Name)
	fmt.Fprintf(out, "  Version: %s\n", valueOrUnknown(info.Version))
	fmt.Fprintf(out, "  Root:    %s\n", filepath.ToSlash(info.Root))
	fmt.Fprintln(out, "  Targets:")
	if info.Library != nil {
		fmt.Fprintf(out, "    lib  %-16s %s\n", info.Library.Name, info.Library.Path)
	}
	for _, b := range info.Bins {
		fmt.Fprintf(out, "    bin  %-16s %s\n", b.Name, b.Path)
	}
	if info.Binary != "" {
		fmt.Fprintf(out, "  Binary:  %s\n", info.Binary)
	}
	fmt.Fprintf(out, "  Entry:   %s\n", info.Entry)
}

func runValidate(cmd *cobra.Command, args []string) error {
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
	res, err := bundle.New(bundle.Options{Loader: project.Loader{Bin: cfg.Bin}}).Bundle(cmd.Context(), root, cfg.Bundle())
	if err != nil {
		return printer.report(err)
	}
	if err := printer.print(res.Warnings, res.FileSet); err != nil {
		return err
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet {
		st := res.Stats
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d file(s) read, %d item(s) pruned, %d warning(s)\n",
			color.GreenString("Project validation successful"), len(res.Files), st.Tests+st.Cfg+st.Modules, len(res.Warnings))
	}
	return nil
}
