package project

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Descriptor is everything the bundler needs to know about a package.
type Descriptor struct {
	Root      string
	Manifest  string
	Package   string // [package].name как есть
	Version   string
	CrateName string // library crate identifier, e.g. my_lib
	EntryFile string // crate root to bundle
	BinName   string // selected binary, empty for library-only bundles
	HasLib    bool
	HasBin    bool
	LibFile   string
	Bins      []Target
}

// InlinesLibrary reports whether the entry is a binary that may pull in
// the package's own library crate.
func (d *Descriptor) InlinesLibrary() bool {
	return d.HasBin && d.HasLib && d.EntryFile != d.LibFile
}

// Loader reads Cargo.toml from a project root. Bin selects a binary when the
// package has several.
type Loader struct {
	Bin string
}

// Load implements the bundler's descriptor loading.
func (l Loader) Load(root string) (*Descriptor, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	manifestPath := filepath.Join(abs, ManifestName)
	m, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	lib, bins := m.targets(abs)

	d := &Descriptor{
		Root:      abs,
		Manifest:  manifestPath,
		Package:   m.Package.Name,
		Version:   string(m.Package.Version),
		CrateName: CrateIdent(m.Package.Name),
		HasLib:    lib != nil,
		HasBin:    len(bins) > 0,
		Bins:      bins,
	}
	if lib != nil {
		d.CrateName = lib.Name
		d.LibFile = lib.Path
	}

	switch {
	case l.Bin != "":
		for _, b := range bins {
			if b.Name == l.Bin {
				d.BinName, d.EntryFile = b.Name, b.Path
				return d, nil
			}
		}
		return nil, &ConfigError{Kind: UnknownBinary, Path: manifestPath,
			Msg: fmt.Sprintf("no binary named %q (available: %s)", l.Bin, targetNames(bins))}
	case len(bins) == 1:
		d.BinName, d.EntryFile = bins[0].Name, bins[0].Path
	case len(bins) > 1:
		return nil, &ConfigError{Kind: MultipleBinaries, Path: manifestPath,
			Msg: fmt.Sprintf("several binaries (%s); select one with --bin", targetNames(bins))}
	case lib != nil:
		d.EntryFile = lib.Path
	default:
		return nil, &ConfigError{Kind: NoTarget, Path: manifestPath, Msg: "package has neither src/main.rs, [[bin]] nor a library"}
	}
	return d, nil
}

func targetNames(ts []Target) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}
