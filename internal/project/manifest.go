package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is the part of Cargo.toml the bundler reads.
type Manifest struct {
	Package packageSection  `toml:"package"`
	Lib     *targetSection  `toml:"lib"`
	Bins    []targetSection `toml:"bin"`
}

type packageSection struct {
	Name     string          `toml:"name"`
	Version  manifestVersion `toml:"version"`
	Autobins *bool           `toml:"autobins"`
	Autolib  *bool           `toml:"autolib"`
}

// manifestVersion accepts both `version = "1.2.3"` and the workspace form
// `version.workspace = true`, which is reported as "workspace".
type manifestVersion string

func (v *manifestVersion) UnmarshalTOML(data any) error {
	switch x := data.(type) {
	case string:
		*v = manifestVersion(strings.TrimSpace(x))
	case map[string]any:
		if inherit, _ := x["workspace"].(bool); inherit {
			*v = "workspace"
		}
	default:
		return fmt.Errorf("version: unexpected %T", data)
	}
	return nil
}

type targetSection struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// LoadManifest parses a Cargo.toml file.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigError{Kind: MissingManifest, Path: filepath.Dir(path), Err: err}
		}
		return nil, &ConfigError{Kind: BadManifest, Path: path, Msg: "failed to parse TOML", Err: err}
	}
	if !meta.IsDefined("package") {
		return nil, &ConfigError{Kind: BadManifest, Path: path, Msg: "missing [package]"}
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(m.Package.Name) == "" {
		return nil, &ConfigError{Kind: BadManifest, Path: path, Msg: "missing [package].name"}
	}
	for i, b := range m.Bins {
		if strings.TrimSpace(b.Name) == "" {
			return nil, &ConfigError{Kind: BadManifest, Path: path, Msg: "[[bin]] entry without a name"}
		}
		m.Bins[i].Name = strings.TrimSpace(b.Name)
	}
	return &m, nil
}

// Target is one compilable crate root of the package.
type Target struct {
	Name string
	Path string // absolute
}

// CrateIdent turns a package or target name into the identifier used in
// paths: `my-lib` is referenced as `my_lib`.
func CrateIdent(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// targets applies Cargo's target inference to the manifest.
func (m *Manifest) targets(root string) (lib *Target, bins []Target) {
	src := filepath.Join(root, "src")

	if m.Lib != nil {
		lib = &Target{Name: CrateIdent(m.Package.Name), Path: filepath.Join(src, "lib.rs")}
		if m.Lib.Name != "" {
			lib.Name = CrateIdent(m.Lib.Name)
		}
		if m.Lib.Path != "" {
			lib.Path = filepath.Join(root, filepath.FromSlash(m.Lib.Path))
		}
	} else if enabled(m.Package.Autolib) && isFile(filepath.Join(src, "lib.rs")) {
		lib = &Target{Name: CrateIdent(m.Package.Name), Path: filepath.Join(src, "lib.rs")}
	}

	seen := make(map[string]bool)
	add := func(t Target) {
		if seen[t.Name] {
			return
		}
		seen[t.Name] = true
		bins = append(bins, t)
	}
	for _, b := range m.Bins {
		add(Target{Name: b.Name, Path: m.binPath(root, b)})
	}
	if enabled(m.Package.Autobins) {
		if main := filepath.Join(src, "main.rs"); isFile(main) {
			add(Target{Name: m.Package.Name, Path: main})
		}
		for _, t := range discoverBins(filepath.Join(src, "bin")) {
			add(t)
		}
	}
	sort.SliceStable(bins, func(i, j int) bool { return bins[i].Name < bins[j].Name })
	return lib, bins
}

func (m *Manifest) binPath(root string, b targetSection) string {
	if b.Path != "" {
		return filepath.Join(root, filepath.FromSlash(b.Path))
	}
	src := filepath.Join(root, "src")
	if b.Name == m.Package.Name {
		if main := filepath.Join(src, "main.rs"); isFile(main) {
			return main
		}
	}
	if dirMain := filepath.Join(src, "bin", b.Name, "main.rs"); isFile(dirMain) {
		return dirMain
	}
	return filepath.Join(src, "bin", b.Name+".rs")
}

// discoverBins finds src/bin/*.rs and src/bin/*/main.rs.
func discoverBins(dir string) []Target {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []Target
	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir():
			if main := filepath.Join(dir, name, "main.rs"); isFile(main) {
				out = append(out, Target{Name: name, Path: main})
			}
		case strings.HasSuffix(name, ".rs"):
			out = append(out, Target{Name: strings.TrimSuffix(name, ".rs"), Path: filepath.Join(dir, name)})
		}
	}
	return out
}

func enabled(flag *bool) bool { return flag == nil || *flag }

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
