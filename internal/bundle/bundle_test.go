package bundle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"rsbundle/internal/cache"
	"rsbundle/internal/minify"
	"rsbundle/internal/observ"
	"rsbundle/internal/parser"
	"rsbundle/internal/project"
	"rsbundle/internal/resolve"
	"rsbundle/internal/trace"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func demoProject(t *testing.T) string {
	return writeProject(t, map[string]string{
		"Cargo.toml": "[package]\nname = \"demo\"\nversion = \"0.1.0\"\n",
		"src/main.rs": `use demo::greet;
mod util;

fn main() {
    greet();
    util::hi();
}
`,
		"src/util.rs": `/// says hi
pub fn hi() {}

#[cfg(test)]
mod tests;
`,
		"src/lib.rs": "pub fn greet() {}\n",
	})
}

func TestBundleInlinesModulesAndLibrary(t *testing.T) {
	root := demoProject(t)

	res, err := Bundle(context.Background(), root, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, "pub fn greet(){}mod util{pub fn hi(){}}fn main(){greet();util::hi();}\n", string(res.Output))
	require.Empty(t, res.Warnings)
	require.Equal(t, []string{
		filepath.Join(res.Descriptor.Root, "src", "main.rs"),
		filepath.Join(res.Descriptor.Root, "src", "lib.rs"),
		filepath.Join(res.Descriptor.Root, "src", "util.rs"),
	}, res.Files)
	require.Equal(t, 1, res.Stats.Cfg)
	require.False(t, res.Cached)
}

func TestBundleWithoutExpansion(t *testing.T) {
	root := demoProject(t)
	cfg := Config{StripDocs: true, Minify: minify.None}

	res, err := Bundle(context.Background(), root, cfg)
	require.NoError(t, err)
	out := string(res.Output)
	require.Contains(t, out, "use demo::greet;")
	require.Contains(t, out, "mod util;")
	require.NotContains(t, out, "pub fn hi")
	require.Len(t, res.Files, 1)
}

func TestBundleKeepsDocsWhenAsked(t *testing.T) {
	root := demoProject(t)
	cfg := DefaultConfig()
	cfg.StripDocs = false

	res, err := Bundle(context.Background(), root, cfg)
	require.NoError(t, err)
	require.Contains(t, string(res.Output), `#[doc=" says hi"]pub fn hi(){}`)
}

func TestBundleMissingModule(t *testing.T) {
	root := writeProject(t, map[string]string{
		"Cargo.toml":  "[package]\nname = \"demo\"\n",
		"src/main.rs": "mod gone;\nfn main() {}\n",
	})

	_, err := Bundle(context.Background(), root, DefaultConfig())
	require.Error(t, err)
	require.True(t, errors.Is(err, resolve.ErrFileNotFound))

	var failure *Failure
	require.True(t, errors.As(err, &failure))
	require.NotEmpty(t, failure.Diagnostics)
	require.NotNil(t, failure.FileSet)
}

func TestBundleParseError(t *testing.T) {
	root := writeProject(t, map[string]string{
		"Cargo.toml":  "[package]\nname = \"demo\"\n",
		"src/main.rs": "fn main( {}\n",
	})

	_, err := Bundle(context.Background(), root, DefaultConfig())
	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	require.Contains(t, perr.Path, "main.rs")
}

func TestBundleConfigurationError(t *testing.T) {
	root := writeProject(t, map[string]string{
		"Cargo.toml":   "[package]\nname = \"demo\"\n",
		"src/bin/a.rs": "fn main() {}\n",
		"src/bin/b.rs": "fn main() {}\n",
	})

	_, err := Bundle(context.Background(), root, DefaultConfig())
	require.True(t, errors.Is(err, project.ErrMultipleBinaries))

	res, err := New(Options{Loader: project.Loader{Bin: "b"}}).Bundle(context.Background(), root, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, "fn main(){}\n", string(res.Output))
}

func TestBundleCancelled(t *testing.T) {
	root := demoProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Bundle(ctx, root, DefaultConfig())
	require.ErrorIs(t, err, context.Canceled)
}

func TestBundleUsesDiskCache(t *testing.T) {
	root := demoProject(t)
	dc, err := cache.OpenDiskCache(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	tokens, err := cache.NewTokenCache(16)
	require.NoError(t, err)
	b := New(Options{Cache: dc, Tokens: tokens})
	ctx := context.Background()

	first, err := b.Bundle(ctx, root, DefaultConfig())
	require.NoError(t, err)
	require.False(t, first.Cached)

	second, err := b.Bundle(ctx, root, DefaultConfig())
	require.NoError(t, err)
	require.True(t, second.Cached)
	require.Equal(t, first.Output, second.Output)

	util := filepath.Join(root, "src", "util.rs")
	require.NoError(t, os.WriteFile(util, []byte("pub fn hi() { 1; }\n"), 0o600))
	third, err := b.Bundle(ctx, root, DefaultConfig())
	require.NoError(t, err)
	require.False(t, third.Cached)
	require.Contains(t, string(third.Output), "pub fn hi(){1;}")
	require.Positive(t, tokens.Stats().Hits)
}

func TestBundleCacheSeesNewCandidates(t *testing.T) {
	root := writeProject(t, map[string]string{
		"Cargo.toml":  "[package]\nname = \"demo\"\n",
		"src/main.rs": "mod foo;\nfn main() { foo::f(); }\n",
		"src/foo.rs":  "pub fn f() {}\n",
	})
	dc, err := cache.OpenDiskCache(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	b := New(Options{Cache: dc})
	ctx := context.Background()

	first, err := b.Bundle(ctx, root, DefaultConfig())
	require.NoError(t, err)
	require.Contains(t, first.Missing, filepath.Join(first.Descriptor.Root, "src", "foo", "mod.rs"))
	second, err := b.Bundle(ctx, root, DefaultConfig())
	require.NoError(t, err)
	require.True(t, second.Cached)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "foo"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "foo", "mod.rs"), []byte("pub fn f() {}\n"), 0o600))
	_, err = b.Bundle(ctx, root, DefaultConfig())
	require.ErrorIs(t, err, resolve.ErrAmbiguousCandidates)
}

func TestBundleCacheSeesManifestEdits(t *testing.T) {
	root := writeProject(t, map[string]string{
		"Cargo.toml":  "[package]\nname = \"demo\"\n",
		"src/main.rs": "use demo::greet;\nfn main() { greet(); }\n",
		"src/lib.rs":  "pub fn greet() {}\n",
		"src/alt.rs":  "pub fn greet() { 2; }\n",
	})
	dc, err := cache.OpenDiskCache(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	b := New(Options{Cache: dc})
	ctx := context.Background()

	_, err = b.Bundle(ctx, root, DefaultConfig())
	require.NoError(t, err)
	manifest := "[package]\nname = \"demo\"\n\n[lib]\npath = \"src/alt.rs\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "Cargo.toml"), []byte(manifest), 0o600))

	res, err := b.Bundle(ctx, root, DefaultConfig())
	require.NoError(t, err)
	require.False(t, res.Cached)
	require.Contains(t, string(res.Output), "pub fn greet(){2;}")
}

func TestBundleDuplicateModuleAcrossCrates(t *testing.T) {
	root := writeProject(t, map[string]string{
		"Cargo.toml":  "[package]\nname = \"demo\"\n",
		"src/main.rs": "mod util;\nuse demo::greet;\nfn main() { greet(); util::bin_fn(); }\n",
		"src/lib.rs":  "pub mod util;\npub fn greet() {}\n",
		"src/util.rs": "pub fn bin_fn() {}\n",
	})

	_, err := Bundle(context.Background(), root, DefaultConfig())
	require.ErrorIs(t, err, resolve.ErrDuplicateModule)
	var failure *Failure
	require.True(t, errors.As(err, &failure))
	require.NotEmpty(t, failure.Diagnostics)
}

func TestCompressStandaloneFile(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"solution.rs": `/// entry
mod helpers;

fn main() {
    let s = "a   b";
    println!("{}", s);
}

#[cfg(test)]
mod tests {
    #[test]
    fn t() {}
}
`,
	})

	res, err := New(Options{}).Compress(context.Background(), filepath.Join(dir, "solution.rs"), DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, "mod helpers;fn main(){let s=\"a   b\";println!(\"{}\",s);}\n", string(res.Output))
	require.NotContains(t, string(res.Output), "tests")
	require.Len(t, res.Files, 1)
}

func TestCompressReportsParseErrors(t *testing.T) {
	dir := writeProject(t, map[string]string{"broken.rs": "fn main( {}\n"})

	_, err := New(Options{}).Compress(context.Background(), filepath.Join(dir, "broken.rs"), DefaultConfig())
	var failure *Failure
	require.True(t, errors.As(err, &failure))
	var perr *parser.Error
	require.True(t, errors.As(err, &perr))
	require.NotEmpty(t, failure.Diagnostics)
}

func TestBundleTracesStages(t *testing.T) {
	root := demoProject(t)
	ring := trace.NewRingTracer(64, trace.LevelStage)
	ctx := trace.WithTracer(context.Background(), ring)

	_, err := Bundle(ctx, root, DefaultConfig())
	require.NoError(t, err)

	var stages []string
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanBegin && ev.Scope == trace.ScopeStage {
			stages = append(stages, ev.Name)
		}
	}
	require.Equal(t, []string{"parse", "resolve", "transform", "render", "minify"}, stages)
}

func TestBundleRecordsTimings(t *testing.T) {
	root := demoProject(t)
	timer := observ.NewTimer()
	cfg := DefaultConfig()
	cfg.ExpandModules = false

	_, err := New(Options{Timer: timer}).Bundle(context.Background(), root, cfg)
	require.NoError(t, err)

	var names []string
	for _, p := range timer.Report().Phases {
		names = append(names, p.Name)
	}
	require.Equal(t, []string{"parse", "transform", "render", "minify"}, names)
}

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.rs")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	require.NoError(t, WriteAtomic(path, []byte("new"), 0o644))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "new", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.Error(t, WriteAtomic(filepath.Join(dir, "missing", "x.rs"), []byte("x"), 0o644))
}
