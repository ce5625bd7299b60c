package bundle

import (
	"context"
	"fmt"
	"path/filepath"

	"rsbundle/internal/ast"
	"rsbundle/internal/cache"
	"rsbundle/internal/diag"
	"rsbundle/internal/minify"
	"rsbundle/internal/observ"
	"rsbundle/internal/parser"
	"rsbundle/internal/project"
	"rsbundle/internal/render"
	"rsbundle/internal/resolve"
	"rsbundle/internal/source"
	"rsbundle/internal/trace"
	"rsbundle/internal/transform"
)

// maxDiagnostics bounds the bag of one run.
const maxDiagnostics = 256

// DescriptorLoader finds the crate to bundle. project.Loader implements it.
type DescriptorLoader interface {
	Load(root string) (*project.Descriptor, error)
}

// Options are the capabilities of a Bundler. Zero values mean the real
// filesystem, project.Loader{}, no caching and no timings.
type Options struct {
	Loader DescriptorLoader
	FS     resolve.FS
	Tokens parser.TokenSource
	Cache  *cache.DiskCache
	Timer  *observ.Timer
}

// Result is the outcome of a successful run.
type Result struct {
	Output     []byte
	Warnings   []diag.Diagnostic
	Files      []string // inputs in read order
	Missing    []string // module candidates checked and not found
	FileSet    *source.FileSet
	Descriptor *project.Descriptor
	Stats      transform.Stats
	Cached     bool
}

// Failure carries the diagnostics of a failed run next to its error so
// callers can print source context.
type Failure struct {
	Err         error
	Diagnostics []diag.Diagnostic
	FileSet     *source.FileSet
}

func (f *Failure) Error() string { return f.Err.Error() }
func (f *Failure) Unwrap() error { return f.Err }

type Bundler struct {
	opts Options
}

func New(opts Options) *Bundler {
	if opts.Loader == nil {
		opts.Loader = project.Loader{}
	}
	if opts.FS == nil {
		opts.FS = resolve.OSFS{}
	}
	return &Bundler{opts: opts}
}

// Bundle is New(Options{}).Bundle.
func Bundle(ctx context.Context, root string, cfg Config) (Result, error) {
	return New(Options{}).Bundle(ctx, root, cfg)
}

// Bundle runs the whole pipeline for the project at root.
func (b *Bundler) Bundle(ctx context.Context, root string, cfg Config) (Result, error) {
	ctx, span := trace.Start(ctx, trace.ScopeRun, "bundle")
	defer span.End("")

	desc, err := b.opts.Loader.Load(root)
	if err != nil {
		return Result{}, err
	}
	key := cache.Key(desc.EntryFile, desc.BinName, cfg.Fingerprint())
	if res, ok := b.lookup(ctx, key, desc); ok {
		return res, nil
	}

	bag := diag.NewBag(maxDiagnostics)
	res, err := b.run(ctx, desc, cfg, bag)
	if err != nil {
		bag.Sort()
		return Result{}, &Failure{Err: err, Diagnostics: bag.Errors(), FileSet: res.FileSet}
	}
	if b.opts.Cache != nil && len(res.Warnings) == 0 {
		b.store(ctx, key, res)
	}
	return res, nil
}

func (b *Bundler) run(ctx context.Context, desc *project.Descriptor, cfg Config, bag *diag.Bag) (Result, error) {
	tcfg := cfg.transform()
	files := source.NewFileSetWithBase(desc.Root)
	res := Result{FileSet: files, Descriptor: desc}
	r := resolve.New(resolve.Options{
		FS:       b.opts.FS,
		Files:    files,
		Reporter: diag.BagReporter{Bag: bag},
		Tokens:   b.opts.Tokens,
		Skip:     func(it *ast.Item) bool { return transform.Pruned(it, tcfg) },
	})

	var tree, lib *ast.Tree
	err := b.stage(ctx, "parse", func(context.Context) (err error) {
		if tree, err = r.Parse(desc.EntryFile); err != nil {
			return err
		}
		if cfg.ExpandModules && desc.InlinesLibrary() {
			lib, err = r.Parse(desc.LibFile)
		}
		return err
	})
	if err != nil {
		return res, err
	}

	if cfg.ExpandModules {
		err = b.stage(ctx, "resolve", func(ctx context.Context) error {
			if _, err := r.Resolve(ctx, tree, filepath.Dir(desc.EntryFile)); err != nil {
				return err
			}
			if lib == nil {
				return nil
			}
			if _, err := r.Resolve(ctx, lib, filepath.Dir(desc.LibFile)); err != nil {
				return fmt.Errorf("library %s: %w", desc.CrateName, err)
			}
			merged, _, err := r.InlineLibrary(tree, lib, desc.CrateName)
			if err != nil {
				return err
			}
			tree = merged
			return nil
		})
		if err != nil {
			return res, err
		}
	}

	if err := b.finish(ctx, tree, cfg, bag, &res); err != nil {
		return res, err
	}
	res.Files = r.Files()
	for _, p := range r.Candidates() {
		if !p.Exists {
			res.Missing = append(res.Missing, p.Path)
		}
	}
	return res, nil
}

// finish runs the passes after resolution: transform, render and minify.
func (b *Bundler) finish(ctx context.Context, tree *ast.Tree, cfg Config, bag *diag.Bag, res *Result) error {
	_ = b.stage(ctx, "transform", func(context.Context) error {
		tree, res.Stats = transform.Run(tree, cfg.transform())
		return nil
	})

	var text []byte
	_ = b.stage(ctx, "render", func(context.Context) error {
		text = render.Tree(tree)
		return nil
	})

	err := b.stage(ctx, "minify", func(context.Context) (err error) {
		text, err = minify.Compress(text, cfg.Minify)
		return err
	})
	if err != nil {
		return err
	}

	bag.Sort()
	res.Output = text
	res.Warnings = bag.Warnings()
	return nil
}

// stage runs fn inside a trace span and a timer phase named after the
// pipeline stage.
func (b *Bundler) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, span := trace.Start(ctx, trace.ScopeStage, name)
	idx := b.opts.Timer.Begin(name)
	err := fn(ctx)
	if err != nil {
		b.opts.Timer.End(idx, "error")
		span.End("error")
		return err
	}
	b.opts.Timer.End(idx, "")
	span.End("")
	return nil
}

func (b *Bundler) lookup(ctx context.Context, key project.Digest, desc *project.Descriptor) (Result, bool) {
	if b.opts.Cache == nil {
		return Result{}, false
	}
	entry, ok, err := b.opts.Cache.Get(key)
	if err != nil || !ok {
		return Result{}, false
	}
	if fresh, err := cache.Fresh(ctx, entry); err != nil || !fresh {
		return Result{}, false
	}
	trace.Point(trace.FromContext(ctx), trace.ScopeStage, "cache", "hit", trace.CurrentSpan(ctx))
	return Result{
		Output:     entry.Output,
		Files:      entry.Files,
		Missing:    entry.Absent,
		FileSet:    source.NewFileSetWithBase(desc.Root),
		Descriptor: desc,
		Cached:     true,
	}, true
}

// store records the output; failures only cost the next run a rebuild.
// Cargo.toml is a dependency: a `[lib] path` edit must invalidate the entry.
func (b *Bundler) store(ctx context.Context, key project.Digest, res Result) {
	entry := &cache.Entry{Output: res.Output, Absent: res.Missing}
	manifest := res.Descriptor.Manifest
	hashes, err := cache.HashFiles(ctx, []string{manifest}, 1)
	if err != nil {
		return
	}
	entry.Deps, entry.DepHashes = []string{manifest}, hashes
	for _, path := range res.Files {
		id, ok := res.FileSet.GetLatest(path)
		if !ok {
			return
		}
		entry.Files = append(entry.Files, path)
		entry.Hashes = append(entry.Hashes, project.Digest(res.FileSet.Get(id).Hash))
	}
	_ = b.opts.Cache.Put(key, entry)
}
