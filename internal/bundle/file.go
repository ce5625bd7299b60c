package bundle

import (
	"context"
	"path/filepath"

	"rsbundle/internal/ast"
	"rsbundle/internal/diag"
	"rsbundle/internal/resolve"
	"rsbundle/internal/source"
	"rsbundle/internal/trace"
)

// Compress strips and compresses one standalone source file without a
// Cargo project. `mod name;` declarations are kept as written since there is
// no crate to resolve them in; cfg.ExpandModules is ignored.
func (b *Bundler) Compress(ctx context.Context, path string, cfg Config) (Result, error) {
	ctx, span := trace.Start(ctx, trace.ScopeRun, "compress")
	defer span.End("")

	abs, err := filepath.Abs(path)
	if err != nil {
		return Result{}, err
	}
	files := source.NewFileSetWithBase(filepath.Dir(abs))
	bag := diag.NewBag(maxDiagnostics)
	res := Result{FileSet: files}
	r := resolve.New(resolve.Options{
		FS:       b.opts.FS,
		Files:    files,
		Reporter: diag.BagReporter{Bag: bag},
		Tokens:   b.opts.Tokens,
	})

	var tree *ast.Tree
	err = b.stage(ctx, "parse", func(context.Context) (err error) {
		tree, err = r.Parse(abs)
		return err
	})
	if err == nil {
		err = b.finish(ctx, tree, cfg, bag, &res)
	}
	if err != nil {
		bag.Sort()
		return Result{}, &Failure{Err: err, Diagnostics: bag.Errors(), FileSet: files}
	}
	res.Files = r.Files()
	return res, nil
}
