package resolve

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"rsbundle/internal/ast"
	"rsbundle/internal/diag"
	"rsbundle/internal/parser"
	"rsbundle/internal/source"
	"rsbundle/internal/token"
	"rsbundle/internal/trace"
)

// Options configures a Resolver. Zero values fall back to the real
// filesystem, a fresh FileSet and a NopReporter.
type Options struct {
	FS       FS
	Files    *source.FileSet
	Reporter diag.Reporter
	Tokens   parser.TokenSource

	// Skip reports declarations that will be pruned anyway (e.g.
	// `#[cfg(test)] mod tests;`). They stay pending and their files are
	// never read.
	Skip func(it *ast.Item) bool
}

// Resolver inlines `mod name;` declarations. One Resolver serves one crate
// load and records every file it read.
type Resolver struct {
	opts    Options
	stack   []frame
	files   []string
	checks  []Candidate
	checked map[string]bool
}

// Candidate is one module path the resolver looked for. A cached bundle
// stays valid only while every candidate gives the same answer.
type Candidate struct {
	Path   string
	Exists bool
}

func New(opts Options) *Resolver {
	if opts.FS == nil {
		opts.FS = OSFS{}
	}
	if opts.Files == nil {
		opts.Files = source.NewFileSet()
	}
	if opts.Reporter == nil {
		opts.Reporter = diag.NopReporter{}
	}
	return &Resolver{opts: opts, checked: make(map[string]bool)}
}

// FileSet returns the set holding every parsed file.
func (r *Resolver) FileSet() *source.FileSet { return r.opts.Files }

// Files returns the absolute paths read so far, in read order.
func (r *Resolver) Files() []string {
	out := make([]string, len(r.files))
	copy(out, r.files)
	return out
}

// frame is one file on the declaration stack. key has symlinks resolved so a
// cycle through a linked directory is still seen as one.
type frame struct {
	key  string
	path string
}

func newFrame(path string) frame {
	key, err := filepath.EvalSymlinks(path)
	if err != nil {
		key = path
	}
	return frame{key: key, path: path}
}

// Candidates returns every candidate path checked so far, first check first.
func (r *Resolver) Candidates() []Candidate {
	out := make([]Candidate, len(r.checks))
	copy(out, r.checks)
	return out
}

func (r *Resolver) exists(path string) bool {
	info, err := r.opts.FS.Stat(path)
	exists := err == nil && info.Mode().IsRegular()
	if !r.checked[path] {
		r.checked[path] = true
		r.checks = append(r.checks, Candidate{Path: path, Exists: exists})
	}
	return exists
}

// LoadCrate parses the crate root at entry and inlines its whole module tree.
func (r *Resolver) LoadCrate(ctx context.Context, entry string) (*ast.Tree, error) {
	abs, err := filepath.Abs(entry)
	if err != nil {
		return nil, err
	}
	tree, err := r.Parse(abs)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(abs)
	r.stack = append(r.stack[:0], newFrame(abs))
	defer func() { r.stack = r.stack[:0] }()
	if err := r.resolveTree(ctx, tree, nil, dir, dir); err != nil {
		return nil, err
	}
	return tree, nil
}

// Resolve inlines the pending modules of an already parsed crate root whose
// file lives in baseDir. The tree is updated in place and returned.
func (r *Resolver) Resolve(ctx context.Context, tree *ast.Tree, baseDir string) (*ast.Tree, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	if f := r.opts.Files.Get(tree.File); f != nil && filepath.IsAbs(filepath.FromSlash(f.Path)) {
		r.stack = append(r.stack[:0], newFrame(filepath.FromSlash(f.Path)))
	} else {
		r.stack = r.stack[:0]
	}
	defer func() { r.stack = r.stack[:0] }()
	if err := r.resolveTree(ctx, tree, nil, abs, abs); err != nil {
		return nil, err
	}
	return tree, nil
}

// Resolve is a one-shot helper around New(opts).Resolve.
func Resolve(ctx context.Context, tree *ast.Tree, baseDir string, opts Options) (*ast.Tree, error) {
	return New(opts).Resolve(ctx, tree, baseDir)
}

// resolveTree walks one module body. moduleDir holds the children of this
// module; fileDir is the directory of the file the body was written in.
func (r *Resolver) resolveTree(ctx context.Context, tree *ast.Tree, path ast.ModulePath, moduleDir, fileDir string) error {
	declared := make(map[string]*ast.Item)
	for _, it := range tree.Items {
		if it.Kind != ast.ItemMod {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		childPath := path.Child(it.Name)
		if prev, ok := declared[it.Name]; ok && !prev.HasAttr("cfg") && !it.HasAttr("cfg") {
			return r.fail(it, &Error{Kind: DuplicateModule, Module: childPath}, prev.Span, "first declared here")
		}
		declared[it.Name] = it

		childDir := filepath.Join(moduleDir, it.Name)
		if !it.Module.Pending() {
			// inline `mod x { ... }`: nested declarations live under dir/x
			if err := r.resolveTree(ctx, it.Module.Body, childPath, childDir, childDir); err != nil {
				return err
			}
			continue
		}
		if r.opts.Skip != nil && r.opts.Skip(it) {
			continue
		}
		if err := r.resolveDecl(ctx, it, childPath, childDir, fileDir); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) resolveDecl(ctx context.Context, it *ast.Item, path ast.ModulePath, childDir, fileDir string) error {
	var candidates []string
	pathAttr, hasPathAttr := pathAttribute(it)
	if hasPathAttr {
		p := pathAttr
		if !filepath.IsAbs(p) {
			p = filepath.Join(fileDir, filepath.FromSlash(p))
		}
		candidates = []string{p}
	} else {
		candidates = []string{childDir + ".rs", filepath.Join(childDir, "mod.rs")}
	}

	var found []string
	for _, c := range candidates {
		if r.exists(c) {
			found = append(found, c)
		}
	}
	switch len(found) {
	case 0:
		return r.fail(it, &Error{Kind: FileNotFound, Module: path, Candidates: r.display(candidates)}, source.Span{}, "")
	case 1:
	default:
		return r.fail(it, &Error{Kind: AmbiguousCandidates, Module: path, Candidates: r.display(found)}, source.Span{}, "")
	}
	file := found[0]

	next := newFrame(file)
	for i, onStack := range r.stack {
		if onStack.key == next.key {
			chain := make([]string, 0, len(r.stack)-i+1)
			for _, fr := range r.stack[i:] {
				chain = append(chain, fr.path)
			}
			chain = append(chain, file)
			return r.fail(it, &Error{Kind: CyclicDeclaration, Module: path, Chain: r.display(chain)}, source.Span{}, "")
		}
	}

	ctx, span := trace.Start(ctx, trace.ScopeModule, "module:"+path.String())
	defer span.End("")

	sub, err := r.Parse(file)
	if err != nil {
		return fmt.Errorf("module `%s`: %w", path, err)
	}
	subDir := childDir
	if hasPathAttr {
		subDir = filepath.Dir(file)
	}
	r.stack = append(r.stack, next)
	err = r.resolveTree(ctx, sub, path, subDir, filepath.Dir(file))
	r.stack = r.stack[:len(r.stack)-1]
	if err != nil {
		return err
	}
	it.Module = &ast.Module{Body: sub, Source: file}
	return nil
}

// Parse reads and parses one file without resolving its declarations.
// The file is recorded in Files.
func (r *Resolver) Parse(path string) (*ast.Tree, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	content, err := r.opts.FS.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r.files = append(r.files, path)
	id := r.opts.Files.Add(path, content, 0)
	return parser.ParseFile(r.opts.Files, id, parser.Options{Reporter: r.opts.Reporter, Tokens: r.opts.Tokens})
}

// fail fills the position of e from the declaration, reports it and returns it.
func (r *Resolver) fail(it *ast.Item, e *Error, note source.Span, noteMsg string) error {
	if f := r.opts.Files.Get(it.Span.File); f != nil {
		start, _ := r.opts.Files.Resolve(it.Span)
		e.DeclaredIn = r.opts.Files.DisplayPath(f.ID)
		e.Line, e.Col = start.Line, start.Col
	}
	b := diag.ReportError(r.opts.Reporter, e.Kind.Code(), it.Span, stripPosition(e))
	if noteMsg != "" {
		b.WithNote(note, noteMsg)
	}
	b.Emit()
	return e
}

func stripPosition(e *Error) string {
	cp := *e
	cp.DeclaredIn = ""
	return cp.Error()
}

func (r *Resolver) display(paths []string) []string {
	base := r.opts.Files.BaseDir()
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.ToSlash(p)
		if base == "" {
			continue
		}
		if rel, err := filepath.Rel(base, p); err == nil && !strings.HasPrefix(rel, "..") {
			out[i] = filepath.ToSlash(rel)
		}
	}
	return out
}

// pathAttribute returns the value of `#[path = "..."]`.
func pathAttribute(it *ast.Item) (string, bool) {
	attr, ok := it.FindAttr("path")
	if !ok {
		return "", false
	}
	args := attr.Args()
	if len(args) != 2 || args[0].Kind != token.Assign {
		return "", false
	}
	return literalString(args[1])
}

func literalString(t token.Token) (string, bool) {
	switch t.Kind {
	case token.StringLit:
		s, err := strconv.Unquote(t.Text)
		return s, err == nil
	case token.RawStringLit:
		s := strings.TrimLeft(strings.TrimPrefix(t.Text, "r"), "#")
		s = strings.TrimRight(s, "#")
		if len(s) >= 2 {
			return s[1 : len(s)-1], true
		}
	}
	return "", false
}
