package cache

import (
	"context"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"rsbundle/internal/project"
	"rsbundle/internal/source"
)

// Key builds a cache key from ordered string parts (entry path, config
// fingerprint, tool version).
func Key(parts ...string) project.Digest {
	if len(parts) == 0 {
		return project.HashString("")
	}
	rest := make([]project.Digest, 0, len(parts)-1)
	for _, p := range parts[1:] {
		rest = append(rest, project.HashString(p))
	}
	return project.Combine(project.HashString(parts[0]), rest...)
}

// HashFiles hashes files in parallel; the result is index-aligned with
// paths. Hashes match source.File.Hash for the same content.
func HashFiles(ctx context.Context, paths []string, jobs int) ([]project.Digest, error) {
	out := make([]project.Digest, len(paths))
	if len(paths) == 0 {
		return out, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// #nosec G304 -- paths come from the resolver
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			out[i] = source.ContentHash(content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Fresh reports whether the entry still describes the filesystem: every
// input and dependency has the recorded hash and no absent module candidate
// has appeared. A deleted input makes the entry stale, not an error.
func Fresh(ctx context.Context, entry *Entry) (bool, error) {
	if entry == nil || len(entry.Files) == 0 {
		return false, nil
	}
	for _, p := range entry.Absent {
		info, err := os.Stat(p)
		if err == nil && info.Mode().IsRegular() {
			return false, nil
		}
	}

	paths := append(append([]string(nil), entry.Files...), entry.Deps...)
	want := append(append([]project.Digest(nil), entry.Hashes...), entry.DepHashes...)
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}
			return false, err
		}
	}
	got, err := HashFiles(ctx, paths, 0)
	if err != nil {
		return false, err
	}
	for i := range got {
		if got[i] != want[i] {
			return false, nil
		}
	}
	return true, nil
}
