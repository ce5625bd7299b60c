package project

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// skipDir reports directories never scanned for sources.
func skipDir(name string) bool {
	return name == "target" || name == "node_modules" || (strings.HasPrefix(name, ".") && name != ".")
}

// SourceFiles returns every .rs file below dir, sorted, skipping build
// output, VCS metadata and hidden directories.
func SourceFiles(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".rs") {
			out = append(out, path)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

// SourceDirs returns dir and its subdirectories under the same rules as
// SourceFiles. The watcher registers each of them.
func SourceDirs(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		out = append(out, path)
		return nil
	})
	sort.Strings(out)
	return out, err
}
