package ast

import "strings"

// ModulePath is the sequence of module names from the crate root.
type ModulePath []string

// Child returns a new path extended by name; p itself is not modified.
func (p ModulePath) Child(name string) ModulePath {
	out := make(ModulePath, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

func (p ModulePath) String() string {
	if len(p) == 0 {
		return "crate"
	}
	return strings.Join(p, "::")
}
