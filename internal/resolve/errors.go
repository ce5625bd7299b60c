package resolve

import (
	"errors"
	"fmt"
	"strings"

	"rsbundle/internal/ast"
	"rsbundle/internal/diag"
)

type ErrorKind uint8

const (
	FileNotFound ErrorKind = iota + 1
	AmbiguousCandidates
	CyclicDeclaration
	DuplicateModule
)

var (
	ErrFileNotFound        = errors.New("module file not found")
	ErrAmbiguousCandidates = errors.New("ambiguous module file")
	ErrCyclicDeclaration   = errors.New("cyclic module declaration")
	ErrDuplicateModule     = errors.New("duplicate module")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case FileNotFound:
		return ErrFileNotFound
	case AmbiguousCandidates:
		return ErrAmbiguousCandidates
	case CyclicDeclaration:
		return ErrCyclicDeclaration
	case DuplicateModule:
		return ErrDuplicateModule
	}
	return nil
}

func (k ErrorKind) Code() diag.Code {
	switch k {
	case FileNotFound:
		return diag.ResFileNotFound
	case AmbiguousCandidates:
		return diag.ResAmbiguousCandidates
	case CyclicDeclaration:
		return diag.ResCyclicDeclaration
	case DuplicateModule:
		return diag.ResDuplicateModule
	}
	return diag.UnknownCode
}

// Error is a fatal module resolution failure.
type Error struct {
	Kind       ErrorKind
	Module     ast.ModulePath
	DeclaredIn string // file containing the `mod` declaration
	Line, Col  uint32
	Candidates []string // FileNotFound / AmbiguousCandidates
	Chain      []string // CyclicDeclaration: files from the first repeat back to it
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case FileNotFound:
		msg = fmt.Sprintf("file not found for module `%s` (tried %s)", e.Module, strings.Join(e.Candidates, ", "))
	case AmbiguousCandidates:
		msg = fmt.Sprintf("module `%s` found at both %s", e.Module, strings.Join(e.Candidates, " and "))
	case CyclicDeclaration:
		msg = fmt.Sprintf("cyclic module declaration: %s", strings.Join(e.Chain, " -> "))
	case DuplicateModule:
		msg = fmt.Sprintf("module `%s` is declared more than once", e.Module)
	default:
		msg = "module resolution failed"
	}
	if e.DeclaredIn == "" {
		return msg
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.DeclaredIn, e.Line, e.Col, msg)
}

// Is matches the kind sentinels, so errors.Is(err, ErrFileNotFound) works.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}
