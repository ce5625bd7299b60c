package minify

import (
	"fmt"

	"rsbundle/internal/ast"
	"rsbundle/internal/diag"
)

// IntegrityError reports a compressed output whose item structure differs
// from the input.
type IntegrityError struct {
	Level    Level
	Want     []ast.ItemKind
	Got      []ast.ItemKind
	ParseErr error // set when the output does not parse at all
}

func (e *IntegrityError) Error() string {
	if e.ParseErr != nil {
		return fmt.Sprintf("%s: %s minification produced unparsable output: %v", e.Code().ID(), e.Level, e.ParseErr)
	}
	i := 0
	for i < len(e.Want) && i < len(e.Got) && e.Want[i] == e.Got[i] {
		i++
	}
	return fmt.Sprintf("%s: %s minification changed the item structure at item %d (%d items before, %d after)",
		e.Code().ID(), e.Level, i, len(e.Want), len(e.Got))
}

func (e *IntegrityError) Unwrap() error { return e.ParseErr }

func (e *IntegrityError) Code() diag.Code { return diag.MinIntegrityMismatch }
