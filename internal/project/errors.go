package project

import (
	"errors"
	"fmt"

	"rsbundle/internal/diag"
)

type ConfigErrorKind uint8

const (
	MissingManifest ConfigErrorKind = iota + 1
	BadManifest
	NoTarget
	MultipleBinaries
	UnknownBinary
)

var (
	ErrMissingManifest  = errors.New("no Cargo.toml found")
	ErrBadManifest      = errors.New("invalid Cargo.toml")
	ErrNoTarget         = errors.New("no binary or library target")
	ErrMultipleBinaries = errors.New("several binary targets")
	ErrUnknownBinary    = errors.New("unknown binary target")
)

func (k ConfigErrorKind) sentinel() error {
	switch k {
	case MissingManifest:
		return ErrMissingManifest
	case BadManifest:
		return ErrBadManifest
	case NoTarget:
		return ErrNoTarget
	case MultipleBinaries:
		return ErrMultipleBinaries
	case UnknownBinary:
		return ErrUnknownBinary
	}
	return nil
}

func (k ConfigErrorKind) Code() diag.Code {
	switch k {
	case MissingManifest:
		return diag.ProjMissingManifest
	case NoTarget:
		return diag.ProjNoTarget
	case MultipleBinaries:
		return diag.ProjMultipleBinaries
	case UnknownBinary:
		return diag.ProjUnknownBinary
	}
	return diag.ProjBadConfig
}

// ConfigError reports a project that cannot be bundled as described.
type ConfigError struct {
	Kind ConfigErrorKind
	Path string // Cargo.toml или корень проекта
	Msg  string
	Err  error
}

func (e *ConfigError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.sentinel().Error()
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Path == "" {
		return msg
	}
	return e.Path + ": " + msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}
