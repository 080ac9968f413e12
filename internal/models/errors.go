package models

import (
	"errors"
	"fmt"

	"github.com/ralt/pacrepo/internal/utils"
)

// Parse failures. They are comparable with errors.Is through any wrapping.
var (
	ErrInvalidFormat = utils.ErrInvalidFormat
	ErrOverflow      = utils.ErrOverflow

	ErrUnknownField         = errors.New("unknown field")
	ErrDuplicateField       = errors.New("duplicate field")
	ErrMalformedSection     = errors.New("malformed section")
	ErrMismatchedField      = errors.New("field does not match record identity")
	ErrMissingRequiredField = errors.New("missing required field")
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrPackageParse ErrorType = iota
	ErrMetadataGen
	ErrSigning
	ErrFileOp
	ErrInvalidConfig
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrPackageParse:
		return "PackageParse"
	case ErrMetadataGen:
		return "MetadataGen"
	case ErrSigning:
		return "Signing"
	case ErrFileOp:
		return "FileOp"
	case ErrInvalidConfig:
		return "InvalidConfig"
	default:
		return "Unknown"
	}
}

// RepoError represents an error during repository generation
type RepoError struct {
	Type    ErrorType
	Package string
	Err     error
}

// Error implements the error interface
func (e *RepoError) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Package, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *RepoError) Unwrap() error {
	return e.Err
}

// ParseError wraps err as a PackageParse failure for the named package
func ParseError(pkg string, err error) error {
	return &RepoError{
		Type:    ErrPackageParse,
		Package: pkg,
		Err:     err,
	}
}
