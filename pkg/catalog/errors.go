package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownFunction is returned when a definition names a function
	// type that is neither a compound nor registered.
	ErrUnknownFunction = errors.New("unknown function type")

	// ErrDuplicateContextRoot is returned when two apis share a context
	// root.
	ErrDuplicateContextRoot = errors.New("duplicate context root")
)

// LoadError reports a definition file that could not be read.
type LoadError struct {
	// FilePath is the file or directory that failed to load
	FilePath string

	// Message describes the error
	Message string

	// Cause is the underlying error
	Cause error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load api definition %q: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load api definition %q: %s", e.FilePath, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ParseError reports invalid YAML in a definition file.
type ParseError struct {
	FilePath string

	// Line is 1-indexed, zero when unknown.
	Line int

	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %q at line %d: %s", e.FilePath, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %q: %s", e.FilePath, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValidationError reports a definition that parsed but cannot be built.
type ValidationError struct {
	FilePath string

	// API is the name of the api, when known.
	API string

	// FieldPath locates the offending node, e.g. "functions[1].on_error[0]".
	FieldPath string

	// Line is 1-indexed, zero when unknown.
	Line int

	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	parts := []string{"validation error"}
	if e.FilePath != "" {
		parts = append(parts, fmt.Sprintf("in %q", e.FilePath))
	}
	if e.API != "" {
		parts = append(parts, fmt.Sprintf("in api %q", e.API))
	}
	if e.FieldPath != "" {
		parts = append(parts, "at "+e.FieldPath)
	}
	if e.Line > 0 {
		parts = append(parts, fmt.Sprintf("(line %d)", e.Line))
	}
	msg := strings.Join(parts, " ") + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
