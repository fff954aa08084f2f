// Package document implements the editable compose-document tree and the
// merge engine that reconciles desired specs against it. The tree is built
// on yaml.v3 nodes, which carry comments, key order and scalar styles, so
// blocks the engine does not touch serialize back byte-for-byte.
package document

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// YAML parsing errors
	ErrInvalidYAML = errors.New("invalid YAML syntax")
	ErrNotMapping  = errors.New("document root must be a mapping")

	// Removal errors
	ErrNetworkInUse = errors.New("network is still referenced by a service")
)

// ParseError wraps errors raised while reading an existing document.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("parse compose document: %s", e.Message)
	}
	return "parse compose document"
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError.
func NewParseError(message string, err error) *ParseError {
	return &ParseError{Message: message, Err: err}
}
