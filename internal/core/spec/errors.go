// Package spec contains the value objects a compose document is built from.
// This is part of the Functional Core - all functions are pure with no I/O.
package spec

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// Naming errors
	ErrEmptyName     = errors.New("name must not be empty")
	ErrNameCollision = errors.New("name collides case-insensitively with an existing entry")

	// Service validation errors
	ErrInvalidPort          = errors.New("invalid port mapping")
	ErrDuplicatePort        = errors.New("duplicate port mapping")
	ErrInvalidVolume        = errors.New("invalid volume mount")
	ErrInvalidEnv           = errors.New("invalid environment variable")
	ErrDuplicateEnv         = errors.New("duplicate environment variable")
	ErrDuplicateLabel       = errors.New("duplicate label key")
	ErrDuplicateNetwork     = errors.New("duplicate network reference")
	ErrInvalidRestartPolicy = errors.New("invalid restart policy")

	// Network validation errors
	ErrInvalidDriver       = errors.New("invalid network driver")
	ErrExternalWithOptions = errors.New("external network must not set driver, internal or ipv6 options")

	// Document validation errors
	ErrUnknownNetwork       = errors.New("service references an undefined network")
	ErrDuplicateService     = errors.New("duplicate service name")
	ErrDuplicateNetworkName = errors.New("duplicate network name")

	// Resource validation errors
	ErrInvalidCPU    = errors.New("invalid CPU value")
	ErrInvalidMemory = errors.New("invalid memory value")
)

// ValidationError wraps errors with context about which field failed.
type ValidationError struct {
	Field   string // e.g., "services.web.ports[0]"
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
