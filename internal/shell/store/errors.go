// Package store persists compose documents on disk. It is the only part of
// the system that touches files: loading hands the imperative shell's bytes
// to the pure document package, and writing replaces the target atomically
// so a crash mid-write never leaves a half-written file under the final
// name.
package store

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrNotFound is returned when the compose file does not exist. This is
	// a normal first-run outcome, not a failure: callers proceed with an
	// empty tree.
	ErrNotFound = errors.New("compose file not found")
)

// StoreError wraps errors with context about the failing operation.
type StoreError struct {
	Op   string // Operation that failed (e.g., "Load", "Write")
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
