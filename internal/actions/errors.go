package actions

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable means the configured backend could not be
	// opened; the store runs memory-only for the session.
	ErrBackendUnavailable = errors.New("action store backend unavailable")

	// ErrSchemaVersionMismatch means a stored document had another
	// version and was discarded.
	ErrSchemaVersionMismatch = errors.New("action store schema version mismatch")

	// ErrNotFound is returned by Backend.Get for a missing key.
	ErrNotFound = errors.New("key not found")
)

// ReadError wraps a failed backend read.
type ReadError struct {
	Key string
	Err error
}

func (e *ReadError) Error() string { return fmt.Sprintf("read %s: %v", e.Key, e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

// WriteError wraps a failed backend write.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write %s: %v", e.Key, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }
