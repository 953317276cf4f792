package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable marks an infrastructure failure of a durable
	// backend: network, permission, quota, timeout.
	ErrBackendUnavailable = errors.New("storage backend unavailable")
	// ErrInvalidInput marks a malformed or incomplete caller payload.
	ErrInvalidInput = errors.New("invalid input")
)

// BackendError carries the failed operation and the driver error
type BackendError struct {
	Op  string
	Err error
}

// Unavailable wraps err as an ErrBackendUnavailable for op
func Unavailable(op string, err error) error {
	return &BackendError{Op: op, Err: err}
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrBackendUnavailable, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) Is(target error) bool { return target == ErrBackendUnavailable }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
