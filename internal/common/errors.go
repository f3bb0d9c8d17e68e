// Package common defines shared sentinel errors used across orion layers.
// Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// ErrDatabaseMissing is returned when the project database file does not
	// exist and the caller did not ask for it to be created.
	ErrDatabaseMissing = errors.New("database not found")

	// Error kinds reported by filesystem and sidecar operations.
	ErrFilesystem        = errors.New("filesystem error")
	ErrMalformedSidecar  = errors.New("malformed sidecar")
	ErrDestinationExists = errors.New("destination already exists")

	ErrInvalidInput = errors.New("invalid input")
)

// OpError records a failed operation on a path together with its error kind.
// Both the kind and the underlying cause are reachable with errors.Is / As.
type OpError struct {
	Kind error
	Op   string
	Path string
	Err  error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Wrap returns an *OpError of the given kind, or nil when err is nil.
func Wrap(kind error, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Kind: kind, Op: op, Path: path, Err: err}
}

// FS is shorthand for Wrap(ErrFilesystem, ...).
func FS(op, path string, err error) error {
	return Wrap(ErrFilesystem, op, path, err)
}
