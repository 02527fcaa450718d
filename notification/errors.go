package notification

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches any error reporting an absent record.
	ErrNotFound = errors.New("record not found")

	// ErrKeyNotFound is returned by a KeyStore when the addressed key does not
	// exist. Registry errors wrapping it also match ErrNotFound.
	ErrKeyNotFound = errors.New("registry key not found")
)

// NotFoundError reports a deregistration against a record that does not exist.
type NotFoundError struct {
	Kind string // "shortcut" or "registry key"
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("the %s (%s) has not been found", e.Kind, e.Path)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// PlatformError wraps a failure of the shell-link / property-store protocol.
type PlatformError struct {
	Step string
	Path string
	Err  error
}

func (e *PlatformError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("shortcut %s: %s: %v", e.Path, e.Step, e.Err)
	}
	return fmt.Sprintf("shortcut: %s: %v", e.Step, e.Err)
}

func (e *PlatformError) Unwrap() error { return e.Err }

// RegistryError wraps a key creation, value write or subtree deletion failure.
type RegistryError struct {
	Op   string
	Path string
	Err  error
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("failed to %s registry key (%s) in HKCU: %v", e.Op, e.Path, e.Err)
}

func (e *RegistryError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotFound) match an absent key.
func (e *RegistryError) Is(target error) bool {
	return target == ErrNotFound && errors.Is(e.Err, ErrKeyNotFound)
}

// IoError wraps a filesystem or path-resolution failure.
type IoError struct {
	Op   string
	Path string
	Err  error
}

func (e *IoError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }
