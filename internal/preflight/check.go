// Package preflight provides environment checks that explain, before any
// registry or filesystem mutation, why a registration is likely to fail or
// land in the wrong place.
package preflight

import "context"

// Severity grades a check result.
type Severity int

const (
	OK Severity = iota
	Warn
	Fail
)

func (s Severity) String() string {
	switch s {
	case OK:
		return "ok"
	case Warn:
		return "warn"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}

// Result is the outcome of one check.
type Result struct {
	Name     string   `json:"name"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
}

// Check is the interface that all preflight checks implement.
type Check interface {
	// Name returns the unique identifier for this check.
	Name() string

	// Run performs the check. Failures are reported through the Result,
	// never by panicking.
	Run(ctx context.Context) Result

	// IsAvailable reports whether this check applies to the current platform.
	// Checks that return false are not registered.
	IsAvailable() bool
}
