package preflight

import "context"

// ElevationCheck warns when running elevated: registration targets
// HKEY_CURRENT_USER and the roaming profile, and an elevated process may be
// running as a different user than the one who will see the toasts.
type ElevationCheck struct {
	elevated func() (bool, error)
}

// NewElevationCheck creates an elevation check.
func NewElevationCheck() *ElevationCheck {
	return &ElevationCheck{elevated: isElevated}
}

func (c *ElevationCheck) Name() string { return "elevation" }

func (c *ElevationCheck) IsAvailable() bool { return elevationSupported() }

func (c *ElevationCheck) Run(ctx context.Context) Result {
	elevated, err := c.elevated()
	if err != nil {
		return Result{Severity: Warn, Detail: err.Error()}
	}
	if elevated {
		return Result{Severity: Warn, Detail: "running elevated; registration is per-user and would apply to the elevated account, run without 'Run as administrator'"}
	}
	return Result{Severity: OK, Detail: "not elevated"}
}
