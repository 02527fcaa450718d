//go:build !windows

package preflight

func isElevated() (bool, error) { return false, nil }

func elevationSupported() bool { return false }
