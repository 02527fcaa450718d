//go:build !windows

// Stub Platform for non-Windows builds, used during development on macOS/Linux.
package platform

import (
	"os"

	"go.uber.org/zap"
)

// New returns ErrUnsupported: there is no shell link or COM activation
// server to register outside Windows.
func New(logger *zap.Logger) (*Platform, error) {
	logger.Debug("No notification platform for this OS")
	return nil, ErrUnsupported
}

// roamingDir falls back to the per-user config directory so that path
// computations stay meaningful in development builds.
func roamingDir() (string, error) {
	return os.UserConfigDir()
}
