// Package platform provides the OS adapters the notification core drives:
// the COM runtime, shell links with their property stores, the per-user
// registry, and call-time environment lookups.
// Windows is the only supported OS; other builds get a stub whose
// constructor returns ErrUnsupported.
package platform

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/Guliveer/toastreg/notification"
)

// ErrUnsupported is returned on operating systems without a notification
// registration model.
var ErrUnsupported = errors.New("toast registration is only supported on Windows")

// Platform bundles the adapters for one OS.
type Platform struct {
	Runtime notification.Runtime
	Links   notification.ShellLinkFactory
	Keys    notification.KeyStore
	Env     notification.Environment
	name    string
}

// Name returns the platform identifier (windows, stub).
func (p *Platform) Name() string { return p.name }

// Environment resolves the running executable and the roaming data
// directory at call time. Nothing is cached.
type Environment struct{}

// NewEnvironment returns the environment for the current OS.
func NewEnvironment() Environment { return Environment{} }

// Executable returns the absolute, symlink-resolved path of the running binary.
func (Environment) Executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", err
	}
	return filepath.Abs(exe)
}

// RoamingDir returns the user's roaming application-data directory.
func (Environment) RoamingDir() (string, error) {
	return roamingDir()
}
