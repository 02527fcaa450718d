//go:build windows

// Windows Platform implementation.
package platform

import (
	"os"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// New creates the Windows adapters. Registry writes go to HKEY_CURRENT_USER.
func New(logger *zap.Logger) (*Platform, error) {
	return &Platform{
		Runtime: NewCOMRuntime(logger),
		Links:   shellLinkFactory{},
		Keys:    NewRegistryStore(registry.CURRENT_USER),
		Env:     NewEnvironment(),
		name:    "windows",
	}, nil
}

// roamingDir resolves FOLDERID_RoamingAppData, falling back to %APPDATA%.
func roamingDir() (string, error) {
	dir, err := windows.KnownFolderPath(windows.FOLDERID_RoamingAppData, 0)
	if err == nil && dir != "" {
		return dir, nil
	}
	if env := os.Getenv("APPDATA"); env != "" {
		return env, nil
	}
	return "", err
}
