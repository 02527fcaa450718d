//go:build windows

package config

import (
	"os"
	"path/filepath"
)

// userConfigPaths are the per-user locations, most preferred first. Unset
// roots are skipped so no path resolves against the working directory.
func userConfigPaths() []string {
	var paths []string
	if local := os.Getenv("LOCALAPPDATA"); local != "" {
		paths = append(paths, filepath.Join(local, "toastreg", "config.yaml"))
	}
	if roaming, err := os.UserConfigDir(); err == nil && roaming != "" {
		paths = append(paths, filepath.Join(roaming, "toastreg", "config.yaml"))
	}
	return paths
}

func configSearchPaths() []string {
	return append(userConfigPaths(), "toastreg.yaml")
}
