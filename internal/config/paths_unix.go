//go:build !windows

package config

import (
	"os"
	"path/filepath"
)

// userConfigPaths are the per-user locations, most preferred first.
func userConfigPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return nil
	}
	return []string{filepath.Join(home, ".toastreg", "config.yaml")}
}

func configSearchPaths() []string {
	return append(userConfigPaths(), "/etc/toastreg/config.yaml")
}
