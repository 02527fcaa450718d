//go:build windows

package preflight

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func isElevated() (bool, error) {
	var token windows.Token
	err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_QUERY, &token)
	if err != nil {
		return false, fmt.Errorf("cannot check elevation: %w", err)
	}
	defer token.Close()
	return token.IsElevated(), nil
}

func elevationSupported() bool { return true }
