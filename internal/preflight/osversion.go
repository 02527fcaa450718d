// OS version check. Toast activation through a COM CLSID needs Windows 10
// (build 10240) or later.
package preflight

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

// MinWindowsBuild is the first build whose shell honours the toast
// activator CLSID on a shortcut.
const MinWindowsBuild = 10240

var buildPattern = regexp.MustCompile(`(?i)build\s+(\d+)`)

// OSVersionCheck verifies the OS can host a toast activator.
type OSVersionCheck struct {
	goos string
	info func(ctx context.Context) (platform, family, version string, err error)
}

// NewOSVersionCheck creates an OS version check backed by gopsutil.
func NewOSVersionCheck() *OSVersionCheck {
	return &OSVersionCheck{goos: runtime.GOOS, info: host.PlatformInformationWithContext}
}

func (c *OSVersionCheck) Name() string { return "os_version" }

// IsAvailable returns true: non-Windows hosts are reported as failures.
func (c *OSVersionCheck) IsAvailable() bool { return true }

func (c *OSVersionCheck) Run(ctx context.Context) Result {
	if c.goos != "windows" {
		return Result{Severity: Fail, Detail: fmt.Sprintf("toast registration requires Windows (running %s)", c.goos)}
	}
	name, _, version, err := c.info(ctx)
	if err != nil {
		return Result{Severity: Warn, Detail: fmt.Sprintf("cannot determine Windows version: %v", err)}
	}
	build, ok := parseWindowsBuild(version)
	if !ok {
		return Result{Severity: Warn, Detail: fmt.Sprintf("cannot parse Windows build from %q", version)}
	}
	if build < MinWindowsBuild {
		return Result{Severity: Fail, Detail: fmt.Sprintf("%s build %d is older than %d; toast activators are unsupported", name, build, MinWindowsBuild)}
	}
	return Result{Severity: OK, Detail: fmt.Sprintf("%s build %d", name, build)}
}

// parseWindowsBuild extracts the build number from version strings such as
// "10.0.19045 Build 19045" or "10.0.22631".
func parseWindowsBuild(version string) (int, bool) {
	if m := buildPattern.FindStringSubmatch(version); m != nil {
		n, err := strconv.Atoi(m[1])
		return n, err == nil
	}
	fields := strings.Fields(version)
	if len(fields) == 0 {
		return 0, false
	}
	parts := strings.Split(fields[0], ".")
	if len(parts) < 3 {
		return 0, false
	}
	n, err := strconv.Atoi(parts[2])
	return n, err == nil
}
