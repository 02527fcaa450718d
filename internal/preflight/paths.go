package preflight

import (
	"context"
	"fmt"
	"os"

	"github.com/Guliveer/toastreg/notification"
)

// RoamingDirCheck verifies the roaming data directory resolves and exists.
type RoamingDirCheck struct {
	env notification.Environment
}

func NewRoamingDirCheck(env notification.Environment) *RoamingDirCheck {
	return &RoamingDirCheck{env: env}
}

func (c *RoamingDirCheck) Name() string      { return "roaming_dir" }
func (c *RoamingDirCheck) IsAvailable() bool { return true }

func (c *RoamingDirCheck) Run(ctx context.Context) Result {
	dir, err := c.env.RoamingDir()
	if err != nil {
		return Result{Severity: Fail, Detail: fmt.Sprintf("cannot resolve roaming directory: %v", err)}
	}
	if dir == "" {
		return Result{Severity: Fail, Detail: "roaming directory is empty"}
	}
	st, err := os.Stat(dir)
	if err != nil {
		return Result{Severity: Fail, Detail: fmt.Sprintf("roaming directory %s: %v", dir, err)}
	}
	if !st.IsDir() {
		return Result{Severity: Fail, Detail: fmt.Sprintf("roaming directory %s is not a directory", dir)}
	}
	return Result{Severity: OK, Detail: dir}
}

// ExecutableCheck verifies the running executable resolves to an absolute
// path; it becomes the shortcut target and the LocalServer32 command.
type ExecutableCheck struct {
	env notification.Environment
}

func NewExecutableCheck(env notification.Environment) *ExecutableCheck {
	return &ExecutableCheck{env: env}
}

func (c *ExecutableCheck) Name() string      { return "executable" }
func (c *ExecutableCheck) IsAvailable() bool { return true }

func (c *ExecutableCheck) Run(ctx context.Context) Result {
	exe, err := c.env.Executable()
	if err != nil {
		return Result{Severity: Fail, Detail: fmt.Sprintf("cannot resolve executable: %v", err)}
	}
	return Result{Severity: OK, Detail: notification.ActivationCommand(exe)}
}
