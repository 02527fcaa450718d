// Package notification registers an application with the Windows notification
// subsystem: a Start Menu shortcut carrying the application's AUMID and toast
// activator CLSID, and the per-user COM local-server entries the shell uses
// to launch the application when a toast is activated.
//
// Both records are created by Register and destroyed by Deregister with the
// same identity triple. Nothing is remembered between calls.
package notification

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Options tunes orchestration policy.
type Options struct {
	// RollbackOnFailure deletes the activation-server record again when the
	// shortcut phase of a register fails. Off by default: register is not
	// atomic across the two records.
	RollbackOnFailure bool `yaml:"rollback_on_failure"`
}

// Service is the registration orchestrator.
type Service struct {
	runtime   Runtime
	registrar *Registrar
	shortcuts *ShortcutManager
	opts      Options
	logger    *zap.Logger
}

// NewService wires the orchestrator over its two components.
func NewService(rt Runtime, registrar *Registrar, shortcuts *ShortcutManager, opts Options, logger *zap.Logger) *Service {
	return &Service{
		runtime:   rt,
		registrar: registrar,
		shortcuts: shortcuts,
		opts:      opts,
		logger:    logger.Named("notification"),
	}
}

// Register makes the application able to raise toast notifications and
// returns the absolute shortcut path. appName defaults to aumid.
func (s *Service) Register(aumid, clsid, appName string) (string, error) {
	return s.Apply(Create, NewIdentity(aumid, clsid, appName))
}

// Deregister removes what Register created. aumid, clsid and appName must be
// the values used to register.
func (s *Service) Deregister(aumid, clsid, appName string) error {
	_, err := s.Apply(Remove, NewIdentity(aumid, clsid, appName))
	return err
}

// Apply runs op for id inside a single COM runtime scope. The first failure
// is returned as-is; there are no retries.
func (s *Service) Apply(op Operation, id Identity) (string, error) {
	if err := id.Validate(); err != nil {
		return "", err
	}
	id = NewIdentity(id.AUMID, id.CLSID, id.AppName)

	release, err := s.runtime.Acquire()
	if err != nil {
		return "", &PlatformError{Step: "initialize COM runtime", Err: err}
	}
	defer release()

	s.logger.Debug("Applying notification support",
		zap.Stringer("op", op),
		zap.String("aumid", id.AUMID),
		zap.String("clsid", id.CLSID),
		zap.String("app_name", id.AppName))

	switch op {
	case Create:
		return s.create(id)
	case Remove:
		return "", s.remove(id)
	default:
		return "", fmt.Errorf("unsupported operation %s", op)
	}
}

func (s *Service) create(id Identity) (string, error) {
	// Only a record this call created may be compensated; an earlier
	// registration of the same CLSID must survive a failed re-register.
	existed := false
	if s.opts.RollbackOnFailure {
		var err error
		if existed, err = s.registrar.Exists(id.CLSID); err != nil {
			return "", err
		}
	}

	if err := s.registrar.Apply(Create, id.CLSID); err != nil {
		return "", err
	}
	path, err := s.shortcuts.Apply(Create, id)
	if err != nil {
		if s.opts.RollbackOnFailure {
			if existed {
				s.logger.Warn("Keeping COM server registration that predates this call",
					zap.String("clsid", id.CLSID))
			} else {
				s.rollback(id)
			}
		}
		return "", err
	}
	return path, nil
}

func (s *Service) rollback(id Identity) {
	s.logger.Warn("Rolling back COM server registration", zap.String("clsid", id.CLSID))
	if err := s.registrar.Apply(Remove, id.CLSID); err != nil {
		s.logger.Error("Rollback failed", zap.String("clsid", id.CLSID), zap.Error(err))
	}
}

func (s *Service) remove(id Identity) error {
	// A never-registered identity must fail before the registry is touched.
	if _, err := s.shortcuts.RequirePresent(id); err != nil {
		return err
	}
	if err := s.registrar.Apply(Remove, id.CLSID); err != nil {
		return err
	}
	_, err := s.shortcuts.Apply(Remove, id)
	return err
}

// State summarizes both records of an identity.
type State int

const (
	Absent  State = iota // neither record exists
	Present              // both records exist
	Partial              // exactly one record exists
)

func (st State) String() string {
	switch st {
	case Absent:
		return "absent"
	case Present:
		return "present"
	case Partial:
		return "partial"
	default:
		return "unknown"
	}
}

// Status is the read-back of both records of an identity.
type Status struct {
	Identity Identity       `json:"identity"`
	Shortcut ShortcutStatus `json:"shortcut"`
	Server   ServerStatus   `json:"server"`
}

// State reports whether the records exist as a pair.
func (st Status) State() State {
	switch {
	case st.Shortcut.Present && st.Server.Present:
		return Present
	case !st.Shortcut.Present && !st.Server.Present:
		return Absent
	default:
		return Partial
	}
}

// Mismatches lists the ways present records disagree with the identity.
func (st Status) Mismatches() []string {
	var out []string
	if st.Shortcut.Present {
		if st.Shortcut.AUMID != st.Identity.AUMID {
			out = append(out, fmt.Sprintf("shortcut AUMID is %q, want %q", st.Shortcut.AUMID, st.Identity.AUMID))
		}
		if want := st.Identity.BracedCLSID(); !strings.EqualFold(st.Shortcut.ActivatorCLSID, want) {
			out = append(out, fmt.Sprintf("shortcut activator CLSID is %q, want %q", st.Shortcut.ActivatorCLSID, want))
		}
	}
	if st.Server.Present {
		if !strings.EqualFold(st.Server.AppID, st.Identity.CLSID) {
			out = append(out, fmt.Sprintf("AppID is %q, want %q", st.Server.AppID, st.Identity.CLSID))
		}
		if st.Server.Command == "" {
			out = append(out, "LocalServer32 command is missing")
		}
		if st.Shortcut.Present && st.Shortcut.Target != "" && st.Server.Command != ActivationCommand(st.Shortcut.Target) {
			out = append(out, fmt.Sprintf("LocalServer32 command %q does not launch shortcut target %q", st.Server.Command, st.Shortcut.Target))
		}
	}
	return out
}

// Status reads both records of id back without modifying anything.
func (s *Service) Status(id Identity) (Status, error) {
	if err := id.Validate(); err != nil {
		return Status{}, err
	}
	id = NewIdentity(id.AUMID, id.CLSID, id.AppName)

	release, err := s.runtime.Acquire()
	if err != nil {
		return Status{}, &PlatformError{Step: "initialize COM runtime", Err: err}
	}
	defer release()

	st := Status{Identity: id}
	if st.Server, err = s.registrar.Inspect(id.CLSID); err != nil {
		return st, err
	}
	if st.Shortcut, err = s.shortcuts.Inspect(id); err != nil {
		return st, err
	}
	return st, nil
}
