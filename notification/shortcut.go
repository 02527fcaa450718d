package notification

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// shortcutExt is the shell-link file extension.
const shortcutExt = ".lnk"

// programsDir is the Start Menu programs directory relative to the roaming
// application-data directory.
var programsDir = []string{"Microsoft", "Windows", "Start Menu", "Programs"}

// ShortcutStatus is what Inspect reads back from a shortcut file.
type ShortcutStatus struct {
	Path           string `json:"path"`
	Present        bool   `json:"present"`
	Target         string `json:"target,omitempty"`
	AUMID          string `json:"aumid,omitempty"`
	ActivatorCLSID string `json:"activator_clsid,omitempty"`
}

// ShortcutManager creates and removes the Start Menu shortcut that carries the
// AUMID and toast activator CLSID.
type ShortcutManager struct {
	links  ShellLinkFactory
	env    Environment
	logger *zap.Logger
}

// NewShortcutManager creates a shortcut manager.
func NewShortcutManager(links ShellLinkFactory, env Environment, logger *zap.Logger) *ShortcutManager {
	return &ShortcutManager{
		links:  links,
		env:    env,
		logger: logger.Named("shortcut"),
	}
}

// Path returns <roaming>/Microsoft/Windows/Start Menu/Programs/<appName>.lnk.
func (m *ShortcutManager) Path(appName string) (string, error) {
	roaming, err := m.env.RoamingDir()
	if err != nil {
		return "", &IoError{Op: "resolve roaming directory", Err: err}
	}
	parts := append([]string{roaming}, programsDir...)
	parts = append(parts, appName+shortcutExt)
	return filepath.Join(parts...), nil
}

// Apply moves the shortcut record for id in the direction of op. Create
// returns the shortcut path; Remove returns "".
func (m *ShortcutManager) Apply(op Operation, id Identity) (string, error) {
	switch op {
	case Create:
		return m.create(id)
	case Remove:
		return "", m.remove(id)
	default:
		return "", fmt.Errorf("shortcut: unsupported operation %s", op)
	}
}

// RequirePresent returns the shortcut path, or a NotFoundError when the file
// does not exist.
func (m *ShortcutManager) RequirePresent(id Identity) (string, error) {
	path, err := m.Path(id.DisplayName())
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.logger.Error("Shortcut not found", zap.String("path", path))
			return "", &NotFoundError{Kind: "shortcut", Path: path}
		}
		return "", &IoError{Op: "stat", Path: path, Err: err}
	}
	return path, nil
}

func (m *ShortcutManager) remove(id Identity) error {
	path, err := m.RequirePresent(id)
	if err != nil {
		return err
	}

	m.logger.Debug("Deleting shortcut", zap.String("path", path))
	if err := os.Remove(path); err != nil {
		return &IoError{Op: "remove", Path: path, Err: err}
	}
	m.logger.Info("Shortcut removed", zap.String("path", path))
	return nil
}

func (m *ShortcutManager) create(id Identity) (string, error) {
	m.logger.Debug("Creating shortcut",
		zap.String("app_name", id.DisplayName()),
		zap.String("aumid", id.AUMID))

	exe, err := m.env.Executable()
	if err != nil {
		return "", &IoError{Op: "resolve executable", Err: err}
	}
	path, err := m.Path(id.DisplayName())
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", &IoError{Op: "create directory", Path: filepath.Dir(path), Err: err}
	}

	fail := func(step string, err error) (string, error) {
		m.logger.Error("Shortcut creation failed",
			zap.String("step", step),
			zap.String("path", path),
			zap.Error(err))
		return "", &PlatformError{Step: step, Path: path, Err: err}
	}

	link, err := m.links.NewShellLink()
	if err != nil {
		return fail("create shell link", err)
	}
	defer link.Release()

	if err := link.SetTargetPath(exe); err != nil {
		return fail("set target path", err)
	}

	store, err := link.PropertyStore()
	if err != nil {
		return fail("query property store", err)
	}
	defer store.Release()

	if err := store.SetValue(PKeyAppUserModelID, id.AUMID); err != nil {
		return fail("set AUMID property", err)
	}
	if err := store.SetValue(PKeyToastActivatorCLSID, id.BracedCLSID()); err != nil {
		return fail("set toast activator property", err)
	}
	if err := store.Commit(); err != nil {
		return fail("commit property store", err)
	}
	if err := link.Persist(path); err != nil {
		return fail("persist shortcut", err)
	}

	m.logger.Info("Shortcut created", zap.String("path", path))
	return path, nil
}

// Inspect reads the shortcut back. A missing file is reported through
// Present=false, not as an error.
func (m *ShortcutManager) Inspect(id Identity) (ShortcutStatus, error) {
	path, err := m.Path(id.DisplayName())
	if err != nil {
		return ShortcutStatus{}, err
	}
	status := ShortcutStatus{Path: path}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return status, nil
		}
		return status, &IoError{Op: "stat", Path: path, Err: err}
	}
	status.Present = true

	link, err := m.links.LoadShellLink(path)
	if err != nil {
		return status, &PlatformError{Step: "load shortcut", Path: path, Err: err}
	}
	defer link.Release()

	if status.Target, err = link.TargetPath(); err != nil {
		return status, &PlatformError{Step: "read target path", Path: path, Err: err}
	}
	store, err := link.PropertyStore()
	if err != nil {
		return status, &PlatformError{Step: "query property store", Path: path, Err: err}
	}
	defer store.Release()

	if status.AUMID, err = store.Value(PKeyAppUserModelID); err != nil {
		return status, &PlatformError{Step: "read AUMID property", Path: path, Err: err}
	}
	if status.ActivatorCLSID, err = store.Value(PKeyToastActivatorCLSID); err != nil {
		return status, &PlatformError{Step: "read toast activator property", Path: path, Err: err}
	}
	return status, nil
}
