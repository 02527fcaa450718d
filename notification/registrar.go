package notification

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	clsidRoot         = `Software\Classes\CLSID`
	appIDRoot         = `Software\Classes\AppID`
	localServerSubkey = "LocalServer32"

	// ActivationFlag is appended to the executable path in LocalServer32 so
	// the process can tell it was launched by a toast activation.
	ActivationFlag = "-ToastActivated"
)

// ServerStatus is what Inspect reads back from the registry.
type ServerStatus struct {
	Path      string `json:"path"`
	Present   bool   `json:"present"`
	AppID     string `json:"app_id,omitempty"`
	Command   string `json:"command,omitempty"`
	Surrogate bool   `json:"surrogate"`
}

// CLSIDKeyPath returns Software\Classes\CLSID\{clsid}.
func CLSIDKeyPath(clsid string) string {
	return clsidRoot + `\{` + clsid + `}`
}

// AppIDKeyPath returns Software\Classes\AppID\{clsid}.
func AppIDKeyPath(clsid string) string {
	return appIDRoot + `\{` + clsid + `}`
}

// ActivationCommand returns the LocalServer32 default value for exe:
// the quoted path followed by a single space and the activation flag.
func ActivationCommand(exe string) string {
	return `"` + exe + `" ` + ActivationFlag
}

// LaunchedByActivation reports whether args (without the program name)
// carry ActivationFlag, i.e. the shell started the process for a toast.
func LaunchedByActivation(args []string) bool {
	for _, a := range args {
		if strings.EqualFold(a, ActivationFlag) {
			return true
		}
	}
	return false
}

// Registrar creates and removes the per-user local activation server entries
// for a toast activator CLSID.
type Registrar struct {
	keys   KeyStore
	env    Environment
	logger *zap.Logger
}

// NewRegistrar creates a registrar writing through keys.
func NewRegistrar(keys KeyStore, env Environment, logger *zap.Logger) *Registrar {
	return &Registrar{
		keys:   keys,
		env:    env,
		logger: logger.Named("registrar"),
	}
}

// Apply moves the activation-server record for clsid in the direction of op.
func (r *Registrar) Apply(op Operation, clsid string) error {
	switch op {
	case Create:
		return r.create(clsid)
	case Remove:
		return r.remove(clsid)
	default:
		return fmt.Errorf("registrar: unsupported operation %s", op)
	}
}

func (r *Registrar) create(clsid string) error {
	r.logger.Debug("Registering COM server", zap.String("clsid", clsid))

	clsidPath := CLSIDKeyPath(clsid)
	if err := r.keys.CreateKey(clsidPath); err != nil {
		return r.fail("create", clsidPath, err)
	}
	if err := r.keys.SetString(clsidPath, "AppID", clsid); err != nil {
		return r.fail("write", clsidPath, err)
	}

	exe, err := r.env.Executable()
	if err != nil {
		return &IoError{Op: "resolve executable", Err: err}
	}
	serverPath := clsidPath + `\` + localServerSubkey
	if err := r.keys.CreateKey(serverPath); err != nil {
		return r.fail("create", serverPath, err)
	}
	if err := r.keys.SetString(serverPath, "", ActivationCommand(exe)); err != nil {
		return r.fail("write", serverPath, err)
	}

	appIDPath := AppIDKeyPath(clsid)
	if err := r.keys.CreateKey(appIDPath); err != nil {
		return r.fail("create", appIDPath, err)
	}
	if err := r.keys.SetString(appIDPath, "DllSurrogate", ""); err != nil {
		return r.fail("write", appIDPath, err)
	}

	r.logger.Info("COM server registered successfully", zap.String("clsid", clsid))
	return nil
}

func (r *Registrar) remove(clsid string) error {
	r.logger.Debug("Deleting COM server", zap.String("clsid", clsid))

	clsidPath := CLSIDKeyPath(clsid)
	if err := r.keys.DeleteTree(clsidPath); err != nil {
		return r.fail("delete", clsidPath, err)
	}

	// Older registrations may predate the AppID entry.
	appIDPath := AppIDKeyPath(clsid)
	if err := r.keys.DeleteTree(appIDPath); err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			return r.fail("delete", appIDPath, err)
		}
		r.logger.Debug("AppID key already absent", zap.String("path", appIDPath))
	}

	r.logger.Info("COM server deleted successfully", zap.String("clsid", clsid))
	return nil
}

func (r *Registrar) fail(op, path string, err error) error {
	r.logger.Error("Registry operation failed",
		zap.String("op", op),
		zap.String("path", path),
		zap.Error(err))
	return &RegistryError{Op: op, Path: path, Err: err}
}

// Exists reports whether the CLSID key for clsid is present.
func (r *Registrar) Exists(clsid string) (bool, error) {
	clsidPath := CLSIDKeyPath(clsid)
	ok, err := r.keys.KeyExists(clsidPath)
	if err != nil {
		return false, &RegistryError{Op: "open", Path: clsidPath, Err: err}
	}
	return ok, nil
}

// Inspect reads the activation-server record back. A missing CLSID key is
// reported through Present=false, not as an error.
func (r *Registrar) Inspect(clsid string) (ServerStatus, error) {
	clsidPath := CLSIDKeyPath(clsid)
	status := ServerStatus{Path: clsidPath}

	ok, err := r.Exists(clsid)
	if err != nil || !ok {
		return status, err
	}
	status.Present = true

	if status.AppID, err = r.optionalString(clsidPath, "AppID"); err != nil {
		return status, err
	}
	if status.Command, err = r.optionalString(clsidPath+`\`+localServerSubkey, ""); err != nil {
		return status, err
	}
	if status.Surrogate, err = r.keys.KeyExists(AppIDKeyPath(clsid)); err != nil {
		return status, &RegistryError{Op: "open", Path: AppIDKeyPath(clsid), Err: err}
	}
	return status, nil
}

func (r *Registrar) optionalString(path, name string) (string, error) {
	v, err := r.keys.GetString(path, name)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return "", nil
		}
		return "", &RegistryError{Op: "read", Path: path, Err: err}
	}
	return v, nil
}
