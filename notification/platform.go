package notification

// The core drives the OS through the capability interfaces below. Production
// implementations live in internal/platform; tests substitute fakes.

// ToastPropertySet is the property-set identifier shared by the AUMID and
// toast activator properties of a shortcut.
const ToastPropertySet = "{9F4C2855-9F79-4B39-A8D0-E1D42DE1D5F3}"

// PropertyKey addresses a value in a shell property store.
type PropertyKey struct {
	FormatID string
	PID      uint32
}

var (
	// PKeyAppUserModelID carries the AUMID.
	PKeyAppUserModelID = PropertyKey{FormatID: ToastPropertySet, PID: 5}
	// PKeyToastActivatorCLSID carries the braced activator CLSID.
	PKeyToastActivatorCLSID = PropertyKey{FormatID: ToastPropertySet, PID: 26}
)

// Runtime is the process-wide object-activation runtime (COM). Acquire
// initializes it in single-threaded-apartment mode; the returned release
// func tears it down and must be called exactly once.
type Runtime interface {
	Acquire() (release func(), err error)
}

// ShellLinkFactory instantiates shell-link objects.
type ShellLinkFactory interface {
	// NewShellLink creates an empty in-memory shell link.
	NewShellLink() (ShellLink, error)
	// LoadShellLink creates a shell link populated from an existing file.
	LoadShellLink(path string) (ShellLink, error)
}

// ShellLink is a shortcut object.
type ShellLink interface {
	SetTargetPath(path string) error
	TargetPath() (string, error)
	// PropertyStore returns the link's property-store capability. The caller
	// releases it.
	PropertyStore() (PropertyStore, error)
	// Persist writes the link to path, overwriting any existing file.
	Persist(path string) error
	Release()
}

// PropertyStore is the transactional key/value facility of a shell object.
// Values set are not durable until Commit.
type PropertyStore interface {
	SetValue(key PropertyKey, value string) error
	Value(key PropertyKey) (string, error)
	Commit() error
	Release()
}

// KeyStore is a per-user registry. Paths are relative to HKEY_CURRENT_USER
// and use backslash separators.
type KeyStore interface {
	// CreateKey creates the key and any missing parents. Existing keys are
	// opened without error.
	CreateKey(path string) error
	// SetString writes a string value on an existing key. An empty name
	// addresses the default value.
	SetString(path, name, value string) error
	// GetString reads a string value. Returns ErrKeyNotFound when the key or
	// value is absent.
	GetString(path, name string) (string, error)
	KeyExists(path string) (bool, error)
	// DeleteTree removes the key and everything beneath it. Returns
	// ErrKeyNotFound when the key is absent.
	DeleteTree(path string) error
}

// Environment supplies call-time facts about the running process and user.
type Environment interface {
	// Executable returns the absolute path of the running executable.
	Executable() (string, error)
	// RoamingDir returns the user's roaming application-data directory.
	RoamingDir() (string, error)
}
