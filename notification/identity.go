package notification

import (
	"errors"
	"fmt"
)

// ErrInvalidIdentity is returned when a required identity field is empty.
var ErrInvalidIdentity = errors.New("invalid identity")

// Identity is the (aumid, clsid, app_name) triple that keys both records.
// Deregistration only finds what registration created when the same triple is
// supplied; nothing is remembered between calls.
type Identity struct {
	// AUMID is the Application User Model ID, e.g. "com.example.app".
	AUMID string `yaml:"aumid" json:"aumid"`
	// CLSID is the activator GUID in textual form, without braces.
	CLSID string `yaml:"clsid" json:"clsid"`
	// AppName is the shortcut display name. Defaults to AUMID.
	AppName string `yaml:"app_name" json:"app_name"`
}

// NewIdentity builds an Identity, defaulting appName to aumid when empty.
func NewIdentity(aumid, clsid, appName string) Identity {
	if appName == "" {
		appName = aumid
	}
	return Identity{AUMID: aumid, CLSID: clsid, AppName: appName}
}

// Validate checks that AUMID and CLSID are present. GUID syntax is not
// checked; a malformed CLSID surfaces as a registry or COM failure.
func (id Identity) Validate() error {
	if id.AUMID == "" {
		return fmt.Errorf("%w: aumid is required", ErrInvalidIdentity)
	}
	if id.CLSID == "" {
		return fmt.Errorf("%w: clsid is required", ErrInvalidIdentity)
	}
	return nil
}

// DisplayName returns AppName, falling back to AUMID.
func (id Identity) DisplayName() string {
	if id.AppName == "" {
		return id.AUMID
	}
	return id.AppName
}

// BracedCLSID returns the CLSID in registry/property syntax: {clsid}.
func (id Identity) BracedCLSID() string {
	return "{" + id.CLSID + "}"
}
