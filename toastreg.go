// Package toastreg registers the running executable for Windows toast
// notifications. It wires the notification core to the Windows adapters;
// hosts that need their own fakes or policy use package notification
// directly.
//
// The shortcut target and the COM LocalServer32 command both point at the
// executable that calls Register. When a toast is activated the shell starts
// that executable with notification.ActivationFlag; use
// notification.LaunchedByActivation to detect it.
package toastreg

import (
	"go.uber.org/zap"

	"github.com/Guliveer/toastreg/internal/platform"
	"github.com/Guliveer/toastreg/notification"
)

// ErrUnsupported is returned on operating systems other than Windows.
var ErrUnsupported = platform.ErrUnsupported

// New returns a notification service backed by the current user's Start
// Menu and registry hive. A nil logger discards log output.
func New(opts notification.Options, logger *zap.Logger) (*notification.Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p, err := platform.New(logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("Platform ready", zap.String("platform", p.Name()))
	return notification.NewService(
		p.Runtime,
		notification.NewRegistrar(p.Keys, p.Env, logger),
		notification.NewShortcutManager(p.Links, p.Env, logger),
		opts,
		logger,
	), nil
}

// Register creates the shortcut and activation-server records for the
// running executable and returns the shortcut path. appName defaults to aumid.
func Register(aumid, clsid, appName string) (string, error) {
	svc, err := New(notification.Options{}, nil)
	if err != nil {
		return "", err
	}
	return svc.Register(aumid, clsid, appName)
}

// Deregister removes what Register created for the same identity.
func Deregister(aumid, clsid, appName string) error {
	svc, err := New(notification.Options{}, nil)
	if err != nil {
		return err
	}
	return svc.Deregister(aumid, clsid, appName)
}
