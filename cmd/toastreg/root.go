package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Guliveer/toastreg"
	"github.com/Guliveer/toastreg/internal/config"
	"github.com/Guliveer/toastreg/internal/platform"
	"github.com/Guliveer/toastreg/internal/preflight"
	"github.com/Guliveer/toastreg/notification"
)

// registrationService is the part of notification.Service the CLI drives.
type registrationService interface {
	Register(aumid, clsid, appName string) (string, error)
	Deregister(aumid, clsid, appName string) error
	Status(id notification.Identity) (notification.Status, error)
}

// deps holds the constructors the commands use, replaceable in tests.
type deps struct {
	newService func(cfg *config.Config, logger *zap.Logger) (registrationService, error)
	newChecks  func(logger *zap.Logger) *preflight.Registry
	newLogger  func(cfg *config.Config) *zap.Logger
	embedded   []byte
}

func defaultDeps() deps {
	return deps{
		newService: newPlatformService,
		newChecks:  newPreflightChecks,
		newLogger:  initLogger,
		embedded:   embeddedConfig,
	}
}

func newPlatformService(cfg *config.Config, logger *zap.Logger) (registrationService, error) {
	return toastreg.New(cfg.Registration, logger)
}

func newPreflightChecks(logger *zap.Logger) *preflight.Registry {
	env := platform.NewEnvironment()
	registry := preflight.NewRegistry(logger)
	registry.Register(preflight.NewOSVersionCheck())
	registry.Register(preflight.NewElevationCheck())
	registry.Register(preflight.NewRoamingDirCheck(env))
	registry.Register(preflight.NewExecutableCheck(env))
	return registry
}

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	aumid      string
	clsid      string
	appName    string
	logLevel   string
	rollback   bool
}

func newRootCmd(d deps) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "toastreg",
		Short: "Register an application for Windows toast notifications",
		Long: `toastreg creates (or removes) the Start Menu shortcut and the per-user COM
activation server entries Windows needs before an application can raise
toast notifications with its own identity and activation handler.

The shortcut and the activation server point at toastreg itself. When a toast
is clicked, Windows starts "toastreg.exe -ToastActivated", which is accepted
and logged. Applications that handle their own activations should call the
toastreg Go package from their own executable instead.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "",
		"config file (default: first of the standard search paths)")
	pf.StringVar(&opts.aumid, "aumid", "", "Application User Model ID, e.g. com.example.app")
	pf.StringVar(&opts.clsid, "clsid", "", "toast activator CLSID (GUID without braces)")
	pf.StringVar(&opts.appName, "app-name", "", "shortcut display name (default: the AUMID)")
	pf.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	pf.BoolVar(&opts.rollback, "rollback", false,
		"remove the COM server entries again if shortcut creation fails")

	root.AddCommand(
		newRegisterCmd(d, opts),
		newDeregisterCmd(d, opts),
		newStatusCmd(d, opts),
		newDoctorCmd(d, opts),
		newCLSIDCmd(),
		newInitCmd(d, opts),
	)
	return root
}

// load resolves configuration and builds the logger. When requireIdentity
// is set the configuration must name an AUMID and CLSID.
func (o *rootOptions) load(cmd *cobra.Command, d deps, requireIdentity bool) (*config.Config, *zap.Logger, error) {
	cli := config.CLIOverrides{
		AUMID:    o.aumid,
		CLSID:    o.clsid,
		AppName:  o.appName,
		LogLevel: o.logLevel,
	}
	if cmd.Flags().Changed("rollback") {
		cli.Rollback = &o.rollback
	}

	var (
		cfg *config.Config
		err error
	)
	if cmd.Flags().Changed("config") {
		cfg, err = config.LoadLayered(cli, d.embedded, o.configPath)
	} else {
		cfg, err = config.LoadLayered(cli, d.embedded)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	if requireIdentity {
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}

	logger := d.newLogger(cfg)
	if requireIdentity {
		warnOnSuspectCLSID(logger, cfg.Identity.CLSID)
	}
	return cfg, logger, nil
}

// warnOnSuspectCLSID flags values that will probably not work. The value is
// passed through unchanged either way.
func warnOnSuspectCLSID(logger *zap.Logger, clsid string) {
	if strings.HasPrefix(clsid, "{") {
		logger.Warn("CLSID is braced; braces are added automatically and will be doubled",
			zap.String("clsid", clsid))
		return
	}
	if _, err := uuid.Parse(clsid); err != nil {
		logger.Warn("CLSID is not a valid GUID; registration will likely fail",
			zap.String("clsid", clsid), zap.Error(err))
	}
}
