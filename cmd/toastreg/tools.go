package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Guliveer/toastreg/internal/config"
	"github.com/Guliveer/toastreg/internal/preflight"
)

func newDoctorCmd(d deps, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that this machine can host a toast registration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := opts.load(cmd, d, false)
			if err != nil {
				return err
			}
			defer logger.Sync()

			results := d.newChecks(logger).RunAll(cmd.Context())
			out := cmd.OutOrStdout()
			for _, r := range results {
				fmt.Fprintf(out, "  %s %-12s %s\n", severityMark(r.Severity), r.Name, r.Detail)
			}
			if preflight.Worst(results) == preflight.Fail {
				return fmt.Errorf("one or more checks failed")
			}
			return nil
		},
	}
}

func severityMark(s preflight.Severity) string {
	switch s {
	case preflight.OK:
		return "✓"
	case preflight.Warn:
		return "!"
	default:
		return "✗"
	}
}

func newCLSIDCmd() *cobra.Command {
	var braced bool

	cmd := &cobra.Command{
		Use:   "clsid",
		Short: "Generate a new random activator CLSID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.ToUpper(uuid.NewString())
			if braced {
				id = "{" + id + "}"
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&braced, "braced", false, "wrap the CLSID in braces")
	return cmd
}

func newInitCmd(d deps, opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file for an application identity",
		Long: `init writes the current configuration (flags, TOASTREG_* variables and
defaults) to --config or the default config path. A CLSID is generated when
none is given, so the same identity can be reused for deregister later.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd, d, false)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if cfg.Identity.CLSID == "" {
				cfg.Identity.CLSID = strings.ToUpper(uuid.NewString())
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			path := opts.configPath
			if path == "" {
				if path, err = config.DefaultPath(); err != nil {
					return err
				}
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.WriteConfig(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  ✓ Config written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
