package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Guliveer/toastreg/notification"
)

func newRegisterCmd(d deps, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create the shortcut and COM activation server entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd, d, true)
			if err != nil {
				return err
			}
			defer logger.Sync()

			svc, err := d.newService(cfg, logger)
			if err != nil {
				return err
			}
			id := notification.NewIdentity(cfg.Identity.AUMID, cfg.Identity.CLSID, cfg.Identity.AppName)
			path, err := svc.Register(id.AUMID, id.CLSID, id.AppName)
			if err != nil {
				logger.Error("Registration failed", zap.Error(err))
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "  ✓ Registered COM server %s\n", id.BracedCLSID())
			fmt.Fprintf(out, "  ✓ Created shortcut → %s\n", path)
			fmt.Fprintf(out, "\nDone! %s can now raise toast notifications as %s.\n", id.AppName, id.AUMID)
			return nil
		},
	}
}

func newDeregisterCmd(d deps, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "deregister",
		Short: "Remove what register created (same identity required)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd, d, true)
			if err != nil {
				return err
			}
			defer logger.Sync()

			svc, err := d.newService(cfg, logger)
			if err != nil {
				return err
			}
			id := notification.NewIdentity(cfg.Identity.AUMID, cfg.Identity.CLSID, cfg.Identity.AppName)
			if err := svc.Deregister(id.AUMID, id.CLSID, id.AppName); err != nil {
				logger.Error("Deregistration failed", zap.Error(err))
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "  ✓ Removed COM server %s\n", id.BracedCLSID())
			fmt.Fprintf(out, "  ✓ Removed shortcut for %s\n", id.AppName)
			return nil
		},
	}
}

func newStatusCmd(d deps, opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Read the shortcut and registry entries back",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd, d, true)
			if err != nil {
				return err
			}
			defer logger.Sync()

			svc, err := d.newService(cfg, logger)
			if err != nil {
				return err
			}
			st, err := svc.Status(cfg.Identity)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					State      string   `json:"state"`
					Mismatches []string `json:"mismatches,omitempty"`
					notification.Status
				}{st.State().String(), st.Mismatches(), st})
			}

			fmt.Fprintf(out, "State: %s\n\n", st.State())
			fmt.Fprintf(out, "Shortcut  %s\n", st.Shortcut.Path)
			if st.Shortcut.Present {
				fmt.Fprintf(out, "  target     %s\n", st.Shortcut.Target)
				fmt.Fprintf(out, "  aumid      %s\n", st.Shortcut.AUMID)
				fmt.Fprintf(out, "  activator  %s\n", st.Shortcut.ActivatorCLSID)
			} else {
				fmt.Fprintln(out, "  (absent)")
			}
			fmt.Fprintf(out, "Registry  HKCU\\%s\n", st.Server.Path)
			if st.Server.Present {
				fmt.Fprintf(out, "  AppID      %s\n", st.Server.AppID)
				fmt.Fprintf(out, "  command    %s\n", st.Server.Command)
				fmt.Fprintf(out, "  surrogate  %t\n", st.Server.Surrogate)
			} else {
				fmt.Fprintln(out, "  (absent)")
			}
			for _, m := range st.Mismatches() {
				fmt.Fprintf(out, "  ! %s\n", m)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the status as JSON")
	return cmd
}
