package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codepomodoro/internal/platform"
)

func newAutostartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Manage launching the desktop timer at login",
	}

	service := platform.NewService()

	cmd.AddCommand(&cobra.Command{
		Use:   "enable",
		Short: "Launch the timer in the tray at login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			execPath, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve executable: %w", err)
			}
			if err := service.EnableAutostart(appName, []string{execPath, "run", "--hidden"}); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "autostart enabled")
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Stop launching the timer at login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := service.DisableAutostart(appName); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "autostart disabled")
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether autostart is enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enabled, err := service.AutostartEnabled(appName)
			if err != nil {
				return err
			}
			state := "disabled"
			if enabled {
				state = "enabled"
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "autostart", state)
			return err
		},
	})
	return cmd
}
