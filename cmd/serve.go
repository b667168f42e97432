package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codepomodoro/internal/platform"
	"codepomodoro/internal/ui/notify"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the timer headless and serve the web panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			guard, err := platform.AcquireAddress(opts.address)
			if err != nil {
				return err
			}
			defer func() { _ = guard.Release() }()

			c, err := openCore(ctx, opts, notify.Log{Logger: opts.logger})
			if err != nil {
				return err
			}
			defer c.Close()

			openSettings := func() {
				opts.logger.Info("edit the settings file to change durations", "path", c.settings.Path())
			}

			go c.watchSettings(ctx)
			c.keeper.Refresh()

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s panel: %s\n", appName, panelURL(guard.Address()))
			c.serve(ctx, guard, openSettings)
			return nil
		},
	}
}
