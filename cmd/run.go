package main

import (
	"context"
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/spf13/cobra"

	"codepomodoro/internal/core/model"
	"codepomodoro/internal/platform"
	"codepomodoro/internal/protocol"
	"codepomodoro/internal/ui/notify"
	"codepomodoro/internal/ui/overlay"
	"codepomodoro/internal/ui/panel"
	"codepomodoro/internal/ui/preferences"
	"codepomodoro/internal/ui/tray"
	"codepomodoro/resources"
)

const appID = "com.codepomodoro.app"

func newRunCmd(opts *rootOptions) *cobra.Command {
	var hidden bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the desktop timer with tray indicator and panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDesktop(cmd.Context(), opts, !hidden)
		},
	}
	cmd.Flags().BoolVar(&hidden, "hidden", false, "start in the tray without opening the panel")
	return cmd
}

func runDesktop(ctx context.Context, opts *rootOptions, showPanel bool) error {
	logger := opts.logger

	guard, err := platform.AcquireAddress(opts.address)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			return fmt.Errorf("%w: use the tray or `codepomodoro status`", err)
		}
		return err
	}
	defer func() {
		if err := guard.Release(); err != nil {
			logger.Warn("release instance lock", "error", err)
		}
	}()

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustIcon(resources.IconActive))

	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		return errors.New("system tray is not supported by this driver")
	}

	prompt := overlay.New(fyneApp, appName)
	notifier := notify.Multi{
		notify.NewDesktop(fyneApp, appName, prompt, logger),
		notify.Log{Logger: logger},
	}

	c, err := openCore(ctx, opts, notifier)
	if err != nil {
		return err
	}
	defer c.Close()

	prefs := preferences.New(fyneApp, c.settings.Config(), c.saveConfig)
	openSettings := func() {
		config := c.settings.Config()
		fyne.Do(func() {
			prefs.UpdateConfig(config)
			prefs.Show()
		})
	}

	dispatcher := protocol.Dispatcher{Engine: c.keeper, OpenSettings: openSettings}
	dispatch := func(command string) {
		if err := dispatcher.Dispatch(command); err != nil {
			logger.Warn("dispatch", "command", command, "error", err)
		}
	}

	window := panel.New(fyneApp, dispatch)
	indicator := tray.New(desktopApp, tray.Icons{
		Active: resources.MustIcon(resources.IconActive),
		Paused: resources.MustIcon(resources.IconPaused),
	}, tray.Callbacks{
		OnIntent:      dispatch,
		OnOpenPanel:   window.Show,
		OnPreferences: openSettings,
		OnQuit:        fyneApp.Quit,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.serve(ctx, guard, openSettings)
	c.forward(ctx, func(snapshot model.Snapshot) {
		fyne.Do(func() { indicator.Update(&snapshot) })
		window.Update(&snapshot)
	})
	c.keeper.Refresh()

	go c.watchSettings(ctx)
	go func() {
		<-ctx.Done()
		fyne.Do(fyneApp.Quit)
	}()

	if showPanel {
		window.Show()
	}
	fyneApp.Run()
	return nil
}
