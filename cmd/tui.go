package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"codepomodoro/internal/core/model"
	"codepomodoro/internal/platform"
	"codepomodoro/internal/protocol"
	"codepomodoro/internal/realtime"
	"codepomodoro/internal/ui/notify"
	"codepomodoro/internal/ui/tui"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Show the timer panel in the terminal",
		Long: "Show the timer panel in the terminal. When another instance is " +
			"running the panel attaches to it, otherwise the timer runs in this process.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !cmd.Flag("log-level").Changed {
				opts.logger = slog.New(slog.DiscardHandler)
			}

			guard, err := platform.AcquireAddress(opts.address)
			switch {
			case errors.Is(err, platform.ErrAlreadyRunning):
				opts.logger.Debug("attaching to running instance", "address", opts.address)
				return runRemoteTUI(ctx, opts.address)
			case err != nil:
				return err
			}
			defer func() { _ = guard.Release() }()
			return runLocalTUI(ctx, opts, guard)
		},
	}
}

func runLocalTUI(ctx context.Context, opts *rootOptions, guard *platform.InstanceGuard) error {
	feed := notify.NewFeed(eventBuffer)
	c, err := openCore(ctx, opts, feed)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	openSettings := func() {
		feed.Notify(fmt.Sprintf("Settings: %s", c.settings.Path()))
	}
	dispatcher := protocol.Dispatcher{Engine: c.keeper, OpenSettings: openSettings}

	snapshots := make(chan model.Snapshot, eventBuffer)
	c.forward(ctx, latest(snapshots))

	go c.serve(ctx, guard, openSettings)
	go c.watchSettings(ctx)
	c.keeper.Refresh()

	return tui.Run(ctx, tui.New(dispatcher.Dispatch), snapshots, feed.Messages())
}

func runRemoteTUI(ctx context.Context, address string) error {
	client, err := realtime.Dial(ctx, address)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	snapshots := make(chan model.Snapshot, eventBuffer)
	watchErr := make(chan error, 1)
	go func() {
		defer close(snapshots)
		watchErr <- client.Watch(ctx, latest(snapshots))
	}()

	if err := tui.Run(ctx, tui.New(client.Send), snapshots, nil); err != nil {
		return err
	}
	select {
	case err := <-watchErr:
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("connection to %s lost: %w", address, err)
		}
	default:
	}
	return nil
}

// latest returns a sender that drops the oldest pending snapshot when out
// is full.
func latest(out chan model.Snapshot) func(model.Snapshot) {
	return func(snapshot model.Snapshot) {
		for {
			select {
			case out <- snapshot:
				return
			default:
			}
			select {
			case <-out:
			default:
			}
		}
	}
}
