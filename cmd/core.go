package main

import (
	"context"
	"fmt"
	"log/slog"

	"codepomodoro/internal/core/model"
	"codepomodoro/internal/core/timekeeper"
	"codepomodoro/internal/platform"
	"codepomodoro/internal/realtime"
	"codepomodoro/internal/storage"
	"codepomodoro/resources"
)

const eventBuffer = 16

// core is the engine with its settings provider and persisted store.
type core struct {
	settings *storage.Settings
	store    *storage.SQLiteStore
	keeper   *timekeeper.TimeKeeper
	logger   *slog.Logger
}

func (opts *rootOptions) settingsPath() (string, error) {
	if opts.configPath != "" {
		return opts.configPath, nil
	}
	return storage.DefaultSettingsPath(appName)
}

func (opts *rootOptions) statePath() (string, error) {
	dataDir := opts.dataDir
	if dataDir == "" {
		var err error
		dataDir, err = storage.DefaultDataDir(appName)
		if err != nil {
			return "", err
		}
	}
	return storage.StatePath(dataDir), nil
}

func (opts *rootOptions) openSettings() (*storage.Settings, error) {
	path, err := opts.settingsPath()
	if err != nil {
		return nil, err
	}
	return storage.OpenSettings(path)
}

func (opts *rootOptions) openStore(ctx context.Context) (*storage.SQLiteStore, error) {
	path, err := opts.statePath()
	if err != nil {
		return nil, err
	}
	return storage.OpenSQLite(ctx, path)
}

func openCore(ctx context.Context, opts *rootOptions, notifier timekeeper.Notifier) (*core, error) {
	settings, err := opts.openSettings()
	if err != nil {
		return nil, err
	}
	store, err := opts.openStore(ctx)
	if err != nil {
		return nil, err
	}

	keeper := timekeeper.New(timekeeper.Dependencies{
		Settings: settings,
		Store:    store,
		History:  store,
		Notifier: notifier,
	}, timekeeper.Config{Logger: opts.logger})

	opts.logger.Debug("engine ready",
		"settings", settings.Path(),
		"session", keeper.Snapshot().State.CurrentSession,
	)
	return &core{settings: settings, store: store, keeper: keeper, logger: opts.logger}, nil
}

// watchSettings forwards settings file changes to the engine until ctx is done.
func (c *core) watchSettings(ctx context.Context) {
	if err := c.settings.Watch(ctx, c.logger, c.keeper.OnConfigurationChanged); err != nil {
		c.logger.Error("watch settings", "path", c.settings.Path(), "error", err)
	}
}

// saveConfig writes config to the settings file and applies it.
func (c *core) saveConfig(config model.Config) error {
	if _, err := c.settings.Update(func(current *model.Config) { *current = config }); err != nil {
		return err
	}
	c.keeper.OnConfigurationChanged()
	return nil
}

func (c *core) server(openSettings func()) *realtime.Server {
	return realtime.New(c.keeper, realtime.Options{
		Stats:        c.store,
		OpenSettings: openSettings,
		Static:       resources.PanelHandler(),
		Logger:       c.logger,
	})
}

// serve exposes the panel and control protocol on the instance listener
// until ctx is done.
func (c *core) serve(ctx context.Context, guard *platform.InstanceGuard, openSettings func()) {
	c.logger.Info("panel available", "url", panelURL(guard.Address()))
	if err := c.server(openSettings).Serve(ctx, guard.Listener()); err != nil {
		c.logger.Error("control server stopped", "error", err)
	}
}

// forward subscribes to the engine and delivers every published snapshot
// to render on its own goroutine until ctx is done or the engine closes.
func (c *core) forward(ctx context.Context, render func(model.Snapshot)) {
	events := c.keeper.Subscribe(eventBuffer)
	go func() {
		defer c.keeper.Unsubscribe(events)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				render(event.Snapshot)
			}
		}
	}()
}

func (c *core) Close() {
	c.keeper.Close()
	if err := c.store.Close(); err != nil {
		c.logger.Warn("close store", "error", err)
	}
}

func panelURL(address string) string {
	return fmt.Sprintf("http://%s/", address)
}
