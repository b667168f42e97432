package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"codepomodoro/internal/core/model"
	"codepomodoro/internal/core/timekeeper"
	"codepomodoro/internal/protocol"
	"codepomodoro/internal/realtime"
	"codepomodoro/internal/ui/tui"
	"codepomodoro/internal/ui/view"
)

const (
	requestTimeout = 5 * time.Second
	statsDays      = 7
)

type controlCommand struct {
	use     string
	short   string
	command string
}

var controlCommands = []controlCommand{
	{use: "start", short: "Start or resume the current phase", command: protocol.CommandStart},
	{use: "pause", short: "Pause the running phase", command: protocol.CommandPause},
	{use: "toggle", short: "Start when stopped, pause when running", command: protocol.CommandToggle},
	{use: "reset", short: "Restore the full duration of the current phase", command: protocol.CommandReset},
	{use: "skip", short: "Abandon the current phase and move to the next", command: protocol.CommandSkip},
	{use: "work", short: "Start a work phase now", command: protocol.CommandStartWork},
	{use: "short-break", short: "Start a short break now", command: protocol.CommandStartShortBreak},
	{use: "long-break", short: "Start a long break now", command: protocol.CommandStartLongBreak},
}

func newControlCmds(opts *rootOptions) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(controlCommands))
	for _, control := range controlCommands {
		cmds = append(cmds, &cobra.Command{
			Use:   control.use,
			Short: control.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return sendCommand(cmd.Context(), cmd.OutOrStdout(), opts.address, control.command)
			},
		})
	}
	return cmds
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the state of the running timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sendCommand(cmd.Context(), cmd.OutOrStdout(), opts.address, protocol.CommandWebviewReady)
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print completed pomodoro statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			stats, err := remoteStats(ctx, opts.address)
			if errors.Is(err, realtime.ErrNoInstance) {
				opts.logger.Debug("no running instance, reading history", "error", err)
				stats, err = localStats(ctx, opts)
			}
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), formatStats(stats))
			return err
		},
	}
}

func newQuickStartCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "quick-start [work|shortBreak|longBreak]",
		Short:     "Jump to a phase, choosing it interactively when omitted",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: sessionNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			var session model.SessionType
			if len(args) == 1 {
				parsed, err := model.ParseSessionType(args[0])
				if err != nil {
					return err
				}
				session = parsed
			} else {
				settings, err := opts.openSettings()
				if err != nil {
					return err
				}
				chosen, ok, err := tui.PickSession(settings.Config())
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				session = chosen
			}
			return sendCommand(cmd.Context(), cmd.OutOrStdout(), opts.address, protocol.SessionCommand(session))
		},
	}
}

func sessionNames() []string {
	names := make([]string, 0, len(model.SessionTypes()))
	for _, session := range model.SessionTypes() {
		names = append(names, string(session))
	}
	return names
}

func sendCommand(ctx context.Context, out io.Writer, address, command string) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	client, err := realtime.Dial(ctx, address)
	if err != nil {
		return err
	}
	defer client.Close()

	snapshot, err := client.Do(ctx, command)
	if err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}
	_, err = io.WriteString(out, formatStatus(snapshot))
	return err
}

func remoteStats(ctx context.Context, address string) (model.Stats, error) {
	client, err := realtime.Dial(ctx, address)
	if err != nil {
		return model.Stats{}, err
	}
	defer client.Close()
	return client.Stats(ctx)
}

func localStats(ctx context.Context, opts *rootOptions) (model.Stats, error) {
	store, err := opts.openStore(ctx)
	if err != nil {
		return model.Stats{}, err
	}
	defer store.Close()

	stats, err := store.Stats(ctx, time.Now(), statsDays)
	if err != nil {
		return model.Stats{}, err
	}
	state, found, err := store.Load(ctx, timekeeper.DefaultStateKey)
	if err != nil {
		return model.Stats{}, err
	}
	if found {
		stats.DailyPomodoros = state.DailyPomodoros
		stats.CompletedWorkSessions = state.CompletedWorkSessions
		stats.TotalWorkSessions = state.TotalWorkSessions
	}
	return stats, nil
}

func formatStatus(snapshot model.Snapshot) string {
	compact := view.Compact(&snapshot)
	panel := view.Panel(&snapshot)

	status := "idle"
	switch {
	case panel.Running:
		status = "running"
	case panel.Paused:
		status = "paused"
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "%s  %s\n", compact.Label, status)
	fmt.Fprintf(&builder, "%s\n", compact.Tooltip)
	fmt.Fprintf(&builder, "progress %.0f%%  today %d\n", panel.Progress, panel.DailyPomodoros)
	return builder.String()
}

func formatStats(stats model.Stats) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "today   %d\n", stats.Today)
	fmt.Fprintf(&builder, "total   %d\n", stats.Total)
	fmt.Fprintf(&builder, "cycle   %d/%d\n", stats.CompletedWorkSessions, stats.TotalWorkSessions)
	for _, day := range stats.LastDays {
		fmt.Fprintf(&builder, "%s  %s\n", day.Day, strings.Repeat("🍅", day.Count))
	}
	return builder.String()
}
