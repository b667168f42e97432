package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codepomodoro/internal/core/model"
	"codepomodoro/internal/protocol"
)

func snapshotOf(mutate func(*model.SessionState)) *model.Snapshot {
	config := model.DefaultConfig()
	state := model.DefaultState(config)
	if mutate != nil {
		mutate(&state)
	}
	return &model.Snapshot{State: state, Config: config}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "25:00", FormatClock(1500))
	assert.Equal(t, "04:05", FormatClock(245))
	assert.Equal(t, "00:00", FormatClock(-3))
	assert.Equal(t, "120:00", FormatClock(7200))
}

func TestCompactLoading(t *testing.T) {
	compact := Compact(nil)
	assert.True(t, compact.Loading)
	assert.Equal(t, "🍅 --:--", compact.Label)
	assert.Equal(t, protocol.CommandStart, compact.ClickIntent)
}

func TestCompact(t *testing.T) {
	compact := Compact(snapshotOf(func(state *model.SessionState) {
		state.CurrentSession = model.SessionShortBreak
		state.TimeRemaining = 61
		state.CompletedWorkSessions = 2
	}))

	assert.Equal(t, "☕ 01:01", compact.Label)
	assert.Equal(t, "CodePomodoro: Short Break (2/4)", compact.Tooltip)
	assert.Equal(t, protocol.CommandStart, compact.ClickIntent)
	assert.True(t, compact.Visible)
	assert.Equal(t, 100, compact.Priority)

	running := Compact(snapshotOf(func(state *model.SessionState) { state.IsRunning = true }))
	assert.Equal(t, protocol.CommandPause, running.ClickIntent)

	long := Compact(snapshotOf(func(state *model.SessionState) { state.CurrentSession = model.SessionLongBreak }))
	assert.Equal(t, "🛌", long.Icon)
}

func TestCompactHonorsVisibility(t *testing.T) {
	snapshot := snapshotOf(nil)
	snapshot.Config.ShowInStatusBar = false
	assert.False(t, Compact(snapshot).Visible)
}

func TestPanelLoading(t *testing.T) {
	panel := Panel(nil)
	assert.True(t, panel.Loading)
	assert.Equal(t, "--:--", panel.Countdown)
	assert.Equal(t, "Loading...", panel.PhaseLabel)
	assert.Equal(t, "-/-", panel.Counter)
	require.Len(t, panel.QuickStart, 3)
	assert.Equal(t, "-- min", panel.QuickStart[0].Detail)
}

func TestPanelProgress(t *testing.T) {
	panel := Panel(snapshotOf(func(state *model.SessionState) { state.TimeRemaining = 750 }))
	assert.Equal(t, 50.0, panel.Progress)
	assert.Equal(t, "12:30", panel.Countdown)

	zero := Panel(snapshotOf(func(state *model.SessionState) { state.SessionDuration = 0 }))
	assert.Equal(t, 0.0, zero.Progress)
}

func TestPanelToggleButton(t *testing.T) {
	idle := Panel(snapshotOf(nil))
	assert.Equal(t, Button{Label: "Start", Intent: protocol.CommandStart}, idle.Toggle)

	running := Panel(snapshotOf(func(state *model.SessionState) { state.IsRunning = true }))
	assert.Equal(t, Button{Label: "Pause", Intent: protocol.CommandPause}, running.Toggle)

	paused := Panel(snapshotOf(func(state *model.SessionState) { state.IsPaused = true }))
	assert.Equal(t, Button{Label: "Resume", Intent: protocol.CommandStart}, paused.Toggle)
}

func TestPanelButtonsMapToCommands(t *testing.T) {
	panel := Panel(snapshotOf(nil))

	assert.Equal(t, protocol.CommandReset, panel.Reset.Intent)
	assert.Equal(t, protocol.CommandSkip, panel.Skip.Intent)
	assert.Equal(t, protocol.CommandSettings, panel.Settings.Intent)
	assert.Equal(t, []Button{
		{Label: "Work", Icon: "🍅", Detail: "25 min", Intent: protocol.CommandStartWork},
		{Label: "Short Break", Icon: "☕", Detail: "5 min", Intent: protocol.CommandStartShortBreak},
		{Label: "Long Break", Icon: "🛌", Detail: "15 min", Intent: protocol.CommandStartLongBreak},
	}, panel.QuickStart)
}
