package panel

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"codepomodoro/internal/core/model"
	"codepomodoro/internal/protocol"
	"codepomodoro/internal/ui/view"
)

func snapshot(mutate func(*model.SessionState)) *model.Snapshot {
	config := model.DefaultConfig()
	state := model.DefaultState(config)
	if mutate != nil {
		mutate(&state)
	}
	return &model.Snapshot{State: state, Config: config}
}

func TestPanelStartsLoading(t *testing.T) {
	panel := New(test.NewTempApp(t), nil)

	assert.Equal(t, "--:--", panel.countdown.Text)
	assert.Equal(t, "Loading...", panel.phase.Text)
	assert.True(t, panel.toggle.Disabled())
}

func TestPanelApply(t *testing.T) {
	panel := New(test.NewTempApp(t), nil)

	panel.Apply(view.Panel(snapshot(func(state *model.SessionState) {
		state.TimeRemaining = 750
		state.IsRunning = true
		state.CompletedWorkSessions = 1
		state.DailyPomodoros = 3
	})))

	assert.Equal(t, "12:30", panel.countdown.Text)
	assert.Equal(t, 50.0, panel.progress.Value)
	assert.Equal(t, "🍅 Work (1/4)", panel.phase.Text)
	assert.Equal(t, "Today: 3 🍅", panel.daily.Text)
	assert.Equal(t, "Pause", panel.toggle.Text)
	assert.False(t, panel.toggle.Disabled())
	assert.Equal(t, "☕  Short Break · 5 min", panel.quickStart[1].Text)
}

func TestPanelButtonsDispatch(t *testing.T) {
	var commands []string
	panel := New(test.NewTempApp(t), func(command string) { commands = append(commands, command) })
	panel.Apply(view.Panel(snapshot(func(state *model.SessionState) { state.IsPaused = true })))

	assert.Equal(t, "Resume", panel.toggle.Text)
	test.Tap(panel.toggle)
	test.Tap(panel.reset)
	test.Tap(panel.skip)
	test.Tap(panel.quickStart[0])
	test.Tap(panel.quickStart[2])
	test.Tap(panel.settings)

	assert.Equal(t, []string{
		protocol.CommandStart,
		protocol.CommandReset,
		protocol.CommandSkip,
		protocol.CommandStartWork,
		protocol.CommandStartLongBreak,
		protocol.CommandSettings,
	}, commands)
}
