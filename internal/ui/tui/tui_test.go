package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codepomodoro/internal/core/model"
	"codepomodoro/internal/protocol"
)

func runes(value string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(value)}
}

func defaultSnapshot(mutate func(*model.SessionState)) model.Snapshot {
	config := model.DefaultConfig()
	state := model.DefaultState(config)
	if mutate != nil {
		mutate(&state)
	}
	return model.Snapshot{State: state, Config: config}
}

type recorder struct {
	commands []string
	err      error
}

func (r *recorder) dispatch(command string) error {
	r.commands = append(r.commands, command)
	return r.err
}

func press(t *testing.T, m tea.Model, msg tea.Msg) (tea.Model, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(msg)
	if cmd == nil {
		return next, nil
	}
	return next, cmd()
}

func TestModelLoadingIgnoresControls(t *testing.T) {
	rec := &recorder{}
	m := New(rec.dispatch)

	next, _ := press(t, m, runes("r"))
	assert.Empty(t, rec.commands)
	assert.Contains(t, next.View(), "--:--")
	assert.Contains(t, next.View(), "Loading...")
}

func TestModelKeysDispatchCommands(t *testing.T) {
	rec := &recorder{}
	var m tea.Model = New(rec.dispatch)
	m, _ = press(t, m, SnapshotMsg{Snapshot: defaultSnapshot(nil)})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	m, _ = press(t, m, runes("r"))
	m, _ = press(t, m, runes("n"))
	_, _ = press(t, m, runes(","))

	assert.Equal(t, []string{
		protocol.CommandStart, protocol.CommandReset, protocol.CommandSkip, protocol.CommandSettings,
	}, rec.commands)
}

func TestModelTogglePausesWhenRunning(t *testing.T) {
	rec := &recorder{}
	var m tea.Model = New(rec.dispatch)
	m, _ = press(t, m, SnapshotMsg{Snapshot: defaultSnapshot(func(state *model.SessionState) {
		state.IsRunning = true
		state.TimeRemaining = 61
	})})

	assert.Contains(t, m.View(), "01:01")
	assert.Contains(t, m.View(), "running")

	_, _ = press(t, m, runes("s"))
	assert.Equal(t, []string{protocol.CommandPause}, rec.commands)
}

func TestModelQuickStartMenu(t *testing.T) {
	rec := &recorder{}
	var m tea.Model = New(rec.dispatch)
	m, _ = press(t, m, SnapshotMsg{Snapshot: defaultSnapshot(nil)})

	m, _ = press(t, m, runes("q"))
	view := m.View()
	assert.Contains(t, view, "Quick Start")
	assert.Contains(t, view, "Short Break")
	assert.Contains(t, view, "15 min")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{protocol.CommandStartShortBreak}, rec.commands)

	m, _ = press(t, m, runes("q"))
	_, _ = press(t, m, runes("3"))
	assert.Equal(t, []string{protocol.CommandStartShortBreak, protocol.CommandStartLongBreak}, rec.commands)
}

func TestModelShowsNoticeAndErrors(t *testing.T) {
	rec := &recorder{err: errors.New("instance gone")}
	var m tea.Model = New(rec.dispatch)
	m, _ = press(t, m, SnapshotMsg{Snapshot: defaultSnapshot(nil)})
	m, _ = press(t, m, NoticeMsg("⏭️ Skipped to Short Break."))

	m, msg := press(t, m, runes("r"))
	require.NotNil(t, msg)
	m, _ = press(t, m, msg)

	view := m.View()
	assert.Contains(t, view, "Skipped to Short Break")
	assert.Contains(t, view, "instance gone")
}

func TestModelQuit(t *testing.T) {
	m := New(nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestPicker(t *testing.T) {
	var p tea.Model = NewPicker(model.DefaultConfig())
	assert.Contains(t, p.View(), "25 min")

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyUp})
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	session, ok := p.(Picker).Chosen()
	assert.True(t, ok)
	assert.Equal(t, model.SessionLongBreak, session)
}

func TestPickerCancel(t *testing.T) {
	var p tea.Model = NewPicker(model.DefaultConfig())
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyEsc})

	_, ok := p.(Picker).Chosen()
	assert.False(t, ok)
}
