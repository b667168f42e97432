// Package tui renders the timer panel in the terminal with Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"codepomodoro/internal/core/model"
	"codepomodoro/internal/ui/view"
)

// SnapshotMsg delivers a new engine snapshot to the model.
type SnapshotMsg struct {
	Snapshot model.Snapshot
}

// NoticeMsg shows a transient notification line.
type NoticeMsg string

type dispatchErrMsg struct {
	err error
}

// Model is the terminal panel.
type Model struct {
	snapshot *model.Snapshot
	dispatch func(command string) error
	progress progress.Model
	help     help.Model
	keys     keyMap
	notice   string
	err      error
	menuOpen bool
	cursor   int
}

// New creates a panel model. dispatch receives the command of every
// keyboard action.
func New(dispatch func(command string) error) Model {
	return Model{
		dispatch: dispatch,
		progress: progress.New(progress.WithGradient("#e5533d", "#fab387"), progress.WithoutPercentage()),
		help:     help.New(),
		keys:     defaultKeyMap(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.progress.Width = min(msg.Width-10, 40)
		return m, nil
	case SnapshotMsg:
		snapshot := msg.Snapshot
		m.snapshot = &snapshot
		return m, nil
	case NoticeMsg:
		m.notice = string(msg)
		return m, nil
	case dispatchErrMsg:
		m.err = msg.err
		return m, nil
	case tea.KeyMsg:
		if m.menuOpen {
			return m.updateMenu(msg)
		}
		return m.updateMain(msg)
	}
	return m, nil
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rendered := view.Panel(m.snapshot)
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case rendered.Loading:
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		return m, m.send(rendered.Toggle.Intent)
	case key.Matches(msg, m.keys.Reset):
		return m, m.send(rendered.Reset.Intent)
	case key.Matches(msg, m.keys.Skip):
		return m, m.send(rendered.Skip.Intent)
	case key.Matches(msg, m.keys.Settings):
		return m, m.send(rendered.Settings.Intent)
	case key.Matches(msg, m.keys.QuickStart):
		m.menuOpen = true
		m.cursor = 0
		return m, nil
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	choices := view.Panel(m.snapshot).QuickStart
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Close), key.Matches(msg, m.keys.QuickStart):
		m.menuOpen = false
	case key.Matches(msg, m.keys.Up):
		m.cursor = (m.cursor + len(choices) - 1) % len(choices)
	case key.Matches(msg, m.keys.Down):
		m.cursor = (m.cursor + 1) % len(choices)
	case key.Matches(msg, m.keys.Choose):
		m.menuOpen = false
		return m, m.send(choices[m.cursor].Intent)
	default:
		if index := digitIndex(msg, len(choices)); index >= 0 {
			m.menuOpen = false
			return m, m.send(choices[index].Intent)
		}
	}
	return m, nil
}

func (m Model) send(command string) tea.Cmd {
	dispatch := m.dispatch
	if dispatch == nil || command == "" {
		return nil
	}
	return func() tea.Msg {
		if err := dispatch(command); err != nil {
			return dispatchErrMsg{err: err}
		}
		return nil
	}
}

// View implements tea.Model.
func (m Model) View() string {
	rendered := view.Panel(m.snapshot)
	compact := view.Compact(m.snapshot)

	header := titleStyle.Render(view.AppName)
	if compact.Visible {
		header = titleStyle.Render(compact.Label) + "  " + mutedStyle.Render(compact.Tooltip)
	}

	sections := []string{
		header,
		"",
		clockStyle.Render(rendered.Countdown),
		m.progress.ViewAs(rendered.Progress / 100),
		"",
		statusLine(rendered),
	}

	if m.menuOpen {
		sections = append(sections, "", m.menuView(rendered))
	}
	if m.notice != "" {
		sections = append(sections, "", noticeStyle.Render(m.notice))
	}
	if m.err != nil {
		sections = append(sections, errorStyle.Render("error: "+m.err.Error()))
	}

	var helpView string
	if m.menuOpen {
		helpView = m.help.View(menuKeyMap{m.keys})
	} else {
		helpView = m.help.View(m.keys)
	}
	sections = append(sections, "", helpView)

	return frameStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...)) + "\n"
}

func (m Model) menuView(rendered view.PanelView) string {
	lines := []string{mutedStyle.Render("Quick Start")}
	for index, choice := range rendered.QuickStart {
		line := fmt.Sprintf("%d. %s %s  %s", index+1, choice.Icon, choice.Label, mutedStyle.Render(choice.Detail))
		if index == m.cursor {
			line = cursorStyle.Render("› ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func statusLine(rendered view.PanelView) string {
	if rendered.Loading {
		return mutedStyle.Render(rendered.PhaseLabel)
	}

	badge := idleStyle.Render("■ idle")
	switch {
	case rendered.Running:
		badge = runningStyle.Render("▶ running")
	case rendered.Paused:
		badge = pausedStyle.Render("⏸ paused")
	}
	return fmt.Sprintf("%s  %s %s (%s)  %s",
		badge,
		rendered.PhaseIcon,
		rendered.PhaseLabel,
		rendered.Counter,
		mutedStyle.Render(fmt.Sprintf("today %d", rendered.DailyPomodoros)),
	)
}

func digitIndex(msg tea.KeyMsg, count int) int {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return -1
	}
	index := int(msg.Runes[0] - '1')
	if index < 0 || index >= count {
		return -1
	}
	return index
}

// Run drives the panel until the user exits or ctx is done. Snapshots and
// notices are forwarded into the program as they arrive.
func Run(ctx context.Context, m Model, snapshots <-chan model.Snapshot, notices <-chan string, options ...tea.ProgramOption) error {
	options = append(options, tea.WithContext(ctx), tea.WithAltScreen())
	program := tea.NewProgram(m, options...)

	forwardCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		for {
			select {
			case <-forwardCtx.Done():
				return
			case snapshot, ok := <-snapshots:
				if !ok {
					program.Quit()
					return
				}
				program.Send(SnapshotMsg{Snapshot: snapshot})
			case notice, ok := <-notices:
				if !ok {
					notices = nil
					continue
				}
				program.Send(NoticeMsg(notice))
			}
		}
	}()

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run terminal panel: %w", err)
	}
	return nil
}
