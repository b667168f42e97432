package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"codepomodoro/internal/core/model"
	"codepomodoro/internal/ui/view"
)

// Picker is the standalone quick-start menu.
type Picker struct {
	choices  []view.Button
	sessions []model.SessionType
	keys     keyMap
	cursor   int
	chosen   model.SessionType
	done     bool
}

// NewPicker lists every phase with its duration from config.
func NewPicker(config model.Config) Picker {
	return Picker{
		choices:  view.QuickStart(config),
		sessions: model.SessionTypes(),
		keys:     defaultKeyMap(),
	}
}

// Chosen returns the picked phase, if any.
func (p Picker) Chosen() (model.SessionType, bool) {
	return p.chosen, p.done && p.chosen != ""
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch {
	case key.Matches(keyMsg, p.keys.Quit), key.Matches(keyMsg, p.keys.Close):
		p.done = true
		return p, tea.Quit
	case key.Matches(keyMsg, p.keys.Up):
		p.cursor = (p.cursor + len(p.choices) - 1) % len(p.choices)
	case key.Matches(keyMsg, p.keys.Down):
		p.cursor = (p.cursor + 1) % len(p.choices)
	case key.Matches(keyMsg, p.keys.Choose):
		return p.pick(p.cursor)
	default:
		if index := digitIndex(keyMsg, len(p.choices)); index >= 0 {
			return p.pick(index)
		}
	}
	return p, nil
}

func (p Picker) pick(index int) (tea.Model, tea.Cmd) {
	p.cursor = index
	p.chosen = p.sessions[index]
	p.done = true
	return p, tea.Quit
}

// View implements tea.Model.
func (p Picker) View() string {
	if p.done {
		return ""
	}
	lines := []string{titleStyle.Render("Quick Start")}
	for index, choice := range p.choices {
		line := fmt.Sprintf("%d. %s %s  %s", index+1, choice.Icon, choice.Label, mutedStyle.Render(choice.Detail))
		if index == p.cursor {
			line = cursorStyle.Render("› ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", mutedStyle.Render("enter start · esc cancel"))
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n")) + "\n"
}

// PickSession runs the picker and returns the chosen phase.
func PickSession(config model.Config, options ...tea.ProgramOption) (model.SessionType, bool, error) {
	final, err := tea.NewProgram(NewPicker(config), options...).Run()
	if err != nil {
		return "", false, fmt.Errorf("run quick start menu: %w", err)
	}
	session, ok := final.(Picker).Chosen()
	return session, ok, nil
}
