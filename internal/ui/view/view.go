// Package view holds the pure projections of a timer snapshot that every
// renderer (tray, window, terminal, browser) draws from.
package view

import (
	"fmt"

	"codepomodoro/internal/core/model"
	"codepomodoro/internal/protocol"
)

// AppName prefixes the compact tooltip.
const AppName = "CodePomodoro"

const loadingClock = "--:--"

// Button is one panel control. Intent is the protocol command it emits.
type Button struct {
	Label  string
	Icon   string
	Detail string
	Intent string
}

// CompactView is the status indicator rendering.
type CompactView struct {
	Loading     bool
	Visible     bool
	Priority    int
	Icon        string
	Clock       string
	Label       string
	Tooltip     string
	ClickIntent string
}

// PanelView is the full panel rendering.
type PanelView struct {
	Loading        bool
	Countdown      string
	Progress       float64
	PhaseLabel     string
	PhaseIcon      string
	Counter        string
	DailyPomodoros int
	Running        bool
	Paused         bool
	Toggle         Button
	Reset          Button
	Skip           Button
	QuickStart     []Button
	Settings       Button
}

// FormatClock renders seconds as zero-padded MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Compact projects a snapshot onto the status indicator. A nil snapshot
// renders the loading placeholder.
func Compact(snapshot *model.Snapshot) CompactView {
	if snapshot == nil {
		icon := model.SessionWork.Icon()
		return CompactView{
			Loading:     true,
			Visible:     true,
			Priority:    model.DefaultConfig().StatusBarPriority,
			Icon:        icon,
			Clock:       loadingClock,
			Label:       icon + " " + loadingClock,
			Tooltip:     AppName + ": Loading...",
			ClickIntent: protocol.CommandStart,
		}
	}

	state := snapshot.State
	icon := state.CurrentSession.Icon()
	clock := FormatClock(state.TimeRemaining)
	intent := protocol.CommandStart
	if state.IsRunning {
		intent = protocol.CommandPause
	}
	return CompactView{
		Visible:  snapshot.Config.ShowInStatusBar,
		Priority: snapshot.Config.StatusBarPriority,
		Icon:     icon,
		Clock:    clock,
		Label:    icon + " " + clock,
		Tooltip: fmt.Sprintf("%s: %s (%d/%d)", AppName, state.CurrentSession.DisplayName(),
			state.CompletedWorkSessions, state.TotalWorkSessions),
		ClickIntent: intent,
	}
}

// Panel projects a snapshot onto the panel. A nil snapshot renders the
// loading placeholder with inert controls.
func Panel(snapshot *model.Snapshot) PanelView {
	if snapshot == nil {
		return PanelView{
			Loading:    true,
			Countdown:  loadingClock,
			PhaseLabel: "Loading...",
			Counter:    "-/-",
			Toggle:     Button{Label: "Start", Intent: protocol.CommandStart},
			Reset:      Button{Label: "Reset", Intent: protocol.CommandReset},
			Skip:       Button{Label: "Skip", Intent: protocol.CommandSkip},
			QuickStart: quickStart(nil),
			Settings:   Button{Label: "Settings", Intent: protocol.CommandSettings},
		}
	}

	state := snapshot.State
	toggle := Button{Label: "Start", Intent: protocol.CommandStart}
	switch {
	case state.IsRunning:
		toggle = Button{Label: "Pause", Intent: protocol.CommandPause}
	case state.IsPaused:
		toggle = Button{Label: "Resume", Intent: protocol.CommandStart}
	}

	config := snapshot.Config
	return PanelView{
		Countdown:      FormatClock(state.TimeRemaining),
		Progress:       state.Progress(),
		PhaseLabel:     state.CurrentSession.DisplayName(),
		PhaseIcon:      state.CurrentSession.Icon(),
		Counter:        fmt.Sprintf("%d/%d", state.CompletedWorkSessions, state.TotalWorkSessions),
		DailyPomodoros: state.DailyPomodoros,
		Running:        state.IsRunning,
		Paused:         state.IsPaused,
		Toggle:         toggle,
		Reset:          Button{Label: "Reset", Intent: protocol.CommandReset},
		Skip:           Button{Label: "Skip", Intent: protocol.CommandSkip},
		QuickStart:     quickStart(&config),
		Settings:       Button{Label: "Settings", Intent: protocol.CommandSettings},
	}
}

// QuickStart lists the jump-to-phase choices with their durations.
func QuickStart(config model.Config) []Button {
	return quickStart(&config)
}

func quickStart(config *model.Config) []Button {
	buttons := make([]Button, 0, len(model.SessionTypes()))
	for _, session := range model.SessionTypes() {
		detail := "-- min"
		if config != nil {
			detail = fmt.Sprintf("%d min", config.Minutes(session))
		}
		buttons = append(buttons, Button{
			Label:  session.DisplayName(),
			Icon:   session.Icon(),
			Detail: detail,
			Intent: protocol.SessionCommand(session),
		})
	}
	return buttons
}
