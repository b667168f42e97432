package tui

import "github.com/charmbracelet/lipgloss"

var (
	tomato = lipgloss.Color("#e5533d")
	leaf   = lipgloss.Color("#a6e3a1")
	sky    = lipgloss.Color("#74c7ec")
	muted  = lipgloss.Color("#a6adc8")
	text   = lipgloss.Color("#cdd6f4")
	pane   = lipgloss.Color("#45475a")

	frameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(pane).
			Padding(1, 3)

	titleStyle   = lipgloss.NewStyle().Foreground(tomato).Bold(true)
	clockStyle   = lipgloss.NewStyle().Foreground(text).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	noticeStyle  = lipgloss.NewStyle().Foreground(sky)
	errorStyle   = lipgloss.NewStyle().Foreground(tomato)
	cursorStyle  = lipgloss.NewStyle().Foreground(tomato).Bold(true)
	runningStyle = lipgloss.NewStyle().Foreground(leaf).Bold(true)
	pausedStyle  = lipgloss.NewStyle().Foreground(sky).Bold(true)
	idleStyle    = lipgloss.NewStyle().Foreground(muted).Bold(true)
)
