// Package panel renders the full timer panel in a fyne window.
package panel

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"codepomodoro/internal/core/model"
	"codepomodoro/internal/ui/view"
)

// Window shows the countdown, progress, phase and controls.
type Window struct {
	window     fyne.Window
	countdown  *canvas.Text
	progress   *widget.ProgressBar
	phase      *widget.Label
	daily      *widget.Label
	toggle     *widget.Button
	reset      *widget.Button
	skip       *widget.Button
	settings   *widget.Button
	quickStart []*widget.Button
	dispatch   func(command string)
	current    view.PanelView
}

// New creates the panel window. dispatch receives the command of every
// tapped control.
func New(app fyne.App, dispatch func(command string)) *Window {
	window := app.NewWindow(view.AppName)

	countdown := canvas.NewText("--:--", theme.Color(theme.ColorNameForeground))
	countdown.TextSize = 42
	countdown.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	countdown.Alignment = fyne.TextAlignCenter

	progress := widget.NewProgressBar()
	progress.Min = 0
	progress.Max = 100
	progress.TextFormatter = func() string { return "" }

	panel := &Window{
		window:    window,
		countdown: countdown,
		progress:  progress,
		phase:     widget.NewLabelWithStyle("Loading...", fyne.TextAlignCenter, fyne.TextStyle{}),
		daily:     widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
		dispatch:  dispatch,
	}

	panel.toggle = widget.NewButton("Start", func() { panel.emit(panel.current.Toggle) })
	panel.toggle.Importance = widget.HighImportance
	panel.reset = widget.NewButton("Reset", func() { panel.emit(panel.current.Reset) })
	panel.skip = widget.NewButton("Skip", func() { panel.emit(panel.current.Skip) })
	panel.settings = widget.NewButtonWithIcon("Settings", theme.SettingsIcon(), func() { panel.emit(panel.current.Settings) })

	quickBox := container.NewVBox()
	for index := range model.SessionTypes() {
		button := widget.NewButton("", func() {
			if index < len(panel.current.QuickStart) {
				panel.emit(panel.current.QuickStart[index])
			}
		})
		button.Alignment = widget.ButtonAlignLeading
		panel.quickStart = append(panel.quickStart, button)
		quickBox.Add(button)
	}

	controls := container.NewHBox(layout.NewSpacer(), panel.reset, panel.toggle, panel.skip, layout.NewSpacer())
	content := container.NewVBox(
		countdown,
		progress,
		panel.phase,
		controls,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Quick Start", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		quickBox,
		widget.NewSeparator(),
		container.NewHBox(panel.daily, layout.NewSpacer(), panel.settings),
	)

	window.SetContent(container.NewPadded(content))
	window.Resize(fyne.NewSize(320, 420))
	window.SetCloseIntercept(func() {
		window.Hide()
	})

	panel.Apply(view.Panel(nil))
	return panel
}

// Show displays the panel window.
func (panel *Window) Show() {
	panel.window.Show()
	panel.window.RequestFocus()
}

// Update renders snapshot from any goroutine.
func (panel *Window) Update(snapshot *model.Snapshot) {
	rendered := view.Panel(snapshot)
	fyne.Do(func() {
		panel.Apply(rendered)
	})
}

// Apply renders a panel view. Call from the fyne main goroutine.
func (panel *Window) Apply(rendered view.PanelView) {
	panel.current = rendered

	panel.countdown.Text = rendered.Countdown
	panel.countdown.Refresh()
	panel.progress.SetValue(rendered.Progress)

	if rendered.Loading {
		panel.phase.SetText(rendered.PhaseLabel)
		panel.daily.SetText("")
	} else {
		panel.phase.SetText(fmt.Sprintf("%s %s (%s)", rendered.PhaseIcon, rendered.PhaseLabel, rendered.Counter))
		panel.daily.SetText(fmt.Sprintf("Today: %d 🍅", rendered.DailyPomodoros))
	}

	panel.toggle.SetText(rendered.Toggle.Label)
	for index, button := range panel.quickStart {
		if index >= len(rendered.QuickStart) {
			continue
		}
		quick := rendered.QuickStart[index]
		button.SetText(fmt.Sprintf("%s  %s · %s", quick.Icon, quick.Label, quick.Detail))
	}

	for _, button := range append([]*widget.Button{panel.toggle, panel.reset, panel.skip}, panel.quickStart...) {
		if rendered.Loading {
			button.Disable()
		} else {
			button.Enable()
		}
	}
}

func (panel *Window) emit(button view.Button) {
	if panel.dispatch != nil && button.Intent != "" {
		panel.dispatch(button.Intent)
	}
}
