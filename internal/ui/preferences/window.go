package preferences

import (
	"errors"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"codepomodoro/internal/core/model"
)

// Window handles the preferences UI.
type Window struct {
	window     fyne.Window
	config     model.Config
	onSave     func(model.Config) error
	work       *widget.Entry
	shortBreak *widget.Entry
	longBreak  *widget.Entry
	sessions   *widget.Entry
	priority   *widget.Entry
	autoBreaks *widget.Check
	autoWork   *widget.Check
	showInBar  *widget.Check
	status     *widget.Label
	saveButton *widget.Button
}

// New creates a preferences window.
func New(app fyne.App, config model.Config, onSave func(model.Config) error) *Window {
	window := app.NewWindow("CodePomodoro Settings")

	prefs := &Window{
		window:     window,
		onSave:     onSave,
		work:       widget.NewEntry(),
		shortBreak: widget.NewEntry(),
		longBreak:  widget.NewEntry(),
		sessions:   widget.NewEntry(),
		priority:   widget.NewEntry(),
		autoBreaks: widget.NewCheck("Start breaks automatically", nil),
		autoWork:   widget.NewCheck("Start work automatically after breaks", nil),
		showInBar:  widget.NewCheck("Show timer in the status indicator", nil),
		status:     widget.NewLabel(""),
	}
	prefs.status.Wrapping = fyne.TextWrapWord

	form := widget.NewForm(
		widget.NewFormItem("Work (min)", prefs.work),
		widget.NewFormItem("Short break (min)", prefs.shortBreak),
		widget.NewFormItem("Long break (min)", prefs.longBreak),
		widget.NewFormItem("Sessions before long break", prefs.sessions),
		widget.NewFormItem("Status bar priority", prefs.priority),
	)

	prefs.saveButton = widget.NewButton("Save", prefs.handleSave)
	prefs.saveButton.Importance = widget.HighImportance
	cancelButton := widget.NewButton("Cancel", func() {
		prefs.UpdateConfig(prefs.config)
		window.Hide()
	})
	buttons := container.NewHBox(prefs.saveButton, layout.NewSpacer(), cancelButton)

	content := container.NewVBox(
		widget.NewLabelWithStyle("Timer", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		form,
		prefs.autoBreaks,
		prefs.autoWork,
		prefs.showInBar,
		prefs.status,
	)
	window.SetContent(container.NewBorder(nil, buttons, nil, nil, content))
	window.Resize(fyne.NewSize(420, 380))
	window.SetCloseIntercept(func() {
		window.Hide()
	})

	prefs.UpdateConfig(config)
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateConfig replaces window values.
func (prefs *Window) UpdateConfig(config model.Config) {
	prefs.config = config
	form := FormFromConfig(config)
	prefs.work.SetText(form.WorkMinutes)
	prefs.shortBreak.SetText(form.ShortBreakMinutes)
	prefs.longBreak.SetText(form.LongBreakMinutes)
	prefs.sessions.SetText(form.SessionsPerCycle)
	prefs.priority.SetText(form.StatusBarPriority)
	prefs.autoBreaks.SetChecked(form.AutoStartBreaks)
	prefs.autoWork.SetChecked(form.AutoStartWork)
	prefs.showInBar.SetChecked(form.ShowInStatusBar)
	prefs.status.SetText("")
}

func (prefs *Window) form() Form {
	return Form{
		WorkMinutes:       prefs.work.Text,
		ShortBreakMinutes: prefs.shortBreak.Text,
		LongBreakMinutes:  prefs.longBreak.Text,
		SessionsPerCycle:  prefs.sessions.Text,
		StatusBarPriority: prefs.priority.Text,
		AutoStartBreaks:   prefs.autoBreaks.Checked,
		AutoStartWork:     prefs.autoWork.Checked,
		ShowInStatusBar:   prefs.showInBar.Checked,
	}
}

func (prefs *Window) handleSave() {
	config, problems := prefs.form().Apply(prefs.config)
	if len(problems) > 0 {
		prefs.status.SetText(errors.Join(problems...).Error())
		return
	}

	if prefs.onSave != nil {
		if err := prefs.onSave(config); err != nil {
			prefs.status.SetText(err.Error())
			return
		}
	}
	prefs.config = config
	prefs.status.SetText("")
	prefs.window.Hide()
}
