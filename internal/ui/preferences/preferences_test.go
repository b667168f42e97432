package preferences

import (
	"errors"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codepomodoro/internal/core/model"
)

func TestFormRoundTrip(t *testing.T) {
	config := model.DefaultConfig()
	applied, problems := FormFromConfig(config).Apply(model.Config{})
	assert.Empty(t, problems)
	assert.Equal(t, config, applied)
}

func TestFormApplyKeepsBaseOnInvalidFields(t *testing.T) {
	form := FormFromConfig(model.DefaultConfig())
	form.WorkMinutes = "0"
	form.ShortBreakMinutes = " 7 "
	form.SessionsPerCycle = "many"
	form.StatusBarPriority = "-5"

	config, problems := form.Apply(model.DefaultConfig())
	assert.Len(t, problems, 2)
	assert.Equal(t, 25, config.WorkDuration)
	assert.Equal(t, 7, config.ShortBreakDuration)
	assert.Equal(t, 4, config.SessionsBeforeLongBreak)
	assert.Equal(t, -5, config.StatusBarPriority)
}

func TestWindowSave(t *testing.T) {
	var saved []model.Config
	prefs := New(test.NewTempApp(t), model.DefaultConfig(), func(config model.Config) error {
		saved = append(saved, config)
		return nil
	})

	prefs.work.SetText("50")
	test.Tap(prefs.autoWork)
	test.Tap(prefs.saveButton)

	require.Len(t, saved, 1)
	assert.Equal(t, 50, saved[0].WorkDuration)
	assert.True(t, saved[0].AutoStartWork)
	assert.Empty(t, prefs.status.Text)
}

func TestWindowShowsProblems(t *testing.T) {
	prefs := New(test.NewTempApp(t), model.DefaultConfig(), func(model.Config) error {
		return errors.New("disk full")
	})

	prefs.longBreak.SetText("abc")
	test.Tap(prefs.saveButton)
	assert.Contains(t, prefs.status.Text, "long break duration")

	prefs.longBreak.SetText("20")
	test.Tap(prefs.saveButton)
	assert.Equal(t, "disk full", prefs.status.Text)
}
