package overlay

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buttonLabels(prompt *Prompt) []string {
	var labels []string
	for _, object := range prompt.buttons.Objects {
		if button, ok := object.(*widget.Button); ok {
			labels = append(labels, button.Text)
		}
	}
	return labels
}

func tapButton(t *testing.T, prompt *Prompt, label string) {
	t.Helper()
	for _, object := range prompt.buttons.Objects {
		if button, ok := object.(*widget.Button); ok && button.Text == label {
			test.Tap(button)
			return
		}
	}
	t.Fatalf("button %q not found", label)
}

func TestPromptReturnsChosenAction(t *testing.T) {
	prompt := New(test.NewTempApp(t), "CodePomodoro")

	reply := prompt.begin()
	prompt.showUnsafe("✅ Work complete! Time for a Short Break.", []string{"Start Next"}, reply)

	assert.Equal(t, []string{"Start Next", DismissLabel}, buttonLabels(prompt))
	assert.Equal(t, "✅ Work complete! Time for a Short Break.", prompt.message.Text)

	tapButton(t, prompt, "Start Next")
	assert.Equal(t, "Start Next", <-reply)
}

func TestPromptDismiss(t *testing.T) {
	prompt := New(test.NewTempApp(t), "CodePomodoro")

	reply := prompt.begin()
	prompt.showUnsafe("done", []string{"Start Next"}, reply)
	tapButton(t, prompt, DismissLabel)
	assert.Equal(t, "", <-reply)
}

func TestNewerPromptDismissesPending(t *testing.T) {
	prompt := New(test.NewTempApp(t), "CodePomodoro")

	first := prompt.begin()
	second := prompt.begin()
	assert.Equal(t, "", <-first)

	prompt.showUnsafe("second", []string{"Start Next"}, second)
	tapButton(t, prompt, "Start Next")
	assert.Equal(t, "Start Next", <-second)
}

func TestPromptTimesOut(t *testing.T) {
	prompt := New(test.NewTempApp(t), "CodePomodoro")
	prompt.SetTimeout(20 * time.Millisecond)

	reply := prompt.begin()
	select {
	case choice := <-reply:
		assert.Empty(t, choice)
	case <-time.After(2 * time.Second):
		require.Fail(t, "prompt did not time out")
	}
}
