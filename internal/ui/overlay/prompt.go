// Package overlay shows the undecorated prompt offered when a phase
// completes.
package overlay

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// DismissLabel is the button that closes the prompt without an action.
const DismissLabel = "Dismiss"

// DefaultTimeout closes an unanswered prompt.
const DefaultTimeout = 2 * time.Minute

// Prompt is a small always-on-top window with one button per action.
type Prompt struct {
	app        fyne.App
	window     fyne.Window
	title      *canvas.Text
	message    *widget.Label
	buttons    *fyne.Container
	background *canvas.Rectangle
	timeout    time.Duration

	mu    sync.Mutex
	reply chan string
	timer *time.Timer
}

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates the prompt window. Call from the fyne main goroutine.
func New(app fyne.App, title string) *Prompt {
	window := app.NewWindow(title)
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		// Splash window is undecorated (no native frame/buttons).
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	background := canvas.NewRectangle(color.NRGBA{R: 30, G: 31, B: 34, A: 235})

	titleText := canvas.NewText(title, color.NRGBA{R: 229, G: 83, B: 61, A: 255})
	titleText.TextStyle = fyne.TextStyle{Bold: true}
	titleText.TextSize = 18

	message := widget.NewLabel("")
	message.Wrapping = fyne.TextWrapWord

	buttons := container.NewHBox()
	content := container.NewBorder(titleText, buttons, nil, nil, message)
	window.SetContent(container.NewStack(background, container.NewPadded(content)))
	window.Resize(fyne.NewSize(340, 140))

	prompt := &Prompt{
		app:        app,
		window:     window,
		title:      titleText,
		message:    message,
		buttons:    buttons,
		background: background,
		timeout:    DefaultTimeout,
	}
	window.SetCloseIntercept(func() {
		prompt.resolveCurrent("")
	})
	return prompt
}

// SetTimeout changes how long an unanswered prompt stays open.
func (prompt *Prompt) SetTimeout(timeout time.Duration) {
	prompt.mu.Lock()
	prompt.timeout = timeout
	prompt.mu.Unlock()
}

// Ask shows message with one button per action and blocks until the user
// picks one, dismisses the prompt or it times out. A newer Ask dismisses
// the pending one.
func (prompt *Prompt) Ask(message string, actions ...string) (string, bool) {
	reply := prompt.begin()
	fyne.Do(func() {
		prompt.showUnsafe(message, actions, reply)
	})
	choice := <-reply
	return choice, choice != ""
}

func (prompt *Prompt) begin() chan string {
	reply := make(chan string, 1)

	prompt.mu.Lock()
	defer prompt.mu.Unlock()
	if prompt.reply != nil {
		prompt.reply <- ""
	}
	if prompt.timer != nil {
		prompt.timer.Stop()
	}
	prompt.reply = reply
	if prompt.timeout > 0 {
		prompt.timer = time.AfterFunc(prompt.timeout, func() {
			prompt.resolve(reply, "")
		})
	}
	return reply
}

func (prompt *Prompt) resolveCurrent(action string) {
	prompt.mu.Lock()
	reply := prompt.reply
	prompt.mu.Unlock()
	if reply != nil {
		prompt.resolve(reply, action)
	}
}

func (prompt *Prompt) resolve(reply chan string, action string) {
	prompt.mu.Lock()
	if prompt.reply != reply {
		prompt.mu.Unlock()
		return
	}
	prompt.reply = nil
	if prompt.timer != nil {
		prompt.timer.Stop()
		prompt.timer = nil
	}
	prompt.mu.Unlock()

	reply <- action
	fyne.Do(func() {
		prompt.window.Hide()
	})
}

func (prompt *Prompt) showUnsafe(message string, actions []string, reply chan string) {
	prompt.message.SetText(message)

	objects := make([]fyne.CanvasObject, 0, len(actions)+2)
	objects = append(objects, layout.NewSpacer())
	for _, action := range actions {
		button := widget.NewButton(action, func() {
			prompt.resolve(reply, action)
		})
		button.Importance = widget.HighImportance
		objects = append(objects, button)
	}
	objects = append(objects, widget.NewButton(DismissLabel, func() {
		prompt.resolve(reply, "")
	}))
	prompt.buttons.Objects = objects
	prompt.buttons.Refresh()

	prompt.window.CenterOnScreen()
	prompt.window.Show()
	prompt.window.RequestFocus()
}
