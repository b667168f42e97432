// Package notify delivers timer messages to the user.
package notify

import (
	"log/slog"

	"fyne.io/fyne/v2"
)

// Asker offers actions and blocks until one is chosen or dismissed.
type Asker interface {
	Ask(message string, actions ...string) (string, bool)
}

// Desktop posts OS notifications through fyne and asks for actions with an
// Asker.
type Desktop struct {
	app    fyne.App
	title  string
	asker  Asker
	logger *slog.Logger
}

// NewDesktop creates a desktop notifier. asker may be nil.
func NewDesktop(app fyne.App, title string, asker Asker, logger *slog.Logger) *Desktop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Desktop{app: app, title: title, asker: asker, logger: logger}
}

// Notify posts message as a notification.
func (desktop *Desktop) Notify(message string) {
	desktop.logger.Debug("notify", "message", message)
	desktop.app.SendNotification(fyne.NewNotification(desktop.title, message))
}

// NotifyWithAction posts message and waits for the user to pick an action.
func (desktop *Desktop) NotifyWithAction(message string, actions ...string) (string, bool) {
	desktop.Notify(message)
	if desktop.asker == nil {
		return "", false
	}
	return desktop.asker.Ask(message, actions...)
}

// Log writes notifications to a structured logger. Actions are never chosen.
type Log struct {
	Logger *slog.Logger
}

// Notify implements the notifier contract.
func (notifier Log) Notify(message string) {
	notifier.logger().Info("notification", "message", message)
}

// NotifyWithAction logs message with its actions and reports a dismissal.
func (notifier Log) NotifyWithAction(message string, actions ...string) (string, bool) {
	notifier.logger().Info("notification", "message", message, "actions", actions)
	return "", false
}

func (notifier Log) logger() *slog.Logger {
	if notifier.Logger == nil {
		return slog.Default()
	}
	return notifier.Logger
}

// Feed forwards notifications to a channel for in-process renderers. When
// the channel is full the message is dropped.
type Feed struct {
	messages chan string
}

// NewFeed creates a Feed with the given buffer.
func NewFeed(buffer int) *Feed {
	if buffer <= 0 {
		buffer = 1
	}
	return &Feed{messages: make(chan string, buffer)}
}

// Messages returns the receive side of the feed.
func (feed *Feed) Messages() <-chan string {
	return feed.messages
}

// Notify implements the notifier contract.
func (feed *Feed) Notify(message string) {
	select {
	case feed.messages <- message:
	default:
	}
}

// NotifyWithAction forwards message and reports a dismissal.
func (feed *Feed) NotifyWithAction(message string, _ ...string) (string, bool) {
	feed.Notify(message)
	return "", false
}

// Multi fans one notification out to several notifiers. The first
// notifier that offers actions decides the reply.
type Multi []interface {
	Notify(message string)
	NotifyWithAction(message string, actions ...string) (string, bool)
}

// Notify implements the notifier contract.
func (multi Multi) Notify(message string) {
	for _, notifier := range multi {
		notifier.Notify(message)
	}
}

// NotifyWithAction asks the first notifier and informs the rest.
func (multi Multi) NotifyWithAction(message string, actions ...string) (string, bool) {
	if len(multi) == 0 {
		return "", false
	}
	for _, notifier := range multi[1:] {
		notifier.Notify(message)
	}
	return multi[0].NotifyWithAction(message, actions...)
}
