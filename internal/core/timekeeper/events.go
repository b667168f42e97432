package timekeeper

import (
	"time"

	"codepomodoro/internal/core/model"
)

// EventType defines the type of TimeKeeper event.
type EventType string

const (
	EventStarted       EventType = "started"
	EventPaused        EventType = "paused"
	EventReset         EventType = "reset"
	EventSkipped       EventType = "skipped"
	EventTick          EventType = "tick"
	EventCompleted     EventType = "completed"
	EventTransition    EventType = "transition"
	EventConfigChanged EventType = "config_changed"
	EventRefresh       EventType = "refresh"
)

// Event carries the snapshot published after a mutation.
type Event struct {
	Type     EventType
	Snapshot model.Snapshot
	At       time.Time
}
