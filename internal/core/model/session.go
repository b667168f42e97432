package model

import (
	"fmt"
	"time"
)

// SessionType identifies a pomodoro phase.
type SessionType string

const (
	SessionWork       SessionType = "work"
	SessionShortBreak SessionType = "shortBreak"
	SessionLongBreak  SessionType = "longBreak"
)

// DayLayout formats the calendar day used by the daily counter.
const DayLayout = "2006-01-02"

type sessionInfo struct {
	name string
	icon string
}

var sessionTypes = []SessionType{SessionWork, SessionShortBreak, SessionLongBreak}

var sessionInfos = map[SessionType]sessionInfo{
	SessionWork:       {name: "Work", icon: "🍅"},
	SessionShortBreak: {name: "Short Break", icon: "☕"},
	SessionLongBreak:  {name: "Long Break", icon: "🛌"},
}

func init() {
	for _, session := range sessionTypes {
		info, ok := sessionInfos[session]
		if !ok || info.name == "" || info.icon == "" {
			panic(fmt.Sprintf("model: session type %q has no display entry", session))
		}
	}
	if len(sessionInfos) != len(sessionTypes) {
		panic("model: display table lists unknown session types")
	}
}

// SessionTypes returns every phase in transition order.
func SessionTypes() []SessionType {
	return append([]SessionType(nil), sessionTypes...)
}

// Valid reports whether the session type is a known phase.
func (session SessionType) Valid() bool {
	_, ok := sessionInfos[session]
	return ok
}

// DisplayName returns the human readable phase name.
func (session SessionType) DisplayName() string {
	return sessionInfos[session].name
}

// Icon returns the phase icon.
func (session SessionType) Icon() string {
	return sessionInfos[session].icon
}

// ParseSessionType accepts the wire names and a few CLI friendly aliases.
func ParseSessionType(value string) (SessionType, error) {
	switch value {
	case "work", "pomodoro":
		return SessionWork, nil
	case "shortBreak", "short-break", "short":
		return SessionShortBreak, nil
	case "longBreak", "long-break", "long":
		return SessionLongBreak, nil
	}
	return "", fmt.Errorf("unknown session type %q", value)
}

// SessionState is the single mutable timer record.
type SessionState struct {
	CurrentSession        SessionType `json:"currentSession"`
	TimeRemaining         int         `json:"timeRemaining"`
	SessionDuration       int         `json:"sessionDuration"`
	IsRunning             bool        `json:"isRunning"`
	IsPaused              bool        `json:"isPaused"`
	CompletedWorkSessions int         `json:"completedWorkSessions"`
	TotalWorkSessions     int         `json:"totalWorkSessions"`
	DailyPomodoros        int         `json:"dailyPomodoros"`
	CountedOn             string      `json:"countedOn,omitempty"`
}

// DefaultState returns a fresh work phase built from config.
func DefaultState(config Config) SessionState {
	config = config.Normalize()
	duration := config.Seconds(SessionWork)
	return SessionState{
		CurrentSession:    SessionWork,
		TimeRemaining:     duration,
		SessionDuration:   duration,
		TotalWorkSessions: config.SessionsBeforeLongBreak,
	}
}

// Restore repairs a persisted state so it satisfies the record invariants.
// A state that cannot be repaired is replaced by DefaultState.
func Restore(state SessionState, config Config, now time.Time) SessionState {
	config = config.Normalize()
	if !state.CurrentSession.Valid() || state.SessionDuration <= 0 {
		return DefaultState(config)
	}
	if state.TimeRemaining < 0 {
		state.TimeRemaining = 0
	}
	if state.TimeRemaining > state.SessionDuration {
		state.TimeRemaining = state.SessionDuration
	}
	if state.IsRunning {
		state.IsRunning = false
		state.IsPaused = true
	}
	if state.CompletedWorkSessions < 0 {
		state.CompletedWorkSessions = 0
	}
	if state.DailyPomodoros < 0 {
		state.DailyPomodoros = 0
	}
	state.TotalWorkSessions = config.SessionsBeforeLongBreak
	state.RollDay(now)
	return state
}

// RollDay clears the daily counter when the last increment happened on
// another calendar day.
func (state *SessionState) RollDay(now time.Time) {
	today := now.Format(DayLayout)
	if state.CountedOn != today {
		state.DailyPomodoros = 0
		state.CountedOn = today
	}
}

// Progress returns the remaining share of the phase in percent.
func (state SessionState) Progress() float64 {
	if state.SessionDuration <= 0 {
		return 0
	}
	progress := 100 * float64(state.TimeRemaining) / float64(state.SessionDuration)
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// Snapshot is the state and config pair handed to presentation sinks.
type Snapshot struct {
	State  SessionState `json:"state"`
	Config Config       `json:"config"`
}
