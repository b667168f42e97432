package model

import "time"

// Config contains the user-tunable timer settings.
// Durations are expressed in whole minutes, matching the settings file.
type Config struct {
	WorkDuration            int  `json:"workDuration"`
	ShortBreakDuration      int  `json:"shortBreakDuration"`
	LongBreakDuration       int  `json:"longBreakDuration"`
	SessionsBeforeLongBreak int  `json:"sessionsBeforeLongBreak"`
	AutoStartBreaks         bool `json:"autoStartBreaks"`
	AutoStartWork           bool `json:"autoStartWork"`
	ShowInStatusBar         bool `json:"showInStatusBar"`
	StatusBarPriority       int  `json:"statusBarPriority"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		WorkDuration:            25,
		ShortBreakDuration:      5,
		LongBreakDuration:       15,
		SessionsBeforeLongBreak: 4,
		AutoStartBreaks:         true,
		AutoStartWork:           false,
		ShowInStatusBar:         true,
		StatusBarPriority:       100,
	}
}

// Normalize replaces non-positive durations and counts with defaults.
func (config Config) Normalize() Config {
	defaults := DefaultConfig()
	if config.WorkDuration <= 0 {
		config.WorkDuration = defaults.WorkDuration
	}
	if config.ShortBreakDuration <= 0 {
		config.ShortBreakDuration = defaults.ShortBreakDuration
	}
	if config.LongBreakDuration <= 0 {
		config.LongBreakDuration = defaults.LongBreakDuration
	}
	if config.SessionsBeforeLongBreak <= 0 {
		config.SessionsBeforeLongBreak = defaults.SessionsBeforeLongBreak
	}
	return config
}

// Minutes returns the configured length of a phase in minutes.
func (config Config) Minutes(session SessionType) int {
	switch session {
	case SessionShortBreak:
		return config.ShortBreakDuration
	case SessionLongBreak:
		return config.LongBreakDuration
	default:
		return config.WorkDuration
	}
}

// Seconds returns the configured length of a phase in seconds.
func (config Config) Seconds(session SessionType) int {
	return int((time.Duration(config.Minutes(session)) * time.Minute) / time.Second)
}

// AutoStarts reports whether entering the given phase may start its cadence
// without user action.
func (config Config) AutoStarts(session SessionType) bool {
	if session == SessionWork {
		return config.AutoStartWork
	}
	return config.AutoStartBreaks
}
