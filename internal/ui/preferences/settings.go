package preferences

import (
	"fmt"
	"strconv"
	"strings"

	"codepomodoro/internal/core/model"
)

// Form holds the raw field values of the preferences window.
type Form struct {
	WorkMinutes       string
	ShortBreakMinutes string
	LongBreakMinutes  string
	SessionsPerCycle  string
	StatusBarPriority string
	AutoStartBreaks   bool
	AutoStartWork     bool
	ShowInStatusBar   bool
}

// FormFromConfig fills a form with config.
func FormFromConfig(config model.Config) Form {
	return Form{
		WorkMinutes:       strconv.Itoa(config.WorkDuration),
		ShortBreakMinutes: strconv.Itoa(config.ShortBreakDuration),
		LongBreakMinutes:  strconv.Itoa(config.LongBreakDuration),
		SessionsPerCycle:  strconv.Itoa(config.SessionsBeforeLongBreak),
		StatusBarPriority: strconv.Itoa(config.StatusBarPriority),
		AutoStartBreaks:   config.AutoStartBreaks,
		AutoStartWork:     config.AutoStartWork,
		ShowInStatusBar:   config.ShowInStatusBar,
	}
}

// Apply writes the form onto base. Every invalid field is reported and
// leaves the base value in place.
func (form Form) Apply(base model.Config) (model.Config, []error) {
	config := base
	var problems []error

	positive := []struct {
		name   string
		value  string
		target *int
	}{
		{"work duration", form.WorkMinutes, &config.WorkDuration},
		{"short break duration", form.ShortBreakMinutes, &config.ShortBreakDuration},
		{"long break duration", form.LongBreakMinutes, &config.LongBreakDuration},
		{"sessions before long break", form.SessionsPerCycle, &config.SessionsBeforeLongBreak},
	}
	for _, field := range positive {
		parsed, ok := parsePositiveInt(field.value)
		if !ok {
			problems = append(problems, fmt.Errorf("%s must be a positive whole number", field.name))
			continue
		}
		*field.target = parsed
	}

	if priority, err := strconv.Atoi(strings.TrimSpace(form.StatusBarPriority)); err == nil {
		config.StatusBarPriority = priority
	} else {
		problems = append(problems, fmt.Errorf("status bar priority must be a whole number"))
	}

	config.AutoStartBreaks = form.AutoStartBreaks
	config.AutoStartWork = form.AutoStartWork
	config.ShowInStatusBar = form.ShowInStatusBar
	return config, problems
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
