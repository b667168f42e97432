package protocol

import (
	"fmt"

	"codepomodoro/internal/core/model"
)

// Engine is the set of timer operations a panel can trigger.
type Engine interface {
	Start()
	Pause()
	Reset()
	Skip()
	Toggle()
	StartSession(model.SessionType)
	Refresh()
}

// Dispatcher maps panel commands onto engine operations.
type Dispatcher struct {
	Engine       Engine
	OpenSettings func()
}

// Dispatch runs the operation for command. Queries such as stats are not
// operations and return ErrUnknownCommand.
func (dispatcher Dispatcher) Dispatch(command string) error {
	engine := dispatcher.Engine
	switch command {
	case CommandWebviewReady:
		engine.Refresh()
	case CommandStart:
		engine.Start()
	case CommandPause:
		engine.Pause()
	case CommandReset:
		engine.Reset()
	case CommandSkip:
		engine.Skip()
	case CommandToggle:
		engine.Toggle()
	case CommandStartWork:
		engine.StartSession(model.SessionWork)
	case CommandStartShortBreak:
		engine.StartSession(model.SessionShortBreak)
	case CommandStartLongBreak:
		engine.StartSession(model.SessionLongBreak)
	case CommandSettings:
		if dispatcher.OpenSettings != nil {
			dispatcher.OpenSettings()
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
	return nil
}

// SessionCommand returns the jump command for a phase.
func SessionCommand(session model.SessionType) string {
	switch session {
	case model.SessionShortBreak:
		return CommandStartShortBreak
	case model.SessionLongBreak:
		return CommandStartLongBreak
	default:
		return CommandStartWork
	}
}
