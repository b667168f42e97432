package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"codepomodoro/internal/core/model"
)

var (
	// ErrInvalidMessage is returned for frames that are not protocol JSON.
	ErrInvalidMessage = errors.New("invalid message")
	// ErrUnknownCommand is returned for commands outside the protocol.
	ErrUnknownCommand = errors.New("unknown command")
)

// Message is the envelope for every frame in both directions. ReplyTo is
// set on frames answering a single client's command.
type Message struct {
	Command string          `json:"command"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	ReplyTo string          `json:"replyTo,omitempty"`
}

// Panel → engine commands.
const (
	CommandWebviewReady    = "webviewReady"
	CommandStart           = "start"
	CommandPause           = "pause"
	CommandReset           = "reset"
	CommandSkip            = "skip"
	CommandSettings        = "settings"
	CommandStartWork       = "startWorkSession"
	CommandStartShortBreak = "startShortBreak"
	CommandStartLongBreak  = "startLongBreak"
	CommandToggle          = "toggle"
	CommandStats           = "stats"
)

// Engine → panel commands. CommandStats is also used for the reply.
const (
	CommandUpdateState = "updateState"
	CommandError       = "error"
)

var inbound = map[string]bool{
	CommandWebviewReady:    true,
	CommandStart:           true,
	CommandPause:           true,
	CommandReset:           true,
	CommandSkip:            true,
	CommandSettings:        true,
	CommandStartWork:       true,
	CommandStartShortBreak: true,
	CommandStartLongBreak:  true,
	CommandToggle:          true,
	CommandStats:           true,
}

// PanelConfig is the config subset the panel shows, in minutes.
type PanelConfig struct {
	WorkDuration       int `json:"workDuration"`
	ShortBreakDuration int `json:"shortBreakDuration"`
	LongBreakDuration  int `json:"longBreakDuration"`
}

// UpdateStateData is the payload of an updateState frame.
type UpdateStateData struct {
	State  model.SessionState `json:"state"`
	Config PanelConfig        `json:"config"`
}

// Snapshot converts the payload back into a model snapshot.
func (data UpdateStateData) Snapshot() model.Snapshot {
	config := model.DefaultConfig()
	config.WorkDuration = data.Config.WorkDuration
	config.ShortBreakDuration = data.Config.ShortBreakDuration
	config.LongBreakDuration = data.Config.LongBreakDuration
	config.SessionsBeforeLongBreak = data.State.TotalWorkSessions
	return model.Snapshot{State: data.State, Config: config.Normalize()}
}

// NewCommand builds a panel → engine frame.
func NewCommand(command string) Message {
	return Message{Command: command}
}

// NewUpdateState builds the updateState frame for a snapshot.
func NewUpdateState(snapshot model.Snapshot) (Message, error) {
	return newMessage(CommandUpdateState, UpdateStateData{
		State: snapshot.State,
		Config: PanelConfig{
			WorkDuration:       snapshot.Config.WorkDuration,
			ShortBreakDuration: snapshot.Config.ShortBreakDuration,
			LongBreakDuration:  snapshot.Config.LongBreakDuration,
		},
	})
}

// NewStats builds the stats reply frame.
func NewStats(stats model.Stats) (Message, error) {
	return newMessage(CommandStats, stats)
}

// NewError builds an error frame.
func NewError(err error) Message {
	return Message{Command: CommandError, Error: err.Error()}
}

func newMessage(command string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s payload: %w", command, err)
	}
	return Message{Command: command, Data: data}, nil
}

// Parse decodes and validates a panel → engine frame. For an unknown
// command the returned message still carries the command name.
func Parse(raw []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.Command == "" {
		return Message{}, fmt.Errorf("%w: missing command", ErrInvalidMessage)
	}
	if !inbound[msg.Command] {
		return Message{Command: msg.Command}, fmt.Errorf("%w: %q", ErrUnknownCommand, msg.Command)
	}
	return msg, nil
}

// DecodeUpdateState extracts the payload of an updateState frame.
func DecodeUpdateState(msg Message) (UpdateStateData, error) {
	var data UpdateStateData
	if msg.Command != CommandUpdateState {
		return data, fmt.Errorf("%w: expected %s, got %s", ErrInvalidMessage, CommandUpdateState, msg.Command)
	}
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return data, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return data, nil
}

// DecodeStats extracts the payload of a stats frame.
func DecodeStats(msg Message) (model.Stats, error) {
	var stats model.Stats
	if msg.Command != CommandStats {
		return stats, fmt.Errorf("%w: expected %s, got %s", ErrInvalidMessage, CommandStats, msg.Command)
	}
	if err := json.Unmarshal(msg.Data, &stats); err != nil {
		return stats, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return stats, nil
}
