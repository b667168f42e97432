package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"codepomodoro/internal/core/model"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	WorkDuration            int   `yaml:"workDuration,omitempty"`
	ShortBreakDuration      int   `yaml:"shortBreakDuration,omitempty"`
	LongBreakDuration       int   `yaml:"longBreakDuration,omitempty"`
	SessionsBeforeLongBreak int   `yaml:"sessionsBeforeLongBreak,omitempty"`
	AutoStartBreaks         *bool `yaml:"autoStartBreaks,omitempty"`
	AutoStartWork           *bool `yaml:"autoStartWork,omitempty"`
	ShowInStatusBar         *bool `yaml:"showInStatusBar,omitempty"`
	StatusBarPriority       *int  `yaml:"statusBarPriority,omitempty"`
}

// DefaultSettingsPath returns <UserConfigDir>/<appName>/settings.yaml.
func DefaultSettingsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

// LoadSettings reads timer settings from YAML.
// If the file does not exist, default settings are returned.
func LoadSettings(path string) (model.Config, error) {
	config := model.DefaultConfig()

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return config, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return config, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&config, fileData)
	return config, nil
}

// SaveSettings writes timer settings to YAML.
func SaveSettings(path string, config model.Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	config = config.Normalize()
	fileData := yamlSettings{
		WorkDuration:            config.WorkDuration,
		ShortBreakDuration:      config.ShortBreakDuration,
		LongBreakDuration:       config.LongBreakDuration,
		SessionsBeforeLongBreak: config.SessionsBeforeLongBreak,
		AutoStartBreaks:         &config.AutoStartBreaks,
		AutoStartWork:           &config.AutoStartWork,
		ShowInStatusBar:         &config.ShowInStatusBar,
		StatusBarPriority:       &config.StatusBarPriority,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func applyYamlSettings(config *model.Config, fileData yamlSettings) {
	if fileData.WorkDuration > 0 {
		config.WorkDuration = fileData.WorkDuration
	}
	if fileData.ShortBreakDuration > 0 {
		config.ShortBreakDuration = fileData.ShortBreakDuration
	}
	if fileData.LongBreakDuration > 0 {
		config.LongBreakDuration = fileData.LongBreakDuration
	}
	if fileData.SessionsBeforeLongBreak > 0 {
		config.SessionsBeforeLongBreak = fileData.SessionsBeforeLongBreak
	}
	if fileData.AutoStartBreaks != nil {
		config.AutoStartBreaks = *fileData.AutoStartBreaks
	}
	if fileData.AutoStartWork != nil {
		config.AutoStartWork = *fileData.AutoStartWork
	}
	if fileData.ShowInStatusBar != nil {
		config.ShowInStatusBar = *fileData.ShowInStatusBar
	}
	if fileData.StatusBarPriority != nil {
		config.StatusBarPriority = *fileData.StatusBarPriority
	}
}

// Settings serves the current timer settings from a YAML file.
type Settings struct {
	mu     sync.RWMutex
	path   string
	config model.Config
}

// OpenSettings loads the YAML file at path. A missing file yields defaults.
func OpenSettings(path string) (*Settings, error) {
	config, err := LoadSettings(path)
	if err != nil {
		return nil, err
	}
	return &Settings{path: path, config: config}, nil
}

// Path returns the backing file path.
func (settings *Settings) Path() string {
	return settings.path
}

// Config returns the last loaded settings.
func (settings *Settings) Config() model.Config {
	settings.mu.RLock()
	defer settings.mu.RUnlock()
	return settings.config
}

// Reload re-reads the file and reports whether the effective settings changed.
// On a parse error the previous settings stay in effect.
func (settings *Settings) Reload() (bool, error) {
	config, err := LoadSettings(settings.path)
	if err != nil {
		return false, err
	}

	settings.mu.Lock()
	defer settings.mu.Unlock()
	changed := config != settings.config
	settings.config = config
	return changed, nil
}

// Update applies a change, writes the file and keeps the new settings in memory.
func (settings *Settings) Update(update func(*model.Config)) (model.Config, error) {
	settings.mu.Lock()
	defer settings.mu.Unlock()

	config := settings.config
	update(&config)
	config = config.Normalize()
	if err := SaveSettings(settings.path, config); err != nil {
		return settings.config, err
	}
	settings.config = config
	return config, nil
}
