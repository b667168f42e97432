package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Service defines OS-specific helpers needed by the application.
type Service interface {
	GetConfigDir() (string, error)
	EnableAutostart(appName string, command []string) error
	DisableAutostart(appName string) error
	AutostartEnabled(appName string) (bool, error)
}

type platformService struct{}

// NewService returns a platform-specific implementation.
func NewService() Service {
	return &platformService{}
}

// GetConfigDir returns the OS-standard configuration directory.
func (service *platformService) GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	return fallbackConfigDir(homeDir), nil
}

func validateLaunch(action, appName string, command []string) error {
	if appName == "" {
		return fmt.Errorf("%s autostart: app name is empty", action)
	}
	if len(command) == 0 || command[0] == "" {
		return fmt.Errorf("%s autostart: exec path is empty", action)
	}
	return nil
}

func slugName(appName string) string {
	name := strings.TrimSpace(appName)
	if name == "" {
		name = "codepomodoro"
	}
	name = strings.ToLower(name)
	return strings.ReplaceAll(name, " ", "-")
}

func quoteArg(arg string) string {
	if strings.ContainsAny(arg, " \t") && !strings.HasPrefix(arg, `"`) {
		return `"` + arg + `"`
	}
	return arg
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
