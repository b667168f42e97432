//go:build linux

package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinuxAutostartRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	service := NewService()

	enabled, err := service.AutostartEnabled("CodePomodoro")
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, service.EnableAutostart("CodePomodoro", []string{"/opt/code pomodoro/codepomodoro", "run"}))

	configDir, err := service.GetConfigDir()
	require.NoError(t, err)
	content, err := os.ReadFile(filepath.Join(configDir, "autostart", "codepomodoro.desktop"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `Exec="/opt/code pomodoro/codepomodoro" run`)
	assert.Contains(t, string(content), "Name=CodePomodoro")

	enabled, err = service.AutostartEnabled("CodePomodoro")
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, service.DisableAutostart("CodePomodoro"))
	require.NoError(t, service.DisableAutostart("CodePomodoro"))
	enabled, err = service.AutostartEnabled("CodePomodoro")
	require.NoError(t, err)
	assert.False(t, enabled)
}
