package main

import (
	"bytes"
	"context"
	"net"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codepomodoro/internal/core/model"
	"codepomodoro/internal/core/timekeeper"
	"codepomodoro/internal/realtime"
	"codepomodoro/internal/storage"
)

type idleScheduler struct{}

func (idleScheduler) Every(time.Duration, func()) timekeeper.CancelFunc { return func() {} }
func (idleScheduler) After(time.Duration, func()) timekeeper.CancelFunc { return func() {} }

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func runningInstance(t *testing.T) (string, *timekeeper.TimeKeeper) {
	t.Helper()
	keeper := timekeeper.New(timekeeper.Dependencies{}, timekeeper.Config{Scheduler: idleScheduler{}})
	server := realtime.New(keeper, realtime.Options{})
	httpServer := httptest.NewServer(server.Handler())

	ctx, cancel := context.WithCancel(context.Background())
	go server.Run(ctx)
	t.Cleanup(func() {
		cancel()
		httpServer.Close()
		keeper.Close()
	})
	return strings.TrimPrefix(httpServer.URL, "http://"), keeper
}

func unusedAddress(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	address := listener.Addr().String()
	require.NoError(t, listener.Close())
	return address
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := newLogger(&bytes.Buffer{}, "loud")
	assert.Error(t, err)

	logger, err := newLogger(&bytes.Buffer{}, "debug")
	require.NoError(t, err)
	assert.True(t, logger.Enabled(context.Background(), -4))
}

func TestApplySetting(t *testing.T) {
	config := model.DefaultConfig()

	require.NoError(t, applySetting(&config, "workDuration", "50"))
	require.NoError(t, applySetting(&config, "autoStartWork", "true"))
	require.NoError(t, applySetting(&config, "sessionsBeforeLongBreak", " 3 "))

	assert.Equal(t, 50, config.WorkDuration)
	assert.True(t, config.AutoStartWork)
	assert.Equal(t, 3, config.SessionsBeforeLongBreak)

	assert.ErrorContains(t, applySetting(&config, "volume", "11"), "unknown setting")
	assert.ErrorContains(t, applySetting(&config, "shortBreakDuration", "five"), "whole number")
	assert.ErrorContains(t, applySetting(&config, "showInStatusBar", "maybe"), "true or false")
	assert.Equal(t, 5, config.ShortBreakDuration)
}

func TestSettingsSetWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	out, err := execute(t, "--config", path, "settings", "set", "longBreakDuration", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "longBreakDuration        20")

	saved, err := storage.LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 20, saved.LongBreakDuration)

	out, err = execute(t, "--config", path, "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "longBreakDuration        20")
	assert.Contains(t, out, "workDuration             25")

	out, err = execute(t, "--config", path, "settings", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)
}

func TestSettingsSetRejectsInvalidValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	_, err := execute(t, "--config", path, "settings", "set", "workDuration", "soon")
	assert.ErrorContains(t, err, "workDuration")
	assert.NoFileExists(t, path)
}

func TestControlCommandDrivesRunningInstance(t *testing.T) {
	address, keeper := runningInstance(t)

	out, err := execute(t, "--address", address, "skip")
	require.NoError(t, err)
	assert.Contains(t, out, "05:00")
	assert.Contains(t, out, "Short Break (0/4)")
	assert.Equal(t, model.SessionShortBreak, keeper.Snapshot().State.CurrentSession)

	out, err = execute(t, "--address", address, "start")
	require.NoError(t, err)
	assert.Contains(t, out, "running")
	assert.True(t, keeper.IsRunning())

	out, err = execute(t, "--address", address, "quick-start", "long")
	require.NoError(t, err)
	assert.Contains(t, out, "15:00")
	assert.Equal(t, model.SessionLongBreak, keeper.Snapshot().State.CurrentSession)
}

func TestStatusReportsSnapshot(t *testing.T) {
	address, _ := runningInstance(t)

	out, err := execute(t, "--address", address, "status")
	require.NoError(t, err)
	assert.Equal(t, "🍅 25:00  idle\nCodePomodoro: Work (0/4)\nprogress 0%  today 0\n", out)
}

func TestControlCommandWithoutInstance(t *testing.T) {
	_, err := execute(t, "--address", unusedAddress(t), "pause")
	assert.ErrorIs(t, err, realtime.ErrNoInstance)
}

func TestStatsFallsBackToLocalHistory(t *testing.T) {
	dataDir := t.TempDir()
	store, err := storage.OpenSQLite(context.Background(), storage.StatePath(dataDir))
	require.NoError(t, err)
	require.NoError(t, store.RecordCompletion(context.Background(), model.SessionWork, time.Now()))
	require.NoError(t, store.Close())

	out, err := execute(t, "--address", unusedAddress(t), "--data-dir", dataDir, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "today   1\n")
	assert.Contains(t, out, "total   1\n")
}

func TestFormatStats(t *testing.T) {
	out := formatStats(model.Stats{
		Today:                 2,
		Total:                 9,
		CompletedWorkSessions: 2,
		TotalWorkSessions:     4,
		LastDays: []model.DayCount{
			{Day: "2026-10-18", Count: 3},
			{Day: "2026-10-19", Count: 0},
		},
	})

	assert.Equal(t, "today   2\ntotal   9\ncycle   2/4\n2026-10-18  🍅🍅🍅\n2026-10-19  \n", out)
}

func TestLatestDropsOldestSnapshot(t *testing.T) {
	out := make(chan model.Snapshot, 1)
	push := latest(out)

	first := model.Snapshot{State: model.SessionState{TimeRemaining: 10}}
	second := model.Snapshot{State: model.SessionState{TimeRemaining: 9}}
	push(first)
	push(second)

	require.Len(t, out, 1)
	assert.Equal(t, 9, (<-out).State.TimeRemaining)
}
