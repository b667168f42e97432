package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codepomodoro/internal/core/model"
	"codepomodoro/internal/core/timekeeper"
	"codepomodoro/internal/protocol"
)

type idleScheduler struct{}

func (idleScheduler) Every(time.Duration, func()) timekeeper.CancelFunc { return func() {} }
func (idleScheduler) After(time.Duration, func()) timekeeper.CancelFunc { return func() {} }

type fixedStats struct {
	stats model.Stats
	err   error
}

func (source fixedStats) Stats(context.Context, time.Time, int) (model.Stats, error) {
	return source.stats, source.err
}

type fixture struct {
	keeper *timekeeper.TimeKeeper
	server *Server
	http   *httptest.Server
}

func newFixture(t *testing.T, options Options) *fixture {
	t.Helper()
	keeper := timekeeper.New(timekeeper.Dependencies{}, timekeeper.Config{Scheduler: idleScheduler{}})
	server := New(keeper, options)
	httpServer := httptest.NewServer(server.Handler())

	ctx, cancel := context.WithCancel(context.Background())
	go server.Run(ctx)

	t.Cleanup(func() {
		cancel()
		httpServer.Close()
		keeper.Close()
	})
	return &fixture{keeper: keeper, server: server, http: httpServer}
}

func (f *fixture) address() string {
	return strings.TrimPrefix(f.http.URL, "http://")
}

func (f *fixture) dialRaw(t *testing.T) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial("ws://"+f.address()+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readUntil(t *testing.T, ws *websocket.Conn, match func(protocol.Message) bool) protocol.Message {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg protocol.Message
		require.NoError(t, ws.ReadJSON(&msg))
		if match(msg) {
			return msg
		}
	}
}

func isCommand(command string) func(protocol.Message) bool {
	return func(msg protocol.Message) bool { return msg.Command == command }
}

func TestServerServesStaticPanel(t *testing.T) {
	f := newFixture(t, Options{Static: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "panel")
	})})

	resp, err := http.Get(f.http.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "panel", string(body))
}

func TestServerRepliesWithSnapshot(t *testing.T) {
	f := newFixture(t, Options{})
	ws := f.dialRaw(t)

	require.NoError(t, ws.WriteJSON(protocol.NewCommand(protocol.CommandStart)))
	msg := readUntil(t, ws, func(msg protocol.Message) bool {
		return msg.Command == protocol.CommandUpdateState && msg.ReplyTo == protocol.CommandStart
	})

	data, err := protocol.DecodeUpdateState(msg)
	require.NoError(t, err)
	assert.True(t, data.State.IsRunning)
	assert.Equal(t, 25, data.Config.WorkDuration)
	assert.True(t, f.keeper.IsRunning())
}

func TestServerRejectsInvalidFrames(t *testing.T) {
	f := newFixture(t, Options{})
	ws := f.dialRaw(t)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("not json")))
	msg := readUntil(t, ws, isCommand(protocol.CommandError))
	assert.Contains(t, msg.Error, "invalid message")

	require.NoError(t, ws.WriteJSON(protocol.NewCommand("launchRockets")))
	msg = readUntil(t, ws, isCommand(protocol.CommandError))
	assert.Contains(t, msg.Error, "unknown command")
	assert.Equal(t, "launchRockets", msg.ReplyTo)
}

func TestServerBroadcastsToOtherClients(t *testing.T) {
	f := newFixture(t, Options{})
	watcher := f.dialRaw(t)
	actor := f.dialRaw(t)

	require.NoError(t, watcher.WriteJSON(protocol.NewCommand(protocol.CommandWebviewReady)))
	readUntil(t, watcher, isCommand(protocol.CommandUpdateState))

	require.NoError(t, actor.WriteJSON(protocol.NewCommand(protocol.CommandSkip)))

	msg := readUntil(t, watcher, func(msg protocol.Message) bool {
		if msg.Command != protocol.CommandUpdateState {
			return false
		}
		data, err := protocol.DecodeUpdateState(msg)
		return err == nil && data.State.CurrentSession == model.SessionShortBreak
	})
	data, err := protocol.DecodeUpdateState(msg)
	require.NoError(t, err)
	assert.Equal(t, 300, data.State.TimeRemaining)
	assert.False(t, data.State.IsRunning)
}

func TestServerStats(t *testing.T) {
	source := fixedStats{stats: model.Stats{Today: 3, Total: 12}}
	f := newFixture(t, Options{Stats: source})
	ws := f.dialRaw(t)

	require.NoError(t, ws.WriteJSON(protocol.NewCommand(protocol.CommandStats)))
	msg := readUntil(t, ws, isCommand(protocol.CommandStats))

	stats, err := protocol.DecodeStats(msg)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Today)
	assert.Equal(t, 12, stats.Total)
	assert.Equal(t, 4, stats.TotalWorkSessions)
}

func TestServerStatsUnavailable(t *testing.T) {
	f := newFixture(t, Options{Stats: fixedStats{err: errors.New("disk gone")}})
	ws := f.dialRaw(t)

	require.NoError(t, ws.WriteJSON(protocol.NewCommand(protocol.CommandStats)))
	msg := readUntil(t, ws, isCommand(protocol.CommandError))
	assert.Equal(t, "disk gone", msg.Error)
}

func TestServerOpensSettings(t *testing.T) {
	opened := make(chan struct{}, 1)
	f := newFixture(t, Options{OpenSettings: func() { opened <- struct{}{} }})
	ws := f.dialRaw(t)

	require.NoError(t, ws.WriteJSON(protocol.NewCommand(protocol.CommandSettings)))
	select {
	case <-opened:
	case <-time.After(2 * time.Second):
		t.Fatal("settings not opened")
	}
}

func TestCheckOrigin(t *testing.T) {
	cases := map[string]bool{
		"":                       true,
		"http://localhost:8080":  true,
		"http://127.0.0.1:31337": true,
		"http://[::1]:9000":      true,
		"https://evil.example":   false,
	}
	for origin, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		assert.Equal(t, want, checkOrigin(req), origin)
	}
}

func TestClientDo(t *testing.T) {
	f := newFixture(t, Options{Stats: fixedStats{stats: model.Stats{Total: 1}}})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client, err := Dial(ctx, f.address())
	require.NoError(t, err)
	defer client.Close()

	snapshot, err := client.Do(ctx, protocol.CommandStartLongBreak)
	require.NoError(t, err)
	assert.Equal(t, model.SessionLongBreak, snapshot.State.CurrentSession)
	assert.True(t, snapshot.State.IsRunning)
	assert.Equal(t, 15, snapshot.Config.LongBreakDuration)

	stats, err := client.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)

	_, err = client.Do(ctx, protocol.CommandUpdateState)
	assert.ErrorContains(t, err, "unknown command")
}

func TestClientWatch(t *testing.T) {
	f := newFixture(t, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client, err := Dial(ctx, f.address())
	require.NoError(t, err)
	defer client.Close()

	updates := make(chan model.Snapshot, 8)
	done := make(chan error, 1)
	go func() {
		done <- client.Watch(ctx, func(snapshot model.Snapshot) { updates <- snapshot })
	}()

	first := <-updates
	assert.Equal(t, model.SessionWork, first.State.CurrentSession)

	require.NoError(t, client.Send(protocol.CommandPause))
	f.keeper.Start()
	require.Eventually(t, func() bool {
		select {
		case snapshot := <-updates:
			return snapshot.State.IsRunning
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestDialWithoutInstance(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	address := listener.Addr().String()
	require.NoError(t, listener.Close())

	_, err = Dial(context.Background(), address)
	assert.ErrorIs(t, err, ErrNoInstance)
}

func TestMessagesAreJSONEnvelopes(t *testing.T) {
	f := newFixture(t, Options{})
	ws := f.dialRaw(t)

	require.NoError(t, ws.WriteJSON(protocol.NewCommand(protocol.CommandWebviewReady)))
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := ws.ReadMessage()
	require.NoError(t, err)

	var generic map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &generic))
	assert.Contains(t, generic, "command")
	assert.Contains(t, generic, "data")
}
