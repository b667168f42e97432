// Package realtime exposes the session engine over a local websocket so
// browser panels and CLI invocations can drive the running instance.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"codepomodoro/internal/core/model"
	"codepomodoro/internal/core/timekeeper"
	"codepomodoro/internal/protocol"
)

const (
	pingInterval   = 30 * time.Second
	readDeadline   = 60 * time.Second
	writeDeadline  = 10 * time.Second
	sendBuffer     = 64
	eventBuffer    = 16
	statsTimeout   = 2 * time.Second
	defaultDays    = 7
	shutdownWindow = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: checkOrigin,
}

// Keeper is the engine surface the server drives and observes.
type Keeper interface {
	protocol.Engine
	Snapshot() model.Snapshot
	Subscribe(buffer int) <-chan timekeeper.Event
	Unsubscribe(events <-chan timekeeper.Event)
}

// StatsSource reports completed-session history.
type StatsSource interface {
	Stats(ctx context.Context, now time.Time, days int) (model.Stats, error)
}

// Options configure a Server. All fields are optional.
type Options struct {
	Stats        StatsSource
	StatsDays    int
	OpenSettings func()
	Static       http.Handler
	Logger       *slog.Logger
	Now          func() time.Time
}

// Server fans engine snapshots out to websocket clients and routes their
// commands back to the engine.
type Server struct {
	keeper     Keeper
	dispatcher protocol.Dispatcher
	options    Options

	clients   map[*client]bool
	clientsMu sync.RWMutex
}

type client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	server *Server
}

// New creates a realtime server for keeper.
func New(keeper Keeper, options Options) *Server {
	if options.StatsDays <= 0 {
		options.StatsDays = defaultDays
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	return &Server{
		keeper:     keeper,
		dispatcher: protocol.Dispatcher{Engine: keeper, OpenSettings: options.OpenSettings},
		options:    options,
		clients:    make(map[*client]bool),
	}
}

// Handler returns an http.Handler with the websocket endpoint and the
// static panel.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	if s.options.Static != nil {
		mux.Handle("/", s.options.Static)
	}
	return mux
}

// Run forwards engine events to every connected client until ctx is done.
func (s *Server) Run(ctx context.Context) {
	events := s.keeper.Subscribe(eventBuffer)
	defer s.keeper.Unsubscribe(events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			msg, err := protocol.NewUpdateState(event.Snapshot)
			if err != nil {
				s.options.Logger.Warn("encode update", "event", event.Type, "error", err)
				continue
			}
			s.broadcast(msg)
		}
	}
}

// Serve runs the event loop and the HTTP server on listener until ctx is
// done.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWindow)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		s.closeClients()
	}()

	s.options.Logger.Info("control server listening", "address", listener.Addr().String())
	if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve control: %w", err)
	}
	return nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.options.Logger.Warn("websocket upgrade", "error", err)
		return
	}

	c := &client{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		server: s,
	}

	s.clientsMu.Lock()
	s.clients[c] = true
	s.clientsMu.Unlock()
	s.options.Logger.Debug("client connected", "client", c.id, "remote", r.RemoteAddr)

	go c.writePump()
	go c.readPump()
}

func (c *client) readPump() {
	defer func() {
		c.server.removeClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.server.options.Logger.Warn("websocket read", "client", c.id, "error", err)
			}
			return
		}
		c.server.handleMessage(c, message)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) enqueue(msg protocol.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (s *Server) removeClient(c *client) {
	s.clientsMu.Lock()
	if !s.clients[c] {
		s.clientsMu.Unlock()
		return
	}
	delete(s.clients, c)
	close(c.send)
	s.clientsMu.Unlock()
	s.options.Logger.Debug("client disconnected", "client", c.id)
}

func (s *Server) closeClients() {
	s.clientsMu.RLock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.clientsMu.RUnlock()

	for _, c := range clients {
		c.conn.Close()
	}
}

// handleMessage answers stats queries directly and routes every other
// command to the engine. The sender always gets the resulting snapshot,
// tagged with the command it answers.
func (s *Server) handleMessage(c *client, raw []byte) {
	msg, err := protocol.Parse(raw)
	if err != nil {
		reply := protocol.NewError(err)
		reply.ReplyTo = msg.Command
		c.enqueue(reply)
		return
	}

	var reply protocol.Message
	switch {
	case msg.Command == protocol.CommandStats:
		reply = s.stats()
	default:
		if err := s.dispatcher.Dispatch(msg.Command); err != nil {
			reply = protocol.NewError(err)
			break
		}
		reply = s.state()
	}
	reply.ReplyTo = msg.Command
	c.enqueue(reply)
}

func (s *Server) state() protocol.Message {
	msg, err := protocol.NewUpdateState(s.keeper.Snapshot())
	if err != nil {
		return protocol.NewError(err)
	}
	return msg
}

func (s *Server) stats() protocol.Message {
	if s.options.Stats == nil {
		return protocol.NewError(errors.New("stats unavailable"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
	defer cancel()
	stats, err := s.options.Stats.Stats(ctx, s.options.Now(), s.options.StatsDays)
	if err != nil {
		s.options.Logger.Warn("load stats", "error", err)
		return protocol.NewError(err)
	}

	state := s.keeper.Snapshot().State
	stats.DailyPomodoros = state.DailyPomodoros
	stats.CompletedWorkSessions = state.CompletedWorkSessions
	stats.TotalWorkSessions = state.TotalWorkSessions

	msg, err := protocol.NewStats(stats)
	if err != nil {
		return protocol.NewError(err)
	}
	return msg
}

func (s *Server) broadcast(msg protocol.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// checkOrigin accepts non-browser clients and pages served from loopback.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := parsed.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
