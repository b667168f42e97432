package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"codepomodoro/internal/core/model"
	"codepomodoro/internal/protocol"
)

// ErrNoInstance is returned when no running instance accepts the connection.
var ErrNoInstance = errors.New("no running instance")

const defaultReplyTimeout = 5 * time.Second

// Client speaks the panel protocol to a running instance.
//
// Do and Stats read replies themselves and must not be mixed with Watch on
// the same client. Send is safe alongside Watch.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// Dial connects to the control endpoint at address (host:port).
func Dial(ctx context.Context, address string) (*Client, error) {
	endpoint := "ws://" + address + "/ws"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w at %s: %v", ErrNoInstance, address, err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the connection.
func (client *Client) Close() error {
	client.writeMu.Lock()
	_ = client.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	client.writeMu.Unlock()
	return client.conn.Close()
}

// Send writes a command without waiting for a reply.
func (client *Client) Send(command string) error {
	client.writeMu.Lock()
	defer client.writeMu.Unlock()
	client.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := client.conn.WriteJSON(protocol.NewCommand(command)); err != nil {
		return fmt.Errorf("send %s: %w", command, err)
	}
	return nil
}

// Do sends command and returns the snapshot the instance replies with.
func (client *Client) Do(ctx context.Context, command string) (model.Snapshot, error) {
	if err := client.Send(command); err != nil {
		return model.Snapshot{}, err
	}
	msg, err := client.await(ctx, command, protocol.CommandUpdateState)
	if err != nil {
		return model.Snapshot{}, err
	}
	data, err := protocol.DecodeUpdateState(msg)
	if err != nil {
		return model.Snapshot{}, err
	}
	return data.Snapshot(), nil
}

// Stats queries completed-session history.
func (client *Client) Stats(ctx context.Context) (model.Stats, error) {
	if err := client.Send(protocol.CommandStats); err != nil {
		return model.Stats{}, err
	}
	msg, err := client.await(ctx, protocol.CommandStats, protocol.CommandStats)
	if err != nil {
		return model.Stats{}, err
	}
	return protocol.DecodeStats(msg)
}

// Watch announces readiness and calls onUpdate for every snapshot until ctx
// is done or the connection drops.
func (client *Client) Watch(ctx context.Context, onUpdate func(model.Snapshot)) error {
	stop := context.AfterFunc(ctx, func() { client.conn.Close() })
	defer stop()

	if err := client.Send(protocol.CommandWebviewReady); err != nil {
		return err
	}
	for {
		var msg protocol.Message
		if err := client.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		}
		if msg.Command != protocol.CommandUpdateState {
			continue
		}
		data, err := protocol.DecodeUpdateState(msg)
		if err != nil {
			continue
		}
		onUpdate(data.Snapshot())
	}
}

// await reads frames until the reply to sent arrives. Broadcasts and
// replies to other commands are skipped.
func (client *Client) await(ctx context.Context, sent, command string) (protocol.Message, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultReplyTimeout)
	}
	client.conn.SetReadDeadline(deadline)
	defer client.conn.SetReadDeadline(time.Time{})

	for {
		var msg protocol.Message
		if err := client.conn.ReadJSON(&msg); err != nil {
			return protocol.Message{}, fmt.Errorf("await %s: %w", command, err)
		}
		if msg.ReplyTo != sent {
			continue
		}
		switch msg.Command {
		case command:
			return msg, nil
		case protocol.CommandError:
			return protocol.Message{}, errors.New(msg.Error)
		}
	}
}
