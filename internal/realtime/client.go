package realtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskhub-api/internal/config"
)

// Options tune each socket connection.
type Options struct {
	// SendBuffer is the outbound queue length per connection.
	SendBuffer int
	// WriteWait bounds each socket write.
	WriteWait time.Duration
	// PongWait is how long a silent peer is kept before being dropped.
	PongWait time.Duration
	// PingPeriod must be shorter than PongWait.
	PingPeriod time.Duration
	// MaxMessageBytes caps inbound frames.
	MaxMessageBytes int64
}

// OptionsFromConfig converts realtime settings into connection options.
func OptionsFromConfig(cfg config.RealtimeConfig) Options {
	return Options{
		SendBuffer:      cfg.SendBuffer,
		WriteWait:       cfg.WriteWait(),
		PongWait:        cfg.PongWait(),
		PingPeriod:      cfg.PingPeriod(),
		MaxMessageBytes: cfg.MaxMessageBytes,
	}
}

// DefaultOptions returns the stock connection settings.
func DefaultOptions() Options {
	return Options{
		SendBuffer:      64,
		WriteWait:       10 * time.Second,
		PongWait:        60 * time.Second,
		PingPeriod:      54 * time.Second,
		MaxMessageBytes: 64 << 10,
	}
}

// client is one WebSocket session. The read pump feeds the relay; the write
// pump is the only goroutine that writes to conn.
type client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	relay  *Relay
	opts   Options
	logger *slog.Logger

	closeOnce sync.Once
}

func newClient(id string, conn *websocket.Conn, relay *Relay, opts Options, logger *slog.Logger) *client {
	return &client{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, opts.SendBuffer),
		relay:  relay,
		opts:   opts,
		logger: logger.With(slog.String("connection_id", id)),
	}
}

func (c *client) ID() string { return c.id }

func (c *client) Enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close ends the write pump, which sends a close frame and closes the socket.
func (c *client) Close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// readPump forwards inbound events to the relay until the socket fails,
// then disconnects the client.
func (c *client) readPump() {
	defer c.relay.Disconnect(c.id)

	c.conn.SetReadLimit(c.opts.MaxMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		msgType, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("connection read failed", slog.String("error", err.Error()))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		env, err := DecodeEnvelope(frame)
		if err != nil {
			level := slog.LevelDebug
			if errors.Is(err, ErrMalformedFrame) {
				level = slog.LevelWarn
			}
			c.logger.Log(context.Background(), level, "dropping inbound frame",
				slog.String("event", env.Event),
				slog.String("error", err.Error()))
			continue
		}

		c.relay.Publish(c.id, env.Event, env.Data)
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug("connection write failed", slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(c.opts.WriteWait)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.logger.Debug("ping failed", slog.String("error", err.Error()))
				return
			}
		}
	}
}
