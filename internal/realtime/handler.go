package realtime

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskhub-api/internal/platform/logger"
)

// Handler upgrades HTTP requests to WebSocket sessions on a Relay.
type Handler struct {
	relay    *Relay
	opts     Options
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a Handler. Any origin may connect.
func NewHandler(relay *Relay, opts Options, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		relay: relay,
		opts:  opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: log.With(slog.String("component", "socket_handler")),
	}
}

// ServeHTTP upgrades the connection and registers it with the relay.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		logger.FromContextOrDefault(r.Context(), h.logger).Debug("websocket upgrade failed",
			slog.String("error", err.Error()))
		return
	}

	c := newClient(uuid.NewString(), conn, h.relay, h.opts, h.logger)
	if !h.relay.Connect(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(h.opts.WriteWait))
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
