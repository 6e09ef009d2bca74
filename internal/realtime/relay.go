package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Member is a connection registered with a Relay.
type Member interface {
	// ID returns the connection's unique session identifier.
	ID() string

	// Enqueue hands a frame to the connection without blocking. It returns
	// false when the frame was dropped.
	Enqueue(frame []byte) bool

	// Close releases the connection's outbound side. The relay calls it
	// exactly once, after the member has left the registry.
	Close()
}

type commandKind int

const (
	cmdConnect commandKind = iota
	cmdDisconnect
	cmdPublish
	cmdCount
)

type command struct {
	kind     commandKind
	member   Member
	senderID string
	event    string
	payload  json.RawMessage
	reply    chan int
}

// Relay broadcasts task events to every connection except the sender.
// All state is owned by the goroutine running Run.
type Relay struct {
	commands chan command
	stopped  chan struct{}
	members  map[string]Member
	logger   *slog.Logger
}

// NewRelay creates a Relay. Nothing is processed until Run is called.
func NewRelay(logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		commands: make(chan command),
		stopped:  make(chan struct{}),
		members:  make(map[string]Member),
		logger:   logger.With(slog.String("component", "relay")),
	}
}

// Run processes commands until ctx is done, then closes every registered
// connection. Afterwards all Relay methods are no-ops. Run must be called
// at most once.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("relay started")
	defer close(r.stopped)

	for {
		select {
		case <-ctx.Done():
			for id, m := range r.members {
				delete(r.members, id)
				m.Close()
			}
			r.logger.Info("relay stopped")
			return nil
		case cmd := <-r.commands:
			r.handle(cmd)
		}
	}
}

func (r *Relay) handle(cmd command) {
	switch cmd.kind {
	case cmdConnect:
		id := cmd.member.ID()
		if old, ok := r.members[id]; ok && old != cmd.member {
			old.Close()
		}
		r.members[id] = cmd.member
		r.logger.Info("user connected",
			slog.String("connection_id", id),
			slog.Int("connections", len(r.members)))

	case cmdDisconnect:
		m, ok := r.members[cmd.senderID]
		if !ok {
			return
		}
		delete(r.members, cmd.senderID)
		m.Close()
		r.logger.Info("user disconnected",
			slog.String("connection_id", cmd.senderID),
			slog.Int("connections", len(r.members)))

	case cmdPublish:
		r.broadcast(cmd.senderID, cmd.event, cmd.payload)

	case cmdCount:
		cmd.reply <- len(r.members)
	}
}

func (r *Relay) broadcast(senderID, event string, payload json.RawMessage) {
	if len(r.members) == 0 {
		return
	}

	frame := EncodeEnvelope(event, payload)
	delivered := 0
	for id, m := range r.members {
		if id == senderID {
			continue
		}
		if !m.Enqueue(frame) {
			r.logger.Debug("dropping event for slow connection",
				slog.String("connection_id", id),
				slog.String("event", event))
			continue
		}
		delivered++
	}

	r.logger.Debug("event relayed",
		slog.String("event", event),
		slog.String("sender_id", senderID),
		slog.Int("recipients", delivered))
}

// submit hands cmd to the Run loop. It reports false once the relay has stopped.
func (r *Relay) submit(cmd command) bool {
	select {
	case r.commands <- cmd:
		return true
	case <-r.stopped:
		return false
	}
}

// Connect registers m for future broadcasts. It returns false if the relay
// has stopped, in which case m is not registered and the caller keeps
// ownership of it.
func (r *Relay) Connect(m Member) bool {
	return r.submit(command{kind: cmdConnect, member: m})
}

// Disconnect unregisters the connection with the given id and closes it.
// Unknown ids are ignored.
func (r *Relay) Disconnect(id string) {
	r.submit(command{kind: cmdDisconnect, senderID: id})
}

// Publish forwards payload under event to every connection except senderID.
// Events other than taskUpdated and taskCreated are dropped.
func (r *Relay) Publish(senderID, event string, payload json.RawMessage) {
	if !IsRelayed(event) {
		r.logger.Debug("ignoring unknown event",
			slog.String("event", event),
			slog.String("sender_id", senderID))
		return
	}
	r.submit(command{kind: cmdPublish, senderID: senderID, event: event, payload: payload})
}

// Connections returns the number of registered connections, or 0 once the
// relay has stopped.
func (r *Relay) Connections() int {
	reply := make(chan int, 1)
	if !r.submit(command{kind: cmdCount, reply: reply}) {
		return 0
	}
	return <-reply
}
