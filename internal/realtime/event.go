package realtime

import (
	"encoding/json"
	"errors"
	"strconv"
)

// Relayed event names.
const (
	EventTaskUpdated = "taskUpdated"
	EventTaskCreated = "taskCreated"
)

var (
	// ErrMalformedFrame is returned for frames that are not a JSON envelope.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrUnknownEvent is returned for envelopes naming an event the relay
	// does not forward.
	ErrUnknownEvent = errors.New("unknown event")
)

// IsRelayed reports whether event is forwarded to other connections.
func IsRelayed(event string) bool {
	return event == EventTaskUpdated || event == EventTaskCreated
}

// Envelope is the wire format of every frame. Data is opaque to the relay.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// DecodeEnvelope parses an inbound frame and checks that its event is relayed.
func DecodeEnvelope(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, errors.Join(ErrMalformedFrame, err)
	}
	if env.Event == "" {
		return Envelope{}, ErrMalformedFrame
	}
	if !IsRelayed(env.Event) {
		return env, ErrUnknownEvent
	}
	return env, nil
}

// EncodeEnvelope builds an outbound frame. data is copied verbatim; nil is
// sent as null.
func EncodeEnvelope(event string, data json.RawMessage) []byte {
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	frame := make([]byte, 0, len(event)+len(data)+24)
	frame = append(frame, `{"event":`...)
	frame = strconv.AppendQuote(frame, event)
	frame = append(frame, `,"data":`...)
	frame = append(frame, data...)
	return append(frame, '}')
}
