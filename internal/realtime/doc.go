// Package realtime relays task events between socket clients.
//
// A Relay owns the registry of live connections. Connect, Disconnect and
// Publish are commands processed one at a time by Relay.Run, so the registry
// needs no locking and two events from one sender reach every recipient in
// the order they were emitted. Publishing fans the event out to every
// registered connection except the sender. Recipients whose outbound queue
// is full miss the event; nothing is retried or persisted.
//
// Handler exposes the relay over WebSocket. Frames are JSON envelopes of the
// form {"event": "taskUpdated", "data": <any JSON>}.
package realtime
