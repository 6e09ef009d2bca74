// Package store defines the persistence gateway used by the HTTP handlers.
// Interfaces here are implemented by internal/platform/postgres; handlers and
// services depend only on these contracts and on the sentinel errors below.
package store
