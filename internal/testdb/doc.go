// Package testdb provides helpers for integration tests that need a real
// PostgreSQL database. Tests are skipped when DATABASE_URL is not set.
package testdb
