// Package postgres implements the internal/store interfaces on PostgreSQL
// through the pgx database/sql driver. It also owns the embedded goose
// migrations that create the schema.
package postgres
