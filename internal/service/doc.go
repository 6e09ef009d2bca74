// Package service holds the use cases behind the REST API: registration and
// login, task visibility and ownership rules, and team membership management.
//
// Services depend only on the store interfaces. They return domain and store
// sentinels (or the ones declared in errors.go) so the API layer can map them
// to status codes with errors.Is.
package service
