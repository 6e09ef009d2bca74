package service

import "errors"

// Service-level sentinels. The API layer maps these to HTTP status codes.
var (
	// ErrNotOwned indicates the caller can see the resource but is not its
	// owner or creator. Maps to 403.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrNotTeamMember indicates the caller referenced a team they do not
	// belong to. Maps to 403.
	ErrNotTeamMember = errors.New("caller is not a member of the team")

	// ErrInvalidCredentials is returned by login for an unknown email or a
	// wrong password, without saying which. Maps to 401.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
