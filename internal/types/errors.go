package types

import "errors"

// Sentinel errors shared across service and repository layers. Handlers map
// these to HTTP status codes at the boundary; anything unwrapped falls
// through as a 500 with a generic message.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrBadRequest      = errors.New("invalid input")
	ErrSessionRevoked  = errors.New("session revoked")
)
