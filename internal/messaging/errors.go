package messaging

import "errors"

// Error taxonomy for the messaging core. Handlers map these to HTTP status
// codes; the Go client maps status codes back to the same sentinels so both
// sides of the sync protocol speak one vocabulary.
var (
	// ErrValidation rejects empty or whitespace-only message content.
	ErrValidation = errors.New("message content is empty")

	// ErrNotFound means the addressed room does not exist.
	ErrNotFound = errors.New("room not found")

	// ErrForbidden means the caller is not one of the room's two participants.
	ErrForbidden = errors.New("not a participant of this room")

	// ErrUnauthenticated means no valid identity was presented.
	ErrUnauthenticated = errors.New("missing or invalid identity")

	// ErrTransport wraps network-level failures on the client side.
	// A timed-out send resolves to Failed exactly like any other error.
	ErrTransport = errors.New("transport failure")
)
