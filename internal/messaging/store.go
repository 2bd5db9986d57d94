package messaging

import (
	"context"

	"github.com/google/uuid"
)

// RoomDirectory maps parties to the rooms they participate in. Ordering of
// ListRooms is stable (created_at, then id) but presentation order is a view
// concern, not a store concern.
type RoomDirectory interface {
	ListRooms(ctx context.Context, partyID uuid.UUID, kind PartyKind) ([]Room, error)
	GetRoom(ctx context.Context, roomID uuid.UUID) (Room, error)
}

// MessageStore is the durable append-only transcript log.
//
// AppendMessage commits before returning, so a caller that sends and then
// re-syncs always observes its own message (the linchpin of poll-based
// sync). It fails with ErrValidation on empty content, ErrNotFound on an
// unknown room and ErrForbidden when the sender is not a participant; none
// of those leave anything behind in the store.
//
// ListMessages returns the room's total order. With a nil cursor it returns
// the most recent messages up to the store's cap; with a cursor it returns
// only messages with Seq strictly greater, oldest first.
type MessageStore interface {
	AppendMessage(ctx context.Context, roomID, senderID uuid.UUID, senderKind PartyKind, content string) (Message, error)
	ListMessages(ctx context.Context, roomID uuid.UUID, after *int64, limit int) ([]Message, error)
}

// PartyDirectory resolves party snapshots. Backed by the external party
// directory (postgres adapter with a redis read-through cache in
// production); the messaging core only reads.
type PartyDirectory interface {
	// ResolveUser maps an authenticated user handle and a party kind to the
	// party it acts as.
	ResolveUser(ctx context.Context, uid string, kind PartyKind) (Party, error)
	// Lookup fetches the display snapshot for a known party id.
	Lookup(ctx context.Context, partyID uuid.UUID) (Party, error)
}
