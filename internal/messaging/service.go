package messaging

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Notifier receives a hint after every committed message so connected
// clients can re-sync early. Hints are best-effort: the poll cycle is the
// source of truth and never depends on them.
type Notifier interface {
	RoomActivity(room Room, msg Message)
}

// Service enforces the participant-authorization invariant on every read
// and write, joins rooms with party snapshots for the room-list sync, and
// runs the server side of the send pipeline.
type Service struct {
	rooms     RoomDirectory
	messages  MessageStore
	directory PartyDirectory
	notifier  Notifier
	log       *slog.Logger
}

func NewService(rooms RoomDirectory, messages MessageStore, directory PartyDirectory, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		rooms:     rooms,
		messages:  messages,
		directory: directory,
		notifier:  notifier,
		log:       log,
	}
}

// Caller resolves the authenticated user handle to the party it acts as.
func (s *Service) Caller(ctx context.Context, uid string, kind PartyKind) (Party, error) {
	if uid == "" || !kind.Valid() {
		return Party{}, ErrUnauthenticated
	}
	return s.directory.ResolveUser(ctx, uid, kind)
}

// RoomList is the room-list sync: every room the caller participates in,
// each joined with the counterparty's display snapshot.
func (s *Service) RoomList(ctx context.Context, caller Party) ([]RoomEntry, error) {
	rooms, err := s.rooms.ListRooms(ctx, caller.ID, caller.Kind)
	if err != nil {
		return nil, err
	}
	entries := make([]RoomEntry, 0, len(rooms))
	for _, room := range rooms {
		other, err := s.directory.Lookup(ctx, room.OtherPartyID(caller.ID))
		if err != nil {
			// A room whose counterparty cannot be resolved degrades out of
			// the list instead of failing the whole sync.
			s.log.Warn("skipping room with unresolvable counterparty",
				"room_id", room.ID, "error", err)
			continue
		}
		entries = append(entries, RoomEntry{Room: room, OtherParty: other})
	}
	return entries, nil
}

// Transcript is the transcript sync for one room. The caller must be a
// participant; after, when set, returns only messages strictly past that
// cursor.
func (s *Service) Transcript(ctx context.Context, caller Party, roomID uuid.UUID, after *int64, limit int) ([]Message, error) {
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(caller.ID) {
		return nil, ErrForbidden
	}
	return s.messages.ListMessages(ctx, roomID, after, limit)
}

// Send commits one message. It is durable before returning, so the caller's
// next transcript sync is guaranteed to include it.
func (s *Service) Send(ctx context.Context, caller Party, roomID uuid.UUID, content string) (Message, error) {
	if strings.TrimSpace(content) == "" {
		return Message{}, ErrValidation
	}
	msg, err := s.messages.AppendMessage(ctx, roomID, caller.ID, caller.Kind, content)
	if err != nil {
		return Message{}, err
	}
	if s.notifier != nil {
		room, err := s.rooms.GetRoom(ctx, roomID)
		if err == nil {
			s.notifier.RoomActivity(room, msg)
		}
	}
	return msg, nil
}
