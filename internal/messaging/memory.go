package messaging

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory RoomDirectory + MessageStore with the same
// semantics as the postgres store. It backs tests and local development.
type MemoryStore struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]Room
	logs  map[uuid.UUID][]Message
	limit int
	now   func() time.Time
}

func NewMemoryStore(limit int) *MemoryStore {
	return &MemoryStore{
		rooms: make(map[uuid.UUID]Room),
		logs:  make(map[uuid.UUID][]Message),
		limit: limit,
		now:   time.Now,
	}
}

// SetClock overrides the wall clock. Test helper.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// AddRoom registers a room, standing in for the out-of-core creation
// workflow (first application / first contact).
func (s *MemoryStore) AddRoom(room Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room
}

// RemoveRoom deletes a room and its transcript, standing in for an
// out-of-core room teardown (e.g. a withdrawn application).
func (s *MemoryStore) RemoveRoom(roomID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomID)
	delete(s.logs, roomID)
}

func (s *MemoryStore) GetRoom(_ context.Context, roomID uuid.UUID) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return Room{}, ErrNotFound
	}
	return room, nil
}

func (s *MemoryStore) ListRooms(_ context.Context, partyID uuid.UUID, kind PartyKind) ([]Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rooms []Room
	for _, room := range s.rooms {
		switch kind {
		case PartyCompany:
			if room.CompanyPartyID == partyID {
				rooms = append(rooms, room)
			}
		case PartyIntern:
			if room.InternPartyID == partyID {
				rooms = append(rooms, room)
			}
		}
	}
	// Stable order so repeated syncs over identical data agree.
	sort.Slice(rooms, func(i, j int) bool {
		if !rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
		}
		return rooms[i].ID.String() < rooms[j].ID.String()
	})
	return rooms, nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, roomID, senderID uuid.UUID, senderKind PartyKind, content string) (Message, error) {
	if strings.TrimSpace(content) == "" {
		return Message{}, ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return Message{}, ErrNotFound
	}
	if !room.HasParticipant(senderID) {
		return Message{}, ErrForbidden
	}

	log := s.logs[roomID]
	at := s.now().UTC()
	if n := len(log); n > 0 && at.Before(log[n-1].CreatedAt) {
		// Keep CreatedAt non-decreasing even if the clock jumps back.
		at = log[n-1].CreatedAt
	}
	msg := Message{
		ID:         uuid.New(),
		RoomID:     roomID,
		Seq:        int64(len(log)) + 1,
		SenderID:   senderID,
		SenderKind: senderKind,
		Content:    content,
		CreatedAt:  at,
	}
	s.logs[roomID] = append(log, msg)
	return msg, nil
}

func (s *MemoryStore) ListMessages(_ context.Context, roomID uuid.UUID, after *int64, limit int) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[roomID]; !ok {
		return nil, ErrNotFound
	}
	if limit <= 0 {
		limit = s.limit
	}

	log := s.logs[roomID]
	if after != nil {
		// Seq is dense and 1-based, so the cursor is also an index.
		idx := int(*after)
		if idx < 0 {
			idx = 0
		}
		if idx > len(log) {
			idx = len(log)
		}
		log = log[idx:]
		if limit > 0 && len(log) > limit {
			log = log[:limit]
		}
	} else if limit > 0 && len(log) > limit {
		// No cursor: the most recent window, still oldest-first.
		log = log[len(log)-limit:]
	}

	out := make([]Message, len(log))
	copy(out, log)
	return out, nil
}
