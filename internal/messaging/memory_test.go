package messaging

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestRoom(store *MemoryStore) Room {
	room := Room{
		ID:             uuid.New(),
		CompanyPartyID: uuid.New(),
		InternPartyID:  uuid.New(),
		CreatedAt:      time.Now().UTC(),
	}
	store.AddRoom(room)
	return room
}

func TestAppendMessage_ReadYourWrites(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore(0)
	room := newTestRoom(store)
	ctx := context.Background()

	sent, err := store.AppendMessage(ctx, room.ID, room.CompanyPartyID, PartyCompany, "Hello")
	req.NoError(err)

	messages, err := store.ListMessages(ctx, room.ID, nil, 0)
	req.NoError(err)
	req.NotEmpty(messages)
	req.Equal(sent.ID, messages[len(messages)-1].ID)
}

func TestAppendMessage_EmptyContent(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore(0)
	room := newTestRoom(store)
	ctx := context.Background()

	for _, content := range []string{"", "   ", "\n\t "} {
		_, err := store.AppendMessage(ctx, room.ID, room.CompanyPartyID, PartyCompany, content)
		req.ErrorIs(err, ErrValidation)
	}

	messages, err := store.ListMessages(ctx, room.ID, nil, 0)
	req.NoError(err)
	req.Empty(messages)
}

func TestAppendMessage_NonParticipant(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore(0)
	room := newTestRoom(store)
	ctx := context.Background()

	_, err := store.AppendMessage(ctx, room.ID, uuid.New(), PartyIntern, "let me in")
	req.ErrorIs(err, ErrForbidden)

	messages, err := store.ListMessages(ctx, room.ID, nil, 0)
	req.NoError(err)
	req.Empty(messages)
}

func TestAppendMessage_UnknownRoom(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore(0)
	ctx := context.Background()

	ghost := uuid.New()
	_, err := store.AppendMessage(ctx, ghost, uuid.New(), PartyCompany, "anyone home?")
	req.ErrorIs(err, ErrNotFound)

	_, err = store.ListMessages(ctx, ghost, nil, 0)
	req.ErrorIs(err, ErrNotFound)
}

func TestListMessages_TotalOrder(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore(0)
	room := newTestRoom(store)
	ctx := context.Background()

	_, err := store.AppendMessage(ctx, room.ID, room.CompanyPartyID, PartyCompany, "Hello")
	req.NoError(err)
	_, err = store.AppendMessage(ctx, room.ID, room.InternPartyID, PartyIntern, "Hi there")
	req.NoError(err)

	messages, err := store.ListMessages(ctx, room.ID, nil, 0)
	req.NoError(err)
	req.Len(messages, 2)
	req.Equal("Hello", messages[0].Content)
	req.Equal("Hi there", messages[1].Content)

	// Strict total order: distinct ascending seq, non-decreasing timestamps.
	for i := 1; i < len(messages); i++ {
		req.Greater(messages[i].Seq, messages[i-1].Seq)
		req.False(messages[i].CreatedAt.Before(messages[i-1].CreatedAt))
	}
}

func TestListMessages_CreatedAtNeverRunsBackwards(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore(0)
	room := newTestRoom(store)
	ctx := context.Background()

	base := time.Now().UTC()
	clock := []time.Time{base, base.Add(-time.Minute), base.Add(time.Second)}
	i := 0
	store.SetClock(func() time.Time {
		at := clock[i]
		i++
		return at
	})

	for n := 0; n < len(clock); n++ {
		_, err := store.AppendMessage(ctx, room.ID, room.CompanyPartyID, PartyCompany, fmt.Sprintf("m%d", n))
		req.NoError(err)
	}

	messages, err := store.ListMessages(ctx, room.ID, nil, 0)
	req.NoError(err)
	req.Len(messages, 3)
	for n := 1; n < len(messages); n++ {
		req.False(messages[n].CreatedAt.Before(messages[n-1].CreatedAt))
	}
}

func TestListMessages_Cursor(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore(0)
	room := newTestRoom(store)
	ctx := context.Background()

	for n := 0; n < 5; n++ {
		_, err := store.AppendMessage(ctx, room.ID, room.CompanyPartyID, PartyCompany, fmt.Sprintf("m%d", n))
		req.NoError(err)
	}

	all, err := store.ListMessages(ctx, room.ID, nil, 0)
	req.NoError(err)
	req.Len(all, 5)

	cursor := all[2].Seq
	rest, err := store.ListMessages(ctx, room.ID, &cursor, 0)
	req.NoError(err)
	req.Len(rest, 2)
	req.Equal("m3", rest[0].Content)
	req.Equal("m4", rest[1].Content)

	// Cursor at the tip yields nothing.
	tip := all[4].Seq
	none, err := store.ListMessages(ctx, room.ID, &tip, 0)
	req.NoError(err)
	req.Empty(none)
}

func TestListMessages_RecentWindowWhenCapped(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore(3)
	room := newTestRoom(store)
	ctx := context.Background()

	for n := 0; n < 5; n++ {
		_, err := store.AppendMessage(ctx, room.ID, room.CompanyPartyID, PartyCompany, fmt.Sprintf("m%d", n))
		req.NoError(err)
	}

	window, err := store.ListMessages(ctx, room.ID, nil, 0)
	req.NoError(err)
	req.Len(window, 3)
	// Most recent N, still oldest-first.
	req.Equal("m2", window[0].Content)
	req.Equal("m4", window[2].Content)
}

func TestAppendMessage_ConcurrentSendersSerialize(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore(0)
	room := newTestRoom(store)
	ctx := context.Background()

	const perSide = 25
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for n := 0; n < perSide; n++ {
			store.AppendMessage(ctx, room.ID, room.CompanyPartyID, PartyCompany, fmt.Sprintf("c%d", n))
		}
	}()
	go func() {
		defer wg.Done()
		for n := 0; n < perSide; n++ {
			store.AppendMessage(ctx, room.ID, room.InternPartyID, PartyIntern, fmt.Sprintf("i%d", n))
		}
	}()
	wg.Wait()

	messages, err := store.ListMessages(ctx, room.ID, nil, 0)
	req.NoError(err)
	req.Len(messages, 2*perSide)

	seen := make(map[int64]bool)
	for n, msg := range messages {
		req.False(seen[msg.Seq], "duplicate seq %d", msg.Seq)
		seen[msg.Seq] = true
		req.Equal(int64(n+1), msg.Seq)
	}
}

func TestListRooms_FiltersByParticipantSide(t *testing.T) {
	req := require.New(t)
	store := NewMemoryStore(0)
	ctx := context.Background()

	company := uuid.New()
	roomA := Room{ID: uuid.New(), CompanyPartyID: company, InternPartyID: uuid.New(), CreatedAt: time.Now().UTC()}
	roomB := Room{ID: uuid.New(), CompanyPartyID: company, InternPartyID: uuid.New(), CreatedAt: time.Now().UTC().Add(time.Second)}
	other := Room{ID: uuid.New(), CompanyPartyID: uuid.New(), InternPartyID: uuid.New(), CreatedAt: time.Now().UTC()}
	store.AddRoom(roomA)
	store.AddRoom(roomB)
	store.AddRoom(other)

	rooms, err := store.ListRooms(ctx, company, PartyCompany)
	req.NoError(err)
	req.Len(rooms, 2)
	req.Equal(roomA.ID, rooms[0].ID)
	req.Equal(roomB.ID, rooms[1].ID)

	// The same id queried as an intern matches nothing.
	rooms, err = store.ListRooms(ctx, company, PartyIntern)
	req.NoError(err)
	req.Empty(rooms)
}
