package view

import (
	"testing"
	"time"

	"jobmatch/internal/messaging"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func summaryWithLastMessage(at time.Time) RoomSummary {
	msg := messaging.Message{ID: uuid.New(), CreatedAt: at, Content: "last"}
	return RoomSummary{
		Room:        messaging.Room{ID: uuid.New(), CreatedAt: at.Add(-time.Hour)},
		LastMessage: &msg,
	}
}

func TestOrderRooms_MostRecentFirst(t *testing.T) {
	req := require.New(t)
	base := time.Now().UTC()

	r1 := summaryWithLastMessage(base.Add(10 * time.Second))
	r2 := summaryWithLastMessage(base.Add(20 * time.Second))

	ordered := OrderRooms([]RoomSummary{r1, r2})
	req.Equal(r2.Room.ID, ordered[0].Room.ID)
	req.Equal(r1.Room.ID, ordered[1].Room.ID)
}

func TestOrderRooms_SilentRoomUsesCreatedAt(t *testing.T) {
	req := require.New(t)
	base := time.Now().UTC()

	active := summaryWithLastMessage(base)
	silent := RoomSummary{Room: messaging.Room{ID: uuid.New(), CreatedAt: base.Add(time.Minute)}}

	ordered := OrderRooms([]RoomSummary{active, silent})
	req.Equal(silent.Room.ID, ordered[0].Room.ID)
}

func TestOrderRooms_TieBreaksByRoomID(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()

	a := RoomSummary{Room: messaging.Room{ID: uuid.MustParse("00000000-0000-0000-0000-00000000000a"), CreatedAt: at}}
	b := RoomSummary{Room: messaging.Room{ID: uuid.MustParse("00000000-0000-0000-0000-00000000000b"), CreatedAt: at}}

	first := OrderRooms([]RoomSummary{b, a})
	second := OrderRooms([]RoomSummary{a, b})
	req.Equal(first, second)
	req.Equal(a.Room.ID, first[0].Room.ID)
}

func TestOrderRooms_IdempotentOverSameData(t *testing.T) {
	req := require.New(t)
	base := time.Now().UTC()

	rooms := []RoomSummary{
		summaryWithLastMessage(base.Add(3 * time.Second)),
		summaryWithLastMessage(base.Add(1 * time.Second)),
		{Room: messaging.Room{ID: uuid.New(), CreatedAt: base.Add(2 * time.Second)}},
	}

	first := OrderRooms(rooms)
	second := OrderRooms(rooms)
	req.Equal(first, second)
}

func TestSummarize_PreviewAndPlaceholder(t *testing.T) {
	req := require.New(t)
	base := time.Now().UTC()

	fetched := messaging.Room{ID: uuid.New(), CreatedAt: base}
	unfetched := messaging.Room{ID: uuid.New(), CreatedAt: base.Add(time.Second)}
	empty := messaging.Room{ID: uuid.New(), CreatedAt: base.Add(2 * time.Second)}

	transcripts := map[uuid.UUID][]messaging.Message{
		fetched.ID: {
			{Content: "Hello", CreatedAt: base.Add(time.Minute)},
			{Content: "Hi there", CreatedAt: base.Add(2 * time.Minute)},
		},
		empty.ID: {},
	}
	entries := []messaging.RoomEntry{{Room: fetched}, {Room: unfetched}, {Room: empty}}

	summaries := Summarize(entries, transcripts)
	byID := make(map[uuid.UUID]RoomSummary)
	for _, s := range summaries {
		byID[s.Room.ID] = s
	}

	// Most recent message of the fetched transcript wins.
	req.Equal("Hi there", byID[fetched.ID].Preview())
	// Unfetched and empty transcripts both show the neutral placeholder; no
	// eager backfill happens just to compute a preview.
	req.Equal(NoMessagesPlaceholder, byID[unfetched.ID].Preview())
	req.Equal(NoMessagesPlaceholder, byID[empty.ID].Preview())

	// The fetched room's last message ranks it above the silent rooms.
	req.Equal(fetched.ID, summaries[0].Room.ID)
}

func TestGroupTranscript_AvatarOnRunBoundaries(t *testing.T) {
	req := require.New(t)
	sender := uuid.New()
	replier := uuid.New()

	messages := []messaging.Message{
		{SenderID: sender, Content: "first"},
		{SenderID: sender, Content: "second"},
		{SenderID: replier, Content: "reply"},
	}

	entries := GroupTranscript(messages)
	req.Len(entries, 3)
	req.True(entries[0].ShowAvatar)
	req.False(entries[1].ShowAvatar)
	req.True(entries[2].ShowAvatar)
}

func TestGroupTranscript_Empty(t *testing.T) {
	require.Empty(t, GroupTranscript(nil))
}

func TestFormatTimestamp_Buckets(t *testing.T) {
	req := require.New(t)
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

	req.Equal("09:30", FormatTimestamp(now, now.Add(-150*time.Minute).Add(0)))
	req.Equal("Thu 12:00", FormatTimestamp(now, now.Add(-2*24*time.Hour)))
	req.Equal("Mar 1 12:00", FormatTimestamp(now, now.Add(-14*24*time.Hour)))
}

func TestSelection_AutoSelectOncePerSession(t *testing.T) {
	req := require.New(t)
	base := time.Now().UTC()

	first := summaryWithLastMessage(base.Add(time.Minute))
	second := summaryWithLastMessage(base)

	var sel Selection
	_, ok := sel.Current()
	req.False(ok)

	sel.Apply([]RoomSummary{first, second})
	current, ok := sel.Current()
	req.True(ok)
	req.Equal(first.Room.ID, current)

	// A later sync reordering the list must not move the selection.
	newer := summaryWithLastMessage(base.Add(time.Hour))
	sel.Apply([]RoomSummary{newer, first, second})
	current, _ = sel.Current()
	req.Equal(first.Room.ID, current)
}

func TestSelection_ExplicitChoiceWins(t *testing.T) {
	req := require.New(t)
	base := time.Now().UTC()

	first := summaryWithLastMessage(base.Add(time.Minute))
	second := summaryWithLastMessage(base)

	var sel Selection
	sel.Select(second.Room.ID)
	sel.Apply([]RoomSummary{first, second})

	current, ok := sel.Current()
	req.True(ok)
	req.Equal(second.Room.ID, current)
}

func TestSelection_DropClearsOnlyMatchingRoom(t *testing.T) {
	req := require.New(t)
	roomA, roomB := uuid.New(), uuid.New()

	var sel Selection
	sel.Select(roomA)
	sel.Drop(roomB)
	_, ok := sel.Current()
	req.True(ok)

	sel.Drop(roomA)
	_, ok = sel.Current()
	req.False(ok)
}
