// Package view derives presentational state from synced data: room list
// ordering, last-message previews, transcript grouping and the default room
// selection. Everything here is a pure function over the latest sync
// result; nothing is incrementally mutated, so the derived state can never
// drift from server truth.
package view

import (
	"sort"
	"time"

	"jobmatch/internal/messaging"

	"github.com/google/uuid"
)

// NoMessagesPlaceholder is shown for rooms whose transcript has not been
// fetched yet or holds no messages. Previews never force an eager backfill.
const NoMessagesPlaceholder = "No messages yet"

// RoomSummary joins a room, the counterparty snapshot and the most recent
// message of the room's fetched transcript. Recomputed on every sync.
type RoomSummary struct {
	Room        messaging.Room
	OtherParty  messaging.Party
	LastMessage *messaging.Message
}

// Preview is the room-list preview text.
func (s RoomSummary) Preview() string {
	if s.LastMessage == nil {
		return NoMessagesPlaceholder
	}
	return s.LastMessage.Content
}

// lastActivity is the ordering key: the last message's timestamp, or the
// room's creation time while the room is still silent.
func (s RoomSummary) lastActivity() time.Time {
	if s.LastMessage != nil {
		return s.LastMessage.CreatedAt
	}
	return s.Room.CreatedAt
}

// Summarize joins the room-list sync result with whatever transcripts have
// been fetched so far, and returns summaries in display order.
func Summarize(entries []messaging.RoomEntry, transcripts map[uuid.UUID][]messaging.Message) []RoomSummary {
	summaries := make([]RoomSummary, 0, len(entries))
	for _, entry := range entries {
		summary := RoomSummary{Room: entry.Room, OtherParty: entry.OtherParty}
		if transcript, ok := transcripts[entry.Room.ID]; ok && len(transcript) > 0 {
			last := transcript[len(transcript)-1]
			summary.LastMessage = &last
		}
		summaries = append(summaries, summary)
	}
	return OrderRooms(summaries)
}

// OrderRooms sorts most-recent-activity first. Exact ties fall back to
// roomId so two syncs over identical data always agree and the list never
// flickers.
func OrderRooms(summaries []RoomSummary) []RoomSummary {
	ordered := make([]RoomSummary, len(summaries))
	copy(ordered, summaries)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].lastActivity(), ordered[j].lastActivity()
		if !a.Equal(b) {
			return a.After(b)
		}
		return ordered[i].Room.ID.String() < ordered[j].Room.ID.String()
	})
	return ordered
}

// TranscriptEntry is one rendered message. ShowAvatar is true only on the
// first message of a run of consecutive messages from the same sender.
type TranscriptEntry struct {
	Message    messaging.Message
	ShowAvatar bool
}

// GroupTranscript marks sender-run boundaries: a new run starts whenever
// the sender changes from the immediately preceding message.
func GroupTranscript(messages []messaging.Message) []TranscriptEntry {
	entries := make([]TranscriptEntry, len(messages))
	for i, msg := range messages {
		entries[i] = TranscriptEntry{
			Message:    msg,
			ShowAvatar: i == 0 || messages[i-1].SenderID != msg.SenderID,
		}
	}
	return entries
}

// FormatTimestamp renders a message time relative to now: clock time within
// a day, weekday within a week, date beyond that.
func FormatTimestamp(now, at time.Time) string {
	switch age := now.Sub(at); {
	case age < 24*time.Hour:
		return at.Format("15:04")
	case age < 7*24*time.Hour:
		return at.Format("Mon 15:04")
	default:
		return at.Format("Jan 2 15:04")
	}
}

// Selection tracks which room the transcript pane shows. The first room of
// a non-empty ordered list is auto-selected exactly once per view session;
// an explicit user selection always wins and is never reverted by a later
// sync.
type Selection struct {
	roomID       uuid.UUID
	selected     bool
	autoSelected bool
}

// Select records an explicit user choice.
func (s *Selection) Select(roomID uuid.UUID) {
	s.roomID = roomID
	s.selected = true
	s.autoSelected = true // an explicit choice also spends the auto-select
}

// Apply feeds a fresh ordered room list through the selection rules.
func (s *Selection) Apply(ordered []RoomSummary) {
	if s.autoSelected || len(ordered) == 0 {
		return
	}
	s.roomID = ordered[0].Room.ID
	s.selected = true
	s.autoSelected = true
}

// Drop clears the selection if it points at roomID (the room disappeared
// from the list). An explicit selection of another room is untouched.
func (s *Selection) Drop(roomID uuid.UUID) {
	if s.selected && s.roomID == roomID {
		s.selected = false
	}
}

// Current returns the selected room, if any.
func (s *Selection) Current() (uuid.UUID, bool) {
	return s.roomID, s.selected
}
