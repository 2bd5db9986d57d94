package client

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"jobmatch/internal/messaging"
	"jobmatch/internal/view"

	"github.com/google/uuid"
)

// SendState is the per-attempt state of the send pipeline.
type SendState int

const (
	SendIdle SendState = iota
	SendSending
	SendCommitted
	SendFailed
)

// Session is one client view session: the cached sync state, the derived
// view, and the send pipeline. Sync failures degrade to the last known good
// view instead of blanking it; send failures keep the draft so the user can
// retry explicitly.
type Session struct {
	client *Client
	log    *slog.Logger

	mu          sync.Mutex
	entries     []messaging.RoomEntry
	transcripts map[uuid.UUID][]messaging.Message
	summaries   []view.RoomSummary
	selection   view.Selection

	sendState   SendState
	draft       string
	lastSendErr error
}

func NewSession(c *Client, log *slog.Logger) *Session {
	return &Session{
		client:      c,
		log:         log,
		transcripts: make(map[uuid.UUID][]messaging.Message),
	}
}

// SyncRooms re-issues the room-list sync. On failure the cached view stays
// as-is and the error is returned for the caller to surface.
func (s *Session) SyncRooms(ctx context.Context) error {
	entries, err := s.client.Rooms(ctx)
	if err != nil {
		s.log.Warn("room list sync failed, keeping cached view", "error", err)
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.rebuild()
	return nil
}

// SyncTranscript re-issues the transcript sync for one room. It fetches
// incrementally from the last seen cursor. A room that no longer exists (or
// is no longer accessible) degrades out of the view instead of failing the
// session.
func (s *Session) SyncTranscript(ctx context.Context, roomID uuid.UUID) error {
	s.mu.Lock()
	var after *int64
	if transcript := s.transcripts[roomID]; len(transcript) > 0 {
		seq := transcript[len(transcript)-1].Seq
		after = &seq
	}
	s.mu.Unlock()

	messages, err := s.client.Messages(ctx, roomID, after)
	if err != nil {
		if isNotFound(err) {
			s.dropRoom(roomID)
			return nil
		}
		s.log.Warn("transcript sync failed, keeping cached view",
			"room_id", roomID, "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A concurrent sync of the same room may have read the same cursor and
	// fetched the same page. The cache only ever moves forward: anything at
	// or below the last cached seq is already here.
	cached := s.transcripts[roomID]
	lastSeq := int64(0)
	if len(cached) > 0 {
		lastSeq = cached[len(cached)-1].Seq
	}
	for _, msg := range messages {
		if msg.Seq <= lastSeq {
			continue
		}
		cached = append(cached, msg)
		lastSeq = msg.Seq
	}
	s.transcripts[roomID] = cached
	s.rebuild()
	return nil
}

// Submit runs one send attempt: Idle → Sending → Committed or Failed.
//
// Empty or whitespace-only input never starts an attempt, and a submit
// while another is in flight is a no-op rather than queued. On commit the
// draft is cleared and the transcript is re-synced immediately (not on the
// next periodic tick); on failure the draft is preserved for an explicit
// retry. The started return says whether a transition happened.
func (s *Session) Submit(ctx context.Context, roomID uuid.UUID, content string) (started bool, err error) {
	if strings.TrimSpace(content) == "" {
		return false, nil
	}

	s.mu.Lock()
	if s.sendState == SendSending {
		s.mu.Unlock()
		return false, nil
	}
	s.sendState = SendSending
	s.draft = content
	s.mu.Unlock()

	_, err = s.client.Send(ctx, roomID, content)

	s.mu.Lock()
	if err != nil {
		s.sendState = SendFailed
		s.lastSendErr = err
		s.mu.Unlock()
		return true, err
	}
	s.sendState = SendCommitted
	s.draft = ""
	s.lastSendErr = nil
	s.mu.Unlock()

	// The committed message is durable server-side, so this sync is
	// guaranteed to observe it. A failure here only delays visibility.
	if err := s.SyncTranscript(ctx, roomID); err != nil {
		s.log.Warn("post-send transcript sync failed", "room_id", roomID, "error", err)
	}
	return true, nil
}

// SendStatus reports the pipeline state, the preserved draft and the last
// send error, for rendering the compose box.
func (s *Session) SendStatus() (SendState, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendState, s.draft, s.lastSendErr
}

// Rooms returns the current ordered room summaries.
func (s *Session) Rooms() []view.RoomSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]view.RoomSummary, len(s.summaries))
	copy(out, s.summaries)
	return out
}

// Transcript returns the grouped transcript for a room as currently cached.
func (s *Session) Transcript(roomID uuid.UUID) []view.TranscriptEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return view.GroupTranscript(s.transcripts[roomID])
}

// Select records an explicit room choice; later syncs never revert it.
func (s *Session) Select(roomID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Select(roomID)
}

// Selected returns the room the transcript pane should show.
func (s *Session) Selected() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Current()
}

func (s *Session) dropRoom(roomID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	for _, entry := range s.entries {
		if entry.Room.ID != roomID {
			kept = append(kept, entry)
		}
	}
	s.entries = kept
	delete(s.transcripts, roomID)
	s.selection.Drop(roomID)
	s.rebuild()
}

// rebuild recomputes the derived view from the cached sync state. Callers
// hold s.mu.
func (s *Session) rebuild() {
	s.summaries = view.Summarize(s.entries, s.transcripts)
	s.selection.Apply(s.summaries)
}

func isNotFound(err error) bool {
	return errors.Is(err, messaging.ErrNotFound)
}
