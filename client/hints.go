package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"jobmatch/internal/messaging"

	"github.com/gorilla/websocket"
)

// ListenHints connects to the server's activity-hint stream and invokes
// onHint for every hint until the context is cancelled or the connection
// drops. Hints are lossy by contract; this is only an early sync trigger on
// top of the caller's own polling, never a replacement for it.
func (c *Client) ListenHints(ctx context.Context, onHint func(messaging.ActivityHint)) error {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/ws"
	header := http.Header{"Authorization": []string{"Bearer " + c.token}}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		var hint messaging.ActivityHint
		if err := json.Unmarshal(payload, &hint); err != nil {
			continue
		}
		onHint(hint)
	}
}

// FollowHints drives the session from the hint stream: a hint for a room
// whose transcript is cached triggers a transcript sync, anything else
// refreshes the room list.
func (s *Session) FollowHints(ctx context.Context) error {
	return s.client.ListenHints(ctx, func(hint messaging.ActivityHint) {
		s.mu.Lock()
		_, cached := s.transcripts[hint.RoomID]
		s.mu.Unlock()

		if cached {
			if err := s.SyncTranscript(ctx, hint.RoomID); err != nil {
				return
			}
		}
		if err := s.SyncRooms(ctx); err != nil {
			s.log.Warn("hint-triggered room sync failed", "error", err)
		}
	})
}
