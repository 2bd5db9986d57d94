package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestHub_FanOutReachesOnlyParticipants(t *testing.T) {
	req := require.New(t)
	hub := NewHub(nil, slog.Default())

	company := &wsClient{send: make(chan []byte, 1), partyID: uuid.New()}
	intern := &wsClient{send: make(chan []byte, 1), partyID: uuid.New()}
	stranger := &wsClient{send: make(chan []byte, 1), partyID: uuid.New()}
	hub.clients[company] = true
	hub.clients[intern] = true
	hub.clients[stranger] = true

	hint := ActivityHint{
		RoomID:         uuid.New(),
		CompanyPartyID: company.partyID,
		InternPartyID:  intern.partyID,
		Seq:            3,
	}
	payload, err := json.Marshal(hint)
	req.NoError(err)

	hub.fanOut(hint, payload)

	var got ActivityHint
	req.NoError(json.Unmarshal(<-company.send, &got))
	req.Equal(hint, got)
	req.Len(intern.send, 1)
	req.Empty(stranger.send, "non-participants must not receive room hints")
}

func TestHub_SaturatedClientIsDropped(t *testing.T) {
	req := require.New(t)
	hub := NewHub(nil, slog.Default())

	// No buffer and no reader: the first delivery attempt cannot proceed.
	stuck := &wsClient{send: make(chan []byte), partyID: uuid.New()}
	hub.clients[stuck] = true

	hint := ActivityHint{RoomID: uuid.New(), CompanyPartyID: stuck.partyID, InternPartyID: uuid.New()}
	payload, err := json.Marshal(hint)
	req.NoError(err)

	hub.fanOut(hint, payload)

	req.NotContains(hub.clients, stuck)
	_, open := <-stuck.send
	req.False(open, "dropped client's send channel must be closed")
}

func TestHub_RoomActivityReachesRegisteredClient(t *testing.T) {
	req := require.New(t)
	hub := NewHub(nil, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	client := &wsClient{send: make(chan []byte, 1), partyID: uuid.New()}
	hub.register <- client

	room := Room{ID: uuid.New(), CompanyPartyID: client.partyID, InternPartyID: uuid.New()}
	hub.RoomActivity(room, Message{ID: uuid.New(), RoomID: room.ID, Seq: 7})

	select {
	case payload := <-client.send:
		var hint ActivityHint
		req.NoError(json.Unmarshal(payload, &hint))
		req.Equal(room.ID, hint.RoomID)
		req.Equal(int64(7), hint.Seq)
	case <-time.After(time.Second):
		t.Fatal("hint was not delivered to a registered participant")
	}
}
