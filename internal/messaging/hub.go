package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// activityChannel is the redis pub/sub channel hints travel on, so every
// server instance sees commits made on any other instance.
const activityChannel = "room-activity"

// ActivityHint tells a connected client that a room has new activity. It
// carries no message content: the client re-syncs through the pull
// endpoints, which keeps ordering and read-your-writes in one place.
type ActivityHint struct {
	RoomID         uuid.UUID `json:"room_id"`
	CompanyPartyID uuid.UUID `json:"company_party_id"`
	InternPartyID  uuid.UUID `json:"intern_party_id"`
	Seq            int64     `json:"seq"`
}

// Hub fans activity hints out to connected websocket clients. Hints are
// lossy on purpose: a slow client gets disconnected rather than buffered
// forever, and the periodic poll covers anything it missed.
type Hub struct {
	clients    map[*wsClient]bool
	register   chan *wsClient
	unregister chan *wsClient
	publish    chan ActivityHint
	broadcast  chan ActivityHint
	redis      *redis.Client
	log        *slog.Logger
}

func NewHub(redisClient *redis.Client, log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*wsClient]bool),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		publish:    make(chan ActivityHint, 64),
		broadcast:  make(chan ActivityHint, 64),
		redis:      redisClient,
		log:        log,
	}
}

// RoomActivity implements Notifier. Never blocks the send pipeline: when
// the hub is saturated the hint is dropped.
func (h *Hub) RoomActivity(room Room, msg Message) {
	hint := ActivityHint{
		RoomID:         room.ID,
		CompanyPartyID: room.CompanyPartyID,
		InternPartyID:  room.InternPartyID,
		Seq:            msg.Seq,
	}
	select {
	case h.publish <- hint:
	default:
		h.log.Warn("activity hint dropped", "room_id", room.ID)
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case hint := <-h.publish:
			payload, err := json.Marshal(hint)
			if err != nil {
				continue
			}
			if h.redis != nil {
				if err := h.redis.Publish(ctx, activityChannel, payload).Err(); err != nil {
					h.log.Error("redis publish failed", "error", err)
				}
			} else {
				// Single-instance mode: short-circuit to local clients.
				h.fanOut(hint, payload)
			}

		case hint := <-h.broadcast:
			payload, err := json.Marshal(hint)
			if err != nil {
				continue
			}
			h.fanOut(hint, payload)
		}
	}
}

// Subscribe pipes hints published by any instance into the local broadcast
// loop.
func (h *Hub) Subscribe(ctx context.Context) {
	if h.redis == nil {
		return
	}
	pubsub := h.redis.Subscribe(ctx, activityChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var hint ActivityHint
		if err := json.Unmarshal([]byte(msg.Payload), &hint); err != nil {
			h.log.Error("malformed activity hint", "error", err)
			continue
		}
		select {
		case h.broadcast <- hint:
		case <-ctx.Done():
			return
		}
	}
}

// fanOut delivers a hint to the room's two participants only.
func (h *Hub) fanOut(hint ActivityHint, payload []byte) {
	for client := range h.clients {
		if client.partyID != hint.CompanyPartyID && client.partyID != hint.InternPartyID {
			continue
		}
		select {
		case client.send <- payload:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}
