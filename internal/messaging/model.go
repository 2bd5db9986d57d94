package messaging

import (
	"time"

	"github.com/google/uuid"
)

// PartyKind tells which side of the job-matching platform a party is on.
type PartyKind string

const (
	PartyCompany PartyKind = "company"
	PartyIntern  PartyKind = "intern"
)

func (k PartyKind) Valid() bool {
	return k == PartyCompany || k == PartyIntern
}

// Party is a read-only snapshot of a participant, owned by the party
// directory. The messaging core never writes display data.
type Party struct {
	ID          uuid.UUID `json:"id"`
	Kind        PartyKind `json:"kind"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
}

// Room is a private channel between exactly one company and one intern.
// The participant pair is immutable after creation; rooms are created by an
// out-of-core workflow (first application / first contact), never here.
type Room struct {
	ID             uuid.UUID `json:"id"`
	CompanyPartyID uuid.UUID `json:"company_party_id"`
	InternPartyID  uuid.UUID `json:"intern_party_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// HasParticipant reports whether partyID is one of the room's two sides.
func (r Room) HasParticipant(partyID uuid.UUID) bool {
	return partyID == r.CompanyPartyID || partyID == r.InternPartyID
}

// OtherPartyID returns the counterparty of partyID. The caller must already
// be a participant.
func (r Room) OtherPartyID(partyID uuid.UUID) uuid.UUID {
	if partyID == r.CompanyPartyID {
		return r.InternPartyID
	}
	return r.CompanyPartyID
}

// Message is an immutable entry in a room's transcript. Seq is the per-room
// sequence number: it is the total-order key and the sync cursor. CreatedAt
// is non-decreasing in Seq order within a room.
type Message struct {
	ID         uuid.UUID `json:"id"`
	RoomID     uuid.UUID `json:"room_id"`
	Seq        int64     `json:"seq"`
	SenderID   uuid.UUID `json:"sender_party_id"`
	SenderKind PartyKind `json:"sender_party_kind"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// RoomEntry is what the room-list sync returns: the room plus the snapshot
// of the party the caller is talking to.
type RoomEntry struct {
	Room       Room  `json:"room"`
	OtherParty Party `json:"other_party"`
}
