package messaging

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// PostgresStore implements RoomDirectory and MessageStore on top of the
// platform database.
type PostgresStore struct {
	db    *sql.DB
	limit int
}

func NewPostgresStore(db *sql.DB, limit int) *PostgresStore {
	return &PostgresStore{db: db, limit: limit}
}

func (s *PostgresStore) GetRoom(ctx context.Context, roomID uuid.UUID) (Room, error) {
	room := Room{}
	query := `SELECT id, company_party_id, intern_party_id, created_at FROM rooms WHERE id = $1`
	err := s.db.QueryRowContext(ctx, query, roomID).
		Scan(&room.ID, &room.CompanyPartyID, &room.InternPartyID, &room.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Room{}, ErrNotFound
	}
	if err != nil {
		return Room{}, err
	}
	return room, nil
}

func (s *PostgresStore) ListRooms(ctx context.Context, partyID uuid.UUID, kind PartyKind) ([]Room, error) {
	column := "company_party_id"
	if kind == PartyIntern {
		column = "intern_party_id"
	}
	query := `
		SELECT id, company_party_id, intern_party_id, created_at
		FROM rooms
		WHERE ` + column + ` = $1
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, partyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		room := Room{}
		if err := rows.Scan(&room.ID, &room.CompanyPartyID, &room.InternPartyID, &room.CreatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// AppendMessage commits a message inside one transaction. The room row is
// locked FOR UPDATE, which serializes concurrent senders per room: each
// message gets a distinct seq (MAX+1) and a created_at clamped to never run
// backwards. Rooms are independent, so there is no cross-room contention.
func (s *PostgresStore) AppendMessage(ctx context.Context, roomID, senderID uuid.UUID, senderKind PartyKind, content string) (Message, error) {
	if strings.TrimSpace(content) == "" {
		return Message{}, ErrValidation
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Message{}, err
	}
	defer tx.Rollback()

	room := Room{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, company_party_id, intern_party_id, created_at FROM rooms WHERE id = $1 FOR UPDATE`,
		roomID,
	).Scan(&room.ID, &room.CompanyPartyID, &room.InternPartyID, &room.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Message{}, ErrNotFound
	}
	if err != nil {
		return Message{}, err
	}
	if !room.HasParticipant(senderID) {
		return Message{}, ErrForbidden
	}

	msg := Message{
		ID:         uuid.New(),
		RoomID:     roomID,
		SenderID:   senderID,
		SenderKind: senderKind,
		Content:    content,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO messages (id, room_id, seq, sender_party_id, sender_party_kind, content, created_at)
		SELECT $1, $2, COALESCE(MAX(seq), 0) + 1, $3, $4, $5,
		       GREATEST(now(), COALESCE(MAX(created_at), now()))
		FROM messages WHERE room_id = $2
		RETURNING seq, created_at
	`, msg.ID, roomID, senderID, string(senderKind), content).Scan(&msg.Seq, &msg.CreatedAt)
	if err != nil {
		return Message{}, err
	}

	if err := tx.Commit(); err != nil {
		return Message{}, err
	}
	return msg, nil
}

func (s *PostgresStore) ListMessages(ctx context.Context, roomID uuid.UUID, after *int64, limit int) ([]Message, error) {
	if _, err := s.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.limit
	}
	// LIMIT NULL is LIMIT ALL in postgres; <=0 means uncapped.
	var pageCap any
	if limit > 0 {
		pageCap = limit
	}

	var (
		rows *sql.Rows
		err  error
	)
	if after == nil {
		// Most recent window, fetched newest-first then reversed so the
		// caller always sees oldest-first.
		query := `
			SELECT id, room_id, seq, sender_party_id, sender_party_kind, content, created_at
			FROM messages
			WHERE room_id = $1
			ORDER BY seq DESC
			LIMIT $2
		`
		rows, err = s.db.QueryContext(ctx, query, roomID, pageCap)
	} else {
		query := `
			SELECT id, room_id, seq, sender_party_id, sender_party_kind, content, created_at
			FROM messages
			WHERE room_id = $1 AND seq > $2
			ORDER BY seq
			LIMIT $3
		`
		rows, err = s.db.QueryContext(ctx, query, roomID, *after, pageCap)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		msg := Message{}
		if err := rows.Scan(&msg.ID, &msg.RoomID, &msg.Seq, &msg.SenderID, &msg.SenderKind, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if after == nil {
		messages = lo.Reverse(messages)
	}
	return messages, nil
}

// CreateRoom inserts a room on behalf of the out-of-core creation workflow
// (first application, first explicit contact). The messaging core itself
// never calls this.
func (s *PostgresStore) CreateRoom(ctx context.Context, companyPartyID, internPartyID uuid.UUID) (Room, error) {
	room := Room{ID: uuid.New(), CompanyPartyID: companyPartyID, InternPartyID: internPartyID}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO rooms (id, company_party_id, intern_party_id) VALUES ($1, $2, $3) RETURNING created_at`,
		room.ID, companyPartyID, internPartyID,
	).Scan(&room.CreatedAt)
	if err != nil {
		return Room{}, err
	}
	return room, nil
}
