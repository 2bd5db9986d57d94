package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type Database struct {
	Conn *sql.DB
}

func NewDatabase(dsn string) (*Database, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(25)
	conn.SetConnMaxLifetime(5 * time.Minute)
	return &Database{Conn: conn}, nil
}

// AutoMigrate creates the messaging schema. Parties are owned by the
// account system and rooms by the application workflow; messaging only
// requires that both already exist when queried. The (room_id, seq) unique
// key is the total order of a room's transcript.
func (d *Database) AutoMigrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS parties (
            id UUID PRIMARY KEY,
            uid VARCHAR(128) NOT NULL,
            kind VARCHAR(10) NOT NULL CHECK (kind IN ('company', 'intern')),
            display_name VARCHAR(255) NOT NULL,
            avatar_url TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            UNIQUE (uid, kind)
        )`,

		`CREATE TABLE IF NOT EXISTS rooms (
            id UUID PRIMARY KEY,
            company_party_id UUID NOT NULL REFERENCES parties(id),
            intern_party_id UUID NOT NULL REFERENCES parties(id),
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,

		`CREATE TABLE IF NOT EXISTS messages (
            id UUID PRIMARY KEY,
            room_id UUID NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
            seq BIGINT NOT NULL,
            sender_party_id UUID NOT NULL REFERENCES parties(id),
            sender_party_kind VARCHAR(10) NOT NULL,
            content TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            UNIQUE (room_id, seq)
        )`,

		`CREATE INDEX IF NOT EXISTS idx_rooms_company ON rooms (company_party_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_rooms_intern ON rooms (intern_party_id, created_at)`,
	}

	for _, query := range queries {
		_, err := d.Conn.Exec(query)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
