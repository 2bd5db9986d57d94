// Package directory adapts the platform's party directory for the
// messaging core: resolving an authenticated user handle to the party it
// acts as, and party ids to display snapshots. All data here is owned by
// the surrounding application; messaging only reads it.
package directory

import (
	"context"
	"database/sql"
	"errors"

	"jobmatch/internal/messaging"

	"github.com/google/uuid"
)

type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) ResolveUser(ctx context.Context, uid string, kind messaging.PartyKind) (messaging.Party, error) {
	party := messaging.Party{}
	query := `SELECT id, kind, display_name, avatar_url FROM parties WHERE uid = $1 AND kind = $2`
	err := d.db.QueryRowContext(ctx, query, uid, string(kind)).
		Scan(&party.ID, &party.Kind, &party.DisplayName, &party.AvatarURL)
	if errors.Is(err, sql.ErrNoRows) {
		// A valid token for a user with no party profile of this kind is
		// not an authenticated caller of the messaging core.
		return messaging.Party{}, messaging.ErrUnauthenticated
	}
	if err != nil {
		return messaging.Party{}, err
	}
	return party, nil
}

func (d *PostgresDirectory) Lookup(ctx context.Context, partyID uuid.UUID) (messaging.Party, error) {
	party := messaging.Party{}
	query := `SELECT id, kind, display_name, avatar_url FROM parties WHERE id = $1`
	err := d.db.QueryRowContext(ctx, query, partyID).
		Scan(&party.ID, &party.Kind, &party.DisplayName, &party.AvatarURL)
	if errors.Is(err, sql.ErrNoRows) {
		return messaging.Party{}, messaging.ErrNotFound
	}
	if err != nil {
		return messaging.Party{}, err
	}
	return party, nil
}

// CreateParty inserts a party profile on behalf of the signup workflow.
// Development and load tooling only; production profiles are written by the
// account system.
func (d *PostgresDirectory) CreateParty(ctx context.Context, uid string, kind messaging.PartyKind, displayName string) (messaging.Party, error) {
	party := messaging.Party{ID: uuid.New(), Kind: kind, DisplayName: displayName}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO parties (id, uid, kind, display_name) VALUES ($1, $2, $3, $4)`,
		party.ID, uid, string(kind), displayName,
	)
	if err != nil {
		return messaging.Party{}, err
	}
	return party, nil
}
