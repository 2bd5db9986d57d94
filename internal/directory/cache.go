package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"jobmatch/internal/messaging"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Directory is the resolver contract the cache wraps.
type Directory interface {
	ResolveUser(ctx context.Context, uid string, kind messaging.PartyKind) (messaging.Party, error)
	Lookup(ctx context.Context, partyID uuid.UUID) (messaging.Party, error)
}

// CachedDirectory is a redis read-through cache over the party directory.
// Party snapshots change rarely and every request resolves at least one, so
// a short TTL keeps the database off the sync hot path. Cache failures fall
// through to the source, never to the caller.
type CachedDirectory struct {
	next  Directory
	redis *redis.Client
	ttl   time.Duration
	log   *slog.Logger
}

func NewCachedDirectory(next Directory, redisClient *redis.Client, ttl time.Duration, log *slog.Logger) *CachedDirectory {
	return &CachedDirectory{next: next, redis: redisClient, ttl: ttl, log: log}
}

func (d *CachedDirectory) ResolveUser(ctx context.Context, uid string, kind messaging.PartyKind) (messaging.Party, error) {
	key := fmt.Sprintf("party:uid:%s:%s", kind, uid)
	if party, ok := d.get(ctx, key); ok {
		return party, nil
	}
	party, err := d.next.ResolveUser(ctx, uid, kind)
	if err != nil {
		return messaging.Party{}, err
	}
	d.set(ctx, key, party)
	return party, nil
}

func (d *CachedDirectory) Lookup(ctx context.Context, partyID uuid.UUID) (messaging.Party, error) {
	key := fmt.Sprintf("party:id:%s", partyID)
	if party, ok := d.get(ctx, key); ok {
		return party, nil
	}
	party, err := d.next.Lookup(ctx, partyID)
	if err != nil {
		return messaging.Party{}, err
	}
	d.set(ctx, key, party)
	return party, nil
}

func (d *CachedDirectory) get(ctx context.Context, key string) (messaging.Party, bool) {
	raw, err := d.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			d.log.Warn("directory cache read failed", "key", key, "error", err)
		}
		return messaging.Party{}, false
	}
	var party messaging.Party
	if err := json.Unmarshal(raw, &party); err != nil {
		return messaging.Party{}, false
	}
	return party, true
}

func (d *CachedDirectory) set(ctx context.Context, key string, party messaging.Party) {
	raw, err := json.Marshal(party)
	if err != nil {
		return
	}
	if err := d.redis.Set(ctx, key, raw, d.ttl).Err(); err != nil {
		d.log.Warn("directory cache write failed", "key", key, "error", err)
	}
}
