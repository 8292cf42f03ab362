package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arklim/casting-platform-api/internal/core/port"
	"github.com/arklim/casting-platform-api/internal/repository"
)

// AdminLookup resolves the primary admin from the backing store on cache miss.
type AdminLookup func(ctx context.Context) (string, error)

// AdminDirectory caches the primary admin id in Redis so the message routing
// policy does not hit Postgres on every send.
type AdminDirectory struct {
	client *redis.Client
	lookup AdminLookup
	prefix string
	ttl    time.Duration
}

// NewAdminDirectory constructs a directory caching admin lookups for ttl.
func NewAdminDirectory(client *redis.Client, lookup AdminLookup, prefix string, ttl time.Duration) *AdminDirectory {
	if prefix == "" {
		prefix = "casting:admin"
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AdminDirectory{
		client: client,
		lookup: lookup,
		prefix: prefix,
		ttl:    ttl,
	}
}

// PrimaryAdminID returns the cached admin id, falling back to the lookup on
// miss. A stale entry self-heals when the TTL lapses.
func (d *AdminDirectory) PrimaryAdminID(ctx context.Context) (string, error) {
	key := d.prefix + ":primary"

	id, err := d.client.Get(ctx, key).Result()
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("redis get admin id: %w", err)
	}

	id, err = d.lookup(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("lookup admin: %w", err)
	}

	if err := d.client.Set(ctx, key, id, d.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set admin id: %w", err)
	}

	return id, nil
}

var _ port.AdminDirectory = (*AdminDirectory)(nil)
