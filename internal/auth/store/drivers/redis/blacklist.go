// Package redis implements the token blacklist on a Redis backend, using
// per-key TTLs so revocation entries vanish at the token's natural expiry.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces blacklist entries away from anything else sharing the
// Redis database.
const keyPrefix = "blacklist:"

// sentinel is the stored value; only key existence matters.
const sentinel = "revoked"

type Blacklist struct {
	client redis.UniversalClient
}

// NewBlacklist constructs a Redis-backed blacklist.
func NewBlacklist(client redis.UniversalClient) *Blacklist {
	return &Blacklist{client: client}
}

// Revoke stores the token until expiresAt. Returns false without writing
// when the token has already expired. Revoking an already-revoked token
// refreshes the TTL, which is harmless: both TTLs end at the same expiry.
func (b *Blacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) (bool, error) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return false, nil
	}

	if err := b.client.Set(ctx, keyPrefix+token, sentinel, ttl).Err(); err != nil {
		return false, fmt.Errorf("revoke token: %w", err)
	}
	return true, nil
}

func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := b.client.Exists(ctx, keyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return n > 0, nil
}

func (b *Blacklist) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *Blacklist) Close() error {
	return b.client.Close()
}
