// Package memory implements the token blacklist in process memory. It backs
// tests and single-node development runs; production uses the redis driver.
package memory

import (
	"context"
	"sync"
	"time"
)

type Blacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time // token -> natural expiry

	// now is swappable so tests can advance the clock.
	now func() time.Time
}

func NewBlacklist() *Blacklist {
	return &Blacklist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// NewBlacklistAt builds a blacklist with an injected clock.
func NewBlacklistAt(now func() time.Time) *Blacklist {
	return &Blacklist{
		entries: make(map[string]time.Time),
		now:     now,
	}
}

func (b *Blacklist) Revoke(_ context.Context, token string, expiresAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !expiresAt.After(b.now()) {
		return false, nil
	}

	b.entries[token] = expiresAt
	return true, nil
}

func (b *Blacklist) IsRevoked(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiresAt, ok := b.entries[token]
	if !ok {
		return false, nil
	}
	if !expiresAt.After(b.now()) {
		// Entry reached the token's natural expiry; drop it lazily.
		delete(b.entries, token)
		return false, nil
	}
	return true, nil
}

func (b *Blacklist) Ping(context.Context) error { return nil }

func (b *Blacklist) Close() error { return nil }
