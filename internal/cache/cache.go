// Package cache memoizes fetch results for a bounded time window so
// that repeated report requests with identical parameters skip the
// network round-trips.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/focus-analytics/transcript-insights/internal/model"
)

// DefaultTTL is the memoization window for fetch results.
const DefaultTTL = 5 * time.Minute

// Cache stores the normalized message stream of one fetch, keyed by
// the fetch parameters. It is advisory: it never provides mutual
// exclusion between concurrent fetches.
type Cache interface {
	Get(ctx context.Context, key string) ([]model.NormalizedMessage, bool, error)
	Set(ctx context.Context, key string, msgs []model.NormalizedMessage) error
}

// Key derives the cache key for one fetch parameter set. The secret is
// deliberately excluded; the app id is the credential identity.
func Key(botID, appID string, from, to time.Time) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s", botID, appID,
		from.Format("2006-01-02"), to.Format("2006-01-02"))
	return hex.EncodeToString(h.Sum(nil))
}

type memoryEntry struct {
	msgs     []model.NormalizedMessage
	storedAt time.Time
}

// Memory is an in-process TTL cache with lazy expiry on read.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemory creates an in-process cache. A non-positive ttl falls back
// to DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Get returns the cached messages for key if the entry is still inside
// the TTL window; expired entries are evicted on read.
func (m *Memory) Get(_ context.Context, key string) ([]model.NormalizedMessage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if m.now().Sub(entry.storedAt) >= m.ttl {
		delete(m.entries, key)
		return nil, false, nil
	}
	return entry.msgs, true, nil
}

// Set stores the messages for key, restarting its TTL window.
func (m *Memory) Set(_ context.Context, key string, msgs []model.NormalizedMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{msgs: msgs, storedAt: m.now()}
	return nil
}
