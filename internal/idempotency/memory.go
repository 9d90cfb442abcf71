package idempotency

import (
	"context"
	"sync"
	"time"
)

// MemoryGuard is a process-local guard backed by a TTL map. Entries do not
// survive restarts and are not shared across instances; horizontally
// scaled deployments should use the redis guard instead.
type MemoryGuard struct {
	mu      sync.Mutex
	entries map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryGuard creates a guard whose entries expire after ttl.
func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

// IsDuplicate reports whether a non-expired entry exists for key. Expired
// entries are evicted lazily on every read.
func (g *MemoryGuard) IsDuplicate(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.cleanupLocked()
	_, ok := g.entries[key]
	return ok, nil
}

// MarkProcessed inserts or refreshes the entry for key.
func (g *MemoryGuard) MarkProcessed(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.entries[key] = g.now()
	return nil
}

func (g *MemoryGuard) cleanupLocked() {
	cutoff := g.now().Add(-g.ttl)
	for key, seen := range g.entries {
		if seen.Before(cutoff) {
			delete(g.entries, key)
		}
	}
}

// Len returns the number of tracked entries, expired or not.
func (g *MemoryGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

var _ Guard = (*MemoryGuard)(nil)
