package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// MemoryProvider implements Provider in process memory. It is the default
// backend for development and tests; expiry is evaluated lazily on read
// against an injectable clock.
type MemoryProvider struct {
	mu      sync.RWMutex
	clock   clockwork.Clock
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value []byte
	// expiresAt is zero for entries without a TTL.
	expiresAt time.Time
}

// NewMemoryProvider creates an empty in-memory provider. A nil clock falls
// back to the real clock.
func NewMemoryProvider(clock clockwork.Clock) *MemoryProvider {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryProvider{
		clock:   clock,
		entries: make(map[string]memoryEntry),
	}
}

// Get fetches bytes by key, returning ErrCacheMiss when absent or expired.
func (p *MemoryProvider) Get(_ context.Context, key string) ([]byte, error) {
	p.mu.RLock()
	entry, ok := p.entries[key]
	p.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if p.expired(entry) {
		p.mu.Lock()
		// Re-check under the write lock; another writer may have replaced it.
		if current, ok := p.entries[key]; ok && p.expired(current) {
			delete(p.entries, key)
		}
		p.mu.Unlock()
		return nil, ErrCacheMiss
	}

	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

// Set stores bytes with the provided TTL. A non-positive TTL stores forever.
func (p *MemoryProvider) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[key] = p.newEntry(value, ttl)
	return nil
}

// SetNX stores the value only if the key is absent or expired.
func (p *MemoryProvider) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if entry, ok := p.entries[key]; ok && !p.expired(entry) {
		return false, nil
	}
	p.entries[key] = p.newEntry(value, ttl)
	return true, nil
}

// Del removes a key.
func (p *MemoryProvider) Del(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, key)
	return nil
}

// Close discards all entries.
func (p *MemoryProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = make(map[string]memoryEntry)
	return nil
}

func (p *MemoryProvider) newEntry(value []byte, ttl time.Duration) memoryEntry {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = p.clock.Now().Add(ttl)
	}
	return entry
}

func (p *MemoryProvider) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && p.clock.Now().After(entry.expiresAt)
}
