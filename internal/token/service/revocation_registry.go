package service

import (
	"context"
	"sync"
	"time"

	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
)

// MemoryRevocationRegistry is a process-local RevocationRegistry.
//
// It starts empty and lives as long as the broker process. Mutations take a
// write lock; lookups share a read lock.
type MemoryRevocationRegistry struct {
	mu      sync.RWMutex
	entries map[string]tokenDomain.RevocationEntry
}

// NewMemoryRevocationRegistry creates an empty registry.
func NewMemoryRevocationRegistry() *MemoryRevocationRegistry {
	return &MemoryRevocationRegistry{entries: make(map[string]tokenDomain.RevocationEntry)}
}

// Block adds the entry. Blocking an id twice keeps the first entry.
func (r *MemoryRevocationRegistry) Block(_ context.Context, entry tokenDomain.RevocationEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[entry.TokenID]; ok {
		return nil
	}
	r.entries[entry.TokenID] = entry
	return nil
}

// IsBlocked reports whether tokenID has been blocked.
func (r *MemoryRevocationRegistry) IsBlocked(_ context.Context, tokenID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[tokenID]
	return ok, nil
}

// Clear removes every entry.
func (r *MemoryRevocationRegistry) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.entries)
	return nil
}

// Purge removes entries whose token expiry has passed.
func (r *MemoryRevocationRegistry) Purge(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var purged int64
	for id, entry := range r.entries {
		if entry.Purgeable(now) {
			delete(r.entries, id)
			purged++
		}
	}
	return purged, nil
}

// Len returns the number of blocked ids.
func (r *MemoryRevocationRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
