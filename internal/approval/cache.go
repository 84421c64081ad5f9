package approval

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/allisson/secretbroker/internal/errors"
)

type cacheEntry struct {
	Secret      string    `json:"secret"`
	ContentHash string    `json:"content_hash"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Cache remembers approvals for a (secret, caller content hash) pair until
// they expire. It is persisted as JSON with mode 0600.
type Cache struct {
	mu   sync.Mutex
	path string
	ttl  time.Duration
}

// NewCache creates a cache stored at path whose approvals last ttl.
func NewCache(path string, ttl time.Duration) *Cache {
	return &Cache{path: path, ttl: ttl}
}

// Lookup reports whether an unexpired approval exists at now.
func (c *Cache) Lookup(secret, contentHash string, now time.Time) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.load()
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry.Secret == secret && entry.ContentHash == contentHash && now.Before(entry.ExpiresAt) {
			return true, nil
		}
	}
	return false, nil
}

// Remember records an approval granted at now. Expired entries are dropped
// on the way.
func (c *Cache) Remember(secret, contentHash string, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.load()
	if err != nil {
		return err
	}

	kept := entries[:0]
	for _, entry := range entries {
		if now.Before(entry.ExpiresAt) && (entry.Secret != secret || entry.ContentHash != contentHash) {
			kept = append(kept, entry)
		}
	}
	kept = append(kept, cacheEntry{Secret: secret, ContentHash: contentHash, ExpiresAt: now.Add(c.ttl)})

	return c.save(kept)
}

// Forget drops every approval for secret.
func (c *Cache) Forget(secret string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.load()
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, entry := range entries {
		if entry.Secret != secret {
			kept = append(kept, entry)
		}
	}
	return c.save(kept)
}

func (c *Cache) load() ([]cacheEntry, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read approval cache")
	}

	var entries []cacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt cache only costs a prompt.
		return nil, nil
	}
	return entries, nil
}

func (c *Cache) save(entries []cacheEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(err, "failed to encode approval cache")
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return errors.Wrap(err, "failed to create approval cache directory")
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return errors.Wrap(err, "failed to write approval cache")
	}
	return nil
}
