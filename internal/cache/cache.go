// Package cache is a small file-backed TTL cache for provider responses.
// One JSON file holds every entry; writes go through a temp file so a
// crash mid-save never corrupts the store.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type entry struct {
	Data     json.RawMessage `json:"data"`
	StoredAt time.Time       `json:"stored_at"`
	TTL      time.Duration   `json:"ttl"`
}

func (e entry) expired(now time.Time) bool {
	return e.TTL > 0 && now.Sub(e.StoredAt) > e.TTL
}

// Cache is safe for concurrent use.
type Cache struct {
	path    string
	mu      sync.RWMutex
	entries map[string]entry
}

// Open loads the cache at path, starting fresh if the file is missing or
// unreadable as JSON. A corrupt cache is not an error; it is stale data.
func Open(path string) (*Cache, error) {
	c := &Cache{
		path:    path,
		entries: make(map[string]entry),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &c.entries); err != nil {
			c.entries = make(map[string]entry)
		}
	}
	return c, nil
}

// Get unmarshals the entry for key into target. The first return is false
// when the key is absent or expired.
func (c *Cache) Get(key string, target any) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if e.expired(time.Now()) {
		c.mu.Lock()
		if cur, exists := c.entries[key]; exists && cur.expired(time.Now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return false, nil
	}

	if err := json.Unmarshal(e.Data, target); err != nil {
		return false, fmt.Errorf("unmarshal cache entry %q: %w", key, err)
	}
	return true, nil
}

// Put stores value under key with the given TTL and persists to disk.
// A TTL of zero never expires.
func (c *Cache) Put(key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	c.mu.Lock()
	c.entries[key] = entry{Data: data, StoredAt: time.Now(), TTL: ttl}
	c.mu.Unlock()

	return c.flush()
}

// Delete removes key and persists the change.
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return c.flush()
}

// Purge drops every expired entry and reports how many were removed.
func (c *Cache) Purge() (int, error) {
	now := time.Now()

	c.mu.Lock()
	var removed int
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			removed++
		}
	}
	c.mu.Unlock()

	if removed == 0 {
		return 0, nil
	}
	return removed, c.flush()
}

// Len reports the number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// flush writes the whole store atomically: marshal under the read lock,
// write a sibling temp file, rename over the target.
func (c *Cache) flush() error {
	if dir := filepath.Dir(c.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}

	c.mu.RLock()
	data, err := json.MarshalIndent(c.entries, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}

// Key joins parts into a namespaced cache key.
func Key(parts ...string) string {
	return strings.Join(parts, "|")
}
