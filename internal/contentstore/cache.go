package contentstore

import (
	"context"
	"sync"
	"time"

	"kitref/internal/logging"
)

const (
	// DefaultFreshnessWindow is how long a cached read stays servable
	// before the file is re-read from disk.
	DefaultFreshnessWindow = 5 * time.Minute

	// DefaultMaxEntries bounds the cache defensively. The servable
	// universe is a small fixed catalog, so this should never be hit in
	// practice; if it is, the oldest entry is evicted.
	DefaultMaxEntries = 256
)

type entry struct {
	content  []byte
	lastRead time.Time
}

// Cache is a time-bounded read-through cache keyed by resolved absolute
// path. A fresh entry is served without touching the disk; a stale or
// missing entry triggers a re-read that overwrites the slot.
//
// A single mutex is held across the read-through, serializing concurrent
// first reads of the same key. Request volume is low and reads are local
// disk, so the simpler locking wins over a single-flight scheme.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	ttl        time.Duration
	maxEntries int
	logger     *logging.AppLogger

	// Indirections for tests: count reads and control the clock.
	read func(ctx context.Context, path string, maxBytes int64) ([]byte, error)
	now  func() time.Time
}

// NewCache creates a content cache with the given freshness window and
// entry bound. Non-positive values fall back to the defaults.
func NewCache(ttl time.Duration, maxEntries int, logger *logging.AppLogger) *Cache {
	if ttl <= 0 {
		ttl = DefaultFreshnessWindow
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if logger == nil {
		logger = logging.GetDefault()
	}

	return &Cache{
		entries:    make(map[string]*entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		logger:     logger,
		read:       ReadFile,
		now:        time.Now,
	}
}

// Get returns the content at path, served from cache when the last read is
// still inside the freshness window, otherwise re-read from disk with
// maxBytes enforced. A failed or cancelled read never replaces an existing
// entry and never publishes a partial one.
func (c *Cache) Get(ctx context.Context, path string, maxBytes int64) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[path]; ok {
		if age := c.now().Sub(e.lastRead); age < c.ttl {
			c.logger.Debug("Cache hit", "path", path, "age", age)
			return e.content, nil
		}
	}

	content, err := c.read(ctx, path, maxBytes)
	if err != nil {
		return nil, err
	}

	if len(c.entries) >= c.maxEntries {
		if _, exists := c.entries[path]; !exists {
			c.evictOldest()
		}
	}

	c.entries[path] = &entry{content: content, lastRead: c.now()}
	c.logger.Debug("Cache filled", "path", path, "bytes", len(content))
	return content, nil
}

// Len reports the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Invalidate drops the entry for path, forcing the next Get to re-read.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// evictOldest removes the entry with the oldest lastRead. Caller holds mu.
func (c *Cache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.lastRead.Before(oldest) {
			oldestKey = k
			oldest = e.lastRead
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.logger.Debug("Cache entry evicted", "path", oldestKey)
	}
}
