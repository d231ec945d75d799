package contentstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"kitref/internal/logging"
)

// newTestCache builds a cache with a controllable clock and a counting
// read function backed by the given content map.
func newTestCache(t *testing.T, ttl time.Duration, maxEntries int, files map[string]string) (*Cache, *int, *time.Time) {
	t.Helper()

	logger, _ := logging.NewTestLogger()
	c := NewCache(ttl, maxEntries, logger)

	reads := 0
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)

	c.read = func(ctx context.Context, path string, maxBytes int64) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, ok := files[path]
		if !ok {
			return nil, ErrNotFound
		}
		reads++
		return []byte(content), nil
	}
	c.now = func() time.Time { return now }

	return c, &reads, &now
}

func TestCache_FreshHitSkipsRead(t *testing.T) {
	c, reads, _ := newTestCache(t, 5*time.Minute, 0, map[string]string{
		"/catalog/a.md": "alpha",
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		data, err := c.Get(ctx, "/catalog/a.md", 1024)
		if err != nil {
			t.Fatalf("get %d failed: %v", i, err)
		}
		if string(data) != "alpha" {
			t.Errorf("get %d: expected %q, got %q", i, "alpha", string(data))
		}
	}

	if *reads != 1 {
		t.Errorf("expected exactly 1 underlying read, got %d", *reads)
	}
}

func TestCache_HitSamplesClockOnce(t *testing.T) {
	c, _, _ := newTestCache(t, 5*time.Minute, 0, map[string]string{
		"/catalog/a.md": "alpha",
	})
	ctx := context.Background()

	if _, err := c.Get(ctx, "/catalog/a.md", 1024); err != nil {
		t.Fatalf("fill failed: %v", err)
	}

	// The freshness decision and the logged age must come from the same
	// clock sample.
	base := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	calls := 0
	c.now = func() time.Time {
		calls++
		return base
	}

	if _, err := c.Get(ctx, "/catalog/a.md", 1024); err != nil {
		t.Fatalf("hit failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 clock sample on a hit, got %d", calls)
	}
}

func TestCache_StaleEntryIsReRead(t *testing.T) {
	files := map[string]string{"/catalog/a.md": "v1"}
	c, reads, now := newTestCache(t, 5*time.Minute, 0, files)
	ctx := context.Background()

	if _, err := c.Get(ctx, "/catalog/a.md", 1024); err != nil {
		t.Fatalf("first get failed: %v", err)
	}

	// Inside the window: served from cache even though the file changed.
	files["/catalog/a.md"] = "v2"
	*now = now.Add(4 * time.Minute)
	data, err := c.Get(ctx, "/catalog/a.md", 1024)
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if string(data) != "v1" {
		t.Errorf("expected cached v1 inside window, got %q", string(data))
	}

	// Past the window: re-read picks up the new content.
	*now = now.Add(2 * time.Minute)
	data, err = c.Get(ctx, "/catalog/a.md", 1024)
	if err != nil {
		t.Fatalf("third get failed: %v", err)
	}
	if string(data) != "v2" {
		t.Errorf("expected fresh v2 after window, got %q", string(data))
	}
	if *reads != 2 {
		t.Errorf("expected 2 underlying reads, got %d", *reads)
	}
}

func TestCache_ReadFailureNotCached(t *testing.T) {
	c, reads, _ := newTestCache(t, 5*time.Minute, 0, map[string]string{})
	ctx := context.Background()

	if _, err := c.Get(ctx, "/catalog/missing.md", 1024); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("failed read must not publish an entry, cache has %d", c.Len())
	}
	if *reads != 0 {
		t.Errorf("counting read should not fire on missing file, got %d", *reads)
	}
}

func TestCache_CancelledReadNotPublished(t *testing.T) {
	c, _, _ := newTestCache(t, 5*time.Minute, 0, map[string]string{
		"/catalog/a.md": "alpha",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Get(ctx, "/catalog/a.md", 1024); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("cancelled read must not publish an entry, cache has %d", c.Len())
	}
}

func TestCache_EvictsOldestWhenFull(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 4; i++ {
		files[fmt.Sprintf("/catalog/f%d.md", i)] = fmt.Sprintf("content-%d", i)
	}
	c, _, now := newTestCache(t, time.Hour, 3, files)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := c.Get(ctx, fmt.Sprintf("/catalog/f%d.md", i), 1024); err != nil {
			t.Fatalf("get f%d failed: %v", i, err)
		}
		*now = now.Add(time.Second)
	}

	if c.Len() != 3 {
		t.Fatalf("expected 3 entries after eviction, got %d", c.Len())
	}

	// f0 was oldest and must have been evicted; re-reading it works fine.
	c.mu.Lock()
	_, hasOldest := c.entries["/catalog/f0.md"]
	c.mu.Unlock()
	if hasOldest {
		t.Error("expected oldest entry /catalog/f0.md to be evicted")
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c, _, _ := newTestCache(t, 5*time.Minute, 0, map[string]string{
		"/catalog/a.md": "alpha",
		"/catalog/b.md": "beta",
	})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		path := "/catalog/a.md"
		if i%2 == 1 {
			path = "/catalog/b.md"
		}
		go func(p string) {
			defer wg.Done()
			if _, err := c.Get(ctx, p, 1024); err != nil {
				t.Errorf("concurrent get failed: %v", err)
			}
		}(path)
	}
	wg.Wait()

	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}
}

func TestCache_Invalidate(t *testing.T) {
	c, reads, _ := newTestCache(t, time.Hour, 0, map[string]string{
		"/catalog/a.md": "alpha",
	})
	ctx := context.Background()

	if _, err := c.Get(ctx, "/catalog/a.md", 1024); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	c.Invalidate("/catalog/a.md")
	if _, err := c.Get(ctx, "/catalog/a.md", 1024); err != nil {
		t.Fatalf("get after invalidate failed: %v", err)
	}

	if *reads != 2 {
		t.Errorf("expected re-read after invalidate, got %d reads", *reads)
	}
}
