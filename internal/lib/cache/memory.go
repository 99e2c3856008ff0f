package cache

import (
	"context"
	"sync"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/model"
)

// MemoryUploadCache is a map of uploads swept by a janitor goroutine.
// Reads also check expiry so an entry is never served past its deadline.
type MemoryUploadCache struct {
	mu           sync.RWMutex
	entries      map[string]*model.Upload
	cleanupEvery time.Duration
	now          func() time.Time
}

type MemoryOption func(*MemoryUploadCache)

func WithCleanupEvery(d time.Duration) MemoryOption {
	return func(c *MemoryUploadCache) { c.cleanupEvery = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryUploadCache) { c.now = now }
}

func NewMemoryUploadCache(opts ...MemoryOption) *MemoryUploadCache {
	c := &MemoryUploadCache{
		entries:      make(map[string]*model.Upload),
		cleanupEvery: time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryUploadCache) Put(_ context.Context, upload *model.Upload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[upload.ID] = upload
	return nil
}

func (c *MemoryUploadCache) Get(_ context.Context, id string) (*model.Upload, error) {
	c.mu.RLock()
	upload, ok := c.entries[id]
	c.mu.RUnlock()

	if !ok || !c.now().Before(upload.ExpiresAt) {
		return nil, ErrNotFound
	}
	return upload, nil
}

func (c *MemoryUploadCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[id]; !ok {
		return ErrNotFound
	}
	delete(c.entries, id)
	return nil
}

// Len reports the number of entries, expired or not.
func (c *MemoryUploadCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Cleanup removes expired entries.
func (c *MemoryUploadCache) Cleanup() {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for id, upload := range c.entries {
		if !now.Before(upload.ExpiresAt) {
			delete(c.entries, id)
		}
	}
}

// StartJanitor sweeps expired entries until ctx is cancelled.
func (c *MemoryUploadCache) StartJanitor(ctx context.Context) {
	if c.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(c.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				c.Cleanup()
			}
		}
	}()
}
