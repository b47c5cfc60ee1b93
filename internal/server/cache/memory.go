package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jbarakanov/videohost/internal/server/models"
)

type memoryEntry struct {
	page    []*models.User
	expires time.Time
}

// MemoryUserPages is an in-process UserPages used when no Redis instance
// is configured, and in tests. Expiry is checked lazily on read.
type MemoryUserPages struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryUserPages() *MemoryUserPages {
	return &MemoryUserPages{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryUserPages) GetUserPage(ctx context.Context, key string) ([]*models.User, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false, nil
	}

	return e.page, true, nil
}

func (c *MemoryUserPages) PutUserPage(ctx context.Context, key string, page []*models.User, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{page: page, expires: c.now().Add(ttl)}
	return nil
}
