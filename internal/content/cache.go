package content

import (
	"context"
	"sync"
)

// Cache holds the most recent list for one collection. It starts empty and
// is refreshed wholesale: once when the owning panel activates and again
// after every successful mutation. A failed reload keeps the previous list
// in place, stale but available.
type Cache[T Record] struct {
	client *Client[T]

	mu    sync.RWMutex
	items []T
}

func NewCache[T Record](client *Client[T]) *Cache[T] {
	return &Cache[T]{client: client}
}

// Items returns the cached list. The slice is a copy; callers may not mutate
// cached records through it.
func (c *Cache[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Reload replaces the cached list with a fresh fetch. If the context is done
// by the time the response arrives, the result is discarded so it cannot
// land on a view that no longer exists.
func (c *Cache[T]) Reload(ctx context.Context) error {
	items, err := c.client.List(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}
