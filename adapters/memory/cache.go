// Package memory provides the in-process user-entity cache.
package memory

import (
	"context"
	"sync"

	"scorewatch/core"
	"scorewatch/engine"
)

// DefaultMaxEntries bounds the cache so long uptimes cannot grow it
// without limit.
const DefaultMaxEntries = 10000

// Cache is a size-capped in-memory engine.UserCache. When full, an
// arbitrary entry is evicted to make room.
type Cache struct {
	mu    sync.RWMutex
	max   int
	users map[int64]*core.User
}

func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{max: maxEntries, users: make(map[int64]*core.User)}
}

func (c *Cache) Get(_ context.Context, id int64) (*core.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[id]
	return u, ok
}

func (c *Cache) Put(_ context.Context, u *core.User) {
	if u == nil || u.ID == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.users[u.ID]; !exists && len(c.users) >= c.max {
		for id := range c.users {
			delete(c.users, id)
			break
		}
	}
	c.users[u.ID] = u
}

// Len returns the number of cached users.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.users)
}

var _ engine.UserCache = (*Cache)(nil)
