package clubauth

import (
	"sync"
	"time"

	"github.com/Keanutjardim/FRPadelLeague/internal/domain/user"
)

// principalCache holds verified principals keyed by token hash. Entries
// expire after a fixed TTL; when the cache is full the oldest entry makes
// room, so a burst of distinct tokens cannot grow it without bound.
type principalCache struct {
	mu         sync.Mutex
	entries    map[string]principalEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

type principalEntry struct {
	principal user.Principal
	expiresAt time.Time
}

func newPrincipalCache(ttl time.Duration, maxEntries int) *principalCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &principalCache{
		entries:    make(map[string]principalEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *principalCache) get(key string) (user.Principal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return user.Principal{}, false
	}
	if !entry.expiresAt.After(c.now()) {
		delete(c.entries, key)
		return user.Principal{}, false
	}

	return entry.principal, true
}

func (c *principalCache) set(key string, principal user.Principal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, entry := range c.entries {
		if !entry.expiresAt.After(now) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) >= c.maxEntries {
		var oldestKey string
		var oldestAt time.Time
		for k, entry := range c.entries {
			if oldestKey == "" || entry.expiresAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = entry.expiresAt
			}
		}
		delete(c.entries, oldestKey)
	}

	c.entries[key] = principalEntry{
		principal: principal,
		expiresAt: now.Add(c.ttl),
	}
}
