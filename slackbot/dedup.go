package slackbot

import (
	"sync"
	"time"
)

// dedupCache remembers recently seen event ids. Slack redelivers
// events when the handler is slow to acknowledge, so duplicates must
// be dropped instead of answered twice.
type dedupCache struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
	now  func() time.Time
}

func newDedupCache(ttl time.Duration) *dedupCache {
	return &dedupCache{
		ttl:  ttl,
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Seen reports whether id was observed within the TTL and records it.
func (c *dedupCache) Seen(id string) bool {
	if id == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if expiry, ok := c.seen[id]; ok && now.Before(expiry) {
		return true
	}

	// Opportunistic cleanup keeps the map from growing unbounded.
	for key, expiry := range c.seen {
		if now.After(expiry) {
			delete(c.seen, key)
		}
	}

	c.seen[id] = now.Add(c.ttl)
	return false
}
