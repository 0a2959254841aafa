package service

import (
	"context"
	"sync"
	"time"

	"github.com/capitalize-ai/hr-service-desk/pkg/metrics"
)

// ThreadCacheConfig bounds the conversation thread cache.
type ThreadCacheConfig struct {
	// TTL expires threads idle for longer; zero keeps them forever.
	TTL time.Duration
	// MaxEntries evicts the least recently used thread when exceeded; zero
	// means unbounded.
	MaxEntries int
	// OnEvict is called with the thread ID of every expired or evicted entry.
	OnEvict func(threadID string)
}

type threadEntry struct {
	threadID string
	lastUsed time.Time
}

// ThreadCache maps users onto their conversation thread. The first thread
// stored for a user wins and is reused until it expires.
type ThreadCache struct {
	cfg     ThreadCacheConfig
	entries map[string]*threadEntry
	mu      sync.Mutex
	now     func() time.Time
}

// NewThreadCache creates an empty cache.
func NewThreadCache(cfg ThreadCacheConfig) *ThreadCache {
	return &ThreadCache{
		cfg:     cfg,
		entries: make(map[string]*threadEntry),
		now:     time.Now,
	}
}

// Get returns the live thread for userID and refreshes its idle timer.
func (c *ThreadCache) Get(userID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.live(userID)
	if !ok {
		return "", false
	}
	e.lastUsed = c.now()
	return e.threadID, true
}

// GetOrCreate returns the user's thread, calling create when there is none.
// create runs without the lock held; if another caller stored a thread for
// the same user meanwhile, that thread wins and the new one is released.
func (c *ThreadCache) GetOrCreate(ctx context.Context, userID string, create func(context.Context) (string, error)) (string, error) {
	if id, ok := c.Get(userID); ok {
		return id, nil
	}

	threadID, err := create(ctx)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	if e, ok := c.live(userID); ok {
		e.lastUsed = c.now()
		existing := e.threadID
		c.mu.Unlock()
		c.evicted(threadID)
		return existing, nil
	}

	var dropped []string
	if stale, ok := c.entries[userID]; ok {
		dropped = append(dropped, stale.threadID)
		delete(c.entries, userID)
	}
	if c.cfg.MaxEntries > 0 && len(c.entries) >= c.cfg.MaxEntries {
		dropped = append(dropped, c.evictOldest())
	}
	c.entries[userID] = &threadEntry{threadID: threadID, lastUsed: c.now()}
	size := len(c.entries)
	c.mu.Unlock()

	metrics.SetThreadsActive(size)
	for _, id := range dropped {
		c.evicted(id)
	}
	return threadID, nil
}

// Len returns the number of cached threads, expired ones included until
// the next sweep.
func (c *ThreadCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep removes expired threads and returns how many were removed.
func (c *ThreadCache) Sweep() int {
	if c.cfg.TTL <= 0 {
		return 0
	}

	c.mu.Lock()
	now := c.now()
	var dropped []string
	for userID, e := range c.entries {
		if now.Sub(e.lastUsed) > c.cfg.TTL {
			dropped = append(dropped, e.threadID)
			delete(c.entries, userID)
		}
	}
	size := len(c.entries)
	c.mu.Unlock()

	metrics.SetThreadsActive(size)
	for _, id := range dropped {
		c.evicted(id)
	}
	return len(dropped)
}

// Run sweeps the cache every interval until ctx is done.
func (c *ThreadCache) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// live returns the unexpired entry for userID. Callers hold c.mu.
func (c *ThreadCache) live(userID string) (*threadEntry, bool) {
	e, ok := c.entries[userID]
	if !ok {
		return nil, false
	}
	if c.cfg.TTL > 0 && c.now().Sub(e.lastUsed) > c.cfg.TTL {
		return nil, false
	}
	return e, true
}

// evictOldest removes the least recently used entry. Callers hold c.mu.
func (c *ThreadCache) evictOldest() string {
	var oldestUser string
	var oldest *threadEntry
	for userID, e := range c.entries {
		if oldest == nil || e.lastUsed.Before(oldest.lastUsed) {
			oldestUser, oldest = userID, e
		}
	}
	delete(c.entries, oldestUser)
	return oldest.threadID
}

func (c *ThreadCache) evicted(threadID string) {
	if c.cfg.OnEvict != nil {
		c.cfg.OnEvict(threadID)
	}
}
