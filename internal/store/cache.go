package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TopCache keeps the last ranked list in memory so readers on the refresh
// path never wait on the database.
//
// Thread-safety: Entries may be called from any goroutine while Refresh or
// Run updates the list.
type TopCache struct {
	store *Store
	limit int

	mu      sync.RWMutex
	entries []Entry
}

// NewTopCache creates an empty cache of the top limit players.
func NewTopCache(s *Store, limit int) *TopCache {
	return &TopCache{store: s, limit: limit}
}

// Entries returns a copy of the cached ranked list.
func (c *TopCache) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Refresh reloads the ranked list from the database.
func (c *TopCache) Refresh(ctx context.Context) error {
	entries, err := c.store.Top(ctx, c.limit)
	if err != nil {
		return fmt.Errorf("refresh top cache: %w", err)
	}
	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()
	return nil
}

// Run refreshes the cache immediately and then on every interval until ctx
// is cancelled. Refresh failures are logged and retried on the next tick.
func (c *TopCache) Run(ctx context.Context, interval time.Duration) error {
	if err := c.Refresh(ctx); err != nil {
		slog.Warn("top cache refresh failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				slog.Warn("top cache refresh failed", "error", err)
			}
		}
	}
}

// PlayerCache holds the stats of connected players.
//
// Thread-safety: all methods are safe for concurrent use.
type PlayerCache struct {
	store *Store

	mu    sync.RWMutex
	stats map[string]Stats
}

// NewPlayerCache creates an empty cache over s.
func NewPlayerCache(s *Store) *PlayerCache {
	return &PlayerCache{store: s, stats: make(map[string]Stats)}
}

// Load reads a player's stats into the cache. Players without a stored row
// start from zero.
func (c *PlayerCache) Load(ctx context.Context, id, name string) (Stats, error) {
	st, err := c.store.LoadStats(ctx, id)
	if errors.Is(err, ErrNotFound) {
		st = Stats{ID: id, Name: name}
	} else if err != nil {
		return Stats{}, err
	}

	c.mu.Lock()
	c.stats[id] = st
	c.mu.Unlock()
	return st, nil
}

// Cached returns the cached stats for a player.
func (c *PlayerCache) Cached(id string) (Stats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st, ok := c.stats[id]
	return st, ok
}

// Record persists delta and updates the cached copy.
func (c *PlayerCache) Record(ctx context.Context, delta Stats) (Stats, error) {
	st, err := c.store.AddStats(ctx, delta)
	if err != nil {
		return Stats{}, err
	}
	c.mu.Lock()
	c.stats[st.ID] = st
	c.mu.Unlock()
	return st, nil
}

// Forget drops a player from the cache.
func (c *PlayerCache) Forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.stats, id)
}
