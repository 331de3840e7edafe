package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driven"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/logger"
)

// ComputeFunc produces a fresh payload for a cache key.
type ComputeFunc func(ctx context.Context) (*domain.ExperienceMatches, error)

// ResultCache holds experience-match payloads per key with at most one
// recomputation in flight per key.
//
// An entry is Fresh while now - LastUpdated < ttl. Fresh entries are served
// directly. Otherwise a recomputation starts, or is joined if one is already
// running, and the caller either receives the stale value immediately
// (stale_while_revalidate) or waits for the result (block, and always when
// there is nothing stale to serve or a refresh was forced).
//
// A failed recomputation keeps the previous value. Its error reaches the
// caller that started it; joiners fall back to the previous value when one
// exists. Recomputation runs detached from the caller's cancellation, bounded
// by the recompute timeout.
type ResultCache struct {
	ttl              time.Duration
	policy           domain.CachePolicy
	recomputeTimeout time.Duration
	store            driven.MatchCacheStore

	mu      sync.Mutex
	now     func() time.Time
	entries map[domain.CacheKey]*cacheEntry
}

type cacheEntry struct {
	value *domain.ExperienceMatches
	call  *recomputeCall

	// loaded is set once the persistent store has been consulted.
	loaded bool

	// generation increments on invalidation so older recomputations do not
	// repopulate the entry.
	generation uint64
}

type recomputeCall struct {
	id         string
	generation uint64
	done       chan struct{}
	val        *domain.ExperienceMatches
	err        error
}

// NewResultCache creates a cache. store is optional.
func NewResultCache(settings domain.CacheSettings, store driven.MatchCacheStore) *ResultCache {
	policy := settings.Policy
	if !policy.IsValid() {
		policy = domain.CachePolicyServeStale
	}
	return &ResultCache{
		ttl:              settings.TTL,
		policy:           policy,
		recomputeTimeout: settings.RecomputeTimeout,
		store:            store,
		now:              time.Now,
		entries:          make(map[domain.CacheKey]*cacheEntry),
	}
}

// SetClock replaces the time source. Used by tests.
func (c *ResultCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// TTL returns the freshness window.
func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}

// Get returns the payload for key, computing it when needed. The returned
// payload is a copy the caller may modify.
func (c *ResultCache) Get(
	ctx context.Context, key domain.CacheKey, forceRefresh bool, compute ComputeFunc,
) (*domain.ExperienceMatches, error) {
	c.load(ctx, key)

	c.mu.Lock()
	e := c.entry(key)
	if !forceRefresh && e.value != nil && e.value.IsFresh(c.now()) {
		v := e.value.Clone()
		c.mu.Unlock()
		return v, nil
	}

	call, leader := e.call, false
	if call == nil {
		call = c.startLocked(ctx, key, e, compute)
		leader = true
	}
	stale := e.value
	c.mu.Unlock()

	if stale != nil && !forceRefresh && c.policy == domain.CachePolicyServeStale {
		return stale.Clone(), nil
	}

	select {
	case <-call.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if call.err != nil {
		if leader || stale == nil {
			return nil, call.err
		}
		return stale.Clone(), nil
	}
	return call.val.Clone(), nil
}

// State reports the lifecycle state of key.
func (c *ResultCache) State(key domain.CacheKey) domain.CacheState {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	switch {
	case !ok:
		return domain.CacheAbsent
	case e.call != nil:
		return domain.CacheRecomputing
	case e.value == nil:
		return domain.CacheAbsent
	case e.value.IsFresh(c.now()):
		return domain.CacheFresh
	default:
		return domain.CacheStale
	}
}

// Invalidate drops every payload cached for nodeID. Recomputations already
// running still answer their waiters but are not stored.
func (c *ResultCache) Invalidate(ctx context.Context, nodeID string) error {
	c.mu.Lock()
	for key, e := range c.entries {
		if key.NodeID != nodeID {
			continue
		}
		e.value = nil
		e.loaded = true
		e.generation++
		if e.call == nil {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	return c.store.DeleteMatches(ctx, nodeID)
}

// InvalidateOwner drops every payload whose subject or matched profiles
// include owner, in memory and in the persistent store. Recomputations in
// flight may have read the owner's chunks, so none of them is stored.
func (c *ResultCache) InvalidateOwner(ctx context.Context, owner domain.UserID) error {
	c.mu.Lock()
	for key, e := range c.entries {
		switch {
		case e.call != nil:
			e.value = nil
			e.generation++
		case e.value != nil && e.value.References(owner):
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	return c.store.DeleteReferencing(ctx, owner)
}

// PurgeExpired drops idle entries that have been stale for longer than one
// TTL, in memory and in the persistent store. Younger stale entries are kept
// so they can still be served while revalidating. With a store, the count is
// the number of persisted payloads removed.
func (c *ResultCache) PurgeExpired(ctx context.Context) (int, error) {
	c.mu.Lock()
	cutoff := c.now().Add(-c.ttl)
	purged := 0
	for key, e := range c.entries {
		if e.call == nil && e.value != nil && !e.value.IsFresh(cutoff) {
			delete(c.entries, key)
			purged++
		}
	}
	c.mu.Unlock()

	if c.store == nil {
		return purged, nil
	}
	return c.store.PurgeExpired(ctx, cutoff)
}

// entry returns the entry for key, creating it. Caller must hold c.mu.
func (c *ResultCache) entry(key domain.CacheKey) *cacheEntry {
	e, ok := c.entries[key]
	if !ok {
		e = &cacheEntry{loaded: c.store == nil}
		c.entries[key] = e
	}
	return e
}

// load consults the persistent store once per key, outside the lock.
func (c *ResultCache) load(ctx context.Context, key domain.CacheKey) {
	if c.store == nil {
		return
	}
	c.mu.Lock()
	e := c.entry(key)
	if e.loaded {
		c.mu.Unlock()
		return
	}
	generation := e.generation
	c.mu.Unlock()

	stored, err := c.store.GetMatches(ctx, key)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Warn("cache: loading %s failed: %v", key, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e = c.entry(key)
	if e.generation != generation || e.loaded {
		return
	}
	e.loaded = true
	if stored != nil && e.value == nil {
		e.value = stored
	}
}

// startLocked launches a recomputation for key. Caller must hold c.mu.
func (c *ResultCache) startLocked(
	ctx context.Context, key domain.CacheKey, e *cacheEntry, compute ComputeFunc,
) *recomputeCall {
	call := &recomputeCall{
		id:         uuid.NewString(),
		generation: e.generation,
		done:       make(chan struct{}),
	}
	e.call = call

	rctx := context.WithoutCancel(ctx)
	cancel := func() {}
	if c.recomputeTimeout > 0 {
		rctx, cancel = context.WithTimeout(rctx, c.recomputeTimeout)
	}

	go func() {
		defer cancel()
		logger.Debug("cache: recompute %s started for %s", call.id, key)

		val, err := compute(rctx)
		if err == nil && val == nil {
			err = errors.New("recompute returned no payload")
		}

		c.mu.Lock()
		if err == nil {
			val.LastUpdated = c.now()
			val.CacheTTL = int(c.ttl / time.Second)
		}
		call.val, call.err = val, err

		store := false
		e := c.entries[key]
		if e != nil && e.call == call {
			e.call = nil
			if err == nil && e.generation == call.generation {
				e.value = val
				e.loaded = true
				store = c.store != nil
			}
			if e.value == nil && e.call == nil {
				delete(c.entries, key)
			}
		}
		close(call.done)
		c.mu.Unlock()

		if err != nil {
			logger.Warn("cache: recompute %s for %s failed: %v", call.id, key, err)
			return
		}
		if store {
			if err := c.store.SaveMatches(rctx, key, val); err != nil {
				logger.Warn("cache: persisting %s failed: %v", key, err)
			}
		}
		logger.Debug("cache: recompute %s finished for %s", call.id, key)
	}()

	return call
}
