package services

import (
	"context"
	"sync"
	"time"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/logger"
)

// expiredPurger removes expired cache entries.
type expiredPurger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// CacheJanitor periodically purges expired experience-match payloads.
// It is a pure core service with no external control API.
type CacheJanitor struct {
	cache    expiredPurger
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewCacheJanitor creates a janitor sweeping every interval.
// A non-positive interval disables sweeping.
func NewCacheJanitor(cache expiredPurger, interval time.Duration) *CacheJanitor {
	return &CacheJanitor{
		cache:    cache,
		interval: interval,
	}
}

// Start begins the sweep loop. This method blocks until Stop is called or
// ctx is done.
func (j *CacheJanitor) Start(ctx context.Context) error {
	if j.interval <= 0 {
		logger.Debug("cache janitor disabled")
		return nil
	}

	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return nil // Already running
	}
	j.running = true
	j.stopCh = make(chan struct{})
	j.doneCh = make(chan struct{})
	stopCh, doneCh := j.stopCh, j.doneCh
	j.mu.Unlock()

	defer close(doneCh)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.mu.Lock()
			j.running = false
			j.mu.Unlock()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Stop ends the sweep loop and waits for an in-progress sweep to finish.
func (j *CacheJanitor) Stop() error {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return nil
	}
	j.running = false
	close(j.stopCh)
	doneCh := j.doneCh
	j.mu.Unlock()

	<-doneCh
	return nil
}

// Sweep runs one purge and returns the number of removed payloads.
func (j *CacheJanitor) Sweep(ctx context.Context) int {
	n, err := j.cache.PurgeExpired(ctx)
	if err != nil {
		logger.Warn("cache janitor: purge failed: %v", err)
		return 0
	}
	if n > 0 {
		logger.Info("cache janitor: purged %d expired payloads", n)
	}
	return n
}
