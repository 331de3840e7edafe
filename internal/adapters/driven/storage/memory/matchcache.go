package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driven"
)

// Ensure MatchCacheStore implements the interface.
var _ driven.MatchCacheStore = (*MatchCacheStore)(nil)

// MatchCacheStore is an in-memory implementation of driven.MatchCacheStore.
type MatchCacheStore struct {
	mu      sync.RWMutex
	entries map[domain.CacheKey]*domain.ExperienceMatches
}

// NewMatchCacheStore creates a new in-memory match cache store.
func NewMatchCacheStore() *MatchCacheStore {
	return &MatchCacheStore{
		entries: make(map[domain.CacheKey]*domain.ExperienceMatches),
	}
}

// GetMatches returns a copy of the stored payload.
func (s *MatchCacheStore) GetMatches(_ context.Context, key domain.CacheKey) (*domain.ExperienceMatches, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.entries[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m.Clone(), nil
}

// SaveMatches upserts the payload for a key.
func (s *MatchCacheStore) SaveMatches(_ context.Context, key domain.CacheKey, matches *domain.ExperienceMatches) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = matches.Clone()
	return nil
}

// DeleteMatches removes every payload stored for a subject node.
func (s *MatchCacheStore) DeleteMatches(_ context.Context, nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if key.NodeID == nodeID {
			delete(s.entries, key)
		}
	}
	return nil
}

// DeleteReferencing removes every payload that mentions owner.
func (s *MatchCacheStore) DeleteReferencing(_ context.Context, owner domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, m := range s.entries {
		if m.References(owner) {
			delete(s.entries, key)
		}
	}
	return nil
}

// PurgeExpired removes payloads that are no longer fresh at now.
func (s *MatchCacheStore) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for key, m := range s.entries {
		if !m.IsFresh(now) {
			delete(s.entries, key)
			purged++
		}
	}
	return purged, nil
}
