package driven

import (
	"context"
	"time"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

// MatchCacheStore persists experience-match payloads by cache key.
type MatchCacheStore interface {
	// GetMatches returns the stored payload. Returns domain.ErrNotFound when absent.
	GetMatches(ctx context.Context, key domain.CacheKey) (*domain.ExperienceMatches, error)

	// SaveMatches upserts the payload for a key.
	SaveMatches(ctx context.Context, key domain.CacheKey, matches *domain.ExperienceMatches) error

	// DeleteMatches removes the payloads stored for a subject node.
	DeleteMatches(ctx context.Context, nodeID string) error

	// DeleteReferencing removes every payload whose subject or matches
	// include owner.
	DeleteReferencing(ctx context.Context, owner domain.UserID) error

	// PurgeExpired removes payloads whose TTL elapsed before now.
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}
