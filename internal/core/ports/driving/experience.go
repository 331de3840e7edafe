package driving

import (
	"context"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

// ExperienceMatchService serves cached matches for a subject node.
type ExperienceMatchService interface {
	// GetMatches returns the matches for nodeID, computing them when absent,
	// stale or when opts.ForceRefresh is set.
	GetMatches(ctx context.Context, nodeID string, opts domain.ExperienceMatchOptions) (*domain.ExperienceMatches, error)

	// Invalidate drops every cached payload for nodeID.
	Invalidate(ctx context.Context, nodeID string) error
}
