package driven

import (
	"context"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

// InsightProvider enriches ranked matches before they are cached,
// typically rewriting WhyMatched phrasing. Scores and ordering must not change.
type InsightProvider interface {
	Enrich(ctx context.Context, query string, matches []domain.MatchResult) ([]domain.MatchResult, error)
}
