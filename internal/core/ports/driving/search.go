package driving

import (
	"context"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

// SearchService executes cross-profile searches.
type SearchService interface {
	// Search retrieves, expands, ranks and permission-filters profiles for the request.
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error)
}
