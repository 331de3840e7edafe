package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driven"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driving"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService answers cross-profile searches.
type SearchService struct {
	retriever        *Retriever
	permissions      driven.PermissionEvaluator
	embeddingService driven.EmbeddingService
	insights         driven.InsightProvider
}

// NewSearchService creates a new search service.
// The permission evaluator and embedding service are optional (can be nil).
func NewSearchService(
	retriever *Retriever,
	permissions driven.PermissionEvaluator,
	embeddingService driven.EmbeddingService,
) *SearchService {
	return &SearchService{
		retriever:        retriever,
		permissions:      permissions,
		embeddingService: embeddingService,
	}
}

// SetInsightProvider sets the optional enrichment collaborator.
func (s *SearchService) SetInsightProvider(p driven.InsightProvider) {
	s.insights = p
}

// Search retrieves, ranks and permission-filters profiles for the request.
// Query text is embedded when the request carries no vector.
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	logger.Section("Search Execution")

	if err := req.Normalize(); err != nil {
		return nil, err
	}
	req.Query = strings.TrimSpace(req.Query)
	logger.Debug("Query: %q, limit: %d, tenant: %s", req.Query, req.Limit, req.TenantID)

	if len(req.QueryEmbedding) == 0 || domain.IsZeroVector(req.QueryEmbedding) {
		emb, err := s.embedQuery(ctx, req.Query)
		if err != nil {
			return nil, err
		}
		req.QueryEmbedding = emb
	}

	matches, err := s.retriever.Retrieve(ctx, req)
	if err != nil {
		return nil, err
	}
	matches = enrich(ctx, s.insights, req.Query, matches)

	visible, err := filterVisible(ctx, s.permissions, req.RequestingUserID, matches)
	if err != nil {
		return nil, err
	}

	logger.Info("Search returned %d profiles", len(visible))
	return &domain.SearchResponse{
		Results:      visible,
		TotalResults: len(visible),
		Query:        req.Query,
	}, nil
}

func (s *SearchService) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if query == "" || s.embeddingService == nil {
		return nil, domain.ErrEmptyQueryEmbedding
	}
	emb, err := s.embeddingService.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return emb, nil
}

// enrich applies the insight provider. Failures and results that change the
// shape of the list are logged and ignored.
func enrich(ctx context.Context, p driven.InsightProvider, query string, matches []domain.MatchResult) []domain.MatchResult {
	if p == nil || len(matches) == 0 {
		return matches
	}
	enriched, err := p.Enrich(ctx, query, matches)
	if err != nil {
		logger.Warn("match enrichment failed: %v", err)
		return matches
	}
	if len(enriched) != len(matches) {
		logger.Warn("match enrichment changed result count (%d -> %d), ignoring", len(matches), len(enriched))
		return matches
	}
	for i := range enriched {
		if enriched[i].UserID != matches[i].UserID || enriched[i].Score != matches[i].Score {
			logger.Warn("match enrichment reordered or rescored results, ignoring")
			return matches
		}
	}
	return enriched
}
