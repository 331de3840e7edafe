package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driven"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driving"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/logger"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/vector"
)

// Ensure ExperienceMatchService implements the interface.
var _ driving.ExperienceMatchService = (*ExperienceMatchService)(nil)

// ExperienceMatchService finds profiles with experience similar to a subject
// node. The subject's own owner is excluded from the results.
//
// Payloads are cached before permission filtering and filtered per caller on
// every read, so one cached computation serves requesters with different
// visibility.
type ExperienceMatchService struct {
	chunks      driven.ChunkStore
	retriever   *Retriever
	cache       *ResultCache
	permissions driven.PermissionEvaluator
	insights    driven.InsightProvider
	settings    domain.ExperienceSettings
}

// NewExperienceMatchService creates the service. permissions may be nil.
func NewExperienceMatchService(
	chunks driven.ChunkStore,
	retriever *Retriever,
	cache *ResultCache,
	permissions driven.PermissionEvaluator,
	settings domain.ExperienceSettings,
) *ExperienceMatchService {
	return &ExperienceMatchService{
		chunks:      chunks,
		retriever:   retriever,
		cache:       cache,
		permissions: permissions,
		settings:    settings,
	}
}

// SetInsightProvider sets the optional enrichment collaborator.
func (s *ExperienceMatchService) SetInsightProvider(p driven.InsightProvider) {
	s.insights = p
}

// GetMatches returns the matches for a subject node.
func (s *ExperienceMatchService) GetMatches(
	ctx context.Context, nodeID string, opts domain.ExperienceMatchOptions,
) (*domain.ExperienceMatches, error) {
	logger.Section("Experience Matches")

	nodeID = strings.TrimSpace(nodeID)
	if nodeID == "" {
		return nil, fmt.Errorf("%w: node id is required", domain.ErrInvalidInput)
	}

	subject, err := s.chunks.ListByNode(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("loading node %s: %w", nodeID, err)
	}
	if len(subject) == 0 {
		return nil, fmt.Errorf("%w: node %s has no chunks", domain.ErrNotFound, nodeID)
	}

	query := buildQuery(subject, s.settings.QueryMaxChars)
	key := domain.NewCacheKey(nodeID, query)
	logger.Debug("Cache key: %s (state %s, force %t)", key, s.cache.State(key), opts.ForceRefresh)

	payload, err := s.cache.Get(ctx, key, opts.ForceRefresh, func(rctx context.Context) (*domain.ExperienceMatches, error) {
		return s.compute(rctx, nodeID, subject, query)
	})
	if err != nil {
		return nil, err
	}

	visible, err := filterVisible(ctx, s.permissions, opts.RequestingUserID, payload.Matches)
	if err != nil {
		return nil, err
	}
	payload.Matches = visible
	payload.MatchCount = len(visible)
	return payload, nil
}

// InvalidateOwner drops every cached payload that mentions owner.
func (s *ExperienceMatchService) InvalidateOwner(ctx context.Context, owner domain.UserID) error {
	return s.cache.InvalidateOwner(ctx, owner)
}

// Invalidate drops every cached payload for nodeID.
func (s *ExperienceMatchService) Invalidate(ctx context.Context, nodeID string) error {
	return s.cache.Invalidate(ctx, nodeID)
}

func (s *ExperienceMatchService) compute(
	ctx context.Context, nodeID string, subject []*domain.Chunk, query string,
) (*domain.ExperienceMatches, error) {
	owner := subject[0].OwnerID
	threshold := s.settings.SimilarityThreshold

	embeddings := make([][]float32, len(subject))
	for i, c := range subject {
		embeddings[i] = c.Embedding
	}

	req := domain.SearchRequest{
		Query:               query,
		QueryEmbedding:      vector.Centroid(embeddings),
		Limit:               s.settings.Limit,
		TenantID:            subject[0].Tenant(),
		ExcludeUserID:       &owner,
		SimilarityThreshold: &threshold,
	}
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	matches, err := s.retriever.Retrieve(ctx, req)
	if err != nil {
		return nil, err
	}
	matches = enrich(ctx, s.insights, query, matches)

	return &domain.ExperienceMatches{
		NodeID:              nodeID,
		UserID:              owner,
		MatchCount:          len(matches),
		Matches:             matches,
		SearchQuery:         query,
		SimilarityThreshold: threshold,
	}, nil
}

// buildQuery joins the subject's chunk texts, truncated to maxChars runes.
func buildQuery(subject []*domain.Chunk, maxChars int) string {
	parts := make([]string, 0, len(subject))
	for _, c := range subject {
		if text := strings.TrimSpace(c.Text); text != "" {
			parts = append(parts, text)
		}
	}
	query := strings.Join(parts, " ")
	if r := []rune(query); maxChars > 0 && len(r) > maxChars {
		query = strings.TrimSpace(string(r[:maxChars]))
	}
	return query
}
