package services

import (
	"context"
	"fmt"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driven"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/logger"
)

// SeedRetriever selects the chunks most similar to a query embedding.
type SeedRetriever struct {
	chunks driven.ChunkStore
	pool   int
}

// NewSeedRetriever creates a retriever returning at most pool seeds.
func NewSeedRetriever(chunks driven.ChunkStore, pool int) *SeedRetriever {
	return &SeedRetriever{chunks: chunks, pool: pool}
}

// Retrieve returns seeds ordered by descending similarity, ties by ascending ID.
// Candidates with non-positive similarity carry no relevance to propagate and
// are dropped, as are those below the request's similarity threshold.
func (r *SeedRetriever) Retrieve(ctx context.Context, req domain.SearchRequest) ([]domain.ScoredChunk, error) {
	if len(req.QueryEmbedding) == 0 || domain.IsZeroVector(req.QueryEmbedding) {
		return nil, domain.ErrEmptyQueryEmbedding
	}

	seeds, err := r.chunks.QueryBySimilarity(ctx, req.QueryEmbedding, req.Filter(), r.pool)
	if err != nil {
		return nil, fmt.Errorf("seed retrieval: %w", err)
	}

	for i, s := range seeds {
		if s.Similarity <= 0 || (req.SimilarityThreshold != nil && s.Similarity < *req.SimilarityThreshold) {
			seeds = seeds[:i]
			break
		}
	}

	logger.Debug("Seeds: %d (pool %d)", len(seeds), r.pool)
	return seeds, nil
}
