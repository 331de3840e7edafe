package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driven"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/logger"
)

// Retriever runs the retrieval pipeline: seed retrieval, graph expansion,
// score fusion and profile aggregation. It applies no permission filtering.
type Retriever struct {
	chunks   driven.ChunkStore
	graph    *RelationshipGraph
	settings atomic.Pointer[domain.RetrievalSettings]
	now      func() time.Time
}

// NewRetriever creates a retriever over the given stores.
func NewRetriever(chunks driven.ChunkStore, edges driven.EdgeStore, settings domain.RetrievalSettings) *Retriever {
	r := &Retriever{
		chunks: chunks,
		graph:  NewRelationshipGraph(edges),
		now:    time.Now,
	}
	r.settings.Store(&settings)
	return r
}

// SetClock replaces the time source used for recency. Used by tests.
func (r *Retriever) SetClock(now func() time.Time) {
	r.now = now
}

// Settings returns the settings the next request will use.
func (r *Retriever) Settings() domain.RetrievalSettings {
	return *r.settings.Load()
}

// UpdateSettings swaps the settings used by subsequent requests.
// Requests already running keep the settings they started with.
func (r *Retriever) UpdateSettings(s domain.RetrievalSettings) {
	r.settings.Store(&s)
}

// Retrieve returns up to req.Limit ranked profiles. req must be normalised and
// carry a query embedding. Every store call shares one deadline; when it
// passes the request fails with domain.ErrRetrievalTimeout and no partial result.
func (r *Retriever) Retrieve(ctx context.Context, req domain.SearchRequest) ([]domain.MatchResult, error) {
	s := r.Settings()

	rctx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	results, err := r.retrieve(rctx, req, s)
	if err != nil {
		if errors.Is(rctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: after %s", domain.ErrRetrievalTimeout, s.Timeout)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return results, nil
}

func (r *Retriever) retrieve(ctx context.Context, req domain.SearchRequest, s domain.RetrievalSettings) ([]domain.MatchResult, error) {
	seeds, err := NewSeedRetriever(r.chunks, s.SeedPool).Retrieve(ctx, req)
	if err != nil {
		return nil, err
	}

	expansions, err := NewGraphExpander(r.graph, s).Expand(ctx, seeds, ExpandOptions{
		ExcludeUserID: req.ExcludeUserID,
		TenantID:      req.TenantID,
	})
	if err != nil {
		return nil, fmt.Errorf("graph expansion: %w", err)
	}

	ranker := NewRanker(s, r.now)
	matches := ranker.Aggregate(ranker.Rank(expansions), req.Limit)
	logger.Debug("Ranked %d chunks into %d profiles", len(expansions), len(matches))
	return matches, nil
}
