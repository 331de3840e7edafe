package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/logger"
)

// ExpandOptions restricts which reached chunks are emitted.
type ExpandOptions struct {
	// ExcludeUserID chunks are traversed through but never emitted.
	ExcludeUserID *domain.UserID

	// TenantID chunks of other tenants are traversed through but never emitted.
	TenantID string
}

// GraphExpander propagates seed relevance along the relationship graph.
type GraphExpander struct {
	graph    *RelationshipGraph
	maxDepth int
	decay    float64
	workers  int
}

// NewGraphExpander creates an expander using the depth, decay and worker
// settings of s.
func NewGraphExpander(graph *RelationshipGraph, s domain.RetrievalSettings) *GraphExpander {
	return &GraphExpander{
		graph:    graph,
		maxDepth: s.MaxDepth,
		decay:    s.Decay,
		workers:  max(1, s.ExpansionWorkers),
	}
}

// Expand returns the graph-aware view of every seed and every eligible chunk
// reachable from a seed.
//
// Seeds keep path weight 1, so their graph score equals their similarity.
// A non-seed's graph score is the maximum over seeds of
// seedSimilarity * bestPathWeight, and its BestSeedSim, BestPathWeight and
// Hops describe the seed achieving it. Ties keep the earlier seed.
func (e *GraphExpander) Expand(
	ctx context.Context, seeds []domain.ScoredChunk, opts ExpandOptions,
) (map[domain.ChunkID]*domain.Expansion, error) {
	result := make(map[domain.ChunkID]*domain.Expansion, len(seeds))
	for _, s := range seeds {
		result[s.Chunk.ID] = &domain.Expansion{
			Chunk:            s.Chunk,
			DirectSimilarity: s.Similarity,
			BestSeedSim:      s.Similarity,
			BestPathWeight:   1,
			IsSeed:           true,
		}
	}
	if e.maxDepth <= 0 || len(seeds) == 0 {
		return result, nil
	}

	graph := e.graph.withMemo()
	reached := make([]map[domain.ChunkID]*domain.Expansion, len(seeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, seed := range seeds {
		if seed.Similarity <= 0 {
			continue
		}
		g.Go(func() error {
			local := make(map[domain.ChunkID]*domain.Expansion)
			for n, err := range graph.Neighbors(gctx, seed.Chunk.ID, e.maxDepth, e.decay) {
				if err != nil {
					return err
				}
				if !eligible(n.Chunk, opts) {
					continue
				}
				if cur, ok := local[n.Chunk.ID]; ok && cur.BestPathWeight >= n.PathWeight {
					continue
				}
				local[n.Chunk.ID] = &domain.Expansion{
					Chunk:          n.Chunk,
					BestSeedSim:    seed.Similarity,
					BestPathWeight: n.PathWeight,
					Hops:           n.Hops,
				}
			}
			reached[i] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, local := range reached {
		for id, x := range local {
			cur, ok := result[id]
			if ok && (cur.IsSeed || cur.GraphAwareScore() >= x.GraphAwareScore()) {
				continue
			}
			result[id] = x
		}
	}

	logger.Debug("Expansion: %d seeds, %d chunks", len(seeds), len(result))
	return result, nil
}

func eligible(c *domain.Chunk, opts ExpandOptions) bool {
	if opts.ExcludeUserID != nil && c.OwnerID == *opts.ExcludeUserID {
		return false
	}
	return c.Tenant() == domain.TenantOrDefault(opts.TenantID)
}
