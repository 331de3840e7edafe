package driven

import (
	"context"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

// EdgeStore persists relationships between chunks.
type EdgeStore interface {
	// AddEdge stores an edge and returns its generated ID.
	// Returns domain.ErrDanglingReference if either endpoint is missing.
	AddEdge(ctx context.Context, edge *domain.Edge) (domain.EdgeID, error)

	// GetEdge retrieves an edge by ID. Returns domain.ErrNotFound when absent.
	GetEdge(ctx context.Context, id domain.EdgeID) (*domain.Edge, error)

	// Adjacent returns the one-hop traversable neighbours of a chunk:
	// outgoing edges of any kind plus incoming undirected edges.
	// Neighbor chunks may be returned without embeddings.
	Adjacent(ctx context.Context, id domain.ChunkID) ([]domain.Adjacency, error)
}
