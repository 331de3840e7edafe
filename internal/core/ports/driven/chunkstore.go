package driven

import (
	"context"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

// ChunkStore persists chunks and answers vector similarity queries.
// Embeddings are stored L2-normalised.
type ChunkStore interface {
	// Put stores a new chunk and returns its generated ID.
	// Returns domain.ErrInvalidEmbeddingDimension when the vector length differs
	// from the deployment dimension. Nothing is written on failure.
	Put(ctx context.Context, chunk *domain.Chunk) (domain.ChunkID, error)

	// Get retrieves a chunk by ID. Returns domain.ErrNotFound when absent.
	Get(ctx context.Context, id domain.ChunkID) (*domain.Chunk, error)

	// UpdateMeta replaces a chunk's meta and bumps UpdatedAt.
	UpdateMeta(ctx context.Context, id domain.ChunkID, meta map[string]any) error

	// QueryBySimilarity returns up to k chunks passing the filter, ordered by
	// descending cosine similarity to embedding, ties by ascending ID.
	QueryBySimilarity(ctx context.Context, embedding []float32, filter domain.ChunkFilter, k int) ([]domain.ScoredChunk, error)

	// ListByNode returns the chunks derived from a source entity, oldest first.
	ListByNode(ctx context.Context, nodeID string) ([]*domain.Chunk, error)

	// ListByOwner returns an owner's chunks, oldest first.
	ListByOwner(ctx context.Context, ownerID domain.UserID) ([]*domain.Chunk, error)

	// DeleteByOwner removes an owner's chunks and every edge touching them.
	DeleteByOwner(ctx context.Context, ownerID domain.UserID) (int, error)

	// DeleteByNode removes a source entity's chunks and every edge touching them.
	DeleteByNode(ctx context.Context, nodeID string) (int, error)

	// Stats returns content counts.
	Stats(ctx context.Context) (*domain.StoreStats, error)
}
