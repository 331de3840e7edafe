package driving

import (
	"context"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

// IngestService is the write side used by ingestion collaborators.
type IngestService interface {
	// CreateChunk validates and stores a chunk, embedding its text when no vector is given.
	CreateChunk(ctx context.Context, in domain.ChunkInput) (domain.ChunkID, error)

	// CreateEdge validates and stores an edge between existing chunks.
	CreateEdge(ctx context.Context, in domain.EdgeInput) (domain.EdgeID, error)

	// GetChunk retrieves a chunk by ID.
	GetChunk(ctx context.Context, id domain.ChunkID) (*domain.Chunk, error)

	// GetEdge retrieves an edge by ID.
	GetEdge(ctx context.Context, id domain.EdgeID) (*domain.Edge, error)

	// UpdateChunkMeta replaces a chunk's meta.
	UpdateChunkMeta(ctx context.Context, id domain.ChunkID, meta map[string]any) error

	// ListNodeChunks returns the chunks of a source entity.
	ListNodeChunks(ctx context.Context, nodeID string) ([]*domain.Chunk, error)

	// ListOwnerChunks returns the chunks of a profile.
	ListOwnerChunks(ctx context.Context, ownerID domain.UserID) ([]*domain.Chunk, error)

	// DeleteOwner cascades the removal of a profile's chunks and edges.
	DeleteOwner(ctx context.Context, ownerID domain.UserID) (int, error)

	// Import stores a bundle in order, stopping at the first failure.
	// The summary reports what was stored before it.
	Import(ctx context.Context, bundle domain.ImportBundle) (*domain.ImportSummary, error)

	// DeleteNode cascades the removal of a source entity's chunks and edges.
	DeleteNode(ctx context.Context, nodeID string) (int, error)
}
