package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driven"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driving"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// cacheInvalidator drops cached payloads for a subject node, or every
// payload that mentions a profile.
type cacheInvalidator interface {
	Invalidate(ctx context.Context, nodeID string) error
	InvalidateOwner(ctx context.Context, owner domain.UserID) error
}

// IngestService stores chunks and edges on behalf of ingestion collaborators.
type IngestService struct {
	chunks           driven.ChunkStore
	edges            driven.EdgeStore
	embeddingService driven.EmbeddingService
	invalidator      cacheInvalidator
}

// NewIngestService creates a new ingestion service.
// The embeddingService is optional (can be nil); chunks must then carry vectors.
func NewIngestService(
	chunks driven.ChunkStore,
	edges driven.EdgeStore,
	embeddingService driven.EmbeddingService,
) *IngestService {
	return &IngestService{
		chunks:           chunks,
		edges:            edges,
		embeddingService: embeddingService,
	}
}

// SetInvalidator sets the cache notified when a node's chunks change.
func (s *IngestService) SetInvalidator(inv cacheInvalidator) {
	s.invalidator = inv
}

// CreateChunk validates and stores a chunk, embedding its text when no vector is given.
func (s *IngestService) CreateChunk(ctx context.Context, in domain.ChunkInput) (domain.ChunkID, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	embedding := in.Embedding
	if len(embedding) == 0 {
		if s.embeddingService == nil {
			return 0, fmt.Errorf("%w: chunk has no embedding and no embedding service is configured",
				domain.ErrEmbeddingUnavailable)
		}
		emb, err := s.embeddingService.Embed(ctx, in.Text)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		embedding = emb
	}

	chunk := &domain.Chunk{
		OwnerID:    in.OwnerID,
		NodeID:     strings.TrimSpace(in.NodeID),
		Text:       in.Text,
		Embedding:  embedding,
		EntityType: in.EntityType,
		Meta:       in.Meta,
		TenantID:   domain.TenantOrDefault(in.TenantID),
		CreatedAt:  in.CreatedAt,
	}
	id, err := s.chunks.Put(ctx, chunk)
	if err != nil {
		return 0, err
	}

	s.invalidate(ctx, chunk.NodeID)
	logger.Debug("Stored chunk %d (owner %d, node %q)", id, chunk.OwnerID, chunk.NodeID)
	return id, nil
}

// CreateEdge validates and stores an edge between existing chunks.
func (s *IngestService) CreateEdge(ctx context.Context, in domain.EdgeInput) (domain.EdgeID, error) {
	edge, err := in.Validate()
	if err != nil {
		return 0, err
	}
	return s.edges.AddEdge(ctx, edge)
}

// GetChunk retrieves a chunk by ID.
func (s *IngestService) GetChunk(ctx context.Context, id domain.ChunkID) (*domain.Chunk, error) {
	return s.chunks.Get(ctx, id)
}

// GetEdge retrieves an edge by ID.
func (s *IngestService) GetEdge(ctx context.Context, id domain.EdgeID) (*domain.Edge, error) {
	return s.edges.GetEdge(ctx, id)
}

// UpdateChunkMeta replaces a chunk's meta.
func (s *IngestService) UpdateChunkMeta(ctx context.Context, id domain.ChunkID, meta map[string]any) error {
	return s.chunks.UpdateMeta(ctx, id, meta)
}

// ListNodeChunks returns the chunks of a source entity.
func (s *IngestService) ListNodeChunks(ctx context.Context, nodeID string) ([]*domain.Chunk, error) {
	return s.chunks.ListByNode(ctx, nodeID)
}

// ListOwnerChunks returns the chunks of a profile.
func (s *IngestService) ListOwnerChunks(ctx context.Context, ownerID domain.UserID) ([]*domain.Chunk, error) {
	return s.chunks.ListByOwner(ctx, ownerID)
}

// DeleteOwner cascades the removal of a profile's chunks and edges.
func (s *IngestService) DeleteOwner(ctx context.Context, ownerID domain.UserID) (int, error) {
	owned, err := s.chunks.ListByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	n, err := s.chunks.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool)
	for _, c := range owned {
		if !seen[c.NodeID] {
			seen[c.NodeID] = true
			s.invalidate(ctx, c.NodeID)
		}
	}
	s.invalidateOwner(ctx, ownerID)
	logger.Info("Deleted %d chunks of owner %d", n, ownerID)
	return n, nil
}

// DeleteNode cascades the removal of a source entity's chunks and edges.
func (s *IngestService) DeleteNode(ctx context.Context, nodeID string) (int, error) {
	nodeID = strings.TrimSpace(nodeID)
	var affected []domain.UserID
	if nodeID != "" {
		chunks, err := s.chunks.ListByNode(ctx, nodeID)
		if err != nil {
			return 0, err
		}
		seen := make(map[domain.UserID]bool)
		for _, c := range chunks {
			if !seen[c.OwnerID] {
				seen[c.OwnerID] = true
				affected = append(affected, c.OwnerID)
			}
		}
	}

	n, err := s.chunks.DeleteByNode(ctx, nodeID)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, nodeID)
	for _, owner := range affected {
		s.invalidateOwner(ctx, owner)
	}
	logger.Info("Deleted %d chunks of node %s", n, nodeID)
	return n, nil
}

// Import stores a bundle in order, stopping at the first failure.
func (s *IngestService) Import(ctx context.Context, bundle domain.ImportBundle) (*domain.ImportSummary, error) {
	summary := &domain.ImportSummary{Keys: make(map[string]domain.ChunkID)}

	for i, c := range bundle.Chunks {
		if c.Key != "" {
			if _, dup := summary.Keys[c.Key]; dup {
				return summary, fmt.Errorf("chunk %d: %w: duplicate key %q", i, domain.ErrInvalidInput, c.Key)
			}
		}
		id, err := s.CreateChunk(ctx, c.Input())
		if err != nil {
			return summary, fmt.Errorf("chunk %d (%s): %w", i, c.Key, err)
		}
		if c.Key != "" {
			summary.Keys[c.Key] = id
		}
		summary.Chunks++
	}

	for i, e := range bundle.Edges {
		src, err := resolveChunkRef(e.Src, summary.Keys)
		if err != nil {
			return summary, fmt.Errorf("edge %d: %w", i, err)
		}
		dst, err := resolveChunkRef(e.Dst, summary.Keys)
		if err != nil {
			return summary, fmt.Errorf("edge %d: %w", i, err)
		}
		if _, err := s.CreateEdge(ctx, domain.EdgeInput{
			SrcChunkID: src,
			DstChunkID: dst,
			RelType:    e.RelType,
			Weight:     e.Weight,
			Directed:   e.Directed,
			Meta:       e.Meta,
		}); err != nil {
			return summary, fmt.Errorf("edge %d (%s -> %s): %w", i, e.Src, e.Dst, err)
		}
		summary.Edges++
	}

	logger.Info("Imported %d chunks and %d edges", summary.Chunks, summary.Edges)
	return summary, nil
}

// resolveChunkRef maps a bundle key, or else a decimal chunk ID, to a chunk ID.
func resolveChunkRef(ref string, keys map[string]domain.ChunkID) (domain.ChunkID, error) {
	if id, ok := keys[ref]; ok {
		return id, nil
	}
	n, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: unknown chunk reference %q", domain.ErrDanglingReference, ref)
	}
	return domain.ChunkID(n), nil
}

func (s *IngestService) invalidate(ctx context.Context, nodeID string) {
	if s.invalidator == nil || nodeID == "" {
		return
	}
	if err := s.invalidator.Invalidate(ctx, nodeID); err != nil {
		logger.Warn("invalidating cached matches for node %s: %v", nodeID, err)
	}
}

func (s *IngestService) invalidateOwner(ctx context.Context, owner domain.UserID) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateOwner(ctx, owner); err != nil {
		logger.Warn("invalidating cached matches of owner %d: %v", owner, err)
	}
}
