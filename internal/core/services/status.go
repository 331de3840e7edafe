package services

import (
	"context"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driven"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driving"
)

// Ensure StatusService implements the interface.
var _ driving.StatusService = (*StatusService)(nil)

// pinger is implemented by stores with a reachability check.
type pinger interface {
	Ping(ctx context.Context) error
}

// StatusService reports store contents and collaborator health.
type StatusService struct {
	chunks           driven.ChunkStore
	db               pinger
	embeddingService driven.EmbeddingService
}

// NewStatusService creates a status service. db and embeddingService may be nil.
func NewStatusService(chunks driven.ChunkStore, db pinger, embeddingService driven.EmbeddingService) *StatusService {
	return &StatusService{chunks: chunks, db: db, embeddingService: embeddingService}
}

// Status checks the store and the embedding service. The engine is healthy
// when the store answers; embedding problems are reported but not fatal.
func (s *StatusService) Status(ctx context.Context) (*driving.Status, error) {
	status := &driving.Status{Healthy: true, Embedding: "not configured"}

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			status.Healthy = false
			status.Errors = append(status.Errors, "store: "+err.Error())
		}
	}

	stats, err := s.chunks.Stats(ctx)
	if err != nil {
		status.Healthy = false
		status.Errors = append(status.Errors, "stats: "+err.Error())
	} else {
		status.Store = *stats
	}

	if s.embeddingService != nil {
		status.Embedding = s.embeddingService.ModelName()
		if err := s.embeddingService.Ping(ctx); err != nil {
			status.Errors = append(status.Errors, "embedding: "+err.Error())
		}
	}

	return status, nil
}
