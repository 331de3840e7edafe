package mcp

import (
	"context"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driving"
)

type mockSearchService struct {
	resp *domain.SearchResponse
	err  error
	last domain.SearchRequest
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	if m.resp == nil {
		return &domain.SearchResponse{}, nil
	}
	return m.resp, nil
}

type mockExperienceService struct {
	matches *domain.ExperienceMatches
	err     error
	nodeID  string
	opts    domain.ExperienceMatchOptions
}

func (m *mockExperienceService) GetMatches(
	_ context.Context, nodeID string, opts domain.ExperienceMatchOptions,
) (*domain.ExperienceMatches, error) {
	m.nodeID, m.opts = nodeID, opts
	return m.matches, m.err
}

func (m *mockExperienceService) Invalidate(_ context.Context, _ string) error { return nil }

// mockIngestService only implements lookups; other calls panic on the nil embed.
type mockIngestService struct {
	driving.IngestService
	chunks map[domain.ChunkID]*domain.Chunk
}

func (m *mockIngestService) GetChunk(_ context.Context, id domain.ChunkID) (*domain.Chunk, error) {
	c, ok := m.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

type mockStatusService struct {
	status *driving.Status
	err    error
}

func (m *mockStatusService) Status(_ context.Context) (*driving.Status, error) {
	return m.status, m.err
}
