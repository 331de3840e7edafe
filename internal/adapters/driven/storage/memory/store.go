package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driven"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/vector"
)

// Ensure Store implements the interfaces.
var (
	_ driven.ChunkStore = (*Store)(nil)
	_ driven.EdgeStore  = (*Store)(nil)
)

// Store is an in-memory implementation of driven.ChunkStore and driven.EdgeStore.
// Chunks and edges share one lock so cascades and integrity checks are atomic.
type Store struct {
	mu         sync.RWMutex
	dimensions int
	now        func() time.Time

	chunks    map[domain.ChunkID]*domain.Chunk
	edges     map[domain.EdgeID]*domain.Edge
	outgoing  map[domain.ChunkID][]domain.EdgeID
	incoming  map[domain.ChunkID][]domain.EdgeID
	nextChunk domain.ChunkID
	nextEdge  domain.EdgeID
}

// NewStore creates a new in-memory store for vectors of the given dimension.
func NewStore(dimensions int) *Store {
	return &Store{
		dimensions: dimensions,
		now:        time.Now,
		chunks:     make(map[domain.ChunkID]*domain.Chunk),
		edges:      make(map[domain.EdgeID]*domain.Edge),
		outgoing:   make(map[domain.ChunkID][]domain.EdgeID),
		incoming:   make(map[domain.ChunkID][]domain.EdgeID),
	}
}

// SetClock replaces the time source. Used by tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Put stores a new chunk. A zero CreatedAt is set to the current time.
func (s *Store) Put(ctx context.Context, chunk *domain.Chunk) (domain.ChunkID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := domain.ValidateEmbedding(chunk.Embedding, s.dimensions); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextChunk++
	stored := cloneChunk(chunk)
	stored.ID = s.nextChunk
	stored.TenantID = chunk.Tenant()
	stored.Embedding = vector.Normalize(chunk.Embedding)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now()
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = stored.CreatedAt
	}
	s.chunks[stored.ID] = stored

	chunk.ID = stored.ID
	return stored.ID, nil
}

// Get retrieves a chunk by ID.
func (s *Store) Get(_ context.Context, id domain.ChunkID) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneChunk(c), nil
}

// UpdateMeta replaces a chunk's meta and bumps UpdatedAt.
func (s *Store) UpdateMeta(_ context.Context, id domain.ChunkID, meta map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chunks[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Meta = maps.Clone(meta)
	c.UpdatedAt = s.now()
	return nil
}

// QueryBySimilarity scans every chunk passing the filter.
func (s *Store) QueryBySimilarity(
	ctx context.Context, embedding []float32, filter domain.ChunkFilter, k int,
) ([]domain.ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(embedding) != s.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", domain.ErrInvalidEmbeddingDimension, len(embedding), s.dimensions)
	}
	query := vector.Normalize(embedding)
	if query == nil {
		return nil, domain.ErrEmptyQueryEmbedding
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	top := vector.NewTopK[*domain.Chunk](k)
	for _, c := range s.chunks {
		if !filter.Allows(c) {
			continue
		}
		top.Push(vector.ScoredItem[*domain.Chunk]{
			Item:  c,
			Score: vector.Dot(query, c.Embedding),
			Key:   int64(c.ID),
		})
	}

	items := top.Sorted()
	results := make([]domain.ScoredChunk, len(items))
	for i, item := range items {
		results[i] = domain.ScoredChunk{Chunk: cloneChunk(item.Item), Similarity: item.Score}
	}
	return results, nil
}

// ListByNode returns the chunks of a source entity, oldest first.
func (s *Store) ListByNode(_ context.Context, nodeID string) ([]*domain.Chunk, error) {
	return s.list(func(c *domain.Chunk) bool { return c.NodeID == nodeID }), nil
}

// ListByOwner returns an owner's chunks, oldest first.
func (s *Store) ListByOwner(_ context.Context, ownerID domain.UserID) ([]*domain.Chunk, error) {
	return s.list(func(c *domain.Chunk) bool { return c.OwnerID == ownerID }), nil
}

// DeleteByOwner removes an owner's chunks and their edges.
func (s *Store) DeleteByOwner(_ context.Context, ownerID domain.UserID) (int, error) {
	return s.deleteWhere(func(c *domain.Chunk) bool { return c.OwnerID == ownerID }), nil
}

// DeleteByNode removes a source entity's chunks and their edges.
func (s *Store) DeleteByNode(_ context.Context, nodeID string) (int, error) {
	if nodeID == "" {
		return 0, fmt.Errorf("%w: node id is required", domain.ErrInvalidInput)
	}
	return s.deleteWhere(func(c *domain.Chunk) bool { return c.NodeID == nodeID }), nil
}

// Stats returns content counts.
func (s *Store) Stats(_ context.Context) (*domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owners := make(map[domain.UserID]struct{})
	tenants := make(map[string]struct{})
	for _, c := range s.chunks {
		owners[c.OwnerID] = struct{}{}
		tenants[c.TenantID] = struct{}{}
	}
	return &domain.StoreStats{
		Chunks:  len(s.chunks),
		Edges:   len(s.edges),
		Owners:  len(owners),
		Tenants: len(tenants),
	}, nil
}

// AddEdge stores an edge between two existing chunks.
func (s *Store) AddEdge(ctx context.Context, edge *domain.Edge) (domain.EdgeID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range []domain.ChunkID{edge.SrcChunkID, edge.DstChunkID} {
		if _, ok := s.chunks[id]; !ok {
			return 0, fmt.Errorf("%w: chunk %d", domain.ErrDanglingReference, id)
		}
	}

	s.nextEdge++
	stored := *edge
	stored.ID = s.nextEdge
	stored.Meta = maps.Clone(edge.Meta)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now()
	}
	s.edges[stored.ID] = &stored
	s.outgoing[stored.SrcChunkID] = append(s.outgoing[stored.SrcChunkID], stored.ID)
	s.incoming[stored.DstChunkID] = append(s.incoming[stored.DstChunkID], stored.ID)

	edge.ID = stored.ID
	return stored.ID, nil
}

// GetEdge retrieves an edge by ID.
func (s *Store) GetEdge(_ context.Context, id domain.EdgeID) (*domain.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.edges[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *e
	out.Meta = maps.Clone(e.Meta)
	return &out, nil
}

// Adjacent returns outgoing edges plus incoming undirected edges, by edge ID.
func (s *Store) Adjacent(ctx context.Context, id domain.ChunkID) ([]domain.Adjacency, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var adj []domain.Adjacency
	for _, eid := range s.outgoing[id] {
		e := s.edges[eid]
		adj = append(adj, domain.Adjacency{Edge: cloneEdge(e), Neighbor: cloneChunk(s.chunks[e.DstChunkID])})
	}
	for _, eid := range s.incoming[id] {
		e := s.edges[eid]
		if e.Directed || e.SrcChunkID == e.DstChunkID {
			continue
		}
		adj = append(adj, domain.Adjacency{Edge: cloneEdge(e), Neighbor: cloneChunk(s.chunks[e.SrcChunkID])})
	}
	slices.SortStableFunc(adj, func(a, b domain.Adjacency) int {
		return cmp.Compare(a.Edge.ID, b.Edge.ID)
	})
	return adj, nil
}

func (s *Store) list(match func(*domain.Chunk) bool) []*domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Chunk
	for _, c := range s.chunks {
		if match(c) {
			out = append(out, cloneChunk(c))
		}
	}
	slices.SortFunc(out, func(a, b *domain.Chunk) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (s *Store) deleteWhere(match func(*domain.Chunk) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, c := range s.chunks {
		if !match(c) {
			continue
		}
		for _, eid := range slices.Concat(s.outgoing[id], s.incoming[id]) {
			s.removeEdgeLocked(eid)
		}
		delete(s.outgoing, id)
		delete(s.incoming, id)
		delete(s.chunks, id)
		deleted++
	}
	return deleted
}

func (s *Store) removeEdgeLocked(id domain.EdgeID) {
	e, ok := s.edges[id]
	if !ok {
		return
	}
	delete(s.edges, id)
	s.outgoing[e.SrcChunkID] = slices.DeleteFunc(s.outgoing[e.SrcChunkID], func(x domain.EdgeID) bool { return x == id })
	s.incoming[e.DstChunkID] = slices.DeleteFunc(s.incoming[e.DstChunkID], func(x domain.EdgeID) bool { return x == id })
}

func cloneChunk(c *domain.Chunk) *domain.Chunk {
	out := *c
	out.Meta = maps.Clone(c.Meta)
	return &out
}

func cloneEdge(e *domain.Edge) *domain.Edge {
	out := *e
	out.Meta = maps.Clone(e.Meta)
	return &out
}
