package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

const testDims = 3

func putChunk(t *testing.T, s *Store, owner domain.UserID, node string, emb ...float32) domain.ChunkID {
	t.Helper()
	id, err := s.Put(context.Background(), &domain.Chunk{
		OwnerID:    owner,
		NodeID:     node,
		Text:       "chunk text",
		Embedding:  emb,
		EntityType: "job",
	})
	require.NoError(t, err)
	return id
}

func TestNewStore(t *testing.T) {
	store := NewStore(testDims)
	require.NotNil(t, store)
	assert.NotNil(t, store.chunks)
	assert.NotNil(t, store.edges)
}

func TestStore_Put_AssignsMonotonicIDs(t *testing.T) {
	store := NewStore(testDims)

	a := putChunk(t, store, 1, "n1", 1, 0, 0)
	b := putChunk(t, store, 1, "n1", 0, 1, 0)

	assert.Less(t, a, b)

	got, err := store.Get(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTenant, got.TenantID)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
}

func TestStore_Put_NormalizesEmbedding(t *testing.T) {
	store := NewStore(2)
	id, err := store.Put(context.Background(), &domain.Chunk{OwnerID: 1, Embedding: []float32{3, 4}, EntityType: "job"})
	require.NoError(t, err)

	got, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, got.Embedding[0], 1e-6)
	assert.InDelta(t, 0.8, got.Embedding[1], 1e-6)
}

func TestStore_Put_InvalidDimension(t *testing.T) {
	store := NewStore(testDims)

	_, err := store.Put(context.Background(), &domain.Chunk{OwnerID: 1, Embedding: []float32{1, 2}})
	assert.ErrorIs(t, err, domain.ErrInvalidEmbeddingDimension)

	_, err = store.Put(context.Background(), &domain.Chunk{OwnerID: 1, Embedding: []float32{0, 0, 0}})
	assert.ErrorIs(t, err, domain.ErrInvalidEmbeddingDimension)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Chunks)
}

func TestStore_Get_NotFound(t *testing.T) {
	store := NewStore(testDims)
	_, err := store.Get(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Get_ReturnsCopy(t *testing.T) {
	store := NewStore(testDims)
	id, err := store.Put(context.Background(), &domain.Chunk{
		OwnerID: 1, Embedding: []float32{1, 0, 0}, Meta: map[string]any{"k": "v"},
	})
	require.NoError(t, err)

	got, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	got.Meta["k"] = "changed"

	again, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "v", again.Meta["k"])
}

func TestStore_UpdateMeta(t *testing.T) {
	store := NewStore(testDims)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return base })
	id := putChunk(t, store, 1, "", 1, 0, 0)

	store.SetClock(func() time.Time { return base.Add(time.Hour) })
	require.NoError(t, store.UpdateMeta(context.Background(), id, map[string]any{"title": "Engineer"}))

	got, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Engineer", got.Meta["title"])
	assert.Equal(t, base, got.CreatedAt)
	assert.Equal(t, base.Add(time.Hour), got.UpdatedAt)

	assert.ErrorIs(t, store.UpdateMeta(context.Background(), 42, nil), domain.ErrNotFound)
}

func TestStore_QueryBySimilarity_OrderAndFilters(t *testing.T) {
	store := NewStore(testDims)
	ctx := context.Background()

	exact := putChunk(t, store, 1, "", 1, 0, 0)
	near := putChunk(t, store, 2, "", 1, 1, 0)
	far := putChunk(t, store, 3, "", 0, 0, 1)
	_, err := store.Put(ctx, &domain.Chunk{OwnerID: 4, Embedding: []float32{1, 0, 0}, TenantID: "other"})
	require.NoError(t, err)

	results, err := store.QueryBySimilarity(ctx, []float32{2, 0, 0}, domain.ChunkFilter{}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, exact, results[0].Chunk.ID)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
	assert.Equal(t, near, results[1].Chunk.ID)
	assert.Equal(t, far, results[2].Chunk.ID)

	excluded := domain.UserID(1)
	results, err = store.QueryBySimilarity(ctx, []float32{1, 0, 0}, domain.ChunkFilter{ExcludeOwnerID: &excluded}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, near, results[0].Chunk.ID)

	results, err = store.QueryBySimilarity(ctx, []float32{1, 0, 0}, domain.ChunkFilter{TenantID: "other"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.UserID(4), results[0].Chunk.OwnerID)
}

func TestStore_QueryBySimilarity_TiesByID(t *testing.T) {
	store := NewStore(testDims)
	first := putChunk(t, store, 1, "", 0, 1, 0)
	second := putChunk(t, store, 2, "", 0, 1, 0)

	results, err := store.QueryBySimilarity(context.Background(), []float32{0, 1, 0}, domain.ChunkFilter{}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, first, results[0].Chunk.ID)
	assert.Equal(t, second, results[1].Chunk.ID)
}

func TestStore_QueryBySimilarity_Since(t *testing.T) {
	store := NewStore(testDims)
	old := time.Now().Add(-48 * time.Hour)
	_, err := store.Put(context.Background(), &domain.Chunk{OwnerID: 1, Embedding: []float32{1, 0, 0}, CreatedAt: old})
	require.NoError(t, err)
	recent := putChunk(t, store, 2, "", 1, 0, 0)

	since := time.Now().Add(-time.Hour)
	results, err := store.QueryBySimilarity(context.Background(), []float32{1, 0, 0}, domain.ChunkFilter{Since: &since}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, recent, results[0].Chunk.ID)
}

func TestStore_QueryBySimilarity_BadQuery(t *testing.T) {
	store := NewStore(testDims)

	_, err := store.QueryBySimilarity(context.Background(), []float32{1}, domain.ChunkFilter{}, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidEmbeddingDimension)

	_, err = store.QueryBySimilarity(context.Background(), []float32{0, 0, 0}, domain.ChunkFilter{}, 5)
	assert.ErrorIs(t, err, domain.ErrEmptyQueryEmbedding)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.QueryBySimilarity(ctx, []float32{1, 0, 0}, domain.ChunkFilter{}, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_AddEdge_DanglingReference(t *testing.T) {
	store := NewStore(testDims)
	a := putChunk(t, store, 1, "", 1, 0, 0)

	_, err := store.AddEdge(context.Background(), &domain.Edge{SrcChunkID: a, DstChunkID: 999, RelType: domain.RelSemantic, Weight: 1})
	assert.ErrorIs(t, err, domain.ErrDanglingReference)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Edges)
}

func TestStore_Adjacent_RespectsDirection(t *testing.T) {
	store := NewStore(testDims)
	ctx := context.Background()
	a := putChunk(t, store, 1, "", 1, 0, 0)
	b := putChunk(t, store, 2, "", 0, 1, 0)
	c := putChunk(t, store, 3, "", 0, 0, 1)

	_, err := store.AddEdge(ctx, &domain.Edge{SrcChunkID: a, DstChunkID: b, RelType: domain.RelSimilarRole, Weight: 0.8, Directed: true})
	require.NoError(t, err)
	_, err = store.AddEdge(ctx, &domain.Edge{SrcChunkID: c, DstChunkID: a, RelType: domain.RelSameCompany, Weight: 0.5, Directed: false})
	require.NoError(t, err)

	adjA, err := store.Adjacent(ctx, a)
	require.NoError(t, err)
	require.Len(t, adjA, 2)
	assert.Equal(t, b, adjA[0].Neighbor.ID)
	assert.Equal(t, c, adjA[1].Neighbor.ID)

	adjB, err := store.Adjacent(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, adjB, "directed edge must not be followed backwards")

	adjC, err := store.Adjacent(ctx, c)
	require.NoError(t, err)
	require.Len(t, adjC, 1)
	assert.Equal(t, a, adjC[0].Neighbor.ID)
}

func TestStore_ParallelEdgesKept(t *testing.T) {
	store := NewStore(testDims)
	ctx := context.Background()
	a := putChunk(t, store, 1, "", 1, 0, 0)
	b := putChunk(t, store, 2, "", 0, 1, 0)

	e1, err := store.AddEdge(ctx, &domain.Edge{SrcChunkID: a, DstChunkID: b, RelType: domain.RelSameCompany, Weight: 1, Directed: true})
	require.NoError(t, err)
	e2, err := store.AddEdge(ctx, &domain.Edge{SrcChunkID: a, DstChunkID: b, RelType: domain.RelSimilarRole, Weight: 0.3, Directed: true})
	require.NoError(t, err)
	assert.NotEqual(t, e1, e2)

	adj, err := store.Adjacent(ctx, a)
	require.NoError(t, err)
	assert.Len(t, adj, 2)

	edge, err := store.GetEdge(ctx, e2)
	require.NoError(t, err)
	assert.Equal(t, domain.RelSimilarRole, edge.RelType)

	_, err = store.GetEdge(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_DeleteByOwner_Cascades(t *testing.T) {
	store := NewStore(testDims)
	ctx := context.Background()
	a := putChunk(t, store, 1, "n1", 1, 0, 0)
	b := putChunk(t, store, 2, "n2", 0, 1, 0)
	c := putChunk(t, store, 2, "n3", 0, 0, 1)

	_, err := store.AddEdge(ctx, &domain.Edge{SrcChunkID: a, DstChunkID: b, RelType: domain.RelSemantic, Weight: 1, Directed: true})
	require.NoError(t, err)
	_, err = store.AddEdge(ctx, &domain.Edge{SrcChunkID: c, DstChunkID: a, RelType: domain.RelSemantic, Weight: 1, Directed: false})
	require.NoError(t, err)

	n, err := store.DeleteByOwner(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	adj, err := store.Adjacent(ctx, a)
	require.NoError(t, err)
	assert.Empty(t, adj)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Chunks)
	assert.Zero(t, stats.Edges)
	assert.Equal(t, 1, stats.Owners)
}

func TestStore_DeleteByNode(t *testing.T) {
	store := NewStore(testDims)
	ctx := context.Background()
	putChunk(t, store, 1, "n1", 1, 0, 0)
	putChunk(t, store, 1, "n1", 0, 1, 0)
	keep := putChunk(t, store, 1, "n2", 0, 0, 1)

	n, err := store.DeleteByNode(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	remaining, err := store.ListByOwner(ctx, 1)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, keep, remaining[0].ID)

	_, err = store.DeleteByNode(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_ListByNode_OldestFirst(t *testing.T) {
	store := NewStore(testDims)
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	later, err := store.Put(ctx, &domain.Chunk{OwnerID: 1, NodeID: "n", Embedding: []float32{1, 0, 0}, CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	earlier, err := store.Put(ctx, &domain.Chunk{OwnerID: 1, NodeID: "n", Embedding: []float32{0, 1, 0}, CreatedAt: base})
	require.NoError(t, err)

	chunks, err := store.ListByNode(ctx, "n")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, earlier, chunks[0].ID)
	assert.Equal(t, later, chunks[1].ID)
}

func TestStore_Concurrency_PutAndQuery(t *testing.T) {
	store := NewStore(testDims)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = store.Put(ctx, &domain.Chunk{OwnerID: domain.UserID(i + 1), Embedding: []float32{1, float32(i), 0}})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = store.QueryBySimilarity(ctx, []float32{1, 0, 0}, domain.ChunkFilter{}, 5)
		}()
	}
	wg.Wait()

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, stats.Chunks)
}

func TestMatchCacheStore_Lifecycle(t *testing.T) {
	store := NewMatchCacheStore()
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	key := domain.NewCacheKey("node-1", "Go  Engineer")

	_, err := store.GetMatches(ctx, key)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	payload := &domain.ExperienceMatches{NodeID: "node-1", LastUpdated: now, CacheTTL: 60}
	require.NoError(t, store.SaveMatches(ctx, key, payload))

	got, err := store.GetMatches(ctx, domain.NewCacheKey("node-1", "go engineer"))
	require.NoError(t, err)
	assert.Equal(t, "node-1", got.NodeID)

	purged, err := store.PurgeExpired(ctx, now.Add(30*time.Second))
	require.NoError(t, err)
	assert.Zero(t, purged)

	purged, err = store.PurgeExpired(ctx, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	require.NoError(t, store.SaveMatches(ctx, key, payload))
	require.NoError(t, store.DeleteMatches(ctx, "node-1"))
	_, err = store.GetMatches(ctx, key)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMatchCacheStore_DeleteReferencing(t *testing.T) {
	store := NewMatchCacheStore()
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	matched := domain.NewCacheKey("node-1", "q")
	subject := domain.NewCacheKey("node-2", "q")
	other := domain.NewCacheKey("node-3", "q")
	require.NoError(t, store.SaveMatches(ctx, matched, &domain.ExperienceMatches{
		NodeID: "node-1", UserID: 1, Matches: []domain.MatchResult{{UserID: 5}}, LastUpdated: now, CacheTTL: 60,
	}))
	require.NoError(t, store.SaveMatches(ctx, subject, &domain.ExperienceMatches{
		NodeID: "node-2", UserID: 5, LastUpdated: now, CacheTTL: 60,
	}))
	require.NoError(t, store.SaveMatches(ctx, other, &domain.ExperienceMatches{
		NodeID: "node-3", UserID: 1, Matches: []domain.MatchResult{{UserID: 6}}, LastUpdated: now, CacheTTL: 60,
	}))

	require.NoError(t, store.DeleteReferencing(ctx, 5))

	_, err := store.GetMatches(ctx, matched)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.GetMatches(ctx, subject)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.GetMatches(ctx, other)
	assert.NoError(t, err)
}
