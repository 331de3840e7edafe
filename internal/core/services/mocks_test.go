package services

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driven/storage/memory"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

// --- Fixtures ---

const testDims = 3

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// unit returns a unit vector whose cosine similarity to queryVec is sim.
func unit(sim float64) []float32 {
	return []float32{float32(sim), float32(math.Sqrt(1 - sim*sim)), 0}
}

// queryVec is the query embedding used across tests.
var queryVec = []float32{1, 0, 0}

func testSettings() domain.RetrievalSettings {
	s := domain.DefaultAppSettings().Retrieval
	s.Dimensions = testDims
	return s
}

func newTestStore() *memory.Store {
	store := memory.NewStore(testDims)
	store.SetClock(func() time.Time { return testNow })
	return store
}

type chunkSpec struct {
	owner  domain.UserID
	node   string
	sim    float64
	tenant string
	text   string
	age    time.Duration
}

func addChunk(t *testing.T, store *memory.Store, c chunkSpec) *domain.Chunk {
	t.Helper()
	text := c.text
	if text == "" {
		text = "chunk for " + c.node
	}
	chunk := &domain.Chunk{
		OwnerID:    c.owner,
		NodeID:     c.node,
		Text:       text,
		Embedding:  unit(c.sim),
		EntityType: "job",
		TenantID:   c.tenant,
		CreatedAt:  testNow.Add(-c.age),
	}
	_, err := store.Put(context.Background(), chunk)
	require.NoError(t, err)
	stored, err := store.Get(context.Background(), chunk.ID)
	require.NoError(t, err)
	return stored
}

func addEdge(t *testing.T, store *memory.Store, src, dst domain.ChunkID, weight float64, directed bool) {
	t.Helper()
	_, err := store.AddEdge(context.Background(), &domain.Edge{
		SrcChunkID: src,
		DstChunkID: dst,
		RelType:    domain.RelSimilarRole,
		Weight:     weight,
		Directed:   directed,
	})
	require.NoError(t, err)
}

// fakeClock is a settable time source safe for concurrent use.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testNow}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding []float32
	err       error
	pingErr   error
	calls     atomic.Int32
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int            { return testDims }
func (m *mockEmbeddingService) ModelName() string          { return "mock-embed" }
func (m *mockEmbeddingService) Ping(context.Context) error { return m.pingErr }
func (m *mockEmbeddingService) Close() error               { return nil }

// mockPermissionEvaluator denies the listed nodes and counts calls.
type mockPermissionEvaluator struct {
	mu     sync.Mutex
	denied map[string]bool
	errs   map[string]error
	calls  int
}

func (m *mockPermissionEvaluator) CanView(_ context.Context, _ domain.UserID, nodeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.errs[nodeID]; err != nil {
		return false, err
	}
	return !m.denied[nodeID], nil
}

// requesterEvaluator hides nodes from everyone but the listed requesters.
type requesterEvaluator struct {
	private map[string]domain.UserID
}

func (e requesterEvaluator) CanView(_ context.Context, requester domain.UserID, nodeID string) (bool, error) {
	owner, ok := e.private[nodeID]
	return !ok || owner == requester, nil
}

// mockInsightProvider rewrites reasons or returns a canned result.
type mockInsightProvider struct {
	result []domain.MatchResult
	err    error
}

func (m *mockInsightProvider) Enrich(_ context.Context, _ string, matches []domain.MatchResult) ([]domain.MatchResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	out := make([]domain.MatchResult, len(matches))
	for i, match := range matches {
		out[i] = match.Clone()
		out[i].WhyMatched = []string{"enriched"}
	}
	return out, nil
}

// stubAdjacency serves a fixed adjacency list per chunk and counts lookups.
type stubAdjacency struct {
	adj   map[domain.ChunkID][]domain.Adjacency
	err   error
	calls atomic.Int32
}

func (s *stubAdjacency) Adjacent(_ context.Context, id domain.ChunkID) ([]domain.Adjacency, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.adj[id], nil
}

// slowEdgeStore wraps a store and blocks adjacency lookups until ctx is done.
type slowEdgeStore struct {
	*memory.Store
}

func (s slowEdgeStore) Adjacent(ctx context.Context, _ domain.ChunkID) ([]domain.Adjacency, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// recordingInvalidator records invalidated nodes and owners.
type recordingInvalidator struct {
	mu     sync.Mutex
	nodes  []string
	owners []domain.UserID
}

func (r *recordingInvalidator) Invalidate(_ context.Context, nodeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes = append(r.nodes, nodeID)
	return nil
}

func (r *recordingInvalidator) InvalidateOwner(_ context.Context, owner domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners = append(r.owners, owner)
	return nil
}

func (r *recordingInvalidator) Owners() []domain.UserID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.UserID(nil), r.owners...)
}

func (r *recordingInvalidator) Nodes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.nodes...)
}
