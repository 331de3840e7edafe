package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

func scored(c *domain.Chunk, sim float64) domain.ScoredChunk {
	return domain.ScoredChunk{Chunk: c, Similarity: sim}
}

func TestGraphExpander_PropagatesThroughEdge(t *testing.T) {
	store := newTestStore()
	a := addChunk(t, store, chunkSpec{owner: 1, sim: 0.9})
	b := addChunk(t, store, chunkSpec{owner: 2, sim: 0})
	addEdge(t, store, a.ID, b.ID, 0.8, true)

	got, err := NewGraphExpander(NewRelationshipGraph(store), testSettings()).
		Expand(context.Background(), []domain.ScoredChunk{scored(a, 0.9)}, ExpandOptions{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	seedX := got[a.ID]
	assert.True(t, seedX.IsSeed)
	assert.Equal(t, 1.0, seedX.BestPathWeight)
	assert.InDelta(t, 0.9, seedX.GraphAwareScore(), 1e-9)

	reached := got[b.ID]
	assert.False(t, reached.IsSeed)
	assert.Zero(t, reached.DirectSimilarity)
	assert.InDelta(t, 0.4, reached.BestPathWeight, 1e-9)
	assert.InDelta(t, 0.9, reached.BestSeedSim, 1e-9)
	assert.InDelta(t, 0.36, reached.GraphAwareScore(), 1e-9)
	assert.Equal(t, 1, reached.Hops)
}

func TestGraphExpander_ExcludedOwnerNeverEmitted(t *testing.T) {
	store := newTestStore()
	a := addChunk(t, store, chunkSpec{owner: 1, sim: 0.9})
	b := addChunk(t, store, chunkSpec{owner: 2, sim: 0})
	c := addChunk(t, store, chunkSpec{owner: 3, sim: 0})
	addEdge(t, store, a.ID, b.ID, 0.8, true)
	addEdge(t, store, b.ID, c.ID, 1, true)

	exclude := domain.UserID(2)
	got, err := NewGraphExpander(NewRelationshipGraph(store), testSettings()).
		Expand(context.Background(), []domain.ScoredChunk{scored(a, 0.9)}, ExpandOptions{ExcludeUserID: &exclude})
	require.NoError(t, err)

	assert.NotContains(t, got, b.ID)
	// Traversal continues through the excluded chunk.
	require.Contains(t, got, c.ID)
	assert.InDelta(t, 0.2, got[c.ID].BestPathWeight, 1e-9)
}

func TestGraphExpander_OtherTenantNotEmitted(t *testing.T) {
	store := newTestStore()
	a := addChunk(t, store, chunkSpec{owner: 1, sim: 0.9})
	b := addChunk(t, store, chunkSpec{owner: 2, sim: 0, tenant: "acme"})
	addEdge(t, store, a.ID, b.ID, 1, true)

	got, err := NewGraphExpander(NewRelationshipGraph(store), testSettings()).
		Expand(context.Background(), []domain.ScoredChunk{scored(a, 0.9)}, ExpandOptions{TenantID: domain.DefaultTenant})
	require.NoError(t, err)
	assert.NotContains(t, got, b.ID)
}

func TestGraphExpander_BestSeedWins(t *testing.T) {
	store := newTestStore()
	s1 := addChunk(t, store, chunkSpec{owner: 1, sim: 0.9})
	s2 := addChunk(t, store, chunkSpec{owner: 2, sim: 0.5})
	target := addChunk(t, store, chunkSpec{owner: 3, sim: 0})
	addEdge(t, store, s1.ID, target.ID, 1, true) // 0.9 * 0.5 = 0.45
	addEdge(t, store, s2.ID, target.ID, 2, true) // 0.5 * clamp(1.0) = 0.5

	for _, workers := range []int{1, 4} {
		s := testSettings()
		s.ExpansionWorkers = workers

		got, err := NewGraphExpander(NewRelationshipGraph(store), s).Expand(context.Background(),
			[]domain.ScoredChunk{scored(s1, 0.9), scored(s2, 0.5)}, ExpandOptions{})
		require.NoError(t, err)

		x := got[target.ID]
		require.NotNil(t, x)
		assert.InDelta(t, 0.5, x.BestSeedSim, 1e-9)
		assert.InDelta(t, 1.0, x.BestPathWeight, 1e-9)
		assert.InDelta(t, 0.5, x.GraphAwareScore(), 1e-9)
	}
}

func TestGraphExpander_SeedKeepsDirectScore(t *testing.T) {
	store := newTestStore()
	s1 := addChunk(t, store, chunkSpec{owner: 1, sim: 0.9})
	s2 := addChunk(t, store, chunkSpec{owner: 2, sim: 0.3})
	addEdge(t, store, s1.ID, s2.ID, 2, true)

	got, err := NewGraphExpander(NewRelationshipGraph(store), testSettings()).Expand(context.Background(),
		[]domain.ScoredChunk{scored(s1, 0.9), scored(s2, 0.3)}, ExpandOptions{})
	require.NoError(t, err)

	for id, sim := range map[domain.ChunkID]float64{s1.ID: 0.9, s2.ID: 0.3} {
		assert.True(t, got[id].IsSeed)
		assert.InDelta(t, sim, got[id].GraphAwareScore(), 1e-9)
		assert.InDelta(t, sim, got[id].DirectSimilarity, 1e-9)
	}
}

func TestGraphExpander_ZeroDepthReturnsSeeds(t *testing.T) {
	store := newTestStore()
	a := addChunk(t, store, chunkSpec{owner: 1, sim: 0.9})
	b := addChunk(t, store, chunkSpec{owner: 2, sim: 0})
	addEdge(t, store, a.ID, b.ID, 1, true)

	s := testSettings()
	s.MaxDepth = 0
	got, err := NewGraphExpander(NewRelationshipGraph(store), s).
		Expand(context.Background(), []domain.ScoredChunk{scored(a, 0.9)}, ExpandOptions{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestGraphExpander_NoSeeds(t *testing.T) {
	got, err := NewGraphExpander(NewRelationshipGraph(newTestStore()), testSettings()).
		Expand(context.Background(), nil, ExpandOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGraphExpander_LookupError(t *testing.T) {
	wantErr := errors.New("adjacency unavailable")
	g := &RelationshipGraph{source: &stubAdjacency{err: wantErr}}

	_, err := NewGraphExpander(g, testSettings()).Expand(context.Background(),
		[]domain.ScoredChunk{scored(&domain.Chunk{ID: 1, OwnerID: 1}, 0.9)}, ExpandOptions{})
	assert.ErrorIs(t, err, wantErr)
}

func TestEligible(t *testing.T) {
	exclude := domain.UserID(7)
	opts := ExpandOptions{ExcludeUserID: &exclude, TenantID: "acme"}

	assert.True(t, eligible(&domain.Chunk{OwnerID: 1, TenantID: "acme"}, opts))
	assert.False(t, eligible(&domain.Chunk{OwnerID: 7, TenantID: "acme"}, opts))
	assert.False(t, eligible(&domain.Chunk{OwnerID: 1}, opts))
	assert.True(t, eligible(&domain.Chunk{OwnerID: 7}, ExpandOptions{}))
}

type randomEdge struct {
	src, dst int
	weight   float64
	directed bool
}

type randomGraph struct {
	chunks int
	seeds  []float64
	edges  []randomEdge
	depth  int
}

func newRandomGraph(rng *rand.Rand) randomGraph {
	g := randomGraph{chunks: 4 + rng.IntN(7), depth: 1 + rng.IntN(3)}
	for range 1 + rng.IntN(2) {
		g.seeds = append(g.seeds, 0.1+0.9*rng.Float64())
	}
	for range 3 + rng.IntN(15) {
		src, dst := rng.IntN(g.chunks), rng.IntN(g.chunks)
		if src == dst {
			continue
		}
		g.edges = append(g.edges, randomEdge{
			src:      src,
			dst:      dst,
			weight:   2.5 * rng.Float64(),
			directed: rng.IntN(2) == 0,
		})
	}
	return g
}

// expand stores g, with edge bump raised by delta, and expands from its seeds.
func (g randomGraph) expand(t *testing.T, bump int, delta float64) map[domain.ChunkID]*domain.Expansion {
	t.Helper()
	store := newTestStore()
	chunks := make([]*domain.Chunk, g.chunks)
	for i := range chunks {
		chunks[i] = addChunk(t, store, chunkSpec{owner: domain.UserID(i + 1), sim: 0.5})
	}
	for i, e := range g.edges {
		w := e.weight
		if i == bump {
			w += delta
		}
		addEdge(t, store, chunks[e.src].ID, chunks[e.dst].ID, w, e.directed)
	}

	seeds := make([]domain.ScoredChunk, len(g.seeds))
	for i, sim := range g.seeds {
		seeds[i] = scored(chunks[i], sim)
	}

	settings := testSettings()
	settings.MaxDepth = g.depth
	got, err := NewGraphExpander(NewRelationshipGraph(store), settings).
		Expand(context.Background(), seeds, ExpandOptions{})
	require.NoError(t, err)
	return got
}

func TestGraphExpander_RaisingEdgeWeightNeverLowersScores(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for round := range 200 {
		g := newRandomGraph(rng)
		if len(g.edges) == 0 {
			continue
		}
		bump := rng.IntN(len(g.edges))
		delta := 0.05 + rng.Float64()

		before := g.expand(t, -1, 0)
		after := g.expand(t, bump, delta)

		for id, x := range before {
			raised, ok := after[id]
			require.True(t, ok, "round %d: chunk %d no longer reached", round, id)
			assert.GreaterOrEqual(t, raised.GraphAwareScore(), x.GraphAwareScore()-1e-12,
				"round %d: chunk %d after raising edge %d by %.2f", round, id, bump, delta)
		}
	}
}
