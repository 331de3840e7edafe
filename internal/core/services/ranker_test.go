package services

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

func fixedNow() time.Time { return testNow }

func expansion(id domain.ChunkID, owner domain.UserID, direct, seedSim, path float64, age time.Duration) *domain.Expansion {
	return &domain.Expansion{
		Chunk: &domain.Chunk{
			ID:         id,
			OwnerID:    owner,
			NodeID:     fmt.Sprintf("node-%d", id),
			Text:       "text",
			EntityType: "job",
			CreatedAt:  testNow.Add(-age),
		},
		DirectSimilarity: direct,
		BestSeedSim:      seedSim,
		BestPathWeight:   path,
		IsSeed:           direct > 0,
	}
}

func TestRanker_Recency(t *testing.T) {
	r := NewRanker(testSettings(), fixedNow)

	assert.InDelta(t, 1.0, r.Recency(testNow, testNow), 1e-12)
	assert.InDelta(t, math.Exp(-1), r.Recency(testNow.AddDate(0, 0, -90), testNow), 1e-9)
	assert.InDelta(t, 1.0, r.Recency(testNow.Add(48*time.Hour), testNow), 1e-12, "future timestamps count as age 0")
}

func TestRanker_FusesScores(t *testing.T) {
	r := NewRanker(testSettings(), fixedNow)

	ranked := r.Rank(map[domain.ChunkID]*domain.Expansion{
		1: expansion(1, 1, 0.9, 0.9, 1, 0),
		2: expansion(2, 2, 0, 0.9, 0.4, 0),
	})
	require.Len(t, ranked, 2)

	assert.Equal(t, domain.ChunkID(1), ranked[0].Expansion.Chunk.ID)
	assert.InDelta(t, 0.6*0.9+0.3*0.9+0.1, ranked[0].FinalScore, 1e-9)
	assert.Equal(t, domain.SignalSimilarity, ranked[0].Signal)

	assert.InDelta(t, 0.36, ranked[1].GraphScore, 1e-9)
	assert.InDelta(t, 0.3*0.36+0.1, ranked[1].FinalScore, 1e-9)
	assert.Equal(t, domain.SignalGraph, ranked[1].Signal)
}

func TestRanker_Signals(t *testing.T) {
	s := testSettings()
	s.SimilarityWeight, s.GraphWeight, s.RecencyWeight = 1, 1, 1
	r := NewRanker(s, fixedNow)

	tests := []struct {
		name string
		x    *domain.Expansion
		want domain.Signal
	}{
		{"tie favours similarity", expansion(1, 1, 0.5, 0.5, 1, 10000*24*time.Hour), domain.SignalSimilarity},
		{"graph dominates", expansion(2, 1, 0, 0.8, 1, 10000*24*time.Hour), domain.SignalGraph},
		{"recency dominates", expansion(3, 1, 0, 0.2, 0.5, 0), domain.SignalRecency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.score(tt.x, testNow).Signal)
		})
	}
}

func TestRanker_RankTieBreaks(t *testing.T) {
	// Same final score: newer first, then lower ID.
	older := expansion(1, 1, 0.5, 0.5, 1, 0)
	newer := expansion(2, 2, 0.5, 0.5, 1, 0)
	same := expansion(3, 3, 0.5, 0.5, 1, 0)
	older.Chunk.CreatedAt = testNow.Add(-time.Hour)
	newer.Chunk.CreatedAt = testNow.Add(-time.Minute)
	same.Chunk.CreatedAt = testNow.Add(-time.Minute)

	s := testSettings()
	s.RecencyWeight = 0
	r := NewRanker(s, fixedNow)

	ranked := r.Rank(map[domain.ChunkID]*domain.Expansion{1: older, 2: newer, 3: same})
	ids := []domain.ChunkID{ranked[0].Expansion.Chunk.ID, ranked[1].Expansion.Chunk.ID, ranked[2].Expansion.Chunk.ID}
	assert.Equal(t, []domain.ChunkID{2, 3, 1}, ids)
}

func TestRanker_Aggregate(t *testing.T) {
	s := testSettings()
	s.MatchedNodesCap = 2
	r := NewRanker(s, fixedNow)

	ranked := []RankedChunk{
		{Expansion: expansion(1, 10, 0.9, 0.9, 1, 0), FinalScore: 0.75, Signal: domain.SignalSimilarity},
		{Expansion: expansion(2, 20, 0.8, 0.8, 1, 0), FinalScore: 0.7, Signal: domain.SignalSimilarity},
		{Expansion: expansion(3, 10, 0, 0.5, 0.5, 0), FinalScore: 0.4, Signal: domain.SignalGraph},
		{Expansion: expansion(4, 10, 0, 0.5, 0.2, 0), FinalScore: 0.2, Signal: domain.SignalGraph},
	}

	results := r.Aggregate(ranked, 10)
	require.Len(t, results, 2)

	assert.Equal(t, domain.UserID(10), results[0].UserID)
	assert.Equal(t, 0.75, results[0].Score)
	require.Len(t, results[0].MatchedNodes, 2, "matched nodes are capped")
	assert.Equal(t, domain.ChunkID(1), results[0].MatchedNodes[0].ChunkID)
	assert.Equal(t, domain.ChunkID(3), results[0].MatchedNodes[1].ChunkID)
	assert.Equal(t, []string{
		domain.SignalSimilarity.WhyMatched(),
		domain.SignalGraph.WhyMatched(),
	}, results[0].WhyMatched)

	assert.Equal(t, domain.UserID(20), results[1].UserID)

	limited := r.Aggregate(ranked, 1)
	require.Len(t, limited, 1)
	assert.Equal(t, domain.UserID(10), limited[0].UserID)
}

func TestRanker_Aggregate_TieBreaks(t *testing.T) {
	r := NewRanker(testSettings(), fixedNow)

	a := expansion(1, 30, 0.5, 0.5, 1, time.Hour)
	b := expansion(2, 20, 0.5, 0.5, 1, time.Minute)
	c := expansion(3, 10, 0.5, 0.5, 1, time.Hour)

	results := r.Aggregate([]RankedChunk{
		{Expansion: a, FinalScore: 0.5},
		{Expansion: b, FinalScore: 0.5},
		{Expansion: c, FinalScore: 0.5},
	}, 10)

	require.Len(t, results, 3)
	assert.Equal(t, domain.UserID(20), results[0].UserID, "newest best node first")
	assert.Equal(t, domain.UserID(10), results[1].UserID, "then lowest user id")
	assert.Equal(t, domain.UserID(30), results[2].UserID)
}

func TestMatchedNode_Snippet(t *testing.T) {
	x := expansion(1, 1, 0.9, 0.9, 1, 0)
	x.Chunk.Text = strings.Repeat("é", 500)

	node := matchedNode(RankedChunk{Expansion: x, FinalScore: 0.9, Signal: domain.SignalSimilarity})
	assert.Len(t, []rune(node.Snippet), snippetLength+1)
	assert.Equal(t, domain.SignalSimilarity.WhyMatched(), node.WhyMatched)
}
