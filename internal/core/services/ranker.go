package services

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

// snippetLength bounds MatchedNode.Snippet.
const snippetLength = 240

// RankedChunk is an expansion with its fused score components.
type RankedChunk struct {
	Expansion    *domain.Expansion
	GraphScore   float64
	RecencyScore float64
	FinalScore   float64
	Signal       domain.Signal
}

// Ranker fuses similarity, graph and recency scores and groups chunks into
// profile-level matches.
type Ranker struct {
	settings domain.RetrievalSettings
	now      func() time.Time
}

// NewRanker creates a ranker. A nil now uses time.Now.
func NewRanker(s domain.RetrievalSettings, now func() time.Time) *Ranker {
	if now == nil {
		now = time.Now
	}
	return &Ranker{settings: s, now: now}
}

// Rank scores every expansion and orders them by final score descending,
// then CreatedAt descending, then chunk ID ascending.
func (r *Ranker) Rank(expansions map[domain.ChunkID]*domain.Expansion) []RankedChunk {
	now := r.now()
	ranked := make([]RankedChunk, 0, len(expansions))
	for _, x := range expansions {
		ranked = append(ranked, r.score(x, now))
	}

	slices.SortFunc(ranked, func(a, b RankedChunk) int {
		if c := cmp.Compare(b.FinalScore, a.FinalScore); c != 0 {
			return c
		}
		if c := b.Expansion.Chunk.CreatedAt.Compare(a.Expansion.Chunk.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Expansion.Chunk.ID, b.Expansion.Chunk.ID)
	})
	return ranked
}

// Recency returns exp(-ageDays / halfLifeDays). Future timestamps count as age 0.
func (r *Ranker) Recency(createdAt, now time.Time) float64 {
	ageDays := max(0, now.Sub(createdAt).Hours()/24)
	return math.Exp(-ageDays / r.settings.RecencyHalfLifeDays)
}

func (r *Ranker) score(x *domain.Expansion, now time.Time) RankedChunk {
	s := r.settings
	graph := x.GraphAwareScore()
	recency := r.Recency(x.Chunk.CreatedAt, now)

	sim := s.SimilarityWeight * x.DirectSimilarity
	gr := s.GraphWeight * graph
	rec := s.RecencyWeight * recency

	// Ties favour similarity, then graph.
	signal := domain.SignalSimilarity
	top := sim
	if gr > top {
		signal, top = domain.SignalGraph, gr
	}
	if rec > top {
		signal = domain.SignalRecency
	}

	return RankedChunk{
		Expansion:    x,
		GraphScore:   graph,
		RecencyScore: recency,
		FinalScore:   sim + gr + rec,
		Signal:       signal,
	}
}

// Aggregate groups ranked chunks by owner. A profile's score is the maximum
// final score among its chunks; its matched nodes keep rank order and are
// capped (a non-positive cap keeps all). Profiles are ordered by score
// descending, then their best chunk's CreatedAt descending, then user ID
// ascending, and truncated to limit.
func (r *Ranker) Aggregate(ranked []RankedChunk, limit int) []domain.MatchResult {
	order := make([]domain.UserID, 0)
	byOwner := make(map[domain.UserID]*domain.MatchResult)

	for _, rc := range ranked {
		owner := rc.Expansion.Chunk.OwnerID
		m, ok := byOwner[owner]
		if !ok {
			m = &domain.MatchResult{UserID: owner, Score: rc.FinalScore}
			byOwner[owner] = m
			order = append(order, owner)
		}
		if r.settings.MatchedNodesCap <= 0 || len(m.MatchedNodes) < r.settings.MatchedNodesCap {
			m.MatchedNodes = append(m.MatchedNodes, matchedNode(rc))
		}
	}

	results := make([]domain.MatchResult, 0, len(order))
	for _, owner := range order {
		m := byOwner[owner]
		m.WhyMatched = whyMatched(m.MatchedNodes)
		results = append(results, *m)
	}

	sortMatches(results)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func matchedNode(rc RankedChunk) domain.MatchedNode {
	c := rc.Expansion.Chunk
	return domain.MatchedNode{
		ChunkID:          c.ID,
		NodeID:           c.NodeID,
		EntityType:       c.EntityType,
		Snippet:          c.Snippet(snippetLength),
		Score:            rc.FinalScore,
		DirectSimilarity: rc.Expansion.DirectSimilarity,
		GraphScore:       rc.GraphScore,
		RecencyScore:     rc.RecencyScore,
		Signal:           rc.Signal,
		WhyMatched:       rc.Signal.WhyMatched(),
		CreatedAt:        c.CreatedAt,
	}
}

// whyMatched lists the distinct reasons of the nodes, in node order.
func whyMatched(nodes []domain.MatchedNode) []string {
	reasons := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if !slices.Contains(reasons, n.WhyMatched) {
			reasons = append(reasons, n.WhyMatched)
		}
	}
	return reasons
}

// sortMatches orders profiles by score descending, best node CreatedAt
// descending, then user ID ascending. Matched nodes must already be in rank order.
func sortMatches(matches []domain.MatchResult) {
	slices.SortStableFunc(matches, func(a, b domain.MatchResult) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := bestCreatedAt(b).Compare(bestCreatedAt(a)); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
}

func bestCreatedAt(m domain.MatchResult) time.Time {
	if len(m.MatchedNodes) == 0 {
		return time.Time{}
	}
	return m.MatchedNodes[0].CreatedAt
}
