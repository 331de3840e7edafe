package domain

import (
	"fmt"
	"time"
)

// Search request limits.
const (
	// DefaultSearchLimit is used when a request carries no limit.
	DefaultSearchLimit = 20

	// MaxSearchLimit is the largest accepted limit.
	MaxSearchLimit = 100
)

// SearchRequest describes one retrieval. It is never persisted.
type SearchRequest struct {
	// Query is the free-text query. It is embedded when QueryEmbedding is empty.
	Query string

	// QueryEmbedding is the query vector.
	QueryEmbedding []float32

	// Limit is the maximum number of profiles returned (1..100).
	Limit int

	// TenantID restricts retrieval to one tenant.
	TenantID string

	// RequestingUserID is used for permission filtering, not scoring.
	RequestingUserID UserID

	// ExcludeUserID removes this user's chunks from seeds and expansion targets.
	ExcludeUserID *UserID

	// Since is a lower bound on seed CreatedAt.
	Since *time.Time

	// SimilarityThreshold is the minimum direct similarity of a seed (0..1).
	SimilarityThreshold *float64
}

// Normalize applies defaults and validates ranges.
func (r *SearchRequest) Normalize() error {
	if r.Limit == 0 {
		r.Limit = DefaultSearchLimit
	}
	if r.Limit < 1 || r.Limit > MaxSearchLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, MaxSearchLimit)
	}
	if t := r.SimilarityThreshold; t != nil && (*t < 0 || *t > 1) {
		return fmt.Errorf("%w: similarity threshold must be between 0 and 1", ErrInvalidInput)
	}
	r.TenantID = TenantOrDefault(r.TenantID)
	return nil
}

// Filter returns the chunk filter the request implies.
func (r *SearchRequest) Filter() ChunkFilter {
	return ChunkFilter{
		TenantID:       r.TenantID,
		ExcludeOwnerID: r.ExcludeUserID,
		Since:          r.Since,
	}
}

// Expansion is the graph-aware view of one chunk after expansion.
type Expansion struct {
	Chunk *Chunk

	// DirectSimilarity is the seed similarity, 0 for non-seeds.
	DirectSimilarity float64

	// BestSeedSim is the similarity of the seed whose path gives the best score.
	BestSeedSim float64

	// BestPathWeight is that path's cumulative weight in [0, 1]. Seeds have 1.
	BestPathWeight float64

	// Hops is the length of that path. Seeds have 0.
	Hops int

	// IsSeed marks chunks selected by direct similarity.
	IsSeed bool
}

// GraphAwareScore is BestSeedSim * BestPathWeight.
func (e *Expansion) GraphAwareScore() float64 {
	return e.BestSeedSim * e.BestPathWeight
}

// SearchResponse is returned by the search API.
type SearchResponse struct {
	Results      []MatchResult `json:"results"`
	TotalResults int           `json:"totalResults"`
	Query        string        `json:"query"`
}
