package domain

import (
	"strings"
	"time"
)

// Signal names the scoring component that dominated a chunk's final score.
type Signal string

// Scoring signals.
const (
	SignalSimilarity Signal = "similarity"
	SignalGraph      Signal = "graph"
	SignalRecency    Signal = "recency"
)

// WhyMatched returns the default human-readable reason for the signal.
// Enrichment collaborators may replace it.
func (s Signal) WhyMatched() string {
	switch s {
	case SignalSimilarity:
		return "Similar experience"
	case SignalGraph:
		return "Similar skills and overlapping timeline"
	case SignalRecency:
		return "Recent relevant activity"
	default:
		return "Related experience"
	}
}

// MatchedNode is one contributing chunk inside a profile-level match.
type MatchedNode struct {
	ChunkID          ChunkID   `json:"chunkId"`
	NodeID           string    `json:"nodeId,omitempty"`
	EntityType       string    `json:"entityType"`
	Snippet          string    `json:"snippet"`
	Score            float64   `json:"score"`
	DirectSimilarity float64   `json:"directSimilarity"`
	GraphScore       float64   `json:"graphScore"`
	RecencyScore     float64   `json:"recencyScore"`
	Signal           Signal    `json:"signal"`
	WhyMatched       string    `json:"whyMatched"`
	CreatedAt        time.Time `json:"createdAt"`
}

// MatchResult aggregates one owner's contributing chunks.
// Score is the maximum final score among MatchedNodes.
type MatchResult struct {
	UserID       UserID        `json:"userId"`
	Score        float64       `json:"score"`
	MatchedNodes []MatchedNode `json:"matchedNodes"`
	WhyMatched   []string      `json:"whyMatched"`
}

// Clone returns a copy that shares no slices with m.
func (m MatchResult) Clone() MatchResult {
	out := m
	out.MatchedNodes = append([]MatchedNode(nil), m.MatchedNodes...)
	out.WhyMatched = append([]string(nil), m.WhyMatched...)
	return out
}

// ExperienceMatches is the cached payload served for a subject node.
type ExperienceMatches struct {
	NodeID              string        `json:"nodeId"`
	UserID              UserID        `json:"userId"`
	MatchCount          int           `json:"matchCount"`
	Matches             []MatchResult `json:"matches"`
	SearchQuery         string        `json:"searchQuery"`
	SimilarityThreshold float64       `json:"similarityThreshold"`
	LastUpdated         time.Time     `json:"lastUpdated"`

	// CacheTTL is expressed in seconds.
	CacheTTL int `json:"cacheTTL"`
}

// IsFresh reports whether now - LastUpdated < CacheTTL.
func (m *ExperienceMatches) IsFresh(now time.Time) bool {
	return now.Sub(m.LastUpdated) < time.Duration(m.CacheTTL)*time.Second
}

// References reports whether owner is the subject or one of the matched profiles.
func (m *ExperienceMatches) References(owner UserID) bool {
	if m.UserID == owner {
		return true
	}
	for _, r := range m.Matches {
		if r.UserID == owner {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the payload's match lists.
func (m *ExperienceMatches) Clone() *ExperienceMatches {
	out := *m
	out.Matches = make([]MatchResult, len(m.Matches))
	for i := range m.Matches {
		out.Matches[i] = m.Matches[i].Clone()
	}
	return &out
}

// ExperienceMatchOptions controls a single experience-match lookup.
type ExperienceMatchOptions struct {
	// RequestingUserID is checked against the permission evaluator.
	RequestingUserID UserID

	// ForceRefresh bypasses Fresh and Stale entries.
	ForceRefresh bool
}

// CacheKey identifies a cache entry: subject node plus normalised query.
type CacheKey struct {
	NodeID string
	Query  string
}

// NewCacheKey normalises the query (case and whitespace).
func NewCacheKey(nodeID, query string) CacheKey {
	return CacheKey{
		NodeID: nodeID,
		Query:  strings.Join(strings.Fields(strings.ToLower(query)), " "),
	}
}

// String returns the storage form of the key.
func (k CacheKey) String() string {
	return k.NodeID + "|" + k.Query
}

// CacheState is the lifecycle state of a cache entry.
type CacheState string

// Cache states.
const (
	CacheAbsent      CacheState = "absent"
	CacheFresh       CacheState = "fresh"
	CacheStale       CacheState = "stale"
	CacheRecomputing CacheState = "recomputing"
)

// CachePolicy decides what callers see while a key is recomputing.
type CachePolicy string

// Cache policies.
const (
	// CachePolicyServeStale returns the stale value and recomputes in the background.
	CachePolicyServeStale CachePolicy = "stale_while_revalidate"

	// CachePolicyBlock waits for the recomputation to finish.
	CachePolicyBlock CachePolicy = "block"
)

// IsValid returns true if the policy is recognised.
func (p CachePolicy) IsValid() bool {
	return p == CachePolicyServeStale || p == CachePolicyBlock
}

// String returns the string representation.
func (p CachePolicy) String() string {
	return string(p)
}
