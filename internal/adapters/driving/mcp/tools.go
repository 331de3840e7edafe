package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query               string    `json:"query,omitempty" jsonschema:"free-text description of the experience to find"`
	Embedding           []float32 `json:"embedding,omitempty" jsonschema:"query vector; used instead of query when set"`
	Limit               int       `json:"limit,omitempty" jsonschema:"maximum number of profiles (default 20, max 100)"`
	TenantID            string    `json:"tenant_id,omitempty" jsonschema:"tenant to search (default tenant when empty)"`
	RequestingUserID    int64     `json:"requesting_user_id,omitempty" jsonschema:"user the results are filtered for"`
	ExcludeUserID       int64     `json:"exclude_user_id,omitempty" jsonschema:"profile to leave out of the results"`
	SinceDays           int       `json:"since_days,omitempty" jsonschema:"only consider chunks created in the last N days"`
	SimilarityThreshold float64   `json:"similarity_threshold,omitempty" jsonschema:"minimum cosine similarity for seed chunks"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []MatchOutput `json:"results"`
	Count   int           `json:"count"`
}

// MatchOutput is one ranked profile.
type MatchOutput struct {
	UserID       int64               `json:"user_id"`
	Score        float64             `json:"score"`
	WhyMatched   []string            `json:"why_matched"`
	MatchedNodes []MatchedNodeOutput `json:"matched_nodes"`
}

// MatchedNodeOutput is one chunk that contributed to a profile's score.
type MatchedNodeOutput struct {
	ChunkID    int64   `json:"chunk_id"`
	NodeID     string  `json:"node_id,omitempty"`
	EntityType string  `json:"entity_type"`
	Snippet    string  `json:"snippet"`
	Score      float64 `json:"score"`
	Signal     string  `json:"signal"`
	WhyMatched string  `json:"why_matched"`
	CreatedAt  string  `json:"created_at"`
}

// ExperienceMatchesInput is the input schema for the experience_matches tool.
type ExperienceMatchesInput struct {
	NodeID           string `json:"node_id" jsonschema:"subject node whose experience is matched"`
	RequestingUserID int64  `json:"requesting_user_id,omitempty" jsonschema:"user the matches are filtered for"`
	ForceRefresh     bool   `json:"force_refresh,omitempty" jsonschema:"recompute even when a cached result is fresh"`
}

// ExperienceMatchesOutput is the output schema for the experience_matches tool.
type ExperienceMatchesOutput struct {
	NodeID      string        `json:"node_id"`
	UserID      int64         `json:"user_id"`
	MatchCount  int           `json:"match_count"`
	Matches     []MatchOutput `json:"matches"`
	SearchQuery string        `json:"search_query"`
	LastUpdated string        `json:"last_updated"`
	CacheTTL    int           `json:"cache_ttl"`
}

// GetChunkInput is the input schema for the get_chunk tool.
type GetChunkInput struct {
	ID int64 `json:"id" jsonschema:"chunk id"`
}

// ChunkOutput describes a stored chunk without its vector.
type ChunkOutput struct {
	ID         int64          `json:"id"`
	OwnerID    int64          `json:"owner_id"`
	NodeID     string         `json:"node_id,omitempty"`
	EntityType string         `json:"entity_type"`
	Text       string         `json:"text"`
	TenantID   string         `json:"tenant_id"`
	Meta       map[string]any `json:"meta,omitempty"`
	CreatedAt  string         `json:"created_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find profiles whose experience matches a query, ranked by similarity, graph proximity and recency",
	}, s.handleSearch)

	if s.ports.Experience != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "experience_matches",
			Description: "Get the profiles whose experience matches a subject node",
		}, s.handleExperienceMatches)
	}

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "get_chunk",
			Description: "Get a stored chunk by id",
		}, s.handleGetChunk)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	resp, err := s.ports.Search.Search(ctx, input.request(time.Now()))
	if err != nil {
		return nil, SearchOutput{}, err
	}

	return nil, SearchOutput{
		Results: matchOutputs(resp.Results),
		Count:   len(resp.Results),
	}, nil
}

func (in SearchInput) request(now time.Time) domain.SearchRequest {
	req := domain.SearchRequest{
		Query:            in.Query,
		QueryEmbedding:   in.Embedding,
		Limit:            in.Limit,
		TenantID:         in.TenantID,
		RequestingUserID: domain.UserID(in.RequestingUserID),
	}
	if in.ExcludeUserID > 0 {
		exclude := domain.UserID(in.ExcludeUserID)
		req.ExcludeUserID = &exclude
	}
	if in.SinceDays > 0 {
		since := now.AddDate(0, 0, -in.SinceDays)
		req.Since = &since
	}
	if in.SimilarityThreshold > 0 {
		threshold := in.SimilarityThreshold
		req.SimilarityThreshold = &threshold
	}
	return req
}

// handleExperienceMatches handles the experience_matches tool invocation.
func (s *Server) handleExperienceMatches(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExperienceMatchesInput,
) (*mcp.CallToolResult, ExperienceMatchesOutput, error) {
	if s.ports.Experience == nil {
		return nil, ExperienceMatchesOutput{}, errNotConfigured
	}

	m, err := s.ports.Experience.GetMatches(ctx, input.NodeID, domain.ExperienceMatchOptions{
		RequestingUserID: domain.UserID(input.RequestingUserID),
		ForceRefresh:     input.ForceRefresh,
	})
	if err != nil {
		return nil, ExperienceMatchesOutput{}, err
	}

	return nil, ExperienceMatchesOutput{
		NodeID:      m.NodeID,
		UserID:      int64(m.UserID),
		MatchCount:  m.MatchCount,
		Matches:     matchOutputs(m.Matches),
		SearchQuery: m.SearchQuery,
		LastUpdated: m.LastUpdated.UTC().Format(time.RFC3339),
		CacheTTL:    m.CacheTTL,
	}, nil
}

// handleGetChunk handles the get_chunk tool invocation.
func (s *Server) handleGetChunk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetChunkInput,
) (*mcp.CallToolResult, ChunkOutput, error) {
	if s.ports.Ingest == nil {
		return nil, ChunkOutput{}, errNotConfigured
	}

	chunk, err := s.ports.Ingest.GetChunk(ctx, domain.ChunkID(input.ID))
	if err != nil {
		return nil, ChunkOutput{}, err
	}
	return nil, chunkOutput(chunk), nil
}

func matchOutputs(results []domain.MatchResult) []MatchOutput {
	out := make([]MatchOutput, len(results))
	for i, r := range results {
		nodes := make([]MatchedNodeOutput, len(r.MatchedNodes))
		for j, n := range r.MatchedNodes {
			nodes[j] = MatchedNodeOutput{
				ChunkID:    int64(n.ChunkID),
				NodeID:     n.NodeID,
				EntityType: n.EntityType,
				Snippet:    n.Snippet,
				Score:      n.Score,
				Signal:     string(n.Signal),
				WhyMatched: n.WhyMatched,
				CreatedAt:  n.CreatedAt.UTC().Format(time.RFC3339),
			}
		}
		out[i] = MatchOutput{
			UserID:       int64(r.UserID),
			Score:        r.Score,
			WhyMatched:   append([]string(nil), r.WhyMatched...),
			MatchedNodes: nodes,
		}
	}
	return out
}

func chunkOutput(c *domain.Chunk) ChunkOutput {
	return ChunkOutput{
		ID:         int64(c.ID),
		OwnerID:    int64(c.OwnerID),
		NodeID:     c.NodeID,
		EntityType: c.EntityType,
		Text:       c.Text,
		TenantID:   c.Tenant(),
		Meta:       c.Meta,
		CreatedAt:  c.CreatedAt.UTC().Format(time.RFC3339),
	}
}
