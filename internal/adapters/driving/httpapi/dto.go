package httpapi

import (
	"time"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

type searchRequest struct {
	Query               string         `json:"query"`
	Embedding           []float32      `json:"embedding"`
	Limit               int            `json:"limit"`
	TenantID            string         `json:"tenantId"`
	RequestingUserID    domain.UserID  `json:"requestingUserId"`
	ExcludeUserID       *domain.UserID `json:"excludeUserId"`
	Since               *time.Time     `json:"since"`
	SimilarityThreshold *float64       `json:"similarityThreshold"`
}

func (r searchRequest) toDomain() domain.SearchRequest {
	return domain.SearchRequest{
		Query:               r.Query,
		QueryEmbedding:      r.Embedding,
		Limit:               r.Limit,
		TenantID:            r.TenantID,
		RequestingUserID:    r.RequestingUserID,
		ExcludeUserID:       r.ExcludeUserID,
		Since:               r.Since,
		SimilarityThreshold: r.SimilarityThreshold,
	}
}

type chunkRequest struct {
	OwnerID    domain.UserID  `json:"ownerId"`
	NodeID     string         `json:"nodeId"`
	Text       string         `json:"text"`
	Embedding  []float32      `json:"embedding"`
	EntityType string         `json:"entityType"`
	Meta       map[string]any `json:"meta"`
	TenantID   string         `json:"tenantId"`
	CreatedAt  *time.Time     `json:"createdAt"`
}

func (r chunkRequest) toDomain() domain.ChunkInput {
	in := domain.ChunkInput{
		OwnerID:    r.OwnerID,
		NodeID:     r.NodeID,
		Text:       r.Text,
		Embedding:  r.Embedding,
		EntityType: r.EntityType,
		Meta:       r.Meta,
		TenantID:   r.TenantID,
	}
	if r.CreatedAt != nil {
		in.CreatedAt = *r.CreatedAt
	}
	return in
}

type edgeRequest struct {
	Src      domain.ChunkID `json:"src"`
	Dst      domain.ChunkID `json:"dst"`
	RelType  domain.RelType `json:"relType"`
	Weight   *float64       `json:"weight"`
	Directed *bool          `json:"directed"`
	Meta     map[string]any `json:"meta"`
}

func (r edgeRequest) toDomain() domain.EdgeInput {
	return domain.EdgeInput{
		SrcChunkID: r.Src,
		DstChunkID: r.Dst,
		RelType:    r.RelType,
		Weight:     r.Weight,
		Directed:   r.Directed,
		Meta:       r.Meta,
	}
}

type metaRequest struct {
	Meta map[string]any `json:"meta"`
}

type idResponse struct {
	ID int64 `json:"id"`
}

type deletedResponse struct {
	Deleted int `json:"deleted"`
}

// chunkView is a chunk without its vector.
type chunkView struct {
	ID         domain.ChunkID `json:"id"`
	OwnerID    domain.UserID  `json:"ownerId"`
	NodeID     string         `json:"nodeId,omitempty"`
	Text       string         `json:"text"`
	EntityType string         `json:"entityType"`
	Meta       map[string]any `json:"meta,omitempty"`
	TenantID   string         `json:"tenantId"`
	Dimensions int            `json:"dimensions"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func newChunkView(c *domain.Chunk) chunkView {
	return chunkView{
		ID:         c.ID,
		OwnerID:    c.OwnerID,
		NodeID:     c.NodeID,
		Text:       c.Text,
		EntityType: c.EntityType,
		Meta:       c.Meta,
		TenantID:   c.Tenant(),
		Dimensions: len(c.Embedding),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func newChunkViews(chunks []*domain.Chunk) []chunkView {
	out := make([]chunkView, len(chunks))
	for i, c := range chunks {
		out[i] = newChunkView(c)
	}
	return out
}

type edgeView struct {
	ID        domain.EdgeID  `json:"id"`
	Src       domain.ChunkID `json:"src"`
	Dst       domain.ChunkID `json:"dst"`
	RelType   domain.RelType `json:"relType"`
	Weight    float64        `json:"weight"`
	Directed  bool           `json:"directed"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

func newEdgeView(e *domain.Edge) edgeView {
	return edgeView{
		ID:        e.ID,
		Src:       e.SrcChunkID,
		Dst:       e.DstChunkID,
		RelType:   e.RelType,
		Weight:    e.Weight,
		Directed:  e.Directed,
		Meta:      e.Meta,
		CreatedAt: e.CreatedAt,
	}
}
