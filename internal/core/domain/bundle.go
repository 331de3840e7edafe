package domain

import "time"

// ImportBundle is a batch of chunks and edges loaded together. Edges refer to
// chunks of the same bundle by Key, or to stored chunks by decimal ID.
type ImportBundle struct {
	Chunks []ImportChunk `json:"chunks"`
	Edges  []ImportEdge  `json:"edges"`
}

// ImportChunk is one chunk of a bundle.
type ImportChunk struct {
	Key        string         `json:"key"`
	OwnerID    UserID         `json:"ownerId"`
	NodeID     string         `json:"nodeId,omitempty"`
	Text       string         `json:"text"`
	Embedding  []float32      `json:"embedding,omitempty"`
	EntityType string         `json:"entityType"`
	Meta       map[string]any `json:"meta,omitempty"`
	TenantID   string         `json:"tenantId,omitempty"`
	CreatedAt  *time.Time     `json:"createdAt,omitempty"`
}

// Input converts the bundle entry to a ChunkInput.
func (c ImportChunk) Input() ChunkInput {
	in := ChunkInput{
		OwnerID:    c.OwnerID,
		NodeID:     c.NodeID,
		Text:       c.Text,
		Embedding:  c.Embedding,
		EntityType: c.EntityType,
		Meta:       c.Meta,
		TenantID:   c.TenantID,
	}
	if c.CreatedAt != nil {
		in.CreatedAt = *c.CreatedAt
	}
	return in
}

// ImportEdge is one edge of a bundle.
type ImportEdge struct {
	Src      string         `json:"src"`
	Dst      string         `json:"dst"`
	RelType  RelType        `json:"relType"`
	Weight   *float64       `json:"weight,omitempty"`
	Directed *bool          `json:"directed,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// ImportSummary reports what a bundle import stored.
type ImportSummary struct {
	Chunks int                `json:"chunks"`
	Edges  int                `json:"edges"`
	Keys   map[string]ChunkID `json:"keys"`
}
