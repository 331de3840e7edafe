package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTenant is the shared tenant used when a chunk or request carries none.
const DefaultTenant = "default"

// ChunkID identifies a chunk. IDs are generated by the store and increase monotonically.
type ChunkID int64

// UserID identifies the owner of chunks (a profile).
type UserID int64

// Chunk is an immutable unit of embedded, searchable text.
// Only UpdatedAt and Meta may change after creation; re-embedding
// produces a new chunk.
type Chunk struct {
	// ID is assigned by the store on Put.
	ID ChunkID

	// OwnerID is the profile the chunk belongs to.
	OwnerID UserID

	// NodeID references the source entity (timeline node, document).
	// Empty for owner-level chunks.
	NodeID string

	// Text is the UTF-8 content.
	Text string

	// Embedding is the L2-normalised vector. Its length is fixed per deployment.
	Embedding []float32

	// EntityType is a short tag such as "job", "education" or "company_document".
	EntityType string

	// Meta is an opaque payload passed through unchanged. Scoring never reads it.
	Meta map[string]any

	// TenantID scopes the chunk. Empty means DefaultTenant.
	TenantID string

	// CreatedAt is when the chunk was ingested.
	CreatedAt time.Time

	// UpdatedAt changes only when Meta is replaced.
	UpdatedAt time.Time
}

// Tenant returns the chunk's tenant, falling back to DefaultTenant.
func (c *Chunk) Tenant() string {
	return TenantOrDefault(c.TenantID)
}

// Snippet returns at most n runes of the chunk text.
func (c *Chunk) Snippet(n int) string {
	r := []rune(strings.TrimSpace(c.Text))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "…"
}

// TenantOrDefault normalises an optional tenant id.
func TenantOrDefault(tenantID string) string {
	if strings.TrimSpace(tenantID) == "" {
		return DefaultTenant
	}
	return tenantID
}

// ValidateEmbedding checks a vector against the deployment dimension.
// All-zero vectors are rejected because they cannot be normalised.
func ValidateEmbedding(embedding []float32, dimensions int) error {
	if len(embedding) != dimensions {
		return fmt.Errorf("%w: got %d, want %d", ErrInvalidEmbeddingDimension, len(embedding), dimensions)
	}
	if IsZeroVector(embedding) {
		return fmt.Errorf("%w: zero vector", ErrInvalidEmbeddingDimension)
	}
	return nil
}

// IsZeroVector reports whether every component of v is zero (or v is empty).
func IsZeroVector(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// ChunkFilter restricts similarity queries.
type ChunkFilter struct {
	// TenantID restricts results to one tenant. Empty means DefaultTenant.
	TenantID string

	// ExcludeOwnerID drops chunks owned by this user when set.
	ExcludeOwnerID *UserID

	// Since drops chunks created before this instant when set.
	Since *time.Time
}

// Allows reports whether a chunk passes the filter.
func (f ChunkFilter) Allows(c *Chunk) bool {
	if c.Tenant() != TenantOrDefault(f.TenantID) {
		return false
	}
	if f.ExcludeOwnerID != nil && c.OwnerID == *f.ExcludeOwnerID {
		return false
	}
	if f.Since != nil && c.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}

// ScoredChunk pairs a chunk with its cosine similarity to a query.
type ScoredChunk struct {
	Chunk      *Chunk
	Similarity float64
}

// ChunkInput is the ingestion shape of a chunk.
type ChunkInput struct {
	OwnerID    UserID
	NodeID     string
	Text       string
	Embedding  []float32
	EntityType string
	Meta       map[string]any
	TenantID   string

	// CreatedAt backdates imported history. Zero means now.
	CreatedAt time.Time
}

// Validate checks the fields that do not depend on deployment settings.
func (in *ChunkInput) Validate() error {
	if in.OwnerID <= 0 {
		return fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Text) == "" && len(in.Embedding) == 0 {
		return fmt.Errorf("%w: text or embedding is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.EntityType) == "" {
		return fmt.Errorf("%w: entity type is required", ErrInvalidInput)
	}
	return nil
}

// StoreStats summarises store contents for status reporting.
type StoreStats struct {
	Chunks  int `json:"chunks"`
	Edges   int `json:"edges"`
	Owners  int `json:"owners"`
	Tenants int `json:"tenants"`
}
