package domain

import (
	"fmt"
	"strings"
	"time"
)

// EdgeID identifies an edge.
type EdgeID int64

// RelType tags the kind of relationship an edge represents.
type RelType string

// Known relationship types. Other non-empty values are accepted.
const (
	// RelParentChild links a chunk to a chunk derived from the same parent entity.
	RelParentChild RelType = "parent_child"

	// RelSameOwner links chunks belonging to one profile.
	RelSameOwner RelType = "same_owner"

	// RelSimilarRole links chunks describing comparable roles.
	RelSimilarRole RelType = "similar_role"

	// RelSameCompany links chunks that mention the same organisation.
	RelSameCompany RelType = "same_company"

	// RelSemantic links chunks found to be semantically close.
	RelSemantic RelType = "semantic"
)

// DefaultEdgeWeight is used when an edge is created without a weight.
const DefaultEdgeWeight = 1.0

// IsKnown returns true for the predefined relationship types.
func (r RelType) IsKnown() bool {
	switch r {
	case RelParentChild, RelSameOwner, RelSimilarRole, RelSameCompany, RelSemantic:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r RelType) String() string {
	return string(r)
}

// Edge is a typed, weighted relationship between two chunks.
// Parallel edges with different RelType are kept distinct.
type Edge struct {
	ID         EdgeID
	SrcChunkID ChunkID
	DstChunkID ChunkID
	RelType    RelType

	// Weight scales relevance propagated across the edge. The store does
	// not enforce an upper bound; expansion clamps path weights to [0, 1].
	Weight float64

	// Directed edges are followed src -> dst only.
	Directed bool

	Meta      map[string]any
	CreatedAt time.Time
}

// EdgeInput is the ingestion shape of an edge. Nil Weight and Directed
// take the defaults (1.0 and true).
type EdgeInput struct {
	SrcChunkID ChunkID
	DstChunkID ChunkID
	RelType    RelType
	Weight     *float64
	Directed   *bool
	Meta       map[string]any
}

// Validate checks the input and returns the edge it describes.
func (in *EdgeInput) Validate() (*Edge, error) {
	if in.SrcChunkID <= 0 || in.DstChunkID <= 0 {
		return nil, fmt.Errorf("%w: both chunk ids are required", ErrInvalidInput)
	}
	if strings.TrimSpace(string(in.RelType)) == "" {
		return nil, fmt.Errorf("%w: relationship type is required", ErrInvalidInput)
	}

	edge := &Edge{
		SrcChunkID: in.SrcChunkID,
		DstChunkID: in.DstChunkID,
		RelType:    in.RelType,
		Weight:     DefaultEdgeWeight,
		Directed:   true,
		Meta:       in.Meta,
	}
	if in.Weight != nil {
		edge.Weight = *in.Weight
	}
	if in.Directed != nil {
		edge.Directed = *in.Directed
	}
	return edge, nil
}

// Adjacency is one traversable hop out of a chunk.
// For an undirected edge seen from its destination, Neighbor is the source.
type Adjacency struct {
	Edge     *Edge
	Neighbor *Chunk
}

// Neighbor is a chunk reached by graph traversal.
type Neighbor struct {
	Chunk *Chunk

	// PathWeight is the best cumulative path weight found so far, in [0, 1].
	PathWeight float64

	// Hops is the number of edges on that path.
	Hops int
}
