// Package domain defines the core business entities for matchgraph.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: An immutable unit of embedded, searchable text
//   - Edge: A typed, weighted relationship between two chunks
//   - SearchRequest: The ephemeral description of one retrieval
//   - MatchResult: A profile-level aggregation of ranked chunks
//   - ExperienceMatches: The cached payload served for a subject node
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
