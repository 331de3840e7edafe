// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Retrieval is a pipeline of small parts: SeedRetriever picks the most
// similar chunks, RelationshipGraph and GraphExpander walk typed edges out
// of them, and Ranker fuses similarity, graph and recency signals into
// per-profile matches. ResultCache fronts the experience-match pipeline.
//
// Services are pure Go with no CGO or external dependencies.
package services
