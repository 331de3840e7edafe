// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ChunkStore: Chunk persistence and vector similarity queries
//   - EdgeStore: Relationship persistence and one-hop adjacency
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, callers must supply vectors.
//   - PermissionEvaluator: Node visibility checks. Without it, every node is visible.
//   - InsightProvider: Rewrites why-matched reasons. Without it, default reasons are served.
//   - MatchCacheStore: Persists cached experience matches. Without it, the cache is in-memory only.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
