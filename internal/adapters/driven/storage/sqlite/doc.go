// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. It implements several store interfaces over a single database connection:
//
//   - ChunkStore: chunk persistence and filtered similarity queries
//   - EdgeStore: typed, weighted relationships between chunks
//   - MatchCacheStore: persisted experience-match payloads
//
// Similarity is computed in Go over the rows that pass the tenant, owner and
// time filters. Embeddings are stored normalised as little-endian float32 blobs.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.matchgraph/data/matchgraph.db
package sqlite
