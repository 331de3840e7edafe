package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested chunk, edge or cache entry does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Ingestion Errors.

	// ErrInvalidEmbeddingDimension indicates a vector whose length differs from
	// the deployment dimension, or one that cannot be normalised.
	// Fatal to the ingestion call; nothing is written.
	ErrInvalidEmbeddingDimension = errors.New("invalid embedding dimension")

	// ErrDanglingReference indicates an edge endpoint that does not reference an existing chunk.
	ErrDanglingReference = errors.New("dangling reference")

	// Retrieval Errors.

	// ErrEmptyQueryEmbedding indicates the query embedding is absent or all-zero.
	ErrEmptyQueryEmbedding = errors.New("empty query embedding")

	// ErrRetrievalTimeout indicates a store call exceeded the retrieval deadline.
	// The request is aborted without partial results and cache state is untouched.
	ErrRetrievalTimeout = errors.New("retrieval timeout")

	// ErrPermissionDenied is returned by permission evaluators.
	// Retrieval treats it as a per-result filter, never as a request failure.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrEmbeddingUnavailable indicates no embedding service is configured.
	// Query text cannot be turned into a vector without one.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
