// Package mcp exposes matching over the Model Context Protocol so assistants
// can search profiles and read experience matches.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// errNotConfigured is returned by tools whose port was not wired.
var errNotConfigured = errors.New("mcp: tool not configured")
