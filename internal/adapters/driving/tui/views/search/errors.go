package search

import "errors"

// Error definitions for the search view.
var (
	// ErrNoSearchService indicates that no search service was provided.
	ErrNoSearchService = errors.New("search service is required")

	// ErrNoExperienceService indicates that experience matching is unavailable.
	ErrNoExperienceService = errors.New("experience match service is required")
)
