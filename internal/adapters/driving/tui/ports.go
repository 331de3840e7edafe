// Package tui provides an interactive terminal interface for searching
// profiles and browsing experience matches.
package tui

import (
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI runs against.
type Ports struct {
	// Search ranks profiles for a free-text query.
	Search driving.SearchService

	// Experience serves cached matches for a subject node. Optional.
	Experience driving.ExperienceMatchService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
