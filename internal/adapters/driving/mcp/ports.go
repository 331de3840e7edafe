package mcp

import (
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Search is required.
	Search driving.SearchService

	// Experience serves cached matches for a subject node. Optional.
	Experience driving.ExperienceMatchService

	// Ingest backs chunk lookups. Optional.
	Ingest driving.IngestService

	// Status backs the status resource. Optional.
	Status driving.StatusService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
