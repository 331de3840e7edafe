package driving

import (
	"context"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

// Status reports the health of the engine.
type Status struct {
	Healthy   bool              `json:"healthy"`
	Store     domain.StoreStats `json:"store"`
	Embedding string            `json:"embedding"`
	Errors    []string          `json:"errors,omitempty"`
}

// StatusService reports engine health.
type StatusService interface {
	Status(ctx context.Context) (*Status, error)
}
