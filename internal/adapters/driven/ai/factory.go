// Package ai builds the embedding service named by the settings.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driven/embedding/openai"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns nil without error when embedding is not configured.
func CreateAndValidateEmbeddingService(
	ctx context.Context, settings domain.EmbeddingSettings, dimensions int,
) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings, dimensions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateEmbeddingService creates the provider's embedding service wrapped in
// a Guard. Returns nil if embedding is not configured.
func CreateEmbeddingService(settings domain.EmbeddingSettings, dimensions int) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension %d", dimensions)
	}

	var (
		inner driven.EmbeddingService
		err   error
	)
	switch settings.Provider {
	case domain.EmbeddingProviderOllama:
		inner = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})
	case domain.EmbeddingProviderOpenAI, "":
		inner, err = openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}

	return NewGuard(inner, GuardConfig{
		RequestsPerSecond: settings.RequestsPerSecond,
		BreakerFailures:   settings.BreakerFailures,
		BreakerCooldown:   settings.BreakerCooldown,
	}), nil
}
