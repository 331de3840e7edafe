package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driven"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/logger"
)

// Ensure Guard implements the interface.
var _ driven.EmbeddingService = (*Guard)(nil)

// GuardConfig configures throttling and circuit breaking for an embedding service.
type GuardConfig struct {
	// RequestsPerSecond throttles calls. Zero disables throttling.
	RequestsPerSecond float64

	// BreakerFailures is the consecutive failure count that opens the circuit.
	// Zero uses 5.
	BreakerFailures uint32

	// BreakerCooldown is how long the circuit stays open before a trial request.
	// Zero uses 30s.
	BreakerCooldown time.Duration
}

// Guard throttles an embedding service, stops calling it while it keeps
// failing, and rejects vectors of the wrong length.
type Guard struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewGuard wraps inner.
func NewGuard(inner driven.EmbeddingService, cfg GuardConfig) *Guard {
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}

	g := &Guard{inner: inner}
	if cfg.RequestsPerSecond > 0 {
		burst := max(1, int(cfg.RequestsPerSecond))
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	failures := cfg.BreakerFailures
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "embedding:" + inner.ModelName(),
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A caller giving up says nothing about the endpoint.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit %s: %s -> %s", name, from, to)
		},
	})
	return g
}

// Embed generates a vector embedding for the given text.
func (g *Guard) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := g.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts.
func (g *Guard) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	res, err := g.breaker.Execute(func() (interface{}, error) {
		return g.inner.EmbedBatch(ctx, texts)
	})
	if err != nil {
		return nil, err
	}

	embeddings, _ := res.([][]float32)
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d inputs", len(embeddings), len(texts))
	}
	want := g.inner.Dimensions()
	for _, e := range embeddings {
		if len(e) != want {
			return nil, fmt.Errorf("%w: model %s returned %d, want %d",
				domain.ErrInvalidEmbeddingDimension, g.inner.ModelName(), len(e), want)
		}
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (g *Guard) Dimensions() int { return g.inner.Dimensions() }

// ModelName returns the name of the embedding model being used.
func (g *Guard) ModelName() string { return g.inner.ModelName() }

// State reports the circuit state.
func (g *Guard) State() gobreaker.State { return g.breaker.State() }

// Ping checks the endpoint. An open circuit is reported without a network call.
func (g *Guard) Ping(ctx context.Context) error {
	if g.breaker.State() == gobreaker.StateOpen {
		return gobreaker.ErrOpenState
	}
	return g.inner.Ping(ctx)
}

// Close releases resources.
func (g *Guard) Close() error { return g.inner.Close() }
