package domain

import (
	"fmt"
	"time"
)

// AppSettings holds all configurable application settings.
type AppSettings struct {
	Retrieval  RetrievalSettings
	Cache      CacheSettings
	Experience ExperienceSettings
	Embedding  EmbeddingSettings
	Insight    InsightSettings
	Server     ServerSettings
	Permission PermissionSettings
}

// RetrievalSettings tunes seed retrieval, expansion and score fusion.
type RetrievalSettings struct {
	// Dimensions is the deployment embedding length.
	Dimensions int

	// SeedPool is K_seed, the number of similarity candidates expanded.
	SeedPool int

	// MaxDepth bounds expansion hops.
	MaxDepth int

	// Decay is λ, applied once per hop.
	Decay float64

	// Fusion weights. They are not required to sum to 1.
	SimilarityWeight float64
	GraphWeight      float64
	RecencyWeight    float64

	// RecencyHalfLifeDays is the divisor in exp(-ageDays / halfLife).
	RecencyHalfLifeDays float64

	// MatchedNodesCap limits matched nodes per profile.
	MatchedNodesCap int

	// Timeout bounds every store call of one request.
	Timeout time.Duration

	// ExpansionWorkers bounds concurrently expanded seeds.
	ExpansionWorkers int
}

// Validate checks retrieval settings.
func (s RetrievalSettings) Validate() error {
	switch {
	case s.Dimensions <= 0:
		return fmt.Errorf("%w: retrieval.dimensions must be positive", ErrInvalidInput)
	case s.SeedPool <= 0:
		return fmt.Errorf("%w: retrieval.seed_pool must be positive", ErrInvalidInput)
	case s.MaxDepth < 0:
		return fmt.Errorf("%w: retrieval.max_depth must not be negative", ErrInvalidInput)
	case s.Decay < 0 || s.Decay > 1:
		return fmt.Errorf("%w: retrieval.decay must be within [0, 1]", ErrInvalidInput)
	case s.RecencyHalfLifeDays <= 0:
		return fmt.Errorf("%w: retrieval.recency_half_life_days must be positive", ErrInvalidInput)
	case s.MatchedNodesCap <= 0:
		return fmt.Errorf("%w: retrieval.matched_nodes_cap must be positive", ErrInvalidInput)
	case s.ExpansionWorkers <= 0:
		return fmt.Errorf("%w: retrieval.expansion_workers must be positive", ErrInvalidInput)
	}
	return nil
}

// CacheSettings controls the experience-match result cache.
type CacheSettings struct {
	// TTL is how long an entry stays Fresh.
	TTL time.Duration

	// Policy decides what concurrent callers see while a key recomputes.
	Policy CachePolicy

	// RecomputeTimeout bounds a recomputation independently of its caller.
	RecomputeTimeout time.Duration

	// SweepInterval is how often expired persisted entries are purged. Zero disables.
	SweepInterval time.Duration
}

// Validate checks cache settings.
func (s CacheSettings) Validate() error {
	if s.TTL < time.Second {
		return fmt.Errorf("%w: cache.ttl must be at least 1s, got %s", ErrInvalidInput, s.TTL)
	}
	if !s.Policy.IsValid() {
		return fmt.Errorf("%w: unknown cache policy %q", ErrInvalidInput, s.Policy)
	}
	return nil
}

// ExperienceSettings shapes experience-match queries built from a subject node.
type ExperienceSettings struct {
	Limit               int
	SimilarityThreshold float64

	// QueryMaxChars truncates the generated search query.
	QueryMaxChars int
}

// EmbeddingProvider names an embedding backend.
type EmbeddingProvider string

// Supported embedding providers.
const (
	// EmbeddingProviderOpenAI is the OpenAI API or any server speaking its /embeddings protocol.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"

	// EmbeddingProviderOllama is a local Ollama server.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"
)

// IsValid returns true if the provider is supported.
func (p EmbeddingProvider) IsValid() bool {
	return p == EmbeddingProviderOpenAI || p == EmbeddingProviderOllama
}

// EmbeddingSettings configures the embedding endpoint.
type EmbeddingSettings struct {
	Provider EmbeddingProvider

	BaseURL string
	Model   string
	APIKey  string

	// RequestsPerSecond throttles outgoing calls. Zero disables throttling.
	RequestsPerSecond float64

	// BreakerFailures is the consecutive failure count that opens the circuit.
	BreakerFailures uint32

	// BreakerCooldown is how long the circuit stays open.
	BreakerCooldown time.Duration
}

// IsConfigured returns true when a model is set and the provider can be reached.
// Ollama needs no credentials; OpenAI-compatible servers need a key or a base URL.
func (s EmbeddingSettings) IsConfigured() bool {
	if s.Model == "" {
		return false
	}
	if s.Provider == EmbeddingProviderOllama {
		return true
	}
	return s.APIKey != "" || s.BaseURL != ""
}

// InsightProvider names a chat model backend used to phrase match reasons.
type InsightProvider string

// Supported insight providers. The empty provider disables enrichment.
const (
	InsightProviderNone      InsightProvider = ""
	InsightProviderOpenAI    InsightProvider = "openai"
	InsightProviderAnthropic InsightProvider = "anthropic"
)

// IsValid returns true if the provider is supported.
func (p InsightProvider) IsValid() bool {
	switch p {
	case InsightProviderNone, InsightProviderOpenAI, InsightProviderAnthropic:
		return true
	}
	return false
}

// InsightSettings configures the optional enrichment of match reasons.
type InsightSettings struct {
	Provider InsightProvider

	BaseURL string
	Model   string
	APIKey  string

	// Timeout bounds a single enrichment call.
	Timeout time.Duration
}

// IsConfigured returns true when enrichment is enabled.
func (s InsightSettings) IsConfigured() bool {
	return s.Provider != InsightProviderNone && (s.APIKey != "" || s.BaseURL != "")
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr string

	// Mode is the gin mode: debug, release or test.
	Mode string
}

// PermissionSettings configures the permission evaluator.
type PermissionSettings struct {
	// RulesFile points to a TOML rule file. Empty allows every node.
	RulesFile string
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Retrieval: RetrievalSettings{
			Dimensions:          1536,
			SeedPool:            50,
			MaxDepth:            2,
			Decay:               0.5,
			SimilarityWeight:    0.6,
			GraphWeight:         0.3,
			RecencyWeight:       0.1,
			RecencyHalfLifeDays: 90,
			MatchedNodesCap:     5,
			Timeout:             5 * time.Second,
			ExpansionWorkers:    4,
		},
		Cache: CacheSettings{
			TTL:              time.Hour,
			Policy:           CachePolicyServeStale,
			RecomputeTimeout: 30 * time.Second,
			SweepInterval:    10 * time.Minute,
		},
		Experience: ExperienceSettings{
			Limit:               DefaultSearchLimit,
			SimilarityThreshold: 0,
			QueryMaxChars:       500,
		},
		// Embedding is left unconfigured; vectors must then be supplied by callers.
		Embedding: EmbeddingSettings{
			Provider:          EmbeddingProviderOpenAI,
			RequestsPerSecond: 5,
			BreakerFailures:   5,
			BreakerCooldown:   30 * time.Second,
		},
		Insight: InsightSettings{
			Timeout: 10 * time.Second,
		},
		Server: ServerSettings{
			Addr: "127.0.0.1:8080",
			Mode: "release",
		},
	}
}
