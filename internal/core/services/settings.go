package services

import (
	"fmt"
	"time"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driven"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage. Durations are Go duration strings ("5s", "1h").
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDimensions       = "retrieval.dimensions"
	keySeedPool         = "retrieval.seed_pool"
	keyMaxDepth         = "retrieval.max_depth"
	keyDecay            = "retrieval.decay"
	keyWeightSimilarity = "retrieval.weights.similarity"
	keyWeightGraph      = "retrieval.weights.graph"
	keyWeightRecency    = "retrieval.weights.recency"
	keyHalfLifeDays     = "retrieval.recency_half_life_days"
	keyMatchedNodesCap  = "retrieval.matched_nodes_cap"
	keyRetrievalTimeout = "retrieval.timeout"
	keyExpansionWorkers = "retrieval.expansion_workers"

	keyCacheTTL              = "cache.ttl"
	keyCachePolicy           = "cache.policy"
	keyCacheRecomputeTimeout = "cache.recompute_timeout"
	keyCacheSweepInterval    = "cache.sweep_interval"

	keyExperienceLimit     = "experience.limit"
	keyExperienceThreshold = "experience.similarity_threshold"
	keyExperienceQueryMax  = "experience.query_max_chars"

	keyEmbedProvider        = "embedding.provider"
	keyEmbedBaseURL         = "embedding.base_url"
	keyEmbedModel           = "embedding.model"
	keyEmbedAPIKey          = "embedding.api_key"
	keyEmbedRPS             = "embedding.requests_per_second"
	keyEmbedBreakerFailures = "embedding.breaker_failures"
	keyEmbedBreakerCooldown = "embedding.breaker_cooldown"

	keyInsightProvider = "insight.provider"
	keyInsightBaseURL  = "insight.base_url"
	keyInsightModel    = "insight.model"
	keyInsightAPIKey   = "insight.api_key"
	keyInsightTimeout  = "insight.timeout"

	keyServerAddr = "server.addr"
	keyServerMode = "server.mode"

	keyPermissionRules = "permission.rules_file"
)

// SettingsService manages application settings.
// Missing keys take their default; present keys are used as-is, zero included.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Retrieval: domain.RetrievalSettings{
			Dimensions:          s.getInt(keyDimensions, d.Retrieval.Dimensions),
			SeedPool:            s.getInt(keySeedPool, d.Retrieval.SeedPool),
			MaxDepth:            s.getInt(keyMaxDepth, d.Retrieval.MaxDepth),
			Decay:               s.getFloat(keyDecay, d.Retrieval.Decay),
			SimilarityWeight:    s.getFloat(keyWeightSimilarity, d.Retrieval.SimilarityWeight),
			GraphWeight:         s.getFloat(keyWeightGraph, d.Retrieval.GraphWeight),
			RecencyWeight:       s.getFloat(keyWeightRecency, d.Retrieval.RecencyWeight),
			RecencyHalfLifeDays: s.getFloat(keyHalfLifeDays, d.Retrieval.RecencyHalfLifeDays),
			MatchedNodesCap:     s.getInt(keyMatchedNodesCap, d.Retrieval.MatchedNodesCap),
			Timeout:             s.getDuration(keyRetrievalTimeout, d.Retrieval.Timeout),
			ExpansionWorkers:    s.getInt(keyExpansionWorkers, d.Retrieval.ExpansionWorkers),
		},
		Cache: domain.CacheSettings{
			TTL:              s.getDuration(keyCacheTTL, d.Cache.TTL),
			Policy:           domain.CachePolicy(s.getString(keyCachePolicy, d.Cache.Policy.String())),
			RecomputeTimeout: s.getDuration(keyCacheRecomputeTimeout, d.Cache.RecomputeTimeout),
			SweepInterval:    s.getDuration(keyCacheSweepInterval, d.Cache.SweepInterval),
		},
		Experience: domain.ExperienceSettings{
			Limit:               s.getInt(keyExperienceLimit, d.Experience.Limit),
			SimilarityThreshold: s.getFloat(keyExperienceThreshold, d.Experience.SimilarityThreshold),
			QueryMaxChars:       s.getInt(keyExperienceQueryMax, d.Experience.QueryMaxChars),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          domain.EmbeddingProvider(s.getString(keyEmbedProvider, string(d.Embedding.Provider))),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL),
			Model:             s.configStore.GetString(keyEmbedModel),
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			RequestsPerSecond: s.getFloat(keyEmbedRPS, d.Embedding.RequestsPerSecond),
			BreakerFailures:   uint32(max(0, s.getInt(keyEmbedBreakerFailures, int(d.Embedding.BreakerFailures)))), //nolint:gosec // clamped
			BreakerCooldown:   s.getDuration(keyEmbedBreakerCooldown, d.Embedding.BreakerCooldown),
		},
		Insight: domain.InsightSettings{
			Provider: domain.InsightProvider(s.configStore.GetString(keyInsightProvider)),
			BaseURL:  s.configStore.GetString(keyInsightBaseURL),
			Model:    s.configStore.GetString(keyInsightModel),
			APIKey:   s.configStore.GetString(keyInsightAPIKey),
			Timeout:  s.getDuration(keyInsightTimeout, d.Insight.Timeout),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, d.Server.Addr),
			Mode: s.getString(keyServerMode, d.Server.Mode),
		},
		Permission: domain.PermissionSettings{
			RulesFile: s.configStore.GetString(keyPermissionRules),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	r := settings.Retrieval
	c := settings.Cache
	e := settings.Experience

	values := []struct {
		key   string
		value any
	}{
		{keyDimensions, r.Dimensions},
		{keySeedPool, r.SeedPool},
		{keyMaxDepth, r.MaxDepth},
		{keyDecay, r.Decay},
		{keyWeightSimilarity, r.SimilarityWeight},
		{keyWeightGraph, r.GraphWeight},
		{keyWeightRecency, r.RecencyWeight},
		{keyHalfLifeDays, r.RecencyHalfLifeDays},
		{keyMatchedNodesCap, r.MatchedNodesCap},
		{keyRetrievalTimeout, r.Timeout.String()},
		{keyExpansionWorkers, r.ExpansionWorkers},
		{keyCacheTTL, c.TTL.String()},
		{keyCachePolicy, c.Policy.String()},
		{keyCacheRecomputeTimeout, c.RecomputeTimeout.String()},
		{keyCacheSweepInterval, c.SweepInterval.String()},
		{keyExperienceLimit, e.Limit},
		{keyExperienceThreshold, e.SimilarityThreshold},
		{keyExperienceQueryMax, e.QueryMaxChars},
		{keyEmbedProvider, string(settings.Embedding.Provider)},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyEmbedBreakerFailures, int(settings.Embedding.BreakerFailures)},
		{keyEmbedBreakerCooldown, settings.Embedding.BreakerCooldown.String()},
		{keyInsightProvider, string(settings.Insight.Provider)},
		{keyInsightBaseURL, settings.Insight.BaseURL},
		{keyInsightModel, settings.Insight.Model},
		{keyInsightTimeout, settings.Insight.Timeout.String()},
		{keyServerAddr, settings.Server.Addr},
		{keyServerMode, settings.Server.Mode},
		{keyPermissionRules, settings.Permission.RulesFile},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
		}
	}
	if settings.Insight.APIKey != "" {
		if err := s.configStore.Set(keyInsightAPIKey, settings.Insight.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyInsightAPIKey, err)
		}
	}

	return nil
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := settings.Retrieval.Validate(); err != nil {
		return err
	}
	if err := settings.Cache.Validate(); err != nil {
		return err
	}
	if t := settings.Experience.SimilarityThreshold; t < 0 || t > 1 {
		return fmt.Errorf("%w: experience.similarity_threshold must be within [0, 1]", domain.ErrInvalidInput)
	}
	if l := settings.Experience.Limit; l < 1 || l > domain.MaxSearchLimit {
		return fmt.Errorf("%w: experience.limit must be between 1 and %d", domain.ErrInvalidInput, domain.MaxSearchLimit)
	}
	if p := settings.Embedding.Provider; !p.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, p)
	}
	if p := settings.Insight.Provider; !p.IsValid() {
		return fmt.Errorf("%w: unknown insight provider %q", domain.ErrInvalidInput, p)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

// getDuration parses a duration string, falling back on empty or malformed values.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	str := s.configStore.GetString(key)
	if str == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
