package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driven"
)

// ==================== Match Cache Store ====================

// matchCacheStore implements driven.MatchCacheStore.
type matchCacheStore struct {
	store *Store
}

var _ driven.MatchCacheStore = (*matchCacheStore)(nil)

// GetMatches returns the stored payload for a key.
func (s *matchCacheStore) GetMatches(ctx context.Context, key domain.CacheKey) (*domain.ExperienceMatches, error) {
	var payload string
	err := s.store.db.QueryRowContext(ctx,
		`SELECT payload FROM match_cache WHERE node_id = ? AND query = ?`,
		key.NodeID, key.Query).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting cached matches: %w", err)
	}

	var matches domain.ExperienceMatches
	if err := json.Unmarshal([]byte(payload), &matches); err != nil {
		return nil, fmt.Errorf("unmarshalling cached matches: %w", err)
	}
	return &matches, nil
}

// SaveMatches upserts the payload for a key.
func (s *matchCacheStore) SaveMatches(ctx context.Context, key domain.CacheKey, matches *domain.ExperienceMatches) error {
	payload, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("marshalling matches: %w", err)
	}

	expiresAt := matches.LastUpdated.Add(time.Duration(matches.CacheTTL) * time.Second)
	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO match_cache (node_id, query, payload, last_updated, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(node_id, query) DO UPDATE SET
			payload = excluded.payload,
			last_updated = excluded.last_updated,
			expires_at = excluded.expires_at
	`, key.NodeID, key.Query, string(payload), toUnixNano(matches.LastUpdated), toUnixNano(expiresAt))
	if err != nil {
		return fmt.Errorf("saving cached matches: %w", err)
	}
	return nil
}

// DeleteMatches removes every payload stored for a subject node.
func (s *matchCacheStore) DeleteMatches(ctx context.Context, nodeID string) error {
	if _, err := s.store.db.ExecContext(ctx, `DELETE FROM match_cache WHERE node_id = ?`, nodeID); err != nil {
		return fmt.Errorf("deleting cached matches: %w", err)
	}
	return nil
}

// DeleteReferencing removes every payload whose subject or matched profiles
// include owner.
func (s *matchCacheStore) DeleteReferencing(ctx context.Context, owner domain.UserID) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM match_cache
		WHERE json_extract(payload, '$.userId') = ?
		   OR EXISTS (
			SELECT 1 FROM json_each(payload, '$.matches') AS m
			WHERE json_extract(m.value, '$.userId') = ?
		   )
	`, int64(owner), int64(owner))
	if err != nil {
		return fmt.Errorf("deleting cached matches of owner %d: %w", owner, err)
	}
	return nil
}

// PurgeExpired removes payloads whose TTL elapsed at or before now.
func (s *matchCacheStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.store.db.ExecContext(ctx, `DELETE FROM match_cache WHERE expires_at <= ?`, toUnixNano(now))
	if err != nil {
		return 0, fmt.Errorf("purging cached matches: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting purged matches: %w", err)
	}
	return int(n), nil
}
