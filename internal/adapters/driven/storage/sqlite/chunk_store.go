package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driven"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/vector"
)

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

const chunkColumns = `id, owner_id, node_id, text, embedding, entity_type, meta, tenant_id, created_at, updated_at`

// Put stores a new chunk. A zero CreatedAt is set to the current time.
func (s *chunkStore) Put(ctx context.Context, chunk *domain.Chunk) (domain.ChunkID, error) {
	if err := domain.ValidateEmbedding(chunk.Embedding, s.store.dimensions); err != nil {
		return 0, err
	}

	metaJSON, err := marshalMeta(chunk.Meta)
	if err != nil {
		return 0, err
	}

	createdAt := chunk.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.store.now()
	}
	updatedAt := chunk.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO chunks (owner_id, node_id, text, embedding, entity_type, meta, tenant_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, chunk.OwnerID, chunk.NodeID, chunk.Text,
		float32SliceToBytes(vector.Normalize(chunk.Embedding)),
		chunk.EntityType, metaJSON, chunk.Tenant(),
		toUnixNano(createdAt), toUnixNano(updatedAt))
	if err != nil {
		return 0, fmt.Errorf("saving chunk: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading chunk id: %w", err)
	}

	chunk.ID = domain.ChunkID(id)
	return chunk.ID, nil
}

// Get retrieves a chunk by ID.
func (s *chunkStore) Get(ctx context.Context, id domain.ChunkID) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+chunkColumns+` FROM chunks WHERE id = ?`, id)
	chunk, err := scanChunk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// UpdateMeta replaces a chunk's meta and bumps UpdatedAt.
func (s *chunkStore) UpdateMeta(ctx context.Context, id domain.ChunkID, meta map[string]any) error {
	metaJSON, err := marshalMeta(meta)
	if err != nil {
		return err
	}

	res, err := s.store.db.ExecContext(ctx,
		`UPDATE chunks SET meta = ?, updated_at = ? WHERE id = ?`,
		metaJSON, toUnixNano(s.store.now()), id)
	if err != nil {
		return fmt.Errorf("updating chunk meta: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// QueryBySimilarity filters candidates in SQL and ranks them by cosine
// similarity in Go, keeping the k best in a bounded heap.
func (s *chunkStore) QueryBySimilarity(
	ctx context.Context, embedding []float32, filter domain.ChunkFilter, k int,
) ([]domain.ScoredChunk, error) {
	if len(embedding) != s.store.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d",
			domain.ErrInvalidEmbeddingDimension, len(embedding), s.store.dimensions)
	}
	query := vector.Normalize(embedding)
	if query == nil {
		return nil, domain.ErrEmptyQueryEmbedding
	}

	where := []string{"tenant_id = ?"}
	args := []any{domain.TenantOrDefault(filter.TenantID)}
	if filter.ExcludeOwnerID != nil {
		where = append(where, "owner_id != ?")
		args = append(args, *filter.ExcludeOwnerID)
	}
	if filter.Since != nil {
		where = append(where, "created_at >= ?")
		args = append(args, toUnixNano(*filter.Since))
	}

	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks WHERE `+strings.Join(where, " AND "), args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	top := vector.NewTopK[*domain.Chunk](k)
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		top.Push(vector.ScoredItem[*domain.Chunk]{
			Item:  chunk,
			Score: vector.Dot(query, chunk.Embedding),
			Key:   int64(chunk.ID),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	items := top.Sorted()
	results := make([]domain.ScoredChunk, len(items))
	for i, item := range items {
		results[i] = domain.ScoredChunk{Chunk: item.Item, Similarity: item.Score}
	}
	return results, nil
}

// ListByNode returns the chunks of a source entity, oldest first.
func (s *chunkStore) ListByNode(ctx context.Context, nodeID string) ([]*domain.Chunk, error) {
	return s.list(ctx, `node_id = ?`, nodeID)
}

// ListByOwner returns an owner's chunks, oldest first.
func (s *chunkStore) ListByOwner(ctx context.Context, ownerID domain.UserID) ([]*domain.Chunk, error) {
	return s.list(ctx, `owner_id = ?`, ownerID)
}

// DeleteByOwner removes an owner's chunks. Edges go with them.
func (s *chunkStore) DeleteByOwner(ctx context.Context, ownerID domain.UserID) (int, error) {
	return s.deleteWhere(ctx, `owner_id = ?`, ownerID)
}

// DeleteByNode removes a source entity's chunks. Edges go with them.
func (s *chunkStore) DeleteByNode(ctx context.Context, nodeID string) (int, error) {
	if nodeID == "" {
		return 0, fmt.Errorf("%w: node id is required", domain.ErrInvalidInput)
	}
	return s.deleteWhere(ctx, `node_id = ?`, nodeID)
}

// Stats returns content counts.
func (s *chunkStore) Stats(ctx context.Context) (*domain.StoreStats, error) {
	var stats domain.StoreStats
	row := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT owner_id), COUNT(DISTINCT tenant_id) FROM chunks
	`)
	if err := row.Scan(&stats.Chunks, &stats.Owners, &stats.Tenants); err != nil {
		return nil, fmt.Errorf("counting chunks: %w", err)
	}
	if err := s.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM edges`).Scan(&stats.Edges); err != nil {
		return nil, fmt.Errorf("counting edges: %w", err)
	}
	return &stats, nil
}

func (s *chunkStore) list(ctx context.Context, where string, arg any) ([]*domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks WHERE `+where+` ORDER BY created_at, id`, arg)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []*domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// deleteWhere removes edges explicitly before chunks so the cascade does not
// depend on the connection's foreign_keys pragma.
func (s *chunkStore) deleteWhere(ctx context.Context, where string, arg any) (int, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	selectIDs := `SELECT id FROM chunks WHERE ` + where
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM edges WHERE src_chunk_id IN (`+selectIDs+`) OR dst_chunk_id IN (`+selectIDs+`)`,
		arg, arg); err != nil {
		return 0, fmt.Errorf("deleting edges: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE `+where, arg)
	if err != nil {
		return 0, fmt.Errorf("deleting chunks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted chunks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return int(n), nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// chunkRow holds the raw columns of a chunk row.
type chunkRow struct {
	chunk         domain.Chunk
	embeddingBlob []byte
	metaJSON      string
	createdAt     int64
	updatedAt     int64
}

// dest returns scan targets in chunkColumns order.
func (r *chunkRow) dest() []any {
	return []any{&r.chunk.ID, &r.chunk.OwnerID, &r.chunk.NodeID, &r.chunk.Text, &r.embeddingBlob,
		&r.chunk.EntityType, &r.metaJSON, &r.chunk.TenantID, &r.createdAt, &r.updatedAt}
}

func (r *chunkRow) toChunk() (*domain.Chunk, error) {
	meta, err := unmarshalMeta(r.metaJSON)
	if err != nil {
		return nil, err
	}
	chunk := r.chunk
	chunk.Meta = meta
	chunk.Embedding = bytesToFloat32Slice(r.embeddingBlob)
	chunk.CreatedAt = fromUnixNano(r.createdAt)
	chunk.UpdatedAt = fromUnixNano(r.updatedAt)
	return &chunk, nil
}

// scanChunk scans a row selected with chunkColumns.
func scanChunk(row rowScanner) (*domain.Chunk, error) {
	var r chunkRow
	if err := row.Scan(r.dest()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	return r.toChunk()
}
