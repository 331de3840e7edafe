package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driven"
)

// ==================== Edge Store ====================

// edgeStore implements driven.EdgeStore.
type edgeStore struct {
	store *Store
}

var _ driven.EdgeStore = (*edgeStore)(nil)

const (
	edgeColumns = `e.id, e.src_chunk_id, e.dst_chunk_id, e.rel_type, e.weight, e.directed, e.meta, e.created_at`

	neighborColumns = `c.id, c.owner_id, c.node_id, c.text, c.embedding, c.entity_type, c.meta, c.tenant_id, c.created_at, c.updated_at`
)

// AddEdge stores an edge between two existing chunks.
func (s *edgeStore) AddEdge(ctx context.Context, edge *domain.Edge) (domain.EdgeID, error) {
	metaJSON, err := marshalMeta(edge.Meta)
	if err != nil {
		return 0, err
	}

	createdAt := edge.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.store.now()
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, id := range []domain.ChunkID{edge.SrcChunkID, edge.DstChunkID} {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM chunks WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: chunk %d", domain.ErrDanglingReference, id)
		}
		if err != nil {
			return 0, fmt.Errorf("checking chunk %d: %w", id, err)
		}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO edges (src_chunk_id, dst_chunk_id, rel_type, weight, directed, meta, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, edge.SrcChunkID, edge.DstChunkID, string(edge.RelType), edge.Weight,
		boolToInt(edge.Directed), metaJSON, toUnixNano(createdAt))
	if err != nil {
		return 0, fmt.Errorf("saving edge: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading edge id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	edge.ID = domain.EdgeID(id)
	return edge.ID, nil
}

// GetEdge retrieves an edge by ID.
func (s *edgeStore) GetEdge(ctx context.Context, id domain.EdgeID) (*domain.Edge, error) {
	var r edgeRow
	err := s.store.db.QueryRowContext(ctx, `SELECT `+edgeColumns+` FROM edges e WHERE e.id = ?`, id).Scan(r.dest()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning edge: %w", err)
	}
	return r.toEdge()
}

// Adjacent returns outgoing edges plus incoming undirected edges, by edge ID.
func (s *edgeStore) Adjacent(ctx context.Context, id domain.ChunkID) ([]domain.Adjacency, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+edgeColumns+`, `+neighborColumns+`
		FROM edges e JOIN chunks c ON c.id = e.dst_chunk_id
		WHERE e.src_chunk_id = ?
		UNION ALL
		SELECT `+edgeColumns+`, `+neighborColumns+`
		FROM edges e JOIN chunks c ON c.id = e.src_chunk_id
		WHERE e.dst_chunk_id = ? AND e.directed = 0 AND e.src_chunk_id != e.dst_chunk_id
		ORDER BY 1
	`, id, id)
	if err != nil {
		return nil, fmt.Errorf("querying adjacent edges: %w", err)
	}
	defer rows.Close()

	var adj []domain.Adjacency
	for rows.Next() {
		var er edgeRow
		var cr chunkRow
		if err := rows.Scan(append(er.dest(), cr.dest()...)...); err != nil {
			return nil, fmt.Errorf("scanning adjacency: %w", err)
		}
		edge, err := er.toEdge()
		if err != nil {
			return nil, err
		}
		neighbor, err := cr.toChunk()
		if err != nil {
			return nil, err
		}
		adj = append(adj, domain.Adjacency{Edge: edge, Neighbor: neighbor})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating adjacent edges: %w", err)
	}
	return adj, nil
}

// edgeRow holds the raw columns of an edge row.
type edgeRow struct {
	edge      domain.Edge
	relType   string
	directed  int
	metaJSON  string
	createdAt int64
}

// dest returns scan targets in edgeColumns order.
func (r *edgeRow) dest() []any {
	return []any{&r.edge.ID, &r.edge.SrcChunkID, &r.edge.DstChunkID, &r.relType,
		&r.edge.Weight, &r.directed, &r.metaJSON, &r.createdAt}
}

func (r *edgeRow) toEdge() (*domain.Edge, error) {
	meta, err := unmarshalMeta(r.metaJSON)
	if err != nil {
		return nil, err
	}
	edge := r.edge
	edge.RelType = domain.RelType(r.relType)
	edge.Directed = r.directed != 0
	edge.Meta = meta
	edge.CreatedAt = fromUnixNano(r.createdAt)
	return &edge, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
