package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

func TestSeedRetriever_EmptyEmbedding(t *testing.T) {
	r := NewSeedRetriever(newTestStore(), 10)

	_, err := r.Retrieve(context.Background(), domain.SearchRequest{})
	assert.ErrorIs(t, err, domain.ErrEmptyQueryEmbedding)

	_, err = r.Retrieve(context.Background(), domain.SearchRequest{QueryEmbedding: []float32{0, 0, 0}})
	assert.ErrorIs(t, err, domain.ErrEmptyQueryEmbedding)
}

func TestSeedRetriever_OrderPoolAndThreshold(t *testing.T) {
	store := newTestStore()
	low := addChunk(t, store, chunkSpec{owner: 1, sim: 0.2})
	high := addChunk(t, store, chunkSpec{owner: 2, sim: 0.9})
	mid := addChunk(t, store, chunkSpec{owner: 3, sim: 0.6})

	seeds, err := NewSeedRetriever(store, 10).Retrieve(context.Background(), domain.SearchRequest{QueryEmbedding: queryVec})
	require.NoError(t, err)
	require.Len(t, seeds, 3)
	assert.Equal(t, []domain.ChunkID{high.ID, mid.ID, low.ID},
		[]domain.ChunkID{seeds[0].Chunk.ID, seeds[1].Chunk.ID, seeds[2].Chunk.ID})
	assert.InDelta(t, 0.9, seeds[0].Similarity, 1e-6)

	pooled, err := NewSeedRetriever(store, 2).Retrieve(context.Background(), domain.SearchRequest{QueryEmbedding: queryVec})
	require.NoError(t, err)
	assert.Len(t, pooled, 2)

	threshold := 0.5
	cut, err := NewSeedRetriever(store, 10).Retrieve(context.Background(), domain.SearchRequest{
		QueryEmbedding:      queryVec,
		SimilarityThreshold: &threshold,
	})
	require.NoError(t, err)
	require.Len(t, cut, 2)
	assert.Equal(t, mid.ID, cut[1].Chunk.ID)
}

func TestSeedRetriever_DropsNonPositiveSimilarity(t *testing.T) {
	store := newTestStore()
	addChunk(t, store, chunkSpec{owner: 1, sim: 0.7})
	addChunk(t, store, chunkSpec{owner: 2, sim: 0})

	seeds, err := NewSeedRetriever(store, 10).Retrieve(context.Background(), domain.SearchRequest{QueryEmbedding: queryVec})
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	assert.Equal(t, domain.UserID(1), seeds[0].Chunk.OwnerID)
}

func TestSeedRetriever_Filters(t *testing.T) {
	store := newTestStore()
	addChunk(t, store, chunkSpec{owner: 1, sim: 0.9})
	addChunk(t, store, chunkSpec{owner: 2, sim: 0.8, tenant: "acme"})
	kept := addChunk(t, store, chunkSpec{owner: 3, sim: 0.7})
	addChunk(t, store, chunkSpec{owner: 4, sim: 0.95, age: 400 * 24 * time.Hour})

	exclude := domain.UserID(1)
	since := testNow.AddDate(0, 0, -30)
	req := domain.SearchRequest{QueryEmbedding: queryVec, ExcludeUserID: &exclude, Since: &since}
	require.NoError(t, req.Normalize())

	seeds, err := NewSeedRetriever(store, 10).Retrieve(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	assert.Equal(t, kept.ID, seeds[0].Chunk.ID)
}

func TestSeedRetriever_WrongDimension(t *testing.T) {
	_, err := NewSeedRetriever(newTestStore(), 10).Retrieve(context.Background(), domain.SearchRequest{
		QueryEmbedding: []float32{1, 0},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEmbeddingDimension)
}
