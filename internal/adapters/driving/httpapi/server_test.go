package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driven/storage/memory"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driving"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/services"
)

type mockExperienceService struct {
	matches     *domain.ExperienceMatches
	err         error
	opts        domain.ExperienceMatchOptions
	invalidated []string
}

func (m *mockExperienceService) GetMatches(
	_ context.Context, _ string, opts domain.ExperienceMatchOptions,
) (*domain.ExperienceMatches, error) {
	m.opts = opts
	return m.matches, m.err
}

func (m *mockExperienceService) Invalidate(_ context.Context, nodeID string) error {
	m.invalidated = append(m.invalidated, nodeID)
	return nil
}

type mockStatusService struct {
	status *driving.Status
}

func (m *mockStatusService) Status(_ context.Context) (*driving.Status, error) {
	return m.status, nil
}

type testServer struct {
	handler    http.Handler
	experience *mockExperienceService
	status     *mockStatusService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore(3)
	settings := domain.DefaultAppSettings().Retrieval
	settings.Dimensions = 3

	retriever := services.NewRetriever(store, store, settings)
	experience := &mockExperienceService{}
	status := &mockStatusService{status: &driving.Status{Healthy: true, Embedding: "not configured"}}

	srv, err := New(domain.ServerSettings{Mode: gin.TestMode}, Ports{
		Search:     services.NewSearchService(retriever, nil, nil),
		Experience: experience,
		Ingest:     services.NewIngestService(store, store, nil),
		Status:     status,
	})
	require.NoError(t, err)

	return &testServer{handler: srv.Handler(), experience: experience, status: status}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestNew_RequiresSearch(t *testing.T) {
	_, err := New(domain.ServerSettings{}, Ports{})
	assert.ErrorIs(t, err, ErrMissingSearchService)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(headerRequestID))
	assert.True(t, decode[driving.Status](t, w).Healthy)

	ts.status.status = &driving.Status{Healthy: false, Errors: []string{"store: closed"}}
	w = ts.do(t, http.MethodGet, "/health", nil, headerRequestID, "req-1")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "req-1", w.Header().Get(headerRequestID))
}

func TestSearch_GraphExpansion(t *testing.T) {
	ts := newTestServer(t)

	a := ts.do(t, http.MethodPost, "/api/v1/chunks", chunkRequest{
		OwnerID: 1, NodeID: "a", Text: "Go backend", EntityType: "job",
		Embedding: []float32{0.9, float32(math.Sqrt(1 - 0.81)), 0},
	})
	require.Equal(t, http.StatusCreated, a.Code, a.Body.String())
	b := ts.do(t, http.MethodPost, "/api/v1/chunks", chunkRequest{
		OwnerID: 2, NodeID: "b", Text: "Kubernetes", EntityType: "project",
		Embedding: []float32{0, 1, 0},
	})
	require.Equal(t, http.StatusCreated, b.Code)

	weight := 0.8
	e := ts.do(t, http.MethodPost, "/api/v1/edges", edgeRequest{
		Src:     domain.ChunkID(decode[idResponse](t, a).ID),
		Dst:     domain.ChunkID(decode[idResponse](t, b).ID),
		RelType: domain.RelSimilarRole,
		Weight:  &weight,
	})
	require.Equal(t, http.StatusCreated, e.Code, e.Body.String())

	w := ts.do(t, http.MethodPost, "/api/v1/search", searchRequest{Embedding: []float32{1, 0, 0}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[domain.SearchResponse](t, w)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, domain.UserID(1), resp.Results[0].UserID)
	assert.InDelta(t, 0.91, resp.Results[0].Score, 1e-3)
	assert.Equal(t, domain.UserID(2), resp.Results[1].UserID)
	assert.InDelta(t, 0.3*0.36+0.1, resp.Results[1].Score, 1e-3)
	assert.Equal(t, domain.SignalGraph, resp.Results[1].MatchedNodes[0].Signal)
}

func TestSearch_Errors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		body   any
		header []string
		status int
		code   string
	}{
		{"malformed body", "not an object", nil, http.StatusBadRequest, "invalid_input"},
		{"limit too large", searchRequest{Embedding: []float32{1, 0, 0}, Limit: 101}, nil, http.StatusBadRequest, "invalid_input"},
		{"text without embedder", searchRequest{Query: "go"}, nil, http.StatusBadRequest, "invalid_input"},
		{"wrong dimension", searchRequest{Embedding: []float32{1, 0}}, nil, http.StatusBadRequest, "invalid_input"},
		{"bad user header", searchRequest{Embedding: []float32{1, 0, 0}}, []string{headerUserID, "x"}, http.StatusBadRequest, "invalid_input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/v1/search", tt.body, tt.header...)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			body := decode[errorBody](t, w)
			assert.Equal(t, tt.code, body.Error)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestExperienceMatches(t *testing.T) {
	ts := newTestServer(t)
	ts.experience.matches = &domain.ExperienceMatches{NodeID: "job-1", MatchCount: 0, Matches: []domain.MatchResult{}}

	w := ts.do(t, http.MethodGet, "/api/v1/nodes/job-1/experience-matches?forceRefresh=true", nil, headerUserID, "17")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "job-1", decode[domain.ExperienceMatches](t, w).NodeID)
	assert.True(t, ts.experience.opts.ForceRefresh)
	assert.Equal(t, domain.UserID(17), ts.experience.opts.RequestingUserID)

	w = ts.do(t, http.MethodGet, "/api/v1/nodes/job-1/experience-matches?forceRefresh=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ts.experience.err = domain.ErrRetrievalTimeout
	w = ts.do(t, http.MethodGet, "/api/v1/nodes/job-1/experience-matches", nil)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, "timeout", decode[errorBody](t, w).Error)

	w = ts.do(t, http.MethodDelete, "/api/v1/nodes/job-1/experience-matches", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"job-1"}, ts.experience.invalidated)
}

func TestChunkAndEdgeRoutes(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/chunks", chunkRequest{
		OwnerID: 5, NodeID: "n1", Text: "Data platform", EntityType: "job",
		Embedding: []float32{0, 0, 2}, TenantID: "acme",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[idResponse](t, w).ID

	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/chunks/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[chunkView](t, w)
	assert.Equal(t, domain.UserID(5), view.OwnerID)
	assert.Equal(t, "acme", view.TenantID)
	assert.Equal(t, 3, view.Dimensions)

	w = ts.do(t, http.MethodPut, fmt.Sprintf("/api/v1/chunks/%d/meta", id), metaRequest{Meta: map[string]any{"title": "Lead"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(t, http.MethodGet, "/api/v1/nodes/n1/chunks", nil)
	views := decode[[]chunkView](t, w)
	require.Len(t, views, 1)
	assert.Equal(t, "Lead", views[0].Meta["title"])

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/v1/chunks/99", nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/v1/chunks/abc", nil).Code)

	w = ts.do(t, http.MethodPost, "/api/v1/edges", edgeRequest{Src: domain.ChunkID(id), Dst: 99, RelType: domain.RelSameOwner})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/v1/chunks", chunkRequest{OwnerID: 5, Text: "x", EntityType: "job", Embedding: []float32{1}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/owners/5/chunks", nil)
	assert.Len(t, decode[[]chunkView](t, w), 1)
	w = ts.do(t, http.MethodDelete, "/api/v1/owners/5", nil)
	assert.Equal(t, 1, decode[deletedResponse](t, w).Deleted)
}

func TestImport(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/import", domain.ImportBundle{
		Chunks: []domain.ImportChunk{
			{Key: "a", OwnerID: 1, Text: "A", EntityType: "job", Embedding: []float32{1, 0, 0}},
			{Key: "b", OwnerID: 2, Text: "B", EntityType: "job", Embedding: []float32{0, 1, 0}},
		},
		Edges: []domain.ImportEdge{{Src: "a", Dst: "b", RelType: domain.RelSimilarRole}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	summary := decode[domain.ImportSummary](t, w)
	assert.Equal(t, 2, summary.Chunks)
	assert.Equal(t, 1, summary.Edges)

	w = ts.do(t, http.MethodPost, "/api/v1/import", domain.ImportBundle{
		Chunks: []domain.ImportChunk{{Key: "c", OwnerID: 3, Text: "C", EntityType: "job", Embedding: []float32{0, 0, 1}}},
		Edges:  []domain.ImportEdge{{Src: "c", Dst: "missing", RelType: domain.RelSimilarRole}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[struct {
		Error   string               `json:"error"`
		Details domain.ImportSummary `json:"details"`
	}](t, w)
	assert.Equal(t, "dangling_reference", body.Error)
	assert.Equal(t, 1, body.Details.Chunks)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.ErrEmptyQueryEmbedding, http.StatusBadRequest},
		{domain.ErrDanglingReference, http.StatusUnprocessableEntity},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrPermissionDenied, http.StatusForbidden},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{domain.ErrEmbeddingUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _ := statusFor(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
	}
}
