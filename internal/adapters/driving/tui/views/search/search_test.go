package search

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driving/tui/messages"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

type mockSearchService struct {
	got  domain.SearchRequest
	resp *domain.SearchResponse
	err  error
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	m.got = req
	return m.resp, m.err
}

type mockExperienceService struct {
	nodeID  string
	refresh bool
}

func (m *mockExperienceService) GetMatches(
	_ context.Context, nodeID string, opts domain.ExperienceMatchOptions,
) (*domain.ExperienceMatches, error) {
	m.nodeID = nodeID
	m.refresh = opts.ForceRefresh
	return &domain.ExperienceMatches{
		NodeID:      nodeID,
		SearchQuery: "Backend engineer",
		Matches:     testResults(),
		LastUpdated: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	}, nil
}

func (m *mockExperienceService) Invalidate(_ context.Context, _ string) error { return nil }

func testResults() []domain.MatchResult {
	return []domain.MatchResult{
		{
			UserID:     1,
			Score:      0.91,
			WhyMatched: []string{"Similar experience"},
			MatchedNodes: []domain.MatchedNode{
				{EntityType: "job", Snippet: "Payments backend", Signal: domain.SignalSimilarity, Score: 0.91},
			},
		},
		{UserID: 2, Score: 0.4, WhyMatched: []string{"Similar skills and overlapping timeline"}},
	}
}

func typeText(v *View, text string) *View {
	for _, r := range text {
		v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, &mockSearchService{})
	assert.Equal(t, ModeQuery, v.Mode())
	assert.True(t, v.InputFocused())
	assert.Equal(t, "Initialising...", v.View())

	m := NewMatchesView(nil, nil, &mockExperienceService{})
	assert.Equal(t, ModeNode, m.Mode())
}

func TestView_SubmitSearch(t *testing.T) {
	svc := &mockSearchService{resp: &domain.SearchResponse{Results: testResults()}}
	v := NewView(nil, nil, svc)
	v.SetDimensions(100, 40)

	v = typeText(v, "payments")
	assert.Equal(t, "payments", v.Query())

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, v.InputFocused())

	msg := cmd()
	assert.Equal(t, "payments", svc.got.Query)

	v, _ = v.Update(msg)
	require.Len(t, v.Results(), 2)
	out := v.View()
	assert.Contains(t, out, "Profiles (2)")
	assert.Contains(t, out, "user 1")
	assert.Contains(t, out, "Payments backend")
	assert.Contains(t, out, "2 profiles")
}

func TestView_EmptySubmitIgnored(t *testing.T) {
	v := NewView(nil, nil, &mockSearchService{})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.True(t, v.InputFocused())
}

func TestView_SearchError(t *testing.T) {
	v := NewView(nil, nil, &mockSearchService{err: domain.ErrEmptyQueryEmbedding})
	v.SetDimensions(100, 40)
	v = typeText(v, "x")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v, _ = v.Update(cmd())

	assert.ErrorIs(t, v.Err(), domain.ErrEmptyQueryEmbedding)
	assert.Contains(t, v.View(), "Error:")
}

func TestView_NoService(t *testing.T) {
	v := NewView(nil, nil, nil)
	v = typeText(v, "x")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, messages.ErrorOccurred{Err: ErrNoSearchService}, cmd())

	m := NewMatchesView(nil, nil, nil)
	m = typeText(m, "n1")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, messages.ErrorOccurred{Err: ErrNoExperienceService}, cmd())
}

func TestView_NavigateAndOpen(t *testing.T) {
	v := NewView(nil, nil, &mockSearchService{})
	v.SetDimensions(100, 40)
	v, _ = v.Update(messages.SearchCompleted{Results: testResults()})

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, v.SelectedIndex())
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, v.SelectedIndex())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	sel, ok := cmd().(messages.ResultSelected)
	require.True(t, ok)
	assert.Equal(t, domain.UserID(1), sel.Result.UserID)
	assert.Equal(t, messages.ViewSearch, sel.From)
}

func TestView_NewSearchRefocuses(t *testing.T) {
	v := NewView(nil, nil, &mockSearchService{})
	v.SetQuery("old")
	v, _ = v.Update(messages.SearchCompleted{Results: testResults()})
	require.False(t, v.InputFocused())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	assert.True(t, v.InputFocused())
	assert.Empty(t, v.Query())
}

func TestView_EscReturnsToMenu(t *testing.T) {
	v := NewView(nil, nil, &mockSearchService{})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestMatchesView_LoadAndRefresh(t *testing.T) {
	svc := &mockExperienceService{}
	v := NewMatchesView(nil, nil, svc)
	v.SetDimensions(100, 40)
	v = typeText(v, "n1")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v, _ = v.Update(cmd())
	assert.Equal(t, "n1", svc.nodeID)
	assert.False(t, svc.refresh)
	assert.Len(t, v.Results(), 2)
	assert.Contains(t, v.View(), "Query: Backend engineer")

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.NotNil(t, cmd)
	cmd()
	assert.True(t, svc.refresh)
}

func TestView_Reset(t *testing.T) {
	v := NewView(nil, nil, &mockSearchService{})
	v, _ = v.Update(messages.SearchCompleted{Results: testResults()})
	v, _ = v.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	v.Reset()
	assert.True(t, v.InputFocused())
	assert.Empty(t, v.Results())
	assert.NoError(t, v.Err())
}
