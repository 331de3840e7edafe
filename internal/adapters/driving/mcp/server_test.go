package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil search service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingSearchService)
	})

	t.Run("search only", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("all ports", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Search:     &mockSearchService{},
			Experience: &mockExperienceService{},
			Ingest:     &mockIngestService{},
			Status:     &mockStatusService{},
		})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}
