package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBar(t *testing.T) {
	b := NewBar(nil, nil)
	assert.Equal(t, StateReady, b.State())
	assert.Contains(t, b.View(), "Ready")
	assert.Contains(t, b.View(), "enter")
}

func TestBar_States(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetWidth(120)

	b.SetState(StateLoading)
	assert.Contains(t, b.View(), "Matching...")

	b.SetState(StateError)
	assert.Contains(t, b.View(), "Error")
	b.SetMessage("boom")
	assert.Contains(t, b.View(), "Error: boom")

	b.SetState(StateResults)
	b.SetResultCount(4)
	b.SetMessage("updated 12:00:00")
	assert.Contains(t, b.View(), "4 profiles · updated 12:00:00")
}

func TestBar_Clear(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetState(StateResults)
	b.SetResultCount(3)
	b.SetMessage("x")

	b.Clear()
	assert.Equal(t, StateReady, b.State())
	assert.Empty(t, b.Message())
}
