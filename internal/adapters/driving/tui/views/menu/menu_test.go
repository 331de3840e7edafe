package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driving/tui/messages"
)

func TestNewView_Items(t *testing.T) {
	v := NewView(nil, true)
	labels := make([]string, 0, len(v.Items()))
	for _, item := range v.Items() {
		labels = append(labels, item.Label)
	}
	assert.Equal(t, []string{"Search profiles", "Experience matches", "Help", "Quit"}, labels)

	assert.Len(t, NewView(nil, false).Items(), 3)
}

func TestView_Navigation(t *testing.T) {
	v := NewView(nil, false)

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, v.Selected())

	for i := 0; i < 5; i++ {
		v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	}
	assert.Equal(t, 2, v.Selected())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, v.Selected())
}

func TestView_EnterChangesView(t *testing.T) {
	v := NewView(nil, true)
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMatches}, cmd())
}

func TestView_Quit(t *testing.T) {
	v := NewView(nil, false)
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestView_Render(t *testing.T) {
	v := NewView(nil, true)
	assert.Equal(t, "Initialising...", v.View())

	v.SetDimensions(80, 24)
	out := v.View()
	assert.Contains(t, out, "matchgraph")
	assert.Contains(t, out, "Experience matches")
}
