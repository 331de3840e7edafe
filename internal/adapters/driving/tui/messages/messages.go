// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

// SearchCompleted carries ranked profiles back to the model.
type SearchCompleted struct {
	Results []domain.MatchResult
	Err     error
}

// MatchesLoaded carries the experience matches of a subject node.
type MatchesLoaded struct {
	Matches *domain.ExperienceMatches
	Err     error
}

// ResultSelected is sent when a profile is opened from a result list.
type ResultSelected struct {
	Result domain.MatchResult
	From   ViewType
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch ranks profiles for a free-text query.
	ViewSearch
	// ViewMatches shows the experience matches of a node.
	ViewMatches
	// ViewDetail shows one profile's contributing chunks.
	ViewDetail
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewMatches:
		return "matches"
	case ViewDetail:
		return "detail"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
