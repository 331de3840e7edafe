// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driving/tui/styles"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

// linesPerResult is the height of one rendered profile.
const linesPerResult = 3

// MatchList displays ranked profiles in a navigable list.
type MatchList struct {
	results  []domain.MatchResult
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewMatchList creates an empty list.
func NewMatchList(s *styles.Styles) *MatchList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &MatchList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Update handles list navigation keys.
func (l *MatchList) Update(msg tea.Msg) (*MatchList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the visible window of the list.
func (l *MatchList) View() string {
	if len(l.results) == 0 {
		return l.styles.Muted.Render("No matches")
	}

	lines := make([]string, 0, len(l.results)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Profiles (%d)", len(l.results))), "")

	visible := max(1, (l.height-2)/linesPerResult)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.results))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderResult(i, &l.results[i]))
	}
	return strings.Join(lines, "\n")
}

// renderResult formats one profile: header line, reasons, best chunk.
func (l *MatchList) renderResult(index int, r *domain.MatchResult) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	title := fmt.Sprintf("%suser %d", indicator, r.UserID)
	score := fmt.Sprintf("%.3f", r.Score)
	var head string
	if index == l.selected {
		head = l.styles.Selected.Render(title) + "  " + l.styles.Score.Render(score)
	} else {
		head = l.styles.Normal.Render(title) + "  " + l.styles.Muted.Render(score)
	}

	reasons := l.styles.Muted.Render("    " + truncate(strings.Join(r.WhyMatched, "; "), l.width-6))

	best := ""
	if len(r.MatchedNodes) > 0 {
		n := r.MatchedNodes[0]
		best = "    " + l.styles.Signal(n.Signal).Render(fmt.Sprintf("[%s]", n.Signal)) +
			" " + truncate(n.Snippet, l.width-20)
	}
	return head + "\n" + reasons + "\n" + best
}

func truncate(s string, n int) string {
	n = max(n, 10)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// SetResults replaces the list and resets the selection.
func (l *MatchList) SetResults(results []domain.MatchResult) {
	l.results = results
	l.selected = 0
}

// Results returns the current results.
func (l *MatchList) Results() []domain.MatchResult {
	return l.results
}

// Selected returns the index of the selected result.
func (l *MatchList) Selected() int {
	return l.selected
}

// SelectedResult returns the selected result, or nil if the list is empty.
func (l *MatchList) SelectedResult() *domain.MatchResult {
	if l.selected < 0 || l.selected >= len(l.results) {
		return nil
	}
	return &l.results[l.selected]
}

// MoveUp moves selection up.
func (l *MatchList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *MatchList) MoveDown() {
	if l.selected < len(l.results)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *MatchList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of results.
func (l *MatchList) Count() int {
	return len(l.results)
}
