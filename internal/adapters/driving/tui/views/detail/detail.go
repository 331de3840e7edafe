// Package detail shows the contributing chunks of one matched profile.
package detail

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driving/tui/messages"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driving/tui/styles"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
)

// View is the profile detail view.
type View struct {
	styles *styles.Styles

	result       *domain.MatchResult
	back         messages.ViewType
	scrollOffset int
	width        int
	height       int
	ready        bool
}

// NewView creates an empty detail view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{styles: s, back: messages.ViewSearch, width: 80, height: 24}
}

// SetResult sets the profile to show and the view esc returns to.
func (v *View) SetResult(r domain.MatchResult, back messages.ViewType) {
	v.result = &r
	v.back = back
	v.scrollOffset = 0
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.scrollOffset > 0 {
				v.scrollOffset--
			}
		case "down", "j":
			if v.scrollOffset < v.maxScrollOffset() {
				v.scrollOffset++
			}
		case "esc":
			back := v.back
			return v, func() tea.Msg {
				return messages.ViewChanged{View: back}
			}
		}
	}
	return v, nil
}

func (v *View) visibleLines() int {
	return max(1, v.height-6)
}

func (v *View) maxScrollOffset() int {
	return max(0, len(v.buildContent())-v.visibleLines())
}

// buildContent lays out reasons and one block per matched node.
func (v *View) buildContent() []string {
	if v.result == nil {
		return nil
	}
	r := v.result

	lines := []string{
		fmt.Sprintf("%-10s %d", "User:", r.UserID),
		fmt.Sprintf("%-10s %.3f", "Score:", r.Score),
	}
	if len(r.WhyMatched) > 0 {
		lines = append(lines, "", "Why matched:")
		for _, w := range r.WhyMatched {
			lines = append(lines, "  - "+w)
		}
	}

	lines = append(lines, "", fmt.Sprintf("Matched nodes (%d):", len(r.MatchedNodes)))
	for _, n := range r.MatchedNodes {
		label := n.EntityType
		if n.NodeID != "" {
			label += " " + n.NodeID
		}
		lines = append(lines,
			"",
			fmt.Sprintf("  %s  %s  %.3f", label, v.styles.Signal(n.Signal).Render(string(n.Signal)), n.Score),
			fmt.Sprintf("    similarity %.3f  graph %.3f  recency %.3f",
				n.DirectSimilarity, n.GraphScore, n.RecencyScore),
			"    "+n.Snippet,
		)
	}
	return lines
}

// View renders the detail view.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Profile"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(0, min(v.width-4, 60))))
	b.WriteString("\n\n")

	lines := v.buildContent()
	if len(lines) == 0 {
		b.WriteString(v.styles.Muted.Render("No profile selected"))
	} else {
		end := min(v.scrollOffset+v.visibleLines(), len(lines))
		b.WriteString(strings.Join(lines[v.scrollOffset:end], "\n"))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("[j/k] Scroll  [esc] Back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Result returns the profile being shown.
func (v *View) Result() *domain.MatchResult {
	return v.result
}
