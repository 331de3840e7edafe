// Package search provides the query views of the TUI: free-text profile
// search and experience matches for a subject node.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driving/tui/components/input"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driving/tui/components/list"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driving/tui/components/status"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driving/tui/keymap"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driving/tui/messages"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driving/tui/styles"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/domain"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/core/ports/driving"
)

// Mode selects what the input is interpreted as.
type Mode int

const (
	// ModeQuery runs a free-text search.
	ModeQuery Mode = iota
	// ModeNode loads the experience matches of a node id.
	ModeNode
)

// View is an input, a ranked profile list and a status bar.
type View struct {
	mode      Mode
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.MatchList
	statusbar *status.Bar

	searchService     driving.SearchService
	experienceService driving.ExperienceMatchService
	ctx               context.Context

	// matches is the last payload loaded in ModeNode.
	matches *domain.ExperienceMatches

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool
}

// NewView creates a free-text search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService) *View {
	v := newView(ModeQuery, s, km)
	v.searchService = searchService
	v.input = input.NewQueryInput(v.styles, "Search", "Describe the experience you are looking for...")
	return v
}

// NewMatchesView creates a view that loads experience matches by node id.
func NewMatchesView(s *styles.Styles, km *keymap.KeyMap, experienceService driving.ExperienceMatchService) *View {
	v := newView(ModeNode, s, km)
	v.experienceService = experienceService
	v.input = input.NewQueryInput(v.styles, "Node", "Subject node id...")
	return v
}

func newView(mode Mode, s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		mode:       mode,
		styles:     s,
		keymap:     km,
		list:       list.NewMatchList(s),
		statusbar:  status.NewBar(s, km),
		ctx:        context.Background(),
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.showResults(msg.Results, msg.Err, "")
		return v, nil

	case messages.MatchesLoaded:
		if msg.Err != nil {
			v.showResults(nil, msg.Err, "")
			return v, nil
		}
		v.matches = msg.Matches
		v.showResults(msg.Matches.Matches, nil, "updated "+msg.Matches.LastUpdated.Local().Format(time.TimeOnly))
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			value := strings.TrimSpace(v.input.Value())
			if value == "" {
				return v, nil
			}
			return v, v.submit(value, false)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	if msg.Type == tea.KeyEnter {
		if r := v.list.SelectedResult(); r != nil {
			selected := r.Clone()
			from := v.viewType()
			return v, func() tea.Msg {
				return messages.ResultSelected{Result: selected, From: from}
			}
		}
		return v, nil
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.NewSearch):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	case v.mode == ModeNode && keymap.Matches(msg.String(), v.keymap.Refresh):
		if value := strings.TrimSpace(v.input.Value()); value != "" {
			return v, v.submit(value, true)
		}
		return v, nil
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

// submit starts the service call for the input value.
func (v *View) submit(value string, refresh bool) tea.Cmd {
	v.focusInput = false
	v.input.Blur()
	v.statusbar.SetState(status.StateLoading)

	if v.mode == ModeNode {
		return v.loadMatches(value, refresh)
	}
	return v.performSearch(value)
}

func (v *View) performSearch(query string) tea.Cmd {
	ctx, svc := v.ctx, v.searchService
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		resp, err := svc.Search(ctx, domain.SearchRequest{Query: query})
		if err != nil {
			return messages.SearchCompleted{Err: err}
		}
		return messages.SearchCompleted{Results: resp.Results}
	}
}

func (v *View) loadMatches(nodeID string, refresh bool) tea.Cmd {
	ctx, svc := v.ctx, v.experienceService
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoExperienceService}
		}
		m, err := svc.GetMatches(ctx, nodeID, domain.ExperienceMatchOptions{ForceRefresh: refresh})
		return messages.MatchesLoaded{Matches: m, Err: err}
	}
}

func (v *View) showResults(results []domain.MatchResult, err error, note string) {
	if err != nil {
		v.setError(err)
		return
	}
	v.err = nil
	v.list.SetResults(results)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(results))
	v.statusbar.SetMessage(note)
	if v.mode == ModeNode {
		v.statusbar.SetHints(v.keymap.MatchesHelp())
	} else {
		v.statusbar.SetHints(v.keymap.ResultsHelp())
	}
	v.focusInput = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) viewType() messages.ViewType {
	if v.mode == ModeNode {
		return messages.ViewMatches
	}
	return messages.ViewSearch
}

// View renders the view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	title := "Profile search"
	if v.mode == ModeNode {
		title = "Experience matches"
	}
	sections := []string{v.styles.Title.Render(title), "", v.input.View(), ""}

	if v.mode == ModeNode && v.matches != nil && v.matches.SearchQuery != "" {
		sections = append(sections, v.styles.Muted.Render("Query: "+v.matches.SearchQuery), "")
	}
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err)), "")
	}
	sections = append(sections, v.list.View(), "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

// Mode returns what the input is interpreted as.
func (v *View) Mode() Mode {
	return v.mode
}

// Query returns the current input value.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the input value.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Results returns the listed profiles.
func (v *View) Results() []domain.MatchResult {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected profile.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset returns the view to input mode with no results.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.matches = nil
	v.err = nil
	v.statusbar.Clear()
	v.statusbar.SetHints(v.keymap.ShortHelp())
}
