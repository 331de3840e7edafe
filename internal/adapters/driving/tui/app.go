package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driving/tui/keymap"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driving/tui/messages"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driving/tui/styles"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driving/tui/views/detail"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driving/tui/views/menu"
	"github.com/Light-houseAI/lighthouse-journey-canvas-sub002/internal/adapters/driving/tui/views/search"
)

// App is the root Bubbletea model. It routes messages to the active view.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView    *menu.View
	searchView  *search.View
	matchesView *search.View
	detailView  *detail.View

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the application for the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		menuView:    menu.NewView(s, ports.Experience != nil),
		searchView:  search.NewView(s, km, ports.Search),
		matchesView: search.NewMatchesView(s, km, ports.Experience),
		detailView:  detail.NewView(s),
		currentView: messages.ViewMenu,
	}, nil
}

// WithContext sets the context for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.matchesView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("matchgraph")
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewSearch:
			a.searchView.Reset()
			return a, a.searchView.Init()
		case messages.ViewMatches:
			a.matchesView.Reset()
			return a, a.matchesView.Init()
		case messages.ViewMenu, messages.ViewDetail, messages.ViewHelp:
		}
		return a, nil

	case messages.ResultSelected:
		a.detailView.SetResult(msg.Result, msg.From)
		a.currentView = messages.ViewDetail
		return a, nil

	case messages.SearchCompleted:
		a.err = msg.Err
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.MatchesLoaded:
		a.err = msg.Err
		a.matchesView, cmd = a.matchesView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err

	case messages.Quit:
		return a, tea.Quit
	}

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewMatches:
		a.matchesView, cmd = a.matchesView.Update(msg)
	case messages.ViewDetail:
		a.detailView, cmd = a.detailView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewMatches:
		return a.matchesView.View()
	case messages.ViewDetail:
		return a.detailView.View()
	case messages.ViewHelp:
		return helpText
	default:
		return a.menuView.View()
	}
}

const helpText = `Help

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

Search profiles / Experience matches:
  (type)      Enter a query or node id
  enter       Submit
  esc         Back to menu

Results:
  j/k, ↑/↓    Navigate profiles
  enter       Show matched nodes
  n           New query
  r           Recompute matches (experience matches only)

Anywhere:
  ctrl+c      Quit

[esc] back to menu`

// Run starts the program and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error reported by a service call.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the terminal size is known.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.matchesView.SetDimensions(width, height)
	a.detailView.SetDimensions(width, height)
}
