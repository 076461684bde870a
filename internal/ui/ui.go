package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/controller"
	"github.com/desertthunder/marquee/internal/failure"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/paging"
)

// prefetchDistance is how close to the last loaded row the cursor gets before the next page is requested.
const prefetchDistance = 3

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	GenreView
	DetailView
)

// Presenter is the controller surface the TUI drives. Implemented by [controller.Controller].
type Presenter interface {
	Dispatch(intent controller.Intent) error
	States() (<-chan controller.State, func())
	Effects() (<-chan controller.Effect, func())
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	ctrl   Presenter
	logger *log.Logger

	states      <-chan controller.State
	effects     <-chan controller.Effect
	unsubscribe []func()

	view        ViewState
	state       controller.State
	stream      *paging.Stream
	movies      list.Model
	genres      list.Model
	detail      *models.Movie
	loadingMore bool
	pageErr     *failure.Failure
	needCatalog bool
	err         error

	width   int
	height  int
	spinner spinner.Model
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model driven by ctrl. Subscriptions are opened immediately so no effect
// published after construction is missed.
func NewModel(ctx context.Context, ctrl Presenter, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	states, unsubStates := ctrl.States()
	effects, unsubEffects := ctrl.Effects()

	movies := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	movies.Title = "Movies"
	movies.SetFilteringEnabled(false)
	movies.SetShowHelp(false)

	genreDelegate := list.NewDefaultDelegate()
	genreDelegate.ShowDescription = false
	genres := list.New(nil, genreDelegate, 0, 0)
	genres.Title = "Genres"
	genres.SetFilteringEnabled(false)
	genres.SetShowHelp(false)

	return &Model{
		ctx:         ctx,
		ctrl:        ctrl,
		logger:      logger,
		states:      states,
		effects:     effects,
		unsubscribe: []func(){unsubStates, unsubEffects},
		view:        ListView,
		state:       controller.Loading{},
		movies:      movies,
		genres:      genres,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.warn)),
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Close releases the model's controller subscriptions.
func (m *Model) Close() {
	for _, unsub := range m.unsubscribe {
		unsub()
	}
	m.unsubscribe = nil
}

// Err returns the last dispatch error, if any.
func (m *Model) Err() error { return m.err }

// Init requests the genre catalog and starts listening to the controller.
func (m *Model) Init() tea.Cmd {
	m.dispatch(controller.RequestCatalog{})
	return tea.Batch(m.waitForState(), m.waitForEffect(), m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.movies.SetSize(msg.Width-4, msg.Height-6)
		m.genres.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		switch m.view {
		case GenreView:
			return m.handleGenreKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		default:
			return m.handleListKeys(msg)
		}
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgState:
		return m, tea.Batch(m.applyState(msg.data.(controller.State)), m.waitForState())

	case MsgEffect:
		if nav, ok := msg.data.(controller.NavigateToDetails); ok {
			movie := nav.Movie
			m.detail = &movie
			m.view = DetailView
		}
		return m, m.waitForEffect()

	case MsgPageLoaded:
		res := msg.data.(pageLoaded)
		if res.stream != m.stream {
			return m, nil
		}
		m.loadingMore = false
		if res.err != nil {
			m.pageErr = failure.Classify(res.err)
			m.logger.Warn("page load failed", "kind", m.pageErr.Kind, "err", m.pageErr)
			return m, nil
		}
		m.pageErr = nil
		return m, tea.Batch(m.movies.SetItems(movieItems(m.stream.Items())), m.maybeLoadMore())

	case MsgSubscriptionClosed:
		return m, tea.Quit
	}
	return m, nil
}

// applyState renders a new controller state. A new stream resets the list; the same stream keeps the cursor.
func (m *Model) applyState(s controller.State) tea.Cmd {
	m.state = s
	success, ok := s.(controller.Success)
	if !ok {
		return nil
	}

	if m.needCatalog {
		m.needCatalog = false
		m.dispatch(controller.RequestCatalog{})
	}

	m.genres.SetItems(genreItems(success.Genres, success.Selected))
	m.movies.Title = "Movies · " + filterLabel(success.Selected, success.Genres)

	if success.Stream == m.stream {
		if len(m.movies.Items()) == len(m.stream.Items()) {
			return nil
		}
		return tea.Batch(m.movies.SetItems(movieItems(m.stream.Items())), m.maybeLoadMore())
	}
	m.stream = success.Stream
	m.loadingMore = false
	m.pageErr = nil
	cmd := m.movies.SetItems(movieItems(m.stream.Items()))
	m.movies.ResetSelected()
	return tea.Batch(cmd, m.maybeLoadMore())
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if fail := controller.Failure(m.state); fail != nil {
		if key.Matches(msg, m.keys.retry) {
			m.retry()
		}
		return m, nil
	}

	success, ok := m.state.(controller.Success)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.genres):
		m.view = GenreView
		return m, nil
	case key.Matches(msg, m.keys.retry):
		if m.pageErr != nil && !m.loadingMore {
			m.pageErr = nil
			return m, m.loadMore()
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.movies.SelectedItem().(movieItem); ok && !success.Busy {
			m.dispatch(controller.ItemActivated{Movie: item.movie})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.movies, cmd = m.movies.Update(msg)
	return m, tea.Batch(cmd, m.maybeLoadMore())
}

func (m *Model) handleGenreKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.genres):
		m.view = ListView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.genres.SelectedItem().(genreItem); ok {
			m.dispatch(controller.SelectFilter{Genre: item.genre})
		}
		m.view = ListView
		return m, nil
	}

	var cmd tea.Cmd
	m.genres, cmd = m.genres.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.back) || key.Matches(msg, m.keys.enter) {
		m.view = ListView
		m.detail = nil
	}
	return m, nil
}

// retry reloads the last selected filter. The catalog is re-requested once the list is back, since a
// catalog result arriving while still in error is dropped.
func (m *Model) retry() {
	var selected *models.Genre
	if m.stream != nil {
		selected = m.stream.Filter()
	}
	m.needCatalog = true
	m.dispatch(controller.SelectFilter{Genre: selected})
}

func (m *Model) dispatch(intent controller.Intent) {
	if err := m.ctrl.Dispatch(intent); err != nil {
		m.err = err
		m.logger.Error("dispatch failed", "intent", fmt.Sprintf("%T", intent), "err", err)
	}
}

// maybeLoadMore requests the next page once the cursor is within prefetchDistance of the end.
func (m *Model) maybeLoadMore() tea.Cmd {
	if m.stream == nil || m.loadingMore || m.pageErr != nil || m.stream.Exhausted() {
		return nil
	}
	if m.movies.Index() < len(m.movies.Items())-prefetchDistance {
		return nil
	}
	return m.loadMore()
}

func (m *Model) loadMore() tea.Cmd {
	if m.stream == nil {
		return nil
	}
	m.loadingMore = true
	stream, ctx := m.stream, m.ctx
	return func() tea.Msg {
		_, err := stream.LoadNext(ctx)
		return pageLoadedMsg(stream, err)
	}
}

func (m *Model) waitForState() tea.Cmd {
	states := m.states
	return func() tea.Msg {
		s, ok := <-states
		if !ok {
			return subscriptionClosedMsg()
		}
		return stateMsg(s)
	}
}

func (m *Model) waitForEffect() tea.Cmd {
	effects := m.effects
	return func() tea.Msg {
		e, ok := <-effects
		if !ok {
			return nil
		}
		return effectMsg(e)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	return controller.Match(m.state,
		func(controller.Loading) string {
			return fmt.Sprintf("\n  %s Loading movies...\n\n%s", m.spinner.View(), m.help.ShortHelpView([]key.Binding{m.keys.quit}))
		},
		func(s controller.Success) string {
			switch m.view {
			case GenreView:
				return m.renderGenres()
			case DetailView:
				return m.renderDetail()
			default:
				return m.renderList(s)
			}
		},
		func(e controller.Error) string {
			return m.renderError(e.Failure)
		},
	)
}

func (m *Model) renderList(s controller.Success) string {
	var b strings.Builder
	b.WriteString(m.movies.View())
	b.WriteString("\n")

	switch {
	case s.Busy:
		fmt.Fprintf(&b, "%s Loading %s...\n", m.spinner.View(), filterLabel(s.Selected, s.Genres))
	case m.pageErr != nil:
		b.WriteString(styles.warn.Render(fmt.Sprintf("⚠ %s Press r to retry.", m.pageErr.UserMessage())))
		b.WriteString("\n")
	case m.loadingMore:
		fmt.Fprintf(&b, "%s Loading more...\n", m.spinner.View())
	case m.stream != nil && m.stream.Exhausted():
		b.WriteString(styles.help.Render(fmt.Sprintf("%d movies", len(m.movies.Items()))))
		b.WriteString("\n")
	}

	helpKeys := []key.Binding{m.keys.genres, m.keys.enter, m.keys.quit}
	if m.pageErr != nil {
		helpKeys = append([]key.Binding{m.keys.retry}, helpKeys...)
	}
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderGenres() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.genres.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderDetail() string {
	if m.detail == nil {
		return ""
	}
	width := max(m.width-4, 20)

	title := m.detail.Title
	if m.detail.Year != "" {
		title = fmt.Sprintf("%s (%s)", title, m.detail.Year)
	}

	chips := make([]string, len(m.detail.Genres))
	for i, g := range m.detail.Genres {
		chips[i] = styles.chip.Render(g)
	}

	overview := m.detail.Overview
	if overview == "" {
		overview = styles.help.Render("No overview available.")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.title.Render(title),
		lipgloss.JoinHorizontal(lipgloss.Top, chips...),
		styles.body.Width(width).Render(overview),
		"",
		m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit}),
	)
}

func (m *Model) renderError(f *failure.Failure) string {
	message := "Something went wrong."
	if f != nil {
		message = f.UserMessage()
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s",
		styles.err.Render("Couldn't load movies"),
		message,
		m.help.ShortHelpView([]key.Binding{m.keys.retry, m.keys.quit}),
	)
}

func filterLabel(selected *models.Genre, genres []models.Genre) string {
	if selected == nil {
		all := models.AllGenres(genres)
		return fmt.Sprintf("%s (%d)", all.Name, all.Count)
	}
	return fmt.Sprintf("%s (%d)", selected.Name, selected.Count)
}
