package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/topten/internal/models"
	"github.com/desertthunder/topten/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	DetailView
	ConfirmView
	RateView
	SearchView
	ResultsView
)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	engine   tasks.Engine
	view     ViewState
	width    int
	height   int
	movies   list.Model
	results  list.Model
	selected *models.RankedMovie
	query    textinput.Model
	rating   textinput.Model
	review   textinput.Model
	status   string
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model backed by engine.
func NewModel(ctx context.Context, engine tasks.Engine) *Model {
	m := &Model{
		ctx:     ctx,
		engine:  engine,
		view:    ListView,
		movies:  newList("My Top Movies", nil),
		results: newList("Search results", nil),
		query:   newInput("Movie title", 200),
		rating:  newInput("Your rating out of 10 e.g 7.5", 8),
		review:  newInput("Your review", 500),
		help:    help.New(),
		keys:    newKeyMap(),
	}
	return m
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	return ti
}

// Init loads the ranked list.
func (m *Model) Init() tea.Cmd {
	return m.loadMovies()
}

// Err returns the error that ended the program, if any.
func (m *Model) Err() error {
	return m.err
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.movies.SetSize(msg.Width-4, msg.Height-6)
		m.results.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case RateView:
			return m.handleRateKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		case ResultsView:
			return m.handleResultsKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgMoviesLoaded:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		cmd := m.movies.SetItems(movieItems(msg.ranked))
		m.refreshSelected(msg.ranked)
		return m, cmd

	case MsgSearchDone:
		if msg.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Search failed: %v", msg.err))
			m.view = SearchView
			return m, nil
		}
		m.status = ""
		m.results.Title = fmt.Sprintf("Results for %q", m.query.Value())
		cmd := m.results.SetItems(resultItems(msg.found))
		m.results.ResetSelected()
		m.view = ResultsView
		return m, cmd

	case MsgMovieImported:
		if msg.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Import failed: %v", msg.err))
			return m, nil
		}
		m.status = styles.ok.Render(fmt.Sprintf("Added %s", msg.movie))
		m.selected = &models.RankedMovie{Movie: msg.movie}
		m.startRating()
		return m, tea.Batch(m.loadMovies(), textinput.Blink)

	case MsgMovieReviewed:
		if msg.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Update failed: %v", msg.err))
			return m, nil
		}
		m.status = styles.ok.Render(fmt.Sprintf("Updated %s", msg.movie))
		m.view = ListView
		return m, m.loadMovies()

	case MsgMovieRemoved:
		if msg.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Delete failed: %v", msg.err))
		} else {
			m.status = styles.ok.Render(fmt.Sprintf("Removed %s", msg.movie))
		}
		m.selected = nil
		m.view = ListView
		return m, m.loadMovies()
	}
	return m, nil
}

// refreshSelected points the selection at the reloaded copy of the same movie.
func (m *Model) refreshSelected(ranked []models.RankedMovie) {
	if m.selected == nil {
		return
	}
	for i := range ranked {
		if ranked[i].ID == m.selected.ID {
			m.selected = &ranked[i]
			return
		}
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		m.status = ""
		return m, m.loadMovies()
	case key.Matches(msg, m.keys.add):
		m.status = ""
		m.view = SearchView
		m.query.SetValue("")
		m.query.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.enter):
		if m.selectCurrent() {
			m.view = DetailView
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if m.selectCurrent() {
			m.view = ConfirmView
		}
		return m, nil
	case key.Matches(msg, m.keys.edit):
		if m.selectCurrent() {
			m.startRating()
			return m, textinput.Blink
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.movies, cmd = m.movies.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ListView
	case key.Matches(msg, m.keys.remove):
		m.view = ConfirmView
	case key.Matches(msg, m.keys.edit):
		m.startRating()
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.forceQuit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.yes):
		return m, m.removeMovie(m.selected.ID)
	case key.Matches(msg, m.keys.no):
		m.view = ListView
	}
	return m, nil
}

func (m *Model) handleRateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.forceQuit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.status = ""
		m.view = ListView
		return m, nil
	case key.Matches(msg, m.keys.next):
		if m.rating.Focused() {
			m.rating.Blur()
			m.review.Focus()
		} else {
			m.review.Blur()
			m.rating.Focus()
		}
		return m, textinput.Blink
	case key.Matches(msg, m.keys.enter):
		rating, review, err := parseReview(m.rating.Value(), m.review.Value())
		if err != nil {
			m.status = styles.err.Render(err.Error())
			return m, nil
		}
		return m, m.reviewMovie(m.selected.ID, rating, review)
	}

	var cmd tea.Cmd
	if m.rating.Focused() {
		m.rating, cmd = m.rating.Update(msg)
	} else {
		m.review, cmd = m.review.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.forceQuit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.query.Blur()
		m.status = ""
		m.view = ListView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		title := strings.TrimSpace(m.query.Value())
		if title == "" {
			m.status = styles.err.Render("Movie title is required.")
			return m, nil
		}
		m.status = styles.muted.Render("Searching...")
		return m, m.search(title)
	}

	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m, cmd
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = SearchView
		m.query.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.results.SelectedItem().(resultItem); ok {
			m.status = styles.muted.Render("Importing...")
			return m, m.importMovie(item.result.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

// selectCurrent stores the highlighted movie and reports whether there was one.
func (m *Model) selectCurrent() bool {
	item, ok := m.movies.SelectedItem().(movieItem)
	if !ok {
		return false
	}
	movie := item.movie
	m.selected = &movie
	return true
}

// startRating opens the rate form, pre-filled from the selected movie.
func (m *Model) startRating() {
	m.rating.SetValue(m.selected.RatingText())
	m.review.SetValue(m.selected.ReviewText())
	m.review.Blur()
	m.rating.Focus()
	m.view = RateView
}

// parseReview applies the same rules as the web edit form: both fields required, rating must be a finite number.
func parseReview(rawRating, rawReview string) (float64, string, error) {
	rawRating, review := strings.TrimSpace(rawRating), strings.TrimSpace(rawReview)
	if rawRating == "" || review == "" {
		return 0, "", fmt.Errorf("rating and review are required")
	}

	rating, err := models.ParseRating(rawRating)
	if err != nil {
		return 0, "", fmt.Errorf("%q is not a valid rating", rawRating)
	}
	return rating, review, nil
}

func (m *Model) loadMovies() tea.Cmd {
	return func() tea.Msg {
		ranked, err := m.engine.Ranked(m.ctx)
		return moviesLoadedMsg(ranked, err)
	}
}

func (m *Model) search(title string) tea.Cmd {
	return func() tea.Msg {
		results, err := m.engine.Search(m.ctx, title)
		return searchDoneMsg(results, err)
	}
}

func (m *Model) importMovie(tmdbID int64) tea.Cmd {
	return func() tea.Msg {
		movie, err := m.engine.Import(m.ctx, tmdbID)
		return movieImportedMsg(movie, err)
	}
}

func (m *Model) reviewMovie(id int64, rating float64, review string) tea.Cmd {
	return func() tea.Msg {
		movie, err := m.engine.Review(m.ctx, id, rating, review)
		return movieReviewedMsg(movie, err)
	}
}

func (m *Model) removeMovie(id int64) tea.Cmd {
	return func() tea.Msg {
		movie, err := m.engine.Remove(m.ctx, id)
		return movieRemovedMsg(movie, err)
	}
}
