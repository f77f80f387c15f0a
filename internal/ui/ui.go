package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
	"github.com/desertthunder/moviex/internal/store"
	"github.com/desertthunder/moviex/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	DetailView
	FormView
	ConfirmDeleteView
	UsernameView
)

// gatedAction runs once a username is known.
type gatedAction func(username string) tea.Cmd

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	view        ViewState
	returnView  ViewState
	engine      *tasks.Engine
	store       *store.Store
	debouncer   *store.Debouncer
	state       store.State
	changes     chan struct{}
	unsubscribe func()
	width       int
	height      int
	movieList   list.Model
	search      textinput.Model
	searching   bool
	form        movieForm
	username    textinput.Model
	pending     gatedAction
	detailID    int
	target      *models.Movie
	status      string
	spinner     spinner.Model
	help        help.Model
	keys        keyMap
}

// NewModel creates a TUI model bound to engine and its store.
// A non-positive debounce uses [store.DefaultDebounce].
func NewModel(ctx context.Context, engine *tasks.Engine, debounce time.Duration) *Model {
	st := engine.Store()

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "title, director or genre"

	username := textinput.New()
	username.Prompt = "> "
	username.Placeholder = "username"
	username.CharLimit = 64

	movieList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	movieList.Title = "Movies"
	movieList.SetFilteringEnabled(false)
	movieList.SetShowHelp(false)

	m := &Model{
		ctx:       ctx,
		view:      ListView,
		engine:    engine,
		store:     st,
		debouncer: store.NewDebouncer(engine, debounce),
		changes:   make(chan struct{}, 1),
		movieList: movieList,
		search:    search,
		username:  username,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:      help.New(),
		keys:      newKeyMap(),
	}

	m.unsubscribe = st.Subscribe(func(store.State) {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	})
	m.syncState()
	return m
}

// Close detaches the model from the store and cancels any pending search.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.debouncer.Stop()
}

// Init starts listening for store changes and loads the catalog.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), m.spinner.Tick, m.refresh())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.movieList.SetSize(msg.Width-4, msg.Height-8)
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgStateChanged:
			return m, tea.Batch(m.syncState(), m.waitForChange())
		case MsgOpDone:
			return m, m.handleOpDone(msg.data.(opResult))
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.state.HasError() {
			m.store.Dispatch(store.ClearError())
			return m, m.syncState()
		}

		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case FormView:
			return m.handleFormKeys(msg)
		case ConfirmDeleteView:
			return m.handleConfirmDeleteKeys(msg)
		case UsernameView:
			return m.handleUsernameKeys(msg)
		}
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.state.HasError() {
		return m.renderError()
	}

	switch m.view {
	case ListView:
		return m.renderList()
	case DetailView:
		return m.renderDetail()
	case FormView:
		return m.renderForm()
	case ConfirmDeleteView:
		return m.renderConfirmDelete()
	case UsernameView:
		return m.renderUsername()
	default:
		return ""
	}
}

// syncState copies the latest store state into the model and rebuilds the list.
func (m *Model) syncState() tea.Cmd {
	m.state = m.store.State()
	if m.state.ShowFavoritesOnly {
		m.movieList.Title = "Favorite Movies"
	} else {
		m.movieList.Title = "Movies"
	}
	return m.movieList.SetItems(movieItems(m.state))
}

func (m *Model) handleOpDone(res opResult) tea.Cmd {
	cmd := m.syncState()
	switch {
	case errors.Is(res.err, shared.ErrUsernameRequired):
		m.status = styles.warn.Render(res.err.Error())
	case res.err != nil:
		m.status = ""
	default:
		if res.label != "" {
			m.status = styles.ok.Render(res.label)
		}
		if m.view == FormView {
			m.view = ListView
		}
	}
	return cmd
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.refresh):
		return m, m.refresh()
	case key.Matches(msg, m.keys.favOnly):
		return m, m.gated(func(string) tea.Cmd {
			return func() tea.Msg {
				m.store.Dispatch(store.ToggleShowFavoritesOnly())
				return opDoneMsg("", nil)
			}
		})
	case key.Matches(msg, m.keys.add):
		m.form = newMovieForm(models.MovieForm{}, 0)
		m.view = FormView
		return m, textinput.Blink
	}

	movie, ok := m.selected()
	if !ok {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.enter):
		m.detailID = movie.ID
		m.view = DetailView
		return m, m.runOp("", func() error {
			_, err := m.engine.FetchMovieByID(m.ctx, movie.ID)
			return err
		})
	case key.Matches(msg, m.keys.toggleFav):
		return m, m.toggleFavorite(movie.ID)
	case key.Matches(msg, m.keys.edit):
		m.openEditForm(movie)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.delete):
		m.target = &movie
		m.view = ConfirmDeleteView
		return m, nil
	}

	return m.updateList(msg)
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if value := m.search.Value(); value != before {
		m.store.Dispatch(store.SetSearchQuery(value))
		m.debouncer.Update(m.ctx, value)
		return m, tea.Batch(cmd, m.syncState())
	}
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.store.Dispatch(store.SetSelectedMovie(nil))
		m.detailID = 0
		m.view = ListView
		return m, m.syncState()
	}

	movie := m.state.SelectedMovie
	if movie == nil || movie.ID != m.detailID {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.toggleFav):
		return m, m.toggleFavorite(movie.ID)
	case key.Matches(msg, m.keys.edit):
		m.openEditForm(*movie)
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = ListView
		return m, nil
	case key.Matches(msg, m.keys.submit):
		return m, m.submitForm()
	case msg.String() == "enter":
		if m.form.onLastField() {
			return m, m.submitForm()
		}
		return m, m.form.move(1)
	case key.Matches(msg, m.keys.next):
		return m, m.form.move(1)
	case key.Matches(msg, m.keys.prev):
		return m, m.form.move(-1)
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m *Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		movie := m.target
		m.target = nil
		m.view = ListView
		if movie == nil {
			return m, nil
		}
		return m, m.gated(func(username string) tea.Cmd {
			return m.runOp("Deleted "+movie.Title, func() error {
				return m.engine.DeleteMovie(m.ctx, movie.ID, username)
			})
		})
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.target = nil
		m.view = ListView
	}
	return m, nil
}

func (m *Model) handleUsernameKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		name := strings.TrimSpace(m.username.Value())
		if msg.String() == "esc" {
			name = ""
		}
		pending := m.pending
		m.pending = nil
		m.username.Reset()
		m.username.Blur()
		m.view = m.returnView

		if name == "" {
			m.status = styles.warn.Render(shared.ErrUsernameRequired.Error())
			return m, nil
		}
		return m, m.confirmUsername(name, pending)
	}

	var cmd tea.Cmd
	m.username, cmd = m.username.Update(msg)
	return m, cmd
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != ListView {
		return m, nil
	}
	var cmd tea.Cmd
	m.movieList, cmd = m.movieList.Update(msg)
	return m, cmd
}

func (m *Model) selected() (models.Movie, bool) {
	item, ok := m.movieList.SelectedItem().(movieItem)
	if !ok {
		return models.Movie{}, false
	}
	return item.movie, true
}

func (m *Model) openEditForm(movie models.Movie) {
	m.form = newMovieForm(models.FormFromMovie(movie), movie.ID)
	m.view = FormView
}

func (m *Model) submitForm() tea.Cmd {
	form := m.form.value()
	if errs := form.Validate(); errs != nil {
		m.form.errs = errs
		return nil
	}
	m.form.errs = nil

	editID := m.form.editID
	return m.gated(func(username string) tea.Cmd {
		if editID == 0 {
			return m.runOp("Added "+form.Trimmed().Title, func() error {
				_, err := m.engine.AddMovie(m.ctx, form.Input(username))
				return err
			})
		}
		return m.runOp("Saved "+form.Trimmed().Title, func() error {
			_, err := m.engine.EditMovie(m.ctx, editID, form.Update(username))
			return err
		})
	})
}

func (m *Model) toggleFavorite(id int) tea.Cmd {
	return m.gated(func(string) tea.Cmd {
		return m.runOp("", func() error {
			_, err := m.engine.ToggleFavorite(m.ctx, id)
			return err
		})
	})
}

// gated runs action with the current username, or asks for one first.
func (m *Model) gated(action gatedAction) tea.Cmd {
	if name := m.store.State().CurrentUsername; name != "" {
		return action(name)
	}
	m.pending = action
	m.returnView = m.view
	m.view = UsernameView
	return m.username.Focus()
}

// confirmUsername passes name through the identity gate, loads its favorites and then runs
// the pending action. A failed favorites fetch is left to the engine's log; the action still runs.
func (m *Model) confirmUsername(name string, pending gatedAction) tea.Cmd {
	gate := store.Gate{Confirmer: store.ConfirmerFunc(func(context.Context) (string, error) {
		return name, nil
	})}

	return func() tea.Msg {
		var done tea.Msg = opDoneMsg("Signed in as "+name, nil)
		err := gate.Run(m.ctx, m.store, func(username string) error {
			_ = m.engine.ConfirmFavorites(m.ctx, username)
			if pending != nil {
				if cmd := pending(username); cmd != nil {
					done = cmd()
				}
			}
			return nil
		})
		if err != nil {
			return opDoneMsg("", err)
		}
		return done
	}
}

func (m *Model) refresh() tea.Cmd {
	cmds := []tea.Cmd{m.runOp("", func() error {
		_, err := m.engine.FetchMovies(m.ctx)
		return err
	})}
	if name := m.store.State().CurrentUsername; name != "" {
		cmds = append(cmds, m.runOp("", func() error {
			_, err := m.engine.FetchFavorites(m.ctx, name)
			return err
		}))
	}
	return tea.Batch(cmds...)
}

func (m *Model) runOp(label string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg(label, fn())
	}
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.changes:
			return stateChangedMsg()
		case <-m.ctx.Done():
			return nil
		}
	}
}
