package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/services"
	"github.com/desertthunder/moviex/internal/store"
	"github.com/desertthunder/moviex/internal/tasks"
	th "github.com/desertthunder/moviex/internal/testing"
)

func newTestModel(t *testing.T, mock *th.MockCatalog, initial store.State) *Model {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	engine := tasks.NewEngine(mock, store.New(initial), nil)
	m := NewModel(ctx, engine, 10*time.Millisecond)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	t.Cleanup(func() {
		m.Close()
		cancel()
	})
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, msgs ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(runes(string(r)))
	}
}

// complete runs an operation command and feeds its result back into the model.
func complete(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	if _, ok := msg.(Msg); !ok {
		t.Fatalf("expected ui.Msg, got %T", msg)
	}
	m.Update(msg)
}

func itemCount(m *Model) int {
	return len(m.movieList.Items())
}

func signedIn(username string) store.State {
	return store.State{Movies: th.SampleMovies(), CurrentUsername: username}
}

func TestModelList(t *testing.T) {
	t.Run("shows every movie", func(t *testing.T) {
		m := newTestModel(t, &th.MockCatalog{}, store.State{Movies: th.SampleMovies()})
		if got := itemCount(m); got != 3 {
			t.Errorf("expected 3 items, got %d", got)
		}
		if m.view != ListView {
			t.Errorf("expected ListView, got %v", m.view)
		}
	})

	t.Run("refresh fetches movies and favorites", func(t *testing.T) {
		mock := &th.MockCatalog{
			GetAllMoviesFunc: func(context.Context) ([]models.Movie, error) {
				return th.SampleMovies()[:1], nil
			},
		}
		m := newTestModel(t, mock, signedIn("alice"))

		cmd := m.refresh()
		msg := cmd()
		batch, ok := msg.(tea.BatchMsg)
		if !ok {
			t.Fatalf("expected tea.BatchMsg, got %T", msg)
		}
		for _, c := range batch {
			complete(t, m, c)
		}

		if mock.CallCount("GetAllMovies") != 1 || mock.CallCount("GetAllFavourites") != 1 {
			t.Errorf("unexpected calls: %+v", mock.Calls())
		}
		if got := itemCount(m); got != 1 {
			t.Errorf("expected 1 item after refresh, got %d", got)
		}
	})

	t.Run("favorites only", func(t *testing.T) {
		initial := signedIn("alice")
		initial.FavoriteMovieIDs = []int{3}
		m := newTestModel(t, &th.MockCatalog{}, initial)

		complete(t, m, press(m, runes("f")))

		if !m.state.ShowFavoritesOnly {
			t.Fatal("expected favorites-only to be on")
		}
		if got := itemCount(m); got != 1 {
			t.Errorf("expected 1 favorite item, got %d", got)
		}
		if m.movieList.Title != "Favorite Movies" {
			t.Errorf("unexpected title %q", m.movieList.Title)
		}
	})

	t.Run("quit", func(t *testing.T) {
		m := newTestModel(t, &th.MockCatalog{}, store.State{})
		cmd := press(m, runes("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestModelSearch(t *testing.T) {
	mock := &th.MockCatalog{
		SearchMoviesFunc: func(_ context.Context, term string) ([]models.Movie, error) {
			return th.SampleMovies()[2:], nil
		},
	}
	m := newTestModel(t, mock, store.State{Movies: th.SampleMovies()})

	press(m, runes("/"))
	if !m.searching {
		t.Fatal("expected search input to be focused")
	}
	typeText(m, "heat")

	if got := m.store.State().SearchQuery; got != "heat" {
		t.Errorf("expected query %q, got %q", "heat", got)
	}
	if got := itemCount(m); got != 1 {
		t.Errorf("expected filtered list of 1, got %d", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for mock.CallCount("SearchMovies") == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	calls := mock.Calls()
	if len(calls) == 0 {
		t.Fatal("expected a debounced search")
	}
	if last := calls[len(calls)-1]; last.Method != "SearchMovies" || last.Term != "heat" {
		t.Errorf("expected last call to search %q, got %+v", "heat", last)
	}

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.searching {
		t.Error("esc should leave the search input")
	}
	if m.search.Value() != "heat" {
		t.Error("leaving the search input should keep the query")
	}
}

func TestModelIdentityGate(t *testing.T) {
	t.Run("prompts then runs the pending action", func(t *testing.T) {
		mock := &th.MockCatalog{}
		m := newTestModel(t, mock, store.State{Movies: th.SampleMovies()})

		press(m, runes("*"))
		if m.view != UsernameView {
			t.Fatalf("expected UsernameView, got %v", m.view)
		}
		if n := len(mock.Calls()); n != 0 {
			t.Fatalf("no request should be sent before confirming, got %d", n)
		}

		typeText(m, "  alice ")
		cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != ListView {
			t.Errorf("expected return to ListView, got %v", m.view)
		}
		complete(t, m, cmd)

		if m.state.CurrentUsername != "alice" {
			t.Errorf("expected username alice, got %q", m.state.CurrentUsername)
		}
		calls := mock.Calls()
		if len(calls) != 2 || calls[0].Method != "GetAllFavourites" || calls[1].Method != "AddToFavourites" {
			t.Fatalf("unexpected calls: %+v", calls)
		}
		if calls[1].ID != 1 || calls[1].Username != "alice" {
			t.Errorf("unexpected favorite call: %+v", calls[1])
		}
		if !m.state.IsFavorite(1) {
			t.Error("expected movie 1 to be a favorite")
		}
	})

	t.Run("runs the confirmed action when favorites fail to load", func(t *testing.T) {
		mock := &th.MockCatalog{
			GetAllFavouritesFunc: func(context.Context, string) ([]models.Movie, error) {
				return nil, &services.APIError{StatusCode: 503, Message: "favorites down"}
			},
		}
		m := newTestModel(t, mock, store.State{Movies: th.SampleMovies()})

		press(m, runes("d"))
		press(m, runes("y"))
		if m.view != UsernameView {
			t.Fatalf("expected UsernameView, got %v", m.view)
		}
		typeText(m, "bob")
		complete(t, m, press(m, tea.KeyMsg{Type: tea.KeyEnter}))

		if m.state.CurrentUsername != "bob" {
			t.Errorf("expected username bob, got %q", m.state.CurrentUsername)
		}
		if mock.CallCount("DeleteMovie") != 1 {
			t.Fatalf("confirmed delete should reach the service: %+v", mock.Calls())
		}
		if m.state.HasError() {
			t.Errorf("delete should clear the favorites error, got %q", m.state.ErrorMessage())
		}
		if _, ok := m.state.MovieByID(1); ok {
			t.Error("movie should be removed")
		}
	})

	aborts := []struct {
		name string
		keys []tea.KeyMsg
	}{
		{"blank", []tea.KeyMsg{runes(" "), {Type: tea.KeyEnter}}},
		{"cancel", []tea.KeyMsg{runes("bob"), {Type: tea.KeyEsc}}},
	}
	for _, tt := range aborts {
		t.Run("aborts on "+tt.name, func(t *testing.T) {
			mock := &th.MockCatalog{}
			m := newTestModel(t, mock, store.State{Movies: th.SampleMovies()})

			press(m, runes("*"))
			cmd := press(m, tt.keys...)

			if cmd != nil {
				t.Error("expected no command")
			}
			if m.pending != nil {
				t.Error("pending action should be dropped")
			}
			if !strings.Contains(m.status, "username required") {
				t.Errorf("expected username required status, got %q", m.status)
			}
			if n := len(mock.Calls()); n != 0 {
				t.Errorf("expected no requests, got %d", n)
			}
			if m.store.State().CurrentUsername != "" {
				t.Error("username should stay empty")
			}
		})
	}
}

func TestModelForm(t *testing.T) {
	t.Run("validation errors stay on the form", func(t *testing.T) {
		mock := &th.MockCatalog{}
		m := newTestModel(t, mock, signedIn("alice"))

		press(m, runes("a"))
		if m.view != FormView {
			t.Fatalf("expected FormView, got %v", m.view)
		}
		typeText(m, "New")
		press(m, tea.KeyMsg{Type: tea.KeyTab})
		typeText(m, "20x1")

		cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
		if cmd != nil {
			t.Error("invalid form should not submit")
		}
		if m.view != FormView {
			t.Errorf("expected to stay on FormView, got %v", m.view)
		}
		want := map[string]string{
			models.FieldYear:     models.MsgYearFormat,
			models.FieldRuntime:  models.MsgRuntimeRequired,
			models.FieldGenre:    models.MsgGenreRequired,
			models.FieldDirector: models.MsgDirectorRequired,
		}
		if len(m.form.errs) != len(want) {
			t.Errorf("expected %d errors, got %v", len(want), m.form.errs)
		}
		for field, msg := range want {
			if m.form.errs[field] != msg {
				t.Errorf("%s: expected %q, got %q", field, msg, m.form.errs[field])
			}
		}
		if !strings.Contains(m.View(), models.MsgYearFormat) {
			t.Error("form view should show inline errors")
		}
		if len(mock.Calls()) != 0 {
			t.Error("no request expected")
		}
	})

	t.Run("add submits trimmed values", func(t *testing.T) {
		var got models.MovieInput
		mock := &th.MockCatalog{
			AddMovieFunc: func(_ context.Context, in models.MovieInput) (*models.Movie, error) {
				got = in
				return &models.Movie{ID: 9, Title: in.Title, Year: in.Year, Genre: in.Genre, Director: in.Director, Runtime: in.Runtime}, nil
			},
		}
		m := newTestModel(t, mock, signedIn("alice"))

		press(m, runes("a"))
		for i, v := range []string{" Alien ", "1979", "117 min", "Horror", "Ridley Scott"} {
			if i > 0 {
				press(m, tea.KeyMsg{Type: tea.KeyTab})
			}
			typeText(m, v)
		}
		complete(t, m, press(m, tea.KeyMsg{Type: tea.KeyEnter}))

		want := models.MovieInput{Title: "Alien", Year: "1979", Runtime: "117 min", Genre: "Horror", Director: "Ridley Scott", Username: "alice"}
		if got != want {
			t.Errorf("expected %+v, got %+v", want, got)
		}
		if m.view != ListView {
			t.Errorf("expected ListView after save, got %v", m.view)
		}
		if _, ok := m.state.MovieByID(9); !ok {
			t.Error("expected new movie in state")
		}
		if !strings.Contains(m.status, "Added Alien") {
			t.Errorf("unexpected status %q", m.status)
		}
	})

	t.Run("edit prefills and saves", func(t *testing.T) {
		var gotID int
		mock := &th.MockCatalog{
			EditMovieFunc: func(_ context.Context, id int, u models.MovieUpdate) (*models.Movie, error) {
				gotID = id
				return &models.Movie{ID: id, Title: *u.Title, Year: *u.Year, Genre: *u.Genre, Director: *u.Director, Runtime: *u.Runtime}, nil
			},
		}
		m := newTestModel(t, mock, signedIn("alice"))

		press(m, runes("e"))
		first := th.SampleMovies()[0]
		if m.form.value() != models.FormFromMovie(first) {
			t.Fatalf("expected prefilled form, got %+v", m.form.value())
		}
		typeText(m, " II")
		complete(t, m, press(m, tea.KeyMsg{Type: tea.KeyCtrlS}))

		if gotID != first.ID {
			t.Errorf("expected edit of %d, got %d", first.ID, gotID)
		}
		movie, _ := m.state.MovieByID(first.ID)
		if movie.Title != first.Title+" II" {
			t.Errorf("unexpected title %q", movie.Title)
		}
	})

	t.Run("esc discards", func(t *testing.T) {
		m := newTestModel(t, &th.MockCatalog{}, signedIn("alice"))
		press(m, runes("a"), runes("q"), tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != ListView {
			t.Errorf("expected ListView, got %v", m.view)
		}
	})
}

func TestModelDelete(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		mock := &th.MockCatalog{}
		m := newTestModel(t, mock, signedIn("alice"))

		press(m, runes("d"))
		if m.view != ConfirmDeleteView {
			t.Fatalf("expected ConfirmDeleteView, got %v", m.view)
		}
		if !strings.Contains(m.View(), "Delete 'Test Movie'?") {
			t.Errorf("unexpected view:\n%s", m.View())
		}
		press(m, runes("n"))
		if m.view != ListView || len(mock.Calls()) != 0 {
			t.Error("declining should return to the list without a request")
		}
	})

	t.Run("confirmed", func(t *testing.T) {
		mock := &th.MockCatalog{}
		initial := signedIn("alice")
		initial.FavoriteMovieIDs = []int{1}
		m := newTestModel(t, mock, initial)

		press(m, runes("d"))
		complete(t, m, press(m, runes("y")))

		calls := mock.Calls()
		if len(calls) != 1 || calls[0].Method != "DeleteMovie" || calls[0].ID != 1 || calls[0].Username != "alice" {
			t.Fatalf("unexpected calls: %+v", calls)
		}
		if _, ok := m.state.MovieByID(1); ok {
			t.Error("movie should be removed")
		}
		if m.state.IsFavorite(1) {
			t.Error("favorite id should be removed")
		}
		if itemCount(m) != 2 {
			t.Errorf("expected 2 items, got %d", itemCount(m))
		}
	})
}

func TestModelDetail(t *testing.T) {
	mock := &th.MockCatalog{
		GetMovieByIDFunc: func(_ context.Context, id int) (*models.Movie, error) {
			m := th.SampleMovies()[0]
			return &m, nil
		},
	}
	m := newTestModel(t, mock, store.State{Movies: th.SampleMovies()})

	cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.view != DetailView {
		t.Fatalf("expected DetailView, got %v", m.view)
	}
	if !strings.Contains(m.View(), "Loading") {
		t.Error("expected loading placeholder before the fetch completes")
	}
	complete(t, m, cmd)

	if !strings.Contains(m.View(), "Test Movie") {
		t.Errorf("expected movie details, got:\n%s", m.View())
	}

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.view != ListView {
		t.Errorf("expected ListView, got %v", m.view)
	}
	if m.store.State().SelectedMovie != nil {
		t.Error("selected movie should be cleared")
	}
}

func TestModelErrorView(t *testing.T) {
	mock := &th.MockCatalog{
		GetMovieByIDFunc: func(context.Context, int) (*models.Movie, error) {
			return nil, &services.APIError{StatusCode: 404, Message: "Movie not found"}
		},
	}
	m := newTestModel(t, mock, store.State{Movies: th.SampleMovies()})

	complete(t, m, press(m, tea.KeyMsg{Type: tea.KeyEnter}))

	view := m.View()
	if !strings.Contains(view, "Error: Movie not found") {
		t.Errorf("expected error view, got:\n%s", view)
	}

	press(m, runes("x"))
	if m.store.State().HasError() {
		t.Error("any key should clear the error")
	}
	if strings.Contains(m.View(), "Error:") {
		t.Error("error view should be gone")
	}
}

func TestModelSubscription(t *testing.T) {
	m := newTestModel(t, &th.MockCatalog{}, store.State{})

	m.store.Dispatch(store.SetSearchQuery("x"))
	select {
	case <-m.changes:
	case <-time.After(time.Second):
		t.Fatal("expected a change signal")
	}

	msg := m.waitForChange()
	m.store.Dispatch(store.ClearError())
	if got := msg(); got == nil {
		t.Fatal("expected state changed message")
	} else if changed, ok := got.(Msg); !ok || changed.kind != MsgStateChanged {
		t.Errorf("unexpected message %#v", got)
	}

	m.Close()
	m.store.Dispatch(store.ClearError())
	select {
	case <-m.changes:
		t.Error("closed model should not receive changes")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestOpDone(t *testing.T) {
	m := newTestModel(t, &th.MockCatalog{}, store.State{})
	m.view = FormView
	m.Update(opDoneMsg("", errors.New("boom")))
	if m.view != FormView {
		t.Error("failed operation should keep the form open")
	}
	m.Update(opDoneMsg("Saved", nil))
	if m.view != ListView {
		t.Error("successful operation should close the form")
	}
}
