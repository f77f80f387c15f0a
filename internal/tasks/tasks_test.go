package tasks

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/services"
	"github.com/desertthunder/moviex/internal/shared"
	"github.com/desertthunder/moviex/internal/store"
	th "github.com/desertthunder/moviex/internal/testing"
)

// recorder captures the loading flag after every dispatch.
type recorder struct {
	mu      sync.Mutex
	loading []bool
}

func (r *recorder) observe(s store.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = append(r.loading, s.Loading)
}

func (r *recorder) sequence() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.loading...)
}

func newEngine(t *testing.T, mock *th.MockCatalog, initial store.State) (*Engine, *store.Store, *recorder) {
	t.Helper()
	s := store.New(initial)
	rec := &recorder{}
	s.Subscribe(rec.observe)
	return NewEngine(mock, s, nil), s, rec
}

type fakeSnapshotter struct {
	mu        sync.Mutex
	movies    [][]models.Movie
	favorites map[string][]models.Movie
	err       error
}

func (f *fakeSnapshotter) SaveMovies(_ context.Context, requestID string, movies []models.Movie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if requestID == "" {
		return errors.New("missing request id")
	}
	f.movies = append(f.movies, movies)
	return f.err
}

func (f *fakeSnapshotter) SaveFavorites(_ context.Context, _ string, username string, favorites []models.Movie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.favorites == nil {
		f.favorites = make(map[string][]models.Movie)
	}
	f.favorites[username] = favorites
	return f.err
}

func TestEngineLifecycle(t *testing.T) {
	t.Run("Fetch Movies Fulfilled", func(t *testing.T) {
		mock := &th.MockCatalog{
			GetAllMoviesFunc: func(context.Context) ([]models.Movie, error) {
				return th.SampleMovies(), nil
			},
		}
		e, s, rec := newEngine(t, mock, store.State{})

		movies, err := e.FetchMovies(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(movies) != 3 {
			t.Errorf("expected 3 movies returned, got %d", len(movies))
		}

		st := s.State()
		if st.Loading || st.HasError() || len(st.Movies) != 3 {
			t.Errorf("unexpected final state %+v", st)
		}
		if got := rec.sequence(); !reflect.DeepEqual(got, []bool{true, false}) {
			t.Errorf("expected pending then fulfilled, got %v", got)
		}
	})

	t.Run("Server Message Recorded", func(t *testing.T) {
		apiErr := &services.APIError{StatusCode: 500, Message: "X"}
		mock := &th.MockCatalog{
			GetAllMoviesFunc: func(context.Context) ([]models.Movie, error) { return nil, apiErr },
		}
		e, s, _ := newEngine(t, mock, store.State{Movies: th.SampleMovies()})

		_, err := e.FetchMovies(context.Background())
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected the service error to be returned, got %v", err)
		}

		st := s.State()
		if st.Loading || st.ErrorMessage() != "X" {
			t.Errorf("expected loading=false error=X, got %v %q", st.Loading, st.ErrorMessage())
		}
		if len(st.Movies) != 3 {
			t.Error("failed fetch must not touch movies")
		}
	})

	t.Run("Empty Message Uses Fallback", func(t *testing.T) {
		mock := &th.MockCatalog{
			DeleteMovieFunc: func(context.Context, int, string) error { return errors.New("") },
		}
		e, s, _ := newEngine(t, mock, store.State{})

		_ = e.DeleteMovie(context.Background(), 1, "alice")
		if got := s.State().ErrorMessage(); got != "Failed to delete movie" {
			t.Errorf("expected fallback, got %q", got)
		}
	})

	t.Run("Favorites Share Loading Flag", func(t *testing.T) {
		e, _, rec := newEngine(t, &th.MockCatalog{}, store.State{})

		if err := e.AddToFavorites(context.Background(), 1, "alice"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := rec.sequence(); !reflect.DeepEqual(got, []bool{true, false}) {
			t.Errorf("expected pending then fulfilled, got %v", got)
		}
	})

	t.Run("Missing Service", func(t *testing.T) {
		e := NewEngine(nil, store.New(store.State{}), nil)

		if _, err := e.FetchMovies(context.Background()); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
		if e.Store().State().Loading {
			t.Error("nothing should be dispatched without a service")
		}
	})
}

func TestEngineOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("FetchMovieByID Selects", func(t *testing.T) {
		mock := &th.MockCatalog{
			GetMovieByIDFunc: func(_ context.Context, id int) (*models.Movie, error) {
				return &models.Movie{ID: id, Title: "Heat"}, nil
			},
		}
		e, s, _ := newEngine(t, mock, store.State{})

		if _, err := e.FetchMovieByID(ctx, 3); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sel := s.State().SelectedMovie; sel == nil || sel.ID != 3 {
			t.Errorf("expected movie 3 selected, got %+v", sel)
		}
	})

	t.Run("AddMovie Appends Server Copy", func(t *testing.T) {
		mock := &th.MockCatalog{
			AddMovieFunc: func(_ context.Context, in models.MovieInput) (*models.Movie, error) {
				return &models.Movie{ID: 42, Title: in.Title}, nil
			},
		}
		e, s, _ := newEngine(t, mock, store.State{Movies: th.SampleMovies()})

		movie, err := e.AddMovie(ctx, models.MovieInput{Title: "Alien", Username: "alice"})
		if err != nil || movie.ID != 42 {
			t.Fatalf("AddMovie() = %+v, %v", movie, err)
		}

		st := s.State()
		if len(st.Movies) != 4 || st.Movies[3].ID != 42 {
			t.Errorf("expected new movie appended, got %+v", st.Movies)
		}
		if calls := mock.Calls(); calls[0].Username != "alice" {
			t.Errorf("expected username forwarded, got %+v", calls)
		}
	})

	t.Run("AddMovie Nil Result", func(t *testing.T) {
		mock := &th.MockCatalog{
			AddMovieFunc: func(context.Context, models.MovieInput) (*models.Movie, error) { return nil, nil },
		}
		e, s, _ := newEngine(t, mock, store.State{})

		if _, err := e.AddMovie(ctx, models.MovieInput{}); err == nil {
			t.Error("expected error for empty response")
		}
		if s.State().ErrorMessage() != "Failed to add movie" {
			t.Errorf("unexpected error %q", s.State().ErrorMessage())
		}
	})

	t.Run("EditMovie Replaces Entry", func(t *testing.T) {
		mock := &th.MockCatalog{
			EditMovieFunc: func(_ context.Context, id int, u models.MovieUpdate) (*models.Movie, error) {
				return &models.Movie{ID: id, Title: *u.Title}, nil
			},
		}
		e, s, _ := newEngine(t, mock, store.State{Movies: th.SampleMovies()})

		title := "Heat (Director's Cut)"
		if _, err := e.EditMovie(ctx, 3, models.MovieUpdate{Title: &title, Username: "alice"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := s.State().Movies[2].Title; got != title {
			t.Errorf("expected edited title, got %q", got)
		}
	})

	t.Run("DeleteMovie Prunes Favorite", func(t *testing.T) {
		e, s, _ := newEngine(t, &th.MockCatalog{}, store.State{Movies: th.SampleMovies(), FavoriteMovieIDs: []int{1, 3}})

		if err := e.DeleteMovie(ctx, 1, "alice"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		st := s.State()
		if len(st.Movies) != 2 || st.IsFavorite(1) {
			t.Errorf("expected movie 1 gone everywhere, got %+v", st)
		}
	})

	t.Run("FetchFavorites Replaces Set", func(t *testing.T) {
		mock := &th.MockCatalog{
			GetAllFavouritesFunc: func(context.Context, string) ([]models.Movie, error) {
				return []models.Movie{{ID: 1}, {ID: 3}, {ID: 5}}, nil
			},
		}
		e, s, _ := newEngine(t, mock, store.State{FavoriteMovieIDs: []int{9}})

		if _, err := e.FetchFavorites(ctx, "alice"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := s.State().FavoriteMovieIDs; !reflect.DeepEqual(got, []int{1, 3, 5}) {
			t.Errorf("expected [1 3 5], got %v", got)
		}
	})

	t.Run("SearchFavorites", func(t *testing.T) {
		mock := &th.MockCatalog{
			SearchFavouritesFunc: func(_ context.Context, _ string, term string) ([]models.Movie, error) {
				return []models.Movie{{ID: 3, Title: term}}, nil
			},
		}
		e, s, _ := newEngine(t, mock, store.State{FavoriteMovieIDs: []int{1, 3}})

		if _, err := e.SearchFavorites(ctx, "alice", "heat"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		st := s.State()
		if len(st.Favorites) != 1 || len(st.FavoriteMovieIDs) != 2 {
			t.Errorf("unexpected favorites state %+v", st)
		}
		if c := mock.Calls()[0]; c.Term != "heat" || c.Username != "alice" {
			t.Errorf("unexpected call %+v", c)
		}
	})

	t.Run("RemoveFromFavorites", func(t *testing.T) {
		e, s, _ := newEngine(t, &th.MockCatalog{}, store.State{
			FavoriteMovieIDs: []int{1, 3},
			Favorites:        []models.Movie{{ID: 1}, {ID: 3}},
		})

		if err := e.RemoveFromFavorites(ctx, 3, "alice"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		st := s.State()
		if !reflect.DeepEqual(st.FavoriteMovieIDs, []int{1}) || len(st.Favorites) != 1 {
			t.Errorf("unexpected favorites state %+v", st)
		}
	})

	t.Run("IsMovieFavorited Leaves Store Alone", func(t *testing.T) {
		mock := &th.MockCatalog{
			IsMovieFavoritedFunc: func(context.Context, int, string) (bool, error) { return true, nil },
		}
		e, _, rec := newEngine(t, mock, store.State{})

		ok, err := e.IsMovieFavorited(ctx, 3, "alice")
		if err != nil || !ok {
			t.Errorf("IsMovieFavorited() = %v, %v", ok, err)
		}
		if len(rec.sequence()) != 0 {
			t.Error("expected no dispatches")
		}
	})

	t.Run("SearchMovies And ClearSearch", func(t *testing.T) {
		mock := &th.MockCatalog{
			SearchMoviesFunc: func(context.Context, string) ([]models.Movie, error) {
				return []models.Movie{{ID: 3}}, nil
			},
			GetAllMoviesFunc: func(context.Context) ([]models.Movie, error) {
				return th.SampleMovies(), nil
			},
		}
		e, s, _ := newEngine(t, mock, store.State{})

		if _, err := e.SearchMovies(ctx, "heat"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(s.State().Movies) != 1 {
			t.Error("expected search results to replace the catalog")
		}

		if _, err := e.ClearSearch(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(s.State().Movies) != 3 {
			t.Error("expected full catalog restored")
		}
	})
}

func TestEngineFavoritesHelpers(t *testing.T) {
	ctx := context.Background()

	t.Run("ToggleFavorite Adds Then Removes", func(t *testing.T) {
		mock := &th.MockCatalog{}
		e, s, _ := newEngine(t, mock, store.State{CurrentUsername: "alice"})

		added, err := e.ToggleFavorite(ctx, 2)
		if err != nil || !added || !s.State().IsFavorite(2) {
			t.Fatalf("expected add, got %v %v", added, err)
		}

		added, err = e.ToggleFavorite(ctx, 2)
		if err != nil || added || s.State().IsFavorite(2) {
			t.Fatalf("expected remove, got %v %v", added, err)
		}

		if mock.CallCount("AddToFavourites") != 1 || mock.CallCount("RemoveFromFavourites") != 1 {
			t.Errorf("unexpected calls %+v", mock.Calls())
		}
	})

	t.Run("ToggleFavorite Requires Username", func(t *testing.T) {
		mock := &th.MockCatalog{}
		e, _, _ := newEngine(t, mock, store.State{})

		if _, err := e.ToggleFavorite(ctx, 2); !errors.Is(err, shared.ErrUsernameRequired) {
			t.Errorf("expected ErrUsernameRequired, got %v", err)
		}
		if len(mock.Calls()) != 0 {
			t.Error("service must not be called")
		}
	})

	t.Run("ConfirmFavorites", func(t *testing.T) {
		mock := &th.MockCatalog{
			GetAllFavouritesFunc: func(_ context.Context, username string) ([]models.Movie, error) {
				if username != "bob" {
					t.Errorf("expected bob, got %q", username)
				}
				return []models.Movie{{ID: 2}}, nil
			},
		}
		e, s, _ := newEngine(t, mock, store.State{})

		if err := e.ConfirmFavorites(ctx, "bob"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		st := s.State()
		if st.CurrentUsername != "bob" || !st.IsFavorite(2) {
			t.Errorf("unexpected state %+v", st)
		}

		if err := e.ConfirmFavorites(ctx, ""); !errors.Is(err, shared.ErrUsernameRequired) {
			t.Errorf("expected ErrUsernameRequired, got %v", err)
		}
	})
}

func TestEngineSnapshots(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful Fetches Are Saved", func(t *testing.T) {
		mock := &th.MockCatalog{
			GetAllMoviesFunc:     func(context.Context) ([]models.Movie, error) { return th.SampleMovies(), nil },
			GetAllFavouritesFunc: func(context.Context, string) ([]models.Movie, error) { return []models.Movie{{ID: 1}}, nil },
		}
		snap := &fakeSnapshotter{}
		e, _, _ := newEngine(t, mock, store.State{})
		e.WithSnapshotter(snap)

		_, _ = e.FetchMovies(ctx)
		_, _ = e.FetchFavorites(ctx, "alice")

		if len(snap.movies) != 1 || len(snap.movies[0]) != 3 {
			t.Errorf("expected one movie snapshot, got %v", snap.movies)
		}
		if len(snap.favorites["alice"]) != 1 {
			t.Errorf("expected alice's favorites saved, got %v", snap.favorites)
		}
	})

	t.Run("Failed Fetch Is Not Saved", func(t *testing.T) {
		mock := &th.MockCatalog{
			GetAllMoviesFunc: func(context.Context) ([]models.Movie, error) { return nil, errors.New("down") },
		}
		snap := &fakeSnapshotter{}
		e, _, _ := newEngine(t, mock, store.State{})
		e.WithSnapshotter(snap)

		_, _ = e.FetchMovies(ctx)
		if len(snap.movies) != 0 {
			t.Error("nothing should be cached after a failure")
		}
	})

	t.Run("Cache Errors Do Not Fail Operation", func(t *testing.T) {
		snap := &fakeSnapshotter{err: errors.New("disk full")}
		e, s, _ := newEngine(t, &th.MockCatalog{}, store.State{})
		e.WithSnapshotter(snap)

		if _, err := e.FetchMovies(ctx); err != nil {
			t.Errorf("expected cache failure to be ignored, got %v", err)
		}
		if s.State().HasError() {
			t.Error("cache failure must not surface in state")
		}
	})
}

func TestEngineLastWriteWins(t *testing.T) {
	release := map[int]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}
	started := make(chan struct{}, 2)
	var n int
	var mu sync.Mutex

	mock := &th.MockCatalog{
		GetAllMoviesFunc: func(context.Context) ([]models.Movie, error) {
			mu.Lock()
			n++
			call := n
			mu.Unlock()

			started <- struct{}{}
			<-release[call]
			return []models.Movie{{ID: call}}, nil
		},
	}
	e, s, _ := newEngine(t, mock, store.State{})

	done := make(chan struct{}, 2)
	fetch := func() {
		_, _ = e.FetchMovies(context.Background())
		done <- struct{}{}
	}

	go fetch()
	<-started
	go fetch()
	<-started

	close(release[2])
	<-done
	if got := models.IDs(s.State().Movies); !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("expected second response applied first, got %v", got)
	}

	close(release[1])
	<-done
	if got := models.IDs(s.State().Movies); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("expected the later completion to win, got %v", got)
	}
}

func TestEngineDrivesDebouncer(t *testing.T) {
	mock := &th.MockCatalog{
		GetAllMoviesFunc: func(context.Context) ([]models.Movie, error) { return th.SampleMovies(), nil },
	}
	e, s, _ := newEngine(t, mock, store.State{Movies: []models.Movie{{ID: 3}}})

	done := make(chan struct{}, 1)
	d := store.NewDebouncer(e, 0)
	d.OnSettled = func(string, error) { done <- struct{}{} }
	d.Update(context.Background(), "  ")
	<-done

	if len(s.State().Movies) != 3 || mock.CallCount("GetAllMovies") != 1 {
		t.Errorf("expected blank search to reload the catalog, got %+v", s.State().Movies)
	}
}
