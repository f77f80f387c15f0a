package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
)

func TestStore(t *testing.T) {
	t.Run("Dispatch Updates State", func(t *testing.T) {
		s := New(State{})
		s.Dispatch(MoviesFetched(twoMovies()))

		if got := s.State(); len(got.Movies) != 2 {
			t.Errorf("expected 2 movies, got %d", len(got.Movies))
		}
	})

	t.Run("State Returns Copy", func(t *testing.T) {
		s := New(State{Movies: twoMovies(), FavoriteMovieIDs: []int{1}})

		got := s.State()
		got.Movies[0].Title = "mutated"
		got.FavoriteMovieIDs[0] = 99

		again := s.State()
		if again.Movies[0].Title != "Test Movie" || again.FavoriteMovieIDs[0] != 1 {
			t.Error("callers must not be able to modify stored state")
		}
	})

	t.Run("Subscribe And Unsubscribe", func(t *testing.T) {
		s := New(State{})

		var seen []bool
		unsubscribe := s.Subscribe(func(st State) {
			seen = append(seen, st.Loading)
		})

		s.Dispatch(Pending(OpFetchMovies))
		s.Dispatch(MoviesFetched(nil))
		unsubscribe()
		s.Dispatch(Pending(OpFetchMovies))

		if len(seen) != 2 || !seen[0] || seen[1] {
			t.Errorf("expected [true false], got %v", seen)
		}
	})

	t.Run("Zero Value Usable", func(t *testing.T) {
		var s Store
		calls := 0
		s.Subscribe(func(State) { calls++ })
		s.Dispatch(ToggleShowFavoritesOnly())

		if !s.State().ShowFavoritesOnly || calls != 1 {
			t.Errorf("expected toggle and one notification, got %v %d", s.State().ShowFavoritesOnly, calls)
		}
	})

	t.Run("Concurrent Dispatch", func(t *testing.T) {
		s := New(State{})

		var wg sync.WaitGroup
		for i := 1; i <= 50; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				s.Dispatch(FavoriteAdded(id))
				_ = s.State()
			}(i)
		}
		wg.Wait()

		if got := len(s.State().FavoriteMovieIDs); got != 50 {
			t.Errorf("expected 50 favorite ids, got %d", got)
		}
	})
}

func TestGate(t *testing.T) {
	t.Run("Known Username Bypasses Confirmer", func(t *testing.T) {
		s := New(State{CurrentUsername: "alice"})
		asked := false
		g := Gate{Confirmer: ConfirmerFunc(func(context.Context) (string, error) {
			asked = true
			return "bob", nil
		})}

		var got string
		err := g.Run(context.Background(), s, func(username string) error {
			got = username
			return nil
		})

		if err != nil || got != "alice" {
			t.Errorf("expected action with alice, got %q %v", got, err)
		}
		if asked {
			t.Error("confirmer must not be asked when a username is set")
		}
	})

	t.Run("Confirmed Username Is Stored Then Used", func(t *testing.T) {
		s := New(State{})
		g := Gate{Confirmer: ConfirmerFunc(func(context.Context) (string, error) {
			return "bob", nil
		})}

		var stateDuringAction string
		err := g.Run(context.Background(), s, func(username string) error {
			stateDuringAction = s.State().CurrentUsername
			return nil
		})

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if stateDuringAction != "bob" {
			t.Errorf("expected username dispatched before action, got %q", stateDuringAction)
		}
	})

	t.Run("Action Error Is Returned", func(t *testing.T) {
		s := New(State{CurrentUsername: "alice"})
		want := errors.New("boom")

		err := Gate{}.Run(context.Background(), s, func(string) error { return want })
		if !errors.Is(err, want) {
			t.Errorf("expected action error, got %v", err)
		}
	})

	aborts := []struct {
		name      string
		confirmer Confirmer
	}{
		{"blank answer", ConfirmerFunc(func(context.Context) (string, error) { return "   ", nil })},
		{"confirmer error", ConfirmerFunc(func(context.Context) (string, error) { return "", errors.New("cancelled") })},
		{"no confirmer", nil},
	}

	for _, tt := range aborts {
		t.Run("Aborts On "+tt.name, func(t *testing.T) {
			s := New(State{})
			called := false

			err := Gate{Confirmer: tt.confirmer}.Run(context.Background(), s, func(string) error {
				called = true
				return nil
			})

			if !errors.Is(err, shared.ErrUsernameRequired) {
				t.Errorf("expected ErrUsernameRequired, got %v", err)
			}
			if called {
				t.Error("action must not run")
			}
			if s.State().CurrentUsername != "" {
				t.Error("username must stay empty")
			}
		})
	}
}

type fakeSearcher struct {
	mu      sync.Mutex
	terms   []string
	clears  int
	settled chan struct{}
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{settled: make(chan struct{}, 10)}
}

func (f *fakeSearcher) SearchMovies(_ context.Context, term string) ([]models.Movie, error) {
	f.mu.Lock()
	f.terms = append(f.terms, term)
	f.mu.Unlock()
	f.settled <- struct{}{}
	return nil, nil
}

func (f *fakeSearcher) ClearSearch(context.Context) ([]models.Movie, error) {
	f.mu.Lock()
	f.clears++
	f.mu.Unlock()
	f.settled <- struct{}{}
	return nil, nil
}

func (f *fakeSearcher) snapshot() ([]string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.terms...), f.clears
}

func waitSettled(t *testing.T, f *fakeSearcher) {
	t.Helper()
	select {
	case <-f.settled:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for debounced search")
	}
}

func TestDebouncer(t *testing.T) {
	const window = 20 * time.Millisecond

	t.Run("Defaults", func(t *testing.T) {
		d := NewDebouncer(newFakeSearcher(), 0)
		if d.Window() != DefaultDebounce {
			t.Errorf("expected %v, got %v", DefaultDebounce, d.Window())
		}
	})

	t.Run("Coalesces To Last Value", func(t *testing.T) {
		f := newFakeSearcher()
		d := NewDebouncer(f, window)

		for _, v := range []string{"h", "he", "hea", "heat"} {
			d.Update(context.Background(), v)
		}
		waitSettled(t, f)
		time.Sleep(3 * window)

		terms, clears := f.snapshot()
		if len(terms) != 1 || terms[0] != "heat" || clears != 0 {
			t.Errorf("expected one search for heat, got %v (clears %d)", terms, clears)
		}
	})

	t.Run("Blank Value Resets", func(t *testing.T) {
		f := newFakeSearcher()
		d := NewDebouncer(f, window)

		d.Update(context.Background(), "heat")
		d.Update(context.Background(), "   ")
		waitSettled(t, f)

		terms, clears := f.snapshot()
		if len(terms) != 0 || clears != 1 {
			t.Errorf("expected one reset and no search, got %v (clears %d)", terms, clears)
		}
	})

	t.Run("Term Is Trimmed", func(t *testing.T) {
		f := newFakeSearcher()
		d := NewDebouncer(f, window)

		d.Update(context.Background(), "  alien ")
		waitSettled(t, f)

		if terms, _ := f.snapshot(); len(terms) != 1 || terms[0] != "alien" {
			t.Errorf("expected trimmed term, got %v", terms)
		}
	})

	t.Run("Stop Cancels Pending", func(t *testing.T) {
		f := newFakeSearcher()
		d := NewDebouncer(f, window)

		d.Update(context.Background(), "heat")
		d.Stop()
		time.Sleep(5 * window)

		if terms, clears := f.snapshot(); len(terms) != 0 || clears != 0 {
			t.Errorf("expected nothing to fire, got %v (clears %d)", terms, clears)
		}
	})

	t.Run("OnSettled", func(t *testing.T) {
		f := newFakeSearcher()
		d := NewDebouncer(f, window)

		done := make(chan string, 1)
		d.OnSettled = func(value string, err error) { done <- value }

		d.Update(context.Background(), "heat")
		select {
		case v := <-done:
			if v != "heat" {
				t.Errorf("expected heat, got %q", v)
			}
		case <-time.After(time.Second):
			t.Fatal("OnSettled not called")
		}
	})
}
