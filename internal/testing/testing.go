// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/moviex/internal/models"
)

// Call records one invocation on [MockCatalog].
type Call struct {
	Method   string
	ID       int
	Username string
	Term     string
}

// MockCatalog is a test double for [services.CatalogService].
//
// Each Func field overrides one method; unset methods succeed with zero values.
// Calls are recorded in order and are safe to inspect from other goroutines.
type MockCatalog struct {
	GetAllMoviesFunc         func(ctx context.Context) ([]models.Movie, error)
	GetMovieByIDFunc         func(ctx context.Context, id int) (*models.Movie, error)
	AddMovieFunc             func(ctx context.Context, input models.MovieInput) (*models.Movie, error)
	EditMovieFunc            func(ctx context.Context, id int, update models.MovieUpdate) (*models.Movie, error)
	DeleteMovieFunc          func(ctx context.Context, id int, username string) error
	GetAllFavouritesFunc     func(ctx context.Context, username string) ([]models.Movie, error)
	SearchFavouritesFunc     func(ctx context.Context, username, term string) ([]models.Movie, error)
	AddToFavouritesFunc      func(ctx context.Context, movieID int, username string) error
	RemoveFromFavouritesFunc func(ctx context.Context, movieID int, username string) error
	IsMovieFavoritedFunc     func(ctx context.Context, movieID int, username string) (bool, error)
	SearchMoviesFunc         func(ctx context.Context, term string) ([]models.Movie, error)

	mu    sync.Mutex
	calls []Call
}

func (m *MockCatalog) record(c Call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

// Calls returns a copy of the recorded calls.
func (m *MockCatalog) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times method was invoked.
func (m *MockCatalog) CallCount(method string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (m *MockCatalog) GetAllMovies(ctx context.Context) ([]models.Movie, error) {
	m.record(Call{Method: "GetAllMovies"})
	if m.GetAllMoviesFunc != nil {
		return m.GetAllMoviesFunc(ctx)
	}
	return []models.Movie{}, nil
}

func (m *MockCatalog) GetMovieByID(ctx context.Context, id int) (*models.Movie, error) {
	m.record(Call{Method: "GetMovieByID", ID: id})
	if m.GetMovieByIDFunc != nil {
		return m.GetMovieByIDFunc(ctx, id)
	}
	return &models.Movie{ID: id}, nil
}

func (m *MockCatalog) AddMovie(ctx context.Context, input models.MovieInput) (*models.Movie, error) {
	m.record(Call{Method: "AddMovie", Username: input.Username})
	if m.AddMovieFunc != nil {
		return m.AddMovieFunc(ctx, input)
	}
	return &models.Movie{Title: input.Title, Year: input.Year, Genre: input.Genre, Director: input.Director, Runtime: input.Runtime}, nil
}

func (m *MockCatalog) EditMovie(ctx context.Context, id int, update models.MovieUpdate) (*models.Movie, error) {
	m.record(Call{Method: "EditMovie", ID: id, Username: update.Username})
	if m.EditMovieFunc != nil {
		return m.EditMovieFunc(ctx, id, update)
	}
	return &models.Movie{ID: id}, nil
}

func (m *MockCatalog) DeleteMovie(ctx context.Context, id int, username string) error {
	m.record(Call{Method: "DeleteMovie", ID: id, Username: username})
	if m.DeleteMovieFunc != nil {
		return m.DeleteMovieFunc(ctx, id, username)
	}
	return nil
}

func (m *MockCatalog) GetAllFavourites(ctx context.Context, username string) ([]models.Movie, error) {
	m.record(Call{Method: "GetAllFavourites", Username: username})
	if m.GetAllFavouritesFunc != nil {
		return m.GetAllFavouritesFunc(ctx, username)
	}
	return []models.Movie{}, nil
}

func (m *MockCatalog) SearchFavourites(ctx context.Context, username, term string) ([]models.Movie, error) {
	m.record(Call{Method: "SearchFavourites", Username: username, Term: term})
	if m.SearchFavouritesFunc != nil {
		return m.SearchFavouritesFunc(ctx, username, term)
	}
	return []models.Movie{}, nil
}

func (m *MockCatalog) AddToFavourites(ctx context.Context, movieID int, username string) error {
	m.record(Call{Method: "AddToFavourites", ID: movieID, Username: username})
	if m.AddToFavouritesFunc != nil {
		return m.AddToFavouritesFunc(ctx, movieID, username)
	}
	return nil
}

func (m *MockCatalog) RemoveFromFavourites(ctx context.Context, movieID int, username string) error {
	m.record(Call{Method: "RemoveFromFavourites", ID: movieID, Username: username})
	if m.RemoveFromFavouritesFunc != nil {
		return m.RemoveFromFavouritesFunc(ctx, movieID, username)
	}
	return nil
}

func (m *MockCatalog) IsMovieFavorited(ctx context.Context, movieID int, username string) (bool, error) {
	m.record(Call{Method: "IsMovieFavorited", ID: movieID, Username: username})
	if m.IsMovieFavoritedFunc != nil {
		return m.IsMovieFavoritedFunc(ctx, movieID, username)
	}
	return false, nil
}

func (m *MockCatalog) SearchMovies(ctx context.Context, term string) ([]models.Movie, error) {
	m.record(Call{Method: "SearchMovies", Term: term})
	if m.SearchMoviesFunc != nil {
		return m.SearchMoviesFunc(ctx, term)
	}
	return []models.Movie{}, nil
}

// SampleMovies returns a small fixed catalog.
func SampleMovies() []models.Movie {
	return []models.Movie{
		{ID: 1, Title: "Test Movie", Year: "2020", Genre: "Drama", Director: "Jane Doe", Runtime: "100 min"},
		{ID: 2, Title: "Another Movie", Year: "2021", Genre: "Comedy", Director: "John Smith", Runtime: "95 min"},
		{ID: 3, Title: "Heat", Year: "1995", Genre: "Crime", Director: "Michael Mann", Runtime: "170 min"},
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
