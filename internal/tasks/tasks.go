package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/services"
	"github.com/desertthunder/moviex/internal/shared"
	"github.com/desertthunder/moviex/internal/store"
)

// Snapshotter persists successful fetches for offline use.
//
// Implemented by repositories.SnapshotRepository.
type Snapshotter interface {
	SaveMovies(ctx context.Context, requestID string, movies []models.Movie) error
	SaveFavorites(ctx context.Context, requestID, username string, favorites []models.Movie) error
}

// Engine runs catalog operations against a [services.CatalogService] and records
// each one's lifecycle in a [store.Store].
//
// Every method dispatches a pending action, calls the service, then dispatches
// either the fulfilled or the rejected action. The service error is also returned.
// Overlapping calls are not coordinated: whichever settles last wins.
type Engine struct {
	service services.CatalogService
	store   *store.Store
	cache   Snapshotter
	logger  *log.Logger
}

var _ store.Searcher = (*Engine)(nil)

// NewEngine creates an Engine. logger may be nil.
func NewEngine(service services.CatalogService, s *store.Store, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{service: service, store: s, logger: logger}
}

// WithSnapshotter enables persisting fetched movies and favorites.
func (e *Engine) WithSnapshotter(s Snapshotter) *Engine {
	e.cache = s
	return e
}

// Store returns the store the engine dispatches to.
func (e *Engine) Store() *store.Store {
	return e.store
}

func (e *Engine) ready() error {
	if e.service == nil {
		return fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

func (e *Engine) begin(op store.Op) {
	e.logger.Debug("operation started", "op", op)
	e.store.Dispatch(store.Pending(op))
}

func (e *Engine) fail(op store.Op, err error) error {
	e.logger.Warn("operation failed", "op", op, "err", err)
	e.store.Dispatch(store.Rejected(op, err))
	return err
}

// FetchMovies loads the whole catalog.
func (e *Engine) FetchMovies(ctx context.Context) ([]models.Movie, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	e.begin(store.OpFetchMovies)

	movies, err := e.service.GetAllMovies(ctx)
	if err != nil {
		return nil, e.fail(store.OpFetchMovies, err)
	}

	e.store.Dispatch(store.MoviesFetched(movies))
	e.saveMovies(ctx, movies)
	return movies, nil
}

// FetchMovieByID loads one movie and selects it.
func (e *Engine) FetchMovieByID(ctx context.Context, id int) (*models.Movie, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	e.begin(store.OpFetchMovieByID)

	movie, err := e.service.GetMovieByID(ctx, id)
	if err != nil {
		return nil, e.fail(store.OpFetchMovieByID, err)
	}

	e.store.Dispatch(store.MovieFetched(movie))
	return movie, nil
}

// AddMovie creates a movie; the server's copy (with its id) is appended to the catalog.
func (e *Engine) AddMovie(ctx context.Context, input models.MovieInput) (*models.Movie, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	e.begin(store.OpAddMovie)

	movie, err := e.service.AddMovie(ctx, input)
	if err != nil {
		return nil, e.fail(store.OpAddMovie, err)
	}
	if movie == nil {
		return nil, e.fail(store.OpAddMovie, errors.New(store.OpAddMovie.Fallback()))
	}

	e.store.Dispatch(store.MovieAdded(*movie))
	return movie, nil
}

// EditMovie applies a partial update and replaces the catalog entry with the server's copy.
func (e *Engine) EditMovie(ctx context.Context, id int, update models.MovieUpdate) (*models.Movie, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	e.begin(store.OpEditMovie)

	movie, err := e.service.EditMovie(ctx, id, update)
	if err != nil {
		return nil, e.fail(store.OpEditMovie, err)
	}
	if movie == nil {
		return nil, e.fail(store.OpEditMovie, errors.New(store.OpEditMovie.Fallback()))
	}

	e.store.Dispatch(store.MovieEdited(*movie))
	return movie, nil
}

// DeleteMovie removes a movie from the catalog and from the favorite ids.
func (e *Engine) DeleteMovie(ctx context.Context, id int, username string) error {
	if err := e.ready(); err != nil {
		return err
	}
	e.begin(store.OpDeleteMovie)

	if err := e.service.DeleteMovie(ctx, id, username); err != nil {
		return e.fail(store.OpDeleteMovie, err)
	}

	e.store.Dispatch(store.MovieDeleted(id))
	return nil
}

// FetchFavorites replaces the favorite set with the server's list for username.
func (e *Engine) FetchFavorites(ctx context.Context, username string) ([]models.Movie, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	e.begin(store.OpFetchFavorites)

	favorites, err := e.service.GetAllFavourites(ctx, username)
	if err != nil {
		return nil, e.fail(store.OpFetchFavorites, err)
	}

	e.store.Dispatch(store.FavoritesFetched(favorites))
	e.saveFavorites(ctx, username, favorites)
	return favorites, nil
}

// SearchFavorites narrows the favorite objects to those matching term. Favorite ids are untouched.
func (e *Engine) SearchFavorites(ctx context.Context, username, term string) ([]models.Movie, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	e.begin(store.OpSearchFavorites)

	favorites, err := e.service.SearchFavourites(ctx, username, term)
	if err != nil {
		return nil, e.fail(store.OpSearchFavorites, err)
	}

	e.store.Dispatch(store.FavoritesSearched(favorites))
	return favorites, nil
}

// AddToFavorites marks movieID as a favorite of username.
func (e *Engine) AddToFavorites(ctx context.Context, movieID int, username string) error {
	if err := e.ready(); err != nil {
		return err
	}
	e.begin(store.OpAddToFavorites)

	if err := e.service.AddToFavourites(ctx, movieID, username); err != nil {
		return e.fail(store.OpAddToFavorites, err)
	}

	e.store.Dispatch(store.FavoriteAdded(movieID))
	return nil
}

// RemoveFromFavorites unmarks movieID for username.
func (e *Engine) RemoveFromFavorites(ctx context.Context, movieID int, username string) error {
	if err := e.ready(); err != nil {
		return err
	}
	e.begin(store.OpRemoveFromFavorites)

	if err := e.service.RemoveFromFavourites(ctx, movieID, username); err != nil {
		return e.fail(store.OpRemoveFromFavorites, err)
	}

	e.store.Dispatch(store.FavoriteRemoved(movieID))
	return nil
}

// IsMovieFavorited asks the server directly. It does not touch the store.
func (e *Engine) IsMovieFavorited(ctx context.Context, movieID int, username string) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	return e.service.IsMovieFavorited(ctx, movieID, username)
}

// SearchMovies replaces the catalog view with the server's matches for term.
func (e *Engine) SearchMovies(ctx context.Context, term string) ([]models.Movie, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	e.begin(store.OpSearchMovies)

	movies, err := e.service.SearchMovies(ctx, term)
	if err != nil {
		return nil, e.fail(store.OpSearchMovies, err)
	}

	e.store.Dispatch(store.MoviesSearched(movies))
	return movies, nil
}

// ClearSearch restores the full catalog after a search.
func (e *Engine) ClearSearch(ctx context.Context) ([]models.Movie, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	e.begin(store.OpClearSearch)

	movies, err := e.service.GetAllMovies(ctx)
	if err != nil {
		return nil, e.fail(store.OpClearSearch, err)
	}

	e.store.Dispatch(store.SearchCleared(movies))
	e.saveMovies(ctx, movies)
	return movies, nil
}

// ToggleFavorite adds or removes movieID depending on whether it is currently a favorite
// of the store's user. The username must already be set.
func (e *Engine) ToggleFavorite(ctx context.Context, movieID int) (bool, error) {
	st := e.store.State()
	if st.CurrentUsername == "" {
		return false, shared.ErrUsernameRequired
	}

	if st.IsFavorite(movieID) {
		return false, e.RemoveFromFavorites(ctx, movieID, st.CurrentUsername)
	}
	return true, e.AddToFavorites(ctx, movieID, st.CurrentUsername)
}

// ConfirmFavorites records a freshly confirmed username and loads that user's favorites.
func (e *Engine) ConfirmFavorites(ctx context.Context, username string) error {
	if username == "" {
		return shared.ErrUsernameRequired
	}
	e.store.Dispatch(store.SetCurrentUsername(username))
	_, err := e.FetchFavorites(ctx, username)
	return err
}

func (e *Engine) saveMovies(ctx context.Context, movies []models.Movie) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SaveMovies(ctx, shared.GenerateID(), movies); err != nil {
		e.logger.Warn("failed to cache movies", "err", err)
	}
}

func (e *Engine) saveFavorites(ctx context.Context, username string, favorites []models.Movie) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SaveFavorites(ctx, shared.GenerateID(), username, favorites); err != nil {
		e.logger.Warn("failed to cache favorites", "err", err)
	}
}
