package store

import (
	"github.com/desertthunder/moviex/internal/models"
)

// Op identifies a server interaction.
type Op int

const (
	OpFetchMovies Op = iota
	OpFetchMovieByID
	OpAddMovie
	OpEditMovie
	OpDeleteMovie
	OpFetchFavorites
	OpSearchFavorites
	OpAddToFavorites
	OpRemoveFromFavorites
	OpSearchMovies
	OpClearSearch
)

func (o Op) String() string {
	switch o {
	case OpFetchMovies:
		return "fetch_movies"
	case OpFetchMovieByID:
		return "fetch_movie_by_id"
	case OpAddMovie:
		return "add_movie"
	case OpEditMovie:
		return "edit_movie"
	case OpDeleteMovie:
		return "delete_movie"
	case OpFetchFavorites:
		return "fetch_favorites"
	case OpSearchFavorites:
		return "search_favorites"
	case OpAddToFavorites:
		return "add_to_favorites"
	case OpRemoveFromFavorites:
		return "remove_from_favorites"
	case OpSearchMovies:
		return "search_movies"
	case OpClearSearch:
		return "clear_search"
	default:
		return ""
	}
}

// Fallback is the error recorded when a rejected operation carries no message.
func (o Op) Fallback() string {
	switch o {
	case OpFetchMovies, OpClearSearch:
		return "Failed to fetch movies"
	case OpFetchMovieByID:
		return "Failed to fetch movie"
	case OpAddMovie:
		return "Failed to add movie"
	case OpEditMovie:
		return "Failed to edit movie"
	case OpDeleteMovie:
		return "Failed to delete movie"
	case OpFetchFavorites:
		return "Failed to fetch favorites"
	case OpSearchFavorites:
		return "Failed to search favorites"
	case OpAddToFavorites:
		return "Failed to add to favorites"
	case OpRemoveFromFavorites:
		return "Failed to remove from favorites"
	case OpSearchMovies:
		return "Failed to search movies"
	default:
		return "Request failed"
	}
}

// Stage is the lifecycle position of an async action.
type Stage int

const (
	StagePending Stage = iota
	StageFulfilled
	StageRejected
)

func (s Stage) String() string {
	switch s {
	case StagePending:
		return "pending"
	case StageFulfilled:
		return "fulfilled"
	case StageRejected:
		return "rejected"
	default:
		return ""
	}
}

// ActionKind enumerates everything [Reduce] understands.
type ActionKind int

const (
	ActionAsync ActionKind = iota
	ActionSetSearchQuery
	ActionToggleShowFavoritesOnly
	ActionSetCurrentUsername
	ActionSetSelectedMovie
	ActionClearError
	ActionToggleFavoriteMovie
	ActionHydrate
)

// Action is a state transition request. Only the fields relevant to Kind (and Op) are read.
type Action struct {
	Kind  ActionKind
	Op    Op
	Stage Stage

	Movies   []models.Movie
	Movie    *models.Movie
	ID       int
	Text     string
	Snapshot *models.Snapshot
}

// Pending starts op.
func Pending(op Op) Action {
	return Action{Kind: ActionAsync, Op: op, Stage: StagePending}
}

// Rejected settles op with a failure. A nil or empty error falls back to [Op.Fallback].
func Rejected(op Op, err error) Action {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = op.Fallback()
	}
	return Action{Kind: ActionAsync, Op: op, Stage: StageRejected, Text: msg}
}

func fulfilled(op Op) Action {
	return Action{Kind: ActionAsync, Op: op, Stage: StageFulfilled}
}

// MoviesFetched settles [OpFetchMovies].
func MoviesFetched(movies []models.Movie) Action {
	a := fulfilled(OpFetchMovies)
	a.Movies = movies
	return a
}

// MovieFetched settles [OpFetchMovieByID].
func MovieFetched(movie *models.Movie) Action {
	a := fulfilled(OpFetchMovieByID)
	a.Movie = movie
	return a
}

// MovieAdded settles [OpAddMovie] with the server's copy of the new movie.
func MovieAdded(movie models.Movie) Action {
	a := fulfilled(OpAddMovie)
	a.Movie = &movie
	return a
}

// MovieEdited settles [OpEditMovie] with the server's copy of the updated movie.
func MovieEdited(movie models.Movie) Action {
	a := fulfilled(OpEditMovie)
	a.Movie = &movie
	return a
}

// MovieDeleted settles [OpDeleteMovie].
func MovieDeleted(id int) Action {
	a := fulfilled(OpDeleteMovie)
	a.ID = id
	return a
}

// FavoritesFetched settles [OpFetchFavorites].
func FavoritesFetched(favorites []models.Movie) Action {
	a := fulfilled(OpFetchFavorites)
	a.Movies = favorites
	return a
}

// FavoritesSearched settles [OpSearchFavorites].
func FavoritesSearched(favorites []models.Movie) Action {
	a := fulfilled(OpSearchFavorites)
	a.Movies = favorites
	return a
}

// FavoriteAdded settles [OpAddToFavorites].
func FavoriteAdded(movieID int) Action {
	a := fulfilled(OpAddToFavorites)
	a.ID = movieID
	return a
}

// FavoriteRemoved settles [OpRemoveFromFavorites].
func FavoriteRemoved(movieID int) Action {
	a := fulfilled(OpRemoveFromFavorites)
	a.ID = movieID
	return a
}

// MoviesSearched settles [OpSearchMovies].
func MoviesSearched(movies []models.Movie) Action {
	a := fulfilled(OpSearchMovies)
	a.Movies = movies
	return a
}

// SearchCleared settles [OpClearSearch] with the full catalog.
func SearchCleared(movies []models.Movie) Action {
	a := fulfilled(OpClearSearch)
	a.Movies = movies
	return a
}

// SetSearchQuery stores q verbatim.
func SetSearchQuery(q string) Action {
	return Action{Kind: ActionSetSearchQuery, Text: q}
}

func ToggleShowFavoritesOnly() Action {
	return Action{Kind: ActionToggleShowFavoritesOnly}
}

// SetCurrentUsername stores name verbatim.
func SetCurrentUsername(name string) Action {
	return Action{Kind: ActionSetCurrentUsername, Text: name}
}

// SetSelectedMovie selects movie, or clears the selection when nil.
func SetSelectedMovie(movie *models.Movie) Action {
	return Action{Kind: ActionSetSelectedMovie, Movie: movie}
}

func ClearError() Action {
	return Action{Kind: ActionClearError}
}

// ToggleFavoriteMovie flips id in the local favorite set without contacting the server.
func ToggleFavoriteMovie(id int) Action {
	return Action{Kind: ActionToggleFavoriteMovie, ID: id}
}

// Hydrate loads a cached snapshot of the catalog and favorites.
func Hydrate(snap *models.Snapshot) Action {
	return Action{Kind: ActionHydrate, Snapshot: snap}
}
