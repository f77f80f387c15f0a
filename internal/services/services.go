// package services defines interface CatalogService for the remote movie catalog
package services

import (
	"context"

	"github.com/desertthunder/moviex/internal/models"
)

// CatalogService is the REST contract of the remote movie catalog.
//
// Mutating and favorites calls carry the acting username; the service never
// checks whether it is empty.
type CatalogService interface {
	// GetAllMovies returns the full catalog.
	GetAllMovies(ctx context.Context) ([]models.Movie, error)

	// GetMovieByID returns a single movie.
	GetMovieByID(ctx context.Context, id int) (*models.Movie, error)

	// AddMovie creates a movie and returns it with its server-assigned id.
	AddMovie(ctx context.Context, input models.MovieInput) (*models.Movie, error)

	// EditMovie applies a partial update and returns the updated movie.
	EditMovie(ctx context.Context, id int, update models.MovieUpdate) (*models.Movie, error)

	// DeleteMovie removes a movie.
	DeleteMovie(ctx context.Context, id int, username string) error

	// GetAllFavourites returns the user's favorite movies.
	GetAllFavourites(ctx context.Context, username string) ([]models.Movie, error)

	// SearchFavourites searches within the user's favorites.
	SearchFavourites(ctx context.Context, username, searchTerm string) ([]models.Movie, error)

	// AddToFavourites marks a movie as a favorite of username.
	AddToFavourites(ctx context.Context, movieID int, username string) error

	// RemoveFromFavourites unmarks a favorite.
	RemoveFromFavourites(ctx context.Context, movieID int, username string) error

	// IsMovieFavorited reports whether username has favorited the movie.
	IsMovieFavorited(ctx context.Context, movieID int, username string) (bool, error)

	// SearchMovies searches the whole catalog.
	SearchMovies(ctx context.Context, searchTerm string) ([]models.Movie, error)
}
