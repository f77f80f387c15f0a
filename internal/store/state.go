package store

import (
	"slices"

	"github.com/desertthunder/moviex/internal/models"
)

// State is a snapshot of everything the client knows about the catalog.
type State struct {
	Movies            []models.Movie
	SelectedMovie     *models.Movie
	FavoriteMovieIDs  []int // never holds duplicates
	Favorites         []models.Movie
	SearchQuery       string
	ShowFavoritesOnly bool
	CurrentUsername   string // empty until a username is confirmed
	Loading           bool
	Error             *string
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Movies = slices.Clone(s.Movies)
	out.FavoriteMovieIDs = slices.Clone(s.FavoriteMovieIDs)
	out.Favorites = slices.Clone(s.Favorites)
	if s.SelectedMovie != nil {
		m := *s.SelectedMovie
		out.SelectedMovie = &m
	}
	if s.Error != nil {
		e := *s.Error
		out.Error = &e
	}
	return out
}

// ErrorMessage returns the recorded error or "".
func (s State) ErrorMessage() string {
	if s.Error == nil {
		return ""
	}
	return *s.Error
}

// HasError reports whether the last operation failed and the failure has not been cleared.
func (s State) HasError() bool {
	return s.Error != nil
}

// IsFavorite reports whether id is in the favorite set.
func (s State) IsFavorite(id int) bool {
	return slices.Contains(s.FavoriteMovieIDs, id)
}

// MovieByID looks up a loaded movie.
func (s State) MovieByID(id int) (models.Movie, bool) {
	i := slices.IndexFunc(s.Movies, func(m models.Movie) bool { return m.ID == id })
	if i < 0 {
		return models.Movie{}, false
	}
	return s.Movies[i], true
}
