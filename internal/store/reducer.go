package store

import (
	"slices"

	"github.com/desertthunder/moviex/internal/models"
)

// Reduce returns the state that results from applying a to s.
//
// s is never modified: slices are cloned before they change and payload slices are
// copied in, so neither the previous state nor the action aliases the result.
func Reduce(s State, a Action) State {
	switch a.Kind {
	case ActionAsync:
		return reduceAsync(s, a)
	case ActionSetSearchQuery:
		s.SearchQuery = a.Text
	case ActionToggleShowFavoritesOnly:
		s.ShowFavoritesOnly = !s.ShowFavoritesOnly
	case ActionSetCurrentUsername:
		s.CurrentUsername = a.Text
	case ActionSetSelectedMovie:
		s.SelectedMovie = copyMovie(a.Movie)
	case ActionClearError:
		s.Error = nil
	case ActionToggleFavoriteMovie:
		if slices.Contains(s.FavoriteMovieIDs, a.ID) {
			s.FavoriteMovieIDs = removeID(s.FavoriteMovieIDs, a.ID)
		} else {
			s.FavoriteMovieIDs = appendID(s.FavoriteMovieIDs, a.ID)
		}
	case ActionHydrate:
		if a.Snapshot == nil {
			return s
		}
		s.Movies = cloneMovies(a.Snapshot.Movies)
		s.FavoriteMovieIDs = uniqueIDs(a.Snapshot.FavoriteIDs)
		s.Favorites = resolveFavorites(s.Movies, s.FavoriteMovieIDs)
	}
	return s
}

func reduceAsync(s State, a Action) State {
	switch a.Stage {
	case StagePending:
		s.Loading = true
		s.Error = nil
		return s
	case StageRejected:
		msg := a.Text
		if msg == "" {
			msg = a.Op.Fallback()
		}
		s.Loading = false
		s.Error = &msg
		return s
	}

	s.Loading = false
	s.Error = nil

	switch a.Op {
	case OpFetchMovies, OpSearchMovies, OpClearSearch:
		s.Movies = cloneMovies(a.Movies)
	case OpFetchMovieByID:
		s.SelectedMovie = copyMovie(a.Movie)
	case OpAddMovie:
		if a.Movie != nil {
			s.Movies = append(slices.Clip(s.Movies), *a.Movie)
		}
	case OpEditMovie:
		if a.Movie == nil {
			break
		}
		i := slices.IndexFunc(s.Movies, func(m models.Movie) bool { return m.ID == a.Movie.ID })
		if i >= 0 {
			s.Movies = slices.Clone(s.Movies)
			s.Movies[i] = *a.Movie
		}
	case OpDeleteMovie:
		s.Movies = removeMovie(s.Movies, a.ID)
		s.FavoriteMovieIDs = removeID(s.FavoriteMovieIDs, a.ID)
	case OpFetchFavorites:
		s.Favorites = cloneMovies(a.Movies)
		s.FavoriteMovieIDs = uniqueIDs(models.IDs(a.Movies))
	case OpSearchFavorites:
		s.Favorites = cloneMovies(a.Movies)
	case OpAddToFavorites:
		s.FavoriteMovieIDs = appendID(s.FavoriteMovieIDs, a.ID)
	case OpRemoveFromFavorites:
		s.FavoriteMovieIDs = removeID(s.FavoriteMovieIDs, a.ID)
		s.Favorites = removeMovie(s.Favorites, a.ID)
	}
	return s
}

func cloneMovies(movies []models.Movie) []models.Movie {
	if movies == nil {
		return []models.Movie{}
	}
	return slices.Clone(movies)
}

func copyMovie(m *models.Movie) *models.Movie {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

// appendID adds id unless it is already present.
func appendID(ids []int, id int) []int {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(slices.Clip(ids), id)
}

func removeID(ids []int, id int) []int {
	if !slices.Contains(ids, id) {
		return ids
	}
	return slices.DeleteFunc(slices.Clone(ids), func(v int) bool { return v == id })
}

func removeMovie(movies []models.Movie, id int) []models.Movie {
	match := func(m models.Movie) bool { return m.ID == id }
	if !slices.ContainsFunc(movies, match) {
		return movies
	}
	return slices.DeleteFunc(slices.Clone(movies), match)
}

func uniqueIDs(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// resolveFavorites returns the movies whose ids are in ids, in ids order.
func resolveFavorites(movies []models.Movie, ids []int) []models.Movie {
	out := make([]models.Movie, 0, len(ids))
	for _, id := range ids {
		if i := slices.IndexFunc(movies, func(m models.Movie) bool { return m.ID == id }); i >= 0 {
			out = append(out, movies[i])
		}
	}
	return out
}
