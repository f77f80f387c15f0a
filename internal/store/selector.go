package store

import (
	"slices"
	"strings"

	"github.com/desertthunder/moviex/internal/models"
)

// SelectFilteredMovies returns the movies visible under the current filters, in catalog order.
//
// A non-blank query keeps movies whose title, director or genre contains it, ignoring case.
// Favorites-only then keeps movies whose id is a favorite.
func SelectFilteredMovies(s State) []models.Movie {
	query := strings.ToLower(strings.TrimSpace(s.SearchQuery))

	out := make([]models.Movie, 0, len(s.Movies))
	for _, m := range s.Movies {
		if query != "" && !matchesQuery(m, query) {
			continue
		}
		if s.ShowFavoritesOnly && !slices.Contains(s.FavoriteMovieIDs, m.ID) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func matchesQuery(m models.Movie, query string) bool {
	return strings.Contains(strings.ToLower(m.Title), query) ||
		strings.Contains(strings.ToLower(m.Director), query) ||
		strings.Contains(strings.ToLower(m.Genre), query)
}
