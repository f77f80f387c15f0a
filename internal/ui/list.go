package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/store"
)

var _ list.Item = movieItem{}

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie    models.Movie
	favorite bool
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string {
	if i.favorite {
		return "★ " + i.movie.Title
	}
	return i.movie.Title
}
func (i movieItem) Description() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{i.movie.Year, i.movie.Genre, i.movie.Director, i.movie.Runtime} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return fmt.Sprintf("#%d • %s", i.movie.ID, strings.Join(parts, " • "))
}

// movieItems builds list items from the filtered view of s.
func movieItems(s store.State) []list.Item {
	movies := store.SelectFilteredMovies(s)
	items := make([]list.Item, len(movies))
	for i, m := range movies {
		items[i] = movieItem{movie: m, favorite: s.IsFavorite(m.ID)}
	}
	return items
}
