// package models defines the data model for the movie catalog client
package models

import (
	"context"
	"time"
)

// Movie is a catalog entry. ID is assigned by the server and never changes;
// the other fields are replaced wholesale on edit.
type Movie struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Year     string `json:"year"`
	Genre    string `json:"genre"`
	Director string `json:"director"`
	Runtime  string `json:"runtime"`
}

// MovieInput is the body of a create request.
type MovieInput struct {
	Title    string `json:"title"`
	Year     string `json:"year"`
	Genre    string `json:"genre"`
	Director string `json:"director"`
	Runtime  string `json:"runtime"`
	Username string `json:"username"`
}

// MovieUpdate is the body of an update request. Nil fields are left untouched by the server.
type MovieUpdate struct {
	Title    *string `json:"title,omitempty"`
	Year     *string `json:"year,omitempty"`
	Genre    *string `json:"genre,omitempty"`
	Director *string `json:"director,omitempty"`
	Runtime  *string `json:"runtime,omitempty"`
	Username string  `json:"username"`
}

// Empty reports whether the update carries no field changes.
func (u MovieUpdate) Empty() bool {
	return u.Title == nil && u.Year == nil && u.Genre == nil && u.Director == nil && u.Runtime == nil
}

// IDs returns the ids of movies in order.
func IDs(movies []Movie) []int {
	ids := make([]int, len(movies))
	for i, m := range movies {
		ids[i] = m.ID
	}
	return ids
}

// Snapshot is the cached copy of the catalog and one user's favorites.
type Snapshot struct {
	Movies      []Movie
	FavoriteIDs []int
	Username    string
	SyncedAt    time.Time
}

// SnapshotStore persists the last successfully fetched catalog and favorites.
type SnapshotStore interface {
	SaveMovies(ctx context.Context, requestID string, movies []Movie) error
	SaveFavorites(ctx context.Context, requestID, username string, favorites []Movie) error
	Load(ctx context.Context, username string) (*Snapshot, error)
	Clear(ctx context.Context) error
}
