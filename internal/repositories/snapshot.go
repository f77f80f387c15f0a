package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
)

const (
	KindMovies    = "movies"
	KindFavorites = "favorites"
)

var _ models.SnapshotStore = (*SnapshotRepository)(nil)

// SnapshotRepository implements [models.SnapshotStore] on SQLite.
//
// Each save replaces the previous snapshot for its scope (the whole catalog, or one user's
// favorites) inside a single transaction and appends a sync_log row keyed by the request ID.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// SaveMovies replaces the cached catalog, keeping the given order.
func (r *SnapshotRepository) SaveMovies(ctx context.Context, requestID string, movies []models.Movie) error {
	return r.withTx(ctx, func(tx *sql.Tx, now time.Time) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM movies"); err != nil {
			return fmt.Errorf("failed to clear movies: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO movies (id, title, year, genre, director, runtime, position, synced_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare movie insert: %w", err)
		}
		defer stmt.Close()

		for i, m := range movies {
			if _, err := stmt.ExecContext(ctx, m.ID, m.Title, m.Year, m.Genre, m.Director, m.Runtime, i, now); err != nil {
				return fmt.Errorf("failed to insert movie %d: %w", m.ID, err)
			}
		}

		return insertSyncLog(ctx, tx, requestID, KindMovies, "", len(movies), now)
	})
}

// SaveFavorites replaces the cached favorite ids of username.
func (r *SnapshotRepository) SaveFavorites(ctx context.Context, requestID, username string, favorites []models.Movie) error {
	if username == "" {
		return shared.ErrUsernameRequired
	}

	return r.withTx(ctx, func(tx *sql.Tx, now time.Time) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM favorites WHERE username = ?", username); err != nil {
			return fmt.Errorf("failed to clear favorites: %w", err)
		}

		for i, m := range favorites {
			_, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO favorites (username, movie_id, position, synced_at)
				VALUES (?, ?, ?, ?)
			`, username, m.ID, i, now)
			if err != nil {
				return fmt.Errorf("failed to insert favorite %d: %w", m.ID, err)
			}
		}

		return insertSyncLog(ctx, tx, requestID, KindFavorites, username, len(favorites), now)
	})
}

// Load returns the cached catalog and the favorite ids of username (none when username is empty).
//
// Returns [shared.ErrCacheMiss] when the catalog has never been saved.
func (r *SnapshotRepository) Load(ctx context.Context, username string) (*models.Snapshot, error) {
	entry, err := r.latestSync(ctx, KindMovies, "")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	movies, err := r.listMovies(ctx)
	if err != nil {
		return nil, err
	}

	favoriteIDs := []int{}
	if username != "" {
		if favoriteIDs, err = r.listFavoriteIDs(ctx, username); err != nil {
			return nil, err
		}
	}

	return &models.Snapshot{
		Movies:      movies,
		FavoriteIDs: favoriteIDs,
		Username:    username,
		SyncedAt:    entry.SyncedAt,
	}, nil
}

// Clear removes every cached movie, favorite and sync record.
func (r *SnapshotRepository) Clear(ctx context.Context) error {
	return r.withTx(ctx, func(tx *sql.Tx, _ time.Time) error {
		for _, table := range []string{"movies", "favorites", "sync_log"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
}

func (r *SnapshotRepository) withTx(ctx context.Context, fn func(tx *sql.Tx, now time.Time) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx, time.Now().UTC()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) listMovies(ctx context.Context) ([]models.Movie, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, year, genre, director, runtime
		FROM movies
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	movies := []models.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movies: %w", err)
	}

	return movies, nil
}

func (r *SnapshotRepository) listFavoriteIDs(ctx context.Context, username string) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT movie_id FROM favorites
		WHERE username = ?
		ORDER BY position
	`, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorites: %w", err)
	}

	return ids, nil
}

// GetMovie looks up one cached movie.
//
// Returns [shared.ErrNotFound] when the id is not in the snapshot.
func (r *SnapshotRepository) GetMovie(ctx context.Context, id int) (*models.Movie, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, year, genre, director, runtime
		FROM movies
		WHERE id = ?
	`, id)

	m, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", shared.ErrNotFound, id)
	}
	return m, err
}

// scanner is satisfied by [*sql.Row] and [*sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func scanMovie(s scanner) (*models.Movie, error) {
	var m models.Movie
	err := s.Scan(&m.ID, &m.Title, &m.Year, &m.Genre, &m.Director, &m.Runtime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan movie: %w", err)
	}
	return &m, nil
}
