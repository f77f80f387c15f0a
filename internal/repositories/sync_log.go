package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SyncEntry records one snapshot write.
type SyncEntry struct {
	ID        string    // request ID of the fetch that produced the snapshot
	Kind      string    // [KindMovies] or [KindFavorites]
	Username  string    // empty for movies
	ItemCount int       // number of rows written
	SyncedAt  time.Time // when the snapshot was written (UTC)
}

// CacheStats summarizes the snapshot database.
type CacheStats struct {
	Movies    int
	Favorites map[string]int // favorite count per username
	LastSync  *SyncEntry     // nil when nothing has been cached
}

func insertSyncLog(ctx context.Context, tx *sql.Tx, id, kind, username string, count int, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sync_log (id, kind, username, item_count, synced_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, kind, username, count, now)
	if err != nil {
		return fmt.Errorf("failed to record sync: %w", err)
	}
	return nil
}

// History returns the most recent sync records, newest first.
func (r *SnapshotRepository) History(ctx context.Context, limit int) ([]SyncEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, username, item_count, synced_at
		FROM sync_log
		ORDER BY synced_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync log: %w", err)
	}
	defer rows.Close()

	var entries []SyncEntry
	for rows.Next() {
		entry, err := scanSyncEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync log: %w", err)
	}

	return entries, nil
}

// Stats counts cached rows and reports the latest sync.
func (r *SnapshotRepository) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{Favorites: make(map[string]int)}

	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&stats.Movies); err != nil {
		return nil, fmt.Errorf("failed to count movies: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, "SELECT username, COUNT(*) FROM favorites GROUP BY username")
	if err != nil {
		return nil, fmt.Errorf("failed to count favorites: %w", err)
	}
	for rows.Next() {
		var username string
		var count int
		if err := rows.Scan(&username, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan favorite count: %w", err)
		}
		stats.Favorites[username] = count
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating favorite counts: %w", err)
	}
	rows.Close()

	history, err := r.History(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		stats.LastSync = &history[0]
	}

	return stats, nil
}

func (r *SnapshotRepository) latestSync(ctx context.Context, kind, username string) (*SyncEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, kind, username, item_count, synced_at
		FROM sync_log
		WHERE kind = ? AND username = ?
		ORDER BY synced_at DESC, rowid DESC
		LIMIT 1
	`, kind, username)

	return scanSyncEntry(row)
}

func scanSyncEntry(s scanner) (*SyncEntry, error) {
	var e SyncEntry
	err := s.Scan(&e.ID, &e.Kind, &e.Username, &e.ItemCount, &e.SyncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync entry: %w", err)
	}
	return &e, nil
}
