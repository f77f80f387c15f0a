package main

import (
	"context"
	"sort"
	"time"

	"github.com/urfave/cli/v3"
)

// CacheShow prints what the snapshot cache holds and its recent sync history.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCache(); err != nil {
		return err
	}

	stats, err := r.cache.Stats(ctx)
	if err != nil {
		return err
	}
	history, err := r.cache.History(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"stats": stats, "history": history}, true)
	}

	r.writePlainHeader("Snapshot Cache")
	r.writePlain("Database: %s\n", r.config.Database.Path)
	r.writePlain("Movies: %d\n", stats.Movies)

	users := make([]string, 0, len(stats.Favorites))
	for u := range stats.Favorites {
		users = append(users, u)
	}
	sort.Strings(users)
	for _, u := range users {
		r.writePlain("Favorites of %s: %d\n", u, stats.Favorites[u])
	}

	if stats.LastSync == nil {
		r.writePlainln("Nothing cached yet.")
		return nil
	}

	r.writePlainln("Recent syncs:")
	for _, e := range history {
		who := ""
		if e.Username != "" {
			who = " (" + e.Username + ")"
		}
		r.writePlain("  %s  %-9s%s %d items\n", e.SyncedAt.Local().Format(time.DateTime), e.Kind, who, e.ItemCount)
	}
	return nil
}

// CacheClear removes every cached snapshot.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCache(); err != nil {
		return err
	}
	if err := r.cache.Clear(ctx); err != nil {
		return err
	}
	r.logger.Info("snapshot cache cleared", "path", r.config.Database.Path)
	return r.writePlain("✓ Cache cleared\n")
}
