package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/moviex/internal/formatter"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) renderFavorites(cmd *cli.Command, title, username string, movies []models.Movie) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	ids := make([]int, len(movies))
	for i, m := range movies {
		ids[i] = m.ID
	}
	return formatter.Render(r.output, formatter.NewCatalog(title, username, movies, ids), format)
}

// FavoritesList prints the favorites of the current user.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}
	return r.withUser(ctx, func(username string) error {
		movies, err := r.engine.FetchFavorites(ctx, username)
		if err != nil {
			return err
		}
		return r.renderFavorites(cmd, "Favorites", username, movies)
	})
}

// FavoritesSearch searches within the favorites of the current user.
func (r *Runner) FavoritesSearch(ctx context.Context, cmd *cli.Command) error {
	term := cmd.StringArg("term")
	if term == "" {
		return fmt.Errorf("%w: search term", shared.ErrMissingArgument)
	}
	if err := r.requireEngine(); err != nil {
		return err
	}
	return r.withUser(ctx, func(username string) error {
		movies, err := r.engine.SearchFavorites(ctx, username, term)
		if err != nil {
			return err
		}
		return r.renderFavorites(cmd, fmt.Sprintf("Favorites matching %q", term), username, movies)
	})
}

// FavoritesAdd marks a movie as a favorite.
func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := movieID(cmd)
	if err != nil {
		return err
	}
	if err := r.requireEngine(); err != nil {
		return err
	}
	return r.withUser(ctx, func(username string) error {
		if err := r.engine.AddToFavorites(ctx, id, username); err != nil {
			return err
		}
		return r.writePlain("★ Added movie #%d to favorites of %s\n", id, username)
	})
}

// FavoritesRemove unmarks a favorite movie.
func (r *Runner) FavoritesRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := movieID(cmd)
	if err != nil {
		return err
	}
	if err := r.requireEngine(); err != nil {
		return err
	}
	return r.withUser(ctx, func(username string) error {
		if err := r.engine.RemoveFromFavorites(ctx, id, username); err != nil {
			return err
		}
		return r.writePlain("✓ Removed movie #%d from favorites of %s\n", id, username)
	})
}

// FavoritesCheck reports whether a movie is a favorite of the current user.
func (r *Runner) FavoritesCheck(ctx context.Context, cmd *cli.Command) error {
	id, err := movieID(cmd)
	if err != nil {
		return err
	}
	if err := r.requireEngine(); err != nil {
		return err
	}
	return r.withUser(ctx, func(username string) error {
		favorited, err := r.engine.IsMovieFavorited(ctx, id, username)
		if err != nil {
			return err
		}
		if cmd.Bool("json") {
			return r.writeJSON(map[string]any{"movie_id": id, "username": username, "favorited": favorited}, false)
		}
		if favorited {
			return r.writePlain("★ Movie #%d is a favorite of %s\n", id, username)
		}
		return r.writePlain("Movie #%d is not a favorite of %s\n", id, username)
	})
}
