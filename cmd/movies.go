package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/moviex/internal/formatter"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
	"github.com/desertthunder/moviex/internal/store"
	"github.com/desertthunder/moviex/internal/tasks"
	"github.com/urfave/cli/v3"
)

// MoviesList prints the catalog after applying the --query and --favorites filters.
//
// With --offline the last cached snapshot is used instead of the service.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	favoritesOnly := cmd.Bool("favorites")

	if cmd.Bool("offline") {
		if err := r.hydrate(ctx); err != nil {
			return err
		}
	} else {
		if err := r.requireEngine(); err != nil {
			return err
		}
		if _, err := r.engine.FetchMovies(ctx); err != nil {
			return err
		}
	}

	if favoritesOnly {
		err := r.withUser(ctx, func(username string) error {
			if cmd.Bool("offline") {
				return r.hydrate(ctx)
			}
			_, err := r.engine.FetchFavorites(ctx, username)
			return err
		})
		if err != nil {
			return err
		}
		r.store.Dispatch(store.ToggleShowFavoritesOnly())
	} else if username := r.store.State().CurrentUsername; username != "" && !cmd.Bool("offline") {
		if _, err := r.engine.FetchFavorites(ctx, username); err != nil {
			r.logger.Warn("could not load favorites", "username", username, "error", err)
		}
	}

	r.store.Dispatch(store.SetSearchQuery(cmd.String("query")))

	st := r.store.State()
	movies := store.SelectFilteredMovies(st)
	r.logger.Debug("listing movies", "total", len(st.Movies), "shown", len(movies))

	catalog := formatter.NewCatalog("Movies", st.CurrentUsername, movies, st.FavoriteMovieIDs)
	return formatter.Render(r.output, catalog, format)
}

// hydrate loads the cached snapshot for the current user into the store.
func (r *Runner) hydrate(ctx context.Context) error {
	if err := r.requireCache(); err != nil {
		return err
	}
	snap, err := r.cache.Load(ctx, r.store.State().CurrentUsername)
	if err != nil {
		if errors.Is(err, shared.ErrCacheMiss) {
			return fmt.Errorf("%w: run 'moviex movies list' online first", err)
		}
		return err
	}
	r.store.Dispatch(store.Hydrate(snap))
	r.logger.Debug("loaded cached snapshot", "movies", len(snap.Movies), "synced_at", snap.SyncedAt)
	return nil
}

// MoviesGet prints a single movie fetched by id, or read from the cache with --offline.
func (r *Runner) MoviesGet(ctx context.Context, cmd *cli.Command) error {
	id, err := movieID(cmd)
	if err != nil {
		return err
	}

	var movie *models.Movie
	if cmd.Bool("offline") {
		if err := r.hydrate(ctx); err != nil {
			return err
		}
		if movie, err = r.cache.GetMovie(ctx, id); err != nil {
			return err
		}
	} else {
		if err := r.requireEngine(); err != nil {
			return err
		}
		if movie, err = r.engine.FetchMovieByID(ctx, id); err != nil {
			return err
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(movie, true)
	}
	return r.writePlain("%s", formatter.FormatMovie(*movie, r.store.State().IsFavorite(movie.ID)))
}

// MoviesSearch searches the catalog on the server and prints the matches.
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	term := cmd.StringArg("term")
	if term == "" {
		return fmt.Errorf("%w: search term", shared.ErrMissingArgument)
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.requireEngine(); err != nil {
		return err
	}

	movies, err := r.engine.SearchMovies(ctx, term)
	if err != nil {
		return err
	}

	st := r.store.State()
	catalog := formatter.NewCatalog(fmt.Sprintf("Results for %q", term), st.CurrentUsername, movies, st.FavoriteMovieIDs)
	return formatter.Render(r.output, catalog, format)
}

// formFromFlags overlays every movie flag that was set onto base.
func formFromFlags(cmd *cli.Command, base models.MovieForm) models.MovieForm {
	for _, field := range models.FormFields() {
		if cmd.IsSet(field) {
			_ = base.Set(field, cmd.String(field))
		}
	}
	return base
}

func validateForm(form models.MovieForm) error {
	if errs := form.Validate(); errs != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, errs)
	}
	return nil
}

// MoviesAdd validates the movie flags and creates the movie.
func (r *Runner) MoviesAdd(ctx context.Context, cmd *cli.Command) error {
	form := formFromFlags(cmd, models.MovieForm{})
	if err := validateForm(form); err != nil {
		return err
	}
	if err := r.requireEngine(); err != nil {
		return err
	}

	return r.withUser(ctx, func(username string) error {
		movie, err := r.engine.AddMovie(ctx, form.Input(username))
		if err != nil {
			return err
		}
		r.logger.Info("movie added", "id", movie.ID, "username", username)
		return r.writePlain("✓ Added movie #%d: %s\n", movie.ID, movie.Title)
	})
}

// MoviesEdit fetches the movie, applies the changed fields and saves the result.
func (r *Runner) MoviesEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := movieID(cmd)
	if err != nil {
		return err
	}
	if err := r.requireEngine(); err != nil {
		return err
	}

	current, err := r.engine.FetchMovieByID(ctx, id)
	if err != nil {
		return err
	}

	form := formFromFlags(cmd, models.FormFromMovie(*current))
	if form == models.FormFromMovie(*current) {
		return fmt.Errorf("%w: nothing to change, pass at least one field flag", shared.ErrMissingArgument)
	}
	if err := validateForm(form); err != nil {
		return err
	}

	return r.withUser(ctx, func(username string) error {
		movie, err := r.engine.EditMovie(ctx, id, form.Update(username))
		if err != nil {
			return err
		}
		r.logger.Info("movie updated", "id", movie.ID, "username", username)
		return r.writePlain("✓ Updated movie #%d: %s\n", movie.ID, movie.Title)
	})
}

// MoviesDelete removes a movie from the catalog.
func (r *Runner) MoviesDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := movieID(cmd)
	if err != nil {
		return err
	}
	if err := r.requireEngine(); err != nil {
		return err
	}

	return r.withUser(ctx, func(username string) error {
		if err := r.engine.DeleteMovie(ctx, id, username); err != nil {
			return err
		}
		r.logger.Info("movie deleted", "id", id, "username", username)
		return r.writePlain("✓ Deleted movie #%d\n", id)
	})
}

// MoviesExport writes the filtered catalog in one or more formats, plus a manifest.
func (r *Runner) MoviesExport(ctx context.Context, cmd *cli.Command) error {
	var formats []formatter.Format
	for _, name := range cmd.StringSlice("format") {
		f, err := formatter.ParseFormat(name)
		if err != nil {
			return err
		}
		formats = append(formats, f)
	}
	if err := r.requireEngine(); err != nil {
		return err
	}

	opts := tasks.ExportOpts{
		Formats:       formats,
		OutputDir:     cmd.String("output"),
		NumWorkers:    int(cmd.Int("workers")),
		Query:         cmd.String("query"),
		FavoritesOnly: cmd.Bool("favorites"),
		Username:      r.store.State().CurrentUsername,
	}

	run := func() (*tasks.ExportResult, error) {
		progressCh := make(chan tasks.ProgressUpdate, 20)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for update := range progressCh {
				switch update.Phase {
				case tasks.FetchMovies, tasks.FetchFavorites:
					r.writePlain("📥 %s\n", update.Message)
				case tasks.WriteExport:
					r.writePlain("   %s\n", update.Message)
				case tasks.WriteManifest:
					r.writePlain("📝 %s\n", update.Message)
				}
			}
		}()

		result, err := r.engine.Export(ctx, progressCh, opts)
		close(progressCh)
		<-done
		return result, err
	}

	var result *tasks.ExportResult
	var err error
	if opts.FavoritesOnly {
		err = r.withUser(ctx, func(username string) error {
			opts.Username = username
			result, err = run()
			return err
		})
	} else {
		result, err = run()
	}
	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete")
	r.writePlain("Movies: %d\n", result.MovieCount)
	if result.Username != "" {
		r.writePlain("Favorites of %s: %d\n", result.Username, result.FavoriteCount)
	}
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Files: %d written, %d failed\n", result.SuccessfulFiles, result.FailedFiles)
	for _, f := range result.Files {
		if f.Success {
			r.writePlain("  ✓ %s\n", f.Path)
		} else {
			r.writePlain("  ✗ %s: %s\n", f.Format, f.Error)
		}
	}
	if result.FailedFiles > 0 {
		return fmt.Errorf("%d of %d exports failed", result.FailedFiles, len(result.Files))
	}
	return nil
}
