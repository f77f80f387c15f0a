package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/moviex/internal/formatter"
	"github.com/desertthunder/moviex/internal/shared"
	"github.com/desertthunder/moviex/internal/store"
)

const manifestName = "export_manifest.json"

// ExportOpts configures [Engine.Export].
type ExportOpts struct {
	Formats       []formatter.Format // defaults to every format
	OutputDir     string             // default: movies_export_{epoch}
	NumWorkers    int                // concurrent writers (default: 3)
	Username      string             // when set, favorites are fetched and marked
	Query         string             // same filter as the movie list
	FavoritesOnly bool
}

// ExportFileResult is the outcome of writing one format.
type ExportFileResult struct {
	Format  formatter.Format `json:"format"`
	Path    string           `json:"path,omitempty"`
	Success bool             `json:"success"`
	Error   string           `json:"error,omitempty"`
}

// ExportResult summarizes an export run. It is also written as the manifest.
type ExportResult struct {
	MovieCount      int                `json:"movie_count"`
	FavoriteCount   int                `json:"favorite_count"`
	Username        string             `json:"username,omitempty"`
	OutputDirectory string             `json:"output_directory"`
	SuccessfulFiles int                `json:"successful_files"`
	FailedFiles     int                `json:"failed_files"`
	Files           []ExportFileResult `json:"files"`
	ManifestPath    string             `json:"-"`
}

// Export fetches the catalog (and the user's favorites), applies the list filters and writes
// one file per format using a small worker pool. A manifest summarizing the run is written last.
//
// Individual format failures are recorded in the result; only fetch and manifest failures abort.
func (e *Engine) Export(ctx context.Context, prog chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if len(opts.Formats) == 0 {
		opts.Formats = formatter.Formats()
	}
	opts.Formats = uniqueFormats(opts.Formats)
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("movies_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > len(opts.Formats) {
		opts.NumWorkers = len(opts.Formats)
	}

	sendProgress(prog, fetchMoviesUpdate())
	if _, err := e.FetchMovies(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch movies: %w", err)
	}

	if opts.Username != "" {
		sendProgress(prog, fetchFavoritesUpdate(opts.Username))
		if _, err := e.FetchFavorites(ctx, opts.Username); err != nil {
			return nil, fmt.Errorf("failed to fetch favorites: %w", err)
		}
	}

	st := e.store.State()
	st.SearchQuery = opts.Query
	st.ShowFavoritesOnly = opts.FavoritesOnly
	movies := store.SelectFilteredMovies(st)
	catalog := formatter.NewCatalog("Movies", opts.Username, movies, st.FavoriteMovieIDs)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExportResult{
		MovieCount:      len(movies),
		FavoriteCount:   len(st.FavoriteMovieIDs),
		Username:        opts.Username,
		OutputDirectory: opts.OutputDir,
		Files:           make([]ExportFileResult, 0, len(opts.Formats)),
	}

	jobs := make(chan formatter.Format, len(opts.Formats))
	results := make(chan ExportFileResult, len(opts.Formats))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go exportWorker(ctx, &wg, catalog, opts.OutputDir, jobs, results)
	}

	for _, f := range opts.Formats {
		jobs <- f
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	total := len(opts.Formats)
	for res := range results {
		completed++
		result.Files = append(result.Files, res)

		if res.Success {
			result.SuccessfulFiles++
			sendProgress(prog, exportCompletedUpdate(completed, total, res.Format, res.Path))
		} else {
			result.FailedFiles++
			sendProgress(prog, exportFailedUpdate(completed, total, res.Format, fmt.Errorf("%s", res.Error)))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, manifestName)
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	sendProgress(prog, manifestUpdate(manifestPath))

	e.logger.Info("export finished", "dir", opts.OutputDir, "ok", result.SuccessfulFiles, "failed", result.FailedFiles)
	return result, nil
}

// exportWorker writes one file per format received on jobs.
func exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	catalog *formatter.Catalog,
	dir string,
	jobs <-chan formatter.Format,
	results chan<- ExportFileResult,
) {
	defer wg.Done()

	for f := range jobs {
		res := ExportFileResult{Format: f}

		if err := ctx.Err(); err != nil {
			res.Error = err.Error()
			results <- res
			continue
		}

		path, err := formatter.WriteExport(catalog, f, filepath.Join(dir, "movies."+f.Ext()))
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Path = path
			res.Success = true
		}
		results <- res
	}
}

// uniqueFormats drops repeated formats, keeping first-seen order.
func uniqueFormats(formats []formatter.Format) []formatter.Format {
	seen := make(map[formatter.Format]bool, len(formats))
	out := make([]formatter.Format, 0, len(formats))
	for _, f := range formats {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
