package tasks

import (
	"fmt"

	"github.com/desertthunder/moviex/internal/formatter"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchMovies Phase = iota
	FetchFavorites
	WriteExport
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchMovies:
		return "fetch_movies"
	case FetchFavorites:
		return "fetch_favorites"
	case WriteExport:
		return "write_export"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

// sendProgress sends without blocking; updates are dropped when nobody is listening.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fetchMoviesUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: FetchMovies, Step: 1, Total: 1, Message: "Fetching movies..."}
}

func fetchFavoritesUpdate(username string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFavorites,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching favorites for %s...", username),
	}
}

func exportCompletedUpdate(step, total int, f formatter.Format, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteExport,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s → %s", step, total, f, path),
		Data:    path,
	}
}

func exportFailedUpdate(step, total int, f formatter.Format, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteExport,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, f, err),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{Phase: WriteManifest, Step: 1, Total: 1, Message: "Wrote manifest " + path, Data: path}
}
