package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/moviex/internal/models"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// Searcher runs the network side of a settled search.
type Searcher interface {
	SearchMovies(ctx context.Context, term string) ([]models.Movie, error)
	ClearSearch(ctx context.Context) ([]models.Movie, error)
}

// Debouncer coalesces rapid search input. Each [Debouncer.Update] restarts the window;
// when it elapses only the latest value is sent to the [Searcher].
type Debouncer struct {
	searcher Searcher
	window   time.Duration

	// OnSettled, when set, is called after each fired search with the value and its result.
	OnSettled func(value string, err error)

	mu    sync.Mutex
	timer *time.Timer
	gen   int
}

// NewDebouncer creates a debouncer. A non-positive window selects [DefaultDebounce].
func NewDebouncer(searcher Searcher, window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Debouncer{searcher: searcher, window: window}
}

// Window returns the quiet period.
func (d *Debouncer) Window() time.Duration {
	return d.window
}

// Update records value as the latest input and restarts the window.
//
// A value that is blank after trimming resets the catalog with a full fetch instead of searching.
func (d *Debouncer) Update(ctx context.Context, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen

	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		d.fire(ctx, value)
	})
}

// Stop cancels a pending search. It does not interrupt one already running.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

func (d *Debouncer) fire(ctx context.Context, value string) {
	var err error
	if term := strings.TrimSpace(value); term == "" {
		_, err = d.searcher.ClearSearch(ctx)
	} else {
		_, err = d.searcher.SearchMovies(ctx, term)
	}

	if d.OnSettled != nil {
		d.OnSettled(value, err)
	}
}
