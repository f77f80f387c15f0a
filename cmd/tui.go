package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moviex/internal/services"
	"github.com/desertthunder/moviex/internal/shared"
	"github.com/desertthunder/moviex/internal/store"
	"github.com/desertthunder/moviex/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	if r.client != nil {
		r.client = services.NewCatalogClientFromConfig(r.config.API, shared.WithLogger(fileLogger, "component", "client"))
		r.service = r.client
	}
	r.buildEngine()

	if r.cache != nil {
		snap, err := r.cache.Load(ctx, r.store.State().CurrentUsername)
		switch {
		case err == nil:
			r.store.Dispatch(store.Hydrate(snap))
			r.logger.Info("hydrated from cache", "movies", len(snap.Movies), "synced_at", snap.SyncedAt)
		case errors.Is(err, shared.ErrCacheMiss):
		default:
			r.logger.Warn("failed to read cache", "error", err)
		}
	}

	model := ui.NewModel(ctx, r.engine, r.config.DebounceWindow())
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
