package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/desertthunder/moviex/internal/services"
	"github.com/desertthunder/moviex/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) requireClient() error {
	if r.client == nil {
		return fmt.Errorf("%w: raw requests need the HTTP catalog client", shared.ErrServiceUnavailable)
	}
	return nil
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}

func (r *Runner) writeResponse(resp *services.APIResponse, pretty bool) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// APIGet makes a direct GET request to the catalog service
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if err := r.requireClient(); err != nil {
		return err
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.client.Raw(ctx, http.MethodGet, normalizePath(path), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return r.writeResponse(resp, !cmd.Bool("json"))
}

// APIPost makes a direct POST request to the catalog service
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}

	var jsonTest any
	if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
		return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
	}
	if err := r.requireClient(); err != nil {
		return err
	}

	r.logger.Info("POST request", "path", path)

	resp, err := r.client.Raw(ctx, http.MethodPost, normalizePath(path), []byte(data))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return r.writeResponse(resp, true)
}

// APIDump fetches the catalog and, when a username is known, that user's favorites as raw JSON.
func (r *Runner) APIDump(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}
	pretty := cmd.Bool("pretty")
	save := cmd.Bool("save")

	type DumpData struct {
		BaseURL   string              `json:"base_url"`
		Username  string              `json:"username,omitempty"`
		Movies    any                 `json:"movies,omitempty"`
		Favorites any                 `json:"favorites,omitempty"`
		Errors    []map[string]string `json:"errors,omitempty"`
	}

	dump := DumpData{BaseURL: r.client.BaseURL(), Username: r.store.State().CurrentUsername}

	fetch := func(label, path string) any {
		r.writePlain("📥 Fetching %s...\n", label)
		resp, err := r.client.Raw(ctx, http.MethodGet, path, nil)
		if err == nil && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
			err = fmt.Errorf("status %d", resp.StatusCode)
		}
		if err != nil {
			dump.Errors = append(dump.Errors, map[string]string{"endpoint": path, "error": err.Error()})
			r.logger.Warn("dump request failed", "path", path, "error", err)
			return nil
		}
		return resp.JSONData
	}

	dump.Movies = fetch("movies", "/getAllMovies")
	if dump.Username != "" {
		dump.Favorites = fetch("favorites", "/getAllFavourites?"+url.Values{"username": {dump.Username}}.Encode())
	}

	r.writePlain("\n✓ Dump complete\n\n")

	if save {
		saveFile := "api_dump.json"
		data, err := shared.MarshalJSON(dump, true)
		if err != nil {
			return fmt.Errorf("failed to marshal dump: %w", err)
		}
		if err := os.WriteFile(saveFile, data, 0644); err != nil {
			r.logger.Warn("failed to save dump", "error", err)
		} else {
			r.logger.Info("dump saved", "file", saveFile)
			r.writePlain("✓ Dump saved to %s\n\n", saveFile)
		}
	}

	return r.writeJSON(dump, pretty)
}
