package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviex/internal/repositories"
	"github.com/desertthunder/moviex/internal/services"
	"github.com/desertthunder/moviex/internal/shared"
	"github.com/desertthunder/moviex/internal/store"
	"github.com/desertthunder/moviex/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	service    services.CatalogService
	client     *services.CatalogClient
	store      *store.Store
	engine     *tasks.Engine
	cache      *repositories.SnapshotRepository
	db         *sql.DB
	prompt     store.Confirmer
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// When Service is nil the catalog client is built from the loaded config in [Runner.Before].
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Service    services.CatalogService
	Cache      *repositories.SnapshotRepository
	Prompt     store.Confirmer
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Prompt == nil {
		opts.Prompt = shared.NewUsernamePrompt()
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		service:    opts.Service,
		cache:      opts.Cache,
		prompt:     opts.Prompt,
		logger:     opts.Logger,
		output:     opts.Output,
		store:      store.New(store.State{}),
	}
	if client, ok := opts.Service.(*services.CatalogClient); ok {
		r.client = client
	}
	if r.service != nil {
		r.buildEngine()
	}
	return r
}

// SetLogger swaps the logger used by the runner and everything it builds afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) buildEngine() {
	r.engine = tasks.NewEngine(r.service, r.store, shared.WithLogger(r.logger, "component", "engine"))
	if r.cache != nil {
		r.engine.WithSnapshotter(r.cache)
	}
}

// Before loads the configuration, seeds the username and builds the catalog client.
//
// Dependencies injected through [RunnerOpts] are kept as they are.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if r.config == nil {
		config, err := r.loadConfig()
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	} else {
		shared.SetLogLevel(r.logger, shared.ParseLogLevel(r.config.Log.Level))
	}

	if r.service == nil {
		if err := r.config.Validate(); err != nil {
			return ctx, err
		}
		r.client = services.NewCatalogClientFromConfig(r.config.API, shared.WithLogger(r.logger, "component", "client"))
		r.service = r.client
		if r.cache == nil {
			r.openCache()
		}
		r.buildEngine()
	}

	username := cmd.String("user")
	if username == "" {
		username = r.config.User.Username
	}
	if username != "" {
		r.store.Dispatch(store.SetCurrentUsername(username))
	}

	return ctx, nil
}

// After releases the snapshot database.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Runner) loadConfig() (*shared.Config, error) {
	config := shared.DefaultConfig()
	if r.configPath != "" {
		loaded, err := shared.LoadConfig(r.configPath)
		switch {
		case errors.Is(err, shared.ErrMissingConfig):
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		case err != nil:
			return nil, err
		default:
			config = loaded
		}
	}
	config.ApplyEnv(nil)
	return config, nil
}

// openCache opens the snapshot database; a failure only disables caching.
func (r *Runner) openCache() {
	db, err := shared.OpenCache(r.config.Database)
	if err != nil {
		r.logger.Warn("snapshot cache disabled", "error", err)
		return
	}
	r.db = db
	r.cache = repositories.NewSnapshotRepository(db)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		moviesCommand, favoritesCommand, cacheCommand, setupCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// withUser runs action with the current username, prompting for one when none is set.
func (r *Runner) withUser(ctx context.Context, action func(username string) error) error {
	gate := store.Gate{Confirmer: r.prompt}
	return userError(gate.Run(ctx, r.store, action))
}

func (r *Runner) requireEngine() error {
	if r.engine == nil {
		return fmt.Errorf("%w: catalog client not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

func (r *Runner) requireCache() error {
	if r.cache == nil {
		return fmt.Errorf("%w: snapshot cache not available", shared.ErrServiceUnavailable)
	}
	return nil
}

// movieID parses the positional id argument.
func movieID(cmd *cli.Command) (int, error) {
	raw := cmd.StringArg("id")
	if raw == "" {
		return 0, fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: movie id must be a positive integer, got %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// userError reports the gate's refusal in terms of the flag that would have avoided it.
func userError(err error) error {
	if errors.Is(err, shared.ErrUsernameRequired) || errors.Is(err, shared.ErrNotTerminal) {
		return fmt.Errorf("%w (pass --user or set user.username in config)", err)
	}
	return err
}
