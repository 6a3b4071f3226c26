package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/topten/internal/models"
	"github.com/desertthunder/topten/internal/repositories"
	"github.com/desertthunder/topten/internal/services"
	"github.com/desertthunder/topten/internal/shared"
	"github.com/desertthunder/topten/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The store and the TMDB client are opened on first use, so commands such as `setup config`
// work without a database or credentials.
type Runner struct {
	config      *shared.Config
	configFixed bool
	logger      *log.Logger
	output      io.Writer
	httpClient  *http.Client
	openBrowser func(url string) error

	db       *sql.DB
	store    models.MovieStore
	tmdb     *services.TMDBService
	searcher services.Searcher
	library  *tasks.Library
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A non-nil Config is used as is: the config file and environment are not read.
type RunnerOpts struct {
	Config      *shared.Config
	Logger      *log.Logger
	Output      io.Writer
	HTTPClient  *http.Client
	Store       models.MovieStore
	TMDB        *services.TMDBService
	Searcher    services.Searcher
	OpenBrowser func(url string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	fixed := opts.Config != nil
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	if opts.Searcher == nil && opts.TMDB != nil {
		opts.Searcher = opts.TMDB
	}

	return &Runner{
		config:      opts.Config,
		configFixed: fixed,
		logger:      opts.Logger,
		output:      opts.Output,
		httpClient:  opts.HTTPClient,
		openBrowser: opts.OpenBrowser,
		store:       opts.Store,
		tmdb:        opts.TMDB,
		searcher:    opts.Searcher,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, moviesCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the config file named by --config, overlays the environment and sets the log level.
// A missing config file is not an error.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if !r.configFixed {
		config, err := shared.LoadConfigOrDefault(cmd.String("config"))
		if err != nil {
			return ctx, err
		}
		if err := config.ApplyEnv(nil); err != nil {
			return ctx, err
		}
		r.config = config
	}

	level := r.config.Log.ParsedLevel()
	if raw := cmd.String("log-level"); raw != "" {
		parsed, err := log.ParseLevel(raw)
		if err != nil {
			return ctx, fmt.Errorf("%w: --log-level %q", shared.ErrInvalidFlag, raw)
		}
		level = parsed
	}
	r.logger.SetLevel(level)

	return ctx, nil
}

// After closes the database if a command opened it, along with the store and library built on it.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db, r.store, r.library = nil, nil, nil
	return err
}

// movieStore opens (and migrates) the configured database on first use.
func (r *Runner) movieStore() (models.MovieStore, error) {
	if r.store != nil {
		return r.store, nil
	}

	r.logger.Debug("opening database", "path", r.config.Database.Path)
	db, err := shared.OpenMigrated(r.config.Database)
	if err != nil {
		return nil, err
	}

	r.db = db
	r.store = repositories.NewMovieRepository(db)
	return r.store, nil
}

// tmdbService builds the TMDB client on first use.
func (r *Runner) tmdbService(ctx context.Context) (*services.TMDBService, error) {
	if r.tmdb != nil {
		return r.tmdb, nil
	}
	if err := r.config.ValidateTMDB(); err != nil {
		return nil, err
	}

	svc, err := services.NewTMDBService(ctx, services.TMDBOptionsFromConfig(r.config.Credentials.TMDB))
	if err != nil {
		return nil, err
	}
	r.tmdb = svc
	return svc, nil
}

// movieLibrary returns the library engine. With requireTMDB unset, missing TMDB credentials
// leave search and import disabled instead of failing.
func (r *Runner) movieLibrary(ctx context.Context, requireTMDB bool) (*tasks.Library, error) {
	if r.library != nil && (!requireTMDB || r.searcher != nil) {
		return r.library, nil
	}

	store, err := r.movieStore()
	if err != nil {
		return nil, err
	}

	if r.searcher == nil {
		svc, err := r.tmdbService(ctx)
		switch {
		case err == nil:
			r.searcher = svc
		case requireTMDB:
			return nil, err
		default:
			r.logger.Debug("TMDB disabled", "reason", err)
		}
	}

	r.library = tasks.NewLibrary(store, r.searcher, r.logger)
	return r.library, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return err
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
