package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/catalog"
	"github.com/desertthunder/marquee/internal/paging"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	fetcher    services.CatalogFetcher
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Fetcher    services.CatalogFetcher // replaces the HTTP catalog client when set
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		fetcher:    opts.Fetcher,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, moviesCommand, genresCommand, tuiCommand, serveCommand, dbCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Bootstrap loads the configuration named by --config before any command runs and applies the log level.
//
// A missing file leaves the defaults in place so `setup` can create it.
func (r *Runner) Bootstrap(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if r.configPath != "" {
		if _, err := os.Stat(r.configPath); err == nil {
			config, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return ctx, err
			}
			r.config = config
		} else {
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		}
	}

	levelName := r.config.Logging.Level
	if override := cmd.String("log-level"); override != "" {
		levelName = override
	}
	level, err := shared.ParseLevel(levelName)
	if err != nil {
		return ctx, fmt.Errorf("%w: log level %q", shared.ErrInvalidFlag, levelName)
	}
	shared.SetLogLevel(r.logger, level)

	return ctx, nil
}

// SetLogger replaces the runner's logger, keeping the configured level.
func (r *Runner) SetLogger(logger *log.Logger) {
	if logger == nil {
		return
	}
	logger.SetLevel(r.logger.GetLevel())
	r.logger = logger
}

// catalogFetcher returns the injected fetcher, or an HTTP client built from the [api] settings.
func (r *Runner) catalogFetcher() (services.CatalogFetcher, error) {
	if r.fetcher != nil {
		return r.fetcher, nil
	}

	api := r.config.API
	svc, err := services.NewCatalogService(services.CatalogOptions{
		BaseURL:           api.BaseURL,
		Token:             api.Token,
		Timeout:           api.Timeout(),
		RequestsPerSecond: api.RequestsPerSecond,
		LogBodies:         api.LogBodies,
		Logger:            shared.WithLogger(r.logger, "component", "catalog_api"),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return svc, nil
}

func (r *Runner) repository() (*catalog.Repository, error) {
	fetcher, err := r.catalogFetcher()
	if err != nil {
		return nil, err
	}
	return catalog.NewRepository(fetcher, shared.WithLogger(r.logger, "component", "repository")), nil
}

func (r *Runner) streamFactory(repo *catalog.Repository) *paging.Factory {
	return paging.NewFactory(paging.NewMovieLoader(repo), r.config.Paging.PageSize, r.logger)
}

// openDatabase opens the configured sqlite database and applies pending migrations.
func (r *Runner) openDatabase(path string) (*sql.DB, error) {
	if path == "" {
		path = r.config.Database.Path
	}

	r.logger.Debug("opening database", "path", path)
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	shared.ConfigureDatabase(db, path, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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
