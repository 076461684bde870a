package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file when missing, initializes the database and loads the seed file.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else if config, err := shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load created config, using defaults", "error", err)
		} else {
			r.config = config
			r.writePlain("✓ Config written to %s\n", configPath)
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	db, err := r.openDatabase("")
	if err != nil {
		return err
	}
	defer db.Close()
	r.writePlain("✓ Database ready: %s\n", r.config.Database.Path)

	if cmd.Bool("skip-seed") {
		return nil
	}

	seedPath := cmd.String("seed")
	if seedPath == "" {
		seedPath = r.config.Server.SeedPath
	}

	inserted, err := r.seedDatabase(ctx, db, seedPath)
	if err != nil {
		return err
	}
	if inserted > 0 {
		r.writePlain("✓ Seeded %d movies from %s\n", inserted, seedPath)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return nil
}

// seedDatabase loads path into db when db holds no movies yet. A missing seed file is not an error.
func (r *Runner) seedDatabase(ctx context.Context, db *sql.DB, path string) (int, error) {
	if path == "" {
		return 0, nil
	}

	repo := repositories.NewMovieRepository(db)
	existing, err := repo.Count(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	if existing > 0 {
		r.logger.Debug("database already seeded", "movies", existing)
		return 0, nil
	}

	records, err := repositories.LoadSeedFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Warn("seed file not found, skipping", "path", path)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load seed file: %w", err)
	}

	inserted, err := repo.Seed(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("failed to seed database: %w", err)
	}

	r.logger.Info("seeded database", "path", path, "records", len(records), "inserted", inserted)
	return inserted, nil
}
