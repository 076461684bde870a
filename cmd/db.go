package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) dbPath(cmd *cli.Command) string {
	if p := cmd.String("db"); p != "" {
		return p
	}
	return r.config.Database.Path
}

// DBMigrate applies pending migrations.
func (r *Runner) DBMigrate(ctx context.Context, cmd *cli.Command) error {
	path := r.dbPath(cmd)
	db, err := r.openDatabase(path)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("migrations applied", "path", path)
	r.writePlain("✓ Database up to date: %s\n", path)
	return nil
}

// DBRollback rolls back the most recent migration.
func (r *Runner) DBRollback(ctx context.Context, cmd *cli.Command) error {
	path := r.dbPath(cmd)
	db, err := shared.NewDatabase(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	r.logger.Info("rolled back latest migration", "path", path)
	r.writePlain("✓ Rolled back latest migration\n")
	return nil
}

// DBStatus lists the known migrations and whether each one is applied.
func (r *Runner) DBStatus(ctx context.Context, cmd *cli.Command) error {
	path := r.dbPath(cmd)
	db, err := shared.NewDatabase(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	states, err := shared.MigrationStatus(db)
	if err != nil {
		return err
	}

	r.writePlainHeader("Migrations: " + path)
	for _, s := range states {
		mark := "pending"
		if s.Applied {
			mark = "applied"
		}
		r.writePlain("%04d  %s  %s\n", s.Version, mark, s.Name)
	}
	return nil
}
