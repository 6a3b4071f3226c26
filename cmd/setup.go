package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/topten/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	if _, err := r.movieStore(); err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	if r.db == nil {
		return nil
	}

	applied, err := shared.AppliedMigrations(r.db)
	if err != nil {
		return err
	}

	r.writePlainHeader("Database ready")
	r.writePlain("Path: %s\n", r.config.Database.Path)
	for _, m := range applied {
		r.writePlain("  migration %04d applied %s\n", m.Version, m.AppliedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// SetupConfig writes the example config file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Wrote %s\n", path)
	r.writePlain("Set %s and %s there or in the environment before running `topten serve`.\n", shared.EnvSecretKey, shared.EnvAPIKey)
	return nil
}

// SetupRollback rolls back the most recently applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}

	r.logger.Warn("rolled back migration", "path", r.config.Database.Path)
	r.writePlain("✓ Rolled back the latest migration\n")
	return nil
}
