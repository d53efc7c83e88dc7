package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var MigrationFiles embed.FS

// VersionTable keeps this schema's migration state apart from other tools
// sharing the database.
const VersionTable = "resampler_schema_migrations"

// Source returns the embedded migrations as a golang-migrate source driver.
func Source() (source.Driver, error) {
	sourceDriver, err := iofs.New(MigrationFiles, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}
	return sourceDriver, nil
}

// RunMigrations applies pending migrations for the result store.
// If autoMigrate is false, it only logs the current version.
func RunMigrations(db *sql.DB, autoMigrate bool) error {
	sourceDriver, err := Source()
	if err != nil {
		return err
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: VersionTable})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	if dirty {
		slog.Warn("[Migrations] Database is in dirty state",
			"version", version,
			"action", "forcing current version",
		)
		// every migration is idempotent (IF [NOT] EXISTS), so forcing is safe
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to recover dirty migration state at version %d: %w", version, err)
		}
	}

	if !autoMigrate {
		slog.Info("[Migrations] Auto-migration disabled",
			"current_version", version,
			"dirty", dirty,
		)
		return nil
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("[Migrations] Schema is up to date", "version", version)
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to get updated migration version: %w", err)
	}
	slog.Info("[Migrations] Applied",
		"from_version", version,
		"to_version", newVersion,
	)
	return nil
}
