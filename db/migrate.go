// file: db/migrate.go

package db

import (
	"database/sql"
	"fmt"

	"backups-api/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies any pending schema migrations on the given pool.
// It is called once at startup, before the session subsystem is wired.
func RunMigrations(db *sql.DB, migrationsPath string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to create migration driver")
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	mig, err := migrate.NewWithDatabaseInstance(migrationsPath, "postgres", driver)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to create migrate instance")
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := mig.Up(); err != nil && err != migrate.ErrNoChange {
		logger.Log.WithError(err).Error("Failed to run migrations")
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Log.Info("Database migrations applied successfully")
	return nil
}
