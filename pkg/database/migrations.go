package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/database/sqlserver"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/migrations"
)

// migrationDir maps a dialect to its directory in the embedded FS.
func migrationDir(dialect string) (string, error) {
	switch dialect {
	case DialectMSSQL:
		return "sqlserver", nil
	case DialectPostgres:
		return "postgres", nil
	case DialectSQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("no migrations for dialect %q", dialect)
	}
}

func (db *DB) migrationDriver() (migratedb.Driver, error) {
	switch db.Dialect {
	case DialectMSSQL:
		return sqlserver.WithInstance(db.DB, &sqlserver.Config{})
	case DialectPostgres:
		return postgres.WithInstance(db.DB, &postgres.Config{})
	default:
		return sqlite.WithInstance(db.DB, &sqlite.Config{})
	}
}

// RunMigrations applies the embedded migrations for the database's dialect.
// It is idempotent and safe to call multiple times - only pending migrations will be executed.
func RunMigrations(db *DB, logger *zap.Logger) error {
	dir, err := migrationDir(db.Dialect)
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations.FS, dir)
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := db.migrationDriver()
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, db.Dialect, driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	// Closing m would close the shared pool through the driver; only the
	// source is released here.
	defer func() {
		if err := source.Close(); err != nil {
			logger.Warn("Failed to close migration source", zap.Error(err))
		}
	}()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No migrations to apply (database up-to-date)")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, _ := m.Version()
	logger.Info("Applied migrations successfully",
		zap.String("dialect", db.Dialect),
		zap.Uint("version", newVersion))
	return nil
}
