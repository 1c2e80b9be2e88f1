// Package database opens the relational store behind the record engine and
// hands out per-call connection scopes. SQL Server is the production
// engine; PostgreSQL and SQLite run the same statements through their own
// flavors for local development and tests.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/config"
	"github.com/ekaya-inc/sac-engine/pkg/logging"
	"github.com/ekaya-inc/sac-engine/pkg/retry"
	sqlbuilder "github.com/ekaya-inc/sac-engine/pkg/sql"
)

// Supported dialects.
const (
	DialectMSSQL    = "mssql"
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// DB wraps a database/sql pool with the dialect it talks to.
type DB struct {
	*sql.DB
	Dialect string

	flavor  sqlbuilder.Flavor
	timeout time.Duration
}

// FlavorFor returns the statement flavor for a dialect name.
func FlavorFor(dialect string) (sqlbuilder.Flavor, error) {
	switch dialect {
	case DialectMSSQL:
		return sqlbuilder.MSSQL, nil
	case DialectPostgres:
		return sqlbuilder.Postgres, nil
	case DialectSQLite:
		return sqlbuilder.SQLite, nil
	default:
		return sqlbuilder.Flavor{}, fmt.Errorf("unsupported database dialect %q", dialect)
	}
}

// New wraps an already opened pool. A zero timeout disables the per-call
// deadline.
func New(db *sql.DB, dialect string, timeout time.Duration) (*DB, error) {
	flavor, err := FlavorFor(dialect)
	if err != nil {
		return nil, err
	}
	return &DB{DB: db, Dialect: dialect, flavor: flavor, timeout: timeout}, nil
}

// Open connects to the configured database and waits for it to answer a
// ping, retrying transient failures.
func Open(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	driver, dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("Connecting to database",
		zap.String("dialect", cfg.Dialect),
		zap.String("dsn", logging.SanitizeConnectionString(dsn)))

	pool, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", cfg.Dialect, err)
	}

	if cfg.Dialect == DialectSQLite {
		// One writer; scopes are short-lived.
		pool.SetMaxOpenConns(1)
	} else {
		pool.SetMaxOpenConns(cfg.MaxOpenConns)
		pool.SetMaxIdleConns(cfg.MaxIdleConns)
		pool.SetConnMaxIdleTime(5 * time.Minute)
	}

	db, err := New(pool, cfg.Dialect, cfg.StatementTimeout())
	if err != nil {
		_ = pool.Close()
		return nil, err
	}

	attempt := 0
	err = retry.DoIfRetryable(ctx, retry.StartupConfig(), func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.ConnectionTimeout)*time.Second)
		defer cancel()
		if err := pool.PingContext(pingCtx); err != nil {
			logger.Warn("Database not reachable yet",
				zap.Int("attempt", attempt),
				zap.String("error", logging.SanitizeError(err)))
			return err
		}
		return nil
	})
	if err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Flavor returns the statement flavor matching the dialect.
func (db *DB) Flavor() sqlbuilder.Flavor {
	return db.flavor
}

// WithTimeout bounds one engine call by the configured statement timeout.
func (db *DB) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, db.timeout)
}

func dataSource(cfg *config.DatabaseConfig) (driver, dsn string, err error) {
	switch cfg.Dialect {
	case DialectMSSQL:
		driver, dsn = mssqlDataSource(cfg)
	case DialectPostgres:
		driver, dsn = postgresDataSource(cfg)
	case DialectSQLite:
		driver, dsn = sqliteDataSource(cfg.SQLitePath)
	default:
		return "", "", fmt.Errorf("unsupported database dialect %q", cfg.Dialect)
	}
	return driver, dsn, nil
}
