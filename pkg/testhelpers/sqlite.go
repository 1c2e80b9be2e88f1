// Package testhelpers provides utilities for testing sac-engine components.
package testhelpers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/config"
	"github.com/ekaya-inc/sac-engine/pkg/database"
)

// NewSQLiteDB returns a migrated SQLite database private to the test. The
// file lives in t.TempDir and the pool is closed on cleanup.
func NewSQLiteDB(t *testing.T) *database.DB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Dialect:                 database.DialectSQLite,
		SQLitePath:              filepath.Join(t.TempDir(), "sac.db"),
		ConnectionTimeout:       5,
		StatementTimeoutSeconds: 10,
	}

	db, err := database.Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.RunMigrations(db, zap.NewNop()))
	return db
}

// Exec runs a setup statement written with "?" markers against db.
func Exec(t *testing.T, db *database.DB, query string, args ...any) {
	t.Helper()
	_, err := db.ExecContext(context.Background(), db.Flavor().Rebind(query), db.BindArgs(args)...)
	require.NoError(t, err)
}

// Count returns SELECT COUNT(*) for table with an optional WHERE clause.
func Count(t *testing.T, db *database.DB, table, where string, args ...any) int {
	t.Helper()
	query := "SELECT COUNT(*) FROM " + db.Flavor().Ident(table)
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), db.Flavor().Rebind(query), db.BindArgs(args)...).Scan(&n))
	return n
}
