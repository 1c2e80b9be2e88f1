package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// Querier is satisfied by both *sql.Conn and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.Conn)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// Scope owns one pooled connection for the duration of an engine call.
// The returned Scope MUST be closed with defer scope.Close().
type Scope struct {
	Conn *sql.Conn
	db   *DB
}

// Acquire takes a dedicated connection from the pool.
func (db *DB) Acquire(ctx context.Context) (*Scope, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return &Scope{Conn: conn, db: db}, nil
}

// Close releases the connection back to the pool.
func (s *Scope) Close() {
	if s.Conn == nil {
		return
	}
	_ = s.Conn.Close()
	s.Conn = nil
}

// WithTx runs fn inside a transaction on the scope's connection. The
// transaction commits when fn returns nil and rolls back otherwise, so a
// failed multi-row write leaves nothing behind.
func (s *Scope) WithTx(ctx context.Context, logger *zap.Logger, fn func(tx *sql.Tx) error) error {
	tx, err := s.Conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("Failed to roll back transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// BindArgs converts values for this scope's driver.
func (s *Scope) BindArgs(args []any) []any {
	return s.db.BindArgs(args)
}
