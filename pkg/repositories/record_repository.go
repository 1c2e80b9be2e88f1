package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
	"github.com/ekaya-inc/sac-engine/pkg/database"
	"github.com/ekaya-inc/sac-engine/pkg/logging"
	"github.com/ekaya-inc/sac-engine/pkg/models"
)

// Status messages returned by the write operations.
const (
	MsgTransactionSuccessful = "Transaction successful"
	MsgDeletionSuccessful    = "Deletion successful"
	MsgNoData                = "No data provided"
	MsgNoDataForDeletion     = "No data provided for deletion"
)

// RecordRepository is the schema-agnostic record engine. Every identifier
// is validated before it reaches SQL and every value is bound. Writes run
// in one transaction per call and roll back entirely on any row failure.
type RecordRepository interface {
	// FetchRecords runs SELECT * with equality filters in insertion order.
	FetchRecords(ctx context.Context, table string, filters *models.Row, orderBy string) ([]*models.Row, error)
	// FetchPrefixMatch adds an OR of "column LIKE prefix%" terms to the filters.
	FetchPrefixMatch(ctx context.Context, table string, filters *models.Row, column string, prefixes []string, orderBy string) ([]*models.Row, error)
	// RunRawQuery executes a prebuilt statement written with "?" markers.
	RunRawQuery(ctx context.Context, query string, params ...any) ([]*models.Row, error)

	// Upsert merges each row on keys. With excludeKeysFromInsert the key
	// columns are left out of inserts so the database assigns identities.
	Upsert(ctx context.Context, table string, rows []*models.Row, keys []string, excludeKeysFromInsert bool) (*models.WriteResult, error)
	// InsertReturningIDs inserts each row without the identity column and
	// returns the generated identities in row order.
	InsertReturningIDs(ctx context.Context, table string, rows []*models.Row, identity string) (*models.WriteResult, error)
	// Delete removes each row matched on every key column.
	Delete(ctx context.Context, table string, rows []*models.Row, keys []string) (*models.WriteResult, error)
	// UpdateColumn sets one column on every row where whereColumn matches
	// and returns the number of rows affected.
	UpdateColumn(ctx context.Context, table, column string, value any, whereColumn string, whereValue any) (int64, error)
}

type recordRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewRecordRepository creates the record engine over db.
func NewRecordRepository(db *database.DB, logger *zap.Logger) RecordRepository {
	return &recordRepository{
		db:     db,
		logger: logger.Named("records"),
	}
}

var _ RecordRepository = (*recordRepository)(nil)

// statement is one built SQL statement and its bound values.
type statement struct {
	query  string
	params []any
}

func (r *recordRepository) FetchRecords(ctx context.Context, table string, filters *models.Row, orderBy string) ([]*models.Row, error) {
	query, params, err := r.db.Flavor().Select(table, filters, orderBy)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, query, params)
}

func (r *recordRepository) FetchPrefixMatch(ctx context.Context, table string, filters *models.Row, column string, prefixes []string, orderBy string) ([]*models.Row, error) {
	query, params, err := r.db.Flavor().SelectPrefixMatch(table, filters, column, prefixes, orderBy)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, query, params)
}

func (r *recordRepository) RunRawQuery(ctx context.Context, query string, params ...any) ([]*models.Row, error) {
	return r.query(ctx, r.db.Flavor().Rebind(query), params)
}

func (r *recordRepository) query(ctx context.Context, query string, params []any) ([]*models.Row, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	scope, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer scope.Close()

	rows, err := scope.Conn.QueryContext(ctx, query, scope.BindArgs(params)...)
	if err != nil {
		r.logger.Error("Query failed",
			zap.String("query", logging.SanitizeQuery(query)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	defer rows.Close()

	result, err := database.ScanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return result, nil
}

func (r *recordRepository) Upsert(ctx context.Context, table string, rows []*models.Row, keys []string, excludeKeysFromInsert bool) (*models.WriteResult, error) {
	if len(rows) == 0 {
		return &models.WriteResult{Message: MsgNoData, Count: 0}, nil
	}

	// Everything that can be rejected is rejected before a transaction opens.
	if err := requireKeys(rows, keys, "upsert"); err != nil {
		return nil, err
	}
	flavor := r.db.Flavor()
	for _, row := range rows {
		if _, _, err := flavor.Exists(table, row, keys); err != nil {
			return nil, err
		}
	}

	err := r.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for i, row := range rows {
			if err := r.upsertRow(ctx, tx, table, row, keys, excludeKeysFromInsert); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, r.writeFailed(apperrors.ErrUpsertFailed, table, err)
	}

	return &models.WriteResult{Message: MsgTransactionSuccessful, Count: len(rows)}, nil
}

// upsertRow runs a native MERGE where the engine has one, and otherwise a
// key lookup followed by UPDATE or INSERT inside the same transaction.
func (r *recordRepository) upsertRow(ctx context.Context, tx database.Querier, table string, row *models.Row, keys []string, excludeKeysFromInsert bool) error {
	flavor := r.db.Flavor()

	if flavor.NativeMerge {
		query, params, err := flavor.Merge(table, row, keys, excludeKeysFromInsert)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, query, r.db.BindArgs(params)...)
		return err
	}

	query, params, err := flavor.Exists(table, row, keys)
	if err != nil {
		return err
	}
	existing, err := tx.QueryContext(ctx, query, r.db.BindArgs(params)...)
	if err != nil {
		return err
	}
	found := existing.Next()
	if err := existing.Close(); err != nil {
		return err
	}

	var stmt statement
	if found {
		stmt.query, stmt.params, err = flavor.Update(table, row, keys)
	} else {
		insertRow := row
		if excludeKeysFromInsert {
			insertRow = models.WithoutColumns(row, keys...)
		}
		stmt.query, stmt.params, err = flavor.Insert(table, insertRow, "")
	}
	if err != nil {
		return err
	}
	if stmt.query == "" {
		return nil
	}

	_, err = tx.ExecContext(ctx, stmt.query, r.db.BindArgs(stmt.params)...)
	return err
}

func (r *recordRepository) InsertReturningIDs(ctx context.Context, table string, rows []*models.Row, identity string) (*models.WriteResult, error) {
	if len(rows) == 0 {
		return &models.WriteResult{Message: MsgNoData, Count: 0}, nil
	}

	flavor := r.db.Flavor()
	stmts := make([]statement, 0, len(rows))
	for _, row := range rows {
		query, params, err := flavor.Insert(table, models.WithoutColumns(row, identity), identity)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, statement{query: query, params: params})
	}

	ids := make([]int64, 0, len(rows))
	err := r.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for i, stmt := range stmts {
			var id int64
			if err := tx.QueryRowContext(ctx, stmt.query, r.db.BindArgs(stmt.params)...).Scan(&id); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, r.writeFailed(apperrors.ErrInsertFailed, table, err)
	}

	return &models.WriteResult{Message: MsgTransactionSuccessful, Count: len(rows), IDs: ids}, nil
}

func (r *recordRepository) Delete(ctx context.Context, table string, rows []*models.Row, keys []string) (*models.WriteResult, error) {
	if len(rows) == 0 {
		return &models.WriteResult{Message: MsgNoDataForDeletion, Count: 0}, nil
	}

	if err := requireKeys(rows, keys, "deletion"); err != nil {
		return nil, err
	}

	flavor := r.db.Flavor()
	stmts := make([]statement, 0, len(rows))
	for _, row := range rows {
		query, params, err := flavor.Delete(table, row, keys)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, statement{query: query, params: params})
	}

	err := r.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for i, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt.query, r.db.BindArgs(stmt.params)...); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, r.writeFailed(apperrors.ErrDeleteFailed, table, err)
	}

	return &models.WriteResult{Message: MsgDeletionSuccessful, Count: len(rows)}, nil
}

func (r *recordRepository) UpdateColumn(ctx context.Context, table, column string, value any, whereColumn string, whereValue any) (int64, error) {
	query, params, err := r.db.Flavor().UpdateColumn(table, column, value, whereColumn, whereValue)
	if err != nil {
		return 0, err
	}

	var affected int64
	err = r.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, r.db.BindArgs(params)...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, r.writeFailed(apperrors.ErrUpdateFailed, table, err)
	}
	return affected, nil
}

// inTx acquires a connection under the statement timeout and runs fn in a
// transaction on it.
func (r *recordRepository) inTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	scope, err := r.db.Acquire(ctx)
	if err != nil {
		return err
	}
	defer scope.Close()

	return scope.WithTx(ctx, r.logger, func(tx *sql.Tx) error {
		return fn(ctx, tx)
	})
}

func (r *recordRepository) writeFailed(kind error, table string, err error) error {
	r.logger.Error("Write rolled back",
		zap.String("table", table),
		zap.String("operation", kind.Error()),
		zap.String("error", logging.SanitizeError(err)))
	return &apperrors.WriteError{Kind: kind, Table: table, Err: err}
}

// requireKeys checks every row carries every key column.
func requireKeys(rows []*models.Row, keys []string, op string) error {
	for i, row := range rows {
		for _, key := range keys {
			if row == nil {
				return &apperrors.MissingKeyFieldError{Field: key, Row: i, Op: op}
			}
			if _, ok := row.Get(key); !ok {
				return &apperrors.MissingKeyFieldError{Field: key, Row: i, Op: op}
			}
		}
	}
	return nil
}
