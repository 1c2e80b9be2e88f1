package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/models"
	"github.com/ekaya-inc/sac-engine/pkg/repositories"
	"github.com/ekaya-inc/sac-engine/pkg/sql"
)

// tableService is the read and write path shared by the resource services.
type tableService struct {
	table   Table
	records repositories.RecordRepository
	logger  *zap.Logger
}

func newTableService(table Table, records repositories.RecordRepository, logger *zap.Logger) tableService {
	return tableService{
		table:   table,
		records: records,
		logger:  logger.Named(table.Resource),
	}
}

// list applies the allow-list, fetches and formats dates outbound.
func (s tableService) list(ctx context.Context, raw *models.Row) ([]*models.Row, error) {
	filters, err := sql.SanitizeFilters(raw, s.table.Filters)
	if err != nil {
		return nil, err
	}

	rows, err := s.records.FetchRecords(ctx, s.table.Name, filters, s.table.OrderBy)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.table.Resource, err)
	}
	return s.table.formatOut(rows), nil
}

// upsert merges the prepared rows on the table keys.
func (s tableService) upsert(ctx context.Context, rows []*models.Row) (*models.WriteResult, error) {
	result, err := s.records.Upsert(ctx, s.table.Name, s.table.prepareIn(rows), s.table.Keys, s.table.Identity != "")
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Upserted rows", zap.Int("count", result.Count))
	return result, nil
}

// upsertSplit sends rows that carry the identity to the merge path and the
// rest to a plain insert that returns their new identities. Rows left empty
// once the identity is removed are skipped. The two paths commit
// separately; count is the number of rows received.
func (s tableService) upsertSplit(ctx context.Context, rows []*models.Row) (*models.WriteResult, error) {
	if len(rows) == 0 {
		return &models.WriteResult{Message: repositories.MsgNoData, Count: 0}, nil
	}

	identity := s.table.Identity
	var toMerge, toInsert []*models.Row
	for _, row := range s.table.prepareIn(rows) {
		if models.RowHasValue(row, identity) {
			toMerge = append(toMerge, row)
			continue
		}
		if insertRow := models.WithoutColumns(row, identity); insertRow.Len() > 0 {
			toInsert = append(toInsert, insertRow)
		}
	}

	if len(toMerge) > 0 {
		if _, err := s.records.Upsert(ctx, s.table.Name, toMerge, []string{identity}, true); err != nil {
			return nil, err
		}
	}

	result := &models.WriteResult{Message: repositories.MsgTransactionSuccessful, Count: len(rows)}
	if len(toInsert) > 0 {
		inserted, err := s.records.InsertReturningIDs(ctx, s.table.Name, toInsert, identity)
		if err != nil {
			return nil, err
		}
		result.IDs = inserted.IDs
	}

	s.logger.Debug("Upserted rows",
		zap.Int("merged", len(toMerge)),
		zap.Int("inserted", len(toInsert)))
	return result, nil
}

// delete removes rows matched on the table keys.
func (s tableService) delete(ctx context.Context, rows []*models.Row) (*models.WriteResult, error) {
	return s.records.Delete(ctx, s.table.Name, rows, s.table.Keys)
}
