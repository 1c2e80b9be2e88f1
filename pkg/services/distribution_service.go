package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
	"github.com/ekaya-inc/sac-engine/pkg/models"
	"github.com/ekaya-inc/sac-engine/pkg/repositories"
	"github.com/ekaya-inc/sac-engine/pkg/validation"
)

// DistributionService manages one report distribution list: who receives
// the loss run, deductible bill or claim review for an account.
type DistributionService interface {
	List(ctx context.Context, raw *models.Row) ([]*models.Row, error)
	// Upsert drops blank grid rows, validates the remaining recipients and
	// merges them on the table keys.
	Upsert(ctx context.Context, rows []*models.Row) (*models.WriteResult, error)
	// Delete removes recipients; every row must carry all key columns.
	Delete(ctx context.Context, rows []*models.Row) (*models.WriteResult, error)
}

type distributionService struct {
	tableService
}

// NewDistributionService creates a DistributionService for one of the
// distribution tables.
func NewDistributionService(table Table, records repositories.RecordRepository, logger *zap.Logger) DistributionService {
	return &distributionService{tableService: newTableService(table, records, logger)}
}

var _ DistributionService = (*distributionService)(nil)

func (s *distributionService) List(ctx context.Context, raw *models.Row) ([]*models.Row, error) {
	return s.list(ctx, raw)
}

func (s *distributionService) Upsert(ctx context.Context, rows []*models.Row) (*models.WriteResult, error) {
	cleaned, errs := validation.CleanRecipientRows(rows)
	if err := apperrors.NewValidationFailed(errs); err != nil {
		return nil, err
	}
	if len(cleaned) == 0 {
		return &models.WriteResult{Message: repositories.MsgNoData, Count: 0}, nil
	}
	if dropped := len(rows) - len(cleaned); dropped > 0 {
		s.logger.Debug("Dropped blank recipient rows", zap.Int("count", dropped))
	}
	return s.upsert(ctx, cleaned)
}

func (s *distributionService) Delete(ctx context.Context, rows []*models.Row) (*models.WriteResult, error) {
	return s.delete(ctx, rows)
}
