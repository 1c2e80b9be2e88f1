package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
	"github.com/ekaya-inc/sac-engine/pkg/models"
	"github.com/ekaya-inc/sac-engine/pkg/repositories"
)

var affiliateRequired = []string{"CustomerNum", "AffiliateName"}

// AffiliateService reads and writes account affiliates.
type AffiliateService interface {
	List(ctx context.Context, raw *models.Row) ([]*models.Row, error)
	Upsert(ctx context.Context, rows []*models.Row) (*models.WriteResult, error)
}

type affiliateService struct {
	tableService
}

// NewAffiliateService creates an AffiliateService over the record engine.
func NewAffiliateService(records repositories.RecordRepository, logger *zap.Logger) AffiliateService {
	return &affiliateService{tableService: newTableService(AffiliatesTable, records, logger)}
}

var _ AffiliateService = (*affiliateService)(nil)

func (s *affiliateService) List(ctx context.Context, raw *models.Row) ([]*models.Row, error) {
	return s.list(ctx, raw)
}

func (s *affiliateService) Upsert(ctx context.Context, rows []*models.Row) (*models.WriteResult, error) {
	var errs []models.ValidationError
	for i, row := range rows {
		for _, field := range affiliateRequired {
			if !models.RowHasValue(row, field) {
				errs = append(errs, models.ValidationError{
					Field:   field,
					Code:    models.CodeRequired,
					Message: fmt.Sprintf("%s is mandatory for affiliate row %d.", field, i+1),
				})
			}
		}
	}
	if err := apperrors.NewValidationFailed(errs); err != nil {
		return nil, err
	}

	return s.upsertSplit(ctx, rows)
}
