package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
	"github.com/ekaya-inc/sac-engine/pkg/models"
	"github.com/ekaya-inc/sac-engine/pkg/repositories"
	"github.com/ekaya-inc/sac-engine/pkg/validation"
)

// tblHCMUsers names the customer column CustNum; callers use CustomerNum.
const (
	apiCustomerColumn = "CustomerNum"
	hcmCustomerColumn = "CustNum"
)

// HCMUserService reads and writes HCM portal users.
type HCMUserService interface {
	List(ctx context.Context, raw *models.Row) ([]*models.Row, error)
	// Upsert validates every row, then merges rows that carry a PK_Number
	// and inserts the rest, returning their new PK_Numbers.
	Upsert(ctx context.Context, rows []*models.Row) (*models.WriteResult, error)
}

type hcmUserService struct {
	tableService
}

// NewHCMUserService creates an HCMUserService over the record engine.
func NewHCMUserService(records repositories.RecordRepository, logger *zap.Logger) HCMUserService {
	return &hcmUserService{tableService: newTableService(HCMUsersTable, records, logger)}
}

var _ HCMUserService = (*hcmUserService)(nil)

func (s *hcmUserService) List(ctx context.Context, raw *models.Row) ([]*models.Row, error) {
	filters := models.CloneRow(raw)
	models.RenameColumn(filters, apiCustomerColumn, hcmCustomerColumn)

	rows, err := s.list(ctx, filters)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		models.RenameColumn(row, hcmCustomerColumn, apiCustomerColumn)
	}
	return rows, nil
}

func (s *hcmUserService) Upsert(ctx context.Context, rows []*models.Row) (*models.WriteResult, error) {
	remapped := make([]*models.Row, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			return nil, fmt.Errorf("%w: HCM user row is empty", apperrors.ErrBadRequest)
		}
		clone := models.CloneRow(row)
		models.RenameColumn(clone, apiCustomerColumn, hcmCustomerColumn)
		remapped = append(remapped, clone)
	}

	if err := apperrors.NewValidationFailed(validation.ValidateHCMUsers(remapped)); err != nil {
		return nil, err
	}

	return s.upsertSplit(ctx, remapped)
}
