package services

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
	"github.com/ekaya-inc/sac-engine/pkg/models"
	"github.com/ekaya-inc/sac-engine/pkg/repositories"
	"github.com/ekaya-inc/sac-engine/pkg/validation"
)

// MsgUpdateSuccessful is returned by the bulk field update.
const MsgUpdateSuccessful = "Update successful"

var (
	// PolicyUpdateFields may be set for every matching policy at once.
	PolicyUpdateFields = []string{"ServLevel", "Stage", "AcctOwner", "isSubmitted"}
	// PolicyUpdateSelectors choose which policies a bulk update touches.
	PolicyUpdateSelectors = []string{"CustomerNum", "PolicyNum", "PolMod"}
)

// PolicyFieldUpdate sets FieldName to FieldValue on every policy whose
// UpdateVia column equals UpdateViaValue.
type PolicyFieldUpdate struct {
	FieldName      string
	FieldValue     any
	UpdateVia      string
	UpdateViaValue any
}

// PolicyService reads and writes account policies.
type PolicyService interface {
	List(ctx context.Context, raw *models.Row) ([]*models.Row, error)
	// Upsert validates the policy and merges it on CustomerNum, PolicyNum
	// and PolMod.
	Upsert(ctx context.Context, payload *models.Row) (*models.WriteResult, error)
	// UpdateFieldForAll applies a bulk update and reports the rows affected.
	UpdateFieldForAll(ctx context.Context, update PolicyFieldUpdate) (*models.WriteResult, error)
}

type policyService struct {
	tableService
}

// NewPolicyService creates a PolicyService over the record engine.
func NewPolicyService(records repositories.RecordRepository, logger *zap.Logger) PolicyService {
	return &policyService{tableService: newTableService(PoliciesTable, records, logger)}
}

var _ PolicyService = (*policyService)(nil)

func (s *policyService) List(ctx context.Context, raw *models.Row) ([]*models.Row, error) {
	return s.list(ctx, raw)
}

func (s *policyService) Upsert(ctx context.Context, payload *models.Row) (*models.WriteResult, error) {
	if payload == nil || payload.Len() == 0 {
		return nil, fmt.Errorf("%w: policy payload is empty", apperrors.ErrBadRequest)
	}
	if err := apperrors.NewValidationFailed(validation.ValidatePolicy(payload)); err != nil {
		return nil, err
	}
	return s.upsert(ctx, []*models.Row{payload})
}

func (s *policyService) UpdateFieldForAll(ctx context.Context, update PolicyFieldUpdate) (*models.WriteResult, error) {
	if !slices.Contains(PolicyUpdateFields, update.FieldName) {
		return nil, fmt.Errorf("%w: Invalid fieldName", apperrors.ErrBadRequest)
	}
	if !slices.Contains(PolicyUpdateSelectors, update.UpdateVia) {
		return nil, fmt.Errorf("%w: Invalid updateVia", apperrors.ErrBadRequest)
	}
	if update.FieldValue == nil || !models.HasValue(update.UpdateViaValue) {
		return nil, fmt.Errorf("%w: fieldValue and updateViaValue are required", apperrors.ErrBadRequest)
	}

	affected, err := s.records.UpdateColumn(ctx, s.table.Name, update.FieldName, update.FieldValue, update.UpdateVia, update.UpdateViaValue)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Bulk policy update",
		zap.String("field", update.FieldName),
		zap.String("update_via", update.UpdateVia),
		zap.Int64("rows_affected", affected))

	return &models.WriteResult{Message: MsgUpdateSuccessful, Count: int(affected)}, nil
}
