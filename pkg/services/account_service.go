package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
	"github.com/ekaya-inc/sac-engine/pkg/jsonutil"
	"github.com/ekaya-inc/sac-engine/pkg/models"
	"github.com/ekaya-inc/sac-engine/pkg/repositories"
	"github.com/ekaya-inc/sac-engine/pkg/sql"
	"github.com/ekaya-inc/sac-engine/pkg/validation"
)

const branchFilter = "BranchName"

// AccountService reads and writes SAC accounts.
type AccountService interface {
	// List returns accounts matching the allow-listed filters. A BranchName
	// filter is split on "&" and matched as a prefix of any term.
	List(ctx context.Context, raw *models.Row) ([]*models.Row, error)
	// Upsert validates the account for role and merges it on CustomerNum.
	// Business-rule violations return *apperrors.ValidationFailedError and
	// nothing is written.
	Upsert(ctx context.Context, payload *models.Row, role validation.Role) (*models.WriteResult, error)
}

type accountService struct {
	tableService
}

// NewAccountService creates an AccountService over the record engine.
func NewAccountService(records repositories.RecordRepository, logger *zap.Logger) AccountService {
	return &accountService{tableService: newTableService(AccountsTable, records, logger)}
}

var _ AccountService = (*accountService)(nil)

func (s *accountService) List(ctx context.Context, raw *models.Row) ([]*models.Row, error) {
	filters, err := sql.SanitizeFilters(raw, s.table.Filters)
	if err != nil {
		return nil, err
	}

	branch, ok := filters.Get(branchFilter)
	if !ok {
		return s.list(ctx, filters)
	}
	filters.Delete(branchFilter)

	terms := splitBranchTerms(jsonutil.FlexibleString(branch))
	if len(terms) == 0 {
		return s.list(ctx, filters)
	}

	rows, err := s.records.FetchPrefixMatch(ctx, s.table.Name, filters, branchFilter, terms, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.table.Resource, err)
	}
	return s.table.formatOut(rows), nil
}

// splitBranchTerms splits "NY & Boston" into its trimmed, non-empty terms.
func splitBranchTerms(value string) []string {
	var terms []string
	for _, part := range strings.Split(value, "&") {
		if term := strings.TrimSpace(part); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

func (s *accountService) Upsert(ctx context.Context, payload *models.Row, role validation.Role) (*models.WriteResult, error) {
	if payload == nil || payload.Len() == 0 {
		return nil, fmt.Errorf("%w: account payload is empty", apperrors.ErrBadRequest)
	}

	prepared := s.table.prepareIn([]*models.Row{payload})
	if err := apperrors.NewValidationFailed(validation.ValidateAccount(prepared[0], role)); err != nil {
		return nil, err
	}

	return s.records.Upsert(ctx, s.table.Name, prepared, s.table.Keys, false)
}
