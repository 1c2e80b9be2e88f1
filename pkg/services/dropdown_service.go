package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
	"github.com/ekaya-inc/sac-engine/pkg/models"
	"github.com/ekaya-inc/sac-engine/pkg/repositories"
)

const allDropdowns = "all"

// DropdownService returns the option lists shown in the account forms.
type DropdownService interface {
	// Values returns the options for name. "all" (any case) lists every
	// generic dropdown value.
	Values(ctx context.Context, name string) ([]*models.Row, error)
}

type dropdownService struct {
	catalog Catalog
	dialect string
	records repositories.RecordRepository
	logger  *zap.Logger
}

// NewDropdownService creates a DropdownService over the embedded catalog.
func NewDropdownService(records repositories.RecordRepository, dialect string, logger *zap.Logger) (DropdownService, error) {
	catalog, err := DropdownCatalog()
	if err != nil {
		return nil, err
	}
	if _, ok := catalog[allDropdowns]; !ok {
		return nil, fmt.Errorf("dropdown catalog has no %q entry", allDropdowns)
	}
	return &dropdownService{
		catalog: catalog,
		dialect: dialect,
		records: records,
		logger:  logger.Named("dropdowns"),
	}, nil
}

var _ DropdownService = (*dropdownService)(nil)

func (s *dropdownService) Values(ctx context.Context, name string) ([]*models.Row, error) {
	key := strings.TrimSpace(name)
	if key == "" {
		return nil, fmt.Errorf("%w: Dropdown type is required", apperrors.ErrBadRequest)
	}
	if strings.EqualFold(key, allDropdowns) {
		key = allDropdowns
	}

	q, ok := s.catalog[key]
	if !ok {
		return nil, fmt.Errorf("%w: Unknown dropdown '%s'", apperrors.ErrUnknownDropdown, name)
	}

	rows, err := s.records.RunRawQuery(ctx, q.For(s.dialect), q.Params...)
	if err != nil {
		s.logger.Warn("Dropdown query failed", zap.String("dropdown", key), zap.Error(err))
		return nil, fmt.Errorf("dropdown %s failed: %w", key, err)
	}
	return rows, nil
}
