package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
	"github.com/ekaya-inc/sac-engine/pkg/models"
	"github.com/ekaya-inc/sac-engine/pkg/repositories"
)

// SearchService runs the predefined account searches.
type SearchService interface {
	// Search runs the query registered for searchBy. Unknown kinds return
	// apperrors.ErrUnknownSearch.
	Search(ctx context.Context, searchBy string) ([]*models.Row, error)
	Kinds() []string
}

type searchService struct {
	catalog Catalog
	dialect string
	records repositories.RecordRepository
	logger  *zap.Logger
}

// NewSearchService creates a SearchService over the embedded catalog.
func NewSearchService(records repositories.RecordRepository, dialect string, logger *zap.Logger) (SearchService, error) {
	catalog, err := SearchCatalog()
	if err != nil {
		return nil, err
	}
	return &searchService{
		catalog: catalog,
		dialect: dialect,
		records: records,
		logger:  logger.Named("search"),
	}, nil
}

var _ SearchService = (*searchService)(nil)

func (s *searchService) Kinds() []string {
	return s.catalog.Names()
}

func (s *searchService) Search(ctx context.Context, searchBy string) ([]*models.Row, error) {
	q, ok := s.catalog[searchBy]
	if !ok {
		return nil, apperrors.ErrUnknownSearch
	}

	rows, err := s.records.RunRawQuery(ctx, q.For(s.dialect), q.Params...)
	if err != nil {
		s.logger.Warn("Search failed", zap.String("search_by", searchBy), zap.Error(err))
		return nil, fmt.Errorf("search %s failed: %w", searchBy, err)
	}
	return formatSearchRows(rows), nil
}

func formatSearchRows(rows []*models.Row) []*models.Row {
	return Table{Dates: &heuristicDates}.formatOut(rows)
}
