package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/models"
	"github.com/ekaya-inc/sac-engine/pkg/repositories"
)

// FrequencyService manages the months in which a report is sent for an
// account. Request shape (CustomerNum, MthNum 1..12) is checked by the
// handler.
type FrequencyService interface {
	List(ctx context.Context, raw *models.Row) ([]*models.Row, error)
	Upsert(ctx context.Context, rows []*models.Row) (*models.WriteResult, error)
}

type frequencyService struct {
	tableService
}

// NewFrequencyService creates a FrequencyService for one of the frequency
// tables.
func NewFrequencyService(table Table, records repositories.RecordRepository, logger *zap.Logger) FrequencyService {
	return &frequencyService{tableService: newTableService(table, records, logger)}
}

var _ FrequencyService = (*frequencyService)(nil)

func (s *frequencyService) List(ctx context.Context, raw *models.Row) ([]*models.Row, error) {
	return s.list(ctx, raw)
}

func (s *frequencyService) Upsert(ctx context.Context, rows []*models.Row) (*models.WriteResult, error) {
	return s.upsert(ctx, rows)
}
