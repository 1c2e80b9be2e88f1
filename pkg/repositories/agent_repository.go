package repositories

import (
	"context"
	"fmt"

	"github.com/ekaya-inc/sac-engine/pkg/database"
	"github.com/ekaya-inc/sac-engine/pkg/models"
)

const agentsTable = "tblEDW_AGENT_LIST"

// AgentRepository writes the EDW agent list.
type AgentRepository interface {
	// InsertBatch inserts agents in one transaction; nothing is kept when
	// any row fails.
	InsertBatch(ctx context.Context, agents []models.Agent) error
	// Truncate removes every agent and returns how many were deleted.
	Truncate(ctx context.Context) (int64, error)
}

type agentRepository struct {
	db      *database.DB
	records RecordRepository
}

// NewAgentRepository creates an agent repository.
func NewAgentRepository(db *database.DB, records RecordRepository) AgentRepository {
	return &agentRepository{db: db, records: records}
}

var _ AgentRepository = (*agentRepository)(nil)

func (r *agentRepository) InsertBatch(ctx context.Context, agents []models.Agent) error {
	rows := make([]*models.Row, 0, len(agents))
	for _, a := range agents {
		rows = append(rows, models.RowOf("Agent_Code", a.Code, "Agent_Name", a.Name))
	}
	_, err := r.records.InsertReturningIDs(ctx, agentsTable, rows, "ID")
	return err
}

func (r *agentRepository) Truncate(ctx context.Context) (int64, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	scope, err := r.db.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer scope.Close()

	res, err := scope.Conn.ExecContext(ctx, "DELETE FROM "+r.db.Flavor().Ident(agentsTable))
	if err != nil {
		return 0, fmt.Errorf("failed to truncate %s: %w", agentsTable, err)
	}
	return res.RowsAffected()
}
