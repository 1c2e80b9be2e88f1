package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/models"
	"github.com/ekaya-inc/sac-engine/pkg/repositories"
)

// DefaultAgentBatchSize is the number of agents inserted per transaction.
const DefaultAgentBatchSize = 1000

var agentColumns = []string{"Agent_Code", "Agent_Name"}

// AgentLoadOptions controls an agent list load.
type AgentLoadOptions struct {
	BatchSize int
	// Truncate empties the table before loading.
	Truncate bool
}

// AgentLoadResult summarises a load.
type AgentLoadResult struct {
	Inserted  int
	Failed    int
	Truncated int64
}

// AgentLoader imports the EDW agent list from CSV.
type AgentLoader struct {
	agents repositories.AgentRepository
	logger *zap.Logger
}

// NewAgentLoader creates an AgentLoader.
func NewAgentLoader(agents repositories.AgentRepository, logger *zap.Logger) *AgentLoader {
	return &AgentLoader{agents: agents, logger: logger.Named("agent_loader")}
}

// Load reads Agent_Code and Agent_Name columns from r and inserts them in
// batches, one transaction per batch. A batch that fails is retried row by
// row; rows that still fail are logged and counted, and loading continues.
func (l *AgentLoader) Load(ctx context.Context, r io.Reader, opts AgentLoadOptions) (*AgentLoadResult, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultAgentBatchSize
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	codeIdx, nameIdx, err := agentColumnIndexes(header)
	if err != nil {
		return nil, err
	}

	result := &AgentLoadResult{}
	if opts.Truncate {
		deleted, err := l.agents.Truncate(ctx)
		if err != nil {
			return nil, err
		}
		result.Truncated = deleted
		l.logger.Info("Truncated agent list", zap.Int64("rows", deleted))
	}

	batch := make([]models.Agent, 0, opts.BatchSize)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return result, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		agent := models.Agent{Code: field(record, codeIdx), Name: field(record, nameIdx)}
		if agent.Code == "" && agent.Name == "" {
			continue
		}
		batch = append(batch, agent)

		if len(batch) >= opts.BatchSize {
			l.flush(ctx, batch, result)
			batch = batch[:0]
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
	}
	if len(batch) > 0 {
		l.flush(ctx, batch, result)
	}

	l.logger.Info("Agent list loaded",
		zap.Int("inserted", result.Inserted),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (l *AgentLoader) flush(ctx context.Context, batch []models.Agent, result *AgentLoadResult) {
	err := l.agents.InsertBatch(ctx, batch)
	if err == nil {
		result.Inserted += len(batch)
		return
	}

	l.logger.Warn("Batch insert failed, retrying row by row",
		zap.Int("batch_size", len(batch)),
		zap.Error(err))

	for _, agent := range batch {
		if err := l.agents.InsertBatch(ctx, []models.Agent{agent}); err != nil {
			result.Failed++
			l.logger.Error("Failed to insert agent",
				zap.String("agent_code", agent.Code),
				zap.Error(err))
			continue
		}
		result.Inserted++
	}
}

func agentColumnIndexes(header []string) (int, int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		idx[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range agentColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return 0, 0, fmt.Errorf("CSV is missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx["Agent_Code"], idx["Agent_Name"], nil
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
