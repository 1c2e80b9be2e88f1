package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/auth"
	"github.com/ekaya-inc/sac-engine/pkg/database"
	"github.com/ekaya-inc/sac-engine/pkg/dates"
	"github.com/ekaya-inc/sac-engine/pkg/jsonutil"
	"github.com/ekaya-inc/sac-engine/pkg/repositories"
	"github.com/ekaya-inc/sac-engine/pkg/services"
	"github.com/ekaya-inc/sac-engine/pkg/validation"
)

var (
	agentsCSV       string
	agentsBatchSize int
	agentsTruncate  bool
	accountRole     string
)

var loadAgentsCmd = &cobra.Command{
	Use:   "load-agents",
	Short: "Load the EDW agent list from a CSV file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		f, err := os.Open(agentsCSV)
		if err != nil {
			return err
		}
		defer f.Close()

		db, err := database.Open(cmd.Context(), &cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		records := repositories.NewRecordRepository(db, logger)
		loader := services.NewAgentLoader(repositories.NewAgentRepository(db, records), logger)

		result, err := loader.Load(cmd.Context(), bufio.NewReader(f), services.AgentLoadOptions{
			BatchSize: agentsBatchSize,
			Truncate:  agentsTruncate,
		})
		if err != nil {
			return err
		}

		logger.Info("Agent list loaded",
			zap.String("file", agentsCSV),
			zap.Int("inserted", result.Inserted),
			zap.Int("failed", result.Failed))

		out := cmd.OutOrStdout()
		if agentsTruncate {
			fmt.Fprintf(out, "Truncated: %d\n", result.Truncated)
		}
		fmt.Fprintf(out, "Inserted: %d\nFailed: %d\n", result.Inserted, result.Failed)
		return nil
	},
}

var validateAccountCmd = &cobra.Command{
	Use:   "validate-account [file]",
	Short: "Check an account JSON payload against the business rules",
	Long: `Reads an account object from file (or stdin when omitted or "-") and
prints the violations the upsert endpoint would report for the given role.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		data, err := io.ReadAll(in)
		if err != nil {
			return err
		}
		row, err := jsonutil.DecodeRow(data)
		if err != nil {
			return fmt.Errorf("invalid account JSON: %w", err)
		}
		dates.NormalizeRow(row, dates.Heuristic())

		errs := validation.ValidateAccount(row, validation.ParseRole(accountRole))
		if len(errs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Account is valid")
			return nil
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(errs); err != nil {
			return err
		}
		return fmt.Errorf("%d validation error(s)", len(errs))
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print a bcrypt hash of a password read from stdin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		password := strings.TrimRight(line, "\r\n")
		if password == "" {
			return errors.New("password is empty")
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	loadAgentsCmd.Flags().StringVar(&agentsCSV, "csv", "", "CSV file with Agent_Code and Agent_Name columns")
	loadAgentsCmd.Flags().IntVar(&agentsBatchSize, "batch-size", services.DefaultAgentBatchSize, "rows per transaction")
	loadAgentsCmd.Flags().BoolVar(&agentsTruncate, "truncate", false, "empty the agent table first")
	_ = loadAgentsCmd.MarkFlagRequired("csv")

	validateAccountCmd.Flags().StringVar(&accountRole, "role", validation.DefaultRole.String(), "caller role: Admin, Director or Underwriter")
}
