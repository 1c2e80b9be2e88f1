package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/config"
	"github.com/ekaya-inc/sac-engine/pkg/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

// configFile is set by the --config flag.
var configFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "sac-engine",
	Short:         "Special Accounts (SAC) backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "config.yaml", "config file; environment variables override it")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(loadAgentsCmd)
	rootCmd.AddCommand(validateAccountCmd)
	rootCmd.AddCommand(hashPasswordCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "sac-engine", Version)
	},
}

// setup loads configuration and builds the process logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFrom(configFile, Version)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.NewLogger(cfg.Logging, cfg.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}
