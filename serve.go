package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/audit"
	"github.com/ekaya-inc/sac-engine/pkg/auth"
	"github.com/ekaya-inc/sac-engine/pkg/config"
	"github.com/ekaya-inc/sac-engine/pkg/database"
	"github.com/ekaya-inc/sac-engine/pkg/handlers"
	"github.com/ekaya-inc/sac-engine/pkg/middleware"
	"github.com/ekaya-inc/sac-engine/pkg/repositories"
	"github.com/ekaya-inc/sac-engine/pkg/services"
)

const shutdownTimeout = 15 * time.Second

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, logger)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		db, err := database.Open(cmd.Context(), &cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		return database.RunMigrations(db, logger)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before serving")
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Auth.SecretKey == "" {
		return errors.New("SECRET_KEY is required to serve")
	}

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("dialect", cfg.Database.Dialect),
		zap.Strings("cors_origins", cfg.CORS.AllowedOrigins),
		zap.String("version", cfg.Version))

	db, err := database.Open(ctx, &cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if migrateOnStart {
		if err := database.RunMigrations(db, logger); err != nil {
			return err
		}
	}

	handler, err := buildHandler(cfg, db, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting sac-engine", zap.String("addr", server.Addr), zap.Bool("tls", cfg.TLSCertPath != ""))
		if cfg.TLSCertPath != "" {
			errCh <- server.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildHandler wires repositories, services and handlers into the route
// table and wraps it in the middleware stack.
func buildHandler(cfg *config.Config, db *database.DB, logger *zap.Logger) (http.Handler, error) {
	records := repositories.NewRecordRepository(db, logger)

	tokens, err := auth.NewTokenManager(cfg.Auth.SecretKey, cfg.Auth.Issuer, cfg.Auth.TokenValidity())
	if err != nil {
		return nil, err
	}
	authService := auth.NewAuthService(repositories.NewUserRepository(records), tokens, logger)
	authMiddleware := auth.NewMiddleware(authService, logger)
	auditor := audit.NewSecurityAuditor(logger)

	search, err := services.NewSearchService(records, db.Dialect, logger)
	if err != nil {
		return nil, err
	}
	dropdowns, err := services.NewDropdownService(records, db.Dialect, logger)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAuthHandler(authService, auditor, cfg, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewAccountHandler(services.NewAccountService(records, logger), auditor, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewPolicyHandler(services.NewPolicyService(records, logger), auditor, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewHCMUserHandler(services.NewHCMUserService(records, logger), auditor, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewAffiliateHandler(services.NewAffiliateService(records, logger), auditor, logger).RegisterRoutes(mux)
	handlers.NewSearchHandler(search, dropdowns, auditor, logger).RegisterRoutes(mux, authMiddleware)

	for _, table := range []services.Table{
		services.LossRunDistributionTable,
		services.ClaimReviewDistributionTable,
		services.DeductBillDistributionTable,
	} {
		svc := services.NewDistributionService(table, records, logger)
		handlers.NewDistributionHandler(table, svc, auditor, logger).RegisterRoutes(mux, authMiddleware)
	}
	for _, table := range []services.Table{
		services.LossRunFrequencyTable,
		services.ClaimReviewFrequencyTable,
		services.DeductBillFrequencyTable,
	} {
		svc := services.NewFrequencyService(table, records, logger)
		handlers.NewFrequencyHandler(table, svc, auditor, logger).RegisterRoutes(mux, authMiddleware)
	}

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.RequestLogger(logger.Named("http")),
		middleware.Recoverer(logger),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	), nil
}
