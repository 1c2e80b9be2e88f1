package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "github.com/microsoft/go-mssqldb" // sqlserver driver
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/config"
	"github.com/ekaya-inc/sac-engine/pkg/database"
)

// MSSQLTestImage is the SQL Server image used for integration tests.
const MSSQLTestImage = "mcr.microsoft.com/mssql/server:2022-latest"

const mssqlTestPassword = "Sac_Test_Passw0rd!"

// MSSQLTestDB holds a shared SQL Server container and the migrated SAC
// database inside it.
type MSSQLTestDB struct {
	Container testcontainers.Container
	DB        *database.DB
}

var (
	sharedMSSQL     *MSSQLTestDB
	sharedMSSQLOnce sync.Once
	sharedMSSQLErr  error
)

// GetMSSQLTestDB returns a shared SQL Server container for integration tests.
// The container is created once and reused across all tests in the run.
func GetMSSQLTestDB(t *testing.T) *MSSQLTestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedMSSQLOnce.Do(func() {
		sharedMSSQL, sharedMSSQLErr = setupMSSQL()
	})

	if sharedMSSQLErr != nil {
		t.Fatalf("Failed to setup SQL Server test database: %v", sharedMSSQLErr)
	}

	return sharedMSSQL
}

func setupMSSQL() (*MSSQLTestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        MSSQLTestImage,
		ExposedPorts: []string{"1433/tcp"},
		Env: map[string]string{
			"ACCEPT_EULA":       "Y",
			"MSSQL_SA_PASSWORD": mssqlTestPassword,
			"MSSQL_PID":         "Developer",
		},
		WaitingFor: wait.ForLog("SQL Server is now ready for client connections").
			WithStartupTimeout(120 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "1433")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	// The SAC database does not exist in a fresh container.
	master, err := sql.Open("sqlserver", fmt.Sprintf("sqlserver://sa:%s@%s:%s?database=master&encrypt=disable",
		mssqlTestPassword, host, port.Port()))
	if err != nil {
		return nil, fmt.Errorf("failed to open master connection: %w", err)
	}
	defer master.Close()

	var createErr error
	for i := 0; i < 20; i++ {
		if _, createErr = master.ExecContext(ctx, "IF DB_ID('SAC') IS NULL CREATE DATABASE SAC"); createErr == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if createErr != nil {
		return nil, fmt.Errorf("failed to create SAC database: %w", createErr)
	}

	cfg := &config.DatabaseConfig{
		Dialect:                 database.DialectMSSQL,
		Host:                    host,
		Port:                    port.Int(),
		User:                    "sa",
		Password:                mssqlTestPassword,
		Database:                "SAC",
		AuthMethod:              "sql",
		Encrypt:                 false,
		TrustServerCertificate:  true,
		ConnectionTimeout:       10,
		MaxOpenConns:            5,
		MaxIdleConns:            2,
		StatementTimeoutSeconds: 30,
	}

	db, err := database.Open(ctx, cfg, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SAC database: %w", err)
	}

	if err := database.RunMigrations(db, zap.NewNop()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &MSSQLTestDB{Container: container, DB: db}, nil
}
