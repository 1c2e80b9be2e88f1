package database

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/sac-engine/pkg/config"
)

func TestMSSQLDataSource_SQLAuth(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Dialect:           DialectMSSQL,
		Host:              "sql.example.com",
		User:              "sac_app",
		Password:          "p@ss;word",
		Database:          "SAC",
		AuthMethod:        "sql",
		Encrypt:           true,
		ConnectionTimeout: 15,
	}

	driver, dsn := mssqlDataSource(cfg)
	assert.Equal(t, "sqlserver", driver)

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "sql.example.com:1433", u.Host)
	assert.Equal(t, "sac_app", u.User.Username())
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss;word", pw)
	assert.Equal(t, "SAC", u.Query().Get("database"))
	assert.Equal(t, "true", u.Query().Get("encrypt"))
	assert.Equal(t, "15", u.Query().Get("connection timeout"))
	assert.Empty(t, u.Query().Get("TrustServerCertificate"))
}

func TestMSSQLDataSource_ServicePrincipal(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Dialect:                DialectMSSQL,
		Host:                   "sac.database.windows.net",
		Port:                   1444,
		Database:               "SAC",
		AuthMethod:             "service_principal",
		TenantID:               "tenant",
		ClientID:               "client",
		ClientSecret:           "secret",
		TrustServerCertificate: true,
	}

	driver, dsn := mssqlDataSource(cfg)
	assert.Equal(t, "azuresql", driver)

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Nil(t, u.User)
	assert.Equal(t, "sac.database.windows.net:1444", u.Host)
	assert.Equal(t, "ActiveDirectoryServicePrincipal", u.Query().Get("fedauth"))
	assert.Equal(t, "client@tenant", u.Query().Get("user id"))
	assert.Equal(t, "secret", u.Query().Get("password"))
	assert.Equal(t, "true", u.Query().Get("TrustServerCertificate"))
}

func TestPostgresDataSource(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Dialect:  DialectPostgres,
		Host:     "db",
		User:     "sac",
		Password: "pw",
		Database: "sac",
		SSLMode:  "require",
	}

	driver, dsn := postgresDataSource(cfg)
	assert.Equal(t, "pgx", driver)

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "db:5432", u.Host)
	assert.Equal(t, "/sac", u.Path)
	assert.Equal(t, "require", u.Query().Get("sslmode"))
}

func TestSQLiteDataSource(t *testing.T) {
	driver, dsn := sqliteDataSource("sac.db")
	assert.Equal(t, "sqlite", driver)
	assert.Equal(t, "sac.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dsn)

	_, dsn = sqliteDataSource("file:sac.db?cache=shared")
	assert.Equal(t, "file:sac.db?cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dsn)
}

func TestDataSource_UnknownDialect(t *testing.T) {
	_, _, err := dataSource(&config.DatabaseConfig{Dialect: "oracle"})
	require.Error(t, err)
}

func TestFlavorFor(t *testing.T) {
	f, err := FlavorFor(DialectMSSQL)
	require.NoError(t, err)
	assert.True(t, f.NativeMerge)

	f, err = FlavorFor(DialectPostgres)
	require.NoError(t, err)
	assert.True(t, f.QuoteIdents)

	_, err = FlavorFor("mysql")
	require.Error(t, err)
}
