package database

import (
	"fmt"
	"net/url"
	"strconv"

	_ "github.com/microsoft/go-mssqldb"         // sqlserver driver
	_ "github.com/microsoft/go-mssqldb/azuread" // azuresql driver (service principal)

	"github.com/ekaya-inc/sac-engine/pkg/config"
)

// mssqlDataSource builds the go-mssqldb URL. SQL authentication uses the
// sqlserver driver; service principal authentication goes through azuresql
// with fedauth=ActiveDirectoryServicePrincipal.
func mssqlDataSource(cfg *config.DatabaseConfig) (driver, dsn string) {
	query := url.Values{}
	query.Add("database", cfg.Database)
	query.Add("encrypt", strconv.FormatBool(cfg.Encrypt))
	if cfg.TrustServerCertificate {
		query.Add("TrustServerCertificate", "true")
	}
	if cfg.ConnectionTimeout > 0 {
		query.Add("connection timeout", strconv.Itoa(cfg.ConnectionTimeout))
	}
	query.Add("app name", "sac-engine")

	u := &url.URL{
		Scheme: "sqlserver",
		Host:   fmt.Sprintf("%s:%d", cfg.ResolvedHost(), cfg.EffectivePort()),
	}

	if cfg.AuthMethod == "service_principal" {
		query.Add("fedauth", "ActiveDirectoryServicePrincipal")
		query.Add("user id", cfg.ClientID+"@"+cfg.TenantID)
		query.Add("password", cfg.ClientSecret)
		u.RawQuery = query.Encode()
		return "azuresql", u.String()
	}

	u.User = url.UserPassword(cfg.User, cfg.Password)
	u.RawQuery = query.Encode()
	return "sqlserver", u.String()
}
