package database

import (
	"fmt"
	"net/url"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql

	"github.com/ekaya-inc/sac-engine/pkg/config"
)

func postgresDataSource(cfg *config.DatabaseConfig) (driver, dsn string) {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.ResolvedHost(), cfg.EffectivePort()),
		Path:   "/" + cfg.Database,
	}
	query := url.Values{}
	query.Set("sslmode", cfg.SSLMode)
	if cfg.ConnectionTimeout > 0 {
		query.Set("connect_timeout", fmt.Sprint(cfg.ConnectionTimeout))
	}
	query.Set("application_name", "sac-engine")
	u.RawQuery = query.Encode()
	return "pgx", u.String()
}
