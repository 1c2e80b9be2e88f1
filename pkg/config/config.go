package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for sac-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// TLS configuration (optional - if both provided, server uses HTTPS)
	TLSCertPath string `yaml:"tls_cert_path" env:"TLS_CERT_PATH" env-default:""`
	TLSKeyPath  string `yaml:"tls_key_path" env:"TLS_KEY_PATH" env-default:""`

	// CookieDomain is the domain for the session cookie (optional).
	// If empty, it will be auto-derived from BaseURL.
	CookieDomain string `yaml:"cookie_domain" env:"COOKIE_DOMAIN" env-default:""`

	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	CORS     CORSConfig     `yaml:"cors"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig selects and configures the relational store.
// SQL Server is the production engine; sqlite and postgres serve local
// runs and tests.
type DatabaseConfig struct {
	Dialect  string `yaml:"dialect" env:"DB_DIALECT" env-default:"mssql" validate:"oneof=mssql postgres sqlite"`
	Host     string `yaml:"host" env:"DB_SERVER" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"0" validate:"gte=0,lte=65535"`
	User     string `yaml:"user" env:"DB_USER" env-default:""`
	Password string `yaml:"-" env:"DB_PASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"DB_NAME" env-default:"SAC"`

	// AuthMethod is "sql" or "service_principal" (SQL Server only).
	AuthMethod   string `yaml:"auth_method" env:"DB_AUTH_METHOD" env-default:"sql" validate:"oneof=sql service_principal"`
	TenantID     string `yaml:"tenant_id" env:"DB_TENANT_ID" env-default:""`
	ClientID     string `yaml:"client_id" env:"DB_CLIENT_ID" env-default:""`
	ClientSecret string `yaml:"-" env:"DB_CLIENT_SECRET"` // Secret - not in YAML

	Encrypt                bool `yaml:"encrypt" env:"DB_ENCRYPT" env-default:"true"`
	TrustServerCertificate bool `yaml:"trust_server_certificate" env:"DB_TRUST_SERVER_CERTIFICATE" env-default:"false"`
	ConnectionTimeout      int  `yaml:"connection_timeout" env:"DB_CONNECTION_TIMEOUT" env-default:"30"`

	SSLMode    string `yaml:"ssl_mode" env:"DB_SSLMODE" env-default:"disable"`
	SQLitePath string `yaml:"sqlite_path" env:"DB_SQLITE_PATH" env-default:"sac.db"`

	MaxOpenConns int `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns int `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"2"`

	// StatementTimeoutSeconds bounds every engine call (read or write).
	StatementTimeoutSeconds int `yaml:"statement_timeout_seconds" env:"DB_STATEMENT_TIMEOUT" env-default:"30" validate:"gte=1"`
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	// SecretKey signs session tokens (HS256). Required to serve.
	SecretKey string `yaml:"-" env:"SECRET_KEY"` // Secret - not in YAML

	// TokenValidityMinutes is how long a session token stays valid.
	TokenValidityMinutes int `yaml:"token_validity_minutes" env:"ACCESS_TOKEN_VALIDITY" env-default:"480" validate:"gte=1"`

	Issuer string `yaml:"issuer" env:"TOKEN_ISSUER" env-default:"sac-engine"`
}

// CORSConfig lists the browser origins allowed to call the API with credentials.
type CORSConfig struct {
	// AllowedOriginsStr is a comma-separated list of origins.
	AllowedOriginsStr string `yaml:"allowed_origins" env:"FRONTEND_URL" env-default:"http://localhost:3000"`

	// AllowedOrigins is the parsed list (not from config file).
	AllowedOrigins []string `yaml:"-"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	// File is an extra output path next to stdout; empty disables it.
	File string `yaml:"file" env:"LOG_FILE" env-default:""`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	return LoadFrom("config.yaml", version)
}

// LoadFrom reads configuration from path with environment variable overrides.
// Secrets (DB_PASSWORD, DB_CLIENT_SECRET, SECRET_KEY) must come from
// environment variables (yaml:"-" fields).
func LoadFrom(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg.CORS.AllowedOrigins = parseList(cfg.CORS.AllowedOriginsStr)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.validateTLS(); err != nil {
		return nil, fmt.Errorf("invalid TLS configuration: %w", err)
	}

	if err := cfg.Database.validateAuth(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	// Auto-derive BaseURL from Port if not explicitly set
	// Use HTTPS scheme if TLS is configured
	if cfg.BaseURL == "" {
		scheme := "http"
		if cfg.TLSCertPath != "" {
			scheme = "https"
		}
		cfg.BaseURL = (&url.URL{
			Scheme: scheme,
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

// validateTLS ensures TLS configuration is valid if provided.
// Both cert and key must be provided together, and files must exist.
func (c *Config) validateTLS() error {
	certSet := c.TLSCertPath != ""
	keySet := c.TLSKeyPath != ""

	if certSet != keySet {
		return fmt.Errorf("both tls_cert_path and tls_key_path must be provided together")
	}

	if certSet {
		if _, err := os.Stat(c.TLSCertPath); err != nil {
			return fmt.Errorf("TLS cert file does not exist: %w", err)
		}
		if _, err := os.Stat(c.TLSKeyPath); err != nil {
			return fmt.Errorf("TLS key file does not exist: %w", err)
		}
	}

	return nil
}

// validateAuth checks the SQL Server credentials required by the auth method.
func (c *DatabaseConfig) validateAuth() error {
	if c.Dialect != "mssql" || c.AuthMethod != "service_principal" {
		return nil
	}
	if c.TenantID == "" {
		return fmt.Errorf("tenant_id is required for service principal")
	}
	if c.ClientID == "" {
		return fmt.Errorf("client_id is required for service principal")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("DB_CLIENT_SECRET is required for service principal")
	}
	return nil
}

// StatementTimeout returns the per-call database deadline.
func (c *DatabaseConfig) StatementTimeout() time.Duration {
	return time.Duration(c.StatementTimeoutSeconds) * time.Second
}

// EffectivePort returns the configured port or the dialect's default.
func (c *DatabaseConfig) EffectivePort() int {
	if c.Port > 0 {
		return c.Port
	}
	switch c.Dialect {
	case "postgres":
		return 5432
	default:
		return 1433
	}
}

// TokenValidity returns the session token lifetime.
func (c *AuthConfig) TokenValidity() time.Duration {
	return time.Duration(c.TokenValidityMinutes) * time.Minute
}

var (
	isDockerOnce   sync.Once
	isDockerResult bool
)

// IsRunningInDocker returns true if the process runs inside a Docker container
// (/.dockerenv exists). The result is cached after the first call.
func IsRunningInDocker() bool {
	isDockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		isDockerResult = err == nil
	})
	return isDockerResult
}

// ResolvedHost returns the database host to dial. Inside Docker a loopback
// host is rewritten to host.docker.internal so a database on the host
// machine stays reachable.
func (c *DatabaseConfig) ResolvedHost() string {
	if !IsRunningInDocker() {
		return c.Host
	}
	if c.Host == "localhost" || c.Host == "127.0.0.1" {
		return "host.docker.internal"
	}
	return c.Host
}

func parseList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
