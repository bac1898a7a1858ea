package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds the configuration for the notes service.
// Environment variables are parsed from the NOTES_ prefix,
// e.g. NOTES_HTTP_PORT, NOTES_POSTGRES_DSN.
type Config struct {
	// Build target selects the deployment flavor: local | cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// DBDriver is derived from BuildTarget when set to "auto".
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// CORSAllowedOrigin is echoed in Access-Control-Allow-Origin.
	CORSAllowedOrigin string `envconfig:"CORS_ALLOWED_ORIGIN" default:"*"`

	// Postgres Configuration
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// SQLite Configuration (local builds)
	SQLitePath string `envconfig:"SQLITE_PATH" default:"./data/notes.db"`

	// Identity provider. AuthMode "auto" selects oidc when an issuer is
	// configured and the static dev verifier otherwise.
	AuthMode   string `envconfig:"AUTH_MODE" default:"auto"`
	OIDCIssuer string `envconfig:"OIDC_ISSUER" default:""`

	// Object store (S3-compatible)
	ObjectStoreEndpoint  string `envconfig:"OBJECT_STORE_ENDPOINT" default:"localhost:9000"`
	ObjectStoreAccessKey string `envconfig:"OBJECT_STORE_ACCESS_KEY" default:""`
	ObjectStoreSecretKey string `envconfig:"OBJECT_STORE_SECRET_KEY" default:""`
	ObjectStoreBucket    string `envconfig:"OBJECT_STORE_BUCKET" default:"notes-images"`
	ObjectStoreUseSSL    bool   `envconfig:"OBJECT_STORE_USE_SSL" default:"false"`

	// Health checking
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver and AuthMode
// when they are set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB string

	switch c.BuildTarget {
	case "local":
		defaultDB = "sqlite"
	case "cloud":
		defaultDB = "postgres"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}

	allowedDB := map[string]bool{"postgres": true, "sqlite": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	if c.AuthMode == "" || c.AuthMode == "auto" {
		if c.OIDCIssuer != "" {
			c.AuthMode = "oidc"
		} else {
			c.AuthMode = "static"
		}
	}
	switch c.AuthMode {
	case "oidc":
		if c.OIDCIssuer == "" {
			return fmt.Errorf("AUTH_MODE oidc requires OIDC_ISSUER")
		}
	case "static":
	default:
		return fmt.Errorf("unsupported AUTH_MODE: %s", c.AuthMode)
	}
	return nil
}

// New creates a Config from environment variables prefixed with NOTES_.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("NOTES", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("auth_mode", cfg.AuthMode).
		Int("http_port", cfg.HTTPPort).
		Str("object_store_endpoint", cfg.ObjectStoreEndpoint).
		Str("object_store_bucket", cfg.ObjectStoreBucket).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
