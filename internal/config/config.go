package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the Amity backend.
// Environment variables are parsed from the AMITY_ prefix,
// e.g. AMITY_HTTP_PORT, AMITY_POSTGRES_DSN.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Postgres Configuration
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Mailer (notification email) Configuration
	MailerURL    string `envconfig:"MAILER_URL" default:"http://localhost:2525"`
	MailerAPIKey string `envconfig:"MAILER_API_KEY" default:""`
	MailFrom     string `envconfig:"MAIL_FROM" default:"no-reply@amity.app"`

	// Notifier worker
	NotifierBatchSize       int `envconfig:"NOTIFIER_BATCH_SIZE" default:"100"`
	NotifierIntervalSeconds int `envconfig:"NOTIFIER_INTERVAL_SECONDS" default:"2"`

	// Health checking
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`

	// Shared secret for signed bearer tokens. Required unless DevMode is on.
	AuthSecret string `envconfig:"AUTH_SECRET" default:""`

	// Development-only auth bypass (mock authorizer)
	DevMode bool `envconfig:"DEV_MODE" default:"false"`
}

// Validate checks required settings that have no sensible default.
func (c *Config) Validate() error {
	if c.PostgresDSN == "" && !c.IsTesting() {
		return fmt.Errorf("AMITY_POSTGRES_DSN is required")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid AMITY_HTTP_PORT: %d", c.HTTPPort)
	}
	if c.AuthSecret == "" && !c.DevMode && !c.IsTesting() {
		return fmt.Errorf("AMITY_AUTH_SECRET is required outside dev mode")
	}
	return nil
}

// New creates a Config by parsing AMITY_-prefixed environment variables.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("AMITY", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Bool("dev_mode", cfg.DevMode).
		Str("postgres_dsn_present", func() string {
			if cfg.PostgresDSN != "" {
				return "true"
			}
			return "false"
		}()).
		Str("mailer_url", cfg.MailerURL).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config suitable for unit tests.
func NewForTesting() *Config {
	return &Config{
		Environment:               EnvTesting,
		HTTPPort:                  8080,
		MailerURL:                 "http://localhost:2525",
		MailFrom:                  "no-reply@amity.test",
		NotifierBatchSize:         10,
		NotifierIntervalSeconds:   1,
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
		DevMode:                   true,
	}
}

// IsTesting returns true if the environment is set to testing.
func (c *Config) IsTesting() bool { return c.Environment == EnvTesting }

// IsProduction returns true if the environment is set to production.
func (c *Config) IsProduction() bool { return c.Environment == EnvProduction }

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string { return fmt.Sprintf(":%d", c.HTTPPort) }
