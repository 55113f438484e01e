package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUsesDefaults(t *testing.T) {
	t.Setenv("AMITY_ENVIRONMENT", "testing")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, EnvTesting, cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "http://localhost:2525", cfg.MailerURL)
	assert.Equal(t, 100, cfg.NotifierBatchSize)
	assert.False(t, cfg.DevMode)
}

func TestNewParsesOverrides(t *testing.T) {
	t.Setenv("AMITY_ENVIRONMENT", "testing")
	t.Setenv("AMITY_HTTP_PORT", "9999")
	t.Setenv("AMITY_DEV_MODE", "true")
	t.Setenv("AMITY_MAIL_FROM", "hello@example.com")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.HTTPPort)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, "hello@example.com", cfg.MailFrom)
	assert.Equal(t, ":9999", cfg.GetHTTPAddr())
}

func TestValidateRejectsMissingDSNOutsideTesting(t *testing.T) {
	cfg := &Config{Environment: EnvProduction, HTTPPort: 8080, AuthSecret: "0123456789abcdef"}
	require.Error(t, cfg.Validate())

	cfg.PostgresDSN = "postgres://localhost/amity"
	require.NoError(t, cfg.Validate())
}

func TestValidateRequiresAuthSecretOutsideDev(t *testing.T) {
	cfg := &Config{
		Environment: EnvProduction,
		HTTPPort:    8080,
		PostgresDSN: "postgres://localhost/amity",
	}
	require.Error(t, cfg.Validate())

	cfg.AuthSecret = "0123456789abcdef"
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := NewForTesting()
	cfg.HTTPPort = -1
	require.Error(t, cfg.Validate())
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := NewForTesting()
	assert.True(t, cfg.IsTesting())
	assert.False(t, cfg.IsProduction())
}
