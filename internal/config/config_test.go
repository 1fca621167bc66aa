package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.RunAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "", cfg.DBFileName)
	assert.Equal(t, "", cfg.DatabaseDSN)
	assert.Equal(t, 24*time.Hour, cfg.TokenExpiration)
	assert.NotEmpty(t, cfg.TokenSigningSecretKey)
}

func TestConfigEnvOverridesDefaults(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":7000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("FILE_STORAGE_PATH", "todos_test.json")
	t.Setenv("TOKEN_EXPIRATION", "1h")
	t.Setenv("TRUSTED_SUBNET", "10.0.0.0/8")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.RunAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "todos_test.json", cfg.DBFileName)
	assert.Equal(t, time.Hour, cfg.TokenExpiration)
	assert.Equal(t, "10.0.0.0/8", cfg.TrustedSubnet)
}

func TestConfigRejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")

	_, err := New(WithDisableFlagsParsing(true))
	assert.Error(t, err)
}

func TestConfigRejectsInvalidSigningSecret(t *testing.T) {
	t.Setenv("TOKEN_SIGNING_SECRET_KEY", "not+base64url!!")

	_, err := New(WithDisableFlagsParsing(true))
	assert.Error(t, err)
}

func TestConfigRejectsMalformedRunAddr(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "no-port-here")

	_, err := New(WithDisableFlagsParsing(true))
	assert.Error(t, err)
}
