package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Auth: AuthConfig{
			JWTSecret:      "a-real-secret",
			TokenTTL:       24 * time.Hour,
			SessionBackend: "memory",
		},
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_RefusesEmptySigningKey(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.JWTSecret = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
}

func TestValidate_RefusesNonPositiveTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.TokenTTL = 0
	assert.Error(t, cfg.Validate())

	cfg.Auth.TokenTTL = -time.Hour
	assert.Error(t, cfg.Validate())
}

func TestValidate_SessionBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.SessionBackend = "etcd"
	assert.Error(t, cfg.Validate())

	cfg.Auth.SessionBackend = "redis"
	assert.Error(t, cfg.Validate(), "redis backend without an address must be rejected")

	cfg.Redis.Addr = "localhost:6379"
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "env-secret")
	t.Setenv("AUTH_TOKEN_TTL", "2h")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Defaults fill everything not set explicitly.
	assert.Equal(t, "memory", cfg.Auth.SessionBackend)
	assert.Equal(t, time.Hour, cfg.Auth.SessionReapInterval)
}

func TestLoad_FailsWithoutSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}
